package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/voxo-cms/internal/ai"
	"github.com/voxo-cms/internal/content"
	"github.com/voxo-cms/internal/models"
	"github.com/voxo-cms/internal/prompts"
	"github.com/voxo-cms/internal/spotify"
	"github.com/voxo-cms/internal/video"
)

// Stage is one sequential step of a generation run
type Stage string

const (
	StageResearch Stage = "research"
	StageWrite    Stage = "write"
	StageSEO      Stage = "seo"
	StageMedia    Stage = "media"
	StagePersist  Stage = "persist"
)

// Progress reported when each stage starts
var stageProgress = map[Stage]int{
	StageResearch: 25,
	StageWrite:    50,
	StageSEO:      75,
	StageMedia:    90,
	StagePersist:  100,
}

const (
	DefaultLanguage     = "English"
	DefaultCategoryName = "General"
)

var (
	ErrMissingInput  = errors.New("artistName and songTitle are required")
	ErrMissingAPIKey = errors.New("AI API key is not configured; set ai_api_key in settings or AI_API_KEY in the environment")
)

// Request is the input of one generation run
type Request struct {
	ArtistName string `json:"artistName"`
	SongTitle  string `json:"songTitle"`
	Language   string `json:"language"`
	CategoryID string `json:"categoryId"`
	Concept    string `json:"concept"`
}

func (r Request) normalized() Request {
	r.ArtistName = strings.TrimSpace(r.ArtistName)
	r.SongTitle = strings.TrimSpace(r.SongTitle)
	r.Language = strings.TrimSpace(r.Language)
	r.CategoryID = strings.TrimSpace(r.CategoryID)
	r.Concept = strings.TrimSpace(r.Concept)
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	return r
}

// Settings resolves a site setting, returning fallback when unset
type Settings interface {
	Resolve(ctx context.Context, key, fallback string) string
}

// Categories looks up the category named in a request
type Categories interface {
	GetByID(ctx context.Context, id string) (*models.Category, error)
}

// Tags lists existing tag names offered to the model
type Tags interface {
	ListNames(ctx context.Context) ([]string, error)
}

// Posts stores the generated draft and sets its ID
type Posts interface {
	CreateDraft(ctx context.Context, post *models.Post) error
}

// ArtistResolver looks up streaming metadata for a subject
type ArtistResolver interface {
	Resolve(ctx context.Context, subject string) spotify.Lookup
}

// VideoFinder finds a video id for a search query
type VideoFinder interface {
	FindVideoID(ctx context.Context, query string) (string, error)
}

// Deps are the collaborators of a Generator
type Deps struct {
	Settings   Settings
	Categories Categories
	Tags       Tags
	Posts      Posts
	Artists    ArtistResolver
	Videos     VideoFinder
	Models     ai.Factory
}

// Config holds fallbacks used when settings are empty. CallTimeout bounds
// each model call; zero leaves calls unbounded.
type Config struct {
	APIKey      string
	Model       string
	Templates   prompts.Templates
	CallTimeout time.Duration
}

// Generator runs the research, write, seo, media and persist stages
type Generator struct {
	deps Deps
	cfg  Config
	now  func() time.Time
	log  zerolog.Logger
}

// New creates a Generator
func New(deps Deps, cfg Config, log zerolog.Logger) *Generator {
	if cfg.Model == "" {
		cfg.Model = ai.DefaultModel
	}
	return &Generator{
		deps: deps,
		cfg:  cfg,
		now:  time.Now,
		log:  log.With().Str("component", "pipeline").Logger(),
	}
}

// Run executes one generation run and reports it to em. Exactly one of
// Complete or Error is emitted and em is always closed. The run is not
// cancelled when ctx is, so a disconnected client still gets its draft.
func (g *Generator) Run(ctx context.Context, req Request, em Emitter) (postID string, err error) {
	out := &terminalGuard{Emitter: em}
	defer out.Close()

	ctx = context.WithoutCancel(ctx)
	req = req.normalized()
	model := g.deps.Settings.Resolve(ctx, prompts.SettingModel, g.cfg.Model)

	log := g.log.With().Str("artist", req.ArtistName).Str("song", req.SongTitle).Logger()
	start := time.Now()

	postID, err = g.runSafely(ctx, req, model, out)
	if err != nil {
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("Generation failed")
		out.Error(FriendlyMessage(err, model))
		return "", err
	}

	log.Info().Str("post_id", postID).Dur("duration", time.Since(start)).Msg("Generation completed")
	out.Complete(postID)
	return postID, nil
}

func (g *Generator) runSafely(ctx context.Context, req Request, model string, em Emitter) (postID string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generation panicked: %v", r)
		}
	}()
	return g.run(ctx, req, model, em)
}

func (g *Generator) run(ctx context.Context, req Request, model string, em Emitter) (string, error) {
	if req.ArtistName == "" || req.SongTitle == "" {
		return "", ErrMissingInput
	}

	apiKey := g.deps.Settings.Resolve(ctx, prompts.SettingAPIKey, g.cfg.APIKey)
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}

	gen, err := g.deps.Models(ctx, apiKey, model)
	if err != nil {
		return "", err
	}
	defer gen.Close()

	vars := map[string]string{
		"artistName": req.ArtistName,
		"songTitle":  req.SongTitle,
		"language":   req.Language,
	}

	// research
	g.enter(em, StageResearch)
	em.Log(fmt.Sprintf("Researching \"%s\" by %s with %s", req.SongTitle, req.ArtistName, model))
	facts, err := g.generate(ctx, gen, g.prompt(ctx, prompts.SettingResearch, g.cfg.Templates.Research, vars))
	if err != nil {
		return "", fmt.Errorf("research failed: %w", err)
	}
	em.Log(fmt.Sprintf("Collected %d characters of research notes", utf8.RuneCountInString(facts)))

	// write
	g.enter(em, StageWrite)
	category := g.category(ctx, req.CategoryID, em)
	vars["facts"] = facts
	vars["concept"] = g.concept(ctx, req.Concept)
	vars["categoryName"] = category.Name
	em.Log(fmt.Sprintf("Writing the %s review for %s", req.Language, category.Name))
	draft, err := g.generate(ctx, gen, g.prompt(ctx, prompts.SettingWrite, g.cfg.Templates.Write, vars))
	if err != nil {
		return "", fmt.Errorf("writing failed: %w", err)
	}
	article := content.ParseArticle(draft, req.ArtistName, req.SongTitle)
	body := content.ParagraphsToHTML(article.Body)
	em.Log(fmt.Sprintf("Drafted \"%s\"", article.Title))

	// seo
	g.enter(em, StageSEO)
	existing, err := g.deps.Tags.ListNames(ctx)
	if err != nil {
		g.log.Warn().Err(err).Msg("Failed to list existing tags")
		existing = nil
	}
	vars["existingTags"] = strings.Join(existing, ", ")
	vars["article"] = article.Title + "\n\n" + content.PlainText(body)
	tagLine, err := g.generate(ctx, gen, g.prompt(ctx, prompts.SettingSEO, g.cfg.Templates.SEO, vars))
	if err != nil {
		return "", fmt.Errorf("tagging failed: %w", err)
	}
	tags := content.ParseTags(tagLine)
	em.Log(fmt.Sprintf("Tags: %s", strings.Join(tags, ", ")))

	// media
	g.enter(em, StageMedia)
	coverImage, profileURL := g.artistMedia(ctx, req, em)
	if embed := g.videoEmbed(ctx, req, em); embed != "" {
		body = embed + "\n" + body
	}

	// persist
	g.enter(em, StagePersist)
	post := &models.Post{
		Title:       article.Title,
		Content:     body,
		Excerpt:     article.Intro,
		ArtistName:  req.ArtistName,
		Slug:        content.PostSlug(req.ArtistName, req.SongTitle, g.now()),
		CategoryID:  category.ID,
		IsPublished: false,
		CoverImage:  coverImage,
		SpotifyURI:  profileURL,
		Tags:        tags,
	}
	if err := g.deps.Posts.CreateDraft(ctx, post); err != nil {
		return "", fmt.Errorf("saving the draft failed: %w", err)
	}
	em.Log(fmt.Sprintf("Saved draft %s", post.Slug))

	return post.ID, nil
}

// generate runs one model call under the configured deadline. The run
// context is never cancelled, so this is what ends a stalled call.
func (g *Generator) generate(ctx context.Context, gen ai.TextGenerator, prompt string) (string, error) {
	if g.cfg.CallTimeout <= 0 {
		return gen.Generate(ctx, prompt)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.cfg.CallTimeout)
	defer cancel()

	text, err := gen.Generate(callCtx, prompt)
	if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("model call timed out after %s: %w", g.cfg.CallTimeout, err)
	}
	return text, err
}

func (g *Generator) enter(em Emitter, stage Stage) {
	em.State(stage, stageProgress[stage])
}

func (g *Generator) prompt(ctx context.Context, key, builtin string, vars map[string]string) string {
	return content.FillTemplate(g.deps.Settings.Resolve(ctx, key, builtin), vars)
}

// concept prefers the request, then the configured default, then the built-in one
func (g *Generator) concept(ctx context.Context, requested string) string {
	if requested != "" {
		return requested
	}
	builtin := g.cfg.Templates.DefaultConcept
	if builtin == "" {
		builtin = prompts.FallbackConcept
	}
	return g.deps.Settings.Resolve(ctx, prompts.SettingDefaultConcept, builtin)
}

// category returns the requested category, or an unsaved "General" one
func (g *Generator) category(ctx context.Context, id string, em Emitter) models.Category {
	general := models.Category{Name: DefaultCategoryName}
	if id == "" {
		return general
	}

	cat, err := g.deps.Categories.GetByID(ctx, id)
	if err != nil || cat == nil {
		em.Log(fmt.Sprintf("Category %s not found, using %s", id, DefaultCategoryName))
		return general
	}
	return *cat
}

func (g *Generator) artistMedia(ctx context.Context, req Request, em Emitter) (coverImage, profileURL string) {
	if g.deps.Artists == nil {
		return "", ""
	}

	lookup := g.deps.Artists.Resolve(ctx, req.ArtistName+" "+req.SongTitle)
	if !lookup.OK() {
		em.Log(fmt.Sprintf("Artist metadata unavailable: %s", lookup.Error))
		return "", ""
	}

	em.Log(fmt.Sprintf("Found artist profile for %s", lookup.Artist.Name))
	return lookup.Artist.ImageURL, lookup.Artist.ExternalURL
}

func (g *Generator) videoEmbed(ctx context.Context, req Request, em Emitter) string {
	if g.deps.Videos == nil {
		return ""
	}

	id, err := g.deps.Videos.FindVideoID(ctx, req.ArtistName+" "+req.SongTitle+" MV")
	if err != nil {
		em.Log(fmt.Sprintf("No video embedded: %v", err))
		return ""
	}

	em.Log(fmt.Sprintf("Embedded video %s", id))
	return video.EmbedHTML(id)
}

// FriendlyMessage is the text shown to the editor for err.
// Model-not-found responses get an actionable hint.
func FriendlyMessage(err error, model string) string {
	msg := err.Error()
	if strings.Contains(msg, "404") {
		return fmt.Sprintf("The AI model %q was not found (404). Check the ai_model setting or use a model your API key can access.", model)
	}
	return msg
}
