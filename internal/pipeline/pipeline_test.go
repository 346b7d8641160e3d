package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxo-cms/internal/ai"
	"github.com/voxo-cms/internal/models"
	"github.com/voxo-cms/internal/prompts"
	"github.com/voxo-cms/internal/spotify"
)

type event struct {
	name string
	data interface{}
}

type recorder struct {
	events []event
	closed int
}

func (r *recorder) State(stage Stage, progress int) {
	r.events = append(r.events, event{EventState, StateEvent{Stage: stage, Progress: progress}})
}
func (r *recorder) Log(line string)        { r.events = append(r.events, event{EventLog, line}) }
func (r *recorder) Complete(postID string) { r.events = append(r.events, event{EventComplete, postID}) }
func (r *recorder) Error(message string)   { r.events = append(r.events, event{EventError, message}) }
func (r *recorder) Close()                 { r.closed++ }

func (r *recorder) named(name string) []event {
	var out []event
	for _, e := range r.events {
		if e.name == name {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) stages() []StateEvent {
	var out []StateEvent
	for _, e := range r.named(EventState) {
		out = append(out, e.data.(StateEvent))
	}
	return out
}

type fakeModel struct {
	mu        sync.Mutex
	responses []string
	errs      map[int]error
	panicAt   int
	stallAt   int
	prompts   []string
	closed    bool
}

func (m *fakeModel) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := len(m.prompts)
	m.prompts = append(m.prompts, prompt)
	if m.panicAt == i+1 {
		panic("model exploded")
	}
	if m.stallAt == i+1 {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err := m.errs[i]; err != nil {
		return "", err
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return "", errors.New("unexpected call")
}

func (m *fakeModel) Close() error {
	m.closed = true
	return nil
}

type fakeSettings map[string]string

func (s fakeSettings) Resolve(_ context.Context, key, fallback string) string {
	if v := s[key]; v != "" {
		return v
	}
	return fallback
}

type fakeCategories map[string]*models.Category

func (c fakeCategories) GetByID(_ context.Context, id string) (*models.Category, error) {
	return c[id], nil
}

type fakeTags struct {
	names []string
	err   error
}

func (t fakeTags) ListNames(context.Context) ([]string, error) { return t.names, t.err }

type fakePosts struct {
	saved []*models.Post
	err   error
}

func (p *fakePosts) CreateDraft(_ context.Context, post *models.Post) error {
	if p.err != nil {
		return p.err
	}
	post.ID = "post-1"
	p.saved = append(p.saved, post)
	return nil
}

type fakeArtists struct{ lookup spotify.Lookup }

func (a fakeArtists) Resolve(context.Context, string) spotify.Lookup { return a.lookup }

type fakeVideos struct {
	id  string
	err error
}

func (v fakeVideos) FindVideoID(context.Context, string) (string, error) { return v.id, v.err }

const categoryID = "550e8400-e29b-41d4-a716-446655440000"

type harness struct {
	model    *fakeModel
	settings fakeSettings
	posts    *fakePosts
	deps     Deps
	cfg      Config
	keyUsed  string
	modelArg string
}

func newHarness() *harness {
	h := &harness{
		model: &fakeModel{responses: []string{
			"- released December 2022\n- produced by 250",
			"제목: 겨울의 그리움\n서두: 디토는 그리움의 노래다.\n\n첫 문단\n둘째 줄\n\n## 사운드\n\n마지막 문단",
			"#kpop, NewJeans , #겨울",
		}},
		settings: fakeSettings{},
		posts:    &fakePosts{},
	}
	h.deps = Deps{
		Settings:   h.settings,
		Categories: fakeCategories{categoryID: {ID: categoryID, Name: "Reviews", Slug: "reviews"}},
		Tags:       fakeTags{names: []string{"kpop", "ballad"}},
		Posts:      h.posts,
		Artists: fakeArtists{lookup: spotify.Lookup{Artist: &spotify.Artist{
			Name:        "NewJeans",
			ImageURL:    "https://img.example/nj.jpg",
			ExternalURL: "https://open.spotify.com/artist/6HvZYsbFfjnjFrWF950C9d",
		}}},
		Videos: fakeVideos{id: "pSUydWEqKwE"},
		Models: func(_ context.Context, apiKey, model string) (ai.TextGenerator, error) {
			h.keyUsed = apiKey
			h.modelArg = model
			return h.model, nil
		},
	}
	h.cfg = Config{APIKey: "env-key", Model: "gemini-test", Templates: prompts.MustDefaults()}
	return h
}

func (h *harness) run(t *testing.T, req Request) (*recorder, string, error) {
	t.Helper()
	g := New(h.deps, h.cfg, zerolog.Nop())
	g.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	rec := &recorder{}
	id, err := g.Run(context.Background(), req, rec)
	return rec, id, err
}

func assertSingleTerminal(t *testing.T, rec *recorder) {
	t.Helper()
	terminals := len(rec.named(EventComplete)) + len(rec.named(EventError))
	assert.Equal(t, 1, terminals, "exactly one terminal event")
	assert.Equal(t, 1, rec.closed, "emitter closed once")
	last := rec.events[len(rec.events)-1].name
	assert.Contains(t, []string{EventComplete, EventError}, last, "terminal event comes last")
}

func TestRunCreatesDraft(t *testing.T) {
	h := newHarness()
	rec, id, err := h.run(t, Request{ArtistName: " NewJeans ", SongTitle: "Ditto", CategoryID: categoryID})
	require.NoError(t, err)
	assert.Equal(t, "post-1", id)
	assertSingleTerminal(t, rec)

	assert.Equal(t, []StateEvent{
		{StageResearch, 25}, {StageWrite, 50}, {StageSEO, 75}, {StageMedia, 90}, {StagePersist, 100},
	}, rec.stages())
	assert.Equal(t, "post-1", rec.named(EventComplete)[0].data)
	assert.NotEmpty(t, rec.named(EventLog))

	require.Len(t, h.posts.saved, 1)
	post := h.posts.saved[0]
	assert.Equal(t, "겨울의 그리움", post.Title)
	assert.Equal(t, "디토는 그리움의 노래다.", post.Excerpt)
	assert.Equal(t, "NewJeans", post.ArtistName)
	assert.False(t, post.IsPublished)
	assert.Equal(t, categoryID, post.CategoryID)
	assert.Equal(t, []string{"kpop", "NewJeans", "겨울"}, post.Tags)
	assert.Equal(t, "https://img.example/nj.jpg", post.CoverImage)
	assert.Equal(t, "https://open.spotify.com/artist/6HvZYsbFfjnjFrWF950C9d", post.SpotifyURI)
	assert.True(t, strings.HasPrefix(post.Slug, "newjeans-ditto-"), post.Slug)
	assert.True(t, strings.HasPrefix(post.Content, `<div class="video-embed">`), post.Content)
	assert.Contains(t, post.Content, "<p>첫 문단<br/>둘째 줄</p>")
	assert.Contains(t, post.Content, "<h3>사운드</h3>")
	assert.NotContains(t, post.Content, "제목:")

	assert.Equal(t, "env-key", h.keyUsed)
	assert.Equal(t, "gemini-test", h.modelArg)
	assert.True(t, h.model.closed)

	require.Len(t, h.model.prompts, 3)
	assert.Contains(t, h.model.prompts[0], "Ditto")
	assert.Contains(t, h.model.prompts[0], "NewJeans")
	assert.Contains(t, h.model.prompts[1], "produced by 250")
	assert.Contains(t, h.model.prompts[1], "Reviews")
	assert.Contains(t, h.model.prompts[1], DefaultLanguage)
	assert.Contains(t, h.model.prompts[2], "kpop, ballad")
	assert.Contains(t, h.model.prompts[2], "겨울의 그리움")
}

func TestRunMissingAPIKey(t *testing.T) {
	h := newHarness()
	h.cfg.APIKey = ""

	rec, _, err := h.run(t, Request{ArtistName: "NewJeans", SongTitle: "Ditto"})
	require.ErrorIs(t, err, ErrMissingAPIKey)
	assertSingleTerminal(t, rec)
	assert.Empty(t, rec.stages(), "no stage runs without a key")
	assert.Empty(t, h.model.prompts)
	assert.Empty(t, h.posts.saved)
}

func TestRunMissingInput(t *testing.T) {
	h := newHarness()

	rec, _, err := h.run(t, Request{ArtistName: "  ", SongTitle: "Ditto"})
	require.ErrorIs(t, err, ErrMissingInput)
	assertSingleTerminal(t, rec)
	assert.Empty(t, rec.stages())
}

func TestRunSettingsOverride(t *testing.T) {
	h := newHarness()
	h.settings[prompts.SettingAPIKey] = "settings-key"
	h.settings[prompts.SettingModel] = "gemini-custom"
	h.settings[prompts.SettingResearch] = "RESEARCH {artistName}/{songTitle}"
	h.settings[prompts.SettingWrite] = "WRITE {concept} | {categoryName} | {language}"
	h.settings[prompts.SettingDefaultConcept] = "configured concept"

	_, _, err := h.run(t, Request{ArtistName: "IU", SongTitle: "Palette", Language: "Korean"})
	require.NoError(t, err)

	assert.Equal(t, "settings-key", h.keyUsed)
	assert.Equal(t, "gemini-custom", h.modelArg)
	assert.Equal(t, "RESEARCH IU/Palette", h.model.prompts[0])
	assert.Equal(t, "WRITE configured concept | General | Korean", h.model.prompts[1])
}

func TestRunConceptPrecedence(t *testing.T) {
	h := newHarness()
	h.settings[prompts.SettingWrite] = "{concept}"
	h.settings[prompts.SettingDefaultConcept] = "configured concept"

	_, _, err := h.run(t, Request{ArtistName: "IU", SongTitle: "Palette", Concept: "requested concept"})
	require.NoError(t, err)
	assert.Equal(t, "requested concept", h.model.prompts[1])

	h = newHarness()
	h.settings[prompts.SettingWrite] = "{concept}"
	h.cfg.Templates.DefaultConcept = ""
	_, _, err = h.run(t, Request{ArtistName: "IU", SongTitle: "Palette"})
	require.NoError(t, err)
	assert.Equal(t, prompts.FallbackConcept, h.model.prompts[1])
}

func TestRunUnknownCategoryFallsBackToGeneral(t *testing.T) {
	h := newHarness()

	rec, _, err := h.run(t, Request{ArtistName: "IU", SongTitle: "Palette", CategoryID: "6ba7b810-9dad-11d1-80b4-00c04fd430c8"})
	require.NoError(t, err)
	assertSingleTerminal(t, rec)
	assert.Contains(t, h.model.prompts[1], DefaultCategoryName)
	assert.Empty(t, h.posts.saved[0].CategoryID)
}

func TestRunStageFailureAborts(t *testing.T) {
	for i, stage := range []Stage{StageResearch, StageWrite, StageSEO} {
		t.Run(string(stage), func(t *testing.T) {
			h := newHarness()
			h.model.errs = map[int]error{i: errors.New("quota exceeded")}

			rec, _, err := h.run(t, Request{ArtistName: "NewJeans", SongTitle: "Ditto"})
			require.Error(t, err)
			assertSingleTerminal(t, rec)
			require.Len(t, rec.named(EventError), 1)
			assert.Contains(t, rec.named(EventError)[0].data, "quota exceeded")
			assert.Empty(t, rec.named(EventComplete))
			assert.Empty(t, h.posts.saved)
			assert.Equal(t, stage, rec.stages()[len(rec.stages())-1].Stage)
		})
	}
}

func TestRunFriendlyNotFoundMessage(t *testing.T) {
	h := newHarness()
	h.model.errs = map[int]error{0: errors.New("googleapi: Error 404: models/gemini-test is not found")}

	rec, _, err := h.run(t, Request{ArtistName: "NewJeans", SongTitle: "Ditto"})
	require.Error(t, err)
	msg := rec.named(EventError)[0].data.(string)
	assert.Contains(t, msg, "gemini-test")
	assert.Contains(t, msg, "ai_model")
	assert.NotContains(t, msg, "googleapi")
}

func TestRunMediaFailuresAreSwallowed(t *testing.T) {
	h := newHarness()
	h.deps.Artists = fakeArtists{lookup: spotify.Lookup{Error: "spotify credentials are not configured"}}
	h.deps.Videos = fakeVideos{err: errors.New("connection refused")}

	rec, id, err := h.run(t, Request{ArtistName: "IU", SongTitle: "Palette"})
	require.NoError(t, err)
	assert.Equal(t, "post-1", id)
	assertSingleTerminal(t, rec)

	post := h.posts.saved[0]
	assert.Empty(t, post.CoverImage)
	assert.Empty(t, post.SpotifyURI)
	assert.NotContains(t, post.Content, "video-embed")
}

func TestRunTagListingFailureIsTolerated(t *testing.T) {
	h := newHarness()
	h.deps.Tags = fakeTags{err: errors.New("db down")}

	rec, _, err := h.run(t, Request{ArtistName: "IU", SongTitle: "Palette"})
	require.NoError(t, err)
	assertSingleTerminal(t, rec)
}

func TestRunPersistFailure(t *testing.T) {
	h := newHarness()
	h.posts.err = errors.New("duplicate key value violates unique constraint")

	rec, _, err := h.run(t, Request{ArtistName: "NewJeans", SongTitle: "Ditto"})
	require.Error(t, err)
	assertSingleTerminal(t, rec)
	assert.Contains(t, rec.named(EventError)[0].data, "duplicate key")
	assert.Equal(t, StagePersist, rec.stages()[len(rec.stages())-1].Stage)
}

func TestRunRecoversFromPanic(t *testing.T) {
	h := newHarness()
	h.model.panicAt = 2

	rec, _, err := h.run(t, Request{ArtistName: "NewJeans", SongTitle: "Ditto"})
	require.Error(t, err)
	assertSingleTerminal(t, rec)
	assert.Contains(t, rec.named(EventError)[0].data, "model exploded")
}

func TestRunIgnoresCancelledContext(t *testing.T) {
	h := newHarness()
	g := New(h.deps, h.cfg, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	_, err := g.Run(ctx, Request{ArtistName: "NewJeans", SongTitle: "Ditto"}, rec)
	require.NoError(t, err)
	assert.Len(t, rec.named(EventComplete), 1)
}

func TestRunStalledModelCallTimesOut(t *testing.T) {
	h := newHarness()
	h.model.stallAt = 2
	h.cfg.CallTimeout = 20 * time.Millisecond

	done := make(chan struct{})
	var rec *recorder
	var err error
	go func() {
		defer close(done)
		rec, _, err = h.run(t, Request{ArtistName: "NewJeans", SongTitle: "Ditto"})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("a stalled model call must not hang the run")
	}

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assertSingleTerminal(t, rec)
	assert.Empty(t, h.posts.saved)
	assert.Equal(t, StageWrite, rec.stages()[len(rec.stages())-1].Stage)
}

func TestTerminalGuard(t *testing.T) {
	rec := &recorder{}
	g := &terminalGuard{Emitter: rec}
	g.Complete("a")
	g.Error("late")
	g.Complete("b")

	assert.Len(t, rec.events, 1)
	assert.Equal(t, EventComplete, rec.events[0].name)
}

func TestFriendlyMessage(t *testing.T) {
	assert.Equal(t, "boom", FriendlyMessage(errors.New("boom"), "m"))
	assert.Contains(t, FriendlyMessage(errors.New("status 404"), "m"), "(404)")
}
