package service

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/voxo-cms/internal/ai"
	"github.com/voxo-cms/internal/cache"
	"github.com/voxo-cms/internal/config"
	"github.com/voxo-cms/internal/mailer"
	"github.com/voxo-cms/internal/models"
	"github.com/voxo-cms/internal/pipeline"
	"github.com/voxo-cms/internal/prompts"
	"github.com/voxo-cms/internal/repository"
	"github.com/voxo-cms/internal/spotify"
	"github.com/voxo-cms/internal/storage"
)

// PostService defines the interface for post operations
type PostService interface {
	Create(ctx context.Context, in *models.PostInput) (*models.Post, error)
	Update(ctx context.Context, id string, in *models.PostInput) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	SetPublished(ctx context.Context, id string, published bool) error
	Get(ctx context.Context, id string) (*models.Post, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*models.Post, error)
	CreateDraft(ctx context.Context, post *models.Post) error
	List(ctx context.Context, q ListQuery) (*models.PostPage, error)
	Search(ctx context.Context, query string) ([]models.Post, error)
	Home(ctx context.Context) (*models.Home, error)
}

// CategoryService defines the interface for category operations
type CategoryService interface {
	Create(ctx context.Context, in *models.CategoryInput) (*models.Category, error)
	Update(ctx context.Context, id string, in *models.CategoryInput) (*models.Category, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
}

// TagService defines the interface for managed tags
type TagService interface {
	Create(ctx context.Context, in *models.TagInput) (*models.Tag, error)
	Update(ctx context.Context, id string, in *models.TagInput) (*models.Tag, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Tag, error)
	Menu(ctx context.Context) ([]models.Tag, error)
	ListNames(ctx context.Context) ([]string, error)
}

// SubscriberService defines the interface for newsletter subscriptions
type SubscriberService interface {
	Subscribe(ctx context.Context, email string) (*models.Subscriber, error)
	Unsubscribe(ctx context.Context, email string) error
	List(ctx context.Context) ([]models.Subscriber, error)
	Delete(ctx context.Context, id string) error
}

// SettingService defines the interface for site settings
type SettingService interface {
	All(ctx context.Context) ([]models.Setting, error)
	Get(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, key, value string) error
	Resolve(ctx context.Context, key, fallback string) string
}

// NewsletterService defines the interface for broadcasts and their processor
type NewsletterService interface {
	CreateBroadcast(ctx context.Context, req *models.BroadcastRequest) (*models.Broadcast, error)
	GetBroadcast(ctx context.Context, id string) (*models.Broadcast, error)
	ListBroadcasts(ctx context.Context, limit int) ([]models.Broadcast, error)
	StartProcessor(ctx context.Context)
	StopProcessor()
}

// MediaService defines the interface for uploaded images
type MediaService interface {
	Upload(ctx context.Context, contentType string, size int64, r io.Reader) (string, error)
}

// DeskService defines the interface for the AI auto desk
type DeskService interface {
	Generate(ctx context.Context, req pipeline.Request, em pipeline.Emitter) (string, error)
	LookupArtist(ctx context.Context, subject string) spotify.Lookup
}

// StatsService reports row counts for the metrics endpoint
type StatsService interface {
	Counts(ctx context.Context) (map[string]int, error)
}

// Dependencies are the non-database collaborators of the services
type Dependencies struct {
	Cache     cache.SettingsCache
	Store     storage.ObjectStore
	Mailer    mailer.Mailer
	Artists   pipeline.ArtistResolver
	Videos    pipeline.VideoFinder
	Models    ai.Factory
	Templates prompts.Templates
}

// Services holds all service interfaces
type Services struct {
	Post       PostService
	Category   CategoryService
	Tag        TagService
	Subscriber SubscriberService
	Setting    SettingService
	Newsletter NewsletterService
	Media      MediaService
	Desk       DeskService
	Stats      StatsService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, deps Dependencies, cfg *config.Config, log zerolog.Logger) *Services {
	if deps.Cache == nil {
		deps.Cache = cache.NewMemorySettingsCache(cfg.Cache.TTL)
	}
	if deps.Mailer == nil {
		deps.Mailer = mailer.NewLogMailer(log)
	}
	if deps.Models == nil {
		deps.Models = ai.NewGemini
	}
	if deps.Templates == (prompts.Templates{}) {
		deps.Templates = prompts.MustDefaults()
	}

	settingSvc := newSettingService(repos.Setting, deps.Cache, log)
	postSvc := newPostService(repos.Post, repos.Category, repos.Tag, log)
	categorySvc := newCategoryService(repos.Category, log)
	tagSvc := newTagService(repos.Tag, log)

	generator := pipeline.New(pipeline.Deps{
		Settings:   settingSvc,
		Categories: repos.Category,
		Tags:       repos.Tag,
		Posts:      postSvc,
		Artists:    deps.Artists,
		Videos:     deps.Videos,
		Models:     deps.Models,
	}, pipeline.Config{
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Templates:   deps.Templates,
		CallTimeout: cfg.AI.Timeout,
	}, log)

	return &Services{
		Post:       postSvc,
		Category:   categorySvc,
		Tag:        tagSvc,
		Subscriber: newSubscriberService(repos.Subscriber, log),
		Setting:    settingSvc,
		Newsletter: newNewsletterService(repos.Broadcast, repos.Subscriber, deps.Mailer, cfg.Newsletter, log),
		Media:      newMediaService(deps.Store, cfg.Storage.MaxUploadSize, log),
		Desk:       newDeskService(generator, deps.Artists, log),
		Stats:      newStatsService(repos),
	}
}
