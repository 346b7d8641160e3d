package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/voxo-cms/internal/database"
	"github.com/voxo-cms/internal/models"
)

// ErrDuplicate is returned when a write violates a unique constraint
var ErrDuplicate = errors.New("duplicate key")

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) (bool, error)
	SetPublished(ctx context.Context, id string, published bool) (bool, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	List(ctx context.Context, filter models.PostFilter) ([]models.Post, int, error)
	Search(ctx context.Context, query string, limit int) ([]models.Post, error)
	Popular(ctx context.Context, limit int) ([]models.Post, error)
	IncrementViewCount(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Count(ctx context.Context) (int, error)
}

// TagRepository defines the interface for tag data operations
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*models.Tag, error)
	List(ctx context.Context) ([]models.Tag, error)
	ListMenu(ctx context.Context) ([]models.Tag, error)
	ListNames(ctx context.Context) ([]string, error)
	EnsureNames(ctx context.Context, tags []models.Tag) (int, error)
	Count(ctx context.Context) (int, error)
}

// SubscriberRepository defines the interface for subscriber data operations
type SubscriberRepository interface {
	Create(ctx context.Context, subscriber *models.Subscriber) error
	GetByEmail(ctx context.Context, email string) (*models.Subscriber, error)
	List(ctx context.Context) ([]models.Subscriber, error)
	Delete(ctx context.Context, id string) (bool, error)
	UpdateStatus(ctx context.Context, email, status string) (bool, error)
	ListActiveEmails(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
}

// SettingRepository defines the interface for site settings
type SettingRepository interface {
	GetAll(ctx context.Context) ([]models.Setting, error)
	Get(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, key, value string) error
}

// BroadcastRepository defines the interface for newsletter broadcasts
type BroadcastRepository interface {
	Create(ctx context.Context, broadcast *models.Broadcast) error
	Update(ctx context.Context, broadcast *models.Broadcast) error
	GetByID(ctx context.Context, id string) (*models.Broadcast, error)
	List(ctx context.Context, limit int) ([]models.Broadcast, error)
	GetPending(ctx context.Context) ([]*models.Broadcast, error)
	MarkAsProcessing(ctx context.Context, id string) (bool, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Post       PostRepository
	Category   CategoryRepository
	Tag        TagRepository
	Subscriber SubscriberRepository
	Setting    SettingRepository
	Broadcast  BroadcastRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Post:       NewPostRepo(db),
		Category:   NewCategoryRepo(db),
		Tag:        NewTagRepo(db),
		Subscriber: NewSubscriberRepo(db),
		Setting:    NewSettingRepo(db),
		Broadcast:  NewBroadcastRepo(db),
	}
}

// translateError maps unique violations to ErrDuplicate
func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
	}
	return err
}

// affected reports whether a statement touched any row
func affected(result sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func count(ctx context.Context, db *database.DB, table string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
	return n, err
}

// likePattern escapes LIKE metacharacters and wraps q for a substring match
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
