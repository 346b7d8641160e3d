package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/voxo-cms/internal/database"
	"github.com/voxo-cms/internal/models"
)

const tagColumns = "id, name, slug, show_in_menu, menu_order, created_at"

// tagRepo is the concrete implementation of TagRepository
type tagRepo struct {
	db *database.DB
}

// NewTagRepo creates a new tag repository
func NewTagRepo(db *database.DB) TagRepository {
	return &tagRepo{db: db}
}

// Create inserts a new tag
func (r *tagRepo) Create(ctx context.Context, tag *models.Tag) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO tags ("+tagColumns+") VALUES ($1, $2, $3, $4, $5, $6)",
		tag.ID, tag.Name, tag.Slug, tag.ShowInMenu, tag.MenuOrder, tag.CreatedAt,
	)
	return translateError(err)
}

// Update overwrites a tag's editable columns
func (r *tagRepo) Update(ctx context.Context, tag *models.Tag) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE tags SET name = $1, slug = $2, show_in_menu = $3, menu_order = $4 WHERE id = $5",
		tag.Name, tag.Slug, tag.ShowInMenu, tag.MenuOrder, tag.ID,
	)
	return translateError(err)
}

// Delete removes a tag
func (r *tagRepo) Delete(ctx context.Context, id string) (bool, error) {
	return affected(r.db.ExecContext(ctx, "DELETE FROM tags WHERE id = $1", id))
}

// GetByID retrieves a tag by ID
func (r *tagRepo) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	var t models.Tag
	err := r.db.QueryRowContext(ctx, "SELECT "+tagColumns+" FROM tags WHERE id = $1", id).
		Scan(&t.ID, &t.Name, &t.Slug, &t.ShowInMenu, &t.MenuOrder, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all tags by name
func (r *tagRepo) List(ctx context.Context) ([]models.Tag, error) {
	return r.query(ctx, "SELECT "+tagColumns+" FROM tags ORDER BY name")
}

// ListMenu returns the tags shown in the site menu in menu order
func (r *tagRepo) ListMenu(ctx context.Context) ([]models.Tag, error) {
	return r.query(ctx, "SELECT "+tagColumns+" FROM tags WHERE show_in_menu = true ORDER BY menu_order, name")
}

func (r *tagRepo) query(ctx context.Context, query string) ([]models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.ShowInMenu, &t.MenuOrder, &t.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// ListNames returns every tag name
func (r *tagRepo) ListNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT name FROM tags ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// EnsureNames inserts tags whose slug is not taken yet and returns how many were added
func (r *tagRepo) EnsureNames(ctx context.Context, tags []models.Tag) (int, error) {
	inserted := 0
	for _, t := range tags {
		ok, err := affected(r.db.ExecContext(ctx,
			"INSERT INTO tags ("+tagColumns+") VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (slug) DO NOTHING",
			t.ID, t.Name, t.Slug, t.ShowInMenu, t.MenuOrder, t.CreatedAt,
		))
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}

// Count returns the total number of tags
func (r *tagRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "tags")
}
