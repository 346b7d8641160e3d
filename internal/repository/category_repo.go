package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/voxo-cms/internal/database"
	"github.com/voxo-cms/internal/models"
)

// categoryRepo is the concrete implementation of CategoryRepository
type categoryRepo struct {
	db *database.DB
}

// NewCategoryRepo creates a new category repository
func NewCategoryRepo(db *database.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

// Create inserts a new category
func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (id, name, slug, created_at) VALUES ($1, $2, $3, $4)",
		category.ID, category.Name, category.Slug, category.CreatedAt,
	)
	return translateError(err)
}

// Update renames a category
func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE categories SET name = $1, slug = $2 WHERE id = $3",
		category.Name, category.Slug, category.ID,
	)
	return translateError(err)
}

// Delete removes a category; its posts keep existing without one
func (r *categoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	return affected(r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id))
}

// GetByID retrieves a category by ID
func (r *categoryRepo) GetByID(ctx context.Context, id string) (*models.Category, error) {
	return r.getOne(ctx, "SELECT id, name, slug, created_at FROM categories WHERE id = $1", id)
}

// GetBySlug retrieves a category by slug
func (r *categoryRepo) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return r.getOne(ctx, "SELECT id, name, slug, created_at FROM categories WHERE slug = $1", slug)
}

func (r *categoryRepo) getOne(ctx context.Context, query string, arg interface{}) (*models.Category, error) {
	var c models.Category
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories by name
func (r *categoryRepo) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, slug, created_at FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Count returns the total number of categories
func (r *categoryRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "categories")
}
