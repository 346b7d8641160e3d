package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/voxo-cms/internal/database"
	"github.com/voxo-cms/internal/models"
)

const postColumns = `p.id, p.title, p.content, p.excerpt, p.artist_name, p.slug, p.category_id,
	p.is_published, p.cover_image, p.spotify_uri, p.rating, p.tags, p.view_count,
	p.created_at, p.updated_at`

// postRepo is the concrete implementation of PostRepository
type postRepo struct {
	db *database.DB
}

// NewPostRepo creates a new post repository
func NewPostRepo(db *database.DB) PostRepository {
	return &postRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	var excerpt, artist, categoryID, cover, spotifyURI sql.NullString
	var rating sql.NullFloat64

	err := row.Scan(
		&post.ID, &post.Title, &post.Content, &excerpt, &artist, &post.Slug, &categoryID,
		&post.IsPublished, &cover, &spotifyURI, &rating, pq.Array(&post.Tags), &post.ViewCount,
		&post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	post.Excerpt = excerpt.String
	post.ArtistName = artist.String
	post.CategoryID = categoryID.String
	post.CoverImage = cover.String
	post.SpotifyURI = spotifyURI.String
	if rating.Valid {
		post.Rating = &rating.Float64
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	return &post, nil
}

func scanPosts(rows *sql.Rows) ([]models.Post, error) {
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// Create inserts a new post
func (r *postRepo) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, title, content, excerpt, artist_name, slug, category_id, is_published,
			cover_image, spotify_uri, rating, tags, view_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.ExecContext(ctx, query,
		post.ID, post.Title, post.Content, nullString(post.Excerpt), nullString(post.ArtistName),
		post.Slug, nullString(post.CategoryID), post.IsPublished, nullString(post.CoverImage),
		nullString(post.SpotifyURI), post.Rating, pq.Array(tagsOrEmpty(post.Tags)), post.ViewCount,
		post.CreatedAt, post.UpdatedAt,
	)
	return translateError(err)
}

// Update overwrites the editable columns of a post
func (r *postRepo) Update(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts SET
			title = $1, content = $2, excerpt = $3, artist_name = $4, slug = $5, category_id = $6,
			is_published = $7, cover_image = $8, spotify_uri = $9, rating = $10, tags = $11, updated_at = $12
		WHERE id = $13
	`
	_, err := r.db.ExecContext(ctx, query,
		post.Title, post.Content, nullString(post.Excerpt), nullString(post.ArtistName), post.Slug,
		nullString(post.CategoryID), post.IsPublished, nullString(post.CoverImage),
		nullString(post.SpotifyURI), post.Rating, pq.Array(tagsOrEmpty(post.Tags)), post.UpdatedAt,
		post.ID,
	)
	return translateError(err)
}

// Delete removes a post
func (r *postRepo) Delete(ctx context.Context, id string) (bool, error) {
	return affected(r.db.ExecContext(ctx, "DELETE FROM posts WHERE id = $1", id))
}

// SetPublished toggles the published flag
func (r *postRepo) SetPublished(ctx context.Context, id string, published bool) (bool, error) {
	return affected(r.db.ExecContext(ctx,
		"UPDATE posts SET is_published = $1, updated_at = $2 WHERE id = $3",
		published, time.Now(), id,
	))
}

// GetByID retrieves a post by ID
func (r *postRepo) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return r.getOne(ctx, "p.id = $1", id)
}

// GetBySlug retrieves a post by slug
func (r *postRepo) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return r.getOne(ctx, "p.slug = $1", slug)
}

func (r *postRepo) getOne(ctx context.Context, where string, arg interface{}) (*models.Post, error) {
	query := "SELECT " + postColumns + " FROM posts p WHERE " + where

	post, err := scanPost(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

// List returns one page of posts, newest first, and the unpaged total
func (r *postRepo) List(ctx context.Context, filter models.PostFilter) ([]models.Post, int, error) {
	var where []string
	var args []interface{}

	if filter.PublishedOnly {
		where = append(where, "p.is_published = true")
	}
	if filter.CategorySlug != "" {
		args = append(args, filter.CategorySlug)
		where = append(where, fmt.Sprintf("c.slug = $%d", len(args)))
	}

	from := " FROM posts p LEFT JOIN categories c ON c.id = p.category_id"
	if len(where) > 0 {
		from += " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*)"+from, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + postColumns + from + " ORDER BY p.created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	posts, err := scanPosts(rows)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Search matches published posts by title, artist or exact tag
func (r *postRepo) Search(ctx context.Context, q string, limit int) ([]models.Post, error) {
	query := "SELECT " + postColumns + ` FROM posts p
		WHERE p.is_published = true
			AND (p.title ILIKE $1 OR p.artist_name ILIKE $1 OR $2 = ANY(p.tags))
		ORDER BY p.created_at DESC
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, likePattern(q), q, limit)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

// Popular returns the most viewed published posts
func (r *postRepo) Popular(ctx context.Context, limit int) ([]models.Post, error) {
	query := "SELECT " + postColumns + ` FROM posts p
		WHERE p.is_published = true
		ORDER BY p.view_count DESC, p.created_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

// IncrementViewCount adds one view through the increment_view_count
// function, falling back to read-modify-write when the call fails
func (r *postRepo) IncrementViewCount(ctx context.Context, id string) error {
	return incrementViewCount(ctx, sqlViewCounter{db: r.db}, id)
}

// Count returns the total number of posts
func (r *postRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "posts")
}

// viewCounter is the storage surface used by incrementViewCount
type viewCounter interface {
	callIncrement(ctx context.Context, id string) error
	readViewCount(ctx context.Context, id string) (int, bool, error)
	writeViewCount(ctx context.Context, id string, n int) error
}

func incrementViewCount(ctx context.Context, vc viewCounter, id string) error {
	rpcErr := vc.callIncrement(ctx, id)
	if rpcErr == nil {
		return nil
	}

	current, found, err := vc.readViewCount(ctx, id)
	if err != nil {
		return fmt.Errorf("increment view count: %v; fallback read failed: %w", rpcErr, err)
	}
	if !found {
		return nil
	}
	return vc.writeViewCount(ctx, id, current+1)
}

type sqlViewCounter struct {
	db *database.DB
}

func (s sqlViewCounter) callIncrement(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "SELECT increment_view_count($1)", id)
	return err
}

func (s sqlViewCounter) readViewCount(ctx context.Context, id string) (int, bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT view_count FROM posts WHERE id = $1", id).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func (s sqlViewCounter) writeViewCount(ctx context.Context, id string, n int) error {
	_, err := s.db.ExecContext(ctx, "UPDATE posts SET view_count = $1 WHERE id = $2", n, id)
	return err
}
