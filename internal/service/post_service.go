package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/voxo-cms/internal/content"
	"github.com/voxo-cms/internal/models"
	"github.com/voxo-cms/internal/repository"
	"github.com/voxo-cms/internal/validation"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
	searchLimit     = 20
	homeLatest      = 10
	homePopular     = 5
)

// ListQuery selects one page of posts
type ListQuery struct {
	CategorySlug  string
	PublishedOnly bool
	Page          int
	Limit         int
}

func (q ListQuery) normalized() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = defaultPageSize
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}
	return q
}

// postService is the concrete implementation of PostService
type postService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	tags       repository.TagRepository
	validator  *validation.Validator
	now        func() time.Time
	log        zerolog.Logger
}

func newPostService(posts repository.PostRepository, categories repository.CategoryRepository, tags repository.TagRepository, log zerolog.Logger) *postService {
	return &postService{
		posts:      posts,
		categories: categories,
		tags:       tags,
		validator:  validation.NewValidator(),
		now:        time.Now,
		log:        log.With().Str("service", "post").Logger(),
	}
}

// Create validates and stores a new post
func (s *postService) Create(ctx context.Context, in *models.PostInput) (*models.Post, error) {
	s.normalize(in)
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	now := s.now()
	post := &models.Post{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now}
	applyInput(post, in)

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, conflict(err, "slug")
	}
	s.reconcileTags(ctx, post.Tags)

	s.log.Info().Str("post_id", post.ID).Str("slug", post.Slug).Msg("Post created")
	return post, nil
}

// Update overwrites the editable fields of an existing post
func (s *postService) Update(ctx context.Context, id string, in *models.PostInput) (*models.Post, error) {
	if !validation.IsValidUUID(id) {
		return nil, ErrNotFound
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}

	s.normalize(in)
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	applyInput(post, in)
	post.UpdatedAt = s.now()

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, conflict(err, "slug")
	}
	s.reconcileTags(ctx, post.Tags)

	return post, nil
}

func (s *postService) Delete(ctx context.Context, id string) error {
	if !validation.IsValidUUID(id) {
		return ErrNotFound
	}

	ok, err := s.posts.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *postService) SetPublished(ctx context.Context, id string, published bool) error {
	if !validation.IsValidUUID(id) {
		return ErrNotFound
	}

	ok, err := s.posts.SetPublished(ctx, id, published)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	s.log.Info().Str("post_id", id).Bool("published", published).Msg("Post visibility changed")
	return nil
}

func (s *postService) Get(ctx context.Context, id string) (*models.Post, error) {
	if !validation.IsValidUUID(id) {
		return nil, ErrNotFound
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	return post, nil
}

// GetPublishedBySlug returns a published post for readers and counts the view.
// Drafts are reported as not found.
func (s *postService) GetPublishedBySlug(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if post == nil || !post.IsPublished {
		return nil, ErrNotFound
	}

	if err := s.posts.IncrementViewCount(ctx, post.ID); err != nil {
		s.log.Warn().Err(err).Str("post_id", post.ID).Msg("Failed to increment view count")
	} else {
		post.ViewCount++
	}
	return post, nil
}

// CreateDraft stores a generated post. The ID is assigned here and the post
// is always saved unpublished.
func (s *postService) CreateDraft(ctx context.Context, post *models.Post) error {
	now := s.now()
	post.ID = uuid.New().String()
	post.IsPublished = false
	// generated tags are stored as the model returned them
	if post.Tags == nil {
		post.Tags = []string{}
	}
	post.CreatedAt = now
	post.UpdatedAt = now

	if err := s.posts.Create(ctx, post); err != nil {
		return conflict(err, "slug")
	}
	s.reconcileTags(ctx, post.Tags)
	return nil
}

func (s *postService) List(ctx context.Context, q ListQuery) (*models.PostPage, error) {
	q = q.normalized()

	if q.CategorySlug != "" {
		category, err := s.categories.GetBySlug(ctx, q.CategorySlug)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, ErrNotFound
		}
	}

	posts, total, err := s.posts.List(ctx, models.PostFilter{
		CategorySlug:  q.CategorySlug,
		PublishedOnly: q.PublishedOnly,
		Limit:         q.Limit,
		Offset:        (q.Page - 1) * q.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	if posts == nil {
		posts = []models.Post{}
	}

	return &models.PostPage{Posts: posts, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

// Search matches published posts; an empty query yields no results
func (s *postService) Search(ctx context.Context, query string) ([]models.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Post{}, nil
	}
	posts, err := s.posts.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

// Home assembles the reader landing page
func (s *postService) Home(ctx context.Context) (*models.Home, error) {
	latest, _, err := s.posts.List(ctx, models.PostFilter{PublishedOnly: true, Limit: homeLatest})
	if err != nil {
		return nil, fmt.Errorf("failed to list latest posts: %w", err)
	}
	popular, err := s.posts.Popular(ctx, homePopular)
	if err != nil {
		return nil, fmt.Errorf("failed to list popular posts: %w", err)
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	home := &models.Home{Latest: latest, Popular: popular, Categories: categories}
	if home.Latest == nil {
		home.Latest = []models.Post{}
	}
	if home.Popular == nil {
		home.Popular = []models.Post{}
	}
	if home.Categories == nil {
		home.Categories = []models.Category{}
	}
	return home, nil
}

func (s *postService) normalize(in *models.PostInput) {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	if in.Slug == "" {
		in.Slug = content.Slugify(in.Title)
		if in.Slug == "" && in.Title != "" {
			in.Slug = content.PostSlug(in.ArtistName, "", s.now())
		}
	}
	in.Tags = normalizeTags(in.Tags)
}

func (s *postService) validate(ctx context.Context, in *models.PostInput) error {
	if errs := s.validator.ValidatePost(in); len(errs) > 0 {
		return invalid(errs)
	}
	if in.CategoryID == "" {
		return nil
	}
	category, err := s.categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return invalid(validation.Errors{{Field: "category_id", Message: "category does not exist", Value: in.CategoryID}})
	}
	return nil
}

// reconcileTags adds post tags missing from the tag table. Failures are
// logged; the post itself is already saved.
func (s *postService) reconcileTags(ctx context.Context, names []string) {
	if len(names) == 0 {
		return
	}

	existing, err := s.tags.ListNames(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to list tags for reconciliation")
		return
	}

	known := mapset.NewSet[string]()
	for _, name := range existing {
		known.Add(strings.ToLower(name))
	}

	now := s.now()
	var missing []models.Tag
	for _, name := range names {
		if !known.Add(strings.ToLower(name)) {
			continue
		}
		missing = append(missing, models.Tag{
			ID:        uuid.New().String(),
			Name:      name,
			Slug:      content.TagSlug(name),
			CreatedAt: now,
		})
	}
	if len(missing) == 0 {
		return
	}

	inserted, err := s.tags.EnsureNames(ctx, missing)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to add missing tags")
		return
	}
	s.log.Debug().Int("inserted", inserted).Msg("Tags reconciled")
}

func applyInput(post *models.Post, in *models.PostInput) {
	post.Title = in.Title
	post.Content = in.Content
	post.Excerpt = in.Excerpt
	post.ArtistName = in.ArtistName
	post.Slug = in.Slug
	post.CategoryID = in.CategoryID
	post.IsPublished = in.IsPublished
	post.CoverImage = in.CoverImage
	post.SpotifyURI = in.SpotifyURI
	post.Rating = in.Rating
	post.Tags = in.Tags
}

// normalizeTags trims names and drops empties and case-insensitive duplicates
func normalizeTags(tags []string) []string {
	seen := mapset.NewSet[string]()
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || !seen.Add(strings.ToLower(t)) {
			continue
		}
		out = append(out, t)
	}
	return out
}
