package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/voxo-cms/internal/content"
	"github.com/voxo-cms/internal/models"
	"github.com/voxo-cms/internal/repository"
	"github.com/voxo-cms/internal/validation"
)

// categoryService is the concrete implementation of CategoryService
type categoryService struct {
	categories repository.CategoryRepository
	validator  *validation.Validator
	log        zerolog.Logger
}

func newCategoryService(categories repository.CategoryRepository, log zerolog.Logger) *categoryService {
	return &categoryService{
		categories: categories,
		validator:  validation.NewValidator(),
		log:        log.With().Str("service", "category").Logger(),
	}
}

func (s *categoryService) prepare(in *models.CategoryInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Slug == "" {
		in.Slug = content.Slugify(in.Name)
	}
	if errs := s.validator.ValidateCategory(in); len(errs) > 0 {
		return invalid(errs)
	}
	return nil
}

func (s *categoryService) Create(ctx context.Context, in *models.CategoryInput) (*models.Category, error) {
	if err := s.prepare(in); err != nil {
		return nil, err
	}

	category := &models.Category{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Slug:      in.Slug,
		CreatedAt: time.Now(),
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, conflict(err, "category slug")
	}

	s.log.Info().Str("category_id", category.ID).Str("slug", category.Slug).Msg("Category created")
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id string, in *models.CategoryInput) (*models.Category, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.prepare(in); err != nil {
		return nil, err
	}

	category.Name = in.Name
	category.Slug = in.Slug
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, conflict(err, "category slug")
	}
	return category, nil
}

// Delete removes a category; its posts become uncategorised
func (s *categoryService) Delete(ctx context.Context, id string) error {
	if !validation.IsValidUUID(id) {
		return ErrNotFound
	}

	ok, err := s.categories.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *categoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	if !validation.IsValidUUID(id) {
		return nil, ErrNotFound
	}

	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}
	return category, nil
}

func (s *categoryService) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	category, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}
	return category, nil
}

func (s *categoryService) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// tagService is the concrete implementation of TagService
type tagService struct {
	tags      repository.TagRepository
	validator *validation.Validator
	log       zerolog.Logger
}

func newTagService(tags repository.TagRepository, log zerolog.Logger) *tagService {
	return &tagService{
		tags:      tags,
		validator: validation.NewValidator(),
		log:       log.With().Str("service", "tag").Logger(),
	}
}

func (s *tagService) prepare(in *models.TagInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Slug == "" && in.Name != "" {
		in.Slug = content.TagSlug(in.Name)
	}
	if errs := s.validator.ValidateTag(in); len(errs) > 0 {
		return invalid(errs)
	}
	return nil
}

func (s *tagService) Create(ctx context.Context, in *models.TagInput) (*models.Tag, error) {
	if err := s.prepare(in); err != nil {
		return nil, err
	}

	tag := &models.Tag{
		ID:         uuid.New().String(),
		Name:       in.Name,
		Slug:       in.Slug,
		ShowInMenu: in.ShowInMenu,
		MenuOrder:  in.MenuOrder,
		CreatedAt:  time.Now(),
	}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, conflict(err, "tag slug")
	}
	return tag, nil
}

func (s *tagService) Update(ctx context.Context, id string, in *models.TagInput) (*models.Tag, error) {
	if !validation.IsValidUUID(id) {
		return nil, ErrNotFound
	}

	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, ErrNotFound
	}
	if err := s.prepare(in); err != nil {
		return nil, err
	}

	tag.Name = in.Name
	tag.Slug = in.Slug
	tag.ShowInMenu = in.ShowInMenu
	tag.MenuOrder = in.MenuOrder
	if err := s.tags.Update(ctx, tag); err != nil {
		return nil, conflict(err, "tag slug")
	}
	return tag, nil
}

func (s *tagService) Delete(ctx context.Context, id string) error {
	if !validation.IsValidUUID(id) {
		return ErrNotFound
	}

	ok, err := s.tags.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *tagService) List(ctx context.Context) ([]models.Tag, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, nil
}

// Menu returns the tags shown in the site menu, in menu order
func (s *tagService) Menu(ctx context.Context) ([]models.Tag, error) {
	tags, err := s.tags.ListMenu(ctx)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, nil
}

func (s *tagService) ListNames(ctx context.Context) ([]string, error) {
	return s.tags.ListNames(ctx)
}
