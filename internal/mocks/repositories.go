package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/voxo-cms/internal/models"
	"github.com/voxo-cms/internal/repository"
)

// MockPostRepository is a mock implementation of PostRepository
type MockPostRepository struct {
	mu          sync.Mutex
	Posts       map[string]*models.Post
	CreateError error
	ViewCalls   int
	CreateFunc  func(ctx context.Context, post *models.Post) error
}

// Verify interface compliance
var _ repository.PostRepository = (*MockPostRepository)(nil)

func NewMockPostRepository() *MockPostRepository {
	return &MockPostRepository{Posts: make(map[string]*models.Post)}
}

func (m *MockPostRepository) slugTaken(slug, exceptID string) bool {
	for _, p := range m.Posts {
		if p.Slug == slug && p.ID != exceptID {
			return true
		}
	}
	return false
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, post)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	if m.slugTaken(post.Slug, post.ID) {
		return repository.ErrDuplicate
	}
	cp := *post
	m.Posts[post.ID] = &cp
	return nil
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugTaken(post.Slug, post.ID) {
		return repository.ErrDuplicate
	}
	if _, ok := m.Posts[post.ID]; ok {
		cp := *post
		m.Posts[post.ID] = &cp
	}
	return nil
}

func (m *MockPostRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Posts[id]
	delete(m.Posts, id)
	return ok, nil
}

func (m *MockPostRepository) SetPublished(ctx context.Context, id string, published bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Posts[id]
	if !ok {
		return false, nil
	}
	p.IsPublished = published
	return true, nil
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.Posts[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *MockPostRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.Posts {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

// sorted returns posts newest first, optionally published only
func (m *MockPostRepository) sorted(publishedOnly bool) []models.Post {
	posts := make([]models.Post, 0, len(m.Posts))
	for _, p := range m.Posts {
		if publishedOnly && !p.IsPublished {
			continue
		}
		posts = append(posts, *p)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts
}

// List ignores CategorySlug; category ids are not resolved by the mock
func (m *MockPostRepository) List(ctx context.Context, filter models.PostFilter) ([]models.Post, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	posts := m.sorted(filter.PublishedOnly)
	total := len(posts)
	if filter.Offset >= len(posts) {
		return []models.Post{}, total, nil
	}
	posts = posts[filter.Offset:]
	if filter.Limit > 0 && len(posts) > filter.Limit {
		posts = posts[:filter.Limit]
	}
	return posts, total, nil
}

func (m *MockPostRepository) Search(ctx context.Context, query string, limit int) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := strings.ToLower(query)
	var out []models.Post
	for _, p := range m.sorted(true) {
		if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.ArtistName), q) {
			out = append(out, p)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockPostRepository) Popular(ctx context.Context, limit int) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	posts := m.sorted(true)
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].ViewCount > posts[j].ViewCount })
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (m *MockPostRepository) IncrementViewCount(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ViewCalls++
	if p, ok := m.Posts[id]; ok {
		p.ViewCount++
	}
	return nil
}

func (m *MockPostRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Posts), nil
}

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	Categories map[string]*models.Category
	GetError   error
}

// Verify interface compliance
var _ repository.CategoryRepository = (*MockCategoryRepository)(nil)

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{Categories: make(map[string]*models.Category)}
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	for _, c := range m.Categories {
		if c.Slug == category.Slug {
			return repository.ErrDuplicate
		}
	}
	cp := *category
	m.Categories[category.ID] = &cp
	return nil
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	if _, ok := m.Categories[category.ID]; ok {
		cp := *category
		m.Categories[category.ID] = &cp
	}
	return nil
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id string) (bool, error) {
	_, ok := m.Categories[id]
	delete(m.Categories, id)
	return ok, nil
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.Categories[id], nil
}

func (m *MockCategoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	for _, c := range m.Categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, nil
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	out := make([]models.Category, 0, len(m.Categories))
	for _, c := range m.Categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockCategoryRepository) Count(ctx context.Context) (int, error) {
	return len(m.Categories), nil
}

// MockTagRepository is a mock implementation of TagRepository
type MockTagRepository struct {
	Tags         map[string]*models.Tag
	ListNamesErr error
	EnsureCalls  int
	EnsuredTags  []models.Tag
}

// Verify interface compliance
var _ repository.TagRepository = (*MockTagRepository)(nil)

func NewMockTagRepository() *MockTagRepository {
	return &MockTagRepository{Tags: make(map[string]*models.Tag)}
}

func (m *MockTagRepository) slugTaken(slug, exceptID string) bool {
	for _, t := range m.Tags {
		if t.Slug == slug && t.ID != exceptID {
			return true
		}
	}
	return false
}

func (m *MockTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if m.slugTaken(tag.Slug, tag.ID) {
		return repository.ErrDuplicate
	}
	cp := *tag
	m.Tags[tag.ID] = &cp
	return nil
}

func (m *MockTagRepository) Update(ctx context.Context, tag *models.Tag) error {
	if m.slugTaken(tag.Slug, tag.ID) {
		return repository.ErrDuplicate
	}
	if _, ok := m.Tags[tag.ID]; ok {
		cp := *tag
		m.Tags[tag.ID] = &cp
	}
	return nil
}

func (m *MockTagRepository) Delete(ctx context.Context, id string) (bool, error) {
	_, ok := m.Tags[id]
	delete(m.Tags, id)
	return ok, nil
}

func (m *MockTagRepository) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	return m.Tags[id], nil
}

func (m *MockTagRepository) List(ctx context.Context) ([]models.Tag, error) {
	out := make([]models.Tag, 0, len(m.Tags))
	for _, t := range m.Tags {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockTagRepository) ListMenu(ctx context.Context) ([]models.Tag, error) {
	var out []models.Tag
	for _, t := range m.Tags {
		if t.ShowInMenu {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MenuOrder != out[j].MenuOrder {
			return out[i].MenuOrder < out[j].MenuOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *MockTagRepository) ListNames(ctx context.Context) ([]string, error) {
	if m.ListNamesErr != nil {
		return nil, m.ListNamesErr
	}
	names := make([]string, 0, len(m.Tags))
	for _, t := range m.Tags {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MockTagRepository) EnsureNames(ctx context.Context, tags []models.Tag) (int, error) {
	m.EnsureCalls++
	inserted := 0
	for _, t := range tags {
		if m.slugTaken(t.Slug, "") {
			continue
		}
		cp := t
		m.Tags[t.ID] = &cp
		m.EnsuredTags = append(m.EnsuredTags, t)
		inserted++
	}
	return inserted, nil
}

func (m *MockTagRepository) Count(ctx context.Context) (int, error) {
	return len(m.Tags), nil
}

// MockSubscriberRepository is a mock implementation of SubscriberRepository
type MockSubscriberRepository struct {
	mu          sync.Mutex
	Subscribers map[string]*models.Subscriber
}

// Verify interface compliance
var _ repository.SubscriberRepository = (*MockSubscriberRepository)(nil)

func NewMockSubscriberRepository() *MockSubscriberRepository {
	return &MockSubscriberRepository{Subscribers: make(map[string]*models.Subscriber)}
}

func (m *MockSubscriberRepository) Create(ctx context.Context, s *models.Subscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Subscribers {
		if existing.Email == s.Email {
			return repository.ErrDuplicate
		}
	}
	cp := *s
	m.Subscribers[s.ID] = &cp
	return nil
}

func (m *MockSubscriberRepository) GetByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.Subscribers {
		if s.Email == email {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockSubscriberRepository) List(ctx context.Context) ([]models.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Subscriber, 0, len(m.Subscribers))
	for _, s := range m.Subscribers {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *MockSubscriberRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Subscribers[id]
	delete(m.Subscribers, id)
	return ok, nil
}

func (m *MockSubscriberRepository) UpdateStatus(ctx context.Context, email, status string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.Subscribers {
		if s.Email == email {
			s.Status = status
			return true, nil
		}
	}
	return false, nil
}

func (m *MockSubscriberRepository) ListActiveEmails(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var emails []string
	for _, s := range m.Subscribers {
		if s.Status == models.SubscriberActive {
			emails = append(emails, s.Email)
		}
	}
	sort.Strings(emails)
	return emails, nil
}

func (m *MockSubscriberRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Subscribers), nil
}

// MockSettingRepository is a mock implementation of SettingRepository
type MockSettingRepository struct {
	mu          sync.Mutex
	Settings    map[string]string
	GetAllCalls int
	GetAllError error
	// AfterGetAll runs after the rows are read and before they are returned
	AfterGetAll func()
}

// Verify interface compliance
var _ repository.SettingRepository = (*MockSettingRepository)(nil)

func NewMockSettingRepository() *MockSettingRepository {
	return &MockSettingRepository{Settings: make(map[string]string)}
}

func (m *MockSettingRepository) GetAll(ctx context.Context) ([]models.Setting, error) {
	m.mu.Lock()
	m.GetAllCalls++
	if m.GetAllError != nil {
		m.mu.Unlock()
		return nil, m.GetAllError
	}
	out := make([]models.Setting, 0, len(m.Settings))
	for k, v := range m.Settings {
		out = append(out, models.Setting{Key: k, Value: v})
	}
	hook := m.AfterGetAll
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	if hook != nil {
		hook()
	}
	return out, nil
}

func (m *MockSettingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Settings[key]
	if !ok {
		return nil, nil
	}
	return &models.Setting{Key: key, Value: v}, nil
}

func (m *MockSettingRepository) Upsert(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Settings[key] = value
	return nil
}

// MockBroadcastRepository is a mock implementation of BroadcastRepository
type MockBroadcastRepository struct {
	mu         sync.Mutex
	Broadcasts map[string]*models.Broadcast
	// AfterGetPending runs after the pending rows are read and before they are returned
	AfterGetPending func()
}

// Verify interface compliance
var _ repository.BroadcastRepository = (*MockBroadcastRepository)(nil)

func NewMockBroadcastRepository() *MockBroadcastRepository {
	return &MockBroadcastRepository{Broadcasts: make(map[string]*models.Broadcast)}
}

func (m *MockBroadcastRepository) Create(ctx context.Context, b *models.Broadcast) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.Broadcasts[b.ID] = &cp
	return nil
}

func (m *MockBroadcastRepository) Update(ctx context.Context, b *models.Broadcast) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.Broadcasts[b.ID] = &cp
	return nil
}

func (m *MockBroadcastRepository) GetByID(ctx context.Context, id string) (*models.Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.Broadcasts[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (m *MockBroadcastRepository) List(ctx context.Context, limit int) ([]models.Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Broadcast, 0, len(m.Broadcasts))
	for _, b := range m.Broadcasts {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockBroadcastRepository) GetPending(ctx context.Context) ([]*models.Broadcast, error) {
	m.mu.Lock()
	var out []*models.Broadcast
	for _, b := range m.Broadcasts {
		if b.Status == models.BroadcastStatusPending {
			cp := *b
			out = append(out, &cp)
		}
	}
	hook := m.AfterGetPending
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if hook != nil {
		hook()
	}
	return out, nil
}

func (m *MockBroadcastRepository) MarkAsProcessing(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.Broadcasts[id]
	if !ok || b.Status != models.BroadcastStatusPending {
		return false, nil
	}
	now := time.Now()
	b.Status = models.BroadcastStatusProcessing
	b.StartedAt = &now
	return true, nil
}

// Get returns a copy of a broadcast for assertions
func (m *MockBroadcastRepository) Get(id string) (models.Broadcast, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.Broadcasts[id]
	if !ok {
		return models.Broadcast{}, false
	}
	return *b, true
}

// NewRepositories returns a Repositories value backed by fresh mocks
func NewRepositories() (*repository.Repositories, *Store) {
	s := &Store{
		Posts:       NewMockPostRepository(),
		Categories:  NewMockCategoryRepository(),
		Tags:        NewMockTagRepository(),
		Subscribers: NewMockSubscriberRepository(),
		Settings:    NewMockSettingRepository(),
		Broadcasts:  NewMockBroadcastRepository(),
	}
	return &repository.Repositories{
		Post:       s.Posts,
		Category:   s.Categories,
		Tag:        s.Tags,
		Subscriber: s.Subscribers,
		Setting:    s.Settings,
		Broadcast:  s.Broadcasts,
	}, s
}

// Store exposes the concrete mocks behind NewRepositories
type Store struct {
	Posts       *MockPostRepository
	Categories  *MockCategoryRepository
	Tags        *MockTagRepository
	Subscribers *MockSubscriberRepository
	Settings    *MockSettingRepository
	Broadcasts  *MockBroadcastRepository
}
