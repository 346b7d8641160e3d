package mocks

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/voxo-cms/internal/models"
	"github.com/voxo-cms/internal/pipeline"
	"github.com/voxo-cms/internal/service"
	"github.com/voxo-cms/internal/spotify"
)

// MockDeskService is a mock implementation of DeskService
type MockDeskService struct {
	GenerateFunc func(ctx context.Context, req pipeline.Request, em pipeline.Emitter) (string, error)
	LookupFunc   func(ctx context.Context, subject string) spotify.Lookup
	Requests     []pipeline.Request
}

// Verify interface compliance
var _ service.DeskService = (*MockDeskService)(nil)

func NewMockDeskService() *MockDeskService {
	return &MockDeskService{}
}

// Generate emits a short successful run unless GenerateFunc is set
func (m *MockDeskService) Generate(ctx context.Context, req pipeline.Request, em pipeline.Emitter) (string, error) {
	m.Requests = append(m.Requests, req)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req, em)
	}
	defer em.Close()
	em.State(pipeline.StageResearch, 25)
	em.Log("Researching")
	em.State(pipeline.StagePersist, 100)
	em.Complete("test-post-id")
	return "test-post-id", nil
}

func (m *MockDeskService) LookupArtist(ctx context.Context, subject string) spotify.Lookup {
	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, subject)
	}
	if spotify.IsDemoSubject(subject) {
		return spotify.Lookup{Artist: spotify.DemoArtist()}
	}
	return spotify.Lookup{Error: "no artist found"}
}

// MockMediaService is a mock implementation of MediaService
type MockMediaService struct {
	UploadFunc func(ctx context.Context, contentType string, size int64, r io.Reader) (string, error)
	Uploads    []string
}

// Verify interface compliance
var _ service.MediaService = (*MockMediaService)(nil)

func NewMockMediaService() *MockMediaService {
	return &MockMediaService{}
}

func (m *MockMediaService) Upload(ctx context.Context, contentType string, size int64, r io.Reader) (string, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, contentType, size, r)
	}
	m.Uploads = append(m.Uploads, contentType)
	return "/uploads/test-upload.png", nil
}

// MockNewsletterService is a mock implementation of NewsletterService
type MockNewsletterService struct {
	mu         sync.Mutex
	Broadcasts map[string]*models.Broadcast
	Started    bool
	Stopped    bool
}

// Verify interface compliance
var _ service.NewsletterService = (*MockNewsletterService)(nil)

func NewMockNewsletterService() *MockNewsletterService {
	return &MockNewsletterService{Broadcasts: make(map[string]*models.Broadcast)}
}

func (m *MockNewsletterService) CreateBroadcast(ctx context.Context, req *models.BroadcastRequest) (*models.Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := &models.Broadcast{
		ID:        "test-broadcast-id",
		Subject:   req.Subject,
		BodyHTML:  req.BodyHTML,
		Status:    models.BroadcastStatusPending,
		CreatedAt: time.Now(),
	}
	m.Broadcasts[b.ID] = b
	return b, nil
}

func (m *MockNewsletterService) GetBroadcast(ctx context.Context, id string) (*models.Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.Broadcasts[id]; ok {
		return b, nil
	}
	return nil, service.ErrNotFound
}

func (m *MockNewsletterService) ListBroadcasts(ctx context.Context, limit int) ([]models.Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Broadcast, 0, len(m.Broadcasts))
	for _, b := range m.Broadcasts {
		out = append(out, *b)
	}
	return out, nil
}

func (m *MockNewsletterService) StartProcessor(ctx context.Context) {
	m.mu.Lock()
	m.Started = true
	m.mu.Unlock()
}

func (m *MockNewsletterService) StopProcessor() {
	m.mu.Lock()
	m.Stopped = true
	m.mu.Unlock()
}

// MockStatsService is a mock implementation of StatsService
type MockStatsService struct {
	Values map[string]int
	Err    error
}

// Verify interface compliance
var _ service.StatsService = (*MockStatsService)(nil)

func NewMockStatsService() *MockStatsService {
	return &MockStatsService{Values: map[string]int{
		"posts":       100,
		"categories":  5,
		"tags":        40,
		"subscribers": 250,
	}}
}

func (m *MockStatsService) Counts(ctx context.Context) (map[string]int, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Values, nil
}
