package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron"
	"github.com/rs/zerolog"

	"github.com/voxo-cms/internal/config"
	"github.com/voxo-cms/internal/mailer"
	"github.com/voxo-cms/internal/models"
	"github.com/voxo-cms/internal/repository"
	"github.com/voxo-cms/internal/validation"
)

const (
	defaultSchedule       = "@every 10s"
	defaultBroadcastLimit = 50
)

var errProcessorStopped = errors.New("processor stopped before all recipients were sent")

// newsletterService is the concrete implementation of NewsletterService
type newsletterService struct {
	broadcasts  repository.BroadcastRepository
	subscribers repository.SubscriberRepository
	mailer      mailer.Mailer
	validator   *validation.Validator
	schedule    string
	log         zerolog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	running     bool
	mu          sync.Mutex
	// Semaphore: buffered channel to limit concurrent broadcasts
	sem chan struct{}
}

// newNewsletterService creates the service with a worker pool sized for I/O-bound work
func newNewsletterService(broadcasts repository.BroadcastRepository, subscribers repository.SubscriberRepository, m mailer.Mailer, cfg config.NewsletterConfig, log zerolog.Logger) *newsletterService {
	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		// SMTP delivery spends most of its time waiting on the network
		maxWorkers = runtime.NumCPU() * 4
		if maxWorkers < 4 {
			maxWorkers = 4
		}
		if maxWorkers > 32 {
			maxWorkers = 32
		}
	}
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = defaultSchedule
	}

	log = log.With().Str("service", "newsletter").Logger()
	log.Info().Int("max_workers", maxWorkers).Str("schedule", schedule).Msg("Initializing newsletter worker pool")

	return &newsletterService{
		broadcasts:  broadcasts,
		subscribers: subscribers,
		mailer:      m,
		validator:   validation.NewValidator(),
		schedule:    schedule,
		log:         log,
		sem:         make(chan struct{}, maxWorkers),
	}
}

// CreateBroadcast queues a broadcast for the processor
func (s *newsletterService) CreateBroadcast(ctx context.Context, req *models.BroadcastRequest) (*models.Broadcast, error) {
	if errs := s.validator.ValidateBroadcast(req); len(errs) > 0 {
		return nil, invalid(errs)
	}

	broadcast := &models.Broadcast{
		ID:        uuid.New().String(),
		Subject:   req.Subject,
		BodyHTML:  req.BodyHTML,
		Status:    models.BroadcastStatusPending,
		CreatedAt: time.Now(),
	}
	if err := s.broadcasts.Create(ctx, broadcast); err != nil {
		return nil, fmt.Errorf("failed to create broadcast: %w", err)
	}

	s.log.Info().Str("broadcast_id", broadcast.ID).Msg("Broadcast queued")
	return broadcast, nil
}

func (s *newsletterService) GetBroadcast(ctx context.Context, id string) (*models.Broadcast, error) {
	if !validation.IsValidUUID(id) {
		return nil, ErrNotFound
	}

	broadcast, err := s.broadcasts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if broadcast == nil {
		return nil, ErrNotFound
	}
	return broadcast, nil
}

func (s *newsletterService) ListBroadcasts(ctx context.Context, limit int) ([]models.Broadcast, error) {
	if limit <= 0 || limit > defaultBroadcastLimit {
		limit = defaultBroadcastLimit
	}
	broadcasts, err := s.broadcasts.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if broadcasts == nil {
		broadcasts = []models.Broadcast{}
	}
	return broadcasts, nil
}

// StartProcessor runs the broadcast processor until ctx is done or
// StopProcessor is called. Pending broadcasts are picked up immediately and
// then on every tick of the schedule.
func (s *newsletterService) StartProcessor(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	scheduler := cron.New()
	if err := scheduler.AddFunc(s.schedule, s.processPendingBroadcasts); err != nil {
		s.log.Error().Err(err).Str("schedule", s.schedule).Msg("Invalid newsletter schedule, falling back to default")
		_ = scheduler.AddFunc(defaultSchedule, s.processPendingBroadcasts)
	}

	s.log.Info().Msg("Newsletter processor started")
	s.processPendingBroadcasts()
	scheduler.Start()

	<-s.ctx.Done()
	scheduler.Stop()
	s.log.Info().Msg("Newsletter processor stopping")
}

// StopProcessor stops the processor and waits for in-flight broadcasts
func (s *newsletterService) StopProcessor() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.wg.Wait()
	s.running = false
	s.log.Info().Msg("Newsletter processor stopped")
}

// processPendingBroadcasts claims and sends every pending broadcast
func (s *newsletterService) processPendingBroadcasts() {
	// The tick is counted before StopProcessor can reach Wait, or not at all.
	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	broadcasts, err := s.broadcasts.GetPending(s.ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to get pending broadcasts")
		return
	}

	for _, broadcast := range broadcasts {
		// Acquire a slot; blocks while all workers are busy
		select {
		case s.sem <- struct{}{}:
		case <-s.ctx.Done():
			return
		}
		if s.ctx.Err() != nil {
			<-s.sem
			return
		}

		marked, err := s.broadcasts.MarkAsProcessing(s.ctx, broadcast.ID)
		if err != nil || !marked {
			<-s.sem
			continue // claimed by an earlier tick
		}

		s.wg.Add(1)
		go func(b *models.Broadcast) {
			defer s.wg.Done()
			defer func() { <-s.sem }()

			defer func() {
				if r := recover(); r != nil {
					s.log.Error().
						Interface("panic", r).
						Str("broadcast_id", b.ID).
						Msg("Broadcast panicked - recovered")
					s.finish(b, fmt.Errorf("panic: %v", r))
				}
			}()
			s.send(b)
		}(broadcast)
	}
}

// send delivers one broadcast to every active subscriber
func (s *newsletterService) send(b *models.Broadcast) {
	now := time.Now()
	b.Status = models.BroadcastStatusProcessing
	b.StartedAt = &now

	emails, err := s.subscribers.ListActiveEmails(s.ctx)
	if err != nil {
		s.finish(b, fmt.Errorf("failed to list subscribers: %w", err))
		return
	}
	b.TotalRecipients = len(emails)

	log := s.log.With().Str("broadcast_id", b.ID).Logger()
	log.Info().Int("recipients", len(emails)).Msg("Sending broadcast")

	for _, email := range emails {
		if s.ctx.Err() != nil {
			s.finish(b, errProcessorStopped)
			return
		}
		if err := s.mailer.Send(s.ctx, email, b.Subject, b.BodyHTML); err != nil {
			b.FailedCount++
			log.Warn().Err(err).Str("email", email).Msg("Delivery failed")
			continue
		}
		b.SentCount++
	}

	var failure error
	if b.SentCount == 0 && b.FailedCount > 0 {
		failure = errors.New("all deliveries failed")
	}
	s.finish(b, failure)
}

// finish records the outcome. Updates use a fresh context so a broadcast
// interrupted by shutdown still gets its final state.
func (s *newsletterService) finish(b *models.Broadcast, failure error) {
	completed := time.Now()
	b.CompletedAt = &completed
	b.Status = models.BroadcastStatusCompleted
	if failure != nil {
		b.Status = models.BroadcastStatusFailed
		b.ErrorMessage = failure.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.broadcasts.Update(ctx, b); err != nil {
		s.log.Error().Err(err).Str("broadcast_id", b.ID).Msg("Failed to record broadcast result")
		return
	}

	s.log.Info().
		Str("broadcast_id", b.ID).
		Str("status", string(b.Status)).
		Int("sent", b.SentCount).
		Int("failed", b.FailedCount).
		Msg("Broadcast finished")
}
