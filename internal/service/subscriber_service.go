package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/voxo-cms/internal/models"
	"github.com/voxo-cms/internal/repository"
	"github.com/voxo-cms/internal/validation"
)

// subscriberService is the concrete implementation of SubscriberService
type subscriberService struct {
	subscribers repository.SubscriberRepository
	validator   *validation.Validator
	log         zerolog.Logger
}

func newSubscriberService(subscribers repository.SubscriberRepository, log zerolog.Logger) *subscriberService {
	return &subscriberService{
		subscribers: subscribers,
		validator:   validation.NewValidator(),
		log:         log.With().Str("service", "subscriber").Logger(),
	}
}

// Subscribe registers email. An active address is a conflict; an
// unsubscribed one is reactivated.
func (s *subscriberService) Subscribe(ctx context.Context, email string) (*models.Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if errs := s.validator.ValidateEmail(email); len(errs) > 0 {
		return nil, invalid(errs)
	}

	existing, err := s.subscribers.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Status == models.SubscriberActive {
			return nil, conflict(repository.ErrDuplicate, "subscriber")
		}
		if _, err := s.subscribers.UpdateStatus(ctx, email, models.SubscriberActive); err != nil {
			return nil, err
		}
		existing.Status = models.SubscriberActive
		s.log.Info().Str("subscriber_id", existing.ID).Msg("Subscriber reactivated")
		return existing, nil
	}

	subscriber := &models.Subscriber{
		ID:        uuid.New().String(),
		Email:     email,
		Status:    models.SubscriberActive,
		CreatedAt: time.Now(),
	}
	if err := s.subscribers.Create(ctx, subscriber); err != nil {
		return nil, conflict(err, "subscriber")
	}

	s.log.Info().Str("subscriber_id", subscriber.ID).Msg("Subscriber added")
	return subscriber, nil
}

func (s *subscriberService) Unsubscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if errs := s.validator.ValidateEmail(email); len(errs) > 0 {
		return invalid(errs)
	}

	ok, err := s.subscribers.UpdateStatus(ctx, email, models.SubscriberUnsubscribed)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *subscriberService) List(ctx context.Context) ([]models.Subscriber, error) {
	subscribers, err := s.subscribers.List(ctx)
	if err != nil {
		return nil, err
	}
	if subscribers == nil {
		subscribers = []models.Subscriber{}
	}
	return subscribers, nil
}

func (s *subscriberService) Delete(ctx context.Context, id string) error {
	if !validation.IsValidUUID(id) {
		return ErrNotFound
	}

	ok, err := s.subscribers.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
