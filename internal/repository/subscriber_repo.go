package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/voxo-cms/internal/database"
	"github.com/voxo-cms/internal/models"
)

// subscriberRepo is the concrete implementation of SubscriberRepository
type subscriberRepo struct {
	db *database.DB
}

// NewSubscriberRepo creates a new subscriber repository
func NewSubscriberRepo(db *database.DB) SubscriberRepository {
	return &subscriberRepo{db: db}
}

// Create inserts a new subscriber
func (r *subscriberRepo) Create(ctx context.Context, s *models.Subscriber) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO subscribers (id, email, status, created_at) VALUES ($1, $2, $3, $4)",
		s.ID, s.Email, s.Status, s.CreatedAt,
	)
	return translateError(err)
}

// GetByEmail retrieves a subscriber by email
func (r *subscriberRepo) GetByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	var s models.Subscriber
	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, status, created_at FROM subscribers WHERE email = $1", email,
	).Scan(&s.ID, &s.Email, &s.Status, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns all subscribers, newest first
func (r *subscriberRepo) List(ctx context.Context) ([]models.Subscriber, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, email, status, created_at FROM subscribers ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subscribers := []models.Subscriber{}
	for rows.Next() {
		var s models.Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.Status, &s.CreatedAt); err != nil {
			return nil, err
		}
		subscribers = append(subscribers, s)
	}
	return subscribers, rows.Err()
}

// Delete removes a subscriber
func (r *subscriberRepo) Delete(ctx context.Context, id string) (bool, error) {
	return affected(r.db.ExecContext(ctx, "DELETE FROM subscribers WHERE id = $1", id))
}

// UpdateStatus sets the status of the subscriber with email
func (r *subscriberRepo) UpdateStatus(ctx context.Context, email, status string) (bool, error) {
	return affected(r.db.ExecContext(ctx, "UPDATE subscribers SET status = $1 WHERE email = $2", status, email))
}

// ListActiveEmails returns the addresses of active subscribers
func (r *subscriberRepo) ListActiveEmails(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT email FROM subscribers WHERE status = $1 ORDER BY created_at", models.SubscriberActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// Count returns the total number of subscribers
func (r *subscriberRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "subscribers")
}
