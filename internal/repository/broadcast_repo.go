package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/voxo-cms/internal/database"
	"github.com/voxo-cms/internal/models"
)

const broadcastColumns = `id, subject, body_html, status, total_recipients, sent_count, failed_count,
	error_message, created_at, started_at, completed_at`

// broadcastRepo is the concrete implementation of BroadcastRepository
type broadcastRepo struct {
	db *database.DB
}

// NewBroadcastRepo creates a new broadcast repository
func NewBroadcastRepo(db *database.DB) BroadcastRepository {
	return &broadcastRepo{db: db}
}

func scanBroadcast(row rowScanner) (*models.Broadcast, error) {
	var b models.Broadcast
	var errorMessage sql.NullString
	var startedAt, completedAt sql.NullTime

	err := row.Scan(
		&b.ID, &b.Subject, &b.BodyHTML, &b.Status, &b.TotalRecipients, &b.SentCount, &b.FailedCount,
		&errorMessage, &b.CreatedAt, &startedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	b.ErrorMessage = errorMessage.String
	if startedAt.Valid {
		b.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		b.CompletedAt = &completedAt.Time
	}
	return &b, nil
}

// Create inserts a new broadcast
func (r *broadcastRepo) Create(ctx context.Context, b *models.Broadcast) error {
	query := `
		INSERT INTO broadcasts (id, subject, body_html, status, total_recipients, sent_count, failed_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.Subject, b.BodyHTML, b.Status, b.TotalRecipients, b.SentCount, b.FailedCount, b.CreatedAt,
	)
	return err
}

// Update saves the progress of a broadcast
func (r *broadcastRepo) Update(ctx context.Context, b *models.Broadcast) error {
	query := `
		UPDATE broadcasts SET
			status = $1, total_recipients = $2, sent_count = $3, failed_count = $4,
			error_message = $5, started_at = $6, completed_at = $7
		WHERE id = $8
	`
	_, err := r.db.ExecContext(ctx, query,
		b.Status, b.TotalRecipients, b.SentCount, b.FailedCount,
		nullString(b.ErrorMessage), b.StartedAt, b.CompletedAt, b.ID,
	)
	return err
}

// GetByID retrieves a broadcast by ID
func (r *broadcastRepo) GetByID(ctx context.Context, id string) (*models.Broadcast, error) {
	b, err := scanBroadcast(r.db.QueryRowContext(ctx, "SELECT "+broadcastColumns+" FROM broadcasts WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// List returns the most recent broadcasts
func (r *broadcastRepo) List(ctx context.Context, limit int) ([]models.Broadcast, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+broadcastColumns+" FROM broadcasts ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	broadcasts := []models.Broadcast{}
	for rows.Next() {
		b, err := scanBroadcast(rows)
		if err != nil {
			return nil, err
		}
		broadcasts = append(broadcasts, *b)
	}
	return broadcasts, rows.Err()
}

// GetPending retrieves broadcasts waiting to be sent, oldest first
func (r *broadcastRepo) GetPending(ctx context.Context) ([]*models.Broadcast, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+broadcastColumns+" FROM broadcasts WHERE status = 'pending' ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var broadcasts []*models.Broadcast
	for rows.Next() {
		b, err := scanBroadcast(rows)
		if err != nil {
			continue
		}
		broadcasts = append(broadcasts, b)
	}
	return broadcasts, rows.Err()
}

// MarkAsProcessing atomically claims a pending broadcast
func (r *broadcastRepo) MarkAsProcessing(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE broadcasts SET status = 'processing', started_at = $1
		WHERE id = $2 AND status = 'pending'
	`
	return affected(r.db.ExecContext(ctx, query, time.Now(), id))
}
