package models

import (
	"time"
)

// BroadcastStatus represents the status of a newsletter broadcast
type BroadcastStatus string

const (
	BroadcastStatusPending    BroadcastStatus = "pending"
	BroadcastStatusProcessing BroadcastStatus = "processing"
	BroadcastStatusCompleted  BroadcastStatus = "completed"
	BroadcastStatusFailed     BroadcastStatus = "failed"
)

// Broadcast is one newsletter send to every active subscriber
type Broadcast struct {
	ID              string          `json:"id" db:"id"`
	Subject         string          `json:"subject" db:"subject"`
	BodyHTML        string          `json:"body_html" db:"body_html"`
	Status          BroadcastStatus `json:"status" db:"status"`
	TotalRecipients int             `json:"total_recipients" db:"total_recipients"`
	SentCount       int             `json:"sent" db:"sent_count"`
	FailedCount     int             `json:"failed" db:"failed_count"`
	ErrorMessage    string          `json:"error,omitempty" db:"error_message"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	StartedAt       *time.Time      `json:"started_at,omitempty" db:"started_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
}

// BroadcastRequest creates a broadcast
type BroadcastRequest struct {
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
}
