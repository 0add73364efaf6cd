package model

import (
	"encoding/json"
	"time"
)

// QueueStatus represents the lifecycle state of a queue item.
type QueueStatus string

const (
	QueueStatusPending    QueueStatus = "pending"
	QueueStatusProcessing QueueStatus = "processing"
	QueueStatusCompleted  QueueStatus = "completed"
	QueueStatusFailed     QueueStatus = "failed"
)

// QueueItem is a unit of retryable background work, distinct from a scan.
// Invariant: Attempts never exceeds MaxAttempts; once they are equal and the
// last attempt failed, the item is terminally failed.
type QueueItem struct {
	ID           string          `json:"id"`
	Kind         string          `json:"kind"`
	Payload      json.RawMessage `json:"payload"`
	Status       QueueStatus     `json:"status"`
	Priority     int             `json:"priority"`
	Attempts     int             `json:"attempts"`
	MaxAttempts  int             `json:"max_attempts"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

// Exhausted reports whether the item has used up its attempt budget.
func (q *QueueItem) Exhausted() bool {
	return q.Attempts >= q.MaxAttempts
}
