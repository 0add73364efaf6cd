package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/scoutline/scout-cli/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrScanTerminal is returned when a mutation targets a scan that already
// reached completed or failed; terminal scans accept no further events.
var ErrScanTerminal = errors.New("scan is terminal")

// ScanFilter specifies criteria for listing scans.
type ScanFilter struct {
	Status model.ScanStatus `json:"status,omitempty"`
	UserID string           `json:"user_id,omitempty"`
	Limit  int              `json:"limit,omitempty"`
	Offset int              `json:"offset,omitempty"`
}

// Store defines the persistence interface for the scan pipeline, prospect
// records, and the generic retry queue. Implementations are passed into
// components at construction; there is no shared global client.
type Store interface {
	// Scans
	CreateScan(ctx context.Context, id, userID string, source model.SourceDescriptor) (*model.Scan, error)
	GetScan(ctx context.Context, scanID string) (*model.Scan, error)
	ListScans(ctx context.Context, filter ScanFilter) ([]model.Scan, error)
	UpdateScanStatus(ctx context.Context, scanID string, status model.ScanStatus) error
	CompleteScan(ctx context.Context, scanID string, counts model.LeadCounts) error
	FailScan(ctx context.Context, scanID string) error

	// Status events (append-only)
	AppendStatusEvent(ctx context.Context, scanID string, stage model.Stage, message string) (*model.ScanStatusEvent, error)
	LatestStatusEvent(ctx context.Context, scanID string) (*model.ScanStatusEvent, error)
	ListStatusEvents(ctx context.Context, scanID string) ([]model.ScanStatusEvent, error)

	// Prospects
	InsertProspect(ctx context.Context, p *model.Prospect) error
	GetProspect(ctx context.Context, prospectID string) (*model.Prospect, error)
	ListProspects(ctx context.Context, scanID string) ([]model.Prospect, error)
	UpdateProspectScore(ctx context.Context, prospectID string, score float64, bucket model.Bucket, meta model.ProspectMetadata) error

	// Retry queue
	Enqueue(ctx context.Context, kind string, payload json.RawMessage, priority, maxAttempts int) (*model.QueueItem, error)
	ClaimQueueItems(ctx context.Context, limit, minPriority int) ([]model.QueueItem, error)
	CompleteQueueItem(ctx context.Context, itemID string) error
	ReleaseQueueItem(ctx context.Context, itemID, errMsg string, exhausted bool) error
	GetQueueItem(ctx context.Context, itemID string) (*model.QueueItem, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
