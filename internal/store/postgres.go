package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/scoutline/scout-cli/internal/db"
	"github.com/scoutline/scout-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_scan":        `INSERT INTO scans (id, user_id, source, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
	"get_scan":           `SELECT id, user_id, source, status, hot_count, warm_count, cold_count, total_prospects, created_at, updated_at, completed_at FROM scans WHERE id = $1`,
	"update_scan_status": `UPDATE scans SET status = $1, updated_at = $2 WHERE id = $3`,
	"insert_event":       `INSERT INTO scan_events (id, scan_id, stage, percent, message, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
	"latest_event":       `SELECT id, scan_id, stage, percent, message, created_at FROM scan_events WHERE scan_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`,
	"insert_prospect":    `INSERT INTO prospects (id, scan_id, full_name, score, bucket, metadata, snippet, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
	"list_prospects":     `SELECT id, scan_id, full_name, score, bucket, metadata, snippet, created_at FROM prospects WHERE scan_id = $1 ORDER BY score DESC, full_name ASC`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS scans (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	user_id         TEXT NOT NULL,
	source          JSONB NOT NULL,
	status          TEXT NOT NULL DEFAULT 'queued',
	hot_count       INTEGER NOT NULL DEFAULT 0,
	warm_count      INTEGER NOT NULL DEFAULT 0,
	cold_count      INTEGER NOT NULL DEFAULT 0,
	total_prospects INTEGER NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at    TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS scan_events (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	scan_id    TEXT NOT NULL REFERENCES scans(id),
	stage      TEXT NOT NULL,
	percent    INTEGER NOT NULL,
	message    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS prospects (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	scan_id    TEXT NOT NULL REFERENCES scans(id),
	full_name  TEXT NOT NULL,
	score      DOUBLE PRECISION NOT NULL,
	bucket     TEXT NOT NULL,
	metadata   JSONB NOT NULL,
	snippet    TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS queue_items (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	kind          TEXT NOT NULL,
	payload       JSONB NOT NULL,
	status        TEXT NOT NULL DEFAULT 'pending',
	priority      INTEGER NOT NULL DEFAULT 0,
	attempts      INTEGER NOT NULL DEFAULT 0,
	max_attempts  INTEGER NOT NULL DEFAULT 3,
	error_message TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	started_at    TIMESTAMPTZ,
	completed_at  TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_scans_status ON scans(status);
CREATE INDEX IF NOT EXISTS idx_scans_user_id ON scans(user_id);
CREATE INDEX IF NOT EXISTS idx_scan_events_scan_id ON scan_events(scan_id);
CREATE INDEX IF NOT EXISTS idx_prospects_scan_id ON prospects(scan_id);
CREATE INDEX IF NOT EXISTS idx_queue_items_status_priority ON queue_items(status, priority DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// Pool returns the underlying database pool for subsystems that need direct
// query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

func (s *PostgresStore) CreateScan(ctx context.Context, id, userID string, source model.SourceDescriptor) (*model.Scan, error) {
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()

	sourceJSON, err := json.Marshal(source)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal source")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO scans (id, user_id, source, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, userID, sourceJSON, string(model.ScanStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert scan")
	}

	return &model.Scan{
		ID:        id,
		UserID:    userID,
		Source:    source,
		Status:    model.ScanStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) GetScan(ctx context.Context, scanID string) (*model.Scan, error) {
	var sc model.Scan
	var sourceJSON []byte
	var completedAt *time.Time

	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, source, status, hot_count, warm_count, cold_count, total_prospects,
		        created_at, updated_at, completed_at
		 FROM scans WHERE id = $1`,
		scanID,
	).Scan(&sc.ID, &sc.UserID, &sourceJSON, &sc.Status,
		&sc.Counts.Hot, &sc.Counts.Warm, &sc.Counts.Cold, &sc.Counts.Total,
		&sc.CreatedAt, &sc.UpdatedAt, &completedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "scan %s", scanID)
		}
		return nil, eris.Wrapf(err, "postgres: get scan %s", scanID)
	}

	if err := json.Unmarshal(sourceJSON, &sc.Source); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal source")
	}
	sc.CompletedAt = completedAt
	return &sc, nil
}

func (s *PostgresStore) ListScans(ctx context.Context, filter ScanFilter) ([]model.Scan, error) {
	query := `SELECT id, user_id, source, status, hot_count, warm_count, cold_count, total_prospects,
	                 created_at, updated_at, completed_at
	          FROM scans WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.UserID != "" {
		query += fmt.Sprintf(` AND user_id = $%d`, argIdx)
		args = append(args, filter.UserID)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list scans")
	}
	defer rows.Close()

	var scans []model.Scan
	for rows.Next() {
		var sc model.Scan
		var sourceJSON []byte
		var completedAt *time.Time

		if err := rows.Scan(&sc.ID, &sc.UserID, &sourceJSON, &sc.Status,
			&sc.Counts.Hot, &sc.Counts.Warm, &sc.Counts.Cold, &sc.Counts.Total,
			&sc.CreatedAt, &sc.UpdatedAt, &completedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan row")
		}
		if err := json.Unmarshal(sourceJSON, &sc.Source); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal source")
		}
		sc.CompletedAt = completedAt
		scans = append(scans, sc)
	}
	return scans, eris.Wrap(rows.Err(), "postgres: list scans iterate")
}

func (s *PostgresStore) UpdateScanStatus(ctx context.Context, scanID string, status model.ScanStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE scans SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), scanID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update scan status %s", scanID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "scan %s", scanID)
	}
	return nil
}

func (s *PostgresStore) CompleteScan(ctx context.Context, scanID string, counts model.LeadCounts) error {
	now := time.Now().UTC()
	tag, err := s.pool.Exec(ctx,
		`UPDATE scans SET status = $1, hot_count = $2, warm_count = $3, cold_count = $4, total_prospects = $5,
		        updated_at = $6, completed_at = $6
		 WHERE id = $7`,
		string(model.ScanStatusCompleted), counts.Hot, counts.Warm, counts.Cold, counts.Total, now, scanID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete scan %s", scanID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "scan %s", scanID)
	}
	return nil
}

func (s *PostgresStore) FailScan(ctx context.Context, scanID string) error {
	now := time.Now().UTC()
	tag, err := s.pool.Exec(ctx,
		`UPDATE scans SET status = $1, updated_at = $2, completed_at = $2 WHERE id = $3`,
		string(model.ScanStatusFailed), now, scanID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail scan %s", scanID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "scan %s", scanID)
	}
	return nil
}

func (s *PostgresStore) AppendStatusEvent(ctx context.Context, scanID string, stage model.Stage, message string) (*model.ScanStatusEvent, error) {
	scan, err := s.GetScan(ctx, scanID)
	if err != nil {
		return nil, err
	}
	if scan.Status.Terminal() {
		return nil, eris.Wrapf(ErrScanTerminal, "postgres: append event to scan %s", scanID)
	}

	if message == "" {
		message = stage.DefaultMessage()
	}
	ev := &model.ScanStatusEvent{
		ID:        uuid.New().String(),
		ScanID:    scanID,
		Stage:     stage,
		Percent:   stage.Percent(),
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO scan_events (id, scan_id, stage, percent, message, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		ev.ID, ev.ScanID, string(ev.Stage), ev.Percent, ev.Message, ev.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert event for scan %s", scanID)
	}
	return ev, nil
}

func (s *PostgresStore) LatestStatusEvent(ctx context.Context, scanID string) (*model.ScanStatusEvent, error) {
	var ev model.ScanStatusEvent
	err := s.pool.QueryRow(ctx,
		`SELECT id, scan_id, stage, percent, message, created_at FROM scan_events
		 WHERE scan_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`,
		scanID,
	).Scan(&ev.ID, &ev.ScanID, &ev.Stage, &ev.Percent, &ev.Message, &ev.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "latest event for scan %s", scanID)
		}
		return nil, eris.Wrap(err, "postgres: latest event")
	}
	return &ev, nil
}

func (s *PostgresStore) ListStatusEvents(ctx context.Context, scanID string) ([]model.ScanStatusEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, scan_id, stage, percent, message, created_at FROM scan_events
		 WHERE scan_id = $1 ORDER BY created_at ASC, id ASC`,
		scanID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list events")
	}
	defer rows.Close()

	var events []model.ScanStatusEvent
	for rows.Next() {
		var ev model.ScanStatusEvent
		if err := rows.Scan(&ev.ID, &ev.ScanID, &ev.Stage, &ev.Percent, &ev.Message, &ev.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan event row")
		}
		events = append(events, ev)
	}
	return events, eris.Wrap(rows.Err(), "postgres: list events iterate")
}

func (s *PostgresStore) InsertProspect(ctx context.Context, p *model.Prospect) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	metaJSON, err := json.Marshal(p.Metadata)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal prospect metadata")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO prospects (id, scan_id, full_name, score, bucket, metadata, snippet, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.ScanID, p.FullName, p.Score, string(p.Bucket), metaJSON, p.Snippet, p.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert prospect for scan %s", p.ScanID)
}

func (s *PostgresStore) GetProspect(ctx context.Context, prospectID string) (*model.Prospect, error) {
	var p model.Prospect
	var metaJSON []byte
	var snippet *string

	err := s.pool.QueryRow(ctx,
		`SELECT id, scan_id, full_name, score, bucket, metadata, snippet, created_at
		 FROM prospects WHERE id = $1`,
		prospectID,
	).Scan(&p.ID, &p.ScanID, &p.FullName, &p.Score, &p.Bucket, &metaJSON, &snippet, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "prospect %s", prospectID)
		}
		return nil, eris.Wrapf(err, "postgres: get prospect %s", prospectID)
	}

	if err := json.Unmarshal(metaJSON, &p.Metadata); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal metadata")
	}
	if snippet != nil {
		p.Snippet = *snippet
	}
	return &p, nil
}

func (s *PostgresStore) ListProspects(ctx context.Context, scanID string) ([]model.Prospect, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, scan_id, full_name, score, bucket, metadata, snippet, created_at
		 FROM prospects WHERE scan_id = $1 ORDER BY score DESC, full_name ASC`,
		scanID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list prospects")
	}
	defer rows.Close()

	var prospects []model.Prospect
	for rows.Next() {
		var p model.Prospect
		var metaJSON []byte
		var snippet *string

		if err := rows.Scan(&p.ID, &p.ScanID, &p.FullName, &p.Score, &p.Bucket, &metaJSON, &snippet, &p.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: prospect row")
		}
		if err := json.Unmarshal(metaJSON, &p.Metadata); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal metadata")
		}
		if snippet != nil {
			p.Snippet = *snippet
		}
		prospects = append(prospects, p)
	}
	return prospects, eris.Wrap(rows.Err(), "postgres: list prospects iterate")
}

func (s *PostgresStore) UpdateProspectScore(ctx context.Context, prospectID string, score float64, bucket model.Bucket, meta model.ProspectMetadata) error {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal prospect metadata")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE prospects SET score = $1, bucket = $2, metadata = $3 WHERE id = $4`,
		score, string(bucket), metaJSON, prospectID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update prospect score %s", prospectID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "prospect %s", prospectID)
	}
	return nil
}

func (s *PostgresStore) Enqueue(ctx context.Context, kind string, payload json.RawMessage, priority, maxAttempts int) (*model.QueueItem, error) {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	now := time.Now().UTC()
	item := &model.QueueItem{
		ID:          uuid.New().String(),
		Kind:        kind,
		Payload:     payload,
		Status:      model.QueueStatusPending,
		Priority:    priority,
		MaxAttempts: maxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO queue_items (id, kind, payload, status, priority, max_attempts, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		item.ID, item.Kind, []byte(item.Payload), string(item.Status), item.Priority, item.MaxAttempts, now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: enqueue %s", kind)
	}
	return item, nil
}

// ClaimQueueItems claims pending rows with FOR UPDATE SKIP LOCKED so
// concurrent workers never take the same item twice.
func (s *PostgresStore) ClaimQueueItems(ctx context.Context, limit, minPriority int) ([]model.QueueItem, error) {
	if limit <= 0 {
		limit = 10
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin claim tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT id, kind, payload, status, priority, attempts, max_attempts, error_message,
		       created_at, updated_at, started_at, completed_at
		FROM queue_items
		WHERE status = 'pending' AND attempts < max_attempts AND priority >= $1
		ORDER BY priority DESC, created_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED`,
		minPriority, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: claim rows")
	}

	var claimed []model.QueueItem
	for rows.Next() {
		var q model.QueueItem
		var payload []byte
		if err := rows.Scan(&q.ID, &q.Kind, &payload, &q.Status, &q.Priority, &q.Attempts, &q.MaxAttempts,
			&q.ErrorMessage, &q.CreatedAt, &q.UpdatedAt, &q.StartedAt, &q.CompletedAt); err != nil {
			rows.Close()
			return nil, eris.Wrap(err, "postgres: scan claimed row")
		}
		q.Payload = json.RawMessage(payload)
		claimed = append(claimed, q)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate claimed rows")
	}

	now := time.Now().UTC()
	for i := range claimed {
		if _, err := tx.Exec(ctx,
			`UPDATE queue_items SET status = $1, attempts = attempts + 1, started_at = $2, updated_at = $2
			 WHERE id = $3`,
			string(model.QueueStatusProcessing), now, claimed[i].ID,
		); err != nil {
			return nil, eris.Wrapf(err, "postgres: mark claimed %s", claimed[i].ID)
		}
		claimed[i].Status = model.QueueStatusProcessing
		claimed[i].Attempts++
		t := now
		claimed[i].StartedAt = &t
		claimed[i].UpdatedAt = now
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit claim tx")
	}
	return claimed, nil
}

func (s *PostgresStore) CompleteQueueItem(ctx context.Context, itemID string) error {
	now := time.Now().UTC()
	tag, err := s.pool.Exec(ctx,
		`UPDATE queue_items SET status = $1, error_message = '', completed_at = $2, updated_at = $2 WHERE id = $3`,
		string(model.QueueStatusCompleted), now, itemID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete item %s", itemID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "queue item %s", itemID)
	}
	return nil
}

func (s *PostgresStore) ReleaseQueueItem(ctx context.Context, itemID, errMsg string, exhausted bool) error {
	now := time.Now().UTC()

	status := model.QueueStatusPending
	var completedAt *time.Time
	if exhausted {
		status = model.QueueStatusFailed
		completedAt = &now
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE queue_items SET status = $1, error_message = $2, started_at = NULL, completed_at = $3, updated_at = $4
		 WHERE id = $5`,
		string(status), errMsg, completedAt, now, itemID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: release item %s", itemID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "queue item %s", itemID)
	}
	return nil
}

func (s *PostgresStore) GetQueueItem(ctx context.Context, itemID string) (*model.QueueItem, error) {
	var q model.QueueItem
	var payload []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, kind, payload, status, priority, attempts, max_attempts, error_message,
		        created_at, updated_at, started_at, completed_at
		 FROM queue_items WHERE id = $1`,
		itemID,
	).Scan(&q.ID, &q.Kind, &payload, &q.Status, &q.Priority, &q.Attempts, &q.MaxAttempts,
		&q.ErrorMessage, &q.CreatedAt, &q.UpdatedAt, &q.StartedAt, &q.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "queue item %s", itemID)
		}
		return nil, eris.Wrapf(err, "postgres: get queue item %s", itemID)
	}
	q.Payload = json.RawMessage(payload)
	return &q, nil
}
