package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/scoutline/scout-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS scans (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	source          TEXT NOT NULL,
	status          TEXT NOT NULL DEFAULT 'queued',
	hot_count       INTEGER NOT NULL DEFAULT 0,
	warm_count      INTEGER NOT NULL DEFAULT 0,
	cold_count      INTEGER NOT NULL DEFAULT 0,
	total_prospects INTEGER NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	completed_at    DATETIME
);

CREATE TABLE IF NOT EXISTS scan_events (
	id         TEXT PRIMARY KEY,
	scan_id    TEXT NOT NULL REFERENCES scans(id),
	stage      TEXT NOT NULL,
	percent    INTEGER NOT NULL,
	message    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS prospects (
	id         TEXT PRIMARY KEY,
	scan_id    TEXT NOT NULL REFERENCES scans(id),
	full_name  TEXT NOT NULL,
	score      REAL NOT NULL,
	bucket     TEXT NOT NULL,
	metadata   TEXT NOT NULL,
	snippet    TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS queue_items (
	id            TEXT PRIMARY KEY,
	kind          TEXT NOT NULL,
	payload       TEXT NOT NULL,
	status        TEXT NOT NULL DEFAULT 'pending',
	priority      INTEGER NOT NULL DEFAULT 0,
	attempts      INTEGER NOT NULL DEFAULT 0,
	max_attempts  INTEGER NOT NULL DEFAULT 3,
	error_message TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	started_at    DATETIME,
	completed_at  DATETIME
);

CREATE INDEX IF NOT EXISTS idx_scans_status ON scans(status);
CREATE INDEX IF NOT EXISTS idx_scans_user_id ON scans(user_id);
CREATE INDEX IF NOT EXISTS idx_scan_events_scan_id ON scan_events(scan_id);
CREATE INDEX IF NOT EXISTS idx_prospects_scan_id ON prospects(scan_id);
CREATE INDEX IF NOT EXISTS idx_queue_items_status_priority ON queue_items(status, priority);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateScan(ctx context.Context, id, userID string, source model.SourceDescriptor) (*model.Scan, error) {
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()

	sourceJSON, err := json.Marshal(source)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal source")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scans (id, user_id, source, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, userID, string(sourceJSON), string(model.ScanStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert scan")
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

func (s *SQLiteStore) GetScan(ctx context.Context, scanID string) (*model.Scan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, source, status, hot_count, warm_count, cold_count, total_prospects,
		        created_at, updated_at, completed_at
		 FROM scans WHERE id = ?`,
		scanID,
	)
	return scanScan(row, scanID)
}

func (s *SQLiteStore) ListScans(ctx context.Context, filter ScanFilter) ([]model.Scan, error) {
	query := `SELECT id, user_id, source, status, hot_count, warm_count, cold_count, total_prospects,
	                 created_at, updated_at, completed_at
	          FROM scans WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, filter.UserID)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list scans")
	}
	defer rows.Close()

	var scans []model.Scan
	for rows.Next() {
		sc, err := scanScan(rows, "")
		if err != nil {
			return nil, err
		}
		scans = append(scans, *sc)
	}
	return scans, eris.Wrap(rows.Err(), "sqlite: list scans iterate")
}

func (s *SQLiteStore) UpdateScanStatus(ctx context.Context, scanID string, status model.ScanStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scans SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), scanID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update scan status %s", scanID)
	}
	return checkRowsAffected(res, "scan", scanID)
}

func (s *SQLiteStore) CompleteScan(ctx context.Context, scanID string, counts model.LeadCounts) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE scans SET status = ?, hot_count = ?, warm_count = ?, cold_count = ?, total_prospects = ?,
		        updated_at = ?, completed_at = ?
		 WHERE id = ?`,
		string(model.ScanStatusCompleted), counts.Hot, counts.Warm, counts.Cold, counts.Total, now, now, scanID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete scan %s", scanID)
	}
	return checkRowsAffected(res, "scan", scanID)
}

func (s *SQLiteStore) FailScan(ctx context.Context, scanID string) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE scans SET status = ?, updated_at = ?, completed_at = ? WHERE id = ?`,
		string(model.ScanStatusFailed), now, now, scanID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail scan %s", scanID)
	}
	return checkRowsAffected(res, "scan", scanID)
}

func (s *SQLiteStore) AppendStatusEvent(ctx context.Context, scanID string, stage model.Stage, message string) (*model.ScanStatusEvent, error) {
	scan, err := s.GetScan(ctx, scanID)
	if err != nil {
		return nil, err
	}
	if scan.Status.Terminal() {
		return nil, eris.Wrapf(ErrScanTerminal, "sqlite: append event to scan %s", scanID)
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

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scan_events (id, scan_id, stage, percent, message, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.ScanID, string(ev.Stage), ev.Percent, ev.Message, ev.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert event for scan %s", scanID)
	}
	return ev, nil
}

func (s *SQLiteStore) LatestStatusEvent(ctx context.Context, scanID string) (*model.ScanStatusEvent, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, scan_id, stage, percent, message, created_at FROM scan_events
		 WHERE scan_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		scanID,
	)
	var ev model.ScanStatusEvent
	err := row.Scan(&ev.ID, &ev.ScanID, &ev.Stage, &ev.Percent, &ev.Message, &ev.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: latest event for scan %s", scanID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest event")
	}
	return &ev, nil
}

func (s *SQLiteStore) ListStatusEvents(ctx context.Context, scanID string) ([]model.ScanStatusEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, scan_id, stage, percent, message, created_at FROM scan_events
		 WHERE scan_id = ? ORDER BY created_at ASC, id ASC`,
		scanID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list events")
	}
	defer rows.Close()

	var events []model.ScanStatusEvent
	for rows.Next() {
		var ev model.ScanStatusEvent
		if err := rows.Scan(&ev.ID, &ev.ScanID, &ev.Stage, &ev.Percent, &ev.Message, &ev.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan event row")
		}
		events = append(events, ev)
	}
	return events, eris.Wrap(rows.Err(), "sqlite: list events iterate")
}

func (s *SQLiteStore) InsertProspect(ctx context.Context, p *model.Prospect) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	metaJSON, err := json.Marshal(p.Metadata)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal prospect metadata")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO prospects (id, scan_id, full_name, score, bucket, metadata, snippet, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ScanID, p.FullName, p.Score, string(p.Bucket), string(metaJSON), p.Snippet, p.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert prospect for scan %s", p.ScanID)
}

func (s *SQLiteStore) GetProspect(ctx context.Context, prospectID string) (*model.Prospect, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, scan_id, full_name, score, bucket, metadata, snippet, created_at
		 FROM prospects WHERE id = ?`,
		prospectID,
	)
	return scanProspect(row, prospectID)
}

func (s *SQLiteStore) ListProspects(ctx context.Context, scanID string) ([]model.Prospect, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, scan_id, full_name, score, bucket, metadata, snippet, created_at
		 FROM prospects WHERE scan_id = ? ORDER BY score DESC, full_name ASC`,
		scanID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list prospects")
	}
	defer rows.Close()

	var prospects []model.Prospect
	for rows.Next() {
		p, err := scanProspect(rows, "")
		if err != nil {
			return nil, err
		}
		prospects = append(prospects, *p)
	}
	return prospects, eris.Wrap(rows.Err(), "sqlite: list prospects iterate")
}

func (s *SQLiteStore) UpdateProspectScore(ctx context.Context, prospectID string, score float64, bucket model.Bucket, meta model.ProspectMetadata) error {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal prospect metadata")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE prospects SET score = ?, bucket = ?, metadata = ? WHERE id = ?`,
		score, string(bucket), string(metaJSON), prospectID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update prospect score %s", prospectID)
	}
	return checkRowsAffected(res, "prospect", prospectID)
}

func (s *SQLiteStore) Enqueue(ctx context.Context, kind string, payload json.RawMessage, priority, maxAttempts int) (*model.QueueItem, error) {
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

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO queue_items (id, kind, payload, status, priority, max_attempts, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Kind, string(item.Payload), string(item.Status), item.Priority, item.MaxAttempts, now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: enqueue %s", kind)
	}
	return item, nil
}

// ClaimQueueItems moves up to limit pending items to processing. The claim is
// a conditional update per candidate id, so concurrent claimers never take
// the same item twice.
func (s *SQLiteStore) ClaimQueueItems(ctx context.Context, limit, minPriority int) ([]model.QueueItem, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM queue_items
		 WHERE status = ? AND attempts < max_attempts AND priority >= ?
		 ORDER BY priority DESC, created_at ASC LIMIT ?`,
		string(model.QueueStatusPending), minPriority, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: select claimable")
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, eris.Wrap(err, "sqlite: scan claimable id")
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: select claimable iterate")
	}

	now := time.Now().UTC()
	var claimed []model.QueueItem
	for _, id := range ids {
		res, err := s.db.ExecContext(ctx,
			`UPDATE queue_items SET status = ?, attempts = attempts + 1, started_at = ?, updated_at = ?
			 WHERE id = ? AND status = ? AND attempts < max_attempts`,
			string(model.QueueStatusProcessing), now, now, id, string(model.QueueStatusPending),
		)
		if err != nil {
			return claimed, eris.Wrapf(err, "sqlite: claim item %s", id)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return claimed, eris.Wrap(err, "sqlite: claim rows affected")
		}
		if n == 0 {
			// Lost the race to another claimer.
			continue
		}
		item, err := s.GetQueueItem(ctx, id)
		if err != nil {
			return claimed, err
		}
		claimed = append(claimed, *item)
	}
	return claimed, nil
}

func (s *SQLiteStore) CompleteQueueItem(ctx context.Context, itemID string) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE queue_items SET status = ?, error_message = '', completed_at = ?, updated_at = ? WHERE id = ?`,
		string(model.QueueStatusCompleted), now, now, itemID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete item %s", itemID)
	}
	return checkRowsAffected(res, "queue item", itemID)
}

func (s *SQLiteStore) ReleaseQueueItem(ctx context.Context, itemID, errMsg string, exhausted bool) error {
	now := time.Now().UTC()

	status := model.QueueStatusPending
	var completedAt any
	if exhausted {
		status = model.QueueStatusFailed
		completedAt = now
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE queue_items SET status = ?, error_message = ?, started_at = NULL, completed_at = ?, updated_at = ?
		 WHERE id = ?`,
		string(status), errMsg, completedAt, now, itemID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: release item %s", itemID)
	}
	return checkRowsAffected(res, "queue item", itemID)
}

func (s *SQLiteStore) GetQueueItem(ctx context.Context, itemID string) (*model.QueueItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, payload, status, priority, attempts, max_attempts, error_message,
		        created_at, updated_at, started_at, completed_at
		 FROM queue_items WHERE id = ?`,
		itemID,
	)

	var q model.QueueItem
	var payload string
	var startedAt, completedAt sql.NullTime
	err := row.Scan(&q.ID, &q.Kind, &payload, &q.Status, &q.Priority, &q.Attempts, &q.MaxAttempts,
		&q.ErrorMessage, &q.CreatedAt, &q.UpdatedAt, &startedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: queue item %s", itemID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get queue item")
	}
	q.Payload = json.RawMessage(payload)
	if startedAt.Valid {
		t := startedAt.Time
		q.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		q.CompletedAt = &t
	}
	return &q, nil
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanScan(row scannable, id string) (*model.Scan, error) {
	var sc model.Scan
	var sourceJSON string
	var completedAt sql.NullTime

	err := row.Scan(&sc.ID, &sc.UserID, &sourceJSON, &sc.Status,
		&sc.Counts.Hot, &sc.Counts.Warm, &sc.Counts.Cold, &sc.Counts.Total,
		&sc.CreatedAt, &sc.UpdatedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "scan %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan row")
	}

	if err := json.Unmarshal([]byte(sourceJSON), &sc.Source); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal source")
	}
	if completedAt.Valid {
		t := completedAt.Time
		sc.CompletedAt = &t
	}
	return &sc, nil
}

func scanProspect(row scannable, id string) (*model.Prospect, error) {
	var p model.Prospect
	var metaJSON string
	var snippet sql.NullString

	err := row.Scan(&p.ID, &p.ScanID, &p.FullName, &p.Score, &p.Bucket, &metaJSON, &snippet, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "prospect %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: prospect row")
	}

	if err := json.Unmarshal([]byte(metaJSON), &p.Metadata); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal metadata")
	}
	p.Snippet = snippet.String
	return &p, nil
}
