package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutline/scout-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func textSource() model.SourceDescriptor {
	return model.SourceDescriptor{Type: model.SourceTypeText}
}

// --- Scans ---

func TestSQLite_CreateScan_And_GetScan(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	scan, err := st.CreateScan(ctx, "", "user-1", textSource())
	require.NoError(t, err)
	assert.NotEmpty(t, scan.ID)
	assert.Equal(t, model.ScanStatusQueued, scan.Status)

	fetched, err := st.GetScan(ctx, scan.ID)
	require.NoError(t, err)
	assert.Equal(t, scan.ID, fetched.ID)
	assert.Equal(t, "user-1", fetched.UserID)
	assert.Equal(t, model.SourceTypeText, fetched.Source.Type)
	assert.Nil(t, fetched.CompletedAt)
}

func TestSQLite_CreateScan_ExplicitID(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	scan, err := st.CreateScan(ctx, "scan-abc", "user-1", textSource())
	require.NoError(t, err)
	assert.Equal(t, "scan-abc", scan.ID)
}

func TestSQLite_GetScan_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetScan(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLite_CompleteScan_SetsCountsAndTimestamp(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	scan, err := st.CreateScan(ctx, "", "user-1", textSource())
	require.NoError(t, err)

	err = st.CompleteScan(ctx, scan.ID, model.LeadCounts{Hot: 2, Warm: 3, Cold: 1, Total: 6})
	require.NoError(t, err)

	fetched, err := st.GetScan(ctx, scan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ScanStatusCompleted, fetched.Status)
	assert.Equal(t, 2, fetched.Counts.Hot)
	assert.Equal(t, 3, fetched.Counts.Warm)
	assert.Equal(t, 1, fetched.Counts.Cold)
	assert.Equal(t, 6, fetched.Counts.Total)
	assert.NotNil(t, fetched.CompletedAt)
}

func TestSQLite_FailScan(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	scan, err := st.CreateScan(ctx, "", "user-1", textSource())
	require.NoError(t, err)

	require.NoError(t, st.FailScan(ctx, scan.ID))

	fetched, err := st.GetScan(ctx, scan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ScanStatusFailed, fetched.Status)
}

func TestSQLite_ListScans_FilterByStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	done, err := st.CreateScan(ctx, "", "user-1", textSource())
	require.NoError(t, err)
	require.NoError(t, st.CompleteScan(ctx, done.ID, model.LeadCounts{}))

	_, err = st.CreateScan(ctx, "", "user-1", textSource())
	require.NoError(t, err)

	scans, err := st.ListScans(ctx, ScanFilter{Status: model.ScanStatusCompleted, Limit: 10})
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, done.ID, scans[0].ID)
}

func TestSQLite_ListScans_FilterByUser(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.CreateScan(ctx, "", "user-a", textSource())
	require.NoError(t, err)
	_, err = st.CreateScan(ctx, "", "user-b", textSource())
	require.NoError(t, err)

	scans, err := st.ListScans(ctx, ScanFilter{UserID: "user-a", Limit: 10})
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, "user-a", scans[0].UserID)
}

// --- Status events ---

func TestSQLite_AppendStatusEvent_AndLatest(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	scan, err := st.CreateScan(ctx, "", "user-1", textSource())
	require.NoError(t, err)

	ev, err := st.AppendStatusEvent(ctx, scan.ID, model.StageExtractingText, "")
	require.NoError(t, err)
	assert.Equal(t, 10, ev.Percent)
	assert.Equal(t, "Extracting text from source", ev.Message)

	_, err = st.AppendStatusEvent(ctx, scan.ID, model.StageDetectingNames, "")
	require.NoError(t, err)

	latest, err := st.LatestStatusEvent(ctx, scan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StageDetectingNames, latest.Stage)
	assert.Equal(t, 40, latest.Percent)
}

func TestSQLite_AppendStatusEvent_TerminalScanRejected(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	scan, err := st.CreateScan(ctx, "", "user-1", textSource())
	require.NoError(t, err)
	require.NoError(t, st.CompleteScan(ctx, scan.ID, model.LeadCounts{}))

	_, err = st.AppendStatusEvent(ctx, scan.ID, model.StageScoringProspects, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrScanTerminal))
}

func TestSQLite_ListStatusEvents_Ordered(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	scan, err := st.CreateScan(ctx, "", "user-1", textSource())
	require.NoError(t, err)

	stages := []model.Stage{model.StageExtractingText, model.StageDetectingNames, model.StageScoringProspects}
	for _, stage := range stages {
		_, err := st.AppendStatusEvent(ctx, scan.ID, stage, "")
		require.NoError(t, err)
	}

	events, err := st.ListStatusEvents(ctx, scan.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i, stage := range stages {
		assert.Equal(t, stage, events[i].Stage)
	}
}

// --- Prospects ---

func TestSQLite_InsertAndListProspects_ScoreDescending(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	scan, err := st.CreateScan(ctx, "", "user-1", textSource())
	require.NoError(t, err)

	for _, p := range []struct {
		name  string
		score float64
	}{
		{"Warm Person", 55},
		{"Hot Person", 88},
		{"Cold Person", 12},
	} {
		err := st.InsertProspect(ctx, &model.Prospect{
			ScanID:   scan.ID,
			FullName: p.name,
			Score:    p.score,
			Bucket:   model.BucketFor(p.score),
			Metadata: model.ProspectMetadata{Bucket: model.BucketFor(p.score)},
		})
		require.NoError(t, err)
	}

	prospects, err := st.ListProspects(ctx, scan.ID)
	require.NoError(t, err)
	require.Len(t, prospects, 3)
	assert.Equal(t, "Hot Person", prospects[0].FullName)
	assert.Equal(t, "Warm Person", prospects[1].FullName)
	assert.Equal(t, "Cold Person", prospects[2].FullName)
}

func TestSQLite_UpdateProspectScore(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	scan, err := st.CreateScan(ctx, "", "user-1", textSource())
	require.NoError(t, err)

	p := &model.Prospect{
		ScanID:   scan.ID,
		FullName: "Maria Santos",
		Score:    45,
		Bucket:   model.BucketWarm,
		Metadata: model.ProspectMetadata{Bucket: model.BucketWarm},
	}
	require.NoError(t, st.InsertProspect(ctx, p))

	err = st.UpdateProspectScore(ctx, p.ID, 82, model.BucketHot, model.ProspectMetadata{
		Bucket:     model.BucketHot,
		PainPoints: []string{"no time"},
	})
	require.NoError(t, err)

	fetched, err := st.GetProspect(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 82.0, fetched.Score)
	assert.Equal(t, model.BucketHot, fetched.Bucket)
	assert.Equal(t, []string{"no time"}, fetched.Metadata.PainPoints)
}

func TestSQLite_GetProspect_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetProspect(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

// --- Queue ---

func TestSQLite_Enqueue_And_Claim(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	item, err := st.Enqueue(ctx, "rescore", json.RawMessage(`{"prospect_id":"p1"}`), 5, 3)
	require.NoError(t, err)
	assert.Equal(t, model.QueueStatusPending, item.Status)

	claimed, err := st.ClaimQueueItems(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, item.ID, claimed[0].ID)
	assert.Equal(t, model.QueueStatusProcessing, claimed[0].Status)
	assert.Equal(t, 1, claimed[0].Attempts)
	assert.NotNil(t, claimed[0].StartedAt)

	// Already processing, so a second claim finds nothing.
	again, err := st.ClaimQueueItems(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestSQLite_Claim_PriorityOrder(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	low, err := st.Enqueue(ctx, "rescore", json.RawMessage(`{}`), 1, 3)
	require.NoError(t, err)
	high, err := st.Enqueue(ctx, "rescore", json.RawMessage(`{}`), 9, 3)
	require.NoError(t, err)

	claimed, err := st.ClaimQueueItems(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, claimed, 2)
	assert.Equal(t, high.ID, claimed[0].ID)
	assert.Equal(t, low.ID, claimed[1].ID)
}

func TestSQLite_Claim_MinPriority(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.Enqueue(ctx, "rescore", json.RawMessage(`{}`), 1, 3)
	require.NoError(t, err)
	high, err := st.Enqueue(ctx, "rescore", json.RawMessage(`{}`), 8, 3)
	require.NoError(t, err)

	claimed, err := st.ClaimQueueItems(ctx, 10, 5)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, high.ID, claimed[0].ID)
}

func TestSQLite_ReleaseQueueItem_Requeues(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	item, err := st.Enqueue(ctx, "rescore", json.RawMessage(`{}`), 0, 3)
	require.NoError(t, err)

	claimed, err := st.ClaimQueueItems(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	err = st.ReleaseQueueItem(ctx, item.ID, "transient: connection reset", false)
	require.NoError(t, err)

	fetched, err := st.GetQueueItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.QueueStatusPending, fetched.Status)
	assert.Equal(t, 1, fetched.Attempts)
	assert.Equal(t, "transient: connection reset", fetched.ErrorMessage)
	assert.Nil(t, fetched.StartedAt)

	// Requeued items can be claimed again.
	claimed, err = st.ClaimQueueItems(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, 2, claimed[0].Attempts)
}

func TestSQLite_ReleaseQueueItem_Exhausted(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	item, err := st.Enqueue(ctx, "rescore", json.RawMessage(`{}`), 0, 1)
	require.NoError(t, err)

	claimed, err := st.ClaimQueueItems(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	err = st.ReleaseQueueItem(ctx, item.ID, "permanent: bad payload", true)
	require.NoError(t, err)

	fetched, err := st.GetQueueItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.QueueStatusFailed, fetched.Status)
	assert.NotNil(t, fetched.CompletedAt)

	// Failed items are never claimed again.
	again, err := st.ClaimQueueItems(ctx, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestSQLite_CompleteQueueItem(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	item, err := st.Enqueue(ctx, "rescore", json.RawMessage(`{}`), 0, 3)
	require.NoError(t, err)

	_, err = st.ClaimQueueItems(ctx, 1, 0)
	require.NoError(t, err)

	require.NoError(t, st.CompleteQueueItem(ctx, item.ID))

	fetched, err := st.GetQueueItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.QueueStatusCompleted, fetched.Status)
	assert.NotNil(t, fetched.CompletedAt)
}

// --- Migrate ---

func TestSQLite_Migrate_Idempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
}
