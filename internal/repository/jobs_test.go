package repository

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmaddr/extractor/internal/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenSQLite(":memory:", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(testLogger()) })
	require.NoError(t, db.EnsureSchema(context.Background()))
	return db
}

func TestClaimNextNewKey(t *testing.T) {
	ctx := context.Background()
	store := NewJobStore(newTestDB(t), testLogger())

	claimed, err := store.ClaimNext(ctx, "w1:abc", []string{"mc", "li"})
	require.NoError(t, err)
	assert.Equal(t, "mc", claimed)

	counts, err := store.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[entity.StatusProcessing])
}

func TestClaimNextSkipsHeldKeys(t *testing.T) {
	ctx := context.Background()
	store := NewJobStore(newTestDB(t), testLogger())

	first, err := store.ClaimNext(ctx, "w1:abc", []string{"mc", "li"})
	require.NoError(t, err)
	require.Equal(t, "mc", first)

	second, err := store.ClaimNext(ctx, "w2:def", []string{"mc", "li"})
	require.NoError(t, err)
	assert.Equal(t, "li", second)

	third, err := store.ClaimNext(ctx, "w3:ghi", []string{"mc", "li"})
	require.NoError(t, err)
	assert.Equal(t, "", third, "every key held, nothing claimable")
}

func TestClaimNextReclaimsRetryRow(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	store := NewJobStore(db, testLogger())

	_, err := store.ClaimNext(ctx, "w1:abc", []string{"mc"})
	require.NoError(t, err)
	require.NoError(t, store.MarkCompleted(ctx, "mc", 42))

	// Operator resets the row for another pass.
	_, err = db.SQL.ExecContext(ctx, `UPDATE country_status SET status = 'retry' WHERE country_code = $1`, "mc")
	require.NoError(t, err)

	claimed, err := store.ClaimNext(ctx, "w2:def", []string{"mc"})
	require.NoError(t, err)
	assert.Equal(t, "mc", claimed)

	jobs, err := store.ListByStatus(ctx, entity.StatusProcessing, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	job := jobs[0]
	assert.Equal(t, "w2:def", job.WorkerID)
	assert.Nil(t, job.CompletedAt, "reclaim wipes the previous result")
	assert.Nil(t, job.SkipReason)
	assert.Zero(t, job.RecordsSaved)
	assert.False(t, job.LimitReached)
}

func TestClaimNextIgnoresTerminalStatuses(t *testing.T) {
	ctx := context.Background()
	store := NewJobStore(newTestDB(t), testLogger())

	_, err := store.ClaimNext(ctx, "w1:abc", []string{"mc", "li", "sm"})
	require.NoError(t, err)
	require.NoError(t, store.MarkCompleted(ctx, "mc", 10))

	_, err = store.ClaimNext(ctx, "w1:abc", []string{"li"})
	require.NoError(t, err)
	require.NoError(t, store.MarkCompletedWithLimit(ctx, "li", 300000))

	_, err = store.ClaimNext(ctx, "w1:abc", []string{"sm"})
	require.NoError(t, err)
	require.NoError(t, store.MarkSkipped(ctx, "sm", entity.SkipDownloadFailed))

	claimed, err := store.ClaimNext(ctx, "w2:def", []string{"mc", "li", "sm"})
	require.NoError(t, err)
	assert.Equal(t, "", claimed)
}

func TestClaimNextConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	store := NewJobStore(newTestDB(t), testLogger())

	const workers = 8
	results := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			claimed, err := store.ClaimNext(ctx, "w"+string(rune('a'+i)), []string{"mc"})
			assert.NoError(t, err)
			results[i] = claimed
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, r := range results {
		if r == "mc" {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one claimant may win a key")
}

func TestMarkCompletedIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewJobStore(newTestDB(t), testLogger())

	_, err := store.ClaimNext(ctx, "w1:abc", []string{"mc"})
	require.NoError(t, err)

	require.NoError(t, store.MarkCompleted(ctx, "mc", 42))
	jobs, err := store.ListByStatus(ctx, entity.StatusCompleted, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	firstCompletedAt := jobs[0].CompletedAt
	require.NotNil(t, firstCompletedAt)

	require.NoError(t, store.MarkCompleted(ctx, "mc", 42))
	jobs, err = store.ListByStatus(ctx, entity.StatusCompleted, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, *firstCompletedAt, *jobs[0].CompletedAt, "repeat mark keeps the first timestamp")
	assert.Equal(t, int64(42), jobs[0].RecordsSaved)
}

func TestMarkCompletedWithLimitSetsFlag(t *testing.T) {
	ctx := context.Background()
	store := NewJobStore(newTestDB(t), testLogger())

	_, err := store.ClaimNext(ctx, "au", []string{"au"})
	require.NoError(t, err)
	require.NoError(t, store.MarkCompletedWithLimit(ctx, "au", 300000))

	jobs, err := store.ListByStatus(ctx, entity.StatusCompletedWithLimit, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.True(t, jobs[0].LimitReached)
	assert.Equal(t, int64(300000), jobs[0].RecordsSaved)
}

func TestMarkSkippedRecordsReason(t *testing.T) {
	ctx := context.Background()
	store := NewJobStore(newTestDB(t), testLogger())

	_, err := store.ClaimNext(ctx, "w1:abc", []string{"xx"})
	require.NoError(t, err)
	require.NoError(t, store.MarkSkipped(ctx, "xx", entity.SkipNoSourceURL))

	jobs, err := store.ListByStatus(ctx, entity.StatusSkipped, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.NotNil(t, jobs[0].SkipReason)
	assert.Equal(t, entity.SkipNoSourceURL, *jobs[0].SkipReason)
	assert.NotNil(t, jobs[0].SkippedAt)
}

func TestReleaseRequiresOwner(t *testing.T) {
	ctx := context.Background()
	store := NewJobStore(newTestDB(t), testLogger())

	_, err := store.ClaimNext(ctx, "w1:abc", []string{"mc"})
	require.NoError(t, err)

	// Wrong owner: the claim must survive.
	require.NoError(t, store.Release(ctx, "mc", "w2:def"))
	counts, err := store.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[entity.StatusProcessing])

	// Right owner: the key returns to the unclaimed pool.
	require.NoError(t, store.Release(ctx, "mc", "w1:abc"))
	counts, err = store.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts[entity.StatusProcessing])

	claimed, err := store.ClaimNext(ctx, "w3:ghi", []string{"mc"})
	require.NoError(t, err)
	assert.Equal(t, "mc", claimed)
}

func TestReleaseIgnoresFinishedJobs(t *testing.T) {
	ctx := context.Background()
	store := NewJobStore(newTestDB(t), testLogger())

	_, err := store.ClaimNext(ctx, "w1:abc", []string{"mc"})
	require.NoError(t, err)
	require.NoError(t, store.MarkCompleted(ctx, "mc", 5))

	require.NoError(t, store.Release(ctx, "mc", "w1:abc"))
	counts, err := store.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[entity.StatusCompleted], "a finished job is never deleted")
}

func TestClaimNextCanceledContext(t *testing.T) {
	store := NewJobStore(newTestDB(t), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := store.ClaimNext(ctx, "w1:abc", []string{"mc"})
	assert.ErrorIs(t, err, context.Canceled)
}
