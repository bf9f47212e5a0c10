package storage

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/hntax/internal/common"
	"github.com/Veraticus/hntax/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testAddress = model.Address(strings.Repeat("b", model.AddressLength))
	otherAddr   = model.Address(strings.Repeat("c", model.AddressLength))
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func createTestStorage(t *testing.T, opts ...Option) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "cache.db")

	store, err := NewSQLiteStorage(dbPath, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testData() model.DataSet {
	return model.DataSet{
		{
			Date:     model.NewDate(2021, time.January, 1),
			Earnings: decimal.RequireFromString("1.5"),
			Tokens:   decimal.RequireFromString("0.2"),
			Price:    decimal.RequireFromString("7.5"),
		},
		{
			Date:     model.NewDate(2021, time.January, 2),
			Earnings: decimal.RequireFromString("0.123456789"),
			Tokens:   decimal.RequireFromString("0.01"),
			Price:    decimal.RequireFromString("12.3"),
		},
	}
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestMigrate(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	var version int
	require.NoError(t, store.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Running again is a no-op.
	require.NoError(t, store.Migrate(ctx))

	var indexCount int
	require.NoError(t, store.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='index' AND name='idx_results_fetched_at'
	`).Scan(&indexCount))
	assert.Equal(t, 1, indexCount)
}

func TestSaveAndGetResult(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.GetResult(ctx, testAddress, 2021)
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, store.SaveResult(ctx, testAddress, 2021, testData()))

	got, err := store.GetResult(ctx, testAddress, 2021)
	require.NoError(t, err)
	assert.Equal(t, testAddress, got.Address)
	assert.Equal(t, model.TaxYear(2021), got.Year)
	require.Len(t, got.Data, 2)
	assert.Equal(t, "2021-01-01", got.Data[0].Date.String())
	assert.Equal(t, "0.123456789", got.Data[1].Earnings.String())
	assert.False(t, got.FetchedAt.IsZero())

	_, err = store.GetResult(ctx, testAddress, 2022)
	assert.ErrorIs(t, err, common.ErrNotFound, "other tax year is a different key")
}

func TestSaveResult_Replaces(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveResult(ctx, testAddress, 2021, testData()))
	require.NoError(t, store.SaveResult(ctx, testAddress, 2021, testData()[:1]))

	got, err := store.GetResult(ctx, testAddress, 2021)
	require.NoError(t, err)
	assert.Len(t, got.Data, 1)

	all, err := store.ListResults(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSaveResult_Validation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.SaveResult(ctx, "short", 2021, testData()), common.ErrInvalidAddress)
	assert.ErrorIs(t, store.SaveResult(ctx, testAddress, 1990, testData()), common.ErrInvalidTaxYear)
	assert.ErrorIs(t, store.SaveResult(ctx, testAddress, 2021, nil), ErrEmptySlice)
	//nolint:staticcheck // exercising nil context handling
	assert.ErrorIs(t, store.SaveResult(nil, testAddress, 2021, testData()), ErrNilContext)
}

func TestGetResult_Expired(t *testing.T) {
	clock := &testClock{now: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)}
	store := createTestStorage(t, WithTTL(time.Hour), WithClock(clock.Now))
	ctx := context.Background()

	require.NoError(t, store.SaveResult(ctx, testAddress, 2021, testData()))

	clock.now = clock.now.Add(59 * time.Minute)
	_, err := store.GetResult(ctx, testAddress, 2021)
	require.NoError(t, err)

	clock.now = clock.now.Add(2 * time.Minute)
	_, err = store.GetResult(ctx, testAddress, 2021)
	assert.ErrorIs(t, err, common.ErrNotFound)

	all, err := store.ListResults(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "expired entries stay listed until removed")
}

func TestDeleteExpiredAndClear(t *testing.T) {
	clock := &testClock{now: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)}
	store := createTestStorage(t, WithTTL(time.Hour), WithClock(clock.Now))
	ctx := context.Background()

	require.NoError(t, store.SaveResult(ctx, testAddress, 2021, testData()))
	clock.now = clock.now.Add(2 * time.Hour)
	require.NoError(t, store.SaveResult(ctx, otherAddr, 2022, testData()))

	list, err := store.ListResults(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, otherAddr, list[0].Address, "newest first")

	removed, err := store.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	removed, err = store.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	list, err = store.ListResults(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

type stubQueue struct {
	pollErr  error
	result   model.PollResult
	enqueued int
	polled   int
}

func (q *stubQueue) Enqueue(context.Context, model.Address, model.TaxYear) error {
	q.enqueued++
	return nil
}

func (q *stubQueue) Poll(context.Context, model.Address, model.TaxYear) (model.PollResult, error) {
	q.polled++
	return q.result, q.pollErr
}

func TestCachingQueue_StoresReadyResults(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	next := &stubQueue{result: model.PollResult{Ready: true, Data: testData()}}
	q := NewCachingQueue(next, store, nil)

	require.NoError(t, q.Enqueue(ctx, testAddress, 2021))
	res, err := q.Poll(ctx, testAddress, 2021)
	require.NoError(t, err)
	assert.True(t, res.Ready)
	assert.Equal(t, 1, next.enqueued)
	assert.Equal(t, 1, next.polled)

	// The second submission is still enqueued, but its poll is answered
	// from the cache.
	require.NoError(t, q.Enqueue(ctx, testAddress, 2021))
	res, err = q.Poll(ctx, testAddress, 2021)
	require.NoError(t, err)
	assert.True(t, res.Ready)
	assert.Len(t, res.Data, 2)
	assert.Equal(t, 2, next.enqueued)
	assert.Equal(t, 1, next.polled)
}

func TestCachingQueue_ExpiresBetweenEnqueueAndPoll(t *testing.T) {
	clock := &testClock{now: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)}
	store := createTestStorage(t, WithTTL(time.Hour), WithClock(clock.Now))
	ctx := context.Background()
	require.NoError(t, store.SaveResult(ctx, testAddress, 2021, testData()))

	next := &stubQueue{}
	q := NewCachingQueue(next, store, nil)

	clock.now = clock.now.Add(59*time.Minute + 59*time.Second)
	require.NoError(t, q.Enqueue(ctx, testAddress, 2021))
	assert.Equal(t, 1, next.enqueued, "enqueue reaches the backend despite a fresh entry")

	clock.now = clock.now.Add(2 * time.Second)
	res, err := q.Poll(ctx, testAddress, 2021)
	require.NoError(t, err)
	assert.False(t, res.Ready)
	assert.Equal(t, 1, next.polled)
}

func TestCachingQueue_NotReadyNotStored(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	next := &stubQueue{}
	q := NewCachingQueue(next, store, nil)

	res, err := q.Poll(ctx, testAddress, 2021)
	require.NoError(t, err)
	assert.False(t, res.Ready)

	_, err = store.GetResult(ctx, testAddress, 2021)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCachingQueue_PassesErrors(t *testing.T) {
	store := createTestStorage(t)
	boom := errors.New("boom")
	q := NewCachingQueue(&stubQueue{pollErr: boom}, store, nil)

	_, err := q.Poll(context.Background(), testAddress, 2021)
	assert.ErrorIs(t, err, boom)
}

func TestCachingQueue_ExpiredMisses(t *testing.T) {
	clock := &testClock{now: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)}
	store := createTestStorage(t, WithTTL(time.Hour), WithClock(clock.Now))
	ctx := context.Background()
	require.NoError(t, store.SaveResult(ctx, testAddress, 2021, testData()))

	clock.now = clock.now.Add(3 * time.Hour)
	next := &stubQueue{}
	q := NewCachingQueue(next, store, nil)

	require.NoError(t, q.Enqueue(ctx, testAddress, 2021))
	res, err := q.Poll(ctx, testAddress, 2021)
	require.NoError(t, err)
	assert.False(t, res.Ready)
	assert.Equal(t, 1, next.enqueued)
	assert.Equal(t, 1, next.polled)
}

func TestCachingQueue_BrokenCacheFallsThrough(t *testing.T) {
	store := createTestStorage(t)
	require.NoError(t, store.Close())

	next := &stubQueue{result: model.PollResult{Ready: true, Data: testData()}}
	q := NewCachingQueue(next, store, nil)

	res, err := q.Poll(context.Background(), testAddress, 2021)
	require.NoError(t, err)
	assert.True(t, res.Ready)
	assert.Equal(t, 1, next.polled)
}
