package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "ledger.db"), nil)
	if err != nil {
		t.Fatalf("Failed to create SQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreEmpty(t *testing.T) {
	t.Parallel()

	store := createTestSQLiteStore(t)
	records := store.Load(context.Background())
	require.NotNil(t, records)
	assert.Empty(t, records)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := createTestSQLiteStore(t)
	want := tenRecords()
	require.NoError(t, store.Save(ctx, want))

	got := store.Load(ctx)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sqlite round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteStoreSaveReplaces(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := createTestSQLiteStore(t)
	require.NoError(t, store.Save(ctx, tenRecords()))

	pruned := Prune(store.Load(ctx), refNow)
	require.NoError(t, store.Save(ctx, pruned))

	got := store.Load(ctx)
	assert.Len(t, got, 7)
	assert.Len(t, RecentIDs(got, refNow), 7)
}

func TestSQLiteStoreKeepsMalformedTimestamps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := createTestSQLiteStore(t)
	require.NoError(t, store.Save(ctx, []UsageRecord{
		{PhotoID: "odd", UsedAt: ParseTimestamp("soon"), Path: "/o.jpg", Post: "o"},
	}))

	got := store.Load(ctx)
	require.Len(t, got, 1)
	assert.False(t, got[0].UsedAt.Valid)
	assert.Equal(t, "soon", got[0].UsedAt.Raw)
	assert.Empty(t, RecentIDs(got, refNow))
}
