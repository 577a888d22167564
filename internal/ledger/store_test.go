package ledger

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONStoreMissingFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewJSONStore(filepath.Join(t.TempDir(), "data", "image-history.json"), nil)

	records := store.Load(ctx)
	require.NotNil(t, records)
	assert.Empty(t, records)

	rec := NewRecord("abc123", "/assets/images/blog/2025-03-10-seo-featured.jpg", "seo", refNow)
	require.NoError(t, store.Save(ctx, []UsageRecord{rec}))

	reloaded := store.Load(ctx)
	if diff := cmp.Diff([]UsageRecord{rec}, reloaded); diff != "" {
		t.Errorf("reloaded ledger mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONStoreCorruptFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
	}{
		{name: "Given garbage bytes", content: "{{{ not json"},
		{name: "Given an object instead of an array", content: `{"photo_id": "x"}`},
		{name: "Given an empty file", content: ""},
		{name: "Given whitespace only", content: "  \n\t"},
		{name: "Given a null document", content: "null"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "ledger.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			records := NewJSONStore(path, nil).Load(ctx)
			require.NotNil(t, records)
			assert.Empty(t, records)
		})
	}
}

func TestJSONStoreMalformedTimestamp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "ledger.json")
	content := `[
  {"photo_id": "good", "used_at": "2025-03-09T12:00:00.000Z", "path": "/a.jpg", "post": "a"},
  {"photo_id": "bad", "used_at": "yesterday-ish", "path": "/b.jpg", "post": "b"},
  {"photo_id": "numeric", "used_at": 1710000000, "path": "/c.jpg", "post": "c"}
]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	records := NewJSONStore(path, nil).Load(ctx)
	require.Len(t, records, 3)
	assert.True(t, records[0].UsedAt.Valid)
	assert.False(t, records[1].UsedAt.Valid)
	assert.Equal(t, "yesterday-ish", records[1].UsedAt.Raw)
	assert.False(t, records[2].UsedAt.Valid)

	ids := RecentIDs(records, refNow)
	assert.Equal(t, map[string]struct{}{"good": {}}, ids)
}

func TestJSONStoreLoadSaveRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewJSONStore(filepath.Join(t.TempDir(), "ledger.json"), nil)
	require.NoError(t, store.Save(ctx, tenRecords()))

	first := store.Load(ctx)
	require.NoError(t, store.Save(ctx, first))
	second := store.Load(ctx)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("load/save/load changed content (-first +second):\n%s", diff)
	}
}

func TestJSONStoreOnDiskFormat(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "ledger.json")
	store := NewJSONStore(path, nil)
	require.NoError(t, store.Save(ctx, []UsageRecord{
		NewRecord("abc", "/x.jpg", "x", refNow),
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "abc", raw[0]["photo_id"])
	assert.Equal(t, "2025-03-10T12:00:00Z", raw[0]["used_at"])
	assert.Equal(t, "/x.jpg", raw[0]["path"])
	assert.Equal(t, "x", raw[0]["post"])
	assert.True(t, strings.HasPrefix(string(data), "[\n  {"))
}

func TestJSONStoreSaveNil(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, NewJSONStore(path, nil).Save(ctx, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestJSONStoreSaveFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// A regular file where the parent directory should be
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	store := NewJSONStore(filepath.Join(blocker, "ledger.json"), nil)
	assert.Error(t, store.Save(ctx, tenRecords()))
}

func TestOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	s, err := Open(Options{Path: filepath.Join(dir, "a.json")}, nil)
	require.NoError(t, err)
	assert.IsType(t, &JSONStore{}, s)

	s, err = Open(Options{Backend: BackendSQLite, Path: filepath.Join(dir, "a.db")}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(Options{Backend: "redis", Path: "x"}, nil)
	assert.Error(t, err)

	_, err = Open(Options{Backend: BackendJSON}, nil)
	assert.Error(t, err)
}
