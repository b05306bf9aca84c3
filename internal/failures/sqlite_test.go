package failures

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	ctx := t.Context()

	latest, err := store.LatestRun(ctx)
	require.NoError(t, err)
	assert.Empty(t, latest)

	first, second := NewRunID(), NewRunID()
	require.NotEqual(t, first, second)
	_, err = uuid.Parse(first)
	require.NoError(t, err)

	require.NoError(t, store.Append(ctx, Record{RunID: first, Document: "io.vertx.core", Generator: "java", Category: "unresolved_reference", Message: "could not resolve a.B"}))
	require.NoError(t, store.Append(ctx, Record{RunID: second, Document: "guide.md", Generator: "kotlin", Category: "read_failure", Message: "cannot read"}))
	require.NoError(t, store.Append(ctx, Record{RunID: second, Document: "other.md", Generator: "kotlin", Category: "circular_include", Message: "a -> b -> a"}))

	latest, err = store.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, latest)

	records, err := store.ByRun(ctx, second)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "guide.md", records[0].Document)
	assert.Equal(t, "other.md", records[1].Document)
	assert.Equal(t, "circular_include", records[1].Category)
	assert.False(t, records[0].Time.IsZero())

	records, err = store.ByRun(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLiteStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failures.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(t.Context(), Record{RunID: "r1", Document: "d", Generator: "java", Category: "c", Message: "m"}))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	records, err := reopened.ByRun(t.Context(), "r1")
	require.NoError(t, err)
	require.Len(t, records, 1)
}
