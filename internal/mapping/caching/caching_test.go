package caching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitbridge/internal/mapping"
	"github.com/gitbridge/internal/mapping/membackend"
	"github.com/gitbridge/pkg/types"
)

// countingBackend counts primitive calls so tests can tell which lookups
// were served from the cache.
type countingBackend struct {
	mapping.Backend
	gets      int
	getKeys   int
	rangeGets int
}

func (c *countingBackend) Get(ctx context.Context, key mapping.LookupKey) ([]mapping.Entry, error) {
	c.gets++
	c.getKeys += key.Count()
	return c.Backend.Get(ctx, key)
}

func (c *countingBackend) GetInRange(ctx context.Context, low, high types.GitSHA1, limit int) ([]types.GitSHA1, error) {
	c.rangeGets++
	return c.Backend.GetInRange(ctx, low, high, limit)
}

func entry(shaByte, csByte byte) mapping.Entry {
	var sha types.GitSHA1
	var csID types.ChangesetID
	for i := range sha {
		sha[i] = shaByte
	}
	for i := range csID {
		csID[i] = csByte
	}
	return mapping.Entry{GitSHA1: sha, ChangesetID: csID}
}

func newCached(t *testing.T) (*Backend, *countingBackend) {
	t.Helper()
	inner := &countingBackend{Backend: membackend.New(1)}
	cached, err := New(inner, 128)
	require.NoError(t, err)
	return cached, inner
}

func TestAddPopulatesBothDirections(t *testing.T) {
	ctx := context.Background()
	cached, inner := newCached(t)

	e := entry(0x01, 0x01)
	require.NoError(t, cached.BulkAdd(ctx, []mapping.Entry{e}))

	byCS, err := cached.Get(ctx, mapping.KeyFromChangeset(e.ChangesetID))
	require.NoError(t, err)
	assert.Equal(t, []mapping.Entry{e}, byCS)

	bySHA, err := cached.Get(ctx, mapping.KeyFromGitSHA1(e.GitSHA1))
	require.NoError(t, err)
	assert.Equal(t, []mapping.Entry{e}, bySHA)

	assert.Equal(t, 0, inner.gets, "lookups after add must be cache hits")
}

func TestMissesFallThroughOnce(t *testing.T) {
	ctx := context.Background()
	cached, inner := newCached(t)

	// Written behind the cache's back.
	e := entry(0x02, 0x02)
	require.NoError(t, inner.Backend.BulkAdd(ctx, []mapping.Entry{e}))

	for i := 0; i < 3; i++ {
		got, err := cached.Get(ctx, mapping.KeyFromChangeset(e.ChangesetID))
		require.NoError(t, err)
		assert.Equal(t, []mapping.Entry{e}, got)
	}
	assert.Equal(t, 1, inner.gets, "only the first lookup may reach the backend")
}

func TestPartialHitFetchesOnlyMisses(t *testing.T) {
	ctx := context.Background()
	cached, inner := newCached(t)

	hot := entry(0x01, 0x01)
	cold := entry(0x02, 0x02)
	require.NoError(t, cached.BulkAdd(ctx, []mapping.Entry{hot}))
	require.NoError(t, inner.Backend.BulkAdd(ctx, []mapping.Entry{cold}))

	got, err := cached.Get(ctx, mapping.KeyFromChangesets([]types.ChangesetID{
		hot.ChangesetID,
		cold.ChangesetID,
	}))
	require.NoError(t, err)
	assert.ElementsMatch(t, []mapping.Entry{hot, cold}, got)
	assert.Equal(t, 1, inner.gets)
	assert.Equal(t, 1, inner.getKeys, "only the cold key may be fetched")
}

func TestUnresolvedKeysStayUncachedMisses(t *testing.T) {
	ctx := context.Background()
	cached, inner := newCached(t)

	missing := entry(0x07, 0x07)
	got, err := cached.Get(ctx, mapping.KeyFromGitSHA1(missing.GitSHA1))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, inner.gets)
}

func TestRangeScansPassThrough(t *testing.T) {
	ctx := context.Background()
	cached, inner := newCached(t)

	e := entry(0x03, 0x03)
	require.NoError(t, cached.BulkAdd(ctx, []mapping.Entry{e}))

	var high types.GitSHA1
	for i := range high {
		high[i] = 0xff
	}
	for i := 0; i < 2; i++ {
		shas, err := cached.GetInRange(ctx, types.GitSHA1{}, high, 10)
		require.NoError(t, err)
		assert.Equal(t, []types.GitSHA1{e.GitSHA1}, shas)
	}
	assert.Equal(t, 2, inner.rangeGets)
}

type inertTxn struct{}

func (inertTxn) Commit() error   { return nil }
func (inertTxn) Rollback() error { return nil }

func TestTransactionalAddsDoNotPopulateCache(t *testing.T) {
	ctx := context.Background()
	cached, inner := newCached(t)

	e := entry(0x04, 0x04)
	_, err := cached.BulkAddInTransaction(ctx, []mapping.Entry{e}, inertTxn{})
	require.NoError(t, err)

	// The lookup must consult the backend, not a cache populated from an
	// uncommitted write.
	got, err := cached.Get(ctx, mapping.KeyFromChangeset(e.ChangesetID))
	require.NoError(t, err)
	assert.Equal(t, []mapping.Entry{e}, got)
	assert.Equal(t, 1, inner.gets)
}
