package membackend

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitbridge/internal/mapping"
	"github.com/gitbridge/pkg/types"
)

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

func TestBulkAddIsAtomicOnConflict(t *testing.T) {
	ctx := context.Background()
	b := New(1)

	existing := entry(0x01, 0x01)
	require.NoError(t, b.BulkAdd(ctx, []mapping.Entry{existing}))

	// Second entry of the batch conflicts; the first must not land.
	fresh := entry(0x02, 0x02)
	conflicting := entry(0x03, 0x01)
	err := b.BulkAdd(ctx, []mapping.Entry{fresh, conflicting})
	require.ErrorIs(t, err, mapping.ErrConflict)

	got, err := b.Get(ctx, mapping.KeyFromChangeset(fresh.ChangesetID))
	require.NoError(t, err)
	assert.Empty(t, got, "batch must be all-or-nothing")
}

func TestBulkAddRejectsSelfConflictingBatch(t *testing.T) {
	ctx := context.Background()
	b := New(1)

	// Two entries pair the same changeset with different git hashes.
	err := b.BulkAdd(ctx, []mapping.Entry{entry(0x01, 0x01), entry(0x02, 0x01)})
	require.ErrorIs(t, err, mapping.ErrConflict)

	// Same git hash, different changesets.
	err = b.BulkAdd(ctx, []mapping.Entry{entry(0x03, 0x03), entry(0x03, 0x04)})
	require.ErrorIs(t, err, mapping.ErrConflict)

	// Nothing from either batch landed.
	var low, high types.GitSHA1
	for i := range high {
		high[i] = 0xff
	}
	got, err := b.GetInRange(ctx, low, high, 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	// Duplicate identical entries in one batch are not a conflict.
	dup := entry(0x05, 0x05)
	require.NoError(t, b.BulkAdd(ctx, []mapping.Entry{dup, dup}))
}

func TestGetOmitsMisses(t *testing.T) {
	ctx := context.Background()
	b := New(1)

	e := entry(0x01, 0x01)
	require.NoError(t, b.BulkAdd(ctx, []mapping.Entry{e}))

	got, err := b.Get(ctx, mapping.KeyFromChangesets([]types.ChangesetID{
		e.ChangesetID,
		entry(0x05, 0x05).ChangesetID,
	}))
	require.NoError(t, err)
	assert.Equal(t, []mapping.Entry{e}, got)
}

func TestGetInRangeOrderingAndLimit(t *testing.T) {
	ctx := context.Background()
	b := New(1)

	// Insert out of order, expect ascending results.
	entries := []mapping.Entry{
		entry(0x30, 0x01),
		entry(0x10, 0x02),
		entry(0x20, 0x03),
		entry(0x40, 0x04),
	}
	require.NoError(t, b.BulkAdd(ctx, entries))

	var low, high types.GitSHA1
	for i := range high {
		high[i] = 0xff
	}

	got, err := b.GetInRange(ctx, low, high, 3)
	require.NoError(t, err)

	want := []types.GitSHA1{
		entries[1].GitSHA1,
		entries[2].GitSHA1,
		entries[0].GitSHA1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("range scan mismatch (-want +got):\n%s", diff)
	}
}

func TestGetInRangeBoundsInclusive(t *testing.T) {
	ctx := context.Background()
	b := New(1)

	e := entry(0x20, 0x01)
	require.NoError(t, b.BulkAdd(ctx, []mapping.Entry{e}))

	got, err := b.GetInRange(ctx, e.GitSHA1, e.GitSHA1, 10)
	require.NoError(t, err)
	assert.Equal(t, []types.GitSHA1{e.GitSHA1}, got)
}

type fakeTxn struct {
	committed  bool
	rolledBack bool
}

func (f *fakeTxn) Commit() error   { f.committed = true; return nil }
func (f *fakeTxn) Rollback() error { f.rolledBack = true; return nil }

func TestBulkAddInTransactionReturnsHandleUnconsumed(t *testing.T) {
	ctx := context.Background()
	b := New(1)

	txn := &fakeTxn{}
	returned, err := b.BulkAddInTransaction(ctx, []mapping.Entry{entry(0x01, 0x01)}, txn)
	require.NoError(t, err)
	assert.Same(t, txn, returned)
	assert.False(t, txn.committed, "backend must not commit the caller's transaction")
	assert.False(t, txn.rolledBack)
}
