// Package membackend is an in-memory implementation of the mapping
// backend contract. It is the reference implementation used by unit
// tests; it honors the same conflict and atomicity semantics as the SQL
// backend without needing a database.
package membackend

import (
	"context"
	"sort"
	"sync"

	"github.com/gitbridge/internal/mapping"
	"github.com/gitbridge/pkg/types"
)

// Backend keeps all entries for one repository in two mutex-guarded
// maps, one per lookup direction.
type Backend struct {
	repoID types.RepositoryID

	mu          sync.Mutex
	byChangeset map[types.ChangesetID]mapping.Entry
	byGitSHA1   map[types.GitSHA1]mapping.Entry
}

// New creates an empty backend scoped to repoID.
func New(repoID types.RepositoryID) *Backend {
	return &Backend{
		repoID:      repoID,
		byChangeset: make(map[types.ChangesetID]mapping.Entry),
		byGitSHA1:   make(map[types.GitSHA1]mapping.Entry),
	}
}

// RepoID returns the repository this backend is scoped to.
func (b *Backend) RepoID() types.RepositoryID {
	return b.repoID
}

// BulkAdd inserts the entries. The whole batch is validated before
// anything is written, so a conflict anywhere leaves the store unchanged.
func (b *Backend) BulkAdd(ctx context.Context, entries []mapping.Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Entries must not conflict with existing state or with each other.
	batchByChangeset := make(map[types.ChangesetID]mapping.Entry, len(entries))
	batchByGitSHA1 := make(map[types.GitSHA1]mapping.Entry, len(entries))
	for _, e := range entries {
		if existing, ok := b.byChangeset[e.ChangesetID]; ok && existing.GitSHA1 != e.GitSHA1 {
			return &mapping.ConflictError{Adding: e, Existing: existing}
		}
		if existing, ok := b.byGitSHA1[e.GitSHA1]; ok && existing.ChangesetID != e.ChangesetID {
			return &mapping.ConflictError{Adding: e, Existing: existing}
		}
		if earlier, ok := batchByChangeset[e.ChangesetID]; ok && earlier.GitSHA1 != e.GitSHA1 {
			return &mapping.ConflictError{Adding: e, Existing: earlier}
		}
		if earlier, ok := batchByGitSHA1[e.GitSHA1]; ok && earlier.ChangesetID != e.ChangesetID {
			return &mapping.ConflictError{Adding: e, Existing: earlier}
		}
		batchByChangeset[e.ChangesetID] = e
		batchByGitSHA1[e.GitSHA1] = e
	}
	for _, e := range entries {
		b.byChangeset[e.ChangesetID] = e
		b.byGitSHA1[e.GitSHA1] = e
	}
	return nil
}

// BulkAddInTransaction applies the writes immediately; the in-memory
// store has no deferred transaction machinery, so the handle is returned
// untouched and Commit/Rollback on it remain the caller's no-op.
func (b *Backend) BulkAddInTransaction(ctx context.Context, entries []mapping.Entry, txn mapping.Transaction) (mapping.Transaction, error) {
	if err := b.BulkAdd(ctx, entries); err != nil {
		return nil, err
	}
	return txn, nil
}

// Get resolves each id in key, omitting misses.
func (b *Backend) Get(ctx context.Context, key mapping.LookupKey) ([]mapping.Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []mapping.Entry
	if csIDs, ok := key.Changesets(); ok {
		for _, csID := range csIDs {
			if e, ok := b.byChangeset[csID]; ok {
				out = append(out, e)
			}
		}
		return out, nil
	}
	shas, _ := key.GitSHA1s()
	for _, sha := range shas {
		if e, ok := b.byGitSHA1[sha]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// GetInRange returns up to limit hashes in [low, high] in ascending
// order.
func (b *Backend) GetInRange(ctx context.Context, low, high types.GitSHA1, limit int) ([]types.GitSHA1, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var matched []types.GitSHA1
	for sha := range b.byGitSHA1 {
		if sha.Compare(low) >= 0 && sha.Compare(high) <= 0 {
			matched = append(matched, sha)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Compare(matched[j]) < 0
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}
