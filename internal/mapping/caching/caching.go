// Package caching wraps any mapping backend with two LRU caches, one per
// lookup direction. Lookups consult the cache first and only the missing
// keys fall through to the inner backend; successful fetches and adds
// populate both caches.
//
// Entries are immutable, so cached values never go stale in content.
// What the cache does not give you is read-after-write visibility of
// rows written by other processes; callers needing that must query the
// inner backend directly.
package caching

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gitbridge/internal/mapping"
	"github.com/gitbridge/pkg/types"
)

// Backend decorates an inner mapping backend with lookup caches.
type Backend struct {
	inner       mapping.Backend
	byChangeset *lru.Cache[types.ChangesetID, mapping.Entry]
	byGitSHA1   *lru.Cache[types.GitSHA1, mapping.Entry]
}

// New wraps inner with caches holding up to size entries per direction.
func New(inner mapping.Backend, size int) (*Backend, error) {
	byChangeset, err := lru.New[types.ChangesetID, mapping.Entry](size)
	if err != nil {
		return nil, err
	}
	byGitSHA1, err := lru.New[types.GitSHA1, mapping.Entry](size)
	if err != nil {
		return nil, err
	}
	return &Backend{
		inner:       inner,
		byChangeset: byChangeset,
		byGitSHA1:   byGitSHA1,
	}, nil
}

// RepoID returns the inner backend's repository scope.
func (b *Backend) RepoID() types.RepositoryID {
	return b.inner.RepoID()
}

// BulkAdd delegates to the inner backend and, on success, populates the
// caches with the new entries.
func (b *Backend) BulkAdd(ctx context.Context, entries []mapping.Entry) error {
	if err := b.inner.BulkAdd(ctx, entries); err != nil {
		return err
	}
	b.populate(entries)
	return nil
}

// BulkAddInTransaction delegates without touching the caches: the caller
// still owns the transaction and may roll it back, so the rows must not
// become visible through the cache before they are committed.
func (b *Backend) BulkAddInTransaction(ctx context.Context, entries []mapping.Entry, txn mapping.Transaction) (mapping.Transaction, error) {
	return b.inner.BulkAddInTransaction(ctx, entries, txn)
}

// Get serves as many keys as possible from the caches and fetches only
// the remainder from the inner backend.
func (b *Backend) Get(ctx context.Context, key mapping.LookupKey) ([]mapping.Entry, error) {
	var hits []mapping.Entry
	var missKey mapping.LookupKey

	if csIDs, ok := key.Changesets(); ok {
		var misses []types.ChangesetID
		for _, csID := range csIDs {
			if e, ok := b.byChangeset.Get(csID); ok {
				hits = append(hits, e)
			} else {
				misses = append(misses, csID)
			}
		}
		missKey = mapping.KeyFromChangesets(misses)
	} else {
		shas, _ := key.GitSHA1s()
		var misses []types.GitSHA1
		for _, sha := range shas {
			if e, ok := b.byGitSHA1.Get(sha); ok {
				hits = append(hits, e)
			} else {
				misses = append(misses, sha)
			}
		}
		missKey = mapping.KeyFromGitSHA1s(misses)
	}

	if missKey.IsEmpty() {
		return hits, nil
	}
	fetched, err := b.inner.Get(ctx, missKey)
	if err != nil {
		return nil, err
	}
	b.populate(fetched)
	return append(hits, fetched...), nil
}

// GetInRange passes through uncached; range scans have no useful cache
// key.
func (b *Backend) GetInRange(ctx context.Context, low, high types.GitSHA1, limit int) ([]types.GitSHA1, error) {
	return b.inner.GetInRange(ctx, low, high, limit)
}

func (b *Backend) populate(entries []mapping.Entry) {
	for _, e := range entries {
		b.byChangeset.Add(e.ChangesetID, e)
		b.byGitSHA1.Add(e.GitSHA1, e)
	}
}
