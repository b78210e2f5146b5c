// Package mapping implements the bidirectional translation layer between
// native changeset ids and git commit hashes, scoped per repository.
//
// A storage backend only has to provide the five primitives of the Backend
// interface; every composite operation (prefix resolution, batch
// conversion, bulk import) is derived from those primitives by Mapping and
// works unchanged over any backend, including the caching decorator.
package mapping

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gitbridge/pkg/types"
)

// Entry pairs one native changeset id with one git commit hash. Entries
// are immutable once constructed. Within a repository the pairing is
// bijective; the backend enforces that with unique constraints, and the
// conversion logic here assumes it holds.
type Entry struct {
	GitSHA1     types.GitSHA1
	ChangesetID types.ChangesetID
}

// NewEntry builds a mapping entry.
func NewEntry(sha types.GitSHA1, csID types.ChangesetID) Entry {
	return Entry{GitSHA1: sha, ChangesetID: csID}
}

// Transaction is a caller-owned write transaction handle. It is passed
// into BulkAddInTransaction and returned unconsumed: the caller keeps
// authority over the final Commit or Rollback. *sql.Tx satisfies this
// interface; each backend documents which concrete type it accepts.
type Transaction interface {
	Commit() error
	Rollback() error
}

// Backend is the minimal contract a storage implementation must provide.
// Everything else on Mapping is derived from these primitives.
type Backend interface {
	// RepoID returns the repository this backend is scoped to.
	RepoID() types.RepositoryID

	// BulkAdd inserts the entries atomically: either every row becomes
	// visible or none does. It fails with a ConflictError if any entry's
	// changeset id or git sha1 already maps to a different counterpart
	// in this repository. Re-adding an identical entry is not an error.
	BulkAdd(ctx context.Context, entries []Entry) error

	// BulkAddInTransaction has the same semantics as BulkAdd but issues
	// the writes to the caller's open transaction and returns the handle
	// for further chaining. It must not commit or roll back.
	BulkAddInTransaction(ctx context.Context, entries []Entry, txn Transaction) (Transaction, error)

	// Get resolves each id in key to its entry. Ids with no mapping are
	// omitted from the result; a partial miss is not an error. Result
	// order follows the backend, not the key.
	Get(ctx context.Context, key LookupKey) ([]Entry, error)

	// GetInRange returns up to limit git hashes in [low, high], both
	// bounds inclusive, in ascending byte order.
	GetInRange(ctx context.Context, low, high types.GitSHA1, limit int) ([]types.GitSHA1, error)
}

// Mapping layers the composite operations over a Backend. The embedded
// backend's primitives stay directly accessible.
type Mapping struct {
	Backend
}

// New wraps a backend with the derived mapping operations.
func New(b Backend) *Mapping {
	return &Mapping{Backend: b}
}

// Add inserts a single entry. Shorthand for a one-element BulkAdd.
func (m *Mapping) Add(ctx context.Context, entry Entry) error {
	return m.BulkAdd(ctx, []Entry{entry})
}

// GetGitSHA1FromChangeset resolves one changeset id to its git hash. The
// second return value reports whether a mapping exists.
func (m *Mapping) GetGitSHA1FromChangeset(ctx context.Context, csID types.ChangesetID) (types.GitSHA1, bool, error) {
	entries, err := m.Get(ctx, KeyFromChangeset(csID))
	if err != nil {
		return types.GitSHA1{}, false, err
	}
	if len(entries) == 0 {
		return types.GitSHA1{}, false, nil
	}
	return entries[0].GitSHA1, true, nil
}

// GetChangesetFromGitSHA1 resolves one git hash to its changeset id. The
// second return value reports whether a mapping exists.
func (m *Mapping) GetChangesetFromGitSHA1(ctx context.Context, sha types.GitSHA1) (types.ChangesetID, bool, error) {
	entries, err := m.Get(ctx, KeyFromGitSHA1(sha))
	if err != nil {
		return types.ChangesetID{}, false, err
	}
	if len(entries) == 0 {
		return types.ChangesetID{}, false, nil
	}
	return entries[0].ChangesetID, true, nil
}

// GetManyByPrefix resolves a partial git hash to the set of full hashes
// sharing that prefix, classified against limit, which must be positive.
// It probes for limit+1 rows so that "more than limit exist" is detected
// in a single range scan; the probe row itself is never returned.
func (m *Mapping) GetManyByPrefix(ctx context.Context, prefix GitSHA1Prefix, limit int) (ResolvedPrefix, error) {
	if limit <= 0 {
		return ResolvedPrefix{}, fmt.Errorf("prefix lookup limit must be positive, got %d", limit)
	}
	fetched, err := m.GetInRange(ctx, prefix.Min(), prefix.Max(), limit+1)
	if err != nil {
		return ResolvedPrefix{}, err
	}
	switch n := len(fetched); {
	case n == 0:
		return ResolvedPrefix{Outcome: PrefixNoMatch}, nil
	case n == 1:
		return ResolvedPrefix{Outcome: PrefixSingle, GitSHA1s: fetched}, nil
	case n <= limit:
		return ResolvedPrefix{Outcome: PrefixMultiple, GitSHA1s: fetched}, nil
	default:
		return ResolvedPrefix{Outcome: PrefixTooMany, GitSHA1s: fetched[:limit]}, nil
	}
}

// BulkImportFromCommits extracts the embedded git hash from each commit's
// extras and records the resulting entries in one atomic batch. Commits
// with no embedded mapping or with malformed extras are skipped with a
// warning; only backend failures abort the import.
func (m *Mapping) BulkImportFromCommits(ctx context.Context, commits []Commit) error {
	entries := make([]Entry, 0, len(commits))
	for _, c := range commits {
		sha, ok, err := ExtractGitSHA1FromExtras(c.Extras())
		switch {
		case err != nil:
			log.Warn().
				Str("changeset", c.ID().String()).
				Err(err).
				Msg("Skipping commit with malformed git mapping extras")
		case !ok:
			log.Warn().
				Str("changeset", c.ID().String()).
				Msg("Commit extras carry no git mapping")
		default:
			entries = append(entries, NewEntry(sha, c.ID()))
		}
	}
	if len(entries) == 0 {
		return nil
	}
	return m.BulkAdd(ctx, entries)
}

// ConvertAvailableGitToChangesets translates a batch of git hashes,
// omitting any hash that has no mapping. Output order follows the
// backend's result order.
func (m *Mapping) ConvertAvailableGitToChangesets(ctx context.Context, shas []types.GitSHA1) ([]types.ChangesetID, error) {
	entries, err := m.Get(ctx, KeyFromGitSHA1s(shas))
	if err != nil {
		return nil, err
	}
	csIDs := make([]types.ChangesetID, 0, len(entries))
	for _, e := range entries {
		csIDs = append(csIDs, e.ChangesetID)
	}
	return csIDs, nil
}

// ConvertAllGitToChangesets translates a batch of git hashes and fails
// with a MissingMappingError enumerating every unresolved hash if any of
// them has no mapping.
func (m *Mapping) ConvertAllGitToChangesets(ctx context.Context, shas []types.GitSHA1) ([]types.ChangesetID, error) {
	entries, err := m.Get(ctx, KeyFromGitSHA1s(shas))
	if err != nil {
		return nil, err
	}
	csIDs := make([]types.ChangesetID, 0, len(entries))
	if len(entries) != len(shas) {
		missing := make(map[types.GitSHA1]struct{}, len(shas))
		for _, sha := range shas {
			missing[sha] = struct{}{}
		}
		for _, e := range entries {
			delete(missing, e.GitSHA1)
			csIDs = append(csIDs, e.ChangesetID)
		}
		if len(missing) > 0 {
			err := &MissingMappingError{}
			for sha := range missing {
				err.GitSHA1s = append(err.GitSHA1s, sha)
			}
			return nil, err
		}
		return csIDs, nil
	}
	for _, e := range entries {
		csIDs = append(csIDs, e.ChangesetID)
	}
	return csIDs, nil
}

// ConvertAvailableChangesetsToGit translates a batch of changeset ids,
// omitting any id that has no mapping. Output order follows the backend's
// result order.
func (m *Mapping) ConvertAvailableChangesetsToGit(ctx context.Context, csIDs []types.ChangesetID) ([]types.GitSHA1, error) {
	entries, err := m.Get(ctx, KeyFromChangesets(csIDs))
	if err != nil {
		return nil, err
	}
	shas := make([]types.GitSHA1, 0, len(entries))
	for _, e := range entries {
		shas = append(shas, e.GitSHA1)
	}
	return shas, nil
}

// ConvertAllChangesetsToGit translates a batch of changeset ids and fails
// with a MissingMappingError enumerating every unresolved id if any of
// them has no mapping.
func (m *Mapping) ConvertAllChangesetsToGit(ctx context.Context, csIDs []types.ChangesetID) ([]types.GitSHA1, error) {
	entries, err := m.Get(ctx, KeyFromChangesets(csIDs))
	if err != nil {
		return nil, err
	}
	shas := make([]types.GitSHA1, 0, len(entries))
	if len(entries) != len(csIDs) {
		missing := make(map[types.ChangesetID]struct{}, len(csIDs))
		for _, csID := range csIDs {
			missing[csID] = struct{}{}
		}
		for _, e := range entries {
			delete(missing, e.ChangesetID)
			shas = append(shas, e.GitSHA1)
		}
		if len(missing) > 0 {
			err := &MissingMappingError{}
			for csID := range missing {
				err.Changesets = append(err.Changesets, csID)
			}
			return nil, err
		}
		return shas, nil
	}
	for _, e := range entries {
		shas = append(shas, e.GitSHA1)
	}
	return shas, nil
}

// ChangesetToGitMap builds a changeset-to-git association for a batch,
// with one entry per id that resolved.
func (m *Mapping) ChangesetToGitMap(ctx context.Context, csIDs []types.ChangesetID) (map[types.ChangesetID]types.GitSHA1, error) {
	entries, err := m.Get(ctx, KeyFromChangesets(csIDs))
	if err != nil {
		return nil, err
	}
	out := make(map[types.ChangesetID]types.GitSHA1, len(entries))
	for _, e := range entries {
		out[e.ChangesetID] = e.GitSHA1
	}
	return out, nil
}
