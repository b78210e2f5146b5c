// Package sqlstore is the Postgres-backed mapping backend. One row per
// entry; the two unique constraints are what enforce the per-repository
// bijection, so concurrent writers racing on the same ids have the loser
// deterministically surfaced as a conflict.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/gitbridge/internal/mapping"
	"github.com/gitbridge/pkg/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS git_mapping (
	repo_id BIGINT NOT NULL,
	git_sha1 BYTEA NOT NULL,
	changeset_id BYTEA NOT NULL,
	PRIMARY KEY (repo_id, git_sha1),
	CONSTRAINT git_mapping_changeset_id_unique UNIQUE (repo_id, changeset_id)
);
`

// Store implements the mapping backend over a *sql.DB.
type Store struct {
	db     *sql.DB
	repoID types.RepositoryID
}

// New creates a store scoped to repoID.
func New(db *sql.DB, repoID types.RepositoryID) *Store {
	return &Store{db: db, repoID: repoID}
}

// InitSchema creates the mapping table if it does not exist yet.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create git_mapping schema: %w", err)
	}
	return nil
}

// RepoID returns the repository this store is scoped to.
func (s *Store) RepoID() types.RepositoryID {
	return s.repoID
}

// BeginTransaction opens a transaction on the underlying database for
// callers that want to chain mapping writes with their own statements
// through BulkAddInTransaction.
func (s *Store) BeginTransaction(ctx context.Context) (*sql.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// BulkAdd inserts the entries in a transaction of its own: all rows
// become visible together or not at all.
func (s *Store) BulkAdd(ctx context.Context, entries []mapping.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	log.Debug().
		Int64("repo_id", int64(s.repoID)).
		Int("entries", len(entries)).
		Msg("Bulk adding git mapping entries")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := s.insertEntries(ctx, tx, entries); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Debug().
				Int64("repo_id", int64(s.repoID)).
				Err(rbErr).
				Msg("Rollback of git mapping batch failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit git mapping entries: %w", err)
	}
	return nil
}

// BulkAddInTransaction issues the same writes to the caller's open
// transaction and hands the handle back without committing or rolling
// back. The handle must be a *sql.Tx on this store's database.
func (s *Store) BulkAddInTransaction(ctx context.Context, entries []mapping.Entry, txn mapping.Transaction) (mapping.Transaction, error) {
	tx, ok := txn.(*sql.Tx)
	if !ok {
		return nil, fmt.Errorf("sqlstore needs a *sql.Tx transaction handle, got %T", txn)
	}
	if len(entries) == 0 {
		return tx, nil
	}
	if err := s.insertEntries(ctx, tx, entries); err != nil {
		return nil, err
	}
	return tx, nil
}

// insertEntries writes the batch with ON CONFLICT DO NOTHING, then
// re-reads the touched keys to distinguish idempotent re-adds from real
// conflicts. Skipped-but-identical rows pass; any key mapped to a
// different counterpart fails the whole batch.
func (s *Store) insertEntries(ctx context.Context, tx *sql.Tx, entries []mapping.Entry) error {
	args := make([]interface{}, 0, 1+2*len(entries))
	args = append(args, int64(s.repoID))
	for _, e := range entries {
		args = append(args, e.GitSHA1.Bytes(), e.ChangesetID.Bytes())
	}

	res, err := tx.ExecContext(ctx, buildInsertQuery(len(entries)), args...)
	if err != nil {
		return fmt.Errorf("failed to insert git mapping entries: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count inserted git mapping rows: %w", err)
	}
	if inserted == int64(len(entries)) {
		return nil
	}
	return s.verifyEntries(ctx, tx, entries)
}

func buildInsertQuery(n int) string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO git_mapping (repo_id, git_sha1, changeset_id) VALUES ")
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "($1, $%d, $%d)", 2+2*i, 3+2*i)
	}
	sb.WriteString(" ON CONFLICT DO NOTHING")
	return sb.String()
}

func (s *Store) verifyEntries(ctx context.Context, tx *sql.Tx, entries []mapping.Entry) error {
	shas := make(pq.ByteaArray, 0, len(entries))
	csIDs := make(pq.ByteaArray, 0, len(entries))
	for _, e := range entries {
		shas = append(shas, e.GitSHA1.Bytes())
		csIDs = append(csIDs, e.ChangesetID.Bytes())
	}

	query := `
	SELECT git_sha1, changeset_id
	FROM git_mapping
	WHERE repo_id = $1 AND (git_sha1 = ANY($2) OR changeset_id = ANY($3))
	`
	rows, err := tx.QueryContext(ctx, query, int64(s.repoID), shas, csIDs)
	if err != nil {
		return fmt.Errorf("failed to verify git mapping entries: %w", err)
	}
	defer rows.Close()

	bySHA := make(map[types.GitSHA1]mapping.Entry)
	byChangeset := make(map[types.ChangesetID]mapping.Entry)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return err
		}
		bySHA[e.GitSHA1] = e
		byChangeset[e.ChangesetID] = e
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read git mapping rows: %w", err)
	}

	for _, e := range entries {
		if existing, ok := byChangeset[e.ChangesetID]; ok && existing.GitSHA1 != e.GitSHA1 {
			return &mapping.ConflictError{Adding: e, Existing: existing}
		}
		if existing, ok := bySHA[e.GitSHA1]; ok && existing.ChangesetID != e.ChangesetID {
			return &mapping.ConflictError{Adding: e, Existing: existing}
		}
	}
	return nil
}

// Get resolves each id in key, omitting misses. Result order follows the
// database.
func (s *Store) Get(ctx context.Context, key mapping.LookupKey) ([]mapping.Entry, error) {
	if key.IsEmpty() {
		return nil, nil
	}

	var query string
	var ids pq.ByteaArray
	if csIDs, ok := key.Changesets(); ok {
		query = `
		SELECT git_sha1, changeset_id
		FROM git_mapping
		WHERE repo_id = $1 AND changeset_id = ANY($2)
		`
		for _, csID := range csIDs {
			ids = append(ids, csID.Bytes())
		}
	} else {
		query = `
		SELECT git_sha1, changeset_id
		FROM git_mapping
		WHERE repo_id = $1 AND git_sha1 = ANY($2)
		`
		shas, _ := key.GitSHA1s()
		for _, sha := range shas {
			ids = append(ids, sha.Bytes())
		}
	}

	rows, err := s.db.QueryContext(ctx, query, int64(s.repoID), ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get git mapping entries: %w", err)
	}
	defer rows.Close()

	var entries []mapping.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read git mapping rows: %w", err)
	}
	return entries, nil
}

// GetInRange returns up to limit hashes in [low, high] in ascending
// order, both bounds inclusive.
func (s *Store) GetInRange(ctx context.Context, low, high types.GitSHA1, limit int) ([]types.GitSHA1, error) {
	query := `
	SELECT git_sha1
	FROM git_mapping
	WHERE repo_id = $1 AND git_sha1 >= $2 AND git_sha1 <= $3
	ORDER BY git_sha1 ASC
	LIMIT $4
	`
	rows, err := s.db.QueryContext(ctx, query, int64(s.repoID), low.Bytes(), high.Bytes(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to scan git mapping range: %w", err)
	}
	defer rows.Close()

	var shas []types.GitSHA1
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan git sha1: %w", err)
		}
		sha, err := types.GitSHA1FromBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt git sha1 in git_mapping: %w", err)
		}
		shas = append(shas, sha)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read git mapping rows: %w", err)
	}
	return shas, nil
}

func scanEntry(rows *sql.Rows) (mapping.Entry, error) {
	var rawSHA, rawCS []byte
	if err := rows.Scan(&rawSHA, &rawCS); err != nil {
		return mapping.Entry{}, fmt.Errorf("failed to scan git mapping row: %w", err)
	}
	sha, err := types.GitSHA1FromBytes(rawSHA)
	if err != nil {
		return mapping.Entry{}, fmt.Errorf("corrupt git sha1 in git_mapping: %w", err)
	}
	csID, err := types.ChangesetIDFromBytes(rawCS)
	if err != nil {
		return mapping.Entry{}, fmt.Errorf("corrupt changeset id in git_mapping: %w", err)
	}
	return mapping.Entry{GitSHA1: sha, ChangesetID: csID}, nil
}
