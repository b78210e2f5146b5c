package mapping

import "github.com/gitbridge/pkg/types"

// LookupKey selects the direction of a Get query: a batch of changeset
// ids to resolve to git hashes, or a batch of git hashes to resolve to
// changeset ids. Exactly one side is ever populated.
type LookupKey struct {
	changesets []types.ChangesetID
	gitSHA1s   []types.GitSHA1
	byGit      bool
}

// KeyFromChangeset builds a one-element changeset-side key.
func KeyFromChangeset(csID types.ChangesetID) LookupKey {
	return KeyFromChangesets([]types.ChangesetID{csID})
}

// KeyFromChangesets builds a changeset-side key.
func KeyFromChangesets(csIDs []types.ChangesetID) LookupKey {
	return LookupKey{changesets: csIDs}
}

// KeyFromGitSHA1 builds a one-element git-side key.
func KeyFromGitSHA1(sha types.GitSHA1) LookupKey {
	return KeyFromGitSHA1s([]types.GitSHA1{sha})
}

// KeyFromGitSHA1s builds a git-side key.
func KeyFromGitSHA1s(shas []types.GitSHA1) LookupKey {
	return LookupKey{gitSHA1s: shas, byGit: true}
}

// Changesets returns the changeset ids and true when the key queries by
// changeset id.
func (k LookupKey) Changesets() ([]types.ChangesetID, bool) {
	if k.byGit {
		return nil, false
	}
	return k.changesets, true
}

// GitSHA1s returns the git hashes and true when the key queries by git
// hash.
func (k LookupKey) GitSHA1s() ([]types.GitSHA1, bool) {
	if !k.byGit {
		return nil, false
	}
	return k.gitSHA1s, true
}

// Count returns the number of ids in the key, whichever side it carries.
func (k LookupKey) Count() int {
	if k.byGit {
		return len(k.gitSHA1s)
	}
	return len(k.changesets)
}

// IsEmpty reports whether the key carries no ids at all.
func (k LookupKey) IsEmpty() bool {
	return k.Count() == 0
}
