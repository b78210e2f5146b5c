package mapping

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gitbridge/pkg/types"
)

// ErrConflict marks add failures caused by the bijective-mapping
// invariant: the entry's changeset id or git hash already maps to a
// different counterpart. Match with errors.Is.
var ErrConflict = errors.New("git mapping conflict")

// ConflictError reports which entry was being added and which existing
// row it collided with. The store is left unchanged for the whole batch.
type ConflictError struct {
	Adding   Entry
	Existing Entry
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"conflicting mapping: adding %s <-> %s, but %s <-> %s already exists",
		e.Adding.ChangesetID, e.Adding.GitSHA1,
		e.Existing.ChangesetID, e.Existing.GitSHA1,
	)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// MissingMappingError is returned by the all-or-nothing conversions when
// part of the requested batch has no mapping. It enumerates every
// unresolved id, not just the first.
type MissingMappingError struct {
	Changesets []types.ChangesetID
	GitSHA1s   []types.GitSHA1
}

func (e *MissingMappingError) Error() string {
	ids := make([]string, 0, len(e.Changesets)+len(e.GitSHA1s))
	for _, csID := range e.Changesets {
		ids = append(ids, csID.String())
	}
	for _, sha := range e.GitSHA1s {
		ids = append(ids, sha.String())
	}
	return fmt.Sprintf("missing git mapping for: %s", strings.Join(ids, ", "))
}
