package types

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Identifier widths in bytes.
const (
	ChangesetIDLength = 32
	GitSHA1Length     = 20
)

// RepositoryID identifies the repository a mapping entry belongs to.
// Every mapping operation is scoped to exactly one repository.
type RepositoryID int64

// ChangesetID is the storage backend's own content-addressed commit
// identifier (256 bits).
type ChangesetID [ChangesetIDLength]byte

// ChangesetIDFromBytes builds a ChangesetID from a raw 32-byte slice.
func ChangesetIDFromBytes(b []byte) (ChangesetID, error) {
	var id ChangesetID
	if len(b) != ChangesetIDLength {
		return id, fmt.Errorf("invalid changeset id length: got %d bytes, want %d", len(b), ChangesetIDLength)
	}
	copy(id[:], b)
	return id, nil
}

// ParseChangesetID parses a 64-character hex string into a ChangesetID.
func ParseChangesetID(s string) (ChangesetID, error) {
	var id ChangesetID
	if len(s) != hex.EncodedLen(ChangesetIDLength) {
		return id, fmt.Errorf("invalid changeset id %q: got %d hex chars, want %d", s, len(s), hex.EncodedLen(ChangesetIDLength))
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return id, fmt.Errorf("invalid changeset id %q: %w", s, err)
	}
	return id, nil
}

// Bytes returns the raw identifier bytes.
func (id ChangesetID) Bytes() []byte {
	return id[:]
}

func (id ChangesetID) String() string {
	return hex.EncodeToString(id[:])
}

// GitSHA1 is the commit hash understood by the interoperating git
// endpoint (160 bits).
type GitSHA1 [GitSHA1Length]byte

// GitSHA1FromBytes builds a GitSHA1 from a raw 20-byte slice.
func GitSHA1FromBytes(b []byte) (GitSHA1, error) {
	var sha GitSHA1
	if len(b) != GitSHA1Length {
		return sha, fmt.Errorf("invalid git sha1 length: got %d bytes, want %d", len(b), GitSHA1Length)
	}
	copy(sha[:], b)
	return sha, nil
}

// ParseGitSHA1 parses a 40-character hex string into a GitSHA1.
func ParseGitSHA1(s string) (GitSHA1, error) {
	var sha GitSHA1
	if len(s) != hex.EncodedLen(GitSHA1Length) {
		return sha, fmt.Errorf("invalid git sha1 %q: got %d hex chars, want %d", s, len(s), hex.EncodedLen(GitSHA1Length))
	}
	if _, err := hex.Decode(sha[:], []byte(s)); err != nil {
		return sha, fmt.Errorf("invalid git sha1 %q: %w", s, err)
	}
	return sha, nil
}

// Bytes returns the raw hash bytes.
func (sha GitSHA1) Bytes() []byte {
	return sha[:]
}

// Compare orders two hashes bytewise. It returns -1, 0 or 1 like
// bytes.Compare.
func (sha GitSHA1) Compare(other GitSHA1) int {
	return bytes.Compare(sha[:], other[:])
}

func (sha GitSHA1) String() string {
	return hex.EncodeToString(sha[:])
}
