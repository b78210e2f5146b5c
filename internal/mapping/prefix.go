package mapping

import (
	"encoding/hex"
	"fmt"

	"github.com/gitbridge/pkg/types"
)

// GitSHA1Prefix is a partial hex prefix of a git hash, between 1 and 40
// hex digits. An odd-length prefix is zero-extended at the nibble level,
// so "abc" covers the same range as every hash starting with 0xab, 0xc0..0xcf.
type GitSHA1Prefix struct {
	min     types.GitSHA1
	nibbles int
}

// ParseGitSHA1Prefix parses a partial hex string into a prefix.
func ParseGitSHA1Prefix(s string) (GitSHA1Prefix, error) {
	if len(s) == 0 {
		return GitSHA1Prefix{}, fmt.Errorf("empty git sha1 prefix")
	}
	if len(s) > hex.EncodedLen(types.GitSHA1Length) {
		return GitSHA1Prefix{}, fmt.Errorf("git sha1 prefix %q longer than a full hash", s)
	}
	padded := s
	if len(s)%2 == 1 {
		padded = s + "0"
	}
	raw, err := hex.DecodeString(padded)
	if err != nil {
		return GitSHA1Prefix{}, fmt.Errorf("invalid git sha1 prefix %q: %w", s, err)
	}
	var p GitSHA1Prefix
	copy(p.min[:], raw)
	p.nibbles = len(s)
	return p, nil
}

// Min returns the smallest full-width hash carrying this prefix: the
// prefix padded with 0-bits.
func (p GitSHA1Prefix) Min() types.GitSHA1 {
	return p.min
}

// Max returns the largest full-width hash carrying this prefix: the
// prefix padded with 1-bits.
func (p GitSHA1Prefix) Max() types.GitSHA1 {
	max := p.min
	i := p.nibbles / 2
	if p.nibbles%2 == 1 {
		max[i] |= 0x0f
		i++
	}
	for ; i < len(max); i++ {
		max[i] = 0xff
	}
	return max
}

func (p GitSHA1Prefix) String() string {
	return hex.EncodeToString(p.min[:])[:p.nibbles]
}

// Outcomes of a prefix resolution.
type PrefixOutcome int

const (
	// PrefixNoMatch means no hash carries the prefix.
	PrefixNoMatch PrefixOutcome = iota
	// PrefixSingle means exactly one hash carries the prefix.
	PrefixSingle
	// PrefixMultiple means between 2 and limit hashes carry the prefix;
	// all of them are returned.
	PrefixMultiple
	// PrefixTooMany means more than limit hashes carry the prefix; only
	// the first limit, in ascending order, are returned.
	PrefixTooMany
)

// ResolvedPrefix is the classified result of one prefix lookup.
type ResolvedPrefix struct {
	Outcome  PrefixOutcome
	GitSHA1s []types.GitSHA1
}
