package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChangesetIDRoundTrip(t *testing.T) {
	hexID := strings.Repeat("0f", ChangesetIDLength)

	id, err := ParseChangesetID(hexID)
	require.NoError(t, err)
	assert.Equal(t, hexID, id.String())

	fromBytes, err := ChangesetIDFromBytes(id.Bytes())
	require.NoError(t, err)
	assert.Equal(t, id, fromBytes)
}

func TestParseChangesetIDRejectsBadInput(t *testing.T) {
	_, err := ParseChangesetID("abcd")
	assert.Error(t, err, "short input")

	_, err = ParseChangesetID(strings.Repeat("zz", ChangesetIDLength))
	assert.Error(t, err, "non-hex input")

	_, err = ChangesetIDFromBytes(make([]byte, ChangesetIDLength+1))
	assert.Error(t, err, "wrong byte length")
}

func TestParseGitSHA1RoundTrip(t *testing.T) {
	hexSHA := "da39a3ee5e6b4b0d3255bfef95601890afd80709"

	sha, err := ParseGitSHA1(hexSHA)
	require.NoError(t, err)
	assert.Equal(t, hexSHA, sha.String())

	fromBytes, err := GitSHA1FromBytes(sha.Bytes())
	require.NoError(t, err)
	assert.Equal(t, sha, fromBytes)
}

func TestParseGitSHA1RejectsBadInput(t *testing.T) {
	_, err := ParseGitSHA1("da39")
	assert.Error(t, err, "short input")

	_, err = ParseGitSHA1(strings.Repeat("g", 40))
	assert.Error(t, err, "non-hex input")

	_, err = GitSHA1FromBytes(make([]byte, GitSHA1Length-1))
	assert.Error(t, err, "wrong byte length")
}

func TestGitSHA1Compare(t *testing.T) {
	low, err := ParseGitSHA1(strings.Repeat("00", GitSHA1Length))
	require.NoError(t, err)
	high, err := ParseGitSHA1(strings.Repeat("ff", GitSHA1Length))
	require.NoError(t, err)

	assert.Equal(t, -1, low.Compare(high))
	assert.Equal(t, 1, high.Compare(low))
	assert.Equal(t, 0, low.Compare(low))
}
