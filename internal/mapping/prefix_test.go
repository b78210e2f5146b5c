package mapping

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixBounds(t *testing.T) {
	prefix, err := ParseGitSHA1Prefix("ab12")
	require.NoError(t, err)

	assert.Equal(t, "ab12"+strings.Repeat("0", 36), prefix.Min().String())
	assert.Equal(t, "ab12"+strings.Repeat("f", 36), prefix.Max().String())
	assert.Equal(t, "ab12", prefix.String())
}

func TestPrefixBoundsOddLength(t *testing.T) {
	// Odd hex lengths are zero-extended at the nibble level: "abc"
	// covers abc000...0 through abcfff...f.
	prefix, err := ParseGitSHA1Prefix("abc")
	require.NoError(t, err)

	assert.Equal(t, "abc"+strings.Repeat("0", 37), prefix.Min().String())
	assert.Equal(t, "abc"+strings.Repeat("f", 37), prefix.Max().String())
	assert.Equal(t, "abc", prefix.String())
}

func TestPrefixFullWidth(t *testing.T) {
	full := "da39a3ee5e6b4b0d3255bfef95601890afd80709"
	prefix, err := ParseGitSHA1Prefix(full)
	require.NoError(t, err)

	assert.Equal(t, full, prefix.Min().String())
	assert.Equal(t, full, prefix.Max().String())
}

func TestPrefixParseErrors(t *testing.T) {
	_, err := ParseGitSHA1Prefix("")
	assert.Error(t, err, "empty prefix")

	_, err = ParseGitSHA1Prefix(strings.Repeat("a", 41))
	assert.Error(t, err, "longer than a full hash")

	_, err = ParseGitSHA1Prefix("xy")
	assert.Error(t, err, "non-hex prefix")
}
