package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gitbridge/pkg/types"
)

func TestLookupKeyChangesetSide(t *testing.T) {
	key := KeyFromChangesets([]types.ChangesetID{{1}, {2}, {3}})

	assert.Equal(t, 3, key.Count())
	assert.False(t, key.IsEmpty())

	csIDs, ok := key.Changesets()
	assert.True(t, ok)
	assert.Len(t, csIDs, 3)

	_, ok = key.GitSHA1s()
	assert.False(t, ok)
}

func TestLookupKeyGitSide(t *testing.T) {
	key := KeyFromGitSHA1s([]types.GitSHA1{{1}, {2}})

	assert.Equal(t, 2, key.Count())
	assert.False(t, key.IsEmpty())

	shas, ok := key.GitSHA1s()
	assert.True(t, ok)
	assert.Len(t, shas, 2)

	_, ok = key.Changesets()
	assert.False(t, ok)
}

func TestLookupKeySingleSugar(t *testing.T) {
	assert.Equal(t, 1, KeyFromChangeset(types.ChangesetID{7}).Count())
	assert.Equal(t, 1, KeyFromGitSHA1(types.GitSHA1{7}).Count())
}

func TestLookupKeyEmpty(t *testing.T) {
	assert.True(t, KeyFromChangesets(nil).IsEmpty())
	assert.True(t, KeyFromGitSHA1s(nil).IsEmpty())
	assert.Equal(t, 0, KeyFromGitSHA1s(nil).Count())
}
