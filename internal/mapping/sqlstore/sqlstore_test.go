package sqlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildInsertQuery(t *testing.T) {
	assert.Equal(t,
		"INSERT INTO git_mapping (repo_id, git_sha1, changeset_id) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING",
		buildInsertQuery(1),
	)
	assert.Equal(t,
		"INSERT INTO git_mapping (repo_id, git_sha1, changeset_id) VALUES ($1, $2, $3), ($1, $4, $5), ($1, $6, $7) ON CONFLICT DO NOTHING",
		buildInsertQuery(3),
	)
}
