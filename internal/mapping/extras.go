package mapping

import (
	"fmt"
	"unicode/utf8"

	"github.com/gitbridge/pkg/types"
)

// Commit extras keys watched by the extractor. Commits converted from
// git carry their origin hash under these keys.
const (
	HgGitSourceExtra     = "hg-git-rename-source"
	ConvertRevisionExtra = "convert_revision"
)

// Extra is one key/value pair of commit metadata. Values are raw bytes;
// they are not assumed to be UTF-8.
type Extra struct {
	Key   string
	Value []byte
}

// Commit is the shape BulkImportFromCommits consumes: the commit's own
// changeset id plus its metadata pairs.
type Commit interface {
	ID() types.ChangesetID
	Extras() []Extra
}

// CommitInfo is a plain-data Commit, convenient for imports driven from
// serialized commit descriptions.
type CommitInfo struct {
	Changeset types.ChangesetID
	Meta      []Extra
}

func (c CommitInfo) ID() types.ChangesetID { return c.Changeset }
func (c CommitInfo) Extras() []Extra       { return c.Meta }

// ExtractGitSHA1FromExtras scans commit metadata for an embedded git
// origin. A mapping is embedded when the provenance marker holds the
// literal value "git" and the revision marker is present; the revision
// value is then parsed as an ASCII hex hash. A missing marker, or a
// provenance value other than "git", yields (zero, false, nil). A
// malformed revision value is an error.
//
// The scan is a single linear pass; if a key repeats, the last observed
// value wins.
func ExtractGitSHA1FromExtras(extras []Extra) (types.GitSHA1, bool, error) {
	var source, revision []byte
	var haveSource, haveRevision bool
	for _, e := range extras {
		switch e.Key {
		case HgGitSourceExtra:
			source = e.Value
			haveSource = true
		case ConvertRevisionExtra:
			revision = e.Value
			haveRevision = true
		}
	}
	if !haveSource || string(source) != "git" || !haveRevision {
		return types.GitSHA1{}, false, nil
	}
	if !isASCII(revision) {
		return types.GitSHA1{}, false, fmt.Errorf("%s value is not ASCII", ConvertRevisionExtra)
	}
	sha, err := types.ParseGitSHA1(string(revision))
	if err != nil {
		return types.GitSHA1{}, false, fmt.Errorf("parsing %s: %w", ConvertRevisionExtra, err)
	}
	return sha, true, nil
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
