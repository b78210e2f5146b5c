package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/gitbridge/internal/mapping"
	"github.com/gitbridge/pkg/types"
)

// commitDoc models one commit in the import file: its changeset id plus
// the raw extras carried over from the conversion.
type commitDoc struct {
	ChangesetID string            `json:"changeset_id"`
	Extras      map[string]string `json:"extras"`
}

// ImportCommand returns the import command
func ImportCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Bulk import git mappings embedded in commit extras",
		Flags: []cli.Flag{
			repoFlag(),
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "JSON file with commits to import",
				Required: true,
			},
		},
		Action: runImport,
	}
}

func runImport(c *cli.Context) error {
	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	var docs []commitDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return fmt.Errorf("failed to parse import file: %w", err)
	}

	commits := make([]mapping.Commit, 0, len(docs))
	for _, doc := range docs {
		csID, err := types.ParseChangesetID(doc.ChangesetID)
		if err != nil {
			return fmt.Errorf("bad commit in import file: %w", err)
		}
		info := mapping.CommitInfo{Changeset: csID}
		for key, value := range doc.Extras {
			info.Meta = append(info.Meta, mapping.Extra{Key: key, Value: []byte(value)})
		}
		commits = append(commits, info)
	}

	m, cleanup, err := openMapping(c)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := m.BulkImportFromCommits(c.Context, commits); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Printf("Imported mappings from %d commits\n", len(commits))
	return nil
}
