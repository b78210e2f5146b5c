package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/gitbridge/internal/mapping"
	"github.com/gitbridge/pkg/types"
)

// AddCommand returns the add command
func AddCommand() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Record one changeset id to git hash mapping",
		Flags: []cli.Flag{
			repoFlag(),
			&cli.StringFlag{
				Name:     "changeset",
				Usage:    "Changeset id (64 hex chars)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "git",
				Usage:    "Git hash (40 hex chars)",
				Required: true,
			},
		},
		Action: runAdd,
	}
}

func runAdd(c *cli.Context) error {
	csID, err := types.ParseChangesetID(c.String("changeset"))
	if err != nil {
		return err
	}
	sha, err := types.ParseGitSHA1(c.String("git"))
	if err != nil {
		return err
	}

	m, cleanup, err := openMapping(c)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := m.Add(c.Context, mapping.NewEntry(sha, csID)); err != nil {
		return fmt.Errorf("failed to add mapping: %w", err)
	}

	fmt.Printf("Recorded %s <-> %s\n", csID, sha)
	return nil
}
