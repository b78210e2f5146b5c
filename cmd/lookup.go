package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/gitbridge/internal/config"
	"github.com/gitbridge/internal/mapping"
	"github.com/gitbridge/pkg/types"
)

// LookupCommand returns the lookup command
func LookupCommand() *cli.Command {
	return &cli.Command{
		Name:  "lookup",
		Usage: "Translate between changeset ids and git hashes",
		Flags: []cli.Flag{
			repoFlag(),
			&cli.StringFlag{
				Name:  "changeset",
				Usage: "Changeset id (64 hex chars) to resolve to a git hash",
			},
			&cli.StringFlag{
				Name:  "git",
				Usage: "Git hash (40 hex chars) to resolve to a changeset id",
			},
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "Partial git hash to resolve to matching full hashes",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum prefix matches to return (overrides config)",
			},
		},
		Action: runLookup,
	}
}

func runLookup(c *cli.Context) error {
	m, cleanup, err := openMapping(c)
	if err != nil {
		return err
	}
	defer cleanup()

	switch {
	case c.IsSet("changeset"):
		csID, err := types.ParseChangesetID(c.String("changeset"))
		if err != nil {
			return err
		}
		sha, ok, err := m.GetGitSHA1FromChangeset(c.Context, csID)
		if err != nil {
			return fmt.Errorf("lookup failed: %w", err)
		}
		if !ok {
			return fmt.Errorf("no git mapping for changeset %s", csID)
		}
		fmt.Println(sha)
		return nil

	case c.IsSet("git"):
		sha, err := types.ParseGitSHA1(c.String("git"))
		if err != nil {
			return err
		}
		csID, ok, err := m.GetChangesetFromGitSHA1(c.Context, sha)
		if err != nil {
			return fmt.Errorf("lookup failed: %w", err)
		}
		if !ok {
			return fmt.Errorf("no changeset mapping for git hash %s", sha)
		}
		fmt.Println(csID)
		return nil

	case c.IsSet("prefix"):
		return runPrefixLookup(c, m)

	default:
		return fmt.Errorf("one of --changeset, --git or --prefix is required")
	}
}

func runPrefixLookup(c *cli.Context, m *mapping.Mapping) error {
	prefix, err := mapping.ParseGitSHA1Prefix(c.String("prefix"))
	if err != nil {
		return err
	}

	limit := c.Int("limit")
	if limit <= 0 {
		cfg, err := config.LoadConfig(c.String("config"))
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		limit = cfg.Mapping.PrefixLimit
	}

	resolved, err := m.GetManyByPrefix(c.Context, prefix, limit)
	if err != nil {
		return fmt.Errorf("prefix lookup failed: %w", err)
	}

	switch resolved.Outcome {
	case mapping.PrefixNoMatch:
		return fmt.Errorf("no git hash matches prefix %s", prefix)
	case mapping.PrefixTooMany:
		fmt.Printf("More than %d git hashes match prefix %s; first %d:\n", limit, prefix, limit)
	}
	for _, sha := range resolved.GitSHA1s {
		fmt.Println(sha)
	}
	return nil
}
