package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/gitbridge/internal/config"
	"github.com/gitbridge/internal/database"
	"github.com/gitbridge/internal/mapping"
	"github.com/gitbridge/internal/mapping/caching"
	"github.com/gitbridge/internal/mapping/sqlstore"
	"github.com/gitbridge/pkg/types"
)

// openMapping wires the full stack for a command: config, database,
// SQL store, optional cache layer, derived operations. The returned
// cleanup closes the database connection.
func openMapping(c *cli.Context) (*mapping.Mapping, func(), error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	repoID := cfg.Mapping.RepoID
	if c.IsSet("repo") {
		repoID = c.Int64("repo")
	}

	db, err := database.NewDB(cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}

	store := sqlstore.New(db, types.RepositoryID(repoID))
	if err := store.InitSchema(c.Context); err != nil {
		db.Close()
		return nil, nil, err
	}

	var backend mapping.Backend = store
	if cfg.Mapping.CacheSize > 0 {
		backend, err = caching.New(store, cfg.Mapping.CacheSize)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to set up mapping cache: %w", err)
		}
	}

	return mapping.New(backend), func() { db.Close() }, nil
}

func repoFlag() *cli.Int64Flag {
	return &cli.Int64Flag{
		Name:  "repo",
		Usage: "Repository id to operate on (overrides config)",
	}
}
