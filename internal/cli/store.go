package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/SlabLayout/internal/catalog"
	"github.com/piwi3910/SlabLayout/internal/project"
)

// storeOpts selects the catalog backend of a command.
type storeOpts struct {
	db     string // sqlite path; empty uses the configured or default path
	seed   string // TOML file used to fill an empty catalog
	memory bool   // keep the catalog in memory only
}

func (o *storeOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.db, "db", "", "sqlite catalog path (default from settings)")
	cmd.Flags().StringVar(&o.seed, "seed", "", "TOML seed file for an empty catalog")
	cmd.Flags().BoolVar(&o.memory, "memory", false, "keep the catalog in memory only")
}

// openStore opens the catalog selected by o. The returned close function is
// never nil.
func (c *CLI) openStore(ctx context.Context, o storeOpts) (catalog.Store, func() error, error) {
	logger := loggerFromContext(ctx)
	noop := func() error { return nil }

	seed := catalog.NewDefaultMemory()
	if o.seed != "" {
		m, err := catalog.LoadSeed(o.seed)
		if err != nil {
			return nil, noop, fmt.Errorf("load seed: %w", err)
		}
		seed = m
	}
	if o.memory {
		logger.Debug("using in-memory catalog", "seed", o.seed)
		return seed, noop, nil
	}

	path := o.db
	if path == "" {
		path = c.config.CatalogDB
	}
	if path == "" {
		path = project.DefaultCatalogDBPath()
	}

	db, err := catalog.OpenSQLite(path)
	if err != nil {
		return nil, noop, fmt.Errorf("open catalog %s: %w", path, err)
	}
	store := catalog.NewSQLite(db)

	parts, err := seed.Parts().List(ctx)
	if err != nil {
		store.Close()
		return nil, noop, err
	}
	materials, err := seed.Materials().List(ctx)
	if err != nil {
		store.Close()
		return nil, noop, err
	}
	if err := store.Init(ctx, parts, materials); err != nil {
		store.Close()
		return nil, noop, fmt.Errorf("init catalog %s: %w", path, err)
	}
	logger.Debug("opened catalog", "path", path)
	return store, store.Close, nil
}
