package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/angelarchive/archive-server/internal/catalog"
	"github.com/angelarchive/archive-server/internal/config"
	"github.com/angelarchive/archive-server/internal/logger"
)

// CatalogSeeder loads the catalog seed file at boot and, when configured,
// watches it for changes.
type CatalogSeeder struct {
	watcher *catalog.Watcher
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (c *CatalogSeeder) Shutdown() error {
	if c.cancel != nil {
		c.cancel()
	}
	if c.watcher != nil {
		return c.watcher.Stop()
	}
	return nil
}

// ProvideCatalogSeeder applies the seed file and starts the file watcher.
// With no seed path configured the catalog keeps whatever the store holds.
func ProvideCatalogSeeder(i do.Injector) (*CatalogSeeder, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	// The search indexer must be attached before the seed is applied.
	_ = do.MustInvoke[*SearchIndexHandle](i)

	if cfg.Catalog.SeedPath == "" {
		log.Info("No catalog seed configured")
		return &CatalogSeeder{}, nil
	}

	loader := catalog.NewLoader(storeHandle.Store, log.Logger)
	if err := loader.LoadAndApply(context.Background(), cfg.Catalog.SeedPath); err != nil {
		return nil, err
	}

	seeder := &CatalogSeeder{}
	if cfg.Catalog.Watch {
		watcher, err := catalog.NewWatcher(cfg.Catalog.SeedPath, loader, log.Logger)
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithCancel(context.Background())
		seeder.watcher = watcher
		seeder.cancel = cancel
		go func() {
			if err := watcher.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error("Catalog watcher stopped", "error", err)
			}
		}()

		log.Info("Catalog seed loaded and watching", "path", cfg.Catalog.SeedPath)
	} else {
		log.Info("Catalog seed loaded", "path", cfg.Catalog.SeedPath)
	}

	return seeder, nil
}
