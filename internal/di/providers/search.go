package providers

import (
	"github.com/samber/do/v2"

	"github.com/angelarchive/archive-server/internal/config"
	"github.com/angelarchive/archive-server/internal/logger"
	"github.com/angelarchive/archive-server/internal/search"
	"github.com/angelarchive/archive-server/internal/service"
)

// SearchIndexHandle wraps the bleve index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the catalog search index and wires it into the
// store so catalog writes are indexed as they happen.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	index, err := search.NewIndex(cfg.Data.IndexPath, log.Logger)
	if err != nil {
		return nil, err
	}

	storeHandle.SetSearchIndexer(service.NewStoreIndexer(index, storeHandle.Store, log.Logger))

	count, _ := index.DocumentCount()
	log.Info("Search index ready", "path", cfg.Data.IndexPath, "documents", count)

	return &SearchIndexHandle{Index: index}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(indexHandle.Index, log.Logger), nil
}
