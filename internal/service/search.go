package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/angelarchive/archive-server/internal/domain"
	"github.com/angelarchive/archive-server/internal/search"
	"github.com/angelarchive/archive-server/internal/store"
)

// SearchService runs catalog searches against the Bleve index.
type SearchService struct {
	index  *search.Index
	logger *slog.Logger
}

// NewSearchService creates a search service.
func NewSearchService(index *search.Index, logger *slog.Logger) *SearchService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SearchService{index: index, logger: logger}
}

// Search executes a catalog search.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = search.DefaultParams().Limit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return result, nil
}

// StoreIndexer adapts the search index to the store's SearchIndexer
// interface, resolving series names for denormalization.
type StoreIndexer struct {
	index  *search.Index
	store  *store.Store
	logger *slog.Logger
}

// NewStoreIndexer creates the indexer the store calls on catalog writes.
func NewStoreIndexer(index *search.Index, st *store.Store, logger *slog.Logger) *StoreIndexer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &StoreIndexer{index: index, store: st, logger: logger}
}

// IndexAngel implements store.SearchIndexer.
func (si *StoreIndexer) IndexAngel(angel *domain.Angel) error {
	seriesName := ""
	if angel.SeriesID != "" {
		if sr, err := si.store.GetSeries(context.Background(), angel.SeriesID); err == nil {
			seriesName = sr.Name
		}
	}
	return si.index.IndexDocument(search.AngelToDocument(angel, seriesName))
}

// DeleteAngel implements store.SearchIndexer.
func (si *StoreIndexer) DeleteAngel(angelID string) error {
	return si.index.DeleteDocument(angelID)
}
