package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelarchive/archive-server/internal/domain"
	domainerrors "github.com/angelarchive/archive-server/internal/errors"
	"github.com/angelarchive/archive-server/internal/store"
)

// CatalogService serves the shared angel catalog with image paths expanded
// to full CDN URLs.
type CatalogService struct {
	store          *store.Store
	storageBaseURL string
}

// NewCatalogService creates a catalog service. baseURL may be empty, in
// which case image paths are served as stored.
func NewCatalogService(st *store.Store, baseURL string) *CatalogService {
	return &CatalogService{
		store:          st,
		storageBaseURL: strings.TrimRight(baseURL, "/"),
	}
}

// expandImages returns a copy of the angel with storage-relative image
// paths turned into absolute CDN URLs.
func (s *CatalogService) expandImages(angel *domain.Angel) *domain.Angel {
	if s.storageBaseURL == "" {
		return angel
	}
	expanded := *angel
	expanded.Image = s.expandURL(angel.Image)
	expanded.ImageBW = s.expandURL(angel.ImageBW)
	expanded.ImageOpacity = s.expandURL(angel.ImageOpacity)
	return &expanded
}

func (s *CatalogService) expandURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return s.storageBaseURL + "/" + strings.TrimLeft(path, "/")
}

// ListAngels returns the full catalog ordered by card number.
func (s *CatalogService) ListAngels(ctx context.Context) ([]*domain.Angel, error) {
	angels, err := s.store.ListAngels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list angels: %w", err)
	}

	out := make([]*domain.Angel, len(angels))
	for i, a := range angels {
		out[i] = s.expandImages(a)
	}
	return out, nil
}

// ListAngelsBySeries returns the catalog angels belonging to one series,
// ordered by card number.
func (s *CatalogService) ListAngelsBySeries(ctx context.Context, seriesID string) ([]*domain.Angel, error) {
	if _, err := s.store.GetSeries(ctx, seriesID); err != nil {
		if errors.Is(err, store.ErrSeriesNotFound) {
			return nil, domainerrors.NotFound("series not found")
		}
		return nil, fmt.Errorf("get series: %w", err)
	}

	angels, err := s.store.ListAngels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list angels: %w", err)
	}

	out := make([]*domain.Angel, 0, len(angels))
	for _, a := range angels {
		if a.SeriesID == seriesID {
			out = append(out, s.expandImages(a))
		}
	}
	return out, nil
}

// GetAngel returns one catalog angel.
func (s *CatalogService) GetAngel(ctx context.Context, angelID string) (*domain.Angel, error) {
	angel, err := s.store.GetAngel(ctx, angelID)
	if err != nil {
		if errors.Is(err, store.ErrAngelNotFound) {
			return nil, domainerrors.NotFound("angel not found")
		}
		return nil, fmt.Errorf("get angel: %w", err)
	}
	return s.expandImages(angel), nil
}

// ListSeries returns all series ordered by name.
func (s *CatalogService) ListSeries(ctx context.Context) ([]*domain.Series, error) {
	series, err := s.store.ListSeries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	return series, nil
}
