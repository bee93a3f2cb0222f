// Package catalog loads the shared angel catalog from a seed file and keeps
// the store and search index in sync with it.
package catalog

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"

	"github.com/angelarchive/archive-server/internal/domain"
	"github.com/angelarchive/archive-server/internal/store"
)

// Seed is the on-disk catalog format: one JSON file holding every series
// and every angel. Small enough to load whole; the catalog is a few hundred
// rows, not millions.
type Seed struct {
	Series []*domain.Series `json:"series"`
	Angels []*domain.Angel  `json:"angels"`
}

// LoadSeed reads and validates a catalog seed file.
func LoadSeed(path string) (*Seed, error) {
	//#nosec G304 -- Seed path comes from operator configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	if err := seed.validate(); err != nil {
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}

	return &seed, nil
}

func (s *Seed) validate() error {
	seriesIDs := make(map[string]bool, len(s.Series))
	for _, sr := range s.Series {
		if sr.ID == "" {
			return fmt.Errorf("series %q has no ID", sr.Name)
		}
		if seriesIDs[sr.ID] {
			return fmt.Errorf("duplicate series ID %q", sr.ID)
		}
		seriesIDs[sr.ID] = true
	}

	angelIDs := make(map[string]bool, len(s.Angels))
	for _, a := range s.Angels {
		if a.ID == "" {
			return fmt.Errorf("angel %q has no ID", a.Name)
		}
		if angelIDs[a.ID] {
			return fmt.Errorf("duplicate angel ID %q", a.ID)
		}
		angelIDs[a.ID] = true

		if a.SeriesID != "" && !seriesIDs[a.SeriesID] {
			return fmt.Errorf("angel %q references unknown series %q", a.ID, a.SeriesID)
		}
	}

	return nil
}

// Loader applies catalog seeds to the store.
type Loader struct {
	store  *store.Store
	logger *slog.Logger
}

// NewLoader creates a catalog loader.
func NewLoader(st *store.Store, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{store: st, logger: logger}
}

// Apply replaces the stored catalog with the seed's contents.
func (l *Loader) Apply(ctx context.Context, seed *Seed) error {
	if err := l.store.ReplaceCatalog(ctx, seed.Angels, seed.Series); err != nil {
		return fmt.Errorf("apply catalog seed: %w", err)
	}

	l.logger.Info("catalog seed applied",
		"series", len(seed.Series),
		"angels", len(seed.Angels),
	)
	return nil
}

// LoadAndApply loads a seed file and applies it in one step. A broken seed
// file leaves the stored catalog untouched.
func (l *Loader) LoadAndApply(ctx context.Context, path string) error {
	seed, err := LoadSeed(path)
	if err != nil {
		return err
	}
	return l.Apply(ctx, seed)
}
