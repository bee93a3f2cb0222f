package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/angelarchive/archive-server/internal/domain"
	"github.com/dgraph-io/badger/v4"
)

const (
	angelPrefix  = "angel:"
	seriesPrefix = "series:"
)

var (
	// ErrAngelNotFound is returned when an angel cannot be found by ID.
	ErrAngelNotFound = errors.New("angel not found")
	// ErrSeriesNotFound is returned when a series cannot be found by ID.
	ErrSeriesNotFound = errors.New("series not found")
)

// SaveAngel creates or replaces a catalog angel and updates the search index.
func (s *Store) SaveAngel(_ context.Context, angel *domain.Angel) error {
	if angel.ID == "" {
		return ErrInvalidInput.WithMessage("angel ID cannot be empty")
	}

	if err := s.set([]byte(angelPrefix+angel.ID), angel); err != nil {
		return fmt.Errorf("save angel: %w", err)
	}

	if err := s.searchIndexer.IndexAngel(angel); err != nil {
		s.logger.Warn("failed to index angel", "angel_id", angel.ID, "error", err)
	}

	return nil
}

// GetAngel retrieves a catalog angel by ID.
func (s *Store) GetAngel(_ context.Context, id string) (*domain.Angel, error) {
	var angel domain.Angel
	if err := s.get([]byte(angelPrefix+id), &angel); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrAngelNotFound
		}
		return nil, fmt.Errorf("get angel: %w", err)
	}
	return &angel, nil
}

// ListAngels returns the full catalog ordered by card number, then name.
func (s *Store) ListAngels(_ context.Context) ([]*domain.Angel, error) {
	var angels []*domain.Angel

	err := s.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, angelPrefix, func(val []byte) error {
			var angel domain.Angel
			if err := json.Unmarshal(val, &angel); err != nil {
				return fmt.Errorf("unmarshal angel: %w", err)
			}
			angels = append(angels, &angel)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list angels: %w", err)
	}

	sort.Slice(angels, func(i, j int) bool {
		if angels[i].CardNumber != angels[j].CardNumber {
			return angels[i].CardNumber < angels[j].CardNumber
		}
		return angels[i].Name < angels[j].Name
	})

	return angels, nil
}

// DeleteAngel removes a catalog angel and its search index entry.
// Idempotent: no error if the angel does not exist.
func (s *Store) DeleteAngel(_ context.Context, id string) error {
	if err := s.delete([]byte(angelPrefix + id)); err != nil {
		return fmt.Errorf("delete angel: %w", err)
	}

	if err := s.searchIndexer.DeleteAngel(id); err != nil {
		s.logger.Warn("failed to remove angel from index", "angel_id", id, "error", err)
	}

	return nil
}

// SaveSeries creates or replaces a series.
func (s *Store) SaveSeries(_ context.Context, series *domain.Series) error {
	if series.ID == "" {
		return ErrInvalidInput.WithMessage("series ID cannot be empty")
	}

	if err := s.set([]byte(seriesPrefix+series.ID), series); err != nil {
		return fmt.Errorf("save series: %w", err)
	}
	return nil
}

// GetSeries retrieves a series by ID.
func (s *Store) GetSeries(_ context.Context, id string) (*domain.Series, error) {
	var series domain.Series
	if err := s.get([]byte(seriesPrefix+id), &series); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrSeriesNotFound
		}
		return nil, fmt.Errorf("get series: %w", err)
	}
	return &series, nil
}

// ListSeries returns all series ordered by name.
func (s *Store) ListSeries(_ context.Context) ([]*domain.Series, error) {
	var series []*domain.Series

	err := s.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, seriesPrefix, func(val []byte) error {
			var sr domain.Series
			if err := json.Unmarshal(val, &sr); err != nil {
				return fmt.Errorf("unmarshal series: %w", err)
			}
			series = append(series, &sr)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}

	sort.Slice(series, func(i, j int) bool {
		return strings.ToLower(series[i].Name) < strings.ToLower(series[j].Name)
	})

	return series, nil
}

// ReplaceCatalog swaps the whole catalog in one transaction. Used by the
// seed loader so a reload never leaves a half-written catalog behind.
func (s *Store) ReplaceCatalog(ctx context.Context, angels []*domain.Angel, series []*domain.Series) error {
	oldAngels, err := s.ListAngels(ctx)
	if err != nil {
		return err
	}

	keep := make(map[string]bool, len(angels))
	for _, a := range angels {
		keep[a.ID] = true
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, old := range oldAngels {
			if keep[old.ID] {
				continue
			}
			if err := txn.Delete([]byte(angelPrefix + old.ID)); err != nil {
				return fmt.Errorf("delete stale angel: %w", err)
			}
		}

		for _, a := range angels {
			data, err := json.Marshal(a)
			if err != nil {
				return fmt.Errorf("marshal angel: %w", err)
			}
			if err := txn.Set([]byte(angelPrefix+a.ID), data); err != nil {
				return err
			}
		}

		for _, sr := range series {
			data, err := json.Marshal(sr)
			if err != nil {
				return fmt.Errorf("marshal series: %w", err)
			}
			if err := txn.Set([]byte(seriesPrefix+sr.ID), data); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("replace catalog: %w", err)
	}

	for _, old := range oldAngels {
		if !keep[old.ID] {
			if err := s.searchIndexer.DeleteAngel(old.ID); err != nil {
				s.logger.Warn("failed to remove angel from index", "angel_id", old.ID, "error", err)
			}
		}
	}
	for _, a := range angels {
		if err := s.searchIndexer.IndexAngel(a); err != nil {
			s.logger.Warn("failed to index angel", "angel_id", a.ID, "error", err)
		}
	}

	return nil
}

// iteratePrefix calls fn with the value of every key under prefix,
// skipping secondary index keys.
func iteratePrefix(txn *badger.Txn, prefix string, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	opts.PrefetchValues = true

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
		key := string(it.Item().Key())
		if strings.HasPrefix(key[len(prefix):], "idx:") {
			continue
		}
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}

	return nil
}
