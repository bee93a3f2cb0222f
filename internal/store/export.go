package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const exportStampPrefix = "export:last:"

// LastExport returns when the user last exported their collection.
// The zero time is returned when the user has never exported.
func (s *Store) LastExport(_ context.Context, userID string) (time.Time, error) {
	var stamp time.Time
	if err := s.get([]byte(exportStampPrefix+userID), &stamp); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("get export stamp: %w", err)
	}
	return stamp, nil
}

// RecordExport stamps the user's last export time. The export cooldown is
// enforced against this stamp.
func (s *Store) RecordExport(_ context.Context, userID string, at time.Time) error {
	if err := s.set([]byte(exportStampPrefix+userID), at); err != nil {
		return fmt.Errorf("record export: %w", err)
	}
	return nil
}
