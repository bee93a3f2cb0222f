package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"sort"

	"github.com/angelarchive/archive-server/internal/domain"
	"github.com/dgraph-io/badger/v4"
)

const recordPrefix = "record:"

// ErrRecordNotFound is returned when a collection record cannot be found.
var ErrRecordNotFound = errors.New("collection record not found")

func recordKey(userID, angelID string) []byte {
	return []byte(recordPrefix + userID + ":" + angelID)
}

// GetRecord retrieves one user's record for one angel.
func (s *Store) GetRecord(_ context.Context, userID, angelID string) (*domain.CollectionRecord, error) {
	var rec domain.CollectionRecord
	if err := s.get(recordKey(userID, angelID), &rec); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return &rec, nil
}

// UpsertRecord creates or replaces a user's record for an angel.
// Records are written verbatim; field consistency is the caller's job.
func (s *Store) UpsertRecord(_ context.Context, userID string, rec *domain.CollectionRecord) error {
	if userID == "" || rec.AngelID == "" {
		return ErrInvalidInput.WithMessage("user ID and angel ID cannot be empty")
	}

	if err := s.set(recordKey(userID, rec.AngelID), rec); err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

// DeleteRecord removes a user's record for an angel.
// Idempotent: deleting a missing record is not an error, so clients that
// collapse a record to its defaults can always issue a delete.
func (s *Store) DeleteRecord(_ context.Context, userID, angelID string) error {
	if err := s.delete(recordKey(userID, angelID)); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// ListRecords returns all of a user's collection records, most recently
// updated first.
func (s *Store) ListRecords(_ context.Context, userID string) ([]*domain.CollectionRecord, error) {
	prefix := recordPrefix + userID + ":"
	var records []*domain.CollectionRecord

	err := s.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, prefix, func(val []byte) error {
			var rec domain.CollectionRecord
			if err := json.Unmarshal(val, &rec); err != nil {
				return fmt.Errorf("unmarshal record: %w", err)
			}
			records = append(records, &rec)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})

	return records, nil
}

// DeleteUserRecords removes all of a user's collection records.
// Used when an account is deleted.
func (s *Store) DeleteUserRecords(ctx context.Context, userID string) (int, error) {
	records, err := s.ListRecords(ctx, userID)
	if err != nil {
		return 0, err
	}

	for _, rec := range records {
		if err := s.DeleteRecord(ctx, userID, rec.AngelID); err != nil {
			return 0, fmt.Errorf("delete record %s: %w", rec.AngelID, err)
		}
	}

	return len(records), nil
}
