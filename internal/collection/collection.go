// Package collection is the client-side collection store. It mirrors the
// server's catalog and the user's records in memory, routes every mutation
// through the reconciliation engine, and projects display lists on demand.
package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/angelarchive/archive-server/internal/client"
	"github.com/angelarchive/archive-server/internal/domain"
	"github.com/angelarchive/archive-server/internal/reconcile"
	"github.com/angelarchive/archive-server/internal/view"
)

// API is the server surface the store depends on, satisfied by
// *client.Client and by fakes in tests.
type API interface {
	ListAngels(ctx context.Context) ([]*domain.Angel, error)
	ListRecords(ctx context.Context) ([]*client.CollectionItem, error)
	PutRecord(ctx context.Context, rec domain.CollectionRecord) (*client.CollectionItem, error)
	DeleteRecord(ctx context.Context, angelID string) error
}

// Store holds the authenticated user's collection state. Safe for
// concurrent use.
type Store struct {
	api    API
	logger *slog.Logger

	// applyMu serializes mutations: at most one reconcile/persist/reload
	// cycle is in flight, so overlapping writes are never issued.
	applyMu sync.Mutex

	mu      sync.RWMutex
	angels  []domain.Angel
	records map[string]domain.CollectionRecord

	obsMu     sync.Mutex
	observers []func()
}

// NewStore creates an empty store. Call Load before reading from it.
func NewStore(api API, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		api:     api,
		logger:  logger,
		records: make(map[string]domain.CollectionRecord),
	}
}

// Load fetches the catalog and the user's records concurrently and replaces
// the store's state. On error the previous state is kept.
func (s *Store) Load(ctx context.Context) error {
	var (
		wg         sync.WaitGroup
		angels     []*domain.Angel
		items      []*client.CollectionItem
		angelsErr  error
		recordsErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		angels, angelsErr = s.api.ListAngels(ctx)
	}()
	go func() {
		defer wg.Done()
		items, recordsErr = s.api.ListRecords(ctx)
	}()
	wg.Wait()

	if angelsErr != nil {
		return fmt.Errorf("load catalog: %w", angelsErr)
	}
	if recordsErr != nil {
		return fmt.Errorf("load records: %w", recordsErr)
	}

	s.mu.Lock()
	s.angels = make([]domain.Angel, len(angels))
	for i, a := range angels {
		s.angels[i] = *a
	}
	s.records = recordMap(items)
	s.mu.Unlock()

	s.notify()
	return nil
}

// recordMap keys records by angel ID, normalizing payloads from servers
// that predate the trade_count field.
func recordMap(items []*client.CollectionItem) map[string]domain.CollectionRecord {
	records := make(map[string]domain.CollectionRecord, len(items))
	for _, item := range items {
		records[item.AngelID] = normalize(item.CollectionRecord)
	}
	return records
}

// normalize repairs records missing a trade count: willing-to-trade without
// one means exactly one copy is offered.
func normalize(rec domain.CollectionRecord) domain.CollectionRecord {
	if rec.WillingToTrade && rec.TradeCount == 0 {
		rec.TradeCount = 1
	}
	return rec
}

// Record returns the user's record for an angel. Angels without a persisted
// record yield the zero record.
func (s *Store) Record(angelID string) domain.CollectionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[angelID]
}

// Angels returns a copy of the cached catalog.
func (s *Store) Angels() []domain.Angel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Angel, len(s.angels))
	copy(out, s.angels)
	return out
}

// Len returns the number of persisted records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// ApplyIntent runs one user intent through the reconciliation engine and
// pushes the result to the server. A rejection or server failure leaves the
// local state untouched; on success the records are reloaded so the store
// reflects what the server actually persisted.
func (s *Store) ApplyIntent(ctx context.Context, angelID string, intent reconcile.Intent) error {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	next, err := reconcile.Apply(s.Record(angelID), intent)
	if err != nil {
		var rejection *reconcile.Rejection
		if errors.As(err, &rejection) {
			s.logger.Debug("intent rejected", "angel_id", angelID, "reason", rejection.Reason)
		}
		return err
	}
	next.AngelID = angelID

	if next.IsAbsent() {
		err = s.api.DeleteRecord(ctx, angelID)
	} else {
		_, err = s.api.PutRecord(ctx, next)
	}
	if err != nil {
		return fmt.Errorf("apply intent: %w", err)
	}

	return s.reloadRecords(ctx)
}

// reloadRecords refreshes only the record map, keeping the cached catalog.
func (s *Store) reloadRecords(ctx context.Context) error {
	items, err := s.api.ListRecords(ctx)
	if err != nil {
		return fmt.Errorf("reload records: %w", err)
	}

	s.mu.Lock()
	s.records = recordMap(items)
	s.mu.Unlock()

	s.notify()
	return nil
}

// Visible projects the catalog and records through the given criteria.
func (s *Store) Visible(criteria view.Criteria) []view.Entry {
	s.mu.RLock()
	angels := s.angels
	records := s.records
	s.mu.RUnlock()

	return view.Project(angels, records, criteria)
}

// Subscribe registers a callback invoked after every state change. Intended
// for UI invalidation; callbacks must not call back into the store.
func (s *Store) Subscribe(fn func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *Store) notify() {
	s.obsMu.Lock()
	observers := make([]func(), len(s.observers))
	copy(observers, s.observers)
	s.obsMu.Unlock()

	for _, fn := range observers {
		fn()
	}
}
