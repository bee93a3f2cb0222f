package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/angelarchive/archive-server/internal/domain"
	domainerrors "github.com/angelarchive/archive-server/internal/errors"
	"github.com/angelarchive/archive-server/internal/store"
)

// CollectionService manages per-user collection records.
type CollectionService struct {
	store   *store.Store
	catalog *CatalogService
	logger  *slog.Logger
}

// NewCollectionService creates a collection service.
func NewCollectionService(st *store.Store, catalog *CatalogService, logger *slog.Logger) *CollectionService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CollectionService{
		store:   st,
		catalog: catalog,
		logger:  logger,
	}
}

// Item is a collection record joined with its catalog angel for display.
type Item struct {
	domain.CollectionRecord
	Angel *domain.Angel `json:"angel,omitempty"`
}

// UpsertRequest is the wire shape for writing a record. Fields arrive
// already reconciled by the client; the server re-checks the consistency
// rules rather than trusting it.
type UpsertRequest struct {
	Count          int  `json:"count" validate:"min=0"`
	TradeCount     int  `json:"trade_count" validate:"min=0"`
	IsFavorite     bool `json:"is_favorite"`
	InSearchOf     bool `json:"in_search_of"`
	WillingToTrade bool `json:"willing_to_trade"`
}

// checkConsistency enforces the record rules the client's reconciler
// maintains: trade count bounded by count, the willing-to-trade pairing,
// and the collapse of trade and favorite state at count zero.
func checkConsistency(req UpsertRequest) error {
	if req.TradeCount > req.Count {
		return domainerrors.Validation("trade_count cannot exceed count")
	}
	if req.WillingToTrade != (req.TradeCount > 0) {
		return domainerrors.Validation("willing_to_trade must match trade_count > 0")
	}
	if req.Count == 0 && (req.IsFavorite || req.WillingToTrade || req.TradeCount > 0) {
		return domainerrors.Validation("an unowned angel cannot carry trade or favorite state")
	}
	return nil
}

// List returns the user's collection records with embedded catalog angels,
// most recently updated first. Records for angels that have left the
// catalog are skipped.
func (s *CollectionService) List(ctx context.Context, userID string) ([]*Item, error) {
	records, err := s.store.ListRecords(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	items := make([]*Item, 0, len(records))
	for _, rec := range records {
		angel, err := s.catalog.GetAngel(ctx, rec.AngelID)
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				s.logger.Warn("collection record references missing angel",
					"user_id", userID, "angel_id", rec.AngelID)
				continue
			}
			return nil, err
		}
		items = append(items, &Item{CollectionRecord: *rec, Angel: angel})
	}

	return items, nil
}

// Get returns the user's record for one angel. A missing record is an
// error here; clients treat absence as the zero record themselves.
func (s *CollectionService) Get(ctx context.Context, userID, angelID string) (*Item, error) {
	rec, err := s.store.GetRecord(ctx, userID, angelID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domainerrors.NotFound("no record for this angel")
		}
		return nil, fmt.Errorf("get record: %w", err)
	}

	angel, err := s.catalog.GetAngel(ctx, angelID)
	if err != nil {
		return nil, err
	}

	return &Item{CollectionRecord: *rec, Angel: angel}, nil
}

// Upsert writes the user's record for an angel. A request carrying only
// default values deletes the record instead, so clients never have to
// special-case the collapse to nothing.
func (s *CollectionService) Upsert(ctx context.Context, userID, angelID string, req UpsertRequest) (*Item, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if err := checkConsistency(req); err != nil {
		return nil, err
	}

	// The angel must exist in the catalog.
	angel, err := s.catalog.GetAngel(ctx, angelID)
	if err != nil {
		return nil, err
	}

	rec := domain.CollectionRecord{
		AngelID:        angelID,
		Count:          req.Count,
		TradeCount:     req.TradeCount,
		IsFavorite:     req.IsFavorite,
		InSearchOf:     req.InSearchOf,
		WillingToTrade: req.WillingToTrade,
		UpdatedAt:      time.Now().UTC(),
	}

	if rec.IsAbsent() {
		if err := s.store.DeleteRecord(ctx, userID, angelID); err != nil {
			return nil, fmt.Errorf("delete collapsed record: %w", err)
		}
		rec.UpdatedAt = time.Time{}
		return &Item{CollectionRecord: rec, Angel: angel}, nil
	}

	if err := s.store.UpsertRecord(ctx, userID, &rec); err != nil {
		return nil, fmt.Errorf("upsert record: %w", err)
	}

	return &Item{CollectionRecord: rec, Angel: angel}, nil
}

// Delete removes the user's record for an angel. Idempotent.
func (s *CollectionService) Delete(ctx context.Context, userID, angelID string) error {
	if err := s.store.DeleteRecord(ctx, userID, angelID); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}
