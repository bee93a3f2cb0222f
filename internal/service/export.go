package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/angelarchive/archive-server/internal/config"
	"github.com/angelarchive/archive-server/internal/domain"
	domainerrors "github.com/angelarchive/archive-server/internal/errors"
	"github.com/angelarchive/archive-server/internal/export"
	"github.com/angelarchive/archive-server/internal/store"
)

// ExportService builds collection exports and enforces the per-user
// export cooldown.
type ExportService struct {
	store   *store.Store
	catalog *CatalogService
	cfg     config.ExportConfig
	logger  *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewExportService creates an export service.
func NewExportService(st *store.Store, catalog *CatalogService, cfg config.ExportConfig, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ExportService{
		store:   st,
		catalog: catalog,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Status reports whether the user may export now, and how long until the
// next allowed export otherwise.
func (s *ExportService) Status(ctx context.Context, userID string) (export.CooldownStatus, error) {
	if s.cfg.DisableCooldown {
		return export.CooldownStatus{CanExport: true}, nil
	}

	last, err := s.store.LastExport(ctx, userID)
	if err != nil {
		return export.CooldownStatus{}, fmt.Errorf("get export stamp: %w", err)
	}

	return export.ComputeCooldown(last, s.cfg.Cooldown, s.now()), nil
}

// Export builds the user's collection snapshot, enforcing the cooldown.
// A successful export stamps the user's last export time.
func (s *ExportService) Export(ctx context.Context, userID string, format export.Format) (*export.Export, error) {
	status, err := s.Status(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !status.CanExport {
		return nil, domainerrors.RateLimited(
			"export cooldown active",
			fmt.Sprintf("%d minutes", status.TimeRemaining),
		)
	}

	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	angels, err := s.store.ListAngels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list angels: %w", err)
	}

	seriesList, err := s.store.ListSeries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	seriesByID := make(map[string]*domain.Series, len(seriesList))
	for _, sr := range seriesList {
		seriesByID[sr.ID] = sr
	}

	records, err := s.store.ListRecords(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	recordsByAngel := make(map[string]domain.CollectionRecord, len(records))
	for _, rec := range records {
		recordsByAngel[rec.AngelID] = *rec
	}

	snapshot := export.Build(user, angels, seriesByID, recordsByAngel)

	if !s.cfg.DisableCooldown {
		if err := s.store.RecordExport(ctx, userID, s.now()); err != nil {
			return nil, fmt.Errorf("record export stamp: %w", err)
		}
	}

	s.logger.Info("collection exported",
		"user_id", userID,
		"format", format,
		"items", len(snapshot.Items),
	)

	return snapshot, nil
}
