package client_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelarchive/archive-server/internal/api"
	"github.com/angelarchive/archive-server/internal/auth"
	"github.com/angelarchive/archive-server/internal/client"
	"github.com/angelarchive/archive-server/internal/config"
	"github.com/angelarchive/archive-server/internal/domain"
	domainerrors "github.com/angelarchive/archive-server/internal/errors"
	"github.com/angelarchive/archive-server/internal/export"
	"github.com/angelarchive/archive-server/internal/search"
	"github.com/angelarchive/archive-server/internal/service"
	"github.com/angelarchive/archive-server/internal/store"
)

// newTestClient boots a real API server on a loopback listener and points a
// client at it.
func newTestClient(t *testing.T) (*client.Client, *store.Store) {
	t.Helper()

	dir := t.TempDir()

	st, err := store.New(filepath.Join(dir, "db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	index, err := search.NewIndex(filepath.Join(dir, "search.bleve"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	st.SetSearchIndexer(service.NewStoreIndexer(index, st, nil))

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)

	cfg := &config.Config{
		Server:    config.ServerConfig{Name: "test"},
		Export:    config.ExportConfig{Cooldown: time.Hour},
		RateLimit: config.RateLimitConfig{Disable: true},
	}

	catalogSvc := service.NewCatalogService(st, "")
	server := api.NewServer(cfg,
		service.NewAuthService(st, tokens, nil),
		catalogSvc,
		service.NewCollectionService(st, catalogSvc, nil),
		service.NewSearchService(index, nil),
		service.NewExportService(st, catalogSvc, cfg.Export, nil),
		nil,
		nil,
	)

	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)

	return client.New(client.Config{BaseURL: ts.URL}, nil), st
}

func seedCatalog(t *testing.T, st *store.Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, st.SaveSeries(ctx, &domain.Series{ID: "ser_1", Name: "Animal Series"}))
	require.NoError(t, st.SaveAngel(ctx, &domain.Angel{ID: "ang_bear", Name: "Bear", SeriesID: "ser_1", CardNumber: 1}))
	require.NoError(t, st.SaveAngel(ctx, &domain.Angel{ID: "ang_rabbit", Name: "Rabbit", SeriesID: "ser_1", CardNumber: 2}))
}

func TestClientAuthFlow(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	resp, err := c.Signup(ctx, "collector", "c@example.com", "hunter22hunter22")
	require.NoError(t, err)
	assert.Equal(t, "collector", resp.User.Username)
	assert.NotEmpty(t, c.Token())

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, me.ID)

	require.NoError(t, c.Logout(ctx))
	assert.Empty(t, c.Token())

	_, err = c.Me(ctx)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = c.Login(ctx, "collector", "hunter22hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, c.Token())
}

func TestClientCollectionRoundtrip(t *testing.T) {
	c, st := newTestClient(t)
	seedCatalog(t, st)
	ctx := context.Background()

	_, err := c.Signup(ctx, "collector", "c@example.com", "hunter22hunter22")
	require.NoError(t, err)

	item, err := c.PutRecord(ctx, domain.CollectionRecord{
		AngelID: "ang_bear", Count: 2, TradeCount: 1, WillingToTrade: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, item.Count)
	require.NotNil(t, item.Angel)
	assert.Equal(t, "Bear", item.Angel.Name)

	records, err := c.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ang_bear", records[0].AngelID)

	require.NoError(t, c.DeleteRecord(ctx, "ang_bear"))

	_, err = c.GetRecord(ctx, "ang_bear")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestClientCatalogAndSearch(t *testing.T) {
	c, st := newTestClient(t)
	seedCatalog(t, st)
	ctx := context.Background()

	_, err := c.Signup(ctx, "collector", "c@example.com", "hunter22hunter22")
	require.NoError(t, err)

	angels, err := c.ListAngels(ctx)
	require.NoError(t, err)
	require.Len(t, angels, 2)
	assert.Equal(t, "Bear", angels[0].Name)

	series, err := c.ListSeries(ctx)
	require.NoError(t, err)
	require.Len(t, series, 1)

	result, err := c.Search(ctx, search.Params{Query: "rabbit"})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "ang_rabbit", result.Hits[0].ID)
}

func TestClientExport(t *testing.T) {
	c, st := newTestClient(t)
	seedCatalog(t, st)
	ctx := context.Background()

	_, err := c.Signup(ctx, "collector", "c@example.com", "hunter22hunter22")
	require.NoError(t, err)

	_, err = c.PutRecord(ctx, domain.CollectionRecord{AngelID: "ang_bear", Count: 1})
	require.NoError(t, err)

	data, filename, err := c.Download(ctx, export.FormatJSON)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Contains(t, filename, "angel_archive_export_")

	// Second download inside the cooldown window is refused.
	_, _, err = c.Download(ctx, export.FormatJSON)
	assert.ErrorIs(t, err, domainerrors.ErrRateLimited)

	status, err := c.ExportStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.CanExport)
	assert.Greater(t, status.TimeRemaining, 0)
}
