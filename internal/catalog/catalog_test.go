package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/angelarchive/archive-server/internal/catalog"
	"github.com/angelarchive/archive-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSeed = `{
	"series": [
		{"id": "ser_animal", "name": "Animal Series"}
	],
	"angels": [
		{"id": "ang_bear", "name": "Bear", "series_id": "ser_animal", "card_number": 1,
		 "image": "angels/bear.png", "image_bw": "angels/bear_bw.png", "image_opacity": "angels/bear_op.png"},
		{"id": "ang_cat", "name": "Cat", "series_id": "ser_animal", "card_number": 2,
		 "image": "angels/cat.png", "image_bw": "angels/cat_bw.png", "image_opacity": "angels/cat_op.png"}
	]
}`

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLoadSeed_Valid(t *testing.T) {
	seed, err := catalog.LoadSeed(writeSeedFile(t, validSeed))
	require.NoError(t, err)
	assert.Len(t, seed.Series, 1)
	assert.Len(t, seed.Angels, 2)
	assert.Equal(t, "Bear", seed.Angels[0].Name)
}

func TestLoadSeed_MissingFile(t *testing.T) {
	_, err := catalog.LoadSeed(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadSeed_MalformedJSON(t *testing.T) {
	_, err := catalog.LoadSeed(writeSeedFile(t, `{"angels": [`))
	assert.Error(t, err)
}

func TestLoadSeed_DuplicateAngelID(t *testing.T) {
	_, err := catalog.LoadSeed(writeSeedFile(t, `{
		"series": [],
		"angels": [
			{"id": "ang_1", "name": "Bear"},
			{"id": "ang_1", "name": "Cat"}
		]
	}`))
	assert.ErrorContains(t, err, "duplicate angel ID")
}

func TestLoadSeed_UnknownSeriesRef(t *testing.T) {
	_, err := catalog.LoadSeed(writeSeedFile(t, `{
		"series": [],
		"angels": [{"id": "ang_1", "name": "Bear", "series_id": "ser_ghost"}]
	}`))
	assert.ErrorContains(t, err, "unknown series")
}

func TestLoader_LoadAndApply(t *testing.T) {
	s := newTestStore(t)
	loader := catalog.NewLoader(s, nil)
	ctx := context.Background()

	require.NoError(t, loader.LoadAndApply(ctx, writeSeedFile(t, validSeed)))

	angels, err := s.ListAngels(ctx)
	require.NoError(t, err)
	assert.Len(t, angels, 2)

	series, err := s.ListSeries(ctx)
	require.NoError(t, err)
	assert.Len(t, series, 1)
}

func TestLoader_BrokenSeedLeavesCatalogUntouched(t *testing.T) {
	s := newTestStore(t)
	loader := catalog.NewLoader(s, nil)
	ctx := context.Background()

	require.NoError(t, loader.LoadAndApply(ctx, writeSeedFile(t, validSeed)))
	require.Error(t, loader.LoadAndApply(ctx, writeSeedFile(t, `not json`)))

	angels, err := s.ListAngels(ctx)
	require.NoError(t, err)
	assert.Len(t, angels, 2)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	s := newTestStore(t)
	loader := catalog.NewLoader(s, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := writeSeedFile(t, validSeed)
	require.NoError(t, loader.LoadAndApply(ctx, path))

	w, err := catalog.NewWatcher(path, loader, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	go func() { _ = w.Start(ctx) }()
	time.Sleep(100 * time.Millisecond) // let the watch register

	updated := `{
		"series": [{"id": "ser_animal", "name": "Animal Series"}],
		"angels": [{"id": "ang_bear", "name": "Bear", "series_id": "ser_animal"}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	assert.Eventually(t, func() bool {
		angels, err := s.ListAngels(ctx)
		return err == nil && len(angels) == 1
	}, 5*time.Second, 50*time.Millisecond, "catalog should shrink to one angel after reload")
}
