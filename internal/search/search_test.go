package search_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/angelarchive/archive-server/internal/domain"
	"github.com/angelarchive/archive-server/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestIndex(t *testing.T) *search.Index {
	t.Helper()

	idx, err := search.NewIndex(filepath.Join(t.TempDir(), "search.bleve"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	return idx
}

func seedTestIndex(t *testing.T, idx *search.Index) {
	t.Helper()

	docs := []*search.Document{
		search.AngelToDocument(&domain.Angel{ID: "ang_bear", Name: "Bear", SeriesID: "ser_animal", CardNumber: 1}, "Animal Series"),
		search.AngelToDocument(&domain.Angel{ID: "ang_rabbit", Name: "Rabbit", SeriesID: "ser_animal", CardNumber: 2}, "Animal Series"),
		search.AngelToDocument(&domain.Angel{ID: "ang_snowman", Name: "Snowman", SeriesID: "ser_winter", CardNumber: 1}, "Winter Series"),
	}
	require.NoError(t, idx.IndexDocuments(docs))
}

func TestSearch_ByName(t *testing.T) {
	idx := setupTestIndex(t)
	seedTestIndex(t, idx)

	params := search.DefaultParams()
	params.Query = "bear"

	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "ang_bear", result.Hits[0].ID)
	assert.Equal(t, "Bear", result.Hits[0].Name)
}

func TestSearch_Prefix(t *testing.T) {
	idx := setupTestIndex(t)
	seedTestIndex(t, idx)

	params := search.DefaultParams()
	params.Query = "rab"

	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "ang_rabbit", result.Hits[0].ID)
}

func TestSearch_FuzzyTypo(t *testing.T) {
	idx := setupTestIndex(t)
	seedTestIndex(t, idx)

	params := search.DefaultParams()
	params.Query = "snowmen"

	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "ang_snowman", result.Hits[0].ID)
}

func TestSearch_BySeriesName(t *testing.T) {
	idx := setupTestIndex(t)
	seedTestIndex(t, idx)

	params := search.DefaultParams()
	params.Query = "winter"

	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "ang_snowman", result.Hits[0].ID)
}

func TestSearch_SeriesFilter(t *testing.T) {
	idx := setupTestIndex(t)
	seedTestIndex(t, idx)

	params := search.DefaultParams()
	params.SeriesID = []string{"ser_animal"}

	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.Total)
}

func TestSearch_EmptyQueryMatchesAll(t *testing.T) {
	idx := setupTestIndex(t)
	seedTestIndex(t, idx)

	result, err := idx.Search(context.Background(), search.DefaultParams())
	require.NoError(t, err)
	assert.EqualValues(t, 3, result.Total)
}

func TestDeleteDocument(t *testing.T) {
	idx := setupTestIndex(t)
	seedTestIndex(t, idx)

	require.NoError(t, idx.DeleteDocument("ang_bear"))

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestRebuild_EmptiesIndex(t *testing.T) {
	idx := setupTestIndex(t)
	seedTestIndex(t, idx)

	require.NoError(t, idx.Rebuild())

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}
