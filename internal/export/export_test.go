package export_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json/v2"
	"testing"
	"time"

	"github.com/angelarchive/archive-server/internal/domain"
	"github.com/angelarchive/archive-server/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestExport() *export.Export {
	user := &domain.User{ID: "usr_1", Username: "collector"}
	angels := []*domain.Angel{
		{ID: "ang_bear", Name: "Bear", SeriesID: "ser_1", CardNumber: 1},
		{ID: "ang_cat", Name: "Cat", SeriesID: "ser_1", CardNumber: 2},
		{ID: "ang_owl", Name: "Owl", SeriesID: "ser_1", CardNumber: 3},
	}
	seriesByID := map[string]*domain.Series{
		"ser_1": {ID: "ser_1", Name: "Animal Series"},
	}
	records := map[string]domain.CollectionRecord{
		"ang_bear": {AngelID: "ang_bear", Count: 3, TradeCount: 1, WillingToTrade: true, IsFavorite: true},
		"ang_cat":  {AngelID: "ang_cat", InSearchOf: true},
	}
	return export.Build(user, angels, seriesByID, records)
}

func TestBuild_ItemsAndSummary(t *testing.T) {
	ex := buildTestExport()

	require.Len(t, ex.Items, 2, "angels without records are skipped")
	assert.Equal(t, "Bear", ex.Items[0].Name)
	assert.Equal(t, "Animal Series", ex.Items[0].SeriesName)

	assert.Equal(t, 3, ex.Summary.CatalogSize)
	assert.Equal(t, 1, ex.Summary.UniqueOwned)
	assert.Equal(t, 3, ex.Summary.TotalCount)
	assert.Equal(t, 1, ex.Summary.Favorites)
	assert.Equal(t, 1, ex.Summary.InSearchOf)
	assert.Equal(t, 1, ex.Summary.WillingToTrade)
}

func TestWrite_JSON(t *testing.T) {
	ex := buildTestExport()

	var buf bytes.Buffer
	require.NoError(t, ex.Write(&buf, export.FormatJSON))

	var decoded export.Export
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "collector", decoded.Username)
	assert.Len(t, decoded.Items, 2)
}

func TestWrite_CSV(t *testing.T) {
	ex := buildTestExport()

	var buf bytes.Buffer
	require.NoError(t, ex.Write(&buf, export.FormatCSV))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus two items")
	assert.Equal(t, "angel_id", rows[0][0])
	assert.Equal(t, "ang_bear", rows[1][0])
	assert.Equal(t, "true", rows[1][6], "is_favorite column")
}

func TestParseFormat(t *testing.T) {
	f, err := export.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, export.FormatJSON, f)

	f, err = export.ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV, f)

	_, err = export.ParseFormat("xml")
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "angel_archive_export_usr_1.csv", export.Filename("usr_1", export.FormatCSV))
	assert.Equal(t, "angel_archive_export_usr_1.json", export.Filename("usr_1", export.FormatJSON))
}

func TestComputeCooldown_NeverExported(t *testing.T) {
	status := export.ComputeCooldown(time.Time{}, time.Hour, time.Now())
	assert.True(t, status.CanExport)
	assert.Zero(t, status.TimeRemaining)
}

func TestComputeCooldown_Elapsed(t *testing.T) {
	now := time.Now()
	status := export.ComputeCooldown(now.Add(-2*time.Hour), time.Hour, now)
	assert.True(t, status.CanExport)
}

func TestComputeCooldown_Active_RoundsUpMinutes(t *testing.T) {
	now := time.Now()
	status := export.ComputeCooldown(now.Add(-30*time.Minute-30*time.Second), time.Hour, now)
	assert.False(t, status.CanExport)
	assert.Equal(t, 30, status.TimeRemaining, "29m30s remaining rounds up to 30")
}

func TestComputeCooldown_ExactBoundary(t *testing.T) {
	now := time.Now()
	status := export.ComputeCooldown(now.Add(-time.Hour), time.Hour, now)
	assert.True(t, status.CanExport)
}
