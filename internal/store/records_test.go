package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/angelarchive/archive-server/internal/domain"
	"github.com/angelarchive/archive-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecords_UpsertAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	rec := &domain.CollectionRecord{
		AngelID:        "ang_1",
		Count:          3,
		TradeCount:     1,
		WillingToTrade: true,
		UpdatedAt:      time.Now().UTC(),
	}
	require.NoError(t, s.UpsertRecord(ctx, "usr_1", rec))

	got, err := s.GetRecord(ctx, "usr_1", "ang_1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Count)
	assert.Equal(t, 1, got.TradeCount)
	assert.True(t, got.WillingToTrade)
}

func TestRecords_Get_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetRecord(context.Background(), "usr_1", "ang_missing")
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestRecords_Upsert_Replaces(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertRecord(ctx, "usr_1", &domain.CollectionRecord{AngelID: "ang_1", Count: 1}))
	require.NoError(t, s.UpsertRecord(ctx, "usr_1", &domain.CollectionRecord{AngelID: "ang_1", Count: 5, IsFavorite: true}))

	got, err := s.GetRecord(ctx, "usr_1", "ang_1")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Count)
	assert.True(t, got.IsFavorite)
}

func TestRecords_Delete_Idempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertRecord(ctx, "usr_1", &domain.CollectionRecord{AngelID: "ang_1", Count: 1}))
	require.NoError(t, s.DeleteRecord(ctx, "usr_1", "ang_1"))
	require.NoError(t, s.DeleteRecord(ctx, "usr_1", "ang_1"))

	_, err := s.GetRecord(ctx, "usr_1", "ang_1")
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestRecords_List_NewestFirst_ScopedToUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC()

	require.NoError(t, s.UpsertRecord(ctx, "usr_1", &domain.CollectionRecord{
		AngelID: "ang_old", Count: 1, UpdatedAt: base.Add(-time.Hour),
	}))
	require.NoError(t, s.UpsertRecord(ctx, "usr_1", &domain.CollectionRecord{
		AngelID: "ang_new", Count: 2, UpdatedAt: base,
	}))
	require.NoError(t, s.UpsertRecord(ctx, "usr_2", &domain.CollectionRecord{
		AngelID: "ang_other", Count: 9, UpdatedAt: base,
	}))

	records, err := s.ListRecords(ctx, "usr_1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "ang_new", records[0].AngelID)
	assert.Equal(t, "ang_old", records[1].AngelID)
}

func TestRecords_DeleteUserRecords(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertRecord(ctx, "usr_1", &domain.CollectionRecord{AngelID: "ang_1", Count: 1}))
	require.NoError(t, s.UpsertRecord(ctx, "usr_1", &domain.CollectionRecord{AngelID: "ang_2", Count: 2}))

	n, err := s.DeleteUserRecords(ctx, "usr_1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records, err := s.ListRecords(ctx, "usr_1")
	require.NoError(t, err)
	assert.Empty(t, records)
}
