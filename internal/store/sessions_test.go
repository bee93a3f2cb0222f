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

func testSession(id, userID string, expiresIn time.Duration) *domain.Session {
	now := time.Now().UTC()
	return &domain.Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(expiresIn),
	}
}

func TestSessions_CreateAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, testSession("ses_1", "usr_1", time.Hour)))

	got, err := s.GetSession(ctx, "ses_1")
	require.NoError(t, err)
	assert.Equal(t, "usr_1", got.UserID)
}

func TestSessions_Get_Expired(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, testSession("ses_1", "usr_1", -time.Minute)))

	_, err := s.GetSession(ctx, "ses_1")
	assert.ErrorIs(t, err, store.ErrSessionExpired)
}

func TestSessions_Delete_Idempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, testSession("ses_1", "usr_1", time.Hour)))
	require.NoError(t, s.DeleteSession(ctx, "ses_1"))
	require.NoError(t, s.DeleteSession(ctx, "ses_1"))

	_, err := s.GetSession(ctx, "ses_1")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestSessions_ListUserSessions_SkipsExpired(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, testSession("ses_live", "usr_1", time.Hour)))
	require.NoError(t, s.CreateSession(ctx, testSession("ses_dead", "usr_1", -time.Minute)))
	require.NoError(t, s.CreateSession(ctx, testSession("ses_other", "usr_2", time.Hour)))

	sessions, err := s.ListUserSessions(ctx, "usr_1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "ses_live", sessions[0].ID)
}

func TestSessions_DeleteAllUserSessions(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, testSession("ses_1", "usr_1", time.Hour)))
	require.NoError(t, s.CreateSession(ctx, testSession("ses_2", "usr_1", time.Hour)))

	require.NoError(t, s.DeleteAllUserSessions(ctx, "usr_1"))

	sessions, err := s.ListUserSessions(ctx, "usr_1")
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestSessions_DeleteExpiredSessions(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, testSession("ses_live", "usr_1", time.Hour)))
	require.NoError(t, s.CreateSession(ctx, testSession("ses_dead", "usr_1", -time.Minute)))

	n, err := s.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.GetSession(ctx, "ses_live")
	assert.NoError(t, err)
}

func TestExportStamps(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	stamp, err := s.LastExport(ctx, "usr_1")
	require.NoError(t, err)
	assert.True(t, stamp.IsZero(), "never exported means zero time")

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.RecordExport(ctx, "usr_1", at))

	stamp, err = s.LastExport(ctx, "usr_1")
	require.NoError(t, err)
	assert.True(t, stamp.Equal(at))
}
