package audit_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/angelarchive/archive-server/internal/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLog(t *testing.T) *audit.Log {
	t.Helper()

	l, err := audit.Open(filepath.Join(t.TempDir(), "audit.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	return l
}

func TestRecord_GeneratesIDAndTimestamp(t *testing.T) {
	l := setupTestLog(t)
	ctx := context.Background()

	entry := &audit.Entry{
		UserID: "usr_1",
		Method: "PUT",
		Path:   "/api/v1/collections/ang_1",
		Status: 200,
	}
	require.NoError(t, l.Record(ctx, entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestRecent_NewestFirst(t *testing.T) {
	l := setupTestLog(t)
	ctx := context.Background()
	base := time.Now().UTC()

	require.NoError(t, l.Record(ctx, &audit.Entry{
		Method: "POST", Path: "/api/v1/auth/login", Status: 200, CreatedAt: base.Add(-time.Minute),
	}))
	require.NoError(t, l.Record(ctx, &audit.Entry{
		Method: "DELETE", Path: "/api/v1/collections/ang_1", Status: 204, CreatedAt: base,
	}))

	entries, err := l.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "DELETE", entries[0].Method)
	assert.Equal(t, "POST", entries[1].Method)
}

func TestRecent_Limit(t *testing.T) {
	l := setupTestLog(t)
	ctx := context.Background()

	for i := range 5 {
		require.NoError(t, l.Record(ctx, &audit.Entry{
			Method: "GET", Path: "/api/v1/angels", Status: 200,
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
		}))
	}

	entries, err := l.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestListByUser(t *testing.T) {
	l := setupTestLog(t)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, &audit.Entry{UserID: "usr_1", Method: "PUT", Path: "/a", Status: 200}))
	require.NoError(t, l.Record(ctx, &audit.Entry{UserID: "usr_2", Method: "PUT", Path: "/b", Status: 200}))

	entries, err := l.ListByUser(ctx, "usr_1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/a", entries[0].Path)
}

func TestPrune(t *testing.T) {
	l := setupTestLog(t)
	ctx := context.Background()
	base := time.Now().UTC()

	require.NoError(t, l.Record(ctx, &audit.Entry{Method: "GET", Path: "/old", Status: 200, CreatedAt: base.Add(-48 * time.Hour)}))
	require.NoError(t, l.Record(ctx, &audit.Entry{Method: "GET", Path: "/new", Status: 200, CreatedAt: base}))

	n, err := l.Prune(ctx, base.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	entries, err := l.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/new", entries[0].Path)
}
