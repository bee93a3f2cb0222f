package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionFlow(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.seedCatalog(t)
	token := ts.signup(t, "collector", "c@example.com")

	rr, env := ts.do(t, http.MethodPut, "/api/v1/collections/ang_bear", token,
		`{"count":2,"trade_count":1,"willing_to_trade":true}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, float64(2), env.Data["count"])

	rr, env = ts.do(t, http.MethodGet, "/api/v1/collections/", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(1), env.Data["count"])

	rr, env = ts.do(t, http.MethodGet, "/api/v1/collections/ang_bear", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	angel, ok := env.Data["angel"].(map[string]any)
	require.True(t, ok, "record should embed its angel")
	assert.Equal(t, "Bear", angel["name"])

	rr, _ = ts.do(t, http.MethodDelete, "/api/v1/collections/ang_bear", token, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr, _ = ts.do(t, http.MethodGet, "/api/v1/collections/ang_bear", token, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpsertRejectsInconsistentRecord(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.seedCatalog(t)
	token := ts.signup(t, "collector", "c@example.com")

	rr, env := ts.do(t, http.MethodPut, "/api/v1/collections/ang_bear", token,
		`{"count":1,"trade_count":2,"willing_to_trade":true}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, env.Success)
}

func TestUpsertUnknownAngel(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.seedCatalog(t)
	token := ts.signup(t, "collector", "c@example.com")

	rr, _ := ts.do(t, http.MethodPut, "/api/v1/collections/ang_ghost", token, `{"count":1}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCollectionsAreIsolatedPerUser(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.seedCatalog(t)
	alice := ts.signup(t, "alice", "alice@example.com")
	bob := ts.signup(t, "bob", "bob@example.com")

	rr, _ := ts.do(t, http.MethodPut, "/api/v1/collections/ang_bear", alice, `{"count":1}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr, env := ts.do(t, http.MethodGet, "/api/v1/collections/", bob, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(0), env.Data["count"])
}
