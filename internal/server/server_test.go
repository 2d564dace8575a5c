package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyrelab/firespread/pkg/runlog"
)

func testServer(t *testing.T) (*Server, *runlog.Store) {
	t.Helper()
	store := runlog.NewStore(t.TempDir())
	return New("127.0.0.1", 0, store, "1.2.3", nil), store
}

func TestServer_NotFoundEnvelope(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/version", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	var body HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "METHOD_NOT_ALLOWED", body.Error.Code)
}

func TestServer_Health(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestServer_ListRuns(t *testing.T) {
	srv, store := testServer(t)

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Write(&runlog.RunRecord{
		RunID:        "run-1",
		State:        runlog.RunStateSucceeded,
		ScenarioPath: "/tmp/scenario.yaml",
		CreatedAt:    now,
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp RunListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Runs, 1)
	assert.Equal(t, "run-1", resp.Runs[0].RunID)
}

func TestServer_ListRunsEmpty(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp RunListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotNil(t, resp.Runs)
	assert.Empty(t, resp.Runs)
}

func TestServer_GetRun(t *testing.T) {
	srv, store := testServer(t)

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Write(&runlog.RunRecord{
		RunID:        "run-1",
		State:        runlog.RunStateAborted,
		ScenarioPath: "/tmp/scenario.yaml",
		CreatedAt:    now,
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/run-1", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got runlog.RunRecord
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, runlog.RunStateAborted, got.State)
}

func TestServer_GetRunNotFound(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/nope", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestServer_RecoversFromPanic(t *testing.T) {
	srv, _ := testServer(t)
	srv.router.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("test panic") })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() { srv.Handler().ServeHTTP(rec, req) })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_Port(t *testing.T) {
	store := runlog.NewStore(t.TempDir())
	assert.Equal(t, 9000, New("127.0.0.1", 9000, store, "dev", nil).Port())
}
