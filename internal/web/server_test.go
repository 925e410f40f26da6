package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Farengier/usernotes-bot/internal/executor"
	"github.com/Farengier/usernotes-bot/internal/metrics"
	"github.com/Farengier/usernotes-bot/internal/orm"
	"github.com/Farengier/usernotes-bot/internal/supervisor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type workers []supervisor.Status

func (w workers) Status() []supervisor.Status { return w }

type journal struct {
	rows      []orm.Action
	err       error
	community string
	limit     int
}

func (j *journal) Recent(_ context.Context, community string, limit int) ([]orm.Action, error) {
	j.community = community
	j.limit = limit
	return j.rows, j.err
}

func get(t *testing.T, deps Deps, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	Router(deps).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func testDeps(j *journal) Deps {
	return Deps{
		Workers:   workers{{Name: "collapse", Running: true, Restarts: 1}},
		Rehearsal: executor.NewRehearsal(true),
		Journal:   j,
	}
}

func TestHealth(t *testing.T) {
	rec := get(t, testDeps(&journal{}), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestStatus(t *testing.T) {
	rec := get(t, testDeps(&journal{}), "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.DryRun)
	require.Len(t, got.Workers, 1)
	assert.Equal(t, "collapse", got.Workers[0].Name)
	assert.Equal(t, 1, got.Workers[0].Restarts)
}

func TestActions(t *testing.T) {
	j := &journal{rows: []orm.Action{{Community: "collapse", Verb: ".r", TargetAuthor: "spammer", Outcome: "handled"}}}

	rec := get(t, testDeps(j), "/actions/collapse?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "collapse", j.community)
	assert.Equal(t, 5, j.limit)

	var got []action
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "spammer", got[0].Target)
	assert.NotContains(t, rec.Body.String(), "restriction")

	get(t, testDeps(j), "/actions?limit=100000")
	assert.Equal(t, "", j.community)
	assert.Equal(t, maxActions, j.limit)

	get(t, testDeps(j), "/actions")
	assert.Equal(t, defaultActions, j.limit)
}

func TestActionsErrors(t *testing.T) {
	rec := get(t, testDeps(&journal{}), "/actions?limit=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, testDeps(&journal{err: errors.New("closed")}), "/actions")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMetrics(t *testing.T) {
	metrics.Restarts.WithLabelValues("collapse").Inc()

	rec := get(t, testDeps(&journal{}), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "usernotes_worker_restarts_total"))
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	Router(testDeps(&journal{})).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/status", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
