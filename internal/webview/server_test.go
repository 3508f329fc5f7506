package webview

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/pulseboard/pulseboard/internal/contract"
	"github.com/pulseboard/pulseboard/internal/store"
	"github.com/pulseboard/pulseboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeArtifact(t *testing.T) string {
	t.Helper()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	table := schema.AggregatedTable{
		GeneratedAt: now,
		Columns:     []string{"docs.readme", "open_source_capable"},
		Rows: []schema.Row{
			{
				Repo:      "course-discovery",
				Timestamp: now.Add(-2 * time.Hour),
				Metrics: map[string]schema.MetricValue{
					"docs.readme":         schema.BoolValue(false),
					"open_source_capable": schema.Null(),
				},
			},
			{
				Repo:      "edx-platform",
				Timestamp: now.Add(-time.Hour),
				Metrics: map[string]schema.MetricValue{
					"docs.readme":         schema.BoolValue(true),
					"open_source_capable": schema.BoolValue(true),
				},
			},
		},
	}
	m := store.NewMaterializer(schema.SQLiteBackend, "", filepath.Join(t.TempDir(), "dashboard"))
	path, err := m.Write(table, "run-test")
	require.NoError(t, err)
	return path
}

func testServer(t *testing.T) *Server {
	t.Helper()
	snapshot, err := NewSnapshot(writeArtifact(t), zap.NewNop())
	require.NoError(t, err)
	dashboard := &contract.DashboardConfig{
		Squads: map[string][]string{
			"arch":     {"edx-platform"},
			"platform": {"edx-platform", "course-discovery"},
		},
	}
	return NewServer(snapshot, dashboard, ":0", zap.NewNop())
}

func TestHandleRows(t *testing.T) {
	s := testServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/rows", nil)
	s.router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var payload struct {
		Columns []string `json:"columns"`
		Rows    []struct {
			RepoName string   `json:"repo_name"`
			Squads   []string `json:"squads"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, []string{"docs.readme", "open_source_capable"}, payload.Columns)
	require.Len(t, payload.Rows, 2)
	assert.Equal(t, "course-discovery", payload.Rows[0].RepoName)
	assert.Equal(t, []string{"arch", "platform"}, payload.Rows[1].Squads)
}

func TestHandleRowsSquadFilter(t *testing.T) {
	s := testServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/rows?squad=arch", nil)
	s.router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var payload struct {
		Rows []struct {
			RepoName string `json:"repo_name"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Len(t, payload.Rows, 1)
	assert.Equal(t, "edx-platform", payload.Rows[0].RepoName)
}

func TestHandleRowsUnknownSquad(t *testing.T) {
	s := testServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/rows?squad=ghosts", nil)
	s.router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleIndex(t *testing.T) {
	s := testServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	s.router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "edx-platform")
	assert.Contains(t, body, "course-discovery")
	assert.Contains(t, body, "Showing 2 of 2 repositories")
}

func TestHandleSquads(t *testing.T) {
	s := testServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/squads", nil)
	s.router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var payload struct {
		Squads []string `json:"squads"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, []string{"arch", "platform"}, payload.Squads)
}

func TestHandleHealth(t *testing.T) {
	s := testServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	s.router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
