package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"railgen/internal/codec"
	"railgen/internal/repository"
	"railgen/internal/repository/sqlite"
	"railgen/internal/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	svc, err := service.NewGenerationService(repo, service.NewEventBus(), service.Options{OutputDir: t.TempDir()})
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewGenerationHandler(svc).Register(mux)
	srv := httptest.NewServer(Chain(mux, Recover, Logger))
	t.Cleanup(srv.Close)
	return srv
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestListScenarios(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/scenarios")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	infos := decode[[]ScenarioInfo](t, resp)
	require.NotEmpty(t, infos)
	require.Equal(t, "circle_infra", infos[0].Name)
	require.NotEmpty(t, infos[0].Description)
}

func TestGenerateScenarioAndFetch(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/generate/one_line", "", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	run := decode[repository.Run](t, resp)
	require.Equal(t, "one_line", run.Script)
	require.Equal(t, 10, run.Summary.TrackSections)

	resp, err = http.Get(srv.URL + "/api/runs/" + run.ID.String())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[repository.Run](t, resp)
	require.Equal(t, run.Fingerprint, got.Fingerprint)

	resp, err = http.Get(srv.URL + "/api/runs/" + run.ID.String() + "/infra")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	infra, err := codec.NewRailJSONCodec().Parse(resp.Body)
	require.NoError(t, err)
	fingerprint, err := codec.Fingerprint(infra)
	require.NoError(t, err)
	require.Equal(t, run.Fingerprint, fingerprint)

	resp, err = http.Get(srv.URL + "/api/runs?script=one_line&limit=5")
	require.NoError(t, err)
	runs := decode[[]repository.Run](t, resp)
	require.Len(t, runs, 1)
}

func TestGenerateScript(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"valid", "name: pair\ntracks:\n  - label: a\n    length: 100\n  - label: b\n    length: 100\nlinks:\n  - src: a.end\n    dst: b.begin\n", http.StatusCreated},
		{"not yaml", "tracks: [", http.StatusBadRequest},
		{"no name", "tracks:\n  - length: 100\n", http.StatusBadRequest},
		{"invalid topology", "name: bad\ntracks:\n  - label: a\n    length: -5\n", http.StatusUnprocessableEntity},
		{"non-finite speed", "name: nan\ntracks:\n  - label: a\n    length: 100\nspeed_sections:\n  - speed_limit: .nan\n    track_ranges: []\n", http.StatusUnprocessableEntity},
		{"path name", "name: ../escape\ntracks:\n  - label: a\n    length: 100\n", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/generate", "application/yaml", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"unknown scenario", http.MethodPost, "/api/generate/nope", http.StatusNotFound},
		{"bad run id", http.MethodGet, "/api/runs/xyz", http.StatusBadRequest},
		{"unknown run", http.MethodGet, "/api/runs/00000000-0000-0000-0000-000000000001", http.StatusNotFound},
		{"bad limit", http.MethodGet, "/api/runs?limit=-1", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, nil)
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			body := decode[ErrorResponse](t, resp)
			require.Equal(t, tt.status, resp.StatusCode, "body: %+v", body)
			require.NotEmpty(t, body.Error)
		})
	}
}

func TestImportDisabled(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/generate/circle_infra", "", nil)
	require.NoError(t, err)
	run := decode[repository.Run](t, resp)

	resp, err = http.Post(srv.URL+"/api/runs/"+run.ID.String()+"/import", "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), Recover, Logger)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
