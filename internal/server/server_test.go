package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/needsradar/engine"
	"github.com/spektr-org/needsradar/internal/config"
	"github.com/spektr-org/needsradar/internal/logging"
	"github.com/spektr-org/needsradar/internal/metrics"
	"github.com/spektr-org/needsradar/loader"
	"github.com/spektr-org/needsradar/schema"
	"github.com/spektr-org/needsradar/session"
)

const overlayJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"nombre": "Maule"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},
    {"type": "Feature", "properties": {"nombre": "Atacama"},
     "geometry": {"type": "Polygon", "coordinates": [[[2,2],[3,2],[3,3],[2,3],[2,2]]]}}
  ]
}`

type testServer struct {
	handler http.Handler
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T, withOverlay bool) *testServer {
	t.Helper()
	ds, err := engine.NewDataset([]engine.Record{
		{Row: 2, Region: "Maule", Axis: "Agua", Theme: "Riego", Need: "Sensores", TechCategories: "IoT, Drones", Impact: 5, Innovation: 3},
		{Row: 3, Region: "Maule", Axis: "Energía", Theme: "Solar", Need: "Paneles", TechCategories: "Solar", Impact: 3, Innovation: 1},
		{Row: 4, Region: "Biobío", Axis: "Agua", Theme: "Riego", Need: "Canales", TechCategories: "IoT", Impact: 1, Innovation: 5},
	}, "test.xlsx")
	require.NoError(t, err)

	var overlay *loader.Overlay
	if withOverlay {
		overlay, err = loader.ParseRegions([]byte(overlayJSON))
		require.NoError(t, err)
	}

	m := metrics.New(false)
	opts := []session.Option{session.WithObserver(m)}
	if overlay != nil {
		opts = append(opts, session.WithSelectableRegions(overlay.Names()))
	}
	mgr := session.NewManager(ds, time.Hour, logging.NewNopLogger(), opts...)
	m.WatchSessions(mgr.Len)

	cfg := RouterConfig{
		Sessions: mgr,
		Metrics:  m,
		Describe: schema.DefaultDescribeOptions(),
		Logger:   logging.NewNopLogger(),
	}
	if overlay != nil {
		cfg.Overlay = overlay
		cfg.Describe.Regions = overlay.Names()
	}
	return &testServer{handler: NewRouter(cfg), metrics: m}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *testServer) create(t *testing.T) SessionResponse {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func decodeTransition(t *testing.T, w *httptest.ResponseRecorder) TransitionResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp TransitionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthAndOptions(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"records":3`)

	w = s.do(t, http.MethodGet, "/api/v1/options", "")
	require.Equal(t, http.StatusOK, w.Code)
	var cfg schema.Config
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cfg))
	assert.Equal(t, []string{"Atacama", "Biobío", "Maule"}, cfg.Values(engine.FieldRegion))
	assert.Equal(t, []string{"Alto", "Medio", "Bajo"}, cfg.Values(engine.FieldImpact))
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t, false)
	created := s.create(t)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, session.Unfocused, created.Focus.State)
	require.NotNil(t, created.Snapshot)
	assert.Equal(t, 3, created.Snapshot.Records)

	w := s.do(t, http.MethodGet, "/api/v1/sessions/"+created.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/sessions/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/sessions/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "Not Found", errResp.Code)
}

func TestClickFocusesAndTotalIsNoop(t *testing.T) {
	s := newTestServer(t, false)
	id := s.create(t).ID

	resp := decodeTransition(t, s.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/click",
		`{"chart":"sunburst","id":"Maule/Agua"}`))
	assert.True(t, resp.Transition.Applied)
	assert.Equal(t, session.Focus{State: session.Focused, Region: "Maule"}, resp.Session.Focus)
	assert.Equal(t, 2, resp.Session.Snapshot.Records)

	resp = decodeTransition(t, s.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/click",
		`{"chart":"radar","label":"Total"}`))
	assert.False(t, resp.Transition.Applied)
	assert.Equal(t, session.ReasonTotal, resp.Transition.Reason)
	assert.Equal(t, "Maule", resp.Session.Focus.Region)

	resp = decodeTransition(t, s.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/clear", ""))
	assert.Equal(t, session.Unfocused, resp.Session.Focus.State)
	assert.Equal(t, 3, resp.Session.Snapshot.Records)
}

func TestFiltersSelectAndReset(t *testing.T) {
	s := newTestServer(t, false)
	id := s.create(t).ID

	resp := decodeTransition(t, s.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/filters",
		`{"categories":["IoT"]}`))
	assert.Equal(t, 2, resp.Session.Snapshot.Records)

	resp = decodeTransition(t, s.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/select",
		`{"region":"Biobío"}`))
	assert.Equal(t, "Biobío", resp.Session.Focus.Region)
	assert.Equal(t, 1, resp.Session.Snapshot.Records)

	resp = decodeTransition(t, s.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/select", `{"region":""}`))
	assert.Equal(t, session.Unfocused, resp.Session.Focus.State)

	resp = decodeTransition(t, s.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/reset", ""))
	assert.Equal(t, 3, resp.Session.Snapshot.Records)
	assert.True(t, resp.Session.Snapshot.Criteria.IsEmpty())
}

func TestEmptyViewIsValid(t *testing.T) {
	s := newTestServer(t, false)
	id := s.create(t).ID

	resp := decodeTransition(t, s.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/filters",
		`{"regions":["Maule"],"axes":["Minería"]}`))
	assert.True(t, resp.Session.Snapshot.Empty)
	assert.Contains(t, resp.Session.Snapshot.Summary, "No hay datos")
}

func TestBadRequests(t *testing.T) {
	s := newTestServer(t, false)
	id := s.create(t).ID

	tests := []struct {
		name, method, path, body string
		want                     int
	}{
		{"malformed json", http.MethodPut, "/filters", `{"regions":`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/click", `{"chart":"radar","bogus":1}`, http.StatusBadRequest},
		{"missing body", http.MethodPost, "/select", "", http.StatusBadRequest},
		{"unknown chart", http.MethodGet, "/charts/pie", "", http.StatusBadRequest},
		{"no overlay", http.MethodGet, "/regions", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, "/api/v1/sessions/"+id+tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	w := s.do(t, http.MethodPost, "/api/v1/sessions/nope/click", `{"chart":"radar","label":"Maule"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChartsAndWorkbook(t *testing.T) {
	s := newTestServer(t, false)
	id := s.create(t).ID

	for _, chart := range []string{"radar", "categories"} {
		w := s.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/charts/"+chart, "")
		require.Equal(t, http.StatusOK, w.Code, chart)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
	}

	w := s.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/workbook", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "needsradar.xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestRegionsJoin(t *testing.T) {
	s := newTestServer(t, true)
	id := s.create(t).ID

	w := s.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/regions", "")
	require.Equal(t, http.StatusOK, w.Code)
	var join loader.Join
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &join))

	counts := map[string]int{}
	for _, rc := range join.Regions {
		counts[rc.Region] = rc.Records
	}
	assert.Equal(t, map[string]int{"Maule": 2, "Atacama": 0}, counts)
	assert.Equal(t, []string{"Biobío"}, join.Unmatched)
}

func TestSelectMapRegionWithoutData(t *testing.T) {
	s := newTestServer(t, true)
	id := s.create(t).ID

	resp := decodeTransition(t, s.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/select", `{"region":"Atacama"}`))
	assert.True(t, resp.Transition.Applied)
	assert.Equal(t, session.Focus{State: session.Focused, Region: "Atacama"}, resp.Session.Focus)
	require.NotNil(t, resp.Session.Snapshot)
	assert.Equal(t, "Atacama", resp.Session.Snapshot.Criteria.FocusedRegion)
	assert.True(t, resp.Session.Snapshot.Empty)
	assert.Contains(t, resp.Session.Snapshot.Summary, "No hay datos disponibles para la región de Atacama")

	w := s.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/regions", "")
	require.Equal(t, http.StatusOK, w.Code)
	var join loader.Join
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &join))
	for _, rc := range join.Regions {
		assert.Zero(t, rc.Records, rc.Region)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, false)
	id := s.create(t).ID
	s.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/click", `{"chart":"radar","label":"Maule"}`)

	w := s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `needsradar_session_transitions_total{applied="true",reason="focused",source="radar"} 1`)
	assert.Contains(t, body, `route="/api/v1/sessions/{sessionID}/click"`)
	assert.Contains(t, body, "needsradar_session_live 1")
}

func TestServerRunStopsOnCancel(t *testing.T) {
	srv := New(config.ServerConfig{Addr: "127.0.0.1:0"}, http.NotFoundHandler(), logging.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
