package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ukaji3/speclimits-go/pkg/speclimits"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	opts := speclimits.DefaultOptions()
	opts.Sources = []speclimits.Source{
		{Process: models.ProcessCD, Path: write("CD_unificado.csv",
			"Maquina,Fecha,Hora,GET_VOLT\nM1,02/01/2024,08:00,3.3\nM1,02/02/2024,09:00,3.9\nM2,02/01/2024,10:00,x\n")},
		{Process: models.ProcessCW, Path: write("CW_unificado.csv",
			"machine,timestamp,RSSI\nM1,2024-02-03 11:00:00,-40\n")},
	}
	opts.LimitsPath = write("limites.csv", "Maquina,Variable,LSL,USL,Tipo\nM1,GET_VOLT,3.0,3.6,CD\n")
	opts.Logger = zaptest.NewLogger(t)

	ds, err := speclimits.Load(context.Background(), opts)
	require.NoError(t, err)
	return New(ds, zaptest.NewLogger(t))
}

func get(t *testing.T, s *Server, url string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	var body map[string]string
	rec := get(t, s, "/healthz", &body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestSources(t *testing.T) {
	s := newTestServer(t)
	var body struct {
		Sources     []speclimits.SourceReport `json:"sources"`
		LimitLayout string                    `json:"limit_layout"`
		LimitCount  int                       `json:"limit_count"`
	}
	rec := get(t, s, "/api/sources", &body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body.Sources, 2)
	assert.Equal(t, "flat", body.LimitLayout)
	assert.Equal(t, 1, body.LimitCount)
}

func TestOptions(t *testing.T) {
	s := newTestServer(t)
	var body struct {
		Processes []string `json:"processes"`
		Machines  []string `json:"machines"`
		Variables []string `json:"variables"`
		From      string   `json:"from"`
		To        string   `json:"to"`
	}
	rec := get(t, s, "/api/options?process=CD", &body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"CD", "CW"}, body.Processes)
	assert.Equal(t, []string{"M1", "M2"}, body.Machines)
	assert.Equal(t, []string{"GET_VOLT"}, body.Variables)
	assert.Equal(t, "2024-02-01T08:00:00Z", body.From)
	assert.Equal(t, "2024-02-02T09:00:00Z", body.To)
}

func TestMeasurements(t *testing.T) {
	s := newTestServer(t)
	var body struct {
		Count     int            `json:"count"`
		OutOfSpec int            `json:"out_of_spec"`
		Matches   []models.Match `json:"matches"`
	}
	rec := get(t, s, "/api/measurements?process=CD&limit=1", &body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, body.Count)
	assert.Equal(t, 1, body.OutOfSpec)
	require.Len(t, body.Matches, 1)
	assert.Equal(t, models.StatusInSpec, body.Matches[0].Status)

	rec = get(t, s, "/api/measurements?from=2024-02-02", &body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, body.Count)
}

func TestBadRequests(t *testing.T) {
	s := newTestServer(t)
	for _, url := range []string{
		"/api/measurements?limit=-1",
		"/api/measurements?process=CX",
		"/api/summary?from=yesterday",
		"/api/limits?to=soon",
		"/api/export.csv?process=XX",
	} {
		rec := get(t, s, url, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, url)
		assert.Contains(t, rec.Body.String(), `"error"`, url)
	}
}

func TestLimitsAndSummary(t *testing.T) {
	s := newTestServer(t)

	var limits struct {
		Count  int                `json:"count"`
		Limits []models.LimitRule `json:"limits"`
	}
	rec := get(t, s, "/api/limits", &limits)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, limits.Count)

	rec = get(t, s, "/api/limits?process=CW", &limits)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, limits.Count)

	var summary struct {
		Count     int              `json:"count"`
		Summaries []models.Summary `json:"summaries"`
	}
	rec = get(t, s, "/api/summary?machine=M1", &summary)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, summary.Count)
	assert.Equal(t, 1, summary.Summaries[0].Above)
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/api/export.csv?machine=M2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="datos_filtrados.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t,
		"machine,variable,value,timestamp,process\nM2,GET_VOLT,,2024-02-01T10:00:00Z,CD\n",
		rec.Body.String())
}

func TestRunStopsOnCancel(t *testing.T) {
	// The listener goroutine may log after the test returns.
	s := New(newTestServer(t).ds, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.Run(ctx, "127.0.0.1:0"))
}
