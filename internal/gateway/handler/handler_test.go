package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentflow/internal/checklist"
	"contentflow/internal/export"
)

func newAssetMux(t *testing.T) (*http.ServeMux, export.Asset) {
	t.Helper()
	exporter := export.NewExporter(export.NewMemoryStore(), "/assets/", zerolog.Nop())
	asset, err := exporter.Export(context.Background(), "keyword-research", checklist.TextOutput("kw1, kw2"))
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/assets/{key...}", NewAssetHandler(exporter).HandleAsset)
	return mux, asset
}

func TestHandleAssetServesExport(t *testing.T) {
	mux, asset := newAssetMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, asset.URL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "kw1, kw2", rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), asset.FileName)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, asset.URL, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHandleAssetMissingAndMethod(t *testing.T) {
	mux, asset := newAssetMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/nope/missing.txt", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, asset.URL, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestFrontendTraceLogs(t *testing.T) {
	var buf bytes.Buffer
	h := NewTraceHandler(zerolog.New(&buf))

	body := `{"stage":"modal.open","level":"warn","session_id":"s-1","fields":{"item":"keyword-research"}}`
	rec := httptest.NewRecorder()
	h.HandleFrontendTrace(rec, httptest.NewRequest(http.MethodPost, "/debug/frontend-trace", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"stage":"modal.open"`)
	assert.Contains(t, buf.String(), `"session":"s-1"`)

	rec = httptest.NewRecorder()
	h.HandleFrontendTrace(rec, httptest.NewRequest(http.MethodPost, "/debug/frontend-trace", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleFrontendTrace(rec, httptest.NewRequest(http.MethodGet, "/debug/frontend-trace", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
