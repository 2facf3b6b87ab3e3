package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentflow/internal/gateway/config"
	"contentflow/internal/gateway/handler/rpc"
)

func newTestApp(t *testing.T) (*App, *httptest.Server) {
	t.Helper()
	cfg := &config.Config{
		Env:         "test",
		CloseDelay:  time.Hour,
		CORSOrigins: []string{"http://localhost:5173"},
		LLM:         config.LLMConfig{Provider: config.ProviderFake},
	}
	require.NoError(t, cfg.Normalize())

	a, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(func() {
		srv.Close()
		require.NoError(t, a.Shutdown(context.Background()))
	})
	return a, srv
}

func postJSON(t *testing.T, url string, in, out any) {
	t.Helper()
	body, err := json.Marshal(in)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestAppServesAssistantAndExports(t *testing.T) {
	_, srv := newTestApp(t)

	var opened rpc.SessionResponse
	postJSON(t, srv.URL+rpc.AssistantOpenProcedure, rpc.OpenRequest{ItemID: "brainstorm-topics"}, &opened)
	id := opened.Session.ID
	postJSON(t, srv.URL+rpc.AssistantSetInputProcedure, rpc.SetInputRequest{SessionID: id, Input: "home coffee"}, &opened)

	var generated rpc.SessionResponse
	postJSON(t, srv.URL+rpc.AssistantGenerateProcedure, rpc.SessionRequest{SessionID: id}, &generated)
	require.NotNil(t, generated.Session.Result)
	assert.Contains(t, generated.Session.Result.Text, "[offline] ")
	assert.Contains(t, generated.Session.Result.Text, "home coffee")

	var committed rpc.CommitResponse
	postJSON(t, srv.URL+rpc.AssistantCommitProcedure, rpc.SessionRequest{SessionID: id}, &committed)
	require.NotNil(t, committed.Item.SavedOutput)

	var exported rpc.ExportItemResponse
	postJSON(t, srv.URL+rpc.AssistantExportItemProcedure, rpc.ExportItemRequest{ItemID: "brainstorm-topics"}, &exported)

	resp, err := http.Get(srv.URL + exported.Asset.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, committed.Item.SavedOutput.Text, string(data))
}

func TestAppOpsEndpoints(t *testing.T) {
	_, srv := newTestApp(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var phases rpc.ListPhasesResponse
	postJSON(t, srv.URL+rpc.ChecklistListPhasesProcedure, rpc.ListPhasesRequest{}, &phases)
	assert.NotEmpty(t, phases.Phases)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "contentflow_http_requests_total")
}

func TestAppCORSPreflight(t *testing.T) {
	_, srv := newTestApp(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+rpc.ChecklistListPhasesProcedure, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://evil.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAssistantWebsocketHonoursAllowedOrigins(t *testing.T) {
	_, srv := newTestApp(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/assistant"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://localhost:5173"}})
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
}

func TestNewRejectsUnknownPolicy(t *testing.T) {
	cfg := &config.Config{FailurePolicy: "shrug", LLM: config.LLMConfig{Provider: config.ProviderFake}}
	require.NoError(t, cfg.Normalize())
	_, err := New(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
}
