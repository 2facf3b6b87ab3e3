package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// TraceHandler records diagnostics posted by the browser.
type TraceHandler struct {
	log zerolog.Logger
}

func NewTraceHandler(logger zerolog.Logger) *TraceHandler {
	return &TraceHandler{log: logger.With().Str("component", "frontend").Logger()}
}

func (h *TraceHandler) HandleFrontendTrace(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		Timestamp string         `json:"timestamp"`
		SessionID string         `json:"session_id"`
		Stage     string         `json:"stage"`
		Level     string         `json:"level"`
		Fields    map[string]any `json:"fields"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&in); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	stage := strings.TrimSpace(in.Stage)
	if stage == "" {
		http.Error(w, "stage is required", http.StatusBadRequest)
		return
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(in.Level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	ev := h.log.WithLevel(lvl).Str("stage", stage)
	if id := strings.TrimSpace(in.SessionID); id != "" {
		ev = ev.Str("session", id)
	}
	if ts := strings.TrimSpace(in.Timestamp); ts != "" {
		ev = ev.Str("frontend_timestamp", ts)
	}
	if len(in.Fields) > 0 {
		ev = ev.Interface("fields", in.Fields)
	}
	ev.Msg("frontend trace")

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok": true,
	})
}
