package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"contentflow/internal/gateway/handler"
	"contentflow/internal/gateway/handler/rpc"
	"contentflow/internal/gateway/middleware"
)

type Handlers struct {
	Checklist *rpc.ChecklistHandler
	Assistant *rpc.AssistantHandler
	Assets    *handler.AssetHandler
	Trace     *handler.TraceHandler
}

func NewMux(h Handlers, corsOrigins []string, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// RPC Handlers
	mux.Handle(rpc.NewChecklistServiceHandler(h.Checklist))
	mux.Handle(rpc.NewAssistantServiceHandler(h.Assistant))

	// Streams and downloads
	mux.HandleFunc("GET /ws/assistant", h.Assistant.HandleAssistantWS)
	mux.HandleFunc("/assets/{key...}", h.Assets.HandleAsset)

	// Ops
	mux.HandleFunc("GET /healthz", handler.HandleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("/debug/frontend-trace", h.Trace.HandleFrontendTrace)

	return middleware.Chain(mux,
		middleware.CORS(corsOrigins),
		func(next http.Handler) http.Handler { return otelhttp.NewHandler(next, "contentflow") },
		middleware.Logging(logger),
		middleware.Metrics,
	)
}
