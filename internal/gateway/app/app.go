package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"contentflow/internal/assistant"
	"contentflow/internal/checklist"
	"contentflow/internal/export"
	"contentflow/internal/gateway/config"
	"contentflow/internal/gateway/handler"
	"contentflow/internal/gateway/handler/rpc"
	"contentflow/internal/gateway/server"
	"contentflow/internal/llm"
	"contentflow/internal/tracer"
)

type App struct {
	server        *server.Server
	handler       http.Handler
	generator     llm.Generator
	traceShutdown func(context.Context) error
}

// New wires the gateway from cfg. cfg must already be normalized.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	phases, err := loadSeed(cfg.SeedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load checklist seed: %w", err)
	}
	model, err := checklist.NewModel(phases)
	if err != nil {
		return nil, fmt.Errorf("failed to build checklist: %w", err)
	}

	tr, traceShutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: tracer.ServiceName,
		Environment: cfg.Env,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}

	gen, err := newGenerator(ctx, cfg.LLM)
	if err != nil {
		_ = traceShutdown(ctx)
		return nil, fmt.Errorf("failed to init generator: %w", err)
	}
	gen = llm.Wrap(gen,
		llm.WithTracing(tr),
		llm.WithLogging(logger),
		llm.WithMetrics(),
		llm.RateLimit(cfg.LLM.RPS, cfg.LLM.Burst),
	)

	policy, err := assistant.ParsePolicy(cfg.FailurePolicy)
	if err != nil {
		_ = traceShutdown(ctx)
		return nil, err
	}
	mgr, err := assistant.New(assistant.Config{
		Generator:  gen,
		Checklist:  model,
		Policy:     policy,
		CloseDelay: cfg.CloseDelay,
		Logger:     logger,
	})
	if err != nil {
		_ = traceShutdown(ctx)
		return nil, err
	}

	store, err := initExportStore(cfg.Export, logger)
	if err != nil {
		_ = traceShutdown(ctx)
		return nil, err
	}
	exporter := export.NewExporter(store, "/assets/", logger)

	mux := server.NewMux(server.Handlers{
		Checklist: rpc.NewChecklistHandler(model),
		Assistant: rpc.NewAssistantHandler(mgr, model, exporter, cfg.CORSOrigins, logger),
		Assets:    handler.NewAssetHandler(exporter),
		Trace:     handler.NewTraceHandler(logger),
	}, cfg.CORSOrigins, logger)

	logger.Info().
		Str("env", cfg.Env).
		Str("provider", gen.Name()).
		Str("failure_policy", string(policy)).
		Int("phases", len(phases)).
		Msg("gateway configured")

	return &App{
		server:        server.New(cfg.Port, mux, logger),
		handler:       mux,
		generator:     gen,
		traceShutdown: traceShutdown,
	}, nil
}

func loadSeed(path string) ([]checklist.Phase, error) {
	if path == "" {
		return checklist.DefaultSeed(), nil
	}
	return checklist.LoadSeedFile(path)
}

func newGenerator(ctx context.Context, cfg config.LLMConfig) (llm.Generator, error) {
	switch cfg.Provider {
	case config.ProviderFake:
		return llm.NewFakeClient(), nil
	case config.ProviderGemini:
		return llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey:     cfg.APIKey,
			TextModel:  cfg.TextModel,
			ImageModel: cfg.ImageModel,
		})
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}

// Handler exposes the routed handler for in-process tests.
func (a *App) Handler() http.Handler { return a.handler }

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	return errors.Join(
		a.server.Shutdown(ctx),
		a.generator.Close(),
		a.traceShutdown(ctx),
	)
}
