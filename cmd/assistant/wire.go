package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/matiasleandrokruk/shopassist/internal/api"
	"github.com/matiasleandrokruk/shopassist/internal/api/handlers"
	apimiddleware "github.com/matiasleandrokruk/shopassist/internal/api/middleware"
	"github.com/matiasleandrokruk/shopassist/internal/domain/agent"
	"github.com/matiasleandrokruk/shopassist/internal/domain/audit"
	"github.com/matiasleandrokruk/shopassist/internal/domain/cart"
	"github.com/matiasleandrokruk/shopassist/internal/domain/catalog"
	"github.com/matiasleandrokruk/shopassist/internal/domain/tool"
	"github.com/matiasleandrokruk/shopassist/internal/infra/backend"
	"github.com/matiasleandrokruk/shopassist/internal/infra/config"
	"github.com/matiasleandrokruk/shopassist/internal/infra/eventbus"
	"github.com/matiasleandrokruk/shopassist/internal/infra/llm"
	"github.com/matiasleandrokruk/shopassist/internal/infra/sqlite"
	"github.com/matiasleandrokruk/shopassist/internal/mcpserver"
)

// assistantApp is the wired service: its router and what to release on shutdown.
type assistantApp struct {
	handler      http.Handler
	orchestrator *agent.Orchestrator
	closers      []io.Closer
}

// buildAssistant constructs every client once from cfg and wires them together.
// The audit consumer is subscribed before this returns and runs until ctx is
// cancelled or the bus is closed.
func buildAssistant(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*assistantApp, error) {
	be := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	products := catalog.NewClient(be)

	registry, err := tool.NewBuiltinRegistry(tool.BuiltinServices{
		Catalog: products,
		Cart:    cart.NewClient(be),
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("tool registry: %w", err)
	}

	bus := eventbus.New()
	closers := []io.Closer{bus}

	var auditReader handlers.AuditReader
	if cfg.Audit.DBPath != "" {
		db, err := sqlite.Open(ctx, cfg.Audit.DBPath)
		if err != nil {
			_ = bus.Close()
			return nil, fmt.Errorf("audit database: %w", err)
		}
		schema, err := sqlite.MigrationVersion(ctx, db)
		if err != nil {
			_ = bus.Close()
			_ = db.Close()
			return nil, fmt.Errorf("audit database: %w", err)
		}
		logger.Info("audit trail enabled",
			slog.String("path", cfg.Audit.DBPath),
			slog.Int("schema_version", schema))

		auditSvc := audit.NewAuditService(db, logger)
		auditSvc.Start(ctx, bus)
		auditReader = auditSvc
		// The bus is closed first so the consumer stops before the db goes away.
		closers = append(closers, db)
	}

	provider := newProvider(cfg.LLM)
	orch := agent.NewOrchestrator(agent.Dependencies{
		Products: products,
		LLM:      provider,
		Tools:    registry,
		Bus:      bus,
		Logger:   logger,
	}, agent.Config{
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})

	mcpSrv, err := mcpserver.New(registry, logger)
	if err != nil {
		closeAll(closers)
		return nil, err
	}

	handler := api.NewRouter(api.Deps{
		Chat:           orch,
		Tools:          registry,
		ToolStats:      orch,
		Model:          provider,
		Audit:          auditReader,
		MCP:            mcpserver.Handler(mcpSrv),
		AllowedOrigins: apimiddleware.SplitOrigins(cfg.Assistant.CORSAllowedOrigin),
		Logger:         logger,
	})

	return &assistantApp{handler: handler, orchestrator: orch, closers: closers}, nil
}

// newProvider registers every provider the config can build and routes to LLM_PROVIDER.
func newProvider(cfg config.LLMConfig) llm.LLMProvider {
	router := llm.NewRouter(nil, cfg.Provider)
	if cfg.OpenAIAPIKey != "" {
		router.Register(config.ProviderOpenAI, llm.NewOpenAIProvider(llm.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}))
	}
	router.Register(config.ProviderOllama, llm.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaModel))
	return router
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}
