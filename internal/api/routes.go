// Package api is the assistant service's HTTP surface.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matiasleandrokruk/shopassist/internal/api/handlers"
	apimiddleware "github.com/matiasleandrokruk/shopassist/internal/api/middleware"
)

// ServiceName is reported by /health.
const ServiceName = "shopassist-assistant"

// Deps are the services behind the routes. Model, Audit and MCP are optional:
// their routes are only mounted when set.
type Deps struct {
	Chat           handlers.ChatService
	Tools          handlers.ToolCatalog
	ToolStats      handlers.ToolStats
	Model          handlers.HealthChecker
	Audit          handlers.AuditReader
	MCP            http.Handler
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter creates the chi router with all assistant routes.
func NewRouter(deps Deps) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apimiddleware.CORS(deps.AllowedOrigins))

	r.Get("/health", handlers.Health(ServiceName))
	if deps.Model != nil {
		r.Get("/ready", handlers.Ready(deps.Model, logger))
	}

	chatHandler := handlers.NewChatHandler(deps.Chat, logger)
	r.Post("/chat", chatHandler.Chat)

	toolHandler := handlers.NewToolHandler(deps.Tools, deps.ToolStats)
	r.Get("/tools", toolHandler.ListTools)

	if deps.Audit != nil {
		auditHandler := handlers.NewAuditHandler(deps.Audit, logger)
		r.Get("/audit/tool-dispatches", auditHandler.ListDispatches)
	}

	if deps.MCP != nil {
		r.Handle("/mcp", deps.MCP)
	}

	return r
}
