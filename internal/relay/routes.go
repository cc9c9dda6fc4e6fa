package relay

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matiasleandrokruk/shopassist/internal/infra/ratelimit"
)

// RouterConfig wires the relay routes. JWTSecret and Limiter are optional.
type RouterConfig struct {
	Forwarder Forwarder
	JWTSecret []byte
	Limiter   ratelimit.Limiter
	Logger    *slog.Logger
}

// NewRouter builds the relay's chi router.
func NewRouter(cfg RouterConfig) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", Health)

	chat := NewChatHandler(cfg.Forwarder, logger, len(cfg.JWTSecret) > 0)
	r.Group(func(r chi.Router) {
		if len(cfg.JWTSecret) > 0 {
			r.Use(AuthMiddleware(cfg.JWTSecret))
		}
		if cfg.Limiter != nil {
			r.Use(RateLimitMiddleware(cfg.Limiter, logger))
		}
		r.Post("/chat", chat.Chat)
		// Path the storefront widget posts to.
		r.Post("/chatbot/chat", chat.Chat)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return r
}
