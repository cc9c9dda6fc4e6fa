// Storefront relay: validates browser chat requests and forwards them to the
// assistant service with the caller's Authorization header.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/matiasleandrokruk/shopassist/internal/infra/config"
	"github.com/matiasleandrokruk/shopassist/internal/infra/ratelimit"
	"github.com/matiasleandrokruk/shopassist/internal/relay"
	"github.com/matiasleandrokruk/shopassist/internal/server"
	"github.com/matiasleandrokruk/shopassist/internal/version"
)

const (
	binaryName      = "storefront"
	shutdownTimeout = 35 * time.Second
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet(binaryName, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")
	envFile := fs.String("env-file", ".env", "Optional dotenv file loaded before reading the environment")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String(binaryName)) //nolint:errcheck
		return 0
	}

	if *showHelp {
		printHelp(out)
		return 0
	}

	return serve(*envFile, out)
}

func serve(envFile string, out io.Writer) int {
	_ = godotenv.Load(envFile)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(out, "configuration error: %v\n", err) //nolint:errcheck
		return 1
	}

	level := slog.LevelDebug
	if cfg.IsProduction() {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := newLimiter(ctx, cfg.RateLimit, logger)
	handler := relay.NewRouter(relay.RouterConfig{
		Forwarder: relay.NewClient(cfg.Relay.AssistantURL, cfg.Relay.Timeout),
		JWTSecret: []byte(cfg.Relay.JWTSecret),
		Limiter:   limiter,
		Logger:    logger,
	})

	srvCfg := server.DefaultConfig()
	srvCfg.Host = cfg.Relay.Host
	srvCfg.Port = cfg.Relay.Port
	srv := server.NewServer(handler, srvCfg, logger, limiter)

	logger.Info("storefront relay ready",
		slog.String("addr", srv.Addr()),
		slog.String("assistant_url", cfg.Relay.AssistantURL),
		slog.Bool("jwt", cfg.Relay.JWTSecret != ""))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		return 1
	}
	return 0
}

// newLimiter prefers Redis and falls back to process memory when REDIS_URL is
// unset or unreachable.
func newLimiter(ctx context.Context, cfg config.RateLimitConfig, logger *slog.Logger) ratelimit.Limiter {
	if cfg.RedisURL != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		rl, err := ratelimit.NewRedisLimiter(pingCtx, cfg.RedisURL, cfg.Requests, cfg.Window)
		if err == nil {
			return rl
		}
		logger.Warn("redis rate limiter unavailable, using in-memory limiter", slog.String("error", err.Error()))
	}
	return ratelimit.NewMemoryLimiter(cfg.Requests, cfg.Window)
}

func printHelp(out io.Writer) {
	helpText := `shopassist storefront - chat relay in front of the assistant service

Usage:
  storefront [options]

Options:
  --version          Show version information
  --help             Show this help message
  --env-file PATH    Load environment from PATH first (default .env)

Environment:
  STOREFRONT_HOST, STOREFRONT_PORT    listen address (0.0.0.0:8080)
  ASSISTANT_URL, RELAY_TIMEOUT        assistant service and forward timeout (30s)
  JWT_SECRET                          verify bearer tokens when set
  REDIS_URL                           shared rate limiter (in-memory when unset)
  RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW

Routes:
  GET  /health
  POST /chat
  POST /chatbot/chat`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
