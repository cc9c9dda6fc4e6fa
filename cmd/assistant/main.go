// Shopping assistant service: POST /chat orchestration, /tools, /mcp and the
// optional tool-dispatch audit trail.
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
	"github.com/matiasleandrokruk/shopassist/internal/server"
	"github.com/matiasleandrokruk/shopassist/internal/version"
)

const (
	binaryName      = "assistant"
	shutdownTimeout = 15 * time.Second
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
	// A missing .env is normal outside local development.
	_ = godotenv.Load(envFile)

	cfg, err := config.Load()
	if err == nil {
		err = cfg.ValidateAssistant()
	}
	if err != nil {
		fmt.Fprintf(out, "configuration error: %v\n", err) //nolint:errcheck
		return 1
	}

	logger := newLogger(cfg, out)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := buildAssistant(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", slog.String("error", err.Error()))
		return 1
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Host = cfg.Assistant.Host
	srvCfg.Port = cfg.Assistant.Port
	srv := server.NewServer(app.handler, srvCfg, logger, app.closers...)

	logger.Info("assistant ready",
		slog.String("addr", srv.Addr()),
		slog.String("llm_provider", cfg.LLM.Provider),
		slog.String("backend", cfg.Backend.BaseURL),
		slog.Bool("audit", cfg.Audit.DBPath != ""))

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

// newLogger logs JSON to out; debug level everywhere except production.
func newLogger(cfg *config.Config, out io.Writer) *slog.Logger {
	level := slog.LevelDebug
	if cfg.IsProduction() {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
}

func printHelp(out io.Writer) {
	helpText := `shopassist assistant - shopping assistant chat service

Usage:
  assistant [options]

Options:
  --version          Show version information
  --help             Show this help message
  --env-file PATH    Load environment from PATH first (default .env)

Environment:
  ASSISTANT_HOST, ASSISTANT_PORT      listen address (0.0.0.0:3001)
  BACKEND_API_URL, BACKEND_TIMEOUT    product/cart backend
  LLM_PROVIDER                        openai | ollama
  OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_MODEL
  OLLAMA_BASE_URL, OLLAMA_CHAT_MODEL
  LLM_TEMPERATURE, LLM_MAX_TOKENS
  AUDIT_DB_PATH                       sqlite file for the tool-dispatch audit trail
  CORS_ALLOWED_ORIGIN                 comma-separated storefront origins

Routes:
  GET  /health
  GET  /ready                          model provider reachability
  POST /chat
  GET  /tools
  GET  /audit/tool-dispatches?limit=N  (when AUDIT_DB_PATH is set)
  POST /mcp                            Model Context Protocol (streamable HTTP)`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
