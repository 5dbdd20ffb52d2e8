package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/izposoja/internal/api"
	"github.com/erazemk/izposoja/internal/config"
	"github.com/erazemk/izposoja/internal/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("izposoja", flag.ContinueOnError)
	cfg.RegisterServerFlags(fs)

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: izposoja [flags]

Flags:
  -d, -db <path>          SQLite database path (env IZPOSOJA_DB, default: izposoja.sqlite3)
  -a, -addr <host:port>   listen address (env IZPOSOJA_ADDR, default: :8080)
  -l, -log <path>         log file path (env IZPOSOJA_LOG, default: stdout/stderr only)
  -critical <percent>     flag items below this integrity (env IZPOSOJA_CRITICAL_INTEGRITY, default: 20)
  -h, -help               show this help and exit

Environment:
  IZPOSOJA_LOG_LEVEL         debug, info, warn, error (default: info)
  IZPOSOJA_LOG_FORMAT        text, json (default: text)
  IZPOSOJA_SHUTDOWN_TIMEOUT  graceful shutdown timeout (default: 5s)

A .env file in the working directory is read first, if present.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := config.SetupLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Creates the schema on first run and upgrades it afterwards.
	if err := db.Migrate(database); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	version, err := db.SchemaVersion(database)
	if err != nil {
		slog.Error("failed to read schema version", "error", err)
		os.Exit(1)
	}
	slog.Info("database ready", "path", cfg.DBPath, "schema_version", version)

	router := api.NewRouter(database, api.Options{CriticalIntegrity: cfg.CriticalIntegrity})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "critical_integrity", cfg.CriticalIntegrity)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped, closing database")
}
