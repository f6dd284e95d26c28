package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/s1natex/todo-GO/internal/config"
	"github.com/s1natex/todo-GO/internal/middleware"
	"github.com/s1natex/todo-GO/internal/storage"
	"github.com/s1natex/todo-GO/internal/tasks"
	"github.com/s1natex/todo-GO/internal/telemetry"
	"github.com/s1natex/todo-GO/internal/theme"
	"github.com/s1natex/todo-GO/internal/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "todo:", err)
		os.Exit(1)
	}
}

// run parses global flags and dispatches to the serve (default) or tui
// subcommand.
func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("TODO_CONFIG"), "path to a TOML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	subcommand := "serve"
	if fs.NArg() > 0 {
		subcommand = fs.Arg(0)
	}
	if subcommand != "serve" && subcommand != "tui" {
		return fmt.Errorf("unknown command %q (want serve or tui)", subcommand)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	if subcommand == "tui" {
		return runTUI(ctx, cfg)
	}
	return serve(ctx, cfg)
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := newLogger(cfg.SlogLevel(), os.Stdout)
	slog.SetDefault(logger) // for third-party packages that use slog

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.Tracing, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	store, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		logger.Error("storage_open_failed", slog.String("driver", cfg.Storage.Driver), slog.String("error", err.Error()))
		return err
	}
	defer store.Close()

	mgr := tasks.NewManager(store, tasks.WithLogger(logger))
	for _, n := range mgr.Load(ctx) {
		logger.Warn("startup_notice", slog.String("kind", string(n.Kind)), slog.String("message", n.Message))
	}
	prefs := theme.NewPreferences(store, logger)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(mgr, prefs, cfg, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_listen", slog.String("addr", cfg.Addr), slog.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server_error", slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server_shutdown")
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Error("shutdown_error", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func runTUI(ctx context.Context, cfg config.Config) error {
	// stdout belongs to the terminal UI
	var logOut io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := newLogger(cfg.SlogLevel(), logOut)
	slog.SetDefault(logger)

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.Tracing, logOut)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	store, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return err
	}
	defer store.Close()

	mgr := tasks.NewManager(store, tasks.WithLogger(logger))
	notices := mgr.Load(ctx)
	return tui.Run(ctx, mgr, theme.NewPreferences(store, logger), notices)
}

// newRouter wires the health and metrics endpoints, task and theme routes,
// and the middleware stack
func newRouter(m *tasks.Manager, prefs *theme.Preferences, cfg config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// ---- Middleware stack (order matters a bit) ----
	// RequestID first so downstream can include it (logger, errors, etc.)
	r.Use(chimw.RequestID)

	// Panic recovery: never crash the server; returns 500 on panics
	r.Use(chimw.Recoverer)

	// Timeouts: cancel handlers that exceed this duration
	r.Use(chimw.Timeout(15 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "Trace-Id"},
		AllowCredentials: false,
		MaxAge:           300, // 5 minutes
	}))

	r.Use(middleware.TracingMiddleware)
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.RateLimitMiddleware(middleware.NewLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)))

	// ---- Routes ----

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", middleware.MetricsHandler())

	tasks.RegisterRoutes(r, m)
	theme.RegisterRoutes(r, prefs)

	return r
}

func newLogger(level slog.Level, w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}
