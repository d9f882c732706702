package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/justinhuttinger/abc-to-ghl-api/internal/adapters/abc"
	"github.com/justinhuttinger/abc-to-ghl-api/internal/adapters/ghl"
	"github.com/justinhuttinger/abc-to-ghl-api/internal/adapters/http/api"
	"github.com/justinhuttinger/abc-to-ghl-api/internal/adapters/http/swagger"
	app "github.com/justinhuttinger/abc-to-ghl-api/internal/app"
	"github.com/justinhuttinger/abc-to-ghl-api/internal/config"
	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/window"
	"github.com/justinhuttinger/abc-to-ghl-api/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Minute // sync runs stream back their full result
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	source := abc.New(cfg.Source.BaseURL, cfg.Source.AppID, cfg.Source.AppKey,
		abc.WithPageSize(cfg.PageSize),
		abc.WithPageCap(cfg.PageCap),
		abc.WithExcludedTypes(cfg.ExcludedTypes),
		abc.WithLogger(loggerInstance.Named("abc")),
	)
	directory := ghl.New(cfg.Target.BaseURL,
		ghl.WithAPIVersion(cfg.Target.APIVersion),
		ghl.WithLogger(loggerInstance.Named("ghl")),
	)

	// Create and start the service with configuration options
	svc := app.New(
		app.WithLogger(loggerInstance),
		app.WithSourceClient(source),
		app.WithDirectory(directory),
		app.WithClubs(cfg.Clubs),
		app.WithKinds(cfg.RecordKinds()),
		app.WithFieldMap(cfg.Fields()),
		app.WithActionTags(cfg.ActionTags),
		app.WithWriteDelay(time.Duration(cfg.WriteDelayMS)*time.Millisecond),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer svc.Stop()

	if cfg.RunMode == config.ModeOnce {
		runOnce(ctx, svc, cfg)
		return
	}

	serve(ctx, svc, cfg)
}

// runOnce executes a single full run over the configured trailing window and
// exits non-zero when any club/kind pass failed outright.
func runOnce(ctx context.Context, svc *app.Service, cfg *config.Config) {
	l := logger.Get()

	win := window.ForDays(time.Now(), cfg.WindowDays)
	run, err := svc.RunAll(ctx, win)
	if err != nil {
		l.Error(ctx, "run failed", logger.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	if len(run.Failures) > 0 {
		l.Error(ctx, "run finished with batch failures",
			logger.String("runID", run.RunID),
			logger.Int("failures", len(run.Failures)),
		)
		_ = logger.Sync()
		os.Exit(1)
	}

	l.Info(ctx, "run complete",
		logger.String("runID", run.RunID),
		logger.Int("batches", len(run.Batches)),
	)
}

// serve runs the admin HTTP server until the process is signaled.
func serve(ctx context.Context, svc *app.Service, cfg *config.Config) {
	l := logger.Get()

	// HTTP mux and routes.
	mux := http.NewServeMux()

	// Register API docs under /api-docs
	swagger.Register(ctx, mux)

	// Register business API routes with the service dependency.
	apiServer := api.NewServer(svc, cfg.WindowDays)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		l.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	l.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	l.Info(ctx, "server stopped")
}
