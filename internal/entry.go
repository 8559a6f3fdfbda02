// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/ForestKatsch/apogee-ssg/internal/api"
	"github.com/ForestKatsch/apogee-ssg/internal/apperr"
	"github.com/ForestKatsch/apogee-ssg/internal/buildservice"
	"github.com/ForestKatsch/apogee-ssg/internal/handlers"
	"github.com/ForestKatsch/apogee-ssg/internal/index"
	"github.com/ForestKatsch/apogee-ssg/internal/logging"
	"github.com/ForestKatsch/apogee-ssg/internal/mcpserver"
	"github.com/ForestKatsch/apogee-ssg/internal/metrics"
	"github.com/ForestKatsch/apogee-ssg/internal/site"
	"github.com/ForestKatsch/apogee-ssg/internal/sse"
)

const shutdownTimeout = 10 * time.Second

func newApplication(opts []Option) *application {
	app := &application{logOutput: os.Stderr, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// load returns the current configuration and its root directory.
func (a *application) load() (*Config, string, error) {
	if a.configFile != "" {
		cfg, err := LoadConfig(a.configFile)
		if err != nil {
			return nil, "", err
		}
		return cfg, Root(a.configFile), nil
	}
	if a.config == nil {
		return nil, "", apperr.New(apperr.KindConfig, "config is required")
	}
	if err := a.config.Validate(); err != nil {
		return nil, "", site.ConfigError("", err)
	}
	return a.config, ".", nil
}

// source reloads the site configuration for every build.
func (a *application) source() buildservice.ConfigSource {
	return func() (site.Config, string, error) {
		cfg, root, err := a.load()
		if err != nil {
			return site.Config{}, "", err
		}
		return cfg.Config, root, nil
	}
}

func (a *application) logger(cfg *Config) (*slog.Logger, error) {
	logger, err := logging.New(a.logOutput, cfg.App.LogFormat, cfg.App.LogLevel)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindConfig, "invalid app.log_format")
	}
	slog.SetDefault(logger)
	return logger, nil
}

// openIndex opens the page index, or returns nil when index.path is empty.
func openIndex(cfg *Config, root string) (*index.DB, error) {
	p := resolve(root, cfg.Index.Path)
	if p == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, apperr.Wrap(err, apperr.KindPermission, "could not create index directory").With("path", p)
	}
	db, err := index.Open(p)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindConfig, "could not open page index '%s'", p).With("path", p)
	}
	return db, nil
}

// Build runs one full build and syncs the page index.
func Build(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	cfg, root, err := app.load()
	if err != nil {
		return err
	}
	logger, err := app.logger(cfg)
	if err != nil {
		return err
	}

	s := site.New(site.WithLogger(logger), site.WithFactories(handlers.Defaults()))
	if err := s.Configure(ctx, cfg.Config, root); err != nil {
		return err
	}
	report, err := s.Build(ctx)
	if err != nil {
		return err
	}

	db, err := openIndex(cfg, root)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		if err := index.Sync(db, s, report.BuildID, logger); err != nil {
			logger.Warn("index sync failed", logging.Err(err))
		}
	}

	logger.Debug("build report",
		slog.String("build_id", report.BuildID),
		slog.Int("pages", report.Pages),
		slog.Int("static_files", report.StaticFiles),
		slog.Duration("duration", report.Duration))
	return nil
}

// services holds what Serve and ServeMCP share.
type services struct {
	cfg      *Config
	root     string
	logger   *slog.Logger
	db       *index.DB
	registry *prom.Registry
	broker   *sse.Broker
	svc      *buildservice.Service
}

func (a *application) services() (*services, error) {
	cfg, root, err := a.load()
	if err != nil {
		return nil, err
	}
	logger, err := a.logger(cfg)
	if err != nil {
		return nil, err
	}
	db, err := openIndex(cfg, root)
	if err != nil {
		return nil, err
	}

	recorder := metrics.NewPrometheusRecorder(prom.NewRegistry())
	broker := sse.NewBroker(time.Second)

	opts := []buildservice.Option{
		buildservice.WithLogger(logger),
		buildservice.WithRecorder(recorder),
		buildservice.WithEvents(broker),
	}
	if db != nil {
		opts = append(opts, buildservice.WithIndex(db))
	}

	return &services{
		cfg:      cfg,
		root:     root,
		logger:   logger,
		db:       db,
		registry: recorder.Registry(),
		broker:   broker,
		svc:      buildservice.NewService(a.source(), handlers.Defaults(), opts...),
	}, nil
}

func (s *services) close() {
	s.broker.Close()
	if s.db != nil {
		s.db.Close()
	}
}

// router mounts health checks, metrics, the API and the built site.
func (s *services) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if s.svc.Site() == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"building"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", metrics.HTTPHandler(s.registry))

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(s.svc, s.cfg.Auth.AuthEnabled(), s.cfg.Auth.Token, s.broker))

	// Everything else is the output root.
	r.Handle("/*", http.FileServer(http.Dir(resolve(s.root, s.cfg.Output.Path))))

	return r
}

// Serve builds the site once, then serves it with the preview API until ctx
// ends or a shutdown signal arrives.
func Serve(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	s, err := app.services()
	if err != nil {
		return err
	}
	defer s.close()
	logger := s.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", s.cfg.App.HTTP.Address()),
		slog.String("content_path", s.cfg.Content.Path),
		slog.String("output_path", s.cfg.Output.Path),
		slog.String("index_path", s.cfg.Index.Path),
		slog.String("log_level", s.cfg.App.LogLevel.String()))

	// A failed initial build is reported; the API can trigger another.
	if _, err := s.svc.Build(ctx); err != nil {
		logger.Warn("initial build failed", logging.Err(err))
	}

	httpServer := &http.Server{
		Addr:              s.cfg.App.HTTP.Address(),
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", s.cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", logging.Err(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// ServeMCP serves the MCP tools on stdin/stdout. Logs go to the configured
// log output, never stdout.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	s, err := app.services()
	if err != nil {
		return err
	}
	defer s.close()

	if _, err := s.svc.Build(ctx); err != nil {
		s.logger.Warn("initial build failed", logging.Err(err))
	}
	return mcpserver.New(s.svc, app.version).ServeStdio()
}
