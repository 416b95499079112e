// Package app wires the application together: configuration, logging,
// metrics, services, handlers and the HTTP server lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"csvdesk/internal/config"
	"csvdesk/internal/files"
	"csvdesk/internal/infrastructure"
	"csvdesk/internal/mail"
	custommw "csvdesk/internal/middleware"
	"csvdesk/internal/services"
	"csvdesk/internal/session"
	transport "csvdesk/internal/transport/http"
)

// Application is the dependency container for the web server.
type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	Router  chi.Router
	Server  *http.Server
	Metrics *infrastructure.Metrics

	registry *prometheus.Registry

	csvService    *services.CSVService
	healthService *services.HealthService
	webHandler    *transport.WebHandler
	healthHandler *transport.HealthHandler
}

// NewApplication builds the full application. A missing .env file is not
// an error; environment variables and the optional YAML file still apply.
func NewApplication() (*Application, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	slog.SetDefault(logger)

	if err := cfg.EnsureUploadDir(); err != nil {
		return nil, fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	// The application owns its registry so repeated construction never
	// collides on global collector registration.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := &Application{
		Config:   cfg,
		Logger:   logger,
		Metrics:  infrastructure.NewMetrics(registry),
		registry: registry,
	}
	if err := app.initializeServices(); err != nil {
		return nil, err
	}
	app.setupRouter()
	app.createServer()
	return app, nil
}

func (a *Application) initializeServices() error {
	sender := mail.NewSender(a.Config.Mail, a.Logger)
	if !sender.Configured() {
		a.Logger.Warn("mail transport not configured; summary emails disabled")
	}

	a.csvService = services.NewCSVService(a.Config, sender, a.Metrics, a.Logger)
	a.healthService = services.NewHealthService(a.Config, sender, a.Logger)

	uploads := files.NewManager(a.Config, a.Logger)
	sessions := session.NewStore(a.Config)

	webHandler, err := transport.NewWebHandler(a.Config, a.csvService, uploads, sessions, a.Metrics, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create web handler: %w", err)
	}
	a.webHandler = webHandler
	a.healthHandler = transport.NewHealthHandler(a.healthService, a.Logger)
	return nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(a.Logger))
	r.Use(custommw.Recoverer(a.Logger))
	r.Use(custommw.SecurityHeaders)
	if a.Config.Server.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(a.Config.Server.RateLimit.RPS, a.Config.Server.RateLimit.Burst, a.Logger)
		r.Use(limiter.Handler)
	}

	r.Get("/", a.webHandler.Index)
	r.With(custommw.MaxBytes(a.Config.Upload.MaxBytes)).Post("/upload", a.webHandler.Upload)
	r.Get("/display", a.webHandler.Display)
	r.Post("/filter", a.webHandler.Filter)
	r.Post("/email", a.webHandler.Email)

	r.Get("/api/health", a.healthHandler.Check)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start begins serving. The server runs in its own goroutine; a listen
// failure cancels the given context.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("port", a.Config.Server.Port),
		slog.String("upload_dir", a.Config.Upload.Dir))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.ErrorContext(ctx, "failed to close log file", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return nil
}

// Run serves until interrupted, then shuts down gracefully.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
