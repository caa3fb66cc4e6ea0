package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"github.com/nursabrinaas08/data-cleaning/internal/config"
	apierrors "github.com/nursabrinaas08/data-cleaning/internal/errors"
	"github.com/nursabrinaas08/data-cleaning/internal/infrastructure"
	customMiddleware "github.com/nursabrinaas08/data-cleaning/internal/middleware"
	"github.com/nursabrinaas08/data-cleaning/internal/services"
	handlers "github.com/nursabrinaas08/data-cleaning/internal/transport/http"
	ws "github.com/nursabrinaas08/data-cleaning/internal/websocket"
	"github.com/nursabrinaas08/data-cleaning/pkg/contracts"
)

// AppName is reported at startup
const AppName = "Data Cleaning Service"

// multipartOverhead is allowed on top of the upload limit for form fields
// and part headers
const multipartOverhead = 1 << 20

// Application represents the main application container
type Application struct {
	Config          *config.Config
	Router          *chi.Mux
	Server          *http.Server
	Logger          *slog.Logger
	OTelProviders   *infrastructure.OTelProviders
	Metrics         *infrastructure.BusinessMetrics
	ErrorHandler    *apierrors.ErrorHandler
	CleaningService *services.CleaningService
	HealthService   *services.HealthService
	WebSocketHub    *ws.Hub

	otelMiddleware *customMiddleware.OTelMiddleware
	startTime      time.Time
}

// NewApplication creates a new application instance from the environment
// and the optional configuration file
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewApplicationWithConfig(cfg, logger)
}

// NewApplicationWithConfig wires the application from an explicit
// configuration. logger may be nil.
func NewApplicationWithConfig(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("address", cfg.Server.Addr()))

	otelProviders, err := infrastructure.InitializeOTel(
		infrastructure.OTelConfigFrom(cfg.Telemetry, contracts.Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
		startTime:     time.Now(),
	}

	if err := app.initializeServices(); err != nil {
		otelProviders.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		return fmt.Errorf("failed to create OpenTelemetry middleware: %w", err)
	}
	a.otelMiddleware = otelMiddleware
	a.Metrics = otelMiddleware.Metrics()

	if err := infrastructure.RegisterRuntimeMetrics(a.OTelProviders.Meter, a.startTime); err != nil {
		return fmt.Errorf("failed to register runtime metrics: %w", err)
	}

	a.CleaningService = services.NewCleaningService(a.Config, a.Metrics, a.Logger)

	var sessions services.SessionCounter
	if a.Config.WebSocket.Enabled {
		hub := ws.NewHub(a.Metrics, a.Logger)
		hub.Start()
		a.WebSocketHub = hub
		sessions = hub
	}

	a.HealthService = services.NewHealthService(a.CleaningService, sessions, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// These don't wrap the ResponseWriter, so the WebSocket upgrade still
	// reaches the hijacker
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	if a.WebSocketHub != nil {
		wsHandler := ws.NewHandler(a.WebSocketHub, a.CleaningService, a.Config, a.Logger)
		r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).Get(config.WebSocketEndpoint, wsHandler.ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → Headers → CORS
		r.Use(a.otelMiddleware.Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(apierrors.RecoveryMiddleware(a.ErrorHandler))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.CORS(a.getCORSConfig()))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)

		r.Handle(config.MetricsEndpoint,
			handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.Logger, a.ErrorHandler))
	})

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.OperationTimeout, a.Logger))

			bodyLimit := customMiddleware.NewValidationMiddleware(a.Logger, a.ErrorHandler,
				a.Config.Upload.MaxBytes+multipartOverhead)
			r.Use(bodyLimit.LimitBody)

			cleaningHandler := handlers.NewCleaningHandler(a.CleaningService, a.Logger, a.ErrorHandler)
			r.Mount("/v1", cleaningHandler.Routes())
		})
	})
}

// getCORSConfig builds the CORS policy. Development mode also admits the
// local frontend dev servers.
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cors := customMiddleware.CORSConfig{
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}

	if a.Config.Security.EnableCORS {
		cors.AllowedOrigins = append(cors.AllowedOrigins, a.Config.Security.AllowedOrigins...)
	}
	if a.Config.Logging.Development {
		cors.AllowedOrigins = append(cors.AllowedOrigins,
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		)
	}

	a.Logger.Info("CORS configured",
		slog.Bool("development", a.Config.Logging.Development),
		slog.Any("allowed_origins", cors.AllowedOrigins))
	return cors
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Serve accepts connections on l until ctx is cancelled or the server fails,
// then shuts down gracefully
func (a *Application) Serve(ctx context.Context, l net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "HTTP server listening",
			slog.String("address", l.Addr().String()),
			slog.String("version", contracts.Version))
		if err := a.Server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Run listens on the configured address and serves until SIGINT or SIGTERM
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		a.Stop(context.Background())
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}

	go func() {
		<-ctx.Done()
		a.Logger.Info("Received shutdown signal")
	}()

	return a.Serve(ctx, l)
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	// Hijacked WebSocket connections are not tracked by Shutdown
	if a.WebSocketHub != nil {
		a.WebSocketHub.Stop()
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete",
		slog.Duration("uptime", time.Since(a.startTime)))

	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, fmt.Errorf("close log file: %w", err))
	}
	return errors.Join(errs...)
}
