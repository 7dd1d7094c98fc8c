package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/soundlens/soundlens/internal/config"
	"github.com/soundlens/soundlens/internal/handlers"
	"github.com/soundlens/soundlens/internal/insights"
	"github.com/soundlens/soundlens/internal/logger"
	"github.com/soundlens/soundlens/internal/middleware"
	"github.com/soundlens/soundlens/internal/spotify"
	"github.com/soundlens/soundlens/internal/store"
	"github.com/soundlens/soundlens/internal/telemetry"
)

const serviceName = "soundlens-api"

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override debug mode if flag is set
	debugMode := cfg.ServerDebugMode || *debugFlag

	// Initialize logger
	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := zapLogger.Sync(); syncErr != nil {
			// Ignore sync errors in production
			_ = syncErr
		}
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry if enabled
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), serviceName, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized",
					zap.String("endpoint", cfg.OTELEndpoint),
				)
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// In-memory state: sessions and the per-user insight cache
	sessions := store.NewSessionStore(cfg.SessionTTL)
	insightCache := store.NewInsightStore(cfg.InsightMaxUsers, cfg.InsightTTL)

	// Periodic sweeps keep both stores bounded
	sched := gocron.NewScheduler(time.UTC)
	if _, err := sched.Every(cfg.SweepInterval).Do(func() {
		evicted := sessions.Sweep()
		zapLogger.Debug("session_sweep_complete", zap.Int("evicted", evicted))
	}); err != nil {
		zapLogger.Fatal("failed_to_schedule_session_sweep", zap.Error(err))
	}
	if _, err := sched.Every(cfg.SweepInterval).Do(func() {
		evicted := insightCache.Sweep()
		zapLogger.Debug("insight_sweep_complete", zap.Int("evicted", evicted))
	}); err != nil {
		zapLogger.Fatal("failed_to_schedule_insight_sweep", zap.Error(err))
	}
	sched.StartAsync()
	defer sched.Stop()

	// Streaming provider client
	oauthConf := spotify.NewOAuthConfig(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyRedirectURI)
	providerClient := spotify.New(oauthConf, zapLogger)

	// Insight generation provider
	insightProvider := insights.NewOpenAIProviderWithLogger(
		cfg.OpenAIKey,
		cfg.AIBaseURL,
		cfg.AIModel,
		zapLogger,
		debugMode,
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(providerClient, sessions, cfg.FrontendURL, zapLogger)
	analyticsHandler := handlers.NewAnalyticsHandler(providerClient, sessions, zapLogger)
	insightsHandler := handlers.NewInsightsHandler(insightProvider, insightCache, sessions, zapLogger)
	healthChecker := handlers.NewHealthChecker(sessions, insightCache)

	// Setup router
	r := mux.NewRouter()

	zapLogger.Info("setting_up_middleware")

	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware(serviceName))
		zapLogger.Info("otel_middleware_enabled")
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Rate limiting applies to the API routes only, health checks stay open
	rateLimitMW, err := middleware.RateLimit(cfg.RedisURL, cfg.RateLimitPerMin)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	// Public routes
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", healthChecker.VersionCheck).Methods("GET")

	// OAuth flow
	authHandler.RegisterRoutes(r)

	// API routes
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(rateLimitMW)
	analyticsHandler.RegisterRoutes(apiRouter)

	aiRouter := apiRouter.PathPrefix("/ai").Subrouter()
	insightsHandler.RegisterRoutes(aiRouter)

	// Setup server
	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   90 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("server_starting",
			zap.String("port", cfg.ServerPort),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}
