// Package main is the entry point for the archive service.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Merlinthewizord/Scintara/internal/archive"
	"github.com/Merlinthewizord/Scintara/internal/config"
	"github.com/Merlinthewizord/Scintara/internal/dialogue"
	"github.com/Merlinthewizord/Scintara/internal/events"
	"github.com/Merlinthewizord/Scintara/internal/handler"
	"github.com/Merlinthewizord/Scintara/internal/llm"
	"github.com/Merlinthewizord/Scintara/internal/memory"
	"github.com/Merlinthewizord/Scintara/internal/middleware"
	"github.com/Merlinthewizord/Scintara/pkg/logger"
	"github.com/Merlinthewizord/Scintara/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting archive service")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "scintara", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Initialize the model client for the configured provider
	apiKey := cfg.AnthropicAPIKey
	if llm.Provider(cfg.DefaultProvider) == llm.ProviderOpenAI {
		apiKey = cfg.OpenAIAPIKey
	}
	llmClient, err := llm.NewClient(llm.Provider(cfg.DefaultProvider), apiKey)
	if err != nil {
		log.Error("failed to create model client", zap.Error(err))
		os.Exit(1)
	}

	// Open the archive store (file or table backend, fixed for the process)
	store, err := archive.Open(cfg.ArchivePath, cfg.ArchiveDSN, log.Named("archive"))
	if err != nil {
		log.Error("failed to open archive store", zap.Error(err))
		os.Exit(1)
	}
	if err := store.Ensure(ctx); err != nil {
		log.Error("failed to prepare archive store", zap.Error(err))
		os.Exit(1)
	}
	log.Info("archive store ready", zap.String("backend", store.Backend()))

	// Optional record-created notifications
	publisher, err := events.Connect(events.Config{
		URL:   cfg.NATSURL,
		Token: cfg.NATSToken,
	}, log.Named("events"))
	if err != nil {
		log.Warn("failed to connect to NATS, notifications disabled", zap.Error(err))
	}
	defer publisher.Close()

	// Memory augmentation (best-effort, optional)
	mem := memory.New(memory.Config{
		APIKey:    cfg.MemoryAPIKey,
		BaseURL:   cfg.MemoryBaseURL,
		UserID:    cfg.MemoryUserID,
		SessionID: cfg.MemorySessionID,
		Disabled:  cfg.MemoryDisabled,
	}, log.Named("memory"))

	// Dialogue engine
	engine := dialogue.NewEngine(dialogue.Config{
		AutoArchive:  cfg.AutoArchive,
		Exchanges:    cfg.DialogueExchanges,
		ModelA:       cfg.ModelA,
		ModelB:       cfg.ModelB,
		DefaultModel: cfg.DefaultModel,
		MaxTokens:    cfg.MaxNewTokens,
		Temperature:  cfg.Temperature,
		TopP:         cfg.TopP,
	}, llmClient, mem, store, publisher, log.Named("dialogue"))

	// Periodic generation loop
	scheduler := dialogue.NewScheduler(engine, cfg.DialogueInterval, log.Named("scheduler"))
	if cfg.AutoArchive {
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(store)
	archiveHandler := handler.NewArchiveHandler(store, engine, log)
	metaHandler := handler.NewMetaHandler(llmClient, cfg.DefaultModel, cfg.MaxNewTokens, cfg.Temperature, cfg.TopP)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Archive-Secret"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Get("/personas", metaHandler.Personas)
		r.Get("/model", metaHandler.ModelInfo)

		r.Route("/archive", func(r chi.Router) {
			r.Get("/", archiveHandler.List)
			r.With(middleware.TriggerSecret(cfg.TriggerSecret)).Post("/generate", archiveHandler.Generate)
			r.Get("/{id}", archiveHandler.Get)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
