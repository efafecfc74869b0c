package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"shopdash/internal/application"
	"shopdash/internal/application/webhook_handlers"
	"shopdash/internal/config"
	"shopdash/internal/domain"
	apiinfra "shopdash/internal/infrastructure/api"
	"shopdash/internal/infrastructure/cache"
	"shopdash/internal/infrastructure/encryption"
	"shopdash/internal/infrastructure/metrics"
	"shopdash/internal/infrastructure/pubsub"
	"shopdash/internal/infrastructure/repository"
	shopifyinfra "shopdash/internal/infrastructure/shopify"
	"shopdash/internal/ports"
	apperrors "shopdash/pkg/errors"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	if cfg.EncryptionKey == "" {
		logger.Fatal().Msg("ENCRYPTION_KEY environment variable is required")
	}
	encryptionService, err := encryption.NewService(cfg.EncryptionKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}

	// Connect to the database and create tables
	db, err := repository.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := repository.CreateSchema(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create schema")
	}

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(db, cfg.DatabaseDriver, logger)
	tokenRepo := repository.NewTokenRepository(db, cfg.DatabaseDriver, logger)
	sessionRepo := repository.NewSessionRepository(db, cfg.DatabaseDriver, logger)

	// Optional analytics cache
	var analyticsCache ports.Cache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(context.Background(), cfg.RedisURL, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, running uncached")
		} else {
			analyticsCache = redisCache
		}
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	appMetrics := metrics.New(registry)

	// Shopify Admin API client and webhook verifier
	shopifyClient := shopifyinfra.NewClient(cfg.ShopifyAPIKey, cfg.ShopifyAPISecret, logger)
	verifier := shopifyinfra.NewWebhookVerifier(cfg.ShopifyWebhookSecret)
	if !verifier.Enabled() {
		logger.Warn().Msg("SHOPIFY_WEBHOOK_SECRET not set: webhook signature verification is DISABLED")
	}

	// Order event feed for the dashboard
	orderFeed := pubsub.NewOrderPubSub(logger)

	// Initialize application services
	ingestionService := application.NewIngestionService(orderRepo, analyticsCache, orderFeed, appMetrics, logger)
	analyticsService := application.NewAnalyticsService(orderRepo, analyticsCache, logger)
	authService := application.NewAuthService(
		tokenRepo,
		sessionRepo,
		shopifyClient,
		encryptionService,
		logger,
		cfg.AppURL,
		cfg.ShopifyAPIKey,
		cfg.Scopes,
	)
	productsService := application.NewProductsService(authService, shopifyClient, logger)

	// Initialize webhook dispatcher and register handlers
	webhookDispatcher := application.NewWebhookDispatcher(logger)
	webhookDispatcher.RegisterHandler(webhook_handlers.NewOrderHandler(ingestionService, logger))

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Health check - must be public for monitoring
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	// OAuth routes
	r.Get("/auth", oauthInitHandler(authService, logger))
	r.Get("/auth/callback", oauthCallbackHandler(authService, logger))

	// Webhook endpoint
	r.Post("/webhooks/orders/create", webhookHandler(verifier, webhookDispatcher, appMetrics, logger))

	// Dashboard API
	dashboard := apiinfra.NewDashboard(analyticsService, productsService, authService, orderFeed, logger)
	r.Mount("/api", dashboard.Routes())

	// Dashboard SPA
	if cfg.FrontendDist != "" {
		r.Handle("/*", spaHandler(cfg.FrontendDist))
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("appURL", cfg.AppURL).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// signal.Notify requires the channel to be buffered
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}
	logger.Info().Msg("Server stopped")
}

// oauthInitHandler initiates the OAuth flow
func oauthInitHandler(authService *application.AuthService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := r.URL.Query().Get("shop")

		authURL, err := authService.BeginInstall(r.Context(), shop)
		if err != nil {
			var validation *apperrors.ErrValidation
			if errors.As(err, &validation) {
				http.Error(w, validation.Error(), http.StatusBadRequest)
				return
			}
			logger.Error().Err(err).Str("shop", shop).Msg("Failed to begin install")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// oauthCallbackHandler handles the OAuth callback
func oauthCallbackHandler(authService *application.AuthService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := r.URL.Query().Get("shop")
		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")

		if err := authService.CompleteInstall(r.Context(), shop, code, state); err != nil {
			var validation *apperrors.ErrValidation
			var unauthorized *apperrors.ErrUnauthorized
			switch {
			case errors.As(err, &validation):
				http.Error(w, validation.Error(), http.StatusBadRequest)
			case errors.As(err, &unauthorized):
				http.Error(w, unauthorized.Error(), http.StatusUnauthorized)
			default:
				logger.Error().Err(err).Str("shop", shop).Msg("Failed to complete installation")
				http.Error(w, "Failed to complete installation", http.StatusInternalServerError)
			}
			return
		}

		http.Redirect(w, r, "/?shop="+shop, http.StatusFound)
	}
}

// webhookHandler handles Shopify order webhooks. Verification runs on the
// exact raw body bytes before anything parses them; a signature mismatch
// is a hard reject with no persistence.
func webhookHandler(
	verifier *shopifyinfra.WebhookVerifier,
	dispatcher *application.WebhookDispatcher,
	appMetrics *metrics.Metrics,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic := r.Header.Get("X-Shopify-Topic")
		if topic == "" {
			topic = "orders/create"
		}
		appMetrics.WebhooksReceived.WithLabelValues(topic).Inc()

		shop := r.Header.Get("X-Shopify-Shop-Domain")
		if shop == "" {
			logger.Warn().Msg("Webhook missing X-Shopify-Shop-Domain header")
			http.Error(w, "Missing shop domain header", http.StatusBadRequest)
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to read webhook payload")
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		hmacHeader := r.Header.Get("X-Shopify-Hmac-Sha256")
		if !verifier.Verify(payload, hmacHeader) {
			appMetrics.WebhooksRejected.Inc()
			logger.Warn().Str("shop", shop).Str("topic", topic).Msg("Webhook signature verification failed")
			http.Error(w, "Invalid signature", http.StatusUnauthorized)
			return
		}

		event := &domain.WebhookEvent{
			Topic:     topic,
			Shop:      shop,
			WebhookID: r.Header.Get("X-Shopify-Webhook-Id"),
			Payload:   payload,
		}

		if err := dispatcher.Dispatch(r.Context(), event); err != nil {
			var validation *apperrors.ErrValidation
			if errors.As(err, &validation) {
				logger.Warn().Err(err).Str("shop", shop).Msg("Malformed webhook payload")
				http.Error(w, validation.Error(), http.StatusBadRequest)
				return
			}

			logger.Error().Err(err).Str("topic", topic).Str("shop", shop).Msg("Failed to process webhook event")
			// 500 triggers Shopify redelivery; ingestion is idempotent
			http.Error(w, "Failed to process webhook event", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"received":true}`))
	}
}

// spaHandler serves the built dashboard frontend, falling back to
// index.html for client-side routes.
func spaHandler(dist string) http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(dist))
	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dist, filepath.Clean(strings.TrimPrefix(r.URL.Path, "/")))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(dist, "index.html"))
	}
}
