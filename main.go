package main

import (
	stdlog "log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/username/dealsync/src/config"
	"github.com/username/dealsync/src/handlers"
	"github.com/username/dealsync/src/logger"
	"github.com/username/dealsync/src/parsers"
	"github.com/username/dealsync/src/processors"
	"github.com/username/dealsync/src/services"
	"github.com/username/dealsync/src/store"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("DealSync starting...", "boardID", config.Cfg.BoardID, "dryRun", config.Cfg.DryRun, "serveMode", config.Cfg.ServeMode)

	storeClient := store.NewMondayClient(store.Options{
		APIURL:            config.Cfg.StoreAPIURL,
		APIKey:            config.Cfg.StoreAPIKey,
		BoardID:           config.Cfg.BoardID,
		MaxAttempts:       config.Cfg.RetryMaxAttempts,
		BaseDelay:         config.Cfg.RetryBaseDelay,
		RequestsPerSecond: config.Cfg.StoreRequestsPerSecond,
		Burst:             config.Cfg.StoreRequestBurst,
		Timeout:           config.Cfg.HTTPTimeout,
	})

	inputParser := parsers.NewInputParser(config.Cfg.FieldMap)
	metricsProcessor := processors.NewMetricsProcessor(
		processors.NewCashflowBuilder(),
		processors.NewIRRSolver(),
	)
	notifier := services.NewNotificationService()

	logger.L.Info("Initializing report cache...")
	reportCache := cache.New(24*time.Hour, 1*time.Hour)

	syncService := services.NewSyncService(
		storeClient, inputParser, metricsProcessor,
		notifier, reportCache,
		config.Cfg.FieldMap, config.Cfg.BoardID,
	)

	if !config.Cfg.ServeMode {
		report, err := syncService.Run(config.Cfg.DryRun)
		if err != nil {
			logger.L.Error("Sync run failed", "error", err)
			os.Exit(1)
		}
		logger.L.Info("Sync run complete",
			"runID", report.RunID,
			"status", report.Status,
			"updated", report.Updated,
			"skipped", report.Skipped,
			"failed", report.Failed)
		return
	}

	syncHandler := handlers.NewSyncHandler(syncService, config.Cfg.DryRun)

	logger.L.Info("Configuring routes...")
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(rateLimitMiddleware)

	r.Get("/health", handlers.HandleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(handlers.TokenAuthMiddleware(config.Cfg.SyncAPIToken))
			r.Post("/sync", syncHandler.HandleRunSync)
			r.Get("/sync/report", syncHandler.HandleGetLastReport)
		})
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// A triggered sync holds the request open through store retries.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
