package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"storm/internal/auth"
	"storm/internal/config"
	"storm/internal/handler"
	"storm/internal/languages"
	"storm/internal/middleware"
	"storm/internal/realtime"
	"storm/internal/repository"
	"storm/internal/repository/kv"
	"storm/internal/service/docsystem"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	logger.Info("configuration loaded",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"storage_backend", cfg.StorageBackend,
		"debug", cfg.Debug,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Language table and starter templates
	registry, err := languages.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load language registry: %v", err)
	}

	// Persistence
	store, closeStore, err := repository.OpenKVStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer closeStore()
	gateway := kv.NewSnapshotGateway(store, cfg.SnapshotKey, logger)

	// Realtime collaborators
	hub := realtime.NewHub(logger)
	go hub.Run(ctx)
	surface := realtime.NewSurface(hub)

	// The file system, loaded before the first request
	vfs := docsystem.NewStore(gateway, registry, surface, hub, logger,
		docsystem.WithDebugChecks(cfg.Debug),
	)
	vfs.LoadFileSystem(ctx)

	// Optional authentication
	var verifier auth.JWTVerifier
	if cfg.JWKSURL != "" {
		jwks, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer jwks.Close()
		verifier = jwks
	} else {
		logger.Warn("JWKS_URL not set, authentication disabled")
	}

	origins := strings.Split(cfg.CORSOrigins, ",")

	// Register routes
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Deps{
		VFS:       vfs,
		Languages: registry,
		Editor:    surface,
		WebSocket: realtime.ServeWS(hub, surface, origins, logger),
		Logger:    logger,
	})

	// Apply middleware
	// Order: CORS → Recovery → Auth → Routes
	var h http.Handler = mux
	h = middleware.AuthMiddleware(verifier, logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     h,
		ReadTimeout: 15 * time.Second,
		// Disabled for long-lived WebSocket connections
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	// Start server
	logger.Info("server starting", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}

	// Final flush; mutations already persisted as they happened
	if err := vfs.SaveFileSystem(context.Background()); err != nil {
		logger.Error("final save failed", "error", err)
	}
	logger.Info("server stopped")
}
