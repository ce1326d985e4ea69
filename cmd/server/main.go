// Taskyar - trilingual conversational task manager server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/ashureev/taskyar/internal/agent"
	"github.com/ashureev/taskyar/internal/api"
	"github.com/ashureev/taskyar/internal/auth"
	"github.com/ashureev/taskyar/internal/config"
	"github.com/ashureev/taskyar/internal/events"
	"github.com/ashureev/taskyar/internal/middleware"
	"github.com/ashureev/taskyar/internal/notify"
	"github.com/ashureev/taskyar/internal/store"
	"github.com/ashureev/taskyar/internal/tools"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// Notification hub is always on; the sidecar transport only when enabled.
	hub := notify.NewHub(cfg.FrontendURL, cfg.IsDevelopment(), logger)
	transports := []events.Transport{hub}
	if cfg.Events.Enabled {
		transports = append(transports, events.NewSidecarTransport(cfg.Events.SidecarURL, cfg.Events.PubSub))
		slog.Info("Event sidecar enabled", "url", cfg.Events.SidecarURL, "topic", cfg.Events.Topic)
	}
	emitter := events.NewEmitter(cfg.Events.Topic, logger, transports...)
	defer emitter.Close()

	gateway := tools.NewGateway(repo, emitter, logger)
	agentService := agent.NewService(gateway, cfg.AgentTurnTimeout, logger)

	// Initialize handlers.
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authHandler := auth.NewHandler(repo, issuer, logger)
	apiHandler := api.NewHandler(repo, gateway, logger)
	apiHandler.OnConversationDeleted(agentService.Forget)
	chatHandler := agent.NewHandler(agentService, repo, cfg, logger)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	allowedOrigins := []string{"*"}
	if !cfg.IsDevelopment() {
		allowedOrigins = []string{cfg.FrontendURL}
	}
	r.Use(middleware.CORS(allowedOrigins))

	// Public routes.
	apiHandler.RegisterHealth(r)
	authHandler.RegisterRoutes(r)

	// Authenticated routes.
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(issuer))
		authHandler.RegisterProtectedRoutes(r)
		apiHandler.RegisterRoutes(r)
		chatHandler.RegisterRoutes(r)
		hub.RegisterRoutes(r)
	})

	// Create server.
	// Note: the notification WebSocket needs long-lived connections, so no
	// write timeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
