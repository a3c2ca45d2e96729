package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ludobar/gamekeeper/api/internal/config"
	"github.com/ludobar/gamekeeper/api/internal/database"
	"github.com/ludobar/gamekeeper/api/internal/database/migrations"
	"github.com/ludobar/gamekeeper/api/internal/handler"
	"github.com/ludobar/gamekeeper/api/internal/jobs"
	"github.com/ludobar/gamekeeper/api/internal/middleware"
	"github.com/ludobar/gamekeeper/api/internal/repository"
	"github.com/ludobar/gamekeeper/api/internal/service"
	"github.com/ludobar/gamekeeper/api/internal/telemetry"
	"github.com/ludobar/gamekeeper/api/pkg/jwt"
)

// version is stamped by the build; "dev" for local runs
var version = "dev"

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	// Initialize trace export (no-op unless OTEL_ENABLED)
	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry, cfg.Server.Env, version)
	if err != nil {
		slog.Error("failed to initialize telemetry", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	// Initialize database connection
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	// Apply schema migrations
	if err := migrations.Apply(ctx, pool); err != nil {
		slog.Error("failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize JWT service
	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		PublicKeyPath:  cfg.JWT.PublicKeyPath,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: cfg.JWT.ExpirationMins,
	})
	if err != nil {
		slog.Error("failed to initialize JWT service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool)
	gameRepo := repository.NewBoardGameRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	stateRepo := repository.NewPlannedStateRepository(pool)
	repeatingRepo := repository.NewRepeatingStateRepository(pool)
	eventRepo := repository.NewEventRepository(pool)

	tx := database.NewTx(pool)
	location := cfg.Server.Location()

	// Initialize services
	authService := service.NewAuthService(service.AuthServiceConfig{
		UserRepo: userRepo,
		Signer:   jwtService,
	})

	boardGameService := service.NewBoardGameService(service.BoardGameServiceConfig{
		BoardGameRepo: gameRepo,
		CategoryRepo:  categoryRepo,
		ItemCounter:   reservationRepo,
	})

	reservationService := service.NewReservationService(service.ReservationServiceConfig{
		ReservationRepo: reservationRepo,
		GameRepo:        gameRepo,
		UserRepo:        userRepo,
		Tx:              tx,
	})

	// Transition announcements: log always, Discord when a webhook is configured
	transitionHandlers := []service.TransitionHandler{service.NewLogTransitionHandler()}
	if cfg.Discord.WebhookURL != "" {
		transitionHandlers = append(transitionHandlers,
			service.NewDiscordTransitionHandler(cfg.Discord.WebhookURL, cfg.Discord.Timeout, location))
		slog.Info("discord transition announcements enabled")
	}

	clubStateService := service.NewClubStateService(service.ClubStateServiceConfig{
		StateRepo:     stateRepo,
		RepeatingRepo: repeatingRepo,
		EventRepo:     eventRepo,
		Tx:            tx,
		Location:      location,
		Handlers:      transitionHandlers,
	})

	eventService := service.NewEventService(service.EventServiceConfig{
		EventRepo:  eventRepo,
		StateLinks: stateRepo,
		Tx:         tx,
	})

	userService := service.NewUserService(service.UserServiceConfig{
		UserRepo: userRepo,
	})

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   cfg.RateLimit.RequestsPerMinute,
		Window: time.Minute,
		Burst:  cfg.RateLimit.Burst,
	})
	defer rateLimiter.Stop()

	// Initialize idempotency store
	idempotencyStore := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{
		TTL:     24 * time.Hour,
		Cleanup: time.Hour,
	})
	defer idempotencyStore.Stop()

	// Initialize background processors
	transitionProcessor := jobs.NewStateTransitionProcessor(clubStateService, cfg.Jobs.StateTransitionInterval)
	transitionProcessor.Start()
	defer transitionProcessor.Stop()

	expiryProcessor := jobs.NewReservationExpiryProcessor(reservationService, cfg.Jobs.ReservationExpiryInterval)
	expiryProcessor.Start()
	defer expiryProcessor.Stop()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	gameHandler := handler.NewBoardGameHandler(boardGameService)
	reservationHandler := handler.NewReservationHandler(reservationService)
	stateHandler := handler.NewClubStateHandler(clubStateService)
	eventHandler := handler.NewEventHandler(eventService)
	userHandler := handler.NewUserHandler(userService)
	healthHandler := handler.NewHealthHandler(pool, version)

	// Create router and register routes
	mux := http.NewServeMux()

	authMiddleware := middleware.Auth(jwtService)
	optionalAuth := middleware.OptionalAuth(jwtService)

	// Health check endpoint
	mux.HandleFunc("GET /health", healthHandler.Health)

	// Auth endpoints
	mux.HandleFunc("POST /v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /v1/auth/login", authHandler.Login)
	mux.Handle("GET /v1/auth/me", authMiddleware(http.HandlerFunc(authHandler.Me)))

	// Board game endpoints (reads are public; claims sharpen the view)
	mux.Handle("GET /v1/boardgames", optionalAuth(http.HandlerFunc(gameHandler.List)))
	mux.Handle("POST /v1/boardgames", authMiddleware(http.HandlerFunc(gameHandler.Create)))
	mux.Handle("GET /v1/boardgames/categories", optionalAuth(http.HandlerFunc(gameHandler.GetCategories)))
	mux.Handle("POST /v1/boardgames/categories", authMiddleware(http.HandlerFunc(gameHandler.CreateCategory)))
	mux.Handle("PATCH /v1/boardgames/categories/{categoryId}", authMiddleware(http.HandlerFunc(gameHandler.UpdateCategory)))
	mux.Handle("DELETE /v1/boardgames/categories/{categoryId}", authMiddleware(http.HandlerFunc(gameHandler.DeleteCategory)))
	mux.Handle("GET /v1/boardgames/{gameId}", optionalAuth(http.HandlerFunc(gameHandler.Get)))
	mux.Handle("PATCH /v1/boardgames/{gameId}", authMiddleware(http.HandlerFunc(gameHandler.Update)))
	mux.Handle("PUT /v1/boardgames/{gameId}/stock", authMiddleware(http.HandlerFunc(gameHandler.UpdateStock)))
	mux.Handle("DELETE /v1/boardgames/{gameId}", authMiddleware(http.HandlerFunc(gameHandler.Delete)))

	// Reservation endpoints
	mux.Handle("GET /v1/boardgames/reservations", authMiddleware(http.HandlerFunc(reservationHandler.GetMine)))
	mux.Handle("POST /v1/boardgames/reservations", authMiddleware(http.HandlerFunc(reservationHandler.Create)))
	mux.Handle("GET /v1/boardgames/reservations/all", authMiddleware(http.HandlerFunc(reservationHandler.GetAll)))
	mux.Handle("GET /v1/boardgames/reservations/madefor/{userId}", authMiddleware(http.HandlerFunc(reservationHandler.GetForUser)))
	mux.Handle("POST /v1/boardgames/reservations/madefor/{userId}", authMiddleware(http.HandlerFunc(reservationHandler.CreateFor)))
	mux.Handle("GET /v1/boardgames/reservations/{reservationId}", authMiddleware(http.HandlerFunc(reservationHandler.Get)))
	mux.Handle("PUT /v1/boardgames/reservations/{reservationId}/note", authMiddleware(http.HandlerFunc(reservationHandler.UpdateNote)))
	mux.Handle("PUT /v1/boardgames/reservations/{reservationId}/noteinternal", authMiddleware(http.HandlerFunc(reservationHandler.UpdateNoteInternal)))
	mux.Handle("POST /v1/boardgames/reservations/{reservationId}/items", authMiddleware(http.HandlerFunc(reservationHandler.AddItems)))
	mux.Handle("GET /v1/boardgames/reservations/{reservationId}/items", authMiddleware(http.HandlerFunc(reservationHandler.GetItems)))
	mux.Handle("GET /v1/boardgames/reservations/items/{itemId}/events", authMiddleware(http.HandlerFunc(reservationHandler.GetItemEvents)))
	mux.Handle("POST /v1/boardgames/reservations/items/{itemId}/handover", authMiddleware(http.HandlerFunc(reservationHandler.HandOverItem)))
	mux.Handle("POST /v1/boardgames/reservations/items/{itemId}/return", authMiddleware(http.HandlerFunc(reservationHandler.ReturnItem)))
	mux.Handle("POST /v1/boardgames/reservations/items/{itemId}/cancel", authMiddleware(http.HandlerFunc(reservationHandler.CancelItem)))
	mux.Handle("POST /v1/boardgames/reservations/items/{itemId}/extend", authMiddleware(http.HandlerFunc(reservationHandler.ExtendItem)))

	// Opening schedule endpoints
	mux.Handle("GET /v1/states", optionalAuth(http.HandlerFunc(stateHandler.List)))
	mux.Handle("POST /v1/states", authMiddleware(http.HandlerFunc(stateHandler.Create)))
	mux.Handle("GET /v1/states/current", optionalAuth(http.HandlerFunc(stateHandler.GetCurrent)))
	mux.Handle("POST /v1/states/current/close", authMiddleware(http.HandlerFunc(stateHandler.CloseCurrent)))
	mux.Handle("GET /v1/states/next", optionalAuth(http.HandlerFunc(stateHandler.GetNext)))
	mux.Handle("GET /v1/states/repeating", authMiddleware(http.HandlerFunc(stateHandler.ListRepeating)))
	mux.Handle("POST /v1/states/repeating", authMiddleware(http.HandlerFunc(stateHandler.CreateRepeating)))
	mux.Handle("GET /v1/states/repeating/{repeatingId}", authMiddleware(http.HandlerFunc(stateHandler.GetRepeating)))
	mux.Handle("PATCH /v1/states/repeating/{repeatingId}", authMiddleware(http.HandlerFunc(stateHandler.UpdateRepeating)))
	mux.Handle("DELETE /v1/states/repeating/{repeatingId}", authMiddleware(http.HandlerFunc(stateHandler.DeleteRepeating)))
	mux.Handle("GET /v1/states/{stateId}", optionalAuth(http.HandlerFunc(stateHandler.Get)))
	mux.Handle("PATCH /v1/states/{stateId}", authMiddleware(http.HandlerFunc(stateHandler.Update)))
	mux.Handle("DELETE /v1/states/{stateId}", authMiddleware(http.HandlerFunc(stateHandler.Delete)))

	// Club event endpoints
	mux.Handle("GET /v1/events", optionalAuth(http.HandlerFunc(eventHandler.List)))
	mux.Handle("POST /v1/events", authMiddleware(http.HandlerFunc(eventHandler.Create)))
	mux.Handle("GET /v1/events/next", optionalAuth(http.HandlerFunc(eventHandler.GetNext)))
	mux.Handle("GET /v1/events/{eventId}", optionalAuth(http.HandlerFunc(eventHandler.Get)))
	mux.Handle("PATCH /v1/events/{eventId}", authMiddleware(http.HandlerFunc(eventHandler.Update)))
	mux.Handle("DELETE /v1/events/{eventId}", authMiddleware(http.HandlerFunc(eventHandler.Delete)))
	mux.Handle("GET /v1/events/{eventId}/states", authMiddleware(http.HandlerFunc(stateHandler.GetEventStates)))
	mux.Handle("PUT /v1/events/{eventId}/states", authMiddleware(http.HandlerFunc(stateHandler.SetEventStates)))
	mux.Handle("DELETE /v1/events/{eventId}/states", authMiddleware(http.HandlerFunc(stateHandler.ClearEventStates)))

	// Member administration endpoints
	mux.Handle("GET /v1/users", authMiddleware(http.HandlerFunc(userHandler.List)))
	mux.Handle("GET /v1/users/{userId}", authMiddleware(http.HandlerFunc(userHandler.Get)))
	mux.Handle("POST /v1/users/{userId}/roles/{role}", authMiddleware(http.HandlerFunc(userHandler.AssignRole)))
	mux.Handle("DELETE /v1/users/{userId}/roles/{role}", authMiddleware(http.HandlerFunc(userHandler.RevokeRole)))
	mux.Handle("GET /v1/roles", authMiddleware(http.HandlerFunc(userHandler.GetRoles)))

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.RateLimit(rateLimiter),
		middleware.Idempotency(idempotencyStore),
		middleware.Compress,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
			slog.String("version", version),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
