package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photo-gallery-backend/internal/config"
	"photo-gallery-backend/internal/handlers"
	"photo-gallery-backend/internal/middleware"
	"photo-gallery-backend/internal/phoenix"
	"photo-gallery-backend/internal/repository"
	"photo-gallery-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	if err := repository.EnsureSchema(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("Failed to create schema")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	authTokenRepo := repository.NewAuthTokenRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	txManager := repository.NewTxManager(db)

	// Initialize services
	phoenixClient := phoenix.NewClient(cfg.Phoenix.BaseURL, cfg.Phoenix.Timeout)
	wsHub := services.NewWSHub()
	authService := services.NewAuthService(userRepo, authTokenRepo, cfg.JWT.Secret, cfg.JWT.TTL)
	galleryService := services.NewGalleryService(photoRepo, userRepo, likeRepo)
	likeService := services.NewLikeService(photoRepo, likeRepo, txManager, wsHub)
	profileService := services.NewProfileService(userRepo)
	importService := services.NewImportService(userRepo, photoRepo, txManager, phoenixClient)

	if err := authService.SeedUsers(context.Background(), seedUsers(cfg.Fixtures.Users)); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed users")
	}

	sessions := middleware.NewSessions(cfg.Session.Secret, cfg.Session.MaxAge, cfg.Session.Secure)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, sessions)
	photoHandler := handlers.NewPhotoHandler(galleryService, likeService)
	profileHandler := handlers.NewProfileHandler(profileService, importService)
	wsHandler := handlers.NewWebSocketHandler(wsHub)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Login links
	r.Get("/auth/{username}/{token}", authHandler.Login)
	r.Post("/logout", authHandler.Logout)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(sessions, authService))

		// Public routes
		r.Get("/photos", photoHandler.GetPhotos)
		r.Get("/photos/{photo_id}/likes", photoHandler.GetLikes)

		// Likes answer anonymous users themselves
		r.Post("/photos/{photo_id}/like", photoHandler.ToggleLike)
		r.Put("/photos/{photo_id}/like", photoHandler.Like)
		r.Delete("/photos/{photo_id}/like", photoHandler.Unlike)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser("Authentication required"))
			r.Get("/profile", profileHandler.GetProfile)
			r.Put("/profile", profileHandler.UpdateProfile)
			r.Post("/profile/phoenix-import", profileHandler.ImportPhotos)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Create HTTP server. Imports may wait on Phoenix for its full timeout.
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Phoenix.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Int("ws_connections", wsHub.Count()).Msg("Server exited")
}

func seedUsers(fixtures []config.FixtureUser) []services.SeedUser {
	seeds := make([]services.SeedUser, 0, len(fixtures))
	for _, f := range fixtures {
		seeds = append(seeds, services.SeedUser{
			Username:  f.Username,
			Email:     f.Email,
			Name:      f.Name,
			LastName:  f.LastName,
			AuthToken: f.AuthToken,
		})
	}
	return seeds
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
