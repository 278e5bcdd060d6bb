package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pechomax/pechomax-api/internal/auth"
	"github.com/pechomax/pechomax-api/internal/catches"
	"github.com/pechomax/pechomax-api/internal/config"
	"github.com/pechomax/pechomax-api/internal/game"
	"github.com/pechomax/pechomax-api/internal/leaderboard"
	"github.com/pechomax/pechomax-api/internal/levels"
	"github.com/pechomax/pechomax-api/internal/locations"
	"github.com/pechomax/pechomax-api/internal/middleware"
	"github.com/pechomax/pechomax-api/internal/models"
	"github.com/pechomax/pechomax-api/internal/species"
	"github.com/pechomax/pechomax-api/internal/store"
	"github.com/pechomax/pechomax-api/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	ctx := context.Background()

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		slog.Error("postgres connect", "error", err)
		os.Exit(1)
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		slog.Error("postgres migrate", "error", err)
		os.Exit(1)
	}

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		slog.Error("redis connect", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()
	board := leaderboard.NewBoard(rdb)

	// ── MinIO ────────────────────────────────────────────────
	uploads, err := store.NewMinioStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
	)
	if err != nil {
		slog.Error("minio connect", "error", err)
		os.Exit(1)
	}

	// ── Auth ─────────────────────────────────────────────────
	hasher := auth.NewHasher()
	codec := auth.NewTokenCodec(cfg.JWTSecret, cfg.SessionTTL)
	signer := auth.NewCookieSigner(cfg.CookieSecret)
	authSvc := auth.NewService(pgStore, hasher, codec)

	// ── Handlers ─────────────────────────────────────────────
	engine := game.NewEngine(pgStore, board)
	authHandler := auth.NewHandler(authSvc, signer, cfg.SessionTTL)
	catchHandler := catches.NewHandler(pgStore, engine, uploads, cfg.MaxFileSize)
	userHandler := users.NewHandler(pgStore, authSvc, hasher, signer, uploads, board,
		cfg.SessionTTL, cfg.PageSize, cfg.MaxFileSize)
	speciesHandler := species.NewHandler(pgStore)
	locationHandler := locations.NewHandler(pgStore)
	levelHandler := levels.NewHandler(pgStore)

	requireAuth := middleware.RequireAuth(signer, codec)
	requireAdmin := middleware.RequireAuth(signer, codec, models.RoleAdmin)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/init", authHandler.Init)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.With(requireAuth).Get("/login", authHandler.Introspect)
		r.With(requireAuth).Get("/logout", authHandler.Logout)
	})

	r.Route("/catches", func(r chi.Router) {
		r.Get("/", catchHandler.List)
		r.Get("/{id}", catchHandler.Get)
		r.With(requireAuth).Post("/create", catchHandler.Create)
		r.With(requireAuth).Put("/update/{id}", catchHandler.Update)
		r.With(requireAuth).Delete("/delete/{id}", catchHandler.Delete)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", userHandler.List)
		r.Get("/leaderboard", userHandler.Leaderboard)
		r.With(requireAuth).Get("/self", userHandler.Self)
		r.Get("/{username}", userHandler.ByUsername)
		r.With(requireAdmin).Post("/create", userHandler.Create)
		r.With(requireAuth).Put("/update/self", userHandler.UpdateSelf)
		r.With(requireAdmin).Put("/update/{id}", userHandler.UpdateByID)
		r.With(requireAuth).Delete("/delete/self", userHandler.DeleteSelf)
		r.With(requireAdmin).Delete("/delete/{id}", userHandler.DeleteByID)
	})

	r.Route("/species", func(r chi.Router) {
		r.Get("/", speciesHandler.List)
		r.Get("/{id}", speciesHandler.Get)
		r.With(requireAdmin).Post("/create", speciesHandler.Create)
		r.With(requireAdmin).Put("/update/{id}", speciesHandler.Update)
		r.With(requireAdmin).Delete("/delete/{id}", speciesHandler.Delete)
	})

	r.Route("/locations", func(r chi.Router) {
		r.Get("/", locationHandler.List)
		r.Get("/{id}", locationHandler.Get)
		r.With(requireAuth).Post("/create", locationHandler.Create)
		r.With(requireAuth).Delete("/delete/{id}", locationHandler.Delete)
	})

	r.Route("/levels", func(r chi.Router) {
		r.Get("/", levelHandler.List)
		r.With(requireAdmin).Post("/create", levelHandler.Create)
		r.With(requireAdmin).Put("/update/{id}", levelHandler.Update)
		r.With(requireAdmin).Delete("/delete/{id}", levelHandler.Delete)
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}

	go func() {
		slog.Info("listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
