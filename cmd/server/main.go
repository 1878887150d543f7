package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"Postboard/internal/api/middleware"
	"Postboard/internal/api/routes"
	"Postboard/internal/auth"
	"Postboard/internal/config"
	"Postboard/internal/core/identity"
	"Postboard/internal/core/posts"
	"Postboard/internal/db/cache"
	"Postboard/internal/db/memory"
	"Postboard/internal/db/migrations"
	postgresRepo "Postboard/internal/db/postgres"
	"Postboard/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	serviceOpts := []posts.Option{
		posts.WithLogger(logger),
		posts.WithMetrics(metrics.New(reg)),
		posts.WithRetryPolicy(posts.RetryPolicy{
			MaxRetries: cfg.VoteMaxRetries,
			BaseDelay:  cfg.VoteRetryBaseDelay,
			MaxDelay:   cfg.VoteRetryMaxDelay,
		}),
	}

	// Post store
	var (
		postRepo posts.Repository
		db       *sql.DB
	)
	switch cfg.StoreDriver {
	case config.DriverMemory:
		postRepo = memory.NewPostRepository()
		logger.Warn("using in-memory post store; data is lost on restart")
	default:
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to connect to database: ", err)
		}
		defer func() { _ = db.Close() }()

		if err := db.PingContext(ctx); err != nil {
			log.Fatal("Failed to ping database: ", err)
		}
		logger.Info("connected to database")

		if err := migrations.Up(db); err != nil {
			log.Fatal("Failed to run migrations: ", err)
		}
		logger.Info("migrations completed successfully")

		postRepo = postgresRepo.NewPostRepository(db)
	}

	// Optional read cache
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("Failed to connect to redis: ", err)
		}
		defer func() { _ = client.Close() }()

		serviceOpts = append(serviceOpts, posts.WithCache(cache.NewPostCache(client, cfg.PostCacheTTL)))
		logger.Info("post cache enabled", "ttl", cfg.PostCacheTTL)
	}

	postService := posts.NewService(postRepo, serviceOpts...)

	// Token verification
	var verifier identity.Verifier
	if cfg.JWKSURL != "" {
		verifier, err = auth.NewJWKSVerifier(ctx, cfg.JWKSURL, cfg.JWTIssuer, 15*time.Minute)
		if err != nil {
			log.Fatal("Failed to initialize JWKS verifier: ", err)
		}
		logger.Info("verifying tokens against JWKS", "url", cfg.JWKSURL)
	} else {
		verifier, err = auth.NewHS256Verifier(cfg.JWTSecret, cfg.JWTIssuer)
		if err != nil {
			log.Fatal("Failed to initialize token verifier: ", err)
		}
	}
	if cfg.RequireKnownUser {
		verifier = auth.RequireKnownUser(verifier, postgresRepo.NewUserRepository(db))
		logger.Info("tokens must belong to a registered user")
	}
	authMiddleware := middleware.NewAuthMiddleware(verifier, logger)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	routes.RegisterPostRoutes(r, postService, authMiddleware)
	routes.RegisterHealthRoutes(r)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("Postboard starting", "port", cfg.Port, "store", cfg.StoreDriver)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	logger.Info("Postboard stopped")
}
