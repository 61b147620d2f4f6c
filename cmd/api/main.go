package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"bookcatalog/db"
	"bookcatalog/internal/account"
	"bookcatalog/internal/book"
	"bookcatalog/internal/config"
	"bookcatalog/internal/httpx"
	"bookcatalog/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.L().Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if err := run(cfg); err != nil {
		logging.L().Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := openDB(ctx, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			return err
		}
		logging.L().Info().Msg("migrations applied")
	}

	var cache book.SeriesCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logging.L().Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, series cache disabled")
		} else {
			cache = book.NewRedisSeriesCache(rdb, cfg.Redis.SeriesTTL)
		}
	}

	books := book.NewHTTPHandler(book.NewService(
		book.NewPostgresRepo(pool, cfg.Database.QueryTimeout),
		cache,
		book.WeightsFor(cfg.Catalog.LegacyStarWeights),
	))
	accounts := account.NewHTTPHandler(account.NewService(
		account.NewPostgresRepo(pool, cfg.Database.QueryTimeout),
		cfg.Auth.JWTSecret,
		cfg.Auth.TokenTTL,
	))

	limiter := httpx.NewRateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	defer limiter.Stop()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      newRouter(cfg, limiter, pool.Ping, books, accounts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.L().Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.L().Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRouter wires middleware and routes. ready backs /readyz.
func newRouter(cfg *config.Config, limiter *httpx.RateLimitMiddleware, ready func(context.Context) error, books *book.HTTPHandler, accounts *account.HTTPHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(httpx.RequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(httpx.AccessLogMiddleware)
	r.Use(httpx.RecoveryMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httpx.SecurityHeadersMiddleware(cfg.Server.EnableHSTS))
	r.Use(httpx.RequestSizeLimitMiddleware(cfg.Server.MaxBodyBytes))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.NotFound(w, r, "Route not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed.", nil)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSONMessage(w, http.StatusOK, "ok")
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := ready(ctx); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("readiness check failed")
			httpx.JSONError(w, r, http.StatusServiceUnavailable, "NOT_READY", "database not ready", nil)
			return
		}
		httpx.JSONMessage(w, http.StatusOK, "ready")
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)

		books.RegisterOpen(r)
		accounts.RegisterOpen(r)

		r.Group(func(r chi.Router) {
			r.Use(httpx.AuthMiddleware(cfg.Auth.JWTSecret))
			books.RegisterClosed(r)
			accounts.RegisterClosed(r)
		})
	})

	return r
}

func openDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		logging.L().Error().Str("dsn", config.RedactDSN(dsn)).Msg("cannot ping database")
		return nil, err
	}
	logging.L().Info().Msg("database connection OK")
	return pool, nil
}
