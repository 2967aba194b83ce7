package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/gzqwertyuiop1234-sudo/poker/internal/api"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/balance"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/config"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/ledger"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/metrics"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	// --- Initialize store ---
	st, cleanup, err := openStore(context.Background(), cfg)
	if err != nil {
		slog.Error("ledger store unavailable", "backend", cfg.LedgerBackend, "err", err)
		os.Exit(1)
	}
	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	// --- WebSocket hub ---
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	wsHub := api.NewHub()
	go wsHub.Run(hubCtx)

	// --- Settlement service ---
	l := ledger.New(st, ledger.WithDateLayout(cfg.DateLayout))
	policy := balance.NewPolicy(cfg.DriftTolerance, cfg.RejectTolerance)
	svc := api.NewService(l, api.Settings{
		ExchangeRatio: cfg.ExchangeRatio,
		TotalFee:      cfg.TotalFee,
		Policy:        &policy,
		PreviewTTL:    cfg.PreviewTTL,
	}, wsHub)

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metrics.Middleware)

	// CORS middleware for the browser front end.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"poker-settle"}`))
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Long-lived; kept outside the request timeout below.
		r.Get("/ws", wsHub.HandleWS)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))

			r.Post("/settlements/preview", svc.Preview)
			r.Post("/settlements/{previewID}/commit", svc.Commit)

			r.Get("/ledger", svc.ListRecords)
			r.Delete("/ledger", svc.Purge)
			r.Get("/ledger/export", svc.Export)
			r.Get("/leaderboard", svc.Leaderboard)
		})
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("poker-settle listening", "port", cfg.Port, "backend", cfg.LedgerBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down poker-settle...")
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	fmt.Println("poker-settle stopped")
}

// openStore builds the configured ledger backend, optionally behind the
// Redis read-through cache. The returned funcs release its resources.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, []func(), error) {
	var st store.Store
	var cleanup []func()

	switch cfg.LedgerBackend {
	case config.BackendMemory:
		slog.Warn("memory backend selected, ledger will not persist")
		st = store.NewMemoryStore()

	case config.BackendCSV:
		st = store.NewFileStore(cfg.LedgerPath)
		slog.Info("using CSV ledger", "path", cfg.LedgerPath)

	case config.BackendSQLite:
		sq, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		cleanup = append(cleanup, func() { sq.Close() })
		st = sq
		slog.Info("using SQLite ledger", "path", cfg.SQLitePath)

	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("database connection failed: %w", err)
		}
		pg := store.NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		cleanup = append(cleanup, pool.Close)
		st = pg
		slog.Info("connected to PostgreSQL")

	default:
		return nil, nil, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
	}

	// Wrap with Redis read-through cache if configured.
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			for _, fn := range cleanup {
				fn()
			}
			return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opt)
		cleanup = append(cleanup, func() { rdb.Close() })
		st = store.NewCachedStore(st, rdb, cfg.CacheTTL)
		slog.Info("Redis cache enabled", "ttl", cfg.CacheTTL)
	}

	return st, cleanup, nil
}
