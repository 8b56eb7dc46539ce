// cmd/server/main.go
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
	"github.com/go-chi/cors"

	"maintdash/internal/alerts"
	"maintdash/internal/auth"
	"maintdash/internal/config"
	"maintdash/internal/db"
	"maintdash/internal/handlers"
	"maintdash/internal/logging"
	"maintdash/internal/middleware"
	"maintdash/internal/repo"
	"maintdash/internal/security"
	"maintdash/internal/session"
	"maintdash/internal/storage"
)

func main() {
	// --- Load config (config.yaml + env overrides) ---
	cfg := config.Load()

	// --- Logger ---
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format == "json")

	// Session cookie policy (dev often needs Secure=false)
	auth.SetCookieSecurity(cfg.Security.Session.CookieSecure)
	auth.SetCookieSameSite(cfg.Security.Session.SameSite)
	auth.SetSessionTTL(cfg.Security.Session.TTL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Background session sweeper ---
	interval := cfg.Security.Session.SweeperInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go session.DefaultStore.StartSweeper(ctx, interval)

	// --- Postgres ---
	if cfg.Database.MigrateOnStart {
		if err := db.Migrate(cfg.Database.URL); err != nil {
			slog.Error("migration failed", "err", err)
			os.Exit(1)
		}
	}
	slog.Debug("connecting to database")
	pool, err := db.Open(ctx, cfg.Database.URL)
	if err != nil {
		slog.Error("db connect error", "err", err)
		os.Exit(1)
	}
	defer pool.Close()
	slog.Debug("database connection ready")

	r := repo.NewWithDB(pool, db.New(pool))

	// Deactivated accounts stay blocked across restarts.
	if cfg.Security.Denylist.Enabled {
		seedDenylist(ctx, r)
	}

	// --- Document storage ---
	docs, err := openStorage(ctx, cfg)
	if err != nil {
		slog.Error("storage init failed", "driver", cfg.Storage.Driver, "err", err)
		os.Exit(1)
	}

	// --- Alert dispatch ---
	if cfg.Alerts.Enabled {
		sched, closeAlerts, err := startAlerts(ctx, cfg, r)
		if err != nil {
			slog.Error("alerts init failed", "err", err)
			os.Exit(1)
		}
		defer closeAlerts()
		defer sched.Stop()
	}

	// --- Router ---
	mux := chi.NewRouter()

	// Ensure request ID then log requests with slog
	mux.Use(middleware.RequestID(cfg.Security.RequestID.TrustHeader))
	mux.Use(middleware.OptionalAuth(r))
	mux.Use(middleware.EnrichLogger)
	mux.Use(middleware.SlogRequestLogger)
	// Enforce MFA for local accounts if enabled
	mux.Use(middleware.MFAEnforce(r, cfg.Security.MFA.LocalRequired))
	if cfg.Security.RateLimit.Enabled {
		mux.Use(middleware.RateLimitWith(cfg.Security.RateLimit.RequestsPerMinute, cfg.Security.RateLimit.Burst, cfg.Security.RateLimit.TTL))
	}
	if cfg.Security.Denylist.Enabled {
		mux.Use(middleware.Denylist)
	}

	// --- CORS middleware ---
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by browsers
	}))

	handlers.RegisterAuthRoutes(mux, r)
	handlers.RegisterRoutes(mux, r, handlers.Deps{
		Documents:      docs,
		UploadMaxBytes: cfg.Upload.MaxBytes,
	})

	// --- Start server ---
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("listening", "addr", srv.Addr, "base_url", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
}

func seedDenylist(ctx context.Context, r repo.Repo) {
	users, err := r.ListUsers(ctx, nil)
	if err != nil {
		slog.Warn("denylist seed skipped", "err", err)
		return
	}
	n := 0
	for _, u := range users {
		if !u.Active {
			security.DenyUser(u.ID)
			n++
		}
	}
	slog.Debug("denylist seeded", "users", n)
}

func openStorage(ctx context.Context, cfg config.Config) (storage.DocumentStore, error) {
	switch cfg.Storage.Driver {
	case "minio":
		m := cfg.Storage.Minio
		store, err := storage.NewMinioStore(storage.MinioConfig{
			Endpoint:  m.Endpoint,
			AccessKey: m.AccessKey,
			SecretKey: m.SecretKey,
			Bucket:    m.Bucket,
			Region:    m.Region,
			UseSSL:    m.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case "", "local":
		return storage.NewLocalStore(cfg.Storage.LocalDir)
	default:
		return nil, errors.New("unknown storage driver")
	}
}

func startAlerts(ctx context.Context, cfg config.Config, r repo.Repo) (*alerts.Scheduler, func(), error) {
	var (
		pub     alerts.Publisher
		sender  alerts.Sender
		closeFn = func() {}
	)
	if cfg.Alerts.Kafka.Enabled {
		kp, err := alerts.NewKafkaPublisher(cfg.Alerts.Kafka.Brokers, cfg.Alerts.Kafka.Topic)
		if err != nil {
			return nil, nil, err
		}
		pub = kp
		closeFn = func() {
			if err := kp.Close(); err != nil {
				slog.Warn("kafka writer close failed", "err", err)
			}
		}
	}
	if cfg.Alerts.Email.Enabled {
		ses, err := alerts.NewSESSender(ctx, cfg.Alerts.Email.Region, cfg.Alerts.Email.From)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		sender = ses
	}

	d := alerts.NewDispatcher(r, pub, sender, cfg.Alerts.RecipientFallback)
	sched, err := alerts.NewScheduler(d, cfg.Alerts.Schedule)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	sched.Start()
	slog.Info("alert dispatch scheduled", "schedule", cfg.Alerts.Schedule,
		"kafka", cfg.Alerts.Kafka.Enabled, "email", cfg.Alerts.Email.Enabled)
	return sched, closeFn, nil
}
