package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"passage/internal/audit"
	"passage/internal/auth/service"
	sessionStore "passage/internal/auth/store/session"
	"passage/internal/legacy"
	"passage/internal/platform/config"
	"passage/internal/platform/httpserver"
	"passage/internal/platform/logger"
	"passage/internal/platform/metrics"
	platformRedis "passage/internal/platform/redis"
	"passage/internal/profile"
	"passage/internal/provider"
	"passage/internal/reconcile"
	httptransport "passage/internal/transport/http"
)

// main wires the dependencies and owns the process lifecycle. All auth
// semantics live in internal packages; nothing here makes decisions beyond
// which implementations to plug together.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, cleanup, err := buildSessionStore(ctx, cfg)
	if err != nil {
		log.Error("session store init failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	auditor, auditCleanup := buildAuditor(ctx, cfg, log)
	defer auditCleanup()

	providerClient := provider.New(provider.Config{
		TokenURL:    cfg.ProviderTokenURL,
		ClientID:    cfg.ProviderClientID,
		GroupsClaim: cfg.ProviderGroupsClaim,
		Timeout:     cfg.CallTimeout,
	}, nil, log)
	legacyClient := legacy.New(legacy.Config{
		BaseURL: cfg.LegacyBaseURL,
		Timeout: cfg.CallTimeout,
	}, nil)
	profileClient := profile.NewClient(profile.Config{
		BaseURL: cfg.ProfileBaseURL,
		Timeout: cfg.CallTimeout,
	}, nil)

	svc := service.New(service.Options{
		ProviderEnabled: cfg.ProviderEnabled,
		LegacyFallback:  cfg.LegacyFallback,
		GroupsClaim:     cfg.ProviderGroupsClaim,
	}, providerClient, legacyClient, reconcile.New(profileClient, log),
		sessions, auditor, log, metrics.New())

	// Rehydrate any durable session before accepting traffic so the first
	// /auth/session call sees it.
	if result, err := svc.RestoreSession(ctx); err != nil {
		log.Warn("session restore failed", "error", err)
	} else if result.Success {
		log.Info("session restored at startup", "user_id", result.Session.User.ID)
	}

	router := httptransport.NewRouter(httptransport.NewAuthHandler(svc, log), log)
	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting passage", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

// buildSessionStore picks the durable backend: Redis when configured, then
// Postgres, then process memory for development.
func buildSessionStore(ctx context.Context, cfg config.Config) (sessionStore.Store, func(), error) {
	if cfg.Redis.URL != "" {
		client, err := platformRedis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return sessionStore.NewRedisStore(client.Client), func() { _ = client.Close() }, nil
	}

	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		store := sessionStore.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, func() { _ = db.Close() }, nil
	}

	return sessionStore.NewInMemoryStore(), func() {}, nil
}

// buildAuditor wires the Kafka audit pipeline behind a dropping worker, or a
// no-op sink when no brokers are configured.
func buildAuditor(ctx context.Context, cfg config.Config, log *slog.Logger) (audit.Publisher, func()) {
	if len(cfg.AuditBrokers) == 0 {
		return audit.NopPublisher{}, func() {}
	}

	kafka, err := audit.NewKafkaPublisher(cfg.AuditBrokers, cfg.AuditTopic)
	if err != nil {
		log.Warn("audit brokers unavailable, events will be dropped", "error", err)
		return audit.NopPublisher{}, func() {}
	}

	worker := audit.NewWorker(kafka, 256, log)
	workerCtx, cancel := context.WithCancel(ctx)
	go func() { _ = worker.Run(workerCtx) }()
	return worker, func() {
		cancel()
		kafka.Close()
	}
}
