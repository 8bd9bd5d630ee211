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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hemicycle/internal/authtoken"
	"hemicycle/internal/events"
	"hemicycle/internal/ledger/handler"
	"hemicycle/internal/ledger/metrics"
	"hemicycle/internal/ledger/report"
	"hemicycle/internal/ledger/service"
	"hemicycle/internal/ledger/store"
	"hemicycle/internal/platform/config"
	"hemicycle/internal/platform/httpserver"
	"hemicycle/internal/platform/logger"
	platformredis "hemicycle/internal/platform/redis"
	"hemicycle/pkg/platform/httputil"
	"hemicycle/pkg/platform/middleware/auth"
)

// main wires configuration, storage, and transport. Business logic lives in
// internal/ledger; everything here is assembly.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx := context.Background()

	source, err := newRecordSource(ctx, cfg.Data)
	if err != nil {
		log.Error("failed to open record source", "error", err)
		os.Exit(1)
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		opts = append(opts, service.WithReportCache(store.NewRedisReportCache(redisClient, cfg.Redis.ReportTTL)))
		log.Info("report cache backed by redis", "ttl", cfg.Redis.ReportTTL)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		opts = append(opts, service.WithPublisher(publisher))
		log.Info("run-completed events enabled", "topic", cfg.Kafka.Topic)
	}

	if cfg.Diagnostics.Dir != "" {
		opts = append(opts, service.WithDiagnosticsSink(
			report.NewFileSink(cfg.Diagnostics.Dir),
			diagnosticFlags(cfg.Diagnostics),
		))
	}

	svc, err := service.New(source, opts...)
	if err != nil {
		log.Error("failed to build validation service", "error", err)
		os.Exit(1)
	}

	var validator auth.TokenValidator
	if cfg.Auth.JWTSigningKey != "" {
		validator = authtoken.New(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
	} else {
		log.Warn("JWT_SIGNING_KEY not set, run endpoint is unguarded")
	}

	router := chi.NewRouter()
	handler.New(svc, log, validator).Register(router)
	router.Get("/healthz", handleHealth(redisClient))
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Server.Addr, router)

	go func() {
		log.Info("starting hemicycle server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// newRecordSource picks Postgres when a DSN is configured, CSV otherwise.
func newRecordSource(ctx context.Context, cfg config.Data) (store.RecordSource, error) {
	if cfg.DatabaseURL != "" {
		return store.OpenPostgres(ctx, cfg.DatabaseURL)
	}
	return store.NewCSVSource(cfg.Dir), nil
}

func diagnosticFlags(cfg config.Diagnostics) report.Flags {
	return report.Flags{
		Conflicts: cfg.WriteConflicts,
		Range:     cfg.WriteRange,
		Errors:    cfg.WriteErrors,
	}
}

func handleHealth(redisClient *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				status["status"] = "degraded"
				status["redis"] = err.Error()
				httputil.WriteJSON(w, http.StatusServiceUnavailable, status)
				return
			}
			status["redis"] = "ok"
		}
		httputil.WriteJSON(w, http.StatusOK, status)
	}
}
