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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/cors"

	"coursehub/internal/audit"
	auditkafka "coursehub/internal/audit/store/kafka"
	auditmemory "coursehub/internal/audit/store/memory"
	"coursehub/internal/platform/config"
	"coursehub/internal/platform/httpserver"
	"coursehub/internal/platform/kafka"
	"coursehub/internal/platform/logger"
	"coursehub/internal/platform/metrics"
	"coursehub/internal/platform/postgres"
	"coursehub/internal/platform/redis"
	taxonomystore "coursehub/internal/taxonomy/store"
	"coursehub/internal/teacherapp"
	teachermetrics "coursehub/internal/teacherapp/metrics"
	"coursehub/internal/teacherapp/service"
	"coursehub/pkg/platform/circuit"
	"coursehub/pkg/platform/httputil"
	"coursehub/pkg/platform/jwttoken"
	"coursehub/pkg/platform/middleware/requestid"
	"coursehub/pkg/platform/middleware/requesttime"
)

// main wires dependencies and owns the server lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTP(reg)

	opts := []service.Option{
		service.WithMetrics(teachermetrics.New(reg)),
		service.WithBatchMax(cfg.Teacher.CredentialBatchMax),
	}
	health := map[string]func(context.Context) error{}

	var (
		stores teacherapp.Stores
		db     *sql.DB
	)
	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		stores = teacherapp.PostgresStores(db)
		opts = append(opts, service.WithTx(postgres.NewTxRunner(db, cfg.Database.TxTimeout)))
		health["postgres"] = db.PingContext
		log.Info("using postgres stores")
	} else {
		stores, _, _ = teacherapp.MemoryStores()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	cache, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
		stores.Categories = taxonomystore.NewRedisCache(stores.Categories, cache.Client, cfg.Redis.TaxonomyTTL, log)
		health["redis"] = cache.Health
		log.Info("taxonomy cache enabled", "ttl", cfg.Redis.TaxonomyTTL)
	}

	local := auditmemory.NewInMemoryStore()
	var events audit.Store = local
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ApplicationTopic)
		if err != nil {
			return err
		}
		defer producer.Close()
		if err := producer.EnsureTopic(ctx, 3, 1); err != nil {
			log.Warn("could not ensure lifecycle topic", "topic", producer.Topic(), "error", err)
		}
		events = auditkafka.New(producer,
			auditkafka.WithFallback(circuit.New("lifecycle-kafka"), local),
			auditkafka.WithLogger(log),
		)
		health["kafka"] = producer.Ping
		log.Info("publishing lifecycle events to kafka", "topic", producer.Topic())
	}
	opts = append(opts, service.WithAuditPublisher(audit.NewPublisher(events, audit.WithLogger(log))))

	tokens := jwttoken.NewService(cfg.JWTSigningKey, cfg.JWTIssuer)
	module, err := teacherapp.New(stores, tokens, log, opts...)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(httpMetrics.Middleware)
	r.Get("/health", healthHandler(health))
	r.Handle("/metrics", httpMetrics.Handler())
	module.Handler.Register(r)
	module.Handler.RegisterAdmin(r, cfg.AdminAPIToken)

	co := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	})
	srv := httpserver.New(cfg.Addr, co.Handler(r))

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting coursehub", "addr", cfg.Addr, "environment", cfg.Environment)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func healthHandler(checks map[string]func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		status := map[string]string{}
		code := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status[name] = "down"
				code = http.StatusServiceUnavailable
				continue
			}
			status[name] = "up"
		}
		httputil.WriteJSON(w, code, map[string]any{"status": http.StatusText(code), "checks": status})
	}
}
