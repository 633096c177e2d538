package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"entmatrix/internal/audit"
	"entmatrix/internal/catalog"
	httpapi "entmatrix/internal/http"
	"entmatrix/internal/matrix"
	"entmatrix/internal/matrix/cache"
	matrixhandler "entmatrix/internal/matrix/handler"
	matrixservice "entmatrix/internal/matrix/service"
	"entmatrix/internal/platform/config"
	"entmatrix/internal/platform/httpserver"
	"entmatrix/internal/platform/logger"
	"entmatrix/internal/platform/metrics"
	platformotel "entmatrix/internal/platform/otel"
	platformredis "entmatrix/internal/platform/redis"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Matrix logic lives in the internal service packages.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("load config", "error", err.Error())
		os.Exit(1)
	}

	otelShutdown, err := platformotel.Setup(context.Background(), "entmatrix", cfg.OTELEndpoint)
	if err != nil {
		log.Error("init tracing", "error", err.Error())
		os.Exit(1)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	store := matrix.NewStore()
	catalogClient := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogTimeout)

	redisClient, err := platformredis.Connect(context.Background(), cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err.Error())
		os.Exit(1)
	}

	var auditStore audit.Store = audit.NewInMemoryStore()
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("open postgres", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		auditStore = audit.NewPostgresStore(db)
	}

	producer, err := audit.NewProducer(cfg.KafkaBrokers, cfg.AuditTopic, log)
	if err != nil {
		log.Error("connect kafka", "error", err.Error())
		os.Exit(1)
	}

	inbox := make(chan audit.Event, 256)
	worker := audit.NewWorker(auditStore, producer, inbox, log)
	publisher := audit.NewPublisher(inbox, log)

	opts := []matrixservice.Option{matrixservice.WithAuditor(publisher)}
	if redisClient != nil {
		opts = append(opts, matrixservice.WithCache(cache.New(redisClient.Client, redisClient.SnapshotTTL())))
	}
	svc := matrixservice.New(store, catalogClient, catalogClient, m, log, opts...)

	router := httpapi.NewRouter(matrixhandler.New(svc, log), healthChecker(redisClient))
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting entmatrix", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if producer != nil {
			if err := producer.Close(shutdownCtx); err != nil {
				log.Warn("kafka shutdown", "error", err.Error())
			}
		}
		err := srv.Shutdown(shutdownCtx)
		if terr := otelShutdown(shutdownCtx); terr != nil {
			log.Warn("tracer shutdown", "error", terr.Error())
		}
		return err
	})

	if err := group.Wait(); err != nil {
		log.Error("server error", "error", err.Error())
		os.Exit(1)
	}
}

// healthChecker avoids handing the router a typed nil when Redis is disabled.
func healthChecker(client *platformredis.Client) httpapi.HealthChecker {
	if client == nil {
		return nil
	}
	return client
}
