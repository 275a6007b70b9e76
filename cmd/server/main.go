package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"gatehouse/internal/audit"
	"gatehouse/internal/audit/directory"
	audithandler "gatehouse/internal/audit/handler"
	auditmetrics "gatehouse/internal/audit/metrics"
	resolverpg "gatehouse/internal/audit/resolver/postgres"
	storememory "gatehouse/internal/audit/store/memory"
	storepg "gatehouse/internal/audit/store/postgres"
	"gatehouse/internal/audit/stream"
	"gatehouse/internal/audit/worker"
	"gatehouse/internal/flow"
	flowhandler "gatehouse/internal/flow/handler"
	"gatehouse/internal/jwttoken"
	"gatehouse/internal/platform/config"
	"gatehouse/internal/platform/httpserver"
	"gatehouse/internal/platform/logger"
	platformredis "gatehouse/internal/platform/redis"
	httptransport "gatehouse/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres is optional for local development; without it the engine runs
	// on in-memory adapters.
	var (
		auditStore audit.Store
		engineOpts []audit.Option
		kioskKeys  flow.KioskKeys
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			log.Error("open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("ping database", "error", err)
			os.Exit(1)
		}
		auditStore = storepg.New(db)
		engineOpts = append(engineOpts,
			audit.WithResolver(resolverpg.New(db, cfg.BaseLanguage)),
			audit.WithDirectory(directory.NewPostgres(db)),
		)
		kioskKeys = flow.NewPostgresKioskKeys(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		auditStore = storememory.NewInMemory()
		engineOpts = append(engineOpts, audit.WithDirectory(directory.NewInMemory()))
		kioskKeys = flow.NewInMemoryKioskKeys()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	var flowStore flow.Store
	if redisClient != nil {
		defer redisClient.Close()
		flowStore = flow.NewRedis(redisClient.Client)
	} else {
		flowStore = flow.NewInMemory()
	}

	metrics := auditmetrics.New()
	engineOpts = append(engineOpts,
		audit.WithLogger(log),
		audit.WithMetrics(metrics),
		audit.WithBaseLanguage(cfg.BaseLanguage),
	)

	group, ctx := errgroup.WithContext(ctx)

	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := stream.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("create stream publisher", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()

		events := make(chan audit.ChangeRecord, 256)
		engineOpts = append(engineOpts, audit.WithEventSink(events))
		w := worker.New(publisher, events, log, metrics)
		group.Go(func() error {
			if err := w.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	engine := audit.New(auditStore, audit.SeedRegistry(), engineOpts...)

	flowService := flow.New(flowStore, kioskKeys, flow.WithLogger(log))
	jwtService := jwttoken.NewService(cfg.JWTSigningKey, "gatehouse", "gatehouse-admin")

	router := httptransport.NewRouter(httptransport.Deps{
		Audit:     audithandler.New(engine, log),
		Flows:     flowhandler.New(flowService, log),
		Validator: jwtService,
		Flow:      flowService,
		Logger:    log,
	})

	srv := httpserver.New(cfg.Addr, router)

	group.Go(func() error {
		log.Info("starting gatehouse", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}
