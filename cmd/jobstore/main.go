package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"shenanigigs/jobstore/internal/config"
	"shenanigigs/jobstore/internal/database"
	"shenanigigs/jobstore/internal/events"
	"shenanigigs/jobstore/internal/processor"
	"shenanigigs/jobstore/internal/repository"
	"shenanigigs/jobstore/internal/telemetry"
	"shenanigigs/jobstore/internal/validation"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", cfg.ServiceName)), nil
}

func newNATSConnection(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Timeout(cfg.NATSConnTimeout),
		nats.Name(cfg.ServiceName),
		nats.RetryOnFailedConnect(true),
	}
	nc, err := nats.Connect(cfg.NATSURL, opts...)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return nc.Drain()
		},
	})
	return nc, nil
}

func newDatabase(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*database.Database, error) {
	db, err := database.New(context.Background(), database.Options{
		DSN:             cfg.DatabaseURL,
		MaxConns:        int32(cfg.DatabaseMaxConns),
		MinConns:        int32(cfg.DatabaseMinConns),
		MaxConnLifetime: cfg.DatabaseMaxConnLifetime,
		MaxConnIdleTime: cfg.DatabaseMaxConnIdleTime,
	}, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			db.Close()
			return nil
		},
	})
	return db, nil
}

func newJobRepository(db *database.Database, v *validation.Validator, logger *zap.Logger) *repository.JobRepository {
	return repository.NewJobRepository(db.Pool(), v, logger)
}

func newJobStore(repo *repository.JobRepository) processor.JobStore {
	return repo
}

func newHandler(logger *zap.Logger, nc *nats.Conn, tracer trace.Tracer, jobProcessor *processor.JobProcessor, cfg *config.Config) *events.Handler {
	return events.NewHandler(logger, nc, tracer, jobProcessor, cfg.NATSQueueGroup)
}

func newTracer() trace.Tracer {
	return telemetry.GetTracer("shenanigigs/jobstore")
}

func startTracing(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) error {
	if !cfg.TracingEnabled() {
		logger.Info("Tracing disabled, OTEL_COLLECTOR_URL not set")
		return nil
	}

	shutdown, err := telemetry.InitTracer(context.Background(), cfg.ServiceName, cfg.ServiceVersion, cfg.OTELCollectorURL)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: shutdown,
	})
	return nil
}

func main() {
	_ = godotenv.Load()

	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			newLogger,
			newNATSConnection,
			newDatabase,
			validation.New,
			newJobRepository,
			newJobStore,
			processor.NewJobProcessor,
			newHandler,
			newTracer,
		),
		fx.Invoke(
			startTracing,
			func(repo *repository.JobRepository) error {
				return repo.InitializeTable(context.Background())
			},
			func(handler *events.Handler, lc fx.Lifecycle) error {
				return handler.RegisterSubscriptions(lc)
			},
		),
	)

	startCtx := context.Background()
	if err := app.Start(startCtx); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	stopCtx := context.Background()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatal(err)
	}
}
