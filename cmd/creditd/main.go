package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bibbank/credit-service/internal/application/usecase"
	"github.com/bibbank/credit-service/internal/domain/port"
	"github.com/bibbank/credit-service/internal/domain/service"
	"github.com/bibbank/credit-service/internal/infrastructure/adapter"
	"github.com/bibbank/credit-service/internal/infrastructure/config"
	"github.com/bibbank/credit-service/internal/infrastructure/kafka"
	"github.com/bibbank/credit-service/internal/infrastructure/metrics"
	"github.com/bibbank/credit-service/internal/infrastructure/outbox"
	"github.com/bibbank/credit-service/internal/infrastructure/persistence/memory"
	pgRepo "github.com/bibbank/credit-service/internal/infrastructure/persistence/postgres"
	grpcPresentation "github.com/bibbank/credit-service/internal/presentation/grpc"
	"github.com/bibbank/credit-service/internal/presentation/rest"
	"github.com/bibbank/credit-service/pkg/auth"
	"github.com/bibbank/credit-service/pkg/events"
	pkgkafka "github.com/bibbank/credit-service/pkg/kafka"
	"github.com/bibbank/credit-service/pkg/observability"
	pkgpostgres "github.com/bibbank/credit-service/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.ServiceName,
	})

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("credit-service failed", "error", err)
		os.Exit(1)
	}
	logger.Info("credit-service stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Info("starting credit-service",
		"grpc_port", cfg.GRPCPort,
		"http_port", cfg.HTTPPort,
		"storage", cfg.StorageDriver,
		"kafka", cfg.Kafka.Enabled,
	)

	// Approval rules.
	rulesCfg, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		return err
	}
	rules, err := service.NewApprovalRules(rulesCfg)
	if err != nil {
		return fmt.Errorf("approval rules: %w", err)
	}

	// Storage.
	var (
		repo       port.ApplicationRepository
		outboxRepo events.OutboxRepository
		ready      rest.ReadinessCheck
	)
	switch cfg.StorageDriver {
	case config.StorageMemory:
		mem := memory.NewApplicationRepo()
		repo, outboxRepo = mem, mem
		logger.Warn("using in-memory storage, applications are lost on restart")
	default:
		dbCfg := cfg.DB.Postgres()
		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := pkgpostgres.NewPool(dbCtx, dbCfg)
		dbCancel()
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()
		logger.Info("connected to database")

		version, err := pkgpostgres.Migrate(pgRepo.Migrations, pgRepo.MigrationsDir, dbCfg.MigrateURL())
		if err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		logger.Info("database schema ready", "version", version)

		pgr := pgRepo.NewCreditApplicationRepo(pool)
		repo, outboxRepo = pgr, pgr
		ready = func(ctx context.Context) error { return pkgpostgres.HealthCheck(ctx, pool) }
	}

	// Messaging.
	var (
		notifier  port.NotificationSink = adapter.NewLogNotificationSink(logger)
		audit     port.AuditSink        = adapter.NewLogAuditSink(logger)
		publisher outbox.Publisher      = adapter.NewLogEventPublisher(logger)
	)
	if cfg.Kafka.Enabled {
		producer := pkgkafka.NewProducer(cfg.Kafka.Client())
		defer producer.Close()
		notifier = kafka.NewNotificationSink(producer, cfg.Kafka.NotificationsTopic, logger)
		audit = kafka.NewAuditSink(producer, cfg.Kafka.AuditTopic, logger)
		publisher = kafka.NewOutboxPublisher(producer, cfg.Kafka.EventsTopic, logger)
	}

	// Metrics.
	reg := observability.NewRegistry()
	recorder := metrics.NewPrometheus(reg)

	// External collaborators.
	signature, err := adapter.NewLinkSignatureProvider(cfg.SignatureBaseURL)
	if err != nil {
		return fmt.Errorf("signature provider: %w", err)
	}

	// Use cases.
	suite := usecase.NewSuite(usecase.Dependencies{
		Repo:      repo,
		Notifier:  notifier,
		Audit:     audit,
		Metrics:   recorder,
		Blacklist: adapter.NewStubBlacklistChecker(),
		Risk:      adapter.NewStubRiskCentralsChecker(),
		Signature: signature,
		Rules:     rules,
		Logger:    logger,
	})

	// JWT service.
	jwtSvc, err := auth.NewJWTService(cfg.JWT)
	if err != nil {
		return fmt.Errorf("initialize JWT service: %w", err)
	}

	// Servers.
	grpcServer, err := grpcPresentation.NewServer(grpcPresentation.NewCreditReviewHandler(suite, logger), jwtSvc, cfg.GRPC, logger)
	if err != nil {
		return err
	}
	httpServer := rest.NewServer(cfg.HTTPAddr(), rest.NewRouter(rest.NewHandler(suite, ready, logger), reg, logger), logger)

	// Outbox relay.
	relay := outbox.NewRelay(outboxRepo, publisher, recorder, logger, cfg.Outbox.PollInterval, cfg.Outbox.BatchSize)
	relayCtx, stopRelay := context.WithCancel(context.Background())
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		relay.Run(relayCtx)
	}()

	errCh := make(chan error, 2)
	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()
	go func() {
		if err := httpServer.Serve(); err != nil {
			errCh <- err
		}
	}()

	// Wait for shutdown signal.
	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-errCh:
		logger.Error("server error", "error", serveErr)
	}

	// Graceful shutdown: stop intake first, then flush the outbox.
	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	stopRelay()
	<-relayDone
	if n, err := relay.Drain(shutdownCtx); err != nil {
		logger.Warn("final outbox drain failed", "relayed", n, "error", err)
	} else if n > 0 {
		logger.Info("final outbox drain", "relayed", n)
	}

	return serveErr
}
