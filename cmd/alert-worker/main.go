package main

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Stdout, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	logger.Info("Starting alert-worker", log.FieldComponent, log.ComponentWorker)

	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	repo, closeStore, err := cli.OpenStore(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to open store",
			log.FieldComponent, log.ComponentWorker,
			log.FieldError, err)
		os.Exit(1)
	}
	defer closeStore()

	cacheManager := cache.NewManager()
	engine, err := cli.BuildEngine(logger, cfg, repo, cacheManager)
	if err != nil {
		logger.Error("Failed to build engine",
			log.FieldComponent, log.ComponentWorker,
			log.FieldError, err)
		closeStore()
		os.Exit(1)
	}
	if cfg.ProjectionCacheSize > 0 {
		cacheManager.StartCleanup(cfg.ProjectionCacheTTL)
	}

	// New alerts fan out over AMQP when a broker is configured
	var publisher worker.Publisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, alerts will only be stored",
				log.FieldComponent, log.ComponentAMQP,
				log.FieldError, err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP client initialized - new alerts will be published",
				log.FieldComponent, log.ComponentAMQP,
				"exchange", cfg.AMQPExchange,
				"routing_key", cfg.AMQPRoutingKey)
		}
	} else {
		logger.Info("AMQP disabled - alerts will only be stored", log.FieldComponent, log.ComponentAMQP)
	}

	w := worker.NewAlertWorker(engine, repo, publisher, cfg.MonthlyIncome, cfg.AlertRetention, cfg.EvaluationInterval)
	logger.Info("Alert evaluation configured",
		log.FieldComponent, log.ComponentWorker,
		"interval", cfg.EvaluationInterval,
		"retention", cfg.AlertRetention,
		log.FieldBackend, cfg.DataBackend)

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, cacheManager.Stop)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("Alert worker stopped with error",
			log.FieldComponent, log.ComponentWorker,
			log.FieldError, err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Alert-worker shutdown complete", log.FieldComponent, log.ComponentWorker)
}
