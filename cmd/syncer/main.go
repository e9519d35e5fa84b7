package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"bevents/internal/config"
	"bevents/internal/metrics"
	"bevents/internal/publisher"
	"bevents/internal/scheduler"
	"bevents/internal/service"
	"bevents/internal/source"
	"bevents/internal/source/campus"
	"bevents/internal/source/greek"
	"bevents/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run every source once and exit")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
		URL:        cfg.RabbitMQ.URL,
		Exchange:   cfg.RabbitMQ.Exchange,
		RoutingKey: cfg.RabbitMQ.RoutingKey,
		QueueName:  cfg.RabbitMQ.QueueName,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer rabbitMQ.Close()

	eventStore := postgres.NewEventStore(db)
	syncStateStore := postgres.NewSyncStateStore(db)
	txManager := postgres.NewTransactionManager(db)
	syncMetrics := metrics.NewSync()

	fetcher := source.NewFetcher(source.FetchConfig{
		UserAgent:      cfg.Sources.HTTP.UserAgent,
		Timeout:        cfg.Sources.HTTP.Timeout,
		MaxAttempts:    cfg.Sources.HTTP.Retry.MaxAttempts,
		InitialBackoff: cfg.Sources.HTTP.Retry.InitialBackoff,
		MaxBackoff:     cfg.Sources.HTTP.Retry.MaxBackoff,
	}, logger)

	var sources []service.Source
	for _, site := range cfg.Sources.Campus {
		sources = append(sources, campus.New(campus.Config{
			ID:        site.ID,
			Name:      site.Name,
			URL:       site.URL,
			MaxEvents: site.MaxEvents,
		}, fetcher, logger))
	}
	if cfg.Sources.Greek.Enabled {
		sources = append(sources, greek.New(cfg.Sources.Greek.URL, fetcher, source.Pacific(), logger))
	}
	if len(sources) == 0 {
		logger.Error("no sources configured")
		os.Exit(1)
	}

	syncers := make([]scheduler.Syncer, 0, len(sources))
	for _, src := range sources {
		syncers = append(syncers, service.NewSyncService(
			src,
			eventStore,
			syncStateStore,
			txManager,
			rabbitMQ,
			syncMetrics,
			logger,
			cfg.Sync,
		))
	}

	sched := scheduler.NewScheduler(syncers, cfg.Sync.Interval, cfg.Sync.RunTimeout, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *once {
		sched.RunOnce(ctx)
		return
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	go func() {
		if err := syncMetrics.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
			logger.Error("metrics server error", "error", err)
		}
	}()

	logger.Info("starting event syncer",
		"sources", len(sources),
		"interval", cfg.Sync.Interval,
	)

	if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
