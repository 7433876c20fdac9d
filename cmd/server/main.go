package main

import (
	"context"
	"errors"
	"flag"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/dubvote/internal/adapters/events/rabbitmq"
	"github.com/vncsmyrnk/dubvote/internal/adapters/handler/http"
	"github.com/vncsmyrnk/dubvote/internal/adapters/repository/postgres"
	redisstore "github.com/vncsmyrnk/dubvote/internal/adapters/store/redis"
	"github.com/vncsmyrnk/dubvote/internal/config"
	"github.com/vncsmyrnk/dubvote/internal/core/ports"
	"github.com/vncsmyrnk/dubvote/internal/core/services"
	"github.com/vncsmyrnk/dubvote/internal/logging"
	"github.com/vncsmyrnk/dubvote/internal/metrics"
	"github.com/vncsmyrnk/dubvote/internal/retry"
)

func main() {
	foundDotEnv := config.LoadDotEnv()

	cfg, err := config.Parse("server", os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatal(err)
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	if !foundDotEnv {
		logger.Debug("No .env file found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	policy := cfg.RetryPolicy()

	// Dependencies are connected once, before serving. Any of them may end up
	// absent; the server still starts and reports it.
	store := connectStore(ctx, cfg, policy, logger)
	if store != nil {
		defer store.Close()
	}
	deps := []services.Dependency{{Name: "redis", Pinger: store, Required: true}}

	var publisher ports.VotePublisher
	if cfg.AMQPURL != "" {
		dep := services.Dependency{Name: "rabbitmq"}
		p, ok := retry.Connect(ctx, policy, "rabbitmq", func(ctx context.Context) (*rabbitmq.Publisher, error) {
			return rabbitmq.Dial(cfg.AMQPURL, cfg.AMQPQueue)
		}, logger)
		if ok {
			defer p.Close()
			publisher = p
			dep.Pinger = p
		}
		deps = append(deps, dep)
	}

	if cfg.Postgres.Enabled() {
		dep := services.Dependency{Name: "postgres"}
		db, ok := retry.Connect(ctx, policy, "postgres", func(ctx context.Context) (*postgres.Database, error) {
			return postgres.Connect(ctx, cfg.Postgres)
		}, logger)
		if ok {
			defer db.Close()
			dep.Pinger = db
		}
		deps = append(deps, dep)
	}

	voteSvc := services.NewVoteService(store, publisher, m, logger)
	healthSvc := services.NewHealthService(deps, logger)

	handler := http.NewHandler(
		http.NewVoteHandler(voteSvc, logger),
		http.NewHealthHandler(healthSvc),
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		logger,
	)
	server := &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.WithField("addr", cfg.Addr).Info("Listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Fatal("Shutdown failed")
	}
}

// connectStore returns nil when the store stays unreachable, which the vote
// service treats as an absent handle.
func connectStore(ctx context.Context, cfg config.Config, policy retry.Policy, logger logrus.FieldLogger) ports.CounterStore {
	client := redisstore.NewClient(cfg.RedisHost, cfg.RedisPort)
	store := redisstore.NewCounterStore(client, cfg.StoreTimeout)

	handle, ok := retry.Connect(ctx, policy, "redis", redisstore.Connector(store), logger)
	if !ok {
		store.Close()
		logger.Error("Counter store absent, vote and results requests will fail until restart")
		return nil
	}
	return handle
}
