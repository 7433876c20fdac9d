// Command results prints the current tally snapshot as JSON. It exits
// non-zero when the counter store cannot be reached.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	redisstore "github.com/vncsmyrnk/dubvote/internal/adapters/store/redis"
	"github.com/vncsmyrnk/dubvote/internal/config"
	"github.com/vncsmyrnk/dubvote/internal/core/services"
	"github.com/vncsmyrnk/dubvote/internal/logging"
	"github.com/vncsmyrnk/dubvote/internal/metrics"
)

func main() {
	if !config.LoadDotEnv() {
		log.Println("No .env file found")
	}

	cfg, err := config.Parse("results", os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatal(err)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}

	store := redisstore.NewCounterStore(redisstore.NewClient(cfg.RedisHost, cfg.RedisPort), cfg.StoreTimeout)
	defer store.Close()

	// Use a timeout for the job execution to prevent it from hanging indefinitely
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Counter store unreachable")
	}

	svc := services.NewVoteService(store, nil, metrics.New(prometheus.NewRegistry()), logger)
	results, err := svc.Results(ctx)
	if err != nil {
		logger.WithError(err).Fatal("Error reading results")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		logger.WithError(err).Fatal("Error writing results")
	}
}
