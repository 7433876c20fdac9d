package config

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/vncsmyrnk/dubvote/internal/adapters/events/rabbitmq"
	"github.com/vncsmyrnk/dubvote/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/dubvote/internal/retry"
)

const DefaultAddr = "0.0.0.0:5000"

type Config struct {
	Addr            string
	RedisHost       string
	RedisPort       string
	StoreTimeout    time.Duration
	ConnectAttempts int
	ConnectDelay    time.Duration
	Postgres        postgres.Config
	AMQPURL         string
	AMQPQueue       string
	LogLevel        string
}

func (c Config) RetryPolicy() retry.Policy {
	return retry.Policy{Attempts: c.ConnectAttempts, Delay: c.ConnectDelay}
}

// LoadDotEnv reads a .env file into the process environment if there is one.
func LoadDotEnv() bool {
	return godotenv.Load() == nil
}

// Parse reads flags from args. Every flag defaults to its environment
// variable, looked up through getenv, and then to a built-in value.
func Parse(name string, args []string, getenv func(string) string, output io.Writer) (Config, error) {
	var cfg Config
	env := envLookup(getenv)

	storeTimeout, err := env.duration("STORE_TIMEOUT", 2*time.Second)
	if err != nil {
		return Config{}, err
	}
	connectDelay, err := env.duration("CONNECT_DELAY", retry.DefaultDelay)
	if err != nil {
		return Config{}, err
	}
	connectAttempts, err := env.integer("CONNECT_ATTEMPTS", retry.DefaultAttempts)
	if err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&cfg.Addr, "addr", env.get("HTTP_ADDR", DefaultAddr), "HTTP listen address")
	fs.StringVar(&cfg.RedisHost, "redis-host", env.get("REDIS_HOST", "localhost"), "Redis host")
	fs.StringVar(&cfg.RedisPort, "redis-port", env.get("REDIS_PORT", "6379"), "Redis port")
	fs.DurationVar(&cfg.StoreTimeout, "store-timeout", storeTimeout, "Timeout for a single counter store call")
	fs.IntVar(&cfg.ConnectAttempts, "connect-attempts", connectAttempts, "Startup connection attempts per dependency")
	fs.DurationVar(&cfg.ConnectDelay, "connect-delay", connectDelay, "Delay between startup connection attempts")

	fs.StringVar(&cfg.Postgres.Host, "db-host", env.get("POSTGRES_HOST", "localhost"), "Database host")
	fs.StringVar(&cfg.Postgres.Port, "db-port", env.get("POSTGRES_PORT", "5432"), "Database port")
	fs.StringVar(&cfg.Postgres.User, "db-user", env.get("POSTGRES_USER", ""), "Database user")
	fs.StringVar(&cfg.Postgres.Password, "db-pass", env.get("POSTGRES_PASSWORD", ""), "Database password")
	fs.StringVar(&cfg.Postgres.Name, "db-name", env.get("POSTGRES_DB", ""), "Database name, empty disables postgres")

	fs.StringVar(&cfg.AMQPURL, "amqp-url", env.get("RABBITMQ_URL", ""), "RabbitMQ URL, empty disables vote events")
	fs.StringVar(&cfg.AMQPQueue, "amqp-queue", env.get("RABBITMQ_QUEUE", rabbitmq.DefaultQueue), "RabbitMQ queue for vote events")

	fs.StringVar(&cfg.LogLevel, "log-level", env.get("LOG_LEVEL", "info"), "Log level")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.ConnectAttempts < 1 {
		return Config{}, fmt.Errorf("connect attempts must be at least 1, got %d", cfg.ConnectAttempts)
	}
	if cfg.StoreTimeout <= 0 {
		return Config{}, fmt.Errorf("store timeout must be positive, got %s", cfg.StoreTimeout)
	}

	return cfg, nil
}

type envLookup func(string) string

func (e envLookup) get(key, fallback string) string {
	if v := e(key); v != "" {
		return v
	}
	return fallback
}

func (e envLookup) duration(key string, fallback time.Duration) (time.Duration, error) {
	v := e(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func (e envLookup) integer(key string, fallback int) (int, error) {
	v := e(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
