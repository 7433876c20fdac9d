package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"

	_ "github.com/lib/pq"
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Enabled reports whether a database was configured at all.
func (c Config) Enabled() bool {
	return c.Name != ""
}

func (c Config) ConnString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Database is the relational collaborator. No route reads or writes it; the
// server only keeps the connection and reports it in health checks.
type Database struct {
	db *sql.DB
}

// Connect opens a pool and verifies it with a ping. It is meant to be used as
// a retry.Connector.
func Connect(ctx context.Context, cfg Config) (*Database, error) {
	db, err := sql.Open("postgres", cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres at %s: %w", cfg.Host, err)
	}

	return &Database{db: db}, nil
}

func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *Database) Close() error {
	return d.db.Close()
}
