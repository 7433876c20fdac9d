package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/vncsmyrnk/dubvote/internal/core/domain"
	"github.com/vncsmyrnk/dubvote/internal/core/ports"
)

const DefaultTimeout = 2 * time.Second

type counterStore struct {
	client  *redis.Client
	timeout time.Duration
}

// NewClient disables the client's own command retries: a resent INCR whose
// first reply was lost would count the same vote twice.
func NewClient(host, port string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:       net.JoinHostPort(host, port),
		DB:         0,
		MaxRetries: -1,
	})
}

// NewCounterStore wraps client so that every call is bounded by timeout.
func NewCounterStore(client *redis.Client, timeout time.Duration) ports.CounterStore {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &counterStore{
		client:  client,
		timeout: timeout,
	}
}

func (s *counterStore) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// One SETNX per option inside MULTI/EXEC: missing counters are created,
	// existing tallies survive restarts.
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, opt := range domain.Options {
			pipe.SetNX(ctx, opt.String(), 0, 0)
		}
		return nil
	})
	if err != nil {
		return classify("failed to initialize counters", err)
	}
	return nil
}

func (s *counterStore) Incr(ctx context.Context, option domain.Option) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	total, err := s.client.Incr(ctx, option.String()).Result()
	if err != nil {
		return 0, classify(fmt.Sprintf("failed to increment %s", option), err)
	}
	return total, nil
}

func (s *counterStore) Get(ctx context.Context, option domain.Option) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	count, err := s.client.Get(ctx, option.String()).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, classify(fmt.Sprintf("failed to read %s", option), err)
	}
	return count, nil
}

func (s *counterStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Ping(ctx).Err(); err != nil {
		return classify("failed to ping redis", err)
	}
	return nil
}

func (s *counterStore) Close() error {
	return s.client.Close()
}

// classify marks connectivity failures, dropped connections and timeouts as
// ErrStoreUnavailable.
func classify(msg string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, redis.ErrClosed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %w", msg, domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
