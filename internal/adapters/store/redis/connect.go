package redis

import (
	"context"

	"github.com/vncsmyrnk/dubvote/internal/core/ports"
	"github.com/vncsmyrnk/dubvote/internal/retry"
)

// Connector pings store and then initializes its counters. Driven by
// retry.Connect, initialization runs exactly once, on the first attempt that
// reaches the store.
func Connector(store ports.CounterStore) retry.Connector[ports.CounterStore] {
	return func(ctx context.Context) (ports.CounterStore, error) {
		if err := store.Ping(ctx); err != nil {
			return nil, err
		}
		if err := store.Init(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}
}
