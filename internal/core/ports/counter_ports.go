package ports

import (
	"context"

	"github.com/vncsmyrnk/dubvote/internal/core/domain"
)

// CounterStore is the client side of the shared counter service. A nil
// CounterStore stands for an absent handle.
type CounterStore interface {
	// Init creates a zero counter for every option unless counters already
	// exist. It never overwrites a stored value.
	Init(ctx context.Context) error
	Incr(ctx context.Context, option domain.Option) (int64, error)
	// Get returns 0 for an option whose counter does not exist.
	Get(ctx context.Context, option domain.Option) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}
