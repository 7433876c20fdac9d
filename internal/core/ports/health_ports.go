package ports

import (
	"context"

	"github.com/vncsmyrnk/dubvote/internal/core/domain"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthService interface {
	Check(ctx context.Context) domain.HealthReport
}
