package ports

import (
	"context"

	"github.com/vncsmyrnk/dubvote/internal/core/domain"
)

type VoteInput struct {
	Option string
}

type VoteService interface {
	Vote(ctx context.Context, input VoteInput) (*domain.Tally, error)
	Results(ctx context.Context) (domain.Results, error)
}

type VotePublisher interface {
	PublishVote(ctx context.Context, event domain.VoteCast) error
}
