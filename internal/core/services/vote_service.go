package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/dubvote/internal/core/domain"
	"github.com/vncsmyrnk/dubvote/internal/core/ports"
	"github.com/vncsmyrnk/dubvote/internal/metrics"
)

type voteService struct {
	store     ports.CounterStore
	publisher ports.VotePublisher
	metrics   *metrics.Metrics
	logger    logrus.FieldLogger
	now       func() time.Time
}

// NewVoteService builds the vote pathway on top of store. A nil store is an
// absent handle: every call fails with domain.ErrStoreUnavailable without
// reaching the network. A nil publisher disables vote events.
func NewVoteService(store ports.CounterStore, publisher ports.VotePublisher, m *metrics.Metrics, logger logrus.FieldLogger) ports.VoteService {
	available := 0.0
	if store != nil {
		available = 1
	}
	m.StoreAvailable.Set(available)

	return &voteService{
		store:     store,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *voteService) Vote(ctx context.Context, input ports.VoteInput) (*domain.Tally, error) {
	if s.store == nil {
		s.countError(domain.ErrStoreUnavailable)
		return nil, domain.ErrStoreUnavailable
	}

	option, err := domain.ParseOption(input.Option)
	if err != nil {
		s.countError(err)
		return nil, err
	}

	total, err := s.store.Incr(ctx, option)
	if err != nil {
		s.countError(err)
		return nil, err
	}

	s.metrics.VotesTotal.WithLabelValues(option.String()).Inc()
	s.logger.WithFields(logrus.Fields{"option": option, "total": total}).Info("vote counted")

	s.publish(ctx, option, total)

	return &domain.Tally{Option: option, Total: total}, nil
}

func (s *voteService) Results(ctx context.Context) (domain.Results, error) {
	if s.store == nil {
		s.countError(domain.ErrStoreUnavailable)
		return nil, domain.ErrStoreUnavailable
	}

	// Reads are independent; a vote landing between them is tolerated.
	results := make(domain.Results, len(domain.Options))
	for _, opt := range domain.Options {
		count, err := s.store.Get(ctx, opt)
		if err != nil {
			s.countError(err)
			return nil, err
		}
		results[opt] = count
	}

	return results, nil
}

// publish never fails the vote: the counter has already moved.
func (s *voteService) publish(ctx context.Context, option domain.Option, total int64) {
	if s.publisher == nil {
		return
	}

	event := domain.VoteCast{
		ID:     uuid.New(),
		Option: option,
		Total:  total,
		CastAt: s.now().UTC(),
	}

	if err := s.publisher.PublishVote(ctx, event); err != nil {
		s.metrics.PublishFailures.Inc()
		s.logger.WithError(err).WithField("event_id", event.ID).Warn("failed to publish vote event")
	}
}

func (s *voteService) countError(err error) {
	reason := metrics.ReasonInternal
	switch {
	case errors.Is(err, domain.ErrInvalidVote):
		reason = metrics.ReasonInvalid
	case errors.Is(err, domain.ErrStoreUnavailable):
		reason = metrics.ReasonUnavailable
	}
	s.metrics.VoteErrorsTotal.WithLabelValues(reason).Inc()
}
