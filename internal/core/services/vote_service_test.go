package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	redisstore "github.com/vncsmyrnk/dubvote/internal/adapters/store/redis"
	"github.com/vncsmyrnk/dubvote/internal/core/domain"
	"github.com/vncsmyrnk/dubvote/internal/core/ports"
	"github.com/vncsmyrnk/dubvote/internal/metrics"
)

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func TestVote(t *testing.T) {
	for name, test := range map[string]struct {
		Option         string
		SetupStore     func(*mockCounterStore)
		ExpectedTally  *domain.Tally
		ExpectedErr    error
		ExpectedReason string
	}{
		"valid option": {
			Option: "dubstep",
			SetupStore: func(s *mockCounterStore) {
				s.On("Incr", mock.Anything, domain.OptionDubstep).Return(int64(1), nil)
			},
			ExpectedTally: &domain.Tally{Option: domain.OptionDubstep, Total: 1},
		},
		"unknown option": {
			Option:         "techno",
			SetupStore:     func(s *mockCounterStore) {},
			ExpectedErr:    domain.ErrInvalidVote,
			ExpectedReason: metrics.ReasonInvalid,
		},
		"missing option": {
			Option:         "",
			SetupStore:     func(s *mockCounterStore) {},
			ExpectedErr:    domain.ErrInvalidVote,
			ExpectedReason: metrics.ReasonInvalid,
		},
		"store lost mid request": {
			Option: "raw",
			SetupStore: func(s *mockCounterStore) {
				err := fmt.Errorf("failed to increment raw: %w", domain.ErrStoreUnavailable)
				s.On("Incr", mock.Anything, domain.OptionRaw).Return(int64(0), err)
			},
			ExpectedErr:    domain.ErrStoreUnavailable,
			ExpectedReason: metrics.ReasonUnavailable,
		},
		"unexpected store error": {
			Option: "raw",
			SetupStore: func(s *mockCounterStore) {
				s.On("Incr", mock.Anything, domain.OptionRaw).Return(int64(0), errors.New("WRONGTYPE"))
			},
			ExpectedReason: metrics.ReasonInternal,
		},
	} {
		t.Run(name, func(t *testing.T) {
			store := &mockCounterStore{}
			test.SetupStore(store)
			defer store.AssertExpectations(t)

			m := newTestMetrics()
			logger, _ := logtest.NewNullLogger()
			svc := NewVoteService(store, nil, m, logger)

			tally, err := svc.Vote(context.Background(), ports.VoteInput{Option: test.Option})

			if test.ExpectedTally != nil {
				require.NoError(t, err)
				assert.Equal(t, test.ExpectedTally, tally)
				assert.Equal(t, 1.0, testutil.ToFloat64(m.VotesTotal.WithLabelValues(test.Option)))
				return
			}

			require.Error(t, err)
			assert.Nil(t, tally)
			if test.ExpectedErr != nil {
				assert.True(t, errors.Is(err, test.ExpectedErr))
			}
			assert.Equal(t, 1.0, testutil.ToFloat64(m.VoteErrorsTotal.WithLabelValues(test.ExpectedReason)))
		})
	}
}

func TestVoteWithAbsentStore(t *testing.T) {
	m := newTestMetrics()
	logger, _ := logtest.NewNullLogger()
	publisher := &mockPublisher{}
	svc := NewVoteService(nil, publisher, m, logger)

	tally, err := svc.Vote(context.Background(), ports.VoteInput{Option: "dubstep"})
	assert.Nil(t, tally)
	assert.Equal(t, domain.ErrStoreUnavailable, err)

	results, err := svc.Results(context.Background())
	assert.Nil(t, results)
	assert.Equal(t, domain.ErrStoreUnavailable, err)

	// The store check comes before validation.
	_, err = svc.Vote(context.Background(), ports.VoteInput{Option: "techno"})
	assert.Equal(t, domain.ErrStoreUnavailable, err)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.StoreAvailable))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.VoteErrorsTotal.WithLabelValues(metrics.ReasonUnavailable)))
	publisher.AssertNotCalled(t, "PublishVote", mock.Anything, mock.Anything)
}

func TestVotePublishesEvent(t *testing.T) {
	store := &mockCounterStore{}
	store.On("Incr", mock.Anything, domain.OptionRaw).Return(int64(8), nil)

	castAt := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	publisher := &mockPublisher{}
	publisher.On("PublishVote", mock.Anything, mock.MatchedBy(func(e domain.VoteCast) bool {
		return e.Option == domain.OptionRaw && e.Total == 8 && e.CastAt.Equal(castAt) && e.ID.String() != ""
	})).Return(nil)

	logger, _ := logtest.NewNullLogger()
	svc := NewVoteService(store, publisher, newTestMetrics(), logger).(*voteService)
	svc.now = func() time.Time { return castAt }

	tally, err := svc.Vote(context.Background(), ports.VoteInput{Option: "raw"})

	require.NoError(t, err)
	assert.Equal(t, int64(8), tally.Total)
	publisher.AssertExpectations(t)
}

func TestVoteSucceedsWhenPublishFails(t *testing.T) {
	store := &mockCounterStore{}
	store.On("Incr", mock.Anything, domain.OptionDubstep).Return(int64(2), nil)
	publisher := &mockPublisher{}
	publisher.On("PublishVote", mock.Anything, mock.Anything).Return(errors.New("channel closed"))

	m := newTestMetrics()
	logger, hook := logtest.NewNullLogger()
	svc := NewVoteService(store, publisher, m, logger)

	tally, err := svc.Vote(context.Background(), ports.VoteInput{Option: "dubstep"})

	require.NoError(t, err)
	assert.Equal(t, &domain.Tally{Option: domain.OptionDubstep, Total: 2}, tally)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PublishFailures))
	assert.Equal(t, "failed to publish vote event", hook.LastEntry().Message)
}

func TestResults(t *testing.T) {
	store := &mockCounterStore{}
	store.On("Get", mock.Anything, domain.OptionDubstep).Return(int64(3), nil)
	store.On("Get", mock.Anything, domain.OptionRaw).Return(int64(7), nil)
	defer store.AssertExpectations(t)

	logger, _ := logtest.NewNullLogger()
	svc := NewVoteService(store, nil, newTestMetrics(), logger)

	results, err := svc.Results(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.Results{domain.OptionDubstep: 3, domain.OptionRaw: 7}, results)
}

func TestResultsStoreError(t *testing.T) {
	store := &mockCounterStore{}
	store.On("Get", mock.Anything, domain.OptionDubstep).Return(int64(0), errors.New("boom"))

	logger, _ := logtest.NewNullLogger()
	svc := NewVoteService(store, nil, newTestMetrics(), logger)

	results, err := svc.Results(context.Background())

	assert.Error(t, err)
	assert.Nil(t, results)
	store.AssertNotCalled(t, "Get", mock.Anything, domain.OptionRaw)
}

func TestConcurrentVotesAreAllCounted(t *testing.T) {
	mr := miniredis.RunT(t)
	store := redisstore.NewCounterStore(redisstore.NewClient(mr.Host(), mr.Port()), time.Second)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Init(ctx))
	require.NoError(t, mr.Set(domain.OptionRaw.String(), "5"))

	logger, _ := logtest.NewNullLogger()
	svc := NewVoteService(store, nil, newTestMetrics(), logger)

	results, err := svc.Results(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), results[domain.OptionDubstep])

	const voters = 100
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Vote(ctx, ports.VoteInput{Option: "dubstep"})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Vote(ctx, ports.VoteInput{Option: "raw"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	results, err = svc.Results(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Results{domain.OptionDubstep: voters, domain.OptionRaw: 5 + voters}, results)
}
