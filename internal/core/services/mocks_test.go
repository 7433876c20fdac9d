package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vncsmyrnk/dubvote/internal/core/domain"
)

type mockCounterStore struct {
	mock.Mock
}

func (m *mockCounterStore) Init(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockCounterStore) Incr(ctx context.Context, option domain.Option) (int64, error) {
	args := m.Called(ctx, option)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCounterStore) Get(ctx context.Context, option domain.Option) (int64, error) {
	args := m.Called(ctx, option)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCounterStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockCounterStore) Close() error {
	return m.Called().Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishVote(ctx context.Context, event domain.VoteCast) error {
	return m.Called(ctx, event).Error(0)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}
