package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	handler "github.com/vncsmyrnk/dubvote/internal/adapters/handler/http"
	"github.com/vncsmyrnk/dubvote/internal/adapters/repository/postgres"
	redisstore "github.com/vncsmyrnk/dubvote/internal/adapters/store/redis"
	"github.com/vncsmyrnk/dubvote/internal/core/ports"
	"github.com/vncsmyrnk/dubvote/internal/core/services"
	"github.com/vncsmyrnk/dubvote/internal/metrics"
	"github.com/vncsmyrnk/dubvote/internal/retry"
)

var testPolicy = retry.Policy{Attempts: 5, Delay: 200 * time.Millisecond}

type redisContainer struct {
	testcontainers.Container
	Host string
	Port string
}

func setupRedisContainer(ctx context.Context) (*redisContainer, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start redis container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, err
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		return nil, err
	}

	return &redisContainer{Container: container, Host: host, Port: port.Port()}, nil
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, postgres.Config, error) {
	cfg := postgres.Config{User: "user", Password: "password", Name: "testdb"}

	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase(cfg.Name),
		tcpostgres.WithUsername(cfg.User),
		tcpostgres.WithPassword(cfg.Password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, cfg, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		return nil, cfg, err
	}
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return nil, cfg, err
	}
	cfg.Host = host
	cfg.Port = port.Port()

	return pgContainer, cfg, nil
}

type TestApp struct {
	Redis  *redisContainer
	Store  ports.CounterStore
	Server *httptest.Server
	Client *http.Client
}

// startApp runs the server startup path against redis and, when db is not
// nil, reports it as the optional relational collaborator.
func startApp(t *testing.T, redis *redisContainer, db *postgres.Database) *TestApp {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	ctx := context.Background()

	store := redisstore.NewCounterStore(redisstore.NewClient(redis.Host, redis.Port), 2*time.Second)
	handle, ok := retry.Connect(ctx, testPolicy, "redis", redisstore.Connector(store), logger)
	require.True(t, ok)

	deps := []services.Dependency{{Name: "redis", Pinger: handle, Required: true}}
	if db != nil {
		deps = append(deps, services.Dependency{Name: "postgres", Pinger: db})
	}

	voteSvc := services.NewVoteService(handle, nil, metrics.New(prometheus.NewRegistry()), logger)
	router := handler.NewHandler(
		handler.NewVoteHandler(voteSvc, logger),
		handler.NewHealthHandler(services.NewHealthService(deps, logger)),
		nil,
		logger,
	)

	server := httptest.NewServer(router)
	return &TestApp{
		Redis:  redis,
		Store:  handle,
		Server: server,
		Client: server.Client(),
	}
}

func setupTestApp(t *testing.T) *TestApp {
	redis, err := setupRedisContainer(context.Background())
	require.NoError(t, err)

	return startApp(t, redis, nil)
}

// Stop shuts the HTTP server and closes the store, leaving redis running.
func (app *TestApp) Stop() {
	app.Server.Close()
	app.Store.Close()
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Stop()
	require.NoError(t, app.Redis.Terminate(context.Background()))
}
