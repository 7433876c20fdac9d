package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/dubvote/internal/core/domain"
	"github.com/vncsmyrnk/dubvote/internal/core/ports"
)

const pingTimeout = 2 * time.Second

// Dependency is an external collaborator reported by the health check. A nil
// Pinger means the dependency was configured but never connected.
type Dependency struct {
	Name     string
	Pinger   ports.Pinger
	Required bool
}

type healthService struct {
	deps   []Dependency
	logger logrus.FieldLogger
}

func NewHealthService(deps []Dependency, logger logrus.FieldLogger) ports.HealthService {
	return &healthService{
		deps:   deps,
		logger: logger,
	}
}

func (s *healthService) Check(ctx context.Context) domain.HealthReport {
	report := domain.HealthReport{
		Healthy:      true,
		Dependencies: make(map[string]domain.DependencyStatus, len(s.deps)),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, dep := range s.deps {
		wg.Add(1)
		go func(dep Dependency) {
			defer wg.Done()
			status := s.ping(ctx, dep)

			mu.Lock()
			defer mu.Unlock()
			report.Dependencies[dep.Name] = status
			if dep.Required && status != domain.StatusUp {
				report.Healthy = false
			}
		}(dep)
	}

	wg.Wait()
	return report
}

func (s *healthService) ping(ctx context.Context, dep Dependency) domain.DependencyStatus {
	if dep.Pinger == nil {
		return domain.StatusAbsent
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := dep.Pinger.Ping(ctx); err != nil {
		s.logger.WithError(err).WithField("dependency", dep.Name).Warn("health check failed")
		return domain.StatusDown
	}
	return domain.StatusUp
}
