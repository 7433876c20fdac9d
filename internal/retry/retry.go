// Package retry holds the startup connection policy shared by every external
// dependency of the server.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

const (
	DefaultAttempts = 5
	DefaultDelay    = 5 * time.Second
)

type Policy struct {
	Attempts int
	Delay    time.Duration
	// Timer paces the waits between attempts. Nil means a real timer.
	Timer backoff.Timer
}

func DefaultPolicy() Policy {
	return Policy{Attempts: DefaultAttempts, Delay: DefaultDelay}
}

// Connector establishes a handle to a dependency. It is called once per
// attempt.
type Connector[T any] func(ctx context.Context) (T, error)

// Connect calls connector until it succeeds or the policy runs out of
// attempts, waiting a fixed delay in between. Exhaustion is logged and
// reported through the boolean, never as a panic or exit: callers treat a
// false result as a degraded dependency.
func Connect[T any](ctx context.Context, p Policy, name string, connector Connector[T], logger logrus.FieldLogger) (T, bool) {
	var handle T

	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	attempt := 0
	log := logger.WithField("dependency", name)

	operation := func() error {
		attempt++
		log.WithField("attempt", attempt).Infof("connecting to %s", name)

		h, err := connector(ctx)
		if err != nil {
			return err
		}
		handle = h
		return nil
	}

	notify := func(err error, next time.Duration) {
		log.WithError(err).WithField("attempt", attempt).
			Warnf("could not connect to %s, retrying in %s", name, next)
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Delay), uint64(attempts-1)),
		ctx,
	)

	if err := backoff.RetryNotifyWithTimer(operation, b, notify, p.Timer); err != nil {
		log.WithError(err).Errorf("could not connect to %s after %d attempts", name, attempt)
		var zero T
		return zero, false
	}

	log.WithField("attempt", attempt).Infof("connected to %s", name)
	return handle, true
}
