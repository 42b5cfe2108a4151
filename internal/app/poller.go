package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	defaultPollInterval = 60 * time.Second
	maxBackoff          = 5 * time.Minute
)

// Session reports whether a user is signed in.
type Session interface {
	IsAuthenticated() bool
}

// Refresher re-fetches one store from the server.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// StartPoller launches a background goroutine that refreshes the stores
// while a session is active. Consecutive failures stretch the interval up to
// maxBackoff. The returned channel closes when the goroutine exits.
func StartPoller(ctx context.Context, session Session, targets []Refresher, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		failures := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			if session.IsAuthenticated() {
				if err := refresh(ctx, targets); err != nil {
					if ctx.Err() != nil {
						return
					}
					failures++
					logger.Warn("background refresh failed",
						zap.Int("failures", failures),
						zap.Error(err),
					)
				} else {
					if failures > 0 {
						logger.Info("background refresh recovered", zap.Int("after_failures", failures))
					}
					failures = 0
				}
			}
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
	return done
}

func refresh(ctx context.Context, targets []Refresher) error {
	var errs []error
	for _, target := range targets {
		if err := target.Refresh(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// calculateBackoff doubles base per consecutive failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 || base >= maxBackoff {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
