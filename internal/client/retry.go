package client

import (
	"context"
	"errors"
	"net"
	"time"
)

// Policy controls how failed calls are re-issued.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   5 * time.Second,
	}
}

// Delay returns the wait before retry n (0-based): BaseDelay*2^n capped at MaxDelay.
func (p Policy) Delay(n int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < n && d < p.MaxDelay; i++ {
		d *= 2
	}
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Retry runs op, re-issuing it after retryable failures until it succeeds or
// MaxRetries retries have been spent. The last error is returned unchanged.
func Retry[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	for attempt := 0; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if attempt >= p.MaxRetries || !isRetryable(err) {
			return result, err
		}
		if serr := sleep(ctx, p.Delay(attempt)); serr != nil {
			return result, err
		}
	}
}

func isRetryable(err error) bool {
	if cErr, ok := asError(err); ok {
		return cErr.Code == CodeConnectionError || cErr.Status >= 500
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
