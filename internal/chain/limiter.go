package chain

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"historyScope/internal/metrics"
)

// Limiter throttles outbound calls with a token bucket.
type Limiter struct {
	limiter *rate.Limiter
	label   string
}

// NewLimiter allows rps calls per second with the given burst. A non-positive
// rps disables throttling.
func NewLimiter(rps float64, burst int, label string) *Limiter {
	if rps <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 0), label: label}
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(rps), burst), label: label}
}

// Wait blocks until one token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	r := l.limiter.Reserve()
	if !r.OK() {
		return fmt.Errorf("rate: cannot reserve token")
	}
	delay := r.Delay()
	if delay <= 0 {
		return nil
	}

	metrics.RPCRateLimitWaits.WithLabelValues(l.label).Inc()
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

// Observe runs fn behind the limiter and a retry loop, recording call metrics.
func Observe(ctx context.Context, l *Limiter, label, method string, maxRetries int, backoff time.Duration, fn func(context.Context) error) error {
	return withRetry(ctx, maxRetries, backoff, func(ctx context.Context) error {
		if err := l.Wait(ctx); err != nil {
			return err
		}
		start := time.Now()
		err := fn(ctx)
		metrics.RPCLatency.WithLabelValues(label, method).Observe(time.Since(start).Seconds())
		metrics.RPCCallsTotal.WithLabelValues(label, method, ClassifyError(err)).Inc()
		return err
	})
}
