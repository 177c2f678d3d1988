package generation

import (
	"context"
	"errors"
	"net/http"
	"time"

	"productshot/config"

	"github.com/charmbracelet/log"
)

// RetryPolicy decides whether a failed attempt is retried and after how long.
// attempt starts at 0 for the first failure.
type RetryPolicy interface {
	NextDelay(attempt int, err error) (time.Duration, bool)
}

// BackoffPolicy retries transient failures a bounded number of times with a
// fixed or doubling delay.
type BackoffPolicy struct {
	MaxRetries  int
	Delay       time.Duration
	Exponential bool
	MaxDelay    time.Duration
}

func DefaultRetryPolicy() BackoffPolicy {
	return BackoffPolicy{
		MaxRetries: config.DefaultMaxRetries,
		Delay:      config.DefaultRetryDelayMs * time.Millisecond,
		MaxDelay:   30 * time.Second,
	}
}

func RetryPolicyFromConfig(cfg config.GenerationConfig) BackoffPolicy {
	p := DefaultRetryPolicy()
	p.MaxRetries = cfg.MaxRetries
	if d := cfg.RetryDelay(); d > 0 {
		p.Delay = d
	}
	p.Exponential = cfg.ExponentialBackoff
	return p
}

func (p BackoffPolicy) NextDelay(attempt int, err error) (time.Duration, bool) {
	if attempt >= p.MaxRetries || !Retryable(err) {
		return 0, false
	}
	d := p.Delay
	if p.Exponential {
		for i := 0; i < attempt; i++ {
			d *= 2
			if p.MaxDelay > 0 && d >= p.MaxDelay {
				return p.MaxDelay, true
			}
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d, true
}

// Retryable is true for timeouts, network failures, 429 and 5xx responses.
func Retryable(err error) bool {
	var gerr *Error
	if !errors.As(err, &gerr) {
		return false
	}
	switch gerr.Kind {
	case KindTimeout, KindNetwork:
		return true
	case KindHTTP:
		return gerr.Status == http.StatusTooManyRequests || gerr.Status >= 500
	}
	return false
}

type retrying struct {
	next   Generator
	policy RetryPolicy
	log    *log.Logger
}

// WithRetry wraps g so transient failures are retried according to policy.
// The last error is returned once the policy gives up or ctx is done.
func WithRetry(g Generator, policy RetryPolicy) Generator {
	if policy == nil {
		policy = DefaultRetryPolicy()
	}
	return &retrying{
		next:   g,
		policy: policy,
		log:    log.With("component", "generation", "action", "retry"),
	}
}

func (r *retrying) Generate(ctx context.Context, req Request) (*Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := r.next.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		delay, ok := r.policy.NextDelay(attempt, err)
		if !ok {
			return nil, err
		}
		r.log.Info("retrying generation", "attempt", attempt+1, "delay", delay.String(), "code", CodeOf(err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, err
		case <-timer.C:
		}
	}
}
