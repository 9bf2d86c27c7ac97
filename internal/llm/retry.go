package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider retries transport failures with exponential backoff and
// jitter, and gives a malformed structured answer one more try.
//
// Rate and quota rejections go straight back to the caller unless
// RetryConfig.RetryRateLimit is set, because an interview turn surfaces them
// as "try again shortly" instead of blocking the candidate. Even then a
// wait longer than MaxWait, or one that would outlive the context deadline,
// is not waited out.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.config.MaxAttempts, 1)
	retriedInvalid := false

	for attempt := 0; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if attempt == attempts-1 || !r.retryable(err, &retriedInvalid) {
			return nil, err
		}

		wait, ok := r.wait(ctx, attempt, err)
		if !ok {
			return nil, err
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

func (r *RetryProvider) retryable(err error, retriedInvalid *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var maxTok *ErrMaxTokensExceeded
	if errors.As(err, &maxTok) {
		return false
	}
	var inv *ErrInvalidResponse
	if errors.As(err, &inv) {
		if *retriedInvalid {
			return false
		}
		*retriedInvalid = true
		return true
	}
	if IsQuota(err) {
		return r.config.RetryRateLimit
	}
	return true
}

// wait returns how long to sleep before the next attempt, and false when
// the sleep should not happen at all.
func (r *RetryProvider) wait(ctx context.Context, attempt int, err error) (time.Duration, bool) {
	var d time.Duration
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		if r.config.MaxWait > 0 && rl.RetryAfter > r.config.MaxWait {
			return 0, false
		}
		d = rl.RetryAfter
	} else {
		d = r.backoff(attempt)
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= d {
		return 0, false
	}
	return d, true
}

// backoff is InitialWait·Multiplier^attempt capped at MaxWait, ±20% jitter.
func (r *RetryProvider) backoff(attempt int) time.Duration {
	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if r.config.MaxWait > 0 {
		wait = math.Min(wait, float64(r.config.MaxWait))
	}
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(math.Max(wait, 0))
}
