package review

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 2 * time.Second
)

// BackoffBudget is the sum of every wait a review may spend sleeping when
// all attempts fail with a retryable error: the sum of BaseDelay*k² for
// k=1..MaxAttempts-1 under QuadraticDelay.
func (p RetryPolicy) BackoffBudget() time.Duration {
	p = p.normalized()
	var total time.Duration
	for k := 1; k < p.MaxAttempts; k++ {
		total += p.delayBefore(k)
	}
	return total
}

// DelayFunc maps a 1-indexed failed attempt to the pause before the next one.
type DelayFunc func(base time.Duration, attempt int) time.Duration

// QuadraticDelay returns base * attempt². The curve is quadratic, not
// base-2 exponential, and must stay that way.
func QuadraticDelay(base time.Duration, attempt int) time.Duration {
	return base * time.Duration(attempt*attempt)
}

// RetryPolicy bounds the number of provider calls made for one review.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Delay       DelayFunc
}

// DefaultPolicy is three attempts, two seconds base, quadratic backoff.
func DefaultPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: defaultMaxAttempts,
		BaseDelay:   defaultBaseDelay,
		Delay:       QuadraticDelay,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	if p.Delay == nil {
		p.Delay = QuadraticDelay
	}
	return p
}

// delayBefore returns the pause inserted before attempt n+1 after attempt n failed.
func (p RetryPolicy) delayBefore(attempt int) time.Duration {
	p = p.normalized()
	return p.Delay(p.BaseDelay, attempt)
}

// backOff builds a fresh, single-use backoff.BackOff for one review call.
// The retry cap is MaxAttempts-1 because the first attempt is not a retry.
func (p RetryPolicy) backOff() backoff.BackOff {
	p = p.normalized()
	return backoff.WithMaxRetries(&policyBackOff{policy: p}, uint64(p.MaxAttempts-1))
}

// policyBackOff feeds the policy's delay curve into the backoff package.
type policyBackOff struct {
	policy  RetryPolicy
	attempt int
}

func (b *policyBackOff) NextBackOff() time.Duration {
	b.attempt++
	return b.policy.delayBefore(b.attempt)
}

func (b *policyBackOff) Reset() {
	b.attempt = 0
}
