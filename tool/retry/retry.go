// Package retry wraps a callable tool with bounded retries, a
// per-attempt timeout and a structured-error fallback. Exhaustion never
// surfaces as a Go error; the wrapper returns an ErrorPayload result so
// the calling agent can fold the failure into its conversation and
// self-correct.
package retry

import (
	"context"
	"errors"
	"math"
	"net"
	"time"
)

// Condition determines whether an error is transient and worth a retry.
type Condition interface {
	Match(err error) bool
}

// ConditionFunc is an adapter to allow the use of
// ordinary functions as Condition.
type ConditionFunc func(error) bool

// Match calls f(err).
func (f ConditionFunc) Match(err error) bool { return f(err) }

// permanentError marks an error that must never be retried, regardless
// of the policy's conditions.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so the wrapper short-circuits without consuming
// retries. Tools use this for non-transient failures such as malformed
// arguments, making the transient/fatal distinction explicit rather
// than inferred from incidental error types.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err carries the Permanent marker.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// OnErrors creates a condition that matches when errors.Is(err, any target).
func OnErrors(targets ...error) Condition {
	return ConditionFunc(func(err error) bool {
		for _, t := range targets {
			if t == nil {
				continue
			}
			if errors.Is(err, t) {
				return true
			}
		}
		return false
	})
}

// DefaultTransientCondition matches common transient errors worthy of retry:
// - context.DeadlineExceeded
// - net.Error with Timeout() or Temporary()
func DefaultTransientCondition() Condition {
	return ConditionFunc(func(err error) bool {
		if err == nil {
			return false
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return true
		}
		var ne net.Error
		if errors.As(err, &ne) {
			if ne.Timeout() {
				return true
			}
			// Temporary() is deprecated but widely implemented
			// so still consider it when available.
			if ne.Temporary() {
				return true
			}
		}
		return false
	})
}

// Policy defines the retry configuration for one wrapper.
// MaxRetries counts attempts after the first try, so MaxRetries=2
// allows up to 3 attempts in total.
type Policy struct {
	MaxRetries      int
	InitialInterval time.Duration
	BackoffFactor   float64
	MaxInterval     time.Duration
	RetryOn         []Condition

	// Optional per-attempt timeout; 0 leaves the caller's context
	// deadline in charge.
	PerAttemptTimeout time.Duration
}

// DefaultPolicy returns the policy used when none is configured:
// two retries with a short exponential backoff, retrying on
// DefaultTransientCondition.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:      2,
		InitialInterval: 500 * time.Millisecond,
		BackoffFactor:   2.0,
		MaxInterval:     8 * time.Second,
		RetryOn:         []Condition{DefaultTransientCondition()},
	}
}

// NextDelay returns the backoff delay after the given attempt number.
// attempt starts at 1 for the first try.
func (p Policy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(p.InitialInterval)
	factor := p.BackoffFactor
	if factor <= 0 {
		// Default to no exponential growth if misconfigured.
		factor = 1.0
	}
	if attempt > 1 {
		delay *= math.Pow(factor, float64(attempt-1))
	}
	maxInt := p.MaxInterval
	if maxInt <= 0 {
		maxInt = p.InitialInterval
	}
	if maxInt > 0 {
		delay = math.Min(delay, float64(maxInt))
	}
	d := time.Duration(delay)
	if d < 0 {
		d = 0
	}
	return d
}

// ShouldRetry reports whether the given error matches any of the policy's conditions.
// Permanent errors never match.
func (p Policy) ShouldRetry(err error) bool {
	if err == nil || IsPermanent(err) {
		return false
	}
	for _, cond := range p.RetryOn {
		if cond != nil && cond.Match(err) {
			return true
		}
	}
	return false
}

// Clock abstracts retry waits so tests run without real delays.
type Clock interface {
	// After returns a channel that fires after the given duration.
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock returns the wall-clock implementation used by default.
func SystemClock() Clock { return systemClock{} }
