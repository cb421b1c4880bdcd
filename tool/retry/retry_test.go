package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPolicy_NextDelay(t *testing.T) {
	t.Parallel()

	p := Policy{
		InitialInterval: 100 * time.Millisecond,
		BackoffFactor:   2.0,
		MaxInterval:     500 * time.Millisecond,
	}

	require.Equal(t, 100*time.Millisecond, p.NextDelay(1))
	require.Equal(t, 200*time.Millisecond, p.NextDelay(2))
	require.Equal(t, 400*time.Millisecond, p.NextDelay(3))
	// Capped by MaxInterval from here on.
	require.Equal(t, 500*time.Millisecond, p.NextDelay(4))
	require.Equal(t, 500*time.Millisecond, p.NextDelay(10))

	// Attempt numbers below 1 behave like the first attempt.
	require.Equal(t, 100*time.Millisecond, p.NextDelay(0))
}

func TestPolicy_NextDelayMisconfigured(t *testing.T) {
	t.Parallel()

	p := Policy{InitialInterval: 50 * time.Millisecond}
	// No factor, no cap: delay stays at the initial interval.
	require.Equal(t, 50*time.Millisecond, p.NextDelay(1))
	require.Equal(t, 50*time.Millisecond, p.NextDelay(5))
}

func TestPolicy_ShouldRetry(t *testing.T) {
	t.Parallel()

	errTransient := errors.New("transient")
	p := Policy{RetryOn: []Condition{OnErrors(errTransient)}}

	require.True(t, p.ShouldRetry(errTransient))
	require.True(t, p.ShouldRetry(errors.Join(errors.New("wrapped"), errTransient)))
	require.False(t, p.ShouldRetry(errors.New("other")))
	require.False(t, p.ShouldRetry(nil))

	// The permanent marker always wins over matching conditions.
	require.False(t, p.ShouldRetry(Permanent(errTransient)))
}

func TestDefaultTransientCondition(t *testing.T) {
	t.Parallel()

	cond := DefaultTransientCondition()
	require.True(t, cond.Match(context.DeadlineExceeded))
	require.False(t, cond.Match(errors.New("boom")))
	require.False(t, cond.Match(nil))
}

func TestPermanentMarker(t *testing.T) {
	t.Parallel()

	base := errors.New("bad arguments")
	perm := Permanent(base)

	require.True(t, IsPermanent(perm))
	require.False(t, IsPermanent(base))
	require.ErrorIs(t, perm, base)
	require.Equal(t, base.Error(), perm.Error())
	require.Nil(t, Permanent(nil))
}
