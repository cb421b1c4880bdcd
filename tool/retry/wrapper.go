//
// Tencent is pleased to support the open source community by making trpc-crew-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crew-go is licensed under the Apache License Version 2.0.
//
//

package retry

import (
	"context"
	"fmt"

	"trpc.group/trpc-go/trpc-crew-go/log"
	"trpc.group/trpc-go/trpc-crew-go/tool"
)

// ErrorPayload is the structured result returned when a call exhausts
// its retries or fails permanently. It is a value, not an error: the
// worker folds it into the conversation as a tool_error message.
type ErrorPayload struct {
	// Tool is the name of the failed tool.
	Tool string `json:"tool"`
	// Error describes the last failure.
	Error string `json:"error"`
	// Attempts is the number of attempts consumed, including the first.
	Attempts int `json:"attempts"`
	// Permanent is true when the failure was classified fatal and
	// short-circuited without consuming retries.
	Permanent bool `json:"permanent,omitempty"`
}

func (p *ErrorPayload) String() string {
	return fmt.Sprintf("tool %s failed after %d attempt(s): %s", p.Tool, p.Attempts, p.Error)
}

// Wrapper decorates one CallableTool with the retry policy. It holds no
// mutable state; concurrent invocations are independent.
type Wrapper struct {
	tool   tool.CallableTool
	policy Policy
	clock  Clock
}

// Option configures a Wrapper.
type Option func(*Wrapper)

// WithPolicy sets the retry policy.
func WithPolicy(p Policy) Option {
	return func(w *Wrapper) { w.policy = p }
}

// WithClock injects the clock used for backoff waits.
func WithClock(c Clock) Option {
	return func(w *Wrapper) { w.clock = c }
}

// Wrap decorates the given tool. Without options it applies
// DefaultPolicy and the system clock.
func Wrap(t tool.CallableTool, opts ...Option) *Wrapper {
	w := &Wrapper{
		tool:   t,
		policy: DefaultPolicy(),
		clock:  systemClock{},
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.clock == nil {
		w.clock = systemClock{}
	}
	return w
}

// Declaration implements the Tool interface.
func (w *Wrapper) Declaration() *tool.Declaration {
	return w.tool.Declaration()
}

// Call implements the CallableTool interface. Each attempt runs under
// the per-attempt timeout; transient failures are retried up to
// MaxRetries times with backoff, permanent or unclassified failures
// short-circuit. An error return means only that the caller's context
// ended mid-flight.
func (w *Wrapper) Call(ctx context.Context, jsonArgs []byte) (any, error) {
	name := w.tool.Declaration().Name
	var lastErr error
	for attempt := 1; ; attempt++ {
		result, err := w.callOnce(ctx, jsonArgs)
		if err == nil {
			return result, nil
		}
		lastErr = err

		// A finished parent context is a cancellation, not a tool
		// failure.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if IsPermanent(err) {
			log.Debugf("tool %s failed permanently on attempt %d: %v", name, attempt, err)
			return &ErrorPayload{Tool: name, Error: err.Error(), Attempts: attempt, Permanent: true}, nil
		}
		if !w.policy.ShouldRetry(err) {
			log.Debugf("tool %s failed non-transiently on attempt %d: %v", name, attempt, err)
			return &ErrorPayload{Tool: name, Error: err.Error(), Attempts: attempt}, nil
		}
		if attempt > w.policy.MaxRetries {
			log.Warnf("tool %s exhausted retries after %d attempts: %v", name, attempt, err)
			return &ErrorPayload{Tool: name, Error: lastErr.Error(), Attempts: attempt}, nil
		}

		select {
		case <-w.clock.After(w.policy.NextDelay(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// callOnce runs one attempt under the per-attempt timeout.
func (w *Wrapper) callOnce(ctx context.Context, jsonArgs []byte) (any, error) {
	if w.policy.PerAttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.policy.PerAttemptTimeout)
		defer cancel()
	}
	return w.tool.Call(ctx, jsonArgs)
}
