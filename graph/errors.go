//
// Tencent is pleased to support the open source community by making trpc-crew-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crew-go is licensed under the Apache License Version 2.0.
//
//

package graph

import (
	"errors"
	"fmt"
)

// Errors.
var (
	// ErrModelNotFound means an agent's model identifier resolves to no
	// registered model.
	ErrModelNotFound = errors.New("model not registered")
	// ErrEmptyPrompt means execute was called without user text.
	ErrEmptyPrompt = errors.New("user prompt is empty")
)

// SetupError reports a crew that cannot be executed: missing or
// malformed supervisor, invalid member references, unresolvable models.
// It is the only error class that aborts an execution; everything else
// is absorbed into the message trace.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("crew setup failed: %v", e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// RoutingError reports a delegation naming a worker that is not a
// member of the crew. It is recovered locally: the executor feeds it
// back to the supervisor as an error message.
type RoutingError struct {
	Worker string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("no worker named %q in crew", e.Worker)
}
