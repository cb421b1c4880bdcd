//
// Tencent is pleased to support the open source community by making trpc-crew-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crew-go is licensed under the Apache License Version 2.0.
//
//

// Package model defines the opaque language-model capability invoked by
// supervisor and worker nodes, and the message types that flow through
// an execution. How a model reasons is outside the engine; it only
// consumes complete responses.
package model

import (
	"context"

	"trpc.group/trpc-go/trpc-crew-go/tool"
)

// Model is the capability contract for one language model backend.
// Implementations live in the service layer; the engine resolves them
// through the Registry by the agent's model identifier.
type Model interface {
	// GenerateContent produces one complete response for the request.
	// The returned error is reserved for system-level failures (nil
	// request, transport breakage); model-level refusals come back as
	// response content.
	GenerateContent(ctx context.Context, request *Request) (*Response, error)

	// Info returns basic information about the model.
	Info() Info
}

// Info contains basic information about a Model.
type Info struct {
	Name string
}

// Request is one model invocation: instructions, the bounded history
// snapshot, and the tool declarations the model may call.
type Request struct {
	// Instructions is the system prompt for this invocation.
	Instructions string `json:"instructions,omitempty"`
	// Messages is the conversation snapshot, oldest first.
	Messages []Message `json:"messages"`
	// Tools declares the callable tools, keyed by tool name.
	Tools map[string]*tool.Declaration `json:"-"`
}

// Response is one complete model response. A response carries either
// textual content, or one or more tool calls the caller must execute
// before invoking the model again.
type Response struct {
	Content   string     `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is a request by the model to invoke one declared tool.
type ToolCall struct {
	// ID correlates the call with its result message, when the
	// backend assigns one.
	ID string `json:"id,omitempty"`
	// Name is the declared tool name.
	Name string `json:"name"`
	// Arguments are the json-encoded call arguments.
	Arguments []byte `json:"arguments,omitempty"`
}
