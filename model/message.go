//
// Tencent is pleased to support the open source community by making trpc-crew-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crew-go is licensed under the Apache License Version 2.0.
//
//

package model

// Role represents the role of a message author.
type Role string

// Role constants for message authors.
const (
	// RoleUser is the initial user prompt.
	RoleUser Role = "user"
	// RoleAgent is a supervisor or worker utterance, attributed via
	// Message.Author.
	RoleAgent Role = "agent"
	// RoleSystem is synthetic engine content, such as the
	// summarization notice.
	RoleSystem Role = "system"
	// RoleTool carries a tool result back to a model inside a worker's
	// tool-call loop. It never appears in the shared history.
	RoleTool Role = "tool"
	// RoleToolError is a structured failure folded into the trace:
	// an exhausted tool call, a routing error, or a worker failure.
	RoleToolError Role = "tool_error"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the role is one of the defined constants.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAgent, RoleSystem, RoleTool, RoleToolError:
		return true
	default:
		return false
	}
}

// Message is a single message in an execution. The shared history is
// append-only within one execution, except for the single
// summarization rewrite performed between passes.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	// Author is the ID of the agent that produced the message, for
	// agent and tool_error roles.
	Author string `json:"author_agent_id,omitempty"`
	// ToolID correlates a tool result with the originating call.
	ToolID string `json:"tool_id,omitempty"`
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAgentMessage creates a message attributed to the given agent.
func NewAgentMessage(author, content string) Message {
	return Message{Role: RoleAgent, Author: author, Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewToolMessage creates a tool result message for a worker loop.
func NewToolMessage(toolID, content string) Message {
	return Message{Role: RoleTool, ToolID: toolID, Content: content}
}

// NewToolErrorMessage creates an error-content message attributed to
// the given agent.
func NewToolErrorMessage(author, content string) Message {
	return Message{Role: RoleToolError, Author: author, Content: content}
}
