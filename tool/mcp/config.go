//
// Tencent is pleased to support the open source community by making trpc-crew-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crew-go is licensed under the Apache License Version 2.0.
//
//

// Package mcp connects agents to external tool servers over the MCP
// wire protocol: manifest discovery and {name, arguments} invocation
// over streamable HTTP.
package mcp

import (
	"time"

	mcp "trpc.group/trpc-go/trpc-mcp-go"
)

// Default configurations.
var (
	defaultClientInfo = mcp.Implementation{
		Name:    "trpc-crew-go",
		Version: "1.0.0",
	}
)

// ConnectionConfig defines the configuration for connecting to a tool server.
type ConnectionConfig struct {
	// ServerURL is the base URL of the tool server.
	ServerURL string `json:"server_url"`

	// Headers are additional HTTP headers sent on every request.
	Headers map[string]string `json:"headers,omitempty"`

	// Timeout bounds each discovery or invocation request.
	Timeout time.Duration `json:"timeout,omitempty"`

	// ClientInfo identifies this client to the server.
	ClientInfo mcp.Implementation `json:"client_info,omitempty"`
}

// toolSetConfig holds internal configuration for ToolSet.
type toolSetConfig struct {
	connectionConfig ConnectionConfig
	cache            *Cache
	mcpOptions       []mcp.ClientOption
}

// ToolSetOption is a function type for configuring ToolSet.
type ToolSetOption func(*toolSetConfig)

// WithCache routes the tool set's connections through the given cache
// instead of the process-wide default.
func WithCache(c *Cache) ToolSetOption {
	return func(cfg *toolSetConfig) {
		cfg.cache = c
	}
}

// WithMCPOptions sets additional MCP client options.
// This can be used to pass options to the underlying MCP client.
func WithMCPOptions(options ...mcp.ClientOption) ToolSetOption {
	return func(cfg *toolSetConfig) {
		cfg.mcpOptions = append(cfg.mcpOptions, options...)
	}
}
