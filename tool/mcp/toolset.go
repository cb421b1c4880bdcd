//
// Tencent is pleased to support the open source community by making trpc-crew-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crew-go is licensed under the Apache License Version 2.0.
//
//

package mcp

import (
	"context"
	"fmt"

	"trpc.group/trpc-go/trpc-crew-go/tool"
)

// ToolSet discovers the callable tools one server exposes.
type ToolSet struct {
	config toolSetConfig
}

// NewToolSet creates a tool set for the given server connection.
func NewToolSet(config ConnectionConfig, opts ...ToolSetOption) *ToolSet {
	cfg := toolSetConfig{
		connectionConfig: config,
		cache:            defaultCache,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.connectionConfig.ClientInfo.Name == "" {
		cfg.connectionConfig.ClientInfo = defaultClientInfo
	}
	return &ToolSet{config: cfg}
}

// Tools queries the server manifest and returns the discovered tools.
// Unlike cached lookups, every call refreshes the manifest; the caller
// decides how often discovery runs.
func (ts *ToolSet) Tools(ctx context.Context) ([]tool.CallableTool, error) {
	s, err := ts.config.cache.session(ctx, ts.config.connectionConfig, ts.config.mcpOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to tool server %s: %w", ts.config.connectionConfig.ServerURL, err)
	}

	manifest, err := s.listTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools from %s: %w", ts.config.connectionConfig.ServerURL, err)
	}

	tools := make([]tool.CallableTool, 0, len(manifest))
	for _, m := range manifest {
		tools = append(tools, newRemoteTool(m.Name, m.Description, convertInputSchema(m.InputSchema), s))
	}
	return tools, nil
}

// Tool builds a callable for one named tool on the server without
// discovery. The catalog uses this for statically assigned tool
// records, whose schema the server validates at invocation time.
func (ts *ToolSet) Tool(name, description string) tool.CallableTool {
	return &lazyTool{
		name:        name,
		description: description,
		ts:          ts,
	}
}
