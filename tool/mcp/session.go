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
	"net/http"
	"strings"
	"sync"

	"trpc.group/trpc-go/trpc-crew-go/log"
	mcp "trpc.group/trpc-go/trpc-mcp-go"
)

// session manages one MCP client connection to a tool server.
type session struct {
	config     ConnectionConfig
	mcpOptions []mcp.ClientOption
	client     mcp.Connector
	mu         sync.RWMutex
	connected  bool
}

// newSession creates a session without dialing; connect establishes it.
func newSession(config ConnectionConfig, mcpOptions []mcp.ClientOption) *session {
	return &session{
		config:     config,
		mcpOptions: mcpOptions,
	}
}

// connect establishes and initializes the connection to the tool server.
func (s *session) connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return nil
	}

	log.Debugf("connecting to tool server %s", s.config.ServerURL)

	client, err := s.createClient()
	if err != nil {
		return fmt.Errorf("failed to create MCP client: %w", err)
	}

	initCtx, cancel := s.timeoutContext(ctx)
	initReq := &mcp.InitializeRequest{}
	initResp, err := client.Initialize(initCtx, initReq)
	cancel()
	if err != nil {
		if closeErr := client.Close(); closeErr != nil {
			log.Errorf("failed to close client after initialization failure: %v (init error: %v)", closeErr, err)
		}
		return fmt.Errorf("failed to initialize MCP session: %w", err)
	}

	log.Debugf("initialized MCP session with %s (server %s %s)",
		s.config.ServerURL, initResp.ServerInfo.Name, initResp.ServerInfo.Version)

	s.client = client
	s.connected = true
	return nil
}

// createClient builds the streamable HTTP client for the configured server.
func (s *session) createClient() (mcp.Connector, error) {
	clientInfo := s.config.ClientInfo
	if clientInfo.Name == "" {
		clientInfo = defaultClientInfo
	}

	var options []mcp.ClientOption
	if len(s.config.Headers) > 0 {
		headers := http.Header{}
		for k, v := range s.config.Headers {
			headers.Set(k, v)
		}
		options = append(options, mcp.WithHTTPHeaders(headers))
	}
	if len(s.mcpOptions) > 0 {
		options = append(options, s.mcpOptions...)
	}

	return mcp.NewClient(s.config.ServerURL, clientInfo, options...)
}

// timeoutContext applies the configured per-request timeout when the
// caller's context carries no deadline of its own.
func (s *session) timeoutContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.Timeout > 0 {
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			return context.WithTimeout(ctx, s.config.Timeout)
		}
	}
	return ctx, func() {}
}

// listTools retrieves the manifest of available tools from the server.
func (s *session) listTools(ctx context.Context) ([]mcp.Tool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.client == nil {
		return nil, fmt.Errorf("transport is closed")
	}

	listCtx, cancel := s.timeoutContext(ctx)
	defer cancel()
	listReq := &mcp.ListToolsRequest{}
	listResp, err := s.client.ListTools(listCtx, listReq)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	log.Debugf("listed %d tool(s) from %s", len(listResp.Tools), s.config.ServerURL)
	return listResp.Tools, nil
}

// callTool invokes one tool on the server with the given arguments.
func (s *session) callTool(ctx context.Context, name string, arguments map[string]any) ([]mcp.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.client == nil {
		return nil, fmt.Errorf("transport is closed")
	}

	callCtx, cancel := s.timeoutContext(ctx)
	defer cancel()
	callReq := &mcp.CallToolRequest{}
	callReq.Params.Name = name
	callReq.Params.Arguments = arguments

	callResp, err := s.client.CallTool(callCtx, callReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call tool %s: %w", name, err)
	}
	return callResp.Content, nil
}

// close closes the client connection.
func (s *session) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected || s.client == nil {
		return nil
	}

	err := s.client.Close()
	s.connected = false
	s.client = nil
	if err != nil {
		return fmt.Errorf("failed to close MCP client: %w", err)
	}
	return nil
}

// isConnected reports whether the session has been initialized.
func (s *session) isConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// contentText flattens MCP content blocks to text.
func contentText(contents []mcp.Content) string {
	var parts []string
	for _, content := range contents {
		if textContent, ok := content.(mcp.TextContent); ok {
			parts = append(parts, textContent.Text)
		}
	}
	return strings.Join(parts, "\n")
}
