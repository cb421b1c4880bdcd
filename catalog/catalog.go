//
// Tencent is pleased to support the open source community by making trpc-crew-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crew-go is licensed under the Apache License Version 2.0.
//
//

// Package catalog assembles the set of callable tools available to one
// agent for one execution, merging statically assigned tool records
// with tools discovered from the crew's tool servers.
package catalog

import (
	"context"
	"time"

	"trpc.group/trpc-go/trpc-crew-go/crew"
	"trpc.group/trpc-go/trpc-crew-go/log"
	"trpc.group/trpc-go/trpc-crew-go/tool"
	"trpc.group/trpc-go/trpc-crew-go/tool/mcp"
)

// ServerFailure records one tool server that could not be queried
// during a catalog build.
type ServerFailure struct {
	ServerID string
	URL      string
	Err      error
}

// Catalog is the tool set built for one agent. Ordering of Tools is not
// significant; lookups go by name.
type Catalog struct {
	tools    map[string]tool.CallableTool
	failures []ServerFailure
}

// Tools returns all callable tools in the catalog.
func (c *Catalog) Tools() []tool.CallableTool {
	out := make([]tool.CallableTool, 0, len(c.tools))
	for _, t := range c.tools {
		out = append(out, t)
	}
	return out
}

// Tool returns the callable registered under the given name.
func (c *Catalog) Tool(name string) (tool.CallableTool, bool) {
	t, ok := c.tools[name]
	return t, ok
}

// Failures returns the servers that were skipped during the build.
func (c *Catalog) Failures() []ServerFailure {
	return c.failures
}

// Len returns the number of tools in the catalog.
func (c *Catalog) Len() int {
	return len(c.tools)
}

// Builder configures catalog builds.
type Builder struct {
	discoverTimeout time.Duration
	newToolSet      func(crew.ToolServer) ToolSource
}

// ToolSource abstracts one server's discovery surface, implemented by
// mcp.ToolSet and by test fakes.
type ToolSource interface {
	Tools(ctx context.Context) ([]tool.CallableTool, error)
	Tool(name, description string) tool.CallableTool
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithDiscoverTimeout bounds each server's discovery query.
func WithDiscoverTimeout(d time.Duration) BuilderOption {
	return func(b *Builder) { b.discoverTimeout = d }
}

// WithToolSource overrides how a server record becomes a discovery
// surface. Tests inject fakes here.
func WithToolSource(f func(crew.ToolServer) ToolSource) BuilderOption {
	return func(b *Builder) { b.newToolSet = f }
}

const defaultDiscoverTimeout = 10 * time.Second

// NewBuilder creates a catalog builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		discoverTimeout: defaultDiscoverTimeout,
		newToolSet: func(srv crew.ToolServer) ToolSource {
			return mcp.NewToolSet(mcp.ConnectionConfig{ServerURL: srv.URL})
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildForAgent builds the catalog for one agent: the agent's statically
// assigned tool records first, then tools discovered from every visible
// server. Deduplication is by tool name and a static definition takes
// precedence over a same-named discovered one. An unreachable server is
// recorded as a failure and skipped; the build never aborts wholesale.
func (b *Builder) BuildForAgent(
	ctx context.Context,
	ag *crew.Agent,
	tools []*crew.Tool,
	servers []*crew.ToolServer,
) *Catalog {
	cat := &Catalog{tools: make(map[string]tool.CallableTool)}

	byID := make(map[string]*crew.Tool, len(tools))
	for _, t := range tools {
		byID[t.ID] = t
	}
	serverByID := make(map[string]*crew.ToolServer, len(servers))
	for _, srv := range servers {
		serverByID[srv.ID] = srv
	}

	// Statically assigned tools first; they win name collisions.
	for _, toolID := range ag.ToolIDs {
		rec, ok := byID[toolID]
		if !ok {
			log.Warnf("agent %s references unknown tool %s, skipping", ag.ID, toolID)
			continue
		}
		srv, ok := serverByID[rec.ServerID]
		if !ok {
			log.Warnf("tool %s references unknown server %s, skipping", rec.ID, rec.ServerID)
			continue
		}
		source := b.newToolSet(*srv)
		cat.tools[rec.Name] = namedTool{
			name: rec.Name,
			t:    source.Tool(rec.APIName, rec.Description),
		}
	}

	// Dynamically discovered tools from every visible server.
	for _, srv := range servers {
		discovered, err := b.discover(ctx, *srv)
		if err != nil {
			log.Warnf("tool server %s (%s) unreachable, skipping: %v", srv.ID, srv.URL, err)
			cat.failures = append(cat.failures, ServerFailure{ServerID: srv.ID, URL: srv.URL, Err: err})
			continue
		}
		for _, t := range discovered {
			name := t.Declaration().Name
			if _, exists := cat.tools[name]; exists {
				continue
			}
			cat.tools[name] = t
		}
	}
	return cat
}

// discover queries one server's manifest under the discovery timeout.
func (b *Builder) discover(ctx context.Context, srv crew.ToolServer) ([]tool.CallableTool, error) {
	if b.discoverTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.discoverTimeout)
		defer cancel()
	}
	return b.newToolSet(srv).Tools(ctx)
}

// namedTool exposes a callable under the record's display name while
// the wire call uses the server-side api name.
type namedTool struct {
	name string
	t    tool.CallableTool
}

// Declaration implements the Tool interface.
func (n namedTool) Declaration() *tool.Declaration {
	decl := *n.t.Declaration()
	decl.Name = n.name
	return &decl
}

// Call implements the CallableTool interface.
func (n namedTool) Call(ctx context.Context, jsonArgs []byte) (any, error) {
	return n.t.Call(ctx, jsonArgs)
}
