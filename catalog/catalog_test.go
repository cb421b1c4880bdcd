//
// Tencent is pleased to support the open source community by making trpc-crew-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crew-go is licensed under the Apache License Version 2.0.
//
//

package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-crew-go/crew"
	"trpc.group/trpc-go/trpc-crew-go/tool"
)

// staticTool is a minimal callable used by the fakes below.
type staticTool struct {
	name string
}

func (s staticTool) Declaration() *tool.Declaration {
	return &tool.Declaration{Name: s.name, InputSchema: &tool.Schema{Type: "object"}}
}

func (s staticTool) Call(context.Context, []byte) (any, error) {
	return "result from " + s.name, nil
}

// fakeSource implements ToolSource for one server.
type fakeSource struct {
	tools []tool.CallableTool
	err   error
}

func (f *fakeSource) Tools(context.Context) ([]tool.CallableTool, error) {
	return f.tools, f.err
}

func (f *fakeSource) Tool(name, _ string) tool.CallableTool {
	return staticTool{name: name}
}

func sourcesByURL(m map[string]*fakeSource) BuilderOption {
	return WithToolSource(func(srv crew.ToolServer) ToolSource {
		if src, ok := m[srv.URL]; ok {
			return src
		}
		return &fakeSource{err: errors.New("no such server")}
	})
}

func TestBuildForAgent_DiscoversFromAllServers(t *testing.T) {
	t.Parallel()

	b := NewBuilder(sourcesByURL(map[string]*fakeSource{
		"http://s1": {tools: []tool.CallableTool{staticTool{name: "search"}}},
		"http://s2": {tools: []tool.CallableTool{staticTool{name: "fetch"}}},
	}))

	ag := &crew.Agent{ID: "wrk-1", Role: crew.RoleWorker}
	servers := []*crew.ToolServer{
		{ID: "srv-1", URL: "http://s1"},
		{ID: "srv-2", URL: "http://s2"},
	}
	cat := b.BuildForAgent(context.Background(), ag, nil, servers)

	require.Equal(t, 2, cat.Len())
	_, ok := cat.Tool("search")
	require.True(t, ok)
	_, ok = cat.Tool("fetch")
	require.True(t, ok)
	require.Empty(t, cat.Failures())
}

func TestBuildForAgent_UnreachableServerIsSkippedNotFatal(t *testing.T) {
	t.Parallel()

	dialErr := errors.New("connection refused")
	b := NewBuilder(sourcesByURL(map[string]*fakeSource{
		"http://good": {tools: []tool.CallableTool{staticTool{name: "search"}}},
		"http://bad":  {err: dialErr},
	}))

	ag := &crew.Agent{ID: "wrk-1", Role: crew.RoleWorker}
	servers := []*crew.ToolServer{
		{ID: "srv-good", URL: "http://good"},
		{ID: "srv-bad", URL: "http://bad"},
	}
	cat := b.BuildForAgent(context.Background(), ag, nil, servers)

	require.Equal(t, 1, cat.Len())
	_, ok := cat.Tool("search")
	require.True(t, ok)

	failures := cat.Failures()
	require.Len(t, failures, 1)
	require.Equal(t, "srv-bad", failures[0].ServerID)
	require.ErrorIs(t, failures[0].Err, dialErr)
}

func TestBuildForAgent_StaticRecordsWinCollisions(t *testing.T) {
	t.Parallel()

	b := NewBuilder(sourcesByURL(map[string]*fakeSource{
		"http://s1": {tools: []tool.CallableTool{staticTool{name: "weather"}}},
	}))

	ag := &crew.Agent{ID: "wrk-1", Role: crew.RoleWorker, ToolIDs: []string{"t1"}}
	tools := []*crew.Tool{
		{ID: "t1", Name: "weather", APIName: "get_weather_v2", ServerID: "srv-1"},
	}
	servers := []*crew.ToolServer{{ID: "srv-1", URL: "http://s1"}}
	cat := b.BuildForAgent(context.Background(), ag, tools, servers)

	require.Equal(t, 1, cat.Len())
	got, ok := cat.Tool("weather")
	require.True(t, ok)
	// The record's display name is exposed even though the wire call
	// uses the server-side api name.
	require.Equal(t, "weather", got.Declaration().Name)

	result, err := got.Call(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, "result from get_weather_v2", result)
}

func TestBuildForAgent_DanglingReferencesAreSkipped(t *testing.T) {
	t.Parallel()

	b := NewBuilder(sourcesByURL(map[string]*fakeSource{}))

	ag := &crew.Agent{ID: "wrk-1", Role: crew.RoleWorker, ToolIDs: []string{"missing", "t1"}}
	tools := []*crew.Tool{
		{ID: "t1", Name: "orphan", APIName: "orphan", ServerID: "no-such-server"},
	}
	cat := b.BuildForAgent(context.Background(), ag, tools, nil)
	require.Zero(t, cat.Len())
}
