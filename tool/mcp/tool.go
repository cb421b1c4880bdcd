package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"trpc.group/trpc-go/trpc-crew-go/log"
	"trpc.group/trpc-go/trpc-crew-go/tool"
	"trpc.group/trpc-go/trpc-crew-go/tool/retry"
)

// remoteTool is a discovered tool bound to an established session.
type remoteTool struct {
	decl    *tool.Declaration
	session *session
}

func newRemoteTool(name, description string, schema *tool.Schema, s *session) *remoteTool {
	return &remoteTool{
		decl: &tool.Declaration{
			Name:        name,
			Description: description,
			InputSchema: schema,
		},
		session: s,
	}
}

// Declaration implements the Tool interface.
func (t *remoteTool) Declaration() *tool.Declaration {
	return t.decl
}

// Call implements the CallableTool interface. Malformed arguments fail
// permanently; wire failures stay plain errors for the retry wrapper to
// classify.
func (t *remoteTool) Call(ctx context.Context, jsonArgs []byte) (any, error) {
	arguments, err := decodeArgs(jsonArgs)
	if err != nil {
		return nil, retry.Permanent(err)
	}

	log.Debugf("calling tool %s", t.decl.Name)
	content, err := t.session.callTool(ctx, t.decl.Name, arguments)
	if err != nil {
		return nil, err
	}
	return contentText(content), nil
}

// lazyTool is a statically assigned tool record bound to a server; the
// session is resolved through the cache on first call.
type lazyTool struct {
	name        string
	description string
	ts          *ToolSet
}

// Declaration implements the Tool interface. Static records carry no
// schema; the owning server validates arguments at invocation time.
func (t *lazyTool) Declaration() *tool.Declaration {
	return &tool.Declaration{
		Name:        t.name,
		Description: t.description,
		InputSchema: &tool.Schema{Type: "object"},
	}
}

// Call implements the CallableTool interface.
func (t *lazyTool) Call(ctx context.Context, jsonArgs []byte) (any, error) {
	arguments, err := decodeArgs(jsonArgs)
	if err != nil {
		return nil, retry.Permanent(err)
	}

	cfg := t.ts.config
	s, err := cfg.cache.session(ctx, cfg.connectionConfig, cfg.mcpOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to tool server %s: %w", cfg.connectionConfig.ServerURL, err)
	}

	content, err := s.callTool(ctx, t.name, arguments)
	if err != nil {
		return nil, err
	}
	return contentText(content), nil
}

// decodeArgs parses json-encoded tool arguments.
func decodeArgs(jsonArgs []byte) (map[string]any, error) {
	if len(jsonArgs) == 0 {
		return make(map[string]any), nil
	}
	var arguments map[string]any
	if err := json.Unmarshal(jsonArgs, &arguments); err != nil {
		return nil, fmt.Errorf("failed to parse tool arguments: %w", err)
	}
	return arguments, nil
}
