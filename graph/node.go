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
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-crew-go/crew"
	"trpc.group/trpc-go/trpc-crew-go/log"
	"trpc.group/trpc-go/trpc-crew-go/model"
	"trpc.group/trpc-go/trpc-crew-go/tool"
)

// node is the capability contract shared by the two node variants.
// A node receives a history snapshot and returns a result value; it
// never mutates the shared history.
type node interface {
	execute(ctx context.Context, history []model.Message) (*StepResult, error)
}

// Delegation is one (worker, task) pair emitted by the supervisor.
type Delegation struct {
	// Worker is the ID or name the supervisor used to address the
	// worker agent. The executor resolves it against the crew.
	Worker string `json:"worker"`
	// Task describes the delegated subtask.
	Task string `json:"task"`
}

// StepResult is the outcome of one node execution.
type StepResult struct {
	// Messages are merged into the shared history by the executor.
	Messages []model.Message
	// Terminal is set when the supervisor answered directly.
	Terminal bool
	// Output is the direct answer when Terminal is set.
	Output string
	// Delegations lists the workers to fan out to, in the order the
	// supervisor named them.
	Delegations []Delegation
}

// DelegateToolName is the routing tool forced onto the supervisor
// model. One call per delegation; a plain text response instead of
// tool calls is the direct answer.
const DelegateToolName = "delegate"

// delegateDeclaration builds the routing declaration with the crew's
// worker names as the closed value set.
func delegateDeclaration(workerNames []string) *tool.Declaration {
	return &tool.Declaration{
		Name: DelegateToolName,
		Description: "Assign a subtask to one worker agent. Call once per delegation. " +
			"Respond with plain text instead to answer the user directly.",
		InputSchema: &tool.Schema{
			Type:     "object",
			Required: []string{"worker", "task"},
			Properties: map[string]*tool.Schema{
				"worker": {
					Type:        "string",
					Description: "Name of the worker agent to delegate to.",
					Enum:        workerNames,
				},
				"task": {
					Type:        "string",
					Description: "Description of the subtask.",
				},
			},
		},
	}
}

// supervisorNode invokes the supervisor's model with the bounded
// history and the forced routing tool, and parses the response into a
// direct answer or an ordered delegation list.
type supervisorNode struct {
	agent   *crew.Agent
	m       model.Model
	workers []*crew.Agent
}

func (n *supervisorNode) execute(ctx context.Context, history []model.Message) (*StepResult, error) {
	names := make([]string, len(n.workers))
	for i, w := range n.workers {
		names[i] = w.Name
	}

	instructions := n.agent.Instructions
	if len(names) > 0 {
		instructions += fmt.Sprintf(
			"\n\nYou coordinate these worker agents: %s. "+
				"Use the %s tool to assign subtasks, or answer the user directly in plain text.",
			strings.Join(names, ", "), DelegateToolName)
	}

	req := &model.Request{
		Instructions: instructions,
		Messages:     history,
		Tools: map[string]*tool.Declaration{
			DelegateToolName: delegateDeclaration(names),
		},
	}
	resp, err := n.m.GenerateContent(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("supervisor model invocation failed: %w", err)
	}

	if len(resp.ToolCalls) == 0 {
		// Direct answer; the graph transitions to terminated.
		return &StepResult{
			Messages: []model.Message{model.NewAgentMessage(n.agent.ID, resp.Content)},
			Terminal: true,
			Output:   resp.Content,
		}, nil
	}

	delegations := make([]Delegation, 0, len(resp.ToolCalls))
	for _, call := range resp.ToolCalls {
		if call.Name != DelegateToolName {
			return nil, fmt.Errorf("supervisor called unknown tool %q", call.Name)
		}
		var d Delegation
		if err := json.Unmarshal(call.Arguments, &d); err != nil {
			return nil, fmt.Errorf("malformed delegation arguments: %w", err)
		}
		delegations = append(delegations, d)
	}

	passMsg := resp.Content
	if passMsg == "" {
		parts := make([]string, len(delegations))
		for i, d := range delegations {
			parts[i] = fmt.Sprintf("%s: %s", d.Worker, d.Task)
		}
		passMsg = "Delegating: " + strings.Join(parts, "; ")
	}
	return &StepResult{
		Messages:    []model.Message{model.NewAgentMessage(n.agent.ID, passMsg)},
		Delegations: delegations,
	}, nil
}

// workerNode executes one delegated task: it invokes the worker's model
// with the task and the tools from its catalog, runs the bounded
// tool-call loop, and produces one result message attributed to the
// worker.
type workerNode struct {
	agent        *crew.Agent
	m            model.Model
	supervisorID string
	task         string
	declarations map[string]*tool.Declaration
	callables    map[string]tool.CallableTool
	maxToolIters int
}

func (n *workerNode) execute(ctx context.Context, history []model.Message) (*StepResult, error) {
	msgs := make([]model.Message, 0, len(history)+1)
	msgs = append(msgs, history...)
	msgs = append(msgs, model.NewAgentMessage(n.supervisorID, "Task: "+n.task))

	req := &model.Request{
		Instructions: n.agent.Instructions,
		Messages:     msgs,
		Tools:        n.declarations,
	}

	for iter := 0; iter <= n.maxToolIters; iter++ {
		resp, err := n.m.GenerateContent(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("worker model invocation failed: %w", err)
		}
		if len(resp.ToolCalls) == 0 {
			return &StepResult{
				Messages: []model.Message{model.NewAgentMessage(n.agent.ID, resp.Content)},
			}, nil
		}
		for _, call := range resp.ToolCalls {
			req.Messages = append(req.Messages, n.invokeTool(ctx, call))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
		}
	}

	// Tool budget exhausted without a textual result.
	log.Warnf("worker %s hit the tool-call iteration cap (%d)", n.agent.ID, n.maxToolIters)
	return &StepResult{
		Messages: []model.Message{model.NewAgentMessage(n.agent.ID,
			fmt.Sprintf("Stopped after %d tool-call rounds without a final answer.", n.maxToolIters))},
	}, nil
}

// invokeTool runs one tool call and renders its outcome as a tool
// message for the next model round. Failures surface as message
// content, never as node errors: the wrapper already folded retry
// exhaustion into a structured payload.
func (n *workerNode) invokeTool(ctx context.Context, call model.ToolCall) model.Message {
	callable, ok := n.callables[call.Name]
	if !ok {
		return model.NewToolMessage(call.ID, fmt.Sprintf("no tool named %q is available", call.Name))
	}
	result, err := callable.Call(ctx, call.Arguments)
	if err != nil {
		return model.NewToolMessage(call.ID, fmt.Sprintf("tool %s failed: %v", call.Name, err))
	}
	return model.NewToolMessage(call.ID, renderToolResult(result))
}

// renderToolResult flattens a tool result value to message content.
func renderToolResult(result any) string {
	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
