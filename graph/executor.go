//
// Tencent is pleased to support the open source community by making trpc-crew-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crew-go is licensed under the Apache License Version 2.0.
//
//

// Package graph drives a crew execution: a state machine alternating
// supervisor routing passes and concurrent worker fan-outs over a
// shared, executor-owned message history, with deterministic
// termination by direct answer or depth limit.
package graph

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"trpc.group/trpc-go/trpc-crew-go/catalog"
	"trpc.group/trpc-go/trpc-crew-go/crew"
	"trpc.group/trpc-go/trpc-crew-go/log"
	"trpc.group/trpc-go/trpc-crew-go/model"
	"trpc.group/trpc-go/trpc-crew-go/summary"
	"trpc.group/trpc-go/trpc-crew-go/telemetry"
	"trpc.group/trpc-go/trpc-crew-go/tool"
	"trpc.group/trpc-go/trpc-crew-go/tool/retry"
)

// Defaults for executor configuration.
const (
	DefaultMaxDepth          = 10
	DefaultMaxKeep           = summary.DefaultMaxKeep
	DefaultMaxToolIterations = 8
	defaultPoolSize          = 8
)

// forcedTerminationNotice is the fallback output when the depth limit
// fires before any supervisor message exists.
const forcedTerminationNotice = "The crew reached its pass limit before producing an answer."

// Metrics describes one finished execution.
type Metrics struct {
	// Elapsed is the wall time of the execution.
	Elapsed time.Duration `json:"elapsed"`
	// WorkersInvoked is the sorted set of worker agent IDs that ran.
	WorkersInvoked []string `json:"workers_invoked"`
	// Depth is the number of completed supervisor passes.
	Depth int `json:"depth"`
	// Forced is true when the depth limit terminated the execution
	// instead of a supervisor direct answer.
	Forced bool `json:"forced_termination"`
}

// Result is the outcome of one execution: the final output, the full
// message trace for the caller to persist, and metrics.
type Result struct {
	ConversationID string          `json:"conversation_id"`
	Output         string          `json:"output_text"`
	Trace          []model.Message `json:"message_trace"`
	Metrics        Metrics         `json:"metrics"`
}

// Executor runs a crew to completion. It is safe for concurrent use;
// each Execute call owns its transient state exclusively.
type Executor struct {
	crew    *crew.Crew
	roster  *crew.Roster
	tools   []*crew.Tool
	servers []*crew.ToolServer

	lookup       func(string) (model.Model, bool)
	builder      *catalog.Builder
	maxDepth     int
	maxKeep      int
	maxToolIters int
	retryPolicy  retry.Policy
	clock        retry.Clock
	poolSize     int

	passCounter metric.Int64Counter
	execCounter metric.Int64Counter
}

// Option configures an Executor.
type Option func(*Executor)

// WithTools supplies the statically assigned tool records.
func WithTools(tools []*crew.Tool) Option {
	return func(e *Executor) { e.tools = tools }
}

// WithServers supplies the tool servers visible to the crew.
func WithServers(servers []*crew.ToolServer) Option {
	return func(e *Executor) { e.servers = servers }
}

// WithMaxDepth caps the number of supervisor passes.
func WithMaxDepth(d int) Option {
	return func(e *Executor) {
		if d > 0 {
			e.maxDepth = d
		}
	}
}

// WithMaxKeep bounds the history passed into model calls.
func WithMaxKeep(k int) Option {
	return func(e *Executor) {
		if k > 0 {
			e.maxKeep = k
		}
	}
}

// WithMaxToolIterations caps the tool-call rounds of one worker
// invocation.
func WithMaxToolIterations(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxToolIters = n
		}
	}
}

// WithRetryPolicy sets the policy applied to every tool call.
func WithRetryPolicy(p retry.Policy) Option {
	return func(e *Executor) { e.retryPolicy = p }
}

// WithClock injects the clock used for retry backoff waits.
func WithClock(c retry.Clock) Option {
	return func(e *Executor) { e.clock = c }
}

// WithModelLookup overrides how model identifiers resolve, defaulting
// to the process-wide model registry.
func WithModelLookup(f func(string) (model.Model, bool)) Option {
	return func(e *Executor) { e.lookup = f }
}

// WithCatalogBuilder overrides the tool catalog builder.
func WithCatalogBuilder(b *catalog.Builder) Option {
	return func(e *Executor) { e.builder = b }
}

// WithPoolSize bounds the goroutine pool used for worker fan-out.
func WithPoolSize(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.poolSize = n
		}
	}
}

// NewExecutor creates an executor for the given crew and roster.
func NewExecutor(c *crew.Crew, roster *crew.Roster, opts ...Option) *Executor {
	e := &Executor{
		crew:         c,
		roster:       roster,
		lookup:       model.Lookup,
		builder:      catalog.NewBuilder(),
		maxDepth:     DefaultMaxDepth,
		maxKeep:      DefaultMaxKeep,
		maxToolIters: DefaultMaxToolIterations,
		retryPolicy:  retry.DefaultPolicy(),
		clock:        retry.SystemClock(),
		poolSize:     defaultPoolSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.execCounter, _ = telemetry.Meter.Int64Counter("crew.executions")
	e.passCounter, _ = telemetry.Meter.Int64Counter("crew.supervisor.passes")
	return e
}

// Execute runs the crew against the user prompt. Only a SetupError (or
// context cancellation) aborts the call; tool failures, routing errors
// and worker failures are absorbed into the message trace so later
// passes can self-correct.
func (e *Executor) Execute(ctx context.Context, userText string) (*Result, error) {
	start := time.Now()
	ctx, span := telemetry.Tracer.Start(ctx, "execute_crew")
	defer span.End()

	if userText == "" {
		return nil, &SetupError{Err: ErrEmptyPrompt}
	}
	if err := e.crew.Validate(e.roster); err != nil {
		return nil, &SetupError{Err: err}
	}
	sup, workers, err := e.resolveAgents()
	if err != nil {
		return nil, &SetupError{Err: err}
	}

	pool, err := ants.NewPool(e.poolSize)
	if err != nil {
		return nil, &SetupError{Err: fmt.Errorf("failed to create worker pool: %w", err)}
	}
	defer pool.Release()

	st := newState(userText)
	span.SetAttributes(
		attribute.String("trpc.crew.crew_id", e.crew.ID),
		attribute.String("trpc.crew.conversation_id", st.ConversationID),
	)
	e.execCounter.Add(ctx, 1)
	log.Infof("executing crew %s (conversation %s)", e.crew.ID, st.ConversationID)

	invoked := make(map[string]struct{})
	forced := false

	for {
		bounded := summary.Summarize(st.Messages, e.maxKeep)
		res, supErr := e.runSupervisorPass(ctx, sup, bounded)
		e.passCounter.Add(ctx, 1)
		if supErr != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Absorbed: the next pass sees the failure and the depth
			// limit still guarantees termination.
			log.Errorf("supervisor pass failed: %v", supErr)
			st.append(model.NewToolErrorMessage(sup.agent.ID, supErr.Error()))
			st.Depth++
			if st.Depth >= e.maxDepth {
				forced = true
				break
			}
			continue
		}

		st.append(res.Messages...)
		if res.Terminal {
			st.Terminal = true
			st.Output = res.Output
			st.Depth++
			break
		}

		results := e.fanOut(ctx, pool, sup, workers, res.Delegations, st, invoked)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		st.append(results...)
		st.Depth++

		// The depth limit caps supervisor passes: checked after the
		// merge, before the next routing pass.
		if st.Depth >= e.maxDepth {
			forced = true
			break
		}
	}

	if forced {
		st.Terminal = true
		if out, ok := st.lastAgentMessage(sup.agent.ID); ok {
			st.Output = out
		} else {
			st.Output = forcedTerminationNotice
		}
		log.Warnf("crew %s force-terminated at depth %d", e.crew.ID, st.Depth)
	}

	return &Result{
		ConversationID: st.ConversationID,
		Output:         st.Output,
		Trace:          st.Messages,
		Metrics: Metrics{
			Elapsed:        time.Since(start),
			WorkersInvoked: sortedKeys(invoked),
			Depth:          st.Depth,
			Forced:         forced,
		},
	}, nil
}

// resolveAgents resolves the supervisor and member records plus their
// models, failing fast before the loop starts.
func (e *Executor) resolveAgents() (*supervisorNode, map[string]*crew.Agent, error) {
	supAgent, _ := e.roster.Agent(e.crew.SupervisorID)
	supModel, ok := e.lookup(supAgent.ModelID)
	if !ok {
		return nil, nil, fmt.Errorf("supervisor %s model %q: %w", supAgent.ID, supAgent.ModelID, ErrModelNotFound)
	}

	members := make([]*crew.Agent, 0, len(e.crew.MemberIDs))
	byKey := make(map[string]*crew.Agent, len(e.crew.MemberIDs)*2)
	for _, id := range e.crew.MemberIDs {
		ag, _ := e.roster.Agent(id)
		if _, ok := e.lookup(ag.ModelID); !ok {
			return nil, nil, fmt.Errorf("worker %s model %q: %w", ag.ID, ag.ModelID, ErrModelNotFound)
		}
		members = append(members, ag)
		byKey[ag.ID] = ag
		if ag.Name != "" {
			byKey[ag.Name] = ag
		}
	}

	return &supervisorNode{agent: supAgent, m: supModel, workers: members}, byKey, nil
}

// runSupervisorPass executes the supervisor node against the bounded
// history snapshot.
func (e *Executor) runSupervisorPass(ctx context.Context, sup *supervisorNode, bounded []model.Message) (*StepResult, error) {
	ctx, span := telemetry.Tracer.Start(ctx, "supervisor_pass")
	defer span.End()
	return sup.execute(ctx, bounded)
}

// fanOut runs the pass's delegations concurrently and returns their
// result messages in delegation order, regardless of completion order.
// A delegation naming an unknown worker yields a routing-error message
// in its slot; a failed worker yields an error-content message.
func (e *Executor) fanOut(
	ctx context.Context,
	pool *ants.Pool,
	sup *supervisorNode,
	workers map[string]*crew.Agent,
	delegations []Delegation,
	st *State,
	invoked map[string]struct{},
) []model.Message {
	// Workers see the history as of the end of the routing pass.
	snapshot := summary.Summarize(st.Messages, e.maxKeep)

	results := make([]model.Message, len(delegations))
	var wg sync.WaitGroup
	for i, d := range delegations {
		ag, ok := workers[d.Worker]
		if !ok {
			rerr := &RoutingError{Worker: d.Worker}
			log.Warnf("crew %s: %v", e.crew.ID, rerr)
			results[i] = model.NewToolErrorMessage(sup.agent.ID, rerr.Error())
			continue
		}
		invoked[ag.ID] = struct{}{}

		idx, task, agent := i, d.Task, ag
		run := func() {
			defer wg.Done()
			results[idx] = e.runWorker(ctx, sup.agent.ID, agent, task, snapshot)
		}
		wg.Add(1)
		if err := pool.Submit(run); err != nil {
			// Pool saturated or released; run inline rather than drop
			// the delegation.
			run()
		}
	}
	wg.Wait()
	return results
}

// runWorker builds one worker node, including its tool catalog, and
// executes it against the snapshot.
func (e *Executor) runWorker(
	ctx context.Context,
	supervisorID string,
	ag *crew.Agent,
	task string,
	snapshot []model.Message,
) model.Message {
	ctx, span := telemetry.Tracer.Start(ctx, "worker_execute")
	span.SetAttributes(attribute.String("trpc.crew.agent_id", ag.ID))
	defer span.End()

	m, _ := e.lookup(ag.ModelID) // resolved during setup

	cat := e.builder.BuildForAgent(ctx, ag, e.tools, e.servers)
	for _, f := range cat.Failures() {
		log.Warnf("worker %s: tool server %s skipped: %v", ag.ID, f.URL, f.Err)
	}
	declarations := make(map[string]*tool.Declaration, cat.Len())
	callables := make(map[string]tool.CallableTool, cat.Len())
	for _, t := range cat.Tools() {
		decl := t.Declaration()
		declarations[decl.Name] = decl
		callables[decl.Name] = retry.Wrap(t,
			retry.WithPolicy(e.retryPolicy), retry.WithClock(e.clock))
	}

	w := &workerNode{
		agent:        ag,
		m:            m,
		supervisorID: supervisorID,
		task:         task,
		declarations: declarations,
		callables:    callables,
		maxToolIters: e.maxToolIters,
	}
	res, err := w.execute(ctx, snapshot)
	if err != nil {
		log.Errorf("worker %s failed: %v", ag.ID, err)
		return model.NewToolErrorMessage(ag.ID, err.Error())
	}
	return res.Messages[0]
}

// sortedKeys returns the map keys in sorted order.
func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
