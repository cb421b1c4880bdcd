//
// Tencent is pleased to support the open source community by making trpc-crew-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crew-go is licensed under the Apache License Version 2.0.
//
//

// Package crew defines the entity records consumed by the orchestration
// engine: crews, agents, tools and tool servers. The engine treats these
// as read-only input; persistence and CRUD belong to the service layer.
package crew

import (
	"errors"
	"fmt"
)

// Validation errors.
var (
	ErrNoSupervisor    = errors.New("crew has no supervisor agent")
	ErrUnknownAgent    = errors.New("crew references an unknown agent")
	ErrRoleMismatch    = errors.New("agent role does not match its crew position")
	ErrUnknownServer   = errors.New("tool references an unknown tool server")
	ErrInvalidRole     = errors.New("invalid agent role")
	ErrEmptyMemberList = errors.New("crew has no member agents")
)

// Role is the closed set of positions an agent can hold in a crew.
type Role string

const (
	// RoleSupervisor marks the agent responsible for delegation and
	// final synthesis. Exactly one per crew.
	RoleSupervisor Role = "supervisor"
	// RoleWorker marks an agent performing delegated subtasks.
	RoleWorker Role = "worker"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the role is one of the defined constants.
func (r Role) IsValid() bool {
	switch r {
	case RoleSupervisor, RoleWorker:
		return true
	default:
		return false
	}
}

// Crew is a named collection of agents with exactly one supervisor.
// Immutable for the duration of one execution.
type Crew struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	SupervisorID string   `json:"supervisor_agent_id"`
	MemberIDs    []string `json:"member_agent_ids"`
}

// Agent is one member of a crew.
type Agent struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Role         Role     `json:"role"`
	Instructions string   `json:"system_instructions"`
	ModelID      string   `json:"model_identifier"`
	ToolIDs      []string `json:"assigned_tool_ids,omitempty"`
	CrewID       string   `json:"crew_id,omitempty"`
}

// Tool is a statically assigned tool record. Name is the identifier
// agents and the catalog use; APIName is the name on the wire of the
// owning server.
type Tool struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	APIName     string `json:"api_name"`
	Description string `json:"description,omitempty"`
	ServerID    string `json:"owning_server_id"`
}

// ToolServer is an external service exposing discoverable tools over
// the MCP wire protocol.
type ToolServer struct {
	ID  string `json:"id"`
	URL string `json:"base_url"`
}

// Roster resolves agent records referenced by a crew.
type Roster struct {
	agents map[string]*Agent
}

// NewRoster creates a roster from the given agent records.
// Later records win on duplicate IDs.
func NewRoster(agents ...*Agent) *Roster {
	r := &Roster{agents: make(map[string]*Agent, len(agents))}
	for _, a := range agents {
		if a == nil || a.ID == "" {
			continue
		}
		r.agents[a.ID] = a
	}
	return r
}

// Agent returns the agent record with the given ID.
func (r *Roster) Agent(id string) (*Agent, bool) {
	a, ok := r.agents[id]
	return a, ok
}

// Validate checks that the crew record is executable against the
// roster: the supervisor reference resolves to a supervisor-role agent
// and every member reference resolves to a worker-role agent.
func (c *Crew) Validate(roster *Roster) error {
	if c.SupervisorID == "" {
		return fmt.Errorf("crew %s: %w", c.ID, ErrNoSupervisor)
	}
	sup, ok := roster.Agent(c.SupervisorID)
	if !ok {
		return fmt.Errorf("crew %s: supervisor %s: %w", c.ID, c.SupervisorID, ErrUnknownAgent)
	}
	if sup.Role != RoleSupervisor {
		return fmt.Errorf("crew %s: agent %s has role %q: %w", c.ID, sup.ID, sup.Role, ErrRoleMismatch)
	}
	for _, id := range c.MemberIDs {
		member, ok := roster.Agent(id)
		if !ok {
			return fmt.Errorf("crew %s: member %s: %w", c.ID, id, ErrUnknownAgent)
		}
		if member.Role != RoleWorker {
			return fmt.Errorf("crew %s: agent %s has role %q: %w", c.ID, member.ID, member.Role, ErrRoleMismatch)
		}
	}
	return nil
}
