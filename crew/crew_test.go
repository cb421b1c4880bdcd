//
// Tencent is pleased to support the open source community by making trpc-crew-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crew-go is licensed under the Apache License Version 2.0.
//
//

package crew

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testRoster() *Roster {
	return NewRoster(
		&Agent{ID: "sup-1", Name: "coordinator", Role: RoleSupervisor, ModelID: "m1"},
		&Agent{ID: "wrk-1", Name: "researcher", Role: RoleWorker, ModelID: "m1"},
		&Agent{ID: "wrk-2", Name: "writer", Role: RoleWorker, ModelID: "m1"},
	)
}

func TestCrew_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		crew    Crew
		wantErr error
	}{
		{
			name: "valid crew",
			crew: Crew{ID: "c1", SupervisorID: "sup-1", MemberIDs: []string{"wrk-1", "wrk-2"}},
		},
		{
			name: "valid crew without members",
			crew: Crew{ID: "c1", SupervisorID: "sup-1"},
		},
		{
			name:    "missing supervisor reference",
			crew:    Crew{ID: "c1", MemberIDs: []string{"wrk-1"}},
			wantErr: ErrNoSupervisor,
		},
		{
			name:    "supervisor not in roster",
			crew:    Crew{ID: "c1", SupervisorID: "ghost", MemberIDs: []string{"wrk-1"}},
			wantErr: ErrUnknownAgent,
		},
		{
			name:    "worker in supervisor position",
			crew:    Crew{ID: "c1", SupervisorID: "wrk-1"},
			wantErr: ErrRoleMismatch,
		},
		{
			name:    "member not in roster",
			crew:    Crew{ID: "c1", SupervisorID: "sup-1", MemberIDs: []string{"ghost"}},
			wantErr: ErrUnknownAgent,
		},
		{
			name:    "supervisor in member position",
			crew:    Crew{ID: "c1", SupervisorID: "sup-1", MemberIDs: []string{"sup-1"}},
			wantErr: ErrRoleMismatch,
		},
	}

	roster := testRoster()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.crew.Validate(roster)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRole_IsValid(t *testing.T) {
	t.Parallel()

	require.True(t, RoleSupervisor.IsValid())
	require.True(t, RoleWorker.IsValid())
	require.False(t, Role("manager").IsValid())
	require.False(t, Role("").IsValid())
}

func TestNewRoster(t *testing.T) {
	t.Parallel()

	a1 := &Agent{ID: "a1", Name: "first"}
	a2 := &Agent{ID: "a1", Name: "second"}
	r := NewRoster(a1, nil, &Agent{Name: "no id"}, a2)

	got, ok := r.Agent("a1")
	require.True(t, ok)
	require.Equal(t, "second", got.Name, "later records win on duplicate IDs")

	_, ok = r.Agent("")
	require.False(t, ok)
}
