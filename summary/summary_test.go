//
// Tencent is pleased to support the open source community by making trpc-crew-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crew-go is licensed under the Apache License Version 2.0.
//
//

package summary

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-crew-go/model"
)

func makeMessages(n int) []model.Message {
	if n == 0 {
		return nil
	}
	msgs := make([]model.Message, 0, n)
	msgs = append(msgs, model.NewUserMessage("original question"))
	for i := 1; i < n; i++ {
		msgs = append(msgs, model.NewAgentMessage("agent-1", fmt.Sprintf("message %d", i)))
	}
	return msgs
}

func TestSummarize_WithinLimitIsIdentity(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 5, 10} {
		msgs := makeMessages(n)
		got := Summarize(msgs, 10)
		require.Len(t, got, n)
		for i := range msgs {
			require.Equal(t, msgs[i], got[i], "message %d changed", i)
		}
	}
}

func TestSummarize_OverLimitShape(t *testing.T) {
	t.Parallel()

	const maxKeep = 5
	msgs := makeMessages(12)
	got := Summarize(msgs, maxKeep)

	// First message survives verbatim, one notice, then the tail.
	require.Len(t, got, maxKeep+2)
	require.Equal(t, msgs[0], got[0])
	require.Equal(t, model.RoleSystem, got[1].Role)
	require.Contains(t, got[1].Content, "6 earlier message(s) omitted")
	require.Equal(t, msgs[len(msgs)-maxKeep:], got[2:])
}

func TestSummarize_BoundaryOneOver(t *testing.T) {
	t.Parallel()

	// One message over the limit: nothing is dropped, but the notice
	// still appears so the shape is uniform.
	const maxKeep = 4
	msgs := makeMessages(maxKeep + 1)
	got := Summarize(msgs, maxKeep)

	require.Len(t, got, maxKeep+2)
	require.Equal(t, msgs[0], got[0])
	require.Equal(t, model.RoleSystem, got[1].Role)
	require.Contains(t, got[1].Content, "0 earlier message(s) omitted")
	require.Equal(t, msgs[1:], got[2:])
}

func TestSummarize_InvalidLimitFallsBackToDefault(t *testing.T) {
	t.Parallel()

	msgs := makeMessages(DefaultMaxKeep)
	require.Equal(t, msgs, Summarize(msgs, 0))
	require.Equal(t, msgs, Summarize(msgs, -3))

	over := makeMessages(DefaultMaxKeep + 5)
	got := Summarize(over, 0)
	require.Len(t, got, DefaultMaxKeep+2)
}

func TestSummarize_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	msgs := makeMessages(10)
	snapshot := make([]model.Message, len(msgs))
	copy(snapshot, msgs)

	_ = Summarize(msgs, 3)
	require.Equal(t, snapshot, msgs)
}
