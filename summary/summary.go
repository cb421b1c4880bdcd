//
// Tencent is pleased to support the open source community by making trpc-crew-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-crew-go is licensed under the Apache License Version 2.0.
//
//

// Package summary bounds the message history passed into model calls.
// The policy is deterministic and purely positional: the original user
// query and the most recent messages survive verbatim, everything
// between collapses into one synthetic notice.
package summary

import (
	"fmt"

	"trpc.group/trpc-go/trpc-crew-go/model"
)

// DefaultMaxKeep is the number of trailing messages retained when no
// limit is configured.
const DefaultMaxKeep = 20

// Summarize returns a bounded copy of messages. When len(messages) is
// within maxKeep it returns the input unchanged. Otherwise the result
// is messages[0], one synthetic system message stating how many
// messages were dropped, and the last maxKeep messages verbatim. The
// dropped range is contiguous and starts immediately after index 0.
func Summarize(messages []model.Message, maxKeep int) []model.Message {
	if maxKeep < 1 {
		maxKeep = DefaultMaxKeep
	}
	if len(messages) <= maxKeep {
		return messages
	}

	dropped := len(messages) - maxKeep - 1
	out := make([]model.Message, 0, maxKeep+2)
	out = append(out, messages[0])
	out = append(out, model.NewSystemMessage(
		fmt.Sprintf("[conversation summarized: %d earlier message(s) omitted]", dropped)))
	out = append(out, messages[len(messages)-maxKeep:]...)
	return out
}
