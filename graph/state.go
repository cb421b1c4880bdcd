package graph

import (
	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-crew-go/model"
)

// State is the transient execution state of one crew run. It is created
// when Execute is called, exclusively owned by the executor, and
// destroyed when the call returns. Nodes receive history snapshots and
// return values; they never hold a handle into the live state.
type State struct {
	// ConversationID identifies this execution for the caller's
	// persistence layer.
	ConversationID string
	// Messages is the shared history, append-only within one
	// execution apart from the summarization rewrite between passes.
	Messages []model.Message
	// Depth counts completed supervisor passes.
	Depth int
	// Terminal is set once, either by a supervisor direct answer or by
	// depth-limit exhaustion.
	Terminal bool
	// Output is the final answer once Terminal is set.
	Output string
}

// newState builds the initial state: a fresh conversation ID and a
// history holding the single user prompt.
func newState(userText string) *State {
	return &State{
		ConversationID: uuid.NewString(),
		Messages:       []model.Message{model.NewUserMessage(userText)},
	}
}

// append adds messages to the shared history.
func (s *State) append(msgs ...model.Message) {
	s.Messages = append(s.Messages, msgs...)
}

// lastAgentMessage returns the content of the most recent message
// authored by the given agent, used as the best available output on
// forced termination.
func (s *State) lastAgentMessage(agentID string) (string, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		m := s.Messages[i]
		if m.Role == model.RoleAgent && m.Author == agentID {
			return m.Content, true
		}
	}
	return "", false
}
