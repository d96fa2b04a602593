package domain

import "strings"

// Role identifies the author side of a conversation turn.
type Role string

// Conversation roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message in a conversation.
type Turn struct {
	Role   Role
	Author string
	Text   string
}

// Render formats a turn as "author: text" for fingerprinting and prompt examples.
func (t Turn) Render() string {
	var b strings.Builder
	b.WriteString(t.Author)
	b.WriteString(":")
	if t.Text != "" {
		b.WriteString(" ")
		b.WriteString(t.Text)
	}
	return b.String()
}

// Snapshot is the ordered sequence of recent turns for one conversation,
// captured at the moment a request starts processing. It is the source of
// both the cache fingerprint and the retrieval query.
type Snapshot struct {
	ConversationID string
	Turns          []Turn
}

// LastUserTurn returns the most recent user turn, scanning from the end.
func (s Snapshot) LastUserTurn() (Turn, bool) {
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].Role == RoleUser {
			return s.Turns[i], true
		}
	}
	return Turn{}, false
}

// Window returns up to the last n turns.
func (s Snapshot) Window(n int) []Turn {
	if n <= 0 || len(s.Turns) <= n {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-n:]
}
