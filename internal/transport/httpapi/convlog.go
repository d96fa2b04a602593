package httpapi

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/prof-ramos/sherlock/internal/domain"
	"github.com/prof-ramos/sherlock/internal/usecase/staleness"
)

// maxTurnsPerConversation bounds per-conversation memory. Older turns fall
// off; the pipeline only ever looks at a trailing window anyway.
const maxTurnsPerConversation = 50

// loggedMessage is one stored conversation entry.
type loggedMessage struct {
	id   string
	turn domain.Turn
}

// ConversationLog is the in-process conversation store backing the gateway:
// it records inbound messages and dispatched replies, serves snapshots to
// the orchestrator, and answers latest-message queries for the staleness
// protocol.
type ConversationLog struct {
	mu            sync.Mutex
	conversations map[string][]loggedMessage
}

// NewConversationLog creates an empty conversation log.
func NewConversationLog() *ConversationLog {
	return &ConversationLog{conversations: make(map[string][]loggedMessage)}
}

// Append records a turn and returns its assigned message id.
func (l *ConversationLog) Append(conversationID string, turn domain.Turn) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := uuid.NewString()
	msgs := append(l.conversations[conversationID], loggedMessage{id: id, turn: turn})
	if len(msgs) > maxTurnsPerConversation {
		msgs = msgs[len(msgs)-maxTurnsPerConversation:]
	}
	l.conversations[conversationID] = msgs
	return id
}

// Snapshot captures the conversation's current turns.
func (l *ConversationLog) Snapshot(conversationID string) domain.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	msgs := l.conversations[conversationID]
	turns := make([]domain.Turn, len(msgs))
	for i, m := range msgs {
		turns[i] = m.turn
	}
	return domain.Snapshot{ConversationID: conversationID, Turns: turns}
}

// LatestMessage implements staleness.ConversationSource.
func (l *ConversationLog) LatestMessage(_ context.Context, conversationID string) (staleness.Message, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msgs := l.conversations[conversationID]
	if len(msgs) == 0 {
		return staleness.Message{}, false, nil
	}
	last := msgs[len(msgs)-1]
	return staleness.Message{ID: last.id, Role: last.turn.Role}, true, nil
}
