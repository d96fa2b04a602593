package httpapi

import (
	"context"

	"go.uber.org/zap"

	"github.com/prof-ramos/sherlock/internal/domain"
)

// LogDispatcher is the default in-process reply dispatcher: successful
// replies are appended to the conversation log as assistant turns so
// follow-up requests see them. Non-ok outcomes are logged and dropped;
// there is nothing to append for them.
type LogDispatcher struct {
	log         *ConversationLog
	personaName string
	logger      *zap.Logger
}

// NewLogDispatcher creates a dispatcher writing into the conversation log.
func NewLogDispatcher(log *ConversationLog, personaName string, logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{log: log, personaName: personaName, logger: logger}
}

// Dispatch implements ReplyDispatcher.
func (d *LogDispatcher) Dispatch(_ context.Context, conversationID string, outcome domain.Outcome) error {
	if outcome.Status != domain.StatusOK {
		d.logger.Info("Completion finished without a reply",
			zap.String("conversation_id", conversationID),
			zap.String("status", outcome.Status.String()),
			zap.String("detail", outcome.Detail),
		)
		return nil
	}

	d.log.Append(conversationID, domain.Turn{
		Role:   domain.RoleAssistant,
		Author: d.personaName,
		Text:   outcome.ReplyText,
	})
	return nil
}
