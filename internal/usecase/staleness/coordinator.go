package staleness

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/prof-ramos/sherlock/internal/domain"
	"github.com/prof-ramos/sherlock/internal/metrics"
)

// Gate stages, used as the metrics label for dropped work.
const (
	StageDebounce = "debounce"
	StageDelivery = "delivery"
)

// Message is the minimal view of a conversation's newest entry.
type Message struct {
	ID   string
	Role domain.Role
}

// ConversationSource reports the newest message of a conversation. The
// second return is false when the conversation has no messages.
type ConversationSource interface {
	LatestMessage(ctx context.Context, conversationID string) (Message, bool, error)
}

// Coordinator batches rapid-fire messages and drops work made stale by
// newer user input. A request waits out the debounce window, then checks
// whether its anchor message is still the newest one; the same check runs
// again right before the reply is delivered. Source failures fail open:
// answering a possibly-stale message beats answering nothing.
type Coordinator struct {
	source ConversationSource
	window time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
	logger *zap.Logger
}

// Option customizes coordinator construction.
type Option func(*Coordinator)

// WithSleeper injects the wait primitive for tests.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Coordinator) { c.sleep = sleep }
}

// New creates a coordinator with the given debounce window.
func New(source ConversationSource, window time.Duration, logger *zap.Logger, opts ...Option) *Coordinator {
	if window <= 0 {
		window = 3 * time.Second
	}
	c := &Coordinator{
		source: source,
		window: window,
		sleep:  sleepCtx,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AwaitBatchWindow blocks for the debounce window so rapid-fire messages
// collapse into one completion. Returns early with the context's error if
// the context is cancelled.
func (c *Coordinator) AwaitBatchWindow(ctx context.Context) error {
	return c.sleep(ctx, c.window)
}

// ShouldProceed reports whether work anchored on anchorID is still worth
// finishing. It is stale when a newer user message has arrived; a newer
// self-authored (assistant) message does not invalidate it.
func (c *Coordinator) ShouldProceed(ctx context.Context, conversationID, anchorID, stage string) bool {
	latest, ok, err := c.source.LatestMessage(ctx, conversationID)
	if err != nil {
		c.logger.Warn("Staleness check failed, proceeding",
			zap.String("conversation_id", conversationID), zap.Error(err))
		return true
	}
	if !ok || latest.ID == anchorID {
		return true
	}
	if latest.Role == domain.RoleAssistant {
		return true
	}

	metrics.StalenessDropsTotal.WithLabelValues(stage).Inc()
	c.logger.Debug("Dropping stale work",
		zap.String("conversation_id", conversationID),
		zap.String("anchor_id", anchorID),
		zap.String("latest_id", latest.ID),
		zap.String("stage", stage),
	)
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
