package domain

import "time"

// Status classifies the result of one completion pass.
type Status int

// Completion outcome statuses.
const (
	StatusOK Status = iota
	StatusTooLong
	StatusInvalidRequest
	StatusRateLimited
	StatusError
)

// String returns the status name for logs and metrics labels.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusTooLong:
		return "too_long"
	case StatusInvalidRequest:
		return "invalid_request"
	case StatusRateLimited:
		return "rate_limited"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is the typed result of one orchestration pass, consumed by the
// reply dispatcher. ReplyText is set only for StatusOK; Detail carries a
// human-readable reason for the other statuses. RetryAfter is a throttling
// hint, set only for StatusRateLimited when the provider supplied one.
type Outcome struct {
	Status     Status
	ReplyText  string
	Detail     string
	RetryAfter time.Duration
}

// OK builds a successful outcome.
func OK(reply string) Outcome {
	return Outcome{Status: StatusOK, ReplyText: reply}
}
