package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/prof-ramos/sherlock/internal/domain"
	"github.com/prof-ramos/sherlock/internal/usecase/health"
	"github.com/prof-ramos/sherlock/internal/usecase/respcache"
	"github.com/prof-ramos/sherlock/internal/usecase/staleness"
)

// completer runs one completion pass for a conversation snapshot.
type completer interface {
	Complete(ctx context.Context, snapshot domain.Snapshot) domain.Outcome
}

// coordinator gates work against the debounce window and staleness checks.
type coordinator interface {
	AwaitBatchWindow(ctx context.Context) error
	ShouldProceed(ctx context.Context, conversationID, anchorID, stage string) bool
}

// cacheStatser exposes response cache counters.
type cacheStatser interface {
	Stats() respcache.Stats
}

// ReplyDispatcher delivers a finished outcome to the conversation surface.
type ReplyDispatcher interface {
	Dispatch(ctx context.Context, conversationID string, outcome domain.Outcome) error
}

// Server is the HTTP gateway: it accepts inbound conversation messages,
// runs them through the debounce/staleness/completion pipeline, and serves
// operational endpoints.
type Server struct {
	completer   completer
	coordinator coordinator
	cache       cacheStatser
	dispatcher  ReplyDispatcher
	log         *ConversationLog
	health      *health.Service
	logger      *zap.Logger
}

// NewServer creates the gateway server.
func NewServer(
	c completer,
	coord coordinator,
	cache cacheStatser,
	dispatcher ReplyDispatcher,
	log *ConversationLog,
	healthSvc *health.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		completer:   c,
		coordinator: coord,
		cache:       cache,
		dispatcher:  dispatcher,
		log:         log,
		health:      healthSvc,
		logger:      logger,
	}
}

// Routes registers the server's endpoints on a router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/conversations/{conversationID}/messages", s.handleMessage)
	r.Get("/v1/cache/stats", s.handleCacheStats)
	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

type messageRequest struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

type outcomeResponse struct {
	Status       string `json:"status"`
	ReplyText    string `json:"reply_text,omitempty"`
	Detail       string `json:"detail,omitempty"`
	RetryAfterMS int64  `json:"retry_after_ms,omitempty"`
}

type supersededResponse struct {
	Status string `json:"status"`
}

// handleMessage runs the full pipeline for one inbound message: record it,
// wait out the debounce window, gate on staleness, complete, gate again,
// dispatch. A 202 means a newer message superseded this one and no reply
// was produced for it.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if conversationID == "" {
		writeError(w, http.StatusBadRequest, "conversation id is required")
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.Author == "" {
		req.Author = "user"
	}

	ctx := r.Context()
	messageID := s.log.Append(conversationID, domain.Turn{
		Role:   domain.RoleUser,
		Author: req.Author,
		Text:   req.Text,
	})

	if err := s.coordinator.AwaitBatchWindow(ctx); err != nil {
		writeError(w, statusClientClosedRequest, "request cancelled")
		return
	}
	if !s.coordinator.ShouldProceed(ctx, conversationID, messageID, staleness.StageDebounce) {
		writeJSON(w, http.StatusAccepted, supersededResponse{Status: "superseded"})
		return
	}

	snapshot := s.log.Snapshot(conversationID)
	outcome := s.completer.Complete(ctx, snapshot)

	if !s.coordinator.ShouldProceed(ctx, conversationID, messageID, staleness.StageDelivery) {
		writeJSON(w, http.StatusAccepted, supersededResponse{Status: "superseded"})
		return
	}

	if err := s.dispatcher.Dispatch(ctx, conversationID, outcome); err != nil {
		s.logger.Error("Reply dispatch failed",
			zap.String("conversation_id", conversationID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "reply dispatch failed")
		return
	}

	writeJSON(w, http.StatusOK, outcomeResponse{
		Status:       outcome.Status.String(),
		ReplyText:    outcome.ReplyText,
		Detail:       outcome.Detail,
		RetryAfterMS: outcome.RetryAfter.Milliseconds(),
	})
}

// handleCacheStats serves response cache counters.
func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

// handleHealth runs the registered dependency checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != health.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// statusClientClosedRequest is the nginx convention for a cancelled request.
const statusClientClosedRequest = 499

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
