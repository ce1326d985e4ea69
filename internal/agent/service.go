package agent

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Service owns one Runner per conversation and serializes turns within each.
//
// The runner's pending-confirmation slot is the only cross-turn state, so two
// interleaved turns on the same conversation could race on it. A per-runner
// mutex makes each conversation single-writer; different conversations run
// concurrently.
type Service struct {
	gateway ToolGateway
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	runners map[string]*conversationRunner
}

type conversationRunner struct {
	mu       sync.Mutex
	runner   *Runner
	lastUsed time.Time
}

// runnerIdleTTL bounds how long an untouched conversation keeps its runner.
// A pending confirmation older than this is stale anyway.
const runnerIdleTTL = 30 * time.Minute

// NewService creates the agent service.
func NewService(gateway ToolGateway, timeout time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		gateway: gateway,
		timeout: timeout,
		logger:  logger,
		runners: make(map[string]*conversationRunner),
	}
	go s.evictLoop()
	return s
}

// RunTurn executes one agent turn for the conversation in agentCtx.
// Turns for the same conversation are serialized.
func (s *Service) RunTurn(ctx context.Context, agentCtx Context, message string) Result {
	cr := s.runnerFor(agentCtx.ConversationID)
	cr.mu.Lock()
	defer cr.mu.Unlock()
	cr.lastUsed = time.Now()
	return cr.runner.Run(ctx, agentCtx, message)
}

// HasPendingConfirmation reports whether the conversation is awaiting a
// delete confirmation.
func (s *Service) HasPendingConfirmation(conversationID string) bool {
	s.mu.Lock()
	cr, ok := s.runners[conversationID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.runner.HasPendingConfirmation()
}

// Forget drops the conversation's runner, clearing any pending confirmation.
// Called when the conversation is deleted.
func (s *Service) Forget(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runners, conversationID)
}

func (s *Service) runnerFor(conversationID string) *conversationRunner {
	s.mu.Lock()
	defer s.mu.Unlock()
	cr, ok := s.runners[conversationID]
	if !ok {
		cr = &conversationRunner{
			runner:   NewRunner(s.gateway, s.timeout, s.logger),
			lastUsed: time.Now(),
		}
		s.runners[conversationID] = cr
	}
	return cr
}

// evictLoop periodically drops runners for idle conversations so the
// registry does not grow without bound.
func (s *Service) evictLoop() {
	ticker := time.NewTicker(runnerIdleTTL)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-runnerIdleTTL)
		s.mu.Lock()
		for id, cr := range s.runners {
			if cr.lastUsed.Before(cutoff) {
				delete(s.runners, id)
			}
		}
		s.mu.Unlock()
	}
}
