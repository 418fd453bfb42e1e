package workflow

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/hazard-sentinel/internal/domain"
)

var (
	// ErrProposalNotFound is returned for an unknown or already-decided
	// proposal id. A second decision on the same id gets this error, never a
	// silent success.
	ErrProposalNotFound = errors.New("proposal not found")

	// ErrInvalidAction is returned when a decision names neither APPROVE nor
	// REJECT. Invalid input is rejected, not coerced.
	ErrInvalidAction = errors.New("invalid decision action")
)

// Decision actions accepted by Decide.
const (
	DecisionApprove = "APPROVE"
	DecisionReject  = "REJECT"
)

// Workflow is the approval queue state machine. Proposals enter
// PENDING_APPROVAL via Submit and leave exactly once via Decide; terminal
// proposals are removed from the pending set and never re-inserted.
type Workflow struct {
	mu      sync.Mutex
	pending []domain.DecisionProposal // insertion order

	audit  *AuditLog
	logger *slog.Logger
}

// New creates a workflow writing decisions to the given audit log.
func New(audit *AuditLog, logger *slog.Logger) *Workflow {
	return &Workflow{audit: audit, logger: logger}
}

// Submit inserts a proposal into the pending set. Repeated identical
// triggers are de-duplicated by reason: if a pending proposal already
// carries the same reason the new one is dropped and Submit returns false.
func (w *Workflow) Submit(p domain.DecisionProposal) bool {
	w.mu.Lock()
	for _, existing := range w.pending {
		if existing.Reason == p.Reason {
			w.mu.Unlock()
			w.logger.Debug("duplicate proposal suppressed", "reason", p.Reason)
			return false
		}
	}
	w.pending = append(w.pending, p)
	w.mu.Unlock()

	w.audit.Append("system", "PROPOSAL_SUBMITTED",
		fmt.Sprintf("proposal %s: %s (%s)", p.ID, p.Action, p.Reason),
		domain.AuditInfo)
	return true
}

// Decide resolves a pending proposal. Exactly one of two racing calls for
// the same id succeeds; the loser observes ErrProposalNotFound. Every
// successful decision appends exactly one audit entry.
func (w *Workflow) Decide(proposalID, action, actor, notes string) (domain.DecisionProposal, error) {
	if action != DecisionApprove && action != DecisionReject {
		return domain.DecisionProposal{}, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	w.mu.Lock()
	idx := -1
	for i, p := range w.pending {
		if p.ID == proposalID {
			idx = i
			break
		}
	}
	if idx < 0 {
		w.mu.Unlock()
		return domain.DecisionProposal{}, fmt.Errorf("%w: %s", ErrProposalNotFound, proposalID)
	}

	decided := w.pending[idx]
	w.pending = append(w.pending[:idx], w.pending[idx+1:]...)
	w.mu.Unlock()

	if action == DecisionApprove {
		decided.Status = domain.StatusApproved
		w.audit.Append(actor, "AUTHORIZED_"+string(decided.Action),
			fmt.Sprintf("proposal %s approved: %s", decided.ID, notes),
			domain.AuditCritical)
	} else {
		decided.Status = domain.StatusRejected
		w.audit.Append(actor, "REJECTED_ACTION",
			fmt.Sprintf("proposal %s rejected: %s", decided.ID, notes),
			domain.AuditWarn)
	}

	w.logger.Info("proposal decided",
		"proposal_id", decided.ID,
		"action", action,
		"actor", actor,
	)
	return decided, nil
}

// ListPending returns a copy of the pending set, most recent first.
func (w *Workflow) ListPending() []domain.DecisionProposal {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]domain.DecisionProposal, len(w.pending))
	for i, p := range w.pending {
		out[len(w.pending)-1-i] = p
	}
	return out
}

// PendingCount returns the size of the pending set.
func (w *Workflow) PendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}
