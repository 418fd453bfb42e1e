package engine

import (
	"context"
	"errors"

	"github.com/couchcryptid/hazard-sentinel/internal/domain"
	"github.com/couchcryptid/hazard-sentinel/internal/workflow"
)

// ProposeAndEnqueue generates an SOP proposal for the verdict and submits it
// to the approval queue. Verdicts below the configured threshold produce no
// proposal; duplicates of a pending trigger are suppressed. Returns the
// enqueued proposal, or nil when nothing was queued.
func (e *Engine) ProposeAndEnqueue(verdict domain.RiskVerdict, lat, lng float64) *domain.DecisionProposal {
	if verdict.Level < e.params.ProposalThreshold {
		return nil
	}

	proposal := domain.BuildProposal(verdict, lat, lng, e.params.ProposalRadiusKm)
	if !e.deps.Workflow.Submit(proposal) {
		e.deps.Metrics.ProposalsDeduped.Inc()
		return nil
	}

	e.deps.Metrics.ProposalsSubmitted.Inc()
	e.deps.Metrics.PendingProposals.Set(float64(e.deps.Workflow.PendingCount()))
	e.deps.Logger.Info("proposal enqueued",
		"proposal_id", proposal.ID,
		"action", string(proposal.Action),
		"level", verdict.Level.String(),
	)
	return &proposal
}

// Decide resolves a pending proposal on behalf of an authority and
// broadcasts approved decisions to the alert sink.
func (e *Engine) Decide(ctx context.Context, proposalID, action, actor, notes string) (domain.DecisionProposal, error) {
	decided, err := e.deps.Workflow.Decide(proposalID, action, actor, notes)
	if err != nil {
		e.deps.Metrics.Decisions.WithLabelValues(decisionOutcome(err)).Inc()
		return domain.DecisionProposal{}, err
	}

	outcome := "rejected"
	if decided.Status == domain.StatusApproved {
		outcome = "approved"
	}
	e.deps.Metrics.Decisions.WithLabelValues(outcome).Inc()
	e.deps.Metrics.PendingProposals.Set(float64(e.deps.Workflow.PendingCount()))

	if decided.Status == domain.StatusApproved && e.deps.Alerts != nil {
		if err := e.deps.Alerts.PublishDecision(ctx, decided); err != nil {
			e.deps.Logger.Warn("decision broadcast failed", "proposal_id", decided.ID, "error", err)
		}
	}
	return decided, nil
}

// ListPending returns the proposals awaiting a decision, most recent first.
func (e *Engine) ListPending() []domain.DecisionProposal {
	return e.deps.Workflow.ListPending()
}

// AuditTrail returns the accountability log in append order.
func (e *Engine) AuditTrail() []domain.AuditEntry {
	return e.deps.Audit.Entries()
}

func decisionOutcome(err error) string {
	switch {
	case errors.Is(err, workflow.ErrProposalNotFound):
		return "not_found"
	case errors.Is(err, workflow.ErrInvalidAction):
		return "invalid"
	default:
		return "error"
	}
}
