package domain

import (
	"time"

	"github.com/google/uuid"
)

// SOPAction is the standard-operating-procedure action a proposal recommends.
type SOPAction string

const (
	ActionMonitorOnly     SOPAction = "MONITOR_ONLY"
	ActionCitizenAdvisory SOPAction = "ISSUE_CITIZEN_ADVISORY"
	ActionDeployScout     SOPAction = "DEPLOY_SCOUT"
	ActionMassEvacuation  SOPAction = "MASS_EVACUATION_ALERT"
)

// Urgency is how quickly the reviewing authority should act.
type Urgency string

const (
	UrgencyLow       Urgency = "LOW"
	UrgencyMedium    Urgency = "MEDIUM"
	UrgencyHigh      Urgency = "HIGH"
	UrgencyImmediate Urgency = "IMMEDIATE"
)

// ProposalStatus is the workflow state of a proposal.
// PENDING_APPROVAL is the only non-terminal state.
type ProposalStatus string

const (
	StatusPendingApproval ProposalStatus = "PENDING_APPROVAL"
	StatusApproved        ProposalStatus = "APPROVED"
	StatusRejected        ProposalStatus = "REJECTED"
)

// TargetZone is the circular area a proposal covers.
type TargetZone struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	RadiusKm float64 `json:"radius_km"`
}

// DecisionProposal is a machine-generated, human-reviewable recommendation
// for an emergency action. Created PENDING_APPROVAL; decided exactly once.
type DecisionProposal struct {
	ID         string         `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	Action     SOPAction      `json:"action"`
	TargetZone TargetZone     `json:"target_zone"`
	Reason     string         `json:"reason"`
	Confidence int            `json:"confidence"` // 0–100, copied from the verdict score
	Source     string         `json:"source"`
	Status     ProposalStatus `json:"status"`
	Urgency    Urgency        `json:"urgency"`
}

// sopTable is the fixed level → (action, urgency) mapping. Review escalation
// is deterministic: no judgement is applied until a human decides.
var sopTable = map[RiskLevel]struct {
	action  SOPAction
	urgency Urgency
}{
	LevelCritical: {ActionMassEvacuation, UrgencyImmediate},
	LevelHigh:     {ActionDeployScout, UrgencyHigh},
	LevelModerate: {ActionCitizenAdvisory, UrgencyMedium},
	LevelSafe:     {ActionMonitorOnly, UrgencyLow},
}

// BuildProposal turns a fused verdict into a reviewable proposal for the
// given zone. Side-effect free: enqueueing is the workflow's responsibility.
func BuildProposal(verdict RiskVerdict, lat, lng, radiusKm float64) DecisionProposal {
	sop := sopTable[verdict.Level]
	return DecisionProposal{
		ID:         uuid.NewString(),
		CreatedAt:  clock.Now(),
		Action:     sop.action,
		TargetZone: TargetZone{Lat: lat, Lng: lng, RadiusKm: radiusKm},
		Reason:     verdict.Reason,
		Confidence: verdict.Score,
		Source:     verdict.Source,
		Status:     StatusPendingApproval,
		Urgency:    sop.urgency,
	}
}
