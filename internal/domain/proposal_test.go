package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProposal_SOPTable(t *testing.T) {
	tests := []struct {
		level   RiskLevel
		action  SOPAction
		urgency Urgency
	}{
		{LevelCritical, ActionMassEvacuation, UrgencyImmediate},
		{LevelHigh, ActionDeployScout, UrgencyHigh},
		{LevelModerate, ActionCitizenAdvisory, UrgencyMedium},
		{LevelSafe, ActionMonitorOnly, UrgencyLow},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			verdict := RiskVerdict{Level: tt.level, Score: 42, Reason: "test reason", Source: SourceFusionEngine}

			p := BuildProposal(verdict, 26.15, 91.80, 2.0)

			assert.Equal(t, tt.action, p.Action)
			assert.Equal(t, tt.urgency, p.Urgency)
		})
	}
}

func TestBuildProposal_CopiesVerdictAndZone(t *testing.T) {
	fixedTime := time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixedTime))
	defer SetClock(nil)

	verdict := RiskVerdict{
		Level:  LevelCritical,
		Score:  10,
		Reason: "extreme rainfall (protocol 101)",
		Source: SourceRainProtocol,
	}

	p := BuildProposal(verdict, 26.15, 91.80, 2.0)

	require.NotEmpty(t, p.ID)
	assert.Equal(t, fixedTime, p.CreatedAt)
	assert.Equal(t, StatusPendingApproval, p.Status)
	assert.Equal(t, verdict.Reason, p.Reason)
	assert.Equal(t, verdict.Source, p.Source)
	assert.Equal(t, verdict.Score, p.Confidence)
	assert.Equal(t, TargetZone{Lat: 26.15, Lng: 91.80, RadiusKm: 2.0}, p.TargetZone)
}

func TestBuildProposal_UniqueIDs(t *testing.T) {
	verdict := RiskVerdict{Level: LevelHigh, Score: 30, Reason: "r", Source: "s"}

	first := BuildProposal(verdict, 26.15, 91.80, 2.0)
	second := BuildProposal(verdict, 26.15, 91.80, 2.0)

	assert.NotEqual(t, first.ID, second.ID)
}
