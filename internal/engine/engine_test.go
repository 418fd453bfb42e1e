package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-sentinel/internal/domain"
	"github.com/couchcryptid/hazard-sentinel/internal/observability"
	"github.com/couchcryptid/hazard-sentinel/internal/workflow"
)

type stubTelemetry struct {
	readings []domain.SignalReading
	err      error
}

func (s *stubTelemetry) LiveReadings(context.Context) ([]domain.SignalReading, error) {
	return s.readings, s.err
}

type stubCrowd struct {
	verdict *domain.RiskVerdict
	err     error
}

func (s *stubCrowd) EvaluateZone(context.Context, float64, float64) (*domain.RiskVerdict, error) {
	return s.verdict, s.err
}

type stubDrill struct {
	state domain.SimulationOverride
}

func (s *stubDrill) Override() domain.SimulationOverride { return s.state }

type recordingSink struct {
	decisions []domain.DecisionProposal
	verdicts  []domain.RiskVerdict
	err       error
}

func (r *recordingSink) PublishDecision(_ context.Context, p domain.DecisionProposal) error {
	r.decisions = append(r.decisions, p)
	return r.err
}

func (r *recordingSink) PublishVerdict(_ context.Context, v domain.RiskVerdict, _ domain.Position) error {
	r.verdicts = append(r.verdicts, v)
	return r.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type engineFixture struct {
	engine *Engine
	audit  *workflow.AuditLog
	wf     *workflow.Workflow
	sink   *recordingSink
	drill  *stubDrill
	crowd  *stubCrowd
	grid   *stubTelemetry
}

func newFixture(t *testing.T) *engineFixture {
	t.Helper()
	logger := discardLogger()
	audit := workflow.NewAuditLog(logger)
	wf := workflow.New(audit, logger)
	sink := &recordingSink{}
	drillState := &stubDrill{}
	crowdIntel := &stubCrowd{}
	grid := &stubTelemetry{}

	eng := New(Deps{
		Predictor: domain.NewTerrainRiskPredictor(nil, logger),
		Telemetry: grid,
		Crowd:     crowdIntel,
		Drill:     drillState,
		Workflow:  wf,
		Audit:     audit,
		Alerts:    sink,
		Logger:    logger,
		Metrics:   observability.NewMetricsForTesting(),
	}, Params{
		Policy:            domain.DefaultFusionPolicy(),
		SignalTimeout:     time.Second,
		ProposalRadiusKm:  2.0,
		ProposalThreshold: domain.LevelModerate,
	})
	return &engineFixture{engine: eng, audit: audit, wf: wf, sink: sink, drill: drillState, crowd: crowdIntel, grid: grid}
}

func TestEngine_EvaluateCalmZoneIsSafe(t *testing.T) {
	f := newFixture(t)

	// Plains latitude, light rain: no protocol fires and the composite
	// stays well below the moderate band.
	verdict := f.engine.Evaluate(context.Background(), 10, 25.50, 91.00)

	assert.Equal(t, domain.LevelSafe, verdict.Level)
	assert.Equal(t, domain.SourceFusionEngine, verdict.Source)
	assert.Empty(t, f.audit.Entries(), "no override fired, nothing to audit")
	assert.Empty(t, f.sink.verdicts)
}

func TestEngine_EvaluateIsDeterministic(t *testing.T) {
	f := newFixture(t)

	first := f.engine.Evaluate(context.Background(), 42, 26.14, 91.73)
	second := f.engine.Evaluate(context.Background(), 42, 26.14, 91.73)

	assert.Equal(t, first, second)
}

func TestEngine_CloudburstFiresProtocolOverride(t *testing.T) {
	f := newFixture(t)

	verdict := f.engine.Evaluate(context.Background(), 150, 26.14, 91.73)

	assert.Equal(t, domain.LevelCritical, verdict.Level)
	assert.Equal(t, domain.SourceRainProtocol, verdict.Source)

	entries := f.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "OVERRIDE_FIRED", entries[0].Action)
	assert.Equal(t, domain.AuditCritical, entries[0].Severity)

	require.Len(t, f.sink.verdicts, 1, "critical verdicts are broadcast")
	assert.Equal(t, verdict, f.sink.verdicts[0])
}

func TestEngine_DrillForcesCritical(t *testing.T) {
	f := newFixture(t)
	f.drill.state = domain.SimulationOverride{Active: true, Scenario: "FLASH_FLOOD"}

	verdict := f.engine.Evaluate(context.Background(), 5, 25.50, 91.00)

	assert.Equal(t, domain.LevelCritical, verdict.Level)
	assert.Equal(t, domain.SourceDrillAuthority, verdict.Source)
	assert.Contains(t, verdict.Reason, "FLASH_FLOOD")
}

func TestEngine_SensorBreachBeatsCrowd(t *testing.T) {
	f := newFixture(t)
	f.grid.readings = []domain.SignalReading{{
		ID: "SENS_001", Kind: domain.KindRiverGauge,
		Value: 13.0, Unit: "m", Status: domain.StatusCritical, Location: "Brahmaputra Bank",
	}}
	f.crowd.verdict = &domain.RiskVerdict{
		Level: domain.LevelHigh, Score: 75,
		Reason: "4 hazard reports within 5.0km", Source: domain.SourceCitizenNetwork,
	}

	verdict := f.engine.Evaluate(context.Background(), 5, 25.50, 91.00)

	assert.Equal(t, domain.SourceSensorGrid, verdict.Source)
	assert.Equal(t, domain.LevelCritical, verdict.Level)
}

func TestEngine_CrowdIntelCarriesLevel(t *testing.T) {
	f := newFixture(t)
	f.crowd.verdict = &domain.RiskVerdict{
		Level: domain.LevelHigh, Score: 75,
		Reason: "4 hazard reports within 5.0km", Source: domain.SourceCitizenNetwork,
	}

	verdict := f.engine.Evaluate(context.Background(), 5, 25.50, 91.00)

	assert.Equal(t, domain.LevelHigh, verdict.Level)
	assert.Equal(t, domain.SourceCitizenNetwork, verdict.Source)
}

func TestEngine_AdapterFailuresAreAbsorbed(t *testing.T) {
	f := newFixture(t)
	f.grid.err = errors.New("grid offline")
	f.crowd.err = errors.New("store offline")

	verdict := f.engine.Evaluate(context.Background(), 10, 25.50, 91.00)

	assert.Equal(t, domain.LevelSafe, verdict.Level, "evaluation proceeds on model and governance alone")
}

func TestEngine_ReadinessFlipsAfterFirstEvaluation(t *testing.T) {
	f := newFixture(t)

	require.Error(t, f.engine.CheckReadiness(context.Background()))
	f.engine.Evaluate(context.Background(), 10, 25.50, 91.00)
	assert.NoError(t, f.engine.CheckReadiness(context.Background()))
}

func TestEngine_ProposeAndEnqueue(t *testing.T) {
	f := newFixture(t)

	t.Run("below threshold produces nothing", func(t *testing.T) {
		p := f.engine.ProposeAndEnqueue(domain.RiskVerdict{
			Level: domain.LevelSafe, Score: 95, Reason: "normal conditions", Source: domain.SourceFusionEngine,
		}, 26.14, 91.73)
		assert.Nil(t, p)
		assert.Zero(t, f.wf.PendingCount())
	})

	t.Run("critical verdict enqueues mass evacuation", func(t *testing.T) {
		p := f.engine.ProposeAndEnqueue(domain.RiskVerdict{
			Level: domain.LevelCritical, Score: 10, Reason: "extreme rainfall (protocol 101)", Source: domain.SourceRainProtocol,
		}, 26.14, 91.73)
		require.NotNil(t, p)
		assert.Equal(t, domain.ActionMassEvacuation, p.Action)
		assert.Equal(t, 2.0, p.TargetZone.RadiusKm)
		assert.Equal(t, 1, f.wf.PendingCount())
	})

	t.Run("same trigger while pending is suppressed", func(t *testing.T) {
		p := f.engine.ProposeAndEnqueue(domain.RiskVerdict{
			Level: domain.LevelCritical, Score: 10, Reason: "extreme rainfall (protocol 101)", Source: domain.SourceRainProtocol,
		}, 26.14, 91.73)
		assert.Nil(t, p)
		assert.Equal(t, 1, f.wf.PendingCount())
	})
}

func TestEngine_DecideApprovePublishesAlert(t *testing.T) {
	f := newFixture(t)
	p := f.engine.ProposeAndEnqueue(domain.RiskVerdict{
		Level: domain.LevelCritical, Score: 10, Reason: "extreme rainfall (protocol 101)", Source: domain.SourceRainProtocol,
	}, 26.14, 91.73)
	require.NotNil(t, p)

	decided, err := f.engine.Decide(context.Background(), p.ID, workflow.DecisionApprove, "magistrate", "field teams staged")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, decided.Status)
	require.Len(t, f.sink.decisions, 1)
	assert.Equal(t, decided.ID, f.sink.decisions[0].ID)
}

func TestEngine_DecideRejectDoesNotPublish(t *testing.T) {
	f := newFixture(t)
	p := f.engine.ProposeAndEnqueue(domain.RiskVerdict{
		Level: domain.LevelHigh, Score: 30, Reason: "unstable slope with sustained rain", Source: domain.SourceSlopeProtocol,
	}, 25.60, 91.90)
	require.NotNil(t, p)

	decided, err := f.engine.Decide(context.Background(), p.ID, workflow.DecisionReject, "magistrate", "false positive")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, decided.Status)
	assert.Empty(t, f.sink.decisions)
}

func TestEngine_DecideErrorsPassThrough(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Decide(context.Background(), "no-such-id", workflow.DecisionApprove, "magistrate", "")
	assert.ErrorIs(t, err, workflow.ErrProposalNotFound)

	_, err = f.engine.Decide(context.Background(), "no-such-id", "ESCALATE", "magistrate", "")
	assert.ErrorIs(t, err, workflow.ErrInvalidAction)
}

func TestGridRisk(t *testing.T) {
	assert.Zero(t, gridRisk(nil))

	allNormal := []domain.SignalReading{
		{Status: domain.StatusNormal}, {Status: domain.StatusNormal},
	}
	assert.InDelta(t, 10, gridRisk(allNormal), 0.001)

	mixed := []domain.SignalReading{
		{Status: domain.StatusNormal}, {Status: domain.StatusWarning}, {Status: domain.StatusCritical},
	}
	assert.InDelta(t, (10+60+100)/3.0, gridRisk(mixed), 0.001)
}

func TestCompositeInputs(t *testing.T) {
	p := domain.Prediction{Score: 40, SlopeAngle: 45, SoilClass: "loamy-unstable", Degraded: true}
	crowd := &domain.RiskVerdict{Level: domain.LevelModerate, Score: 55}

	inputs := compositeInputs(p, 80, crowd, nil)

	assert.InDelta(t, 60, inputs.Landslide, 0.001, "inverted safety score")
	assert.InDelta(t, 75, inputs.Terrain, 0.001, "45 of 60 degree full scale")
	assert.InDelta(t, 80, inputs.Weather, 0.001)
	assert.InDelta(t, 55, inputs.Crowd, 0.001)
	assert.Zero(t, inputs.IoT)

	t.Run("scales saturate", func(t *testing.T) {
		saturated := compositeInputs(domain.Prediction{Score: 0, SlopeAngle: 90}, 250, nil, nil)
		assert.InDelta(t, 100, saturated.Landslide, 0.001)
		assert.InDelta(t, 100, saturated.Terrain, 0.001)
		assert.InDelta(t, 100, saturated.Weather, 0.001)
		assert.Zero(t, saturated.Crowd, "no intel contributes nothing")
	})
}
