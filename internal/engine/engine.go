// Package engine orchestrates one risk evaluation: terrain prediction,
// governance validation, signal collection, and fusion, plus the proposal
// and decision surface the transport layer calls.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/hazard-sentinel/internal/domain"
	"github.com/couchcryptid/hazard-sentinel/internal/observability"
	"github.com/couchcryptid/hazard-sentinel/internal/workflow"
)

// TelemetrySource supplies live readings from the sensor grid.
type TelemetrySource interface {
	LiveReadings(ctx context.Context) ([]domain.SignalReading, error)
}

// CrowdIntel evaluates the citizen network's view of a zone.
// A nil verdict with nil error means no intel for the zone.
type CrowdIntel interface {
	EvaluateZone(ctx context.Context, lat, lng float64) (*domain.RiskVerdict, error)
}

// DrillState exposes the simulation override flag.
type DrillState interface {
	Override() domain.SimulationOverride
}

// AlertSink receives decided proposals and critical verdicts for external
// broadcast. Publishing is best-effort: failures are logged, never fatal.
type AlertSink interface {
	PublishDecision(ctx context.Context, p domain.DecisionProposal) error
	PublishVerdict(ctx context.Context, v domain.RiskVerdict, pos domain.Position) error
}

// Params are the tunable evaluation settings.
type Params struct {
	Policy            domain.FusionPolicy
	SignalTimeout     time.Duration    // per-adapter budget; adapters must not block an evaluation
	ProposalRadiusKm  float64          // target-zone radius for generated proposals
	ProposalThreshold domain.RiskLevel // minimum level that warrants human review
}

// Deps are the injected collaborators. Alerts may be nil (broadcast disabled).
type Deps struct {
	Predictor *domain.TerrainRiskPredictor
	Telemetry TelemetrySource
	Crowd     CrowdIntel
	Drill     DrillState
	Workflow  *workflow.Workflow
	Audit     *workflow.AuditLog
	Alerts    AlertSink
	Logger    *slog.Logger
	Metrics   *observability.Metrics
}

// Engine is the single entry point the transport layer calls per analysis
// request. Evaluations share no mutable state and run fully in parallel;
// the workflow and audit log serialize their own access.
type Engine struct {
	deps   Deps
	params Params
	ready  atomic.Bool
}

// New wires an engine. The degraded-model gauge is set once here: model
// state does not change at runtime.
func New(deps Deps, params Params) *Engine {
	if deps.Predictor.Degraded() {
		deps.Metrics.DegradedModel.Set(1)
	}
	return &Engine{deps: deps, params: params}
}

// CheckReadiness returns nil once the engine has served at least one
// evaluation.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if !e.ready.Load() {
		return errors.New("engine has not evaluated any zone yet")
	}
	return nil
}

// Evaluate runs one predict-govern-fuse pass for a zone. Signal adapters
// that fail to resolve are skipped with a warning; the evaluation itself
// never fails. Identical inputs against identical signal state produce an
// identical verdict.
func (e *Engine) Evaluate(ctx context.Context, rainMM, lat, lng float64) domain.RiskVerdict {
	start := time.Now()
	d := e.deps

	prediction := d.Predictor.Predict(rainMM, lat, lng)
	if prediction.Degraded {
		d.Logger.Debug("terrain prediction in degraded heuristic mode",
			"lat", lat, "lng", lng, "score", prediction.Score)
	}

	governance := domain.ValidateRisk(rainMM, prediction.SlopeAngle, prediction.Score)

	readings := e.collectTelemetry(ctx)
	crowdVerdict := e.collectCrowd(ctx, lat, lng)
	override := d.Drill.Override()
	if override.Active {
		d.Metrics.DrillActive.Set(1)
	} else {
		d.Metrics.DrillActive.Set(0)
	}

	inputs := compositeInputs(prediction, rainMM, crowdVerdict, readings)
	verdict := domain.Fuse(governance, crowdVerdict, domain.BreachVerdict(readings), override, inputs, e.params.Policy)

	e.recordOutcome(ctx, verdict, lat, lng)

	d.Metrics.Evaluations.Inc()
	d.Metrics.EvaluationDuration.Observe(time.Since(start).Seconds())
	d.Metrics.VerdictsByLevel.WithLabelValues(verdict.Level.String()).Inc()
	e.ready.Store(true)

	d.Logger.Info("zone evaluated",
		"lat", lat, "lng", lng, "rain_mm", rainMM,
		"level", verdict.Level.String(), "source", verdict.Source,
	)
	return verdict
}

// collectTelemetry reads the sensor grid within the signal budget. An
// unavailable grid degrades the evaluation, it does not fail it.
func (e *Engine) collectTelemetry(ctx context.Context) []domain.SignalReading {
	if e.deps.Telemetry == nil {
		return nil
	}
	callCtx, cancel := context.WithTimeout(ctx, e.params.SignalTimeout)
	defer cancel()

	readings, err := e.deps.Telemetry.LiveReadings(callCtx)
	if err != nil {
		e.deps.Logger.Warn("telemetry unavailable, proceeding without sensor grid", "error", err)
		e.deps.Metrics.SignalFailures.WithLabelValues("telemetry").Inc()
		return nil
	}
	return readings
}

// collectCrowd queries citizen-network intel within the signal budget.
func (e *Engine) collectCrowd(ctx context.Context, lat, lng float64) *domain.RiskVerdict {
	if e.deps.Crowd == nil {
		return nil
	}
	callCtx, cancel := context.WithTimeout(ctx, e.params.SignalTimeout)
	defer cancel()

	verdict, err := e.deps.Crowd.EvaluateZone(callCtx, lat, lng)
	if err != nil {
		e.deps.Logger.Warn("crowd intel unavailable, proceeding without citizen network", "error", err)
		e.deps.Metrics.SignalFailures.WithLabelValues("crowd").Inc()
		return nil
	}
	return verdict
}

// recordOutcome audits override firings and broadcasts critical verdicts.
// Both are accountability side effects; neither changes the verdict.
func (e *Engine) recordOutcome(ctx context.Context, verdict domain.RiskVerdict, lat, lng float64) {
	d := e.deps

	if source, fired := overrideSource(verdict); fired {
		severity := domain.AuditWarn
		if verdict.Level == domain.LevelCritical {
			severity = domain.AuditCritical
		}
		d.Audit.Append("system", "OVERRIDE_FIRED", verdict.Reason+" ["+verdict.Source+"]", severity)
		d.Metrics.Overrides.WithLabelValues(source).Inc()
	}

	if verdict.Level == domain.LevelCritical && d.Alerts != nil {
		if err := d.Alerts.PublishVerdict(ctx, verdict, domain.Position{Lat: lat, Lng: lng}); err != nil {
			d.Logger.Warn("verdict broadcast failed", "error", err)
		}
	}
}

// overrideSource maps a verdict source to its override metric label.
// The fusion engine's own composite is not an override.
func overrideSource(v domain.RiskVerdict) (string, bool) {
	switch v.Source {
	case domain.SourceDrillAuthority:
		return "drill", true
	case domain.SourceSensorGrid:
		return "sensor_grid", true
	case domain.SourceCitizenNetwork:
		return "citizen_network", true
	case domain.SourceRainProtocol, domain.SourceSlopeProtocol:
		return "protocol", true
	default:
		return "", false
	}
}

// compositeInputs normalizes the resolved signals into 0–100 risk
// sub-scores for the weighted blend.
func compositeInputs(p domain.Prediction, rainMM float64, crowd *domain.RiskVerdict, readings []domain.SignalReading) domain.CompositeInputs {
	inputs := domain.CompositeInputs{
		Landslide: float64(100 - p.Score),
		Terrain:   normalize(p.SlopeAngle, 60),
		Weather:   normalize(rainMM, 100),
	}
	if crowd != nil {
		inputs.Crowd = float64(crowd.Score)
	}
	inputs.IoT = gridRisk(readings)
	return inputs
}

// gridRisk averages per-sensor status risk over the grid: a grid with a few
// warning sensors contributes mildly, a mostly-critical grid heavily.
func gridRisk(readings []domain.SignalReading) float64 {
	if len(readings) == 0 {
		return 0
	}
	total := 0.0
	for _, r := range readings {
		switch r.Status {
		case domain.StatusCritical:
			total += 100
		case domain.StatusWarning:
			total += 60
		default:
			total += 10
		}
	}
	return total / float64(len(readings))
}

func normalize(value, fullScale float64) float64 {
	if value <= 0 {
		return 0
	}
	if value >= fullScale {
		return 100
	}
	return value / fullScale * 100
}
