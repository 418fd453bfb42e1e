package domain

import (
	"fmt"
	"math"
)

// FusionWeights are the composite blend coefficients. They ship with the
// operational defaults but are configuration, not calibrated constants, so
// deployments can re-weight without a code change.
type FusionWeights struct {
	Landslide float64 `yaml:"landslide"`
	Terrain   float64 `yaml:"terrain"`
	Weather   float64 `yaml:"weather"`
	Crowd     float64 `yaml:"crowd"`
	IoT       float64 `yaml:"iot"`
}

// FusionBands map a composite risk score onto a level. Thresholds are
// inclusive lower bounds and must be strictly descending.
type FusionBands struct {
	Critical float64 `yaml:"critical"`
	High     float64 `yaml:"high"`
	Moderate float64 `yaml:"moderate"`
}

// FusionPolicy bundles the configurable composite parameters.
type FusionPolicy struct {
	Weights FusionWeights `yaml:"weights"`
	Bands   FusionBands   `yaml:"bands"`
}

// DefaultFusionPolicy returns the shipped weighting and banding.
func DefaultFusionPolicy() FusionPolicy {
	return FusionPolicy{
		Weights: FusionWeights{Landslide: 0.35, Terrain: 0.25, Weather: 0.20, Crowd: 0.15, IoT: 0.05},
		Bands:   FusionBands{Critical: 75, High: 60, Moderate: 40},
	}
}

// Validate rejects policies whose weights do not form a convex blend or
// whose bands are not strictly descending.
func (p FusionPolicy) Validate() error {
	sum := p.Weights.Landslide + p.Weights.Terrain + p.Weights.Weather + p.Weights.Crowd + p.Weights.IoT
	if math.Abs(sum-1.0) > 0.001 {
		return fmt.Errorf("fusion weights must sum to 1.0, got %.3f", sum)
	}
	for _, w := range []float64{p.Weights.Landslide, p.Weights.Terrain, p.Weights.Weather, p.Weights.Crowd, p.Weights.IoT} {
		if w < 0 {
			return fmt.Errorf("fusion weights must be non-negative")
		}
	}
	if !(p.Bands.Critical > p.Bands.High && p.Bands.High > p.Bands.Moderate && p.Bands.Moderate > 0) {
		return fmt.Errorf("fusion bands must be strictly descending and positive, got %.0f/%.0f/%.0f",
			p.Bands.Critical, p.Bands.High, p.Bands.Moderate)
	}
	return nil
}

// CompositeInputs are the normalized 0–100 risk sub-scores blended when no
// override fires. Higher means riskier, the inverse of the safety-score
// convention used by governance.
type CompositeInputs struct {
	Landslide float64 `json:"landslide"`
	Terrain   float64 `json:"terrain"`
	Weather   float64 `json:"weather"`
	Crowd     float64 `json:"crowd"`
	IoT       float64 `json:"iot"`
}

// Fuse combines the governance verdict with the external signal adapters
// under the fixed precedence order:
//
//  1. An active drill forces CRITICAL, naming the scenario.
//  2. A sensor-grid breach forces CRITICAL with the breach description.
//  3. Citizen-network intel at HIGH or CRITICAL carries its own level.
//  4. A fired governance protocol stands as-is.
//  5. Otherwise the weighted composite score is banded by policy.
//
// Whatever branch wins, the result's level is never below the governance
// level: the deterministic protocols veto, they are never averaged away.
func Fuse(governance RiskVerdict, crowd *RiskVerdict, breach *RiskVerdict,
	drill SimulationOverride, inputs CompositeInputs, policy FusionPolicy) RiskVerdict {

	if drill.Active {
		return RiskVerdict{
			Level:  LevelCritical,
			Score:  0,
			Reason: fmt.Sprintf("drill scenario active: %s", drill.Scenario),
			Source: SourceDrillAuthority,
		}
	}

	if breach != nil && breach.Level == LevelCritical {
		return *breach
	}

	if crowd != nil && crowd.Level >= LevelHigh {
		return holdGovernanceFloor(*crowd, governance)
	}

	if ProtocolOverrideFired(governance) {
		return governance
	}

	w := policy.Weights
	composite := w.Landslide*inputs.Landslide +
		w.Terrain*inputs.Terrain +
		w.Weather*inputs.Weather +
		w.Crowd*inputs.Crowd +
		w.IoT*inputs.IoT

	verdict := RiskVerdict{
		Level:  bandLevel(composite, policy.Bands),
		Score:  clampScore(composite),
		Reason: fmt.Sprintf("composite risk score %.0f", composite),
		Source: SourceFusionEngine,
	}
	return holdGovernanceFloor(verdict, governance)
}

// holdGovernanceFloor enforces level monotonicity: a lower-priority signal
// may raise severity above the governance verdict but never lower it.
func holdGovernanceFloor(candidate, governance RiskVerdict) RiskVerdict {
	if governance.Level > candidate.Level {
		return governance
	}
	return candidate
}

func bandLevel(composite float64, bands FusionBands) RiskLevel {
	switch {
	case composite >= bands.Critical:
		return LevelCritical
	case composite >= bands.High:
		return LevelHigh
	case composite >= bands.Moderate:
		return LevelModerate
	default:
		return LevelSafe
	}
}
