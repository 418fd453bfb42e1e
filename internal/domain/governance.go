package domain

// Governance protocol thresholds. These are government-mandated limits, not
// tuning knobs: the rules below are deterministic and override any
// model-derived score.
const (
	cloudburstRainMM   = 100.0
	criticalSlopeAngle = 45.0
	criticalSlopeRain  = 40.0

	aiCriticalBand = 40
	aiModerateBand = 70
)

// ValidateRisk applies the non-negotiable safety protocols to a model score.
// Rules fire in strict order and short-circuit; the order is part of the
// governance contract and must not change:
//
//  1. Cloudburst protocol: rain above 100mm is CRITICAL unconditionally.
//  2. Critical-slope protocol: slope above 45° with rain above 40mm is HIGH.
//  3. AI score bands: score <40 CRITICAL, <70 MODERATE, otherwise SAFE.
func ValidateRisk(rainMM, slopeAngle float64, aiScore int) RiskVerdict {
	if rainMM > cloudburstRainMM {
		return RiskVerdict{
			Level:  LevelCritical,
			Score:  10,
			Reason: "extreme rainfall (protocol 101)",
			Source: SourceRainProtocol,
		}
	}

	if slopeAngle > criticalSlopeAngle && rainMM > criticalSlopeRain {
		return RiskVerdict{
			Level:  LevelHigh,
			Score:  30,
			Reason: "unstable slope with sustained rain",
			Source: SourceSlopeProtocol,
		}
	}

	verdict := RiskVerdict{
		Level:  LevelSafe,
		Score:  aiScore,
		Reason: "normal conditions",
		Source: SourceFusionEngine,
	}
	switch {
	case aiScore < aiCriticalBand:
		verdict.Level = LevelCritical
		verdict.Reason = "model alert: high landslide probability"
	case aiScore < aiModerateBand:
		verdict.Level = LevelModerate
		verdict.Reason = "model caution: elevated landslide probability"
	}
	return verdict
}

// ProtocolOverrideFired reports whether a governance verdict came from one of
// the deterministic protocols rather than the model band pass-through.
func ProtocolOverrideFired(v RiskVerdict) bool {
	return v.Source == SourceRainProtocol || v.Source == SourceSlopeProtocol
}
