package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// RiskLevel is the ordered severity of a zone verdict.
// Ordering matters: fusion may raise a level but never silently lower one.
type RiskLevel int

const (
	LevelSafe RiskLevel = iota
	LevelModerate
	LevelHigh
	LevelCritical
)

var levelNames = map[RiskLevel]string{
	LevelSafe:     "SAFE",
	LevelModerate: "MODERATE",
	LevelHigh:     "HIGH",
	LevelCritical: "CRITICAL",
}

func (l RiskLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("RiskLevel(%d)", int(l))
}

// ParseRiskLevel converts a wire-format level name back to a RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, error) {
	for level, name := range levelNames {
		if name == s {
			return level, nil
		}
	}
	return LevelSafe, fmt.Errorf("unknown risk level %q", s)
}

// Max returns the more severe of two levels.
func (l RiskLevel) Max(other RiskLevel) RiskLevel {
	if other > l {
		return other
	}
	return l
}

func (l RiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *RiskLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRiskLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Verdict sources. Each names the authority whose signal decided the verdict.
const (
	SourceDrillAuthority = "drill authority"
	SourceSensorGrid     = "sensor grid"
	SourceCitizenNetwork = "citizen network"
	SourceFusionEngine   = "risk fusion engine"
	SourceRainProtocol   = "IMD realtime feed"
	SourceSlopeProtocol  = "ISRO Cartosat DEM"
)

// RiskVerdict is the authoritative assessment for one evaluated zone.
type RiskVerdict struct {
	Level  RiskLevel `json:"level"`
	Score  int       `json:"score"` // 0–100, convention depends on Source (see package doc)
	Reason string    `json:"reason"`
	Source string    `json:"source"`
}

// clampScore rounds and bounds a raw score into the 0–100 contract range.
func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}
