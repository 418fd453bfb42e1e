package domain

import (
	"fmt"
	"time"
)

// SensorKind identifies the physical instrument behind a reading.
type SensorKind string

const (
	KindRainGauge    SensorKind = "RAIN_GAUGE"
	KindRiverGauge   SensorKind = "RIVER_GAUGE"
	KindSoilMoisture SensorKind = "SOIL_MOISTURE"
)

// SensorStatus is the threshold classification reported with a reading.
type SensorStatus string

const (
	StatusNormal   SensorStatus = "NORMAL"
	StatusWarning  SensorStatus = "WARNING"
	StatusCritical SensorStatus = "CRITICAL"
)

// Position is a WGS-84 latitude/longitude coordinate pair.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SignalReading is one telemetry sample from the sensor grid.
// Produced by an external telemetry collaborator; read-only to the core.
type SignalReading struct {
	ID         string       `json:"id"`
	Kind       SensorKind   `json:"kind"`
	Value      float64      `json:"value"`
	Unit       string       `json:"unit"`
	Status     SensorStatus `json:"status"`
	Position   Position     `json:"position"`
	Location   string       `json:"location,omitempty"`
	ObservedAt time.Time    `json:"observed_at"`
}

// HazardReport is a single crowd-sourced hazard observation.
type HazardReport struct {
	Position    Position  `json:"position"`
	HazardType  string    `json:"hazard_type"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// SimulationOverride is the drill authority's readable flag. When active,
// fusion forces a CRITICAL verdict naming the scenario so the approval
// pipeline can be exercised end to end.
type SimulationOverride struct {
	Active   bool     `json:"active"`
	Scenario string   `json:"scenario,omitempty"`
	Position Position `json:"position,omitempty"`
}

// BreachVerdict scans grid telemetry for a sensor in CRITICAL status and
// returns the corresponding override verdict, or nil when the grid is calm.
// The first critical reading wins; one breached sensor is enough to force
// the zone CRITICAL regardless of every other signal below it.
func BreachVerdict(readings []SignalReading) *RiskVerdict {
	for _, r := range readings {
		if r.Status != StatusCritical {
			continue
		}
		// Safety-score convention, pinned low like the governance protocols.
		return &RiskVerdict{
			Level: LevelCritical,
			Score: 5,
			Reason: fmt.Sprintf("critical breach: %s at %s (%.2f%s)",
				r.Kind, r.Location, r.Value, r.Unit),
			Source: SourceSensorGrid,
		}
	}
	return nil
}
