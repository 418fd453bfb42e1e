// Package telemetry provides the simulated sensor grid used when no live
// telemetry feed is configured. Real deployments replace it with a feed
// adapter implementing the same engine.TelemetrySource interface.
package telemetry

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/hazard-sentinel/internal/domain"
)

// Sensor describes one registered instrument and its alert thresholds.
type Sensor struct {
	ID       string
	Kind     domain.SensorKind
	Unit     string
	Position domain.Position
	Location string

	// Threshold classification: value above Critical is CRITICAL, above
	// Warning is WARNING. A zero Critical disables that threshold.
	Warning  float64
	Critical float64
}

// Grid is a mutex-guarded registry of sensors and their current values.
// It replaces the original system's module-level sensor dictionary with an
// explicit store: constructed once, injected where needed.
type Grid struct {
	mu      sync.Mutex
	sensors []Sensor
	values  map[string]float64
}

// DefaultSensors is the demo registry for the monitored region.
func DefaultSensors() []Sensor {
	return []Sensor{
		{
			ID: "SENS_001", Kind: domain.KindRiverGauge, Unit: "m",
			Position: domain.Position{Lat: 26.18, Lng: 91.75}, Location: "Brahmaputra Bank",
			Warning: 10.5, Critical: 12.0,
		},
		{
			ID: "SENS_002", Kind: domain.KindRainGauge, Unit: "mm/hr",
			Position: domain.Position{Lat: 25.60, Lng: 91.90}, Location: "Shillong Slope A",
			Warning: 60.0, Critical: 100.0,
		},
		{
			ID: "SENS_003", Kind: domain.KindSoilMoisture, Unit: "%",
			Position: domain.Position{Lat: 25.80, Lng: 93.00}, Location: "NH-06 Pass",
			Warning: 80.0, Critical: 90.0,
		},
	}
}

// NewGrid creates a grid with all sensor values at zero.
func NewGrid(sensors []Sensor) *Grid {
	return &Grid{
		sensors: sensors,
		values:  make(map[string]float64, len(sensors)),
	}
}

// SetValue updates a sensor's current value. Unknown IDs are an error so a
// mistyped admin request does not silently register a phantom sensor.
func (g *Grid) SetValue(sensorID string, value float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, s := range g.sensors {
		if s.ID == sensorID {
			g.values[sensorID] = value
			return nil
		}
	}
	return fmt.Errorf("unknown sensor %q", sensorID)
}

// LiveReadings snapshots the grid as classified signal readings.
// Implements engine.TelemetrySource.
func (g *Grid) LiveReadings(_ context.Context) ([]domain.SignalReading, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := domain.Now()
	readings := make([]domain.SignalReading, 0, len(g.sensors))
	for _, s := range g.sensors {
		value := g.values[s.ID]
		readings = append(readings, domain.SignalReading{
			ID:         s.ID,
			Kind:       s.Kind,
			Value:      value,
			Unit:       s.Unit,
			Status:     classify(value, s.Warning, s.Critical),
			Position:   s.Position,
			Location:   s.Location,
			ObservedAt: now,
		})
	}
	return readings, nil
}

func classify(value, warning, critical float64) domain.SensorStatus {
	switch {
	case critical > 0 && value > critical:
		return domain.StatusCritical
	case warning > 0 && value > warning:
		return domain.StatusWarning
	default:
		return domain.StatusNormal
	}
}
