package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreachVerdict(t *testing.T) {
	t.Run("calm grid", func(t *testing.T) {
		readings := []SignalReading{
			{ID: "SENS_001", Kind: KindRiverGauge, Value: 9.1, Unit: "m", Status: StatusNormal, Location: "Brahmaputra Bank"},
			{ID: "SENS_002", Kind: KindRainGauge, Value: 62.0, Unit: "mm/hr", Status: StatusWarning, Location: "Shillong Slope A"},
		}

		assert.Nil(t, BreachVerdict(readings))
	})

	t.Run("critical sensor forces breach verdict", func(t *testing.T) {
		readings := []SignalReading{
			{ID: "SENS_002", Kind: KindRainGauge, Value: 40.0, Unit: "mm/hr", Status: StatusNormal, Location: "Shillong Slope A"},
			{ID: "SENS_001", Kind: KindRiverGauge, Value: 12.4, Unit: "m", Status: StatusCritical, Location: "Brahmaputra Bank"},
		}

		verdict := BreachVerdict(readings)

		require.NotNil(t, verdict)
		assert.Equal(t, LevelCritical, verdict.Level)
		assert.Equal(t, SourceSensorGrid, verdict.Source)
		assert.Contains(t, verdict.Reason, "RIVER_GAUGE")
		assert.Contains(t, verdict.Reason, "Brahmaputra Bank")
		assert.Contains(t, verdict.Reason, "12.40m")
	})

	t.Run("empty readings", func(t *testing.T) {
		assert.Nil(t, BreachVerdict(nil))
	})
}

func TestHaversineKm(t *testing.T) {
	t.Run("zero distance", func(t *testing.T) {
		p := Position{Lat: 26.15, Lng: 91.80}
		assert.InDelta(t, 0, HaversineKm(p, p), 1e-9)
	})

	t.Run("known distance", func(t *testing.T) {
		// Guwahati to Shillong is roughly 55–65 km great-circle.
		guwahati := Position{Lat: 26.14, Lng: 91.74}
		shillong := Position{Lat: 25.57, Lng: 91.89}

		d := HaversineKm(guwahati, shillong)

		assert.InDelta(t, 65, d, 10)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := Position{Lat: 26.15, Lng: 91.80}
		b := Position{Lat: 24.90, Lng: 92.60}

		assert.InDelta(t, HaversineKm(a, b), HaversineKm(b, a), 1e-9)
	})
}
