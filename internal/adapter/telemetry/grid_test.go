package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-sentinel/internal/domain"
)

func TestGrid_LiveReadings(t *testing.T) {
	g := NewGrid(DefaultSensors())

	readings, err := g.LiveReadings(context.Background())

	require.NoError(t, err)
	require.Len(t, readings, 3)
	for _, r := range readings {
		assert.Equal(t, domain.StatusNormal, r.Status, "zero values start NORMAL")
		assert.False(t, r.ObservedAt.IsZero())
	}
}

func TestGrid_ThresholdClassification(t *testing.T) {
	tests := []struct {
		name     string
		sensorID string
		value    float64
		status   domain.SensorStatus
	}{
		{"river normal", "SENS_001", 9.0, domain.StatusNormal},
		{"river warning", "SENS_001", 11.0, domain.StatusWarning},
		{"river critical", "SENS_001", 12.4, domain.StatusCritical},
		{"rain warning", "SENS_002", 62.0, domain.StatusWarning},
		{"rain critical", "SENS_002", 110.0, domain.StatusCritical},
		{"soil critical", "SENS_003", 95.0, domain.StatusCritical},
		{"warning boundary not exceeded", "SENS_001", 10.5, domain.StatusNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid(DefaultSensors())
			require.NoError(t, g.SetValue(tt.sensorID, tt.value))

			readings, err := g.LiveReadings(context.Background())
			require.NoError(t, err)

			for _, r := range readings {
				if r.ID == tt.sensorID {
					assert.Equal(t, tt.status, r.Status)
					assert.Equal(t, tt.value, r.Value)
					return
				}
			}
			t.Fatalf("sensor %s not in readings", tt.sensorID)
		})
	}
}

func TestGrid_SetValueUnknownSensor(t *testing.T) {
	g := NewGrid(DefaultSensors())

	err := g.SetValue("SENS_999", 1.0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SENS_999")
}

func TestGrid_BreachFlowsToVerdict(t *testing.T) {
	g := NewGrid(DefaultSensors())
	require.NoError(t, g.SetValue("SENS_001", 12.4))

	readings, err := g.LiveReadings(context.Background())
	require.NoError(t, err)

	verdict := domain.BreachVerdict(readings)
	require.NotNil(t, verdict)
	assert.Equal(t, domain.LevelCritical, verdict.Level)
	assert.Contains(t, verdict.Reason, "Brahmaputra Bank")
}
