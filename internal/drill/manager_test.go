package drill

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-sentinel/internal/domain"
	"github.com/couchcryptid/hazard-sentinel/internal/workflow"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManager_StartStop(t *testing.T) {
	audit := workflow.NewAuditLog(discardLogger())
	m := NewManager(audit, discardLogger())

	assert.False(t, m.Override().Active)

	state := m.Start("admin", "FLASH_FLOOD", 26.14, 91.73)
	assert.True(t, state.Active)
	assert.Equal(t, "FLASH_FLOOD", state.Scenario)
	assert.True(t, m.Override().Active)

	state = m.Stop("admin")
	assert.False(t, state.Active)
	assert.False(t, m.Override().Active)

	entries := audit.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "SIMULATION_STARTED", entries[0].Action)
	assert.Equal(t, domain.AuditWarn, entries[0].Severity)
	assert.Contains(t, entries[0].Details, "FLASH_FLOOD")
	assert.Equal(t, "SIMULATION_STOPPED", entries[1].Action)
	assert.Equal(t, domain.AuditInfo, entries[1].Severity)
}

func TestManager_RestartReplacesScenario(t *testing.T) {
	audit := workflow.NewAuditLog(discardLogger())
	m := NewManager(audit, discardLogger())

	m.Start("admin", "FLASH_FLOOD", 26.14, 91.73)
	state := m.Start("admin", "LANDSLIDE_CLUSTER", 25.60, 91.90)

	assert.Equal(t, "LANDSLIDE_CLUSTER", state.Scenario)
	assert.Equal(t, "LANDSLIDE_CLUSTER", m.Override().Scenario)
	assert.Equal(t, 2, audit.Len(), "each start is audited")
}

func TestManager_StopWhenInactiveIsNoOp(t *testing.T) {
	audit := workflow.NewAuditLog(discardLogger())
	m := NewManager(audit, discardLogger())

	state := m.Stop("admin")

	assert.False(t, state.Active)
	assert.Equal(t, 0, audit.Len())
}
