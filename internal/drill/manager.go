// Package drill owns the simulation override: an admin-triggered state that
// forces a disaster scenario so the approval pipeline can be exercised end
// to end. The override is a readable flag, not a timer-driven process.
package drill

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/hazard-sentinel/internal/domain"
	"github.com/couchcryptid/hazard-sentinel/internal/workflow"
)

// Manager holds the drill state. Start and Stop each append one audit entry;
// Override is the cheap read used on every evaluation.
type Manager struct {
	mu    sync.Mutex
	state domain.SimulationOverride

	audit  *workflow.AuditLog
	logger *slog.Logger
}

// NewManager creates an inactive drill manager.
func NewManager(audit *workflow.AuditLog, logger *slog.Logger) *Manager {
	return &Manager{audit: audit, logger: logger}
}

// Start activates a drill scenario at the given position. Starting while a
// drill is already active replaces the scenario (the admin is rehearsing a
// different situation, not stacking two).
func (m *Manager) Start(actor, scenario string, lat, lng float64) domain.SimulationOverride {
	m.mu.Lock()
	m.state = domain.SimulationOverride{
		Active:   true,
		Scenario: scenario,
		Position: domain.Position{Lat: lat, Lng: lng},
	}
	state := m.state
	m.mu.Unlock()

	m.audit.Append(actor, "SIMULATION_STARTED",
		fmt.Sprintf("scenario %s at %.4f,%.4f", scenario, lat, lng),
		domain.AuditWarn)
	m.logger.Info("drill started", "scenario", scenario, "actor", actor)
	return state
}

// Stop deactivates the drill. Stopping an inactive drill is a no-op and is
// not audited (nothing changed).
func (m *Manager) Stop(actor string) domain.SimulationOverride {
	m.mu.Lock()
	wasActive := m.state.Active
	scenario := m.state.Scenario
	m.state = domain.SimulationOverride{}
	state := m.state
	m.mu.Unlock()

	if wasActive {
		m.audit.Append(actor, "SIMULATION_STOPPED",
			fmt.Sprintf("scenario %s", scenario),
			domain.AuditInfo)
		m.logger.Info("drill stopped", "scenario", scenario, "actor", actor)
	}
	return state
}

// Override returns the current drill state. Implements engine.DrillState.
func (m *Manager) Override() domain.SimulationOverride {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
