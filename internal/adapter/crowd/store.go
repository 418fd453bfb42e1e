// Package crowd holds the citizen-network hazard reports and evaluates the
// crowd-sourced risk for a zone. It stands in for an external crowd-intel
// collaborator; the engine only sees the EvaluateZone contract.
package crowd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/couchcryptid/hazard-sentinel/internal/domain"
)

// Report count thresholds for the zone verdict. Tuned for a demo-sized
// population; a production deployment would derive these from zone density.
const (
	criticalReportCount = 5
	highReportCount     = 3
)

// Store is a mutex-guarded, in-memory hazard-report sink. Reports age out
// of zone evaluations after the configured window but are never deleted
// (the slice is the report history for the process lifetime).
type Store struct {
	mu      sync.Mutex
	reports []domain.HazardReport

	window time.Duration // how long a report counts toward a zone
}

// NewStore creates a store whose zone evaluations consider reports no older
// than window.
func NewStore(window time.Duration) *Store {
	return &Store{window: window}
}

// Add records one hazard report, stamping SubmittedAt if the caller left it
// zero.
func (s *Store) Add(r domain.HazardReport) domain.HazardReport {
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = domain.Now()
	}

	s.mu.Lock()
	s.reports = append(s.reports, r)
	s.mu.Unlock()
	return r
}

// Len returns the total number of reports received.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

// EvaluateZone maps recent report density around a position onto a crowd
// verdict. Returns nil when no recent report falls within the radius: no
// intel is different from calm intel. Implements engine.CrowdIntel.
func (s *Store) EvaluateZone(_ context.Context, lat, lng float64) (*domain.RiskVerdict, error) {
	center := domain.Position{Lat: lat, Lng: lng}
	cutoff := domain.Now().Add(-s.window)
	const radiusKm = 5.0

	s.mu.Lock()
	count := 0
	for _, r := range s.reports {
		if r.SubmittedAt.Before(cutoff) {
			continue
		}
		if domain.HaversineKm(center, r.Position) <= radiusKm {
			count++
		}
	}
	s.mu.Unlock()

	if count == 0 {
		return nil, nil
	}

	level := domain.LevelModerate
	switch {
	case count >= criticalReportCount:
		level = domain.LevelCritical
	case count >= highReportCount:
		level = domain.LevelHigh
	}

	return &domain.RiskVerdict{
		Level:  level,
		Score:  RiskScore(level),
		Reason: fmt.Sprintf("%d hazard reports within %.1fkm", count, radiusKm),
		Source: domain.SourceCitizenNetwork,
	}, nil
}

// RiskScore maps a crowd verdict level onto the 0–100 composite sub-score
// convention (higher is riskier).
func RiskScore(level domain.RiskLevel) int {
	switch level {
	case domain.LevelCritical:
		return 90
	case domain.LevelHigh:
		return 75
	case domain.LevelModerate:
		return 55
	default:
		return 20
	}
}
