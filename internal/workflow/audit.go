// Package workflow owns the two shared mutable resources of the core: the
// pending-proposal set and the append-only audit log. Both are constructed
// once at process start and injected; access is serialized by a mutex so
// concurrent decisions cannot observe partial state.
package workflow

import (
	"log/slog"
	"sync"

	"github.com/couchcryptid/hazard-sentinel/internal/domain"
)

// AuditLog is the process-wide accountability sink. Entries are append-only:
// nothing in the core mutates or deletes a written entry. An external store
// may take ownership of the trail; until then entries live for the process
// lifetime.
type AuditLog struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	logger  *slog.Logger
}

// NewAuditLog creates an empty audit log.
func NewAuditLog(logger *slog.Logger) *AuditLog {
	return &AuditLog{logger: logger}
}

// Append records one immutable entry, stamped with the domain clock.
func (l *AuditLog) Append(actor, action, details string, severity domain.AuditSeverity) {
	entry := domain.AuditEntry{
		Actor:     actor,
		Action:    action,
		Details:   details,
		Severity:  severity,
		Timestamp: domain.Now(),
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	l.logger.Info("audit entry",
		"actor", actor,
		"action", action,
		"severity", string(severity),
	)
}

// Entries returns a copy of the trail in insertion order.
func (l *AuditLog) Entries() []domain.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries appended so far.
func (l *AuditLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
