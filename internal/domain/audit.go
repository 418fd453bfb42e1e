package domain

import "time"

// AuditSeverity classifies an audit entry for downstream reporting.
type AuditSeverity string

const (
	AuditInfo     AuditSeverity = "INFO"
	AuditWarn     AuditSeverity = "WARN"
	AuditCritical AuditSeverity = "CRITICAL"
)

// AuditEntry is one immutable record of a state-changing action. Entries are
// append-only: once written they are never mutated or deleted by the core.
type AuditEntry struct {
	Actor     string        `json:"actor"`
	Action    string        `json:"action"`
	Details   string        `json:"details"`
	Severity  AuditSeverity `json:"severity"`
	Timestamp time.Time     `json:"timestamp"`
}
