package domain

import "time"

// AuditEntry is a structured record of a state-changing action, appended
// fire-and-forget to the audit sink.
type AuditEntry struct {
	AuditID    string         `json:"auditID"`
	Action     string         `json:"action"`
	EntityType string         `json:"entityType"`
	EntityID   string         `json:"entityID"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	CreatedBy  string         `json:"createdBy"`
}
