package models

// Audit actions. Only overrides are audited today; the column is free text so
// new action kinds can be added without a migration.
const AuditActionOverride = "OVERRIDE"

// AuditEntry records a divergence between the factor-driven calculation and
// a manually supplied value. Exactly one entry exists per overridden record.
type AuditEntry struct {
	ID        int64   `db:"id" json:"id"`
	RecordID  int64   `db:"record_id" json:"record_id"`
	Action    string  `db:"action" json:"action"`
	OldValue  float64 `db:"old_value" json:"old_value"`
	NewValue  float64 `db:"new_value" json:"new_value"`
	Reason    string  `db:"reason" json:"reason,omitempty"`
	CreatedAt int64   `db:"created_at" json:"created_at"`
}

// TableName returns the table name for AuditEntry.
func (AuditEntry) TableName() string {
	return "audit_log"
}
