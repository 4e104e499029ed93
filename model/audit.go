package model

import (
	"encoding/json"
	"time"
)

// AuditRecord is one permitted PJe access. Written once, never updated.
// Sensitive parameter values are redacted before the record is built.
type AuditRecord struct {
	ID        string          `json:"id" gorm:"primaryKey;type:text;not null"`
	UserID    string          `json:"user_id" gorm:"not null;index;size:255"`
	Endpoint  string          `json:"endpoint" gorm:"not null;size:100"`
	Partition string          `json:"partition" gorm:"size:10"`
	Params    json.RawMessage `json:"params" gorm:"type:jsonb"`
	CreatedAt time.Time       `json:"created_at" gorm:"not null;index"`
}

func (AuditRecord) TableName() string {
	return "audit_pje"
}
