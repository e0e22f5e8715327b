package domain

import (
	"encoding/json"
	"time"
)

// AuditLog records who did what to which resource. Settlement, journal and
// netting actions all leave a trail.
type AuditLog struct {
	ID           string
	ActorID      string
	Action       string
	ResourceType string
	ResourceID   string
	Metadata     JSON
	Status       string
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionAccountCreate     AuditAction = "account.create"
	AuditActionAccountDeactivate AuditAction = "account.deactivate"

	AuditActionJournalPost AuditAction = "journal.post"

	AuditActionSettlementRequest AuditAction = "settlement.request"
	AuditActionSettlementExecute AuditAction = "settlement.execute"
	AuditActionSettlementP2P     AuditAction = "settlement.p2p"
	AuditActionSettlementFX      AuditAction = "settlement.fx"

	AuditActionNettingRecord AuditAction = "netting.record"
	AuditActionNettingClear  AuditAction = "netting.clear"

	AuditActionValuationSnapshot AuditAction = "valuation.snapshot"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}
