package entities

import "time"

const (
	AuditEntityApplication = "application"
	AuditEntityTask        = "task"
	AuditEntityShipment    = "shipment_request"
	AuditEntityUpload      = "upload"
	AuditEntityRevision    = "revision_request"
	AuditEntityPayment     = "payment"
	AuditEntityBatchPayout = "batch_payout"
	AuditEntityCampaign    = "campaign"
)

// AuditEntry is append-only.
type AuditEntry struct {
	EntryID   string
	ActorID   string
	ActorRole ActorRole
	Action    string
	Entity    string
	EntityID  string
	Metadata  map[string]any
	CreatedAt time.Time
}
