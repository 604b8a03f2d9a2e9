package postgresadapter

import (
	"encoding/json"
	"time"

	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/ports"
)

type campaignModel struct {
	CampaignID string     `gorm:"column:campaign_id;primaryKey"`
	BrandID    string     `gorm:"column:brand_id;index"`
	Title      string     `gorm:"column:title"`
	FixedPrice *float64   `gorm:"column:fixed_price"`
	DeadlineAt *time.Time `gorm:"column:deadline_at"`
	Status     string     `gorm:"column:status"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
}

func (campaignModel) TableName() string {
	return "campaigns"
}

func campaignModelFromEntity(item entities.Campaign) campaignModel {
	return campaignModel{
		CampaignID: item.CampaignID,
		BrandID:    item.BrandID,
		Title:      item.Title,
		FixedPrice: item.FixedPrice,
		DeadlineAt: utcPtr(item.DeadlineAt),
		Status:     string(item.Status),
		CreatedAt:  item.CreatedAt.UTC(),
		UpdatedAt:  item.UpdatedAt.UTC(),
	}
}

func (m campaignModel) toEntity(productCount int) entities.Campaign {
	return entities.Campaign{
		CampaignID:   m.CampaignID,
		BrandID:      m.BrandID,
		Title:        m.Title,
		FixedPrice:   m.FixedPrice,
		DeadlineAt:   utcPtr(m.DeadlineAt),
		Status:       entities.CampaignStatus(m.Status),
		ProductCount: productCount,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

type productModel struct {
	ProductID  string    `gorm:"column:product_id;primaryKey"`
	CampaignID string    `gorm:"column:campaign_id;index"`
	Name       string    `gorm:"column:name"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (productModel) TableName() string {
	return "campaign_products"
}

type applicationModel struct {
	ApplicationID       string     `gorm:"column:application_id;primaryKey"`
	CampaignID          string     `gorm:"column:campaign_id;index"`
	CreatorID           string     `gorm:"column:creator_id"`
	Status              string     `gorm:"column:status"`
	RejectionReasonCode string     `gorm:"column:rejection_reason_code"`
	RejectionNote       string     `gorm:"column:rejection_note"`
	DecidedByID         string     `gorm:"column:decided_by_id"`
	DecidedAt           *time.Time `gorm:"column:decided_at"`
	CreatedAt           time.Time  `gorm:"column:created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at"`
}

func (applicationModel) TableName() string {
	return "campaign_applications"
}

func applicationModelFromEntity(item entities.Application) applicationModel {
	return applicationModel{
		ApplicationID:       item.ApplicationID,
		CampaignID:          item.CampaignID,
		CreatorID:           item.CreatorID,
		Status:              string(item.Status),
		RejectionReasonCode: item.RejectionReasonCode,
		RejectionNote:       item.RejectionNote,
		DecidedByID:         item.DecidedByID,
		DecidedAt:           utcPtr(item.DecidedAt),
		CreatedAt:           item.CreatedAt.UTC(),
		UpdatedAt:           item.UpdatedAt.UTC(),
	}
}

func (m applicationModel) toEntity() entities.Application {
	return entities.Application{
		ApplicationID:       m.ApplicationID,
		CampaignID:          m.CampaignID,
		CreatorID:           m.CreatorID,
		Status:              entities.ApplicationStatus(m.Status),
		RejectionReasonCode: m.RejectionReasonCode,
		RejectionNote:       m.RejectionNote,
		DecidedByID:         m.DecidedByID,
		DecidedAt:           utcPtr(m.DecidedAt),
		CreatedAt:           m.CreatedAt.UTC(),
		UpdatedAt:           m.UpdatedAt.UTC(),
	}
}

type addressModel struct {
	AddressID  string `gorm:"column:address_id;primaryKey"`
	CreatorID  string `gorm:"column:creator_id;index"`
	Recipient  string `gorm:"column:recipient"`
	Line1      string `gorm:"column:line1"`
	Line2      string `gorm:"column:line2"`
	City       string `gorm:"column:city"`
	Region     string `gorm:"column:region"`
	PostalCode string `gorm:"column:postal_code"`
	Country    string `gorm:"column:country"`
}

func (addressModel) TableName() string {
	return "creator_addresses"
}

func (m addressModel) toEntity() entities.Address {
	return entities.Address{
		AddressID:  m.AddressID,
		CreatorID:  m.CreatorID,
		Recipient:  m.Recipient,
		Line1:      m.Line1,
		Line2:      m.Line2,
		City:       m.City,
		Region:     m.Region,
		PostalCode: m.PostalCode,
		Country:    m.Country,
	}
}

type taskModel struct {
	TaskID          string     `gorm:"column:task_id;primaryKey"`
	ApplicationID   string     `gorm:"column:application_id;uniqueIndex:fulfillment_tasks_unique_application"`
	CampaignID      string     `gorm:"column:campaign_id;index:fulfillment_tasks_campaign_creator"`
	CreatorID       string     `gorm:"column:creator_id;index:fulfillment_tasks_campaign_creator"`
	Status          string     `gorm:"column:status"`
	RequiresProduct bool       `gorm:"column:requires_product"`
	PaymentAmount   float64    `gorm:"column:payment_amount"`
	DueAt           *time.Time `gorm:"column:due_at"`
	DisputeReason   string     `gorm:"column:dispute_reason"`
	StartedAt       *time.Time `gorm:"column:started_at"`
	SubmittedAt     *time.Time `gorm:"column:submitted_at"`
	ApprovedAt      *time.Time `gorm:"column:approved_at"`
	PaidAt          *time.Time `gorm:"column:paid_at"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (taskModel) TableName() string {
	return "fulfillment_tasks"
}

func taskModelFromEntity(item entities.Task) taskModel {
	return taskModel{
		TaskID:          item.TaskID,
		ApplicationID:   item.ApplicationID,
		CampaignID:      item.CampaignID,
		CreatorID:       item.CreatorID,
		Status:          string(item.Status),
		RequiresProduct: item.RequiresProduct,
		PaymentAmount:   item.PaymentAmount,
		DueAt:           utcPtr(item.DueAt),
		DisputeReason:   item.DisputeReason,
		StartedAt:       utcPtr(item.StartedAt),
		SubmittedAt:     utcPtr(item.SubmittedAt),
		ApprovedAt:      utcPtr(item.ApprovedAt),
		PaidAt:          utcPtr(item.PaidAt),
		CreatedAt:       item.CreatedAt.UTC(),
		UpdatedAt:       item.UpdatedAt.UTC(),
	}
}

func (m taskModel) toEntity() entities.Task {
	return entities.Task{
		TaskID:          m.TaskID,
		ApplicationID:   m.ApplicationID,
		CampaignID:      m.CampaignID,
		CreatorID:       m.CreatorID,
		Status:          entities.TaskStatus(m.Status),
		RequiresProduct: m.RequiresProduct,
		PaymentAmount:   m.PaymentAmount,
		DueAt:           utcPtr(m.DueAt),
		DisputeReason:   m.DisputeReason,
		StartedAt:       utcPtr(m.StartedAt),
		SubmittedAt:     utcPtr(m.SubmittedAt),
		ApprovedAt:      utcPtr(m.ApprovedAt),
		PaidAt:          utcPtr(m.PaidAt),
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

type shipmentModel struct {
	ShipmentRequestID string     `gorm:"column:shipment_request_id;primaryKey"`
	CampaignID        string     `gorm:"column:campaign_id;uniqueIndex:shipment_requests_unique_pair"`
	CreatorID         string     `gorm:"column:creator_id;uniqueIndex:shipment_requests_unique_pair"`
	Status            string     `gorm:"column:status"`
	AddressID         string     `gorm:"column:address_id"`
	TrackingNumber    string     `gorm:"column:tracking_number"`
	Carrier           string     `gorm:"column:carrier"`
	IssueReason       string     `gorm:"column:issue_reason"`
	IssueNote         string     `gorm:"column:issue_note"`
	ShippedAt         *time.Time `gorm:"column:shipped_at"`
	DeliveredAt       *time.Time `gorm:"column:delivered_at"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

func (shipmentModel) TableName() string {
	return "shipment_requests"
}

func shipmentModelFromEntity(item entities.ShipmentRequest) shipmentModel {
	return shipmentModel{
		ShipmentRequestID: item.ShipmentRequestID,
		CampaignID:        item.CampaignID,
		CreatorID:         item.CreatorID,
		Status:            string(item.Status),
		AddressID:         item.AddressID,
		TrackingNumber:    item.TrackingNumber,
		Carrier:           item.Carrier,
		IssueReason:       item.IssueReason,
		IssueNote:         item.IssueNote,
		ShippedAt:         utcPtr(item.ShippedAt),
		DeliveredAt:       utcPtr(item.DeliveredAt),
		CreatedAt:         item.CreatedAt.UTC(),
		UpdatedAt:         item.UpdatedAt.UTC(),
	}
}

func (m shipmentModel) toEntity() entities.ShipmentRequest {
	return entities.ShipmentRequest{
		ShipmentRequestID: m.ShipmentRequestID,
		CampaignID:        m.CampaignID,
		CreatorID:         m.CreatorID,
		Status:            entities.ShipmentStatus(m.Status),
		AddressID:         m.AddressID,
		TrackingNumber:    m.TrackingNumber,
		Carrier:           m.Carrier,
		IssueReason:       m.IssueReason,
		IssueNote:         m.IssueNote,
		ShippedAt:         utcPtr(m.ShippedAt),
		DeliveredAt:       utcPtr(m.DeliveredAt),
		CreatedAt:         m.CreatedAt.UTC(),
		UpdatedAt:         m.UpdatedAt.UTC(),
	}
}

type uploadModel struct {
	UploadID        string    `gorm:"column:upload_id;primaryKey"`
	TaskID          string    `gorm:"column:task_id;index"`
	StorageRef      string    `gorm:"column:storage_ref"`
	FileName        string    `gorm:"column:file_name"`
	ContentType     string    `gorm:"column:content_type"`
	SizeBytes       int64     `gorm:"column:size_bytes"`
	DeliverableType string    `gorm:"column:deliverable_type"`
	Status          string    `gorm:"column:status"`
	UploadedByID    string    `gorm:"column:uploaded_by_id"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (uploadModel) TableName() string {
	return "content_uploads"
}

func (m uploadModel) toEntity() entities.Upload {
	return entities.Upload{
		UploadID:        m.UploadID,
		TaskID:          m.TaskID,
		StorageRef:      m.StorageRef,
		FileName:        m.FileName,
		ContentType:     m.ContentType,
		SizeBytes:       m.SizeBytes,
		DeliverableType: m.DeliverableType,
		Status:          entities.UploadStatus(m.Status),
		UploadedByID:    m.UploadedByID,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

type revisionModel struct {
	RevisionRequestID string     `gorm:"column:revision_request_id;primaryKey"`
	TaskID            string     `gorm:"column:task_id;index"`
	Tags              string     `gorm:"column:tags"`
	Note              string     `gorm:"column:note"`
	Status            string     `gorm:"column:status"`
	RequestedByID     string     `gorm:"column:requested_by_id"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	ResolvedAt        *time.Time `gorm:"column:resolved_at"`
}

func (revisionModel) TableName() string {
	return "content_revision_requests"
}

func (m revisionModel) toEntity() entities.RevisionRequest {
	var tags []string
	_ = json.Unmarshal([]byte(m.Tags), &tags)
	return entities.RevisionRequest{
		RevisionRequestID: m.RevisionRequestID,
		TaskID:            m.TaskID,
		Tags:              tags,
		Note:              m.Note,
		Status:            entities.RevisionStatus(m.Status),
		RequestedByID:     m.RequestedByID,
		CreatedAt:         m.CreatedAt.UTC(),
		ResolvedAt:        utcPtr(m.ResolvedAt),
	}
}

type ratingModel struct {
	RatingID      string    `gorm:"column:rating_id;primaryKey"`
	TaskID        string    `gorm:"column:task_id;uniqueIndex:content_ratings_unique_task"`
	CreatorID     string    `gorm:"column:creator_id;index"`
	Quality       int       `gorm:"column:quality"`
	Timeliness    int       `gorm:"column:timeliness"`
	Communication int       `gorm:"column:communication"`
	RatedByID     string    `gorm:"column:rated_by_id"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (ratingModel) TableName() string {
	return "content_ratings"
}

type approvalModel struct {
	ApprovalID   string    `gorm:"column:approval_id;primaryKey"`
	TaskID       string    `gorm:"column:task_id;uniqueIndex:content_approvals_unique_task"`
	ApprovedByID string    `gorm:"column:approved_by_id"`
	Note         string    `gorm:"column:note"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (approvalModel) TableName() string {
	return "content_approvals"
}

type paymentModel struct {
	PaymentID  string     `gorm:"column:payment_id;primaryKey"`
	TaskID     string     `gorm:"column:task_id;uniqueIndex:creator_payments_unique_task"`
	CreatorID  string     `gorm:"column:creator_id;index"`
	CampaignID string     `gorm:"column:campaign_id"`
	Amount     float64    `gorm:"column:amount"`
	Status     string     `gorm:"column:status;index"`
	InvoiceURL string     `gorm:"column:invoice_url"`
	BatchID    string     `gorm:"column:batch_id"`
	PaidAt     *time.Time `gorm:"column:paid_at"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
}

func (paymentModel) TableName() string {
	return "creator_payments"
}

func paymentModelFromEntity(item entities.Payment) paymentModel {
	return paymentModel{
		PaymentID:  item.PaymentID,
		TaskID:     item.TaskID,
		CreatorID:  item.CreatorID,
		CampaignID: item.CampaignID,
		Amount:     item.Amount,
		Status:     string(item.Status),
		InvoiceURL: item.InvoiceURL,
		BatchID:    item.BatchID,
		PaidAt:     utcPtr(item.PaidAt),
		CreatedAt:  item.CreatedAt.UTC(),
		UpdatedAt:  item.UpdatedAt.UTC(),
	}
}

func (m paymentModel) toEntity() entities.Payment {
	return entities.Payment{
		PaymentID:  m.PaymentID,
		TaskID:     m.TaskID,
		CreatorID:  m.CreatorID,
		CampaignID: m.CampaignID,
		Amount:     m.Amount,
		Status:     entities.PaymentStatus(m.Status),
		InvoiceURL: m.InvoiceURL,
		BatchID:    m.BatchID,
		PaidAt:     utcPtr(m.PaidAt),
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}

type batchPayoutModel struct {
	BatchID     string     `gorm:"column:batch_id;primaryKey"`
	PaymentIDs  string     `gorm:"column:payment_ids"`
	TotalAmount float64    `gorm:"column:total_amount"`
	Status      string     `gorm:"column:status"`
	Notes       string     `gorm:"column:notes"`
	CreatedByID string     `gorm:"column:created_by_id"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	ExecutedAt  *time.Time `gorm:"column:executed_at"`
}

func (batchPayoutModel) TableName() string {
	return "batch_payouts"
}

func (m batchPayoutModel) toEntity() entities.BatchPayout {
	var ids []string
	_ = json.Unmarshal([]byte(m.PaymentIDs), &ids)
	return entities.BatchPayout{
		BatchID:     m.BatchID,
		PaymentIDs:  ids,
		TotalAmount: m.TotalAmount,
		Status:      entities.BatchPayoutStatus(m.Status),
		Notes:       m.Notes,
		CreatedByID: m.CreatedByID,
		CreatedAt:   m.CreatedAt.UTC(),
		ExecutedAt:  utcPtr(m.ExecutedAt),
	}
}

type auditModel struct {
	EntryID   string    `gorm:"column:entry_id;primaryKey"`
	ActorID   string    `gorm:"column:actor_id;index"`
	ActorRole string    `gorm:"column:actor_role"`
	Action    string    `gorm:"column:action"`
	Entity    string    `gorm:"column:entity"`
	EntityID  string    `gorm:"column:entity_id;index"`
	Metadata  string    `gorm:"column:metadata"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (auditModel) TableName() string {
	return "fulfillment_audit_log"
}

type idempotencyModel struct {
	Key             string    `gorm:"column:idempotency_key;primaryKey"`
	RequestHash     string    `gorm:"column:request_hash"`
	ResponsePayload []byte    `gorm:"column:response_payload"`
	ExpiresAt       time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "fulfillment_idempotency"
}

func idempotencyModelFromPort(record ports.IdempotencyRecord) idempotencyModel {
	return idempotencyModel{
		Key:             record.Key,
		RequestHash:     record.RequestHash,
		ResponsePayload: append([]byte(nil), record.ResponsePayload...),
		ExpiresAt:       record.ExpiresAt.UTC(),
	}
}

func (m idempotencyModel) toPort() ports.IdempotencyRecord {
	return ports.IdempotencyRecord{
		Key:             m.Key,
		RequestHash:     m.RequestHash,
		ResponsePayload: append([]byte(nil), m.ResponsePayload...),
		ExpiresAt:       m.ExpiresAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	Topic        string     `gorm:"column:topic"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index"`
	Sequence     int64      `gorm:"column:sequence;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	SentAt       *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string {
	return "fulfillment_outbox"
}

func (m outboxModel) toPort() ports.OutboxMessage {
	return ports.OutboxMessage{
		OutboxID:     m.OutboxID,
		Topic:        m.Topic,
		EventType:    m.EventType,
		PartitionKey: m.PartitionKey,
		Payload:      append([]byte(nil), m.Payload...),
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

type eventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (eventDedupModel) TableName() string {
	return "fulfillment_event_dedup"
}

func allModels() []any {
	return []any{
		&campaignModel{},
		&productModel{},
		&applicationModel{},
		&addressModel{},
		&taskModel{},
		&shipmentModel{},
		&uploadModel{},
		&revisionModel{},
		&ratingModel{},
		&approvalModel{},
		&paymentModel{},
		&batchPayoutModel{},
		&auditModel{},
		&idempotencyModel{},
		&outboxModel{},
		&eventDedupModel{},
	}
}

func utcPtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	utc := value.UTC()
	return &utc
}
