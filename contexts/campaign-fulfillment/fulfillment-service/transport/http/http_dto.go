package httptransport

import (
	"io"
	"time"
)

type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type ApproveApplicationRequest struct {
	CustomPrice *float64 `json:"custom_price,omitempty"`
}

type ApproveApplicationResponse struct {
	TaskID            string  `json:"task_id"`
	PaymentAmount     float64 `json:"payment_amount"`
	ShipmentRequestID string  `json:"shipment_request_id,omitempty"`
	TaskCreated       bool    `json:"task_created"`
	Replayed          bool    `json:"replayed"`
}

type RejectApplicationRequest struct {
	ReasonCode string `json:"reason_code"`
	Note       string `json:"note"`
}

type ApplicationDTO struct {
	ApplicationID       string     `json:"application_id"`
	CampaignID          string     `json:"campaign_id"`
	CreatorID           string     `json:"creator_id"`
	Status              string     `json:"status"`
	RejectionReasonCode string     `json:"rejection_reason_code,omitempty"`
	RejectionNote       string     `json:"rejection_note,omitempty"`
	DecidedAt           *time.Time `json:"decided_at,omitempty"`
}

type RejectApplicationResponse struct {
	Application ApplicationDTO `json:"application"`
}

type AddProductRequest struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
}

type AddProductResponse struct {
	ProductCreated   bool     `json:"product_created"`
	ShipmentsCreated []string `json:"shipments_created"`
	TasksUpdated     []string `json:"tasks_updated"`
}

type ShipmentDTO struct {
	ShipmentRequestID string     `json:"shipment_request_id"`
	CampaignID        string     `json:"campaign_id"`
	CreatorID         string     `json:"creator_id"`
	Status            string     `json:"status"`
	AddressID         string     `json:"address_id,omitempty"`
	TrackingNumber    string     `json:"tracking_number,omitempty"`
	Carrier           string     `json:"carrier,omitempty"`
	IssueReason       string     `json:"issue_reason,omitempty"`
	IssueNote         string     `json:"issue_note,omitempty"`
	ShippedAt         *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt       *time.Time `json:"delivered_at,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type ShipmentResponse struct {
	Shipment ShipmentDTO `json:"shipment"`
}

type ShipmentStatusResponse struct {
	CampaignID string       `json:"campaign_id"`
	CreatorID  string       `json:"creator_id"`
	Status     string       `json:"status"`
	Shipment   *ShipmentDTO `json:"shipment,omitempty"`
}

type SubmitAddressRequest struct {
	AddressID string `json:"address_id"`
}

type MarkShippedRequest struct {
	TrackingNumber string `json:"tracking_number,omitempty"`
	Carrier        string `json:"carrier,omitempty"`
}

type FlagIssueRequest struct {
	Reason string `json:"reason"`
	Note   string `json:"note"`
}

type TaskDTO struct {
	TaskID          string     `json:"task_id"`
	ApplicationID   string     `json:"application_id"`
	CampaignID      string     `json:"campaign_id"`
	CreatorID       string     `json:"creator_id"`
	Status          string     `json:"status"`
	RequiresProduct bool       `json:"requires_product"`
	PaymentAmount   float64    `json:"payment_amount"`
	DueAt           *time.Time `json:"due_at,omitempty"`
	DisputeReason   string     `json:"dispute_reason,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type TaskResponse struct {
	Task TaskDTO `json:"task"`
}

type UploadDTO struct {
	UploadID        string    `json:"upload_id"`
	StorageRef      string    `json:"storage_ref"`
	FileName        string    `json:"file_name"`
	ContentType     string    `json:"content_type"`
	SizeBytes       int64     `json:"size_bytes"`
	DeliverableType string    `json:"deliverable_type,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

type RevisionDTO struct {
	RevisionRequestID string     `json:"revision_request_id"`
	Tags              []string   `json:"tags"`
	Note              string     `json:"note"`
	Status            string     `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
}

type TaskDetailResponse struct {
	Task           TaskDTO       `json:"task"`
	ShipmentStatus string        `json:"shipment_status"`
	Uploads        []UploadDTO   `json:"uploads"`
	Revisions      []RevisionDTO `json:"revisions"`
	Payment        *PaymentDTO   `json:"payment,omitempty"`
}

type CanTransitionResponse struct {
	TaskID  string `json:"task_id"`
	Target  string `json:"target"`
	Allowed bool   `json:"allowed"`
}

type OpenDisputeRequest struct {
	Reason string `json:"reason"`
}

type UploadContentResponse struct {
	UploadID   string `json:"upload_id"`
	TaskStatus string `json:"task_status"`
}

type RequestRevisionRequest struct {
	Tags []string `json:"tags"`
	Note string   `json:"note"`
}

type RequestRevisionResponse struct {
	RevisionRequestID string `json:"revision_request_id"`
	TaskStatus        string `json:"task_status"`
}

type RatingDTO struct {
	Quality       int `json:"quality"`
	Timeliness    int `json:"timeliness"`
	Communication int `json:"communication"`
}

type ApproveContentRequest struct {
	Rating RatingDTO `json:"rating"`
	Note   string    `json:"note,omitempty"`
}

type ApproveContentResponse struct {
	PaymentID string  `json:"payment_id"`
	RatingID  string  `json:"rating_id"`
	Amount    float64 `json:"amount"`
	Replayed  bool    `json:"replayed"`
}

type PaymentDTO struct {
	PaymentID  string     `json:"payment_id"`
	TaskID     string     `json:"task_id"`
	CreatorID  string     `json:"creator_id"`
	CampaignID string     `json:"campaign_id"`
	Amount     float64    `json:"amount"`
	Status     string     `json:"status"`
	InvoiceURL string     `json:"invoice_url,omitempty"`
	BatchID    string     `json:"batch_id,omitempty"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type ListPaymentsResponse struct {
	Items []PaymentDTO `json:"items"`
}

type MarkPaidRequest struct {
	InvoiceURL string `json:"invoice_url,omitempty"`
}

type MarkPaidResponse struct {
	Payment     PaymentDTO `json:"payment"`
	AlreadyPaid bool       `json:"already_paid"`
}

type CreateBatchPayoutRequest struct {
	PaymentIDs []string `json:"payment_ids"`
	Notes      string   `json:"notes,omitempty"`
}

type CreateBatchPayoutResponse struct {
	BatchID     string   `json:"batch_id"`
	TotalAmount float64  `json:"total_amount"`
	PaymentIDs  []string `json:"payment_ids"`
	Status      string   `json:"status"`
	Replayed    bool     `json:"replayed"`
}

type BatchPayoutResponse struct {
	BatchID     string     `json:"batch_id"`
	PaymentIDs  []string   `json:"payment_ids"`
	TotalAmount float64    `json:"total_amount"`
	Status      string     `json:"status"`
	Notes       string     `json:"notes,omitempty"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	ExecutedAt  *time.Time `json:"executed_at,omitempty"`
}

// UploadContentRequest is built by the server from a multipart form.
type UploadContentRequest struct {
	FileName        string    `json:"-"`
	ContentType     string    `json:"-"`
	SizeBytes       int64     `json:"-"`
	Body            io.Reader `json:"-"`
	DeliverableType string    `json:"deliverable_type,omitempty"`
}
