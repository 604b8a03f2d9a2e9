package v1

// Topics carry one entity family each. Delivery is at-least-once and
// unordered across topics; consumers dedupe on EventID.
const (
	TopicApplication = "fulfillment.application"
	TopicTask        = "fulfillment.task"
	TopicShipment    = "fulfillment.shipment"
	TopicContent     = "fulfillment.content"
	TopicPayment     = "fulfillment.payment"
	TopicBatchPayout = "fulfillment.batch_payout"

	TopicProductAdded = "catalog.product_added"
)

const (
	EventApplicationApproved = "fulfillment.application.approved"
	EventApplicationRejected = "fulfillment.application.rejected"

	EventTaskCreated       = "fulfillment.task.created"
	EventTaskStatusChanged = "fulfillment.task.status_changed"
	EventTaskProductLinked = "fulfillment.task.product_required"

	EventShipmentRequested     = "fulfillment.shipment.requested"
	EventShipmentStatusChanged = "fulfillment.shipment.status_changed"

	EventContentUploaded          = "fulfillment.content.uploaded"
	EventContentRevisionRequested = "fulfillment.content.revision_requested"
	EventContentApproved          = "fulfillment.content.approved"

	EventPaymentCreated = "fulfillment.payment.created"
	EventPaymentPaid    = "fulfillment.payment.paid"

	EventBatchPayoutExecuted = "fulfillment.batch_payout.executed"

	EventProductAdded = "catalog.product_added"
)

// FulfillmentTopics lists every outbound topic, in relay order.
func FulfillmentTopics() []string {
	return []string{
		TopicApplication,
		TopicTask,
		TopicShipment,
		TopicContent,
		TopicPayment,
		TopicBatchPayout,
	}
}

// EntityChange is the payload of every fulfillment.* event. Consumers are
// expected to re-fetch the entity rather than apply the change as a delta.
type EntityChange struct {
	EntityType     string         `json:"entity_type"`
	EntityID       string         `json:"entity_id"`
	CampaignID     string         `json:"campaign_id,omitempty"`
	CreatorID      string         `json:"creator_id,omitempty"`
	Status         string         `json:"status,omitempty"`
	PreviousStatus string         `json:"previous_status,omitempty"`
	ActorID        string         `json:"actor_id,omitempty"`
	Attributes     map[string]any `json:"attributes,omitempty"`
}

// ProductAdded is published by the campaign catalog when a product is
// attached to a campaign.
type ProductAdded struct {
	CampaignID string `json:"campaign_id"`
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
}
