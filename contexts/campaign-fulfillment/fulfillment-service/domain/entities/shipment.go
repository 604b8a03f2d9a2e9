package entities

import "time"

type ShipmentStatus string

const (
	ShipmentStatusNotRequested    ShipmentStatus = "not_requested"
	ShipmentStatusWaitingAddress  ShipmentStatus = "waiting_address"
	ShipmentStatusAddressReceived ShipmentStatus = "address_received"
	ShipmentStatusShipped         ShipmentStatus = "shipped"
	ShipmentStatusDelivered       ShipmentStatus = "delivered"
	ShipmentStatusIssue           ShipmentStatus = "issue"
)

// ShipmentRequest tracks physical product delivery for one
// (campaign, creator) pair.
type ShipmentRequest struct {
	ShipmentRequestID string
	CampaignID        string
	CreatorID         string
	Status            ShipmentStatus
	AddressID         string
	TrackingNumber    string
	Carrier           string
	IssueReason       string
	IssueNote         string
	ShippedAt         *time.Time
	DeliveredAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Address is read from the creator address directory.
type Address struct {
	AddressID  string
	CreatorID  string
	Recipient  string
	Line1      string
	Line2      string
	City       string
	Region     string
	PostalCode string
	Country    string
}
