package services

import (
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"
)

var shipmentTransitions = map[entities.ShipmentStatus]entities.ShipmentStatus{
	entities.ShipmentStatusNotRequested:    entities.ShipmentStatusWaitingAddress,
	entities.ShipmentStatusWaitingAddress:  entities.ShipmentStatusAddressReceived,
	entities.ShipmentStatusAddressReceived: entities.ShipmentStatusShipped,
	entities.ShipmentStatusShipped:         entities.ShipmentStatusDelivered,
}

// CanTransitionShipment allows the linear delivery path plus issue from any
// state. Issue has no exit.
func CanTransitionShipment(from entities.ShipmentStatus, to entities.ShipmentStatus) bool {
	if from == entities.ShipmentStatusIssue {
		return false
	}
	if to == entities.ShipmentStatusIssue {
		return true
	}
	next, ok := shipmentTransitions[from]
	return ok && next == to
}

func ValidateShipmentTransition(from entities.ShipmentStatus, to entities.ShipmentStatus) error {
	if !CanTransitionShipment(from, to) {
		return domainerrors.ErrInvalidShipmentTransition
	}
	return nil
}
