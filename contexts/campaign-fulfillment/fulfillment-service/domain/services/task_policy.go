package services

import (
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"
)

var taskTransitions = map[entities.TaskStatus][]entities.TaskStatus{
	entities.TaskStatusSelected:     {entities.TaskStatusInProduction},
	entities.TaskStatusInProduction: {entities.TaskStatusUploaded},
	entities.TaskStatusNeedsEdits:   {entities.TaskStatusUploaded},
	entities.TaskStatusUploaded:     {entities.TaskStatusNeedsEdits, entities.TaskStatusApproved},
	entities.TaskStatusApproved:     {entities.TaskStatusPaid},
}

// CanTransitionTask reports whether the task state machine allows from -> to.
// Disputed is reachable from every non-terminal state.
func CanTransitionTask(from entities.TaskStatus, to entities.TaskStatus) bool {
	if from == entities.TaskStatusPaid || from == entities.TaskStatusDisputed {
		return false
	}
	if to == entities.TaskStatusDisputed {
		return entities.IsSupportedTaskStatus(from)
	}
	for _, allowed := range taskTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func ValidateTaskTransition(from entities.TaskStatus, to entities.TaskStatus) error {
	if !CanTransitionTask(from, to) {
		return domainerrors.ErrInvalidTaskTransition
	}
	return nil
}

// EnsureShipmentDelivered guards product-dependent task steps.
func EnsureShipmentDelivered(task entities.Task, shipment entities.ShipmentStatus) error {
	if !task.RequiresProduct || shipment == entities.ShipmentStatusDelivered {
		return nil
	}
	return &domainerrors.ShipmentNotDeliveredError{
		TaskID:         task.TaskID,
		ShipmentStatus: string(shipment),
	}
}
