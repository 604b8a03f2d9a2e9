package httpserver

import (
	"errors"
	"net/http"

	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"
	httptransport "creatorflow/contexts/campaign-fulfillment/fulfillment-service/transport/http"
)

func writeError(w http.ResponseWriter, status int, code string, message string, details map[string]string) {
	writeJSON(w, status, httptransport.ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// writeDomainError maps error categories onto status codes. Specific errors
// are matched before their category.
func writeDomainError(w http.ResponseWriter, err error) {
	var notDelivered *domainerrors.ShipmentNotDeliveredError
	switch {
	case errors.As(err, &notDelivered):
		writeError(w, http.StatusConflict, "shipment_not_delivered", err.Error(), map[string]string{
			"task_id":         notDelivered.TaskID,
			"shipment_status": notDelivered.ShipmentStatus,
		})
	case errors.Is(err, domainerrors.ErrIdempotencyKeyConflict):
		writeError(w, http.StatusConflict, "idempotency_conflict", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrUnauthorizedActor):
		writeError(w, http.StatusForbidden, "forbidden", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrPrecondition):
		writeError(w, http.StatusConflict, "precondition_failed", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrConfiguration):
		writeError(w, http.StatusUnprocessableEntity, "configuration_error", err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}
