package errors

import "errors"

// Category sentinels. Every specific error below unwraps to exactly one of
// them so transports can map by errors.Is on the category.
var (
	ErrValidation        = errors.New("validation failed")
	ErrPrecondition      = errors.New("precondition failed")
	ErrNotFound          = errors.New("not found")
	ErrConfiguration     = errors.New("configuration error")
	ErrUnauthorizedActor = errors.New("actor is not authorized")
)

var (
	ErrApplicationNotFound = newError(ErrNotFound, "application not found")
	ErrCampaignNotFound    = newError(ErrNotFound, "campaign not found")
	ErrTaskNotFound        = newError(ErrNotFound, "task not found")
	ErrShipmentNotFound    = newError(ErrNotFound, "shipment request not found")
	ErrAddressNotFound     = newError(ErrNotFound, "address not found")
	ErrPaymentNotFound     = newError(ErrNotFound, "payment not found")
	ErrBatchNotFound       = newError(ErrNotFound, "batch payout not found")

	ErrInvalidInput         = newError(ErrValidation, "invalid input")
	ErrPriceRequired        = newError(ErrValidation, "a positive custom price or campaign fixed price is required")
	ErrReasonCodeRequired   = newError(ErrValidation, "rejection reason code is required")
	ErrNoteTooShort         = newError(ErrValidation, "note must be at least 10 characters")
	ErrRevisionTagsRequired = newError(ErrValidation, "at least one revision tag is required")
	ErrRatingOutOfRange     = newError(ErrValidation, "rating scores must be between 1 and 5")
	ErrNoUploadToApprove    = newError(ErrValidation, "task has no uploaded content")
	ErrFileTooLarge         = newError(ErrValidation, "file exceeds maximum upload size")
	ErrUnsupportedFileType  = newError(ErrValidation, "file type is not supported")
	ErrEmptyFile            = newError(ErrValidation, "file is empty")
	ErrPaymentIDsRequired   = newError(ErrValidation, "at least one payment id is required")

	ErrIdempotencyKeyConflict = newError(ErrValidation, "idempotency key reused with different request")

	ErrInvalidTaskTransition     = newError(ErrPrecondition, "invalid task status transition")
	ErrInvalidShipmentTransition = newError(ErrPrecondition, "invalid shipment status transition")
	ErrShipmentNotDelivered      = newError(ErrPrecondition, "product shipment has not been delivered")
	ErrNoUploadForRevision       = newError(ErrPrecondition, "revision requires an existing upload")
	ErrPaymentNotPending         = newError(ErrPrecondition, "payment is not pending")
	ErrTaskNotApproved           = newError(ErrPrecondition, "task is not approved")

	ErrPaymentAmountMissing = newError(ErrConfiguration, "task payment amount is not configured")

	ErrRepositoryInvariantBroke = errors.New("repository invariant violated")
	ErrTaskAlreadyExists        = errors.New("task already exists for application")
	ErrShipmentAlreadyExists    = errors.New("shipment request already exists for campaign creator")
	ErrPaymentAlreadyExists     = errors.New("payment already exists for task")
)

type classifiedError struct {
	category error
	message  string
}

func newError(category error, message string) error {
	return &classifiedError{category: category, message: message}
}

func (e *classifiedError) Error() string {
	return e.message
}

func (e *classifiedError) Unwrap() error {
	return e.category
}

// ShipmentNotDeliveredError reports the shipment state that blocked a task
// step so callers can show what is still outstanding.
type ShipmentNotDeliveredError struct {
	TaskID         string
	ShipmentStatus string
}

func (e *ShipmentNotDeliveredError) Error() string {
	return ErrShipmentNotDelivered.Error() + " (current status: " + e.ShipmentStatus + ")"
}

func (e *ShipmentNotDeliveredError) Unwrap() error {
	return ErrShipmentNotDelivered
}
