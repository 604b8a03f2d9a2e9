package httpadapter

import (
	"context"
	"log/slog"

	application "creatorflow/contexts/campaign-fulfillment/fulfillment-service/application"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/application/commands"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/application/queries"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	httptransport "creatorflow/contexts/campaign-fulfillment/fulfillment-service/transport/http"
)

type Handler struct {
	ApproveApplication commands.ApproveApplicationUseCase
	RejectApplication  commands.RejectApplicationUseCase
	AddProduct         commands.AddProductUseCase
	SubmitAddress      commands.SubmitShipmentAddressUseCase
	MarkShipped        commands.MarkShippedUseCase
	ConfirmDelivery    commands.ConfirmDeliveryUseCase
	FlagIssue          commands.FlagShipmentIssueUseCase
	StartWork          commands.StartWorkUseCase
	OpenDispute        commands.OpenDisputeUseCase
	UploadContent      commands.UploadContentUseCase
	RequestRevision    commands.RequestRevisionUseCase
	ApproveContent     commands.ApproveContentUseCase
	MarkPaid           commands.MarkPaidUseCase
	CreateBatchPayout  commands.CreateBatchPayoutUseCase
	ShipmentStatus     queries.ShipmentStatusUseCase
	Tasks              queries.TaskQueryUseCase
	Payments           queries.PaymentQueryUseCase
	Logger             *slog.Logger
}

// ApproveApplicationHandler godoc
// @Summary Approve a creator application
// @Description Creates or reuses the creator task and ensures a shipment request when the campaign has products.
// @Tags campaign-fulfillment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Idempotency key"
// @Param application_id path string true "Application id"
// @Param request body httptransport.ApproveApplicationRequest false "Approval payload"
// @Success 200 {object} httptransport.ApproveApplicationResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /fulfillment/v1/applications/{application_id}/approve [post]
func (h Handler) ApproveApplicationHandler(
	ctx context.Context,
	actor entities.Actor,
	idempotencyKey string,
	applicationID string,
	req httptransport.ApproveApplicationRequest,
) (httptransport.ApproveApplicationResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("approve application request received",
		"event", "http_approve_application_received",
		"module", application.ModuleName,
		"layer", "transport",
		"application_id", applicationID,
		"actor_id", actor.ActorID,
	)

	result, err := h.ApproveApplication.Execute(ctx, commands.ApproveApplicationCommand{
		Actor:          actor,
		ApplicationID:  applicationID,
		CustomPrice:    req.CustomPrice,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		logger.Error("approve application request failed",
			"event", "http_approve_application_failed",
			"module", application.ModuleName,
			"layer", "transport",
			"application_id", applicationID,
			"error", err.Error(),
		)
		return httptransport.ApproveApplicationResponse{}, err
	}
	return httptransport.ApproveApplicationResponse{
		TaskID:            result.TaskID,
		PaymentAmount:     result.PaymentAmount,
		ShipmentRequestID: result.ShipmentRequestID,
		TaskCreated:       result.TaskCreated,
		Replayed:          result.Replayed,
	}, nil
}

// RejectApplicationHandler godoc
// @Summary Reject a creator application
// @Description Records the rejection with a reason code and feedback note.
// @Tags campaign-fulfillment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param application_id path string true "Application id"
// @Param request body httptransport.RejectApplicationRequest true "Rejection payload"
// @Success 200 {object} httptransport.RejectApplicationResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /fulfillment/v1/applications/{application_id}/reject [post]
func (h Handler) RejectApplicationHandler(
	ctx context.Context,
	actor entities.Actor,
	applicationID string,
	req httptransport.RejectApplicationRequest,
) (httptransport.RejectApplicationResponse, error) {
	result, err := h.RejectApplication.Execute(ctx, commands.RejectApplicationCommand{
		Actor:         actor,
		ApplicationID: applicationID,
		ReasonCode:    req.ReasonCode,
		Note:          req.Note,
	})
	if err != nil {
		return httptransport.RejectApplicationResponse{}, err
	}
	return httptransport.RejectApplicationResponse{Application: mapApplication(result.Application)}, nil
}

// AddProductHandler godoc
// @Summary Add a product to a campaign
// @Description Registers a product and backfills shipment requests when it is the first product.
// @Tags campaign-fulfillment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param campaign_id path string true "Campaign id"
// @Param request body httptransport.AddProductRequest true "Product payload"
// @Success 200 {object} httptransport.AddProductResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /fulfillment/v1/campaigns/{campaign_id}/products [post]
func (h Handler) AddProductHandler(
	ctx context.Context,
	actor entities.Actor,
	campaignID string,
	req httptransport.AddProductRequest,
) (httptransport.AddProductResponse, error) {
	result, err := h.AddProduct.Execute(ctx, commands.AddProductCommand{
		Actor:      actor,
		CampaignID: campaignID,
		ProductID:  req.ProductID,
		Name:       req.Name,
	})
	if err != nil {
		return httptransport.AddProductResponse{}, err
	}
	return httptransport.AddProductResponse{
		ProductCreated:   result.ProductCreated,
		ShipmentsCreated: nonNil(result.ShipmentsCreated),
		TasksUpdated:     nonNil(result.TasksUpdated),
	}, nil
}

// GetShipmentStatusHandler godoc
// @Summary Get shipment status
// @Description Returns the shipment status for a campaign and creator pair.
// @Tags campaign-fulfillment
// @Produce json
// @Security BearerAuth
// @Param campaign_id query string true "Campaign id"
// @Param creator_id query string true "Creator id"
// @Success 200 {object} httptransport.ShipmentStatusResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /fulfillment/v1/shipments/status [get]
func (h Handler) GetShipmentStatusHandler(
	ctx context.Context,
	actor entities.Actor,
	campaignID string,
	creatorID string,
) (httptransport.ShipmentStatusResponse, error) {
	result, err := h.ShipmentStatus.Execute(ctx, queries.GetShipmentStatusQuery{
		Actor:      actor,
		CampaignID: campaignID,
		CreatorID:  creatorID,
	})
	if err != nil {
		return httptransport.ShipmentStatusResponse{}, err
	}
	response := httptransport.ShipmentStatusResponse{
		CampaignID: campaignID,
		CreatorID:  creatorID,
		Status:     string(result.Status),
	}
	if result.Shipment != nil {
		item := mapShipment(*result.Shipment)
		response.Shipment = &item
	}
	return response, nil
}

// SubmitAddressHandler godoc
// @Summary Submit a shipping address
// @Description Attaches one of the creator's saved addresses to the shipment request.
// @Tags campaign-fulfillment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param shipment_id path string true "Shipment request id"
// @Param request body httptransport.SubmitAddressRequest true "Address payload"
// @Success 200 {object} httptransport.ShipmentResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /fulfillment/v1/shipments/{shipment_id}/address [post]
func (h Handler) SubmitAddressHandler(
	ctx context.Context,
	actor entities.Actor,
	shipmentID string,
	req httptransport.SubmitAddressRequest,
) (httptransport.ShipmentResponse, error) {
	result, err := h.SubmitAddress.Execute(ctx, commands.SubmitShipmentAddressCommand{
		Actor:             actor,
		ShipmentRequestID: shipmentID,
		AddressID:         req.AddressID,
	})
	if err != nil {
		return httptransport.ShipmentResponse{}, err
	}
	return httptransport.ShipmentResponse{Shipment: mapShipment(result.Shipment)}, nil
}

// MarkShippedHandler godoc
// @Summary Mark a shipment shipped
// @Tags campaign-fulfillment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param shipment_id path string true "Shipment request id"
// @Param request body httptransport.MarkShippedRequest false "Tracking payload"
// @Success 200 {object} httptransport.ShipmentResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /fulfillment/v1/shipments/{shipment_id}/ship [post]
func (h Handler) MarkShippedHandler(
	ctx context.Context,
	actor entities.Actor,
	shipmentID string,
	req httptransport.MarkShippedRequest,
) (httptransport.ShipmentResponse, error) {
	result, err := h.MarkShipped.Execute(ctx, commands.MarkShippedCommand{
		Actor:             actor,
		ShipmentRequestID: shipmentID,
		TrackingNumber:    req.TrackingNumber,
		Carrier:           req.Carrier,
	})
	if err != nil {
		return httptransport.ShipmentResponse{}, err
	}
	return httptransport.ShipmentResponse{Shipment: mapShipment(result.Shipment)}, nil
}

// ConfirmDeliveryHandler godoc
// @Summary Confirm shipment delivery
// @Tags campaign-fulfillment
// @Produce json
// @Security BearerAuth
// @Param shipment_id path string true "Shipment request id"
// @Success 200 {object} httptransport.ShipmentResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /fulfillment/v1/shipments/{shipment_id}/deliver [post]
func (h Handler) ConfirmDeliveryHandler(
	ctx context.Context,
	actor entities.Actor,
	shipmentID string,
) (httptransport.ShipmentResponse, error) {
	result, err := h.ConfirmDelivery.Execute(ctx, commands.ConfirmDeliveryCommand{
		Actor:             actor,
		ShipmentRequestID: shipmentID,
	})
	if err != nil {
		return httptransport.ShipmentResponse{}, err
	}
	return httptransport.ShipmentResponse{Shipment: mapShipment(result.Shipment)}, nil
}

// FlagIssueHandler godoc
// @Summary Flag a shipment issue
// @Tags campaign-fulfillment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param shipment_id path string true "Shipment request id"
// @Param request body httptransport.FlagIssueRequest true "Issue payload"
// @Success 200 {object} httptransport.ShipmentResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /fulfillment/v1/shipments/{shipment_id}/issue [post]
func (h Handler) FlagIssueHandler(
	ctx context.Context,
	actor entities.Actor,
	shipmentID string,
	req httptransport.FlagIssueRequest,
) (httptransport.ShipmentResponse, error) {
	result, err := h.FlagIssue.Execute(ctx, commands.FlagShipmentIssueCommand{
		Actor:             actor,
		ShipmentRequestID: shipmentID,
		Reason:            req.Reason,
		Note:              req.Note,
	})
	if err != nil {
		return httptransport.ShipmentResponse{}, err
	}
	return httptransport.ShipmentResponse{Shipment: mapShipment(result.Shipment)}, nil
}

// GetTaskHandler godoc
// @Summary Get task details
// @Description Returns the task with uploads, revision requests, shipment status and payment.
// @Tags campaign-fulfillment
// @Produce json
// @Security BearerAuth
// @Param task_id path string true "Task id"
// @Success 200 {object} httptransport.TaskDetailResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /fulfillment/v1/tasks/{task_id} [get]
func (h Handler) GetTaskHandler(ctx context.Context, actor entities.Actor, taskID string) (httptransport.TaskDetailResponse, error) {
	view, err := h.Tasks.GetTask(ctx, queries.GetTaskQuery{Actor: actor, TaskID: taskID})
	if err != nil {
		return httptransport.TaskDetailResponse{}, err
	}
	response := httptransport.TaskDetailResponse{
		Task:           mapTask(view.Task),
		ShipmentStatus: string(view.ShipmentStatus),
		Uploads:        make([]httptransport.UploadDTO, 0, len(view.Uploads)),
		Revisions:      make([]httptransport.RevisionDTO, 0, len(view.Revisions)),
	}
	for _, upload := range view.Uploads {
		response.Uploads = append(response.Uploads, mapUpload(upload))
	}
	for _, revision := range view.Revisions {
		response.Revisions = append(response.Revisions, mapRevision(revision))
	}
	if view.Payment != nil {
		payment := mapPayment(*view.Payment)
		response.Payment = &payment
	}
	return response, nil
}

// CanTransitionHandler godoc
// @Summary Check a task transition
// @Tags campaign-fulfillment
// @Produce json
// @Security BearerAuth
// @Param task_id path string true "Task id"
// @Param to query string true "Target status"
// @Success 200 {object} httptransport.CanTransitionResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /fulfillment/v1/tasks/{task_id}/can-transition [get]
func (h Handler) CanTransitionHandler(ctx context.Context, taskID string, target string) (httptransport.CanTransitionResponse, error) {
	allowed, err := h.Tasks.CanTransition(ctx, taskID, entities.TaskStatus(target))
	if err != nil {
		return httptransport.CanTransitionResponse{}, err
	}
	return httptransport.CanTransitionResponse{TaskID: taskID, Target: target, Allowed: allowed}, nil
}

// StartWorkHandler godoc
// @Summary Start work on a task
// @Description Moves a selected task into production once any required product is delivered.
// @Tags campaign-fulfillment
// @Produce json
// @Security BearerAuth
// @Param task_id path string true "Task id"
// @Success 200 {object} httptransport.TaskResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /fulfillment/v1/tasks/{task_id}/start [post]
func (h Handler) StartWorkHandler(ctx context.Context, actor entities.Actor, taskID string) (httptransport.TaskResponse, error) {
	result, err := h.StartWork.Execute(ctx, commands.StartWorkCommand{Actor: actor, TaskID: taskID})
	if err != nil {
		return httptransport.TaskResponse{}, err
	}
	return httptransport.TaskResponse{Task: mapTask(result.Task)}, nil
}

// OpenDisputeHandler godoc
// @Summary Open a task dispute
// @Tags campaign-fulfillment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param task_id path string true "Task id"
// @Param request body httptransport.OpenDisputeRequest true "Dispute payload"
// @Success 200 {object} httptransport.TaskResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /fulfillment/v1/tasks/{task_id}/dispute [post]
func (h Handler) OpenDisputeHandler(
	ctx context.Context,
	actor entities.Actor,
	taskID string,
	req httptransport.OpenDisputeRequest,
) (httptransport.TaskResponse, error) {
	result, err := h.OpenDispute.Execute(ctx, commands.OpenDisputeCommand{Actor: actor, TaskID: taskID, Reason: req.Reason})
	if err != nil {
		return httptransport.TaskResponse{}, err
	}
	return httptransport.TaskResponse{Task: mapTask(result.Task)}, nil
}

// UploadContentHandler godoc
// @Summary Upload task content
// @Description Stores a deliverable file and moves the task to uploaded.
// @Tags campaign-fulfillment
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param task_id path string true "Task id"
// @Param file formData file true "Deliverable file"
// @Param deliverable_type formData string false "Deliverable type"
// @Success 200 {object} httptransport.UploadContentResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /fulfillment/v1/tasks/{task_id}/uploads [post]
func (h Handler) UploadContentHandler(
	ctx context.Context,
	actor entities.Actor,
	taskID string,
	req httptransport.UploadContentRequest,
) (httptransport.UploadContentResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	result, err := h.UploadContent.Execute(ctx, commands.UploadContentCommand{
		Actor:  actor,
		TaskID: taskID,
		File: entities.UploadFile{
			FileName:    req.FileName,
			ContentType: req.ContentType,
			SizeBytes:   req.SizeBytes,
			Body:        req.Body,
		},
		DeliverableType: req.DeliverableType,
	})
	if err != nil {
		logger.Warn("upload content request failed",
			"event", "http_upload_content_failed",
			"module", application.ModuleName,
			"layer", "transport",
			"task_id", taskID,
			"error", err.Error(),
		)
		return httptransport.UploadContentResponse{}, err
	}
	return httptransport.UploadContentResponse{
		UploadID:   result.Upload.UploadID,
		TaskStatus: string(result.Task.Status),
	}, nil
}

// RequestRevisionHandler godoc
// @Summary Request content revisions
// @Tags campaign-fulfillment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param task_id path string true "Task id"
// @Param request body httptransport.RequestRevisionRequest true "Revision payload"
// @Success 200 {object} httptransport.RequestRevisionResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /fulfillment/v1/tasks/{task_id}/revisions [post]
func (h Handler) RequestRevisionHandler(
	ctx context.Context,
	actor entities.Actor,
	taskID string,
	req httptransport.RequestRevisionRequest,
) (httptransport.RequestRevisionResponse, error) {
	result, err := h.RequestRevision.Execute(ctx, commands.RequestRevisionCommand{
		Actor:  actor,
		TaskID: taskID,
		Tags:   req.Tags,
		Note:   req.Note,
	})
	if err != nil {
		return httptransport.RequestRevisionResponse{}, err
	}
	return httptransport.RequestRevisionResponse{
		RevisionRequestID: result.Revision.RevisionRequestID,
		TaskStatus:        string(result.Task.Status),
	}, nil
}

// ApproveContentHandler godoc
// @Summary Approve task content
// @Description Rates the creator, approves uploads and creates the pending payment.
// @Tags campaign-fulfillment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Idempotency key"
// @Param task_id path string true "Task id"
// @Param request body httptransport.ApproveContentRequest true "Approval payload"
// @Success 200 {object} httptransport.ApproveContentResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /fulfillment/v1/tasks/{task_id}/approve [post]
func (h Handler) ApproveContentHandler(
	ctx context.Context,
	actor entities.Actor,
	idempotencyKey string,
	taskID string,
	req httptransport.ApproveContentRequest,
) (httptransport.ApproveContentResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	result, err := h.ApproveContent.Execute(ctx, commands.ApproveContentCommand{
		Actor:  actor,
		TaskID: taskID,
		Rating: entities.RatingScores{
			Quality:       req.Rating.Quality,
			Timeliness:    req.Rating.Timeliness,
			Communication: req.Rating.Communication,
		},
		Note:           req.Note,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		logger.Error("approve content request failed",
			"event", "http_approve_content_failed",
			"module", application.ModuleName,
			"layer", "transport",
			"task_id", taskID,
			"error", err.Error(),
		)
		return httptransport.ApproveContentResponse{}, err
	}
	return httptransport.ApproveContentResponse{
		PaymentID: result.PaymentID,
		RatingID:  result.RatingID,
		Amount:    result.Amount,
		Replayed:  result.Replayed,
	}, nil
}

// ListPaymentsHandler godoc
// @Summary List payments
// @Description Staff see every payment; creators see only their own.
// @Tags campaign-fulfillment
// @Produce json
// @Security BearerAuth
// @Param status query string false "Payment status"
// @Param creator_id query string false "Creator id"
// @Param limit query int false "Page size (max 500)"
// @Success 200 {object} httptransport.ListPaymentsResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /fulfillment/v1/payments [get]
func (h Handler) ListPaymentsHandler(
	ctx context.Context,
	actor entities.Actor,
	status string,
	creatorID string,
	limit int,
) (httptransport.ListPaymentsResponse, error) {
	items, err := h.Payments.ListPayments(ctx, queries.ListPaymentsQuery{
		Actor:     actor,
		Status:    entities.PaymentStatus(status),
		CreatorID: creatorID,
		Limit:     limit,
	})
	if err != nil {
		return httptransport.ListPaymentsResponse{}, err
	}
	response := httptransport.ListPaymentsResponse{Items: make([]httptransport.PaymentDTO, 0, len(items))}
	for _, item := range items {
		response.Items = append(response.Items, mapPayment(item))
	}
	return response, nil
}

// MarkPaidHandler godoc
// @Summary Mark a payment paid
// @Tags campaign-fulfillment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payment_id path string true "Payment id"
// @Param request body httptransport.MarkPaidRequest false "Invoice payload"
// @Success 200 {object} httptransport.MarkPaidResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /fulfillment/v1/payments/{payment_id}/paid [post]
func (h Handler) MarkPaidHandler(
	ctx context.Context,
	actor entities.Actor,
	paymentID string,
	req httptransport.MarkPaidRequest,
) (httptransport.MarkPaidResponse, error) {
	result, err := h.MarkPaid.Execute(ctx, commands.MarkPaidCommand{
		Actor:      actor,
		PaymentID:  paymentID,
		InvoiceURL: req.InvoiceURL,
	})
	if err != nil {
		return httptransport.MarkPaidResponse{}, err
	}
	return httptransport.MarkPaidResponse{
		Payment:     mapPayment(result.Payment),
		AlreadyPaid: result.AlreadyPaid,
	}, nil
}

// CreateBatchPayoutHandler godoc
// @Summary Execute a batch payout
// @Description Settles every listed pending payment and its task atomically.
// @Tags campaign-fulfillment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Idempotency key"
// @Param request body httptransport.CreateBatchPayoutRequest true "Batch payload"
// @Success 200 {object} httptransport.CreateBatchPayoutResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /fulfillment/v1/payouts [post]
func (h Handler) CreateBatchPayoutHandler(
	ctx context.Context,
	actor entities.Actor,
	idempotencyKey string,
	req httptransport.CreateBatchPayoutRequest,
) (httptransport.CreateBatchPayoutResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("batch payout request received",
		"event", "http_batch_payout_received",
		"module", application.ModuleName,
		"layer", "transport",
		"payment_count", len(req.PaymentIDs),
		"actor_id", actor.ActorID,
	)
	result, err := h.CreateBatchPayout.Execute(ctx, commands.CreateBatchPayoutCommand{
		Actor:          actor,
		PaymentIDs:     req.PaymentIDs,
		Notes:          req.Notes,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return httptransport.CreateBatchPayoutResponse{}, err
	}
	return httptransport.CreateBatchPayoutResponse{
		BatchID:     result.BatchID,
		TotalAmount: result.TotalAmount,
		PaymentIDs:  result.PaymentIDs,
		Status:      result.Status,
		Replayed:    result.Replayed,
	}, nil
}

// GetBatchPayoutHandler godoc
// @Summary Get a batch payout
// @Tags campaign-fulfillment
// @Produce json
// @Security BearerAuth
// @Param batch_id path string true "Batch id"
// @Success 200 {object} httptransport.BatchPayoutResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /fulfillment/v1/payouts/{batch_id} [get]
func (h Handler) GetBatchPayoutHandler(ctx context.Context, actor entities.Actor, batchID string) (httptransport.BatchPayoutResponse, error) {
	batch, err := h.Payments.GetBatchPayout(ctx, actor, batchID)
	if err != nil {
		return httptransport.BatchPayoutResponse{}, err
	}
	return httptransport.BatchPayoutResponse{
		BatchID:     batch.BatchID,
		PaymentIDs:  nonNil(batch.PaymentIDs),
		TotalAmount: batch.TotalAmount,
		Status:      string(batch.Status),
		Notes:       batch.Notes,
		CreatedBy:   batch.CreatedByID,
		CreatedAt:   batch.CreatedAt,
		ExecutedAt:  batch.ExecutedAt,
	}, nil
}
