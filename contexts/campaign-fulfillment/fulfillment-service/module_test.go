package fulfillmentservice_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	fulfillmentservice "creatorflow/contexts/campaign-fulfillment/fulfillment-service"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/adapters/memory"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/ports"
	httptransport "creatorflow/contexts/campaign-fulfillment/fulfillment-service/transport/http"
	contractsv1 "creatorflow/contracts/events/v1"
)

var (
	brand    = entities.Actor{ActorID: "brand-1", Role: entities.ActorRoleBrand}
	creator  = entities.Actor{ActorID: "creator-1", Role: entities.ActorRoleCreator}
	creator2 = entities.Actor{ActorID: "creator-2", Role: entities.ActorRoleCreator}
	ops      = entities.Actor{ActorID: "ops-1", Role: entities.ActorRoleOperations}
)

func newTestModule(t *testing.T) fulfillmentservice.Module {
	t.Helper()
	price := 150.0
	deadline := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	return fulfillmentservice.NewInMemoryModule(memory.Seed{
		Campaigns: []entities.Campaign{
			{CampaignID: "camp-plain", BrandID: "brand-1", Title: "Plain", FixedPrice: &price, DeadlineAt: &deadline, Status: entities.CampaignStatusActive},
			{CampaignID: "camp-product", BrandID: "brand-1", Title: "Product", FixedPrice: &price, Status: entities.CampaignStatusActive},
			{CampaignID: "camp-unpriced", BrandID: "brand-1", Title: "Unpriced", Status: entities.CampaignStatusActive},
		},
		Products: []entities.Product{
			{ProductID: "prod-1", CampaignID: "camp-product", Name: "Serum"},
		},
		Applications: []entities.Application{
			{ApplicationID: "app-plain-1", CampaignID: "camp-plain", CreatorID: "creator-1", Status: entities.ApplicationStatusSubmitted},
			{ApplicationID: "app-plain-2", CampaignID: "camp-plain", CreatorID: "creator-2", Status: entities.ApplicationStatusSubmitted},
			{ApplicationID: "app-product-1", CampaignID: "camp-product", CreatorID: "creator-1", Status: entities.ApplicationStatusSubmitted},
			{ApplicationID: "app-unpriced-1", CampaignID: "camp-unpriced", CreatorID: "creator-1", Status: entities.ApplicationStatusSubmitted},
		},
		Addresses: []entities.Address{
			{AddressID: "addr-1", CreatorID: "creator-1", Recipient: "Creator One", Line1: "1 Main St", City: "Austin", Country: "US"},
			{AddressID: "addr-2", CreatorID: "creator-2", Recipient: "Creator Two", Line1: "2 Main St", City: "Austin", Country: "US"},
		},
	}, nil)
}

func approve(t *testing.T, module fulfillmentservice.Module, applicationID string) httptransport.ApproveApplicationResponse {
	t.Helper()
	resp, err := module.Handler.ApproveApplicationHandler(context.Background(), brand, "", applicationID, httptransport.ApproveApplicationRequest{})
	if err != nil {
		t.Fatalf("approve %s: %v", applicationID, err)
	}
	return resp
}

func upload(t *testing.T, module fulfillmentservice.Module, actor entities.Actor, taskID string) httptransport.UploadContentResponse {
	t.Helper()
	resp, err := module.Handler.UploadContentHandler(context.Background(), actor, taskID, videoFile())
	if err != nil {
		t.Fatalf("upload content for %s: %v", taskID, err)
	}
	return resp
}

func videoFile() httptransport.UploadContentRequest {
	body := "fake-video-bytes"
	return httptransport.UploadContentRequest{
		FileName:        "final cut.mp4",
		ContentType:     "video/mp4",
		SizeBytes:       int64(len(body)),
		Body:            strings.NewReader(body),
		DeliverableType: "reel",
	}
}

func goodRating() httptransport.ApproveContentRequest {
	return httptransport.ApproveContentRequest{Rating: httptransport.RatingDTO{Quality: 5, Timeliness: 4, Communication: 5}}
}

// approvedTask drives a plain campaign task to approved and returns its ids.
func approvedTask(t *testing.T, module fulfillmentservice.Module, applicationID string, actor entities.Actor) (string, string) {
	t.Helper()
	ctx := context.Background()
	taskID := approve(t, module, applicationID).TaskID
	if _, err := module.Handler.StartWorkHandler(ctx, actor, taskID); err != nil {
		t.Fatalf("start work: %v", err)
	}
	upload(t, module, actor, taskID)
	resp, err := module.Handler.ApproveContentHandler(ctx, brand, "", taskID, goodRating())
	if err != nil {
		t.Fatalf("approve content: %v", err)
	}
	return taskID, resp.PaymentID
}

func TestTaskHappyPathWithoutProducts(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()

	approved := approve(t, module, "app-plain-1")
	if !approved.TaskCreated || approved.PaymentAmount != 150 {
		t.Fatalf("unexpected approval result: %+v", approved)
	}
	if approved.ShipmentRequestID != "" {
		t.Fatalf("campaign without products must not request a shipment")
	}

	started, err := module.Handler.StartWorkHandler(ctx, creator, approved.TaskID)
	if err != nil {
		t.Fatalf("start work: %v", err)
	}
	if started.Task.Status != string(entities.TaskStatusInProduction) || started.Task.StartedAt == nil {
		t.Fatalf("expected in_production with started_at, got %+v", started.Task)
	}

	uploaded := upload(t, module, creator, approved.TaskID)
	if uploaded.TaskStatus != string(entities.TaskStatusUploaded) {
		t.Fatalf("expected uploaded, got %s", uploaded.TaskStatus)
	}
	if _, ok := module.Store.Object("tasks/" + approved.TaskID + "/" + uploaded.UploadID + "-final cut.mp4"); !ok {
		t.Fatalf("expected stored upload body")
	}

	content, err := module.Handler.ApproveContentHandler(ctx, brand, "", approved.TaskID, goodRating())
	if err != nil {
		t.Fatalf("approve content: %v", err)
	}
	if content.Amount != 150 || content.PaymentID == "" {
		t.Fatalf("unexpected approve content result: %+v", content)
	}

	detail, err := module.Handler.GetTaskHandler(ctx, creator, approved.TaskID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if detail.Task.Status != string(entities.TaskStatusApproved) {
		t.Fatalf("expected approved task, got %s", detail.Task.Status)
	}
	if detail.Payment == nil || detail.Payment.Status != string(entities.PaymentStatusPending) {
		t.Fatalf("expected pending payment, got %+v", detail.Payment)
	}
	if len(detail.Uploads) != 1 || detail.Uploads[0].Status != string(entities.UploadStatusApproved) {
		t.Fatalf("expected approved upload, got %+v", detail.Uploads)
	}

	paid, err := module.Handler.MarkPaidHandler(ctx, ops, content.PaymentID, httptransport.MarkPaidRequest{InvoiceURL: "https://invoices.example/1"})
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.Payment.Status != string(entities.PaymentStatusPaid) || paid.AlreadyPaid {
		t.Fatalf("unexpected mark paid result: %+v", paid)
	}
	again, err := module.Handler.MarkPaidHandler(ctx, ops, content.PaymentID, httptransport.MarkPaidRequest{})
	if err != nil {
		t.Fatalf("repeat mark paid should be a no-op: %v", err)
	}
	if !again.AlreadyPaid {
		t.Fatalf("expected already_paid on repeat")
	}

	detail, err = module.Handler.GetTaskHandler(ctx, brand, approved.TaskID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if detail.Task.Status != string(entities.TaskStatusPaid) || detail.Task.PaidAt == nil {
		t.Fatalf("expected paid task, got %+v", detail.Task)
	}
}

func TestProductTaskRequiresDeliveredShipment(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()

	approved := approve(t, module, "app-product-1")
	if approved.ShipmentRequestID == "" {
		t.Fatalf("expected shipment request for product campaign")
	}

	_, err := module.Handler.StartWorkHandler(ctx, creator, approved.TaskID)
	var notDelivered *domainerrors.ShipmentNotDeliveredError
	if !errors.As(err, &notDelivered) {
		t.Fatalf("expected shipment not delivered error, got %v", err)
	}
	if notDelivered.ShipmentStatus != string(entities.ShipmentStatusWaitingAddress) {
		t.Fatalf("expected waiting_address in error, got %s", notDelivered.ShipmentStatus)
	}
	if !errors.Is(err, domainerrors.ErrPrecondition) {
		t.Fatalf("shipment guard must classify as precondition")
	}

	shipmentID := approved.ShipmentRequestID
	if _, err := module.Handler.MarkShippedHandler(ctx, ops, shipmentID, httptransport.MarkShippedRequest{}); !errors.Is(err, domainerrors.ErrInvalidShipmentTransition) {
		t.Fatalf("expected invalid transition before address, got %v", err)
	}
	if _, err := module.Handler.SubmitAddressHandler(ctx, creator, shipmentID, httptransport.SubmitAddressRequest{AddressID: "addr-2"}); !errors.Is(err, domainerrors.ErrAddressNotFound) {
		t.Fatalf("expected foreign address to be rejected, got %v", err)
	}
	if _, err := module.Handler.SubmitAddressHandler(ctx, creator, shipmentID, httptransport.SubmitAddressRequest{AddressID: "addr-1"}); err != nil {
		t.Fatalf("submit address: %v", err)
	}
	if _, err := module.Handler.MarkShippedHandler(ctx, creator, shipmentID, httptransport.MarkShippedRequest{}); !errors.Is(err, domainerrors.ErrUnauthorizedActor) {
		t.Fatalf("creator must not mark shipped, got %v", err)
	}
	shipped, err := module.Handler.MarkShippedHandler(ctx, ops, shipmentID, httptransport.MarkShippedRequest{TrackingNumber: "1Z999", Carrier: "UPS"})
	if err != nil {
		t.Fatalf("mark shipped: %v", err)
	}
	if shipped.Shipment.TrackingNumber != "1Z999" || shipped.Shipment.ShippedAt == nil {
		t.Fatalf("unexpected shipped response: %+v", shipped.Shipment)
	}

	_, err = module.Handler.UploadContentHandler(ctx, creator, approved.TaskID, videoFile())
	if !errors.Is(err, domainerrors.ErrInvalidTaskTransition) {
		t.Fatalf("upload from selected must be an invalid transition, got %v", err)
	}

	if _, err := module.Handler.ConfirmDeliveryHandler(ctx, creator, shipmentID); err != nil {
		t.Fatalf("confirm delivery: %v", err)
	}
	status, err := module.Handler.GetShipmentStatusHandler(ctx, brand, "camp-product", "creator-1")
	if err != nil {
		t.Fatalf("shipment status: %v", err)
	}
	if status.Status != string(entities.ShipmentStatusDelivered) {
		t.Fatalf("expected delivered, got %s", status.Status)
	}

	if _, err := module.Handler.StartWorkHandler(ctx, creator, approved.TaskID); err != nil {
		t.Fatalf("start work after delivery: %v", err)
	}
}

func TestShipmentStatusNotRequested(t *testing.T) {
	module := newTestModule(t)
	status, err := module.Handler.GetShipmentStatusHandler(context.Background(), creator, "camp-plain", "creator-1")
	if err != nil {
		t.Fatalf("shipment status: %v", err)
	}
	if status.Status != string(entities.ShipmentStatusNotRequested) || status.Shipment != nil {
		t.Fatalf("expected not_requested without shipment, got %+v", status)
	}
	if _, err := module.Handler.GetShipmentStatusHandler(context.Background(), creator2, "camp-plain", "creator-1"); !errors.Is(err, domainerrors.ErrUnauthorizedActor) {
		t.Fatalf("other creators must not read shipment status, got %v", err)
	}
}

func TestFlagShipmentIssueIsTerminal(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	approved := approve(t, module, "app-product-1")

	if _, err := module.Handler.FlagIssueHandler(ctx, brand, approved.ShipmentRequestID, httptransport.FlagIssueRequest{}); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected reason to be required, got %v", err)
	}
	flagged, err := module.Handler.FlagIssueHandler(ctx, brand, approved.ShipmentRequestID, httptransport.FlagIssueRequest{Reason: "lost", Note: "carrier lost parcel"})
	if err != nil {
		t.Fatalf("flag issue: %v", err)
	}
	if flagged.Shipment.Status != string(entities.ShipmentStatusIssue) {
		t.Fatalf("expected issue, got %s", flagged.Shipment.Status)
	}
	if _, err := module.Handler.SubmitAddressHandler(ctx, creator, approved.ShipmentRequestID, httptransport.SubmitAddressRequest{AddressID: "addr-1"}); !errors.Is(err, domainerrors.ErrInvalidShipmentTransition) {
		t.Fatalf("issue must be terminal, got %v", err)
	}
}

func TestRejectThenReapproveReusesTask(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()

	first := approve(t, module, "app-plain-1")

	_, err := module.Handler.RejectApplicationHandler(ctx, brand, "app-plain-1", httptransport.RejectApplicationRequest{})
	if !errors.Is(err, domainerrors.ErrReasonCodeRequired) {
		t.Fatalf("expected reason code required, got %v", err)
	}
	_, err = module.Handler.RejectApplicationHandler(ctx, brand, "app-plain-1", httptransport.RejectApplicationRequest{ReasonCode: "fit", Note: "short"})
	if !errors.Is(err, domainerrors.ErrNoteTooShort) {
		t.Fatalf("expected note too short, got %v", err)
	}
	rejected, err := module.Handler.RejectApplicationHandler(ctx, brand, "app-plain-1", httptransport.RejectApplicationRequest{
		ReasonCode: "audience_fit",
		Note:       "Audience does not match the campaign",
	})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Application.Status != string(entities.ApplicationStatusRejected) {
		t.Fatalf("expected rejected, got %s", rejected.Application.Status)
	}

	second := approve(t, module, "app-plain-1")
	if second.TaskCreated {
		t.Fatalf("re-approval must not create a second task")
	}
	if second.TaskID != first.TaskID {
		t.Fatalf("expected same task id, got %s and %s", first.TaskID, second.TaskID)
	}

	// Feedback was recorded once, so a later flip may omit it.
	if _, err := module.Handler.RejectApplicationHandler(ctx, brand, "app-plain-1", httptransport.RejectApplicationRequest{}); err != nil {
		t.Fatalf("second rejection should reuse stored feedback: %v", err)
	}

	approve(t, module, "app-plain-1")
	again, err := module.Handler.RejectApplicationHandler(ctx, brand, "app-plain-1", httptransport.RejectApplicationRequest{Note: "nope"})
	if err != nil {
		t.Fatalf("short note with stored feedback should be ignored: %v", err)
	}
	if again.Application.RejectionNote != "Audience does not match the campaign" {
		t.Fatalf("stored note must survive a short note, got %q", again.Application.RejectionNote)
	}
}

func TestApproveApplicationGuards(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()

	if _, err := module.Handler.ApproveApplicationHandler(ctx, brand, "", "app-unpriced-1", httptransport.ApproveApplicationRequest{}); !errors.Is(err, domainerrors.ErrPriceRequired) {
		t.Fatalf("expected price required, got %v", err)
	}
	custom := 80.0
	resp, err := module.Handler.ApproveApplicationHandler(ctx, brand, "", "app-unpriced-1", httptransport.ApproveApplicationRequest{CustomPrice: &custom})
	if err != nil {
		t.Fatalf("approve with custom price: %v", err)
	}
	if resp.PaymentAmount != 80 {
		t.Fatalf("expected custom price, got %v", resp.PaymentAmount)
	}

	otherBrand := entities.Actor{ActorID: "brand-2", Role: entities.ActorRoleBrand}
	if _, err := module.Handler.ApproveApplicationHandler(ctx, otherBrand, "", "app-plain-1", httptransport.ApproveApplicationRequest{}); !errors.Is(err, domainerrors.ErrUnauthorizedActor) {
		t.Fatalf("expected unauthorized brand, got %v", err)
	}
	if _, err := module.Handler.ApproveApplicationHandler(ctx, brand, "", "app-missing", httptransport.ApproveApplicationRequest{}); !errors.Is(err, domainerrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestApproveApplicationIdempotency(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()

	first, err := module.Handler.ApproveApplicationHandler(ctx, brand, "idem-approve", "app-plain-1", httptransport.ApproveApplicationRequest{})
	if err != nil {
		t.Fatalf("first approve: %v", err)
	}
	second, err := module.Handler.ApproveApplicationHandler(ctx, brand, "idem-approve", "app-plain-1", httptransport.ApproveApplicationRequest{})
	if err != nil {
		t.Fatalf("replayed approve: %v", err)
	}
	if !second.Replayed || second.TaskID != first.TaskID {
		t.Fatalf("expected replay of %s, got %+v", first.TaskID, second)
	}

	custom := 99.0
	_, err = module.Handler.ApproveApplicationHandler(ctx, brand, "idem-approve", "app-plain-1", httptransport.ApproveApplicationRequest{CustomPrice: &custom})
	if !errors.Is(err, domainerrors.ErrIdempotencyKeyConflict) {
		t.Fatalf("expected idempotency conflict, got %v", err)
	}
}

func TestAddFirstProductBackfillsApprovedCreators(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()

	first := approve(t, module, "app-plain-1")
	second := approve(t, module, "app-plain-2")
	if _, err := module.Handler.StartWorkHandler(ctx, creator2, second.TaskID); err != nil {
		t.Fatalf("start work: %v", err)
	}

	resp, err := module.Handler.AddProductHandler(ctx, brand, "camp-plain", httptransport.AddProductRequest{ProductID: "prod-new", Name: "Bottle"})
	if err != nil {
		t.Fatalf("add product: %v", err)
	}
	if !resp.ProductCreated || len(resp.ShipmentsCreated) != 2 || len(resp.TasksUpdated) != 2 {
		t.Fatalf("expected two backfilled shipments and tasks, got %+v", resp)
	}

	detail, err := module.Handler.GetTaskHandler(ctx, creator, first.TaskID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if !detail.Task.RequiresProduct || detail.ShipmentStatus != string(entities.ShipmentStatusWaitingAddress) {
		t.Fatalf("expected product-linked task waiting for address, got %+v / %s", detail.Task, detail.ShipmentStatus)
	}

	// The in-production task keeps its state but further steps are guarded.
	_, err = module.Handler.UploadContentHandler(ctx, creator2, second.TaskID, videoFile())
	if !errors.Is(err, domainerrors.ErrShipmentNotDelivered) {
		t.Fatalf("expected shipment guard on upload, got %v", err)
	}

	again, err := module.Handler.AddProductHandler(ctx, brand, "camp-plain", httptransport.AddProductRequest{ProductID: "prod-second"})
	if err != nil {
		t.Fatalf("add second product: %v", err)
	}
	if !again.ProductCreated || len(again.ShipmentsCreated) != 0 {
		t.Fatalf("second product must not backfill, got %+v", again)
	}
}

func TestRevisionCycle(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()

	taskID := approve(t, module, "app-plain-1").TaskID
	if _, err := module.Handler.RequestRevisionHandler(ctx, brand, taskID, httptransport.RequestRevisionRequest{
		Tags: []string{"audio"},
		Note: "Please fix the audio levels",
	}); !errors.Is(err, domainerrors.ErrNoUploadForRevision) {
		t.Fatalf("expected no upload error, got %v", err)
	}
	if _, err := module.Handler.StartWorkHandler(ctx, creator, taskID); err != nil {
		t.Fatalf("start work: %v", err)
	}
	upload(t, module, creator, taskID)

	if _, err := module.Handler.RequestRevisionHandler(ctx, brand, taskID, httptransport.RequestRevisionRequest{Note: "Please fix the audio levels"}); !errors.Is(err, domainerrors.ErrRevisionTagsRequired) {
		t.Fatalf("expected tags required, got %v", err)
	}
	revision, err := module.Handler.RequestRevisionHandler(ctx, brand, taskID, httptransport.RequestRevisionRequest{
		Tags: []string{"Audio", "audio", "pacing"},
		Note: "Please fix the audio levels",
	})
	if err != nil {
		t.Fatalf("request revision: %v", err)
	}
	if revision.TaskStatus != string(entities.TaskStatusNeedsEdits) {
		t.Fatalf("expected needs_edits, got %s", revision.TaskStatus)
	}

	if _, err := module.Handler.ApproveContentHandler(ctx, brand, "", taskID, goodRating()); !errors.Is(err, domainerrors.ErrInvalidTaskTransition) {
		t.Fatalf("approval from needs_edits must fail, got %v", err)
	}

	upload(t, module, creator, taskID)
	detail, err := module.Handler.GetTaskHandler(ctx, creator, taskID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if detail.Task.Status != string(entities.TaskStatusUploaded) {
		t.Fatalf("expected uploaded, got %s", detail.Task.Status)
	}
	if len(detail.Revisions) != 1 || detail.Revisions[0].Status != string(entities.RevisionStatusResolved) {
		t.Fatalf("expected resolved revision, got %+v", detail.Revisions)
	}
	if got := strings.Join(detail.Revisions[0].Tags, ","); got != "audio,pacing" {
		t.Fatalf("expected normalized tags, got %s", got)
	}
	statuses := map[string]int{}
	for _, item := range detail.Uploads {
		statuses[item.Status]++
	}
	if statuses[string(entities.UploadStatusRejected)] != 1 || statuses[string(entities.UploadStatusPending)] != 1 {
		t.Fatalf("expected one rejected and one pending upload, got %v", statuses)
	}
}

func TestApproveContentGuards(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	taskID := approve(t, module, "app-plain-1").TaskID

	bad := httptransport.ApproveContentRequest{Rating: httptransport.RatingDTO{Quality: 6, Timeliness: 3, Communication: 3}}
	if _, err := module.Handler.ApproveContentHandler(ctx, brand, "", taskID, bad); !errors.Is(err, domainerrors.ErrRatingOutOfRange) {
		t.Fatalf("expected rating out of range, got %v", err)
	}
	if _, err := module.Handler.ApproveContentHandler(ctx, brand, "", taskID, goodRating()); !errors.Is(err, domainerrors.ErrNoUploadToApprove) {
		t.Fatalf("expected no upload to approve, got %v", err)
	}
}

func TestUploadRejectedByPolicy(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	taskID := approve(t, module, "app-plain-1").TaskID
	if _, err := module.Handler.StartWorkHandler(ctx, creator, taskID); err != nil {
		t.Fatalf("start work: %v", err)
	}

	req := videoFile()
	req.ContentType = "application/zip"
	if _, err := module.Handler.UploadContentHandler(ctx, creator, taskID, req); !errors.Is(err, domainerrors.ErrUnsupportedFileType) {
		t.Fatalf("expected unsupported type, got %v", err)
	}
	if _, err := module.Handler.UploadContentHandler(ctx, creator2, taskID, videoFile()); !errors.Is(err, domainerrors.ErrUnauthorizedActor) {
		t.Fatalf("expected other creator to be rejected, got %v", err)
	}
}

func TestUploadRequiresProductionOrEdits(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	taskID := approve(t, module, "app-plain-1").TaskID
	if _, err := module.Handler.StartWorkHandler(ctx, creator, taskID); err != nil {
		t.Fatalf("start work: %v", err)
	}
	upload(t, module, creator, taskID)

	if _, err := module.Handler.UploadContentHandler(ctx, creator, taskID, videoFile()); !errors.Is(err, domainerrors.ErrInvalidTaskTransition) {
		t.Fatalf("upload on an uploaded task must fail, got %v", err)
	}
	detail, err := module.Handler.GetTaskHandler(ctx, creator, taskID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if len(detail.Uploads) != 1 {
		t.Fatalf("expected a single upload, got %d", len(detail.Uploads))
	}
}

func TestOpenDisputeIsTerminal(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	taskID := approve(t, module, "app-plain-1").TaskID

	if _, err := module.Handler.OpenDisputeHandler(ctx, creator, taskID, httptransport.OpenDisputeRequest{Reason: "brand unresponsive"}); err != nil {
		t.Fatalf("open dispute: %v", err)
	}
	if _, err := module.Handler.StartWorkHandler(ctx, creator, taskID); !errors.Is(err, domainerrors.ErrInvalidTaskTransition) {
		t.Fatalf("disputed task must not start, got %v", err)
	}
	allowed, err := module.Handler.CanTransitionHandler(ctx, taskID, string(entities.TaskStatusInProduction))
	if err != nil {
		t.Fatalf("can transition: %v", err)
	}
	if allowed.Allowed {
		t.Fatalf("disputed task must report no transitions")
	}
}

func TestBatchPayoutSettlesAllPayments(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	firstTask, firstPayment := approvedTask(t, module, "app-plain-1", creator)
	secondTask, secondPayment := approvedTask(t, module, "app-plain-2", creator2)

	if _, err := module.Handler.CreateBatchPayoutHandler(ctx, brand, "", httptransport.CreateBatchPayoutRequest{PaymentIDs: []string{firstPayment}}); !errors.Is(err, domainerrors.ErrUnauthorizedActor) {
		t.Fatalf("brands must not execute payouts, got %v", err)
	}

	outboxBefore := len(module.Store.OutboxEvents())
	resp, err := module.Handler.CreateBatchPayoutHandler(ctx, ops, "idem-batch", httptransport.CreateBatchPayoutRequest{
		PaymentIDs: []string{firstPayment, secondPayment, firstPayment},
		Notes:      "October run",
	})
	if err != nil {
		t.Fatalf("batch payout: %v", err)
	}
	written := module.Store.OutboxEvents()[outboxBefore:]
	wantTypes := []string{
		contractsv1.EventPaymentPaid,
		contractsv1.EventPaymentPaid,
		contractsv1.EventTaskStatusChanged,
		contractsv1.EventTaskStatusChanged,
		contractsv1.EventBatchPayoutExecuted,
	}
	if len(written) != len(wantTypes) {
		t.Fatalf("expected %d batch events, got %d", len(wantTypes), len(written))
	}
	for i, message := range written {
		if message.EventType != wantTypes[i] {
			t.Fatalf("event %d: expected %s, got %s", i, wantTypes[i], message.EventType)
		}
	}
	if resp.TotalAmount != 300 || len(resp.PaymentIDs) != 2 || resp.Status != string(entities.BatchPayoutStatusExecuted) {
		t.Fatalf("unexpected batch result: %+v", resp)
	}

	for _, taskID := range []string{firstTask, secondTask} {
		detail, err := module.Handler.GetTaskHandler(ctx, ops, taskID)
		if err != nil {
			t.Fatalf("get task: %v", err)
		}
		if detail.Task.Status != string(entities.TaskStatusPaid) {
			t.Fatalf("expected paid task %s, got %s", taskID, detail.Task.Status)
		}
		if detail.Payment == nil || detail.Payment.BatchID != resp.BatchID {
			t.Fatalf("expected payment linked to batch %s, got %+v", resp.BatchID, detail.Payment)
		}
	}

	batch, err := module.Handler.GetBatchPayoutHandler(ctx, ops, resp.BatchID)
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if batch.CreatedBy != ops.ActorID || batch.ExecutedAt == nil {
		t.Fatalf("unexpected batch record: %+v", batch)
	}

	replay, err := module.Handler.CreateBatchPayoutHandler(ctx, ops, "idem-batch", httptransport.CreateBatchPayoutRequest{
		PaymentIDs: []string{firstPayment, secondPayment, firstPayment},
		Notes:      "October run",
	})
	if err != nil {
		t.Fatalf("replayed batch: %v", err)
	}
	if !replay.Replayed || replay.BatchID != resp.BatchID {
		t.Fatalf("expected replay of %s, got %+v", resp.BatchID, replay)
	}

	if _, err := module.Handler.CreateBatchPayoutHandler(ctx, ops, "", httptransport.CreateBatchPayoutRequest{PaymentIDs: []string{firstPayment}}); !errors.Is(err, domainerrors.ErrPaymentNotPending) {
		t.Fatalf("expected paid payment to be refused, got %v", err)
	}
}

func TestBatchPayoutRollsBackOnFailure(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	firstTask, firstPayment := approvedTask(t, module, "app-plain-1", creator)
	_, secondPayment := approvedTask(t, module, "app-plain-2", creator2)

	eventsBefore := len(module.Store.OutboxEvents())
	module.Store.FailOn("UpdateTask", errors.New("disk full"))
	if _, err := module.Handler.CreateBatchPayoutHandler(ctx, ops, "", httptransport.CreateBatchPayoutRequest{
		PaymentIDs: []string{firstPayment, secondPayment},
	}); err == nil {
		t.Fatalf("expected batch failure")
	}

	payments, err := module.Handler.ListPaymentsHandler(ctx, ops, string(entities.PaymentStatusPending), "", 0)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments.Items) != 2 {
		t.Fatalf("expected both payments still pending, got %d", len(payments.Items))
	}
	detail, err := module.Handler.GetTaskHandler(ctx, ops, firstTask)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if detail.Task.Status != string(entities.TaskStatusApproved) || detail.Payment.BatchID != "" {
		t.Fatalf("expected untouched task and payment, got %+v / %+v", detail.Task, detail.Payment)
	}
	if got := len(module.Store.OutboxEvents()); got != eventsBefore {
		t.Fatalf("rolled back batch must not leave events, had %d now %d", eventsBefore, got)
	}
}

func TestMarkPaidRequiresApprovedTask(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	taskID, paymentID := approvedTask(t, module, "app-plain-1", creator)

	if _, err := module.Handler.OpenDisputeHandler(ctx, brand, taskID, httptransport.OpenDisputeRequest{Reason: "quality dispute"}); err != nil {
		t.Fatalf("open dispute: %v", err)
	}
	if _, err := module.Handler.MarkPaidHandler(ctx, ops, paymentID, httptransport.MarkPaidRequest{}); !errors.Is(err, domainerrors.ErrTaskNotApproved) {
		t.Fatalf("expected task not approved, got %v", err)
	}
}

func TestListPaymentsScopesCreators(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	approvedTask(t, module, "app-plain-1", creator)
	approvedTask(t, module, "app-plain-2", creator2)

	own, err := module.Handler.ListPaymentsHandler(ctx, creator, "", "", 0)
	if err != nil {
		t.Fatalf("list own payments: %v", err)
	}
	if len(own.Items) != 1 || own.Items[0].CreatorID != creator.ActorID {
		t.Fatalf("creator must only see own payments, got %+v", own.Items)
	}
	all, err := module.Handler.ListPaymentsHandler(ctx, ops, "", "", 0)
	if err != nil {
		t.Fatalf("list all payments: %v", err)
	}
	if len(all.Items) != 2 {
		t.Fatalf("staff must see all payments, got %d", len(all.Items))
	}
	if _, err := module.Handler.ListPaymentsHandler(ctx, brand, "", "", 0); !errors.Is(err, domainerrors.ErrUnauthorizedActor) {
		t.Fatalf("brands must not list payments, got %v", err)
	}
}

func TestAuditFailureDoesNotFailOperation(t *testing.T) {
	module := newTestModule(t)
	module.Store.FailOn("AppendAudit", errors.New("audit sink down"))

	resp := approve(t, module, "app-plain-1")
	if resp.TaskID == "" {
		t.Fatalf("expected task despite audit failure")
	}
	if len(module.Store.AuditEntries()) != 0 {
		t.Fatalf("failed audit append must not be recorded")
	}
	approve(t, module, "app-plain-2")
	if len(module.Store.AuditEntries()) != 1 {
		t.Fatalf("expected audit entry for second approval")
	}
}

func TestOutboxCarriesOrderedEvents(t *testing.T) {
	module := newTestModule(t)
	approve(t, module, "app-product-1")

	var types []string
	for _, message := range module.Store.OutboxEvents() {
		types = append(types, message.EventType)
	}
	want := []string{
		contractsv1.EventTaskCreated,
		contractsv1.EventShipmentRequested,
		contractsv1.EventApplicationApproved,
	}
	if strings.Join(types, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected event order %v", types)
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ ports.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	return nil
}

func (p *recordingPublisher) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func TestOutboxRelayPublishesPendingOnce(t *testing.T) {
	module := newTestModule(t)
	approve(t, module, "app-plain-1")

	publisher := &recordingPublisher{}
	relay := module.Relay
	relay.Publisher = publisher

	sent, err := relay.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("relay: %v", err)
	}
	if sent != 2 || len(publisher.topics) != 2 {
		t.Fatalf("expected two published events, got %d", sent)
	}
	if publisher.topics[0] != contractsv1.TopicTask || publisher.topics[1] != contractsv1.TopicApplication {
		t.Fatalf("unexpected topics %v", publisher.topics)
	}
	sent, err = relay.RunOnce(context.Background())
	if err != nil || sent != 0 {
		t.Fatalf("expected nothing pending, got %d, %v", sent, err)
	}
}

func TestProductAddedConsumerBackfillsOnce(t *testing.T) {
	module := newTestModule(t)
	approve(t, module, "app-plain-1")

	data, err := json.Marshal(contractsv1.ProductAdded{CampaignID: "camp-plain", ProductID: "prod-evt", Name: "Kit"})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	event := ports.EventEnvelope{
		EventID:       "evt-product-1",
		EventType:     contractsv1.EventProductAdded,
		OccurredAt:    time.Now().UTC(),
		SourceService: "campaign-catalog",
		SchemaVersion: 1,
		Data:          data,
	}
	if err := module.ProductConsumer.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if err := module.ProductConsumer.Handle(context.Background(), event); err != nil {
		t.Fatalf("duplicate handle: %v", err)
	}

	requested := 0
	for _, message := range module.Store.OutboxEvents() {
		if message.EventType == contractsv1.EventShipmentRequested {
			requested++
		}
	}
	if requested != 1 {
		t.Fatalf("expected exactly one shipment request event, got %d", requested)
	}

	event.Data = json.RawMessage(`{"campaign_id":"camp-plain","product_id":"other"}`)
	if err := module.ProductConsumer.Handle(context.Background(), event); !errors.Is(err, domainerrors.ErrIdempotencyKeyConflict) {
		t.Fatalf("expected payload mismatch conflict, got %v", err)
	}
}

func TestOutboxRelayKeepsRowsWhenPublishFails(t *testing.T) {
	module := newTestModule(t)
	approve(t, module, "app-plain-1")

	publisher := &recordingPublisher{}
	publisher.fail(errors.New("subscriber buffer is full"))
	relay := module.Relay
	relay.Publisher = publisher

	sent, err := relay.RunOnce(context.Background())
	if err == nil || sent != 0 {
		t.Fatalf("expected failed cycle with nothing sent, got %d, %v", sent, err)
	}

	publisher.fail(nil)
	sent, err = relay.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("relay after recovery: %v", err)
	}
	if sent != 2 || len(publisher.topics) != 2 {
		t.Fatalf("expected both rows relayed after recovery, got %d", sent)
	}
}

func TestProductAddedConsumerRedeliveryAfterFailedBackfill(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	approve(t, module, "app-plain-1")

	data, err := json.Marshal(contractsv1.ProductAdded{CampaignID: "camp-plain", ProductID: "prod-evt", Name: "Kit"})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	event := ports.EventEnvelope{
		EventID:       "evt-product-retry",
		EventType:     contractsv1.EventProductAdded,
		OccurredAt:    time.Now().UTC(),
		SourceService: "campaign-catalog",
		SchemaVersion: 1,
		Data:          data,
	}

	module.Store.FailOn("AppendOutbox", errors.New("outbox unavailable"))
	if err := module.ProductConsumer.Handle(ctx, event); err == nil {
		t.Fatalf("expected first delivery to fail")
	}
	status, err := module.Handler.GetShipmentStatusHandler(ctx, creator, "camp-plain", "creator-1")
	if err != nil {
		t.Fatalf("shipment status: %v", err)
	}
	if status.Status != string(entities.ShipmentStatusNotRequested) {
		t.Fatalf("failed backfill must not leave a shipment, got %s", status.Status)
	}

	if err := module.ProductConsumer.Handle(ctx, event); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	status, err = module.Handler.GetShipmentStatusHandler(ctx, creator, "camp-plain", "creator-1")
	if err != nil {
		t.Fatalf("shipment status: %v", err)
	}
	if status.Status != string(entities.ShipmentStatusWaitingAddress) {
		t.Fatalf("expected redelivery to request a shipment, got %s", status.Status)
	}
}

func TestPaymentErrorCategories(t *testing.T) {
	ctx := context.Background()
	submittedAt := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	module := fulfillmentservice.NewInMemoryModule(memory.Seed{
		Campaigns: []entities.Campaign{
			{CampaignID: "camp-unpriced", BrandID: "brand-1", Title: "Unpriced", Status: entities.CampaignStatusActive},
		},
		Applications: []entities.Application{
			{ApplicationID: "app-unpriced-1", CampaignID: "camp-unpriced", CreatorID: "creator-1", Status: entities.ApplicationStatusApproved},
		},
		Tasks: []entities.Task{
			{
				TaskID:        "task-unpriced",
				ApplicationID: "app-unpriced-1",
				CampaignID:    "camp-unpriced",
				CreatorID:     "creator-1",
				Status:        entities.TaskStatusUploaded,
				SubmittedAt:   &submittedAt,
				CreatedAt:     submittedAt,
				UpdatedAt:     submittedAt,
			},
		},
		Uploads: []entities.Upload{
			{
				UploadID:     "upload-1",
				TaskID:       "task-unpriced",
				StorageRef:   "tasks/task-unpriced/upload-1-cut.mp4",
				FileName:     "cut.mp4",
				ContentType:  "video/mp4",
				SizeBytes:    10,
				Status:       entities.UploadStatusPending,
				UploadedByID: "creator-1",
				CreatedAt:    submittedAt,
				UpdatedAt:    submittedAt,
			},
		},
	}, nil)

	cases := []struct {
		name     string
		run      func() error
		want     error
		category error
	}{
		{
			name: "batch without payment ids",
			run: func() error {
				_, err := module.Handler.CreateBatchPayoutHandler(ctx, ops, "", httptransport.CreateBatchPayoutRequest{PaymentIDs: []string{" ", ""}})
				return err
			},
			want:     domainerrors.ErrPaymentIDsRequired,
			category: domainerrors.ErrValidation,
		},
		{
			name: "approve content without payment amount",
			run: func() error {
				_, err := module.Handler.ApproveContentHandler(ctx, brand, "", "task-unpriced", goodRating())
				return err
			},
			want:     domainerrors.ErrPaymentAmountMissing,
			category: domainerrors.ErrConfiguration,
		},
		{
			name: "mark unknown payment paid",
			run: func() error {
				_, err := module.Handler.MarkPaidHandler(ctx, ops, "missing", httptransport.MarkPaidRequest{})
				return err
			},
			want:     domainerrors.ErrPaymentNotFound,
			category: domainerrors.ErrNotFound,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !errors.Is(err, tc.category) {
				t.Fatalf("expected %v to fall under %v", err, tc.category)
			}
		})
	}

	task, err := module.Store.GetTask(ctx, "task-unpriced")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task.Status != entities.TaskStatusUploaded {
		t.Fatalf("unpriced task must stay uploaded, got %s", task.Status)
	}
}

func TestUploadRemovesStoredBodyWhenRecordFails(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	taskID := approve(t, module, "app-plain-1").TaskID
	if _, err := module.Handler.StartWorkHandler(ctx, creator, taskID); err != nil {
		t.Fatalf("start work: %v", err)
	}

	module.Store.FailOn("AppendOutbox", errors.New("outbox unavailable"))
	if _, err := module.Handler.UploadContentHandler(ctx, creator, taskID, videoFile()); err == nil {
		t.Fatalf("expected upload to fail")
	}
	if count := module.Store.ObjectCount(); count != 0 {
		t.Fatalf("expected no stored objects after failed upload, got %d", count)
	}

	upload(t, module, creator, taskID)
	if count := module.Store.ObjectCount(); count != 1 {
		t.Fatalf("expected one stored object after retry, got %d", count)
	}
}

// staleShipmentReads hides existing shipment requests from lookups so the
// insert path meets the uniqueness violation.
type staleShipmentReads struct {
	*memory.Store
}

func (staleShipmentReads) FindShipmentRequest(context.Context, string, string) (entities.ShipmentRequest, bool, error) {
	return entities.ShipmentRequest{}, false, nil
}

func TestApproveSurfacesConcurrentShipmentInsert(t *testing.T) {
	ctx := context.Background()
	price := 150.0
	createdAt := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	store := memory.NewStore(memory.Seed{
		Campaigns: []entities.Campaign{
			{CampaignID: "camp-product", BrandID: "brand-1", Title: "Product", FixedPrice: &price, Status: entities.CampaignStatusActive},
		},
		Products: []entities.Product{
			{ProductID: "prod-1", CampaignID: "camp-product", Name: "Serum"},
		},
		Applications: []entities.Application{
			{ApplicationID: "app-product-1", CampaignID: "camp-product", CreatorID: "creator-1", Status: entities.ApplicationStatusSubmitted},
		},
		Shipments: []entities.ShipmentRequest{
			{ShipmentRequestID: "ship-existing", CampaignID: "camp-product", CreatorID: "creator-1", Status: entities.ShipmentStatusWaitingAddress, CreatedAt: createdAt, UpdatedAt: createdAt},
		},
	}, nil)
	module := fulfillmentservice.NewModule(fulfillmentservice.Dependencies{
		Campaigns:    store,
		Applications: store,
		Tasks:        store,
		Shipments:    staleShipmentReads{Store: store},
		Addresses:    store,
		Content:      store,
		Payments:     store,
		Storage:      store,
		UnitOfWork:   store,
		Outbox:       store,
		OutboxReader: store,
		Audit:        store,
		Idempotency:  store,
		EventDedup:   store,
		Clock:        store,
		IDGenerator:  store,
	})

	_, err := module.Handler.ApproveApplicationHandler(ctx, brand, "", "app-product-1", httptransport.ApproveApplicationRequest{})
	if !errors.Is(err, domainerrors.ErrShipmentAlreadyExists) {
		t.Fatalf("expected duplicate shipment insert to surface, got %v", err)
	}
	application, err := store.GetApplication(ctx, "app-product-1")
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	if application.Status != entities.ApplicationStatusSubmitted {
		t.Fatalf("failed approval must roll back, got %s", application.Status)
	}
	if _, found, err := store.GetTaskByApplication(ctx, "app-product-1"); err != nil || found {
		t.Fatalf("failed approval must not leave a task, found=%v err=%v", found, err)
	}
}
