package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	fulfillmentservice "creatorflow/contexts/campaign-fulfillment/fulfillment-service"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/adapters/memory"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	httptransport "creatorflow/contexts/campaign-fulfillment/fulfillment-service/transport/http"
	contractsv1 "creatorflow/contracts/events/v1"
	"creatorflow/internal/platform/messaging"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
)

func newTestModule() fulfillmentservice.Module {
	price := 150.0
	return fulfillmentservice.NewInMemoryModule(memory.Seed{
		Campaigns: []entities.Campaign{
			{CampaignID: "camp-plain", BrandID: "brand-1", Title: "Plain", FixedPrice: &price, Status: entities.CampaignStatusActive},
			{CampaignID: "camp-product", BrandID: "brand-1", Title: "Product", FixedPrice: &price, Status: entities.CampaignStatusActive},
		},
		Products: []entities.Product{
			{ProductID: "prod-1", CampaignID: "camp-product", Name: "Serum"},
		},
		Applications: []entities.Application{
			{ApplicationID: "app-plain-1", CampaignID: "camp-plain", CreatorID: "creator-1", Status: entities.ApplicationStatusSubmitted},
			{ApplicationID: "app-product-1", CampaignID: "camp-product", CreatorID: "creator-1", Status: entities.ApplicationStatusSubmitted},
		},
		Addresses: []entities.Address{
			{AddressID: "addr-1", CreatorID: "creator-1", Recipient: "Creator One", Line1: "1 Main St", City: "Austin", Country: "US"},
		},
	}, nil)
}

func newTestServer(opts Options) *Server {
	return New(newTestModule(), opts)
}

func as(userID string, role string) map[string]string {
	return map[string]string{"X-User-Id": userID, "X-User-Role": role}
}

func serve(t *testing.T, server *Server, method string, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	return out
}

func approveOverHTTP(t *testing.T, server *Server, applicationID string) httptransport.ApproveApplicationResponse {
	t.Helper()
	rr := serve(t, server, http.MethodPost, "/fulfillment/v1/applications/"+applicationID+"/approve", "", as("brand-1", "brand"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	return decode[httptransport.ApproveApplicationResponse](t, rr)
}

func TestHealthz(t *testing.T) {
	server := newTestServer(Options{})
	rr := serve(t, server, http.MethodGet, "/healthz", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRoutesRequireActor(t *testing.T) {
	server := newTestServer(Options{})

	rr := serve(t, server, http.MethodGet, "/fulfillment/v1/tasks/task-1", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
	if got := decode[httptransport.ErrorResponse](t, rr); got.Code != "unauthenticated" {
		t.Fatalf("expected unauthenticated code, got %+v", got)
	}

	rr = serve(t, server, http.MethodGet, "/fulfillment/v1/tasks/task-1", "", as("svc-1", "system"))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("system role must not be claimable, got %d", rr.Code)
	}
}

func TestApproveApplicationForeignBrandForbidden(t *testing.T) {
	server := newTestServer(Options{})
	rr := serve(t, server, http.MethodPost, "/fulfillment/v1/applications/app-plain-1/approve", "", as("brand-2", "brand"))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestUnknownTaskNotFound(t *testing.T) {
	server := newTestServer(Options{})
	rr := serve(t, server, http.MethodGet, "/fulfillment/v1/tasks/task-missing", "", as("ops-1", "operations"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestStartWorkReportsUndeliveredShipment(t *testing.T) {
	server := newTestServer(Options{})
	approved := approveOverHTTP(t, server, "app-product-1")
	if approved.ShipmentRequestID == "" {
		t.Fatalf("expected a shipment request for a product campaign")
	}

	rr := serve(t, server, http.MethodPost, "/fulfillment/v1/tasks/"+approved.TaskID+"/start", "", as("creator-1", "creator"))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
	got := decode[httptransport.ErrorResponse](t, rr)
	if got.Code != "shipment_not_delivered" {
		t.Fatalf("expected shipment_not_delivered, got %+v", got)
	}
	if got.Details["task_id"] != approved.TaskID || got.Details["shipment_status"] != string(entities.ShipmentStatusWaitingAddress) {
		t.Fatalf("unexpected details: %+v", got.Details)
	}

	status := serve(t, server, http.MethodGet, "/fulfillment/v1/shipments/status?campaign_id=camp-product&creator_id=creator-1", "", as("creator-1", "creator"))
	if status.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", status.Code, status.Body.String())
	}
}

func TestAddProductReturnsCreated(t *testing.T) {
	server := newTestServer(Options{})
	body := `{"product_id":"prod-2","name":"Cleanser"}`

	rr := serve(t, server, http.MethodPost, "/fulfillment/v1/campaigns/camp-plain/products", body, as("brand-1", "brand"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	rr = serve(t, server, http.MethodPost, "/fulfillment/v1/campaigns/camp-plain/products", body, as("brand-1", "brand"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on replay, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestRejectUnknownBodyFields(t *testing.T) {
	server := newTestServer(Options{})
	rr := serve(t, server, http.MethodPost, "/fulfillment/v1/applications/app-plain-1/reject", `{"reason":"x"}`, as("brand-1", "brand"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func multipartUpload(t *testing.T, contentType string, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("deliverable_type", "reel"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if withFile {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="file"; filename="final cut.mp4"`)
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write([]byte("fake-video-bytes")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func postUpload(server *Server, taskID string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/fulfillment/v1/tasks/"+taskID+"/uploads", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-Id", "creator-1")
	req.Header.Set("X-User-Role", "creator")
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	return rr
}

func TestUploadContentMultipart(t *testing.T) {
	server := newTestServer(Options{})
	approved := approveOverHTTP(t, server, "app-plain-1")
	if rr := serve(t, server, http.MethodPost, "/fulfillment/v1/tasks/"+approved.TaskID+"/start", "", as("creator-1", "creator")); rr.Code != http.StatusOK {
		t.Fatalf("start work: %d body=%s", rr.Code, rr.Body.String())
	}

	body, contentType := multipartUpload(t, "video/mp4", true)
	rr := postUpload(server, approved.TaskID, body, contentType)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	got := decode[httptransport.UploadContentResponse](t, rr)
	if got.UploadID == "" || got.TaskStatus != string(entities.TaskStatusUploaded) {
		t.Fatalf("unexpected upload response: %+v", got)
	}

	detail := serve(t, server, http.MethodGet, "/fulfillment/v1/tasks/"+approved.TaskID, "", as("creator-1", "creator"))
	task := decode[httptransport.TaskDetailResponse](t, detail)
	if len(task.Uploads) != 1 || task.Uploads[0].ContentType != "video/mp4" || task.Uploads[0].DeliverableType != "reel" {
		t.Fatalf("unexpected uploads: %+v", task.Uploads)
	}
}

func TestUploadContentValidation(t *testing.T) {
	server := newTestServer(Options{})
	approved := approveOverHTTP(t, server, "app-plain-1")
	serve(t, server, http.MethodPost, "/fulfillment/v1/tasks/"+approved.TaskID+"/start", "", as("creator-1", "creator"))

	body, contentType := multipartUpload(t, "video/mp4", false)
	if rr := postUpload(server, approved.TaskID, body, contentType); rr.Code != http.StatusBadRequest {
		t.Fatalf("missing file part: expected 400, got %d", rr.Code)
	}

	body, contentType = multipartUpload(t, "application/zip", true)
	rr := postUpload(server, approved.TaskID, body, contentType)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unsupported type: expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
	if got := decode[httptransport.ErrorResponse](t, rr); got.Code != "validation_failed" {
		t.Fatalf("expected validation_failed, got %+v", got)
	}
}

func TestQueryValidation(t *testing.T) {
	server := newTestServer(Options{})
	if rr := serve(t, server, http.MethodGet, "/fulfillment/v1/payments?limit=abc", "", as("ops-1", "operations")); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: expected 400, got %d", rr.Code)
	}
	if rr := serve(t, server, http.MethodGet, "/fulfillment/v1/payments?limit=10", "", as("ops-1", "operations")); rr.Code != http.StatusOK {
		t.Fatalf("list payments: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if rr := serve(t, server, http.MethodGet, "/fulfillment/v1/tasks/task-1/can-transition", "", as("ops-1", "operations")); rr.Code != http.StatusBadRequest {
		t.Fatalf("missing target: expected 400, got %d", rr.Code)
	}
}

func signToken(t *testing.T, secret string, subject string, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, actorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: role,
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestJWTAuthentication(t *testing.T) {
	server := newTestServer(Options{JWTSecret: "test-secret"})
	path := "/fulfillment/v1/applications/app-plain-1/approve"

	if rr := serve(t, server, http.MethodPost, path, "", as("brand-1", "brand")); rr.Code != http.StatusUnauthorized {
		t.Fatalf("headers must be ignored with a secret, got %d", rr.Code)
	}

	forged := signToken(t, "other-secret", "brand-1", "brand")
	if rr := serve(t, server, http.MethodPost, path, "", map[string]string{"Authorization": "Bearer " + forged}); rr.Code != http.StatusUnauthorized {
		t.Fatalf("forged token: expected 401, got %d", rr.Code)
	}

	valid := signToken(t, "test-secret", "brand-1", "brand")
	rr := serve(t, server, http.MethodPost, path, "", map[string]string{"Authorization": "Bearer " + valid})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestChangesStreamFiltersTopics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := messaging.NewBus(nil)
	hub := NewChangeHub(nil)
	if err := hub.Start(ctx, bus, "api-test"); err != nil {
		t.Fatalf("start hub: %v", err)
	}
	server := newTestServer(Options{Changes: hub})
	srv := httptest.NewServer(server.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/fulfillment/v1/changes?topic=" + contractsv1.TopicTask
	header := http.Header{}
	header.Set("X-User-Id", "ops-1")
	header.Set("X-User-Role", "operations")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial changes: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.clientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := bus.Publish(ctx, contractsv1.TopicShipment, contractsv1.Envelope{EventID: "evt-shipment", EventType: "shipment.shipped"}); err != nil {
		t.Fatalf("publish shipment: %v", err)
	}
	if err := bus.Publish(ctx, contractsv1.TopicTask, contractsv1.Envelope{EventID: "evt-task", EventType: "task.started"}); err != nil {
		t.Fatalf("publish task: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got contractsv1.Envelope
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read change: %v", err)
	}
	if got.EventID != "evt-task" {
		t.Fatalf("expected only task events, got %+v", got)
	}
}

func TestChangesStreamRequiresActor(t *testing.T) {
	server := newTestServer(Options{Changes: NewChangeHub(nil)})
	rr := serve(t, server, http.MethodGet, "/fulfillment/v1/changes", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
