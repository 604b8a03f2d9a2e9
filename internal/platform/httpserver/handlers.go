package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"
	httptransport "creatorflow/contexts/campaign-fulfillment/fulfillment-service/transport/http"

	"github.com/go-chi/chi/v5"
)

const multipartMemory = 32 << 20

// decodeBody reads an optional JSON body; an empty body leaves out untouched.
func decodeBody(r *http.Request, out any) error {
	if r.Body == nil {
		return nil
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func (s *Server) actor(w http.ResponseWriter, r *http.Request) (entities.Actor, bool) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "actor is required", nil)
		return entities.Actor{}, false
	}
	return actor, true
}

func idempotencyKey(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("Idempotency-Key"))
}

func (s *Server) handleApproveApplication(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req httptransport.ApproveApplicationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	resp, err := s.fulfillment.Handler.ApproveApplicationHandler(r.Context(), actor, idempotencyKey(r), chi.URLParam(r, "application_id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRejectApplication(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req httptransport.RejectApplicationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	resp, err := s.fulfillment.Handler.RejectApplicationHandler(r.Context(), actor, chi.URLParam(r, "application_id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req httptransport.AddProductRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	resp, err := s.fulfillment.Handler.AddProductHandler(r.Context(), actor, chi.URLParam(r, "campaign_id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	status := http.StatusOK
	if resp.ProductCreated {
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleGetShipmentStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	resp, err := s.fulfillment.Handler.GetShipmentStatusHandler(r.Context(), actor, query.Get("campaign_id"), query.Get("creator_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitAddress(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req httptransport.SubmitAddressRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	resp, err := s.fulfillment.Handler.SubmitAddressHandler(r.Context(), actor, chi.URLParam(r, "shipment_id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMarkShipped(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req httptransport.MarkShippedRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	resp, err := s.fulfillment.Handler.MarkShippedHandler(r.Context(), actor, chi.URLParam(r, "shipment_id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConfirmDelivery(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	resp, err := s.fulfillment.Handler.ConfirmDeliveryHandler(r.Context(), actor, chi.URLParam(r, "shipment_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFlagIssue(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req httptransport.FlagIssueRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	resp, err := s.fulfillment.Handler.FlagIssueHandler(r.Context(), actor, chi.URLParam(r, "shipment_id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	resp, err := s.fulfillment.Handler.GetTaskHandler(r.Context(), actor, chi.URLParam(r, "task_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCanTransition(w http.ResponseWriter, r *http.Request) {
	target := strings.TrimSpace(r.URL.Query().Get("to"))
	if target == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "to query parameter is required", nil)
		return
	}
	resp, err := s.fulfillment.Handler.CanTransitionHandler(r.Context(), chi.URLParam(r, "task_id"), target)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartWork(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	resp, err := s.fulfillment.Handler.StartWorkHandler(r.Context(), actor, chi.URLParam(r, "task_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOpenDispute(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req httptransport.OpenDisputeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	resp, err := s.fulfillment.Handler.OpenDisputeHandler(r.Context(), actor, chi.URLParam(r, "task_id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleUploadContent streams the "file" part of a multipart form into
// content storage. The body limit leaves headroom for form fields.
func (s *Server) handleUploadContent(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDomainError(w, domainerrors.ErrFileTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_request", "multipart form is required", nil)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "file part is required", nil)
		return
	}
	defer file.Close()

	resp, err := s.fulfillment.Handler.UploadContentHandler(r.Context(), actor, chi.URLParam(r, "task_id"), httptransport.UploadContentRequest{
		FileName:        header.Filename,
		ContentType:     header.Header.Get("Content-Type"),
		SizeBytes:       header.Size,
		Body:            file,
		DeliverableType: r.FormValue("deliverable_type"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleRequestRevision(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req httptransport.RequestRevisionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	resp, err := s.fulfillment.Handler.RequestRevisionHandler(r.Context(), actor, chi.URLParam(r, "task_id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleApproveContent(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req httptransport.ApproveContentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	resp, err := s.fulfillment.Handler.ApproveContentHandler(r.Context(), actor, idempotencyKey(r), chi.URLParam(r, "task_id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	limit := 0
	if raw := query.Get("limit"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer", nil)
			return
		}
		limit = value
	}
	resp, err := s.fulfillment.Handler.ListPaymentsHandler(r.Context(), actor, query.Get("status"), query.Get("creator_id"), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req httptransport.MarkPaidRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	resp, err := s.fulfillment.Handler.MarkPaidHandler(r.Context(), actor, chi.URLParam(r, "payment_id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateBatchPayout(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req httptransport.CreateBatchPayoutRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	resp, err := s.fulfillment.Handler.CreateBatchPayoutHandler(r.Context(), actor, idempotencyKey(r), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	status := http.StatusCreated
	if resp.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleGetBatchPayout(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	resp, err := s.fulfillment.Handler.GetBatchPayoutHandler(r.Context(), actor, chi.URLParam(r, "batch_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
