package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/openpayroll/payroll-backend-go/internal/domain/payroll"
	"github.com/openpayroll/payroll-backend-go/internal/handler/http/response"
	"github.com/openpayroll/payroll-backend-go/internal/pkg/jwt"
	"github.com/openpayroll/payroll-backend-go/internal/pkg/sse"
)

type PayrollHandler interface {
	Process(w http.ResponseWriter, r *http.Request)
	GetPayslip(w http.ResponseWriter, r *http.Request)
	RepriceBreakdown(w http.ResponseWriter, r *http.Request)
	ListPayheads(w http.ResponseWriter, r *http.Request)
	GetStreamToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
	jwtService     jwt.Service
	hub            *sse.Hub
}

func NewPayrollHandler(payrollService payroll.PayrollService, jwtService jwt.Service, hub *sse.Hub) PayrollHandler {
	return &payrollHandlerImpl{
		payrollService: payrollService,
		jwtService:     jwtService,
		hub:            hub,
	}
}

type processResponse struct {
	RunID string              `json:"run_id"`
	Data  payroll.PayslipData `json:"data"`
}

// Process runs the full pay-run pipeline for a period. Progress messages are
// published to the run's SSE stream while the request is in flight.
func (h *payrollHandlerImpl) Process(w http.ResponseWriter, r *http.Request) {
	var req payroll.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}

	data, err := h.payrollService.Process(r.Context(), req, func(msg string) {
		h.hub.Progress(req.RunID, msg)
	})
	if err != nil {
		h.hub.Publish(req.RunID, sse.Event{
			RunID: req.RunID,
			Event: "failed",
			Data:  map[string]string{"message": "Pay run failed"},
		})
		response.HandleError(w, err)
		return
	}

	h.hub.Publish(req.RunID, sse.Event{
		RunID: req.RunID,
		Event: "done",
		Data:  map[string]string{"message": "Pay run committed"},
	})
	response.SuccessWithMessage(w, "Payroll processed", processResponse{
		RunID: req.RunID,
		Data:  data,
	})
}

func (h *payrollHandlerImpl) GetPayslip(w http.ResponseWriter, r *http.Request) {
	periodID := r.URL.Query().Get("period_id")
	if periodID == "" {
		response.BadRequest(w, "period_id is required", nil)
		return
	}

	data, err := h.payrollService.Payslip(r.Context(), periodID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, data)
}

func (h *payrollHandlerImpl) RepriceBreakdown(w http.ResponseWriter, r *http.Request) {
	var req payroll.RepriceBreakdownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	row, err := h.payrollService.Reprice(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Breakdown updated", row)
}

func (h *payrollHandlerImpl) ListPayheads(w http.ResponseWriter, r *http.Request) {
	payheads, err := h.payrollService.Payheads(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payheads)
}

type streamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// GetStreamToken generates a short-lived token for a run's SSE stream
func (h *payrollHandlerImpl) GetStreamToken(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		response.BadRequest(w, "run_id is required", nil)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateStreamToken(runID)
	if err != nil {
		response.InternalServerError(w, "Failed to generate stream token")
		return
	}

	response.Success(w, streamTokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream handles the SSE connection for a run's progress messages
func (h *payrollHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// Token comes as a query parameter (EventSource cannot set headers)
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	runID, err := h.jwtService.ValidateStreamToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(runID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"run_id\":%q}\n\n", runID)
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
