package handler

import (
	"encoding/json"
	"net/http"

	"paddock/internal/payments/service"
	httputil "paddock/pkg/http"
	"paddock/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type PaymentHandler struct {
	service service.PaymentService
	log     *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log,
	}
}

func (h *PaymentHandler) ChargeBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req service.ChargeBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "ChargeBooking", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	outcome, err := h.service.ChargeBooking(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ChargeBooking", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, outcome); err != nil {
		h.log.Error("failed to write success response", "handler", "ChargeBooking", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentHandler) GetCharge(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	outcome, err := h.service.GetCharge(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetCharge", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, outcome); err != nil {
		h.log.Error("failed to write success response", "handler", "GetCharge", "operation", "WriteSuccess", "error", err)
	}
}

type webhookBody struct {
	ID string `json:"id"`
}

// Webhook always acknowledges authentic events with 200; retrying a
// settled charge would only duplicate downstream events.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body webhookBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Webhook", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.HandleProcessorEvent(r.Context(), body.ID); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Webhook", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *PaymentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/payments/bookings", h.ChargeBooking)
	router.GET("/api/v1/payments/charges/id/:id", h.GetCharge)
	router.POST("/api/v1/payments/webhook", h.Webhook)
}
