package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/quickstack-pos/api/internal/database"
	"github.com/quickstack-pos/api/internal/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentServicer defines the service methods needed by payment handlers.
// Satisfied by *service.PaymentService.
type PaymentServicer interface {
	RegisterPayment(ctx context.Context, actor service.Actor, req service.RegisterPaymentRequest) (database.Payment, error)
	ListPayments(ctx context.Context, actor service.Actor, orderID uuid.UUID) ([]database.Payment, error)
}

// PaymentHandler handles payment endpoints.
type PaymentHandler struct {
	svc PaymentServicer
	log *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(svc PaymentServicer, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{svc: svc, log: log}
}

// RegisterRoutes registers payment endpoints on the given Chi router.
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/payments", h.Register)
	r.Get("/orders/{id}/payments", h.List)
}

// --- Request / Response types ---

type registerPaymentRequest struct {
	OrderID         string `json:"orderId"`
	PaymentMethod   string `json:"paymentMethod"`
	Amount          string `json:"amount"`
	ReferenceNumber string `json:"referenceNumber"`
	Notes           string `json:"notes"`
}

type paymentResponse struct {
	ID              uuid.UUID `json:"id"`
	OrderID         uuid.UUID `json:"orderId"`
	PaymentMethod   string    `json:"paymentMethod"`
	Amount          string    `json:"amount"`
	AmountReceived  string    `json:"amountReceived"`
	ChangeGiven     string    `json:"changeGiven"`
	Status          string    `json:"status"`
	ReferenceNumber *string   `json:"referenceNumber"`
	Notes           *string   `json:"notes"`
	CreatedBy       uuid.UUID `json:"createdBy"`
	CreatedAt       time.Time `json:"createdAt"`
}

// --- Handlers ---

// Register handles POST /payments. A payment that covers the order total
// completes the order.
func (h *PaymentHandler) Register(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req registerPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "orderId is required")
		return
	}

	if req.Amount == "" {
		writeError(w, http.StatusBadRequest, service.ErrInvalidPaymentAmount.Code, "amount is required")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, service.ErrInvalidPaymentAmount.Code, "amount must be a decimal number")
		return
	}

	payment, err := h.svc.RegisterPayment(r.Context(), actor, service.RegisterPaymentRequest{
		OrderID:         orderID,
		PaymentMethod:   req.PaymentMethod,
		Amount:          amount,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
	})
	if err != nil {
		writeServiceError(w, h.log, "register payment", err)
		return
	}

	writeJSON(w, http.StatusCreated, dbPaymentToResponse(payment))
}

// List handles GET /orders/{id}/payments.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid order ID")
		return
	}

	payments, err := h.svc.ListPayments(r.Context(), actor, orderID)
	if err != nil {
		writeServiceError(w, h.log, "list payments", err)
		return
	}

	resp := make([]paymentResponse, len(payments))
	for i, p := range payments {
		resp[i] = dbPaymentToResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

func dbPaymentToResponse(p database.Payment) paymentResponse {
	return paymentResponse{
		ID:              p.ID,
		OrderID:         p.OrderID,
		PaymentMethod:   p.PaymentMethod,
		Amount:          numericToString(p.Amount),
		AmountReceived:  numericToString(p.AmountReceived),
		ChangeGiven:     numericToString(p.ChangeGiven),
		Status:          p.Status,
		ReferenceNumber: textPtr(p.ReferenceNumber),
		Notes:           textPtr(p.Notes),
		CreatedBy:       p.CreatedBy,
		CreatedAt:       p.CreatedAt,
	}
}
