package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/quickstack-pos/api/internal/database"
	"github.com/quickstack-pos/api/internal/middleware"
	"go.uber.org/zap"
)

// CustomerStore defines the database methods needed by customer handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CustomerStore interface {
	ListCustomers(ctx context.Context, arg database.ListCustomersParams) ([]database.Customer, error)
	GetCustomer(ctx context.Context, arg database.GetCustomerParams) (database.Customer, error)
	CreateCustomer(ctx context.Context, arg database.CreateCustomerParams) (database.Customer, error)
	UpdateCustomer(ctx context.Context, arg database.UpdateCustomerParams) (database.Customer, error)
	SoftDeleteCustomer(ctx context.Context, arg database.SoftDeleteCustomerParams) (uuid.UUID, error)
}

// CustomerHandler handles customer CRUD endpoints.
type CustomerHandler struct {
	store CustomerStore
	log   *zap.Logger
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(store CustomerStore, log *zap.Logger) *CustomerHandler {
	return &CustomerHandler{store: store, log: log}
}

// RegisterRoutes registers customer CRUD endpoints on the given Chi router.
func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/customers", h.List)
	r.Post("/customers", h.Create)
	r.Get("/customers/{id}", h.Get)
	r.Put("/customers/{id}", h.Update)
	r.With(middleware.RequireManager).Delete("/customers/{id}", h.Delete)
}

// --- Request / Response types ---

type customerRequest struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Whatsapp      string `json:"whatsapp"`
	AddressLine1  string `json:"addressLine1"`
	AddressLine2  string `json:"addressLine2"`
	City          string `json:"city"`
	PostalCode    string `json:"postalCode"`
	DeliveryNotes string `json:"deliveryNotes"`
}

type customerResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          *string    `json:"name"`
	Phone         *string    `json:"phone"`
	Email         *string    `json:"email"`
	Whatsapp      *string    `json:"whatsapp"`
	AddressLine1  *string    `json:"addressLine1"`
	AddressLine2  *string    `json:"addressLine2"`
	City          *string    `json:"city"`
	PostalCode    *string    `json:"postalCode"`
	DeliveryNotes *string    `json:"deliveryNotes"`
	TotalOrders   int32      `json:"totalOrders"`
	TotalSpent    string     `json:"totalSpent"`
	LastOrderAt   *time.Time `json:"lastOrderAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// --- Handlers ---

// List handles GET /customers with optional ?search= on name or phone.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	limit, offset := pagination(r)
	customers, err := h.store.ListCustomers(r.Context(), database.ListCustomersParams{
		TenantID: actor.TenantID,
		Search:   optionalText(r.URL.Query().Get("search")),
		Limit:    int32(limit),
		Offset:   int32(offset),
	})
	if err != nil {
		h.log.Error("list customers", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	resp := make([]customerResponse, len(customers))
	for i, c := range customers {
		resp[i] = dbCustomerToResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /customers/{id}.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid customer ID")
		return
	}

	customer, err := h.store.GetCustomer(r.Context(), database.GetCustomerParams{ID: id, TenantID: actor.TenantID})
	if err != nil {
		h.writeStoreError(w, "get customer", err)
		return
	}

	writeJSON(w, http.StatusOK, dbCustomerToResponse(customer))
}

// Create handles POST /customers.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	req, ok := decodeCustomerRequest(w, r)
	if !ok {
		return
	}

	customer, err := h.store.CreateCustomer(r.Context(), database.CreateCustomerParams{
		TenantID:      actor.TenantID,
		Name:          optionalText(req.Name),
		Phone:         optionalText(req.Phone),
		Email:         optionalText(req.Email),
		Whatsapp:      optionalText(req.Whatsapp),
		AddressLine1:  optionalText(req.AddressLine1),
		AddressLine2:  optionalText(req.AddressLine2),
		City:          optionalText(req.City),
		PostalCode:    optionalText(req.PostalCode),
		DeliveryNotes: optionalText(req.DeliveryNotes),
	})
	if err != nil {
		h.writeStoreError(w, "create customer", err)
		return
	}

	writeJSON(w, http.StatusCreated, dbCustomerToResponse(customer))
}

// Update handles PUT /customers/{id}. The body replaces every field.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid customer ID")
		return
	}

	req, ok := decodeCustomerRequest(w, r)
	if !ok {
		return
	}

	customer, err := h.store.UpdateCustomer(r.Context(), database.UpdateCustomerParams{
		ID:            id,
		TenantID:      actor.TenantID,
		Name:          optionalText(req.Name),
		Phone:         optionalText(req.Phone),
		Email:         optionalText(req.Email),
		Whatsapp:      optionalText(req.Whatsapp),
		AddressLine1:  optionalText(req.AddressLine1),
		AddressLine2:  optionalText(req.AddressLine2),
		City:          optionalText(req.City),
		PostalCode:    optionalText(req.PostalCode),
		DeliveryNotes: optionalText(req.DeliveryNotes),
	})
	if err != nil {
		h.writeStoreError(w, "update customer", err)
		return
	}

	writeJSON(w, http.StatusOK, dbCustomerToResponse(customer))
}

// Delete handles DELETE /customers/{id} as a soft delete.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid customer ID")
		return
	}

	if _, err := h.store.SoftDeleteCustomer(r.Context(), database.SoftDeleteCustomerParams{ID: id, TenantID: actor.TenantID}); err != nil {
		h.writeStoreError(w, "delete customer", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func decodeCustomerRequest(w http.ResponseWriter, r *http.Request) (customerRequest, bool) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return req, false
	}
	if strings.TrimSpace(req.Phone) == "" && strings.TrimSpace(req.Email) == "" && strings.TrimSpace(req.Whatsapp) == "" {
		writeError(w, http.StatusBadRequest, "CONTACT_REQUIRED", "one of phone, email or whatsapp is required")
		return req, false
	}
	return req, true
}

func (h *CustomerHandler) writeStoreError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "customer not found")
		return
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			writeError(w, http.StatusConflict, "PHONE_EXISTS", "phone already exists")
			return
		case "23514":
			writeError(w, http.StatusBadRequest, "CONTACT_REQUIRED", "one of phone, email or whatsapp is required")
			return
		}
	}
	h.log.Error(op, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
}

func optionalText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func dbCustomerToResponse(c database.Customer) customerResponse {
	return customerResponse{
		ID:            c.ID,
		Name:          textPtr(c.Name),
		Phone:         textPtr(c.Phone),
		Email:         textPtr(c.Email),
		Whatsapp:      textPtr(c.Whatsapp),
		AddressLine1:  textPtr(c.AddressLine1),
		AddressLine2:  textPtr(c.AddressLine2),
		City:          textPtr(c.City),
		PostalCode:    textPtr(c.PostalCode),
		DeliveryNotes: textPtr(c.DeliveryNotes),
		TotalOrders:   c.TotalOrders,
		TotalSpent:    numericToString(c.TotalSpent),
		LastOrderAt:   timePtr(c.LastOrderAt),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
