package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/quickstack-pos/api/internal/database"
	"github.com/quickstack-pos/api/internal/enum"
	"github.com/quickstack-pos/api/internal/middleware"
	"github.com/quickstack-pos/api/internal/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, actor service.Actor, req service.CreateOrderRequest) (*service.OrderDetail, error)
	GetOrder(ctx context.Context, actor service.Actor, orderID uuid.UUID) (*service.OrderDetail, error)
	ListOrders(ctx context.Context, actor service.Actor, req service.ListOrdersRequest) ([]database.Order, error)
	History(ctx context.Context, actor service.Actor, orderID uuid.UUID) ([]database.OrderStatusHistory, error)
	AddItem(ctx context.Context, actor service.Actor, orderID uuid.UUID, req service.OrderItemRequest) (*service.OrderDetail, error)
	RemoveItem(ctx context.Context, actor service.Actor, orderID, itemID uuid.UUID) (*service.OrderDetail, error)
	Submit(ctx context.Context, actor service.Actor, orderID uuid.UUID) (*service.OrderDetail, error)
	MarkReady(ctx context.Context, actor service.Actor, orderID uuid.UUID) (*service.OrderDetail, error)
	Cancel(ctx context.Context, actor service.Actor, orderID uuid.UUID) error
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc OrderServicer
	log *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, log *zap.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, log: log}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted inside the authenticated group.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders", h.Create)
	r.Get("/orders", h.List)
	r.Get("/orders/{id}", h.Get)
	r.Get("/orders/{id}/history", h.History)
	r.Post("/orders/{id}/items", h.AddItem)
	r.Delete("/orders/{id}/items/{itemId}", h.RemoveItem)
	r.Post("/orders/{id}/submit", h.Submit)
	r.Post("/orders/{id}/ready", h.MarkReady)
	r.With(middleware.RequireManager).Post("/orders/{id}/cancel", h.Cancel)
}

// --- Request / Response types ---

type createOrderRequest struct {
	BranchID     string             `json:"branchId"`
	ServiceType  string             `json:"serviceType"`
	TableID      string             `json:"tableId"`
	CustomerID   string             `json:"customerId"`
	Notes        string             `json:"notes"`
	KitchenNotes string             `json:"kitchenNotes"`
	Items        []orderItemRequest `json:"items"`
}

type orderItemRequest struct {
	ProductID string            `json:"productId"`
	VariantID string            `json:"variantId"`
	ComboID   string            `json:"comboId"`
	Quantity  int32             `json:"quantity"`
	Notes     string            `json:"notes"`
	Modifiers []modifierRequest `json:"modifiers"`
}

type modifierRequest struct {
	ModifierID string `json:"modifierId"`
	Quantity   int32  `json:"quantity"`
}

type orderResponse struct {
	ID            uuid.UUID           `json:"id"`
	BranchID      uuid.UUID           `json:"branchId"`
	TableID       *uuid.UUID          `json:"tableId"`
	CustomerID    *uuid.UUID          `json:"customerId"`
	OrderNumber   string              `json:"orderNumber"`
	DailySequence int32               `json:"dailySequence"`
	ServiceType   string              `json:"serviceType"`
	Status        string              `json:"status"`
	Subtotal      string              `json:"subtotal"`
	TaxRate       string              `json:"taxRate"`
	Tax           string              `json:"tax"`
	Discount      string              `json:"discount"`
	Total         string              `json:"total"`
	Notes         *string             `json:"notes"`
	KitchenNotes  *string             `json:"kitchenNotes"`
	OpenedAt      time.Time           `json:"openedAt"`
	ClosedAt      *time.Time          `json:"closedAt"`
	CreatedBy     uuid.UUID           `json:"createdBy"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
	Items         []orderItemResponse `json:"items,omitempty"`
}

type orderItemResponse struct {
	ID             uuid.UUID                   `json:"id"`
	ProductID      *uuid.UUID                  `json:"productId"`
	VariantID      *uuid.UUID                  `json:"variantId"`
	ComboID        *uuid.UUID                  `json:"comboId"`
	ProductName    string                      `json:"productName"`
	VariantName    *string                     `json:"variantName"`
	Quantity       int32                       `json:"quantity"`
	UnitPrice      string                      `json:"unitPrice"`
	ModifiersTotal string                      `json:"modifiersTotal"`
	LineTotal      string                      `json:"lineTotal"`
	KitchenStatus  string                      `json:"kitchenStatus"`
	KitchenSentAt  *time.Time                  `json:"kitchenSentAt"`
	Notes          *string                     `json:"notes"`
	Modifiers      []orderItemModifierResponse `json:"modifiers"`
}

type orderItemModifierResponse struct {
	ID              uuid.UUID  `json:"id"`
	ModifierID      *uuid.UUID `json:"modifierId"`
	ModifierName    string     `json:"modifierName"`
	PriceAdjustment string     `json:"priceAdjustment"`
	Quantity        int32      `json:"quantity"`
}

// orderListResponse wraps a list of orders with pagination metadata.
type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type statusHistoryResponse struct {
	Status    string    `json:"status"`
	ChangedBy uuid.UUID `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
}

// --- Handlers ---

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "branchId is required")
		return
	}
	tableID, err := parseOptionalUUID(req.TableID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid tableId")
		return
	}
	customerID, err := parseOptionalUUID(req.CustomerID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid customerId")
		return
	}

	items := make([]service.OrderItemRequest, len(req.Items))
	for i, item := range req.Items {
		svcItem, msg := toServiceItem(item)
		if msg != "" {
			writeError(w, http.StatusBadRequest, "INVALID_INPUT", formatItemError(i, msg))
			return
		}
		items[i] = svcItem
	}

	detail, err := h.svc.CreateOrder(r.Context(), actor, service.CreateOrderRequest{
		BranchID:     branchID,
		ServiceType:  req.ServiceType,
		TableID:      tableID,
		CustomerID:   customerID,
		Notes:        req.Notes,
		KitchenNotes: req.KitchenNotes,
		Items:        items,
	})
	if err != nil {
		writeServiceError(w, h.log, "create order", err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderDetailResponse(detail))
}

// List handles GET /orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	limit, offset := pagination(r)
	req := service.ListOrdersRequest{
		Limit:  int32(limit),
		Offset: int32(offset),
	}

	if s := r.URL.Query().Get("branchId"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid branchId")
			return
		}
		req.BranchID = uuid.NullUUID{UUID: id, Valid: true}
	}
	if s := r.URL.Query().Get("status"); s != "" {
		if !enum.IsValidOrderStatus(s) {
			writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid status")
			return
		}
		req.Status = s
	}

	orders, err := h.svc.ListOrders(r.Context(), actor, req)
	if err != nil {
		writeServiceError(w, h.log, "list orders", err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = dbOrderToResponse(o)
	}

	writeJSON(w, http.StatusOK, orderListResponse{
		Orders: resp,
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, orderID, ok := h.orderRequest(w, r)
	if !ok {
		return
	}

	detail, err := h.svc.GetOrder(r.Context(), actor, orderID)
	if err != nil {
		writeServiceError(w, h.log, "get order", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderDetailResponse(detail))
}

// History handles GET /orders/{id}/history.
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	actor, orderID, ok := h.orderRequest(w, r)
	if !ok {
		return
	}

	rows, err := h.svc.History(r.Context(), actor, orderID)
	if err != nil {
		writeServiceError(w, h.log, "order history", err)
		return
	}

	resp := make([]statusHistoryResponse, len(rows))
	for i, row := range rows {
		resp[i] = statusHistoryResponse{
			Status:    row.Status,
			ChangedBy: row.ChangedBy,
			ChangedAt: row.ChangedAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// AddItem handles POST /orders/{id}/items.
func (h *OrderHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	actor, orderID, ok := h.orderRequest(w, r)
	if !ok {
		return
	}

	var req orderItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	item, msg := toServiceItem(req)
	if msg != "" {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", msg)
		return
	}

	detail, err := h.svc.AddItem(r.Context(), actor, orderID, item)
	if err != nil {
		writeServiceError(w, h.log, "add order item", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderDetailResponse(detail))
}

// RemoveItem handles DELETE /orders/{id}/items/{itemId}.
func (h *OrderHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	actor, orderID, ok := h.orderRequest(w, r)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid item ID")
		return
	}

	if _, err := h.svc.RemoveItem(r.Context(), actor, orderID, itemID); err != nil {
		writeServiceError(w, h.log, "remove order item", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Submit handles POST /orders/{id}/submit.
func (h *OrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, orderID, ok := h.orderRequest(w, r)
	if !ok {
		return
	}

	detail, err := h.svc.Submit(r.Context(), actor, orderID)
	if err != nil {
		writeServiceError(w, h.log, "submit order", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderDetailResponse(detail))
}

// MarkReady handles POST /orders/{id}/ready.
func (h *OrderHandler) MarkReady(w http.ResponseWriter, r *http.Request) {
	actor, orderID, ok := h.orderRequest(w, r)
	if !ok {
		return
	}

	detail, err := h.svc.MarkReady(r.Context(), actor, orderID)
	if err != nil {
		writeServiceError(w, h.log, "mark order ready", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderDetailResponse(detail))
}

// Cancel handles POST /orders/{id}/cancel. Managers and owners only.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, orderID, ok := h.orderRequest(w, r)
	if !ok {
		return
	}

	if err := h.svc.Cancel(r.Context(), actor, orderID); err != nil {
		writeServiceError(w, h.log, "cancel order", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func (h *OrderHandler) orderRequest(w http.ResponseWriter, r *http.Request) (service.Actor, uuid.UUID, bool) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return service.Actor{}, uuid.Nil, false
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid order ID")
		return service.Actor{}, uuid.Nil, false
	}
	return actor, orderID, true
}

// toServiceItem parses the ids of one line. Business rules are left to the service.
func toServiceItem(item orderItemRequest) (service.OrderItemRequest, string) {
	productID, err := parseOptionalUUID(item.ProductID)
	if err != nil {
		return service.OrderItemRequest{}, "invalid productId"
	}
	variantID, err := parseOptionalUUID(item.VariantID)
	if err != nil {
		return service.OrderItemRequest{}, "invalid variantId"
	}
	comboID, err := parseOptionalUUID(item.ComboID)
	if err != nil {
		return service.OrderItemRequest{}, "invalid comboId"
	}

	mods := make([]service.ModifierRequest, len(item.Modifiers))
	for j, m := range item.Modifiers {
		id, err := uuid.Parse(m.ModifierID)
		if err != nil {
			return service.OrderItemRequest{}, fmt.Sprintf("modifiers[%d]: invalid modifierId", j)
		}
		mods[j] = service.ModifierRequest{ModifierID: id, Quantity: m.Quantity}
	}

	return service.OrderItemRequest{
		ProductID: productID,
		VariantID: variantID,
		ComboID:   comboID,
		Quantity:  item.Quantity,
		Notes:     item.Notes,
		Modifiers: mods,
	}, ""
}

func formatItemError(idx int, msg string) string {
	return fmt.Sprintf("items[%d]: %s", idx, msg)
}

func toOrderDetailResponse(detail *service.OrderDetail) orderResponse {
	resp := dbOrderToResponse(detail.Order)
	resp.Items = make([]orderItemResponse, len(detail.Items))
	for i, it := range detail.Items {
		resp.Items[i] = dbOrderItemToResponse(it.Item, it.Modifiers)
	}
	return resp
}

// numericToString formats money with two decimals; invalid values render as "0.00".
func numericToString(n pgtype.Numeric) string {
	return numericToDecimal(n).StringFixed(2)
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func timePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

func dbOrderToResponse(o database.Order) orderResponse {
	return orderResponse{
		ID:            o.ID,
		BranchID:      o.BranchID,
		TableID:       uuidPtr(o.TableID),
		CustomerID:    uuidPtr(o.CustomerID),
		OrderNumber:   o.OrderNumber,
		DailySequence: o.DailySequence,
		ServiceType:   o.ServiceType,
		Status:        o.Status,
		Subtotal:      numericToString(o.Subtotal),
		TaxRate:       numericToDecimal(o.TaxRate).StringFixed(4),
		Tax:           numericToString(o.Tax),
		Discount:      numericToString(o.Discount),
		Total:         numericToString(o.Total),
		Notes:         textPtr(o.Notes),
		KitchenNotes:  textPtr(o.KitchenNotes),
		OpenedAt:      o.OpenedAt,
		ClosedAt:      timePtr(o.ClosedAt),
		CreatedBy:     o.CreatedBy,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func dbOrderItemToResponse(item database.OrderItem, mods []database.OrderItemModifier) orderItemResponse {
	modResp := make([]orderItemModifierResponse, len(mods))
	for i, m := range mods {
		modResp[i] = orderItemModifierResponse{
			ID:              m.ID,
			ModifierID:      uuidPtr(m.ModifierID),
			ModifierName:    m.ModifierName,
			PriceAdjustment: numericToString(m.PriceAdjustment),
			Quantity:        m.Quantity,
		}
	}

	return orderItemResponse{
		ID:             item.ID,
		ProductID:      uuidPtr(item.ProductID),
		VariantID:      uuidPtr(item.VariantID),
		ComboID:        uuidPtr(item.ComboID),
		ProductName:    item.ProductName,
		VariantName:    textPtr(item.VariantName),
		Quantity:       item.Quantity,
		UnitPrice:      numericToString(item.UnitPrice),
		ModifiersTotal: numericToString(item.ModifiersTotal),
		LineTotal:      numericToString(item.LineTotal),
		KitchenStatus:  item.KitchenStatus,
		KitchenSentAt:  timePtr(item.KitchenSentAt),
		Notes:          textPtr(item.Notes),
		Modifiers:      modResp,
	}
}
