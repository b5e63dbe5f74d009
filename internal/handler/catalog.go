package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/quickstack-pos/api/internal/database"
	"go.uber.org/zap"
)

// CatalogStore defines the read-only catalog queries a till needs to build orders.
// Satisfied by *database.Queries; narrow interface for testability.
type CatalogStore interface {
	ListMenuProducts(ctx context.Context, tenantID uuid.UUID) ([]database.GetProductForOrderRow, error)
	ListMenuVariants(ctx context.Context, tenantID uuid.UUID) ([]database.GetVariantForOrderRow, error)
	ListMenuModifiers(ctx context.Context, tenantID uuid.UUID) ([]database.GetModifierForOrderRow, error)
	ListMenuCombos(ctx context.Context, tenantID uuid.UUID) ([]database.GetComboForOrderRow, error)
	GetBranch(ctx context.Context, arg database.GetBranchParams) (database.Branch, error)
	ListTablesByBranch(ctx context.Context, arg database.ListTablesByBranchParams) ([]database.RestaurantTable, error)
}

// CatalogHandler serves the menu and floor plan. Prices shown here are the
// current catalog prices; orders keep their own snapshot.
type CatalogHandler struct {
	store CatalogStore
	log   *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(store CatalogStore, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{store: store, log: log}
}

// RegisterRoutes registers catalog endpoints on the given Chi router.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.ListProducts)
	r.Get("/modifiers", h.ListModifiers)
	r.Get("/combos", h.ListCombos)
	r.Get("/tables", h.ListTables)
}

// --- Response types ---

type variantResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	PriceAdjustment string    `json:"priceAdjustment"`
}

type productResponse struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	BasePrice   string            `json:"basePrice"`
	IsAvailable bool              `json:"isAvailable"`
	Variants    []variantResponse `json:"variants"`
}

type modifierResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	PriceAdjustment string    `json:"priceAdjustment"`
}

type comboResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Price string    `json:"price"`
}

type tableResponse struct {
	ID       uuid.UUID `json:"id"`
	AreaID   uuid.UUID `json:"areaId"`
	Number   string    `json:"number"`
	Capacity int32     `json:"capacity"`
	Status   string    `json:"status"`
}

// --- Handlers ---

// ListProducts handles GET /products. Each product carries its active variants.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	products, err := h.store.ListMenuProducts(r.Context(), actor.TenantID)
	if err != nil {
		h.internalError(w, "list products", err)
		return
	}
	variants, err := h.store.ListMenuVariants(r.Context(), actor.TenantID)
	if err != nil {
		h.internalError(w, "list variants", err)
		return
	}

	byProduct := make(map[uuid.UUID][]variantResponse, len(products))
	for _, v := range variants {
		byProduct[v.ProductID] = append(byProduct[v.ProductID], variantResponse{
			ID:              v.ID,
			Name:            v.Name,
			PriceAdjustment: numericToString(v.PriceAdjustment),
		})
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		vs := byProduct[p.ID]
		if vs == nil {
			vs = []variantResponse{}
		}
		resp[i] = productResponse{
			ID:          p.ID,
			Name:        p.Name,
			BasePrice:   numericToString(p.BasePrice),
			IsAvailable: p.IsAvailable,
			Variants:    vs,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListModifiers handles GET /modifiers.
func (h *CatalogHandler) ListModifiers(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	modifiers, err := h.store.ListMenuModifiers(r.Context(), actor.TenantID)
	if err != nil {
		h.internalError(w, "list modifiers", err)
		return
	}

	resp := make([]modifierResponse, len(modifiers))
	for i, m := range modifiers {
		resp[i] = modifierResponse{ID: m.ID, Name: m.Name, PriceAdjustment: numericToString(m.PriceAdjustment)}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListCombos handles GET /combos.
func (h *CatalogHandler) ListCombos(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	combos, err := h.store.ListMenuCombos(r.Context(), actor.TenantID)
	if err != nil {
		h.internalError(w, "list combos", err)
		return
	}

	resp := make([]comboResponse, len(combos))
	for i, c := range combos {
		resp[i] = comboResponse{ID: c.ID, Name: c.Name, Price: numericToString(c.Price)}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListTables handles GET /tables?branchId=, showing current occupancy.
func (h *CatalogHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	branchID, err := uuid.Parse(r.URL.Query().Get("branchId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", "branchId is required")
		return
	}

	if _, err := h.store.GetBranch(r.Context(), database.GetBranchParams{ID: branchID, TenantID: actor.TenantID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "BRANCH_NOT_FOUND", "branch not found")
			return
		}
		h.internalError(w, "get branch", err)
		return
	}

	tables, err := h.store.ListTablesByBranch(r.Context(), database.ListTablesByBranchParams{
		TenantID: actor.TenantID,
		BranchID: branchID,
	})
	if err != nil {
		h.internalError(w, "list tables", err)
		return
	}

	resp := make([]tableResponse, len(tables))
	for i, t := range tables {
		resp[i] = tableResponse{ID: t.ID, AreaID: t.AreaID, Number: t.Number, Capacity: t.Capacity, Status: t.Status}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) internalError(w http.ResponseWriter, op string, err error) {
	h.log.Error(op, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
}
