package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/quickstack-pos/api/internal/middleware"
	"github.com/quickstack-pos/api/internal/service"
	"go.uber.org/zap"
)

// ReportServicer defines the service methods needed by report handlers.
// Satisfied by *service.ReportService.
type ReportServicer interface {
	DailySummary(ctx context.Context, tenantID, branchID uuid.UUID, day time.Time) (*service.DailySummary, error)
}

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	svc ReportServicer
	log *zap.Logger
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(svc ReportServicer, log *zap.Logger) *ReportsHandler {
	return &ReportsHandler{svc: svc, log: log}
}

// RegisterRoutes registers report endpoints. Reports are manager-only.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireManager).Get("/reports/daily-summary", h.DailySummary)
}

// --- Response types ---

type productQuantityResponse struct {
	ProductName string `json:"productName"`
	Quantity    int64  `json:"quantity"`
}

type dailySummaryResponse struct {
	BranchID      uuid.UUID                 `json:"branchId"`
	Date          string                    `json:"date"`
	TotalOrders   int64                     `json:"totalOrders"`
	TotalSales    string                    `json:"totalSales"`
	AverageTicket string                    `json:"averageTicket"`
	ByServiceType map[string]int64          `json:"byServiceType"`
	TopProducts   []productQuantityResponse `json:"topProducts"`
}

// --- Handlers ---

// DailySummary handles GET /reports/daily-summary?branchId=&date=YYYY-MM-DD.
func (h *ReportsHandler) DailySummary(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	if q.Get("branchId") == "" || q.Get("date") == "" {
		writeServiceError(w, h.log, "daily summary", service.ErrMissingReportParameter)
		return
	}

	branchID, err := uuid.Parse(q.Get("branchId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid branchId")
		return
	}

	day, err := time.Parse(time.DateOnly, q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMETER", "date must be YYYY-MM-DD")
		return
	}

	summary, err := h.svc.DailySummary(r.Context(), actor.TenantID, branchID, day)
	if err != nil {
		writeServiceError(w, h.log, "daily summary", err)
		return
	}

	top := make([]productQuantityResponse, len(summary.TopProducts))
	for i, p := range summary.TopProducts {
		top[i] = productQuantityResponse{ProductName: p.ProductName, Quantity: p.Quantity}
	}

	byServiceType := summary.ByServiceType
	if byServiceType == nil {
		byServiceType = map[string]int64{}
	}

	writeJSON(w, http.StatusOK, dailySummaryResponse{
		BranchID:      summary.BranchID,
		Date:          summary.Date.Format(time.DateOnly),
		TotalOrders:   summary.TotalOrders,
		TotalSales:    summary.TotalSales.StringFixed(2),
		AverageTicket: summary.AverageTicket.StringFixed(2),
		ByServiceType: byServiceType,
		TopProducts:   top,
	})
}
