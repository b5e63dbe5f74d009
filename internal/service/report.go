package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/quickstack-pos/api/internal/database"
	"github.com/shopspring/decimal"
)

const topProductsLimit = 5

// ReportStore defines the read-only queries behind reports.
type ReportStore interface {
	GetBranch(ctx context.Context, arg database.GetBranchParams) (database.Branch, error)
	GetDailyOrderStats(ctx context.Context, arg database.GetDailyOrderStatsParams) (database.GetDailyOrderStatsRow, error)
	GetDailyServiceTypeBreakdown(ctx context.Context, arg database.GetDailyServiceTypeBreakdownParams) ([]database.GetDailyServiceTypeBreakdownRow, error)
	GetDailyTopProducts(ctx context.Context, arg database.GetDailyTopProductsParams) ([]database.GetDailyTopProductsRow, error)
}

// DailySummary aggregates COMPLETED orders opened on one day in one branch.
type DailySummary struct {
	BranchID      uuid.UUID
	Date          time.Time
	TotalOrders   int64
	TotalSales    decimal.Decimal
	AverageTicket decimal.Decimal
	ByServiceType map[string]int64
	TopProducts   []ProductQuantity
}

// ProductQuantity is one row of the top products list.
type ProductQuantity struct {
	ProductName string
	Quantity    int64
}

// ReportService computes read-only rollups.
type ReportService struct {
	store ReportStore
}

// NewReportService creates a new ReportService.
func NewReportService(store ReportStore) *ReportService {
	return &ReportService{store: store}
}

// DailySummary returns totals, average ticket, service type breakdown and the
// top products for a branch. Cancelled and open orders are excluded.
func (s *ReportService) DailySummary(ctx context.Context, tenantID, branchID uuid.UUID, day time.Time) (*DailySummary, error) {
	if _, err := s.store.GetBranch(ctx, database.GetBranchParams{ID: branchID, TenantID: tenantID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBranchNotFound
		}
		return nil, fmt.Errorf("get branch: %w", err)
	}

	date := pgtype.Date{Time: time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC), Valid: true}

	stats, err := s.store.GetDailyOrderStats(ctx, database.GetDailyOrderStatsParams{
		TenantID: tenantID,
		BranchID: branchID,
		Day:      date,
	})
	if err != nil {
		return nil, fmt.Errorf("daily order stats: %w", err)
	}

	breakdown, err := s.store.GetDailyServiceTypeBreakdown(ctx, database.GetDailyServiceTypeBreakdownParams{
		TenantID: tenantID,
		BranchID: branchID,
		Day:      date,
	})
	if err != nil {
		return nil, fmt.Errorf("daily service type breakdown: %w", err)
	}

	top, err := s.store.GetDailyTopProducts(ctx, database.GetDailyTopProductsParams{
		TenantID: tenantID,
		BranchID: branchID,
		Day:      date,
		Limit:    topProductsLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("daily top products: %w", err)
	}

	totalSales := numericToDecimal(stats.TotalSales).Round(moneyScale)
	average := decimal.Zero
	if stats.TotalOrders > 0 {
		average = totalSales.DivRound(decimal.NewFromInt(stats.TotalOrders), moneyScale)
	}

	summary := &DailySummary{
		BranchID:      branchID,
		Date:          date.Time,
		TotalOrders:   stats.TotalOrders,
		TotalSales:    totalSales,
		AverageTicket: average,
		ByServiceType: make(map[string]int64, len(breakdown)),
		TopProducts:   make([]ProductQuantity, len(top)),
	}
	for _, b := range breakdown {
		summary.ByServiceType[b.ServiceType] = b.OrderCount
	}
	for i, p := range top {
		summary.TopProducts[i] = ProductQuantity{ProductName: p.ProductName, Quantity: p.QuantitySold}
	}
	return summary, nil
}
