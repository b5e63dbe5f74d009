package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/quickstack-pos/api/internal/database"
	"github.com/quickstack-pos/api/internal/enum"
)

func reportStore(f *fixture, stats database.GetDailyOrderStatsRow) *mockStore {
	store := f.store()
	store.getDailyOrderStatsFn = func(ctx context.Context, arg database.GetDailyOrderStatsParams) (database.GetDailyOrderStatsRow, error) {
		return stats, nil
	}
	store.getDailyServiceTypeBreakdownFn = func(ctx context.Context, arg database.GetDailyServiceTypeBreakdownParams) ([]database.GetDailyServiceTypeBreakdownRow, error) {
		return []database.GetDailyServiceTypeBreakdownRow{}, nil
	}
	store.getDailyTopProductsFn = func(ctx context.Context, arg database.GetDailyTopProductsParams) ([]database.GetDailyTopProductsRow, error) {
		return []database.GetDailyTopProductsRow{}, nil
	}
	return store
}

func TestDailySummary(t *testing.T) {
	f := newFixture()
	store := reportStore(f, database.GetDailyOrderStatsRow{TotalOrders: 1, TotalSales: makeNumeric("100.00")})

	var captured database.GetDailyOrderStatsParams
	store.getDailyOrderStatsFn = func(ctx context.Context, arg database.GetDailyOrderStatsParams) (database.GetDailyOrderStatsRow, error) {
		captured = arg
		return database.GetDailyOrderStatsRow{TotalOrders: 1, TotalSales: makeNumeric("100.00")}, nil
	}
	store.getDailyServiceTypeBreakdownFn = func(ctx context.Context, arg database.GetDailyServiceTypeBreakdownParams) ([]database.GetDailyServiceTypeBreakdownRow, error) {
		return []database.GetDailyServiceTypeBreakdownRow{{ServiceType: enum.ServiceTypeCounter, OrderCount: 1}}, nil
	}
	var topLimit int32
	store.getDailyTopProductsFn = func(ctx context.Context, arg database.GetDailyTopProductsParams) ([]database.GetDailyTopProductsRow, error) {
		topLimit = arg.Limit
		return []database.GetDailyTopProductsRow{{ProductName: "Burger", QuantitySold: 1}}, nil
	}

	svc := NewReportService(store)
	day := time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC)
	summary, err := svc.DailySummary(context.Background(), f.tenantID, f.branchID, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.TotalOrders != 1 {
		t.Errorf("total orders: expected 1, got %d", summary.TotalOrders)
	}
	if !summary.TotalSales.Equal(dec("100.00")) {
		t.Errorf("total sales: expected 100.00, got %s", summary.TotalSales)
	}
	if !summary.AverageTicket.Equal(dec("100.00")) {
		t.Errorf("average ticket: expected 100.00, got %s", summary.AverageTicket)
	}
	if summary.ByServiceType[enum.ServiceTypeCounter] != 1 {
		t.Errorf("unexpected breakdown: %v", summary.ByServiceType)
	}
	if len(summary.TopProducts) != 1 || summary.TopProducts[0].ProductName != "Burger" {
		t.Errorf("unexpected top products: %+v", summary.TopProducts)
	}
	if topLimit != topProductsLimit {
		t.Errorf("top products limit: expected %d, got %d", topProductsLimit, topLimit)
	}
	want := pgtype.Date{Time: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), Valid: true}
	if captured.Day != want || captured.TenantID != f.tenantID || captured.BranchID != f.branchID {
		t.Errorf("unexpected query params: %+v", captured)
	}
}

func TestDailySummary_AverageTicket(t *testing.T) {
	tests := []struct {
		name   string
		orders int64
		sales  string
		want   string
	}{
		{"no orders", 0, "0", "0.00"},
		{"even split", 2, "150.00", "75.00"},
		{"repeating", 3, "100.00", "33.33"},
		{"rounds up", 3, "200.00", "66.67"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			svc := NewReportService(reportStore(f, database.GetDailyOrderStatsRow{TotalOrders: tt.orders, TotalSales: makeNumeric(tt.sales)}))
			summary, err := svc.DailySummary(context.Background(), f.tenantID, f.branchID, fixedClock())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !summary.AverageTicket.Equal(dec(tt.want)) {
				t.Errorf("average ticket: expected %s, got %s", tt.want, summary.AverageTicket)
			}
			if summary.ByServiceType == nil || summary.TopProducts == nil {
				t.Error("empty collections must not be nil")
			}
		})
	}
}

func TestDailySummary_BranchNotFound(t *testing.T) {
	f := newFixture()
	svc := NewReportService(reportStore(f, database.GetDailyOrderStatsRow{}))

	tests := []struct {
		name     string
		tenantID uuid.UUID
		branchID uuid.UUID
	}{
		{"unknown branch", f.tenantID, uuid.New()},
		{"other tenant", uuid.New(), f.branchID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.DailySummary(context.Background(), tt.tenantID, tt.branchID, fixedClock())
			if !errors.Is(err, ErrBranchNotFound) {
				t.Fatalf("expected ErrBranchNotFound, got %v", err)
			}
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("expected not found kind, got %v", err)
			}
		})
	}
}
