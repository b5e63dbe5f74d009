// source: reports.sql

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getDailyOrderStats = `-- name: GetDailyOrderStats :one
SELECT COUNT(*) AS total_orders,
       COALESCE(SUM(total), 0)::numeric(12,2) AS total_sales
FROM orders
WHERE tenant_id = $1 AND branch_id = $2 AND status = 'COMPLETED'
  AND (opened_at AT TIME ZONE 'UTC')::date = $3`

type GetDailyOrderStatsParams struct {
	TenantID uuid.UUID   `json:"tenant_id"`
	BranchID uuid.UUID   `json:"branch_id"`
	Day      pgtype.Date `json:"day"`
}

type GetDailyOrderStatsRow struct {
	TotalOrders int64          `json:"total_orders"`
	TotalSales  pgtype.Numeric `json:"total_sales"`
}

func (q *Queries) GetDailyOrderStats(ctx context.Context, arg GetDailyOrderStatsParams) (GetDailyOrderStatsRow, error) {
	row := q.db.QueryRow(ctx, getDailyOrderStats, arg.TenantID, arg.BranchID, arg.Day)
	var i GetDailyOrderStatsRow
	err := row.Scan(&i.TotalOrders, &i.TotalSales)
	return i, err
}

const getDailyServiceTypeBreakdown = `-- name: GetDailyServiceTypeBreakdown :many
SELECT service_type, COUNT(*) AS order_count
FROM orders
WHERE tenant_id = $1 AND branch_id = $2 AND status = 'COMPLETED'
  AND (opened_at AT TIME ZONE 'UTC')::date = $3
GROUP BY service_type
ORDER BY service_type`

type GetDailyServiceTypeBreakdownParams struct {
	TenantID uuid.UUID   `json:"tenant_id"`
	BranchID uuid.UUID   `json:"branch_id"`
	Day      pgtype.Date `json:"day"`
}

type GetDailyServiceTypeBreakdownRow struct {
	ServiceType string `json:"service_type"`
	OrderCount  int64  `json:"order_count"`
}

func (q *Queries) GetDailyServiceTypeBreakdown(ctx context.Context, arg GetDailyServiceTypeBreakdownParams) ([]GetDailyServiceTypeBreakdownRow, error) {
	rows, err := q.db.Query(ctx, getDailyServiceTypeBreakdown, arg.TenantID, arg.BranchID, arg.Day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []GetDailyServiceTypeBreakdownRow{}
	for rows.Next() {
		var i GetDailyServiceTypeBreakdownRow
		if err := rows.Scan(&i.ServiceType, &i.OrderCount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getDailyTopProducts = `-- name: GetDailyTopProducts :many
SELECT oi.product_name, SUM(oi.quantity)::bigint AS quantity_sold
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
WHERE o.tenant_id = $1 AND o.branch_id = $2 AND o.status = 'COMPLETED'
  AND (o.opened_at AT TIME ZONE 'UTC')::date = $3
GROUP BY oi.product_name
ORDER BY quantity_sold DESC, oi.product_name
LIMIT $4`

type GetDailyTopProductsParams struct {
	TenantID uuid.UUID   `json:"tenant_id"`
	BranchID uuid.UUID   `json:"branch_id"`
	Day      pgtype.Date `json:"day"`
	Limit    int32       `json:"limit"`
}

type GetDailyTopProductsRow struct {
	ProductName  string `json:"product_name"`
	QuantitySold int64  `json:"quantity_sold"`
}

func (q *Queries) GetDailyTopProducts(ctx context.Context, arg GetDailyTopProductsParams) ([]GetDailyTopProductsRow, error) {
	rows, err := q.db.Query(ctx, getDailyTopProducts,
		arg.TenantID,
		arg.BranchID,
		arg.Day,
		arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []GetDailyTopProductsRow{}
	for rows.Next() {
		var i GetDailyTopProductsRow
		if err := rows.Scan(&i.ProductName, &i.QuantitySold); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
