// source: tables.sql

package database

import (
	"context"

	"github.com/google/uuid"
)

const getTableForOrder = `-- name: GetTableForOrder :one
SELECT t.id, t.tenant_id, t.area_id, t.number, t.capacity, t.status, t.created_at, t.updated_at
FROM restaurant_tables t
JOIN areas a ON a.id = t.area_id
WHERE t.id = $1 AND t.tenant_id = $2 AND a.branch_id = $3`

type GetTableForOrderParams struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
	BranchID uuid.UUID `json:"branch_id"`
}

// GetTableForOrder finds a table only if it belongs to the branch through its area.
func (q *Queries) GetTableForOrder(ctx context.Context, arg GetTableForOrderParams) (RestaurantTable, error) {
	row := q.db.QueryRow(ctx, getTableForOrder, arg.ID, arg.TenantID, arg.BranchID)
	var i RestaurantTable
	err := row.Scan(
		&i.ID,
		&i.TenantID,
		&i.AreaID,
		&i.Number,
		&i.Capacity,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const occupyTable = `-- name: OccupyTable :execrows
UPDATE restaurant_tables
SET status = 'OCCUPIED', updated_at = now()
WHERE id = $1 AND tenant_id = $2 AND status = 'AVAILABLE'`

type OccupyTableParams struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
}

// OccupyTable returns 0 when the table was not AVAILABLE.
func (q *Queries) OccupyTable(ctx context.Context, arg OccupyTableParams) (int64, error) {
	result, err := q.db.Exec(ctx, occupyTable, arg.ID, arg.TenantID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const releaseTable = `-- name: ReleaseTable :execrows
UPDATE restaurant_tables
SET status = 'AVAILABLE', updated_at = now()
WHERE id = $1 AND tenant_id = $2`

type ReleaseTableParams struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
}

func (q *Queries) ReleaseTable(ctx context.Context, arg ReleaseTableParams) (int64, error) {
	result, err := q.db.Exec(ctx, releaseTable, arg.ID, arg.TenantID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listTablesByBranch = `-- name: ListTablesByBranch :many
SELECT t.id, t.tenant_id, t.area_id, t.number, t.capacity, t.status, t.created_at, t.updated_at
FROM restaurant_tables t
JOIN areas a ON a.id = t.area_id
WHERE t.tenant_id = $1 AND a.branch_id = $2
ORDER BY a.name, t.number`

type ListTablesByBranchParams struct {
	TenantID uuid.UUID `json:"tenant_id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) ListTablesByBranch(ctx context.Context, arg ListTablesByBranchParams) ([]RestaurantTable, error) {
	rows, err := q.db.Query(ctx, listTablesByBranch, arg.TenantID, arg.BranchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []RestaurantTable{}
	for rows.Next() {
		var i RestaurantTable
		if err := rows.Scan(
			&i.ID,
			&i.TenantID,
			&i.AreaID,
			&i.Number,
			&i.Capacity,
			&i.Status,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
