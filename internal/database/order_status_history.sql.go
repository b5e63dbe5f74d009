// source: order_status_history.sql

package database

import (
	"context"

	"github.com/google/uuid"
)

const insertOrderStatusHistory = `-- name: InsertOrderStatusHistory :one
INSERT INTO order_status_history (tenant_id, order_id, status, changed_by)
VALUES ($1, $2, $3, $4)
RETURNING id, tenant_id, order_id, status, changed_by, changed_at`

type InsertOrderStatusHistoryParams struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	OrderID   uuid.UUID `json:"order_id"`
	Status    string    `json:"status"`
	ChangedBy uuid.UUID `json:"changed_by"`
}

func (q *Queries) InsertOrderStatusHistory(ctx context.Context, arg InsertOrderStatusHistoryParams) (OrderStatusHistory, error) {
	row := q.db.QueryRow(ctx, insertOrderStatusHistory,
		arg.TenantID,
		arg.OrderID,
		arg.Status,
		arg.ChangedBy,
	)
	var i OrderStatusHistory
	err := row.Scan(
		&i.ID,
		&i.TenantID,
		&i.OrderID,
		&i.Status,
		&i.ChangedBy,
		&i.ChangedAt,
	)
	return i, err
}

const listOrderStatusHistory = `-- name: ListOrderStatusHistory :many
SELECT id, tenant_id, order_id, status, changed_by, changed_at
FROM order_status_history
WHERE order_id = $1 AND tenant_id = $2
ORDER BY changed_at, id`

type ListOrderStatusHistoryParams struct {
	OrderID  uuid.UUID `json:"order_id"`
	TenantID uuid.UUID `json:"tenant_id"`
}

func (q *Queries) ListOrderStatusHistory(ctx context.Context, arg ListOrderStatusHistoryParams) ([]OrderStatusHistory, error) {
	rows, err := q.db.Query(ctx, listOrderStatusHistory, arg.OrderID, arg.TenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderStatusHistory{}
	for rows.Next() {
		var i OrderStatusHistory
		if err := rows.Scan(
			&i.ID,
			&i.TenantID,
			&i.OrderID,
			&i.Status,
			&i.ChangedBy,
			&i.ChangedAt,
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
