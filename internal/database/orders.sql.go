// source: orders.sql

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, tenant_id, branch_id, table_id, customer_id, order_number, daily_sequence,
    service_type, status, subtotal, tax_rate, tax, discount, total, notes, kitchen_notes,
    opened_at, closed_at, created_at, updated_at, created_by, updated_by`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.TenantID,
		&i.BranchID,
		&i.TableID,
		&i.CustomerID,
		&i.OrderNumber,
		&i.DailySequence,
		&i.ServiceType,
		&i.Status,
		&i.Subtotal,
		&i.TaxRate,
		&i.Tax,
		&i.Discount,
		&i.Total,
		&i.Notes,
		&i.KitchenNotes,
		&i.OpenedAt,
		&i.ClosedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CreatedBy,
		&i.UpdatedBy,
	)
	return i, err
}

const closeOrder = `-- name: CloseOrder :one
UPDATE orders
SET status = $4, closed_at = now(), updated_at = now(), updated_by = $5
WHERE id = $1 AND tenant_id = $2 AND status = $3
RETURNING ` + orderColumns

type CloseOrderParams struct {
	ID         uuid.UUID `json:"id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	UpdatedBy  uuid.UUID `json:"updated_by"`
}

// CloseOrder moves an order into a terminal status and stamps closed_at.
// Returns pgx.ErrNoRows when the order is no longer in FromStatus.
func (q *Queries) CloseOrder(ctx context.Context, arg CloseOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, closeOrder,
		arg.ID,
		arg.TenantID,
		arg.FromStatus,
		arg.ToStatus,
		arg.UpdatedBy,
	)
	return scanOrder(row)
}

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (
    tenant_id, branch_id, table_id, customer_id, order_number, daily_sequence,
    service_type, status, subtotal, tax_rate, tax, discount, total,
    notes, kitchen_notes, opened_at, created_by, updated_by
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17
)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	TenantID      uuid.UUID          `json:"tenant_id"`
	BranchID      uuid.UUID          `json:"branch_id"`
	TableID       pgtype.UUID        `json:"table_id"`
	CustomerID    pgtype.UUID        `json:"customer_id"`
	OrderNumber   string             `json:"order_number"`
	DailySequence int32              `json:"daily_sequence"`
	ServiceType   string             `json:"service_type"`
	Status        string             `json:"status"`
	Subtotal      pgtype.Numeric     `json:"subtotal"`
	TaxRate       pgtype.Numeric     `json:"tax_rate"`
	Tax           pgtype.Numeric     `json:"tax"`
	Discount      pgtype.Numeric     `json:"discount"`
	Total         pgtype.Numeric     `json:"total"`
	Notes         pgtype.Text        `json:"notes"`
	KitchenNotes  pgtype.Text        `json:"kitchen_notes"`
	OpenedAt      pgtype.Timestamptz `json:"opened_at"`
	CreatedBy     uuid.UUID          `json:"created_by"`
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.TenantID,
		arg.BranchID,
		arg.TableID,
		arg.CustomerID,
		arg.OrderNumber,
		arg.DailySequence,
		arg.ServiceType,
		arg.Status,
		arg.Subtotal,
		arg.TaxRate,
		arg.Tax,
		arg.Discount,
		arg.Total,
		arg.Notes,
		arg.KitchenNotes,
		arg.OpenedAt,
		arg.CreatedBy,
	)
	return scanOrder(row)
}

const getOrder = `-- name: GetOrder :one
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1 AND tenant_id = $2`

type GetOrderParams struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
}

func (q *Queries) GetOrder(ctx context.Context, arg GetOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, arg.ID, arg.TenantID)
	return scanOrder(row)
}

const getOrderForUpdate = `-- name: GetOrderForUpdate :one
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1 AND tenant_id = $2
FOR NO KEY UPDATE`

type GetOrderForUpdateParams struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
}

// GetOrderForUpdate row-locks the order until the surrounding transaction ends.
func (q *Queries) GetOrderForUpdate(ctx context.Context, arg GetOrderForUpdateParams) (Order, error) {
	row := q.db.QueryRow(ctx, getOrderForUpdate, arg.ID, arg.TenantID)
	return scanOrder(row)
}

const listOrders = `-- name: ListOrders :many
SELECT ` + orderColumns + `
FROM orders
WHERE tenant_id = $1
  AND ($2::uuid IS NULL OR branch_id = $2)
  AND ($3::text IS NULL OR status = $3)
  AND ($4::uuid IS NULL OR created_by = $4)
ORDER BY opened_at DESC
LIMIT $5 OFFSET $6`

type ListOrdersParams struct {
	TenantID  uuid.UUID   `json:"tenant_id"`
	BranchID  pgtype.UUID `json:"branch_id"`
	Status    pgtype.Text `json:"status"`
	CreatedBy pgtype.UUID `json:"created_by"`
	Limit     int32       `json:"limit"`
	Offset    int32       `json:"offset"`
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders,
		arg.TenantID,
		arg.BranchID,
		arg.Status,
		arg.CreatedBy,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const nextDailySequence = `-- name: NextDailySequence :one
INSERT INTO order_sequences (tenant_id, branch_id, business_date, last_value)
VALUES (
    $1, $2, $3,
    GREATEST(COALESCE((
        SELECT MAX(daily_sequence) FROM orders
        WHERE tenant_id = $1 AND branch_id = $2
          AND (opened_at AT TIME ZONE 'UTC')::date = $3
    ), 0), $4) + 1
)
ON CONFLICT (tenant_id, branch_id, business_date)
DO UPDATE SET last_value = GREATEST(order_sequences.last_value, $4) + 1
RETURNING last_value`

type NextDailySequenceParams struct {
	TenantID     uuid.UUID   `json:"tenant_id"`
	BranchID     uuid.UUID   `json:"branch_id"`
	BusinessDate pgtype.Date `json:"business_date"`
	Floor        int32       `json:"floor"`
}

// NextDailySequence atomically allocates the next per-branch-per-day number.
// The counter row is seeded from existing orders the first time a day is seen.
// The result is always greater than Floor.
func (q *Queries) NextDailySequence(ctx context.Context, arg NextDailySequenceParams) (int32, error) {
	row := q.db.QueryRow(ctx, nextDailySequence, arg.TenantID, arg.BranchID, arg.BusinessDate, arg.Floor)
	var last_value int32
	err := row.Scan(&last_value)
	return last_value, err
}

const maxTenantDailySequence = `-- name: MaxTenantDailySequence :one
SELECT COALESCE(MAX(daily_sequence), 0)::int
FROM orders
WHERE tenant_id = $1 AND (opened_at AT TIME ZONE 'UTC')::date = $2`

type MaxTenantDailySequenceParams struct {
	TenantID     uuid.UUID   `json:"tenant_id"`
	BusinessDate pgtype.Date `json:"business_date"`
}

// MaxTenantDailySequence returns the highest sequence any branch of the
// tenant has committed for the day, or 0.
func (q *Queries) MaxTenantDailySequence(ctx context.Context, arg MaxTenantDailySequenceParams) (int32, error) {
	row := q.db.QueryRow(ctx, maxTenantDailySequence, arg.TenantID, arg.BusinessDate)
	var seq int32
	err := row.Scan(&seq)
	return seq, err
}

const transitionOrderStatus = `-- name: TransitionOrderStatus :one
UPDATE orders
SET status = $4, updated_at = now(), updated_by = $5
WHERE id = $1 AND tenant_id = $2 AND status = $3
RETURNING ` + orderColumns

type TransitionOrderStatusParams struct {
	ID         uuid.UUID `json:"id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	UpdatedBy  uuid.UUID `json:"updated_by"`
}

// TransitionOrderStatus is a compare-and-set on status.
// Returns pgx.ErrNoRows when the order is no longer in FromStatus.
func (q *Queries) TransitionOrderStatus(ctx context.Context, arg TransitionOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, transitionOrderStatus,
		arg.ID,
		arg.TenantID,
		arg.FromStatus,
		arg.ToStatus,
		arg.UpdatedBy,
	)
	return scanOrder(row)
}

const updateOrderTotals = `-- name: UpdateOrderTotals :one
UPDATE orders
SET subtotal = $4, tax = $5, total = $6, updated_at = now(), updated_by = $7
WHERE id = $1 AND tenant_id = $2 AND status = $3
RETURNING ` + orderColumns

type UpdateOrderTotalsParams struct {
	ID        uuid.UUID      `json:"id"`
	TenantID  uuid.UUID      `json:"tenant_id"`
	Status    string         `json:"status"`
	Subtotal  pgtype.Numeric `json:"subtotal"`
	Tax       pgtype.Numeric `json:"tax"`
	Total     pgtype.Numeric `json:"total"`
	UpdatedBy uuid.UUID      `json:"updated_by"`
}

func (q *Queries) UpdateOrderTotals(ctx context.Context, arg UpdateOrderTotalsParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderTotals,
		arg.ID,
		arg.TenantID,
		arg.Status,
		arg.Subtotal,
		arg.Tax,
		arg.Total,
		arg.UpdatedBy,
	)
	return scanOrder(row)
}
