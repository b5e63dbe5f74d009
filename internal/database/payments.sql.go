// source: payments.sql

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const paymentColumns = `id, tenant_id, order_id, amount, payment_method, amount_received, change_given,
    status, reference_number, notes, created_at, created_by`

func scanPayment(row rowScanner) (Payment, error) {
	var i Payment
	err := row.Scan(
		&i.ID,
		&i.TenantID,
		&i.OrderID,
		&i.Amount,
		&i.PaymentMethod,
		&i.AmountReceived,
		&i.ChangeGiven,
		&i.Status,
		&i.ReferenceNumber,
		&i.Notes,
		&i.CreatedAt,
		&i.CreatedBy,
	)
	return i, err
}

const createPayment = `-- name: CreatePayment :one
INSERT INTO payments (
    tenant_id, order_id, amount, payment_method, amount_received, change_given,
    status, reference_number, notes, created_by
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
)
RETURNING ` + paymentColumns

type CreatePaymentParams struct {
	TenantID        uuid.UUID      `json:"tenant_id"`
	OrderID         uuid.UUID      `json:"order_id"`
	Amount          pgtype.Numeric `json:"amount"`
	PaymentMethod   string         `json:"payment_method"`
	AmountReceived  pgtype.Numeric `json:"amount_received"`
	ChangeGiven     pgtype.Numeric `json:"change_given"`
	Status          string         `json:"status"`
	ReferenceNumber pgtype.Text    `json:"reference_number"`
	Notes           pgtype.Text    `json:"notes"`
	CreatedBy       uuid.UUID      `json:"created_by"`
}

func (q *Queries) CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error) {
	row := q.db.QueryRow(ctx, createPayment,
		arg.TenantID,
		arg.OrderID,
		arg.Amount,
		arg.PaymentMethod,
		arg.AmountReceived,
		arg.ChangeGiven,
		arg.Status,
		arg.ReferenceNumber,
		arg.Notes,
		arg.CreatedBy,
	)
	return scanPayment(row)
}

const listPaymentsByOrder = `-- name: ListPaymentsByOrder :many
SELECT ` + paymentColumns + `
FROM payments
WHERE order_id = $1 AND tenant_id = $2
ORDER BY created_at, id`

type ListPaymentsByOrderParams struct {
	OrderID  uuid.UUID `json:"order_id"`
	TenantID uuid.UUID `json:"tenant_id"`
}

func (q *Queries) ListPaymentsByOrder(ctx context.Context, arg ListPaymentsByOrderParams) ([]Payment, error) {
	rows, err := q.db.Query(ctx, listPaymentsByOrder, arg.OrderID, arg.TenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Payment{}
	for rows.Next() {
		i, err := scanPayment(rows)
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

const sumPaymentsByOrder = `-- name: SumPaymentsByOrder :one
SELECT COALESCE(SUM(amount), 0)::numeric(12,2) AS total_paid
FROM payments
WHERE order_id = $1 AND tenant_id = $2 AND status = 'COMPLETED'`

type SumPaymentsByOrderParams struct {
	OrderID  uuid.UUID `json:"order_id"`
	TenantID uuid.UUID `json:"tenant_id"`
}

func (q *Queries) SumPaymentsByOrder(ctx context.Context, arg SumPaymentsByOrderParams) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, sumPaymentsByOrder, arg.OrderID, arg.TenantID)
	var total_paid pgtype.Numeric
	err := row.Scan(&total_paid)
	return total_paid, err
}
