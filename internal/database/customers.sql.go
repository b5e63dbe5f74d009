// source: customers.sql

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const customerColumns = `id, tenant_id, name, phone, email, whatsapp, address_line1, address_line2,
    city, postal_code, delivery_notes, total_orders, total_spent, last_order_at,
    created_at, updated_at, deleted_at`

func scanCustomer(row rowScanner) (Customer, error) {
	var i Customer
	err := row.Scan(
		&i.ID,
		&i.TenantID,
		&i.Name,
		&i.Phone,
		&i.Email,
		&i.Whatsapp,
		&i.AddressLine1,
		&i.AddressLine2,
		&i.City,
		&i.PostalCode,
		&i.DeliveryNotes,
		&i.TotalOrders,
		&i.TotalSpent,
		&i.LastOrderAt,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.DeletedAt,
	)
	return i, err
}

const createCustomer = `-- name: CreateCustomer :one
INSERT INTO customers (
    tenant_id, name, phone, email, whatsapp, address_line1, address_line2,
    city, postal_code, delivery_notes
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
)
RETURNING ` + customerColumns

type CreateCustomerParams struct {
	TenantID      uuid.UUID   `json:"tenant_id"`
	Name          pgtype.Text `json:"name"`
	Phone         pgtype.Text `json:"phone"`
	Email         pgtype.Text `json:"email"`
	Whatsapp      pgtype.Text `json:"whatsapp"`
	AddressLine1  pgtype.Text `json:"address_line1"`
	AddressLine2  pgtype.Text `json:"address_line2"`
	City          pgtype.Text `json:"city"`
	PostalCode    pgtype.Text `json:"postal_code"`
	DeliveryNotes pgtype.Text `json:"delivery_notes"`
}

func (q *Queries) CreateCustomer(ctx context.Context, arg CreateCustomerParams) (Customer, error) {
	row := q.db.QueryRow(ctx, createCustomer,
		arg.TenantID,
		arg.Name,
		arg.Phone,
		arg.Email,
		arg.Whatsapp,
		arg.AddressLine1,
		arg.AddressLine2,
		arg.City,
		arg.PostalCode,
		arg.DeliveryNotes,
	)
	return scanCustomer(row)
}

const getCustomer = `-- name: GetCustomer :one
SELECT ` + customerColumns + `
FROM customers
WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`

type GetCustomerParams struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
}

func (q *Queries) GetCustomer(ctx context.Context, arg GetCustomerParams) (Customer, error) {
	row := q.db.QueryRow(ctx, getCustomer, arg.ID, arg.TenantID)
	return scanCustomer(row)
}

const incrementCustomerStats = `-- name: IncrementCustomerStats :execrows
UPDATE customers
SET total_orders = total_orders + 1,
    total_spent = total_spent + $3,
    last_order_at = now(),
    updated_at = now()
WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`

type IncrementCustomerStatsParams struct {
	ID       uuid.UUID      `json:"id"`
	TenantID uuid.UUID      `json:"tenant_id"`
	Amount   pgtype.Numeric `json:"amount"`
}

// IncrementCustomerStats applies the delta in a single statement so concurrent
// closes never lose an update.
func (q *Queries) IncrementCustomerStats(ctx context.Context, arg IncrementCustomerStatsParams) (int64, error) {
	result, err := q.db.Exec(ctx, incrementCustomerStats, arg.ID, arg.TenantID, arg.Amount)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listCustomers = `-- name: ListCustomers :many
SELECT ` + customerColumns + `
FROM customers
WHERE tenant_id = $1
  AND deleted_at IS NULL
  AND ($2::text IS NULL OR name ILIKE '%' || $2 || '%' OR phone ILIKE '%' || $2 || '%')
ORDER BY name NULLS LAST, created_at
LIMIT $3 OFFSET $4`

type ListCustomersParams struct {
	TenantID uuid.UUID   `json:"tenant_id"`
	Search   pgtype.Text `json:"search"`
	Limit    int32       `json:"limit"`
	Offset   int32       `json:"offset"`
}

func (q *Queries) ListCustomers(ctx context.Context, arg ListCustomersParams) ([]Customer, error) {
	rows, err := q.db.Query(ctx, listCustomers,
		arg.TenantID,
		arg.Search,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Customer{}
	for rows.Next() {
		i, err := scanCustomer(rows)
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

const softDeleteCustomer = `-- name: SoftDeleteCustomer :one
UPDATE customers
SET deleted_at = now(), updated_at = now()
WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
RETURNING id`

type SoftDeleteCustomerParams struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
}

func (q *Queries) SoftDeleteCustomer(ctx context.Context, arg SoftDeleteCustomerParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, softDeleteCustomer, arg.ID, arg.TenantID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const updateCustomer = `-- name: UpdateCustomer :one
UPDATE customers
SET name = $3, phone = $4, email = $5, whatsapp = $6, address_line1 = $7,
    address_line2 = $8, city = $9, postal_code = $10, delivery_notes = $11,
    updated_at = now()
WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
RETURNING ` + customerColumns

type UpdateCustomerParams struct {
	ID            uuid.UUID   `json:"id"`
	TenantID      uuid.UUID   `json:"tenant_id"`
	Name          pgtype.Text `json:"name"`
	Phone         pgtype.Text `json:"phone"`
	Email         pgtype.Text `json:"email"`
	Whatsapp      pgtype.Text `json:"whatsapp"`
	AddressLine1  pgtype.Text `json:"address_line1"`
	AddressLine2  pgtype.Text `json:"address_line2"`
	City          pgtype.Text `json:"city"`
	PostalCode    pgtype.Text `json:"postal_code"`
	DeliveryNotes pgtype.Text `json:"delivery_notes"`
}

func (q *Queries) UpdateCustomer(ctx context.Context, arg UpdateCustomerParams) (Customer, error) {
	row := q.db.QueryRow(ctx, updateCustomer,
		arg.ID,
		arg.TenantID,
		arg.Name,
		arg.Phone,
		arg.Email,
		arg.Whatsapp,
		arg.AddressLine1,
		arg.AddressLine2,
		arg.City,
		arg.PostalCode,
		arg.DeliveryNotes,
	)
	return scanCustomer(row)
}
