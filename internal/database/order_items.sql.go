// source: order_items.sql

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderItemColumns = `id, tenant_id, order_id, product_id, variant_id, combo_id, product_name,
    variant_name, quantity, unit_price, modifiers_total, line_total, kitchen_status,
    kitchen_sent_at, kitchen_ready_at, notes, sort_order, created_at, updated_at`

func scanOrderItem(row rowScanner) (OrderItem, error) {
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.TenantID,
		&i.OrderID,
		&i.ProductID,
		&i.VariantID,
		&i.ComboID,
		&i.ProductName,
		&i.VariantName,
		&i.Quantity,
		&i.UnitPrice,
		&i.ModifiersTotal,
		&i.LineTotal,
		&i.KitchenStatus,
		&i.KitchenSentAt,
		&i.KitchenReadyAt,
		&i.Notes,
		&i.SortOrder,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createOrderItem = `-- name: CreateOrderItem :one
INSERT INTO order_items (
    tenant_id, order_id, product_id, variant_id, combo_id, product_name, variant_name,
    quantity, unit_price, modifiers_total, kitchen_status, notes, sort_order
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
    (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM order_items WHERE order_id = $2)
)
RETURNING ` + orderItemColumns

type CreateOrderItemParams struct {
	TenantID       uuid.UUID      `json:"tenant_id"`
	OrderID        uuid.UUID      `json:"order_id"`
	ProductID      pgtype.UUID    `json:"product_id"`
	VariantID      pgtype.UUID    `json:"variant_id"`
	ComboID        pgtype.UUID    `json:"combo_id"`
	ProductName    string         `json:"product_name"`
	VariantName    pgtype.Text    `json:"variant_name"`
	Quantity       int32          `json:"quantity"`
	UnitPrice      pgtype.Numeric `json:"unit_price"`
	ModifiersTotal pgtype.Numeric `json:"modifiers_total"`
	KitchenStatus  string         `json:"kitchen_status"`
	Notes          pgtype.Text    `json:"notes"`
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.TenantID,
		arg.OrderID,
		arg.ProductID,
		arg.VariantID,
		arg.ComboID,
		arg.ProductName,
		arg.VariantName,
		arg.Quantity,
		arg.UnitPrice,
		arg.ModifiersTotal,
		arg.KitchenStatus,
		arg.Notes,
	)
	return scanOrderItem(row)
}

const createOrderItemModifier = `-- name: CreateOrderItemModifier :one
INSERT INTO order_item_modifiers (
    tenant_id, order_item_id, modifier_id, modifier_name, price_adjustment, quantity
) VALUES (
    $1, $2, $3, $4, $5, $6
)
RETURNING id, tenant_id, order_item_id, modifier_id, modifier_name, price_adjustment, quantity, created_at`

type CreateOrderItemModifierParams struct {
	TenantID        uuid.UUID      `json:"tenant_id"`
	OrderItemID     uuid.UUID      `json:"order_item_id"`
	ModifierID      pgtype.UUID    `json:"modifier_id"`
	ModifierName    string         `json:"modifier_name"`
	PriceAdjustment pgtype.Numeric `json:"price_adjustment"`
	Quantity        int32          `json:"quantity"`
}

func (q *Queries) CreateOrderItemModifier(ctx context.Context, arg CreateOrderItemModifierParams) (OrderItemModifier, error) {
	row := q.db.QueryRow(ctx, createOrderItemModifier,
		arg.TenantID,
		arg.OrderItemID,
		arg.ModifierID,
		arg.ModifierName,
		arg.PriceAdjustment,
		arg.Quantity,
	)
	var i OrderItemModifier
	err := row.Scan(
		&i.ID,
		&i.TenantID,
		&i.OrderItemID,
		&i.ModifierID,
		&i.ModifierName,
		&i.PriceAdjustment,
		&i.Quantity,
		&i.CreatedAt,
	)
	return i, err
}

const deleteOrderItem = `-- name: DeleteOrderItem :one
DELETE FROM order_items
WHERE id = $1 AND order_id = $2 AND tenant_id = $3
RETURNING id`

type DeleteOrderItemParams struct {
	ID       uuid.UUID `json:"id"`
	OrderID  uuid.UUID `json:"order_id"`
	TenantID uuid.UUID `json:"tenant_id"`
}

func (q *Queries) DeleteOrderItem(ctx context.Context, arg DeleteOrderItemParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteOrderItem, arg.ID, arg.OrderID, arg.TenantID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const deleteOrderItemModifiers = `-- name: DeleteOrderItemModifiers :exec
DELETE FROM order_item_modifiers
WHERE order_item_id = $1 AND tenant_id = $2`

type DeleteOrderItemModifiersParams struct {
	OrderItemID uuid.UUID `json:"order_item_id"`
	TenantID    uuid.UUID `json:"tenant_id"`
}

func (q *Queries) DeleteOrderItemModifiers(ctx context.Context, arg DeleteOrderItemModifiersParams) error {
	_, err := q.db.Exec(ctx, deleteOrderItemModifiers, arg.OrderItemID, arg.TenantID)
	return err
}

const listOrderItemModifiersByOrder = `-- name: ListOrderItemModifiersByOrder :many
SELECT m.id, m.tenant_id, m.order_item_id, m.modifier_id, m.modifier_name, m.price_adjustment, m.quantity, m.created_at
FROM order_item_modifiers m
JOIN order_items oi ON oi.id = m.order_item_id
WHERE oi.order_id = $1 AND m.tenant_id = $2
ORDER BY m.created_at, m.id`

type ListOrderItemModifiersByOrderParams struct {
	OrderID  uuid.UUID `json:"order_id"`
	TenantID uuid.UUID `json:"tenant_id"`
}

func (q *Queries) ListOrderItemModifiersByOrder(ctx context.Context, arg ListOrderItemModifiersByOrderParams) ([]OrderItemModifier, error) {
	rows, err := q.db.Query(ctx, listOrderItemModifiersByOrder, arg.OrderID, arg.TenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItemModifier{}
	for rows.Next() {
		var i OrderItemModifier
		if err := rows.Scan(
			&i.ID,
			&i.TenantID,
			&i.OrderItemID,
			&i.ModifierID,
			&i.ModifierName,
			&i.PriceAdjustment,
			&i.Quantity,
			&i.CreatedAt,
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

const listOrderItemsByOrder = `-- name: ListOrderItemsByOrder :many
SELECT ` + orderItemColumns + `
FROM order_items
WHERE order_id = $1 AND tenant_id = $2
ORDER BY sort_order, created_at`

type ListOrderItemsByOrderParams struct {
	OrderID  uuid.UUID `json:"order_id"`
	TenantID uuid.UUID `json:"tenant_id"`
}

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, arg ListOrderItemsByOrderParams) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, arg.OrderID, arg.TenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItem{}
	for rows.Next() {
		i, err := scanOrderItem(rows)
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

const markOrderItemsSent = `-- name: MarkOrderItemsSent :execrows
UPDATE order_items
SET kitchen_status = 'PENDING', kitchen_sent_at = now(), updated_at = now()
WHERE order_id = $1 AND tenant_id = $2 AND kitchen_sent_at IS NULL`

type MarkOrderItemsSentParams struct {
	OrderID  uuid.UUID `json:"order_id"`
	TenantID uuid.UUID `json:"tenant_id"`
}

func (q *Queries) MarkOrderItemsSent(ctx context.Context, arg MarkOrderItemsSentParams) (int64, error) {
	result, err := q.db.Exec(ctx, markOrderItemsSent, arg.OrderID, arg.TenantID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
