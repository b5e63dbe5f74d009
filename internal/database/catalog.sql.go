// source: catalog.sql

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getComboForOrder = `-- name: GetComboForOrder :one
SELECT id, name, price, is_active
FROM combos
WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`

type GetComboForOrderParams struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
}

type GetComboForOrderRow struct {
	ID       uuid.UUID      `json:"id"`
	Name     string         `json:"name"`
	Price    pgtype.Numeric `json:"price"`
	IsActive bool           `json:"is_active"`
}

func (q *Queries) GetComboForOrder(ctx context.Context, arg GetComboForOrderParams) (GetComboForOrderRow, error) {
	row := q.db.QueryRow(ctx, getComboForOrder, arg.ID, arg.TenantID)
	var i GetComboForOrderRow
	err := row.Scan(&i.ID, &i.Name, &i.Price, &i.IsActive)
	return i, err
}

const getModifierForOrder = `-- name: GetModifierForOrder :one
SELECT id, name, price_adjustment, is_active
FROM modifiers
WHERE id = $1 AND tenant_id = $2`

type GetModifierForOrderParams struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
}

type GetModifierForOrderRow struct {
	ID              uuid.UUID      `json:"id"`
	Name            string         `json:"name"`
	PriceAdjustment pgtype.Numeric `json:"price_adjustment"`
	IsActive        bool           `json:"is_active"`
}

func (q *Queries) GetModifierForOrder(ctx context.Context, arg GetModifierForOrderParams) (GetModifierForOrderRow, error) {
	row := q.db.QueryRow(ctx, getModifierForOrder, arg.ID, arg.TenantID)
	var i GetModifierForOrderRow
	err := row.Scan(&i.ID, &i.Name, &i.PriceAdjustment, &i.IsActive)
	return i, err
}

const getProductForOrder = `-- name: GetProductForOrder :one
SELECT id, name, base_price, is_active, is_available
FROM products
WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`

type GetProductForOrderParams struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
}

type GetProductForOrderRow struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	BasePrice   pgtype.Numeric `json:"base_price"`
	IsActive    bool           `json:"is_active"`
	IsAvailable bool           `json:"is_available"`
}

func (q *Queries) GetProductForOrder(ctx context.Context, arg GetProductForOrderParams) (GetProductForOrderRow, error) {
	row := q.db.QueryRow(ctx, getProductForOrder, arg.ID, arg.TenantID)
	var i GetProductForOrderRow
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.BasePrice,
		&i.IsActive,
		&i.IsAvailable,
	)
	return i, err
}

const getVariantForOrder = `-- name: GetVariantForOrder :one
SELECT id, product_id, name, price_adjustment, is_active
FROM product_variants
WHERE id = $1 AND tenant_id = $2`

type GetVariantForOrderParams struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
}

type GetVariantForOrderRow struct {
	ID              uuid.UUID      `json:"id"`
	ProductID       uuid.UUID      `json:"product_id"`
	Name            string         `json:"name"`
	PriceAdjustment pgtype.Numeric `json:"price_adjustment"`
	IsActive        bool           `json:"is_active"`
}

func (q *Queries) GetVariantForOrder(ctx context.Context, arg GetVariantForOrderParams) (GetVariantForOrderRow, error) {
	row := q.db.QueryRow(ctx, getVariantForOrder, arg.ID, arg.TenantID)
	var i GetVariantForOrderRow
	err := row.Scan(
		&i.ID,
		&i.ProductID,
		&i.Name,
		&i.PriceAdjustment,
		&i.IsActive,
	)
	return i, err
}

const listMenuProducts = `-- name: ListMenuProducts :many
SELECT id, name, base_price, is_active, is_available
FROM products
WHERE tenant_id = $1 AND deleted_at IS NULL AND is_active = true
ORDER BY name`

// ListMenuProducts returns active products, including ones marked unavailable,
// so a till can grey them out.
func (q *Queries) ListMenuProducts(ctx context.Context, tenantID uuid.UUID) ([]GetProductForOrderRow, error) {
	rows, err := q.db.Query(ctx, listMenuProducts, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []GetProductForOrderRow{}
	for rows.Next() {
		var i GetProductForOrderRow
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.BasePrice,
			&i.IsActive,
			&i.IsAvailable,
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

const listMenuVariants = `-- name: ListMenuVariants :many
SELECT v.id, v.product_id, v.name, v.price_adjustment, v.is_active
FROM product_variants v
JOIN products p ON p.id = v.product_id
WHERE v.tenant_id = $1 AND v.is_active = true AND p.deleted_at IS NULL
ORDER BY v.product_id, v.name`

func (q *Queries) ListMenuVariants(ctx context.Context, tenantID uuid.UUID) ([]GetVariantForOrderRow, error) {
	rows, err := q.db.Query(ctx, listMenuVariants, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []GetVariantForOrderRow{}
	for rows.Next() {
		var i GetVariantForOrderRow
		if err := rows.Scan(
			&i.ID,
			&i.ProductID,
			&i.Name,
			&i.PriceAdjustment,
			&i.IsActive,
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

const listMenuModifiers = `-- name: ListMenuModifiers :many
SELECT id, name, price_adjustment, is_active
FROM modifiers
WHERE tenant_id = $1 AND is_active = true
ORDER BY name`

func (q *Queries) ListMenuModifiers(ctx context.Context, tenantID uuid.UUID) ([]GetModifierForOrderRow, error) {
	rows, err := q.db.Query(ctx, listMenuModifiers, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []GetModifierForOrderRow{}
	for rows.Next() {
		var i GetModifierForOrderRow
		if err := rows.Scan(&i.ID, &i.Name, &i.PriceAdjustment, &i.IsActive); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listMenuCombos = `-- name: ListMenuCombos :many
SELECT id, name, price, is_active
FROM combos
WHERE tenant_id = $1 AND is_active = true AND deleted_at IS NULL
ORDER BY name`

func (q *Queries) ListMenuCombos(ctx context.Context, tenantID uuid.UUID) ([]GetComboForOrderRow, error) {
	rows, err := q.db.Query(ctx, listMenuCombos, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []GetComboForOrderRow{}
	for rows.Next() {
		var i GetComboForOrderRow
		if err := rows.Scan(&i.ID, &i.Name, &i.Price, &i.IsActive); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
