// source: tenants.sql

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getBranch = `-- name: GetBranch :one
SELECT id, tenant_id, name, address, is_active, created_at, updated_at
FROM branches
WHERE id = $1 AND tenant_id = $2`

type GetBranchParams struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
}

func (q *Queries) GetBranch(ctx context.Context, arg GetBranchParams) (Branch, error) {
	row := q.db.QueryRow(ctx, getBranch, arg.ID, arg.TenantID)
	var i Branch
	err := row.Scan(
		&i.ID,
		&i.TenantID,
		&i.Name,
		&i.Address,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getTenantTaxRate = `-- name: GetTenantTaxRate :one
SELECT tax_rate FROM tenants WHERE id = $1`

func (q *Queries) GetTenantTaxRate(ctx context.Context, id uuid.UUID) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, getTenantTaxRate, id)
	var tax_rate pgtype.Numeric
	err := row.Scan(&tax_rate)
	return tax_rate, err
}
