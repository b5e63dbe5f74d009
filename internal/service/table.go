package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/quickstack-pos/api/internal/database"
	"github.com/quickstack-pos/api/internal/enum"
	"go.uber.org/zap"
)

// TableStore defines the DB methods needed to claim and free tables.
type TableStore interface {
	GetTableForOrder(ctx context.Context, arg database.GetTableForOrderParams) (database.RestaurantTable, error)
	OccupyTable(ctx context.Context, arg database.OccupyTableParams) (int64, error)
	ReleaseTable(ctx context.Context, arg database.ReleaseTableParams) (int64, error)
}

// TableGuard moves tables between AVAILABLE and OCCUPIED.
type TableGuard struct {
	newStore func(db database.DBTX) TableStore
	log      *zap.Logger
}

// NewTableGuard creates a TableGuard. newStore is used to bind releases to a savepoint.
func NewTableGuard(newStore func(db database.DBTX) TableStore, log *zap.Logger) *TableGuard {
	return &TableGuard{newStore: newStore, log: log}
}

// Occupy claims the table for a new order. The table must belong to the branch
// and be AVAILABLE; the write is conditional so two orders cannot claim it.
func (g *TableGuard) Occupy(ctx context.Context, store TableStore, tenantID, branchID, tableID uuid.UUID) error {
	table, err := store.GetTableForOrder(ctx, database.GetTableForOrderParams{
		ID:       tableID,
		TenantID: tenantID,
		BranchID: branchID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTableNotFound
		}
		return fmt.Errorf("get table: %w", err)
	}
	if table.Status != enum.TableStatusAvailable {
		return ErrTableNotAvailable
	}

	n, err := store.OccupyTable(ctx, database.OccupyTableParams{ID: tableID, TenantID: tenantID})
	if err != nil {
		return fmt.Errorf("occupy table: %w", err)
	}
	if n == 0 {
		return ErrTableNotAvailable
	}
	return nil
}

// Release frees the table inside a savepoint of tx. Failures are logged and
// never returned: closing an order must not fail on table state.
func (g *TableGuard) Release(ctx context.Context, tx pgx.Tx, tenantID, tableID uuid.UUID) {
	sp, err := tx.Begin(ctx)
	if err != nil {
		g.log.Warn("table release skipped",
			zap.String("tenant_id", tenantID.String()),
			zap.String("table_id", tableID.String()),
			zap.Error(err))
		return
	}

	n, err := g.newStore(sp).ReleaseTable(ctx, database.ReleaseTableParams{ID: tableID, TenantID: tenantID})
	if err != nil {
		_ = sp.Rollback(ctx)
		g.log.Warn("table release failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("table_id", tableID.String()),
			zap.Error(err))
		return
	}
	if n == 0 {
		g.log.Warn("table release found no table",
			zap.String("tenant_id", tenantID.String()),
			zap.String("table_id", tableID.String()))
	}
	if err := sp.Commit(ctx); err != nil {
		g.log.Warn("table release savepoint commit failed",
			zap.String("table_id", tableID.String()),
			zap.Error(err))
	}
}
