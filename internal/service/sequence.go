package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/quickstack-pos/api/internal/database"
)

const (
	maxOrderNumberRetries = 3

	orderNumberConstraint = "orders_tenant_order_number_key"
)

// SequenceStore allocates per-branch daily counters.
type SequenceStore interface {
	NextDailySequence(ctx context.Context, arg database.NextDailySequenceParams) (int32, error)
	MaxTenantDailySequence(ctx context.Context, arg database.MaxTenantDailySequenceParams) (int32, error)
}

// businessDate is the UTC calendar day of t.
func businessDate(t time.Time) pgtype.Date {
	t = t.UTC()
	return pgtype.Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), Valid: true}
}

// NextSequence returns the next order sequence for the branch on the UTC day
// of at, starting at 1 and always above floor. The counter row is updated
// atomically so concurrent creators never receive the same value.
func NextSequence(ctx context.Context, store SequenceStore, tenantID, branchID uuid.UUID, at time.Time, floor int32) (int32, error) {
	seq, err := store.NextDailySequence(ctx, database.NextDailySequenceParams{
		TenantID:     tenantID,
		BranchID:     branchID,
		BusinessDate: businessDate(at),
		Floor:        floor,
	})
	if err != nil {
		return 0, fmt.Errorf("next daily sequence: %w", err)
	}
	return seq, nil
}

// SequenceFloor returns the highest sequence committed by any branch of the
// tenant on the UTC day of at. Order numbers are unique per tenant, so a
// branch that collides with another branch restarts above this value.
func SequenceFloor(ctx context.Context, store SequenceStore, tenantID uuid.UUID, at time.Time) (int32, error) {
	floor, err := store.MaxTenantDailySequence(ctx, database.MaxTenantDailySequenceParams{
		TenantID:     tenantID,
		BusinessDate: businessDate(at),
	})
	if err != nil {
		return 0, fmt.Errorf("max tenant daily sequence: %w", err)
	}
	return floor, nil
}

// FormatOrderNumber renders ORD-YYYYMMDD-NNN using the UTC day of at.
// Sequences above 999 widen.
func FormatOrderNumber(at time.Time, seq int32) string {
	return fmt.Sprintf("ORD-%s-%03d", at.UTC().Format("20060102"), seq)
}

// isOrderNumberConflict checks if the error is a unique constraint violation
// on the order number (pgconn error code 23505).
func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == orderNumberConstraint
	}
	return false
}
