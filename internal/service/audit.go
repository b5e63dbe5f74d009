package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/quickstack-pos/api/internal/database"
	"go.uber.org/zap"
)

// AuditStore appends to the order status history. Rows are never updated or deleted.
type AuditStore interface {
	InsertOrderStatusHistory(ctx context.Context, arg database.InsertOrderStatusHistoryParams) (database.OrderStatusHistory, error)
}

// recordStatus appends one history row for a transition. It runs in the same
// transaction as the transition so both commit or neither does.
func recordStatus(ctx context.Context, store AuditStore, tenantID, orderID uuid.UUID, status string, changedBy uuid.UUID) error {
	_, err := store.InsertOrderStatusHistory(ctx, database.InsertOrderStatusHistoryParams{
		TenantID:  tenantID,
		OrderID:   orderID,
		Status:    status,
		ChangedBy: changedBy,
	})
	if err != nil {
		return fmt.Errorf("record status %s: %w", status, err)
	}
	return nil
}

// logOrderEvent writes one structured line per business event.
func logOrderEvent(log *zap.Logger, action string, actor Actor, orderID uuid.UUID, fields ...zap.Field) {
	log.Info("pos event", append([]zap.Field{
		zap.String("action", action),
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("user_id", actor.UserID.String()),
		zap.String("order_id", orderID.String()),
	}, fields...)...)
}
