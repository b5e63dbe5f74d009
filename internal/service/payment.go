package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/quickstack-pos/api/internal/database"
	"github.com/quickstack-pos/api/internal/enum"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var minPaymentAmount = decimal.RequireFromString("0.01")

// PaymentStore defines the DB methods needed to register payments and close orders.
type PaymentStore interface {
	TableStore
	AuditStore
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	GetOrderForUpdate(ctx context.Context, arg database.GetOrderForUpdateParams) (database.Order, error)
	CreatePayment(ctx context.Context, arg database.CreatePaymentParams) (database.Payment, error)
	ListPaymentsByOrder(ctx context.Context, arg database.ListPaymentsByOrderParams) ([]database.Payment, error)
	SumPaymentsByOrder(ctx context.Context, arg database.SumPaymentsByOrderParams) (pgtype.Numeric, error)
	CloseOrder(ctx context.Context, arg database.CloseOrderParams) (database.Order, error)
	IncrementCustomerStats(ctx context.Context, arg database.IncrementCustomerStatsParams) (int64, error)
}

// NewPaymentStore creates a PaymentStore from a DBTX (pool or tx).
type NewPaymentStore func(db database.DBTX) PaymentStore

// RegisterPaymentRequest is the input for a single payment.
type RegisterPaymentRequest struct {
	OrderID         uuid.UUID
	PaymentMethod   string
	Amount          decimal.Decimal
	ReferenceNumber string
	Notes           string
}

// PaymentService registers payments and closes fully paid orders.
type PaymentService struct {
	store    PaymentStore
	pool     TxBeginner
	newStore NewPaymentStore
	tables   *TableGuard
	log      *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(store PaymentStore, pool TxBeginner, newStore NewPaymentStore, log *zap.Logger) *PaymentService {
	return &PaymentService{
		store:    store,
		pool:     pool,
		newStore: newStore,
		tables:   NewTableGuard(func(db database.DBTX) TableStore { return newStore(db) }, log),
		log:      log,
	}
}

// RegisterPayment records a cash payment against a READY order. When the
// payments cover the total, the order is completed in the same transaction:
// status, closed_at, table release, customer stats and audit row.
// The order's new state is not returned; callers re-fetch it.
func (s *PaymentService) RegisterPayment(ctx context.Context, actor Actor, req RegisterPaymentRequest) (database.Payment, error) {
	if !enum.IsValidPaymentMethod(req.PaymentMethod) {
		return database.Payment{}, ErrInvalidPaymentMethod
	}
	if req.Amount.LessThan(minPaymentAmount) {
		return database.Payment{}, ErrInvalidPaymentAmount
	}

	// Lock the order before reading its state so two tills cannot both close it.
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Payment{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := lockOrder(ctx, store, actor.TenantID, req.OrderID)
	if err != nil {
		return database.Payment{}, err
	}
	if order.Status != enum.OrderStatusReady {
		return database.Payment{}, ErrOrderNotReady
	}
	if req.PaymentMethod != enum.PaymentMethodCash {
		return database.Payment{}, ErrUnsupportedPaymentMethod
	}

	total := numericToDecimal(order.Total)
	if req.Amount.LessThan(total) {
		return database.Payment{}, ErrInsufficientPayment
	}
	change := req.Amount.Sub(total)

	payment, err := store.CreatePayment(ctx, database.CreatePaymentParams{
		TenantID:        actor.TenantID,
		OrderID:         order.ID,
		Amount:          decimalToNumeric(req.Amount),
		PaymentMethod:   req.PaymentMethod,
		AmountReceived:  decimalToNumeric(req.Amount),
		ChangeGiven:     decimalToNumeric(change),
		Status:          enum.PaymentStatusCompleted,
		ReferenceNumber: optionalText(req.ReferenceNumber),
		Notes:           optionalText(req.Notes),
		CreatedBy:       actor.UserID,
	})
	if err != nil {
		return database.Payment{}, fmt.Errorf("create payment: %w", err)
	}

	paid, err := store.SumPaymentsByOrder(ctx, database.SumPaymentsByOrderParams{
		OrderID:  order.ID,
		TenantID: actor.TenantID,
	})
	if err != nil {
		return database.Payment{}, fmt.Errorf("sum payments: %w", err)
	}

	closed := false
	if numericToDecimal(paid).GreaterThanOrEqual(total) {
		if err := s.closeOrder(ctx, tx, store, actor, order); err != nil {
			return database.Payment{}, err
		}
		closed = true
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Payment{}, fmt.Errorf("commit tx: %w", err)
	}

	logOrderEvent(s.log, "PAYMENT_REGISTERED", actor, order.ID,
		zap.String("payment_id", payment.ID.String()),
		zap.String("amount", req.Amount.StringFixed(moneyScale)),
		zap.String("change_given", change.StringFixed(moneyScale)))
	if closed {
		logOrderEvent(s.log, "ORDER_COMPLETED", actor, order.ID)
	}
	return payment, nil
}

// closeOrder runs the closing sequence inside tx.
func (s *PaymentService) closeOrder(ctx context.Context, tx pgx.Tx, store PaymentStore, actor Actor, order database.Order) error {
	if _, err := store.CloseOrder(ctx, database.CloseOrderParams{
		ID:         order.ID,
		TenantID:   actor.TenantID,
		FromStatus: enum.OrderStatusReady,
		ToStatus:   enum.OrderStatusCompleted,
		UpdatedBy:  actor.UserID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderStatusChanged
		}
		return fmt.Errorf("complete order: %w", err)
	}

	if order.TableID.Valid {
		s.tables.Release(ctx, tx, actor.TenantID, uuid.UUID(order.TableID.Bytes))
	}

	if order.CustomerID.Valid {
		n, err := store.IncrementCustomerStats(ctx, database.IncrementCustomerStatsParams{
			ID:       uuid.UUID(order.CustomerID.Bytes),
			TenantID: actor.TenantID,
			Amount:   order.Total,
		})
		if err != nil {
			return fmt.Errorf("increment customer stats: %w", err)
		}
		if n == 0 {
			s.log.Warn("customer stats not updated, customer missing or deleted",
				zap.String("order_id", order.ID.String()),
				zap.String("customer_id", uuid.UUID(order.CustomerID.Bytes).String()))
		}
	}

	return recordStatus(ctx, store, actor.TenantID, order.ID, enum.OrderStatusCompleted, actor.UserID)
}

// ListPayments returns the order's payments in creation order.
func (s *PaymentService) ListPayments(ctx context.Context, actor Actor, orderID uuid.UUID) ([]database.Payment, error) {
	if _, err := s.store.GetOrder(ctx, database.GetOrderParams{ID: orderID, TenantID: actor.TenantID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	payments, err := s.store.ListPaymentsByOrder(ctx, database.ListPaymentsByOrderParams{
		OrderID:  orderID,
		TenantID: actor.TenantID,
	})
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}
