package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/quickstack-pos/api/internal/database"
	"github.com/quickstack-pos/api/internal/enum"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed by the order lifecycle.
// Satisfied by *database.Queries bound to the pool or a tx.
type OrderStore interface {
	TableStore
	AuditStore
	SequenceStore
	GetBranch(ctx context.Context, arg database.GetBranchParams) (database.Branch, error)
	GetTenantTaxRate(ctx context.Context, id uuid.UUID) (pgtype.Numeric, error)
	GetCustomer(ctx context.Context, arg database.GetCustomerParams) (database.Customer, error)
	GetProductForOrder(ctx context.Context, arg database.GetProductForOrderParams) (database.GetProductForOrderRow, error)
	GetVariantForOrder(ctx context.Context, arg database.GetVariantForOrderParams) (database.GetVariantForOrderRow, error)
	GetComboForOrder(ctx context.Context, arg database.GetComboForOrderParams) (database.GetComboForOrderRow, error)
	GetModifierForOrder(ctx context.Context, arg database.GetModifierForOrderParams) (database.GetModifierForOrderRow, error)
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	GetOrderForUpdate(ctx context.Context, arg database.GetOrderForUpdateParams) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	UpdateOrderTotals(ctx context.Context, arg database.UpdateOrderTotalsParams) (database.Order, error)
	TransitionOrderStatus(ctx context.Context, arg database.TransitionOrderStatusParams) (database.Order, error)
	CloseOrder(ctx context.Context, arg database.CloseOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	CreateOrderItemModifier(ctx context.Context, arg database.CreateOrderItemModifierParams) (database.OrderItemModifier, error)
	ListOrderItemsByOrder(ctx context.Context, arg database.ListOrderItemsByOrderParams) ([]database.OrderItem, error)
	ListOrderItemModifiersByOrder(ctx context.Context, arg database.ListOrderItemModifiersByOrderParams) ([]database.OrderItemModifier, error)
	DeleteOrderItem(ctx context.Context, arg database.DeleteOrderItemParams) (uuid.UUID, error)
	DeleteOrderItemModifiers(ctx context.Context, arg database.DeleteOrderItemModifiersParams) error
	MarkOrderItemsSent(ctx context.Context, arg database.MarkOrderItemsSentParams) (int64, error)
	ListOrderStatusHistory(ctx context.Context, arg database.ListOrderStatusHistoryParams) ([]database.OrderStatusHistory, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// Actor is the authenticated caller. It always comes from the bearer token.
type Actor struct {
	TenantID  uuid.UUID
	UserID    uuid.UUID
	IsManager bool
}

// canSee reports whether the actor may read the order. Cashiers only see
// their own orders; anything else looks like a missing order.
func (a Actor) canSee(o database.Order) bool {
	return a.IsManager || o.CreatedBy == a.UserID
}

// CreateOrderRequest is the validated input for creating an order.
type CreateOrderRequest struct {
	BranchID     uuid.UUID
	ServiceType  string
	TableID      uuid.NullUUID
	CustomerID   uuid.NullUUID
	Notes        string
	KitchenNotes string
	Items        []OrderItemRequest
}

// OrderItemRequest is a single line. Exactly one of ProductID and ComboID is set.
type OrderItemRequest struct {
	ProductID uuid.NullUUID
	VariantID uuid.NullUUID
	ComboID   uuid.NullUUID
	Quantity  int32
	Notes     string
	Modifiers []ModifierRequest
}

// ModifierRequest is a modifier on an order item. Quantity <= 0 means 1.
type ModifierRequest struct {
	ModifierID uuid.UUID
	Quantity   int32
}

// ListOrdersRequest filters the order list.
type ListOrdersRequest struct {
	BranchID uuid.NullUUID
	Status   string
	Limit    int32
	Offset   int32
}

// OrderDetail is an order with its items.
type OrderDetail struct {
	Order database.Order
	Items []OrderItemResult
}

// OrderItemResult is an item with its modifiers.
type OrderItemResult struct {
	Item      database.OrderItem
	Modifiers []database.OrderItemModifier
}

// OrderService drives orders through PENDING, IN_PROGRESS, READY and CANCELLED.
// Completion belongs to PaymentService.
type OrderService struct {
	store          OrderStore
	pool           TxBeginner
	newStore       NewOrderStore
	tables         *TableGuard
	defaultTaxRate decimal.Decimal
	log            *zap.Logger
	now            func() time.Time
}

// NewOrderService creates a new OrderService. defaultTaxRate applies to
// tenants without a configured rate.
func NewOrderService(store OrderStore, pool TxBeginner, newStore NewOrderStore, defaultTaxRate decimal.Decimal, log *zap.Logger) *OrderService {
	return &OrderService{
		store:          store,
		pool:           pool,
		newStore:       newStore,
		tables:         NewTableGuard(func(db database.DBTX) TableStore { return newStore(db) }, log),
		defaultTaxRate: defaultTaxRate,
		log:            log,
		now:            time.Now,
	}
}

// preparedItem holds a priced order item and its modifiers, ready to insert.
type preparedItem struct {
	params    database.CreateOrderItemParams
	modifiers []database.CreateOrderItemModifierParams
	lineTotal decimal.Decimal
}

// CreateOrder validates, prices and creates an order atomically.
// Retries up to maxOrderNumberRetries times on order_number unique constraint
// violations. The counter rolls back with a failed attempt, so each retry
// allocates above the tenant's highest committed sequence for the day.
func (s *OrderService) CreateOrder(ctx context.Context, actor Actor, req CreateOrderRequest) (*OrderDetail, error) {
	if err := validateServiceRefs(req); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	taxRate := s.resolveTaxRate(ctx, actor.TenantID)
	now := s.now().UTC()

	var floor int32
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		detail, err := s.createOrderTx(ctx, actor, req, taxRate, now, floor)
		if err == nil {
			logOrderEvent(s.log, "ORDER_CREATED", actor, detail.Order.ID,
				zap.String("order_number", detail.Order.OrderNumber),
				zap.String("service_type", detail.Order.ServiceType))
			return detail, nil
		}
		if !isOrderNumberConflict(err) {
			return nil, err
		}

		floor, err = SequenceFloor(ctx, s.store, actor.TenantID, now)
		if err != nil {
			return nil, err
		}
		s.log.Warn("order number collision, retrying",
			zap.Int("attempt", attempt+1),
			zap.String("branch_id", req.BranchID.String()),
			zap.Int32("floor", floor))
	}
	return nil, ErrOrderNumberConflict
}

func validateServiceRefs(req CreateOrderRequest) error {
	switch req.ServiceType {
	case enum.ServiceTypeDineIn:
		if !req.TableID.Valid {
			return ErrTableRequired
		}
	case enum.ServiceTypeDelivery:
		if !req.CustomerID.Valid {
			return ErrCustomerRequired
		}
		if req.TableID.Valid {
			return ErrTableNotAllowed
		}
	case enum.ServiceTypeCounter:
		if req.TableID.Valid {
			return ErrTableNotAllowed
		}
		if req.CustomerID.Valid {
			return ErrCustomerNotAllowed
		}
	default:
		return ErrInvalidServiceType
	}
	return nil
}

// resolveTaxRate reads the tenant's rate outside of any transaction so a
// failed lookup cannot poison the write path.
func (s *OrderService) resolveTaxRate(ctx context.Context, tenantID uuid.UUID) decimal.Decimal {
	rate, err := s.store.GetTenantTaxRate(ctx, tenantID)
	if err != nil {
		s.log.Warn("tenant tax rate unavailable, using default",
			zap.String("tenant_id", tenantID.String()),
			zap.String("default_tax_rate", s.defaultTaxRate.String()),
			zap.Error(err))
		return s.defaultTaxRate
	}
	if !rate.Valid {
		return s.defaultTaxRate
	}
	return numericToDecimal(rate)
}

// createOrderTx executes the full order creation in a single transaction.
func (s *OrderService) createOrderTx(ctx context.Context, actor Actor, req CreateOrderRequest, taxRate decimal.Decimal, now time.Time, floor int32) (*OrderDetail, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := store.GetBranch(ctx, database.GetBranchParams{ID: req.BranchID, TenantID: actor.TenantID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBranchNotFound
		}
		return nil, fmt.Errorf("get branch: %w", err)
	}

	if req.TableID.Valid {
		if err := s.tables.Occupy(ctx, store, actor.TenantID, req.BranchID, req.TableID.UUID); err != nil {
			return nil, err
		}
	}

	if req.CustomerID.Valid {
		_, err := store.GetCustomer(ctx, database.GetCustomerParams{ID: req.CustomerID.UUID, TenantID: actor.TenantID})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrCustomerNotFound
			}
			return nil, fmt.Errorf("get customer: %w", err)
		}
	}

	items := make([]preparedItem, 0, len(req.Items))
	lineTotals := make([]decimal.Decimal, 0, len(req.Items))
	for i, itemReq := range req.Items {
		pi, err := prepareItem(ctx, store, actor.TenantID, itemReq)
		if err != nil {
			return nil, itemError(i, err)
		}
		items = append(items, pi)
		lineTotals = append(lineTotals, pi.lineTotal)
	}

	seq, err := NextSequence(ctx, store, actor.TenantID, req.BranchID, now, floor)
	if err != nil {
		return nil, err
	}

	totals := ComputeTotals(lineTotals, taxRate, decimal.Zero)

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		TenantID:      actor.TenantID,
		BranchID:      req.BranchID,
		TableID:       nullUUID(req.TableID),
		CustomerID:    nullUUID(req.CustomerID),
		OrderNumber:   FormatOrderNumber(now, seq),
		DailySequence: seq,
		ServiceType:   req.ServiceType,
		Status:        enum.OrderStatusPending,
		Subtotal:      decimalToNumeric(totals.Subtotal),
		TaxRate:       rateToNumeric(taxRate),
		Tax:           decimalToNumeric(totals.Tax),
		Discount:      decimalToNumeric(totals.Discount),
		Total:         decimalToNumeric(totals.Total),
		Notes:         optionalText(req.Notes),
		KitchenNotes:  optionalText(req.KitchenNotes),
		OpenedAt:      pgtype.Timestamptz{Time: now, Valid: true},
		CreatedBy:     actor.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	itemResults := make([]OrderItemResult, 0, len(items))
	for _, pi := range items {
		res, err := insertItem(ctx, store, order.ID, pi)
		if err != nil {
			return nil, err
		}
		itemResults = append(itemResults, res)
	}

	if err := recordStatus(ctx, store, actor.TenantID, order.ID, enum.OrderStatusPending, actor.UserID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &OrderDetail{Order: order, Items: itemResults}, nil
}

// prepareItem validates one line against the catalog and snapshots its name
// and prices. Catalog rows are read inside the caller's transaction.
func prepareItem(ctx context.Context, store OrderStore, tenantID uuid.UUID, req OrderItemRequest) (preparedItem, error) {
	if req.Quantity <= 0 {
		return preparedItem{}, ErrInvalidQuantity
	}
	if req.ProductID.Valid == req.ComboID.Valid {
		return preparedItem{}, ErrProductOrCombo
	}
	if req.VariantID.Valid && !req.ProductID.Valid {
		return preparedItem{}, ErrVariantWithoutProduct
	}

	params := database.CreateOrderItemParams{
		TenantID:      tenantID,
		Quantity:      req.Quantity,
		KitchenStatus: enum.KitchenStatusPending,
		Notes:         optionalText(req.Notes),
	}
	var unitPrice decimal.Decimal

	if req.ProductID.Valid {
		product, err := store.GetProductForOrder(ctx, database.GetProductForOrderParams{
			ID:       req.ProductID.UUID,
			TenantID: tenantID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return preparedItem{}, ErrProductNotFound
			}
			return preparedItem{}, fmt.Errorf("get product: %w", err)
		}
		if !product.IsActive || !product.IsAvailable {
			return preparedItem{}, ErrProductNotAvailable
		}
		params.ProductID = nullUUID(req.ProductID)
		params.ProductName = product.Name
		unitPrice = numericToDecimal(product.BasePrice)

		if req.VariantID.Valid {
			variant, err := store.GetVariantForOrder(ctx, database.GetVariantForOrderParams{
				ID:       req.VariantID.UUID,
				TenantID: tenantID,
			})
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return preparedItem{}, ErrVariantNotFound
				}
				return preparedItem{}, fmt.Errorf("get variant: %w", err)
			}
			if variant.ProductID != product.ID {
				return preparedItem{}, ErrVariantNotFound
			}
			if !variant.IsActive {
				return preparedItem{}, ErrProductNotAvailable
			}
			params.VariantID = nullUUID(req.VariantID)
			params.VariantName = pgtype.Text{String: variant.Name, Valid: true}
			unitPrice = unitPrice.Add(numericToDecimal(variant.PriceAdjustment))
		}
	} else {
		combo, err := store.GetComboForOrder(ctx, database.GetComboForOrderParams{
			ID:       req.ComboID.UUID,
			TenantID: tenantID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return preparedItem{}, ErrComboNotFound
			}
			return preparedItem{}, fmt.Errorf("get combo: %w", err)
		}
		if !combo.IsActive {
			return preparedItem{}, ErrProductNotAvailable
		}
		params.ComboID = nullUUID(req.ComboID)
		params.ProductName = combo.Name
		unitPrice = numericToDecimal(combo.Price)
	}

	var lines []ModifierLine
	var mods []database.CreateOrderItemModifierParams
	for j, m := range req.Modifiers {
		qty := m.Quantity
		if qty <= 0 {
			qty = 1
		}
		modifier, err := store.GetModifierForOrder(ctx, database.GetModifierForOrderParams{
			ID:       m.ModifierID,
			TenantID: tenantID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return preparedItem{}, fmt.Errorf("modifiers[%d]: %w", j, ErrModifierNotFound)
			}
			return preparedItem{}, fmt.Errorf("modifiers[%d]: get modifier: %w", j, err)
		}
		if !modifier.IsActive {
			return preparedItem{}, fmt.Errorf("modifiers[%d]: %w", j, ErrModifierNotFound)
		}
		adj := numericToDecimal(modifier.PriceAdjustment)
		lines = append(lines, ModifierLine{PriceAdjustment: adj, Quantity: qty})
		mods = append(mods, database.CreateOrderItemModifierParams{
			TenantID:        tenantID,
			ModifierID:      pgtype.UUID{Bytes: modifier.ID, Valid: true},
			ModifierName:    modifier.Name,
			PriceAdjustment: decimalToNumeric(adj),
			Quantity:        qty,
		})
	}

	modifiersTotal := ModifiersTotal(lines).Round(moneyScale)
	params.UnitPrice = decimalToNumeric(unitPrice)
	params.ModifiersTotal = decimalToNumeric(modifiersTotal)

	return preparedItem{
		params:    params,
		modifiers: mods,
		lineTotal: ItemTotal(req.Quantity, unitPrice, modifiersTotal),
	}, nil
}

func insertItem(ctx context.Context, store OrderStore, orderID uuid.UUID, pi preparedItem) (OrderItemResult, error) {
	pi.params.OrderID = orderID
	item, err := store.CreateOrderItem(ctx, pi.params)
	if err != nil {
		return OrderItemResult{}, fmt.Errorf("create order item: %w", err)
	}

	mods := make([]database.OrderItemModifier, 0, len(pi.modifiers))
	for _, mp := range pi.modifiers {
		mp.OrderItemID = item.ID
		oim, err := store.CreateOrderItemModifier(ctx, mp)
		if err != nil {
			return OrderItemResult{}, fmt.Errorf("create order item modifier: %w", err)
		}
		mods = append(mods, oim)
	}
	return OrderItemResult{Item: item, Modifiers: mods}, nil
}

// GetOrder returns the order with its items.
func (s *OrderService) GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.visibleOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	items, err := loadItems(ctx, s.store, order)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: order, Items: items}, nil
}

// ListOrders returns tenant orders newest first; cashiers only get their own.
func (s *OrderService) ListOrders(ctx context.Context, actor Actor, req ListOrdersRequest) ([]database.Order, error) {
	params := database.ListOrdersParams{
		TenantID: actor.TenantID,
		BranchID: nullUUID(req.BranchID),
		Status:   optionalText(req.Status),
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	if !actor.IsManager {
		params.CreatedBy = pgtype.UUID{Bytes: actor.UserID, Valid: true}
	}
	orders, err := s.store.ListOrders(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// History returns the status trail of an order, oldest first.
func (s *OrderService) History(ctx context.Context, actor Actor, orderID uuid.UUID) ([]database.OrderStatusHistory, error) {
	if _, err := s.visibleOrder(ctx, actor, orderID); err != nil {
		return nil, err
	}
	rows, err := s.store.ListOrderStatusHistory(ctx, database.ListOrderStatusHistoryParams{
		OrderID:  orderID,
		TenantID: actor.TenantID,
	})
	if err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	return rows, nil
}

func (s *OrderService) visibleOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (database.Order, error) {
	order, err := s.store.GetOrder(ctx, database.GetOrderParams{ID: orderID, TenantID: actor.TenantID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	if !actor.canSee(order) {
		return database.Order{}, ErrOrderNotFound
	}
	return order, nil
}

// AddItem appends a line to a PENDING order and recomputes its totals.
func (s *OrderService) AddItem(ctx context.Context, actor Actor, orderID uuid.UUID, req OrderItemRequest) (*OrderDetail, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := lockOrder(ctx, store, actor.TenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enum.OrderStatusPending {
		return nil, ErrOrderNotModifiable
	}

	pi, err := prepareItem(ctx, store, actor.TenantID, req)
	if err != nil {
		return nil, err
	}
	if _, err := insertItem(ctx, store, order.ID, pi); err != nil {
		return nil, err
	}

	detail, err := recalculate(ctx, store, order, actor.UserID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	logOrderEvent(s.log, "ORDER_ITEM_ADDED", actor, order.ID)
	return detail, nil
}

// RemoveItem deletes a line and its modifiers from a PENDING order.
func (s *OrderService) RemoveItem(ctx context.Context, actor Actor, orderID, itemID uuid.UUID) (*OrderDetail, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := lockOrder(ctx, store, actor.TenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enum.OrderStatusPending {
		return nil, ErrOrderNotModifiable
	}

	if err := store.DeleteOrderItemModifiers(ctx, database.DeleteOrderItemModifiersParams{
		OrderItemID: itemID,
		TenantID:    actor.TenantID,
	}); err != nil {
		return nil, fmt.Errorf("delete item modifiers: %w", err)
	}
	if _, err := store.DeleteOrderItem(ctx, database.DeleteOrderItemParams{
		ID:       itemID,
		OrderID:  order.ID,
		TenantID: actor.TenantID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderItemNotFound
		}
		return nil, fmt.Errorf("delete order item: %w", err)
	}

	detail, err := recalculate(ctx, store, order, actor.UserID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	logOrderEvent(s.log, "ORDER_ITEM_REMOVED", actor, order.ID, zap.String("item_id", itemID.String()))
	return detail, nil
}

// Submit sends a PENDING order with at least one item to the kitchen.
func (s *OrderService) Submit(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDetail, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := lockOrder(ctx, store, actor.TenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enum.OrderStatusPending {
		return nil, ErrOrderNotModifiable
	}

	items, err := store.ListOrderItemsByOrder(ctx, database.ListOrderItemsByOrderParams{
		OrderID:  order.ID,
		TenantID: actor.TenantID,
	})
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrOrderHasNoItems
	}

	updated, err := transition(ctx, store, order, enum.OrderStatusInProgress, actor.UserID)
	if err != nil {
		return nil, err
	}

	if _, err := store.MarkOrderItemsSent(ctx, database.MarkOrderItemsSentParams{
		OrderID:  order.ID,
		TenantID: actor.TenantID,
	}); err != nil {
		return nil, fmt.Errorf("mark items sent: %w", err)
	}

	if err := recordStatus(ctx, store, actor.TenantID, order.ID, enum.OrderStatusInProgress, actor.UserID); err != nil {
		return nil, err
	}

	itemResults, err := loadItems(ctx, store, updated)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	logOrderEvent(s.log, "ORDER_SUBMITTED", actor, order.ID)
	return &OrderDetail{Order: updated, Items: itemResults}, nil
}

// MarkReady moves an IN_PROGRESS order to READY.
func (s *OrderService) MarkReady(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDetail, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := lockOrder(ctx, store, actor.TenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enum.OrderStatusInProgress {
		return nil, ErrOrderNotInProgress
	}

	updated, err := transition(ctx, store, order, enum.OrderStatusReady, actor.UserID)
	if err != nil {
		return nil, err
	}

	if err := recordStatus(ctx, store, actor.TenantID, order.ID, enum.OrderStatusReady, actor.UserID); err != nil {
		return nil, err
	}

	itemResults, err := loadItems(ctx, store, updated)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	logOrderEvent(s.log, "ORDER_READY", actor, order.ID)
	return &OrderDetail{Order: updated, Items: itemResults}, nil
}

// Cancel closes any non-terminal order as CANCELLED and frees its table.
// Role checks happen at the HTTP boundary.
func (s *OrderService) Cancel(ctx context.Context, actor Actor, orderID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := lockOrder(ctx, store, actor.TenantID, orderID)
	if err != nil {
		return err
	}
	if enum.IsTerminalOrderStatus(order.Status) {
		return ErrOrderAlreadyTerminal
	}

	if _, err := store.CloseOrder(ctx, database.CloseOrderParams{
		ID:         order.ID,
		TenantID:   actor.TenantID,
		FromStatus: order.Status,
		ToStatus:   enum.OrderStatusCancelled,
		UpdatedBy:  actor.UserID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderStatusChanged
		}
		return fmt.Errorf("cancel order: %w", err)
	}

	if order.TableID.Valid {
		s.tables.Release(ctx, tx, actor.TenantID, uuid.UUID(order.TableID.Bytes))
	}

	if err := recordStatus(ctx, store, actor.TenantID, order.ID, enum.OrderStatusCancelled, actor.UserID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	logOrderEvent(s.log, "ORDER_CANCELLED", actor, order.ID, zap.String("previous_status", order.Status))
	return nil
}

// --- Helpers ---

type orderLocker interface {
	GetOrderForUpdate(ctx context.Context, arg database.GetOrderForUpdateParams) (database.Order, error)
}

// lockOrder loads the order FOR NO KEY UPDATE so state checks and writes in
// the same transaction see a stable row.
func lockOrder(ctx context.Context, store orderLocker, tenantID, orderID uuid.UUID) (database.Order, error) {
	order, err := store.GetOrderForUpdate(ctx, database.GetOrderForUpdateParams{ID: orderID, TenantID: tenantID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order for update: %w", err)
	}
	return order, nil
}

// transition is a compare-and-set on the status read by the caller.
func transition(ctx context.Context, store OrderStore, order database.Order, to string, by uuid.UUID) (database.Order, error) {
	updated, err := store.TransitionOrderStatus(ctx, database.TransitionOrderStatusParams{
		ID:         order.ID,
		TenantID:   order.TenantID,
		FromStatus: order.Status,
		ToStatus:   to,
		UpdatedBy:  by,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderStatusChanged
		}
		return database.Order{}, fmt.Errorf("update order status: %w", err)
	}
	return updated, nil
}

// recalculate recomputes subtotal, tax and total from the stored items using
// the tax rate captured at creation.
func recalculate(ctx context.Context, store OrderStore, order database.Order, by uuid.UUID) (*OrderDetail, error) {
	items, err := loadItems(ctx, store, order)
	if err != nil {
		return nil, err
	}

	lineTotals := make([]decimal.Decimal, len(items))
	for i, it := range items {
		lineTotals[i] = ItemTotal(it.Item.Quantity, numericToDecimal(it.Item.UnitPrice), numericToDecimal(it.Item.ModifiersTotal))
	}
	totals := ComputeTotals(lineTotals, numericToDecimal(order.TaxRate), numericToDecimal(order.Discount))

	updated, err := store.UpdateOrderTotals(ctx, database.UpdateOrderTotalsParams{
		ID:        order.ID,
		TenantID:  order.TenantID,
		Status:    order.Status,
		Subtotal:  decimalToNumeric(totals.Subtotal),
		Tax:       decimalToNumeric(totals.Tax),
		Total:     decimalToNumeric(totals.Total),
		UpdatedBy: by,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderStatusChanged
		}
		return nil, fmt.Errorf("update order totals: %w", err)
	}
	return &OrderDetail{Order: updated, Items: items}, nil
}

type itemLoader interface {
	ListOrderItemsByOrder(ctx context.Context, arg database.ListOrderItemsByOrderParams) ([]database.OrderItem, error)
	ListOrderItemModifiersByOrder(ctx context.Context, arg database.ListOrderItemModifiersByOrderParams) ([]database.OrderItemModifier, error)
}

func loadItems(ctx context.Context, store itemLoader, order database.Order) ([]OrderItemResult, error) {
	items, err := store.ListOrderItemsByOrder(ctx, database.ListOrderItemsByOrderParams{
		OrderID:  order.ID,
		TenantID: order.TenantID,
	})
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	mods, err := store.ListOrderItemModifiersByOrder(ctx, database.ListOrderItemModifiersByOrderParams{
		OrderID:  order.ID,
		TenantID: order.TenantID,
	})
	if err != nil {
		return nil, fmt.Errorf("list order item modifiers: %w", err)
	}

	byItem := make(map[uuid.UUID][]database.OrderItemModifier, len(items))
	for _, m := range mods {
		byItem[m.OrderItemID] = append(byItem[m.OrderItemID], m)
	}

	results := make([]OrderItemResult, len(items))
	for i, it := range items {
		results[i] = OrderItemResult{Item: it, Modifiers: byItem[it.ID]}
	}
	return results, nil
}

func nullUUID(id uuid.NullUUID) pgtype.UUID {
	if !id.Valid {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: id.UUID, Valid: true}
}

func optionalText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
