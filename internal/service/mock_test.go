package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/quickstack-pos/api/internal/database"
	"github.com/quickstack-pos/api/internal/enum"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// --- Mock implementations ---

// mockTx implements pgx.Tx with only the methods we need.
// The unused methods panic so we catch accidental calls.
type mockTx struct {
	commitErr error
	beginErr  error

	committed  int
	rolledBack int
	savepoints []*mockTx
}

// Begin starts a savepoint, which pgx models as a nested transaction.
func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	sp := &mockTx{}
	m.savepoints = append(m.savepoints, sp)
	return sp, nil
}
func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.committed++
	return nil
}
func (m *mockTx) Rollback(ctx context.Context) error {
	if m.committed == 0 {
		m.rolledBack++
	}
	return nil
}
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (m *mockTx) Conn() *pgx.Conn { panic("not implemented") }

// mockTxBeginner implements TxBeginner and hands out a fresh mockTx per call.
type mockTxBeginner struct {
	err error
	txs []*mockTx
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.err != nil {
		return nil, m.err
	}
	tx := &mockTx{}
	m.txs = append(m.txs, tx)
	return tx, nil
}

func (m *mockTxBeginner) last() *mockTx {
	if len(m.txs) == 0 {
		return nil
	}
	return m.txs[len(m.txs)-1]
}

// mockStore implements OrderStore, PaymentStore and ReportStore with
// configurable behavior.
type mockStore struct {
	getBranchFn                     func(ctx context.Context, arg database.GetBranchParams) (database.Branch, error)
	getTenantTaxRateFn              func(ctx context.Context, id uuid.UUID) (pgtype.Numeric, error)
	getCustomerFn                   func(ctx context.Context, arg database.GetCustomerParams) (database.Customer, error)
	getProductForOrderFn            func(ctx context.Context, arg database.GetProductForOrderParams) (database.GetProductForOrderRow, error)
	getVariantForOrderFn            func(ctx context.Context, arg database.GetVariantForOrderParams) (database.GetVariantForOrderRow, error)
	getComboForOrderFn              func(ctx context.Context, arg database.GetComboForOrderParams) (database.GetComboForOrderRow, error)
	getModifierForOrderFn           func(ctx context.Context, arg database.GetModifierForOrderParams) (database.GetModifierForOrderRow, error)
	getOrderFn                      func(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	getOrderForUpdateFn             func(ctx context.Context, arg database.GetOrderForUpdateParams) (database.Order, error)
	listOrdersFn                    func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	createOrderFn                   func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	updateOrderTotalsFn             func(ctx context.Context, arg database.UpdateOrderTotalsParams) (database.Order, error)
	transitionOrderStatusFn         func(ctx context.Context, arg database.TransitionOrderStatusParams) (database.Order, error)
	closeOrderFn                    func(ctx context.Context, arg database.CloseOrderParams) (database.Order, error)
	createOrderItemFn               func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	createOrderItemModifierFn       func(ctx context.Context, arg database.CreateOrderItemModifierParams) (database.OrderItemModifier, error)
	listOrderItemsByOrderFn         func(ctx context.Context, arg database.ListOrderItemsByOrderParams) ([]database.OrderItem, error)
	listOrderItemModifiersByOrderFn func(ctx context.Context, arg database.ListOrderItemModifiersByOrderParams) ([]database.OrderItemModifier, error)
	deleteOrderItemFn               func(ctx context.Context, arg database.DeleteOrderItemParams) (uuid.UUID, error)
	deleteOrderItemModifiersFn      func(ctx context.Context, arg database.DeleteOrderItemModifiersParams) error
	markOrderItemsSentFn            func(ctx context.Context, arg database.MarkOrderItemsSentParams) (int64, error)
	listOrderStatusHistoryFn        func(ctx context.Context, arg database.ListOrderStatusHistoryParams) ([]database.OrderStatusHistory, error)
	getTableForOrderFn              func(ctx context.Context, arg database.GetTableForOrderParams) (database.RestaurantTable, error)
	occupyTableFn                   func(ctx context.Context, arg database.OccupyTableParams) (int64, error)
	releaseTableFn                  func(ctx context.Context, arg database.ReleaseTableParams) (int64, error)
	insertOrderStatusHistoryFn      func(ctx context.Context, arg database.InsertOrderStatusHistoryParams) (database.OrderStatusHistory, error)
	nextDailySequenceFn             func(ctx context.Context, arg database.NextDailySequenceParams) (int32, error)
	maxTenantDailySequenceFn        func(ctx context.Context, arg database.MaxTenantDailySequenceParams) (int32, error)
	createPaymentFn                 func(ctx context.Context, arg database.CreatePaymentParams) (database.Payment, error)
	listPaymentsByOrderFn           func(ctx context.Context, arg database.ListPaymentsByOrderParams) ([]database.Payment, error)
	sumPaymentsByOrderFn            func(ctx context.Context, arg database.SumPaymentsByOrderParams) (pgtype.Numeric, error)
	incrementCustomerStatsFn        func(ctx context.Context, arg database.IncrementCustomerStatsParams) (int64, error)
	getDailyOrderStatsFn            func(ctx context.Context, arg database.GetDailyOrderStatsParams) (database.GetDailyOrderStatsRow, error)
	getDailyServiceTypeBreakdownFn  func(ctx context.Context, arg database.GetDailyServiceTypeBreakdownParams) ([]database.GetDailyServiceTypeBreakdownRow, error)
	getDailyTopProductsFn           func(ctx context.Context, arg database.GetDailyTopProductsParams) ([]database.GetDailyTopProductsRow, error)
}

func (m *mockStore) GetBranch(ctx context.Context, arg database.GetBranchParams) (database.Branch, error) {
	return m.getBranchFn(ctx, arg)
}
func (m *mockStore) GetTenantTaxRate(ctx context.Context, id uuid.UUID) (pgtype.Numeric, error) {
	return m.getTenantTaxRateFn(ctx, id)
}
func (m *mockStore) GetCustomer(ctx context.Context, arg database.GetCustomerParams) (database.Customer, error) {
	return m.getCustomerFn(ctx, arg)
}
func (m *mockStore) GetProductForOrder(ctx context.Context, arg database.GetProductForOrderParams) (database.GetProductForOrderRow, error) {
	return m.getProductForOrderFn(ctx, arg)
}
func (m *mockStore) GetVariantForOrder(ctx context.Context, arg database.GetVariantForOrderParams) (database.GetVariantForOrderRow, error) {
	return m.getVariantForOrderFn(ctx, arg)
}
func (m *mockStore) GetComboForOrder(ctx context.Context, arg database.GetComboForOrderParams) (database.GetComboForOrderRow, error) {
	return m.getComboForOrderFn(ctx, arg)
}
func (m *mockStore) GetModifierForOrder(ctx context.Context, arg database.GetModifierForOrderParams) (database.GetModifierForOrderRow, error) {
	return m.getModifierForOrderFn(ctx, arg)
}
func (m *mockStore) GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
	return m.getOrderFn(ctx, arg)
}
func (m *mockStore) GetOrderForUpdate(ctx context.Context, arg database.GetOrderForUpdateParams) (database.Order, error) {
	return m.getOrderForUpdateFn(ctx, arg)
}
func (m *mockStore) ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
	return m.listOrdersFn(ctx, arg)
}
func (m *mockStore) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	return m.createOrderFn(ctx, arg)
}
func (m *mockStore) UpdateOrderTotals(ctx context.Context, arg database.UpdateOrderTotalsParams) (database.Order, error) {
	return m.updateOrderTotalsFn(ctx, arg)
}
func (m *mockStore) TransitionOrderStatus(ctx context.Context, arg database.TransitionOrderStatusParams) (database.Order, error) {
	return m.transitionOrderStatusFn(ctx, arg)
}
func (m *mockStore) CloseOrder(ctx context.Context, arg database.CloseOrderParams) (database.Order, error) {
	return m.closeOrderFn(ctx, arg)
}
func (m *mockStore) CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	return m.createOrderItemFn(ctx, arg)
}
func (m *mockStore) CreateOrderItemModifier(ctx context.Context, arg database.CreateOrderItemModifierParams) (database.OrderItemModifier, error) {
	return m.createOrderItemModifierFn(ctx, arg)
}
func (m *mockStore) ListOrderItemsByOrder(ctx context.Context, arg database.ListOrderItemsByOrderParams) ([]database.OrderItem, error) {
	return m.listOrderItemsByOrderFn(ctx, arg)
}
func (m *mockStore) ListOrderItemModifiersByOrder(ctx context.Context, arg database.ListOrderItemModifiersByOrderParams) ([]database.OrderItemModifier, error) {
	return m.listOrderItemModifiersByOrderFn(ctx, arg)
}
func (m *mockStore) DeleteOrderItem(ctx context.Context, arg database.DeleteOrderItemParams) (uuid.UUID, error) {
	return m.deleteOrderItemFn(ctx, arg)
}
func (m *mockStore) DeleteOrderItemModifiers(ctx context.Context, arg database.DeleteOrderItemModifiersParams) error {
	return m.deleteOrderItemModifiersFn(ctx, arg)
}
func (m *mockStore) MarkOrderItemsSent(ctx context.Context, arg database.MarkOrderItemsSentParams) (int64, error) {
	return m.markOrderItemsSentFn(ctx, arg)
}
func (m *mockStore) ListOrderStatusHistory(ctx context.Context, arg database.ListOrderStatusHistoryParams) ([]database.OrderStatusHistory, error) {
	return m.listOrderStatusHistoryFn(ctx, arg)
}
func (m *mockStore) GetTableForOrder(ctx context.Context, arg database.GetTableForOrderParams) (database.RestaurantTable, error) {
	return m.getTableForOrderFn(ctx, arg)
}
func (m *mockStore) OccupyTable(ctx context.Context, arg database.OccupyTableParams) (int64, error) {
	return m.occupyTableFn(ctx, arg)
}
func (m *mockStore) ReleaseTable(ctx context.Context, arg database.ReleaseTableParams) (int64, error) {
	return m.releaseTableFn(ctx, arg)
}
func (m *mockStore) InsertOrderStatusHistory(ctx context.Context, arg database.InsertOrderStatusHistoryParams) (database.OrderStatusHistory, error) {
	return m.insertOrderStatusHistoryFn(ctx, arg)
}
func (m *mockStore) NextDailySequence(ctx context.Context, arg database.NextDailySequenceParams) (int32, error) {
	return m.nextDailySequenceFn(ctx, arg)
}
func (m *mockStore) MaxTenantDailySequence(ctx context.Context, arg database.MaxTenantDailySequenceParams) (int32, error) {
	return m.maxTenantDailySequenceFn(ctx, arg)
}
func (m *mockStore) CreatePayment(ctx context.Context, arg database.CreatePaymentParams) (database.Payment, error) {
	return m.createPaymentFn(ctx, arg)
}
func (m *mockStore) ListPaymentsByOrder(ctx context.Context, arg database.ListPaymentsByOrderParams) ([]database.Payment, error) {
	return m.listPaymentsByOrderFn(ctx, arg)
}
func (m *mockStore) SumPaymentsByOrder(ctx context.Context, arg database.SumPaymentsByOrderParams) (pgtype.Numeric, error) {
	return m.sumPaymentsByOrderFn(ctx, arg)
}
func (m *mockStore) IncrementCustomerStats(ctx context.Context, arg database.IncrementCustomerStatsParams) (int64, error) {
	return m.incrementCustomerStatsFn(ctx, arg)
}
func (m *mockStore) GetDailyOrderStats(ctx context.Context, arg database.GetDailyOrderStatsParams) (database.GetDailyOrderStatsRow, error) {
	return m.getDailyOrderStatsFn(ctx, arg)
}
func (m *mockStore) GetDailyServiceTypeBreakdown(ctx context.Context, arg database.GetDailyServiceTypeBreakdownParams) ([]database.GetDailyServiceTypeBreakdownRow, error) {
	return m.getDailyServiceTypeBreakdownFn(ctx, arg)
}
func (m *mockStore) GetDailyTopProducts(ctx context.Context, arg database.GetDailyTopProductsParams) ([]database.GetDailyTopProductsRow, error) {
	return m.getDailyTopProductsFn(ctx, arg)
}

// --- In-memory fixture ---

// fixture is a tiny in-memory tenant. store() wires every mockStore function
// to it so tests only override the calls they care about. Writes are not
// transactional, except that daily sequences are derived from stored orders
// the way the counter row looks after a failed insert rolls back. Orders are
// unique per (tenant, order number).
type fixture struct {
	tenantID uuid.UUID
	branchID uuid.UUID
	cashier  Actor
	manager  Actor

	taxRate pgtype.Numeric

	tables    map[uuid.UUID]*database.RestaurantTable
	customers map[uuid.UUID]*database.Customer
	products  map[uuid.UUID]database.GetProductForOrderRow
	variants  map[uuid.UUID]database.GetVariantForOrderRow
	combos    map[uuid.UUID]database.GetComboForOrderRow
	modifiers map[uuid.UUID]database.GetModifierForOrderRow

	orders   map[uuid.UUID]*database.Order
	items    []database.OrderItem
	itemMods []database.OrderItemModifier
	history  []database.OrderStatusHistory
	payments []database.Payment

	otherBranchID uuid.UUID

	// catalog ids used across tests
	tableID    uuid.UUID
	customerID uuid.UUID
	burgerID   uuid.UUID
	largeID    uuid.UUID
	comboID    uuid.UUID
	cheeseID   uuid.UUID
}

func newFixture() *fixture {
	tenantID := uuid.New()
	f := &fixture{
		tenantID:  tenantID,
		branchID:  uuid.New(),
		cashier:   Actor{TenantID: tenantID, UserID: uuid.New()},
		manager:   Actor{TenantID: tenantID, UserID: uuid.New(), IsManager: true},
		taxRate:   makeNumeric("0.1600"),
		tables:    map[uuid.UUID]*database.RestaurantTable{},
		customers: map[uuid.UUID]*database.Customer{},
		products:  map[uuid.UUID]database.GetProductForOrderRow{},
		variants:  map[uuid.UUID]database.GetVariantForOrderRow{},
		combos:    map[uuid.UUID]database.GetComboForOrderRow{},
		modifiers: map[uuid.UUID]database.GetModifierForOrderRow{},
		orders:    map[uuid.UUID]*database.Order{},
	}
	f.otherBranchID = uuid.New()

	f.tableID = uuid.New()
	f.tables[f.tableID] = &database.RestaurantTable{ID: f.tableID, TenantID: tenantID, Number: "T1", Status: enum.TableStatusAvailable}

	f.customerID = uuid.New()
	f.customers[f.customerID] = &database.Customer{
		ID: f.customerID, TenantID: tenantID,
		Phone:      pgtype.Text{String: "5550001", Valid: true},
		TotalSpent: makeNumeric("0"),
	}

	f.burgerID = uuid.New()
	f.products[f.burgerID] = database.GetProductForOrderRow{
		ID: f.burgerID, Name: "Burger", BasePrice: makeNumeric("100.00"), IsActive: true, IsAvailable: true,
	}
	f.largeID = uuid.New()
	f.variants[f.largeID] = database.GetVariantForOrderRow{
		ID: f.largeID, ProductID: f.burgerID, Name: "Large", PriceAdjustment: makeNumeric("15.50"), IsActive: true,
	}
	f.comboID = uuid.New()
	f.combos[f.comboID] = database.GetComboForOrderRow{
		ID: f.comboID, Name: "Lunch Combo", Price: makeNumeric("75.00"), IsActive: true,
	}
	f.cheeseID = uuid.New()
	f.modifiers[f.cheeseID] = database.GetModifierForOrderRow{
		ID: f.cheeseID, Name: "Extra cheese", PriceAdjustment: makeNumeric("10.00"), IsActive: true,
	}
	return f
}

// maxSequence is the highest stored daily sequence of the tenant on the UTC
// day, optionally limited to one branch.
func (f *fixture) maxSequence(tenantID uuid.UUID, branchID uuid.NullUUID, day pgtype.Date) int32 {
	var last int32
	for _, o := range f.orders {
		if o.TenantID != tenantID || (branchID.Valid && o.BranchID != branchID.UUID) {
			continue
		}
		if !businessDate(o.OpenedAt).Time.Equal(day.Time) {
			continue
		}
		if o.DailySequence > last {
			last = o.DailySequence
		}
	}
	return last
}

func (f *fixture) store() *mockStore {
	return &mockStore{
		getBranchFn: func(ctx context.Context, arg database.GetBranchParams) (database.Branch, error) {
			if arg.TenantID != f.tenantID {
				return database.Branch{}, pgx.ErrNoRows
			}
			switch arg.ID {
			case f.branchID:
				return database.Branch{ID: f.branchID, TenantID: f.tenantID, Name: "Main", IsActive: true}, nil
			case f.otherBranchID:
				return database.Branch{ID: f.otherBranchID, TenantID: f.tenantID, Name: "Airport", IsActive: true}, nil
			}
			return database.Branch{}, pgx.ErrNoRows
		},
		getTenantTaxRateFn: func(ctx context.Context, id uuid.UUID) (pgtype.Numeric, error) {
			if id != f.tenantID {
				return pgtype.Numeric{}, pgx.ErrNoRows
			}
			return f.taxRate, nil
		},
		getCustomerFn: func(ctx context.Context, arg database.GetCustomerParams) (database.Customer, error) {
			c, ok := f.customers[arg.ID]
			if !ok || c.TenantID != arg.TenantID {
				return database.Customer{}, pgx.ErrNoRows
			}
			return *c, nil
		},
		getProductForOrderFn: func(ctx context.Context, arg database.GetProductForOrderParams) (database.GetProductForOrderRow, error) {
			p, ok := f.products[arg.ID]
			if !ok || arg.TenantID != f.tenantID {
				return database.GetProductForOrderRow{}, pgx.ErrNoRows
			}
			return p, nil
		},
		getVariantForOrderFn: func(ctx context.Context, arg database.GetVariantForOrderParams) (database.GetVariantForOrderRow, error) {
			v, ok := f.variants[arg.ID]
			if !ok || arg.TenantID != f.tenantID {
				return database.GetVariantForOrderRow{}, pgx.ErrNoRows
			}
			return v, nil
		},
		getComboForOrderFn: func(ctx context.Context, arg database.GetComboForOrderParams) (database.GetComboForOrderRow, error) {
			c, ok := f.combos[arg.ID]
			if !ok || arg.TenantID != f.tenantID {
				return database.GetComboForOrderRow{}, pgx.ErrNoRows
			}
			return c, nil
		},
		getModifierForOrderFn: func(ctx context.Context, arg database.GetModifierForOrderParams) (database.GetModifierForOrderRow, error) {
			m, ok := f.modifiers[arg.ID]
			if !ok || arg.TenantID != f.tenantID {
				return database.GetModifierForOrderRow{}, pgx.ErrNoRows
			}
			return m, nil
		},
		getOrderFn: func(ctx context.Context, arg database.GetOrderParams) (database.Order, error) {
			return f.order(arg.ID, arg.TenantID)
		},
		getOrderForUpdateFn: func(ctx context.Context, arg database.GetOrderForUpdateParams) (database.Order, error) {
			return f.order(arg.ID, arg.TenantID)
		},
		listOrdersFn: func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
			var out []database.Order
			for _, o := range f.orders {
				if o.TenantID != arg.TenantID {
					continue
				}
				if arg.CreatedBy.Valid && o.CreatedBy != uuid.UUID(arg.CreatedBy.Bytes) {
					continue
				}
				if arg.Status.Valid && o.Status != arg.Status.String {
					continue
				}
				out = append(out, *o)
			}
			sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.After(out[j].OpenedAt) })
			return out, nil
		},
		createOrderFn: func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
			for _, existing := range f.orders {
				if existing.TenantID == arg.TenantID && existing.OrderNumber == arg.OrderNumber {
					return database.Order{}, &pgconn.PgError{Code: "23505", ConstraintName: "orders_tenant_order_number_key"}
				}
			}
			o := &database.Order{
				ID:            uuid.New(),
				TenantID:      arg.TenantID,
				BranchID:      arg.BranchID,
				TableID:       arg.TableID,
				CustomerID:    arg.CustomerID,
				OrderNumber:   arg.OrderNumber,
				DailySequence: arg.DailySequence,
				ServiceType:   arg.ServiceType,
				Status:        arg.Status,
				Subtotal:      arg.Subtotal,
				TaxRate:       arg.TaxRate,
				Tax:           arg.Tax,
				Discount:      arg.Discount,
				Total:         arg.Total,
				Notes:         arg.Notes,
				KitchenNotes:  arg.KitchenNotes,
				OpenedAt:      arg.OpenedAt.Time,
				CreatedBy:     arg.CreatedBy,
				UpdatedBy:     arg.CreatedBy,
			}
			f.orders[o.ID] = o
			return *o, nil
		},
		updateOrderTotalsFn: func(ctx context.Context, arg database.UpdateOrderTotalsParams) (database.Order, error) {
			o, ok := f.orders[arg.ID]
			if !ok || o.TenantID != arg.TenantID || o.Status != arg.Status {
				return database.Order{}, pgx.ErrNoRows
			}
			o.Subtotal, o.Tax, o.Total, o.UpdatedBy = arg.Subtotal, arg.Tax, arg.Total, arg.UpdatedBy
			return *o, nil
		},
		transitionOrderStatusFn: func(ctx context.Context, arg database.TransitionOrderStatusParams) (database.Order, error) {
			o, ok := f.orders[arg.ID]
			if !ok || o.TenantID != arg.TenantID || o.Status != arg.FromStatus {
				return database.Order{}, pgx.ErrNoRows
			}
			o.Status, o.UpdatedBy = arg.ToStatus, arg.UpdatedBy
			return *o, nil
		},
		closeOrderFn: func(ctx context.Context, arg database.CloseOrderParams) (database.Order, error) {
			o, ok := f.orders[arg.ID]
			if !ok || o.TenantID != arg.TenantID || o.Status != arg.FromStatus {
				return database.Order{}, pgx.ErrNoRows
			}
			o.Status, o.UpdatedBy = arg.ToStatus, arg.UpdatedBy
			o.ClosedAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
			return *o, nil
		},
		createOrderItemFn: func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
			lt := ItemTotal(arg.Quantity, numericToDecimal(arg.UnitPrice), numericToDecimal(arg.ModifiersTotal))
			it := database.OrderItem{
				ID:             uuid.New(),
				TenantID:       arg.TenantID,
				OrderID:        arg.OrderID,
				ProductID:      arg.ProductID,
				VariantID:      arg.VariantID,
				ComboID:        arg.ComboID,
				ProductName:    arg.ProductName,
				VariantName:    arg.VariantName,
				Quantity:       arg.Quantity,
				UnitPrice:      arg.UnitPrice,
				ModifiersTotal: arg.ModifiersTotal,
				LineTotal:      decimalToNumeric(lt),
				KitchenStatus:  arg.KitchenStatus,
				Notes:          arg.Notes,
			}
			f.items = append(f.items, it)
			return it, nil
		},
		createOrderItemModifierFn: func(ctx context.Context, arg database.CreateOrderItemModifierParams) (database.OrderItemModifier, error) {
			m := database.OrderItemModifier{
				ID:              uuid.New(),
				TenantID:        arg.TenantID,
				OrderItemID:     arg.OrderItemID,
				ModifierID:      arg.ModifierID,
				ModifierName:    arg.ModifierName,
				PriceAdjustment: arg.PriceAdjustment,
				Quantity:        arg.Quantity,
			}
			f.itemMods = append(f.itemMods, m)
			return m, nil
		},
		listOrderItemsByOrderFn: func(ctx context.Context, arg database.ListOrderItemsByOrderParams) ([]database.OrderItem, error) {
			var out []database.OrderItem
			for _, it := range f.items {
				if it.OrderID == arg.OrderID && it.TenantID == arg.TenantID {
					out = append(out, it)
				}
			}
			return out, nil
		},
		listOrderItemModifiersByOrderFn: func(ctx context.Context, arg database.ListOrderItemModifiersByOrderParams) ([]database.OrderItemModifier, error) {
			itemIDs := map[uuid.UUID]bool{}
			for _, it := range f.items {
				if it.OrderID == arg.OrderID {
					itemIDs[it.ID] = true
				}
			}
			var out []database.OrderItemModifier
			for _, m := range f.itemMods {
				if itemIDs[m.OrderItemID] && m.TenantID == arg.TenantID {
					out = append(out, m)
				}
			}
			return out, nil
		},
		deleteOrderItemFn: func(ctx context.Context, arg database.DeleteOrderItemParams) (uuid.UUID, error) {
			for i, it := range f.items {
				if it.ID == arg.ID && it.OrderID == arg.OrderID && it.TenantID == arg.TenantID {
					f.items = append(f.items[:i], f.items[i+1:]...)
					return it.ID, nil
				}
			}
			return uuid.Nil, pgx.ErrNoRows
		},
		deleteOrderItemModifiersFn: func(ctx context.Context, arg database.DeleteOrderItemModifiersParams) error {
			kept := f.itemMods[:0]
			for _, m := range f.itemMods {
				if m.OrderItemID != arg.OrderItemID || m.TenantID != arg.TenantID {
					kept = append(kept, m)
				}
			}
			f.itemMods = kept
			return nil
		},
		markOrderItemsSentFn: func(ctx context.Context, arg database.MarkOrderItemsSentParams) (int64, error) {
			var n int64
			for i := range f.items {
				it := &f.items[i]
				if it.OrderID == arg.OrderID && !it.KitchenSentAt.Valid {
					it.KitchenSentAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
					n++
				}
			}
			return n, nil
		},
		listOrderStatusHistoryFn: func(ctx context.Context, arg database.ListOrderStatusHistoryParams) ([]database.OrderStatusHistory, error) {
			var out []database.OrderStatusHistory
			for _, h := range f.history {
				if h.OrderID == arg.OrderID && h.TenantID == arg.TenantID {
					out = append(out, h)
				}
			}
			return out, nil
		},
		getTableForOrderFn: func(ctx context.Context, arg database.GetTableForOrderParams) (database.RestaurantTable, error) {
			t, ok := f.tables[arg.ID]
			if !ok || t.TenantID != arg.TenantID || arg.BranchID != f.branchID {
				return database.RestaurantTable{}, pgx.ErrNoRows
			}
			return *t, nil
		},
		occupyTableFn: func(ctx context.Context, arg database.OccupyTableParams) (int64, error) {
			t, ok := f.tables[arg.ID]
			if !ok || t.TenantID != arg.TenantID || t.Status != enum.TableStatusAvailable {
				return 0, nil
			}
			t.Status = enum.TableStatusOccupied
			return 1, nil
		},
		releaseTableFn: func(ctx context.Context, arg database.ReleaseTableParams) (int64, error) {
			t, ok := f.tables[arg.ID]
			if !ok || t.TenantID != arg.TenantID {
				return 0, nil
			}
			t.Status = enum.TableStatusAvailable
			return 1, nil
		},
		insertOrderStatusHistoryFn: func(ctx context.Context, arg database.InsertOrderStatusHistoryParams) (database.OrderStatusHistory, error) {
			h := database.OrderStatusHistory{
				ID:        uuid.New(),
				TenantID:  arg.TenantID,
				OrderID:   arg.OrderID,
				Status:    arg.Status,
				ChangedBy: arg.ChangedBy,
				ChangedAt: time.Now(),
			}
			f.history = append(f.history, h)
			return h, nil
		},
		nextDailySequenceFn: func(ctx context.Context, arg database.NextDailySequenceParams) (int32, error) {
			last := f.maxSequence(arg.TenantID, uuid.NullUUID{UUID: arg.BranchID, Valid: true}, arg.BusinessDate)
			if arg.Floor > last {
				last = arg.Floor
			}
			return last + 1, nil
		},
		maxTenantDailySequenceFn: func(ctx context.Context, arg database.MaxTenantDailySequenceParams) (int32, error) {
			return f.maxSequence(arg.TenantID, uuid.NullUUID{}, arg.BusinessDate), nil
		},
		createPaymentFn: func(ctx context.Context, arg database.CreatePaymentParams) (database.Payment, error) {
			p := database.Payment{
				ID:              uuid.New(),
				TenantID:        arg.TenantID,
				OrderID:         arg.OrderID,
				Amount:          arg.Amount,
				PaymentMethod:   arg.PaymentMethod,
				AmountReceived:  arg.AmountReceived,
				ChangeGiven:     arg.ChangeGiven,
				Status:          arg.Status,
				ReferenceNumber: arg.ReferenceNumber,
				Notes:           arg.Notes,
				CreatedAt:       time.Now(),
				CreatedBy:       arg.CreatedBy,
			}
			f.payments = append(f.payments, p)
			return p, nil
		},
		listPaymentsByOrderFn: func(ctx context.Context, arg database.ListPaymentsByOrderParams) ([]database.Payment, error) {
			out := []database.Payment{}
			for _, p := range f.payments {
				if p.OrderID == arg.OrderID && p.TenantID == arg.TenantID {
					out = append(out, p)
				}
			}
			return out, nil
		},
		sumPaymentsByOrderFn: func(ctx context.Context, arg database.SumPaymentsByOrderParams) (pgtype.Numeric, error) {
			sum := decimal.Zero
			for _, p := range f.payments {
				if p.OrderID == arg.OrderID && p.Status == enum.PaymentStatusCompleted {
					sum = sum.Add(numericToDecimal(p.Amount))
				}
			}
			return decimalToNumeric(sum), nil
		},
		incrementCustomerStatsFn: func(ctx context.Context, arg database.IncrementCustomerStatsParams) (int64, error) {
			c, ok := f.customers[arg.ID]
			if !ok || c.TenantID != arg.TenantID {
				return 0, nil
			}
			c.TotalOrders++
			c.TotalSpent = decimalToNumeric(numericToDecimal(c.TotalSpent).Add(numericToDecimal(arg.Amount)))
			c.LastOrderAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
			return 1, nil
		},
	}
}

func (f *fixture) order(id, tenantID uuid.UUID) (database.Order, error) {
	o, ok := f.orders[id]
	if !ok || o.TenantID != tenantID {
		return database.Order{}, pgx.ErrNoRows
	}
	return *o, nil
}

// statuses returns the recorded history for an order, oldest first.
func (f *fixture) statuses(orderID uuid.UUID) []string {
	var out []string
	for _, h := range f.history {
		if h.OrderID == orderID {
			out = append(out, h.Status)
		}
	}
	return out
}

// --- Test helpers ---

func makeNumeric(val string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(val)
	return n
}

func numericEquals(n pgtype.Numeric, expected string) bool {
	d := numericToDecimal(n)
	exp, _ := decimal.NewFromString(expected)
	return d.Equal(exp)
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC)
}

// newTestOrderService creates an OrderService over store. The factory returns
// the same mock for the pool and every transaction.
func newTestOrderService(t *testing.T, store *mockStore) (*OrderService, *mockTxBeginner, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	pool := &mockTxBeginner{}
	newStore := func(db database.DBTX) OrderStore { return store }
	svc := NewOrderService(store, pool, newStore, decimal.RequireFromString("0.16"), zap.New(core))
	svc.now = fixedClock
	return svc, pool, logs
}

func newTestPaymentService(t *testing.T, store *mockStore) (*PaymentService, *mockTxBeginner, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	pool := &mockTxBeginner{}
	newStore := func(db database.DBTX) PaymentStore { return store }
	return NewPaymentService(store, pool, newStore, zap.New(core)), pool, logs
}

func productItem(productID uuid.UUID, qty int32) OrderItemRequest {
	return OrderItemRequest{ProductID: uuid.NullUUID{UUID: productID, Valid: true}, Quantity: qty}
}

func dineInReq(f *fixture, items ...OrderItemRequest) CreateOrderRequest {
	return CreateOrderRequest{
		BranchID:    f.branchID,
		ServiceType: enum.ServiceTypeDineIn,
		TableID:     uuid.NullUUID{UUID: f.tableID, Valid: true},
		Items:       items,
	}
}
