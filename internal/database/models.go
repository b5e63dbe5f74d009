package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Area struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	BranchID  uuid.UUID `json:"branch_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Branch struct {
	ID        uuid.UUID   `json:"id"`
	TenantID  uuid.UUID   `json:"tenant_id"`
	Name      string      `json:"name"`
	Address   pgtype.Text `json:"address"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type Customer struct {
	ID            uuid.UUID          `json:"id"`
	TenantID      uuid.UUID          `json:"tenant_id"`
	Name          pgtype.Text        `json:"name"`
	Phone         pgtype.Text        `json:"phone"`
	Email         pgtype.Text        `json:"email"`
	Whatsapp      pgtype.Text        `json:"whatsapp"`
	AddressLine1  pgtype.Text        `json:"address_line1"`
	AddressLine2  pgtype.Text        `json:"address_line2"`
	City          pgtype.Text        `json:"city"`
	PostalCode    pgtype.Text        `json:"postal_code"`
	DeliveryNotes pgtype.Text        `json:"delivery_notes"`
	TotalOrders   int32              `json:"total_orders"`
	TotalSpent    pgtype.Numeric     `json:"total_spent"`
	LastOrderAt   pgtype.Timestamptz `json:"last_order_at"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	DeletedAt     pgtype.Timestamptz `json:"deleted_at"`
}

type Order struct {
	ID            uuid.UUID          `json:"id"`
	TenantID      uuid.UUID          `json:"tenant_id"`
	BranchID      uuid.UUID          `json:"branch_id"`
	TableID       pgtype.UUID        `json:"table_id"`
	CustomerID    pgtype.UUID        `json:"customer_id"`
	OrderNumber   string             `json:"order_number"`
	DailySequence int32              `json:"daily_sequence"`
	ServiceType   string             `json:"service_type"`
	Status        string             `json:"status"`
	Subtotal      pgtype.Numeric     `json:"subtotal"`
	TaxRate       pgtype.Numeric     `json:"tax_rate"`
	Tax           pgtype.Numeric     `json:"tax"`
	Discount      pgtype.Numeric     `json:"discount"`
	Total         pgtype.Numeric     `json:"total"`
	Notes         pgtype.Text        `json:"notes"`
	KitchenNotes  pgtype.Text        `json:"kitchen_notes"`
	OpenedAt      time.Time          `json:"opened_at"`
	ClosedAt      pgtype.Timestamptz `json:"closed_at"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	CreatedBy     uuid.UUID          `json:"created_by"`
	UpdatedBy     uuid.UUID          `json:"updated_by"`
}

type OrderItem struct {
	ID             uuid.UUID          `json:"id"`
	TenantID       uuid.UUID          `json:"tenant_id"`
	OrderID        uuid.UUID          `json:"order_id"`
	ProductID      pgtype.UUID        `json:"product_id"`
	VariantID      pgtype.UUID        `json:"variant_id"`
	ComboID        pgtype.UUID        `json:"combo_id"`
	ProductName    string             `json:"product_name"`
	VariantName    pgtype.Text        `json:"variant_name"`
	Quantity       int32              `json:"quantity"`
	UnitPrice      pgtype.Numeric     `json:"unit_price"`
	ModifiersTotal pgtype.Numeric     `json:"modifiers_total"`
	LineTotal      pgtype.Numeric     `json:"line_total"`
	KitchenStatus  string             `json:"kitchen_status"`
	KitchenSentAt  pgtype.Timestamptz `json:"kitchen_sent_at"`
	KitchenReadyAt pgtype.Timestamptz `json:"kitchen_ready_at"`
	Notes          pgtype.Text        `json:"notes"`
	SortOrder      int32              `json:"sort_order"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

type OrderItemModifier struct {
	ID              uuid.UUID      `json:"id"`
	TenantID        uuid.UUID      `json:"tenant_id"`
	OrderItemID     uuid.UUID      `json:"order_item_id"`
	ModifierID      pgtype.UUID    `json:"modifier_id"`
	ModifierName    string         `json:"modifier_name"`
	PriceAdjustment pgtype.Numeric `json:"price_adjustment"`
	Quantity        int32          `json:"quantity"`
	CreatedAt       time.Time      `json:"created_at"`
}

type OrderStatusHistory struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	OrderID   uuid.UUID `json:"order_id"`
	Status    string    `json:"status"`
	ChangedBy uuid.UUID `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}

type Payment struct {
	ID              uuid.UUID      `json:"id"`
	TenantID        uuid.UUID      `json:"tenant_id"`
	OrderID         uuid.UUID      `json:"order_id"`
	Amount          pgtype.Numeric `json:"amount"`
	PaymentMethod   string         `json:"payment_method"`
	AmountReceived  pgtype.Numeric `json:"amount_received"`
	ChangeGiven     pgtype.Numeric `json:"change_given"`
	Status          string         `json:"status"`
	ReferenceNumber pgtype.Text    `json:"reference_number"`
	Notes           pgtype.Text    `json:"notes"`
	CreatedAt       time.Time      `json:"created_at"`
	CreatedBy       uuid.UUID      `json:"created_by"`
}

type RestaurantTable struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	AreaID    uuid.UUID `json:"area_id"`
	Number    string    `json:"number"`
	Capacity  int32     `json:"capacity"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	ID             uuid.UUID `json:"id"`
	TenantID       uuid.UUID `json:"tenant_id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"hashed_password"`
	FullName       string    `json:"full_name"`
	Role           string    `json:"role"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
