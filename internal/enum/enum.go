package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending    = "PENDING"
	OrderStatusInProgress = "IN_PROGRESS"
	OrderStatusReady      = "READY"
	// OrderStatusDelivered is seeded in the CHECK constraint but no transition
	// produces it yet.
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
)

const (
	KitchenStatusPending   = "PENDING"
	KitchenStatusPreparing = "PREPARING"
	KitchenStatusReady     = "READY"
)

const (
	TableStatusAvailable = "AVAILABLE"
	TableStatusOccupied  = "OCCUPIED"
)

const (
	PaymentStatusCompleted = "COMPLETED"
)

// ── Group C: Borderline (CHECK constrained in DB) ──

const (
	UserRoleOwner   = "OWNER"
	UserRoleManager = "MANAGER"
	UserRoleCashier = "CASHIER"
)

const (
	ServiceTypeDineIn   = "DINE_IN"
	ServiceTypeCounter  = "COUNTER"
	ServiceTypeDelivery = "DELIVERY"
)

// ── Group B: Configurable labels (no DB constraint) ──

const (
	PaymentMethodCash     = "CASH"
	PaymentMethodCard     = "CARD"
	PaymentMethodTransfer = "TRANSFER"
	PaymentMethodQRCode   = "QR_CODE"
)

// IsTerminalOrderStatus reports whether no transition leaves the status.
func IsTerminalOrderStatus(s string) bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// IsValidOrderStatus reports whether s is one of the six order statuses.
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusReady,
		OrderStatusDelivered, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// IsValidServiceType reports whether s is DINE_IN, COUNTER or DELIVERY.
func IsValidServiceType(s string) bool {
	switch s {
	case ServiceTypeDineIn, ServiceTypeCounter, ServiceTypeDelivery:
		return true
	}
	return false
}

// IsValidPaymentMethod reports whether s is a modeled payment method.
// Only CASH is accepted by the payment flow.
func IsValidPaymentMethod(s string) bool {
	switch s {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodQRCode:
		return true
	}
	return false
}

// IsManagerRole reports whether the role may perform manager-only operations.
func IsManagerRole(role string) bool {
	return role == UserRoleOwner || role == UserRoleManager
}

// IsValidRole reports whether role is a known staff role.
func IsValidRole(role string) bool {
	switch role {
	case UserRoleOwner, UserRoleManager, UserRoleCashier:
		return true
	}
	return false
}
