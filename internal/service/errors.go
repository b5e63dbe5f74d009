package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every *Error unwraps to exactly one of these, and the HTTP
// layer maps them to 404, 409, 400 and 403 respectively.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
)

// Error is a classified business error with a stable machine-readable code.
type Error struct {
	Kind    error
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// Errors returned by the order, payment and report services.
var (
	ErrBranchNotFound    = newError(ErrNotFound, "BRANCH_NOT_FOUND", "branch not found")
	ErrTableNotFound     = newError(ErrNotFound, "TABLE_NOT_FOUND", "table not found")
	ErrCustomerNotFound  = newError(ErrNotFound, "CUSTOMER_NOT_FOUND", "customer not found")
	ErrOrderNotFound     = newError(ErrNotFound, "ORDER_NOT_FOUND", "order not found")
	ErrOrderItemNotFound = newError(ErrNotFound, "ORDER_ITEM_NOT_FOUND", "order item not found")
	ErrProductNotFound   = newError(ErrNotFound, "PRODUCT_NOT_FOUND", "product not found")
	ErrVariantNotFound   = newError(ErrNotFound, "VARIANT_NOT_FOUND", "variant not found")
	ErrComboNotFound     = newError(ErrNotFound, "COMBO_NOT_FOUND", "combo not found")
	ErrModifierNotFound  = newError(ErrNotFound, "MODIFIER_NOT_FOUND", "modifier not found")

	ErrTableNotAvailable        = newError(ErrConflict, "TABLE_NOT_AVAILABLE", "table is not available")
	ErrProductNotAvailable      = newError(ErrConflict, "PRODUCT_NOT_AVAILABLE", "product is not available")
	ErrOrderNotModifiable       = newError(ErrConflict, "ORDER_NOT_MODIFIABLE", "order can only be modified while PENDING")
	ErrOrderHasNoItems          = newError(ErrConflict, "ORDER_HAS_NO_ITEMS", "order has no items")
	ErrOrderNotInProgress       = newError(ErrConflict, "ORDER_NOT_IN_PROGRESS", "order is not IN_PROGRESS")
	ErrOrderAlreadyTerminal     = newError(ErrConflict, "ORDER_ALREADY_TERMINAL", "order is already completed or cancelled")
	ErrOrderNotReady            = newError(ErrConflict, "ORDER_NOT_READY", "order is not READY for payment")
	ErrOrderStatusChanged       = newError(ErrConflict, "ORDER_STATUS_CHANGED", "order status changed, please retry")
	ErrOrderNumberConflict      = newError(ErrConflict, "ORDER_NUMBER_CONFLICT", "could not allocate an order number, please retry")
	ErrUnsupportedPaymentMethod = newError(ErrConflict, "UNSUPPORTED_PAYMENT_METHOD", "only CASH payments are supported")

	ErrInvalidServiceType     = newError(ErrInvalidInput, "INVALID_SERVICE_TYPE", "service_type must be DINE_IN, COUNTER or DELIVERY")
	ErrTableRequired          = newError(ErrInvalidInput, "TABLE_REQUIRED", "tableId is required for DINE_IN orders")
	ErrCustomerRequired       = newError(ErrInvalidInput, "CUSTOMER_REQUIRED", "customerId is required for DELIVERY orders")
	ErrTableNotAllowed        = newError(ErrInvalidInput, "TABLE_NOT_ALLOWED", "tableId is only allowed for DINE_IN orders")
	ErrCustomerNotAllowed     = newError(ErrInvalidInput, "CUSTOMER_NOT_ALLOWED", "customerId is not allowed for COUNTER orders")
	ErrEmptyItems             = newError(ErrInvalidInput, "ITEMS_REQUIRED", "items are required")
	ErrInvalidQuantity        = newError(ErrInvalidInput, "INVALID_QUANTITY", "quantity must be > 0")
	ErrProductOrCombo         = newError(ErrInvalidInput, "PRODUCT_OR_COMBO_REQUIRED", "exactly one of productId or comboId is required")
	ErrVariantWithoutProduct  = newError(ErrInvalidInput, "VARIANT_REQUIRES_PRODUCT", "variantId requires productId")
	ErrInvalidPaymentMethod   = newError(ErrInvalidInput, "INVALID_PAYMENT_METHOD", "invalid payment method")
	ErrInvalidPaymentAmount   = newError(ErrInvalidInput, "INVALID_AMOUNT", "amount must be at least 0.01")
	ErrInsufficientPayment    = newError(ErrInvalidInput, "INSUFFICIENT_PAYMENT", "amount is less than the order total")
	ErrMissingReportParameter = newError(ErrInvalidInput, "MISSING_PARAMETER", "branchId and date are required")
)

// itemError prefixes err with the position of the offending line while
// keeping it matchable with errors.Is.
func itemError(idx int, err error) error {
	return fmt.Errorf("items[%d]: %w", idx, err)
}

// Classify returns the *Error carried by err, or nil for infrastructure errors.
func Classify(err error) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return nil
}
