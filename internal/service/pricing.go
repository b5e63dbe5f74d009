package service

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Decimal.Round rounds half away from zero, which is half-up for currency.
const moneyScale = 2

const rateScale = 4

// ModifierLine is one modifier applied to an item.
type ModifierLine struct {
	PriceAdjustment decimal.Decimal
	Quantity        int32
}

// Totals is the computed money state of an order.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// ModifiersTotal sums price adjustments times quantities. Adjustments may be negative.
func ModifiersTotal(mods []ModifierLine) decimal.Decimal {
	sum := decimal.Zero
	for _, m := range mods {
		sum = sum.Add(m.PriceAdjustment.Mul(decimal.NewFromInt32(m.Quantity)))
	}
	return sum
}

// ItemTotal returns round2(quantity * (unitPrice + modifiersTotal)).
func ItemTotal(quantity int32, unitPrice, modifiersTotal decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt32(quantity).Mul(unitPrice.Add(modifiersTotal)).Round(moneyScale)
}

// ComputeTotals derives subtotal, tax and total from item line totals.
// Discount is a flat non-negative amount.
func ComputeTotals(lineTotals []decimal.Decimal, taxRate, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, lt := range lineTotals {
		subtotal = subtotal.Add(lt)
	}
	subtotal = subtotal.Round(moneyScale)
	tax := subtotal.Mul(taxRate).Round(moneyScale)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Discount: discount,
		Total:    subtotal.Add(tax).Sub(discount).Round(moneyScale),
	}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(moneyScale))
	return n
}

func rateToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(rateScale))
	return n
}
