package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DiscountType represents how a promo code reduces the subtotal
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// PromoCode represents a discount token that can be applied to a checkout
type PromoCode struct {
	Code          string          `json:"code"`
	DiscountType  DiscountType    `json:"discountType"`
	DiscountValue decimal.Decimal `json:"discountValue"`
	Description   string          `json:"description"`
}

var hundred = decimal.NewFromInt(100)

// NormalizePromoCode returns the lookup key for a code as typed by a user
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DiscountOn returns the amount taken off the given subtotal.
// The discount never exceeds the subtotal.
func (p *PromoCode) DiscountOn(subtotal decimal.Decimal) decimal.Decimal {
	if p == nil || !subtotal.IsPositive() {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch p.DiscountType {
	case DiscountPercentage:
		discount = subtotal.Mul(p.DiscountValue).Div(hundred)
	case DiscountFixed:
		discount = p.DiscountValue
	default:
		return decimal.Zero
	}

	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount
}
