package services

import (
	"eventflow/internal/models"

	"github.com/shopspring/decimal"
)

// Pricing holds the rates applied to every checkout
type Pricing struct {
	TaxRate       decimal.Decimal
	ProcessingFee decimal.Decimal
}

// OrderSummary is the breakdown shown beside the cart. It is derived from
// the cart and promo every time and never stored.
type OrderSummary struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	Discount           decimal.Decimal `json:"discount"`
	DiscountedSubtotal decimal.Decimal `json:"discountedSubtotal"`
	Tax                decimal.Decimal `json:"tax"`
	ProcessingFee      decimal.Decimal `json:"processingFee"`
	Total              decimal.Decimal `json:"total"`
	ItemCount          int             `json:"itemCount"`
}

// Summarize computes
// total = (sum(price*qty) - discount) * (1 + taxRate) + processingFee
func (p Pricing) Summarize(items []models.CartLineItem, promo *models.PromoCode) OrderSummary {
	subtotal := decimal.Zero
	count := 0
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
		count += item.Quantity
	}

	discount := promo.DiscountOn(subtotal)
	discounted := subtotal.Sub(discount)
	tax := discounted.Mul(p.TaxRate)

	return OrderSummary{
		Subtotal:           subtotal,
		Discount:           discount,
		DiscountedSubtotal: discounted,
		Tax:                tax,
		ProcessingFee:      p.ProcessingFee,
		Total:              discounted.Add(tax).Add(p.ProcessingFee),
		ItemCount:          count,
	}
}

// TotalLabel is the total rounded to cents, as printed on the order
func (s OrderSummary) TotalLabel() string {
	return models.FormatAmount(s.Total)
}
