package services

import (
	"strings"

	"eventflow/internal/models"

	"github.com/shopspring/decimal"
)

// Promo code form messages
const (
	MsgPromoRequired = "Please enter a promo code"
	MsgPromoInvalid  = "Invalid promo code. Please try again."
)

// PromoCatalog is the static allow-list of promo codes
type PromoCatalog struct {
	codes map[string]models.PromoCode
}

// NewPromoCatalog builds a catalog from codes, keyed case-insensitively
func NewPromoCatalog(codes ...models.PromoCode) *PromoCatalog {
	c := &PromoCatalog{codes: make(map[string]models.PromoCode, len(codes))}
	for _, code := range codes {
		key := models.NormalizePromoCode(code.Code)
		code.Code = key
		c.codes[key] = code
	}
	return c
}

// DefaultPromoCatalog returns the codes the storefront advertises
func DefaultPromoCatalog() *PromoCatalog {
	return NewPromoCatalog(
		models.PromoCode{Code: "SAVE20", DiscountType: models.DiscountPercentage, DiscountValue: decimal.NewFromInt(20), Description: "20% off your order"},
		models.PromoCode{Code: "FIRST10", DiscountType: models.DiscountFixed, DiscountValue: decimal.NewFromInt(10), Description: "$10 off first purchase"},
		models.PromoCode{Code: "STUDENT15", DiscountType: models.DiscountPercentage, DiscountValue: decimal.NewFromInt(15), Description: "15% student discount"},
		models.PromoCode{Code: "WELCOME", DiscountType: models.DiscountFixed, DiscountValue: decimal.NewFromInt(5), Description: "$5 welcome bonus"},
	)
}

// CheckInput rejects a blank code before any lookup happens
func (c *PromoCatalog) CheckInput(code string) error {
	if strings.TrimSpace(code) == "" {
		return models.ValidationErrors{"promoCode": MsgPromoRequired}
	}
	return nil
}

// Lookup finds a code ignoring case and surrounding spaces
func (c *PromoCatalog) Lookup(code string) (*models.PromoCode, error) {
	if err := c.CheckInput(code); err != nil {
		return nil, err
	}

	promo, ok := c.codes[models.NormalizePromoCode(code)]
	if !ok {
		return nil, models.ValidationErrors{"promoCode": MsgPromoInvalid}
	}
	return &promo, nil
}

// Len returns the number of codes in the catalog
func (c *PromoCatalog) Len() int {
	return len(c.codes)
}
