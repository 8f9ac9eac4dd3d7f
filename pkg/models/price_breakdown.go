package models

import "github.com/shopspring/decimal"

// AppliedDiscount records the discount actually subtracted from the order
// total. Value holds the clamped amount, not the nominal rule value.
type AppliedDiscount struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// PriceBreakdown is the priced result of a cart.
// Invariant: Total = Subtotal + PlatformFee + HandlingFee + Tax - discount,
// with Total >= 0.
type PriceBreakdown struct {
	Subtotal    decimal.Decimal  `json:"subtotal"`
	PlatformFee decimal.Decimal  `json:"platform_fee"`
	HandlingFee decimal.Decimal  `json:"handling_fee"`
	Tax         decimal.Decimal  `json:"tax"`
	Discount    *AppliedDiscount `json:"discount,omitempty"`
	Total       decimal.Decimal  `json:"total"`
}

// DiscountValue returns the applied discount or zero when absent.
func (p PriceBreakdown) DiscountValue() decimal.Decimal {
	if p.Discount == nil {
		return decimal.Zero
	}
	return p.Discount.Value
}
