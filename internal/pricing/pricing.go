package pricing

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/nmartins/bazario-backend/pkg/errors"
	"github.com/nmartins/bazario-backend/pkg/models"
	"github.com/nmartins/bazario-backend/pkg/types"
)

// moneyPlaces is the currency precision every fee and tax figure is
// rounded to, half up.
const moneyPlaces = 2

var oneHundred = decimal.NewFromInt(100)

// FeeConfig is the injected fee schedule. The engine never reads config
// ambiently.
type FeeConfig struct {
	PlatformFeePercent decimal.Decimal
	HandlingFeeFixed   decimal.Decimal
}

// TaxLookup resolves the percent rate for an exact (category, subcategory)
// pair. The engine consults (category, subcategory) first and falls back
// to (category, "") so subcategory rates override the category default.
type TaxLookup func(category, subcategory string) (decimal.Decimal, bool)

// Discount is a candidate order-level discount. Eligible decides whether
// the rule applies to the shipping address; a nil predicate always applies.
type Discount struct {
	Name     string
	Value    decimal.Decimal
	Eligible func(types.Address) bool
}

// Engine prices carts. It is pure: no I/O, no clock, identical inputs
// always produce identical breakdowns.
type Engine struct {
	fees  FeeConfig
	taxes TaxLookup
}

// NewEngine validates the fee schedule once so Compute can stay cheap.
func NewEngine(fees FeeConfig, taxes TaxLookup) (*Engine, error) {
	if fees.PlatformFeePercent.IsNegative() || fees.PlatformFeePercent.GreaterThan(oneHundred) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "platform fee percent must be within [0,100]")
	}
	if fees.HandlingFeeFixed.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "handling fee must not be negative")
	}
	if taxes == nil {
		taxes = func(string, string) (decimal.Decimal, bool) { return decimal.Zero, false }
	}
	return &Engine{fees: fees, taxes: taxes}, nil
}

// Compute prices the cart. Negative prices or non-positive quantities are
// rejected, never clamped. The discount is applied only when eligible and
// is itself clamped so the total never goes below zero; the recorded
// discount value is the amount actually subtracted.
func (e *Engine) Compute(lines []models.CartLine, shipTo types.Address, discount *Discount) (models.PriceBreakdown, error) {
	if len(lines) == 0 {
		return models.PriceBreakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "cart has no lines")
	}

	subtotal := decimal.Zero
	tax := decimal.Zero
	for i, line := range lines {
		if line.UnitPrice.IsNegative() {
			return models.PriceBreakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "unit price must not be negative").
				WithDetails(map[string]any{"line": i, "product_id": line.ProductID})
		}
		if line.Quantity < 1 {
			return models.PriceBreakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
				WithDetails(map[string]any{"line": i, "product_id": line.ProductID})
		}

		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)

		rate := e.taxRate(line.Category, line.Subcategory)
		tax = tax.Add(lineTotal.Mul(rate).Div(oneHundred).Round(moneyPlaces))
	}

	platformFee := subtotal.Mul(e.fees.PlatformFeePercent).Div(oneHundred).Round(moneyPlaces)
	handlingFee := e.fees.HandlingFeeFixed.Round(moneyPlaces)

	breakdown := models.PriceBreakdown{
		Subtotal:    subtotal,
		PlatformFee: platformFee,
		HandlingFee: handlingFee,
		Tax:         tax,
	}

	gross := subtotal.Add(platformFee).Add(handlingFee).Add(tax)
	breakdown.Total = gross

	if discount != nil && discount.Value.IsPositive() && eligible(discount, shipTo) {
		applied := decimal.Min(discount.Value, gross)
		breakdown.Discount = &models.AppliedDiscount{Name: discount.Name, Value: applied}
		breakdown.Total = gross.Sub(applied)
	}

	return breakdown, nil
}

func (e *Engine) taxRate(category, subcategory string) decimal.Decimal {
	if subcategory != "" {
		if rate, ok := e.taxes(category, subcategory); ok {
			return rate
		}
	}
	if rate, ok := e.taxes(category, ""); ok {
		return rate
	}
	return decimal.Zero
}

func eligible(discount *Discount, shipTo types.Address) bool {
	if discount.Eligible == nil {
		return true
	}
	return discount.Eligible(shipTo)
}
