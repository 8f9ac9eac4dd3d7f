package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nmartins/bazario-backend/pkg/config"
	"github.com/nmartins/bazario-backend/pkg/types"
)

// FromConfig builds the fee schedule and tax lookup from the environment
// sourced pricing config. Tax table keys are "category" or
// "category/subcategory", matched case-insensitively.
func FromConfig(cfg config.PricingConfig) (FeeConfig, TaxLookup, error) {
	table, err := cfg.TaxTable()
	if err != nil {
		return FeeConfig{}, nil, err
	}

	rates := make(map[string]decimal.Decimal, len(table))
	for key, rate := range table {
		rates[strings.ToLower(key)] = decimal.NewFromFloat(rate)
	}

	fees := FeeConfig{
		PlatformFeePercent: decimal.NewFromFloat(cfg.PlatformFeePercent),
		HandlingFeeFixed:   decimal.NewFromFloat(cfg.HandlingFeeFixed),
	}

	lookup := func(category, subcategory string) (decimal.Decimal, bool) {
		key := strings.ToLower(category)
		if subcategory != "" {
			key = key + "/" + strings.ToLower(subcategory)
		}
		rate, ok := rates[key]
		return rate, ok
	}

	return fees, lookup, nil
}

// DiscountFromConfig builds the configured discount rule, or nil when the
// rule is disabled. Eligibility is a postal-code allow list; an empty list
// makes the rule apply everywhere.
func DiscountFromConfig(cfg config.DiscountConfig) *Discount {
	if !cfg.Enabled() {
		return nil
	}

	codes := make(map[string]struct{}, len(cfg.PostalCodes))
	for _, code := range cfg.PostalCodes {
		code = strings.TrimSpace(code)
		if code != "" {
			codes[strings.ToUpper(code)] = struct{}{}
		}
	}

	discount := &Discount{
		Name:  cfg.Name,
		Value: decimal.NewFromFloat(cfg.Value),
	}
	if len(codes) > 0 {
		discount.Eligible = func(addr types.Address) bool {
			_, ok := codes[strings.ToUpper(strings.TrimSpace(addr.PostalCode))]
			return ok
		}
	}
	return discount
}
