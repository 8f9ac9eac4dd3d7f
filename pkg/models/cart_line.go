package models

import "github.com/shopspring/decimal"

// CartLine is the immutable pricing input for one cart entry. Category and
// subcategory drive the per-line tax lookup.
type CartLine struct {
	ProductID   string          `json:"product_id"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`
}
