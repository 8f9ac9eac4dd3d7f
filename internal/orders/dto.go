package orders

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nmartins/bazario-backend/pkg/enums"
	"github.com/nmartins/bazario-backend/pkg/models"
	"github.com/nmartins/bazario-backend/pkg/types"
)

// Filters narrows order listings. Query is a free-text match against the
// order id. The date range is inclusive at day granularity: DateTo covers
// the whole named day.
type Filters struct {
	Query    string
	Status   *enums.OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

func (f Filters) matches(order models.Order) bool {
	if f.Query != "" && !strings.Contains(strings.ToLower(order.ID), strings.ToLower(f.Query)) {
		return false
	}
	if f.Status != nil && order.Status != *f.Status {
		return false
	}
	if f.DateFrom != nil && order.CreatedAt.Before(startOfDay(*f.DateFrom)) {
		return false
	}
	if f.DateTo != nil && order.CreatedAt.After(endOfDay(*f.DateTo)) {
		return false
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999999999, t.Location())
}

// OrderList is one page of orders plus the filtered total.
type OrderList struct {
	Orders []models.Order
	Total  int
}

// CheckoutLine is one cart entry arriving at checkout. Pricing fields and
// the seller snapshot are carried onto the order line verbatim.
type CheckoutLine struct {
	ProductID   string
	Name        string
	UnitPrice   decimal.Decimal
	Quantity    int
	Category    string
	Subcategory string
	ImageRef    string
	SellerID    string
	SellerName  string
}

// CheckoutInput is everything needed to turn a cart into a priced order.
// OrderID may be supplied by the caller for idempotent retries; when empty
// a new id is generated.
type CheckoutInput struct {
	OrderID         string
	BuyerID         string
	BuyerName       string
	ShippingAddress types.Address
	ContactNumber   string
	Comments        *string
	Lines           []CheckoutLine
}
