package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nmartins/bazario-backend/pkg/enums"
	"github.com/nmartins/bazario-backend/pkg/types"
)

// OrderLine is the snapshot of a purchased listing inside an order.
type OrderLine struct {
	ProductID  string          `json:"product_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	ImageRef   string          `json:"image_ref,omitempty"`
	SellerID   string          `json:"seller_id"`
	SellerName string          `json:"seller_name"`
}

// Order is the document persisted under both order paths. Created once by
// checkout; afterwards only the status, return status and return request
// pointer change.
type Order struct {
	ID              string             `json:"id"`
	BuyerID         string             `json:"buyer_id"`
	BuyerName       string             `json:"buyer_name"`
	ShippingAddress types.Address      `json:"shipping_address"`
	ContactNumber   string             `json:"contact_number"`
	Comments        *string            `json:"comments,omitempty"`
	Lines           []OrderLine        `json:"lines"`
	Pricing         PriceBreakdown     `json:"pricing"`
	Status          enums.OrderStatus  `json:"status"`
	ReturnStatus    enums.ReturnStatus `json:"return_status"`
	ReturnRequestID *string            `json:"return_request_id,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// Clone returns a deep copy safe to embed as an audit snapshot.
func (o Order) Clone() Order {
	dup := o
	dup.Lines = make([]OrderLine, len(o.Lines))
	copy(dup.Lines, o.Lines)
	if o.Comments != nil {
		c := *o.Comments
		dup.Comments = &c
	}
	if o.ReturnRequestID != nil {
		id := *o.ReturnRequestID
		dup.ReturnRequestID = &id
	}
	if o.ShippingAddress.Line2 != nil {
		l := *o.ShippingAddress.Line2
		dup.ShippingAddress.Line2 = &l
	}
	if o.Pricing.Discount != nil {
		d := *o.Pricing.Discount
		dup.Pricing.Discount = &d
	}
	return dup
}
