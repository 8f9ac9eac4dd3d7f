package orders

import (
	"context"

	"github.com/nmartins/bazario-backend/pkg/enums"
	"github.com/nmartins/bazario-backend/pkg/models"
	"github.com/nmartins/bazario-backend/pkg/pagination"
)

// Repository owns the physical layout of order records. Every order is
// stored twice: under orders/{buyerId}/{orderId} for buyer-facing listings
// and under allOrders/{orderId} for admin lookup without knowing the
// buyer. The repository is the only component that writes either copy.
type Repository interface {
	// Create persists a new order to both copies, global first. Retrying
	// with the same id and an identical payload is a no-op success and
	// repairs a missing buyer copy; the same id with a divergent payload
	// is a CONFLICT.
	Create(ctx context.Context, order models.Order) (string, error)
	Get(ctx context.Context, orderID string) (models.Order, error)
	GetForBuyer(ctx context.Context, buyerID, orderID string) (models.Order, error)
	// UpdateStatus reads the global copy to discover the buyer, then
	// writes the new status to both copies. A failure after the global
	// write is surfaced as PARTIAL_WRITE, never as plain success.
	UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus) error
	// UpdateReturnState moves the return axis and pointer on both copies
	// with the same write discipline as UpdateStatus.
	UpdateReturnState(ctx context.Context, orderID string, status enums.ReturnStatus, requestID *string) error
	ListByBuyer(ctx context.Context, buyerID string, params pagination.Params, filters Filters) (*OrderList, error)
	ListAll(ctx context.Context, params pagination.Params, filters Filters) (*OrderList, error)
	// VerifyConsistency compares the two copies and returns INCONSISTENT
	// when they disagree on status, return state or pointer.
	VerifyConsistency(ctx context.Context, orderID string) error
}
