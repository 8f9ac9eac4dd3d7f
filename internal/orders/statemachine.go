package orders

import (
	"github.com/nmartins/bazario-backend/pkg/enums"
	pkgerrors "github.com/nmartins/bazario-backend/pkg/errors"
)

// allowedTransitions is the full fulfillment transition table. Delivered
// and canceled have no outgoing edges; the return axis moves separately.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending: {enums.OrderStatusShipped, enums.OrderStatusCanceled},
	enums.OrderStatusShipped: {enums.OrderStatusDelivered, enums.OrderStatusCanceled},
}

// CanTransition reports whether the edge current->next exists in the table.
// Same-status is not an edge; callers treat it as a no-op instead.
func CanTransition(current, next enums.OrderStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// PlanTransition validates a requested status change. It returns
// changed=false for a same-status request so callers can skip the write,
// and a STATE_CONFLICT error for any move outside the transition table.
func PlanTransition(current, next enums.OrderStatus) (changed bool, err error) {
	if !next.IsValid() {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").
			WithDetails(map[string]any{"status": next.String()})
	}
	if current == next {
		return false, nil
	}
	if !CanTransition(current, next) {
		return false, pkgerrors.New(pkgerrors.CodeStateConflict, "order status transition not allowed").
			WithDetails(map[string]any{"from": current.String(), "to": next.String()})
	}
	return true, nil
}
