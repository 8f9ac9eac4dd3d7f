package models

import (
	"time"

	"github.com/nmartins/bazario-backend/pkg/enums"
)

// ReturnRequest is a buyer's return filing against a delivered order.
// OrderSnapshot is a frozen copy taken at request time for audit display;
// the live order is always re-read by id.
type ReturnRequest struct {
	ID            string                    `json:"id"`
	OrderID       string                    `json:"order_id"`
	BuyerID       string                    `json:"buyer_id"`
	Reason        string                    `json:"reason"`
	Status        enums.ReturnRequestStatus `json:"status"`
	RequestedAt   time.Time                 `json:"requested_at"`
	ResolvedAt    *time.Time                `json:"resolved_at,omitempty"`
	OrderSnapshot Order                     `json:"order_snapshot"`
}
