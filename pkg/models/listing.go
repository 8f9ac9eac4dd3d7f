package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nmartins/bazario-backend/pkg/enums"
)

// Listing is a seller's product submission moving through moderation.
type Listing struct {
	ID              string              `json:"id"`
	SellerID        string              `json:"seller_id"`
	Name            string              `json:"name"`
	Description     string              `json:"description,omitempty"`
	Category        string              `json:"category"`
	Subcategory     string              `json:"subcategory,omitempty"`
	Price           decimal.Decimal     `json:"price"`
	ImageRef        string              `json:"image_ref,omitempty"`
	Status          enums.ListingStatus `json:"status"`
	RejectionReason *string             `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}
