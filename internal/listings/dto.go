package listings

import (
	"github.com/shopspring/decimal"

	"github.com/nmartins/bazario-backend/pkg/enums"
	"github.com/nmartins/bazario-backend/pkg/models"
)

// SubmitInput is a seller's listing submission. The same schema governs
// moderation-time edits: a listing can never go Active with data this
// schema would have rejected at creation.
type SubmitInput struct {
	SellerID    string          `validate:"required"`
	Name        string          `validate:"required,min=3,max=120"`
	Description string          `validate:"max=2000"`
	Category    string          `validate:"required"`
	Subcategory string          `validate:"max=60"`
	Price       decimal.Decimal `validate:"-"`
	ImageRef    string          `validate:"max=500"`
}

// EditPatch carries moderator edits applied together with an approval.
// Nil fields are left untouched.
type EditPatch struct {
	Name        *string
	Description *string
	Category    *string
	Subcategory *string
	Price       *decimal.Decimal
	ImageRef    *string
}

func (p EditPatch) apply(listing *models.Listing) {
	if p.Name != nil {
		listing.Name = *p.Name
	}
	if p.Description != nil {
		listing.Description = *p.Description
	}
	if p.Category != nil {
		listing.Category = *p.Category
	}
	if p.Subcategory != nil {
		listing.Subcategory = *p.Subcategory
	}
	if p.Price != nil {
		listing.Price = *p.Price
	}
	if p.ImageRef != nil {
		listing.ImageRef = *p.ImageRef
	}
}

// Filters narrows listing queries.
type Filters struct {
	Status *enums.ListingStatus
}

func (f Filters) matches(listing models.Listing) bool {
	if f.Status != nil && listing.Status != *f.Status {
		return false
	}
	return true
}

// ListingList is one page of listings plus the filtered total.
type ListingList struct {
	Listings []models.Listing
	Total    int
}
