package listings

import (
	"context"

	"github.com/nmartins/bazario-backend/pkg/models"
	"github.com/nmartins/bazario-backend/pkg/pagination"
)

// Repository owns the dual-index layout for listings: one copy under
// listings/{sellerId}/{listingId} and one under allListings/{listingId},
// written global-first like the order repository.
type Repository interface {
	Create(ctx context.Context, listing models.Listing) error
	Get(ctx context.Context, listingID string) (models.Listing, error)
	GetForSeller(ctx context.Context, sellerID, listingID string) (models.Listing, error)
	// Mutate re-reads the global copy, applies fn and fans the result out
	// to both copies. fn returning an error aborts before any write.
	Mutate(ctx context.Context, listingID string, fn func(*models.Listing) error) error
	ListBySeller(ctx context.Context, sellerID string, params pagination.Params, filters Filters) (*ListingList, error)
	ListAll(ctx context.Context, params pagination.Params, filters Filters) (*ListingList, error)
	VerifyConsistency(ctx context.Context, listingID string) error
}
