package listings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/nmartins/bazario-backend/pkg/enums"
	pkgerrors "github.com/nmartins/bazario-backend/pkg/errors"
	"github.com/nmartins/bazario-backend/pkg/models"
	"github.com/nmartins/bazario-backend/pkg/pagination"
)

// Service drives the moderation workflow. Active and rejected are
// reachable only from pending review; active and sold swap freely. A
// rejected listing is never resubmitted under the same id — sellers file
// a fresh submission.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.Listing, error)
	Approve(ctx context.Context, listingID string) error
	ApproveWithEdits(ctx context.Context, listingID string, patch EditPatch) error
	Reject(ctx context.Context, listingID, reason string) error
	MarkSold(ctx context.Context, sellerID, listingID string) error
	MarkAvailable(ctx context.Context, sellerID, listingID string) error
	Get(ctx context.Context, listingID string) (models.Listing, error)
	ListBySeller(ctx context.Context, sellerID string, params pagination.Params, filters Filters) (*ListingList, error)
	ListAll(ctx context.Context, params pagination.Params, filters Filters) (*ListingList, error)
}

type service struct {
	repo     Repository
	validate *validator.Validate
	now      func() time.Time
}

// NewService wires the listing moderation service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	return &service{
		repo:     repo,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.Listing, error) {
	if err := s.checkSchema(input); err != nil {
		return nil, err
	}

	now := s.now()
	listing := models.Listing{
		ID:          uuid.NewString(),
		SellerID:    input.SellerID,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Category:    input.Category,
		Subcategory: input.Subcategory,
		Price:       input.Price,
		ImageRef:    input.ImageRef,
		Status:      enums.ListingStatusPendingReview,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (s *service) Approve(ctx context.Context, listingID string) error {
	return s.moderate(ctx, listingID, func(listing *models.Listing) error {
		listing.Status = enums.ListingStatusActive
		return nil
	})
}

// ApproveWithEdits validates the patched listing against the creation
// schema before writing, and applies the edits and the status flip in the
// same document write so the listing is never active with invalid data.
func (s *service) ApproveWithEdits(ctx context.Context, listingID string, patch EditPatch) error {
	return s.moderate(ctx, listingID, func(listing *models.Listing) error {
		patch.apply(listing)
		if err := s.checkSchema(SubmitInput{
			SellerID:    listing.SellerID,
			Name:        listing.Name,
			Description: listing.Description,
			Category:    listing.Category,
			Subcategory: listing.Subcategory,
			Price:       listing.Price,
			ImageRef:    listing.ImageRef,
		}); err != nil {
			return err
		}
		listing.Status = enums.ListingStatusActive
		return nil
	})
}

func (s *service) Reject(ctx context.Context, listingID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "rejection reason required")
	}
	return s.moderate(ctx, listingID, func(listing *models.Listing) error {
		listing.Status = enums.ListingStatusRejected
		listing.RejectionReason = &reason
		return nil
	})
}

// moderate performs a moderation decision, which is only legal while the
// listing is pending review.
func (s *service) moderate(ctx context.Context, listingID string, decide func(*models.Listing) error) error {
	if listingID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	return s.repo.Mutate(ctx, listingID, func(listing *models.Listing) error {
		if listing.Status != enums.ListingStatusPendingReview {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "listing is not awaiting review").
				WithDetails(map[string]any{"status": listing.Status.String()})
		}
		if err := decide(listing); err != nil {
			return err
		}
		listing.UpdatedAt = s.now()
		return nil
	})
}

func (s *service) MarkSold(ctx context.Context, sellerID, listingID string) error {
	return s.swapAvailability(ctx, sellerID, listingID, enums.ListingStatusActive, enums.ListingStatusSold)
}

func (s *service) MarkAvailable(ctx context.Context, sellerID, listingID string) error {
	return s.swapAvailability(ctx, sellerID, listingID, enums.ListingStatusSold, enums.ListingStatusActive)
}

func (s *service) swapAvailability(ctx context.Context, sellerID, listingID string, from, to enums.ListingStatus) error {
	if sellerID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "seller identity missing")
	}
	if listingID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	return s.repo.Mutate(ctx, listingID, func(listing *models.Listing) error {
		if listing.SellerID != sellerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "listing belongs to another seller")
		}
		if listing.Status == to {
			return nil
		}
		if listing.Status != from {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "availability change not allowed in current state").
				WithDetails(map[string]any{"status": listing.Status.String()})
		}
		listing.Status = to
		listing.UpdatedAt = s.now()
		return nil
	})
}

func (s *service) Get(ctx context.Context, listingID string) (models.Listing, error) {
	if listingID == "" {
		return models.Listing{}, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	return s.repo.Get(ctx, listingID)
}

func (s *service) ListBySeller(ctx context.Context, sellerID string, params pagination.Params, filters Filters) (*ListingList, error) {
	if sellerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "seller identity missing")
	}
	return s.repo.ListBySeller(ctx, sellerID, params, filters)
}

func (s *service) ListAll(ctx context.Context, params pagination.Params, filters Filters) (*ListingList, error) {
	return s.repo.ListAll(ctx, params, filters)
}

func (s *service) checkSchema(input SubmitInput) error {
	if err := s.validate.Struct(input); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "listing failed validation").
			WithDetails(validationDetails(err))
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	return nil
}

func validationDetails(err error) map[string]any {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Tag()
	}
	return details
}
