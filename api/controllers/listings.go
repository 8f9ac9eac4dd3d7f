package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/nmartins/bazario-backend/api/middleware"
	"github.com/nmartins/bazario-backend/api/responses"
	"github.com/nmartins/bazario-backend/api/validators"
	"github.com/nmartins/bazario-backend/internal/listings"
	"github.com/nmartins/bazario-backend/pkg/enums"
	pkgerrors "github.com/nmartins/bazario-backend/pkg/errors"
	"github.com/nmartins/bazario-backend/pkg/logger"
)

type listingSubmitRequest struct {
	Name        string          `json:"name" validate:"required,min=3,max=120"`
	Description string          `json:"description" validate:"max=2000"`
	Category    string          `json:"category" validate:"required"`
	Subcategory string          `json:"subcategory" validate:"max=60"`
	Price       decimal.Decimal `json:"price"`
	ImageRef    string          `json:"image_ref" validate:"max=500"`
}

// SellerListingSubmit files a new listing for moderation.
func SellerListingSubmit(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req listingSubmitRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		listing, err := svc.Submit(ctx, listings.SubmitInput{
			SellerID:    middleware.SellerID(ctx),
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
			Subcategory: req.Subcategory,
			Price:       req.Price,
			ImageRef:    req.ImageRef,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithField(ctx, "listing_id", listing.ID), "listing.submitted")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, listing)
	}
}

// SellerListings lists the calling seller's listings.
func SellerListings(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		filters, err := parseListingFilters(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.ListBySeller(ctx, middleware.SellerID(ctx), params, filters)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"listings": list.Listings,
			"total":    list.Total,
		})
	}
}

// SellerListingSold flips an active listing to sold.
func SellerListingSold(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		listingID := chi.URLParam(r, "listingId")

		if err := svc.MarkSold(ctx, middleware.SellerID(ctx), listingID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"listing_id": listingID, "status": enums.ListingStatusSold.String()})
	}
}

// SellerListingAvailable puts a sold listing back on sale.
func SellerListingAvailable(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		listingID := chi.URLParam(r, "listingId")

		if err := svc.MarkAvailable(ctx, middleware.SellerID(ctx), listingID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"listing_id": listingID, "status": enums.ListingStatusActive.String()})
	}
}

// AdminListingQueue lists listings for moderation, filterable by status.
func AdminListingQueue(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		filters, err := parseListingFilters(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if filters.Status == nil {
			pending := enums.ListingStatusPendingReview
			filters.Status = &pending
		}

		list, err := svc.ListAll(ctx, params, filters)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"listings": list.Listings,
			"total":    list.Total,
		})
	}
}

type listingApproveRequest struct {
	Edits *listingEditPatch `json:"edits"`
}

type listingEditPatch struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Subcategory *string          `json:"subcategory"`
	Price       *decimal.Decimal `json:"price"`
	ImageRef    *string          `json:"image_ref"`
}

// AdminListingApprove activates a pending listing, optionally applying
// moderator edits validated against the submission schema.
func AdminListingApprove(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		listingID := chi.URLParam(r, "listingId")

		var req listingApproveRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
		}

		var err error
		if req.Edits != nil {
			err = svc.ApproveWithEdits(ctx, listingID, listings.EditPatch{
				Name:        req.Edits.Name,
				Description: req.Edits.Description,
				Category:    req.Edits.Category,
				Subcategory: req.Edits.Subcategory,
				Price:       req.Edits.Price,
				ImageRef:    req.Edits.ImageRef,
			})
		} else {
			err = svc.Approve(ctx, listingID)
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithField(ctx, "listing_id", listingID), "listing.approved")
		}
		responses.WriteSuccess(w, map[string]string{"listing_id": listingID, "status": enums.ListingStatusActive.String()})
	}
}

type listingRejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// AdminListingReject declines a pending listing with a mandatory reason.
func AdminListingReject(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		listingID := chi.URLParam(r, "listingId")

		var req listingRejectRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Reject(ctx, listingID, req.Reason); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithField(ctx, "listing_id", listingID), "listing.rejected")
		}
		responses.WriteSuccess(w, map[string]string{"listing_id": listingID, "status": enums.ListingStatusRejected.String()})
	}
}

// ListingDetail fetches any listing by id.
func ListingDetail(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		listing, err := svc.Get(ctx, chi.URLParam(r, "listingId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

func parseListingFilters(r *http.Request) (listings.Filters, error) {
	filters := listings.Filters{}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := enums.ParseListingStatus(raw)
		if err != nil {
			return listings.Filters{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown listing status").
				WithDetails(map[string]any{"status": raw})
		}
		filters.Status = &status
	}
	return filters, nil
}
