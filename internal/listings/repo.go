package listings

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nmartins/bazario-backend/pkg/docstore"
	pkgerrors "github.com/nmartins/bazario-backend/pkg/errors"
	"github.com/nmartins/bazario-backend/pkg/metrics"
	"github.com/nmartins/bazario-backend/pkg/models"
	"github.com/nmartins/bazario-backend/pkg/pagination"
)

const (
	globalListingsPrefix = "allListings/"
	sellerListingsRoot   = "listings/"

	listingEntity = "listing"
)

// RepositoryConfig tunes the docstore-backed repository.
type RepositoryConfig struct {
	OpTimeout time.Duration
	Metrics   *metrics.StoreMetrics
}

type repository struct {
	store     docstore.Store
	opTimeout time.Duration
	metrics   *metrics.StoreMetrics
}

// NewRepository builds the dual-index listing repository.
func NewRepository(store docstore.Store, cfg RepositoryConfig) (Repository, error) {
	if store == nil {
		return nil, fmt.Errorf("document store required")
	}
	return &repository{
		store:     store,
		opTimeout: cfg.OpTimeout,
		metrics:   cfg.Metrics,
	}, nil
}

func globalListingPath(listingID string) string {
	return globalListingsPrefix + listingID
}

func sellerListingPath(sellerID, listingID string) string {
	return sellerListingsRoot + sellerID + "/" + listingID
}

func sellerListingsPrefix(sellerID string) string {
	return sellerListingsRoot + sellerID + "/"
}

func (r *repository) Create(ctx context.Context, listing models.Listing) error {
	if listing.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	if listing.SellerID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	// Ids become path segments; a "/" would alias another subtree.
	if strings.Contains(listing.ID, "/") {
		return pkgerrors.New(pkgerrors.CodeValidation, "listing id must not contain '/'").
			WithDetails(map[string]any{"listing_id": listing.ID})
	}
	if strings.Contains(listing.SellerID, "/") {
		return pkgerrors.New(pkgerrors.CodeValidation, "seller id must not contain '/'").
			WithDetails(map[string]any{"seller_id": listing.SellerID})
	}

	if _, err := r.get(ctx, globalListingPath(listing.ID)); err == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "listing id already used").
			WithDetails(map[string]any{"listing_id": listing.ID})
	} else if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		return err
	}

	return r.fanOut(ctx, listing)
}

func (r *repository) Get(ctx context.Context, listingID string) (models.Listing, error) {
	return r.getListing(ctx, globalListingPath(listingID))
}

func (r *repository) GetForSeller(ctx context.Context, sellerID, listingID string) (models.Listing, error) {
	return r.getListing(ctx, sellerListingPath(sellerID, listingID))
}

func (r *repository) Mutate(ctx context.Context, listingID string, fn func(*models.Listing) error) error {
	listing, err := r.getListing(ctx, globalListingPath(listingID))
	if err != nil {
		return err
	}
	if err := fn(&listing); err != nil {
		return err
	}
	return r.fanOut(ctx, listing)
}

// fanOut writes the global copy first, then the seller copy. A failure in
// between is surfaced as PARTIAL_WRITE with the missing path.
func (r *repository) fanOut(ctx context.Context, listing models.Listing) error {
	payload, err := json.Marshal(listing)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding listing")
	}

	if err := r.put(ctx, globalListingPath(listing.ID), payload); err != nil {
		r.metrics.ObserveFanout(listingEntity, false)
		return err
	}
	if err := r.put(ctx, sellerListingPath(listing.SellerID, listing.ID), payload); err != nil {
		r.metrics.ObserveFanout(listingEntity, false)
		r.metrics.ObservePartialWrite(listingEntity)
		return pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "global copy written, seller copy failed").
			WithDetails(map[string]any{
				"listing_id": listing.ID,
				"written":    globalListingPath(listing.ID),
				"missing":    sellerListingPath(listing.SellerID, listing.ID),
			})
	}

	r.metrics.ObserveFanout(listingEntity, true)
	return nil
}

func (r *repository) ListBySeller(ctx context.Context, sellerID string, params pagination.Params, filters Filters) (*ListingList, error) {
	if sellerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	return r.list(ctx, sellerListingsPrefix(sellerID), params, filters)
}

func (r *repository) ListAll(ctx context.Context, params pagination.Params, filters Filters) (*ListingList, error) {
	return r.list(ctx, globalListingsPrefix, params, filters)
}

func (r *repository) list(ctx context.Context, prefix string, params pagination.Params, filters Filters) (*ListingList, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	docs, err := r.store.ListPrefix(ctx, prefix)
	if err != nil {
		return nil, pkgerrors.WrapStorage(err, "listing documents")
	}

	items := make([]models.Listing, 0, len(docs))
	for _, doc := range docs {
		var listing models.Listing
		if err := json.Unmarshal(doc.Value, &listing); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding stored listing").
				WithDetails(map[string]any{"path": doc.Path})
		}
		if filters.matches(listing) {
			items = append(items, listing)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	total := len(items)
	start, end := pagination.Slice(total, params)
	return &ListingList{Listings: items[start:end], Total: total}, nil
}

func (r *repository) VerifyConsistency(ctx context.Context, listingID string) error {
	global, err := r.getListing(ctx, globalListingPath(listingID))
	if err != nil {
		r.metrics.ObserveConsistencyCheck(listingEntity, false)
		return err
	}

	scoped, err := r.getListing(ctx, sellerListingPath(global.SellerID, listingID))
	if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		r.metrics.ObserveConsistencyCheck(listingEntity, false)
		return pkgerrors.New(pkgerrors.CodeInconsistent, "seller copy missing").
			WithDetails(map[string]any{"listing_id": listingID, "seller_id": global.SellerID})
	}
	if err != nil {
		r.metrics.ObserveConsistencyCheck(listingEntity, false)
		return err
	}

	if global.Status != scoped.Status {
		r.metrics.ObserveConsistencyCheck(listingEntity, false)
		return pkgerrors.New(pkgerrors.CodeInconsistent, "listing copies disagree").
			WithDetails(map[string]any{
				"listing_id": listingID,
				"global":     global.Status.String(),
				"seller":     scoped.Status.String(),
			})
	}

	r.metrics.ObserveConsistencyCheck(listingEntity, true)
	return nil
}

func (r *repository) getListing(ctx context.Context, path string) (models.Listing, error) {
	raw, err := r.get(ctx, path)
	if err != nil {
		return models.Listing{}, err
	}
	var listing models.Listing
	if err := json.Unmarshal(raw, &listing); err != nil {
		return models.Listing{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding stored listing").
			WithDetails(map[string]any{"path": path})
	}
	return listing, nil
}

func (r *repository) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	raw, err := r.store.Get(ctx, path)
	if err == docstore.ErrNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	if err != nil {
		return nil, pkgerrors.WrapStorage(err, "reading document")
	}
	return raw, nil
}

func (r *repository) put(ctx context.Context, path string, value []byte) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	if err := r.store.Put(ctx, path, value); err != nil {
		return pkgerrors.WrapStorage(err, "writing document")
	}
	return nil
}

func (r *repository) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.opTimeout)
}
