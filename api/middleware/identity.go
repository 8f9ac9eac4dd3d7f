package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/nmartins/bazario-backend/api/responses"
	pkgerrors "github.com/nmartins/bazario-backend/pkg/errors"
	"github.com/nmartins/bazario-backend/pkg/logger"
)

// Identity arrives pre-authenticated from the edge as opaque header
// values; this service never validates credentials itself.
const (
	buyerIDHeader  = "X-Buyer-Id"
	sellerIDHeader = "X-Seller-Id"
)

type buyerIDKey struct{}
type sellerIDKey struct{}

// RequireBuyer rejects requests without a buyer identity and stores the id
// on the context.
func RequireBuyer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			buyerID := strings.TrimSpace(r.Header.Get(buyerIDHeader))
			if buyerID == "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing"))
				return
			}

			ctx := context.WithValue(r.Context(), buyerIDKey{}, buyerID)
			if logg != nil {
				ctx = logg.WithBuyerID(ctx, buyerID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSeller rejects requests without a seller identity and stores the
// id on the context.
func RequireSeller(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sellerID := strings.TrimSpace(r.Header.Get(sellerIDHeader))
			if sellerID == "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "seller identity missing"))
				return
			}

			ctx := context.WithValue(r.Context(), sellerIDKey{}, sellerID)
			if logg != nil {
				ctx = logg.WithField(ctx, "seller_id", sellerID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BuyerID returns the buyer identity attached by RequireBuyer.
func BuyerID(ctx context.Context) string {
	id, _ := ctx.Value(buyerIDKey{}).(string)
	return id
}

// SellerID returns the seller identity attached by RequireSeller.
func SellerID(ctx context.Context) string {
	id, _ := ctx.Value(sellerIDKey{}).(string)
	return id
}
