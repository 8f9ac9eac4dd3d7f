package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nmartins/bazario-backend/api/controllers"
	"github.com/nmartins/bazario-backend/api/middleware"
	"github.com/nmartins/bazario-backend/internal/listings"
	"github.com/nmartins/bazario-backend/internal/orders"
	"github.com/nmartins/bazario-backend/internal/returns"
	"github.com/nmartins/bazario-backend/pkg/config"
	"github.com/nmartins/bazario-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	backends map[string]controllers.Pinger,
	ordersSvc orders.Service,
	returnsSvc returns.Service,
	listingsSvc listings.Service,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, backends))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/listings/{listingId}", controllers.ListingDetail(listingsSvc, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireBuyer(logg))
			r.Post("/checkout", controllers.Checkout(ordersSvc, logg))
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.MyOrders(ordersSvc, logg))
				r.Get("/{orderId}", controllers.MyOrderDetail(ordersSvc, logg))
				r.Post("/{orderId}/return", controllers.RequestReturn(returnsSvc, logg))
			})
		})

		r.Route("/seller", func(r chi.Router) {
			r.Use(middleware.RequireSeller(logg))
			r.Route("/listings", func(r chi.Router) {
				r.Post("/", controllers.SellerListingSubmit(listingsSvc, logg))
				r.Get("/", controllers.SellerListings(listingsSvc, logg))
				r.Post("/{listingId}/sold", controllers.SellerListingSold(listingsSvc, logg))
				r.Post("/{listingId}/available", controllers.SellerListingAvailable(listingsSvc, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(ordersSvc, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(ordersSvc, logg))
			r.Post("/{orderId}/status", controllers.AdminOrderStatus(ordersSvc, logg))
			r.Get("/{orderId}/consistency", controllers.AdminOrderConsistency(ordersSvc, logg))
		})
		r.Route("/returns", func(r chi.Router) {
			r.Get("/", controllers.AdminReturnQueue(returnsSvc, logg))
			r.Get("/{requestId}", controllers.AdminReturnDetail(returnsSvc, logg))
			r.Post("/{requestId}/resolve", controllers.AdminReturnResolve(returnsSvc, logg))
		})
		r.Route("/listings", func(r chi.Router) {
			r.Get("/", controllers.AdminListingQueue(listingsSvc, logg))
			r.Post("/{listingId}/approve", controllers.AdminListingApprove(listingsSvc, logg))
			r.Post("/{listingId}/reject", controllers.AdminListingReject(listingsSvc, logg))
		})
	})

	return r
}
