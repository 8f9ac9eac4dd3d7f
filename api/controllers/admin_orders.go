package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nmartins/bazario-backend/api/responses"
	"github.com/nmartins/bazario-backend/api/validators"
	"github.com/nmartins/bazario-backend/internal/orders"
	"github.com/nmartins/bazario-backend/pkg/enums"
	pkgerrors "github.com/nmartins/bazario-backend/pkg/errors"
	"github.com/nmartins/bazario-backend/pkg/logger"
)

// AdminOrderList searches the global order index.
func AdminOrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		filters, err := parseOrderFilters(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.ListAll(ctx, params, filters)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"orders": list.Orders,
			"total":  list.Total,
		})
	}
}

// AdminOrderDetail fetches any order by id through the global index.
func AdminOrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		order, err := svc.Get(ctx, chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminOrderStatus applies a fulfillment transition to an order.
func AdminOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		orderID := chi.URLParam(r, "orderId")

		var req orderStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").
				WithDetails(map[string]any{"status": req.Status}))
			return
		}

		if err := svc.Transition(ctx, orderID, status); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			ctx = logg.WithOrderID(ctx, orderID)
			logg.Info(logg.WithField(ctx, "status", status.String()), "order.status_updated")
		}
		responses.WriteSuccess(w, map[string]string{
			"order_id": orderID,
			"status":   status.String(),
		})
	}
}

// AdminOrderConsistency runs a read-repair check across the two order
// copies and reports divergence as INCONSISTENT.
func AdminOrderConsistency(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		orderID := chi.URLParam(r, "orderId")

		if err := svc.VerifyConsistency(ctx, orderID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{
			"order_id": orderID,
			"result":   "consistent",
		})
	}
}
