package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/nmartins/bazario-backend/api/middleware"
	"github.com/nmartins/bazario-backend/api/responses"
	"github.com/nmartins/bazario-backend/api/validators"
	"github.com/nmartins/bazario-backend/internal/orders"
	"github.com/nmartins/bazario-backend/pkg/enums"
	pkgerrors "github.com/nmartins/bazario-backend/pkg/errors"
	"github.com/nmartins/bazario-backend/pkg/logger"
	"github.com/nmartins/bazario-backend/pkg/types"
)

type checkoutLineRequest struct {
	ProductID   string          `json:"product_id" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity" validate:"required,min=1"`
	Category    string          `json:"category" validate:"required"`
	Subcategory string          `json:"subcategory"`
	ImageRef    string          `json:"image_ref"`
	SellerID    string          `json:"seller_id" validate:"required"`
	SellerName  string          `json:"seller_name" validate:"required"`
}

type checkoutRequest struct {
	OrderID         string                `json:"order_id"`
	BuyerName       string                `json:"buyer_name" validate:"required"`
	ShippingAddress types.Address         `json:"shipping_address" validate:"required"`
	ContactNumber   string                `json:"contact_number" validate:"required"`
	Comments        *string               `json:"comments"`
	Lines           []checkoutLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// Checkout turns the posted cart into a priced, persisted order.
func Checkout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := orders.CheckoutInput{
			OrderID:         req.OrderID,
			BuyerID:         middleware.BuyerID(ctx),
			BuyerName:       req.BuyerName,
			ShippingAddress: req.ShippingAddress,
			ContactNumber:   req.ContactNumber,
			Comments:        req.Comments,
		}
		for _, line := range req.Lines {
			input.Lines = append(input.Lines, orders.CheckoutLine{
				ProductID:   line.ProductID,
				Name:        line.Name,
				UnitPrice:   line.UnitPrice,
				Quantity:    line.Quantity,
				Category:    line.Category,
				Subcategory: line.Subcategory,
				ImageRef:    line.ImageRef,
				SellerID:    line.SellerID,
				SellerName:  line.SellerName,
			})
		}

		order, err := svc.Checkout(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithOrderID(ctx, order.ID), "checkout.completed")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// MyOrders lists the calling buyer's orders, newest first.
func MyOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
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

		list, err := svc.ListByBuyer(ctx, middleware.BuyerID(ctx), params, filters)
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

// MyOrderDetail fetches one of the calling buyer's orders through the
// buyer-scoped index.
func MyOrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		order, err := svc.GetForBuyer(ctx, middleware.BuyerID(ctx), chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func parseOrderFilters(r *http.Request) (orders.Filters, error) {
	filters := orders.Filters{Query: r.URL.Query().Get("q")}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return orders.Filters{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").
				WithDetails(map[string]any{"status": raw})
		}
		filters.Status = &status
	}

	from, err := validators.ParseQueryDate(r, "from")
	if err != nil {
		return orders.Filters{}, err
	}
	filters.DateFrom = from

	to, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return orders.Filters{}, err
	}
	filters.DateTo = to

	return filters, nil
}
