package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nmartins/bazario-backend/api/middleware"
	"github.com/nmartins/bazario-backend/api/responses"
	"github.com/nmartins/bazario-backend/api/validators"
	"github.com/nmartins/bazario-backend/internal/returns"
	"github.com/nmartins/bazario-backend/pkg/enums"
	pkgerrors "github.com/nmartins/bazario-backend/pkg/errors"
	"github.com/nmartins/bazario-backend/pkg/logger"
)

// Reason is deliberately unvalidated here; the service checks it only
// after the order's state allows a return at all, so a short reason on an
// unreturnable order still reports the state conflict.
type returnRequestBody struct {
	Reason string `json:"reason"`
}

// RequestReturn files a return against one of the calling buyer's
// delivered orders.
func RequestReturn(svc returns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		orderID := chi.URLParam(r, "orderId")

		var req returnRequestBody
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		requestID, err := svc.RequestReturn(ctx, orderID, middleware.BuyerID(ctx), req.Reason)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			ctx = logg.WithOrderID(ctx, orderID)
			logg.Info(logg.WithField(ctx, "request_id", requestID), "return.requested")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{
			"request_id": requestID,
			"order_id":   orderID,
		})
	}
}

// AdminReturnQueue lists pending return requests, oldest first.
func AdminReturnQueue(svc returns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		pending, err := svc.ListPending(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"requests": pending,
			"total":    len(pending),
		})
	}
}

// AdminReturnDetail fetches one return request with its order snapshot.
func AdminReturnDetail(svc returns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		request, err := svc.Get(ctx, chi.URLParam(r, "requestId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

type returnResolutionBody struct {
	Decision string `json:"decision" validate:"required"`
}

// AdminReturnResolve applies an approve/reject decision to a pending
// return request.
func AdminReturnResolve(svc returns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := chi.URLParam(r, "requestId")

		var req returnResolutionBody
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		decision, err := enums.ParseReturnDecision(req.Decision)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "decision must be approved or rejected"))
			return
		}

		if err := svc.Resolve(ctx, requestID, decision); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			ctx = logg.WithField(ctx, "request_id", requestID)
			logg.Info(logg.WithField(ctx, "decision", string(decision)), "return.resolved")
		}
		responses.WriteSuccess(w, map[string]string{
			"request_id": requestID,
			"decision":   string(decision),
		})
	}
}
