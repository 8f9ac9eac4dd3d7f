package returns

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nmartins/bazario-backend/internal/orders"
	"github.com/nmartins/bazario-backend/pkg/enums"
	pkgerrors "github.com/nmartins/bazario-backend/pkg/errors"
	"github.com/nmartins/bazario-backend/pkg/models"
)

// MinReasonLength is the shortest acceptable return reason after trimming.
const MinReasonLength = 10

// Service drives the return workflow. It mutates order return state only
// through the orders repository, keeping the fan-out discipline in one
// place.
type Service interface {
	RequestReturn(ctx context.Context, orderID, buyerID, reason string) (string, error)
	Resolve(ctx context.Context, requestID string, decision enums.ReturnDecision) error
	Get(ctx context.Context, requestID string) (models.ReturnRequest, error)
	ListPending(ctx context.Context) ([]models.ReturnRequest, error)
}

type service struct {
	repo   Repository
	orders orders.Repository
	now    func() time.Time
}

// NewService wires the return workflow service.
func NewService(repo Repository, ordersRepo orders.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("returns repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{
		repo:   repo,
		orders: ordersRepo,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// RequestReturn files a return against a delivered order. The request
// record is written first; only then is the order's return axis flipped on
// both copies, so a failed filing never leaves the order pointing at a
// request that does not exist.
func (s *service) RequestReturn(ctx context.Context, orderID, buyerID, reason string) (string, error) {
	if orderID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if buyerID == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing")
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order.BuyerID != buyerID {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another buyer")
	}
	if order.Status != enums.OrderStatusDelivered {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "only delivered orders can be returned").
			WithDetails(map[string]any{"status": order.Status.String()})
	}
	if order.ReturnStatus != enums.ReturnStatusNone {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "a return is already open for this order").
			WithDetails(map[string]any{"return_status": order.ReturnStatus.String()})
	}

	// Reason quality is judged last: an order that cannot be returned at
	// all reports the state problem, whatever the reason says.
	reason = strings.TrimSpace(reason)
	if len(reason) < MinReasonLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "return reason too short").
			WithDetails(map[string]any{"min_length": MinReasonLength})
	}

	request := models.ReturnRequest{
		ID:            uuid.NewString(),
		OrderID:       order.ID,
		BuyerID:       buyerID,
		Reason:        reason,
		Status:        enums.ReturnRequestStatusPending,
		RequestedAt:   s.now(),
		OrderSnapshot: order.Clone(),
	}

	if err := s.repo.Create(ctx, request); err != nil {
		return "", err
	}

	if err := s.orders.UpdateReturnState(ctx, order.ID, enums.ReturnStatusRequested, &request.ID); err != nil {
		// The request record exists but the order was not (fully)
		// flipped. Surface the failure so the caller can retry or a
		// repair job can reconcile; hiding it would orphan the request.
		return "", err
	}

	return request.ID, nil
}

// Resolve applies an admin decision to a pending request and propagates
// the outcome onto both order copies. Re-resolution is rejected, and the
// order must still point at this request — a second request created by a
// double submission race cannot be resolved over the first.
func (s *service) Resolve(ctx context.Context, requestID string, decision enums.ReturnDecision) error {
	if requestID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}

	var requestStatus enums.ReturnRequestStatus
	var returnStatus enums.ReturnStatus
	switch decision {
	case enums.ReturnDecisionApproved:
		requestStatus = enums.ReturnRequestStatusApproved
		returnStatus = enums.ReturnStatusApproved
	case enums.ReturnDecisionRejected:
		requestStatus = enums.ReturnRequestStatusRejected
		returnStatus = enums.ReturnStatusRejected
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "decision must be approved or rejected")
	}

	request, err := s.repo.Get(ctx, requestID)
	if err != nil {
		return err
	}
	if request.Status != enums.ReturnRequestStatusPending {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "return request already resolved").
			WithDetails(map[string]any{"status": request.Status.String()})
	}

	order, err := s.orders.Get(ctx, request.OrderID)
	if err != nil {
		return err
	}
	if order.ReturnStatus != enums.ReturnStatusRequested {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order has no open return to resolve").
			WithDetails(map[string]any{"return_status": order.ReturnStatus.String()})
	}
	if order.ReturnRequestID == nil || *order.ReturnRequestID != request.ID {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is tracking a different return request")
	}

	resolvedAt := s.now()
	request.Status = requestStatus
	request.ResolvedAt = &resolvedAt
	if err := s.repo.Update(ctx, request); err != nil {
		return err
	}

	return s.orders.UpdateReturnState(ctx, order.ID, returnStatus, &request.ID)
}

func (s *service) Get(ctx context.Context, requestID string) (models.ReturnRequest, error) {
	if requestID == "" {
		return models.ReturnRequest{}, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	return s.repo.Get(ctx, requestID)
}

func (s *service) ListPending(ctx context.Context) ([]models.ReturnRequest, error) {
	return s.repo.ListPending(ctx)
}
