package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nmartins/bazario-backend/internal/pricing"
	"github.com/nmartins/bazario-backend/pkg/enums"
	pkgerrors "github.com/nmartins/bazario-backend/pkg/errors"
	"github.com/nmartins/bazario-backend/pkg/models"
	"github.com/nmartins/bazario-backend/pkg/pagination"
)

// Service drives checkout and the order fulfillment lifecycle. All storage
// goes through the repository; the service never touches document paths.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*models.Order, error)
	Get(ctx context.Context, orderID string) (models.Order, error)
	GetForBuyer(ctx context.Context, buyerID, orderID string) (models.Order, error)
	Transition(ctx context.Context, orderID string, next enums.OrderStatus) error
	ListByBuyer(ctx context.Context, buyerID string, params pagination.Params, filters Filters) (*OrderList, error)
	ListAll(ctx context.Context, params pagination.Params, filters Filters) (*OrderList, error)
	VerifyConsistency(ctx context.Context, orderID string) error
}

type service struct {
	repo     Repository
	engine   *pricing.Engine
	discount *pricing.Discount
	now      func() time.Time
}

// NewService wires the order service. The discount rule may be nil when no
// discount is configured.
func NewService(repo Repository, engine *pricing.Engine, discount *pricing.Discount) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if engine == nil {
		return nil, fmt.Errorf("pricing engine required")
	}
	return &service{
		repo:     repo,
		engine:   engine,
		discount: discount,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*models.Order, error) {
	if input.BuyerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing")
	}
	if input.BuyerName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer name required")
	}
	if input.ContactNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact number required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart has no lines")
	}

	address := input.ShippingAddress
	address.Normalize()

	cartLines := make([]models.CartLine, 0, len(input.Lines))
	orderLines := make([]models.OrderLine, 0, len(input.Lines))
	for _, line := range input.Lines {
		cartLines = append(cartLines, models.CartLine{
			ProductID:   line.ProductID,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			Category:    line.Category,
			Subcategory: line.Subcategory,
		})
		orderLines = append(orderLines, models.OrderLine{
			ProductID:  line.ProductID,
			Name:       line.Name,
			UnitPrice:  line.UnitPrice,
			Quantity:   line.Quantity,
			ImageRef:   line.ImageRef,
			SellerID:   line.SellerID,
			SellerName: line.SellerName,
		})
	}

	breakdown, err := s.engine.Compute(cartLines, address, s.discount)
	if err != nil {
		return nil, err
	}

	orderID := input.OrderID
	if orderID == "" {
		orderID = uuid.NewString()
	} else if _, err := uuid.Parse(orderID); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id must be a UUID").
			WithDetails(map[string]any{"order_id": input.OrderID})
	}

	order := models.Order{
		ID:              orderID,
		BuyerID:         input.BuyerID,
		BuyerName:       input.BuyerName,
		ShippingAddress: address,
		ContactNumber:   input.ContactNumber,
		Comments:        input.Comments,
		Lines:           orderLines,
		Pricing:         breakdown,
		Status:          enums.OrderStatusPending,
		ReturnStatus:    enums.ReturnStatusNone,
		CreatedAt:       s.now(),
	}

	if _, err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	// A retried create may have matched an earlier payload; return the
	// stored record so the caller sees the original createdAt.
	stored, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *service) Get(ctx context.Context, orderID string) (models.Order, error) {
	if orderID == "" {
		return models.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	return s.repo.Get(ctx, orderID)
}

func (s *service) GetForBuyer(ctx context.Context, buyerID, orderID string) (models.Order, error) {
	if buyerID == "" {
		return models.Order{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing")
	}
	if orderID == "" {
		return models.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	return s.repo.GetForBuyer(ctx, buyerID, orderID)
}

// Transition re-reads the order before applying the move so a stale caller
// cannot replay an already-applied transition as a fresh one. Same-status
// requests succeed without a write.
func (s *service) Transition(ctx context.Context, orderID string, next enums.OrderStatus) error {
	if orderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return err
	}

	changed, err := PlanTransition(order.Status, next)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	return s.repo.UpdateStatus(ctx, orderID, next)
}

func (s *service) ListByBuyer(ctx context.Context, buyerID string, params pagination.Params, filters Filters) (*OrderList, error) {
	if buyerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing")
	}
	return s.repo.ListByBuyer(ctx, buyerID, params, filters)
}

func (s *service) ListAll(ctx context.Context, params pagination.Params, filters Filters) (*OrderList, error) {
	return s.repo.ListAll(ctx, params, filters)
}

func (s *service) VerifyConsistency(ctx context.Context, orderID string) error {
	if orderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	return s.repo.VerifyConsistency(ctx, orderID)
}
