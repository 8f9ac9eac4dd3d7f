package returns

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmartins/bazario-backend/internal/orders"
	"github.com/nmartins/bazario-backend/pkg/docstore"
	"github.com/nmartins/bazario-backend/pkg/enums"
	pkgerrors "github.com/nmartins/bazario-backend/pkg/errors"
	"github.com/nmartins/bazario-backend/pkg/models"
	"github.com/nmartins/bazario-backend/pkg/types"
)

const validReason = "the lamp arrived with a cracked shade"

type fixture struct {
	svc        Service
	ordersRepo orders.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := docstore.NewMemoryStore()
	ordersRepo, err := orders.NewRepository(store, orders.RepositoryConfig{})
	require.NoError(t, err)
	repo, err := NewRepository(store, RepositoryConfig{})
	require.NoError(t, err)
	svc, err := NewService(repo, ordersRepo)
	require.NoError(t, err)
	return &fixture{svc: svc, ordersRepo: ordersRepo}
}

func (f *fixture) seedOrder(t *testing.T, buyerID string, status enums.OrderStatus) models.Order {
	t.Helper()

	order := models.Order{
		ID:        uuid.NewString(),
		BuyerID:   buyerID,
		BuyerName: "Marta Vieira",
		ShippingAddress: types.Address{
			Line1:      "18 Rua das Flores",
			City:       "Lisbon",
			State:      "LX",
			PostalCode: "1100-209",
			Country:    "PT",
		},
		ContactNumber: "+351-210-000-000",
		Lines: []models.OrderLine{
			{ProductID: "prod-1", Name: "Desk Lamp", UnitPrice: decimal.NewFromInt(100), Quantity: 1, SellerID: "seller-1", SellerName: "Luz e Cia"},
		},
		Pricing: models.PriceBreakdown{
			Subtotal:    decimal.NewFromInt(100),
			PlatformFee: decimal.NewFromInt(2),
			HandlingFee: decimal.NewFromInt(50),
			Tax:         decimal.NewFromInt(18),
			Total:       decimal.NewFromInt(170),
		},
		Status:       status,
		ReturnStatus: enums.ReturnStatusNone,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := f.ordersRepo.Create(context.Background(), order)
	require.NoError(t, err)
	return order
}

func TestRequestReturnHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.seedOrder(t, "buyer-1", enums.OrderStatusDelivered)

	requestID, err := f.svc.RequestReturn(ctx, order.ID, "buyer-1", validReason)
	require.NoError(t, err)
	require.NotEmpty(t, requestID)

	request, err := f.svc.Get(ctx, requestID)
	require.NoError(t, err)
	assert.Equal(t, enums.ReturnRequestStatusPending, request.Status)
	assert.Equal(t, order.ID, request.OrderID)
	assert.Equal(t, validReason, request.Reason)
	assert.Equal(t, enums.OrderStatusDelivered, request.OrderSnapshot.Status)
	assert.Equal(t, enums.ReturnStatusNone, request.OrderSnapshot.ReturnStatus, "snapshot precedes the flip")

	// Both order copies flipped and point at the request.
	for _, fetch := range []func() (models.Order, error){
		func() (models.Order, error) { return f.ordersRepo.Get(ctx, order.ID) },
		func() (models.Order, error) { return f.ordersRepo.GetForBuyer(ctx, "buyer-1", order.ID) },
	} {
		got, err := fetch()
		require.NoError(t, err)
		assert.Equal(t, enums.ReturnStatusRequested, got.ReturnStatus)
		require.NotNil(t, got.ReturnRequestID)
		assert.Equal(t, requestID, *got.ReturnRequestID)
	}
}

func TestRequestReturnValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.seedOrder(t, "buyer-1", enums.OrderStatusDelivered)

	_, err := f.svc.RequestReturn(ctx, order.ID, "buyer-1", "too short")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)

	_, err = f.svc.RequestReturn(ctx, order.ID, "buyer-2", validReason)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden), "got %v", err)

	_, err = f.svc.RequestReturn(ctx, uuid.NewString(), "buyer-1", validReason)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestRequestReturnRequiresDeliveredOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending := f.seedOrder(t, "buyer-1", enums.OrderStatusPending)
	_, err := f.svc.RequestReturn(ctx, pending.ID, "buyer-1", validReason)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "got %v", err)

	shipped := f.seedOrder(t, "buyer-1", enums.OrderStatusShipped)
	_, err = f.svc.RequestReturn(ctx, shipped.ID, "buyer-1", validReason)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "got %v", err)
}

func TestRequestReturnStateOutranksReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// An unreturnable order reports the state conflict even when the
	// reason would also be rejected.
	pending := f.seedOrder(t, "buyer-1", enums.OrderStatusPending)
	_, err := f.svc.RequestReturn(ctx, pending.ID, "buyer-1", "short")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "got %v", err)

	// Ownership likewise outranks the reason check.
	delivered := f.seedOrder(t, "buyer-1", enums.OrderStatusDelivered)
	_, err = f.svc.RequestReturn(ctx, delivered.ID, "buyer-2", "short")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden), "got %v", err)
}

func TestRequestReturnExclusivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.seedOrder(t, "buyer-1", enums.OrderStatusDelivered)

	_, err := f.svc.RequestReturn(ctx, order.ID, "buyer-1", validReason)
	require.NoError(t, err)

	_, err = f.svc.RequestReturn(ctx, order.ID, "buyer-1", validReason)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "second request rejected: %v", err)
}

func TestResolveApprove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.seedOrder(t, "buyer-1", enums.OrderStatusDelivered)

	requestID, err := f.svc.RequestReturn(ctx, order.ID, "buyer-1", validReason)
	require.NoError(t, err)

	require.NoError(t, f.svc.Resolve(ctx, requestID, enums.ReturnDecisionApproved))

	request, err := f.svc.Get(ctx, requestID)
	require.NoError(t, err)
	assert.Equal(t, enums.ReturnRequestStatusApproved, request.Status)
	require.NotNil(t, request.ResolvedAt)

	global, err := f.ordersRepo.Get(ctx, order.ID)
	require.NoError(t, err)
	scoped, err := f.ordersRepo.GetForBuyer(ctx, "buyer-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ReturnStatusApproved, global.ReturnStatus)
	assert.Equal(t, enums.ReturnStatusApproved, scoped.ReturnStatus)
}

func TestResolveReject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.seedOrder(t, "buyer-1", enums.OrderStatusDelivered)

	requestID, err := f.svc.RequestReturn(ctx, order.ID, "buyer-1", validReason)
	require.NoError(t, err)

	require.NoError(t, f.svc.Resolve(ctx, requestID, enums.ReturnDecisionRejected))

	global, err := f.ordersRepo.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ReturnStatusRejected, global.ReturnStatus)
}

func TestResolveTwiceFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.seedOrder(t, "buyer-1", enums.OrderStatusDelivered)

	requestID, err := f.svc.RequestReturn(ctx, order.ID, "buyer-1", validReason)
	require.NoError(t, err)
	require.NoError(t, f.svc.Resolve(ctx, requestID, enums.ReturnDecisionApproved))

	err = f.svc.Resolve(ctx, requestID, enums.ReturnDecisionRejected)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "got %v", err)

	// The rejected second call left the first outcome intact.
	global, err := f.ordersRepo.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ReturnStatusApproved, global.ReturnStatus)
}

func TestResolveGuardsAgainstStaleRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.seedOrder(t, "buyer-1", enums.OrderStatusDelivered)

	requestID, err := f.svc.RequestReturn(ctx, order.ID, "buyer-1", validReason)
	require.NoError(t, err)

	// A racing duplicate slipped past creation-time checks; the order now
	// tracks a different request id.
	other := uuid.NewString()
	require.NoError(t, f.ordersRepo.UpdateReturnState(ctx, order.ID, enums.ReturnStatusRequested, &other))

	err = f.svc.Resolve(ctx, requestID, enums.ReturnDecisionApproved)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "got %v", err)
}

func TestResolveUnknownRequest(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Resolve(context.Background(), uuid.NewString(), enums.ReturnDecisionApproved)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestListPendingOldestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Deterministic clock so the queue order does not depend on timer
	// resolution.
	tick := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	f.svc.(*service).now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}

	first := f.seedOrder(t, "buyer-1", enums.OrderStatusDelivered)
	second := f.seedOrder(t, "buyer-2", enums.OrderStatusDelivered)
	third := f.seedOrder(t, "buyer-3", enums.OrderStatusDelivered)

	firstID, err := f.svc.RequestReturn(ctx, first.ID, "buyer-1", validReason)
	require.NoError(t, err)
	secondID, err := f.svc.RequestReturn(ctx, second.ID, "buyer-2", validReason)
	require.NoError(t, err)
	thirdID, err := f.svc.RequestReturn(ctx, third.ID, "buyer-3", validReason)
	require.NoError(t, err)

	// Resolving one removes it from the queue.
	require.NoError(t, f.svc.Resolve(ctx, secondID, enums.ReturnDecisionApproved))

	pending, err := f.svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, firstID, pending[0].ID, "oldest first")
	assert.Equal(t, thirdID, pending[1].ID)
}

func TestSnapshotIsFrozenCopy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.seedOrder(t, "buyer-1", enums.OrderStatusDelivered)

	requestID, err := f.svc.RequestReturn(ctx, order.ID, "buyer-1", validReason)
	require.NoError(t, err)
	require.NoError(t, f.svc.Resolve(ctx, requestID, enums.ReturnDecisionApproved))

	request, err := f.svc.Get(ctx, requestID)
	require.NoError(t, err)
	assert.Equal(t, enums.ReturnStatusNone, request.OrderSnapshot.ReturnStatus, "snapshot untouched by later resolution")
	assert.Nil(t, request.OrderSnapshot.ReturnRequestID)
}
