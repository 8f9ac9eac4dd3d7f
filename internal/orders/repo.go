package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/nmartins/bazario-backend/pkg/docstore"
	"github.com/nmartins/bazario-backend/pkg/enums"
	pkgerrors "github.com/nmartins/bazario-backend/pkg/errors"
	"github.com/nmartins/bazario-backend/pkg/metrics"
	"github.com/nmartins/bazario-backend/pkg/models"
	"github.com/nmartins/bazario-backend/pkg/pagination"
)

const (
	globalOrdersPrefix = "allOrders/"
	buyerOrdersRoot    = "orders/"

	orderEntity = "order"
)

// RepositoryConfig tunes the docstore-backed repository. OpTimeout bounds
// every individual storage call; zero disables the bound.
type RepositoryConfig struct {
	OpTimeout time.Duration
	Metrics   *metrics.StoreMetrics
}

type repository struct {
	store     docstore.Store
	opTimeout time.Duration
	metrics   *metrics.StoreMetrics
}

// NewRepository builds the dual-index order repository on top of a
// document store.
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

func globalOrderPath(orderID string) string {
	return globalOrdersPrefix + orderID
}

func buyerOrderPath(buyerID, orderID string) string {
	return buyerOrdersRoot + buyerID + "/" + orderID
}

func buyerOrdersPrefix(buyerID string) string {
	return buyerOrdersRoot + buyerID + "/"
}

func (r *repository) Create(ctx context.Context, order models.Order) (string, error) {
	if order.ID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if order.BuyerID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	// Ids become path segments; a "/" would alias another subtree.
	if strings.Contains(order.ID, "/") {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id must not contain '/'").
			WithDetails(map[string]any{"order_id": order.ID})
	}
	if strings.Contains(order.BuyerID, "/") {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "buyer id must not contain '/'").
			WithDetails(map[string]any{"buyer_id": order.BuyerID})
	}

	payload, err := json.Marshal(order)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding order")
	}

	existing, err := r.get(ctx, globalOrderPath(order.ID))
	switch {
	case err == nil:
		var stored models.Order
		if decodeErr := json.Unmarshal(existing, &stored); decodeErr != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, decodeErr, "decoding stored order")
		}
		if !sameCreatePayload(order, stored) {
			return "", pkgerrors.New(pkgerrors.CodeConflict, "order id already used with a different payload").
				WithDetails(map[string]any{"order_id": order.ID})
		}
		// Idempotent retry. Re-put the buyer copy from the stored global
		// bytes so a retried create heals an earlier partial write.
		if putErr := r.put(ctx, buyerOrderPath(stored.BuyerID, stored.ID), existing); putErr != nil {
			r.metrics.ObservePartialWrite(orderEntity)
			return "", partialWriteError(putErr, stored.ID, stored.BuyerID)
		}
		return stored.ID, nil
	case pkgerrors.HasCode(err, pkgerrors.CodeNotFound):
		// Fresh create.
	default:
		return "", err
	}

	if err := r.put(ctx, globalOrderPath(order.ID), payload); err != nil {
		r.metrics.ObserveFanout(orderEntity, false)
		return "", err
	}
	if err := r.put(ctx, buyerOrderPath(order.BuyerID, order.ID), payload); err != nil {
		r.metrics.ObserveFanout(orderEntity, false)
		r.metrics.ObservePartialWrite(orderEntity)
		return "", partialWriteError(err, order.ID, order.BuyerID)
	}

	r.metrics.ObserveFanout(orderEntity, true)
	return order.ID, nil
}

func (r *repository) Get(ctx context.Context, orderID string) (models.Order, error) {
	return r.getOrder(ctx, globalOrderPath(orderID))
}

func (r *repository) GetForBuyer(ctx context.Context, buyerID, orderID string) (models.Order, error) {
	return r.getOrder(ctx, buyerOrderPath(buyerID, orderID))
}

func (r *repository) UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}
	return r.mutateBothCopies(ctx, orderID, func(order *models.Order) {
		order.Status = status
	})
}

func (r *repository) UpdateReturnState(ctx context.Context, orderID string, status enums.ReturnStatus, requestID *string) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown return status")
	}
	return r.mutateBothCopies(ctx, orderID, func(order *models.Order) {
		order.ReturnStatus = status
		order.ReturnRequestID = requestID
	})
}

// mutateBothCopies implements the two-step fan-out protocol: read the
// global copy to discover the buyer, apply the mutation, write global
// first, then the buyer copy. There is no cross-key transaction; a
// failure between the writes is reported as PARTIAL_WRITE.
func (r *repository) mutateBothCopies(ctx context.Context, orderID string, mutate func(*models.Order)) error {
	order, err := r.getOrder(ctx, globalOrderPath(orderID))
	if err != nil {
		return err
	}

	mutate(&order)
	payload, err := json.Marshal(order)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding order")
	}

	if err := r.put(ctx, globalOrderPath(order.ID), payload); err != nil {
		r.metrics.ObserveFanout(orderEntity, false)
		return err
	}
	if err := r.put(ctx, buyerOrderPath(order.BuyerID, order.ID), payload); err != nil {
		r.metrics.ObserveFanout(orderEntity, false)
		r.metrics.ObservePartialWrite(orderEntity)
		return partialWriteError(err, order.ID, order.BuyerID)
	}

	r.metrics.ObserveFanout(orderEntity, true)
	return nil
}

func (r *repository) ListByBuyer(ctx context.Context, buyerID string, params pagination.Params, filters Filters) (*OrderList, error) {
	if buyerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	return r.list(ctx, buyerOrdersPrefix(buyerID), params, filters)
}

func (r *repository) ListAll(ctx context.Context, params pagination.Params, filters Filters) (*OrderList, error) {
	return r.list(ctx, globalOrdersPrefix, params, filters)
}

func (r *repository) list(ctx context.Context, prefix string, params pagination.Params, filters Filters) (*OrderList, error) {
	docs, err := r.listPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(docs))
	for _, doc := range docs {
		var order models.Order
		if err := json.Unmarshal(doc.Value, &order); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding stored order").
				WithDetails(map[string]any{"path": doc.Path})
		}
		if filters.matches(order) {
			orders = append(orders, order)
		}
	}

	sortNewestFirst(orders)

	total := len(orders)
	start, end := pagination.Slice(total, params)
	return &OrderList{Orders: orders[start:end], Total: total}, nil
}

func (r *repository) VerifyConsistency(ctx context.Context, orderID string) error {
	global, err := r.getOrder(ctx, globalOrderPath(orderID))
	if err != nil {
		r.metrics.ObserveConsistencyCheck(orderEntity, false)
		return err
	}

	scoped, err := r.getOrder(ctx, buyerOrderPath(global.BuyerID, orderID))
	if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		r.metrics.ObserveConsistencyCheck(orderEntity, false)
		return pkgerrors.New(pkgerrors.CodeInconsistent, "buyer copy missing").
			WithDetails(map[string]any{"order_id": orderID, "buyer_id": global.BuyerID})
	}
	if err != nil {
		r.metrics.ObserveConsistencyCheck(orderEntity, false)
		return err
	}

	var diffs error
	if global.Status != scoped.Status {
		diffs = multierr.Append(diffs, fmt.Errorf("status: global=%s buyer=%s", global.Status, scoped.Status))
	}
	if global.ReturnStatus != scoped.ReturnStatus {
		diffs = multierr.Append(diffs, fmt.Errorf("return_status: global=%s buyer=%s", global.ReturnStatus, scoped.ReturnStatus))
	}
	if !samePointer(global.ReturnRequestID, scoped.ReturnRequestID) {
		diffs = multierr.Append(diffs, fmt.Errorf("return_request_id: global=%s buyer=%s",
			pointerLabel(global.ReturnRequestID), pointerLabel(scoped.ReturnRequestID)))
	}

	if diffs != nil {
		r.metrics.ObserveConsistencyCheck(orderEntity, false)
		fields := make([]string, 0, len(multierr.Errors(diffs)))
		for _, diff := range multierr.Errors(diffs) {
			fields = append(fields, diff.Error())
		}
		return pkgerrors.Wrap(pkgerrors.CodeInconsistent, diffs, "order copies disagree").
			WithDetails(map[string]any{"order_id": orderID, "fields": fields})
	}

	r.metrics.ObserveConsistencyCheck(orderEntity, true)
	return nil
}

func (r *repository) getOrder(ctx context.Context, path string) (models.Order, error) {
	raw, err := r.get(ctx, path)
	if err != nil {
		return models.Order{}, err
	}
	var order models.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return models.Order{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding stored order").
			WithDetails(map[string]any{"path": path})
	}
	return order, nil
}

func (r *repository) put(ctx context.Context, path string, value []byte) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	if err := r.store.Put(ctx, path, value); err != nil {
		return pkgerrors.WrapStorage(err, "writing document")
	}
	return nil
}

func (r *repository) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	raw, err := r.store.Get(ctx, path)
	if err == docstore.ErrNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.WrapStorage(err, "reading document")
	}
	return raw, nil
}

func (r *repository) listPrefix(ctx context.Context, prefix string) ([]docstore.Document, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	docs, err := r.store.ListPrefix(ctx, prefix)
	if err != nil {
		return nil, pkgerrors.WrapStorage(err, "listing documents")
	}
	return docs, nil
}

func (r *repository) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.opTimeout)
}

// sameCreatePayload compares a retried create against the stored order.
// CreatedAt is excluded: a retried checkout stamps a fresh time but is
// still the same logical order.
func sameCreatePayload(incoming, stored models.Order) bool {
	incoming.CreatedAt = time.Time{}
	stored.CreatedAt = time.Time{}

	a, errA := json.Marshal(incoming)
	b, errB := json.Marshal(stored)
	if errA != nil || errB != nil {
		return false
	}
	return string(a) == string(b)
}

func sortNewestFirst(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID < orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

func partialWriteError(cause error, orderID, buyerID string) error {
	return pkgerrors.Wrap(pkgerrors.CodePartialWrite, cause, "global copy written, buyer copy failed").
		WithDetails(map[string]any{
			"order_id": orderID,
			"written":  globalOrderPath(orderID),
			"missing":  buyerOrderPath(buyerID, orderID),
		})
}

func samePointer(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func pointerLabel(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}
