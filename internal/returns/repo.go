package returns

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/nmartins/bazario-backend/pkg/docstore"
	"github.com/nmartins/bazario-backend/pkg/enums"
	pkgerrors "github.com/nmartins/bazario-backend/pkg/errors"
	"github.com/nmartins/bazario-backend/pkg/models"
)

const requestsPrefix = "returnRequests/"

// RepositoryConfig tunes the docstore-backed repository.
type RepositoryConfig struct {
	OpTimeout time.Duration
}

type repository struct {
	store     docstore.Store
	opTimeout time.Duration
}

// NewRepository builds the return request repository on top of a document
// store.
func NewRepository(store docstore.Store, cfg RepositoryConfig) (Repository, error) {
	if store == nil {
		return nil, fmt.Errorf("document store required")
	}
	return &repository{store: store, opTimeout: cfg.OpTimeout}, nil
}

func requestPath(requestID string) string {
	return requestsPrefix + requestID
}

func (r *repository) Create(ctx context.Context, request models.ReturnRequest) error {
	if request.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	return r.put(ctx, request)
}

func (r *repository) Get(ctx context.Context, requestID string) (models.ReturnRequest, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	raw, err := r.store.Get(ctx, requestPath(requestID))
	if err == docstore.ErrNotFound {
		return models.ReturnRequest{}, pkgerrors.New(pkgerrors.CodeNotFound, "return request not found")
	}
	if err != nil {
		return models.ReturnRequest{}, pkgerrors.WrapStorage(err, "reading return request")
	}

	var request models.ReturnRequest
	if err := json.Unmarshal(raw, &request); err != nil {
		return models.ReturnRequest{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding return request")
	}
	return request, nil
}

func (r *repository) Update(ctx context.Context, request models.ReturnRequest) error {
	if request.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	return r.put(ctx, request)
}

func (r *repository) ListPending(ctx context.Context) ([]models.ReturnRequest, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	docs, err := r.store.ListPrefix(ctx, requestsPrefix)
	if err != nil {
		return nil, pkgerrors.WrapStorage(err, "listing return requests")
	}

	pending := make([]models.ReturnRequest, 0, len(docs))
	for _, doc := range docs {
		var request models.ReturnRequest
		if err := json.Unmarshal(doc.Value, &request); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding return request").
				WithDetails(map[string]any{"path": doc.Path})
		}
		if request.Status == enums.ReturnRequestStatusPending {
			pending = append(pending, request)
		}
	}

	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].RequestedAt.Equal(pending[j].RequestedAt) {
			return pending[i].ID < pending[j].ID
		}
		return pending[i].RequestedAt.Before(pending[j].RequestedAt)
	})
	return pending, nil
}

func (r *repository) put(ctx context.Context, request models.ReturnRequest) error {
	payload, err := json.Marshal(request)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding return request")
	}

	ctx, cancel := r.bound(ctx)
	defer cancel()
	if err := r.store.Put(ctx, requestPath(request.ID), payload); err != nil {
		return pkgerrors.WrapStorage(err, "writing return request")
	}
	return nil
}

func (r *repository) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.opTimeout)
}
