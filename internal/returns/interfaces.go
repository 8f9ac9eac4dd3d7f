package returns

import (
	"context"

	"github.com/nmartins/bazario-backend/pkg/models"
)

// Repository persists return request records. Requests live under a
// single path each; the order copies they reference are owned by the
// orders repository.
type Repository interface {
	Create(ctx context.Context, request models.ReturnRequest) error
	Get(ctx context.Context, requestID string) (models.ReturnRequest, error)
	Update(ctx context.Context, request models.ReturnRequest) error
	// ListPending returns open requests oldest-first so operators clear
	// the longest-waiting buyer first.
	ListPending(ctx context.Context) ([]models.ReturnRequest, error)
}
