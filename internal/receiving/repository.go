package receiving

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*model.PurchaseOrder, error)
	GetByIDForUpdate(ctx context.Context, id string) (*model.PurchaseOrder, error)
	GetByLocalIDForUpdate(ctx context.Context, branchID, localID string) (*model.PurchaseOrder, error)
	// Create stores the header and its lines. A reused local_id yields database.ErrUniqueViolation.
	Create(ctx context.Context, po *model.PurchaseOrder) error
	// Update rewrites the header and upserts every line.
	Update(ctx context.Context, po *model.PurchaseOrder) error
}
