package sale

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type Repository interface {
	// Create stores the header and its lines. A reused local_id yields database.ErrUniqueViolation.
	Create(ctx context.Context, s *model.Sale) error
	GetByID(ctx context.Context, id string) (*model.Sale, error)
	GetByIDForUpdate(ctx context.Context, id string) (*model.Sale, error)
	GetByLocalID(ctx context.Context, branchID, localID string) (*model.Sale, error)
	// Update rewrites the header and the refunded quantity of each line.
	Update(ctx context.Context, s *model.Sale) error
}
