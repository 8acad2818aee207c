package inventory

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// Repository methods suffixed ForUpdate lock the returned row until the ambient transaction ends.
// Lookups return nil, nil when nothing matches.
type Repository interface {
	// Inventory records
	GetByDrug(ctx context.Context, branchID, drugID string) (*model.Inventory, error)
	GetByDrugForUpdate(ctx context.Context, branchID, drugID string) (*model.Inventory, error)
	GetByLocalIDForUpdate(ctx context.Context, branchID, localID string) (*model.Inventory, error)
	// LockOrCreate inserts seed when the (branch, drug) record is missing and returns the locked row.
	LockOrCreate(ctx context.Context, seed *model.Inventory) (*model.Inventory, error)
	FindAll(ctx context.Context, filters *dto.InventoryFilters) ([]model.Inventory, int, error)
	Update(ctx context.Context, inv *model.Inventory) error

	// Adjustments / audit
	CreateAdjustment(ctx context.Context, adj *model.Adjustment) error
	GetAdjustmentByLocalID(ctx context.Context, branchID, localID string) (*model.Adjustment, error)
	ListAdjustments(ctx context.Context, filters *dto.AdjustmentFilters) ([]model.Adjustment, int, error)
}

type BatchRepository interface {
	CreateBatch(ctx context.Context, b *model.Batch) error
	UpdateBatch(ctx context.Context, b *model.Batch) error
	GetBatch(ctx context.Context, id string) (*model.Batch, error)
	GetBatchForUpdate(ctx context.Context, id string) (*model.Batch, error)
	GetBatchByNumberForUpdate(ctx context.Context, branchID, drugID, batchNumber string) (*model.Batch, error)
	GetBatchByLocalIDForUpdate(ctx context.Context, branchID, localID string) (*model.Batch, error)
	// ListDepletableForUpdate returns batches with stock left, earliest expiry first, ties by creation.
	ListDepletableForUpdate(ctx context.Context, branchID, drugID string) ([]model.Batch, error)
	ListBatches(ctx context.Context, filters *dto.BatchFilters) ([]model.Batch, int, error)
}
