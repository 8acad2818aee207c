package inventory

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// UseCase is the only writer of inventory and batch rows. Every mutation joins the transaction
// carried by ctx, so callers compose several operations atomically.
type UseCase interface {
	GetInventory(ctx context.Context, branchID, drugID string) (*model.Inventory, error)
	ListLowStock(ctx context.Context, branchID string, page, pageSize int) ([]model.Inventory, int, error)
	ListAdjustments(ctx context.Context, filters *dto.AdjustmentFilters) ([]model.Adjustment, int, error)
	ListBatches(ctx context.Context, filters *dto.BatchFilters) ([]model.Batch, int, error)
	GetAdjustmentByLocalID(ctx context.Context, branchID, localID string) (*model.Adjustment, error)

	AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.Adjustment, error)
	Transfer(ctx context.Context, input *dto.TransferInput) (*dto.TransferResult, error)
	Reserve(ctx context.Context, input *dto.ReservationInput) (*model.Inventory, error)
	Release(ctx context.Context, input *dto.ReservationInput) (*model.Inventory, error)
	// LockAvailable locks every drug's record in drug id order and checks the requested quantity is available.
	LockAvailable(ctx context.Context, branchID string, quantities map[string]int64) error
	Deplete(ctx context.Context, branchID, drugID string, quantity int64) ([]model.BatchConsumption, error)
	CreateBatch(ctx context.Context, input *dto.CreateBatchInput) (*model.Batch, error)
	ConsumeBatch(ctx context.Context, input *dto.ConsumeBatchInput) (*model.Batch, error)

	SyncInventory(ctx context.Context, input *dto.SyncInventoryInput) (*model.Inventory, error)
	SyncBatch(ctx context.Context, input *dto.SyncBatchInput) (*model.Batch, error)
}
