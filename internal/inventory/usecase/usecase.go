package usecase

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/alert"
	"github.com/fekuna/omnipos-inventory-service/internal/catalog"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/apperr"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/database"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const referenceBatch = "batch"

type inventoryUseCase struct {
	tx       database.TxManager
	repo     inventory.Repository
	batches  inventory.BatchRepository
	branches catalog.BranchRepository
	notifier alert.Notifier
	logger   logger.ZapLogger
	now      func() time.Time
}

func NewInventoryUseCase(
	tx database.TxManager,
	repo inventory.Repository,
	batches inventory.BatchRepository,
	branches catalog.BranchRepository,
	notifier alert.Notifier,
	log logger.ZapLogger,
) inventory.UseCase {
	return &inventoryUseCase{
		tx:       tx,
		repo:     repo,
		batches:  batches,
		branches: branches,
		notifier: notifier,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (uc *inventoryUseCase) GetInventory(ctx context.Context, branchID, drugID string) (*model.Inventory, error) {
	inv, err := uc.repo.GetByDrug(ctx, branchID, drugID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		// no stock event yet, report an empty record instead of not found
		return &model.Inventory{BranchID: branchID, DrugID: drugID}, nil
	}
	return inv, nil
}

func (uc *inventoryUseCase) ListLowStock(ctx context.Context, branchID string, page, pageSize int) ([]model.Inventory, int, error) {
	return uc.repo.FindAll(ctx, &dto.InventoryFilters{
		BranchID: branchID,
		LowStock: true,
		Page:     page,
		PageSize: pageSize,
	})
}

func (uc *inventoryUseCase) ListAdjustments(ctx context.Context, filters *dto.AdjustmentFilters) ([]model.Adjustment, int, error) {
	return uc.repo.ListAdjustments(ctx, filters)
}

func (uc *inventoryUseCase) ListBatches(ctx context.Context, filters *dto.BatchFilters) ([]model.Batch, int, error) {
	return uc.batches.ListBatches(ctx, filters)
}

func (uc *inventoryUseCase) GetAdjustmentByLocalID(ctx context.Context, branchID, localID string) (*model.Adjustment, error) {
	return uc.repo.GetAdjustmentByLocalID(ctx, branchID, localID)
}

func (uc *inventoryUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.Adjustment, error) {
	if input.QuantityChange == 0 {
		return nil, apperr.Validation("quantity change must not be zero")
	}
	if !input.Type.Valid() {
		return nil, apperr.Validation("unknown adjustment type %q", input.Type)
	}

	var adj *model.Adjustment
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		inv, err := uc.lock(ctx, input.OrganizationID, input.BranchID, input.DrugID)
		if err != nil {
			return err
		}
		adj, err = uc.apply(ctx, inv, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return adj, nil
}

func (uc *inventoryUseCase) Transfer(ctx context.Context, input *dto.TransferInput) (*dto.TransferResult, error) {
	if input.Quantity <= 0 {
		return nil, apperr.Validation("transfer quantity must be positive")
	}
	if input.FromBranchID == input.ToBranchID {
		return nil, &inventory.SameBranchError{BranchID: input.FromBranchID}
	}

	result := &dto.TransferResult{}
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		dest, err := uc.branches.GetByID(ctx, input.ToBranchID)
		if err != nil {
			return err
		}
		if dest == nil {
			return apperr.NotFound("branch", input.ToBranchID)
		}
		if dest.OrganizationID != input.OrganizationID {
			return apperr.Forbidden("branch %s belongs to another organization", input.ToBranchID)
		}
		if !dest.IsActive {
			return apperr.Validation("destination branch %s is inactive", input.ToBranchID)
		}

		// lock in branch id order so opposite transfers cannot deadlock
		first, second := input.FromBranchID, input.ToBranchID
		if second < first {
			first, second = second, first
		}
		locked := make(map[string]*model.Inventory, 2)
		for _, branchID := range []string{first, second} {
			inv, err := uc.lock(ctx, input.OrganizationID, branchID, input.DrugID)
			if err != nil {
				return err
			}
			locked[branchID] = inv
		}

		src, dst := locked[input.FromBranchID], locked[input.ToBranchID]
		if src.Available() < input.Quantity {
			return &inventory.InsufficientStockError{
				BranchID:  src.BranchID,
				DrugID:    src.DrugID,
				Available: src.Available(),
				Requested: input.Quantity,
			}
		}

		to, from := input.ToBranchID, input.FromBranchID
		result.Outgoing, err = uc.apply(ctx, src, &dto.AdjustStockInput{
			OrganizationID:   input.OrganizationID,
			BranchID:         from,
			DrugID:           input.DrugID,
			QuantityChange:   -input.Quantity,
			Type:             model.AdjustmentTransfer,
			Reason:           input.Reason,
			ActorID:          input.ActorID,
			TransferBranchID: &to,
		})
		if err != nil {
			return err
		}
		result.Incoming, err = uc.apply(ctx, dst, &dto.AdjustStockInput{
			OrganizationID:   input.OrganizationID,
			BranchID:         to,
			DrugID:           input.DrugID,
			QuantityChange:   input.Quantity,
			Type:             model.AdjustmentTransfer,
			Reason:           input.Reason,
			ActorID:          input.ActorID,
			TransferBranchID: &from,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("stock transferred",
		zap.String("drug_id", input.DrugID),
		zap.String("from_branch_id", input.FromBranchID),
		zap.String("to_branch_id", input.ToBranchID),
		zap.Int64("quantity", input.Quantity),
	)
	return result, nil
}

func (uc *inventoryUseCase) Reserve(ctx context.Context, input *dto.ReservationInput) (*model.Inventory, error) {
	if input.Quantity <= 0 {
		return nil, apperr.Validation("reservation quantity must be positive")
	}

	var out *model.Inventory
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		inv, err := uc.repo.GetByDrugForUpdate(ctx, input.BranchID, input.DrugID)
		if err != nil {
			return err
		}
		if inv == nil || inv.Available() < input.Quantity {
			var available int64
			if inv != nil {
				available = inv.Available()
			}
			return &inventory.InsufficientStockError{
				BranchID:  input.BranchID,
				DrugID:    input.DrugID,
				Available: available,
				Requested: input.Quantity,
			}
		}

		inv.ReservedQuantity += input.Quantity
		uc.touch(inv)
		out = inv
		return uc.repo.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *inventoryUseCase) Release(ctx context.Context, input *dto.ReservationInput) (*model.Inventory, error) {
	if input.Quantity <= 0 {
		return nil, apperr.Validation("release quantity must be positive")
	}

	var out *model.Inventory
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		inv, err := uc.repo.GetByDrugForUpdate(ctx, input.BranchID, input.DrugID)
		if err != nil {
			return err
		}
		if inv == nil || inv.ReservedQuantity < input.Quantity {
			var reserved int64
			if inv != nil {
				reserved = inv.ReservedQuantity
			}
			return &inventory.OverReleaseError{
				BranchID:  input.BranchID,
				DrugID:    input.DrugID,
				Reserved:  reserved,
				Requested: input.Quantity,
			}
		}

		inv.ReservedQuantity -= input.Quantity
		uc.touch(inv)
		out = inv
		return uc.repo.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *inventoryUseCase) LockAvailable(ctx context.Context, branchID string, quantities map[string]int64) error {
	drugIDs := slices.Sorted(maps.Keys(quantities))
	return uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, drugID := range drugIDs {
			inv, err := uc.repo.GetByDrugForUpdate(ctx, branchID, drugID)
			if err != nil {
				return err
			}
			var available int64
			if inv != nil {
				available = inv.Available()
			}
			if available < quantities[drugID] {
				return &inventory.InsufficientStockError{
					BranchID:  branchID,
					DrugID:    drugID,
					Available: available,
					Requested: quantities[drugID],
				}
			}
		}
		return nil
	})
}

// Deplete consumes quantity from the branch's batches, earliest expiry first. It only touches
// batches; the caller records the matching aggregate change.
func (uc *inventoryUseCase) Deplete(ctx context.Context, branchID, drugID string, quantity int64) ([]model.BatchConsumption, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("deplete quantity must be positive")
	}

	var consumed []model.BatchConsumption
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		batches, err := uc.batches.ListDepletableForUpdate(ctx, branchID, drugID)
		if err != nil {
			return err
		}

		left := quantity
		for i := range batches {
			if left == 0 {
				break
			}
			b := &batches[i]
			take := min(left, b.RemainingQuantity)
			if take <= 0 {
				continue
			}
			b.Consume(take)
			uc.touchBatch(b)
			if err := uc.batches.UpdateBatch(ctx, b); err != nil {
				return fmt.Errorf("update batch %s: %w", b.ID, err)
			}
			consumed = append(consumed, model.BatchConsumption{
				BatchID:     b.ID,
				BatchNumber: b.BatchNumber,
				ExpiryDate:  b.ExpiryDate,
				Quantity:    take,
			})
			left -= take
		}

		if left > 0 {
			uc.logger.Error("batch depletion shortfall",
				zap.String("branch_id", branchID),
				zap.String("drug_id", drugID),
				zap.Int64("requested", quantity),
				zap.Int64("shortfall", left),
			)
			return &inventory.DepletionShortfallError{
				BranchID:  branchID,
				DrugID:    drugID,
				Requested: quantity,
				Shortfall: left,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return consumed, nil
}

func (uc *inventoryUseCase) CreateBatch(ctx context.Context, input *dto.CreateBatchInput) (*model.Batch, error) {
	switch {
	case input.Quantity <= 0:
		return nil, apperr.Validation("batch quantity must be positive")
	case input.BatchNumber == "":
		return nil, apperr.Validation("batch number is required")
	case input.ExpiryDate.IsZero():
		return nil, apperr.Validation("batch expiry date is required")
	case input.CostPrice.IsNegative():
		return nil, apperr.Validation("batch cost price must not be negative")
	}

	duplicate := &inventory.DuplicateBatchError{
		BranchID:    input.BranchID,
		DrugID:      input.DrugID,
		BatchNumber: input.BatchNumber,
	}

	var batch *model.Batch
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		// inventory row before batch rows, the order sales take them in
		inv, err := uc.lock(ctx, input.OrganizationID, input.BranchID, input.DrugID)
		if err != nil {
			return err
		}
		existing, err := uc.batches.GetBatchByNumberForUpdate(ctx, input.BranchID, input.DrugID, input.BatchNumber)
		if err != nil {
			return err
		}
		if existing != nil {
			return duplicate
		}

		now := uc.now()
		batch = &model.Batch{
			BaseModel:         model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
			Versioned:         model.Versioned{Version: 1, SyncStatus: model.SyncStatusSynced, LocalID: input.LocalID},
			OrganizationID:    input.OrganizationID,
			BranchID:          input.BranchID,
			DrugID:            input.DrugID,
			BatchNumber:       input.BatchNumber,
			InitialQuantity:   input.Quantity,
			RemainingQuantity: input.Quantity,
			ExpiryDate:        input.ExpiryDate,
			CostPrice:         input.CostPrice,
			SupplierID:        input.SupplierID,
			PurchaseOrderID:   input.PurchaseOrderID,
			Status:            model.BatchActive,
		}
		if err := uc.batches.CreateBatch(ctx, batch); err != nil {
			if errors.Is(err, database.ErrUniqueViolation) {
				return duplicate
			}
			return err
		}

		refType := referenceBatch
		_, err = uc.apply(ctx, inv, &dto.AdjustStockInput{
			OrganizationID: input.OrganizationID,
			BranchID:       input.BranchID,
			DrugID:         input.DrugID,
			QuantityChange: input.Quantity,
			Type:           model.AdjustmentReturn,
			Reason:         "goods receipt",
			ActorID:        input.ActorID,
			ReferenceType:  &refType,
			ReferenceID:    &batch.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (uc *inventoryUseCase) ConsumeBatch(ctx context.Context, input *dto.ConsumeBatchInput) (*model.Batch, error) {
	if input.Quantity <= 0 {
		return nil, apperr.Validation("consume quantity must be positive")
	}
	adjType := input.Type
	if adjType == "" {
		adjType = model.AdjustmentCorrection
	}
	if !adjType.Valid() {
		return nil, apperr.Validation("unknown adjustment type %q", adjType)
	}

	var batch *model.Batch
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		peek, err := uc.batches.GetBatch(ctx, input.BatchID)
		if err != nil {
			return err
		}
		if peek == nil || (input.BranchID != "" && peek.BranchID != input.BranchID) {
			return apperr.NotFound("batch", input.BatchID)
		}
		// the drug is fixed for a batch, so the inventory row can be locked before the batch
		inv, err := uc.lock(ctx, peek.OrganizationID, peek.BranchID, peek.DrugID)
		if err != nil {
			return err
		}
		b, err := uc.batches.GetBatchForUpdate(ctx, input.BatchID)
		if err != nil {
			return err
		}
		if b == nil {
			return apperr.NotFound("batch", input.BatchID)
		}
		if input.Quantity > b.RemainingQuantity {
			return &inventory.InsufficientBatchQuantityError{
				BatchID:   b.ID,
				Remaining: b.RemainingQuantity,
				Requested: input.Quantity,
			}
		}

		b.Consume(input.Quantity)
		uc.touchBatch(b)
		if err := uc.batches.UpdateBatch(ctx, b); err != nil {
			return err
		}
		batch = b

		refType := referenceBatch
		_, err = uc.apply(ctx, inv, &dto.AdjustStockInput{
			OrganizationID: b.OrganizationID,
			BranchID:       b.BranchID,
			DrugID:         b.DrugID,
			QuantityChange: -input.Quantity,
			Type:           adjType,
			Reason:         input.Reason,
			ActorID:        input.ActorID,
			ReferenceType:  &refType,
			ReferenceID:    &b.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// SyncInventory applies a device's full view of an inventory record. The version check and the
// write happen under the same row lock.
func (uc *inventoryUseCase) SyncInventory(ctx context.Context, input *dto.SyncInventoryInput) (*model.Inventory, error) {
	if input.Quantity < 0 || input.ReservedQuantity < 0 || input.ReservedQuantity > input.Quantity {
		return nil, apperr.Validation("invalid inventory state: quantity %d, reserved %d",
			input.Quantity, input.ReservedQuantity)
	}

	var out *model.Inventory
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		inv, err := uc.repo.GetByLocalIDForUpdate(ctx, input.BranchID, input.LocalID)
		if err != nil {
			return err
		}
		if inv == nil {
			if input.DrugID == "" {
				return apperr.Validation("drug_id is required for a new inventory record")
			}
			inv, err = uc.lock(ctx, input.OrganizationID, input.BranchID, input.DrugID)
			if err != nil {
				return err
			}
		}

		if inv.Version > input.ClientVersion {
			return &apperr.VersionConflictError{
				Entity:        "inventory",
				ID:            inv.ID,
				ServerVersion: inv.Version,
				ClientVersion: input.ClientVersion,
				Current:       *inv,
			}
		}

		inv.ReservedQuantity = input.ReservedQuantity
		inv.ReorderPoint = input.ReorderPoint
		if inv.LocalID == nil {
			localID := input.LocalID
			inv.LocalID = &localID
		}
		if delta := input.Quantity - inv.Quantity; delta != 0 {
			_, err := uc.record(ctx, inv, &dto.AdjustStockInput{
				OrganizationID: inv.OrganizationID,
				BranchID:       inv.BranchID,
				DrugID:         inv.DrugID,
				QuantityChange: delta,
				Type:           model.AdjustmentCorrection,
				Reason:         "offline sync",
				ActorID:        input.ActorID,
			})
			if err != nil {
				return err
			}
		}

		uc.touch(inv)
		out = inv
		return uc.repo.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SyncBatch applies a device's full view of a batch. It never touches the aggregate record,
// which devices push separately.
func (uc *inventoryUseCase) SyncBatch(ctx context.Context, input *dto.SyncBatchInput) (*model.Batch, error) {
	if input.RemainingQuantity < 0 || input.RemainingQuantity > input.InitialQuantity {
		return nil, apperr.Validation("invalid batch state: initial %d, remaining %d",
			input.InitialQuantity, input.RemainingQuantity)
	}

	var out *model.Batch
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err := uc.batches.GetBatchByLocalIDForUpdate(ctx, input.BranchID, input.LocalID)
		if err != nil {
			return err
		}
		if b == nil && input.BatchNumber != "" {
			b, err = uc.batches.GetBatchByNumberForUpdate(ctx, input.BranchID, input.DrugID, input.BatchNumber)
			if err != nil {
				return err
			}
		}

		if b == nil {
			if input.DrugID == "" || input.BatchNumber == "" || input.ExpiryDate.IsZero() {
				return apperr.Validation("drug_id, batch_number and expiry_date are required for a new batch")
			}
			now := uc.now()
			localID := input.LocalID
			out = &model.Batch{
				BaseModel:         model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
				Versioned:         model.Versioned{Version: 1, SyncStatus: model.SyncStatusSynced, LocalID: &localID},
				OrganizationID:    input.OrganizationID,
				BranchID:          input.BranchID,
				DrugID:            input.DrugID,
				BatchNumber:       input.BatchNumber,
				InitialQuantity:   input.InitialQuantity,
				RemainingQuantity: input.RemainingQuantity,
				ExpiryDate:        input.ExpiryDate,
				CostPrice:         input.CostPrice,
				SupplierID:        input.SupplierID,
				PurchaseOrderID:   input.PurchaseOrderID,
				Status:            model.BatchActive,
			}
			if out.RemainingQuantity == 0 {
				out.Status = model.BatchDepleted
			}
			return uc.batches.CreateBatch(ctx, out)
		}

		if b.Version > input.ClientVersion {
			return &apperr.VersionConflictError{
				Entity:        "batch",
				ID:            b.ID,
				ServerVersion: b.Version,
				ClientVersion: input.ClientVersion,
				Current:       *b,
			}
		}
		if input.RemainingQuantity > b.RemainingQuantity {
			return apperr.Validation("batch %s remaining quantity cannot grow from %d to %d",
				b.ID, b.RemainingQuantity, input.RemainingQuantity)
		}

		b.RemainingQuantity = input.RemainingQuantity
		b.Status = model.BatchActive
		if b.RemainingQuantity == 0 {
			b.Status = model.BatchDepleted
		}
		if b.LocalID == nil {
			localID := input.LocalID
			b.LocalID = &localID
		}
		uc.touchBatch(b)
		out = b
		return uc.batches.UpdateBatch(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// lock returns the locked (branch, drug) record, creating an empty one on the first stock event.
func (uc *inventoryUseCase) lock(ctx context.Context, organizationID, branchID, drugID string) (*model.Inventory, error) {
	now := uc.now()
	inv, err := uc.repo.LockOrCreate(ctx, &model.Inventory{
		BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Versioned:      model.Versioned{SyncStatus: model.SyncStatusSynced},
		OrganizationID: organizationID,
		BranchID:       branchID,
		DrugID:         drugID,
	})
	if err != nil {
		return nil, fmt.Errorf("lock inventory: %w", err)
	}
	return inv, nil
}

// apply records the change and persists the locked record with one version bump.
func (uc *inventoryUseCase) apply(ctx context.Context, inv *model.Inventory, input *dto.AdjustStockInput) (*model.Adjustment, error) {
	adj, err := uc.record(ctx, inv, input)
	if err != nil {
		return nil, err
	}
	uc.touch(inv)
	if err := uc.repo.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("update inventory: %w", err)
	}
	return adj, nil
}

// record moves inv.Quantity and writes the audit row. It does not persist inv.
func (uc *inventoryUseCase) record(ctx context.Context, inv *model.Inventory, input *dto.AdjustStockInput) (*model.Adjustment, error) {
	prev := inv.Quantity
	next := prev + input.QuantityChange
	if next < 0 {
		return nil, &inventory.NegativeStockError{
			BranchID: inv.BranchID,
			DrugID:   inv.DrugID,
			Current:  prev,
			Change:   input.QuantityChange,
		}
	}
	if input.QuantityChange < 0 && next < inv.ReservedQuantity {
		return nil, &inventory.InsufficientStockError{
			BranchID:  inv.BranchID,
			DrugID:    inv.DrugID,
			Available: inv.Available(),
			Requested: -input.QuantityChange,
		}
	}
	inv.Quantity = next

	adj := &model.Adjustment{
		ID:               uuid.New().String(),
		OrganizationID:   inv.OrganizationID,
		BranchID:         inv.BranchID,
		DrugID:           inv.DrugID,
		InventoryID:      inv.ID,
		Type:             input.Type,
		QuantityChange:   input.QuantityChange,
		PreviousQuantity: prev,
		NewQuantity:      next,
		Reason:           input.Reason,
		ActorID:          input.ActorID,
		TransferBranchID: input.TransferBranchID,
		ReferenceType:    input.ReferenceType,
		ReferenceID:      input.ReferenceID,
		LocalID:          input.LocalID,
		SyncStatus:       model.SyncStatusSynced,
		CreatedAt:        uc.now(),
	}
	if err := uc.repo.CreateAdjustment(ctx, adj); err != nil {
		return nil, fmt.Errorf("create adjustment: %w", err)
	}

	rp := inv.ReorderPoint
	if !input.SkipLowStockSignal && rp > 0 && prev > rp && next <= rp {
		uc.signalLowStock(ctx, inv)
	}
	return adj, nil
}

func (uc *inventoryUseCase) signalLowStock(ctx context.Context, inv *model.Inventory) {
	signal := alert.SignalFor(inv, uc.now())
	database.AfterCommit(ctx, func() {
		uc.notifier.NotifyLowStock(context.WithoutCancel(ctx), signal)
	})
}

func (uc *inventoryUseCase) touch(inv *model.Inventory) {
	inv.Bump()
	inv.UpdatedAt = uc.now()
}

func (uc *inventoryUseCase) touchBatch(b *model.Batch) {
	b.Bump()
	b.UpdatedAt = uc.now()
}
