package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/database"
)

type InventoryRepository struct {
	s *Store
}

func (s *Store) Inventory() *InventoryRepository {
	return &InventoryRepository{s: s}
}

func (r *InventoryRepository) find(ctx context.Context, match func(model.Inventory) bool) (*model.Inventory, error) {
	var out *model.Inventory
	err := r.s.do(ctx, func(d *dataset) error {
		for _, inv := range d.inventory {
			if match(inv) {
				out = &inv
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *InventoryRepository) GetByDrug(ctx context.Context, branchID, drugID string) (*model.Inventory, error) {
	return r.find(ctx, func(inv model.Inventory) bool {
		return inv.BranchID == branchID && inv.DrugID == drugID
	})
}

func (r *InventoryRepository) GetByDrugForUpdate(ctx context.Context, branchID, drugID string) (*model.Inventory, error) {
	return r.GetByDrug(ctx, branchID, drugID)
}

func (r *InventoryRepository) GetByLocalIDForUpdate(ctx context.Context, branchID, localID string) (*model.Inventory, error) {
	return r.find(ctx, func(inv model.Inventory) bool {
		return inv.BranchID == branchID && inv.LocalID != nil && *inv.LocalID == localID
	})
}

func (r *InventoryRepository) LockOrCreate(ctx context.Context, seed *model.Inventory) (*model.Inventory, error) {
	var out *model.Inventory
	err := r.s.do(ctx, func(d *dataset) error {
		for _, inv := range d.inventory {
			if inv.BranchID == seed.BranchID && inv.DrugID == seed.DrugID {
				out = &inv
				return nil
			}
		}
		d.inventory[seed.ID] = *seed
		created := *seed
		out = &created
		return nil
	})
	return out, err
}

func (r *InventoryRepository) FindAll(ctx context.Context, f *dto.InventoryFilters) ([]model.Inventory, int, error) {
	var items []model.Inventory
	err := r.s.do(ctx, func(d *dataset) error {
		for _, inv := range d.inventory {
			if f.OrganizationID != "" && inv.OrganizationID != f.OrganizationID {
				continue
			}
			if f.BranchID != "" && inv.BranchID != f.BranchID {
				continue
			}
			if f.DrugID != "" && inv.DrugID != f.DrugID {
				continue
			}
			if f.LowStock && !(inv.ReorderPoint > 0 && inv.Quantity <= inv.ReorderPoint) {
				continue
			}
			items = append(items, inv)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	slices.SortFunc(items, func(a, b model.Inventory) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	return paginate(items, f.Page, f.PageSize), len(items), nil
}

func (r *InventoryRepository) Update(ctx context.Context, inv *model.Inventory) error {
	return r.s.do(ctx, func(d *dataset) error {
		if _, ok := d.inventory[inv.ID]; !ok {
			return fmt.Errorf("inventory %s does not exist", inv.ID)
		}
		d.inventory[inv.ID] = *inv
		return nil
	})
}

func (r *InventoryRepository) CreateAdjustment(ctx context.Context, adj *model.Adjustment) error {
	return r.s.do(ctx, func(d *dataset) error {
		if adj.LocalID != nil {
			for _, a := range d.adjustments {
				if a.BranchID == adj.BranchID && a.LocalID != nil && *a.LocalID == *adj.LocalID {
					return fmt.Errorf("%w: adjustment local_id %s", database.ErrUniqueViolation, *adj.LocalID)
				}
			}
		}
		d.adjustments = append(d.adjustments, *adj)
		return nil
	})
}

func (r *InventoryRepository) GetAdjustmentByLocalID(ctx context.Context, branchID, localID string) (*model.Adjustment, error) {
	var out *model.Adjustment
	err := r.s.do(ctx, func(d *dataset) error {
		for _, a := range d.adjustments {
			if a.BranchID == branchID && a.LocalID != nil && *a.LocalID == localID {
				out = &a
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *InventoryRepository) ListAdjustments(ctx context.Context, f *dto.AdjustmentFilters) ([]model.Adjustment, int, error) {
	var items []model.Adjustment
	err := r.s.do(ctx, func(d *dataset) error {
		for _, a := range d.adjustments {
			if f.BranchID != "" && a.BranchID != f.BranchID {
				continue
			}
			if f.DrugID != "" && a.DrugID != f.DrugID {
				continue
			}
			if f.Type != "" && a.Type != f.Type {
				continue
			}
			items = append(items, a)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	// newest first, insertion order breaks ties
	slices.Reverse(items)
	slices.SortStableFunc(items, func(a, b model.Adjustment) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return paginate(items, f.Page, f.PageSize), len(items), nil
}

func (r *InventoryRepository) CreateBatch(ctx context.Context, b *model.Batch) error {
	return r.s.do(ctx, func(d *dataset) error {
		for _, existing := range d.batches {
			if existing.BranchID == b.BranchID && existing.DrugID == b.DrugID && existing.BatchNumber == b.BatchNumber {
				return fmt.Errorf("%w: batch %s", database.ErrUniqueViolation, b.BatchNumber)
			}
		}
		d.batches[b.ID] = *b
		return nil
	})
}

func (r *InventoryRepository) UpdateBatch(ctx context.Context, b *model.Batch) error {
	return r.s.do(ctx, func(d *dataset) error {
		if _, ok := d.batches[b.ID]; !ok {
			return fmt.Errorf("batch %s does not exist", b.ID)
		}
		d.batches[b.ID] = *b
		return nil
	})
}

func (r *InventoryRepository) findBatch(ctx context.Context, match func(model.Batch) bool) (*model.Batch, error) {
	var out *model.Batch
	err := r.s.do(ctx, func(d *dataset) error {
		for _, b := range d.batches {
			if match(b) {
				out = &b
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *InventoryRepository) GetBatch(ctx context.Context, id string) (*model.Batch, error) {
	return r.findBatch(ctx, func(b model.Batch) bool { return b.ID == id })
}

func (r *InventoryRepository) GetBatchForUpdate(ctx context.Context, id string) (*model.Batch, error) {
	return r.findBatch(ctx, func(b model.Batch) bool { return b.ID == id })
}

func (r *InventoryRepository) GetBatchByNumberForUpdate(ctx context.Context, branchID, drugID, batchNumber string) (*model.Batch, error) {
	return r.findBatch(ctx, func(b model.Batch) bool {
		return b.BranchID == branchID && b.DrugID == drugID && b.BatchNumber == batchNumber
	})
}

func (r *InventoryRepository) GetBatchByLocalIDForUpdate(ctx context.Context, branchID, localID string) (*model.Batch, error) {
	return r.findBatch(ctx, func(b model.Batch) bool {
		return b.BranchID == branchID && b.LocalID != nil && *b.LocalID == localID
	})
}

func (r *InventoryRepository) ListDepletableForUpdate(ctx context.Context, branchID, drugID string) ([]model.Batch, error) {
	var items []model.Batch
	err := r.s.do(ctx, func(d *dataset) error {
		for _, b := range d.batches {
			if b.BranchID == branchID && b.DrugID == drugID && b.RemainingQuantity > 0 {
				items = append(items, b)
			}
		}
		return nil
	})
	sortFEFO(items)
	return items, err
}

func (r *InventoryRepository) ListBatches(ctx context.Context, f *dto.BatchFilters) ([]model.Batch, int, error) {
	var items []model.Batch
	err := r.s.do(ctx, func(d *dataset) error {
		for _, b := range d.batches {
			if f.BranchID != "" && b.BranchID != f.BranchID {
				continue
			}
			if f.DrugID != "" && b.DrugID != f.DrugID {
				continue
			}
			if f.ActiveOnly && b.Status != model.BatchActive {
				continue
			}
			items = append(items, b)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sortFEFO(items)
	return paginate(items, f.Page, f.PageSize), len(items), nil
}

func sortFEFO(items []model.Batch) {
	slices.SortFunc(items, func(a, b model.Batch) int {
		if c := a.ExpiryDate.Compare(b.ExpiryDate); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
