package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/database"
)

type PurchaseOrderRepository struct {
	s *Store
}

func (s *Store) PurchaseOrders() *PurchaseOrderRepository {
	return &PurchaseOrderRepository{s: s}
}

func copyPurchaseOrder(po model.PurchaseOrder) *model.PurchaseOrder {
	po.Lines = slices.Clone(po.Lines)
	return &po
}

func (r *PurchaseOrderRepository) GetByID(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	var out *model.PurchaseOrder
	err := r.s.do(ctx, func(d *dataset) error {
		if po, ok := d.purchaseOrders[id]; ok {
			out = copyPurchaseOrder(po)
		}
		return nil
	})
	return out, err
}

func (r *PurchaseOrderRepository) GetByIDForUpdate(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *PurchaseOrderRepository) GetByLocalIDForUpdate(ctx context.Context, branchID, localID string) (*model.PurchaseOrder, error) {
	var out *model.PurchaseOrder
	err := r.s.do(ctx, func(d *dataset) error {
		for _, po := range d.purchaseOrders {
			if po.BranchID == branchID && po.LocalID != nil && *po.LocalID == localID {
				out = copyPurchaseOrder(po)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *PurchaseOrderRepository) Create(ctx context.Context, po *model.PurchaseOrder) error {
	return r.s.do(ctx, func(d *dataset) error {
		if _, ok := d.purchaseOrders[po.ID]; ok {
			return fmt.Errorf("%w: purchase order %s", database.ErrUniqueViolation, po.ID)
		}
		if po.LocalID != nil {
			for _, existing := range d.purchaseOrders {
				if existing.BranchID == po.BranchID && existing.LocalID != nil && *existing.LocalID == *po.LocalID {
					return fmt.Errorf("%w: purchase order local_id %s", database.ErrUniqueViolation, *po.LocalID)
				}
			}
		}
		d.purchaseOrders[po.ID] = *copyPurchaseOrder(*po)
		return nil
	})
}

func (r *PurchaseOrderRepository) Update(ctx context.Context, po *model.PurchaseOrder) error {
	return r.s.do(ctx, func(d *dataset) error {
		if _, ok := d.purchaseOrders[po.ID]; !ok {
			return fmt.Errorf("purchase order %s does not exist", po.ID)
		}
		d.purchaseOrders[po.ID] = *copyPurchaseOrder(*po)
		return nil
	})
}
