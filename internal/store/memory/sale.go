package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/database"
)

type SaleRepository struct {
	s *Store
}

func (s *Store) Sales() *SaleRepository {
	return &SaleRepository{s: s}
}

func copySale(s model.Sale) *model.Sale {
	s.Lines = slices.Clone(s.Lines)
	return &s
}

func (r *SaleRepository) Create(ctx context.Context, sale *model.Sale) error {
	return r.s.do(ctx, func(d *dataset) error {
		if _, ok := d.sales[sale.ID]; ok {
			return fmt.Errorf("%w: sale %s", database.ErrUniqueViolation, sale.ID)
		}
		if sale.LocalID != nil {
			for _, existing := range d.sales {
				if existing.BranchID == sale.BranchID && existing.LocalID != nil && *existing.LocalID == *sale.LocalID {
					return fmt.Errorf("%w: sale local_id %s", database.ErrUniqueViolation, *sale.LocalID)
				}
			}
		}
		d.sales[sale.ID] = *copySale(*sale)
		return nil
	})
}

func (r *SaleRepository) GetByID(ctx context.Context, id string) (*model.Sale, error) {
	var out *model.Sale
	err := r.s.do(ctx, func(d *dataset) error {
		if sale, ok := d.sales[id]; ok {
			out = copySale(sale)
		}
		return nil
	})
	return out, err
}

func (r *SaleRepository) GetByIDForUpdate(ctx context.Context, id string) (*model.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *SaleRepository) GetByLocalID(ctx context.Context, branchID, localID string) (*model.Sale, error) {
	var out *model.Sale
	err := r.s.do(ctx, func(d *dataset) error {
		for _, sale := range d.sales {
			if sale.BranchID == branchID && sale.LocalID != nil && *sale.LocalID == localID {
				out = copySale(sale)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *SaleRepository) Update(ctx context.Context, sale *model.Sale) error {
	return r.s.do(ctx, func(d *dataset) error {
		if _, ok := d.sales[sale.ID]; !ok {
			return fmt.Errorf("sale %s does not exist", sale.ID)
		}
		d.sales[sale.ID] = *copySale(*sale)
		return nil
	})
}
