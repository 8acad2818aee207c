package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

type DrugRepository struct {
	s *Store
}

func (s *Store) Drugs() *DrugRepository {
	return &DrugRepository{s: s}
}

func (r *DrugRepository) GetByIDs(ctx context.Context, organizationID string, ids []string) (map[string]model.Drug, error) {
	out := make(map[string]model.Drug, len(ids))
	err := r.s.do(ctx, func(d *dataset) error {
		for _, id := range ids {
			if drug, ok := d.drugs[id]; ok && drug.OrganizationID == organizationID {
				out[id] = drug
			}
		}
		return nil
	})
	return out, err
}

func (r *DrugRepository) GetByIDForUpdate(ctx context.Context, id string) (*model.Drug, error) {
	var out *model.Drug
	err := r.s.do(ctx, func(d *dataset) error {
		if drug, ok := d.drugs[id]; ok {
			out = &drug
		}
		return nil
	})
	return out, err
}

func (r *DrugRepository) UpdateCostPrice(ctx context.Context, id string, cost decimal.Decimal) error {
	return r.s.do(ctx, func(d *dataset) error {
		drug, ok := d.drugs[id]
		if !ok {
			return fmt.Errorf("drug %s does not exist", id)
		}
		drug.CostPrice = cost
		drug.Version++
		drug.UpdatedAt = time.Now().UTC()
		d.drugs[id] = drug
		return nil
	})
}

type BranchRepository struct {
	s *Store
}

func (s *Store) Branches() *BranchRepository {
	return &BranchRepository{s: s}
}

func (r *BranchRepository) GetByID(ctx context.Context, id string) (*model.Branch, error) {
	var out *model.Branch
	err := r.s.do(ctx, func(d *dataset) error {
		if b, ok := d.branches[id]; ok {
			out = &b
		}
		return nil
	})
	return out, err
}
