package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/database"
)

type CustomerRepository struct {
	s *Store
}

func (s *Store) Customers() *CustomerRepository {
	return &CustomerRepository{s: s}
}

func (r *CustomerRepository) find(ctx context.Context, match func(model.Customer) bool) (*model.Customer, error) {
	var out *model.Customer
	err := r.s.do(ctx, func(d *dataset) error {
		var best *model.Customer
		for _, c := range d.customers {
			if match(c) && (best == nil || c.CreatedAt.Before(best.CreatedAt)) {
				best = &c
			}
		}
		out = best
		return nil
	})
	return out, err
}

func (r *CustomerRepository) GetByIDForUpdate(ctx context.Context, id string) (*model.Customer, error) {
	return r.find(ctx, func(c model.Customer) bool { return c.ID == id })
}

func (r *CustomerRepository) GetByLocalIDForUpdate(ctx context.Context, organizationID, localID string) (*model.Customer, error) {
	return r.find(ctx, func(c model.Customer) bool {
		return c.OrganizationID == organizationID && c.LocalID != nil && *c.LocalID == localID
	})
}

// LockIdentities only joins the store lock; transactions here never interleave.
func (r *CustomerRepository) LockIdentities(ctx context.Context, _ []string) error {
	return r.s.do(ctx, func(*dataset) error { return nil })
}

func (r *CustomerRepository) FindDuplicate(ctx context.Context, organizationID string, phone, email *string, excludeID string) (*model.Customer, error) {
	hasPhone := phone != nil && *phone != ""
	hasEmail := email != nil && *email != ""
	if !hasPhone && !hasEmail {
		return nil, nil
	}
	return r.find(ctx, func(c model.Customer) bool {
		if c.OrganizationID != organizationID || c.ID == excludeID {
			return false
		}
		if hasPhone && c.Phone != nil && *c.Phone == *phone {
			return true
		}
		return hasEmail && c.Email != nil && strings.EqualFold(*c.Email, *email)
	})
}

func (r *CustomerRepository) Create(ctx context.Context, c *model.Customer) error {
	return r.s.do(ctx, func(d *dataset) error {
		if _, ok := d.customers[c.ID]; ok {
			return fmt.Errorf("%w: customer %s", database.ErrUniqueViolation, c.ID)
		}
		if c.LocalID != nil {
			for _, existing := range d.customers {
				if existing.OrganizationID == c.OrganizationID && existing.LocalID != nil && *existing.LocalID == *c.LocalID {
					return fmt.Errorf("%w: customer local_id %s", database.ErrUniqueViolation, *c.LocalID)
				}
			}
		}
		d.customers[c.ID] = *c
		return nil
	})
}

func (r *CustomerRepository) Update(ctx context.Context, c *model.Customer) error {
	return r.s.do(ctx, func(d *dataset) error {
		if _, ok := d.customers[c.ID]; !ok {
			return fmt.Errorf("customer %s does not exist", c.ID)
		}
		d.customers[c.ID] = *c
		return nil
	})
}

func (r *CustomerRepository) GetPrescriptionForUpdate(ctx context.Context, id string) (*model.Prescription, error) {
	var out *model.Prescription
	err := r.s.do(ctx, func(d *dataset) error {
		if p, ok := d.prescriptions[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *CustomerRepository) UpdatePrescription(ctx context.Context, p *model.Prescription) error {
	return r.s.do(ctx, func(d *dataset) error {
		if _, ok := d.prescriptions[p.ID]; !ok {
			return fmt.Errorf("prescription %s does not exist", p.ID)
		}
		d.prescriptions[p.ID] = *p
		return nil
	})
}
