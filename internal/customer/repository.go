// Package customer holds customers, their prescriptions and the loyalty rules applied by sales.
package customer

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type Repository interface {
	GetByIDForUpdate(ctx context.Context, id string) (*model.Customer, error)
	GetByLocalIDForUpdate(ctx context.Context, organizationID, localID string) (*model.Customer, error)
	// LockIdentities holds each identity key until the surrounding transaction ends.
	LockIdentities(ctx context.Context, keys []string) error
	// FindDuplicate returns a customer of the organization sharing phone or email, ignoring excludeID.
	FindDuplicate(ctx context.Context, organizationID string, phone, email *string, excludeID string) (*model.Customer, error)
	Create(ctx context.Context, c *model.Customer) error
	Update(ctx context.Context, c *model.Customer) error

	GetPrescriptionForUpdate(ctx context.Context, id string) (*model.Prescription, error)
	UpdatePrescription(ctx context.Context, p *model.Prescription) error
}
