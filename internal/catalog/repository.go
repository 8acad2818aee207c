// Package catalog exposes the drug catalog and branch directory this service reads from. Both
// are owned by other services; only the drug cost basis is written here, by goods receipt.
package catalog

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

type DrugRepository interface {
	GetByIDs(ctx context.Context, organizationID string, ids []string) (map[string]model.Drug, error)
	GetByIDForUpdate(ctx context.Context, id string) (*model.Drug, error)
	UpdateCostPrice(ctx context.Context, id string, cost decimal.Decimal) error
}

type BranchRepository interface {
	GetByID(ctx context.Context, id string) (*model.Branch, error)
}
