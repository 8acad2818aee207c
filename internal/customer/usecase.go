package customer

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/customer/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type UseCase interface {
	// SyncCustomer applies a customer created or edited offline.
	SyncCustomer(ctx context.Context, input *dto.SyncCustomerInput) (*model.Customer, error)
}
