package sale

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/sale/dto"
)

type UseCase interface {
	ProcessSale(ctx context.Context, input *dto.ProcessSaleInput) (*dto.SaleResult, error)
	RefundSale(ctx context.Context, input *dto.RefundSaleInput) (*model.Sale, error)
	GetSale(ctx context.Context, organizationID, id string) (*model.Sale, error)
	GetByLocalID(ctx context.Context, branchID, localID string) (*model.Sale, error)
}
