package receiving

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/receiving/dto"
)

type UseCase interface {
	ReceiveGoods(ctx context.Context, input *dto.ReceiveGoodsInput) (*dto.ReceiptResult, error)
	SyncPurchaseOrder(ctx context.Context, input *dto.SyncPurchaseOrderInput) (*model.PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, organizationID, id string) (*model.PurchaseOrder, error)
}
