package handler

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/rpc"
	"github.com/fekuna/omnipos-inventory-service/internal/receiving"
	"github.com/fekuna/omnipos-inventory-service/internal/receiving/dto"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const serviceName = "omnipos.inventory.v1.ReceivingService"

type ReceiveGoodsRequest struct {
	PurchaseOrderID string                 `json:"purchase_order_id"`
	Lines           []dto.ReceiveLineInput `json:"lines"`
}

type GetPurchaseOrderRequest struct {
	PurchaseOrderID string `json:"purchase_order_id"`
}

type ReceivingServer interface {
	ReceiveGoods(ctx context.Context, req *ReceiveGoodsRequest) (*dto.ReceiptResult, error)
	GetPurchaseOrder(ctx context.Context, req *GetPurchaseOrderRequest) (*model.PurchaseOrder, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ReceivingServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(serviceName, "ReceiveGoods", ReceivingServer.ReceiveGoods),
		rpc.Unary(serviceName, "GetPurchaseOrder", ReceivingServer.GetPurchaseOrder),
	},
	Metadata: "omnipos/inventory/v1/receiving.proto",
}

type ReceivingHandler struct {
	uc     receiving.UseCase
	logger logger.ZapLogger
}

func NewReceivingHandler(uc receiving.UseCase, log logger.ZapLogger) *ReceivingHandler {
	return &ReceivingHandler{uc: uc, logger: log}
}

func (h *ReceivingHandler) ReceiveGoods(ctx context.Context, req *ReceiveGoodsRequest) (*dto.ReceiptResult, error) {
	res, err := h.uc.ReceiveGoods(ctx, &dto.ReceiveGoodsInput{
		OrganizationID:  auth.GetOrganizationID(ctx),
		PurchaseOrderID: req.PurchaseOrderID,
		Lines:           req.Lines,
		ActorID:         auth.GetUserID(ctx),
	})
	if err != nil {
		h.logger.Error("receive goods failed",
			zap.String("purchase_order_id", req.PurchaseOrderID),
			zap.Error(err),
		)
		return nil, rpc.Status(err)
	}
	return res, nil
}

func (h *ReceivingHandler) GetPurchaseOrder(ctx context.Context, req *GetPurchaseOrderRequest) (*model.PurchaseOrder, error) {
	po, err := h.uc.GetPurchaseOrder(ctx, auth.GetOrganizationID(ctx), req.PurchaseOrderID)
	if err != nil {
		return nil, rpc.Status(err)
	}
	return po, nil
}
