package handler

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/rpc"
	"github.com/fekuna/omnipos-inventory-service/internal/sale"
	"github.com/fekuna/omnipos-inventory-service/internal/sale/dto"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const serviceName = "omnipos.inventory.v1.SaleService"

type SaleServer interface {
	ProcessSale(ctx context.Context, req *ProcessSaleRequest) (*dto.SaleResult, error)
	RefundSale(ctx context.Context, req *RefundSaleRequest) (*model.Sale, error)
	GetSale(ctx context.Context, req *GetSaleRequest) (*model.Sale, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*SaleServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(serviceName, "ProcessSale", SaleServer.ProcessSale),
		rpc.Unary(serviceName, "RefundSale", SaleServer.RefundSale),
		rpc.Unary(serviceName, "GetSale", SaleServer.GetSale),
	},
	Metadata: "omnipos/inventory/v1/sale.proto",
}

// SaleHandler leaves branch authorization to the use case, which checks it against the stored sale on refunds.
type SaleHandler struct {
	uc     sale.UseCase
	logger logger.ZapLogger
}

func NewSaleHandler(uc sale.UseCase, log logger.ZapLogger) *SaleHandler {
	return &SaleHandler{uc: uc, logger: log}
}

func (h *SaleHandler) fail(method string, err error) error {
	h.logger.Error("sale call failed", zap.String("method", method), zap.Error(err))
	return rpc.Status(err)
}

func (h *SaleHandler) ProcessSale(ctx context.Context, req *ProcessSaleRequest) (*dto.SaleResult, error) {
	res, err := h.uc.ProcessSale(ctx, req.toInput(auth.GetOrganizationID(ctx), auth.GetUserID(ctx)))
	if err != nil {
		return nil, h.fail("ProcessSale", err)
	}
	return res, nil
}

func (h *SaleHandler) RefundSale(ctx context.Context, req *RefundSaleRequest) (*model.Sale, error) {
	lines := make([]dto.RefundLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = dto.RefundLineInput{SaleLineID: l.SaleLineID, Quantity: l.Quantity}
	}
	s, err := h.uc.RefundSale(ctx, &dto.RefundSaleInput{
		OrganizationID: auth.GetOrganizationID(ctx),
		SaleID:         req.SaleID,
		Lines:          lines,
		Reason:         req.Reason,
		ActorID:        auth.GetUserID(ctx),
	})
	if err != nil {
		return nil, h.fail("RefundSale", err)
	}
	return s, nil
}

func (h *SaleHandler) GetSale(ctx context.Context, req *GetSaleRequest) (*model.Sale, error) {
	s, err := h.uc.GetSale(ctx, auth.GetOrganizationID(ctx), req.SaleID)
	if err != nil {
		return nil, h.fail("GetSale", err)
	}
	return s, nil
}
