package handler

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/rpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const serviceName = "omnipos.inventory.v1.InventoryService"

type InventoryServer interface {
	GetInventory(ctx context.Context, req *GetInventoryRequest) (*model.Inventory, error)
	ListLowStock(ctx context.Context, req *ListLowStockRequest) (*ListInventoryResponse, error)
	ListAdjustments(ctx context.Context, req *ListAdjustmentsRequest) (*ListAdjustmentsResponse, error)
	ListBatches(ctx context.Context, req *ListBatchesRequest) (*ListBatchesResponse, error)
	AdjustStock(ctx context.Context, req *AdjustStockRequest) (*model.Adjustment, error)
	TransferStock(ctx context.Context, req *TransferStockRequest) (*TransferStockResponse, error)
	ReserveStock(ctx context.Context, req *ReservationRequest) (*model.Inventory, error)
	ReleaseStock(ctx context.Context, req *ReservationRequest) (*model.Inventory, error)
	CreateBatch(ctx context.Context, req *CreateBatchRequest) (*model.Batch, error)
	ConsumeBatch(ctx context.Context, req *ConsumeBatchRequest) (*model.Batch, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*InventoryServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(serviceName, "GetInventory", InventoryServer.GetInventory),
		rpc.Unary(serviceName, "ListLowStock", InventoryServer.ListLowStock),
		rpc.Unary(serviceName, "ListAdjustments", InventoryServer.ListAdjustments),
		rpc.Unary(serviceName, "ListBatches", InventoryServer.ListBatches),
		rpc.Unary(serviceName, "AdjustStock", InventoryServer.AdjustStock),
		rpc.Unary(serviceName, "TransferStock", InventoryServer.TransferStock),
		rpc.Unary(serviceName, "ReserveStock", InventoryServer.ReserveStock),
		rpc.Unary(serviceName, "ReleaseStock", InventoryServer.ReleaseStock),
		rpc.Unary(serviceName, "CreateBatch", InventoryServer.CreateBatch),
		rpc.Unary(serviceName, "ConsumeBatch", InventoryServer.ConsumeBatch),
	},
	Metadata: "omnipos/inventory/v1/inventory.proto",
}

type InventoryHandler struct {
	uc     inventory.UseCase
	authz  auth.BranchAuthorizer
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, authz auth.BranchAuthorizer, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		authz:  authz,
		logger: log,
	}
}

func (h *InventoryHandler) authorize(ctx context.Context, branchIDs ...string) error {
	orgID := auth.GetOrganizationID(ctx)
	for _, id := range branchIDs {
		if err := h.authz.AuthorizeBranch(ctx, orgID, id); err != nil {
			return rpc.Status(err)
		}
	}
	return nil
}

func (h *InventoryHandler) fail(method string, err error) error {
	h.logger.Error("inventory call failed", zap.String("method", method), zap.Error(err))
	return rpc.Status(err)
}

func (h *InventoryHandler) GetInventory(ctx context.Context, req *GetInventoryRequest) (*model.Inventory, error) {
	if err := h.authorize(ctx, req.BranchID); err != nil {
		return nil, err
	}
	inv, err := h.uc.GetInventory(ctx, req.BranchID, req.DrugID)
	if err != nil {
		return nil, h.fail("GetInventory", err)
	}
	return inv, nil
}

func (h *InventoryHandler) ListLowStock(ctx context.Context, req *ListLowStockRequest) (*ListInventoryResponse, error) {
	if err := h.authorize(ctx, req.BranchID); err != nil {
		return nil, err
	}
	items, count, err := h.uc.ListLowStock(ctx, req.BranchID, req.Page, req.PageSize)
	if err != nil {
		return nil, h.fail("ListLowStock", err)
	}
	return &ListInventoryResponse{Items: items, Total: count}, nil
}

func (h *InventoryHandler) ListAdjustments(ctx context.Context, req *ListAdjustmentsRequest) (*ListAdjustmentsResponse, error) {
	if err := h.authorize(ctx, req.BranchID); err != nil {
		return nil, err
	}
	items, count, err := h.uc.ListAdjustments(ctx, &dto.AdjustmentFilters{
		BranchID: req.BranchID,
		DrugID:   req.DrugID,
		Type:     model.AdjustmentType(req.Type),
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, h.fail("ListAdjustments", err)
	}
	return &ListAdjustmentsResponse{Adjustments: items, Total: count}, nil
}

func (h *InventoryHandler) ListBatches(ctx context.Context, req *ListBatchesRequest) (*ListBatchesResponse, error) {
	if err := h.authorize(ctx, req.BranchID); err != nil {
		return nil, err
	}
	items, count, err := h.uc.ListBatches(ctx, &dto.BatchFilters{
		BranchID:   req.BranchID,
		DrugID:     req.DrugID,
		ActiveOnly: req.ActiveOnly,
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
	if err != nil {
		return nil, h.fail("ListBatches", err)
	}
	return &ListBatchesResponse{Batches: items, Total: count}, nil
}

func (h *InventoryHandler) AdjustStock(ctx context.Context, req *AdjustStockRequest) (*model.Adjustment, error) {
	if err := h.authorize(ctx, req.BranchID); err != nil {
		return nil, err
	}
	adjType := model.AdjustmentType(req.Type)
	// sale and transfer adjustments are only written by their own operations
	if adjType == model.AdjustmentSale || adjType == model.AdjustmentTransfer {
		return nil, rpc.Status(errInvalidManualType(adjType))
	}

	adj, err := h.uc.AdjustStock(ctx, &dto.AdjustStockInput{
		OrganizationID: auth.GetOrganizationID(ctx),
		BranchID:       req.BranchID,
		DrugID:         req.DrugID,
		QuantityChange: req.QuantityChange,
		Type:           adjType,
		Reason:         req.Reason,
		ActorID:        auth.GetUserID(ctx),
	})
	if err != nil {
		return nil, h.fail("AdjustStock", err)
	}
	return adj, nil
}

func (h *InventoryHandler) TransferStock(ctx context.Context, req *TransferStockRequest) (*TransferStockResponse, error) {
	if err := h.authorize(ctx, req.FromBranchID, req.ToBranchID); err != nil {
		return nil, err
	}
	res, err := h.uc.Transfer(ctx, &dto.TransferInput{
		OrganizationID: auth.GetOrganizationID(ctx),
		FromBranchID:   req.FromBranchID,
		ToBranchID:     req.ToBranchID,
		DrugID:         req.DrugID,
		Quantity:       req.Quantity,
		Reason:         req.Reason,
		ActorID:        auth.GetUserID(ctx),
	})
	if err != nil {
		return nil, h.fail("TransferStock", err)
	}
	return res, nil
}

func (h *InventoryHandler) ReserveStock(ctx context.Context, req *ReservationRequest) (*model.Inventory, error) {
	if err := h.authorize(ctx, req.BranchID); err != nil {
		return nil, err
	}
	inv, err := h.uc.Reserve(ctx, &dto.ReservationInput{BranchID: req.BranchID, DrugID: req.DrugID, Quantity: req.Quantity})
	if err != nil {
		return nil, h.fail("ReserveStock", err)
	}
	return inv, nil
}

func (h *InventoryHandler) ReleaseStock(ctx context.Context, req *ReservationRequest) (*model.Inventory, error) {
	if err := h.authorize(ctx, req.BranchID); err != nil {
		return nil, err
	}
	inv, err := h.uc.Release(ctx, &dto.ReservationInput{BranchID: req.BranchID, DrugID: req.DrugID, Quantity: req.Quantity})
	if err != nil {
		return nil, h.fail("ReleaseStock", err)
	}
	return inv, nil
}

func (h *InventoryHandler) CreateBatch(ctx context.Context, req *CreateBatchRequest) (*model.Batch, error) {
	if err := h.authorize(ctx, req.BranchID); err != nil {
		return nil, err
	}
	b, err := h.uc.CreateBatch(ctx, &dto.CreateBatchInput{
		OrganizationID:  auth.GetOrganizationID(ctx),
		BranchID:        req.BranchID,
		DrugID:          req.DrugID,
		BatchNumber:     req.BatchNumber,
		Quantity:        req.Quantity,
		ExpiryDate:      req.ExpiryDate,
		CostPrice:       req.CostPrice,
		SupplierID:      req.SupplierID,
		PurchaseOrderID: req.PurchaseOrderID,
		ActorID:         auth.GetUserID(ctx),
	})
	if err != nil {
		return nil, h.fail("CreateBatch", err)
	}
	return b, nil
}

func (h *InventoryHandler) ConsumeBatch(ctx context.Context, req *ConsumeBatchRequest) (*model.Batch, error) {
	if err := h.authorize(ctx, req.BranchID); err != nil {
		return nil, err
	}
	b, err := h.uc.ConsumeBatch(ctx, &dto.ConsumeBatchInput{
		BranchID: req.BranchID,
		BatchID:  req.BatchID,
		Quantity: req.Quantity,
		Type:     model.AdjustmentType(req.Type),
		Reason:   req.Reason,
		ActorID:  auth.GetUserID(ctx),
	})
	if err != nil {
		return nil, h.fail("ConsumeBatch", err)
	}
	return b, nil
}
