package handler

import (
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/apperr"
	"github.com/shopspring/decimal"
)

type GetInventoryRequest struct {
	BranchID string `json:"branch_id"`
	DrugID   string `json:"drug_id"`
}

type ListLowStockRequest struct {
	BranchID string `json:"branch_id"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

type ListInventoryResponse struct {
	Items []model.Inventory `json:"items"`
	Total int               `json:"total"`
}

type ListAdjustmentsRequest struct {
	BranchID string `json:"branch_id"`
	DrugID   string `json:"drug_id"`
	Type     string `json:"type"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

type ListAdjustmentsResponse struct {
	Adjustments []model.Adjustment `json:"adjustments"`
	Total       int                `json:"total"`
}

type ListBatchesRequest struct {
	BranchID   string `json:"branch_id"`
	DrugID     string `json:"drug_id"`
	ActiveOnly bool   `json:"active_only"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

type ListBatchesResponse struct {
	Batches []model.Batch `json:"batches"`
	Total   int           `json:"total"`
}

type AdjustStockRequest struct {
	BranchID       string `json:"branch_id"`
	DrugID         string `json:"drug_id"`
	QuantityChange int64  `json:"quantity_change"`
	Type           string `json:"type"`
	Reason         string `json:"reason"`
}

type TransferStockRequest struct {
	FromBranchID string `json:"from_branch_id"`
	ToBranchID   string `json:"to_branch_id"`
	DrugID       string `json:"drug_id"`
	Quantity     int64  `json:"quantity"`
	Reason       string `json:"reason"`
}

type ReservationRequest struct {
	BranchID string `json:"branch_id"`
	DrugID   string `json:"drug_id"`
	Quantity int64  `json:"quantity"`
}

type CreateBatchRequest struct {
	BranchID        string          `json:"branch_id"`
	DrugID          string          `json:"drug_id"`
	BatchNumber     string          `json:"batch_number"`
	Quantity        int64           `json:"quantity"`
	ExpiryDate      time.Time       `json:"expiry_date"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	SupplierID      *string         `json:"supplier_id,omitempty"`
	PurchaseOrderID *string         `json:"purchase_order_id,omitempty"`
}

type ConsumeBatchRequest struct {
	BranchID string `json:"branch_id"`
	BatchID  string `json:"batch_id"`
	Quantity int64  `json:"quantity"`
	Type     string `json:"type"`
	Reason   string `json:"reason"`
}

type TransferStockResponse = dto.TransferResult

func errInvalidManualType(t model.AdjustmentType) error {
	return apperr.Validation("adjustment type %q cannot be recorded manually", t)
}
