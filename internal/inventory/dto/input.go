package dto

import (
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

type AdjustStockInput struct {
	OrganizationID   string
	BranchID         string
	DrugID           string
	QuantityChange   int64
	Type             model.AdjustmentType
	Reason           string
	ActorID          string
	TransferBranchID *string
	ReferenceType    *string
	ReferenceID      *string
	LocalID          *string
	// SkipLowStockSignal is set by callers that raise their own signal after the whole operation.
	SkipLowStockSignal bool
}

type TransferInput struct {
	OrganizationID string
	FromBranchID   string
	ToBranchID     string
	DrugID         string
	Quantity       int64
	Reason         string
	ActorID        string
}

type ReservationInput struct {
	BranchID string
	DrugID   string
	Quantity int64
}

type CreateBatchInput struct {
	OrganizationID  string
	BranchID        string
	DrugID          string
	BatchNumber     string
	Quantity        int64
	ExpiryDate      time.Time
	CostPrice       decimal.Decimal
	SupplierID      *string
	PurchaseOrderID *string
	ActorID         string
	LocalID         *string
}

type ConsumeBatchInput struct {
	BranchID string // optional, rejects batches of other branches
	BatchID  string
	Quantity int64
	Type     model.AdjustmentType // defaults to correction
	Reason   string
	ActorID  string
}

// SyncInventoryInput is the full client-side state of one inventory record.
type SyncInventoryInput struct {
	OrganizationID   string
	BranchID         string
	DrugID           string
	LocalID          string
	ClientVersion    int64
	Quantity         int64
	ReservedQuantity int64
	ReorderPoint     int64
	ActorID          string
}

type SyncBatchInput struct {
	OrganizationID    string
	BranchID          string
	DrugID            string
	LocalID           string
	ClientVersion     int64
	BatchNumber       string
	InitialQuantity   int64
	RemainingQuantity int64
	ExpiryDate        time.Time
	CostPrice         decimal.Decimal
	SupplierID        *string
	PurchaseOrderID   *string
}
