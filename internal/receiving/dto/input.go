package dto

import (
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

type ReceiveLineInput struct {
	LineID   string `json:"line_id"`
	Quantity int64  `json:"quantity"`
	// BatchNumber defaults to one derived from the order number.
	BatchNumber string    `json:"batch_number,omitempty"`
	ExpiryDate  time.Time `json:"expiry_date"`
	// UnitCost overrides the ordered unit cost, e.g. when the invoice differs.
	UnitCost *decimal.Decimal `json:"unit_cost,omitempty"`
}

type ReceiveGoodsInput struct {
	OrganizationID  string
	PurchaseOrderID string
	Lines           []ReceiveLineInput
	ActorID         string
}

type SyncPurchaseOrderLine struct {
	DrugID          string          `json:"drug_id"`
	OrderedQuantity int64           `json:"ordered_quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
}

// SyncPurchaseOrderInput is the full client-side state of one purchase order. Received
// quantities are never taken from the client.
type SyncPurchaseOrderInput struct {
	OrganizationID string
	BranchID       string
	LocalID        string
	ClientVersion  int64
	Delete         bool
	SupplierID     string
	OrderNumber    string
	Status         model.PurchaseOrderStatus
	Lines          []SyncPurchaseOrderLine
}
