package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Inventory struct {
	BaseModel
	Versioned
	OrganizationID   string     `db:"organization_id" json:"organization_id"`
	BranchID         string     `db:"branch_id" json:"branch_id"`
	DrugID           string     `db:"drug_id" json:"drug_id"`
	Quantity         int64      `db:"quantity" json:"quantity"`
	ReservedQuantity int64      `db:"reserved_quantity" json:"reserved_quantity"`
	ReorderPoint     int64      `db:"reorder_point" json:"reorder_point"`
	LastCountedAt    *time.Time `db:"last_counted_at" json:"last_counted_at,omitempty"`
}

func (i *Inventory) Available() int64 {
	return i.Quantity - i.ReservedQuantity
}

type AdjustmentType string

const (
	AdjustmentDamage     AdjustmentType = "damage"
	AdjustmentExpired    AdjustmentType = "expired"
	AdjustmentTheft      AdjustmentType = "theft"
	AdjustmentReturn     AdjustmentType = "return"
	AdjustmentCorrection AdjustmentType = "correction"
	AdjustmentTransfer   AdjustmentType = "transfer"
	AdjustmentSale       AdjustmentType = "sale"
)

func (t AdjustmentType) Valid() bool {
	switch t {
	case AdjustmentDamage, AdjustmentExpired, AdjustmentTheft, AdjustmentReturn,
		AdjustmentCorrection, AdjustmentTransfer, AdjustmentSale:
		return true
	}
	return false
}

// Adjustment is the immutable audit entry for one quantity change.
type Adjustment struct {
	ID               string         `db:"id" json:"id"`
	OrganizationID   string         `db:"organization_id" json:"organization_id"`
	BranchID         string         `db:"branch_id" json:"branch_id"`
	DrugID           string         `db:"drug_id" json:"drug_id"`
	InventoryID      string         `db:"inventory_id" json:"inventory_id"`
	Type             AdjustmentType `db:"type" json:"type"`
	QuantityChange   int64          `db:"quantity_change" json:"quantity_change"`
	PreviousQuantity int64          `db:"previous_quantity" json:"previous_quantity"`
	NewQuantity      int64          `db:"new_quantity" json:"new_quantity"`
	Reason           string         `db:"reason" json:"reason"`
	ActorID          string         `db:"actor_id" json:"actor_id"`
	TransferBranchID *string        `db:"transfer_branch_id" json:"transfer_branch_id,omitempty"`
	ReferenceType    *string        `db:"reference_type" json:"reference_type,omitempty"`
	ReferenceID      *string        `db:"reference_id" json:"reference_id,omitempty"`
	LocalID          *string        `db:"local_id" json:"local_id,omitempty"`
	SyncStatus       SyncStatus     `db:"sync_status" json:"sync_status"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
}

type BatchStatus string

const (
	BatchActive   BatchStatus = "active"
	BatchDepleted BatchStatus = "depleted"
)

type Batch struct {
	BaseModel
	Versioned
	OrganizationID    string          `db:"organization_id" json:"organization_id"`
	BranchID          string          `db:"branch_id" json:"branch_id"`
	DrugID            string          `db:"drug_id" json:"drug_id"`
	BatchNumber       string          `db:"batch_number" json:"batch_number"`
	InitialQuantity   int64           `db:"initial_quantity" json:"initial_quantity"`
	RemainingQuantity int64           `db:"remaining_quantity" json:"remaining_quantity"`
	ExpiryDate        time.Time       `db:"expiry_date" json:"expiry_date"`
	CostPrice         decimal.Decimal `db:"cost_price" json:"cost_price"`
	SupplierID        *string         `db:"supplier_id" json:"supplier_id,omitempty"`
	PurchaseOrderID   *string         `db:"purchase_order_id" json:"purchase_order_id,omitempty"`
	Status            BatchStatus     `db:"status" json:"status"`
}

// Consume takes qty out of the batch and flips it to depleted when it runs out.
func (b *Batch) Consume(qty int64) {
	b.RemainingQuantity -= qty
	if b.RemainingQuantity == 0 {
		b.Status = BatchDepleted
	}
}

type BatchConsumption struct {
	BatchID     string    `json:"batch_id"`
	BatchNumber string    `json:"batch_number"`
	ExpiryDate  time.Time `json:"expiry_date"`
	Quantity    int64     `json:"quantity"`
}
