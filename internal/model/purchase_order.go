package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseOrderStatus string

const (
	PurchaseOrderDraft     PurchaseOrderStatus = "draft"
	PurchaseOrderPending   PurchaseOrderStatus = "pending"
	PurchaseOrderApproved  PurchaseOrderStatus = "approved"
	PurchaseOrderOrdered   PurchaseOrderStatus = "ordered"
	PurchaseOrderReceived  PurchaseOrderStatus = "received"
	PurchaseOrderCancelled PurchaseOrderStatus = "cancelled"
)

// Receivable reports whether goods may be booked against an order in this status.
func (s PurchaseOrderStatus) Receivable() bool {
	return s == PurchaseOrderApproved || s == PurchaseOrderOrdered
}

// Closed orders no longer accept edits.
func (s PurchaseOrderStatus) Closed() bool {
	return s == PurchaseOrderReceived || s == PurchaseOrderCancelled
}

type PurchaseOrder struct {
	BaseModel
	Versioned
	OrganizationID string              `db:"organization_id" json:"organization_id"`
	BranchID       string              `db:"branch_id" json:"branch_id"`
	SupplierID     string              `db:"supplier_id" json:"supplier_id"`
	OrderNumber    string              `db:"order_number" json:"order_number"`
	Status         PurchaseOrderStatus `db:"status" json:"status"`
	TotalAmount    decimal.Decimal     `db:"total_amount" json:"total_amount"`
	ReceivedAt     *time.Time          `db:"received_at" json:"received_at,omitempty"`
	Lines          []PurchaseOrderLine `db:"-" json:"lines"`
}

type PurchaseOrderLine struct {
	ID               string          `db:"id" json:"id"`
	PurchaseOrderID  string          `db:"purchase_order_id" json:"purchase_order_id"`
	DrugID           string          `db:"drug_id" json:"drug_id"`
	OrderedQuantity  int64           `db:"ordered_quantity" json:"ordered_quantity"`
	ReceivedQuantity int64           `db:"received_quantity" json:"received_quantity"`
	UnitCost         decimal.Decimal `db:"unit_cost" json:"unit_cost"`
}

func (l *PurchaseOrderLine) Outstanding() int64 {
	return l.OrderedQuantity - l.ReceivedQuantity
}

// FullyReceived reports whether every line got its ordered quantity.
func (po *PurchaseOrder) FullyReceived() bool {
	for _, l := range po.Lines {
		if l.ReceivedQuantity < l.OrderedQuantity {
			return false
		}
	}
	return true
}
