package dto

import (
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

// Payload shapes per pushed table.

type InventoryPayload struct {
	DrugID           string `json:"drug_id"`
	Quantity         int64  `json:"quantity"`
	ReservedQuantity int64  `json:"reserved_quantity"`
	ReorderPoint     int64  `json:"reorder_point"`
}

type BatchPayload struct {
	DrugID            string          `json:"drug_id"`
	BatchNumber       string          `json:"batch_number"`
	InitialQuantity   int64           `json:"initial_quantity"`
	RemainingQuantity int64           `json:"remaining_quantity"`
	ExpiryDate        time.Time       `json:"expiry_date"`
	CostPrice         decimal.Decimal `json:"cost_price"`
	SupplierID        *string         `json:"supplier_id,omitempty"`
	PurchaseOrderID   *string         `json:"purchase_order_id,omitempty"`
}

type AdjustmentPayload struct {
	DrugID         string               `json:"drug_id"`
	QuantityChange int64                `json:"quantity_change"`
	Type           model.AdjustmentType `json:"type"`
	Reason         string               `json:"reason"`
}

type SaleLinePayload struct {
	DrugID          string           `json:"drug_id"`
	Quantity        int64            `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
	TaxPercent      decimal.Decimal  `json:"tax_percent"`
}

type SalePayload struct {
	SaleNumber string  `json:"sale_number"`
	CashierID  string  `json:"cashier_id"`
	CustomerID *string `json:"customer_id,omitempty"`
	// CustomerLocalID refers to a customer created offline and pushed earlier.
	CustomerLocalID  *string           `json:"customer_local_id,omitempty"`
	PrescriptionID   *string           `json:"prescription_id,omitempty"`
	Lines            []SaleLinePayload `json:"lines"`
	AmountPaid       decimal.Decimal   `json:"amount_paid"`
	PaymentMethod    string            `json:"payment_method"`
	PaymentReference *string           `json:"payment_reference,omitempty"`
	SoldAt           *time.Time        `json:"sold_at,omitempty"`
}

type PurchaseOrderLinePayload struct {
	DrugID          string          `json:"drug_id"`
	OrderedQuantity int64           `json:"ordered_quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
}

type PurchaseOrderPayload struct {
	SupplierID  string                     `json:"supplier_id"`
	OrderNumber string                     `json:"order_number"`
	Status      model.PurchaseOrderStatus  `json:"status"`
	Lines       []PurchaseOrderLinePayload `json:"lines"`
}

type CustomerPayload struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
}
