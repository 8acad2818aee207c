package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type SaleLineInput struct {
	DrugID string `json:"drug_id"`
	// UnitPrice overrides the catalog price, e.g. for contract pricing resolved by the caller.
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
	Quantity        int64            `json:"quantity"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
	TaxPercent      decimal.Decimal  `json:"tax_percent"`
}

type ProcessSaleInput struct {
	OrganizationID   string
	BranchID         string
	CashierID        string
	CustomerID       *string
	PrescriptionID   *string
	Lines            []SaleLineInput
	AmountPaid       decimal.Decimal
	PaymentMethod    string
	PaymentReference *string
	// Set for sales recorded offline.
	LocalID    *string
	SaleNumber string
	SoldAt     *time.Time
}

type RefundLineInput struct {
	SaleLineID string `json:"sale_line_id"`
	Quantity   int64  `json:"quantity"`
}

type RefundSaleInput struct {
	OrganizationID string
	SaleID         string
	// Lines empty refunds everything not refunded yet.
	Lines   []RefundLineInput
	Reason  string
	ActorID string
}
