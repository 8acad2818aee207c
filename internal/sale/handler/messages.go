package handler

import (
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/sale/dto"
	"github.com/shopspring/decimal"
)

type SaleLineRequest struct {
	DrugID          string           `json:"drug_id"`
	Quantity        int64            `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
	TaxPercent      decimal.Decimal  `json:"tax_percent"`
}

type ProcessSaleRequest struct {
	BranchID         string            `json:"branch_id"`
	CustomerID       *string           `json:"customer_id,omitempty"`
	PrescriptionID   *string           `json:"prescription_id,omitempty"`
	Lines            []SaleLineRequest `json:"lines"`
	AmountPaid       decimal.Decimal   `json:"amount_paid"`
	PaymentMethod    string            `json:"payment_method"`
	PaymentReference *string           `json:"payment_reference,omitempty"`
	SaleNumber       string            `json:"sale_number,omitempty"`
	SoldAt           *time.Time        `json:"sold_at,omitempty"`
}

func (r *ProcessSaleRequest) toInput(orgID, cashierID string) *dto.ProcessSaleInput {
	lines := make([]dto.SaleLineInput, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = dto.SaleLineInput{
			DrugID:          l.DrugID,
			UnitPrice:       l.UnitPrice,
			Quantity:        l.Quantity,
			DiscountPercent: l.DiscountPercent,
			TaxPercent:      l.TaxPercent,
		}
	}
	return &dto.ProcessSaleInput{
		OrganizationID:   orgID,
		BranchID:         r.BranchID,
		CashierID:        cashierID,
		CustomerID:       r.CustomerID,
		PrescriptionID:   r.PrescriptionID,
		Lines:            lines,
		AmountPaid:       r.AmountPaid,
		PaymentMethod:    r.PaymentMethod,
		PaymentReference: r.PaymentReference,
		SaleNumber:       r.SaleNumber,
		SoldAt:           r.SoldAt,
	}
}

type RefundLineRequest struct {
	SaleLineID string `json:"sale_line_id"`
	Quantity   int64  `json:"quantity"`
}

type RefundSaleRequest struct {
	SaleID string              `json:"sale_id"`
	Lines  []RefundLineRequest `json:"lines"`
	Reason string              `json:"reason"`
}

type GetSaleRequest struct {
	SaleID string `json:"sale_id"`
}
