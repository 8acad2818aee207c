package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type SaleStatus string

const (
	SaleCompleted SaleStatus = "completed"
	SaleRefunded  SaleStatus = "refunded"
)

type Sale struct {
	BaseModel
	Versioned
	OrganizationID      string          `db:"organization_id" json:"organization_id"`
	BranchID            string          `db:"branch_id" json:"branch_id"`
	SaleNumber          string          `db:"sale_number" json:"sale_number"`
	CashierID           string          `db:"cashier_id" json:"cashier_id"`
	CustomerID          *string         `db:"customer_id" json:"customer_id,omitempty"`
	PrescriptionID      *string         `db:"prescription_id" json:"prescription_id,omitempty"`
	Subtotal            decimal.Decimal `db:"subtotal" json:"subtotal"`
	DiscountAmount      decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	TaxAmount           decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	TotalAmount         decimal.Decimal `db:"total_amount" json:"total_amount"`
	AmountPaid          decimal.Decimal `db:"amount_paid" json:"amount_paid"`
	ChangeAmount        decimal.Decimal `db:"change_amount" json:"change_amount"`
	PaymentMethod       string          `db:"payment_method" json:"payment_method"`
	PaymentReference    *string         `db:"payment_reference" json:"payment_reference,omitempty"`
	Status              SaleStatus      `db:"status" json:"status"`
	LoyaltyPointsEarned int64           `db:"loyalty_points_earned" json:"loyalty_points_earned"`
	RefundAmount        decimal.Decimal `db:"refund_amount" json:"refund_amount"`
	RefundReason        *string         `db:"refund_reason" json:"refund_reason,omitempty"`
	RefundedAt          *time.Time      `db:"refunded_at" json:"refunded_at,omitempty"`
	Lines               []SaleLine      `db:"-" json:"lines"`
}

type SaleLine struct {
	ID               string          `db:"id" json:"id"`
	SaleID           string          `db:"sale_id" json:"sale_id"`
	DrugID           string          `db:"drug_id" json:"drug_id"`
	DrugName         string          `db:"drug_name" json:"drug_name"`
	DrugSKU          string          `db:"drug_sku" json:"drug_sku"`
	Quantity         int64           `db:"quantity" json:"quantity"`
	UnitPrice        decimal.Decimal `db:"unit_price" json:"unit_price"`
	DiscountPercent  decimal.Decimal `db:"discount_percent" json:"discount_percent"`
	TaxPercent       decimal.Decimal `db:"tax_percent" json:"tax_percent"`
	Subtotal         decimal.Decimal `db:"subtotal" json:"subtotal"`
	DiscountAmount   decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	TaxAmount        decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	Total            decimal.Decimal `db:"total" json:"total"`
	RefundedQuantity int64           `db:"refunded_quantity" json:"refunded_quantity"`
}
