package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Drug struct {
	BaseModel
	OrganizationID       string          `db:"organization_id" json:"organization_id"`
	SKU                  string          `db:"sku" json:"sku"`
	Name                 string          `db:"name" json:"name"`
	RequiresPrescription bool            `db:"requires_prescription" json:"requires_prescription"`
	UnitPrice            decimal.Decimal `db:"unit_price" json:"unit_price"`
	CostPrice            decimal.Decimal `db:"cost_price" json:"cost_price"`
	IsActive             bool            `db:"is_active" json:"is_active"`
	Version              int64           `db:"version" json:"version"`
}

type Branch struct {
	BaseModel
	OrganizationID string `db:"organization_id" json:"organization_id"`
	Name           string `db:"name" json:"name"`
	IsActive       bool   `db:"is_active" json:"is_active"`
}

// PriceContract is maintained by the contracts service; branches only pull it.
type PriceContract struct {
	BaseModel
	OrganizationID  string          `db:"organization_id" json:"organization_id"`
	CustomerID      *string         `db:"customer_id" json:"customer_id,omitempty"`
	DrugID          string          `db:"drug_id" json:"drug_id"`
	DiscountPercent decimal.Decimal `db:"discount_percent" json:"discount_percent"`
	ValidFrom       time.Time       `db:"valid_from" json:"valid_from"`
	ValidTo         *time.Time      `db:"valid_to" json:"valid_to,omitempty"`
}
