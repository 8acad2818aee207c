package dto

import (
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

type CostUpdate struct {
	DrugID   string          `json:"drug_id"`
	Previous decimal.Decimal `json:"previous"`
	Current  decimal.Decimal `json:"current"`
}

type ReceiptResult struct {
	PurchaseOrder *model.PurchaseOrder `json:"purchase_order"`
	Batches       []model.Batch        `json:"batches"`
	CostUpdates   []CostUpdate         `json:"cost_updates"`
}
