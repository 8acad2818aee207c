package dto

import "github.com/fekuna/omnipos-inventory-service/internal/model"

type LineConsumption struct {
	SaleLineID string                   `json:"sale_line_id"`
	DrugID     string                   `json:"drug_id"`
	Batches    []model.BatchConsumption `json:"batches"`
}

type SaleResult struct {
	Sale         *model.Sale       `json:"sale"`
	Consumptions []LineConsumption `json:"consumptions"`
}
