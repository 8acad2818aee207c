package dto

import "github.com/fekuna/omnipos-inventory-service/internal/model"

type InventoryFilters struct {
	OrganizationID string
	BranchID       string
	DrugID         string
	LowStock       bool // quantity <= reorder_point and reorder_point > 0
	Page           int
	PageSize       int
}

type AdjustmentFilters struct {
	BranchID string
	DrugID   string
	Type     model.AdjustmentType
	Page     int
	PageSize int
}

type BatchFilters struct {
	BranchID   string
	DrugID     string
	ActiveOnly bool
	Page       int
	PageSize   int
}

type TransferResult struct {
	Outgoing *model.Adjustment `json:"outgoing"`
	Incoming *model.Adjustment `json:"incoming"`
}
