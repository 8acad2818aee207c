// Package alert is the low-stock signal sink. Delivery is best effort: notifiers log failures and
// never report them to the stock operation that raised the signal.
package alert

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/logger"
	"go.uber.org/zap"
)

type LowStockSignal struct {
	OrganizationID string    `json:"organization_id"`
	BranchID       string    `json:"branch_id"`
	DrugID         string    `json:"drug_id"`
	InventoryID    string    `json:"inventory_id"`
	Quantity       int64     `json:"quantity"`
	ReorderPoint   int64     `json:"reorder_point"`
	RaisedAt       time.Time `json:"raised_at"`
}

func SignalFor(inv *model.Inventory, at time.Time) LowStockSignal {
	return LowStockSignal{
		OrganizationID: inv.OrganizationID,
		BranchID:       inv.BranchID,
		DrugID:         inv.DrugID,
		InventoryID:    inv.ID,
		Quantity:       inv.Quantity,
		ReorderPoint:   inv.ReorderPoint,
		RaisedAt:       at,
	}
}

type Notifier interface {
	NotifyLowStock(ctx context.Context, signal LowStockSignal)
}

type LogNotifier struct {
	logger logger.ZapLogger
}

func NewLogNotifier(log logger.ZapLogger) *LogNotifier {
	return &LogNotifier{logger: log}
}

func (n *LogNotifier) NotifyLowStock(_ context.Context, s LowStockSignal) {
	n.logger.Warn("low stock",
		zap.String("branch_id", s.BranchID),
		zap.String("drug_id", s.DrugID),
		zap.Int64("quantity", s.Quantity),
		zap.Int64("reorder_point", s.ReorderPoint),
	)
}
