// Package offlinesync reconciles branch devices that work offline. Pull hands out deltas since
// the device's last sync; Push applies records created or edited offline, one transaction each.
package offlinesync

import "github.com/fekuna/omnipos-inventory-service/internal/model"

// EntityKind is the closed set of tables a device may push to.
type EntityKind int

const (
	KindInventory EntityKind = iota + 1
	KindBatch
	KindAdjustment
	KindSale
	KindPurchaseOrder
	KindCustomer
)

var kindTables = map[EntityKind]model.SyncTable{
	KindInventory:     model.TableInventory,
	KindBatch:         model.TableBatches,
	KindAdjustment:    model.TableAdjustments,
	KindSale:          model.TableSales,
	KindPurchaseOrder: model.TablePurchaseOrders,
	KindCustomer:      model.TableCustomers,
}

// KindOf resolves a pushed table name. Pull-only tables are not kinds.
func KindOf(table model.SyncTable) (EntityKind, bool) {
	for k, t := range kindTables {
		if t == table {
			return k, true
		}
	}
	return 0, false
}

func (k EntityKind) Table() model.SyncTable {
	return kindTables[k]
}

// Immutable kinds are only ever created; a re-push of a known local_id is a no-op.
func (k EntityKind) Immutable() bool {
	return k == KindSale || k == KindAdjustment
}

type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

func (o Operation) Valid() bool {
	return o == OpCreate || o == OpUpdate || o == OpDelete
}

type Resolution string

const (
	ServerWins     Resolution = "server_wins"
	ManualRequired Resolution = "manual_required"
)
