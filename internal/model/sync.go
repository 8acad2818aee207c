package model

// SyncTable names a table as it appears in pull and push payloads.
type SyncTable string

const (
	TableDrugs          SyncTable = "drugs"
	TablePriceContracts SyncTable = "price_contracts"
	TableCustomers      SyncTable = "customers"
	TableInventory      SyncTable = "inventory"
	TableBatches        SyncTable = "batches"
	TableAdjustments    SyncTable = "adjustments"
	TableSales          SyncTable = "sales"
	TablePurchaseOrders SyncTable = "purchase_orders"
)

// PullTables is every table a branch can pull, in the order deltas are returned.
var PullTables = []SyncTable{
	TableDrugs, TablePriceContracts, TableCustomers,
	TableInventory, TableBatches, TableAdjustments, TableSales, TablePurchaseOrders,
}

type SyncScope int

const (
	ScopeOrganization SyncScope = iota
	ScopeBranch
)

func (t SyncTable) Scope() SyncScope {
	switch t {
	case TableDrugs, TablePriceContracts, TableCustomers:
		return ScopeOrganization
	default:
		return ScopeBranch
	}
}

func (t SyncTable) Pullable() bool {
	for _, p := range PullTables {
		if p == t {
			return true
		}
	}
	return false
}
