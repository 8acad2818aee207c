package repository

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/offlinesync/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

type source struct {
	table string
	// stamp is the column a delta is computed from; adjustments are never updated.
	stamp string
}

var sources = map[model.SyncTable]source{
	model.TableDrugs:          {table: "drugs", stamp: "updated_at"},
	model.TablePriceContracts: {table: "price_contracts", stamp: "updated_at"},
	model.TableCustomers:      {table: "customers", stamp: "updated_at"},
	model.TableInventory:      {table: "inventory", stamp: "updated_at"},
	model.TableBatches:        {table: "batches", stamp: "updated_at"},
	model.TableAdjustments:    {table: "inventory_adjustments", stamp: "created_at"},
	model.TableSales:          {table: "sales", stamp: "updated_at"},
	model.TablePurchaseOrders: {table: "purchase_orders", stamp: "updated_at"},
}

func (r *PGRepository) Changed(ctx context.Context, q *dto.ChangeQuery) (*dto.ChangePage, error) {
	switch q.Table {
	case model.TableDrugs:
		return page(ctx, r.DB, q, func(d *model.Drug) dto.Cursor { return dto.Cursor{At: d.UpdatedAt, ID: d.ID} })
	case model.TablePriceContracts:
		return page(ctx, r.DB, q, func(c *model.PriceContract) dto.Cursor { return dto.Cursor{At: c.UpdatedAt, ID: c.ID} })
	case model.TableCustomers:
		return page(ctx, r.DB, q, func(c *model.Customer) dto.Cursor { return dto.Cursor{At: c.UpdatedAt, ID: c.ID} })
	case model.TableInventory:
		return page(ctx, r.DB, q, func(i *model.Inventory) dto.Cursor { return dto.Cursor{At: i.UpdatedAt, ID: i.ID} })
	case model.TableBatches:
		return page(ctx, r.DB, q, func(b *model.Batch) dto.Cursor { return dto.Cursor{At: b.UpdatedAt, ID: b.ID} })
	case model.TableAdjustments:
		return page(ctx, r.DB, q, func(a *model.Adjustment) dto.Cursor { return dto.Cursor{At: a.CreatedAt, ID: a.ID} })
	case model.TableSales:
		return r.sales(ctx, q)
	case model.TablePurchaseOrders:
		return r.purchaseOrders(ctx, q)
	}
	return nil, fmt.Errorf("table %s has no change feed", q.Table)
}

func fetch[T any](ctx context.Context, db *sqlx.DB, q *dto.ChangeQuery, key func(*T) dto.Cursor) ([]T, *dto.Cursor, error) {
	src := sources[q.Table]
	scopeID := q.BranchID
	scopeColumn := "branch_id"
	if q.Table.Scope() == model.ScopeOrganization {
		scopeID = q.OrganizationID
		scopeColumn = "organization_id"
	}
	after := dto.Cursor{}
	if q.After != nil {
		after = *q.After
	}

	query := fmt.Sprintf(`
        SELECT * FROM %[1]s
        WHERE %[2]s = $1
          AND ($2::timestamptz IS NULL OR %[3]s > $2)
          AND (%[3]s, id::text) > ($3, $4)
        ORDER BY %[3]s, id::text
        LIMIT $5
    `, src.table, scopeColumn, src.stamp)

	var rows []T
	err := postgres.Conn(ctx, db).SelectContext(ctx, &rows, query, scopeID, q.Since, after.At, after.ID, q.Limit+1)
	if err != nil {
		return nil, nil, fmt.Errorf("changes of %s: %w", q.Table, err)
	}

	var next *dto.Cursor
	if len(rows) > q.Limit {
		rows = rows[:q.Limit]
		c := key(&rows[len(rows)-1])
		next = &c
	}
	return rows, next, nil
}

func page[T any](ctx context.Context, db *sqlx.DB, q *dto.ChangeQuery, key func(*T) dto.Cursor) (*dto.ChangePage, error) {
	rows, next, err := fetch(ctx, db, q, key)
	if err != nil {
		return nil, err
	}
	return &dto.ChangePage{Rows: toAny(rows), Next: next}, nil
}

func toAny[T any](rows []T) []any {
	out := make([]any, len(rows))
	for i := range rows {
		out[i] = rows[i]
	}
	return out
}

func (r *PGRepository) sales(ctx context.Context, q *dto.ChangeQuery) (*dto.ChangePage, error) {
	sales, next, err := fetch(ctx, r.DB, q, func(s *model.Sale) dto.Cursor { return dto.Cursor{At: s.UpdatedAt, ID: s.ID} })
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return &dto.ChangePage{}, nil
	}

	ids := make([]string, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
	}
	var lines []model.SaleLine
	if err := r.selectIn(ctx, &lines, `SELECT * FROM sale_lines WHERE sale_id IN (?) ORDER BY sale_id, id`, ids); err != nil {
		return nil, err
	}
	byID := make(map[string][]model.SaleLine, len(sales))
	for _, l := range lines {
		byID[l.SaleID] = append(byID[l.SaleID], l)
	}
	for i := range sales {
		sales[i].Lines = byID[sales[i].ID]
	}
	return &dto.ChangePage{Rows: toAny(sales), Next: next}, nil
}

func (r *PGRepository) purchaseOrders(ctx context.Context, q *dto.ChangeQuery) (*dto.ChangePage, error) {
	orders, next, err := fetch(ctx, r.DB, q, func(po *model.PurchaseOrder) dto.Cursor { return dto.Cursor{At: po.UpdatedAt, ID: po.ID} })
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return &dto.ChangePage{}, nil
	}

	ids := make([]string, len(orders))
	for i, po := range orders {
		ids[i] = po.ID
	}
	var lines []model.PurchaseOrderLine
	if err := r.selectIn(ctx, &lines,
		`SELECT * FROM purchase_order_lines WHERE purchase_order_id IN (?) ORDER BY purchase_order_id, drug_id`, ids); err != nil {
		return nil, err
	}
	byID := make(map[string][]model.PurchaseOrderLine, len(orders))
	for _, l := range lines {
		byID[l.PurchaseOrderID] = append(byID[l.PurchaseOrderID], l)
	}
	for i := range orders {
		orders[i].Lines = byID[orders[i].ID]
	}
	return &dto.ChangePage{Rows: toAny(orders), Next: next}, nil
}

func (r *PGRepository) selectIn(ctx context.Context, dest any, query string, ids []string) error {
	query, args, err := sqlx.In(query, ids)
	if err != nil {
		return err
	}
	return postgres.Conn(ctx, r.DB).SelectContext(ctx, dest, r.DB.Rebind(query), args...)
}
