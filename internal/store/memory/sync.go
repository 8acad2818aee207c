package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/offlinesync/dto"
)

type ChangeRepository struct {
	s *Store
}

func (s *Store) Changes() *ChangeRepository {
	return &ChangeRepository{s: s}
}

func (r *ChangeRepository) Changed(ctx context.Context, q *dto.ChangeQuery) (*dto.ChangePage, error) {
	org := func(id string) bool { return id == q.OrganizationID }
	branch := func(id string) bool { return id == q.BranchID }

	var page *dto.ChangePage
	err := r.s.do(ctx, func(d *dataset) error {
		switch q.Table {
		case model.TableDrugs:
			page = changes(slices.Collect(maps.Values(d.drugs)), q, func(x *model.Drug) (bool, dto.Cursor) {
				return org(x.OrganizationID), dto.Cursor{At: x.UpdatedAt, ID: x.ID}
			})
		case model.TablePriceContracts:
			page = changes(slices.Collect(maps.Values(d.priceContracts)), q, func(x *model.PriceContract) (bool, dto.Cursor) {
				return org(x.OrganizationID), dto.Cursor{At: x.UpdatedAt, ID: x.ID}
			})
		case model.TableCustomers:
			page = changes(slices.Collect(maps.Values(d.customers)), q, func(x *model.Customer) (bool, dto.Cursor) {
				return org(x.OrganizationID), dto.Cursor{At: x.UpdatedAt, ID: x.ID}
			})
		case model.TableInventory:
			page = changes(slices.Collect(maps.Values(d.inventory)), q, func(x *model.Inventory) (bool, dto.Cursor) {
				return branch(x.BranchID), dto.Cursor{At: x.UpdatedAt, ID: x.ID}
			})
		case model.TableBatches:
			page = changes(slices.Collect(maps.Values(d.batches)), q, func(x *model.Batch) (bool, dto.Cursor) {
				return branch(x.BranchID), dto.Cursor{At: x.UpdatedAt, ID: x.ID}
			})
		case model.TableAdjustments:
			page = changes(d.adjustments, q, func(x *model.Adjustment) (bool, dto.Cursor) {
				return branch(x.BranchID), dto.Cursor{At: x.CreatedAt, ID: x.ID}
			})
		case model.TableSales:
			page = changes(slices.Collect(maps.Values(d.sales)), q, func(x *model.Sale) (bool, dto.Cursor) {
				return branch(x.BranchID), dto.Cursor{At: x.UpdatedAt, ID: x.ID}
			})
		case model.TablePurchaseOrders:
			page = changes(slices.Collect(maps.Values(d.purchaseOrders)), q, func(x *model.PurchaseOrder) (bool, dto.Cursor) {
				return branch(x.BranchID), dto.Cursor{At: x.UpdatedAt, ID: x.ID}
			})
		default:
			return fmt.Errorf("table %s has no change feed", q.Table)
		}
		return nil
	})
	return page, err
}

func changes[T any](items []T, q *dto.ChangeQuery, key func(*T) (bool, dto.Cursor)) *dto.ChangePage {
	type row struct {
		item T
		at   dto.Cursor
	}

	var rows []row
	for i := range items {
		ok, c := key(&items[i])
		if !ok {
			continue
		}
		if q.Since != nil && !c.At.After(*q.Since) {
			continue
		}
		if q.After != nil && compareCursor(c, *q.After) <= 0 {
			continue
		}
		rows = append(rows, row{item: items[i], at: c})
	}
	slices.SortFunc(rows, func(a, b row) int { return compareCursor(a.at, b.at) })

	page := &dto.ChangePage{}
	for i, r := range rows {
		if q.Limit > 0 && i == q.Limit {
			next := rows[i-1].at
			page.Next = &next
			break
		}
		page.Rows = append(page.Rows, r.item)
	}
	return page
}

func compareCursor(a, b dto.Cursor) int {
	if c := a.At.Compare(b.At); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
