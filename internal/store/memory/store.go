// Package memory is a process-local implementation of every repository, used as the development
// backend and by usecase tests. Transactions are serialized behind one mutex and undone by
// restoring a snapshot, which gives the same all-or-nothing behaviour as Postgres.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/database"
)

type dataset struct {
	inventory      map[string]model.Inventory
	adjustments    []model.Adjustment
	batches        map[string]model.Batch
	sales          map[string]model.Sale
	purchaseOrders map[string]model.PurchaseOrder
	drugs          map[string]model.Drug
	branches       map[string]model.Branch
	customers      map[string]model.Customer
	prescriptions  map[string]model.Prescription
	priceContracts map[string]model.PriceContract
}

func newDataset() *dataset {
	return &dataset{
		inventory:      map[string]model.Inventory{},
		batches:        map[string]model.Batch{},
		sales:          map[string]model.Sale{},
		purchaseOrders: map[string]model.PurchaseOrder{},
		drugs:          map[string]model.Drug{},
		branches:       map[string]model.Branch{},
		customers:      map[string]model.Customer{},
		prescriptions:  map[string]model.Prescription{},
		priceContracts: map[string]model.PriceContract{},
	}
}

// clone copies every table. Stored values never share mutable state: line slices are copied on
// write, pointer fields are replaced rather than mutated.
func (d *dataset) clone() *dataset {
	return &dataset{
		inventory:      maps.Clone(d.inventory),
		adjustments:    slices.Clone(d.adjustments),
		batches:        maps.Clone(d.batches),
		sales:          maps.Clone(d.sales),
		purchaseOrders: maps.Clone(d.purchaseOrders),
		drugs:          maps.Clone(d.drugs),
		branches:       maps.Clone(d.branches),
		customers:      maps.Clone(d.customers),
		prescriptions:  maps.Clone(d.prescriptions),
		priceContracts: maps.Clone(d.priceContracts),
	}
}

type txKey struct{}

type Store struct {
	mu   sync.Mutex
	data *dataset
}

func NewStore() *Store {
	return &Store{data: newDataset()}
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// do runs fn against the live dataset, taking the store lock unless ctx already holds it.
func (s *Store) do(ctx context.Context, fn func(d *dataset) error) error {
	if s.inTx(ctx) {
		return fn(s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	txCtx, hooks := database.WithCommitHooks(context.WithValue(ctx, txKey{}, s))
	if err := s.run(txCtx, fn); err != nil {
		return err
	}
	hooks.Run()
	return nil
}

func (s *Store) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	committed := false
	defer func() {
		if !committed {
			s.data = snapshot
		}
	}()

	if err = fn(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}

// Seeding helpers for collaborator tables owned by other services.

func (s *Store) PutDrug(d model.Drug) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.drugs[d.ID] = d
}

func (s *Store) PutBranch(b model.Branch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.branches[b.ID] = b
}

func (s *Store) PutCustomer(c model.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.customers[c.ID] = c
}

func (s *Store) PutPrescription(p model.Prescription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.prescriptions[p.ID] = p
}

func (s *Store) PutPriceContract(c model.PriceContract) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.priceContracts[c.ID] = c
}

func (s *Store) PutPurchaseOrder(po model.PurchaseOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	po.Lines = slices.Clone(po.Lines)
	s.data.purchaseOrders[po.ID] = po
}

// CountCustomers is used by tests asserting that no row was created.
func (s *Store) CountCustomers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.customers)
}

func paginate[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	return items[start:min(start+pageSize, len(items))]
}
