package usecase_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/alert"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/customer"
	custusecase "github.com/fekuna/omnipos-inventory-service/internal/customer/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	invdto "github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	invusecase "github.com/fekuna/omnipos-inventory-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/offlinesync"
	"github.com/fekuna/omnipos-inventory-service/internal/offlinesync/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/offlinesync/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/apperr"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/logger"
	rcvusecase "github.com/fekuna/omnipos-inventory-service/internal/receiving/usecase"
	saleusecase "github.com/fekuna/omnipos-inventory-service/internal/sale/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/store/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap/zaptest"
)

const (
	org     = "org-1"
	branch  = "branch-1"
	branch2 = "branch-2"
	drugA  = "drug-a"
	drugB  = "drug-b"
)

type fakeLocker struct {
	mu    sync.Mutex
	held  map[string]string
	taken int
}

func (l *fakeLocker) AcquireLock(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return false, nil
	}
	l.held[key] = value
	l.taken++
	return true, nil
}

func (l *fakeLocker) ReleaseLock(_ context.Context, key, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == value {
		delete(l.held, key)
	}
	return nil
}

type fixture struct {
	store  *memory.Store
	inv    inventory.UseCase
	uc     offlinesync.UseCase
	locker *fakeLocker
}

func newFixture(t *testing.T, pageSize int) *fixture {
	return buildFixture(t, usecase.Config{PullPageSize: pageSize, MaxPushRecords: 5, LockTTL: time.Minute, LockRetries: 2}, nil)
}

// buildFixture wires every usecase over one memory store. customers, when set, replaces the
// customer repository the sync path writes through.
func buildFixture(t *testing.T, cfg usecase.Config, customers func(*memory.CustomerRepository) customer.Repository) *fixture {
	t.Helper()
	store := memory.NewStore()
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	store.PutBranch(model.Branch{BaseModel: model.BaseModel{ID: branch}, OrganizationID: org, IsActive: true})
	store.PutBranch(model.Branch{BaseModel: model.BaseModel{ID: branch2}, OrganizationID: org, IsActive: true})
	store.PutDrug(model.Drug{
		BaseModel: model.BaseModel{ID: drugA, CreatedAt: base, UpdatedAt: base}, OrganizationID: org,
		SKU: "A-1", Name: "Cetirizine 10mg", UnitPrice: decimal.NewFromInt(10), IsActive: true,
	})
	store.PutDrug(model.Drug{
		BaseModel: model.BaseModel{ID: drugB, CreatedAt: base, UpdatedAt: base.Add(time.Second)}, OrganizationID: org,
		SKU: "B-1", Name: "Loratadine 10mg", UnitPrice: decimal.NewFromInt(8), IsActive: true,
	})
	store.PutDrug(model.Drug{
		BaseModel: model.BaseModel{ID: "drug-other-org", UpdatedAt: base}, OrganizationID: "org-2",
		SKU: "X-1", Name: "Other", IsActive: true,
	})

	log := logger.Wrap(zaptest.NewLogger(t))
	tracer := noop.NewTracerProvider().Tracer("test")
	notifier := alert.NewLogNotifier(log)

	inv := invusecase.NewInventoryUseCase(store, store.Inventory(), store.Inventory(), store.Branches(), notifier, log)
	sales := saleusecase.NewSaleUseCase(saleusecase.Deps{
		Tx:        store,
		Sales:     store.Sales(),
		Inventory: inv,
		Drugs:     store.Drugs(),
		Branches:  store.Branches(),
		Customers: store.Customers(),
		Authz:     auth.AllowAll{},
		Notifier:  notifier,
		Tracer:    tracer,
		Logger:    log,
	})
	receiving := rcvusecase.NewReceivingUseCase(rcvusecase.Deps{
		Tx:        store,
		Orders:    store.PurchaseOrders(),
		Inventory: inv,
		Drugs:     store.Drugs(),
		Authz:     auth.AllowAll{},
		Tracer:    tracer,
		Logger:    log,
	})
	var custRepo customer.Repository = store.Customers()
	if customers != nil {
		custRepo = customers(store.Customers())
	}
	locker := &fakeLocker{held: map[string]string{}}
	uc := usecase.NewSyncUseCase(usecase.Deps{
		Config:    cfg,
		Changes:   store.Changes(),
		Locker:    locker,
		Inventory: inv,
		Sales:     sales,
		Receiving: receiving,
		Customers: custusecase.NewCustomerUseCase(store, custRepo, log),
		Directory: store.Customers(),
		Tracer:    tracer,
		Logger:    log,
	})
	return &fixture{store: store, inv: inv, uc: uc, locker: locker}
}

func (f *fixture) stock(t *testing.T, drugID string, qty int64) {
	t.Helper()
	_, err := f.inv.CreateBatch(context.Background(), &invdto.CreateBatchInput{
		OrganizationID: org,
		BranchID:       branch,
		DrugID:         drugID,
		BatchNumber:    "LOT-" + drugID,
		Quantity:       qty,
		ExpiryDate:     time.Now().AddDate(1, 0, 0),
		CostPrice:      decimal.NewFromInt(3),
	})
	require.NoError(t, err)
}

func (f *fixture) quantity(t *testing.T, drugID string) int64 {
	t.Helper()
	inv, err := f.inv.GetInventory(context.Background(), branch, drugID)
	require.NoError(t, err)
	return inv.Quantity
}

func (f *fixture) push(t *testing.T, records ...dto.PushRecord) *dto.PushResult {
	t.Helper()
	res, err := f.uc.Push(context.Background(), &dto.PushInput{
		OrganizationID: org,
		BranchID:       branch,
		ActorID:        "device-user",
		Records:        records,
	})
	require.NoError(t, err)
	return res
}

func record(t *testing.T, table model.SyncTable, localID, op string, version int64, payload any) dto.PushRecord {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return dto.PushRecord{TableName: table, LocalID: localID, Operation: op, SyncVersion: version, Payload: raw}
}

func saleRecord(t *testing.T, localID string, qty int64) dto.PushRecord {
	return record(t, model.TableSales, localID, "create", 1, dto.SalePayload{
		SaleNumber:    "OFF-" + localID,
		CashierID:     "cashier-1",
		Lines:         []dto.SaleLinePayload{{DrugID: drugA, Quantity: qty}},
		AmountPaid:    decimal.NewFromInt(100),
		PaymentMethod: "cash",
	})
}

func TestPush_SaleIsIdempotent(t *testing.T) {
	f := newFixture(t, 100)
	f.stock(t, drugA, 10)

	first := f.push(t, saleRecord(t, "sale-1", 2))
	require.Len(t, first.Accepted, 1)
	assert.Equal(t, int64(8), f.quantity(t, drugA))

	second := f.push(t, saleRecord(t, "sale-1", 2))
	require.Len(t, second.Accepted, 1)
	assert.Equal(t, first.Accepted[0].ServerID, second.Accepted[0].ServerID)
	assert.Equal(t, int64(8), f.quantity(t, drugA))
	assert.Equal(t, 2, f.locker.taken)
	assert.Empty(t, f.locker.held)
}

func TestPush_AdjustmentIsIdempotent(t *testing.T) {
	f := newFixture(t, 100)
	f.stock(t, drugA, 10)
	rec := record(t, model.TableAdjustments, "adj-1", "create", 1, dto.AdjustmentPayload{
		DrugID: drugA, QuantityChange: -3, Type: model.AdjustmentDamage, Reason: "dropped",
	})

	f.push(t, rec)
	res := f.push(t, rec)

	require.Len(t, res.Accepted, 1)
	assert.Equal(t, int64(7), f.quantity(t, drugA))
}

func TestPush_StaleInventoryServerWins(t *testing.T) {
	f := newFixture(t, 100)
	f.stock(t, drugA, 10)

	res := f.push(t, record(t, model.TableInventory, "inv-1", "update", 1, dto.InventoryPayload{
		DrugID: drugA, Quantity: 12, ReorderPoint: 3,
	}))
	require.Len(t, res.Accepted, 1)
	assert.Equal(t, int64(2), res.Accepted[0].Version)
	assert.Equal(t, int64(12), f.quantity(t, drugA))

	res = f.push(t, record(t, model.TableInventory, "inv-1", "update", 1, dto.InventoryPayload{
		DrugID: drugA, Quantity: 4, ReorderPoint: 3,
	}))
	require.Empty(t, res.Accepted)
	require.Len(t, res.Conflicts, 1)
	conflict := res.Conflicts[0]
	assert.Equal(t, string(offlinesync.ServerWins), conflict.Resolution)

	current, err := f.inv.GetInventory(context.Background(), branch, drugA)
	require.NoError(t, err)
	assert.Equal(t, *current, conflict.ServerRecord)
	assert.Equal(t, int64(12), current.Quantity)
}

func TestPush_DuplicateCustomerNeedsManualMerge(t *testing.T) {
	f := newFixture(t, 100)
	phone := "+62811000111"
	f.store.PutCustomer(model.Customer{BaseModel: model.BaseModel{ID: "cust-1"}, OrganizationID: org, Name: "Sari", Phone: &phone})

	res := f.push(t, record(t, model.TableCustomers, "cust-local-1", "create", 1, dto.CustomerPayload{
		Name: "Sari W.", Phone: &phone,
	}))

	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, string(offlinesync.ManualRequired), res.Conflicts[0].Resolution)
	existing, ok := res.Conflicts[0].ServerRecord.(model.Customer)
	require.True(t, ok)
	assert.Equal(t, "cust-1", existing.ID)
	assert.Equal(t, 1, f.store.CountCustomers())
}

func TestPush_SaleForCustomerCreatedOffline(t *testing.T) {
	f := newFixture(t, 100)
	f.stock(t, drugA, 10)
	customerLocal := "cust-local-9"
	sale := record(t, model.TableSales, "sale-9", "create", 1, dto.SalePayload{
		CustomerLocalID: &customerLocal,
		Lines:           []dto.SaleLinePayload{{DrugID: drugA, Quantity: 3}},
		AmountPaid:      decimal.NewFromInt(30),
		PaymentMethod:   "cash",
	})

	res := f.push(t,
		record(t, model.TableCustomers, customerLocal, "create", 1, dto.CustomerPayload{Name: "Dewi"}),
		sale,
	)

	require.Len(t, res.Accepted, 2)
	s, err := f.store.Sales().GetByLocalID(context.Background(), branch, "sale-9")
	require.NoError(t, err)
	require.NotNil(t, s.CustomerID)
	assert.Equal(t, res.Accepted[0].ServerID, *s.CustomerID)
	assert.Equal(t, "device-user", s.CashierID)
	assert.Equal(t, int64(3), s.LoyaltyPointsEarned)
}

func TestPush_RecordsAreIsolated(t *testing.T) {
	f := newFixture(t, 100)
	f.stock(t, drugA, 10)

	res := f.push(t,
		record(t, model.TableAdjustments, "adj-1", "create", 1, dto.AdjustmentPayload{
			DrugID: drugA, QuantityChange: -1, Type: model.AdjustmentExpired, Reason: "expired",
		}),
		saleRecord(t, "sale-too-big", 50),
		record(t, model.TableInventory, "inv-9", "delete", 1, nil),
		record(t, model.TableCustomers, "cust-local-1", "create", 1, dto.CustomerPayload{Name: "Rina"}),
	)

	assert.Equal(t, 2, res.TotalAccepted)
	assert.Equal(t, 0, res.TotalConflicts)
	assert.Equal(t, 2, res.TotalFailed)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, "sale-too-big", res.Failed[0].LocalID)
	assert.Equal(t, apperr.KindValidation.String(), res.Failed[0].Code)
	assert.Equal(t, "inv-9", res.Failed[1].LocalID)
	assert.Equal(t, int64(9), f.quantity(t, drugA))
	assert.False(t, res.NextPullTimestamp.After(res.SyncTimestamp))
}

func TestPush_PurchaseOrderDeleteCancels(t *testing.T) {
	f := newFixture(t, 100)
	payload := dto.PurchaseOrderPayload{
		SupplierID:  "supplier-1",
		OrderNumber: "PO-OFF-1",
		Status:      model.PurchaseOrderDraft,
		Lines:       []dto.PurchaseOrderLinePayload{{DrugID: drugA, OrderedQuantity: 5, UnitCost: decimal.NewFromInt(3)}},
	}

	res := f.push(t, record(t, model.TablePurchaseOrders, "po-1", "create", 1, payload))
	require.Len(t, res.Accepted, 1)

	res = f.push(t, dto.PushRecord{TableName: model.TablePurchaseOrders, LocalID: "po-1", Operation: "delete", SyncVersion: 1})
	require.Len(t, res.Accepted, 1)
	assert.Equal(t, int64(2), res.Accepted[0].Version)
}

func TestPush_RejectsMalformedBatch(t *testing.T) {
	f := newFixture(t, 100)
	f.stock(t, drugA, 10)
	adj := record(t, model.TableAdjustments, "adj-1", "create", 1, dto.AdjustmentPayload{
		DrugID: drugA, QuantityChange: -1, Type: model.AdjustmentDamage,
	})

	tests := []struct {
		name    string
		records []dto.PushRecord
	}{
		{"empty", nil},
		{"pull-only table", []dto.PushRecord{adj, record(t, model.TableDrugs, "d-1", "update", 1, map[string]string{})}},
		{"duplicate local id", []dto.PushRecord{adj, adj}},
		{"zero sync version", []dto.PushRecord{adj, {TableName: model.TableCustomers, LocalID: "c-1", Operation: "create"}}},
		{"unknown operation", []dto.PushRecord{adj, {TableName: model.TableCustomers, LocalID: "c-1", Operation: "merge", SyncVersion: 1}}},
		{"too many records", []dto.PushRecord{adj, saleRecord(t, "s1", 1), saleRecord(t, "s2", 1), saleRecord(t, "s3", 1), saleRecord(t, "s4", 1), saleRecord(t, "s5", 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Push(context.Background(), &dto.PushInput{OrganizationID: org, BranchID: branch, Records: tt.records})
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
	assert.Equal(t, int64(10), f.quantity(t, drugA))
}

func TestPush_BranchBusy(t *testing.T) {
	f := newFixture(t, 100)
	f.locker.held["lock:sync:push:"+branch] = "someone-else"

	_, err := f.uc.Push(context.Background(), &dto.PushInput{
		OrganizationID: org,
		BranchID:       branch,
		Records:        []dto.PushRecord{record(t, model.TableCustomers, "c-1", "create", 1, dto.CustomerPayload{Name: "Ayu"})},
	})

	var busy *offlinesync.BranchBusyError
	require.ErrorAs(t, err, &busy)
	assert.Equal(t, 0, f.store.CountCustomers())
}

func TestPush_BranchBusyStopsOnCancel(t *testing.T) {
	f := buildFixture(t, usecase.Config{PullPageSize: 100, MaxPushRecords: 5, LockTTL: time.Minute, LockRetries: 3, LockRetryDelay: time.Hour}, nil)
	f.locker.held["lock:sync:push:"+branch] = "someone-else"
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.uc.Push(ctx, &dto.PushInput{
		OrganizationID: org,
		BranchID:       branch,
		Records:        []dto.PushRecord{record(t, model.TableCustomers, "c-1", "create", 1, dto.CustomerPayload{Name: "Ayu"})},
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, f.store.CountCustomers())
}

func TestPush_SaleWithInvalidPricingFails(t *testing.T) {
	f := newFixture(t, 100)
	f.stock(t, drugA, 20)
	negative := decimal.NewFromInt(-50)

	res := f.push(t,
		record(t, model.TableSales, "sale-discount", "create", 1, dto.SalePayload{
			Lines:         []dto.SaleLinePayload{{DrugID: drugA, Quantity: 2, DiscountPercent: decimal.NewFromInt(250)}},
			PaymentMethod: "cash",
		}),
		record(t, model.TableSales, "sale-price", "create", 1, dto.SalePayload{
			Lines:         []dto.SaleLinePayload{{DrugID: drugA, Quantity: 2, UnitPrice: &negative}},
			PaymentMethod: "cash",
		}),
	)

	require.Len(t, res.Failed, 2)
	for _, failed := range res.Failed {
		assert.Equal(t, apperr.KindValidation.String(), failed.Code)
	}
	assert.Empty(t, res.Accepted)
	assert.Equal(t, int64(20), f.quantity(t, drugA))
}

type recordingCustomers struct {
	*memory.CustomerRepository
	mu         sync.Mutex
	calls      []string
	staleReads int
}

func (r *recordingCustomers) note(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recordingCustomers) LockIdentities(ctx context.Context, keys []string) error {
	r.note("lock " + strings.Join(keys, ","))
	return r.CustomerRepository.LockIdentities(ctx, keys)
}

// GetByLocalIDForUpdate misses the row staleReads times, as a request that lost a creation race would.
func (r *recordingCustomers) GetByLocalIDForUpdate(ctx context.Context, organizationID, localID string) (*model.Customer, error) {
	r.mu.Lock()
	stale := r.staleReads > 0
	if stale {
		r.staleReads--
	}
	r.mu.Unlock()
	if stale {
		r.note("stale read")
		return nil, nil
	}
	return r.CustomerRepository.GetByLocalIDForUpdate(ctx, organizationID, localID)
}

func TestPush_SamePhoneFromTwoBranches(t *testing.T) {
	rec := &recordingCustomers{}
	f := buildFixture(t, usecase.Config{PullPageSize: 100, MaxPushRecords: 5, LockTTL: time.Minute, LockRetries: 2},
		func(inner *memory.CustomerRepository) customer.Repository {
			rec.CustomerRepository = inner
			return rec
		})
	phone := "+62811222333"

	branches := []string{branch, branch2}
	inputs := make([]*dto.PushInput, len(branches))
	for i, b := range branches {
		inputs[i] = &dto.PushInput{
			OrganizationID: org,
			BranchID:       b,
			ActorID:        "device-user",
			Records: []dto.PushRecord{record(t, model.TableCustomers, "cust-"+b, "create", 1, dto.CustomerPayload{
				Name: "Budi", Phone: &phone,
			})},
		}
	}

	results := make([]*dto.PushResult, len(inputs))
	errs := make([]error, len(inputs))
	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in *dto.PushInput) {
			defer wg.Done()
			results[i], errs[i] = f.uc.Push(context.Background(), in)
		}(i, in)
	}
	wg.Wait()

	accepted, manual := 0, 0
	for i, res := range results {
		require.NoError(t, errs[i])
		accepted += res.TotalAccepted
		for _, c := range res.Conflicts {
			assert.Equal(t, string(offlinesync.ManualRequired), c.Resolution)
			manual++
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, 1, manual)
	assert.Equal(t, 1, f.store.CountCustomers())
	assert.Equal(t, []string{"lock org-1/phone/" + phone, "lock org-1/phone/" + phone}, rec.calls)
}

func TestPush_CustomerCreateRaceRetries(t *testing.T) {
	rec := &recordingCustomers{staleReads: 1}
	f := buildFixture(t, usecase.Config{PullPageSize: 100, MaxPushRecords: 5, LockTTL: time.Minute, LockRetries: 2},
		func(inner *memory.CustomerRepository) customer.Repository {
			rec.CustomerRepository = inner
			return rec
		})
	local := "cust-local-1"
	f.store.PutCustomer(model.Customer{
		BaseModel:      model.BaseModel{ID: "cust-1"},
		Versioned:      model.Versioned{Version: 1, SyncStatus: model.SyncStatusSynced, LocalID: &local},
		OrganizationID: org,
		Name:           "Rina",
	})

	res := f.push(t, record(t, model.TableCustomers, local, "update", 1, dto.CustomerPayload{Name: "Rina S."}))

	require.Len(t, res.Accepted, 1)
	assert.Equal(t, "cust-1", res.Accepted[0].ServerID)
	assert.Equal(t, int64(2), res.Accepted[0].Version)
	assert.Equal(t, 1, f.store.CountCustomers())
	assert.Equal(t, []string{"lock ", "stale read", "lock "}, rec.calls)
}

func TestPull_PagesWithCursor(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	in := &dto.PullInput{OrganizationID: org, BranchID: branch, Tables: []model.SyncTable{model.TableDrugs}}

	first, err := f.uc.Pull(ctx, in)
	require.NoError(t, err)
	require.True(t, first.HasMore)
	require.Len(t, first.Tables[model.TableDrugs], 1)
	assert.Equal(t, drugA, first.Tables[model.TableDrugs][0].(model.Drug).ID)

	in.Cursors = first.NextCursors
	second, err := f.uc.Pull(ctx, in)
	require.NoError(t, err)
	assert.False(t, second.HasMore)
	require.Len(t, second.Tables[model.TableDrugs], 1)
	assert.Equal(t, drugB, second.Tables[model.TableDrugs][0].(model.Drug).ID)
	assert.Equal(t, 1, second.TotalRecords)
}

func TestPull_DeltaSinceLastSync(t *testing.T) {
	f := newFixture(t, 100)
	ctx := context.Background()
	f.stock(t, drugA, 10)

	first, err := f.uc.Pull(ctx, &dto.PullInput{OrganizationID: org, BranchID: branch})
	require.NoError(t, err)
	assert.Len(t, first.Tables[model.TableDrugs], 2)
	assert.Len(t, first.Tables[model.TableInventory], 1)
	assert.Len(t, first.Tables[model.TableBatches], 1)
	assert.Len(t, first.Tables[model.TableAdjustments], 1)
	assert.Empty(t, first.Tables[model.TableSales])

	time.Sleep(2 * time.Millisecond)
	f.push(t, saleRecord(t, "sale-1", 1))

	since := first.SyncTimestamp
	delta, err := f.uc.Pull(ctx, &dto.PullInput{OrganizationID: org, BranchID: branch, LastSyncAt: &since})
	require.NoError(t, err)
	assert.Empty(t, delta.Tables[model.TableDrugs])
	assert.Len(t, delta.Tables[model.TableInventory], 1)
	assert.Len(t, delta.Tables[model.TableBatches], 1)
	assert.Len(t, delta.Tables[model.TableAdjustments], 1)
	require.Len(t, delta.Tables[model.TableSales], 1)
	assert.Len(t, delta.Tables[model.TableSales][0].(model.Sale).Lines, 1)
	assert.False(t, delta.HasMore)
}

func TestPull_RejectsUnknownTable(t *testing.T) {
	f := newFixture(t, 100)

	_, err := f.uc.Pull(context.Background(), &dto.PullInput{
		OrganizationID: org, BranchID: branch, Tables: []model.SyncTable{"users"},
	})

	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
