package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/alert"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	invdto "github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	invusecase "github.com/fekuna/omnipos-inventory-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/apperr"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/sale"
	"github.com/fekuna/omnipos-inventory-service/internal/sale/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/sale/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/store/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap/zaptest"
)

const (
	org       = "org-1"
	branch    = "branch-1"
	closed    = "branch-closed"
	plainDrug = "drug-para"
	rxDrug    = "drug-amox"
	cust      = "cust-1"
	rxID      = "rx-1"
)

type signals struct {
	mu   sync.Mutex
	list []alert.LowStockSignal
}

func (s *signals) NotifyLowStock(_ context.Context, sig alert.LowStockSignal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = append(s.list, sig)
}

type fixture struct {
	store   *memory.Store
	inv     inventory.UseCase
	uc      sale.UseCase
	signals *signals
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.PutBranch(model.Branch{BaseModel: model.BaseModel{ID: branch}, OrganizationID: org, IsActive: true})
	store.PutBranch(model.Branch{BaseModel: model.BaseModel{ID: closed}, OrganizationID: org, IsActive: false})
	store.PutDrug(model.Drug{
		BaseModel: model.BaseModel{ID: plainDrug}, OrganizationID: org, SKU: "PARA-500", Name: "Paracetamol 500mg",
		UnitPrice: decimal.NewFromInt(10), IsActive: true,
	})
	store.PutDrug(model.Drug{
		BaseModel: model.BaseModel{ID: rxDrug}, OrganizationID: org, SKU: "AMOX-250", Name: "Amoxicillin 250mg",
		UnitPrice: decimal.NewFromInt(25), RequiresPrescription: true, IsActive: true,
	})
	store.PutCustomer(model.Customer{
		BaseModel: model.BaseModel{ID: cust}, OrganizationID: org, Name: "Ana",
		LoyaltyPoints: 995, LoyaltyTier: model.TierBronze,
	})
	expires := time.Now().AddDate(0, 1, 0)
	store.PutPrescription(model.Prescription{
		BaseModel: model.BaseModel{ID: rxID}, OrganizationID: org, CustomerID: cust,
		Status: model.PrescriptionActive, RefillsRemaining: 1, ExpiresAt: &expires,
	})

	log := logger.Wrap(zaptest.NewLogger(t))
	sig := &signals{}
	inv := invusecase.NewInventoryUseCase(store, store.Inventory(), store.Inventory(), store.Branches(), sig, log)
	uc := usecase.NewSaleUseCase(usecase.Deps{
		Tx:        store,
		Sales:     store.Sales(),
		Inventory: inv,
		Drugs:     store.Drugs(),
		Branches:  store.Branches(),
		Customers: store.Customers(),
		Authz:     auth.AllowAll{},
		Notifier:  sig,
		Tracer:    noop.NewTracerProvider().Tracer("test"),
		Logger:    log,
	})
	return &fixture{store: store, inv: inv, uc: uc, signals: sig}
}

func (f *fixture) stock(t *testing.T, drugID string, qty int64) {
	t.Helper()
	_, err := f.inv.CreateBatch(context.Background(), &invdto.CreateBatchInput{
		OrganizationID: org,
		BranchID:       branch,
		DrugID:         drugID,
		BatchNumber:    "B-" + drugID,
		Quantity:       qty,
		ExpiryDate:     time.Now().AddDate(1, 0, 0),
		CostPrice:      decimal.NewFromInt(4),
	})
	require.NoError(t, err)
}

func (f *fixture) quantity(t *testing.T, drugID string) int64 {
	t.Helper()
	inv, err := f.inv.GetInventory(context.Background(), branch, drugID)
	require.NoError(t, err)
	return inv.Quantity
}

func saleInput(drugID string, qty int64, paid int64) *dto.ProcessSaleInput {
	return &dto.ProcessSaleInput{
		OrganizationID: org,
		BranchID:       branch,
		CashierID:      "cashier-1",
		Lines:          []dto.SaleLineInput{{DrugID: drugID, Quantity: qty}},
		AmountPaid:     decimal.NewFromInt(paid),
		PaymentMethod:  "cash",
	}
}

func strPtr(s string) *string { return &s }

func TestProcessSale_DepletesStockAndEarnsPoints(t *testing.T) {
	f := newFixture(t)
	f.stock(t, plainDrug, 20)
	in := saleInput(plainDrug, 3, 50)
	in.CustomerID = strPtr(cust)

	res, err := f.uc.ProcessSale(context.Background(), in)
	require.NoError(t, err)

	s := res.Sale
	assert.True(t, decimal.NewFromInt(30).Equal(s.TotalAmount))
	assert.True(t, decimal.NewFromInt(20).Equal(s.ChangeAmount))
	assert.Equal(t, model.SaleCompleted, s.Status)
	assert.Equal(t, int64(3), s.LoyaltyPointsEarned)
	require.Len(t, s.Lines, 1)
	assert.Equal(t, "PARA-500", s.Lines[0].DrugSKU)
	require.Len(t, res.Consumptions, 1)
	assert.Equal(t, int64(3), res.Consumptions[0].Batches[0].Quantity)

	assert.Equal(t, int64(17), f.quantity(t, plainDrug))

	c, err := f.store.Customers().GetByIDForUpdate(context.Background(), cust)
	require.NoError(t, err)
	assert.Equal(t, int64(998), c.LoyaltyPoints)
	assert.Equal(t, model.TierBronze, c.LoyaltyTier)

	saved, err := f.uc.GetSale(context.Background(), org, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.SaleNumber, saved.SaleNumber)
}

func TestProcessSale_PrescriptionRequiredLeavesStockUnchanged(t *testing.T) {
	f := newFixture(t)
	f.stock(t, rxDrug, 5)

	_, err := f.uc.ProcessSale(context.Background(), saleInput(rxDrug, 1, 100))

	var rxErr *sale.PrescriptionRequiredError
	require.ErrorAs(t, err, &rxErr)
	assert.Equal(t, []string{rxDrug}, rxErr.DrugIDs)
	assert.Equal(t, int64(5), f.quantity(t, rxDrug))
}

func TestProcessSale_FillsPrescription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, rxDrug, 5)
	in := saleInput(rxDrug, 1, 25)
	in.CustomerID = strPtr(cust)
	in.PrescriptionID = strPtr(rxID)

	_, err := f.uc.ProcessSale(ctx, in)
	require.NoError(t, err)

	rx, err := f.store.Customers().GetPrescriptionForUpdate(ctx, rxID)
	require.NoError(t, err)
	assert.Equal(t, 0, rx.RefillsRemaining)
	assert.Equal(t, model.PrescriptionFilled, rx.Status)

	_, err = f.uc.ProcessSale(ctx, in)
	var rxErr *sale.PrescriptionRequiredError
	require.ErrorAs(t, err, &rxErr)
	assert.Equal(t, int64(4), f.quantity(t, rxDrug))
}

func TestProcessSale_PrescriptionOfAnotherCustomer(t *testing.T) {
	f := newFixture(t)
	f.stock(t, rxDrug, 5)
	f.store.PutCustomer(model.Customer{BaseModel: model.BaseModel{ID: "cust-2"}, OrganizationID: org, Name: "Budi"})
	in := saleInput(rxDrug, 1, 25)
	in.CustomerID = strPtr("cust-2")
	in.PrescriptionID = strPtr(rxID)

	_, err := f.uc.ProcessSale(context.Background(), in)

	var rxErr *sale.PrescriptionRequiredError
	require.ErrorAs(t, err, &rxErr)
}

func TestProcessSale_Rejections(t *testing.T) {
	f := newFixture(t)
	f.stock(t, plainDrug, 2)

	_, err := f.uc.ProcessSale(context.Background(), saleInput(plainDrug, 2, 19))
	var payErr *sale.InsufficientPaymentError
	require.ErrorAs(t, err, &payErr)

	_, err = f.uc.ProcessSale(context.Background(), saleInput(plainDrug, 3, 100))
	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)

	in := saleInput(plainDrug, 1, 100)
	in.BranchID = closed
	_, err = f.uc.ProcessSale(context.Background(), in)
	var inactiveErr *sale.BranchInactiveError
	require.ErrorAs(t, err, &inactiveErr)

	assert.Equal(t, int64(2), f.quantity(t, plainDrug))
}

func TestProcessSale_RejectsInvalidPricing(t *testing.T) {
	negative := decimal.NewFromInt(-50)
	tests := []struct {
		name string
		line func(l *dto.SaleLineInput)
	}{
		{"discount above hundred", func(l *dto.SaleLineInput) { l.DiscountPercent = decimal.NewFromInt(250) }},
		{"negative discount", func(l *dto.SaleLineInput) { l.DiscountPercent = decimal.NewFromInt(-5) }},
		{"negative tax", func(l *dto.SaleLineInput) { l.TaxPercent = decimal.NewFromInt(-1) }},
		{"negative unit price", func(l *dto.SaleLineInput) { l.UnitPrice = &negative }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.stock(t, plainDrug, 20)

			in := saleInput(plainDrug, 2, 0)
			tt.line(&in.Lines[0])
			_, err := f.uc.ProcessSale(context.Background(), in)

			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, int64(20), f.quantity(t, plainDrug))
		})
	}
}

func TestProcessSale_FullDiscountIsFree(t *testing.T) {
	f := newFixture(t)
	f.stock(t, plainDrug, 20)

	in := saleInput(plainDrug, 2, 0)
	in.Lines[0].DiscountPercent = decimal.NewFromInt(100)
	res, err := f.uc.ProcessSale(context.Background(), in)

	require.NoError(t, err)
	assert.True(t, res.Sale.TotalAmount.IsZero())
	assert.True(t, res.Sale.ChangeAmount.IsZero())
	assert.Equal(t, int64(18), f.quantity(t, plainDrug))
}

func TestProcessSale_LowStockSignalAfterCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, plainDrug, 6)
	_, err := f.inv.SyncInventory(ctx, &invdto.SyncInventoryInput{
		OrganizationID: org, BranchID: branch, DrugID: plainDrug, LocalID: "inv-1",
		ClientVersion: 1, Quantity: 6, ReorderPoint: 5,
	})
	require.NoError(t, err)

	_, err = f.uc.ProcessSale(ctx, saleInput(plainDrug, 1, 10))
	require.NoError(t, err)

	require.Len(t, f.signals.list, 1)
	assert.Equal(t, int64(5), f.signals.list[0].Quantity)
}

func TestProcessSale_ConcurrentSalesNeverOversell(t *testing.T) {
	f := newFixture(t)
	f.stock(t, plainDrug, 10)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.uc.ProcessSale(context.Background(), saleInput(plainDrug, 1, 10)); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, int64(0), f.quantity(t, plainDrug))
}

func TestRefundSale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, plainDrug, 10)
	in := saleInput(plainDrug, 4, 40)
	in.CustomerID = strPtr(cust)
	res, err := f.uc.ProcessSale(ctx, in)
	require.NoError(t, err)

	refunded, err := f.uc.RefundSale(ctx, &dto.RefundSaleInput{
		OrganizationID: org,
		SaleID:         res.Sale.ID,
		Lines:          []dto.RefundLineInput{{SaleLineID: res.Sale.Lines[0].ID, Quantity: 2}},
		Reason:         "wrong strength",
		ActorID:        "cashier-1",
	})
	require.NoError(t, err)

	assert.Equal(t, model.SaleRefunded, refunded.Status)
	assert.True(t, decimal.NewFromInt(20).Equal(refunded.RefundAmount))
	assert.Equal(t, int64(2), refunded.Lines[0].RefundedQuantity)
	assert.Equal(t, int64(2), refunded.Version)
	assert.Equal(t, int64(8), f.quantity(t, plainDrug))

	// returned units are not put back into the batch
	batches, _, err := f.inv.ListBatches(ctx, &invdto.BatchFilters{BranchID: branch, DrugID: plainDrug})
	require.NoError(t, err)
	assert.Equal(t, int64(6), batches[0].RemainingQuantity)

	c, err := f.store.Customers().GetByIDForUpdate(ctx, cust)
	require.NoError(t, err)
	assert.Equal(t, int64(997), c.LoyaltyPoints)

	_, err = f.uc.RefundSale(ctx, &dto.RefundSaleInput{OrganizationID: org, SaleID: res.Sale.ID})
	var statusErr *sale.InvalidSaleStatusError
	require.ErrorAs(t, err, &statusErr)
}

func TestRefundSale_QuantityAboveSold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, plainDrug, 10)
	res, err := f.uc.ProcessSale(ctx, saleInput(plainDrug, 2, 20))
	require.NoError(t, err)

	_, err = f.uc.RefundSale(ctx, &dto.RefundSaleInput{
		OrganizationID: org,
		SaleID:         res.Sale.ID,
		Lines:          []dto.RefundLineInput{{SaleLineID: res.Sale.Lines[0].ID, Quantity: 3}},
	})

	var qtyErr *sale.RefundQuantityError
	require.ErrorAs(t, err, &qtyErr)
	assert.Equal(t, int64(8), f.quantity(t, plainDrug))
}
