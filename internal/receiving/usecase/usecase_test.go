package usecase_test

import (
	"context"
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
	"github.com/fekuna/omnipos-inventory-service/internal/receiving"
	"github.com/fekuna/omnipos-inventory-service/internal/receiving/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/receiving/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/store/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap/zaptest"
)

const (
	org    = "org-1"
	branch = "branch-1"
	drugID = "drug-1"
	poID   = "po-1"
	lineID = "po-1-line-1"
)

type fixture struct {
	store *memory.Store
	inv   inventory.UseCase
	uc    receiving.UseCase
}

func newFixture(t *testing.T, status model.PurchaseOrderStatus) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.PutBranch(model.Branch{BaseModel: model.BaseModel{ID: branch}, OrganizationID: org, IsActive: true})
	store.PutDrug(model.Drug{
		BaseModel: model.BaseModel{ID: drugID}, OrganizationID: org, SKU: "IBU-400", Name: "Ibuprofen 400mg",
		UnitPrice: decimal.NewFromInt(12), CostPrice: decimal.NewFromInt(4), IsActive: true,
	})
	store.PutPurchaseOrder(model.PurchaseOrder{
		BaseModel:      model.BaseModel{ID: poID},
		Versioned:      model.Versioned{Version: 1, SyncStatus: model.SyncStatusSynced},
		OrganizationID: org,
		BranchID:       branch,
		SupplierID:     "supplier-1",
		OrderNumber:    "PO-0001",
		Status:         status,
		TotalAmount:    decimal.NewFromInt(60),
		Lines: []model.PurchaseOrderLine{{
			ID: lineID, PurchaseOrderID: poID, DrugID: drugID, OrderedQuantity: 10, UnitCost: decimal.NewFromInt(6),
		}},
	})

	log := logger.Wrap(zaptest.NewLogger(t))
	inv := invusecase.NewInventoryUseCase(store, store.Inventory(), store.Inventory(), store.Branches(), alert.NewLogNotifier(log), log)
	uc := usecase.NewReceivingUseCase(usecase.Deps{
		Tx:        store,
		Orders:    store.PurchaseOrders(),
		Inventory: inv,
		Drugs:     store.Drugs(),
		Authz:     auth.AllowAll{},
		Tracer:    noop.NewTracerProvider().Tracer("test"),
		Logger:    log,
	})
	return &fixture{store: store, inv: inv, uc: uc}
}

func (f *fixture) quantity(t *testing.T) int64 {
	t.Helper()
	inv, err := f.inv.GetInventory(context.Background(), branch, drugID)
	require.NoError(t, err)
	return inv.Quantity
}

func receipt(qty int64, batch string) *dto.ReceiveGoodsInput {
	return &dto.ReceiveGoodsInput{
		OrganizationID:  org,
		PurchaseOrderID: poID,
		ActorID:         "clerk-1",
		Lines: []dto.ReceiveLineInput{{
			LineID:      lineID,
			Quantity:    qty,
			BatchNumber: batch,
			ExpiryDate:  time.Now().AddDate(2, 0, 0),
		}},
	}
}

func TestReceiveGoods_PartialThenFull(t *testing.T) {
	f := newFixture(t, model.PurchaseOrderApproved)
	ctx := context.Background()
	_, err := f.inv.CreateBatch(ctx, &invdto.CreateBatchInput{
		OrganizationID: org, BranchID: branch, DrugID: drugID, BatchNumber: "OPENING",
		Quantity: 10, ExpiryDate: time.Now().AddDate(1, 0, 0), CostPrice: decimal.NewFromInt(4),
	})
	require.NoError(t, err)

	res, err := f.uc.ReceiveGoods(ctx, receipt(5, "LOT-A"))
	require.NoError(t, err)

	assert.Equal(t, model.PurchaseOrderOrdered, res.PurchaseOrder.Status)
	assert.Equal(t, int64(5), res.PurchaseOrder.Lines[0].ReceivedQuantity)
	assert.Equal(t, int64(2), res.PurchaseOrder.Version)
	require.Len(t, res.Batches, 1)
	assert.Equal(t, poID, *res.Batches[0].PurchaseOrderID)
	assert.Equal(t, "supplier-1", *res.Batches[0].SupplierID)
	assert.Equal(t, int64(15), f.quantity(t))

	// (4 x 10 + 6 x 5) / 15
	drug, err := f.store.Drugs().GetByIDForUpdate(ctx, drugID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("4.67").Equal(drug.CostPrice), "cost %s", drug.CostPrice)

	res, err = f.uc.ReceiveGoods(ctx, receipt(5, ""))
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseOrderReceived, res.PurchaseOrder.Status)
	assert.NotNil(t, res.PurchaseOrder.ReceivedAt)
	assert.Contains(t, res.Batches[0].BatchNumber, "PO-0001-")
	assert.Equal(t, int64(20), f.quantity(t))

	_, err = f.uc.ReceiveGoods(ctx, receipt(1, "LOT-C"))
	var statusErr *receiving.InvalidStatusError
	require.ErrorAs(t, err, &statusErr)
}

func TestReceiveGoods_OverReceiptLeavesOrderUnchanged(t *testing.T) {
	f := newFixture(t, model.PurchaseOrderOrdered)
	ctx := context.Background()

	_, err := f.uc.ReceiveGoods(ctx, receipt(11, "LOT-A"))

	var overErr *receiving.OverReceiptError
	require.ErrorAs(t, err, &overErr)
	assert.Equal(t, int64(10), overErr.Ordered)

	po, err := f.uc.GetPurchaseOrder(ctx, org, poID)
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseOrderOrdered, po.Status)
	assert.Equal(t, int64(0), po.Lines[0].ReceivedQuantity)
	assert.Equal(t, int64(1), po.Version)
	assert.Equal(t, int64(0), f.quantity(t))
}

func TestReceiveGoods_SplitLinesCountTogether(t *testing.T) {
	f := newFixture(t, model.PurchaseOrderApproved)
	in := receipt(6, "LOT-A")
	in.Lines = append(in.Lines, dto.ReceiveLineInput{
		LineID: lineID, Quantity: 5, BatchNumber: "LOT-B", ExpiryDate: time.Now().AddDate(2, 0, 0),
	})

	_, err := f.uc.ReceiveGoods(context.Background(), in)

	var overErr *receiving.OverReceiptError
	require.ErrorAs(t, err, &overErr)
	assert.Equal(t, int64(11), overErr.Incoming)
	assert.Equal(t, int64(0), f.quantity(t))
}

func TestReceiveGoods_DraftOrderRejected(t *testing.T) {
	f := newFixture(t, model.PurchaseOrderDraft)

	_, err := f.uc.ReceiveGoods(context.Background(), receipt(1, "LOT-A"))

	var statusErr *receiving.InvalidStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, model.PurchaseOrderDraft, statusErr.Status)
}

type recordingInventory struct {
	inventory.UseCase
	drugs []string
}

func (r *recordingInventory) CreateBatch(ctx context.Context, input *invdto.CreateBatchInput) (*model.Batch, error) {
	r.drugs = append(r.drugs, input.DrugID)
	return r.UseCase.CreateBatch(ctx, input)
}

func TestReceiveGoods_StocksDrugsInIDOrder(t *testing.T) {
	f := newFixture(t, model.PurchaseOrderApproved)
	ctx := context.Background()
	f.store.PutDrug(model.Drug{
		BaseModel: model.BaseModel{ID: "drug-0"}, OrganizationID: org, SKU: "CET-10", Name: "Cetirizine 10mg",
		UnitPrice: decimal.NewFromInt(9), CostPrice: decimal.NewFromInt(3), IsActive: true,
	})
	f.store.PutPurchaseOrder(model.PurchaseOrder{
		BaseModel:      model.BaseModel{ID: "po-2"},
		Versioned:      model.Versioned{Version: 1, SyncStatus: model.SyncStatusSynced},
		OrganizationID: org,
		BranchID:       branch,
		SupplierID:     "supplier-1",
		OrderNumber:    "PO-0002",
		Status:         model.PurchaseOrderApproved,
		Lines: []model.PurchaseOrderLine{
			{ID: "po-2-line-1", PurchaseOrderID: "po-2", DrugID: drugID, OrderedQuantity: 4, UnitCost: decimal.NewFromInt(6)},
			{ID: "po-2-line-2", PurchaseOrderID: "po-2", DrugID: "drug-0", OrderedQuantity: 3, UnitCost: decimal.NewFromInt(3)},
		},
	})
	rec := &recordingInventory{UseCase: f.inv}
	log := logger.Wrap(zaptest.NewLogger(t))
	uc := usecase.NewReceivingUseCase(usecase.Deps{
		Tx:        f.store,
		Orders:    f.store.PurchaseOrders(),
		Inventory: rec,
		Drugs:     f.store.Drugs(),
		Authz:     auth.AllowAll{},
		Tracer:    noop.NewTracerProvider().Tracer("test"),
		Logger:    log,
	})
	expiry := time.Now().AddDate(2, 0, 0)

	res, err := uc.ReceiveGoods(ctx, &dto.ReceiveGoodsInput{
		OrganizationID:  org,
		PurchaseOrderID: "po-2",
		ActorID:         "clerk-1",
		Lines: []dto.ReceiveLineInput{
			{LineID: "po-2-line-1", Quantity: 4, BatchNumber: "LOT-IBU", ExpiryDate: expiry},
			{LineID: "po-2-line-2", Quantity: 3, BatchNumber: "LOT-CET", ExpiryDate: expiry},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"drug-0", drugID}, rec.drugs)
	assert.Equal(t, model.PurchaseOrderReceived, res.PurchaseOrder.Status)
	assert.Equal(t, int64(4), f.quantity(t))
	cet, err := f.inv.GetInventory(ctx, branch, "drug-0")
	require.NoError(t, err)
	assert.Equal(t, int64(3), cet.Quantity)
}

func TestSyncPurchaseOrder(t *testing.T) {
	f := newFixture(t, model.PurchaseOrderApproved)
	ctx := context.Background()
	in := &dto.SyncPurchaseOrderInput{
		OrganizationID: org,
		BranchID:       branch,
		LocalID:        "local-po-1",
		ClientVersion:  1,
		SupplierID:     "supplier-2",
		OrderNumber:    "PO-OFF-1",
		Status:         model.PurchaseOrderDraft,
		Lines:          []dto.SyncPurchaseOrderLine{{DrugID: drugID, OrderedQuantity: 4, UnitCost: decimal.RequireFromString("2.50")}},
	}

	created, err := f.uc.SyncPurchaseOrder(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.Version)
	assert.True(t, decimal.NewFromInt(10).Equal(created.TotalAmount))

	in.Status = model.PurchaseOrderApproved
	updated, err := f.uc.SyncPurchaseOrder(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, created.Lines[0].ID, updated.Lines[0].ID)

	_, err = f.uc.SyncPurchaseOrder(ctx, in)
	var conflict *apperr.VersionConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(2), conflict.ServerVersion)
	current, ok := conflict.Current.(model.PurchaseOrder)
	require.True(t, ok)
	assert.Equal(t, model.PurchaseOrderApproved, current.Status)

	in.ClientVersion = 2
	in.Status = model.PurchaseOrderReceived
	_, err = f.uc.SyncPurchaseOrder(ctx, in)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	in.Delete = true
	cancelled, err := f.uc.SyncPurchaseOrder(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseOrderCancelled, cancelled.Status)
	assert.Equal(t, int64(3), cancelled.Version)
}

func TestSyncPurchaseOrder_KeepsReceivedQuantities(t *testing.T) {
	f := newFixture(t, model.PurchaseOrderApproved)
	ctx := context.Background()
	localID := "local-po-1"
	f.store.PutPurchaseOrder(model.PurchaseOrder{
		BaseModel:      model.BaseModel{ID: "po-2"},
		Versioned:      model.Versioned{Version: 3, SyncStatus: model.SyncStatusSynced, LocalID: &localID},
		OrganizationID: org,
		BranchID:       branch,
		OrderNumber:    "PO-0002",
		Status:         model.PurchaseOrderOrdered,
		Lines: []model.PurchaseOrderLine{{
			ID: "po-2-line-1", PurchaseOrderID: "po-2", DrugID: drugID,
			OrderedQuantity: 10, ReceivedQuantity: 6, UnitCost: decimal.NewFromInt(6),
		}},
	})
	in := &dto.SyncPurchaseOrderInput{
		OrganizationID: org,
		BranchID:       branch,
		LocalID:        localID,
		ClientVersion:  3,
		OrderNumber:    "PO-0002",
		Status:         model.PurchaseOrderOrdered,
		Lines:          []dto.SyncPurchaseOrderLine{{DrugID: drugID, OrderedQuantity: 5, UnitCost: decimal.NewFromInt(6)}},
	}

	_, err := f.uc.SyncPurchaseOrder(ctx, in)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	in.Lines[0].OrderedQuantity = 8
	po, err := f.uc.SyncPurchaseOrder(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(6), po.Lines[0].ReceivedQuantity)
	assert.Equal(t, int64(8), po.Lines[0].OrderedQuantity)
}
