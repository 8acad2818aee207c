package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/catalog"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	invdto "github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/apperr"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/database"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/receiving"
	"github.com/fekuna/omnipos-inventory-service/internal/receiving/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Deps struct {
	Tx        database.TxManager
	Orders    receiving.Repository
	Inventory inventory.UseCase
	Drugs     catalog.DrugRepository
	Authz     auth.BranchAuthorizer
	Tracer    trace.Tracer
	Logger    logger.ZapLogger
}

type receivingUseCase struct {
	Deps
	now func() time.Time
}

func NewReceivingUseCase(deps Deps) receiving.UseCase {
	return &receivingUseCase{
		Deps: deps,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (uc *receivingUseCase) GetPurchaseOrder(ctx context.Context, organizationID, id string) (*model.PurchaseOrder, error) {
	po, err := uc.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po == nil || po.OrganizationID != organizationID {
		return nil, apperr.NotFound("purchase order", id)
	}
	return po, nil
}

// ReceiveGoods books delivered lines as new batches, moves the drug cost basis and advances the
// order status, all in one transaction.
func (uc *receivingUseCase) ReceiveGoods(ctx context.Context, input *dto.ReceiveGoodsInput) (*dto.ReceiptResult, error) {
	ctx, span := uc.Tracer.Start(ctx, "receiving.receive_goods",
		trace.WithAttributes(
			attribute.String("purchase_order.id", input.PurchaseOrderID),
			attribute.Int("receipt.lines", len(input.Lines)),
		))
	defer span.End()

	result, err := uc.receive(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("purchase_order.status", string(result.PurchaseOrder.Status)))
	span.SetStatus(codes.Ok, "goods received")

	uc.Logger.Info("goods received",
		zap.String("purchase_order_id", result.PurchaseOrder.ID),
		zap.String("status", string(result.PurchaseOrder.Status)),
		zap.Int("batches", len(result.Batches)),
	)
	return result, nil
}

func (uc *receivingUseCase) receive(ctx context.Context, input *dto.ReceiveGoodsInput) (*dto.ReceiptResult, error) {
	if len(input.Lines) == 0 {
		return nil, apperr.Validation("receipt has no lines")
	}
	for _, l := range input.Lines {
		if l.Quantity <= 0 {
			return nil, apperr.Validation("received quantity for line %s must be positive", l.LineID)
		}
	}

	result := &dto.ReceiptResult{}
	err := uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
		po, err := uc.Orders.GetByIDForUpdate(ctx, input.PurchaseOrderID)
		if err != nil {
			return err
		}
		if po == nil || po.OrganizationID != input.OrganizationID {
			return apperr.NotFound("purchase order", input.PurchaseOrderID)
		}
		if err := uc.Authz.AuthorizeBranch(ctx, po.OrganizationID, po.BranchID); err != nil {
			return err
		}
		if !po.Status.Receivable() {
			return &receiving.InvalidStatusError{PurchaseOrderID: po.ID, Status: po.Status}
		}

		// validate the whole receipt before the first batch is written
		incoming := make(map[string]int64, len(input.Lines))
		drugOf := make(map[string]string, len(input.Lines))
		for _, l := range input.Lines {
			idx := slices.IndexFunc(po.Lines, func(pl model.PurchaseOrderLine) bool { return pl.ID == l.LineID })
			if idx < 0 {
				return apperr.NotFound("purchase order line", l.LineID)
			}
			line := po.Lines[idx]
			drugOf[l.LineID] = line.DrugID
			incoming[l.LineID] += l.Quantity
			if line.ReceivedQuantity+incoming[l.LineID] > line.OrderedQuantity {
				return &receiving.OverReceiptError{
					LineID:   line.ID,
					DrugID:   line.DrugID,
					Ordered:  line.OrderedQuantity,
					Received: line.ReceivedQuantity,
					Incoming: incoming[l.LineID],
				}
			}
		}

		// stock rows are locked in drug id order, as sales lock them
		lines := slices.Clone(input.Lines)
		slices.SortStableFunc(lines, func(a, b dto.ReceiveLineInput) int {
			return strings.Compare(drugOf[a.LineID], drugOf[b.LineID])
		})

		supplierID := po.SupplierID
		for _, l := range lines {
			idx := slices.IndexFunc(po.Lines, func(pl model.PurchaseOrderLine) bool { return pl.ID == l.LineID })
			line := &po.Lines[idx]

			cost := line.UnitCost
			if l.UnitCost != nil {
				cost = *l.UnitCost
			}
			update, err := uc.updateCost(ctx, po, line.DrugID, cost, l.Quantity)
			if err != nil {
				return err
			}
			result.CostUpdates = append(result.CostUpdates, *update)

			batchNumber := l.BatchNumber
			if batchNumber == "" {
				batchNumber = fmt.Sprintf("%s-%s", po.OrderNumber, uuid.New().String()[:8])
			}
			batch, err := uc.Inventory.CreateBatch(ctx, &invdto.CreateBatchInput{
				OrganizationID:  po.OrganizationID,
				BranchID:        po.BranchID,
				DrugID:          line.DrugID,
				BatchNumber:     batchNumber,
				Quantity:        l.Quantity,
				ExpiryDate:      l.ExpiryDate,
				CostPrice:       cost,
				SupplierID:      &supplierID,
				PurchaseOrderID: &po.ID,
				ActorID:         input.ActorID,
			})
			if err != nil {
				return err
			}
			result.Batches = append(result.Batches, *batch)
			line.ReceivedQuantity += l.Quantity
		}

		now := uc.now()
		if po.FullyReceived() {
			po.Status = model.PurchaseOrderReceived
			po.ReceivedAt = &now
		} else {
			po.Status = model.PurchaseOrderOrdered
		}
		po.Bump()
		po.UpdatedAt = now
		if err := uc.Orders.Update(ctx, po); err != nil {
			return fmt.Errorf("update purchase order: %w", err)
		}
		result.PurchaseOrder = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// updateCost folds the incoming units into the drug cost basis. It must run before the batch is
// created so the on-hand quantity still reflects the stock valued at the old cost.
func (uc *receivingUseCase) updateCost(ctx context.Context, po *model.PurchaseOrder, drugID string, cost decimal.Decimal, qty int64) (*dto.CostUpdate, error) {
	drug, err := uc.Drugs.GetByIDForUpdate(ctx, drugID)
	if err != nil {
		return nil, err
	}
	if drug == nil || drug.OrganizationID != po.OrganizationID {
		return nil, apperr.NotFound("drug", drugID)
	}
	onHand, err := uc.Inventory.GetInventory(ctx, po.BranchID, drugID)
	if err != nil {
		return nil, err
	}

	next := receiving.RecomputeCost(drug.CostPrice, onHand.Quantity, cost, qty)
	if !next.Equal(drug.CostPrice) {
		if err := uc.Drugs.UpdateCostPrice(ctx, drugID, next); err != nil {
			return nil, fmt.Errorf("update cost price: %w", err)
		}
	}
	return &dto.CostUpdate{DrugID: drugID, Previous: drug.CostPrice, Current: next}, nil
}

// SyncPurchaseOrder applies a pushed purchase order. Devices may draft, edit and cancel orders but
// never book receipts through push.
func (uc *receivingUseCase) SyncPurchaseOrder(ctx context.Context, input *dto.SyncPurchaseOrderInput) (*model.PurchaseOrder, error) {
	ctx, span := uc.Tracer.Start(ctx, "receiving.sync_purchase_order",
		trace.WithAttributes(attribute.String("sync.local_id", input.LocalID)))
	defer span.End()

	var out *model.PurchaseOrder
	err := uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
		po, err := uc.Orders.GetByLocalIDForUpdate(ctx, input.BranchID, input.LocalID)
		if err != nil {
			return err
		}

		if po == nil {
			if input.Delete {
				return apperr.NotFound("purchase order", input.LocalID)
			}
			out, err = uc.createFromSync(ctx, input)
			return err
		}

		if po.Version > input.ClientVersion {
			return &apperr.VersionConflictError{
				Entity:        "purchase_order",
				ID:            po.ID,
				ServerVersion: po.Version,
				ClientVersion: input.ClientVersion,
				Current:       *po,
			}
		}
		if po.Status.Closed() {
			return &receiving.InvalidStatusError{PurchaseOrderID: po.ID, Status: po.Status}
		}

		if input.Delete {
			po.Status = model.PurchaseOrderCancelled
		} else if err := uc.applySync(po, input); err != nil {
			return err
		}
		po.Bump()
		po.UpdatedAt = uc.now()
		if err := uc.Orders.Update(ctx, po); err != nil {
			return fmt.Errorf("update purchase order: %w", err)
		}
		out = po
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return out, nil
}

func (uc *receivingUseCase) createFromSync(ctx context.Context, input *dto.SyncPurchaseOrderInput) (*model.PurchaseOrder, error) {
	if err := validSyncStatus(input.Status); err != nil {
		return nil, err
	}
	now := uc.now()
	localID := input.LocalID
	po := &model.PurchaseOrder{
		BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Versioned:      model.Versioned{Version: 1, SyncStatus: model.SyncStatusSynced, LocalID: &localID},
		OrganizationID: input.OrganizationID,
		BranchID:       input.BranchID,
	}
	if err := uc.applySync(po, input); err != nil {
		return nil, err
	}
	if err := uc.Orders.Create(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

// applySync copies the client-editable fields onto po. Lines are matched by drug; received
// quantities are kept and an ordered quantity may not drop below them.
func (uc *receivingUseCase) applySync(po *model.PurchaseOrder, input *dto.SyncPurchaseOrderInput) error {
	if err := validSyncStatus(input.Status); err != nil {
		return err
	}
	if len(input.Lines) == 0 {
		return apperr.Validation("purchase order %s has no lines", input.LocalID)
	}

	lines := make([]model.PurchaseOrderLine, 0, len(input.Lines))
	total := decimal.Zero
	seen := make(map[string]bool, len(input.Lines))
	for _, in := range input.Lines {
		if seen[in.DrugID] {
			return apperr.Validation("drug %s appears twice on purchase order %s", in.DrugID, input.LocalID)
		}
		seen[in.DrugID] = true
		if in.OrderedQuantity <= 0 || in.UnitCost.IsNegative() {
			return apperr.Validation("invalid line for drug %s", in.DrugID)
		}

		line := model.PurchaseOrderLine{ID: uuid.New().String(), PurchaseOrderID: po.ID, DrugID: in.DrugID}
		if idx := slices.IndexFunc(po.Lines, func(l model.PurchaseOrderLine) bool { return l.DrugID == in.DrugID }); idx >= 0 {
			line = po.Lines[idx]
		}
		if in.OrderedQuantity < line.ReceivedQuantity {
			return apperr.Validation("drug %s: ordered %d is below the %d already received",
				in.DrugID, in.OrderedQuantity, line.ReceivedQuantity)
		}
		line.OrderedQuantity = in.OrderedQuantity
		line.UnitCost = in.UnitCost
		lines = append(lines, line)
		total = total.Add(in.UnitCost.Mul(decimal.NewFromInt(in.OrderedQuantity)))
	}
	for _, l := range po.Lines {
		if !seen[l.DrugID] && l.ReceivedQuantity > 0 {
			return apperr.Validation("drug %s was already received and cannot be removed", l.DrugID)
		}
	}

	po.SupplierID = input.SupplierID
	po.OrderNumber = input.OrderNumber
	po.Status = input.Status
	po.TotalAmount = total.Round(2)
	po.Lines = lines
	return nil
}

func validSyncStatus(s model.PurchaseOrderStatus) error {
	switch s {
	case model.PurchaseOrderDraft, model.PurchaseOrderPending, model.PurchaseOrderApproved, model.PurchaseOrderOrdered:
		return nil
	}
	return apperr.Validation("purchase order status %q cannot be set through sync", s)
}
