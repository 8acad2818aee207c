package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	custdto "github.com/fekuna/omnipos-inventory-service/internal/customer/dto"
	invdto "github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/offlinesync"
	"github.com/fekuna/omnipos-inventory-service/internal/offlinesync/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/apperr"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/database"
	rcvdto "github.com/fekuna/omnipos-inventory-service/internal/receiving/dto"
	saledto "github.com/fekuna/omnipos-inventory-service/internal/sale/dto"
)

const referenceSync = "sync"

// apply routes one record to the applier of its kind.
func (uc *syncUseCase) apply(ctx context.Context, in *dto.PushInput, rec *dto.PushRecord, kind offlinesync.EntityKind) (*dto.AcceptedRecord, error) {
	op := offlinesync.Operation(rec.Operation)
	if kind.Immutable() && op != offlinesync.OpCreate {
		return nil, apperr.Validation("%s records are immutable, %s is not allowed", rec.TableName, op)
	}
	if op == offlinesync.OpDelete && kind != offlinesync.KindPurchaseOrder {
		return nil, apperr.Validation("%s records cannot be deleted", rec.TableName)
	}

	switch kind {
	case offlinesync.KindInventory:
		return retryOnUnique(func() (*dto.AcceptedRecord, error) { return uc.applyInventory(ctx, in, rec) })
	case offlinesync.KindBatch:
		return retryOnUnique(func() (*dto.AcceptedRecord, error) { return uc.applyBatch(ctx, in, rec) })
	case offlinesync.KindPurchaseOrder:
		return retryOnUnique(func() (*dto.AcceptedRecord, error) { return uc.applyPurchaseOrder(ctx, in, rec, op) })
	case offlinesync.KindCustomer:
		return retryOnUnique(func() (*dto.AcceptedRecord, error) { return uc.applyCustomer(ctx, in, rec) })
	case offlinesync.KindAdjustment:
		return uc.applyAdjustment(ctx, in, rec)
	case offlinesync.KindSale:
		return uc.applySale(ctx, in, rec)
	}
	return nil, fmt.Errorf("no applier for table %s", rec.TableName)
}

// retryOnUnique runs an upsert a second time when it lost a creation race to a concurrent
// request; the second run finds the winner's row and updates or conflicts against it.
func retryOnUnique(fn func() (*dto.AcceptedRecord, error)) (*dto.AcceptedRecord, error) {
	out, err := fn()
	if errors.Is(err, database.ErrUniqueViolation) {
		return fn()
	}
	return out, err
}

func decode[T any](rec *dto.PushRecord) (*T, error) {
	if len(rec.Payload) == 0 {
		return nil, apperr.Validation("%s %s: payload is required", rec.TableName, rec.LocalID)
	}
	var p T
	if err := json.Unmarshal(rec.Payload, &p); err != nil {
		return nil, apperr.Validation("%s %s: invalid payload: %v", rec.TableName, rec.LocalID, err)
	}
	return &p, nil
}

func (uc *syncUseCase) applyInventory(ctx context.Context, in *dto.PushInput, rec *dto.PushRecord) (*dto.AcceptedRecord, error) {
	p, err := decode[dto.InventoryPayload](rec)
	if err != nil {
		return nil, err
	}
	inv, err := uc.Inventory.SyncInventory(ctx, &invdto.SyncInventoryInput{
		OrganizationID:   in.OrganizationID,
		BranchID:         in.BranchID,
		DrugID:           p.DrugID,
		LocalID:          rec.LocalID,
		ClientVersion:    rec.SyncVersion,
		Quantity:         p.Quantity,
		ReservedQuantity: p.ReservedQuantity,
		ReorderPoint:     p.ReorderPoint,
		ActorID:          in.ActorID,
	})
	if err != nil {
		return nil, err
	}
	return &dto.AcceptedRecord{ServerID: inv.ID, Version: inv.Version}, nil
}

func (uc *syncUseCase) applyBatch(ctx context.Context, in *dto.PushInput, rec *dto.PushRecord) (*dto.AcceptedRecord, error) {
	p, err := decode[dto.BatchPayload](rec)
	if err != nil {
		return nil, err
	}
	b, err := uc.Inventory.SyncBatch(ctx, &invdto.SyncBatchInput{
		OrganizationID:    in.OrganizationID,
		BranchID:          in.BranchID,
		DrugID:            p.DrugID,
		LocalID:           rec.LocalID,
		ClientVersion:     rec.SyncVersion,
		BatchNumber:       p.BatchNumber,
		InitialQuantity:   p.InitialQuantity,
		RemainingQuantity: p.RemainingQuantity,
		ExpiryDate:        p.ExpiryDate,
		CostPrice:         p.CostPrice,
		SupplierID:        p.SupplierID,
		PurchaseOrderID:   p.PurchaseOrderID,
	})
	if err != nil {
		return nil, err
	}
	return &dto.AcceptedRecord{ServerID: b.ID, Version: b.Version}, nil
}

func (uc *syncUseCase) applyPurchaseOrder(ctx context.Context, in *dto.PushInput, rec *dto.PushRecord, op offlinesync.Operation) (*dto.AcceptedRecord, error) {
	input := &rcvdto.SyncPurchaseOrderInput{
		OrganizationID: in.OrganizationID,
		BranchID:       in.BranchID,
		LocalID:        rec.LocalID,
		ClientVersion:  rec.SyncVersion,
		Delete:         op == offlinesync.OpDelete,
	}
	if !input.Delete {
		p, err := decode[dto.PurchaseOrderPayload](rec)
		if err != nil {
			return nil, err
		}
		input.SupplierID = p.SupplierID
		input.OrderNumber = p.OrderNumber
		input.Status = p.Status
		for _, l := range p.Lines {
			input.Lines = append(input.Lines, rcvdto.SyncPurchaseOrderLine{
				DrugID:          l.DrugID,
				OrderedQuantity: l.OrderedQuantity,
				UnitCost:        l.UnitCost,
			})
		}
	}

	po, err := uc.Receiving.SyncPurchaseOrder(ctx, input)
	if err != nil {
		return nil, err
	}
	return &dto.AcceptedRecord{ServerID: po.ID, Version: po.Version}, nil
}

func (uc *syncUseCase) applyCustomer(ctx context.Context, in *dto.PushInput, rec *dto.PushRecord) (*dto.AcceptedRecord, error) {
	p, err := decode[dto.CustomerPayload](rec)
	if err != nil {
		return nil, err
	}
	c, err := uc.Customers.SyncCustomer(ctx, &custdto.SyncCustomerInput{
		OrganizationID: in.OrganizationID,
		LocalID:        rec.LocalID,
		ClientVersion:  rec.SyncVersion,
		Name:           p.Name,
		Phone:          p.Phone,
		Email:          p.Email,
	})
	if err != nil {
		return nil, err
	}
	return &dto.AcceptedRecord{ServerID: c.ID, Version: c.Version}, nil
}

// applyAdjustment never applies the same local_id twice: a second application would move stock again.
func (uc *syncUseCase) applyAdjustment(ctx context.Context, in *dto.PushInput, rec *dto.PushRecord) (*dto.AcceptedRecord, error) {
	if existing, err := uc.Inventory.GetAdjustmentByLocalID(ctx, in.BranchID, rec.LocalID); err != nil || existing != nil {
		return adjustmentAccepted(existing, err)
	}

	p, err := decode[dto.AdjustmentPayload](rec)
	if err != nil {
		return nil, err
	}
	if p.Type == model.AdjustmentSale || p.Type == model.AdjustmentTransfer {
		return nil, apperr.Validation("adjustment type %q is recorded by its own operation", p.Type)
	}

	localID := rec.LocalID
	refType := referenceSync
	adj, err := uc.Inventory.AdjustStock(ctx, &invdto.AdjustStockInput{
		OrganizationID: in.OrganizationID,
		BranchID:       in.BranchID,
		DrugID:         p.DrugID,
		QuantityChange: p.QuantityChange,
		Type:           p.Type,
		Reason:         p.Reason,
		ActorID:        in.ActorID,
		ReferenceType:  &refType,
		LocalID:        &localID,
	})
	if errors.Is(err, database.ErrUniqueViolation) {
		return adjustmentAccepted(uc.Inventory.GetAdjustmentByLocalID(ctx, in.BranchID, rec.LocalID))
	}
	return adjustmentAccepted(adj, err)
}

func adjustmentAccepted(adj *model.Adjustment, err error) (*dto.AcceptedRecord, error) {
	if err != nil {
		return nil, err
	}
	if adj == nil {
		return nil, errors.New("adjustment vanished after a unique violation")
	}
	// adjustments are immutable and stay at their first version
	return &dto.AcceptedRecord{ServerID: adj.ID, Version: 1}, nil
}

// applySale runs an offline sale through the regular sale processor. A known local_id is
// accepted without being processed again.
func (uc *syncUseCase) applySale(ctx context.Context, in *dto.PushInput, rec *dto.PushRecord) (*dto.AcceptedRecord, error) {
	if existing, err := uc.Sales.GetByLocalID(ctx, in.BranchID, rec.LocalID); err != nil || existing != nil {
		return saleAccepted(existing, err)
	}

	p, err := decode[dto.SalePayload](rec)
	if err != nil {
		return nil, err
	}
	customerID := p.CustomerID
	if customerID == nil && p.CustomerLocalID != nil {
		c, err := uc.Directory.GetByLocalIDForUpdate(ctx, in.OrganizationID, *p.CustomerLocalID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, apperr.NotFound("customer", *p.CustomerLocalID)
		}
		customerID = &c.ID
	}

	cashierID := p.CashierID
	if cashierID == "" {
		cashierID = in.ActorID
	}
	soldAt := p.SoldAt
	if soldAt == nil {
		soldAt = rec.CreatedOfflineAt
	}
	lines := make([]saledto.SaleLineInput, len(p.Lines))
	for i, l := range p.Lines {
		lines[i] = saledto.SaleLineInput{
			DrugID:          l.DrugID,
			UnitPrice:       l.UnitPrice,
			Quantity:        l.Quantity,
			DiscountPercent: l.DiscountPercent,
			TaxPercent:      l.TaxPercent,
		}
	}

	localID := rec.LocalID
	res, err := uc.Sales.ProcessSale(ctx, &saledto.ProcessSaleInput{
		OrganizationID:   in.OrganizationID,
		BranchID:         in.BranchID,
		CashierID:        cashierID,
		CustomerID:       customerID,
		PrescriptionID:   p.PrescriptionID,
		Lines:            lines,
		AmountPaid:       p.AmountPaid,
		PaymentMethod:    p.PaymentMethod,
		PaymentReference: p.PaymentReference,
		LocalID:          &localID,
		SaleNumber:       p.SaleNumber,
		SoldAt:           soldAt,
	})
	if errors.Is(err, database.ErrUniqueViolation) {
		return saleAccepted(uc.Sales.GetByLocalID(ctx, in.BranchID, rec.LocalID))
	}
	if err != nil {
		return nil, err
	}
	return saleAccepted(res.Sale, nil)
}

func saleAccepted(s *model.Sale, err error) (*dto.AcceptedRecord, error) {
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.New("sale vanished after a unique violation")
	}
	return &dto.AcceptedRecord{ServerID: s.ID, Version: s.Version}, nil
}
