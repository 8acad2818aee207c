package usecase

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/alert"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/catalog"
	"github.com/fekuna/omnipos-inventory-service/internal/customer"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	invdto "github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/apperr"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/database"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/sale"
	"github.com/fekuna/omnipos-inventory-service/internal/sale/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const referenceSale = "sale"

var hundredPercent = decimal.NewFromInt(100)

type Deps struct {
	Tx        database.TxManager
	Sales     sale.Repository
	Inventory inventory.UseCase
	Drugs     catalog.DrugRepository
	Branches  catalog.BranchRepository
	Customers customer.Repository
	Authz     auth.BranchAuthorizer
	Notifier  alert.Notifier
	Tracer    trace.Tracer
	Logger    logger.ZapLogger
}

type saleUseCase struct {
	Deps
	now func() time.Time
}

func NewSaleUseCase(deps Deps) sale.UseCase {
	return &saleUseCase{
		Deps: deps,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (uc *saleUseCase) GetSale(ctx context.Context, organizationID, id string) (*model.Sale, error) {
	s, err := uc.Sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil || s.OrganizationID != organizationID {
		return nil, apperr.NotFound("sale", id)
	}
	return s, nil
}

func (uc *saleUseCase) GetByLocalID(ctx context.Context, branchID, localID string) (*model.Sale, error) {
	return uc.Sales.GetByLocalID(ctx, branchID, localID)
}

// ProcessSale checks, prices, depletes and records one sale atomically. Any failure leaves
// stock, loyalty and prescriptions untouched.
func (uc *saleUseCase) ProcessSale(ctx context.Context, input *dto.ProcessSaleInput) (*dto.SaleResult, error) {
	ctx, span := uc.Tracer.Start(ctx, "sale.process",
		trace.WithAttributes(
			attribute.String("branch.id", input.BranchID),
			attribute.Int("sale.lines", len(input.Lines)),
		))
	defer span.End()

	result, err := uc.processSale(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("sale.id", result.Sale.ID))
	span.SetStatus(codes.Ok, "sale recorded")

	uc.Logger.Info("sale processed",
		zap.String("sale_id", result.Sale.ID),
		zap.String("branch_id", input.BranchID),
		zap.String("total", result.Sale.TotalAmount.StringFixed(2)),
	)
	return result, nil
}

func (uc *saleUseCase) processSale(ctx context.Context, input *dto.ProcessSaleInput) (*dto.SaleResult, error) {
	if len(input.Lines) == 0 {
		return nil, apperr.Validation("sale has no lines")
	}
	for _, l := range input.Lines {
		if l.Quantity <= 0 {
			return nil, apperr.Validation("quantity for drug %s must be positive", l.DrugID)
		}
		if l.DiscountPercent.IsNegative() || l.DiscountPercent.GreaterThan(hundredPercent) {
			return nil, apperr.Validation("discount for drug %s must be between 0 and 100 percent", l.DrugID)
		}
		if l.TaxPercent.IsNegative() {
			return nil, apperr.Validation("tax for drug %s must not be negative", l.DrugID)
		}
		if l.UnitPrice != nil && l.UnitPrice.IsNegative() {
			return nil, apperr.Validation("unit price for drug %s must not be negative", l.DrugID)
		}
	}
	if input.AmountPaid.IsNegative() {
		return nil, apperr.Validation("amount paid must not be negative")
	}
	if err := uc.Authz.AuthorizeBranch(ctx, input.OrganizationID, input.BranchID); err != nil {
		return nil, err
	}

	at := uc.now()
	if input.SoldAt != nil {
		at = input.SoldAt.UTC()
	}
	saleID := uuid.New().String()
	result := &dto.SaleResult{}

	err := uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
		branch, err := uc.Branches.GetByID(ctx, input.BranchID)
		if err != nil {
			return err
		}
		if branch == nil || branch.OrganizationID != input.OrganizationID {
			return apperr.NotFound("branch", input.BranchID)
		}
		if !branch.IsActive {
			return &sale.BranchInactiveError{BranchID: branch.ID}
		}

		quantities := make(map[string]int64, len(input.Lines))
		for _, l := range input.Lines {
			quantities[l.DrugID] += l.Quantity
		}
		drugIDs := make([]string, 0, len(quantities))
		for id := range quantities {
			drugIDs = append(drugIDs, id)
		}
		slices.Sort(drugIDs)

		drugs, err := uc.Drugs.GetByIDs(ctx, input.OrganizationID, drugIDs)
		if err != nil {
			return err
		}
		var needPrescription []string
		for _, id := range drugIDs {
			d, ok := drugs[id]
			if !ok {
				return apperr.NotFound("drug", id)
			}
			if !d.IsActive {
				return apperr.Validation("drug %s is not active", id)
			}
			if d.RequiresPrescription {
				needPrescription = append(needPrescription, id)
			}
		}

		rx, err := uc.prescription(ctx, input, needPrescription, at)
		if err != nil {
			return err
		}

		if err := uc.Inventory.LockAvailable(ctx, input.BranchID, quantities); err != nil {
			return err
		}

		pricing := make([]sale.LinePricing, len(input.Lines))
		for i, l := range input.Lines {
			price := drugs[l.DrugID].UnitPrice
			if l.UnitPrice != nil {
				price = *l.UnitPrice
			}
			pricing[i] = sale.LinePricing{
				Quantity:        l.Quantity,
				UnitPrice:       price,
				DiscountPercent: l.DiscountPercent,
				TaxPercent:      l.TaxPercent,
			}
		}
		totals := sale.ComputeTotals(pricing)
		if input.AmountPaid.LessThan(totals.Total) {
			return &sale.InsufficientPaymentError{Total: totals.Total, Paid: input.AmountPaid}
		}

		s := &model.Sale{
			BaseModel:        model.BaseModel{ID: saleID, CreatedAt: at, UpdatedAt: uc.now()},
			Versioned:        model.Versioned{Version: 1, SyncStatus: model.SyncStatusSynced, LocalID: input.LocalID},
			OrganizationID:   input.OrganizationID,
			BranchID:         input.BranchID,
			SaleNumber:       input.SaleNumber,
			CashierID:        input.CashierID,
			CustomerID:       input.CustomerID,
			PrescriptionID:   input.PrescriptionID,
			Subtotal:         totals.Subtotal,
			DiscountAmount:   totals.DiscountAmount,
			TaxAmount:        totals.TaxAmount,
			TotalAmount:      totals.Total,
			AmountPaid:       input.AmountPaid,
			ChangeAmount:     input.AmountPaid.Sub(totals.Total),
			PaymentMethod:    input.PaymentMethod,
			PaymentReference: input.PaymentReference,
			Status:           model.SaleCompleted,
			RefundAmount:     decimal.Zero,
		}
		if s.SaleNumber == "" {
			s.SaleNumber = fmt.Sprintf("SL-%s-%s", at.Format("20060102"), saleID[:8])
		}

		refType := referenceSale
		for i, l := range input.Lines {
			d := drugs[l.DrugID]
			line := model.SaleLine{
				ID:              uuid.New().String(),
				SaleID:          saleID,
				DrugID:          d.ID,
				DrugName:        d.Name,
				DrugSKU:         d.SKU,
				Quantity:        l.Quantity,
				UnitPrice:       pricing[i].UnitPrice,
				DiscountPercent: l.DiscountPercent,
				TaxPercent:      l.TaxPercent,
				Subtotal:        totals.Lines[i].Subtotal,
				DiscountAmount:  totals.Lines[i].DiscountAmount,
				TaxAmount:       totals.Lines[i].TaxAmount,
				Total:           totals.Lines[i].Total,
			}
			s.Lines = append(s.Lines, line)

			batches, err := uc.Inventory.Deplete(ctx, input.BranchID, l.DrugID, l.Quantity)
			if err != nil {
				return err
			}
			result.Consumptions = append(result.Consumptions, dto.LineConsumption{
				SaleLineID: line.ID,
				DrugID:     l.DrugID,
				Batches:    batches,
			})

			_, err = uc.Inventory.AdjustStock(ctx, &invdto.AdjustStockInput{
				OrganizationID:     input.OrganizationID,
				BranchID:           input.BranchID,
				DrugID:             l.DrugID,
				QuantityChange:     -l.Quantity,
				Type:               model.AdjustmentSale,
				Reason:             "sale " + s.SaleNumber,
				ActorID:            input.CashierID,
				ReferenceType:      &refType,
				ReferenceID:        &s.ID,
				SkipLowStockSignal: true,
			})
			if err != nil {
				return err
			}
		}

		if err := uc.signalLowStock(ctx, input.BranchID, drugIDs); err != nil {
			return err
		}

		if input.CustomerID != nil {
			c, err := uc.Customers.GetByIDForUpdate(ctx, *input.CustomerID)
			if err != nil {
				return err
			}
			if c == nil || c.OrganizationID != input.OrganizationID {
				return apperr.NotFound("customer", *input.CustomerID)
			}
			s.LoyaltyPointsEarned = customer.PointsFor(s.TotalAmount)
			customer.Earn(c, s.LoyaltyPointsEarned)
			c.Bump()
			c.UpdatedAt = uc.now()
			if err := uc.Customers.Update(ctx, c); err != nil {
				return err
			}
		}

		if rx != nil {
			rx.Fill()
			rx.UpdatedAt = uc.now()
			if err := uc.Customers.UpdatePrescription(ctx, rx); err != nil {
				return err
			}
		}

		if err := uc.Sales.Create(ctx, s); err != nil {
			return err
		}
		result.Sale = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// prescription loads the attached prescription and checks it covers the drugs that need one.
// It returns the prescription to fill, which is nil when no drug needs one.
func (uc *saleUseCase) prescription(ctx context.Context, input *dto.ProcessSaleInput, needed []string, at time.Time) (*model.Prescription, error) {
	if input.PrescriptionID == nil {
		if len(needed) > 0 {
			return nil, &sale.PrescriptionRequiredError{DrugIDs: needed, Reason: "no prescription attached"}
		}
		return nil, nil
	}

	rx, err := uc.Customers.GetPrescriptionForUpdate(ctx, *input.PrescriptionID)
	if err != nil {
		return nil, err
	}
	reason := ""
	switch {
	case rx == nil || rx.OrganizationID != input.OrganizationID:
		reason = "prescription not found"
	case input.CustomerID != nil && rx.CustomerID != *input.CustomerID:
		reason = "prescription belongs to another customer"
	case !rx.Usable(at):
		reason = fmt.Sprintf("prescription is %s with %d refills left", rx.Status, rx.RefillsRemaining)
	}

	if reason != "" {
		if len(needed) > 0 {
			return nil, &sale.PrescriptionRequiredError{DrugIDs: needed, Reason: reason}
		}
		if rx == nil {
			return nil, apperr.NotFound("prescription", *input.PrescriptionID)
		}
		return nil, nil
	}
	if len(needed) == 0 {
		return nil, nil
	}
	return rx, nil
}

// signalLowStock queues a signal for every sold drug at or below its reorder point.
func (uc *saleUseCase) signalLowStock(ctx context.Context, branchID string, drugIDs []string) error {
	for _, id := range drugIDs {
		inv, err := uc.Inventory.GetInventory(ctx, branchID, id)
		if err != nil {
			return err
		}
		if inv.ReorderPoint <= 0 || inv.Quantity > inv.ReorderPoint {
			continue
		}
		signal := alert.SignalFor(inv, uc.now())
		database.AfterCommit(ctx, func() {
			uc.Notifier.NotifyLowStock(context.WithoutCancel(ctx), signal)
		})
	}
	return nil
}

func (uc *saleUseCase) RefundSale(ctx context.Context, input *dto.RefundSaleInput) (*model.Sale, error) {
	ctx, span := uc.Tracer.Start(ctx, "sale.refund", trace.WithAttributes(attribute.String("sale.id", input.SaleID)))
	defer span.End()

	var out *model.Sale
	err := uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
		s, err := uc.Sales.GetByIDForUpdate(ctx, input.SaleID)
		if err != nil {
			return err
		}
		if s == nil || s.OrganizationID != input.OrganizationID {
			return apperr.NotFound("sale", input.SaleID)
		}
		if err := uc.Authz.AuthorizeBranch(ctx, s.OrganizationID, s.BranchID); err != nil {
			return err
		}
		if s.Status != model.SaleCompleted {
			return &sale.InvalidSaleStatusError{SaleID: s.ID, Status: s.Status}
		}

		requested := input.Lines
		if len(requested) == 0 {
			for _, l := range s.Lines {
				if left := l.Quantity - l.RefundedQuantity; left > 0 {
					requested = append(requested, dto.RefundLineInput{SaleLineID: l.ID, Quantity: left})
				}
			}
		}
		if len(requested) == 0 {
			return apperr.Validation("sale %s has nothing left to refund", s.ID)
		}

		refund := decimal.Zero
		refType := referenceSale
		for _, r := range requested {
			idx := slices.IndexFunc(s.Lines, func(l model.SaleLine) bool { return l.ID == r.SaleLineID })
			if idx < 0 {
				return apperr.NotFound("sale line", r.SaleLineID)
			}
			line := &s.Lines[idx]
			refundable := line.Quantity - line.RefundedQuantity
			if r.Quantity <= 0 || r.Quantity > refundable {
				return &sale.RefundQuantityError{LineID: line.ID, Refundable: refundable, Requested: r.Quantity}
			}
			refund = refund.Add(sale.ProRata(line.Total, r.Quantity, line.Quantity))
			line.RefundedQuantity += r.Quantity

			// returned units go back to the aggregate only, batches stay depleted
			_, err := uc.Inventory.AdjustStock(ctx, &invdto.AdjustStockInput{
				OrganizationID: s.OrganizationID,
				BranchID:       s.BranchID,
				DrugID:         line.DrugID,
				QuantityChange: r.Quantity,
				Type:           model.AdjustmentReturn,
				Reason:         "refund " + s.SaleNumber,
				ActorID:        input.ActorID,
				ReferenceType:  &refType,
				ReferenceID:    &s.ID,
			})
			if err != nil {
				return err
			}
		}
		if refund.GreaterThan(s.TotalAmount) {
			return &sale.RefundExceedsTotalError{Refund: refund, Total: s.TotalAmount}
		}

		if s.CustomerID != nil {
			c, err := uc.Customers.GetByIDForUpdate(ctx, *s.CustomerID)
			if err != nil {
				return err
			}
			if c != nil {
				customer.Revoke(c, customer.PointsFor(refund))
				c.Bump()
				c.UpdatedAt = uc.now()
				if err := uc.Customers.Update(ctx, c); err != nil {
					return err
				}
			}
		}

		now := uc.now()
		reason := input.Reason
		s.Status = model.SaleRefunded
		s.RefundAmount = refund
		s.RefundReason = &reason
		s.RefundedAt = &now
		s.Bump()
		s.UpdatedAt = now
		if err := uc.Sales.Update(ctx, s); err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	uc.Logger.Info("sale refunded",
		zap.String("sale_id", out.ID),
		zap.String("refund", out.RefundAmount.StringFixed(2)),
	)
	return out, nil
}
