package sale

import (
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/apperr"
	"github.com/shopspring/decimal"
)

type BranchInactiveError struct {
	BranchID string
}

func (e *BranchInactiveError) Error() string     { return fmt.Sprintf("branch %s is inactive", e.BranchID) }
func (e *BranchInactiveError) Kind() apperr.Kind { return apperr.KindValidation }

type PrescriptionRequiredError struct {
	DrugIDs []string
	Reason  string
}

func (e *PrescriptionRequiredError) Error() string {
	return fmt.Sprintf("valid prescription required for %s: %s", strings.Join(e.DrugIDs, ", "), e.Reason)
}

func (e *PrescriptionRequiredError) Kind() apperr.Kind { return apperr.KindValidation }

type InsufficientPaymentError struct {
	Total decimal.Decimal
	Paid  decimal.Decimal
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("amount paid %s is less than total %s", e.Paid.StringFixed(2), e.Total.StringFixed(2))
}

func (e *InsufficientPaymentError) Kind() apperr.Kind { return apperr.KindValidation }

type InvalidSaleStatusError struct {
	SaleID string
	Status model.SaleStatus
}

func (e *InvalidSaleStatusError) Error() string {
	return fmt.Sprintf("sale %s is %s", e.SaleID, e.Status)
}

func (e *InvalidSaleStatusError) Kind() apperr.Kind { return apperr.KindValidation }

type RefundQuantityError struct {
	LineID     string
	Refundable int64
	Requested  int64
}

func (e *RefundQuantityError) Error() string {
	return fmt.Sprintf("sale line %s: %d refundable, %d requested", e.LineID, e.Refundable, e.Requested)
}

func (e *RefundQuantityError) Kind() apperr.Kind { return apperr.KindValidation }

type RefundExceedsTotalError struct {
	Refund decimal.Decimal
	Total  decimal.Decimal
}

func (e *RefundExceedsTotalError) Error() string {
	return fmt.Sprintf("refund %s exceeds sale total %s", e.Refund.StringFixed(2), e.Total.StringFixed(2))
}

func (e *RefundExceedsTotalError) Kind() apperr.Kind { return apperr.KindValidation }
