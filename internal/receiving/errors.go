package receiving

import (
	"fmt"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/apperr"
)

type InvalidStatusError struct {
	PurchaseOrderID string
	Status          model.PurchaseOrderStatus
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("purchase order %s is %s and cannot be received", e.PurchaseOrderID, e.Status)
}

func (e *InvalidStatusError) Kind() apperr.Kind { return apperr.KindValidation }

type OverReceiptError struct {
	LineID   string
	DrugID   string
	Ordered  int64
	Received int64
	Incoming int64
}

func (e *OverReceiptError) Error() string {
	return fmt.Sprintf("line %s (drug %s): receiving %d on top of %d exceeds ordered %d",
		e.LineID, e.DrugID, e.Incoming, e.Received, e.Ordered)
}

func (e *OverReceiptError) Kind() apperr.Kind { return apperr.KindValidation }
