package customer

import (
	"fmt"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/apperr"
)

// DuplicateCustomerError is an identity collision a person has to merge.
type DuplicateCustomerError struct {
	Existing model.Customer
}

func (e *DuplicateCustomerError) Error() string {
	return fmt.Sprintf("customer shares phone or email with existing customer %s", e.Existing.ID)
}

func (e *DuplicateCustomerError) Kind() apperr.Kind { return apperr.KindConflict }
