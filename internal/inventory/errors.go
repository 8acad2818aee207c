package inventory

import (
	"fmt"

	"github.com/fekuna/omnipos-inventory-service/internal/pkg/apperr"
)

type NegativeStockError struct {
	BranchID string
	DrugID   string
	Current  int64
	Change   int64
}

func (e *NegativeStockError) Error() string {
	return fmt.Sprintf("stock for drug %s in branch %s would become negative (%d%+d)",
		e.DrugID, e.BranchID, e.Current, e.Change)
}

func (e *NegativeStockError) Kind() apperr.Kind { return apperr.KindValidation }

type InsufficientStockError struct {
	BranchID  string
	DrugID    string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for drug %s in branch %s: available %d, requested %d",
		e.DrugID, e.BranchID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Kind() apperr.Kind { return apperr.KindValidation }

type OverReleaseError struct {
	BranchID  string
	DrugID    string
	Reserved  int64
	Requested int64
}

func (e *OverReleaseError) Error() string {
	return fmt.Sprintf("cannot release %d of drug %s in branch %s: only %d reserved",
		e.Requested, e.DrugID, e.BranchID, e.Reserved)
}

func (e *OverReleaseError) Kind() apperr.Kind { return apperr.KindValidation }

type SameBranchError struct {
	BranchID string
}

func (e *SameBranchError) Error() string {
	return fmt.Sprintf("cannot transfer stock from branch %s to itself", e.BranchID)
}

func (e *SameBranchError) Kind() apperr.Kind { return apperr.KindValidation }

type DuplicateBatchError struct {
	BranchID    string
	DrugID      string
	BatchNumber string
}

func (e *DuplicateBatchError) Error() string {
	return fmt.Sprintf("batch %s already exists for drug %s in branch %s", e.BatchNumber, e.DrugID, e.BranchID)
}

func (e *DuplicateBatchError) Kind() apperr.Kind { return apperr.KindValidation }

type InsufficientBatchQuantityError struct {
	BatchID   string
	Remaining int64
	Requested int64
}

func (e *InsufficientBatchQuantityError) Error() string {
	return fmt.Sprintf("batch %s has %d remaining, requested %d", e.BatchID, e.Remaining, e.Requested)
}

func (e *InsufficientBatchQuantityError) Kind() apperr.Kind { return apperr.KindValidation }

// DepletionShortfallError means the batches hold less than the aggregate record promised.
type DepletionShortfallError struct {
	BranchID  string
	DrugID    string
	Requested int64
	Shortfall int64
}

func (e *DepletionShortfallError) Error() string {
	return fmt.Sprintf("batches for drug %s in branch %s are short by %d of %d",
		e.DrugID, e.BranchID, e.Shortfall, e.Requested)
}

func (e *DepletionShortfallError) Kind() apperr.Kind { return apperr.KindConsistency }
