package offlinesync

import (
	"fmt"

	"github.com/fekuna/omnipos-inventory-service/internal/pkg/apperr"
)

// BranchBusyError means another push for the branch holds the sync lock.
type BranchBusyError struct {
	BranchID string
}

func (e *BranchBusyError) Error() string {
	return fmt.Sprintf("another push for branch %s is in progress, retry later", e.BranchID)
}

func (e *BranchBusyError) Kind() apperr.Kind { return apperr.KindConflict }
