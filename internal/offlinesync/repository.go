package offlinesync

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/offlinesync/dto"
)

type Repository interface {
	// Changed returns up to q.Limit rows of q.Table modified after q.Since, ordered by
	// (modification time, id) and starting after q.After.
	Changed(ctx context.Context, q *dto.ChangeQuery) (*dto.ChangePage, error)
}
