package offlinesync

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/offlinesync/dto"
)

type UseCase interface {
	Pull(ctx context.Context, input *dto.PullInput) (*dto.PullResult, error)
	Push(ctx context.Context, input *dto.PushInput) (*dto.PushResult, error)
}

// Locker serializes pushes per branch across service instances.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}
