package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/customer"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/offlinesync"
	"github.com/fekuna/omnipos-inventory-service/internal/offlinesync/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/apperr"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/receiving"
	"github.com/fekuna/omnipos-inventory-service/internal/sale"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Config struct {
	PullPageSize   int
	MaxPushRecords int
	// PullOverlap is subtracted from the returned sync timestamp so rows committed by
	// transactions that were still open at pull time are picked up by the next pull.
	PullOverlap    time.Duration
	LockTTL        time.Duration
	LockRetries    int
	LockRetryDelay time.Duration
}

type Deps struct {
	Config    Config
	Changes   offlinesync.Repository
	Locker    offlinesync.Locker // nil when running on a single instance
	Inventory inventory.UseCase
	Sales     sale.UseCase
	Receiving receiving.UseCase
	Customers customer.UseCase
	// Directory resolves customers referenced by their device id.
	Directory customer.Repository
	Tracer    trace.Tracer
	Logger    logger.ZapLogger
}

type syncUseCase struct {
	Deps
	now func() time.Time
}

func NewSyncUseCase(deps Deps) offlinesync.UseCase {
	if deps.Config.PullPageSize <= 0 {
		deps.Config.PullPageSize = 500
	}
	if deps.Config.MaxPushRecords <= 0 {
		deps.Config.MaxPushRecords = 500
	}
	if deps.Config.LockRetries <= 0 {
		deps.Config.LockRetries = 3
	}
	return &syncUseCase{
		Deps: deps,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (uc *syncUseCase) Pull(ctx context.Context, input *dto.PullInput) (*dto.PullResult, error) {
	ctx, span := uc.Tracer.Start(ctx, "sync.pull", trace.WithAttributes(attribute.String("branch.id", input.BranchID)))
	defer span.End()

	tables, err := pullTables(input.Tables)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// taken before reading so nothing written during the pull is skipped next time
	res := &dto.PullResult{
		Tables:        make(map[model.SyncTable][]any, len(tables)),
		SyncTimestamp: uc.now().Add(-uc.Config.PullOverlap),
	}
	for _, t := range tables {
		q := &dto.ChangeQuery{
			Table:          t,
			OrganizationID: input.OrganizationID,
			BranchID:       input.BranchID,
			Since:          input.LastSyncAt,
			Limit:          uc.Config.PullPageSize,
		}
		if c, ok := input.Cursors[t]; ok {
			q.After = &c
		}
		page, err := uc.Changes.Changed(ctx, q)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		rows := page.Rows
		if rows == nil {
			rows = []any{}
		}
		res.Tables[t] = rows
		res.TotalRecords += len(rows)
		if page.Next != nil {
			if res.NextCursors == nil {
				res.NextCursors = map[model.SyncTable]dto.Cursor{}
			}
			res.HasMore = true
			res.NextCursors[t] = *page.Next
		}
	}

	span.SetAttributes(
		attribute.Int("sync.records", res.TotalRecords),
		attribute.Bool("sync.has_more", res.HasMore),
	)
	span.SetStatus(codes.Ok, "pulled")
	uc.Logger.Debug("pull served",
		zap.String("branch_id", input.BranchID),
		zap.Int("records", res.TotalRecords),
		zap.Bool("has_more", res.HasMore),
	)
	return res, nil
}

func pullTables(requested []model.SyncTable) ([]model.SyncTable, error) {
	if len(requested) == 0 {
		return model.PullTables, nil
	}
	seen := make(map[model.SyncTable]bool, len(requested))
	tables := make([]model.SyncTable, 0, len(requested))
	for _, t := range requested {
		if !t.Pullable() {
			return nil, apperr.Validation("table %q cannot be pulled", t)
		}
		if !seen[t] {
			seen[t] = true
			tables = append(tables, t)
		}
	}
	return tables, nil
}
