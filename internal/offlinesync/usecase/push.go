package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/customer"
	"github.com/fekuna/omnipos-inventory-service/internal/offlinesync"
	"github.com/fekuna/omnipos-inventory-service/internal/offlinesync/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/apperr"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Push applies every record in its own transaction. Conflicts and failures are reported per
// record; only a malformed batch fails the call as a whole.
func (uc *syncUseCase) Push(ctx context.Context, input *dto.PushInput) (*dto.PushResult, error) {
	ctx, span := uc.Tracer.Start(ctx, "sync.push",
		trace.WithAttributes(
			attribute.String("branch.id", input.BranchID),
			attribute.Int("sync.records", len(input.Records)),
		))
	defer span.End()

	kinds, err := uc.validateBatch(input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	unlock, err := uc.lockBranch(ctx, input.BranchID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer unlock()

	res := &dto.PushResult{
		Accepted:          []dto.AcceptedRecord{},
		Conflicts:         []dto.ConflictRecord{},
		Failed:            []dto.FailedRecord{},
		NextPullTimestamp: uc.now(),
	}
	for i := range input.Records {
		uc.pushRecord(ctx, input, &input.Records[i], kinds[i], res)
	}
	res.TotalAccepted = len(res.Accepted)
	res.TotalConflicts = len(res.Conflicts)
	res.TotalFailed = len(res.Failed)
	res.SyncTimestamp = uc.now()

	span.SetAttributes(
		attribute.Int("sync.accepted", res.TotalAccepted),
		attribute.Int("sync.conflicts", res.TotalConflicts),
		attribute.Int("sync.failed", res.TotalFailed),
	)
	span.SetStatus(codes.Ok, "pushed")
	uc.Logger.Info("push applied",
		zap.String("branch_id", input.BranchID),
		zap.Int("accepted", res.TotalAccepted),
		zap.Int("conflicts", res.TotalConflicts),
		zap.Int("failed", res.TotalFailed),
	)
	return res, nil
}

// validateBatch rejects the whole push before any record is applied.
func (uc *syncUseCase) validateBatch(input *dto.PushInput) ([]offlinesync.EntityKind, error) {
	if len(input.Records) == 0 {
		return nil, apperr.Validation("push has no records")
	}
	if len(input.Records) > uc.Config.MaxPushRecords {
		return nil, apperr.Validation("push has %d records, the limit is %d", len(input.Records), uc.Config.MaxPushRecords)
	}

	kinds := make([]offlinesync.EntityKind, len(input.Records))
	seen := make(map[string]bool, len(input.Records))
	for i, rec := range input.Records {
		kind, ok := offlinesync.KindOf(rec.TableName)
		if !ok {
			return nil, apperr.Validation("record %d: table %q cannot be pushed", i, rec.TableName)
		}
		if !offlinesync.Operation(rec.Operation).Valid() {
			return nil, apperr.Validation("record %d: unknown operation %q", i, rec.Operation)
		}
		if rec.SyncVersion < 1 {
			return nil, apperr.Validation("record %d: sync_version must be at least 1", i)
		}
		if rec.LocalID == "" {
			return nil, apperr.Validation("record %d: local_id is required", i)
		}
		key := string(rec.TableName) + "/" + rec.LocalID
		if seen[key] {
			return nil, apperr.Validation("record %d: %s %s appears more than once", i, rec.TableName, rec.LocalID)
		}
		seen[key] = true
		kinds[i] = kind
	}
	return kinds, nil
}

func (uc *syncUseCase) lockBranch(ctx context.Context, branchID string) (func(), error) {
	if uc.Locker == nil {
		return func() {}, nil
	}

	lockKey := fmt.Sprintf("lock:sync:push:%s", branchID)
	lockValue := uuid.New().String()
	for i := 0; i < uc.Config.LockRetries; i++ {
		ok, err := uc.Locker.AcquireLock(ctx, lockKey, lockValue, uc.Config.LockTTL)
		if err != nil {
			uc.Logger.Error("failed to acquire push lock", zap.String("branch_id", branchID), zap.Error(err))
		}
		if ok {
			return func() {
				if err := uc.Locker.ReleaseLock(context.WithoutCancel(ctx), lockKey, lockValue); err != nil {
					uc.Logger.Warn("failed to release push lock", zap.String("branch_id", branchID), zap.Error(err))
				}
			}, nil
		}
		if i == uc.Config.LockRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(uc.Config.LockRetryDelay):
		}
	}
	return nil, &offlinesync.BranchBusyError{BranchID: branchID}
}

func (uc *syncUseCase) pushRecord(ctx context.Context, input *dto.PushInput, rec *dto.PushRecord, kind offlinesync.EntityKind, res *dto.PushResult) {
	ctx, span := uc.Tracer.Start(ctx, "sync.apply",
		trace.WithAttributes(
			attribute.String("sync.table", string(rec.TableName)),
			attribute.String("sync.local_id", rec.LocalID),
			attribute.String("sync.operation", rec.Operation),
		))
	defer span.End()

	accepted, err := uc.apply(ctx, input, rec, kind)

	var (
		stale     *apperr.VersionConflictError
		duplicate *customer.DuplicateCustomerError
	)
	switch {
	case err == nil:
		accepted.TableName = rec.TableName
		accepted.LocalID = rec.LocalID
		res.Accepted = append(res.Accepted, *accepted)
		span.SetAttributes(attribute.String("sync.outcome", "accepted"))
	case errors.As(err, &stale):
		res.Conflicts = append(res.Conflicts, dto.ConflictRecord{
			TableName:    rec.TableName,
			LocalID:      rec.LocalID,
			Resolution:   string(offlinesync.ServerWins),
			Reason:       stale.Error(),
			ServerRecord: stale.Current,
		})
		span.SetAttributes(attribute.String("sync.outcome", "conflict"))
	case errors.As(err, &duplicate):
		res.Conflicts = append(res.Conflicts, dto.ConflictRecord{
			TableName:    rec.TableName,
			LocalID:      rec.LocalID,
			Resolution:   string(offlinesync.ManualRequired),
			Reason:       duplicate.Error(),
			ServerRecord: duplicate.Existing,
		})
		span.SetAttributes(attribute.String("sync.outcome", "conflict"))
	default:
		kindName := apperr.KindOf(err).String()
		res.Failed = append(res.Failed, dto.FailedRecord{
			TableName: rec.TableName,
			LocalID:   rec.LocalID,
			Code:      kindName,
			Error:     err.Error(),
		})
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		uc.Logger.Warn("push record failed",
			zap.String("table", string(rec.TableName)),
			zap.String("local_id", rec.LocalID),
			zap.String("kind", kindName),
			zap.Error(err),
		)
	}
}
