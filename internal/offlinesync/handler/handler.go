package handler

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/offlinesync"
	"github.com/fekuna/omnipos-inventory-service/internal/offlinesync/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/rpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const serviceName = "omnipos.inventory.v1.SyncService"

type PullRequest struct {
	BranchID   string                         `json:"branch_id"`
	LastSyncAt *time.Time                     `json:"last_sync_at,omitempty"`
	Tables     []model.SyncTable              `json:"tables"`
	Cursors    map[model.SyncTable]dto.Cursor `json:"cursors,omitempty"`
}

type PushRequest struct {
	BranchID string           `json:"branch_id"`
	Records  []dto.PushRecord `json:"records"`
}

type SyncServer interface {
	Pull(ctx context.Context, req *PullRequest) (*dto.PullResult, error)
	Push(ctx context.Context, req *PushRequest) (*dto.PushResult, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*SyncServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(serviceName, "Pull", SyncServer.Pull),
		rpc.Unary(serviceName, "Push", SyncServer.Push),
	},
	Metadata: "omnipos/inventory/v1/sync.proto",
}

type SyncHandler struct {
	uc     offlinesync.UseCase
	authz  auth.BranchAuthorizer
	logger logger.ZapLogger
}

func NewSyncHandler(uc offlinesync.UseCase, authz auth.BranchAuthorizer, log logger.ZapLogger) *SyncHandler {
	return &SyncHandler{
		uc:     uc,
		authz:  authz,
		logger: log,
	}
}

func (h *SyncHandler) Pull(ctx context.Context, req *PullRequest) (*dto.PullResult, error) {
	orgID := auth.GetOrganizationID(ctx)
	if err := h.authz.AuthorizeBranch(ctx, orgID, req.BranchID); err != nil {
		return nil, rpc.Status(err)
	}
	res, err := h.uc.Pull(ctx, &dto.PullInput{
		OrganizationID: orgID,
		BranchID:       req.BranchID,
		LastSyncAt:     req.LastSyncAt,
		Tables:         req.Tables,
		Cursors:        req.Cursors,
	})
	if err != nil {
		h.logger.Error("pull failed", zap.String("branch_id", req.BranchID), zap.Error(err))
		return nil, rpc.Status(err)
	}
	return res, nil
}

func (h *SyncHandler) Push(ctx context.Context, req *PushRequest) (*dto.PushResult, error) {
	orgID := auth.GetOrganizationID(ctx)
	if err := h.authz.AuthorizeBranch(ctx, orgID, req.BranchID); err != nil {
		return nil, rpc.Status(err)
	}
	res, err := h.uc.Push(ctx, &dto.PushInput{
		OrganizationID: orgID,
		BranchID:       req.BranchID,
		ActorID:        auth.GetUserID(ctx),
		Records:        req.Records,
	})
	if err != nil {
		h.logger.Error("push failed", zap.String("branch_id", req.BranchID), zap.Error(err))
		return nil, rpc.Status(err)
	}
	return res, nil
}
