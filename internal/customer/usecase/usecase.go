package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/customer"
	"github.com/fekuna/omnipos-inventory-service/internal/customer/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/apperr"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/database"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type customerUseCase struct {
	tx     database.TxManager
	repo   customer.Repository
	logger logger.ZapLogger
}

func NewCustomerUseCase(tx database.TxManager, repo customer.Repository, log logger.ZapLogger) customer.UseCase {
	return &customerUseCase{
		tx:     tx,
		repo:   repo,
		logger: log,
	}
}

// SyncCustomer never overwrites a different customer: a phone or email already used in the
// organization is reported as DuplicateCustomerError and nothing is written.
func (uc *customerUseCase) SyncCustomer(ctx context.Context, input *dto.SyncCustomerInput) (*model.Customer, error) {
	if input.Name == "" {
		return nil, apperr.Validation("customer name is required")
	}

	var out *model.Customer
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.repo.LockIdentities(ctx, customer.IdentityKeys(input.OrganizationID, input.Phone, input.Email)); err != nil {
			return err
		}
		existing, err := uc.repo.GetByLocalIDForUpdate(ctx, input.OrganizationID, input.LocalID)
		if err != nil {
			return err
		}

		excludeID := ""
		if existing != nil {
			excludeID = existing.ID
		}
		dup, err := uc.repo.FindDuplicate(ctx, input.OrganizationID, input.Phone, input.Email, excludeID)
		if err != nil {
			return err
		}
		if dup != nil {
			uc.logger.Info("customer identity collision",
				zap.String("local_id", input.LocalID),
				zap.String("existing_id", dup.ID),
			)
			return &customer.DuplicateCustomerError{Existing: *dup}
		}

		now := time.Now().UTC()
		if existing == nil {
			localID := input.LocalID
			out = &model.Customer{
				BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
				Versioned:      model.Versioned{Version: 1, SyncStatus: model.SyncStatusSynced, LocalID: &localID},
				OrganizationID: input.OrganizationID,
				Name:           input.Name,
				Phone:          input.Phone,
				Email:          input.Email,
				LoyaltyTier:    model.TierBronze,
			}
			return uc.repo.Create(ctx, out)
		}

		if existing.Version > input.ClientVersion {
			return &apperr.VersionConflictError{
				Entity:        "customer",
				ID:            existing.ID,
				ServerVersion: existing.Version,
				ClientVersion: input.ClientVersion,
				Current:       *existing,
			}
		}

		// loyalty is server-owned, devices only edit contact data
		existing.Name = input.Name
		existing.Phone = input.Phone
		existing.Email = input.Email
		existing.Bump()
		existing.UpdatedAt = now
		out = existing
		return uc.repo.Update(ctx, existing)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
