package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type DrugPGRepository struct {
	DB *sqlx.DB
}

func NewDrugPGRepository(db *sqlx.DB) *DrugPGRepository {
	return &DrugPGRepository{DB: db}
}

func (r *DrugPGRepository) GetByIDs(ctx context.Context, organizationID string, ids []string) (map[string]model.Drug, error) {
	out := make(map[string]model.Drug, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM drugs WHERE organization_id = ? AND id IN (?)`, organizationID, ids)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var drugs []model.Drug
	if err := postgres.Conn(ctx, r.DB).SelectContext(ctx, &drugs, query, args...); err != nil {
		return nil, err
	}
	for _, d := range drugs {
		out[d.ID] = d
	}
	return out, nil
}

func (r *DrugPGRepository) GetByIDForUpdate(ctx context.Context, id string) (*model.Drug, error) {
	var d model.Drug
	err := postgres.Conn(ctx, r.DB).GetContext(ctx, &d, `SELECT * FROM drugs WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *DrugPGRepository) UpdateCostPrice(ctx context.Context, id string, cost decimal.Decimal) error {
	_, err := postgres.Conn(ctx, r.DB).ExecContext(ctx,
		`UPDATE drugs SET cost_price = $1, version = version + 1, updated_at = $2 WHERE id = $3`,
		cost, time.Now().UTC(), id)
	return err
}

type BranchPGRepository struct {
	DB *sqlx.DB
}

func NewBranchPGRepository(db *sqlx.DB) *BranchPGRepository {
	return &BranchPGRepository{DB: db}
}

func (r *BranchPGRepository) GetByID(ctx context.Context, id string) (*model.Branch, error) {
	var b model.Branch
	err := postgres.Conn(ctx, r.DB).GetContext(ctx, &b, `SELECT * FROM branches WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
