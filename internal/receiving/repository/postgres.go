package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const insertLine = `
    INSERT INTO purchase_order_lines (
        id, purchase_order_id, drug_id, ordered_quantity, received_quantity, unit_cost
    )
    VALUES (
        :id, :purchase_order_id, :drug_id, :ordered_quantity, :received_quantity, :unit_cost
    )
`

func (r *PGRepository) get(ctx context.Context, query string, args ...interface{}) (*model.PurchaseOrder, error) {
	conn := postgres.Conn(ctx, r.DB)

	var po model.PurchaseOrder
	if err := conn.GetContext(ctx, &po, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := conn.SelectContext(ctx, &po.Lines,
		`SELECT * FROM purchase_order_lines WHERE purchase_order_id = $1 ORDER BY drug_id`, po.ID); err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	return r.get(ctx, `SELECT * FROM purchase_orders WHERE id = $1`, id)
}

func (r *PGRepository) GetByIDForUpdate(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	return r.get(ctx, `SELECT * FROM purchase_orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *PGRepository) GetByLocalIDForUpdate(ctx context.Context, branchID, localID string) (*model.PurchaseOrder, error) {
	return r.get(ctx,
		`SELECT * FROM purchase_orders WHERE branch_id = $1 AND local_id = $2 FOR UPDATE`, branchID, localID)
}

func (r *PGRepository) Create(ctx context.Context, po *model.PurchaseOrder) error {
	conn := postgres.Conn(ctx, r.DB)

	query := `
        INSERT INTO purchase_orders (
            id, organization_id, branch_id, supplier_id, order_number, status, total_amount,
            received_at, version, sync_status, local_id, created_at, updated_at
        )
        VALUES (
            :id, :organization_id, :branch_id, :supplier_id, :order_number, :status, :total_amount,
            :received_at, :version, :sync_status, :local_id, :created_at, :updated_at
        )
    `
	if _, err := conn.NamedExecContext(ctx, query, po); err != nil {
		return postgres.MapError(err)
	}
	for i := range po.Lines {
		if _, err := conn.NamedExecContext(ctx, insertLine, &po.Lines[i]); err != nil {
			return err
		}
	}
	return nil
}

// Update rewrites the header and replaces the line set. Lines keep their ids across rewrites.
func (r *PGRepository) Update(ctx context.Context, po *model.PurchaseOrder) error {
	conn := postgres.Conn(ctx, r.DB)

	query := `
        UPDATE purchase_orders SET
            supplier_id = :supplier_id,
            order_number = :order_number,
            status = :status,
            total_amount = :total_amount,
            received_at = :received_at,
            version = :version,
            sync_status = :sync_status,
            updated_at = :updated_at
        WHERE id = :id
    `
	if _, err := conn.NamedExecContext(ctx, query, po); err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, `DELETE FROM purchase_order_lines WHERE purchase_order_id = $1`, po.ID); err != nil {
		return err
	}
	for i := range po.Lines {
		if _, err := conn.NamedExecContext(ctx, insertLine, &po.Lines[i]); err != nil {
			return err
		}
	}
	return nil
}
