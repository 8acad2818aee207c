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

func (r *PGRepository) Create(ctx context.Context, s *model.Sale) error {
	conn := postgres.Conn(ctx, r.DB)

	query := `
        INSERT INTO sales (
            id, organization_id, branch_id, sale_number, cashier_id, customer_id, prescription_id,
            subtotal, discount_amount, tax_amount, total_amount, amount_paid, change_amount,
            payment_method, payment_reference, status, loyalty_points_earned,
            refund_amount, refund_reason, refunded_at,
            version, sync_status, local_id, created_at, updated_at
        )
        VALUES (
            :id, :organization_id, :branch_id, :sale_number, :cashier_id, :customer_id, :prescription_id,
            :subtotal, :discount_amount, :tax_amount, :total_amount, :amount_paid, :change_amount,
            :payment_method, :payment_reference, :status, :loyalty_points_earned,
            :refund_amount, :refund_reason, :refunded_at,
            :version, :sync_status, :local_id, :created_at, :updated_at
        )
    `
	if _, err := conn.NamedExecContext(ctx, query, s); err != nil {
		return postgres.MapError(err)
	}

	lineQuery := `
        INSERT INTO sale_lines (
            id, sale_id, drug_id, drug_name, drug_sku, quantity, unit_price,
            discount_percent, tax_percent, subtotal, discount_amount, tax_amount, total, refunded_quantity
        )
        VALUES (
            :id, :sale_id, :drug_id, :drug_name, :drug_sku, :quantity, :unit_price,
            :discount_percent, :tax_percent, :subtotal, :discount_amount, :tax_amount, :total, :refunded_quantity
        )
    `
	for i := range s.Lines {
		if _, err := conn.NamedExecContext(ctx, lineQuery, &s.Lines[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *PGRepository) get(ctx context.Context, query string, args ...interface{}) (*model.Sale, error) {
	conn := postgres.Conn(ctx, r.DB)

	var s model.Sale
	if err := conn.GetContext(ctx, &s, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := conn.SelectContext(ctx, &s.Lines,
		`SELECT * FROM sale_lines WHERE sale_id = $1 ORDER BY id`, s.ID); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (*model.Sale, error) {
	return r.get(ctx, `SELECT * FROM sales WHERE id = $1`, id)
}

func (r *PGRepository) GetByIDForUpdate(ctx context.Context, id string) (*model.Sale, error) {
	return r.get(ctx, `SELECT * FROM sales WHERE id = $1 FOR UPDATE`, id)
}

func (r *PGRepository) GetByLocalID(ctx context.Context, branchID, localID string) (*model.Sale, error) {
	return r.get(ctx, `SELECT * FROM sales WHERE branch_id = $1 AND local_id = $2`, branchID, localID)
}

func (r *PGRepository) Update(ctx context.Context, s *model.Sale) error {
	conn := postgres.Conn(ctx, r.DB)

	query := `
        UPDATE sales SET
            status = :status,
            refund_amount = :refund_amount,
            refund_reason = :refund_reason,
            refunded_at = :refunded_at,
            version = :version,
            sync_status = :sync_status,
            updated_at = :updated_at
        WHERE id = :id
    `
	if _, err := conn.NamedExecContext(ctx, query, s); err != nil {
		return err
	}
	for i := range s.Lines {
		_, err := conn.NamedExecContext(ctx,
			`UPDATE sale_lines SET refunded_quantity = :refunded_quantity WHERE id = :id`, &s.Lines[i])
		if err != nil {
			return err
		}
	}
	return nil
}
