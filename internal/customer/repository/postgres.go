package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

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

func (r *PGRepository) get(ctx context.Context, query string, args ...interface{}) (*model.Customer, error) {
	var c model.Customer
	err := postgres.Conn(ctx, r.DB).GetContext(ctx, &c, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) GetByIDForUpdate(ctx context.Context, id string) (*model.Customer, error) {
	return r.get(ctx, `SELECT * FROM customers WHERE id = $1 FOR UPDATE`, id)
}

func (r *PGRepository) GetByLocalIDForUpdate(ctx context.Context, organizationID, localID string) (*model.Customer, error) {
	return r.get(ctx, `SELECT * FROM customers WHERE organization_id = $1 AND local_id = $2 FOR UPDATE`,
		organizationID, localID)
}

// LockIdentities takes a transaction-scoped advisory lock per key. Phone and email carry no
// unique index, so concurrent pushes from different branches meet here instead.
func (r *PGRepository) LockIdentities(ctx context.Context, keys []string) error {
	conn := postgres.Conn(ctx, r.DB)
	for _, key := range keys {
		if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return err
		}
	}
	return nil
}

func (r *PGRepository) FindDuplicate(ctx context.Context, organizationID string, phone, email *string, excludeID string) (*model.Customer, error) {
	matches := []string{}
	args := map[string]interface{}{
		"organization_id": organizationID,
		"exclude_id":      excludeID,
	}
	if phone != nil && *phone != "" {
		matches = append(matches, "phone = :phone")
		args["phone"] = *phone
	}
	if email != nil && *email != "" {
		matches = append(matches, "lower(email) = lower(:email)")
		args["email"] = *email
	}
	if len(matches) == 0 {
		return nil, nil
	}

	query, queryArgs, err := sqlx.Named(`
        SELECT * FROM customers
        WHERE organization_id = :organization_id AND id <> :exclude_id
          AND (`+strings.Join(matches, " OR ")+`)
        ORDER BY created_at ASC
        LIMIT 1
    `, args)
	if err != nil {
		return nil, err
	}
	return r.get(ctx, r.DB.Rebind(query), queryArgs...)
}

func (r *PGRepository) Create(ctx context.Context, c *model.Customer) error {
	query := `
        INSERT INTO customers (
            id, organization_id, name, phone, email, loyalty_points, loyalty_tier,
            version, sync_status, local_id, created_at, updated_at
        )
        VALUES (
            :id, :organization_id, :name, :phone, :email, :loyalty_points, :loyalty_tier,
            :version, :sync_status, :local_id, :created_at, :updated_at
        )
    `
	_, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, c)
	return postgres.MapError(err)
}

func (r *PGRepository) Update(ctx context.Context, c *model.Customer) error {
	query := `
        UPDATE customers SET
            name = :name,
            phone = :phone,
            email = :email,
            loyalty_points = :loyalty_points,
            loyalty_tier = :loyalty_tier,
            version = :version,
            sync_status = :sync_status,
            local_id = :local_id,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, c)
	return postgres.MapError(err)
}

func (r *PGRepository) GetPrescriptionForUpdate(ctx context.Context, id string) (*model.Prescription, error) {
	var p model.Prescription
	err := postgres.Conn(ctx, r.DB).GetContext(ctx, &p, `SELECT * FROM prescriptions WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) UpdatePrescription(ctx context.Context, p *model.Prescription) error {
	_, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, `
        UPDATE prescriptions SET
            status = :status,
            refills_remaining = :refills_remaining,
            updated_at = :updated_at
        WHERE id = :id
    `, p)
	return err
}
