package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
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

func (r *PGRepository) get(ctx context.Context, query string, args ...interface{}) (*model.Inventory, error) {
	var inv model.Inventory
	err := postgres.Conn(ctx, r.DB).GetContext(ctx, &inv, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *PGRepository) GetByDrug(ctx context.Context, branchID, drugID string) (*model.Inventory, error) {
	return r.get(ctx, `SELECT * FROM inventory WHERE branch_id = $1 AND drug_id = $2`, branchID, drugID)
}

func (r *PGRepository) GetByDrugForUpdate(ctx context.Context, branchID, drugID string) (*model.Inventory, error) {
	return r.get(ctx, `SELECT * FROM inventory WHERE branch_id = $1 AND drug_id = $2 FOR UPDATE`, branchID, drugID)
}

func (r *PGRepository) GetByLocalIDForUpdate(ctx context.Context, branchID, localID string) (*model.Inventory, error) {
	return r.get(ctx, `SELECT * FROM inventory WHERE branch_id = $1 AND local_id = $2 FOR UPDATE`, branchID, localID)
}

func (r *PGRepository) LockOrCreate(ctx context.Context, seed *model.Inventory) (*model.Inventory, error) {
	query := `
        INSERT INTO inventory (
            id, organization_id, branch_id, drug_id,
            quantity, reserved_quantity, reorder_point,
            version, sync_status, local_id, last_counted_at, created_at, updated_at
        )
        VALUES (
            :id, :organization_id, :branch_id, :drug_id,
            :quantity, :reserved_quantity, :reorder_point,
            :version, :sync_status, :local_id, :last_counted_at, :created_at, :updated_at
        )
        ON CONFLICT (branch_id, drug_id) DO NOTHING
    `
	if _, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, seed); err != nil {
		return nil, err
	}

	inv, err := r.GetByDrugForUpdate(ctx, seed.BranchID, seed.DrugID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("inventory for drug %s in branch %s vanished after insert", seed.DrugID, seed.BranchID)
	}
	return inv, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.InventoryFilters) ([]model.Inventory, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.OrganizationID != "" {
		conditions = append(conditions, "organization_id = :organization_id")
		args["organization_id"] = f.OrganizationID
	}
	if f.BranchID != "" {
		conditions = append(conditions, "branch_id = :branch_id")
		args["branch_id"] = f.BranchID
	}
	if f.DrugID != "" {
		conditions = append(conditions, "drug_id = :drug_id")
		args["drug_id"] = f.DrugID
	}
	if f.LowStock {
		conditions = append(conditions, "quantity <= reorder_point AND reorder_point > 0")
	}

	var items []model.Inventory
	count, err := r.page(ctx, "inventory", conditions, args, "updated_at DESC", f.Page, f.PageSize, &items)
	return items, count, err
}

func (r *PGRepository) Update(ctx context.Context, inv *model.Inventory) error {
	query := `
        UPDATE inventory SET
            quantity = :quantity,
            reserved_quantity = :reserved_quantity,
            reorder_point = :reorder_point,
            version = :version,
            sync_status = :sync_status,
            local_id = :local_id,
            last_counted_at = :last_counted_at,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, inv)
	return err
}

func (r *PGRepository) CreateAdjustment(ctx context.Context, a *model.Adjustment) error {
	query := `
        INSERT INTO inventory_adjustments (
            id, organization_id, branch_id, drug_id, inventory_id,
            type, quantity_change, previous_quantity, new_quantity,
            reason, actor_id, transfer_branch_id, reference_type, reference_id,
            local_id, sync_status, created_at
        )
        VALUES (
            :id, :organization_id, :branch_id, :drug_id, :inventory_id,
            :type, :quantity_change, :previous_quantity, :new_quantity,
            :reason, :actor_id, :transfer_branch_id, :reference_type, :reference_id,
            :local_id, :sync_status, :created_at
        )
    `
	_, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, a)
	return postgres.MapError(err)
}

func (r *PGRepository) GetAdjustmentByLocalID(ctx context.Context, branchID, localID string) (*model.Adjustment, error) {
	var a model.Adjustment
	err := postgres.Conn(ctx, r.DB).GetContext(ctx, &a,
		`SELECT * FROM inventory_adjustments WHERE branch_id = $1 AND local_id = $2`, branchID, localID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGRepository) ListAdjustments(ctx context.Context, f *dto.AdjustmentFilters) ([]model.Adjustment, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.BranchID != "" {
		conditions = append(conditions, "branch_id = :branch_id")
		args["branch_id"] = f.BranchID
	}
	if f.DrugID != "" {
		conditions = append(conditions, "drug_id = :drug_id")
		args["drug_id"] = f.DrugID
	}
	if f.Type != "" {
		conditions = append(conditions, "type = :type")
		args["type"] = string(f.Type)
	}

	var items []model.Adjustment
	count, err := r.page(ctx, "inventory_adjustments", conditions, args, "created_at DESC", f.Page, f.PageSize, &items)
	return items, count, err
}

func (r *PGRepository) CreateBatch(ctx context.Context, b *model.Batch) error {
	query := `
        INSERT INTO batches (
            id, organization_id, branch_id, drug_id, batch_number,
            initial_quantity, remaining_quantity, expiry_date, cost_price,
            supplier_id, purchase_order_id, status,
            version, sync_status, local_id, created_at, updated_at
        )
        VALUES (
            :id, :organization_id, :branch_id, :drug_id, :batch_number,
            :initial_quantity, :remaining_quantity, :expiry_date, :cost_price,
            :supplier_id, :purchase_order_id, :status,
            :version, :sync_status, :local_id, :created_at, :updated_at
        )
    `
	_, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, b)
	return postgres.MapError(err)
}

func (r *PGRepository) UpdateBatch(ctx context.Context, b *model.Batch) error {
	query := `
        UPDATE batches SET
            remaining_quantity = :remaining_quantity,
            status = :status,
            version = :version,
            sync_status = :sync_status,
            local_id = :local_id,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, b)
	return err
}

func (r *PGRepository) getBatch(ctx context.Context, query string, args ...interface{}) (*model.Batch, error) {
	var b model.Batch
	err := postgres.Conn(ctx, r.DB).GetContext(ctx, &b, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGRepository) GetBatch(ctx context.Context, id string) (*model.Batch, error) {
	return r.getBatch(ctx, `SELECT * FROM batches WHERE id = $1`, id)
}

func (r *PGRepository) GetBatchForUpdate(ctx context.Context, id string) (*model.Batch, error) {
	return r.getBatch(ctx, `SELECT * FROM batches WHERE id = $1 FOR UPDATE`, id)
}

func (r *PGRepository) GetBatchByNumberForUpdate(ctx context.Context, branchID, drugID, batchNumber string) (*model.Batch, error) {
	return r.getBatch(ctx,
		`SELECT * FROM batches WHERE branch_id = $1 AND drug_id = $2 AND batch_number = $3 FOR UPDATE`,
		branchID, drugID, batchNumber)
}

func (r *PGRepository) GetBatchByLocalIDForUpdate(ctx context.Context, branchID, localID string) (*model.Batch, error) {
	return r.getBatch(ctx, `SELECT * FROM batches WHERE branch_id = $1 AND local_id = $2 FOR UPDATE`, branchID, localID)
}

func (r *PGRepository) ListDepletableForUpdate(ctx context.Context, branchID, drugID string) ([]model.Batch, error) {
	var batches []model.Batch
	err := postgres.Conn(ctx, r.DB).SelectContext(ctx, &batches, `
        SELECT * FROM batches
        WHERE branch_id = $1 AND drug_id = $2 AND remaining_quantity > 0
        ORDER BY expiry_date ASC, created_at ASC
        FOR UPDATE
    `, branchID, drugID)
	return batches, err
}

func (r *PGRepository) ListBatches(ctx context.Context, f *dto.BatchFilters) ([]model.Batch, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.BranchID != "" {
		conditions = append(conditions, "branch_id = :branch_id")
		args["branch_id"] = f.BranchID
	}
	if f.DrugID != "" {
		conditions = append(conditions, "drug_id = :drug_id")
		args["drug_id"] = f.DrugID
	}
	if f.ActiveOnly {
		conditions = append(conditions, "status = 'active'")
	}

	var items []model.Batch
	count, err := r.page(ctx, "batches", conditions, args, "expiry_date ASC, created_at ASC", f.Page, f.PageSize, &items)
	return items, count, err
}

// page runs the count and the paged select for a filtered listing into dest.
func (r *PGRepository) page(ctx context.Context, table string, conditions []string, args map[string]interface{},
	orderBy string, page, pageSize int, dest interface{}) (int, error) {
	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}
	conn := postgres.Conn(ctx, r.DB)

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM "+table+whereClause, args)
	if err != nil {
		return 0, err
	}
	var count int
	if err := conn.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return 0, err
	}

	query := "SELECT * FROM " + table + whereClause + " ORDER BY " + orderBy
	if pageSize > 0 {
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", pageSize, (page-1)*pageSize)
	}
	query, queryArgs, err := sqlx.Named(query, args)
	if err != nil {
		return 0, err
	}
	if err := conn.SelectContext(ctx, dest, r.DB.Rebind(query), queryArgs...); err != nil {
		return 0, err
	}
	return count, nil
}
