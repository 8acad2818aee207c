package dto

import (
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type PullInput struct {
	OrganizationID string
	BranchID       string
	LastSyncAt     *time.Time
	// Tables empty pulls every table.
	Tables []model.SyncTable
	// Cursors continue a pull that reported has_more.
	Cursors map[model.SyncTable]Cursor
}

type PushRecord struct {
	TableName        model.SyncTable `json:"table_name"`
	LocalID          string          `json:"local_id"`
	Operation        string          `json:"operation"`
	SyncVersion      int64           `json:"sync_version"`
	Payload          json.RawMessage `json:"payload"`
	CreatedOfflineAt *time.Time      `json:"created_offline_at,omitempty"`
}

type PushInput struct {
	OrganizationID string
	BranchID       string
	ActorID        string
	Records        []PushRecord
}
