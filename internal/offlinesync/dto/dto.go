package dto

import (
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// Cursor is the (timestamp, id) position of the last row handed out for a table.
type Cursor struct {
	At time.Time `json:"at"`
	ID string    `json:"id"`
}

type ChangeQuery struct {
	Table          model.SyncTable
	OrganizationID string
	BranchID       string
	// Since is nil on the first sync.
	Since *time.Time
	After *Cursor
	Limit int
}

type ChangePage struct {
	Rows []any
	// Next is set when rows beyond Limit exist.
	Next *Cursor
}

type PullResult struct {
	Tables        map[model.SyncTable][]any  `json:"tables"`
	SyncTimestamp time.Time                  `json:"sync_timestamp"`
	HasMore       bool                       `json:"has_more"`
	TotalRecords  int                        `json:"total_records"`
	NextCursors   map[model.SyncTable]Cursor `json:"next_cursors,omitempty"`
}

type AcceptedRecord struct {
	TableName model.SyncTable `json:"table_name"`
	LocalID   string          `json:"local_id"`
	ServerID  string          `json:"server_id"`
	Version   int64           `json:"version"`
}

type ConflictRecord struct {
	TableName    model.SyncTable `json:"table_name"`
	LocalID      string          `json:"local_id"`
	Resolution   string          `json:"resolution"`
	Reason       string          `json:"reason"`
	ServerRecord any             `json:"server_record"`
}

type FailedRecord struct {
	TableName model.SyncTable `json:"table_name"`
	LocalID   string          `json:"local_id"`
	Code      string          `json:"code"`
	Error     string          `json:"error"`
}

type PushResult struct {
	Accepted          []AcceptedRecord `json:"accepted"`
	Conflicts         []ConflictRecord `json:"conflicts"`
	Failed            []FailedRecord   `json:"failed"`
	TotalAccepted     int              `json:"total_accepted"`
	TotalConflicts    int              `json:"total_conflicts"`
	TotalFailed       int              `json:"total_failed"`
	SyncTimestamp     time.Time        `json:"sync_timestamp"`
	NextPullTimestamp time.Time        `json:"next_pull_timestamp"`
}
