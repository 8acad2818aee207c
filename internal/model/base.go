package model

import "time"

type BaseModel struct {
	ID        string    `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type SyncStatus string

const (
	SyncStatusSynced   SyncStatus = "synced"
	SyncStatusPending  SyncStatus = "pending"
	SyncStatusConflict SyncStatus = "conflict"
)

// Versioned is embedded by every entity that devices replicate.
type Versioned struct {
	Version    int64      `db:"version" json:"version"`
	SyncStatus SyncStatus `db:"sync_status" json:"sync_status"`
	LocalID    *string    `db:"local_id" json:"local_id,omitempty"`
}

// Bump records one accepted mutation.
func (v *Versioned) Bump() {
	v.Version++
	v.SyncStatus = SyncStatusSynced
}
