package domain

import "time"

// DriveDeltaLink stores the Graph delta sync token for one drive. The link
// is only advanced after every page of a delta pass has been processed, so a
// crash mid-pass replays the pass (at-least-once; ingestion is idempotent).
type DriveDeltaLink struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	TenantID  string    `json:"tenant_id" gorm:"uniqueIndex:idx_tenant_drive;not null"`
	DriveID   string    `json:"drive_id" gorm:"uniqueIndex:idx_tenant_drive;not null"`
	DeltaLink string    `json:"delta_link"`
	SyncedAt  time.Time `json:"synced_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
