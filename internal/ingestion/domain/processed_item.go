package domain

import "time"

// ProcessedItem records the last ingested version of a drive item. It is the
// dedup store consulted before reprocessing: an item whose lastModified and
// eTag match the record is skipped without any download or embedding work.
type ProcessedItem struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	TenantID     string    `json:"tenant_id" gorm:"uniqueIndex:idx_tenant_drive_item;not null"`
	DriveID      string    `json:"drive_id" gorm:"uniqueIndex:idx_tenant_drive_item;not null"`
	ItemID       string    `json:"item_id" gorm:"uniqueIndex:idx_tenant_drive_item;not null"`
	LastModified time.Time `json:"last_modified"`
	ETag         string    `json:"etag"`
	ProcessedAt  time.Time `json:"processed_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
