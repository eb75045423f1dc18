package repository

import "time"

// ProcessedItemRepository is the dedup store keyed (tenant, drive, item).
type ProcessedItemRepository interface {
	// IsProcessed reports whether this exact version of the item was already
	// ingested.
	IsProcessed(tenantID, driveID, itemID string, lastModified time.Time, etag string) (bool, error)
	// MarkProcessed records the ingested version, overwriting any prior record.
	MarkProcessed(tenantID, driveID, itemID string, lastModified time.Time, etag string) error
	Delete(tenantID, driveID, itemID string) error
	DeleteByTenant(tenantID string) error
}

// DeltaLinkRepository stores per-drive Graph delta sync tokens.
type DeltaLinkRepository interface {
	// Get returns "" when no link is stored (full delta pass required).
	Get(tenantID, driveID string) (string, error)
	Save(tenantID, driveID, deltaLink string) error
	Delete(tenantID, driveID string) error
	DeleteByTenant(tenantID string) error
}
