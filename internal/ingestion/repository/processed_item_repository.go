package repository

import (
	"time"

	ingestdomain "docusense-backend/internal/ingestion/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// processedItemRepository implements ProcessedItemRepository with GORM.
type processedItemRepository struct {
	db *gorm.DB
}

// NewProcessedItemRepository creates a new instance of processedItemRepository.
func NewProcessedItemRepository(db *gorm.DB) ProcessedItemRepository {
	return &processedItemRepository{db: db}
}

func (r *processedItemRepository) IsProcessed(tenantID, driveID, itemID string, lastModified time.Time, etag string) (bool, error) {
	var record ingestdomain.ProcessedItem
	err := r.db.
		Where("tenant_id = ? AND drive_id = ? AND item_id = ?", tenantID, driveID, itemID).
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}

	// Same timestamp and same eTag means the content did not change.
	return record.LastModified.Equal(lastModified) && record.ETag == etag, nil
}

func (r *processedItemRepository) MarkProcessed(tenantID, driveID, itemID string, lastModified time.Time, etag string) error {
	var record ingestdomain.ProcessedItem
	err := r.db.
		Where("tenant_id = ? AND drive_id = ? AND item_id = ?", tenantID, driveID, itemID).
		First(&record).Error

	now := time.Now()
	if err == gorm.ErrRecordNotFound {
		record = ingestdomain.ProcessedItem{
			ID:           uuid.New().String(),
			TenantID:     tenantID,
			DriveID:      driveID,
			ItemID:       itemID,
			LastModified: lastModified,
			ETag:         etag,
			ProcessedAt:  now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return r.db.Create(&record).Error
	} else if err != nil {
		return err
	}

	record.LastModified = lastModified
	record.ETag = etag
	record.ProcessedAt = now
	record.UpdatedAt = now
	return r.db.Save(&record).Error
}

func (r *processedItemRepository) Delete(tenantID, driveID, itemID string) error {
	return r.db.
		Where("tenant_id = ? AND drive_id = ? AND item_id = ?", tenantID, driveID, itemID).
		Delete(&ingestdomain.ProcessedItem{}).Error
}

func (r *processedItemRepository) DeleteByTenant(tenantID string) error {
	return r.db.Where("tenant_id = ?", tenantID).Delete(&ingestdomain.ProcessedItem{}).Error
}
