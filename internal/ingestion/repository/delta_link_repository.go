package repository

import (
	"time"

	ingestdomain "docusense-backend/internal/ingestion/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// deltaLinkRepository implements DeltaLinkRepository with GORM.
type deltaLinkRepository struct {
	db *gorm.DB
}

// NewDeltaLinkRepository creates a new instance of deltaLinkRepository.
func NewDeltaLinkRepository(db *gorm.DB) DeltaLinkRepository {
	return &deltaLinkRepository{db: db}
}

func (r *deltaLinkRepository) Get(tenantID, driveID string) (string, error) {
	var record ingestdomain.DriveDeltaLink
	err := r.db.
		Where("tenant_id = ? AND drive_id = ?", tenantID, driveID).
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", err
	}
	return record.DeltaLink, nil
}

func (r *deltaLinkRepository) Save(tenantID, driveID, deltaLink string) error {
	var record ingestdomain.DriveDeltaLink
	err := r.db.
		Where("tenant_id = ? AND drive_id = ?", tenantID, driveID).
		First(&record).Error

	now := time.Now()
	if err == gorm.ErrRecordNotFound {
		record = ingestdomain.DriveDeltaLink{
			ID:        uuid.New().String(),
			TenantID:  tenantID,
			DriveID:   driveID,
			DeltaLink: deltaLink,
			SyncedAt:  now,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return r.db.Create(&record).Error
	} else if err != nil {
		return err
	}

	record.DeltaLink = deltaLink
	record.SyncedAt = now
	record.UpdatedAt = now
	return r.db.Save(&record).Error
}

func (r *deltaLinkRepository) Delete(tenantID, driveID string) error {
	return r.db.
		Where("tenant_id = ? AND drive_id = ?", tenantID, driveID).
		Delete(&ingestdomain.DriveDeltaLink{}).Error
}

func (r *deltaLinkRepository) DeleteByTenant(tenantID string) error {
	return r.db.Where("tenant_id = ?", tenantID).Delete(&ingestdomain.DriveDeltaLink{}).Error
}
