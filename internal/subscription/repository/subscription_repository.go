package repository

import (
	"time"

	subdomain "docusense-backend/internal/subscription/domain"

	"gorm.io/gorm"
)

// subscriptionRepository implements SubscriptionRepository with GORM.
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new instance of subscriptionRepository.
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(sub *subdomain.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *subscriptionRepository) Update(sub *subdomain.Subscription) error {
	return r.db.Save(sub).Error
}

func (r *subscriptionRepository) Delete(subscriptionID string) error {
	return r.db.Where("id = ?", subscriptionID).Delete(&subdomain.Subscription{}).Error
}

func (r *subscriptionRepository) DeleteByTenant(tenantID string) error {
	return r.db.Where("tenant_id = ?", tenantID).Delete(&subdomain.Subscription{}).Error
}

func (r *subscriptionRepository) FindByID(subscriptionID string) (*subdomain.Subscription, error) {
	var sub subdomain.Subscription
	err := r.db.Where("id = ?", subscriptionID).First(&sub).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) FindByTenant(tenantID string) ([]*subdomain.Subscription, error) {
	var subs []*subdomain.Subscription
	if err := r.db.Where("tenant_id = ?", tenantID).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *subscriptionRepository) FindAll() ([]*subdomain.Subscription, error) {
	var subs []*subdomain.Subscription
	if err := r.db.Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *subscriptionRepository) FindExpiringBefore(threshold time.Time) ([]*subdomain.Subscription, error) {
	var subs []*subdomain.Subscription
	err := r.db.
		Where("expiration_time < ? AND status <> ?", threshold, subdomain.StatusDeleted).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}
