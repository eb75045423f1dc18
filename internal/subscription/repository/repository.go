package repository

import (
	"time"

	subdomain "docusense-backend/internal/subscription/domain"
)

// SubscriptionRepository persists subscription records.
type SubscriptionRepository interface {
	Create(sub *subdomain.Subscription) error
	Update(sub *subdomain.Subscription) error
	Delete(subscriptionID string) error
	DeleteByTenant(tenantID string) error
	// FindByID returns nil when the subscription does not exist.
	FindByID(subscriptionID string) (*subdomain.Subscription, error)
	FindByTenant(tenantID string) ([]*subdomain.Subscription, error)
	FindAll() ([]*subdomain.Subscription, error)
	// FindExpiringBefore returns subscriptions whose expiry falls before the
	// given instant, excluding deleted ones.
	FindExpiringBefore(threshold time.Time) ([]*subdomain.Subscription, error)
}
