package usecase

import (
	"context"

	tenantdomain "docusense-backend/internal/tenant/domain"
)

// TenantSettings is the mutable per-tenant configuration.
type TenantSettings struct {
	DisplayName   string `json:"display_name"`
	Region        string `json:"region"`
	RetentionDays int    `json:"retention_days"`
}

// TenantUsecase manages tenant onboarding, settings, and offboarding.
type TenantUsecase interface {
	// Register creates a tenant with a fresh webhook secret and default
	// settings. Registering an existing tenant id is an error.
	Register(ctx context.Context, tenantID, displayName string) (*tenantdomain.Tenant, error)
	Get(tenantID string) (*tenantdomain.Tenant, error)
	List() ([]*tenantdomain.Tenant, error)
	// UpdateSettings applies the given settings; zero-valued fields keep their
	// current value.
	UpdateSettings(tenantID string, settings *TenantSettings) (*tenantdomain.Tenant, error)
	// RotateClientState issues a new webhook secret. Existing Graph
	// subscriptions keep sending the old secret until re-provisioned, so the
	// caller should recreate them afterwards.
	RotateClientState(tenantID string) (*tenantdomain.Tenant, error)
	// Cleanup removes every trace of the tenant: Graph subscriptions, indexed
	// chunks, dedup records, delta links, and the tenant record itself.
	Cleanup(ctx context.Context, tenantID string) error
}

// SubscriptionCleaner tears down a tenant's Graph subscriptions.
type SubscriptionCleaner interface {
	DeleteByTenant(ctx context.Context, tenantID string) error
}

// IndexCleaner purges a tenant's chunks from the vector index.
type IndexCleaner interface {
	DeleteTenantChunks(ctx context.Context, tenantID string) error
}
