package repository

import tenantdomain "docusense-backend/internal/tenant/domain"

// TenantRepository persists tenant records and settings.
type TenantRepository interface {
	Create(tenant *tenantdomain.Tenant) error
	Update(tenant *tenantdomain.Tenant) error
	Delete(tenantID string) error
	// FindByID returns nil when the tenant does not exist.
	FindByID(tenantID string) (*tenantdomain.Tenant, error)
	// FindByClientState returns nil when no tenant owns the secret.
	FindByClientState(clientState string) (*tenantdomain.Tenant, error)
	FindAll() ([]*tenantdomain.Tenant, error)
}
