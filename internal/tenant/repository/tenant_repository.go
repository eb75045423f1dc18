package repository

import (
	tenantdomain "docusense-backend/internal/tenant/domain"

	"gorm.io/gorm"
)

// tenantRepository implements TenantRepository with GORM.
type tenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new instance of tenantRepository.
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) Create(tenant *tenantdomain.Tenant) error {
	return r.db.Create(tenant).Error
}

func (r *tenantRepository) Update(tenant *tenantdomain.Tenant) error {
	return r.db.Save(tenant).Error
}

func (r *tenantRepository) Delete(tenantID string) error {
	return r.db.Where("id = ?", tenantID).Delete(&tenantdomain.Tenant{}).Error
}

func (r *tenantRepository) FindByID(tenantID string) (*tenantdomain.Tenant, error) {
	var tenant tenantdomain.Tenant
	err := r.db.Where("id = ?", tenantID).First(&tenant).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) FindByClientState(clientState string) (*tenantdomain.Tenant, error) {
	var tenant tenantdomain.Tenant
	err := r.db.Where("client_state = ?", clientState).First(&tenant).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) FindAll() ([]*tenantdomain.Tenant, error) {
	var tenants []*tenantdomain.Tenant
	if err := r.db.Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}
