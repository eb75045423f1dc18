package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	ingestrepo "docusense-backend/internal/ingestion/repository"
	tenantdomain "docusense-backend/internal/tenant/domain"
	tenantrepo "docusense-backend/internal/tenant/repository"

	"github.com/google/uuid"
)

// tenantUsecase implements TenantUsecase.
type tenantUsecase struct {
	tenantRepo    tenantrepo.TenantRepository
	processedRepo ingestrepo.ProcessedItemRepository
	deltaRepo     ingestrepo.DeltaLinkRepository
	subscriptions SubscriptionCleaner
	index         IndexCleaner
}

// NewTenantUsecase creates a new instance of tenantUsecase.
func NewTenantUsecase(
	tenantRepo tenantrepo.TenantRepository,
	processedRepo ingestrepo.ProcessedItemRepository,
	deltaRepo ingestrepo.DeltaLinkRepository,
	subscriptions SubscriptionCleaner,
	index IndexCleaner,
) TenantUsecase {
	return &tenantUsecase{
		tenantRepo:    tenantRepo,
		processedRepo: processedRepo,
		deltaRepo:     deltaRepo,
		subscriptions: subscriptions,
		index:         index,
	}
}

func (u *tenantUsecase) Register(ctx context.Context, tenantID, displayName string) (*tenantdomain.Tenant, error) {
	existing, err := u.tenantRepo.FindByID(tenantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("tenant %s already registered", tenantID)
	}

	now := time.Now()
	tenant := &tenantdomain.Tenant{
		ID:            tenantID,
		DisplayName:   displayName,
		ClientState:   uuid.New().String(),
		Region:        tenantdomain.DefaultRegion,
		RetentionDays: tenantdomain.DefaultRetentionDays,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := u.tenantRepo.Create(tenant); err != nil {
		return nil, err
	}

	log.Printf("[Tenant] Registered tenant %s (%s)", tenantID, displayName)
	return tenant, nil
}

func (u *tenantUsecase) Get(tenantID string) (*tenantdomain.Tenant, error) {
	return u.tenantRepo.FindByID(tenantID)
}

func (u *tenantUsecase) List() ([]*tenantdomain.Tenant, error) {
	return u.tenantRepo.FindAll()
}

func (u *tenantUsecase) UpdateSettings(tenantID string, settings *TenantSettings) (*tenantdomain.Tenant, error) {
	tenant, err := u.tenantRepo.FindByID(tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, fmt.Errorf("tenant %s not found", tenantID)
	}

	if settings.DisplayName != "" {
		tenant.DisplayName = settings.DisplayName
	}
	if settings.Region != "" {
		tenant.Region = settings.Region
	}
	if settings.RetentionDays > 0 {
		tenant.RetentionDays = settings.RetentionDays
	}
	tenant.UpdatedAt = time.Now()

	if err := u.tenantRepo.Update(tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (u *tenantUsecase) RotateClientState(tenantID string) (*tenantdomain.Tenant, error) {
	tenant, err := u.tenantRepo.FindByID(tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, fmt.Errorf("tenant %s not found", tenantID)
	}

	tenant.ClientState = uuid.New().String()
	tenant.UpdatedAt = time.Now()
	if err := u.tenantRepo.Update(tenant); err != nil {
		return nil, err
	}

	log.Printf("[Tenant] Rotated client state for tenant %s", tenantID)
	return tenant, nil
}

// Cleanup removes the tenant and everything derived from its content. Index
// and bookkeeping purges run even if subscription teardown partially fails,
// so no tenant data outlives the record.
func (u *tenantUsecase) Cleanup(ctx context.Context, tenantID string) error {
	tenant, err := u.tenantRepo.FindByID(tenantID)
	if err != nil {
		return err
	}
	if tenant == nil {
		return fmt.Errorf("tenant %s not found", tenantID)
	}

	if err := u.subscriptions.DeleteByTenant(ctx, tenantID); err != nil {
		log.Printf("[Tenant] Subscription teardown error for tenant %s: %v", tenantID, err)
	}

	if err := u.index.DeleteTenantChunks(ctx, tenantID); err != nil {
		return fmt.Errorf("purge index: %w", err)
	}
	if err := u.processedRepo.DeleteByTenant(tenantID); err != nil {
		return fmt.Errorf("purge dedup records: %w", err)
	}
	if err := u.deltaRepo.DeleteByTenant(tenantID); err != nil {
		return fmt.Errorf("purge delta links: %w", err)
	}

	if err := u.tenantRepo.Delete(tenantID); err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}

	log.Printf("[Tenant] Cleaned up tenant %s", tenantID)
	return nil
}
