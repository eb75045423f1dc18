package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	subdomain "docusense-backend/internal/subscription/domain"
	subrepo "docusense-backend/internal/subscription/repository"
	tenantrepo "docusense-backend/internal/tenant/repository"
	"docusense-backend/pkg/config"
	"docusense-backend/pkg/graph"
)

// subscriptionUsecase implements SubscriptionUsecase.
type subscriptionUsecase struct {
	subRepo     subrepo.SubscriptionRepository
	tenantRepo  tenantrepo.TenantRepository
	graphClient GraphSubscriptionClient
	cfg         *config.Config

	// Guards the renewal sweep; overlapping sweeps are skipped, not queued.
	sweepMu sync.Mutex
}

// NewSubscriptionUsecase creates a new instance of subscriptionUsecase.
func NewSubscriptionUsecase(
	subRepo subrepo.SubscriptionRepository,
	tenantRepo tenantrepo.TenantRepository,
	graphClient GraphSubscriptionClient,
	cfg *config.Config,
) SubscriptionUsecase {
	return &subscriptionUsecase{
		subRepo:     subRepo,
		tenantRepo:  tenantRepo,
		graphClient: graphClient,
		cfg:         cfg,
	}
}

func (u *subscriptionUsecase) Provision(ctx context.Context, tenantID, driveID string) (*subdomain.Subscription, error) {
	tenant, err := u.tenantRepo.FindByID(tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, fmt.Errorf("tenant %s not found", tenantID)
	}

	req := &graph.SubscriptionRequest{
		Resource:        fmt.Sprintf("/drives/%s/root", driveID),
		ChangeType:      "updated",
		NotificationURL: u.cfg.WebhookNotificationURL,
		ClientState:     tenant.ClientState,
		Expiration:      time.Now().Add(u.cfg.SubscriptionLength),
	}

	created, err := u.graphClient.CreateSubscription(ctx, tenantID, req)
	if err != nil {
		return nil, fmt.Errorf("create graph subscription: %w", err)
	}

	expiration, err := created.Expiration()
	if err != nil {
		expiration = req.Expiration
	}

	now := time.Now()
	sub := &subdomain.Subscription{
		ID:              created.ID,
		TenantID:        tenantID,
		DriveID:         driveID,
		Resource:        req.Resource,
		ChangeType:      req.ChangeType,
		NotificationURL: req.NotificationURL,
		ClientState:     tenant.ClientState,
		ExpirationTime:  expiration,
		Status:          subdomain.StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := u.subRepo.Create(sub); err != nil {
		return nil, fmt.Errorf("store subscription: %w", err)
	}

	log.Printf("[Subscription] Provisioned subscription %s for tenant %s drive %s, expires %s",
		sub.ID, tenantID, driveID, expiration.Format(time.RFC3339))
	return sub, nil
}

// RunRenewalSweep renews subscriptions expiring within the renewal window.
// A renewal that Graph rejects because the subscription already lapsed is
// recovered by recreating the subscription. One subscription's failure never
// blocks the others.
func (u *subscriptionUsecase) RunRenewalSweep(ctx context.Context) (*SweepResult, error) {
	if !u.sweepMu.TryLock() {
		log.Printf("[RenewalSweep] Previous sweep still running, skipping")
		return &SweepResult{Skipped: true}, nil
	}
	defer u.sweepMu.Unlock()

	now := time.Now()
	threshold := now.Add(u.cfg.RenewalWindow)
	subs, err := u.subRepo.FindExpiringBefore(threshold)
	if err != nil {
		return nil, fmt.Errorf("find expiring subscriptions: %w", err)
	}

	result := &SweepResult{Scanned: len(subs)}
	for _, sub := range subs {
		if err := u.renewOne(ctx, sub, now, result); err != nil {
			log.Printf("[RenewalSweep] Renewal failed for subscription %s (tenant %s): %v",
				sub.ID, sub.TenantID, err)
			result.Failed++
			u.recordFailure(sub)
		}
	}

	log.Printf("[RenewalSweep] Sweep complete: scanned=%d renewed=%d recreated=%d failed=%d",
		result.Scanned, result.Renewed, result.Recreated, result.Failed)
	return result, nil
}

func (u *subscriptionUsecase) renewOne(ctx context.Context, sub *subdomain.Subscription, now time.Time, result *SweepResult) error {
	newExpiration := now.Add(u.cfg.SubscriptionLength)
	// A renewal must always push the expiry forward.
	if !newExpiration.After(sub.ExpirationTime) {
		newExpiration = sub.ExpirationTime.Add(u.cfg.SubscriptionLength)
	}

	renewed, err := u.graphClient.RenewSubscription(ctx, sub.TenantID, sub.ID, newExpiration)
	if errors.Is(err, graph.ErrSubscriptionExpired) {
		return u.recreate(ctx, sub, result)
	}
	if err != nil {
		return err
	}

	expiration, perr := renewed.Expiration()
	if perr != nil {
		expiration = newExpiration
	}

	sub.ExpirationTime = expiration
	sub.Status = subdomain.StatusActive
	sub.RenewFailures = 0
	sub.UpdatedAt = time.Now()
	if err := u.subRepo.Update(sub); err != nil {
		return fmt.Errorf("store renewed expiry: %w", err)
	}

	result.Renewed++
	return nil
}

// recreate replaces a lapsed Graph subscription with a fresh one, keeping
// the same local record id history by deleting the old row.
func (u *subscriptionUsecase) recreate(ctx context.Context, sub *subdomain.Subscription, result *SweepResult) error {
	log.Printf("[RenewalSweep] Subscription %s lapsed on Graph side, recreating", sub.ID)

	fresh, err := u.Provision(ctx, sub.TenantID, sub.DriveID)
	if err != nil {
		return fmt.Errorf("recreate subscription: %w", err)
	}

	if err := u.subRepo.Delete(sub.ID); err != nil {
		log.Printf("[RenewalSweep] Could not remove lapsed record %s: %v", sub.ID, err)
	}

	result.Recreated++
	log.Printf("[RenewalSweep] Recreated subscription %s as %s", sub.ID, fresh.ID)
	return nil
}

// recordFailure bumps the failure counter and flags the subscription once it
// crosses the configured limit.
func (u *subscriptionUsecase) recordFailure(sub *subdomain.Subscription) {
	sub.RenewFailures++
	if sub.RenewFailures >= u.cfg.RenewalMaxFailures {
		sub.Status = subdomain.StatusNeedsAttention
		log.Printf("[RenewalSweep] Subscription %s flagged needs_attention after %d failures",
			sub.ID, sub.RenewFailures)
	}
	sub.UpdatedAt = time.Now()
	if err := u.subRepo.Update(sub); err != nil {
		log.Printf("[RenewalSweep] Could not record failure for subscription %s: %v", sub.ID, err)
	}
}

func (u *subscriptionUsecase) Delete(ctx context.Context, subscriptionID string) error {
	sub, err := u.subRepo.FindByID(subscriptionID)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}

	if err := u.graphClient.DeleteSubscription(ctx, sub.TenantID, sub.ID); err != nil {
		return fmt.Errorf("delete graph subscription: %w", err)
	}

	sub.Status = subdomain.StatusDeleted
	sub.UpdatedAt = time.Now()
	if err := u.subRepo.Update(sub); err != nil {
		return fmt.Errorf("mark subscription deleted: %w", err)
	}

	log.Printf("[Subscription] Deleted subscription %s", sub.ID)
	return nil
}

func (u *subscriptionUsecase) DeleteByTenant(ctx context.Context, tenantID string) error {
	subs, err := u.subRepo.FindByTenant(tenantID)
	if err != nil {
		return err
	}

	for _, sub := range subs {
		if sub.Status == subdomain.StatusDeleted {
			continue
		}
		if err := u.graphClient.DeleteSubscription(ctx, tenantID, sub.ID); err != nil {
			log.Printf("[Subscription] Could not delete graph subscription %s: %v", sub.ID, err)
		}
	}

	return u.subRepo.DeleteByTenant(tenantID)
}

func (u *subscriptionUsecase) ListForTenant(tenantID string) ([]*SubscriptionView, error) {
	subs, err := u.subRepo.FindByTenant(tenantID)
	if err != nil {
		return nil, err
	}
	return toViews(subs), nil
}

func (u *subscriptionUsecase) ListAll() ([]*SubscriptionView, error) {
	subs, err := u.subRepo.FindAll()
	if err != nil {
		return nil, err
	}
	return toViews(subs), nil
}

func toViews(subs []*subdomain.Subscription) []*SubscriptionView {
	now := time.Now()
	views := make([]*SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, &SubscriptionView{
			Subscription:  sub,
			DerivedStatus: sub.DerivedStatus(now),
		})
	}
	return views
}
