package usecase

import (
	"context"
	"time"

	subdomain "docusense-backend/internal/subscription/domain"
	"docusense-backend/pkg/graph"
)

// SubscriptionView is a subscription with its externally visible status.
type SubscriptionView struct {
	*subdomain.Subscription
	DerivedStatus string `json:"derived_status"`
}

// SweepResult summarizes one renewal sweep.
type SweepResult struct {
	Scanned   int
	Renewed   int
	Recreated int
	Failed    int
	Skipped   bool
}

// SubscriptionUsecase manages Graph change-notification subscriptions for
// tenant drives: provisioning, renewal, and teardown.
type SubscriptionUsecase interface {
	// Provision creates a Graph subscription for the tenant's drive and stores
	// the local record.
	Provision(ctx context.Context, tenantID, driveID string) (*subdomain.Subscription, error)
	// RunRenewalSweep renews every subscription expiring within the renewal
	// window. Only one sweep runs at a time; an overlapping call returns with
	// Skipped set.
	RunRenewalSweep(ctx context.Context) (*SweepResult, error)
	Delete(ctx context.Context, subscriptionID string) error
	DeleteByTenant(ctx context.Context, tenantID string) error
	ListForTenant(tenantID string) ([]*SubscriptionView, error)
	ListAll() ([]*SubscriptionView, error)
}

// GraphSubscriptionClient is what the usecase needs from Microsoft Graph.
type GraphSubscriptionClient interface {
	CreateSubscription(ctx context.Context, tenantID string, req *graph.SubscriptionRequest) (*graph.Subscription, error)
	RenewSubscription(ctx context.Context, tenantID, subscriptionID string, newExpiration time.Time) (*graph.Subscription, error)
	DeleteSubscription(ctx context.Context, tenantID, subscriptionID string) error
}
