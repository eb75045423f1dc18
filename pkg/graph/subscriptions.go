package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// graphTimeFormat is the fractional-seconds UTC format Graph expects in
// subscription payloads.
const graphTimeFormat = "2006-01-02T15:04:05.0000000Z"

// Subscription mirrors the Graph subscription resource.
type Subscription struct {
	ID                 string `json:"id"`
	Resource           string `json:"resource"`
	ChangeType         string `json:"changeType"`
	NotificationURL    string `json:"notificationUrl"`
	ClientState        string `json:"clientState"`
	ExpirationDateTime string `json:"expirationDateTime"`
}

// Expiration parses the subscription's expiration timestamp.
func (s *Subscription) Expiration() (time.Time, error) {
	return time.Parse(time.RFC3339, s.ExpirationDateTime)
}

// SubscriptionRequest is the payload for creating a subscription.
type SubscriptionRequest struct {
	Resource        string
	ChangeType      string
	NotificationURL string
	ClientState     string
	Expiration      time.Time
}

// CreateSubscription registers a change-notification subscription. Graph
// calls the notification URL with a validation token before returning 201.
func (c *Client) CreateSubscription(ctx context.Context, tenantID string, req *SubscriptionRequest) (*Subscription, error) {
	payload, err := json.Marshal(map[string]string{
		"changeType":         req.ChangeType,
		"notificationUrl":    req.NotificationURL,
		"resource":           req.Resource,
		"expirationDateTime": req.Expiration.UTC().Format(graphTimeFormat),
		"clientState":        req.ClientState,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal subscription: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, c.baseURL+"/subscriptions", tenantID, payload)
	if err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("create subscription failed: status %d: %s: %w",
			resp.StatusCode, string(body), WrapError(resp.StatusCode))
	}

	var sub Subscription
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		return nil, fmt.Errorf("decode subscription: %w", err)
	}
	return &sub, nil
}

// RenewSubscription extends a subscription's expiry. Graph rejects renewals
// of already-expired subscriptions with 404; that surfaces here as
// ErrSubscriptionExpired so the caller can recreate instead.
func (c *Client) RenewSubscription(ctx context.Context, tenantID, subscriptionID string, newExpiration time.Time) (*Subscription, error) {
	payload, err := json.Marshal(map[string]string{
		"expirationDateTime": newExpiration.UTC().Format(graphTimeFormat),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal renewal: %w", err)
	}

	url := c.baseURL + "/subscriptions/" + subscriptionID
	resp, err := c.doRequest(ctx, http.MethodPatch, url, tenantID, payload)
	if err != nil {
		return nil, fmt.Errorf("renew subscription: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrSubscriptionExpired
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("renew subscription failed: status %d: %s: %w",
			resp.StatusCode, string(body), WrapError(resp.StatusCode))
	}

	var sub Subscription
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		return nil, fmt.Errorf("decode subscription: %w", err)
	}
	return &sub, nil
}

// DeleteSubscription removes a subscription. A 404 is treated as success:
// the subscription is gone either way.
func (c *Client) DeleteSubscription(ctx context.Context, tenantID, subscriptionID string) error {
	url := c.baseURL + "/subscriptions/" + subscriptionID
	resp, err := c.doRequest(ctx, http.MethodDelete, url, tenantID, nil)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete subscription failed: status %d: %w",
			resp.StatusCode, WrapError(resp.StatusCode))
	}
	return nil
}
