package domain

import "time"

// Subscription lifecycle states. The only legal transitions are
// provisioned -> active -> (renewed -> active)* -> expired|deleted.
// A renewal attempted past expiry must recreate the Graph subscription,
// which resets the record to a fresh active one.
const (
	StatusProvisioned    = "provisioned"
	StatusActive         = "active"
	StatusExpired        = "expired"
	StatusDeleted        = "deleted"
	StatusNeedsAttention = "needs_attention"
)

// ExpiringSoonWindow is how close to expiry a subscription is reported as
// expiring_soon by the admin API.
const ExpiringSoonWindow = 24 * time.Hour

// Subscription mirrors a Graph change-notification subscription plus the
// bookkeeping the renewal sweep needs.
type Subscription struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	TenantID        string    `json:"tenant_id" gorm:"index;not null"`
	DriveID         string    `json:"drive_id" gorm:"index;not null"`
	Resource        string    `json:"resource"`
	ChangeType      string    `json:"change_type"`
	NotificationURL string    `json:"notification_url"`
	ClientState     string    `json:"-"`
	ExpirationTime  time.Time `json:"expiration_time"`
	Status          string    `json:"status"`
	RenewFailures   int       `json:"renew_failures"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DerivedStatus reports the externally visible status at a point in time.
// needs_attention sticks until an operator or a successful renewal clears it.
func (s *Subscription) DerivedStatus(now time.Time) string {
	if s.Status == StatusNeedsAttention || s.Status == StatusDeleted {
		return s.Status
	}
	remaining := s.ExpirationTime.Sub(now)
	switch {
	case remaining < 0:
		return StatusExpired
	case remaining < ExpiringSoonWindow:
		return "expiring_soon"
	default:
		return StatusActive
	}
}

// IsExpired reports whether the subscription's expiry has passed.
func (s *Subscription) IsExpired(now time.Time) bool {
	return now.After(s.ExpirationTime)
}
