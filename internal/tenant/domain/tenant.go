package domain

import "time"

// Tenant is one customer directory. The ID is the Azure AD tenant id; the
// ClientState is the per-tenant webhook shared secret Graph echoes back in
// every change notification.
type Tenant struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	DisplayName   string    `json:"display_name"`
	ClientState   string    `json:"-" gorm:"not null;index"`
	Region        string    `json:"region"`
	RetentionDays int       `json:"retention_days"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DefaultRegion and DefaultRetentionDays seed settings for new tenants.
const (
	DefaultRegion        = "eastus"
	DefaultRetentionDays = 90
)
