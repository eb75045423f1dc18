package domain

import "strings"

// ChangeNotification is one entry of a Graph webhook notification batch.
// Graph signs nothing; the clientState echo is the only authenticity check.
type ChangeNotification struct {
	SubscriptionID string `json:"subscriptionId"`
	ClientState    string `json:"clientState"`
	Resource       string `json:"resource"`
	ChangeType     string `json:"changeType"`
	TenantID       string `json:"tenantId"`
}

// NotificationBatch is the webhook request body.
type NotificationBatch struct {
	Value []ChangeNotification `json:"value"`
}

// DriveID extracts the drive id from a notification resource path such as
// "/drives/b!abc123/root" or "drives/b!abc123/root". Returns "" when the
// resource does not reference a drive.
func (n *ChangeNotification) DriveID() string {
	parts := strings.Split(strings.TrimPrefix(n.Resource, "/"), "/")
	if len(parts) >= 2 && parts[0] == "drives" {
		return parts[1]
	}
	return ""
}
