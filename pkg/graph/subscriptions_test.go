package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSubscription(t *testing.T) {
	expiry := time.Now().Add(72 * time.Hour).UTC()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/subscriptions", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "updated", payload["changeType"])
		assert.Equal(t, "/drives/d1/root", payload["resource"])
		assert.Equal(t, "secret-state", payload["clientState"])
		assert.NotEmpty(t, payload["expirationDateTime"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{
			"id": "sub-1",
			"resource": "/drives/d1/root",
			"changeType": "updated",
			"clientState": "secret-state",
			"expirationDateTime": "%s"
		}`, expiry.Format(time.RFC3339))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, StaticTokenSource("t"))

	sub, err := client.CreateSubscription(context.Background(), "tenant-1", &SubscriptionRequest{
		Resource:        "/drives/d1/root",
		ChangeType:      "updated",
		NotificationURL: "https://example.test/api/webhooks/graph",
		ClientState:     "secret-state",
		Expiration:      expiry,
	})
	require.NoError(t, err)
	assert.Equal(t, "sub-1", sub.ID)

	parsed, err := sub.Expiration()
	require.NoError(t, err)
	assert.WithinDuration(t, expiry, parsed, time.Second)
}

func TestRenewSubscription(t *testing.T) {
	newExpiry := time.Now().Add(72 * time.Hour).UTC()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/subscriptions/sub-1", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id": "sub-1", "expirationDateTime": "%s"}`, newExpiry.Format(time.RFC3339))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, StaticTokenSource("t"))

	sub, err := client.RenewSubscription(context.Background(), "tenant-1", "sub-1", newExpiry)
	require.NoError(t, err)
	assert.Equal(t, "sub-1", sub.ID)
}

func TestRenewSubscriptionLapsed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, StaticTokenSource("t"))

	_, err := client.RenewSubscription(context.Background(), "tenant-1", "sub-gone", time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, ErrSubscriptionExpired)
}

func TestDeleteSubscription(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
	}{
		{"deleted", http.StatusNoContent, false},
		{"already gone", http.StatusNotFound, false},
		{"forbidden", http.StatusForbidden, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodDelete, r.Method)
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			client := NewClientWithBaseURL(server.URL, StaticTokenSource("t"))

			err := client.DeleteSubscription(context.Background(), "tenant-1", "sub-1")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
