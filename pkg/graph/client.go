package graph

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// DefaultBaseURL is the Microsoft Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

const maxRetries = 3

// Client is a thin Microsoft Graph client scoped to the operations this
// service needs: drive delta queries, item content download and subscription
// management. All calls are tenant-scoped through the TokenSource.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	limiter *RateLimiter
}

// NewClient creates a Graph client against the production endpoint.
func NewClient(tokens TokenSource) *Client {
	return NewClientWithBaseURL(DefaultBaseURL, tokens)
}

// NewClientWithBaseURL creates a Graph client against a custom endpoint.
// Tests point this at an httptest server.
func NewClientWithBaseURL(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
		tokens:  tokens,
		limiter: NewRateLimiter(),
	}
}

// BaseURL returns the configured Graph endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs an authenticated request with rate limiting and
// bounded retries for transient failures. The Retry-After header of 429
// responses is honoured via the rate limiter's backoff window.
func (c *Client) doRequest(ctx context.Context, method, url string, tenantID string, body []byte) (*http.Response, error) {
	token, err := c.tokens.Token(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	var resp *http.Response
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		} else {
			reader = http.NoBody
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err = c.http.Do(req)
		if err != nil {
			if attempt < maxRetries-1 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(backoffDelay(attempt)):
					continue
				}
			}
			return nil, fmt.Errorf("graph request: %w", err)
		}

		if !IsRetryable(resp.StatusCode) || attempt == maxRetries-1 {
			return resp, nil
		}

		// Transient failure: drain, record throttling, retry
		if IsRateLimited(resp.StatusCode) {
			retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
			c.limiter.RecordRateLimitError(retryAfter)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoffDelay(attempt)):
		}
	}

	return resp, nil
}

func backoffDelay(attempt int) time.Duration {
	return time.Duration(1<<attempt) * 500 * time.Millisecond
}
