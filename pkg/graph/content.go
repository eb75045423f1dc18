package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// GetItem fetches metadata for a single drive item.
func (c *Client) GetItem(ctx context.Context, tenantID, driveID, itemID string) (*DriveItem, error) {
	url := fmt.Sprintf("%s/drives/%s/items/%s?%s", c.baseURL, driveID, itemID, deltaSelect)

	resp, err := c.doRequest(ctx, http.MethodGet, url, tenantID, nil)
	if err != nil {
		return nil, fmt.Errorf("item request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("item request failed: status %d: %w",
			resp.StatusCode, WrapError(resp.StatusCode))
	}

	var item DriveItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	return &item, nil
}

// DownloadContent opens a streaming reader over the item's content. The
// caller owns the returned ReadCloser and decides whether to buffer it in
// memory or spool it to temporary storage.
func (c *Client) DownloadContent(ctx context.Context, tenantID, driveID, itemID string) (io.ReadCloser, error) {
	url := fmt.Sprintf("%s/drives/%s/items/%s/content", c.baseURL, driveID, itemID)

	resp, err := c.doRequest(ctx, http.MethodGet, url, tenantID, nil)
	if err != nil {
		return nil, fmt.Errorf("download request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download failed: status %d: %w",
			resp.StatusCode, WrapError(resp.StatusCode))
	}

	return resp.Body, nil
}
