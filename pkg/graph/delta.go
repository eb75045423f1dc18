package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DriveItem is the subset of the Graph driveItem resource this service reads.
type DriveItem struct {
	ID                   string        `json:"id"`
	Name                 string        `json:"name"`
	ETag                 string        `json:"eTag"`
	Size                 int64         `json:"size"`
	WebURL               string        `json:"webUrl"`
	LastModifiedDateTime time.Time     `json:"lastModifiedDateTime"`
	File                 *FileFacet    `json:"file,omitempty"`
	Folder               *FolderFacet  `json:"folder,omitempty"`
	Deleted              *DeletedFacet `json:"deleted,omitempty"`
}

// FileFacet is present when the item is a file.
type FileFacet struct {
	MimeType string `json:"mimeType"`
}

// FolderFacet is present when the item is a folder.
type FolderFacet struct {
	ChildCount int `json:"childCount"`
}

// DeletedFacet is present when the item was removed since the last delta.
type DeletedFacet struct {
	State string `json:"state"`
}

// IsFile reports whether the item carries file content.
func (i *DriveItem) IsFile() bool {
	return i.File != nil && i.Deleted == nil
}

// IsDeleted reports whether the item was removed.
func (i *DriveItem) IsDeleted() bool {
	return i.Deleted != nil
}

// DeltaPage is a single page of a drive delta query.
type DeltaPage struct {
	Items     []DriveItem
	NextLink  string
	DeltaLink string
}

// deltaSelect limits the payload to the fields the ingestion pipeline uses.
const deltaSelect = "$select=id,name,eTag,size,webUrl,lastModifiedDateTime,file,folder,deleted"

// DeltaURL builds the initial delta query URL for a drive root.
func (c *Client) DeltaURL(driveID string) string {
	return fmt.Sprintf("%s/drives/%s/root/delta?%s&$top=200", c.baseURL, driveID, deltaSelect)
}

// FetchDeltaPage fetches one page of a delta query. Pass the URL returned in
// NextLink to continue paging, or a stored DeltaLink to resume from a prior
// sync point. A 410 response surfaces as ErrDeltaTokenExpired: the caller must
// drop the stored link and start a full delta pass.
func (c *Client) FetchDeltaPage(ctx context.Context, tenantID, url string) (*DeltaPage, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, url, tenantID, nil)
	if err != nil {
		return nil, fmt.Errorf("delta request: %w", err)
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read delta response: %w", err)
	}

	if IsDeltaTokenExpired(resp.StatusCode) {
		return nil, ErrDeltaTokenExpired
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("delta request failed: status %d: %w",
			resp.StatusCode, WrapError(resp.StatusCode))
	}

	var deltaResp struct {
		Value     []DriveItem `json:"value"`
		NextLink  string      `json:"@odata.nextLink"`
		DeltaLink string      `json:"@odata.deltaLink"`
	}
	if err := json.Unmarshal(body, &deltaResp); err != nil {
		return nil, fmt.Errorf("decode delta response: %w", err)
	}

	return &DeltaPage{
		Items:     deltaResp.Value,
		NextLink:  deltaResp.NextLink,
		DeltaLink: deltaResp.DeltaLink,
	}, nil
}
