package usecase

import (
	"context"
	"io"

	ingestdomain "docusense-backend/internal/ingestion/domain"
	"docusense-backend/pkg/graph"
	"docusense-backend/pkg/queue"
	"docusense-backend/pkg/vectorindex"
)

// BatchResult summarizes handling of one webhook notification batch.
type BatchResult struct {
	Accepted int
	Rejected int
}

// IngestionUsecase turns Graph change notifications into indexed chunks.
type IngestionUsecase interface {
	// HandleNotificationBatch validates client state per notification and runs
	// a delta pass for each distinct accepted drive. Mismatched notifications
	// are counted in Rejected and never processed.
	HandleNotificationBatch(ctx context.Context, batch *ingestdomain.NotificationBatch) (*BatchResult, error)
	// ProcessDriveDelta runs one delta pass for a drive. Pages are processed
	// sequentially; the stored delta link is only advanced after the full
	// pass succeeds.
	ProcessDriveDelta(ctx context.Context, tenantID, driveID string) error
	// ProcessLargeFile ingests a file that was routed through the async queue.
	ProcessLargeFile(ctx context.Context, job *queue.LargeFileJob) error
}

// GraphDriveClient is what the pipeline needs from Microsoft Graph.
type GraphDriveClient interface {
	DeltaURL(driveID string) string
	FetchDeltaPage(ctx context.Context, tenantID, url string) (*graph.DeltaPage, error)
	GetItem(ctx context.Context, tenantID, driveID, itemID string) (*graph.DriveItem, error)
	DownloadContent(ctx context.Context, tenantID, driveID, itemID string) (io.ReadCloser, error)
}

// SearchIndex is the vector index the pipeline writes into.
type SearchIndex interface {
	UpsertChunks(ctx context.Context, chunks []vectorindex.DocumentChunk) error
	DeleteItemChunks(ctx context.Context, tenantID, driveID, itemID string) error
	DeleteTenantChunks(ctx context.Context, tenantID string) error
}

// LargeFilePublisher hands oversized items to the async processing queue.
type LargeFilePublisher interface {
	Enqueue(ctx context.Context, job *queue.LargeFileJob) error
}
