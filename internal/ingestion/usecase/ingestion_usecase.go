package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	ingestdomain "docusense-backend/internal/ingestion/domain"
	ingestrepo "docusense-backend/internal/ingestion/repository"
	tenantrepo "docusense-backend/internal/tenant/repository"
	"docusense-backend/pkg/extract"
	"docusense-backend/pkg/graph"
	"docusense-backend/pkg/queue"
	"docusense-backend/pkg/vectorindex"

	"github.com/google/uuid"
)

// Size policy thresholds. Files above MaxInlineSize are spooled to temp
// storage instead of held in memory; files above MaxStreamingSize go to the
// async queue; files above queue.MaxQueueFileSize are rejected outright.
const (
	MaxInlineSize    = 50 * 1024 * 1024
	MaxStreamingSize = 200 * 1024 * 1024
)

// ingestionUsecase implements IngestionUsecase.
type ingestionUsecase struct {
	processedRepo ingestrepo.ProcessedItemRepository
	deltaRepo     ingestrepo.DeltaLinkRepository
	tenantRepo    tenantrepo.TenantRepository
	graphClient   GraphDriveClient
	index         SearchIndex
	extractor     *extract.Extractor
	largeFiles    LargeFilePublisher

	// Per-drive delta passes must run one at a time to keep the stored
	// delta link consistent. Distinct drives proceed independently.
	driveLocks sync.Map
}

// NewIngestionUsecase creates the ingestion pipeline. largeFiles may be nil
// when no queue is configured; oversized items are then skipped with a log.
func NewIngestionUsecase(
	processedRepo ingestrepo.ProcessedItemRepository,
	deltaRepo ingestrepo.DeltaLinkRepository,
	tenantRepo tenantrepo.TenantRepository,
	graphClient GraphDriveClient,
	index SearchIndex,
	extractor *extract.Extractor,
	largeFiles LargeFilePublisher,
) IngestionUsecase {
	return &ingestionUsecase{
		processedRepo: processedRepo,
		deltaRepo:     deltaRepo,
		tenantRepo:    tenantRepo,
		graphClient:   graphClient,
		index:         index,
		extractor:     extractor,
		largeFiles:    largeFiles,
	}
}

// HandleNotificationBatch verifies each notification's clientState against
// the owning tenant's secret, then runs one delta pass per accepted drive.
func (u *ingestionUsecase) HandleNotificationBatch(ctx context.Context, batch *ingestdomain.NotificationBatch) (*BatchResult, error) {
	result := &BatchResult{}

	type driveKey struct{ tenantID, driveID string }
	accepted := make(map[driveKey]bool)

	for _, n := range batch.Value {
		tenant, err := u.resolveTenant(&n)
		if err != nil {
			return nil, err
		}
		if tenant == nil || n.ClientState == "" || n.ClientState != tenant.ClientState {
			log.Printf("[Webhook] Rejecting notification for subscription %s: client state mismatch", n.SubscriptionID)
			result.Rejected++
			continue
		}

		driveID := n.DriveID()
		if driveID == "" {
			log.Printf("[Webhook] Ignoring notification with non-drive resource: %s", n.Resource)
			result.Rejected++
			continue
		}

		result.Accepted++
		accepted[driveKey{tenant.ID, driveID}] = true
	}

	for key := range accepted {
		if err := u.ProcessDriveDelta(ctx, key.tenantID, key.driveID); err != nil {
			// One drive's failure must not block the rest of the batch.
			log.Printf("[Delta] Error processing drive %s for tenant %s: %v", key.driveID, key.tenantID, err)
		}
	}

	return result, nil
}

// resolveTenant looks the tenant up by the notification's tenant id, falling
// back to the client-state secret for notifications that omit it.
func (u *ingestionUsecase) resolveTenant(n *ingestdomain.ChangeNotification) (*resolvedTenant, error) {
	if n.TenantID != "" {
		t, err := u.tenantRepo.FindByID(n.TenantID)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, nil
		}
		return &resolvedTenant{ID: t.ID, ClientState: t.ClientState}, nil
	}
	if n.ClientState == "" {
		return nil, nil
	}
	t, err := u.tenantRepo.FindByClientState(n.ClientState)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}
	return &resolvedTenant{ID: t.ID, ClientState: t.ClientState}, nil
}

type resolvedTenant struct {
	ID          string
	ClientState string
}

// ProcessDriveDelta pages through the drive's delta query and ingests every
// changed item. The stored delta link is only advanced after all pages have
// been processed, so an interrupted pass replays from the prior link.
func (u *ingestionUsecase) ProcessDriveDelta(ctx context.Context, tenantID, driveID string) error {
	lock := u.driveLock(tenantID, driveID)
	lock.Lock()
	defer lock.Unlock()

	storedLink, err := u.deltaRepo.Get(tenantID, driveID)
	if err != nil {
		return fmt.Errorf("load delta link: %w", err)
	}

	url := storedLink
	if url == "" {
		url = u.graphClient.DeltaURL(driveID)
	}

	var finalDeltaLink string
	resetOnce := false

	for url != "" {
		page, err := u.graphClient.FetchDeltaPage(ctx, tenantID, url)
		if errors.Is(err, graph.ErrDeltaTokenExpired) && !resetOnce {
			// Stored sync token went stale; drop it and start a full pass.
			log.Printf("[Delta] Delta token expired for drive %s, starting full pass", driveID)
			if err := u.deltaRepo.Delete(tenantID, driveID); err != nil {
				return fmt.Errorf("reset delta link: %w", err)
			}
			url = u.graphClient.DeltaURL(driveID)
			resetOnce = true
			continue
		}
		if err != nil {
			return fmt.Errorf("fetch delta page: %w", err)
		}

		log.Printf("[Delta] Processing %d changes for drive %s", len(page.Items), driveID)

		for i := range page.Items {
			item := &page.Items[i]
			if err := u.processItem(ctx, tenantID, driveID, item); err != nil {
				// Item-level failures are isolated; the batch continues.
				log.Printf("[Delta] Skipping item %s (%s): %v", item.ID, item.Name, err)
			}
		}

		url = page.NextLink
		if url == "" {
			finalDeltaLink = page.DeltaLink
		}
	}

	if finalDeltaLink != "" {
		if err := u.deltaRepo.Save(tenantID, driveID, finalDeltaLink); err != nil {
			return fmt.Errorf("save delta link: %w", err)
		}
	}

	return nil
}

// processItem applies the per-item pipeline: deletion handling, type filter,
// dedup check, size policy, then extract -> chunk -> index.
func (u *ingestionUsecase) processItem(ctx context.Context, tenantID, driveID string, item *graph.DriveItem) error {
	if item.IsDeleted() {
		if err := u.index.DeleteItemChunks(ctx, tenantID, driveID, item.ID); err != nil {
			return fmt.Errorf("remove deleted item chunks: %w", err)
		}
		if err := u.processedRepo.Delete(tenantID, driveID, item.ID); err != nil {
			return fmt.Errorf("remove dedup record: %w", err)
		}
		log.Printf("[Delta] Removed chunks for deleted item %s", item.ID)
		return nil
	}

	if !item.IsFile() {
		return nil
	}

	mimeType := ""
	if item.File != nil {
		mimeType = item.File.MimeType
	}
	if !extract.IsSupported(item.Name, mimeType) {
		return nil
	}

	processed, err := u.processedRepo.IsProcessed(tenantID, driveID, item.ID, item.LastModifiedDateTime, item.ETag)
	if err != nil {
		return fmt.Errorf("dedup check: %w", err)
	}
	if processed {
		// Unchanged version: no download, no embedding.
		return nil
	}

	if item.Size > queue.MaxQueueFileSize {
		return fmt.Errorf("file %s too large to process (%d bytes)", item.Name, item.Size)
	}
	if item.Size > MaxStreamingSize {
		return u.enqueueLargeFile(ctx, tenantID, driveID, item)
	}

	var text string
	if item.Size > MaxInlineSize {
		text, err = u.extractViaTempFile(ctx, tenantID, driveID, item)
	} else {
		text, err = u.extractInMemory(ctx, tenantID, driveID, item)
	}
	if err != nil {
		return err
	}

	if err := u.indexItemText(ctx, tenantID, driveID, item.ID, item.Name, item.LastModifiedDateTime.UTC().Format("2006-01-02T15:04:05Z"), text); err != nil {
		return err
	}

	if err := u.processedRepo.MarkProcessed(tenantID, driveID, item.ID, item.LastModifiedDateTime, item.ETag); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}

	log.Printf("[Delta] Indexed item %s (%s)", item.ID, item.Name)
	return nil
}

func (u *ingestionUsecase) enqueueLargeFile(ctx context.Context, tenantID, driveID string, item *graph.DriveItem) error {
	if u.largeFiles == nil {
		return fmt.Errorf("file %s exceeds inline limits and no large-file queue is configured", item.Name)
	}
	return u.largeFiles.Enqueue(ctx, &queue.LargeFileJob{
		TenantID: tenantID,
		DriveID:  driveID,
		ItemID:   item.ID,
		FileName: item.Name,
		FileSize: item.Size,
	})
}

func (u *ingestionUsecase) extractInMemory(ctx context.Context, tenantID, driveID string, item *graph.DriveItem) (string, error) {
	body, err := u.graphClient.DownloadContent(ctx, tenantID, driveID, item.ID)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, MaxInlineSize+1))
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}

	text, err := u.extractor.Extract(ctx, item.Name, data)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	return text, nil
}

// extractViaTempFile spools the download to temporary storage so the file is
// never held in memory wholesale.
func (u *ingestionUsecase) extractViaTempFile(ctx context.Context, tenantID, driveID string, item *graph.DriveItem) (string, error) {
	body, err := u.graphClient.DownloadContent(ctx, tenantID, driveID, item.ID)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer body.Close()

	tempPath := filepath.Join(os.TempDir(), "ingest-"+uuid.New().String()+filepath.Ext(item.Name))
	f, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tempPath)

	_, err = io.Copy(f, body)
	f.Close()
	if err != nil {
		return "", fmt.Errorf("spool content: %w", err)
	}

	text, err := u.extractor.ExtractFile(ctx, item.Name, tempPath)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	return text, nil
}

// indexItemText replaces the item's chunks in the index. Stale chunks are
// deleted first so a shrinking file does not leave orphans behind; the
// upsert itself overwrites chunks that share composite ids.
func (u *ingestionUsecase) indexItemText(ctx context.Context, tenantID, driveID, itemID, title, lastModified, text string) error {
	if err := u.index.DeleteItemChunks(ctx, tenantID, driveID, itemID); err != nil {
		return fmt.Errorf("clear stale chunks: %w", err)
	}

	chunks := extract.ChunkText(text, extract.DefaultChunkSize)
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]vectorindex.DocumentChunk, 0, len(chunks))
	for _, chunk := range chunks {
		docs = append(docs, vectorindex.DocumentChunk{
			ID:           vectorindex.ChunkID(tenantID, itemID, chunk.Index),
			TenantID:     tenantID,
			DriveID:      driveID,
			ItemID:       itemID,
			Title:        title,
			ChunkIndex:   chunk.Index,
			Text:         chunk.Text,
			LastModified: lastModified,
		})
	}

	if err := u.index.UpsertChunks(ctx, docs); err != nil {
		return fmt.Errorf("upsert chunks: %w", err)
	}
	return nil
}

// ProcessLargeFile handles a queued oversized item. The item's metadata is
// re-fetched so a file deleted or changed since enqueue is not indexed from
// stale facts.
func (u *ingestionUsecase) ProcessLargeFile(ctx context.Context, job *queue.LargeFileJob) error {
	item, err := u.graphClient.GetItem(ctx, job.TenantID, job.DriveID, job.ItemID)
	if errors.Is(err, graph.ErrNotFound) {
		log.Printf("[LargeFileQueue] Item %s no longer exists, dropping job", job.ItemID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch item metadata: %w", err)
	}
	if item.IsDeleted() || !item.IsFile() {
		return nil
	}

	processed, err := u.processedRepo.IsProcessed(job.TenantID, job.DriveID, item.ID, item.LastModifiedDateTime, item.ETag)
	if err != nil {
		return fmt.Errorf("dedup check: %w", err)
	}
	if processed {
		return nil
	}

	text, err := u.extractViaTempFile(ctx, job.TenantID, job.DriveID, item)
	if err != nil {
		return err
	}

	if err := u.indexItemText(ctx, job.TenantID, job.DriveID, item.ID, item.Name, item.LastModifiedDateTime.UTC().Format("2006-01-02T15:04:05Z"), text); err != nil {
		return err
	}

	if err := u.processedRepo.MarkProcessed(job.TenantID, job.DriveID, item.ID, item.LastModifiedDateTime, item.ETag); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}

	log.Printf("[LargeFileQueue] Indexed large file %s (%s)", item.ID, item.Name)
	return nil
}

func (u *ingestionUsecase) driveLock(tenantID, driveID string) *sync.Mutex {
	key := tenantID + "/" + driveID
	actual, _ := u.driveLocks.LoadOrStore(key, &sync.Mutex{})
	return actual.(*sync.Mutex)
}
