package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	ingestdomain "docusense-backend/internal/ingestion/domain"
	tenantdomain "docusense-backend/internal/tenant/domain"
	"docusense-backend/pkg/extract"
	"docusense-backend/pkg/graph"
	"docusense-backend/pkg/queue"
	"docusense-backend/pkg/vectorindex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeProcessedRepo struct {
	mu      sync.Mutex
	records map[string]struct {
		lastModified time.Time
		etag         string
	}
}

func newFakeProcessedRepo() *fakeProcessedRepo {
	return &fakeProcessedRepo{records: make(map[string]struct {
		lastModified time.Time
		etag         string
	})}
}

func (r *fakeProcessedRepo) key(tenantID, driveID, itemID string) string {
	return tenantID + "/" + driveID + "/" + itemID
}

func (r *fakeProcessedRepo) IsProcessed(tenantID, driveID, itemID string, lastModified time.Time, etag string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[r.key(tenantID, driveID, itemID)]
	if !ok {
		return false, nil
	}
	return rec.lastModified.Equal(lastModified) && rec.etag == etag, nil
}

func (r *fakeProcessedRepo) MarkProcessed(tenantID, driveID, itemID string, lastModified time.Time, etag string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[r.key(tenantID, driveID, itemID)] = struct {
		lastModified time.Time
		etag         string
	}{lastModified, etag}
	return nil
}

func (r *fakeProcessedRepo) Delete(tenantID, driveID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, r.key(tenantID, driveID, itemID))
	return nil
}

func (r *fakeProcessedRepo) DeleteByTenant(tenantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.records {
		if strings.HasPrefix(k, tenantID+"/") {
			delete(r.records, k)
		}
	}
	return nil
}

type fakeDeltaRepo struct {
	mu    sync.Mutex
	links map[string]string
}

func newFakeDeltaRepo() *fakeDeltaRepo {
	return &fakeDeltaRepo{links: make(map[string]string)}
}

func (r *fakeDeltaRepo) Get(tenantID, driveID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.links[tenantID+"/"+driveID], nil
}

func (r *fakeDeltaRepo) Save(tenantID, driveID, deltaLink string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[tenantID+"/"+driveID] = deltaLink
	return nil
}

func (r *fakeDeltaRepo) Delete(tenantID, driveID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.links, tenantID+"/"+driveID)
	return nil
}

func (r *fakeDeltaRepo) DeleteByTenant(tenantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.links {
		if strings.HasPrefix(k, tenantID+"/") {
			delete(r.links, k)
		}
	}
	return nil
}

type fakeTenantRepo struct {
	tenants map[string]*tenantdomain.Tenant
}

func newFakeTenantRepo(tenants ...*tenantdomain.Tenant) *fakeTenantRepo {
	r := &fakeTenantRepo{tenants: make(map[string]*tenantdomain.Tenant)}
	for _, t := range tenants {
		r.tenants[t.ID] = t
	}
	return r
}

func (r *fakeTenantRepo) Create(t *tenantdomain.Tenant) error { r.tenants[t.ID] = t; return nil }
func (r *fakeTenantRepo) Update(t *tenantdomain.Tenant) error { r.tenants[t.ID] = t; return nil }
func (r *fakeTenantRepo) Delete(id string) error              { delete(r.tenants, id); return nil }

func (r *fakeTenantRepo) FindByID(id string) (*tenantdomain.Tenant, error) {
	return r.tenants[id], nil
}

func (r *fakeTenantRepo) FindByClientState(clientState string) (*tenantdomain.Tenant, error) {
	for _, t := range r.tenants {
		if t.ClientState == clientState {
			return t, nil
		}
	}
	return nil, nil
}

func (r *fakeTenantRepo) FindAll() ([]*tenantdomain.Tenant, error) {
	var out []*tenantdomain.Tenant
	for _, t := range r.tenants {
		out = append(out, t)
	}
	return out, nil
}

// fakeGraphClient serves canned delta pages and file contents.
type fakeGraphClient struct {
	mu sync.Mutex
	// pages keyed by request URL
	pages map[string]*graph.DeltaPage
	// pageErrs keyed by request URL
	pageErrs map[string]error
	// contents keyed by item id
	contents    map[string]string
	contentErrs map[string]error
	items       map[string]*graph.DriveItem

	fetchCalls    []string
	downloadCalls []string
}

func newFakeGraphClient() *fakeGraphClient {
	return &fakeGraphClient{
		pages:       make(map[string]*graph.DeltaPage),
		pageErrs:    make(map[string]error),
		contents:    make(map[string]string),
		contentErrs: make(map[string]error),
		items:       make(map[string]*graph.DriveItem),
	}
}

func (c *fakeGraphClient) DeltaURL(driveID string) string {
	return "delta://" + driveID + "/initial"
}

func (c *fakeGraphClient) FetchDeltaPage(_ context.Context, _ string, url string) (*graph.DeltaPage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchCalls = append(c.fetchCalls, url)
	if err, ok := c.pageErrs[url]; ok {
		return nil, err
	}
	page, ok := c.pages[url]
	if !ok {
		return nil, fmt.Errorf("no page for url %s", url)
	}
	return page, nil
}

func (c *fakeGraphClient) GetItem(_ context.Context, _, _, itemID string) (*graph.DriveItem, error) {
	item, ok := c.items[itemID]
	if !ok {
		return nil, graph.ErrNotFound
	}
	return item, nil
}

func (c *fakeGraphClient) DownloadContent(_ context.Context, _, _, itemID string) (io.ReadCloser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.downloadCalls = append(c.downloadCalls, itemID)
	if err, ok := c.contentErrs[itemID]; ok {
		return nil, err
	}
	content, ok := c.contents[itemID]
	if !ok {
		return nil, graph.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

type fakeIndex struct {
	mu            sync.Mutex
	upserts       [][]vectorindex.DocumentChunk
	itemDeletes   []string
	tenantDeletes []string
}

func (f *fakeIndex) UpsertChunks(_ context.Context, chunks []vectorindex.DocumentChunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, chunks)
	return nil
}

func (f *fakeIndex) DeleteItemChunks(_ context.Context, tenantID, driveID, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.itemDeletes = append(f.itemDeletes, tenantID+"/"+driveID+"/"+itemID)
	return nil
}

func (f *fakeIndex) DeleteTenantChunks(_ context.Context, tenantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tenantDeletes = append(f.tenantDeletes, tenantID)
	return nil
}

func (f *fakeIndex) upsertedChunkCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, batch := range f.upserts {
		total += len(batch)
	}
	return total
}

type fakePublisher struct {
	jobs []*queue.LargeFileJob
}

func (p *fakePublisher) Enqueue(_ context.Context, job *queue.LargeFileJob) error {
	p.jobs = append(p.jobs, job)
	return nil
}

// --- helpers ---

var testModified = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func textItem(id, name string, size int64) graph.DriveItem {
	return graph.DriveItem{
		ID:                   id,
		Name:                 name,
		ETag:                 "etag-" + id,
		Size:                 size,
		LastModifiedDateTime: testModified,
		File:                 &graph.FileFacet{MimeType: "text/plain"},
	}
}

func newPipeline(t *testing.T, tenants ...*tenantdomain.Tenant) (IngestionUsecase, *fakeGraphClient, *fakeIndex, *fakeProcessedRepo, *fakeDeltaRepo, *fakePublisher) {
	t.Helper()
	gc := newFakeGraphClient()
	index := &fakeIndex{}
	processed := newFakeProcessedRepo()
	delta := newFakeDeltaRepo()
	publisher := &fakePublisher{}
	uc := NewIngestionUsecase(processed, delta, newFakeTenantRepo(tenants...), gc, index, extract.NewExtractor(), publisher)
	return uc, gc, index, processed, delta, publisher
}

// --- tests ---

func TestProcessDriveDeltaIndexesNewFile(t *testing.T) {
	uc, gc, index, processed, delta, _ := newPipeline(t)

	item := textItem("item-1", "report.txt", 100)
	gc.pages[gc.DeltaURL("d1")] = &graph.DeltaPage{
		Items:     []graph.DriveItem{item},
		DeltaLink: "delta://d1/token-1",
	}
	gc.contents["item-1"] = "quarterly revenue grew in all regions"

	err := uc.ProcessDriveDelta(context.Background(), "t1", "d1")
	require.NoError(t, err)

	require.Len(t, index.upserts, 1)
	chunks := index.upserts[0]
	require.Len(t, chunks, 1)
	assert.Equal(t, vectorindex.ChunkID("t1", "item-1", 0), chunks[0].ID)
	assert.Equal(t, "t1", chunks[0].TenantID)
	assert.Equal(t, "report.txt", chunks[0].Title)

	done, err := processed.IsProcessed("t1", "d1", "item-1", testModified, "etag-item-1")
	require.NoError(t, err)
	assert.True(t, done)

	link, err := delta.Get("t1", "d1")
	require.NoError(t, err)
	assert.Equal(t, "delta://d1/token-1", link)
}

func TestProcessDriveDeltaSkipsUnchangedFile(t *testing.T) {
	uc, gc, index, processed, _, _ := newPipeline(t)

	item := textItem("item-1", "report.txt", 100)
	gc.pages[gc.DeltaURL("d1")] = &graph.DeltaPage{
		Items:     []graph.DriveItem{item},
		DeltaLink: "delta://d1/token-1",
	}
	require.NoError(t, processed.MarkProcessed("t1", "d1", "item-1", testModified, "etag-item-1"))

	err := uc.ProcessDriveDelta(context.Background(), "t1", "d1")
	require.NoError(t, err)

	// Unchanged version: no download, no index writes, so no embedding work.
	assert.Empty(t, gc.downloadCalls)
	assert.Zero(t, index.upsertedChunkCount())
	assert.Empty(t, index.itemDeletes)
}

func TestProcessDriveDeltaReindexesChangedFile(t *testing.T) {
	uc, gc, index, processed, _, _ := newPipeline(t)

	item := textItem("item-1", "report.txt", 100)
	gc.pages[gc.DeltaURL("d1")] = &graph.DeltaPage{
		Items:     []graph.DriveItem{item},
		DeltaLink: "delta://d1/token-1",
	}
	gc.contents["item-1"] = "updated content"
	// Older version on record
	require.NoError(t, processed.MarkProcessed("t1", "d1", "item-1", testModified.Add(-time.Hour), "etag-old"))

	err := uc.ProcessDriveDelta(context.Background(), "t1", "d1")
	require.NoError(t, err)

	// Stale chunks removed before the new ones go in.
	assert.Equal(t, []string{"t1/d1/item-1"}, index.itemDeletes)
	assert.Equal(t, 1, index.upsertedChunkCount())

	done, err := processed.IsProcessed("t1", "d1", "item-1", testModified, "etag-item-1")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestProcessDriveDeltaRemovesDeletedItem(t *testing.T) {
	uc, gc, index, processed, _, _ := newPipeline(t)

	require.NoError(t, processed.MarkProcessed("t1", "d1", "item-1", testModified, "etag-item-1"))

	gc.pages[gc.DeltaURL("d1")] = &graph.DeltaPage{
		Items: []graph.DriveItem{{
			ID:      "item-1",
			Name:    "report.txt",
			Deleted: &graph.DeletedFacet{State: "deleted"},
		}},
		DeltaLink: "delta://d1/token-1",
	}

	err := uc.ProcessDriveDelta(context.Background(), "t1", "d1")
	require.NoError(t, err)

	assert.Equal(t, []string{"t1/d1/item-1"}, index.itemDeletes)
	done, err := processed.IsProcessed("t1", "d1", "item-1", testModified, "etag-item-1")
	require.NoError(t, err)
	assert.False(t, done, "dedup record removed so a restored file reprocesses")
}

func TestProcessDriveDeltaIsolatesItemFailures(t *testing.T) {
	uc, gc, index, _, delta, _ := newPipeline(t)

	items := make([]graph.DriveItem, 0, 10)
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("item-%d", i)
		items = append(items, textItem(id, id+".txt", 50))
		if i == 3 {
			gc.contentErrs[id] = errors.New("download interrupted")
		} else {
			gc.contents[id] = "content of " + id
		}
	}

	gc.pages[gc.DeltaURL("d1")] = &graph.DeltaPage{Items: items, DeltaLink: "delta://d1/token-1"}

	err := uc.ProcessDriveDelta(context.Background(), "t1", "d1")
	require.NoError(t, err)

	// 9 of 10 indexed; the corrupt one is skipped without failing the pass.
	assert.Equal(t, 9, index.upsertedChunkCount())

	link, err := delta.Get("t1", "d1")
	require.NoError(t, err)
	assert.Equal(t, "delta://d1/token-1", link)
}

func TestProcessDriveDeltaExpiredTokenRestartsFullPass(t *testing.T) {
	uc, gc, index, _, delta, _ := newPipeline(t)

	require.NoError(t, delta.Save("t1", "d1", "delta://d1/stale-token"))
	gc.pageErrs["delta://d1/stale-token"] = graph.ErrDeltaTokenExpired

	item := textItem("item-1", "report.txt", 100)
	gc.pages[gc.DeltaURL("d1")] = &graph.DeltaPage{
		Items:     []graph.DriveItem{item},
		DeltaLink: "delta://d1/fresh-token",
	}
	gc.contents["item-1"] = "full pass content"

	err := uc.ProcessDriveDelta(context.Background(), "t1", "d1")
	require.NoError(t, err)

	assert.Equal(t, 1, index.upsertedChunkCount())
	link, err := delta.Get("t1", "d1")
	require.NoError(t, err)
	assert.Equal(t, "delta://d1/fresh-token", link)
}

func TestProcessDriveDeltaKeepsLinkOnMidPassFailure(t *testing.T) {
	uc, gc, _, _, delta, _ := newPipeline(t)

	gc.pages[gc.DeltaURL("d1")] = &graph.DeltaPage{
		Items:    []graph.DriveItem{},
		NextLink: "delta://d1/page-2",
	}
	gc.pageErrs["delta://d1/page-2"] = graph.ErrServerError

	err := uc.ProcessDriveDelta(context.Background(), "t1", "d1")
	require.Error(t, err)

	// Interrupted pass: nothing persisted, next run replays from scratch.
	link, err := delta.Get("t1", "d1")
	require.NoError(t, err)
	assert.Empty(t, link)
}

func TestProcessDriveDeltaPagesThroughNextLinks(t *testing.T) {
	uc, gc, index, _, delta, _ := newPipeline(t)

	gc.pages[gc.DeltaURL("d1")] = &graph.DeltaPage{
		Items:    []graph.DriveItem{textItem("item-1", "a.txt", 10)},
		NextLink: "delta://d1/page-2",
	}
	gc.pages["delta://d1/page-2"] = &graph.DeltaPage{
		Items:     []graph.DriveItem{textItem("item-2", "b.txt", 10)},
		DeltaLink: "delta://d1/final",
	}
	gc.contents["item-1"] = "first file"
	gc.contents["item-2"] = "second file"

	err := uc.ProcessDriveDelta(context.Background(), "t1", "d1")
	require.NoError(t, err)

	assert.Equal(t, 2, index.upsertedChunkCount())
	link, _ := delta.Get("t1", "d1")
	assert.Equal(t, "delta://d1/final", link)
}

func TestProcessDriveDeltaSkipsFoldersAndUnsupportedTypes(t *testing.T) {
	uc, gc, index, _, _, _ := newPipeline(t)

	folder := graph.DriveItem{ID: "dir-1", Name: "reports", Folder: &graph.FolderFacet{ChildCount: 2}}
	image := graph.DriveItem{
		ID: "img-1", Name: "photo.jpg", Size: 500,
		LastModifiedDateTime: testModified,
		File:                 &graph.FileFacet{MimeType: "image/jpeg"},
	}

	gc.pages[gc.DeltaURL("d1")] = &graph.DeltaPage{
		Items:     []graph.DriveItem{folder, image},
		DeltaLink: "delta://d1/token-1",
	}

	err := uc.ProcessDriveDelta(context.Background(), "t1", "d1")
	require.NoError(t, err)

	assert.Empty(t, gc.downloadCalls)
	assert.Zero(t, index.upsertedChunkCount())
}

func TestProcessDriveDeltaRoutesOversizedFiles(t *testing.T) {
	uc, gc, index, _, _, publisher := newPipeline(t)

	queued := textItem("big-1", "huge.txt", MaxStreamingSize+1)
	rejected := textItem("giant-1", "colossal.txt", queue.MaxQueueFileSize+1)

	gc.pages[gc.DeltaURL("d1")] = &graph.DeltaPage{
		Items:     []graph.DriveItem{queued, rejected},
		DeltaLink: "delta://d1/token-1",
	}

	err := uc.ProcessDriveDelta(context.Background(), "t1", "d1")
	require.NoError(t, err)

	require.Len(t, publisher.jobs, 1)
	assert.Equal(t, "big-1", publisher.jobs[0].ItemID)
	assert.Equal(t, "t1", publisher.jobs[0].TenantID)

	// Neither file is indexed synchronously; the rejected one never at all.
	assert.Zero(t, index.upsertedChunkCount())
	assert.Empty(t, gc.downloadCalls)
}

func TestHandleNotificationBatchRejectsClientStateMismatch(t *testing.T) {
	tenant := &tenantdomain.Tenant{ID: "t1", ClientState: "good-secret"}
	uc, gc, index, _, _, _ := newPipeline(t, tenant)

	batch := &ingestdomain.NotificationBatch{Value: []ingestdomain.ChangeNotification{
		{SubscriptionID: "sub-1", TenantID: "t1", ClientState: "forged-secret", Resource: "/drives/d1/root"},
		{SubscriptionID: "sub-2", TenantID: "t1", ClientState: "", Resource: "/drives/d1/root"},
	}}

	result, err := uc.HandleNotificationBatch(context.Background(), batch)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Accepted)
	assert.Equal(t, 2, result.Rejected)
	assert.Empty(t, gc.fetchCalls, "rejected notifications trigger no delta processing")
	assert.Zero(t, index.upsertedChunkCount())
}

func TestHandleNotificationBatchProcessesAcceptedDrives(t *testing.T) {
	tenant := &tenantdomain.Tenant{ID: "t1", ClientState: "secret"}
	uc, gc, index, _, _, _ := newPipeline(t, tenant)

	item := textItem("item-1", "report.txt", 100)
	gc.pages[gc.DeltaURL("d1")] = &graph.DeltaPage{
		Items:     []graph.DriveItem{item},
		DeltaLink: "delta://d1/token-1",
	}
	gc.contents["item-1"] = "notified content"

	batch := &ingestdomain.NotificationBatch{Value: []ingestdomain.ChangeNotification{
		// Two notifications for the same drive collapse into one delta pass.
		{SubscriptionID: "sub-1", TenantID: "t1", ClientState: "secret", Resource: "/drives/d1/root"},
		{SubscriptionID: "sub-1", TenantID: "t1", ClientState: "secret", Resource: "/drives/d1/root"},
	}}

	result, err := uc.HandleNotificationBatch(context.Background(), batch)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Accepted)
	assert.Equal(t, 0, result.Rejected)
	assert.Len(t, gc.fetchCalls, 1, "same drive processed once per batch")
	assert.Equal(t, 1, index.upsertedChunkCount())
}

func TestHandleNotificationBatchResolvesTenantByClientState(t *testing.T) {
	tenant := &tenantdomain.Tenant{ID: "t1", ClientState: "secret"}
	uc, gc, _, _, _, _ := newPipeline(t, tenant)

	gc.pages[gc.DeltaURL("d1")] = &graph.DeltaPage{DeltaLink: "delta://d1/token-1"}

	batch := &ingestdomain.NotificationBatch{Value: []ingestdomain.ChangeNotification{
		{SubscriptionID: "sub-1", ClientState: "secret", Resource: "/drives/d1/root"},
	}}

	result, err := uc.HandleNotificationBatch(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Accepted)
}

func TestHandleNotificationBatchIgnoresNonDriveResources(t *testing.T) {
	tenant := &tenantdomain.Tenant{ID: "t1", ClientState: "secret"}
	uc, gc, _, _, _, _ := newPipeline(t, tenant)

	batch := &ingestdomain.NotificationBatch{Value: []ingestdomain.ChangeNotification{
		{SubscriptionID: "sub-1", TenantID: "t1", ClientState: "secret", Resource: "/sites/s1/lists/l1"},
	}}

	result, err := uc.HandleNotificationBatch(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Accepted)
	assert.Equal(t, 1, result.Rejected)
	assert.Empty(t, gc.fetchCalls)
}

func TestProcessLargeFileIndexesQueuedItem(t *testing.T) {
	uc, gc, index, processed, _, _ := newPipeline(t)

	item := textItem("big-1", "huge.txt", MaxStreamingSize+1)
	gc.items["big-1"] = &item
	gc.contents["big-1"] = "contents of the very large file"

	err := uc.ProcessLargeFile(context.Background(), &queue.LargeFileJob{
		TenantID: "t1", DriveID: "d1", ItemID: "big-1", FileName: "huge.txt",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, index.upsertedChunkCount())
	done, err := processed.IsProcessed("t1", "d1", "big-1", testModified, "etag-big-1")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestProcessLargeFileDropsVanishedItem(t *testing.T) {
	uc, _, index, _, _, _ := newPipeline(t)

	err := uc.ProcessLargeFile(context.Background(), &queue.LargeFileJob{
		TenantID: "t1", DriveID: "d1", ItemID: "gone", FileName: "gone.txt",
	})
	require.NoError(t, err, "vanished items drop the job instead of retrying forever")
	assert.Zero(t, index.upsertedChunkCount())
}

func TestProcessDriveDeltaIdempotentAcrossRuns(t *testing.T) {
	uc, gc, index, _, _, _ := newPipeline(t)

	item := textItem("item-1", "report.txt", 100)
	gc.pages[gc.DeltaURL("d1")] = &graph.DeltaPage{
		Items:     []graph.DriveItem{item},
		DeltaLink: "delta://d1/token-1",
	}
	// The saved link replays the same change on the next run, as Graph does
	// when a notification is redelivered.
	gc.pages["delta://d1/token-1"] = &graph.DeltaPage{
		Items:     []graph.DriveItem{item},
		DeltaLink: "delta://d1/token-2",
	}
	gc.contents["item-1"] = "same content"

	require.NoError(t, uc.ProcessDriveDelta(context.Background(), "t1", "d1"))
	require.NoError(t, uc.ProcessDriveDelta(context.Background(), "t1", "d1"))

	// Second run sees the unchanged version and does nothing.
	assert.Equal(t, 1, index.upsertedChunkCount())
	assert.Len(t, gc.downloadCalls, 1)
}
