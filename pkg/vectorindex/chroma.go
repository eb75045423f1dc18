package vectorindex

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"docusense-backend/pkg/config"
	"docusense-backend/pkg/embedding"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
)

// DocumentChunk is one embedded slice of a source file, keyed by a composite
// id so that re-ingesting a changed file overwrites instead of duplicating.
type DocumentChunk struct {
	ID           string
	TenantID     string
	DriveID      string
	ItemID       string
	Title        string
	ChunkIndex   int
	Text         string
	LastModified string
}

// Match is a search hit.
type Match struct {
	ID       string
	Title    string
	Snippet  string
	Chunk    int
	Distance float64
}

// ChunkID derives the composite chunk id. Reprocessing the same item yields
// the same ids, which makes index upserts idempotent.
func ChunkID(tenantID, itemID string, chunkIndex int) string {
	return fmt.Sprintf("%s_%s_%d", tenantID, itemID, chunkIndex)
}

// embeddingFunctionAdapter exposes an embedding.Embedder as a chroma-go
// embedding function so the collection embeds texts through Azure OpenAI.
type embeddingFunctionAdapter struct {
	embedder embedding.Embedder
}

func (a *embeddingFunctionAdapter) EmbedDocuments(ctx context.Context, documents []string) ([]embeddings.Embedding, error) {
	result := make([]embeddings.Embedding, 0, len(documents))
	for _, doc := range documents {
		vec, err := a.embedder.EmbedText(ctx, doc)
		if err != nil {
			return nil, err
		}
		result = append(result, embeddings.NewEmbeddingFromFloat32(vec))
	}
	return result, nil
}

func (a *embeddingFunctionAdapter) EmbedQuery(ctx context.Context, document string) (embeddings.Embedding, error) {
	vec, err := a.embedder.EmbedText(ctx, document)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbeddingFromFloat32(vec), nil
}

// ChromaIndex stores document chunks in a Chroma collection.
type ChromaIndex struct {
	client     chroma.Client
	collection chroma.Collection
}

// NewChromaIndex connects to Chroma Cloud and opens the chunk collection.
func NewChromaIndex(cfg *config.Config, embedder embedding.Embedder) (*ChromaIndex, error) {
	if cfg.ChromaAPIKey == "" {
		return nil, fmt.Errorf("CHROMA_API_KEY is required")
	}

	embedFunc := &embeddingFunctionAdapter{embedder: embedder}

	var client chroma.Client
	var err error
	if cfg.ChromaDatabase != "" && cfg.ChromaTenant != "" {
		client, err = chroma.NewHTTPClient(
			chroma.WithBaseURL(chroma.ChromaCloudEndpoint),
			chroma.WithCloudAPIKey(cfg.ChromaAPIKey),
			chroma.WithDatabaseAndTenant(cfg.ChromaDatabase, cfg.ChromaTenant),
		)
	} else if cfg.ChromaTenant != "" {
		client, err = chroma.NewHTTPClient(
			chroma.WithBaseURL(chroma.ChromaCloudEndpoint),
			chroma.WithCloudAPIKey(cfg.ChromaAPIKey),
			chroma.WithTenant(cfg.ChromaTenant),
		)
	} else {
		client, err = chroma.NewHTTPClient(
			chroma.WithBaseURL(chroma.ChromaCloudEndpoint),
			chroma.WithCloudAPIKey(cfg.ChromaAPIKey),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Chroma client: %w", err)
	}

	ctx := context.Background()
	collection, err := client.GetOrCreateCollection(
		ctx,
		cfg.ChromaCollection,
		chroma.WithEmbeddingFunctionCreate(embedFunc),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection: %w", err)
	}

	log.Printf("[VectorIndex] Initialized Chroma collection: %s", cfg.ChromaCollection)

	return &ChromaIndex{client: client, collection: collection}, nil
}

// UpsertChunks writes chunks under their composite ids. Existing chunks with
// the same ids are overwritten, never duplicated.
func (c *ChromaIndex) UpsertChunks(ctx context.Context, chunks []DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	ids := make([]chroma.DocumentID, 0, len(chunks))
	texts := make([]string, 0, len(chunks))
	metadatas := make([]chroma.DocumentMetadata, 0, len(chunks))

	for _, chunk := range chunks {
		metadata, err := chroma.NewDocumentMetadataFromMap(map[string]interface{}{
			"tenant_id":     chunk.TenantID,
			"drive_id":      chunk.DriveID,
			"item_id":       chunk.ItemID,
			"title":         chunk.Title,
			"chunk":         strconv.Itoa(chunk.ChunkIndex),
			"last_modified": chunk.LastModified,
		})
		if err != nil {
			return fmt.Errorf("failed to create metadata: %w", err)
		}
		ids = append(ids, chroma.DocumentID(chunk.ID))
		texts = append(texts, chunk.Text)
		metadatas = append(metadatas, metadata)
	}

	err := c.collection.Upsert(
		ctx,
		chroma.WithIDs(ids...),
		chroma.WithMetadatas(metadatas...),
		chroma.WithTexts(texts...),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert chunks: %w", err)
	}
	return nil
}

// DeleteItemChunks removes every chunk of one source item.
func (c *ChromaIndex) DeleteItemChunks(ctx context.Context, tenantID, driveID, itemID string) error {
	where := chroma.And(
		chroma.EqString("tenant_id", tenantID),
		chroma.EqString("drive_id", driveID),
		chroma.EqString("item_id", itemID),
	)
	if err := c.collection.Delete(ctx, chroma.WithWhereDelete(where)); err != nil {
		return fmt.Errorf("failed to delete item chunks: %w", err)
	}
	return nil
}

// DeleteTenantChunks removes every chunk belonging to a tenant.
func (c *ChromaIndex) DeleteTenantChunks(ctx context.Context, tenantID string) error {
	where := chroma.EqString("tenant_id", tenantID)
	if err := c.collection.Delete(ctx, chroma.WithWhereDelete(where)); err != nil {
		return fmt.Errorf("failed to delete tenant chunks: %w", err)
	}
	return nil
}

// Query runs a semantic search filtered to one tenant.
func (c *ChromaIndex) Query(ctx context.Context, tenantID, query string, limit int) ([]Match, error) {
	where := chroma.EqString("tenant_id", tenantID)

	results, err := c.collection.Query(
		ctx,
		chroma.WithQueryTexts(query),
		chroma.WithNResults(limit),
		chroma.WithWhereQuery(where),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	if results == nil || results.CountGroups() == 0 {
		return []Match{}, nil
	}

	idGroups := results.GetIDGroups()
	docGroups := results.GetDocumentsGroups()
	distanceGroups := results.GetDistancesGroups()
	metadataGroups := results.GetMetadatasGroups()

	if len(idGroups) == 0 || len(idGroups[0]) == 0 {
		return []Match{}, nil
	}

	matches := make([]Match, 0, len(idGroups[0]))
	for i, id := range idGroups[0] {
		match := Match{ID: string(id)}

		if len(docGroups) > 0 && i < len(docGroups[0]) {
			match.Snippet = snippet(docGroups[0][i].ContentString())
		}
		if len(distanceGroups) > 0 && i < len(distanceGroups[0]) {
			match.Distance = float64(distanceGroups[0][i])
		}
		if len(metadataGroups) > 0 && i < len(metadataGroups[0]) && metadataGroups[0][i] != nil {
			if title, ok := metadataGroups[0][i].GetString("title"); ok {
				match.Title = title
			}
			if chunkStr, ok := metadataGroups[0][i].GetString("chunk"); ok {
				if n, err := strconv.Atoi(chunkStr); err == nil {
					match.Chunk = n
				}
			}
		}

		matches = append(matches, match)
	}

	return matches, nil
}

// snippet trims chunk text for result payloads.
func snippet(text string) string {
	if len(text) > 240 {
		return text[:240] + "..."
	}
	return text
}
