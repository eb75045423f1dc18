package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ada-002 and text-embedding-3-small both produce 1536-dimensional vectors.
const defaultDimensions = 1536

// maxInputChars guards against blowing the embedding model's token limit.
const maxInputChars = 10000

// AzureOpenAIEmbedder calls the Azure OpenAI embeddings deployment.
type AzureOpenAIEmbedder struct {
	endpoint   string
	apiKey     string
	deployment string
	apiVersion string
	http       *http.Client
}

// NewAzureOpenAIEmbedder creates an embedder for the given deployment.
func NewAzureOpenAIEmbedder(endpoint, apiKey, deployment, apiVersion string) (*AzureOpenAIEmbedder, error) {
	if endpoint == "" || apiKey == "" {
		return nil, fmt.Errorf("AZURE_OPENAI_ENDPOINT and AZURE_OPENAI_API_KEY are required")
	}
	return &AzureOpenAIEmbedder{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		deployment: deployment,
		apiVersion: apiVersion,
		http:       &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// EmbedText embeds a single text. Oversized input is truncated rather than
// rejected; the chunker upstream keeps inputs well under the limit anyway.
func (e *AzureOpenAIEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if len(text) > maxInputChars {
		text = text[:maxInputChars]
	}

	payload, err := json.Marshal(map[string]string{"input": text})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/embeddings?api-version=%s",
		e.endpoint, e.deployment, e.apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", e.apiKey)

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding request failed: status %d: %s", resp.StatusCode, string(body))
	}

	var embResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(embResp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no data")
	}

	return embResp.Data[0].Embedding, nil
}

// Dimensions returns the vector length of the deployment's model.
func (e *AzureOpenAIEmbedder) Dimensions() int {
	return defaultDimensions
}
