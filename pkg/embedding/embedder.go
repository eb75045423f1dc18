package embedding

import "context"

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	// Dimensions returns the vector length produced by this embedder.
	Dimensions() int
}
