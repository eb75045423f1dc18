package extract

import "strings"

// DefaultChunkSize is the chunk window in words.
const DefaultChunkSize = 300

// Chunk is one slice of extracted text.
type Chunk struct {
	Text  string
	Index int
}

// ChunkText splits text into windows of approximately size words. Empty
// windows are dropped; indices stay stable across runs for the same input,
// which keeps composite chunk ids deterministic.
func ChunkText(text string, size int) []Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]Chunk, 0, len(words)/size+1)
	for i := 0; i < len(words); i += size {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		chunkText := strings.Join(words[i:end], " ")
		if strings.TrimSpace(chunkText) == "" {
			continue
		}
		chunks = append(chunks, Chunk{Text: chunkText, Index: i / size})
	}
	return chunks
}
