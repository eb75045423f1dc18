package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSupported(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		mimeType string
		want     bool
	}{
		{"pdf by extension", "report.pdf", "", true},
		{"docx by extension", "notes.docx", "", true},
		{"pptx by extension", "deck.pptx", "", true},
		{"txt by extension", "readme.txt", "", true},
		{"markdown", "CHANGELOG.md", "", true},
		{"uppercase extension", "REPORT.PDF", "", true},
		{"no extension, text mime", "LICENSE", "text/plain", true},
		{"no extension, no mime", "Makefile", "", false},
		{"image", "photo.jpg", "image/jpeg", false},
		{"archive", "backup.zip", "application/zip", false},
		{"video with text mime lies", "clip.mp4", "text/plain", false},
		{"executable", "setup.exe", "", false},
		{"unknown binary", "data.bin", "application/octet-stream", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSupported(tt.fileName, tt.mimeType))
		})
	}
}
