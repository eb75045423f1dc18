package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedType is returned for file types the extractor cannot handle.
var ErrUnsupportedType = errors.New("extract: unsupported file type")

// ErrNoText is returned when extraction succeeds but yields no text.
var ErrNoText = errors.New("extract: no text content")

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("extract: pdftotext not found, install poppler-utils")

// CommandRunner abstracts command execution for testing.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultRunner executes commands using os/exec.
type DefaultRunner struct{}

// Run executes a command and returns its stdout.
func (r *DefaultRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// Extractor converts documents into plain text.
type Extractor struct {
	runner CommandRunner
}

// NewExtractor creates an extractor using the system pdftotext binary.
func NewExtractor() *Extractor {
	return &Extractor{runner: &DefaultRunner{}}
}

// NewExtractorWithRunner creates an extractor with a custom command runner.
func NewExtractorWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// Extract converts in-memory content into plain text, dispatching on the
// file name's extension. PDF content is spilled to a temp file for pdftotext.
func (e *Extractor) Extract(ctx context.Context, name string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))

	switch ext {
	case ".pdf":
		tempPath := filepath.Join(os.TempDir(), "extract-"+uuid.New().String()+".pdf")
		if err := os.WriteFile(tempPath, data, 0o600); err != nil {
			return "", fmt.Errorf("write temp pdf: %w", err)
		}
		defer os.Remove(tempPath)
		return e.extractPDF(ctx, tempPath)
	case ".docx":
		return extractDocxBytes(data)
	case ".pptx":
		return extractPptxBytes(data)
	case ".txt", ".md", ".csv":
		return textOrErr(string(data))
	case ".html", ".htm", ".xml":
		return textOrErr(stripTags(string(data)))
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
}

// ExtractFile converts a file on disk into plain text. Used for large items
// that were streamed to temporary storage instead of held in memory.
func (e *Extractor) ExtractFile(ctx context.Context, name, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))

	switch ext {
	case ".pdf":
		return e.extractPDF(ctx, path)
	case ".docx":
		return extractDocxFile(path)
	case ".pptx":
		return extractPptxFile(path)
	case ".txt", ".md", ".csv", ".html", ".htm", ".xml":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read file: %w", err)
		}
		if ext == ".html" || ext == ".htm" || ext == ".xml" {
			return textOrErr(stripTags(string(data)))
		}
		return textOrErr(string(data))
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
}

// extractPDF shells out to pdftotext, writing to stdout.
func (e *Extractor) extractPDF(ctx context.Context, path string) (string, error) {
	out, err := e.runner.Run(ctx, "pdftotext", "-layout", path, "-")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", ErrPDFToolNotFound
		}
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return textOrErr(string(out))
}

func textOrErr(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

// stripTags removes markup, keeping character data separated by spaces.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
			b.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
