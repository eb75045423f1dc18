package extract

import (
	"path/filepath"
	"strings"
)

// Extensions the extractor can turn into meaningful text. Filtering happens
// before download to avoid paying bandwidth for binaries that extract nothing.
var supportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".pptx": true,
	".txt":  true,
	".md":   true,
	".csv":  true,
	".html": true,
	".htm":  true,
	".xml":  true,
}

// MIME types accepted when the extension is ambiguous or missing.
var supportedMIMETypes = map[string]bool{
	"application/pdf": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"text/plain":    true,
	"text/csv":      true,
	"text/html":     true,
	"text/markdown": true,
	"text/xml":      true,
	"application/xml": true,
}

// Extensions that are always skipped, even when Graph reports a text-ish MIME
// type for them.
var skipExtensions = map[string]bool{
	".zip": true, ".rar": true, ".7z": true, ".tar": true, ".gz": true,
	".mp4": true, ".avi": true, ".mkv": true, ".mov": true,
	".mp3": true, ".wav": true, ".flac": true,
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".svg": true,
	".exe": true, ".msi": true, ".dll": true, ".so": true,
	".db": true, ".sqlite": true,
	".tmp": true, ".cache": true, ".log": true,
}

// IsSupported reports whether a file is worth downloading and extracting.
func IsSupported(name, mimeType string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if skipExtensions[ext] {
		return false
	}
	if supportedExtensions[ext] {
		return true
	}
	return supportedMIMETypes[mimeType]
}
