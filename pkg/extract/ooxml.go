package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// OOXML documents (.docx, .pptx) are zip archives of XML parts. The visible
// text lives in run elements: w:t for WordprocessingML, a:t for DrawingML.

func extractDocxBytes(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	return extractOOXML(zr, isDocxPart, "t")
}

func extractDocxFile(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()
	return extractOOXML(&zr.Reader, isDocxPart, "t")
}

func extractPptxBytes(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pptx: %w", err)
	}
	return extractOOXML(zr, isPptxPart, "t")
}

func extractPptxFile(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open pptx: %w", err)
	}
	defer zr.Close()
	return extractOOXML(&zr.Reader, isPptxPart, "t")
}

func isDocxPart(name string) bool {
	return name == "word/document.xml"
}

func isPptxPart(name string) bool {
	return strings.HasPrefix(name, "ppt/slides/slide") && strings.HasSuffix(name, ".xml")
}

// extractOOXML walks the selected XML parts and collects the character data
// of every text run element.
func extractOOXML(zr *zip.Reader, selectPart func(string) bool, textElement string) (string, error) {
	var parts []string

	for _, f := range zr.File {
		if !selectPart(f.Name) {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open part %s: %w", f.Name, err)
		}

		text, err := collectRunText(rc, textElement)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("parse part %s: %w", f.Name, err)
		}
		if text != "" {
			parts = append(parts, text)
		}
	}

	return textOrErr(strings.Join(parts, "\n"))
}

func collectRunText(r io.Reader, textElement string) (string, error) {
	decoder := xml.NewDecoder(r)
	var b strings.Builder
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == textElement {
				inText = true
			}
		case xml.EndElement:
			if t.Name.Local == textElement {
				inText = false
				b.WriteByte(' ')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return strings.TrimSpace(b.String()), nil
}
