// ABOUTME: Plain-text extraction from uploaded document containers
// ABOUTME: Supports txt/markdown passthrough and PDF via ledongthuc/pdf
package extract

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedType is returned for file extensions we cannot extract
var ErrUnsupportedType = errors.New("unsupported file type")

// Supported reports whether a file extension (with or without leading dot)
// can be extracted
func Supported(ext string) bool {
	switch normalizeExt(ext) {
	case ".txt", ".md", ".markdown", ".pdf":
		return true
	}
	return false
}

// Text extracts plain text from the file at path based on its extension.
// It returns the raw extracted text without trimming; the caller decides
// whether blank output is an ingestion failure.
func Text(path string) (string, error) {
	switch normalizeExt(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", filepath.Base(path), err)
		}
		return string(data), nil
	case ".pdf":
		return pdfText(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(path))
	}
}

func pdfText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting PDF text: %w", err)
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, plain); err != nil {
		return "", fmt.Errorf("reading PDF text: %w", err)
	}
	return sb.String(), nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
