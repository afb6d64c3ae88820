package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"invoice-assistant/internal/dto"

	"github.com/go-playground/validator/v10"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrExtractionParse     = errors.New("failed to parse extraction response")
)

var supportedFileTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Extractor turns an invoice document on disk into structured fields.
// Implementations make a single attempt; there is no retry.
type Extractor interface {
	Extract(ctx context.Context, filePath string) (*dto.ExtractedInvoice, error)
}

// SupportedExtensions returns the accepted upload extensions, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(supportedFileTypes))
	for ext := range supportedFileTypes {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ValidateExtension returns the lower-cased extension of name or ErrUnsupportedFileType.
func ValidateExtension(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := supportedFileTypes[ext]; !ok {
		return "", fmt.Errorf("%w. Allowed: %s", ErrUnsupportedFileType, strings.Join(SupportedExtensions(), ", "))
	}
	return ext, nil
}

func mimeTypeFor(ext string) string {
	return supportedFileTypes[ext]
}

func extractionPrompt(ext string) string {
	fileType := "invoice image"
	if ext == ".pdf" {
		fileType = "invoice PDF file"
	}
	return fmt.Sprintf("Extract the structured data from the following %s. "+
		"Pay special attention to account numbers, invoice numbers, dates, and itemized details. "+
		"Determine the appropriate category for the invoice based on the vendor name and invoice content. "+
		"Choose from: %s.", fileType, strings.Join(Categories(), ", "))
}

var extractionValidator = validator.New()

// DecodeExtractedInvoice parses the service's JSON answer, tolerating markdown
// fences and surrounding chatter. Failures wrap ErrExtractionParse.
func DecodeExtractedInvoice(raw string) (*dto.ExtractedInvoice, error) {
	content := strings.TrimSpace(raw)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in %q", ErrExtractionParse, truncate(raw, 200))
	}

	var extracted dto.ExtractedInvoice
	if err := json.Unmarshal([]byte(content[start:end+1]), &extracted); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionParse, err)
	}
	if err := extractionValidator.Struct(&extracted); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionParse, err)
	}

	return &extracted, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
