package storage

import (
	"fmt"
	"path"
	"strings"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv"
)

// AllowedContentTypes defines the sheet formats accepted for archiving.
var AllowedContentTypes = map[string]bool{
	ContentTypeXLSX: true,
	ContentTypeCSV:  true,
	"text/plain":    true,
}

// ContentTypeFor derives the content type from a sheet file name.
func ContentTypeFor(fileName string) string {
	switch strings.ToLower(path.Ext(fileName)) {
	case ".xlsx":
		return ContentTypeXLSX
	case ".csv":
		return ContentTypeCSV
	case ".txt", ".tsv":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

// ValidateContentType checks if the content type is allowed.
func (s *MinIOService) ValidateContentType(contentType string) error {
	// Normalize content type (remove parameters like charset)
	normalized := strings.Split(contentType, ";")[0]
	normalized = strings.TrimSpace(strings.ToLower(normalized))

	if !AllowedContentTypes[normalized] {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	return nil
}

// ValidateFileSize checks if the file size is within limits.
func (s *MinIOService) ValidateFileSize(sizeBytes int64) error {
	if sizeBytes <= 0 {
		return fmt.Errorf("file size must be greater than 0")
	}
	if s.maxFileSize > 0 && sizeBytes > s.maxFileSize {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size of %d bytes", sizeBytes, s.maxFileSize)
	}
	return nil
}
