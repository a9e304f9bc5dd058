package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrDisabled is returned by Disabled storage for every write
var ErrDisabled = errors.New("storage: document storage is not configured")

// DocumentType names a driver document
type DocumentType string

const (
	DocumentPhoto   DocumentType = "photo"
	DocumentLicence DocumentType = "licence"
)

// AllowedTypes returns the MIME types accepted for t
func (t DocumentType) AllowedTypes() []string {
	if t == DocumentPhoto {
		return []string{"image/jpeg", "image/png", "image/webp"}
	}
	return []string{"image/*", "application/pdf"}
}

// UploadResult contains the result of an upload operation
type UploadResult struct {
	Key        string    `json:"key"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mime_type"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// PresignedURLResult is a time-limited download link
type PresignedURLResult struct {
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Storage is the document store drivers upload to
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetURL(key string) string
	GetPresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (*PresignedURLResult, error)
}

// Disabled rejects uploads; used when STORAGE_ENABLED is false
type Disabled struct{}

func (Disabled) Upload(context.Context, string, io.Reader, int64, string) (*UploadResult, error) {
	return nil, ErrDisabled
}

func (Disabled) Delete(context.Context, string) error { return nil }

func (Disabled) GetURL(key string) string { return key }

func (Disabled) GetPresignedDownloadURL(context.Context, string, time.Duration) (*PresignedURLResult, error) {
	return nil, ErrDisabled
}

// GenerateDocumentKey builds a unique key:
// drivers/{user_id}/documents/{type}/{yyyymmdd}_{random}{ext}
func GenerateDocumentKey(userID uuid.UUID, documentType DocumentType, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("drivers/%s/documents/%s/%s_%s%s",
		userID.String(),
		strings.ToLower(string(documentType)),
		time.Now().UTC().Format("20060102"),
		uuid.New().String()[:8],
		ext,
	)
}

// ValidateMimeType checks mimeType against allowedTypes, which may contain wildcards like "image/*"
func ValidateMimeType(mimeType string, allowedTypes []string) bool {
	if len(allowedTypes) == 0 {
		return true
	}

	mimeType = strings.ToLower(mimeType)
	for _, allowed := range allowedTypes {
		allowed = strings.ToLower(allowed)
		if allowed == mimeType {
			return true
		}
		if prefix, ok := strings.CutSuffix(allowed, "*"); ok && strings.HasSuffix(prefix, "/") && strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}
	return false
}

var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// GetMimeTypeFromExtension returns the MIME type for the document extensions we accept
func GetMimeTypeFromExtension(filename string) string {
	if mime, ok := mimeTypes[strings.ToLower(path.Ext(filename))]; ok {
		return mime
	}
	return "application/octet-stream"
}
