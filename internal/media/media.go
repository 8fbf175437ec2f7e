// Package media validates and stores uploaded attachment files.
// Uploads are limited to images and videos and stored under randomized
// names so original filenames never reach the filesystem or bucket.
package media

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxUploadBytes caps a single uploaded file at 50 MB.
const MaxUploadBytes = 50 << 20

var (
	ErrTooLarge        = errors.New("file exceeds maximum size")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// ValidateUpload checks size and content type before anything is
// written. Only image/* and video/* are accepted.
func ValidateUpload(contentType string, size int64) error {
	if size > MaxUploadBytes {
		return ErrTooLarge
	}
	if !strings.HasPrefix(contentType, "image/") && !strings.HasPrefix(contentType, "video/") {
		return ErrUnsupportedType
	}
	return nil
}

// RandomName returns a storage name that keeps only the original
// file's extension. Extensions are lowercased and stripped of anything
// that is not alphanumeric.
func RandomName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	var clean strings.Builder
	for _, r := range ext {
		if r == '.' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			clean.WriteRune(r)
		}
	}
	return uuid.NewString() + clean.String()
}
