package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedImageType = errors.New("unsupported image type")
	ErrImageTooLarge        = errors.New("image too large")
)

// ProductImageFolder is the key prefix for catalog images
const ProductImageFolder = "products"

// AllowedImageTypes maps accepted extensions to their content type
var AllowedImageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Upload is an image received from a client
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageStore persists product images and resolves their public URL
type ImageStore interface {
	Save(ctx context.Context, folder string, upload Upload) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	URL(key string) string
}

// NewKey builds a collision-free object key keeping the upload's extension
func NewKey(folder, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)
}

// ValidateImage checks extension, content type and size of an upload
func ValidateImage(upload Upload, maxSize int64) error {
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	expected, ok := AllowedImageTypes[ext]
	if !ok {
		return fmt.Errorf("%w: extension %q", ErrUnsupportedImageType, ext)
	}
	if err := ValidateContentType(upload.ContentType, []string{expected, "application/octet-stream", ""}); err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedImageType, err)
	}
	if err := ValidateFileSize(upload.Size, maxSize); err != nil {
		return fmt.Errorf("%w: %v", ErrImageTooLarge, err)
	}
	return nil
}

// ValidateFileSize validates the file size
func ValidateFileSize(size int64, maxSize int64) error {
	if size > maxSize {
		return fmt.Errorf("file size exceeds maximum allowed size of %d bytes", maxSize)
	}
	return nil
}

// ValidateContentType validates the content type
func ValidateContentType(contentType string, allowedTypes []string) error {
	base := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	for _, allowed := range allowedTypes {
		if base == allowed {
			return nil
		}
	}
	return fmt.Errorf("content type %s is not allowed", contentType)
}
