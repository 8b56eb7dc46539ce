// Package storage keeps uploaded invoice documents on local disk or in a
// MinIO/S3 bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"maintdash/internal/models"
)

// DocumentStore persists opaque documents under slash-separated keys.
type DocumentStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// allowed maps accepted document extensions to their content type.
var allowed = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// DocumentKey picks a fresh key under prefix for an upload named filename,
// keeping its extension. Extensions outside pdf, doc, docx, jpg, jpeg and png
// are rejected with models.ErrUnsupportedDocument.
func DocumentKey(prefix, filename string) (key, contentType string, err error) {
	ext := strings.ToLower(filepath.Ext(filename))
	ct, ok := allowed[ext]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", models.ErrUnsupportedDocument, ext)
	}
	return path.Join(prefix, uuid.NewString()+ext), ct, nil
}

// ContentType returns the content type for a stored key's extension.
func ContentType(key string) string {
	if ct, ok := allowed[strings.ToLower(path.Ext(key))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// cleanKey rejects keys that would escape the store root.
func cleanKey(key string) (string, error) {
	k := path.Clean("/" + key)[1:]
	if k == "" || k != strings.TrimPrefix(key, "/") {
		return "", fmt.Errorf("%w: bad storage key %q", models.ErrInvalidInput, key)
	}
	return k, nil
}
