package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/shared/config"
)

var ErrNotFound = errors.New("file not found")

// UploadResult represents a stored export
type UploadResult struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	FileName    string `json:"file_name"`
	Size        int64  `json:"size"`
	Format      string `json:"format"`
	ContentType string `json:"content_type"`
}

// UploadOptions controls where a file lands
type UploadOptions struct {
	Folder      string `json:"folder"`
	ContentType string `json:"content_type"`
	Overwrite   bool   `json:"overwrite"`
	MaxSize     int64  `json:"max_size"`
}

// Provider defines the interface for export storage backends
type Provider interface {
	Upload(ctx context.Context, file io.Reader, filename string, options *UploadOptions) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetURL(key string) string
	GetProviderName() string
}

// DefaultUploadOptions returns default upload options
func DefaultUploadOptions() *UploadOptions {
	return &UploadOptions{
		Folder:    "quotations",
		Overwrite: true,
		MaxSize:   20 * 1024 * 1024,
	}
}

// MergeOptions merges custom options with defaults
func MergeOptions(custom *UploadOptions) *UploadOptions {
	defaults := DefaultUploadOptions()
	if custom == nil {
		return defaults
	}

	if custom.Folder != "" {
		defaults.Folder = custom.Folder
	}
	if custom.ContentType != "" {
		defaults.ContentType = custom.ContentType
	}
	if custom.MaxSize > 0 {
		defaults.MaxSize = custom.MaxSize
	}
	defaults.Overwrite = custom.Overwrite

	return defaults
}

// NewProvider builds the provider named by the storage config
func NewProvider(ctx context.Context, cfg config.StorageConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "local":
		return NewLocalProvider(cfg.LocalPath, cfg.PublicBaseURL)
	case "s3":
		return NewS3Provider(ctx, S3Options{
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}

// objectKey joins folder and file name with forward slashes regardless of OS
func objectKey(folder, filename string) string {
	return strings.TrimPrefix(path.Join(folder, path.Base(filename)), "/")
}

func detectContentType(ext string) string {
	switch strings.ToLower(ext) {
	case ".pdf":
		return "application/pdf"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
