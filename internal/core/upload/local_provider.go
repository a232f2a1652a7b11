package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalProvider stores files on the local filesystem
type LocalProvider struct {
	basePath string
	baseURL  string
}

// NewLocalProvider creates the base directory if needed
func NewLocalProvider(basePath, baseURL string) (*LocalProvider, error) {
	if basePath == "" {
		basePath = "./exports"
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &LocalProvider{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// BasePath is the directory served under the public base URL
func (p *LocalProvider) BasePath() string {
	return p.basePath
}

// Upload writes the file under basePath/folder
func (p *LocalProvider) Upload(ctx context.Context, file io.Reader, filename string, options *UploadOptions) (*UploadResult, error) {
	options = MergeOptions(options)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := objectKey(options.Folder, filename)
	filePath := filepath.Join(p.basePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	if !options.Overwrite {
		if _, err := os.Stat(filePath); err == nil {
			return nil, fmt.Errorf("file already exists: %s", key)
		}
	}

	// Write to a temp file first so readers never see a partial export
	tmp, err := os.CreateTemp(filepath.Dir(filePath), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	src := file
	if options.MaxSize > 0 {
		src = io.LimitReader(file, options.MaxSize+1)
	}
	size, err := io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if options.MaxSize > 0 && size > options.MaxSize {
		return nil, fmt.Errorf("file size exceeds maximum allowed size: %d bytes", options.MaxSize)
	}

	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	ext := filepath.Ext(filename)
	contentType := options.ContentType
	if contentType == "" {
		contentType = detectContentType(ext)
	}

	return &UploadResult{
		URL:         p.GetURL(key),
		Key:         key,
		FileName:    filepath.Base(filename),
		Size:        size,
		Format:      strings.TrimPrefix(ext, "."),
		ContentType: contentType,
	}, nil
}

// Delete removes a stored file
func (p *LocalProvider) Delete(ctx context.Context, key string) error {
	filePath := filepath.Join(p.basePath, filepath.FromSlash(key))

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// GetURL gets the public URL for a file, or its path when no base URL is set
func (p *LocalProvider) GetURL(key string) string {
	if p.baseURL == "" {
		return filepath.Join(p.basePath, filepath.FromSlash(key))
	}
	return p.baseURL + "/" + key
}

// GetProviderName returns the provider name
func (p *LocalProvider) GetProviderName() string {
	return "Local Storage"
}
