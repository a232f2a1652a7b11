package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures an S3 (or S3-compatible) bucket
type S3Options struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	// Endpoint points at an S3-compatible service (MinIO, R2). Empty uses AWS.
	Endpoint string
}

// S3Provider implements file upload to AWS S3
type S3Provider struct {
	client     *s3.Client
	bucketName string
	baseURL    string
}

// NewS3Provider creates a new AWS S3 provider
func NewS3Provider(ctx context.Context, opts S3Options) (*S3Provider, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	if opts.Endpoint != "" {
		baseURL = strings.TrimSuffix(opts.Endpoint, "/") + "/" + opts.Bucket
	}

	return &S3Provider{
		client:     client,
		bucketName: opts.Bucket,
		baseURL:    baseURL,
	}, nil
}

// Upload uploads a file to AWS S3
func (p *S3Provider) Upload(ctx context.Context, file io.Reader, filename string, options *UploadOptions) (*UploadResult, error) {
	options = MergeOptions(options)

	// Exports are small; buffering gives PutObject a seekable body and us the size
	data, err := io.ReadAll(io.LimitReader(file, options.MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > options.MaxSize {
		return nil, fmt.Errorf("file size exceeds maximum allowed size: %d bytes", options.MaxSize)
	}

	key := objectKey(options.Folder, filename)
	ext := filepath.Ext(filename)
	contentType := options.ContentType
	if contentType == "" {
		contentType = detectContentType(ext)
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		URL:         p.GetURL(key),
		Key:         key,
		FileName:    filepath.Base(filename),
		Size:        int64(len(data)),
		Format:      strings.TrimPrefix(ext, "."),
		ContentType: contentType,
	}, nil
}

// Delete deletes a file from AWS S3
func (p *S3Provider) Delete(ctx context.Context, key string) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}

// GetURL gets the public URL for a file from S3
func (p *S3Provider) GetURL(key string) string {
	return fmt.Sprintf("%s/%s", p.baseURL, key)
}

// GetProviderName returns the provider name
func (p *S3Provider) GetProviderName() string {
	return "AWS S3"
}
