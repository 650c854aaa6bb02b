package utils

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"kalvi/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// UploadTimeout bounds a single object-storage upload. Past it the attempt
// is reported as failed; the provider-side transfer is not cancellable and
// may still complete, which is why saves re-verify before persisting.
const UploadTimeout = 5 * time.Minute

// StorageResult describes a stored object.
type StorageResult struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Size     int64  `json:"size"`
	Mime     string `json:"mime"`
}

// ObjectStore is the seam between the upload/download pipeline and the
// storage provider.
type ObjectStore interface {
	Upload(ctx context.Context, folder, name string, r io.Reader, size int64, contentType string) (*StorageResult, error)
	Delete(publicID string) error
	SignedGetURL(publicID string, expires time.Duration) (string, error)
	SignedPutURL(folder, name string, expires time.Duration) (string, string, error)
}

// OSSService implements ObjectStore on Aliyun OSS.
type OSSService struct {
	Client     *oss.Client
	Bucket     *oss.Bucket
	BucketName string
	BaseURL    string
}

// NewOSSService builds the storage client from AppConfig.
func NewOSSService() (*OSSService, error) {
	cfg := config.AppConfig
	if cfg.OSSEndpoint == "" || cfg.OSSAccessKey == "" || cfg.OSSAccessSecret == "" || cfg.OSSBucket == "" {
		return nil, fmt.Errorf("missing env: OSS_ENDPOINT/OSS_ACCESS_KEY_ID/OSS_ACCESS_KEY_SECRET/OSS_BUCKET")
	}

	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSAccessSecret)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}

	bucket, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	baseURL := cfg.OSSBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.%s", cfg.OSSBucket, strings.TrimPrefix(cfg.OSSEndpoint, "https://"))
	}

	return &OSSService{
		Client:     client,
		Bucket:     bucket,
		BucketName: cfg.OSSBucket,
		BaseURL:    strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload streams the payload to (folder, name). The object key is the
// public id callers use for later deletes.
func (s *OSSService) Upload(ctx context.Context, folder, name string, r io.Reader, size int64, contentType string) (*StorageResult, error) {
	key := strings.Trim(folder, "/") + "/" + strings.Trim(name, "/")
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
	}

	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
	}
	if err := s.Bucket.PutObject(key, r, opts...); err != nil {
		return nil, err
	}

	return &StorageResult{
		URL:      s.BaseURL + "/" + key,
		PublicID: key,
		Size:     size,
		Mime:     contentType,
	}, nil
}

// Delete removes an object by its public id (object key).
func (s *OSSService) Delete(publicID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.Bucket.DeleteObject(publicID, oss.WithContext(ctx))
}

// SignedGetURL returns a time-limited direct download locator.
func (s *OSSService) SignedGetURL(publicID string, expires time.Duration) (string, error) {
	return s.Bucket.SignURL(publicID, oss.HTTPGet, int64(expires.Seconds()))
}

// SignedPutURL issues a presigned PUT target for the two-step client
// upload flow. Returns (uploadURL, publicID).
func (s *OSSService) SignedPutURL(folder, name string, expires time.Duration) (string, string, error) {
	key := strings.Trim(folder, "/") + "/" + strings.Trim(name, "/")
	url, err := s.Bucket.SignURL(key, oss.HTTPPut, int64(expires.Seconds()))
	if err != nil {
		return "", "", err
	}
	return url, key, nil
}

// IsSizeLimitError detects the provider's entity-too-large rejection so the
// pipeline can surface a distinguishable message.
func IsSizeLimitError(err error) bool {
	if err == nil {
		return false
	}
	if se, ok := err.(oss.ServiceError); ok {
		return se.Code == "EntityTooLarge" || se.StatusCode == 413
	}
	msg := err.Error()
	return strings.Contains(msg, "EntityTooLarge") || strings.Contains(msg, "too large")
}
