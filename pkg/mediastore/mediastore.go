package mediastore

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/streamhub/accounts/config"
	"github.com/streamhub/accounts/pkg/logger"
)

// UploadedAsset is the result of a successful upload: the public URL placed
// on the user record and the object key used to delete the asset later.
type UploadedAsset struct {
	URL string
	Key string
}

// Store abstracts the media host. Workflows depend on this interface so tests
// can substitute a fake.
type Store interface {
	Upload(ctx context.Context, localPath string) (*UploadedAsset, error)
	Delete(ctx context.Context, key string) error
}

// Client talks to an S3-compatible object store (MinIO, S3).
type Client struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// New creates a media store client from configuration. Credentials come from
// the config struct built at startup, never from ambient lookups.
func New(cfg *config.MediaConfig) (*Client, error) {
	// minio-go expects host:port without a scheme
	endpoint := cfg.Endpoint
	endpoint = strings.TrimPrefix(endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create media store client: %w", err)
	}

	return &Client{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", c.bucket, err)
		}
	}

	return nil
}

// Upload stores the file at localPath under a fresh object key and returns
// the public URL plus the key. The local temp file is removed whether or not
// the upload succeeds, mirroring the one-shot handoff from the HTTP layer.
func (c *Client) Upload(ctx context.Context, localPath string) (*UploadedAsset, error) {
	defer func() {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			logger.WarnWithContext(ctx, "Failed to remove local upload file").
				String("path", localPath).
				Err(err).
				Log()
		}
	}()

	key := ObjectKey(localPath)
	contentType := mime.TypeByExtension(filepath.Ext(localPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := c.client.FPutObject(ctx, c.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", localPath, err)
	}

	return &UploadedAsset{
		URL: c.AssetURL(key),
		Key: key,
	}, nil
}

// Delete removes a previously uploaded asset by its object key.
func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.client.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// Ping checks that the store is reachable and the bucket is visible.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.client.BucketExists(ctx, c.bucket)
	return err
}

// ObjectKey builds a collision-free key for an uploaded file, keeping the
// original extension so content type stays derivable.
func ObjectKey(localPath string) string {
	return fmt.Sprintf("images/%s%s", uuid.NewString(), filepath.Ext(localPath))
}

// AssetURL is the public URL for an object key.
func (c *Client) AssetURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", c.publicURL, c.bucket, key)
}
