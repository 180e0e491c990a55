package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/objectstore"
)

const providerName = "gcs"

// ArtifactBucket stores pipeline artifacts as JSON objects in one GCS bucket.
type ArtifactBucket struct {
	log           *logger.Logger
	storageClient *storage.Client
	bucket        string
	prefix        string
}

var _ objectstore.Store = (*ArtifactBucket)(nil)

func NewArtifactBucketWithConfig(log *logger.Logger, storageCfg ObjectStorageConfig) (*ArtifactBucket, error) {
	if err := ValidateObjectStorageConfig(storageCfg); err != nil {
		return nil, fmt.Errorf("validate artifact bucket config: %w", err)
	}
	client, err := newStorageClient(context.Background(), storageCfg)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	serviceLog := log.With("service", "GCSArtifactBucket")
	serviceLog.Info("Artifact bucket ready",
		"mode", storageCfg.Mode,
		"emulator_host", storageCfg.EmulatorHost,
		"bucket", storageCfg.Bucket,
		"prefix", storageCfg.Prefix,
	)
	return &ArtifactBucket{
		log:           serviceLog,
		storageClient: client,
		bucket:        storageCfg.Bucket,
		prefix:        storageCfg.Prefix,
	}, nil
}

// Emulator mode talks to fake-gcs without credentials. Real GCS takes either
// inline JSON credentials or a key file path, else application defaults.
func newStorageClient(ctx context.Context, storageCfg ObjectStorageConfig) (*storage.Client, error) {
	if storageCfg.IsEmulatorMode() {
		endpoint := strings.TrimRight(strings.TrimSpace(storageCfg.EmulatorHost), "/")
		_ = os.Setenv("STORAGE_EMULATOR_HOST", endpoint)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if raw := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON")); raw != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(raw)))
	} else if path := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); path != "" {
		opts = append(opts, option.WithCredentialsFile(path))
	}
	return storage.NewClient(ctx, opts...)
}

func (b *ArtifactBucket) Provider() string { return providerName }

func (b *ArtifactBucket) PutJSON(ctx context.Context, keyParts []string, body []byte) (objectstore.Ref, error) {
	key := objectstore.JoinKey(b.prefix, keyParts...)
	if key == "" {
		return objectstore.Ref{}, fmt.Errorf("empty object key")
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := b.storageClient.Bucket(b.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := io.Copy(w, bytes.NewReader(body)); err != nil {
		_ = w.Close()
		return objectstore.Ref{}, fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return objectstore.Ref{}, fmt.Errorf("failed to close GCS writer: %w", err)
	}
	b.log.Debug("Artifact object written", "bucket", b.bucket, "key", key, "bytes", len(body))
	return objectstore.Ref{Provider: providerName, Bucket: b.bucket, Key: key}, nil
}

func (b *ArtifactBucket) GetJSON(ctx context.Context, ref objectstore.Ref) ([]byte, error) {
	bucket := ref.Bucket
	if bucket == "" {
		bucket = b.bucket
	}
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	r, err := b.storageClient.Bucket(bucket).Object(ref.Key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: gs://%s/%s", objectstore.ErrObjectNotFound, bucket, ref.Key)
		}
		return nil, fmt.Errorf("open GCS object %q in bucket %q: %w", ref.Key, bucket, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (b *ArtifactBucket) Close() error {
	if b == nil || b.storageClient == nil {
		return nil
	}
	return b.storageClient.Close()
}
