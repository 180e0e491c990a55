package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/objectstore"
)

const providerName = "s3"

type S3Config struct {
	Region string
	Bucket string
	Prefix string
	// Endpoint overrides the S3 endpoint, e.g. a MinIO or localstack URL.
	Endpoint string
}

// objectAPI is the subset of *s3.Client the store needs.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type S3Store struct {
	log    *logger.Logger
	client objectAPI
	bucket string
	prefix string
}

var _ objectstore.Store = (*S3Store)(nil)

func NewS3Store(ctx context.Context, log *logger.Logger, cfg S3Config) (*S3Store, error) {
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = awssdk.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	log.Info("S3 artifact store initialized", "bucket", cfg.Bucket, "prefix", cfg.Prefix, "region", awsCfg.Region)
	return newS3Store(log, client, cfg), nil
}

func newS3Store(log *logger.Logger, client objectAPI, cfg S3Config) *S3Store {
	return &S3Store{
		log:    log.With("service", "S3ArtifactStore"),
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}
}

func (s *S3Store) Provider() string { return providerName }

func (s *S3Store) PutJSON(ctx context.Context, keyParts []string, body []byte) (objectstore.Ref, error) {
	key := objectstore.JoinKey(s.prefix, keyParts...)
	if key == "" {
		return objectstore.Ref{}, fmt.Errorf("empty object key")
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        awssdk.String(s.bucket),
		Key:           awssdk.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   awssdk.String("application/json"),
		ContentLength: awssdk.Int64(int64(len(body))),
	})
	if err != nil {
		return objectstore.Ref{}, fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	s.log.Debug("Artifact object written", "bucket", s.bucket, "key", key, "bytes", len(body))
	return objectstore.Ref{Provider: providerName, Bucket: s.bucket, Key: key}, nil
}

func (s *S3Store) GetJSON(ctx context.Context, ref objectstore.Ref) ([]byte, error) {
	bucket := ref.Bucket
	if bucket == "" {
		bucket = s.bucket
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: awssdk.String(bucket),
		Key:    awssdk.String(ref.Key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: s3://%s/%s", objectstore.ErrObjectNotFound, bucket, ref.Key)
		}
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, ref.Key, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}
