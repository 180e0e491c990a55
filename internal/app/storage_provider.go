package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/aws"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/gcp"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/objectstore"
)

var (
	newGCSBucket = func(log *logger.Logger, cfg gcp.ObjectStorageConfig) (objectstore.Store, error) {
		return gcp.NewArtifactBucketWithConfig(log, cfg)
	}
	newS3Store = func(ctx context.Context, log *logger.Logger, cfg aws.S3Config) (objectstore.Store, error) {
		return aws.NewS3Store(ctx, log, cfg)
	}
)

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingBucket       StorageProviderBootstrapErrorCode = "missing_bucket"
	StorageProviderBootstrapErrorMissingEmulatorHost StorageProviderBootstrapErrorCode = "missing_emulator_host"
	StorageProviderBootstrapErrorInvalidEmulatorHost StorageProviderBootstrapErrorCode = "invalid_emulator_host"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "artifact storage bootstrap failed"
	}
	return fmt.Sprintf(
		"artifact storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveArtifactBlobs picks where artifact bodies live. Mode "db" returns a
// nil store: bodies stay inline in schedule_artifacts.
func resolveArtifactBlobs(ctx context.Context, log *logger.Logger, cfg Config) (objectstore.Store, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.ArtifactStorageMode))
	if mode == "" {
		mode = ArtifactStorageDB
	}

	switch mode {
	case ArtifactStorageDB:
		log.Info("Artifact bodies stored inline", "mode", mode)
		return nil, nil

	case ArtifactStorageS3:
		if strings.TrimSpace(cfg.ArtifactBucket) == "" {
			err := &StorageProviderBootstrapError{
				Code:  StorageProviderBootstrapErrorMissingBucket,
				Mode:  mode,
				Cause: fmt.Errorf("ARTIFACT_STORAGE_MODE=s3 requires MAYWIN_ARTIFACTS_BUCKET"),
			}
			log.Error("Artifact storage selection failed", "mode", mode, "error_code", err.Code, "error", err)
			return nil, err
		}
		log.Info("Selecting artifact storage provider", "mode", mode, "bucket", cfg.ArtifactBucket, "endpoint", cfg.AWSS3Endpoint)
		store, err := newS3Store(ctx, log, aws.S3Config{
			Region:   cfg.AWSRegion,
			Bucket:   cfg.ArtifactBucket,
			Prefix:   cfg.ArtifactPrefix,
			Endpoint: cfg.AWSS3Endpoint,
		})
		if err != nil {
			classified := &StorageProviderBootstrapError{
				Code:  StorageProviderBootstrapErrorConnectFailed,
				Mode:  mode,
				Cause: err,
			}
			log.Error("Artifact storage bootstrap failed", "mode", mode, "error_code", classified.Code, "error", err)
			return nil, classified
		}
		return store, nil
	}

	storageCfg := gcp.ObjectStorageConfig{
		Mode:         gcp.ObjectStorageMode(mode),
		EmulatorHost: strings.TrimSpace(cfg.StorageEmulatorHost),
		Bucket:       strings.TrimSpace(cfg.ArtifactBucket),
		Prefix:       cfg.ArtifactPrefix,
	}
	if !gcp.IsSupportedObjectStorageMode(storageCfg.Mode) {
		err := &StorageProviderBootstrapError{
			Code:         StorageProviderBootstrapErrorInvalidMode,
			Mode:         mode,
			EmulatorHost: storageCfg.EmulatorHost,
			Cause:        fmt.Errorf("unsupported artifact storage mode %q", mode),
		}
		log.Error("Artifact storage selection failed", "mode", mode, "error_code", err.Code, "error", err)
		return nil, err
	}

	log.Info(
		"Selecting artifact storage provider",
		"mode", storageCfg.Mode,
		"emulator_host", storageCfg.EmulatorHost,
		"bucket", storageCfg.Bucket,
	)
	store, err := newGCSBucket(log, storageCfg)
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, err)
		log.Error(
			"Artifact storage bootstrap failed",
			"mode", storageCfg.Mode,
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	return store, nil
}

func classifyStorageProviderBootstrapError(storageCfg gcp.ObjectStorageConfig, err error) error {
	out := &StorageProviderBootstrapError{
		Code:         StorageProviderBootstrapErrorConnectFailed,
		Mode:         string(storageCfg.Mode),
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
	var cfgErr *gcp.ObjectStorageConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case gcp.ObjectStorageConfigErrorInvalidMode:
			out.Code = StorageProviderBootstrapErrorInvalidMode
		case gcp.ObjectStorageConfigErrorMissingBucket:
			out.Code = StorageProviderBootstrapErrorMissingBucket
		case gcp.ObjectStorageConfigErrorMissingEmulatorHost:
			out.Code = StorageProviderBootstrapErrorMissingEmulatorHost
		case gcp.ObjectStorageConfigErrorInvalidEmulatorHost:
			out.Code = StorageProviderBootstrapErrorInvalidEmulatorHost
		}
	}
	return out
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return StorageProviderBootstrapErrorConnectFailed
}
