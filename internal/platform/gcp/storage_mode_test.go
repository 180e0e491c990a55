package gcp

import (
	"errors"
	"testing"
)

func TestValidateObjectStorageConfig(t *testing.T) {
	cases := []struct {
		name     string
		cfg      ObjectStorageConfig
		wantCode ObjectStorageConfigErrorCode
	}{
		{"gcs ok", ObjectStorageConfig{Mode: ObjectStorageModeGCS, Bucket: "b"}, ""},
		{"emulator ok", ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator, Bucket: "b", EmulatorHost: "http://fake-gcs:4443"}, ""},
		{"invalid mode", ObjectStorageConfig{Mode: "s3", Bucket: "b"}, ObjectStorageConfigErrorInvalidMode},
		{"missing bucket", ObjectStorageConfig{Mode: ObjectStorageModeGCS}, ObjectStorageConfigErrorMissingBucket},
		{"missing emulator host", ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator, Bucket: "b"}, ObjectStorageConfigErrorMissingEmulatorHost},
		{"invalid emulator host", ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator, Bucket: "b", EmulatorHost: "fake-gcs:4443"}, ObjectStorageConfigErrorInvalidEmulatorHost},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateObjectStorageConfig(tc.cfg)
			if tc.wantCode == "" {
				if err != nil {
					t.Fatalf("ValidateObjectStorageConfig: %v", err)
				}
				return
			}
			var cfgErr *ObjectStorageConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ObjectStorageConfigError, got %v", err)
			}
			if cfgErr.Code != tc.wantCode {
				t.Fatalf("code: want=%q got=%q", tc.wantCode, cfgErr.Code)
			}
		})
	}
}

func TestObjectStorageModeHelpers(t *testing.T) {
	if !IsSupportedObjectStorageMode(ObjectStorageModeGCSEmulator) || IsSupportedObjectStorageMode("db") {
		t.Fatalf("IsSupportedObjectStorageMode: unexpected result")
	}
	if (ObjectStorageConfig{Mode: ObjectStorageModeGCS}).IsEmulatorMode() {
		t.Fatalf("gcs config should not be emulator mode")
	}
}
