// Package objectstore is the blob side of artifact persistence: JSON documents
// addressed by bucket + key.
package objectstore

import (
	"context"
	"errors"
	"strings"
)

var ErrObjectNotFound = errors.New("object not found")

type Ref struct {
	Provider string `json:"provider"`
	Bucket   string `json:"bucket"`
	Key      string `json:"key"`
}

type Store interface {
	Provider() string
	PutJSON(ctx context.Context, keyParts []string, body []byte) (Ref, error)
	GetJSON(ctx context.Context, ref Ref) ([]byte, error)
}

// JoinKey builds "<prefix>/<part>/<part>" with surrounding slashes stripped
// from every segment and empty segments dropped.
func JoinKey(prefix string, parts ...string) string {
	segs := make([]string, 0, len(parts)+1)
	if p := strings.Trim(strings.TrimSpace(prefix), "/"); p != "" {
		segs = append(segs, p)
	}
	for _, part := range parts {
		if p := strings.Trim(strings.TrimSpace(part), "/"); p != "" {
			segs = append(segs, p)
		}
	}
	return strings.Join(segs, "/")
}
