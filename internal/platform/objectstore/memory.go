package objectstore

import (
	"context"
	"fmt"
	"sync"
)

// Memory keeps objects in process. Used by tests and single-node dev setups.
type Memory struct {
	mu      sync.RWMutex
	bucket  string
	prefix  string
	objects map[string][]byte
}

func NewMemory(bucket, prefix string) *Memory {
	return &Memory{bucket: bucket, prefix: prefix, objects: map[string][]byte{}}
}

func (m *Memory) Provider() string { return "memory" }

func (m *Memory) PutJSON(ctx context.Context, keyParts []string, body []byte) (Ref, error) {
	if err := ctx.Err(); err != nil {
		return Ref{}, err
	}
	key := JoinKey(m.prefix, keyParts...)
	if key == "" {
		return Ref{}, fmt.Errorf("empty object key")
	}
	cp := append([]byte(nil), body...)
	m.mu.Lock()
	m.objects[key] = cp
	m.mu.Unlock()
	return Ref{Provider: m.Provider(), Bucket: m.bucket, Key: key}, nil
}

func (m *Memory) GetJSON(ctx context.Context, ref Ref) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	body, ok := m.objects[ref.Key]
	if !ok || ref.Bucket != m.bucket {
		return nil, fmt.Errorf("%w: %s/%s", ErrObjectNotFound, ref.Bucket, ref.Key)
	}
	return append([]byte(nil), body...), nil
}

// Len reports how many objects are stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
