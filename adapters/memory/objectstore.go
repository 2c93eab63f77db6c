package memory

import (
	"context"
	"errors"
	"sync"

	"mediavault/ports"
)

// errFailObject is returned when a test arms FailOn.
var errFailObject = errors.New("object store failure injected")

// ObjectStore is an in-memory implementation of ports.ObjectStore.
// It tracks object keys only; tests assert on moves and deletes.
type ObjectStore struct {
	mu      sync.Mutex
	objects map[string]bool // bucket + "/" + key
	FailOn  string          // key whose operations return an error (for tests)
}

// NewObjectStore creates a new in-memory object store.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{objects: make(map[string]bool)}
}

// Put registers an object (test setup helper).
func (s *ObjectStore) Put(bucket, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[bucket+"/"+key] = true
}

// Exists reports whether an object is present (test assertion helper).
func (s *ObjectStore) Exists(bucket, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[bucket+"/"+key]
}

// Delete removes an object. Missing objects are not an error.
func (s *ObjectStore) Delete(ctx context.Context, bucket, key string) error {
	if s.FailOn != "" && key == s.FailOn {
		return errFailObject
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, bucket+"/"+key)
	return nil
}

// Move renames an object within a bucket.
func (s *ObjectStore) Move(ctx context.Context, bucket, oldKey, newKey string) error {
	if s.FailOn != "" && (oldKey == s.FailOn || newKey == s.FailOn) {
		return errFailObject
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, bucket+"/"+oldKey)
	s.objects[bucket+"/"+newKey] = true
	return nil
}

// Ensure interface compliance.
var _ ports.ObjectStore = (*ObjectStore)(nil)

// CDNInvalidator records invalidation requests for assertions.
type CDNInvalidator struct {
	mu    sync.Mutex
	Paths [][]string
}

// NewCDNInvalidator creates a recording invalidator.
func NewCDNInvalidator() *CDNInvalidator {
	return &CDNInvalidator{}
}

// Invalidate records the requested paths.
func (c *CDNInvalidator) Invalidate(ctx context.Context, paths []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Paths = append(c.Paths, paths)
	return nil
}

// Ensure interface compliance.
var _ ports.CDNInvalidator = (*CDNInvalidator)(nil)
