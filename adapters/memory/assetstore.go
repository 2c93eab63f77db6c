package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"mediavault/domain/asset"
	"mediavault/ports"
)

// AssetStore is an in-memory implementation of ports.AssetStore.
type AssetStore struct {
	mu     sync.RWMutex
	assets map[string]asset.Asset // by ID
}

// NewAssetStore creates a new in-memory asset store.
func NewAssetStore() *AssetStore {
	return &AssetStore{assets: make(map[string]asset.Asset)}
}

// Get retrieves an asset by ID, soft-deleted included.
func (s *AssetStore) Get(ctx context.Context, id string) (asset.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assets[id]
	if !ok {
		return asset.Asset{}, ports.ErrNotFound
	}
	return a, nil
}

// GetByKey retrieves a non-deleted asset by storage key.
func (s *AssetStore) GetByKey(ctx context.Context, s3Key string) (asset.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.assets {
		if a.S3Key == s3Key && !a.IsDeleted {
			return a, nil
		}
	}
	return asset.Asset{}, ports.ErrNotFound
}

// Create stores a new asset.
func (s *AssetStore) Create(ctx context.Context, a asset.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assets[a.ID] = a
	return nil
}

// Update modifies an existing asset.
func (s *AssetStore) Update(ctx context.Context, a asset.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assets[a.ID]; !ok {
		return ports.ErrNotFound
	}
	s.assets[a.ID] = a
	return nil
}

// ListByOwner returns the owner's assets, newest first.
func (s *AssetStore) ListByOwner(ctx context.Context, ownerID string, includeDeleted bool) ([]asset.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []asset.Asset
	for _, a := range s.assets {
		if a.OwnerID != ownerID {
			continue
		}
		if a.IsDeleted && !includeDeleted {
			continue
		}
		result = append(result, a)
	}
	sortNewestFirst(result)
	return result, nil
}

// ListPage returns one page of the owner's non-deleted assets.
func (s *AssetStore) ListPage(ctx context.Context, ownerID string, page ports.AssetPage) ([]asset.Asset, error) {
	all, err := s.ListByOwner(ctx, ownerID, false)
	if err != nil {
		return nil, err
	}

	start := (page.Page - 1) * page.Limit
	if start >= len(all) {
		return nil, nil
	}
	end := start + page.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

// CountByOwner returns the owner's non-deleted asset count.
func (s *AssetStore) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, a := range s.assets {
		if a.OwnerID == ownerID && !a.IsDeleted {
			n++
		}
	}
	return n, nil
}

// SetDeleted flips the soft-delete flag.
func (s *AssetStore) SetDeleted(ctx context.Context, id, ownerID string, deleted bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.assets[id]
	if !ok || a.OwnerID != ownerID {
		return ports.ErrNotFound
	}
	a.IsDeleted = deleted
	a.UpdatedAt = at
	s.assets[id] = a
	return nil
}

// ListDeletedBefore returns soft-deleted assets last updated before cutoff.
func (s *AssetStore) ListDeletedBefore(ctx context.Context, cutoff time.Time) ([]asset.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []asset.Asset
	for _, a := range s.assets {
		if a.IsDeleted && a.UpdatedAt.Before(cutoff) {
			result = append(result, a)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

// Delete permanently removes an asset.
func (s *AssetStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assets[id]; !ok {
		return ports.ErrNotFound
	}
	delete(s.assets, id)
	return nil
}

func sortNewestFirst(assets []asset.Asset) {
	sort.SliceStable(assets, func(i, j int) bool {
		if assets[i].CreatedAt.Equal(assets[j].CreatedAt) {
			return assets[i].ID > assets[j].ID
		}
		return assets[i].CreatedAt.After(assets[j].CreatedAt)
	})
}

// Ensure interface compliance.
var _ ports.AssetStore = (*AssetStore)(nil)
