package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mediavault/domain/asset"
	"mediavault/domain/bandwidth"
	"mediavault/ports"
)

// Asset service errors surfaced to the HTTP boundary.
var (
	ErrAssetNotFound  = errors.New("asset not found")
	ErrAlreadyPrivate = errors.New("asset is already private")
	ErrAlreadyPublic  = errors.New("asset is already public")
	ErrDuplicateKey   = errors.New("storage key already in use")
	ErrInvalidAsset   = errors.New("invalid asset")
	ErrReservedFolder = errors.New("folder name is reserved")

	ErrSigningUnavailable = errors.New("signed urls not configured")
	ErrAssetPublic        = errors.New("asset is public")
)

// Signed URL expiry bounds. The default matches a one hour edge TTL; the
// cap matches the longest expiry the edge accepts.
const (
	signedURLDefaultTTL = time.Hour
	signedURLMaxTTL     = 7 * 24 * time.Hour
)

// CreateAssetInput carries the fields for registering an uploaded object.
type CreateAssetInput struct {
	Name      string
	Type      asset.Type
	S3Bucket  string
	S3Key     string
	CDNURL    string
	SizeBytes int64
	Width     int
	Height    int
	Format    string
}

// FolderSummary is a folder name with its asset count.
type FolderSummary struct {
	Folder string `json:"folder"`
	Count  int    `json:"count"`
}

// AssetService manages asset metadata and the single-asset stats path.
type AssetService struct {
	assets  ports.AssetStore
	logs    ports.AccessLogStore
	objects ports.ObjectStore
	cdn     ports.CDNInvalidator
	signer  ports.URLSigner
	clock   ports.Clock
	idgen   ports.IDGenerator
	logger  zerolog.Logger
}

// NewAssetService creates the asset service.
func NewAssetService(assets ports.AssetStore, logs ports.AccessLogStore, objects ports.ObjectStore, cdn ports.CDNInvalidator, signer ports.URLSigner, clock ports.Clock, idgen ports.IDGenerator, logger zerolog.Logger) *AssetService {
	return &AssetService{
		assets:  assets,
		logs:    logs,
		objects: objects,
		cdn:     cdn,
		signer:  signer,
		clock:   clock,
		idgen:   idgen,
		logger:  logger.With().Str("service", "assets").Logger(),
	}
}

// Create registers metadata for an object that already exists in storage.
func (s *AssetService) Create(ctx context.Context, ownerID string, in CreateAssetInput) (asset.Asset, error) {
	if in.Name == "" || in.S3Key == "" || in.S3Bucket == "" {
		return asset.Asset{}, ErrInvalidAsset
	}
	if !asset.ValidType(in.Type) {
		return asset.Asset{}, fmt.Errorf("%w: unknown type %q", ErrInvalidAsset, in.Type)
	}
	if _, err := s.assets.GetByKey(ctx, in.S3Key); err == nil {
		return asset.Asset{}, ErrDuplicateKey
	} else if !errors.Is(err, ports.ErrNotFound) {
		return asset.Asset{}, fmt.Errorf("check key: %w", err)
	}

	now := s.clock.Now().UTC()
	a := asset.Asset{
		ID:        s.idgen.New(),
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(in.Name),
		Type:      in.Type,
		S3Bucket:  in.S3Bucket,
		S3Key:     in.S3Key,
		CDNURL:    in.CDNURL,
		SizeBytes: in.SizeBytes,
		Width:     in.Width,
		Height:    in.Height,
		Format:    in.Format,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.assets.Create(ctx, a); err != nil {
		return asset.Asset{}, fmt.Errorf("create asset: %w", err)
	}

	s.logger.Info().Str("asset_id", a.ID).Str("s3_key", a.S3Key).Msg("asset created")
	return a, nil
}

// Get returns an owner's non-deleted asset by ID.
func (s *AssetService) Get(ctx context.Context, id, ownerID string) (asset.Asset, error) {
	a, err := s.assets.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return asset.Asset{}, ErrAssetNotFound
		}
		return asset.Asset{}, fmt.Errorf("get asset: %w", err)
	}
	if a.IsDeleted || a.OwnerID != ownerID {
		return asset.Asset{}, ErrAssetNotFound
	}
	return a, nil
}

// List returns one page of the owner's non-deleted assets, newest first,
// plus the unfiltered count.
func (s *AssetService) List(ctx context.Context, ownerID string, page, limit int) ([]asset.Asset, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	assets, err := s.assets.ListPage(ctx, ownerID, ports.AssetPage{Page: page, Limit: limit})
	if err != nil {
		return nil, 0, fmt.Errorf("list assets: %w", err)
	}
	total, err := s.assets.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("count assets: %w", err)
	}
	return assets, total, nil
}

// SoftDelete hides an asset. The blob and its bandwidth history remain
// until the retention cleanup hard-deletes it.
func (s *AssetService) SoftDelete(ctx context.Context, id, ownerID string) error {
	if _, err := s.Get(ctx, id, ownerID); err != nil {
		return err
	}
	if err := s.assets.SetDeleted(ctx, id, ownerID, true, s.clock.Now().UTC()); err != nil {
		return fmt.Errorf("soft delete: %w", err)
	}
	s.logger.Info().Str("asset_id", id).Msg("asset soft-deleted")
	return nil
}

// Restore reverses a soft delete.
func (s *AssetService) Restore(ctx context.Context, id, ownerID string) error {
	a, err := s.assets.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ErrAssetNotFound
		}
		return fmt.Errorf("get asset: %w", err)
	}
	if a.OwnerID != ownerID || !a.IsDeleted {
		return ErrAssetNotFound
	}
	if err := s.assets.SetDeleted(ctx, id, ownerID, false, s.clock.Now().UTC()); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	s.logger.Info().Str("asset_id", id).Msg("asset restored")
	return nil
}

// MakePrivate moves the object into the owner's private folder and
// invalidates the old CDN path. The previous folder is remembered so
// MakePublic can move it back.
func (s *AssetService) MakePrivate(ctx context.Context, id, ownerID string) (asset.Asset, error) {
	a, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return asset.Asset{}, err
	}
	if a.IsPrivate {
		return asset.Asset{}, ErrAlreadyPrivate
	}

	oldKey := a.S3Key
	newKey := a.PrivateKey()
	if err := s.objects.Move(ctx, a.S3Bucket, oldKey, newKey); err != nil {
		return asset.Asset{}, fmt.Errorf("move object: %w", err)
	}

	a.OriginalFolder = a.Folder()
	a.S3Key = newKey
	a.CDNURL = rewriteCDNURL(a.CDNURL, oldKey, newKey)
	a.IsPrivate = true
	a.UpdatedAt = s.clock.Now().UTC()
	if err := s.assets.Update(ctx, a); err != nil {
		return asset.Asset{}, fmt.Errorf("update asset: %w", err)
	}

	s.invalidate(ctx, oldKey)
	s.logger.Info().Str("asset_id", a.ID).Str("s3_key", newKey).Msg("asset made private")
	return a, nil
}

// MakePublic moves a private object back into a public folder (the
// remembered one unless a target folder is given).
func (s *AssetService) MakePublic(ctx context.Context, id, ownerID, targetFolder string) (asset.Asset, error) {
	a, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return asset.Asset{}, err
	}
	if !a.IsPrivate {
		return asset.Asset{}, ErrAlreadyPublic
	}

	folder := targetFolder
	if folder == "" {
		folder = a.OriginalFolder
	}
	if folder == "" {
		folder = "public"
	}
	if folder == asset.PrivateFolder {
		return asset.Asset{}, ErrReservedFolder
	}

	oldKey := a.S3Key
	newKey := a.PublicKey(folder)
	if err := s.objects.Move(ctx, a.S3Bucket, oldKey, newKey); err != nil {
		return asset.Asset{}, fmt.Errorf("move object: %w", err)
	}

	a.OriginalFolder = ""
	a.S3Key = newKey
	a.CDNURL = rewriteCDNURL(a.CDNURL, oldKey, newKey)
	a.IsPrivate = false
	a.UpdatedAt = s.clock.Now().UTC()
	if err := s.assets.Update(ctx, a); err != nil {
		return asset.Asset{}, fmt.Errorf("update asset: %w", err)
	}

	s.invalidate(ctx, oldKey)
	s.logger.Info().Str("asset_id", a.ID).Str("s3_key", newKey).Msg("asset made public")
	return a, nil
}

// InvalidateCache purges the asset's CDN paths, transformation variants
// included.
func (s *AssetService) InvalidateCache(ctx context.Context, id, ownerID string) error {
	a, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return err
	}
	paths := []string{"/" + a.S3Key, "/" + a.S3Key + "/*"}
	if err := s.cdn.Invalidate(ctx, paths); err != nil {
		return fmt.Errorf("invalidate cache: %w", err)
	}
	return nil
}

// SignedURL is a time-limited delivery URL for a private asset.
type SignedURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
	ExpiresIn int       `json:"expiresInSeconds"`
}

// SignedAssetURL issues a time-limited URL for a private asset. Public
// assets are served by their plain CDN URL and are rejected here. A ttl
// of zero uses the one hour default; ttls beyond seven days are clamped.
func (s *AssetService) SignedAssetURL(ctx context.Context, id, ownerID string, ttl time.Duration) (SignedURL, error) {
	a, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return SignedURL{}, err
	}
	if s.signer == nil || !s.signer.Configured() {
		return SignedURL{}, ErrSigningUnavailable
	}
	if !a.IsPrivate {
		return SignedURL{}, ErrAssetPublic
	}

	if ttl <= 0 {
		ttl = signedURLDefaultTTL
	}
	if ttl > signedURLMaxTTL {
		ttl = signedURLMaxTTL
	}

	expiresAt := s.clock.Now().UTC().Add(ttl)
	signed, err := s.signer.Sign(a.CDNURL, expiresAt)
	if err != nil {
		return SignedURL{}, fmt.Errorf("sign url: %w", err)
	}

	s.logger.Info().Str("asset_id", a.ID).Time("expires_at", expiresAt).Msg("signed url issued")
	return SignedURL{
		URL:       signed,
		ExpiresAt: expiresAt,
		ExpiresIn: int(ttl / time.Second),
	}, nil
}

// BandwidthStats aggregates log records matched by explicit asset
// reference. Records that predate asset linking carry no reference and
// are invisible here; the user-level rollups match by path instead and
// will report different numbers for old assets. Hits here count only a
// plain "Hit".
func (s *AssetService) BandwidthStats(ctx context.Context, id, ownerID string) (bandwidth.AssetTotals, error) {
	if _, err := s.Get(ctx, id, ownerID); err != nil {
		return bandwidth.AssetTotals{}, err
	}
	totals, err := s.logs.TotalsByAssetID(ctx, id)
	if err != nil {
		return bandwidth.AssetTotals{}, fmt.Errorf("aggregate logs: %w", err)
	}
	return totals, nil
}

// Folders lists the owner's distinct folders with asset counts,
// ascending by name.
func (s *AssetService) Folders(ctx context.Context, ownerID string) ([]FolderSummary, error) {
	assets, err := s.assets.ListByOwner(ctx, ownerID, false)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}

	counts := make(map[string]int)
	for _, a := range assets {
		counts[a.Folder()]++
	}

	summaries := make([]FolderSummary, 0, len(counts))
	for folder, n := range counts {
		summaries = append(summaries, FolderSummary{Folder: folder, Count: n})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Folder < summaries[j].Folder })
	return summaries, nil
}

// AssetsByFolder returns one page of the owner's assets within a folder.
func (s *AssetService) AssetsByFolder(ctx context.Context, ownerID, folder string, page, limit int) ([]asset.Asset, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	all, err := s.assets.ListByOwner(ctx, ownerID, false)
	if err != nil {
		return nil, 0, fmt.Errorf("list assets: %w", err)
	}

	var matched []asset.Asset
	for _, a := range all {
		if a.Folder() == folder {
			matched = append(matched, a)
		}
	}
	total := int64(len(matched))

	start := (page - 1) * limit
	if start >= len(matched) {
		return []asset.Asset{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// RecordLogs appends access-log records (ingest endpoint and tools).
func (s *AssetService) RecordLogs(ctx context.Context, records []bandwidth.Record) error {
	if len(records) == 0 {
		return nil
	}
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = s.idgen.New()
		}
		if records[i].Timestamp.IsZero() {
			records[i].Timestamp = s.clock.Now().UTC()
		}
	}
	if err := s.logs.RecordBatch(ctx, records); err != nil {
		return fmt.Errorf("record logs: %w", err)
	}
	return nil
}

func (s *AssetService) invalidate(ctx context.Context, key string) {
	if err := s.cdn.Invalidate(ctx, []string{"/" + key, "/" + key + "/*"}); err != nil {
		s.logger.Warn().Err(err).Str("s3_key", key).Msg("cdn invalidation failed")
	}
}

// rewriteCDNURL swaps the storage key inside a CDN URL.
func rewriteCDNURL(url, oldKey, newKey string) string {
	if idx := strings.LastIndex(url, oldKey); idx >= 0 {
		return url[:idx] + newKey
	}
	return url
}
