// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"

	"mediavault/domain/asset"
	"mediavault/domain/bandwidth"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("not found")

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(password string) ([]byte, error)
	Verify(hash []byte, password string) bool
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// User represents a user account.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserStore persists user accounts.
type UserStore interface {
	// Get retrieves a user by ID.
	Get(ctx context.Context, id string) (User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (User, error)

	// Create stores a new user.
	Create(ctx context.Context, u User) error

	// Update modifies an existing user.
	Update(ctx context.Context, u User) error

	// Count returns total user count.
	Count(ctx context.Context) (int, error)
}

// AssetPage selects one page of an owner's assets.
type AssetPage struct {
	Page  int // 1-indexed
	Limit int
}

// AssetStore persists asset metadata.
type AssetStore interface {
	// Get retrieves an asset by ID (soft-deleted assets included).
	Get(ctx context.Context, id string) (asset.Asset, error)

	// GetByKey retrieves a non-deleted asset by storage key.
	GetByKey(ctx context.Context, s3Key string) (asset.Asset, error)

	// Create stores a new asset.
	Create(ctx context.Context, a asset.Asset) error

	// Update modifies an existing asset.
	Update(ctx context.Context, a asset.Asset) error

	// ListByOwner returns all assets owned by a user, newest first.
	// includeDeleted keeps soft-deleted assets in the result; bandwidth
	// totals rely on this so history survives deletion.
	ListByOwner(ctx context.Context, ownerID string, includeDeleted bool) ([]asset.Asset, error)

	// ListPage returns one page of the owner's non-deleted assets,
	// ordered by creation time descending.
	ListPage(ctx context.Context, ownerID string, page AssetPage) ([]asset.Asset, error)

	// CountByOwner returns the owner's non-deleted asset count.
	CountByOwner(ctx context.Context, ownerID string) (int64, error)

	// SetDeleted flips the soft-delete flag.
	SetDeleted(ctx context.Context, id, ownerID string, deleted bool, at time.Time) error

	// ListDeletedBefore returns soft-deleted assets whose last update is
	// older than the cutoff. Used by the retention cleanup.
	ListDeletedBefore(ctx context.Context, cutoff time.Time) ([]asset.Asset, error)

	// Delete permanently removes an asset row.
	Delete(ctx context.Context, id string) error
}

// LogFilter selects access-log records. Keys and AssetID are alternative
// matching strategies: Keys attributes records by request path against
// storage keys, AssetID by the record's explicit asset reference (only
// records written after asset linking carry one).
type LogFilter struct {
	Keys    []string
	AssetID string
	Start   *time.Time // inclusive
	End     *time.Time // inclusive
}

// AccessLogStore queries the append-only CDN access log.
type AccessLogStore interface {
	// RecordBatch appends log records (edge log pipeline ingest).
	RecordBatch(ctx context.Context, records []bandwidth.Record) error

	// Totals aggregates matching records under the standard
	// classification rule (Hit and RefreshHit count as hits).
	Totals(ctx context.Context, f LogFilter) (bandwidth.Totals, error)

	// TotalsByAssetID aggregates records matched by asset reference,
	// with the narrow hit rule (RefreshHit excluded). Kept as a separate
	// method: the two matching strategies report different numbers for
	// pre-linking records and must not be unified silently.
	TotalsByAssetID(ctx context.Context, assetID string) (bandwidth.AssetTotals, error)

	// GroupByPeriod aggregates matching records into calendar buckets,
	// ascending by bucket key, skipping empty periods.
	GroupByPeriod(ctx context.Context, f LogFilter, g bandwidth.Granularity) ([]bandwidth.Bucket, error)
}

// -----------------------------------------------------------------------------
// External Service Ports
// -----------------------------------------------------------------------------

// ObjectStore abstracts the blob storage backend. Upload transport is
// handled upstream; this core only needs delete and move.
type ObjectStore interface {
	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, bucket, key string) error

	// Move renames an object within a bucket.
	Move(ctx context.Context, bucket, oldKey, newKey string) error
}

// CDNInvalidator purges cached paths at the CDN edge.
type CDNInvalidator interface {
	// Invalidate requests cache purge for the given paths.
	Invalidate(ctx context.Context, paths []string) error
}

// URLSigner produces time-limited URLs for private asset delivery.
type URLSigner interface {
	// Configured reports whether signing credentials are present.
	Configured() bool

	// Sign returns a signed variant of url valid until expiresAt.
	Sign(url string, expiresAt time.Time) (string, error)
}
