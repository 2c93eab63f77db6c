package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"mediavault/domain/asset"
	"mediavault/ports"
)

const assetColumns = `id, owner_id, name, type, s3_bucket, s3_key, cdn_url,
	size_bytes, width, height, format, is_private, original_folder, is_deleted,
	created_at, updated_at`

// AssetStore implements ports.AssetStore using SQLite.
type AssetStore struct {
	db *DB
}

// NewAssetStore creates a new SQLite asset store.
func NewAssetStore(db *DB) *AssetStore {
	return &AssetStore{db: db}
}

// Get retrieves an asset by ID, soft-deleted included.
func (s *AssetStore) Get(ctx context.Context, id string) (asset.Asset, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+assetColumns+`
		FROM assets
		WHERE id = ?
	`, id)
	return scanAsset(row)
}

// GetByKey retrieves a non-deleted asset by storage key.
func (s *AssetStore) GetByKey(ctx context.Context, s3Key string) (asset.Asset, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+assetColumns+`
		FROM assets
		WHERE s3_key = ? AND is_deleted = 0
	`, s3Key)
	return scanAsset(row)
}

// Create stores a new asset.
func (s *AssetStore) Create(ctx context.Context, a asset.Asset) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assets (`+assetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.OwnerID, a.Name, string(a.Type), a.S3Bucket, a.S3Key, a.CDNURL,
		a.SizeBytes, a.Width, a.Height, a.Format, a.IsPrivate, a.OriginalFolder,
		a.IsDeleted, a.CreatedAt.UTC(), a.UpdatedAt.UTC())

	if err != nil && isUniqueConstraintError(err) {
		return ErrDuplicate
	}
	return err
}

// Update modifies an existing asset.
func (s *AssetStore) Update(ctx context.Context, a asset.Asset) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE assets
		SET name = ?, type = ?, s3_bucket = ?, s3_key = ?, cdn_url = ?,
		    size_bytes = ?, width = ?, height = ?, format = ?, is_private = ?,
		    original_folder = ?, is_deleted = ?, updated_at = ?
		WHERE id = ?
	`, a.Name, string(a.Type), a.S3Bucket, a.S3Key, a.CDNURL,
		a.SizeBytes, a.Width, a.Height, a.Format, a.IsPrivate,
		a.OriginalFolder, a.IsDeleted, a.UpdatedAt.UTC(), a.ID)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// ListByOwner returns the owner's assets, newest first.
func (s *AssetStore) ListByOwner(ctx context.Context, ownerID string, includeDeleted bool) ([]asset.Asset, error) {
	query := `
		SELECT ` + assetColumns + `
		FROM assets
		WHERE owner_id = ?
	`
	if !includeDeleted {
		query += ` AND is_deleted = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssets(rows)
}

// ListPage returns one page of the owner's non-deleted assets.
func (s *AssetStore) ListPage(ctx context.Context, ownerID string, page ports.AssetPage) ([]asset.Asset, error) {
	offset := (page.Page - 1) * page.Limit
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+assetColumns+`
		FROM assets
		WHERE owner_id = ? AND is_deleted = 0
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, ownerID, page.Limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssets(rows)
}

// CountByOwner returns the owner's non-deleted asset count.
func (s *AssetStore) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM assets WHERE owner_id = ? AND is_deleted = 0
	`, ownerID).Scan(&count)
	return count, err
}

// SetDeleted flips the soft-delete flag.
func (s *AssetStore) SetDeleted(ctx context.Context, id, ownerID string, deleted bool, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE assets
		SET is_deleted = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`, deleted, at.UTC(), id, ownerID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// ListDeletedBefore returns soft-deleted assets last updated before cutoff.
func (s *AssetStore) ListDeletedBefore(ctx context.Context, cutoff time.Time) ([]asset.Asset, error) {
	cutoffStr := cutoff.UTC().Format("2006-01-02 15:04:05")
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+assetColumns+`
		FROM assets
		WHERE is_deleted = 1 AND datetime(updated_at) < datetime(?)
		ORDER BY created_at DESC, id DESC
	`, cutoffStr)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssets(rows)
}

// Delete permanently removes an asset row.
func (s *AssetStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func scanAsset(row *sql.Row) (asset.Asset, error) {
	var a asset.Asset
	var typ string

	err := row.Scan(
		&a.ID, &a.OwnerID, &a.Name, &typ, &a.S3Bucket, &a.S3Key, &a.CDNURL,
		&a.SizeBytes, &a.Width, &a.Height, &a.Format, &a.IsPrivate,
		&a.OriginalFolder, &a.IsDeleted, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return asset.Asset{}, ports.ErrNotFound
	}
	if err != nil {
		return asset.Asset{}, err
	}

	a.Type = asset.Type(typ)
	return a, nil
}

func scanAssets(rows *sql.Rows) ([]asset.Asset, error) {
	var assets []asset.Asset
	for rows.Next() {
		var a asset.Asset
		var typ string

		err := rows.Scan(
			&a.ID, &a.OwnerID, &a.Name, &typ, &a.S3Bucket, &a.S3Key, &a.CDNURL,
			&a.SizeBytes, &a.Width, &a.Height, &a.Format, &a.IsPrivate,
			&a.OriginalFolder, &a.IsDeleted, &a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		a.Type = asset.Type(typ)
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// Ensure interface compliance.
var _ ports.AssetStore = (*AssetStore)(nil)
