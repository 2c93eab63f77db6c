package sqlite

import (
	"context"
	"strings"

	"mediavault/domain/bandwidth"
	"mediavault/ports"
)

// Edge-result buckets, mirroring bandwidth.Classify. Anything outside
// these lists (legacy numeric codes included) counts as an error.
const (
	hitCase   = `COALESCE(SUM(CASE WHEN edge_result IN ('Hit', 'RefreshHit') THEN 1 ELSE 0 END), 0)`
	missCase  = `COALESCE(SUM(CASE WHEN edge_result = 'Miss' THEN 1 ELSE 0 END), 0)`
	errorCase = `COALESCE(SUM(CASE WHEN edge_result NOT IN ('Hit', 'RefreshHit', 'Miss') THEN 1 ELSE 0 END), 0)`
)

// AccessLogStore implements ports.AccessLogStore using SQLite.
type AccessLogStore struct {
	db *DB
}

// NewAccessLogStore creates a new SQLite access-log store.
func NewAccessLogStore(db *DB) *AccessLogStore {
	return &AccessLogStore{db: db}
}

// RecordBatch stores multiple access-log records.
func (s *AccessLogStore) RecordBatch(ctx context.Context, records []bandwidth.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO access_logs (
			id, asset_id, path, bytes, request_bytes, edge_result,
			distribution, status, client_ip, country, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		// Store timestamp in UTC for consistent querying
		_, err := stmt.ExecContext(ctx,
			r.ID, r.AssetID, r.Path, r.Bytes, r.RequestBytes, r.EdgeResult,
			r.Distribution, r.Status, r.ClientIP, r.Country, r.Timestamp.UTC(),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Totals aggregates matching records under the standard classification.
func (s *AccessLogStore) Totals(ctx context.Context, f ports.LogFilter) (bandwidth.Totals, error) {
	where, args := buildLogFilter(f)

	row := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(bytes), 0) as total_bytes,
			COUNT(*) as total_requests,
			`+hitCase+` as cache_hits,
			`+missCase+` as cache_misses,
			`+errorCase+` as errors
		FROM access_logs
		WHERE `+where, args...)

	var t bandwidth.Totals
	err := row.Scan(&t.Bytes, &t.Requests, &t.CacheHits, &t.CacheMisses, &t.Errors)
	if err != nil {
		return bandwidth.Totals{}, err
	}
	return t, nil
}

// TotalsByAssetID aggregates records by asset reference with the narrow
// hit rule (only a plain Hit counts).
func (s *AccessLogStore) TotalsByAssetID(ctx context.Context, assetID string) (bandwidth.AssetTotals, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(bytes), 0) as total_bytes,
			COUNT(*) as total_requests,
			COALESCE(SUM(CASE WHEN edge_result = 'Hit' THEN 1 ELSE 0 END), 0) as hits
		FROM access_logs
		WHERE asset_id = ?
	`, assetID)

	var t bandwidth.AssetTotals
	err := row.Scan(&t.Bytes, &t.Requests, &t.Hits)
	if err != nil {
		return bandwidth.AssetTotals{}, err
	}
	return t, nil
}

// GroupByPeriod aggregates matching records into calendar buckets,
// ascending by bucket key. Empty periods are not emitted.
func (s *AccessLogStore) GroupByPeriod(ctx context.Context, f ports.LogFilter, g bandwidth.Granularity) ([]bandwidth.Bucket, error) {
	where, args := buildLogFilter(f)

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			strftime('`+strftimeFormat(g)+`', timestamp) as period,
			COALESCE(SUM(bytes), 0) as total_bytes,
			COUNT(*) as total_requests,
			`+hitCase+` as cache_hits,
			`+missCase+` as cache_misses,
			`+errorCase+` as errors
		FROM access_logs
		WHERE `+where+`
		GROUP BY period
		ORDER BY period ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []bandwidth.Bucket
	for rows.Next() {
		var b bandwidth.Bucket
		err := rows.Scan(&b.Key, &b.Totals.Bytes, &b.Totals.Requests,
			&b.Totals.CacheHits, &b.Totals.CacheMisses, &b.Totals.Errors)
		if err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// buildLogFilter translates a LogFilter into a WHERE clause. Path matching
// uses exact prefix comparison: a record belongs to key K when its path is
// /K or starts with /K/. substr avoids LIKE so wildcard characters in keys
// cannot widen the match.
func buildLogFilter(f ports.LogFilter) (string, []any) {
	var conds []string
	var args []any

	if f.AssetID != "" {
		conds = append(conds, `asset_id = ?`)
		args = append(args, f.AssetID)
	} else if len(f.Keys) > 0 {
		keyConds := make([]string, len(f.Keys))
		for i, key := range f.Keys {
			keyConds[i] = `(path = '/' || ? OR substr(path, 1, length(?) + 2) = '/' || ? || '/')`
			args = append(args, key, key, key)
		}
		conds = append(conds, `(`+strings.Join(keyConds, ` OR `)+`)`)
	} else {
		// No asset reference and no keys matches nothing.
		conds = append(conds, `1 = 0`)
	}

	// Format times as ISO8601 strings for SQLite comparison, UTC to match
	// stored timestamps. Both bounds are inclusive.
	if f.Start != nil {
		conds = append(conds, `datetime(timestamp) >= datetime(?)`)
		args = append(args, f.Start.UTC().Format("2006-01-02 15:04:05"))
	}
	if f.End != nil {
		conds = append(conds, `datetime(timestamp) <= datetime(?)`)
		args = append(args, f.End.UTC().Format("2006-01-02 15:04:05"))
	}

	return strings.Join(conds, ` AND `), args
}

func strftimeFormat(g bandwidth.Granularity) string {
	switch g {
	case bandwidth.ByMonth:
		return `%Y-%m`
	case bandwidth.ByYear:
		return `%Y`
	default:
		return `%Y-%m-%d`
	}
}

// Ensure interface compliance.
var _ ports.AccessLogStore = (*AccessLogStore)(nil)
