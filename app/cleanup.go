package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"mediavault/ports"
)

// CleanupReport summarizes one retention sweep.
type CleanupReport struct {
	Checked        int `json:"checked"`
	DeletedObjects int `json:"deletedObjects"`
	DeletedRecords int `json:"deletedRecords"`
	Errors         int `json:"errors"`
}

// CleanupService hard-deletes assets that have been soft-deleted longer
// than the retention period: first the blob, then the metadata row. Rows
// whose blob delete fails are kept for the next sweep.
type CleanupService struct {
	assets  ports.AssetStore
	objects ports.ObjectStore
	clock   ports.Clock
	logger  zerolog.Logger

	mu        sync.RWMutex
	retention time.Duration
}

// NewCleanupService creates the cleanup service.
func NewCleanupService(assets ports.AssetStore, objects ports.ObjectStore, clock ports.Clock, retention time.Duration, logger zerolog.Logger) *CleanupService {
	return &CleanupService{
		assets:    assets,
		objects:   objects,
		clock:     clock,
		retention: retention,
		logger:    logger.With().Str("service", "cleanup").Logger(),
	}
}

// SetRetention changes the retention period at runtime (config reload).
func (s *CleanupService) SetRetention(d time.Duration) {
	s.mu.Lock()
	s.retention = d
	s.mu.Unlock()
}

func (s *CleanupService) currentRetention() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.retention
}

// Run performs one sweep and returns a report. Individual asset failures
// are counted, logged and skipped; the sweep itself only fails when the
// candidate query does.
func (s *CleanupService) Run(ctx context.Context) (CleanupReport, error) {
	cutoff := s.clock.Now().UTC().Add(-s.currentRetention())
	s.logger.Info().Time("cutoff", cutoff).Msg("starting cleanup sweep")

	expired, err := s.assets.ListDeletedBefore(ctx, cutoff)
	if err != nil {
		return CleanupReport{}, fmt.Errorf("list expired assets: %w", err)
	}

	report := CleanupReport{Checked: len(expired)}
	for _, a := range expired {
		if err := s.objects.Delete(ctx, a.S3Bucket, a.S3Key); err != nil {
			report.Errors++
			s.logger.Error().Err(err).Str("asset_id", a.ID).Str("s3_key", a.S3Key).Msg("blob delete failed")
			continue
		}
		report.DeletedObjects++

		if err := s.assets.Delete(ctx, a.ID); err != nil {
			report.Errors++
			s.logger.Error().Err(err).Str("asset_id", a.ID).Msg("metadata delete failed")
			continue
		}
		report.DeletedRecords++
	}

	s.logger.Info().
		Int("checked", report.Checked).
		Int("deleted_objects", report.DeletedObjects).
		Int("deleted_records", report.DeletedRecords).
		Int("errors", report.Errors).
		Msg("cleanup sweep finished")
	return report, nil
}
