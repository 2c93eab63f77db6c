// Package cdn provides CDN invalidation and URL signing adapters.
package cdn

import (
	"context"

	"github.com/rs/zerolog"

	"mediavault/ports"
)

// LogOnly implements ports.CDNInvalidator by recording requests in the
// log without calling any provider. Used when no CDN is configured;
// deployments with a real edge swap in a provider-specific adapter.
type LogOnly struct {
	logger zerolog.Logger
}

// NewLogOnly creates a log-only invalidator.
func NewLogOnly(logger zerolog.Logger) *LogOnly {
	return &LogOnly{logger: logger}
}

// Invalidate logs the requested paths and succeeds.
func (c *LogOnly) Invalidate(ctx context.Context, paths []string) error {
	c.logger.Info().
		Strs("paths", paths).
		Msg("cdn invalidation requested (no provider configured)")
	return nil
}

// Ensure interface compliance.
var _ ports.CDNInvalidator = (*LogOnly)(nil)
