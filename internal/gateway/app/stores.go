package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"contentflow/internal/export"
	"contentflow/internal/gateway/config"
)

// initExportStore picks the asset origin and puts the LRU cache in front of
// it. Incomplete S3 settings fall back to memory.
func initExportStore(cfg config.ExportConfig, log zerolog.Logger) (export.Store, error) {
	var origin export.Store
	if cfg.S3Enabled() {
		s3Store, err := export.NewS3Store(export.S3Config{
			Endpoint:  cfg.Endpoint,
			Region:    cfg.Region,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			UseSSL:    cfg.UseSSL,
		})
		if err != nil {
			log.Warn().Err(err).Msg("export store: using in-memory fallback (s3 config incomplete)")
		} else {
			log.Info().Str("bucket", cfg.Bucket).Str("endpoint", cfg.Endpoint).Msg("export store: s3")
			origin = s3Store
		}
	}
	if origin == nil {
		origin = export.NewMemoryStore()
	}
	cached, err := export.NewCachedStore(origin, cfg.CacheEntries)
	if err != nil {
		return nil, fmt.Errorf("init export cache: %w", err)
	}
	return cached, nil
}
