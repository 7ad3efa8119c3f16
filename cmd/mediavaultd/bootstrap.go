package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mediavault/internal/blobstore"
	"mediavault/internal/catalog"
	"mediavault/internal/config"
	"mediavault/internal/daemon"
	"mediavault/internal/extractor"
	"mediavault/internal/janitor"
	"mediavault/internal/logging"
	"mediavault/internal/match"
	"mediavault/internal/notifications"
	"mediavault/internal/preflight"
	"mediavault/internal/resolver"
)

// runPreflight logs environment problems without blocking startup. Cached
// lookups still work when the extraction side is degraded.
func runPreflight(ctx context.Context, cfg *config.Config, logger *slog.Logger) {
	for _, result := range preflight.RunAll(ctx, cfg) {
		if result.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail))
			continue
		}
		logger.Warn("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail))
	}
}

// buildDaemon wires the resolution pipeline from configuration. The returned
// cleanup releases resources not owned by the daemon itself.
func buildDaemon(cfg *config.Config, store *catalog.Store, logger *slog.Logger) (*daemon.Daemon, func(), error) {
	extract, err := buildExtractorChain(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	blobs, err := blobstore.NewNATS(cfg.BlobStore)
	if err != nil {
		return nil, nil, fmt.Errorf("connect blob store: %w", err)
	}
	cleanup := func() { blobs.Close() }

	notifier := notifications.NewService(cfg)
	cascade := match.NewCascade(store, cfg.Matching, logging.NewComponentLogger(logger, "match"))
	coordinator := resolver.New(store, cascade, extract, blobs,
		logging.NewComponentLogger(logger, "resolver"),
		resolver.WithNotifier(notifications.NewResolverNotifier(notifier, logger)),
		resolver.WithAcquireTimeout(time.Duration(cfg.Extractor.TimeoutSeconds)*time.Second))
	sweep := janitor.New(store, cfg.Retention, notifier, logging.NewComponentLogger(logger, "janitor"))

	d, err := daemon.New(cfg, store, cascade, coordinator, sweep, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return d, cleanup, nil
}

func buildExtractorChain(cfg *config.Config, logger *slog.Logger) (extractor.Extractor, error) {
	chainLogger := logging.NewComponentLogger(logger, "extractor")
	var extractors []extractor.Extractor

	if cfg.Extractor.RemoteAPIURL != "" {
		remote, err := extractor.NewRemote(cfg.Extractor, cfg.Paths.StagingDir)
		if err != nil {
			return nil, fmt.Errorf("remote extractor: %w", err)
		}
		extractors = append(extractors, remote)
	}

	ytdlp, err := extractor.NewYtdlp(cfg.Extractor, cfg.Paths.StagingDir)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp extractor: %w", err)
	}
	extractors = append(extractors, ytdlp)

	return extractor.NewChain(chainLogger, extractors...), nil
}
