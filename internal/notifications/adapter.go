package notifications

import (
	"context"
	"log/slog"

	"mediavault/internal/catalog"
	"mediavault/internal/logging"
)

// ResolverNotifier adapts Service to the resolver's lifecycle hooks.
// Delivery failures are logged, never surfaced into the resolution path.
type ResolverNotifier struct {
	svc    Service
	logger *slog.Logger
}

// NewResolverNotifier wraps a Service for use by the resolution coordinator.
func NewResolverNotifier(svc Service, logger *slog.Logger) *ResolverNotifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ResolverNotifier{svc: svc, logger: logger}
}

// AcquisitionComplete announces a freshly registered artifact.
func (r *ResolverNotifier) AcquisitionComplete(ctx context.Context, record *catalog.Artifact) {
	if record == nil {
		return
	}
	title := record.Title
	if title == "" {
		title = record.OriginalQuery
	}
	if err := r.svc.NotifyAcquisitionComplete(ctx, title, record.MediaKind); err != nil {
		r.logger.Warn("acquisition notification failed", logging.Error(err))
	}
}

// AcquisitionFailed announces a failed acquisition attempt.
func (r *ResolverNotifier) AcquisitionFailed(ctx context.Context, query string, cause error) {
	if err := r.svc.NotifyAcquisitionFailed(ctx, query, cause); err != nil {
		r.logger.Warn("failure notification failed", logging.Error(err))
	}
}
