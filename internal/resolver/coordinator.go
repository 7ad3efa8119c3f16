package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"mediavault/internal/blobstore"
	"mediavault/internal/catalog"
	"mediavault/internal/extractor"
	"mediavault/internal/logging"
	"mediavault/internal/match"
	"mediavault/internal/textutil"
)

// Catalog is the store subset the coordinator writes through.
type Catalog interface {
	InsertIfAbsent(ctx context.Context, artifact *catalog.Artifact) (*catalog.Artifact, bool, error)
}

// Matcher is the cascade surface consumed by the coordinator.
type Matcher interface {
	Resolve(ctx context.Context, query string) *match.Result
}

// Notifier receives lifecycle events. Implementations must be non-blocking
// or internally bounded; the coordinator calls them inline.
type Notifier interface {
	AcquisitionComplete(ctx context.Context, record *catalog.Artifact)
	AcquisitionFailed(ctx context.Context, query string, err error)
}

// Coordinator drives a request through matching, acquisition, and
// registration. Collaborators are injected; all are required except the
// notifier.
type Coordinator struct {
	store          Catalog
	cascade        Matcher
	extract        extractor.Extractor
	blobs          blobstore.Store
	notifier       Notifier
	logger         *slog.Logger
	acquireTimeout time.Duration
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithNotifier attaches a lifecycle notifier.
func WithNotifier(notifier Notifier) Option {
	return func(c *Coordinator) {
		c.notifier = notifier
	}
}

// WithAcquireTimeout bounds the acquiring phase. Zero leaves the caller's
// context deadline as the only limit.
func WithAcquireTimeout(timeout time.Duration) Option {
	return func(c *Coordinator) {
		c.acquireTimeout = timeout
	}
}

// New constructs a Coordinator.
func New(store Catalog, cascade Matcher, extract extractor.Extractor, blobs blobstore.Store, logger *slog.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &Coordinator{
		store:   store,
		cascade: cascade,
		extract: extract,
		blobs:   blobs,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve runs the request state machine. A cascade hit returns
// immediately; a miss acquires the media, stores the payload, and
// registers the record. Concurrent identical misses converge on one
// record: the losers discard their payloads and receive the winner's row.
func (c *Coordinator) Resolve(ctx context.Context, req Request) (resolution *Resolution, err error) {
	query := strings.TrimSpace(req.Query)
	if err := validateQuery(query); err != nil {
		return nil, err
	}
	fingerprint := textutil.Fingerprint(query)
	log := logging.WithContext(ctx, c.logger)

	phase := "matching"
	defer func() {
		if r := recover(); r != nil {
			resolution = nil
			err = Wrap(ErrInternal, phase, fmt.Sprintf("panic: %v (fingerprint=%s)", r, fingerprint), nil)
			log.Error("resolution panicked",
				logging.String(logging.FieldFingerprint, fingerprint),
				logging.String(logging.FieldPhase, phase),
				logging.Any("panic", r))
		}
	}()

	if !req.Refresh {
		if hit := c.cascade.Resolve(ctx, query); hit != nil {
			log.Info("resolved from cache",
				logging.String(logging.FieldFingerprint, fingerprint),
				logging.String(logging.FieldTier, string(hit.Tier)),
				logging.Float64("confidence", hit.Confidence))
			return &Resolution{
				Record:     hit.Record,
				Cached:     true,
				Tier:       hit.Tier,
				Confidence: hit.Confidence,
				Source:     SourceCache,
			}, nil
		}
	}

	phase = "acquiring"
	acquireCtx := ctx
	if c.acquireTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, c.acquireTimeout)
		defer cancel()
	}
	extracted, err := c.extract.Extract(acquireCtx, query, req.Kind)
	if err != nil {
		if acquireCtx.Err() != nil {
			return nil, Wrap(ErrTimeout, phase, "deadline elapsed during extraction", acquireCtx.Err())
		}
		c.notifyFailure(ctx, query, err)
		return nil, Wrap(ErrExtractionFailed, phase, query, err)
	}
	if extracted == nil {
		c.notifyFailure(ctx, query, extractor.ErrNoResult)
		return nil, Wrap(ErrExtractionFailed, phase, query, extractor.ErrNoResult)
	}
	defer c.cleanupPayload(extracted.LocalPath)

	// A deadline that elapsed while extracting must not reach the blob
	// channel with a stale payload.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, Wrap(ErrTimeout, phase, "cancelled before persisting", ctxErr)
	}

	phase = "persisting"
	ref, err := c.blobs.Put(ctx, extracted.LocalPath, blobstore.Metadata{
		Fingerprint: fingerprint,
		Title:       extracted.Title,
		MediaKind:   string(req.Kind),
		SizeBytes:   extracted.SizeBytes,
		SourceTag:   extracted.SourceTag,
	})
	if err != nil {
		c.notifyFailure(ctx, query, err)
		return nil, Wrap(ErrBlobStoreFailed, phase, query, err)
	}

	kind := req.Kind
	if kind == "" {
		kind = catalog.MediaKindAudio
	}
	now := time.Now().UTC()
	stored, inserted, err := c.store.InsertIfAbsent(ctx, &catalog.Artifact{
		Fingerprint:    fingerprint,
		OriginalQuery:  query,
		ExternalID:     extracted.ExternalID,
		Title:          extracted.Title,
		DurationSecs:   extracted.DurationSecs,
		MediaKind:      kind,
		BlobRef:        ref.Locator,
		BlobSequence:   ref.Sequence,
		CreatedAt:      now,
		LastAccessedAt: now,
	})
	if err != nil {
		// The payload is already in the blob channel; losing the record
		// row is wasted work and a data-loss risk, so this failure is loud.
		log.Error("acquired artifact could not be registered",
			logging.String(logging.FieldFingerprint, fingerprint),
			logging.String("blob_ref", ref.Locator),
			logging.Error(err))
		c.notifyFailure(ctx, query, err)
		marker := ErrAcquisitionFailed
		if errors.Is(err, catalog.ErrUnavailable) {
			marker = ErrStoreUnavailable
		}
		return nil, Wrap(marker, phase, query, err)
	}
	if !inserted {
		// Expected race under concurrent identical queries: another
		// request registered first. Our blob upload is orphaned collateral
		// left to external cleanup.
		log.Info("concurrent registration won, reusing existing record",
			logging.String(logging.FieldFingerprint, fingerprint),
			logging.String("orphaned_blob", ref.Locator))
		return &Resolution{Record: stored, Cached: false, Source: SourceAcquired}, nil
	}

	log.Info("artifact acquired and registered",
		logging.String(logging.FieldFingerprint, fingerprint),
		logging.String("blob_ref", ref.Locator),
		logging.Uint64("blob_sequence", ref.Sequence),
		logging.String("source", extracted.SourceTag))
	if c.notifier != nil {
		c.notifier.AcquisitionComplete(ctx, stored)
	}
	return &Resolution{Record: stored, Cached: false, Source: SourceAcquired}, nil
}

// cleanupPayload removes the staged payload file. Best effort: a leftover
// file only wastes staging space until the next manual cleanup.
func (c *Coordinator) cleanupPayload(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		c.logger.Warn("payload cleanup failed",
			logging.String("path", path),
			logging.Error(err))
	}
}

func (c *Coordinator) notifyFailure(ctx context.Context, query string, err error) {
	if c.notifier != nil {
		c.notifier.AcquisitionFailed(ctx, query, err)
	}
}

// markupPatterns are fragments that never appear in a legitimate media
// query and indicate something trying to smuggle markup through the API.
var markupPatterns = []string{"<script", "</", "javascript:", "data:text/html", "onerror="}

func validateQuery(query string) error {
	if query == "" {
		return Wrap(ErrInvalidQuery, "matching", "query must not be empty", nil)
	}
	if len([]rune(query)) < 2 {
		return Wrap(ErrInvalidQuery, "matching", "query must be at least 2 characters", nil)
	}
	lowered := strings.ToLower(query)
	for _, pattern := range markupPatterns {
		if strings.Contains(lowered, pattern) {
			return Wrap(ErrInvalidQuery, "matching", "query contains markup", nil)
		}
	}
	return nil
}
