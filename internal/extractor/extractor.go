package extractor

import (
	"context"
	"errors"
	"log/slog"

	"mediavault/internal/catalog"
	"mediavault/internal/logging"
)

// ErrNoResult reports that an extractor found nothing for the query.
// Distinct from transport or tool failures, which carry their own errors.
var ErrNoResult = errors.New("no extraction result")

// Result describes a successfully acquired payload. LocalPath points at a
// file under the staging directory; the caller owns its cleanup.
type Result struct {
	Title        string
	ExternalID   string
	DurationSecs int64
	LocalPath    string
	SizeBytes    int64
	SourceTag    string
}

// Extractor turns a query into raw media bytes and metadata.
type Extractor interface {
	Extract(ctx context.Context, query string, kind catalog.MediaKind) (*Result, error)
}

// Chain tries each extractor in order and returns the first success.
// Individual failures are logged and absorbed; the chain fails only when
// every member has failed.
type Chain struct {
	extractors []Extractor
	logger     *slog.Logger
}

// NewChain builds an extraction chain. Order matters: earlier extractors
// are preferred.
func NewChain(logger *slog.Logger, extractors ...Extractor) *Chain {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Chain{extractors: extractors, logger: logger}
}

// Extract runs the chain for a query.
func (c *Chain) Extract(ctx context.Context, query string, kind catalog.MediaKind) (*Result, error) {
	if len(c.extractors) == 0 {
		return nil, ErrNoResult
	}

	var lastErr error
	for _, ext := range c.extractors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := ext.Extract(ctx, query, kind)
		if err != nil {
			lastErr = err
			c.logger.Warn("extractor failed, trying next",
				logging.String(logging.FieldQuery, query),
				logging.Error(err))
			continue
		}
		if result == nil {
			lastErr = ErrNoResult
			continue
		}
		return result, nil
	}
	return nil, lastErr
}
