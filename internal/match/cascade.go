package match

import (
	"context"
	"iter"
	"log/slog"

	"mediavault/internal/catalog"
	"mediavault/internal/config"
	"mediavault/internal/logging"
	"mediavault/internal/textutil"
)

// Tier identifies which cascade strategy produced a match.
type Tier string

const (
	TierExact          Tier = "exact"
	TierHighSimilarity Tier = "high_similarity"
	TierKeyword        Tier = "keyword"
	TierLowSimilarity  Tier = "low_similarity"
)

// Store is the catalog subset the cascade reads. It is satisfied by
// *catalog.Store and narrow enough to swap for an indexed similarity
// backend without touching the cascade.
type Store interface {
	GetByFingerprint(ctx context.Context, fingerprint string) (*catalog.Artifact, error)
	GetByExternalID(ctx context.Context, externalID string) (*catalog.Artifact, error)
	Scan(ctx context.Context) iter.Seq2[*catalog.Artifact, error]
	RecordAccess(ctx context.Context, fingerprint string) error
}

// Result describes a cascade hit. It is ephemeral and never persisted.
type Result struct {
	Record     *catalog.Artifact
	Tier       Tier
	Confidence float64
}

// Cascade executes the tiered lookup over the catalog.
type Cascade struct {
	store  Store
	cfg    config.Matching
	logger *slog.Logger
}

// NewCascade constructs a cascade using the provided thresholds.
func NewCascade(store Store, cfg config.Matching, logger *slog.Logger) *Cascade {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cascade{store: store, cfg: cfg, logger: logger}
}

// Resolve returns the highest-priority match for a query, or nil when
// nothing qualifies. A nil result is a normal miss, never an error.
// Catalog read failures degrade to a miss so resolution can fail open
// toward acquisition.
func (c *Cascade) Resolve(ctx context.Context, query string) *Result {
	fingerprint := textutil.Fingerprint(query)

	record, err := c.store.GetByFingerprint(ctx, fingerprint)
	if err != nil {
		c.logger.Warn("fingerprint lookup failed, treating as miss",
			logging.String(logging.FieldFingerprint, fingerprint),
			logging.Error(err))
	} else if record != nil {
		c.touch(ctx, record)
		return &Result{Record: record, Tier: TierExact, Confidence: 1.0}
	}

	if externalID, ok := textutil.ExtractExternalID(query); ok {
		record, err := c.store.GetByExternalID(ctx, externalID)
		if err != nil {
			c.logger.Warn("external id lookup failed, treating as miss",
				logging.String("external_id", externalID),
				logging.Error(err))
		} else if record != nil {
			c.touch(ctx, record)
			return &Result{Record: record, Tier: TierExact, Confidence: 1.0}
		}
	}

	result := c.resolveFuzzy(ctx, query)
	if result != nil {
		c.touch(ctx, result.Record)
		c.logger.Debug("fuzzy match accepted",
			logging.String(logging.FieldQuery, query),
			logging.String(logging.FieldTier, string(result.Tier)),
			logging.Float64("confidence", result.Confidence))
	}
	return result
}

// resolveFuzzy runs tiers two through four over a single catalog scan.
// The scan yields newest records first, so strict greater-than
// comparisons deterministically prefer the most recently created record
// among equal scores.
func (c *Cascade) resolveFuzzy(ctx context.Context, query string) *Result {
	normalized := textutil.Normalize(query)
	queryKeywords := textutil.Keywords(query)
	keywordEligible := len(queryKeywords) >= c.cfg.MinKeywordMatches

	var (
		bestHigh, bestKeyword, bestLow    *catalog.Artifact
		highScore, keywordScore, lowScore float64
	)

	for record, err := range c.store.Scan(ctx) {
		if err != nil {
			c.logger.Warn("catalog scan failed, treating as miss", logging.Error(err))
			return nil
		}

		candidate := textutil.Normalize(record.OriginalQuery)
		ratio := textutil.SequenceRatio(normalized, candidate)
		if ratio >= c.cfg.HighSimilarityThreshold && ratio > highScore {
			bestHigh, highScore = record, ratio
		}
		if ratio >= c.cfg.LowSimilarityThreshold && ratio > lowScore {
			bestLow, lowScore = record, ratio
		}

		if keywordEligible {
			overlap := textutil.KeywordOverlap(queryKeywords, textutil.Keywords(record.OriginalQuery))
			if overlap >= c.cfg.MinKeywordMatches {
				score := float64(overlap) / float64(len(queryKeywords))
				if score > keywordScore {
					bestKeyword, keywordScore = record, score
				}
			}
		}
	}

	switch {
	case bestHigh != nil:
		return &Result{Record: bestHigh, Tier: TierHighSimilarity, Confidence: highScore}
	case bestKeyword != nil:
		return &Result{Record: bestKeyword, Tier: TierKeyword, Confidence: keywordScore}
	case bestLow != nil:
		return &Result{Record: bestLow, Tier: TierLowSimilarity, Confidence: lowScore}
	default:
		return nil
	}
}

// touch bumps access statistics for a hit. A record deleted between the
// read and the touch is a logged no-op.
func (c *Cascade) touch(ctx context.Context, record *catalog.Artifact) {
	if err := c.store.RecordAccess(ctx, record.Fingerprint); err != nil {
		c.logger.Warn("access stat update failed",
			logging.String(logging.FieldFingerprint, record.Fingerprint),
			logging.Error(err))
	}
}
