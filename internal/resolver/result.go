package resolver

import (
	"mediavault/internal/catalog"
	"mediavault/internal/match"
)

// Source names where a resolution's record came from.
type Source string

const (
	SourceCache    Source = "cache"
	SourceAcquired Source = "acquired"
)

// Request describes one resolution attempt.
type Request struct {
	Query string
	Kind  catalog.MediaKind
	// Refresh skips the cascade entirely and forces a fresh acquisition.
	// The registration race still converges on a single record.
	Refresh bool
}

// Resolution is the uniform caller-facing result of a request.
type Resolution struct {
	Record     *catalog.Artifact
	Cached     bool
	Tier       match.Tier
	Confidence float64
	Source     Source
}
