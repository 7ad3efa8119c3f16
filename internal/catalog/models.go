package catalog

import (
	"fmt"
	"strings"
	"time"
)

// MediaKind categorizes the stored payload.
type MediaKind string

const (
	MediaKindAudio    MediaKind = "audio"
	MediaKindVideo    MediaKind = "video"
	MediaKindDocument MediaKind = "document"
)

// ParseMediaKind normalizes a user-supplied kind string. Empty input maps to
// audio, matching the service's historical default.
func ParseMediaKind(value string) (MediaKind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "audio":
		return MediaKindAudio, nil
	case "video":
		return MediaKindVideo, nil
	case "document":
		return MediaKindDocument, nil
	default:
		return "", fmt.Errorf("unknown media kind %q", value)
	}
}

// Artifact is the durable unit of cached media: one row per logical piece of
// content, keyed by the fingerprint of the normalized query that first
// acquired it.
type Artifact struct {
	ID            int64
	Fingerprint   string
	OriginalQuery string
	ExternalID    string
	Title         string
	DurationSecs  int64
	MediaKind     MediaKind
	BlobRef       string
	// BlobSequence is the blob channel's monotonic ordering token. It is
	// retained verbatim to stay compatible with the channel's addressing
	// scheme even though the engine itself never interprets it.
	BlobSequence   uint64
	CreatedAt      time.Time
	LastAccessedAt time.Time
	AccessCount    int64
}

// Stats aggregates catalog counters for diagnostics and the stats endpoint.
type Stats struct {
	TotalRecords  int64
	TotalAccesses int64
	ByKind        map[MediaKind]int64
}

// DatabaseHealth reports diagnostic information about the catalog database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TableExists      bool
	TotalRecords     int64
	IntegrityCheck   bool
	Error            string
}
