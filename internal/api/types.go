package api

import (
	"mediavault/internal/catalog"
	"mediavault/internal/resolver"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Artifact describes a catalog record in a transport-friendly format.
type Artifact struct {
	ID             int64  `json:"id"`
	Fingerprint    string `json:"fingerprint"`
	OriginalQuery  string `json:"originalQuery"`
	ExternalID     string `json:"externalId,omitempty"`
	Title          string `json:"title,omitempty"`
	DurationSecs   int64  `json:"durationSecs"`
	MediaKind      string `json:"mediaKind"`
	BlobRef        string `json:"blobRef"`
	BlobSequence   uint64 `json:"blobSequence"`
	CreatedAt      string `json:"createdAt,omitempty"`
	LastAccessedAt string `json:"lastAccessedAt,omitempty"`
	AccessCount    int64  `json:"accessCount"`
}

// FromArtifact converts a catalog record into its API shape.
func FromArtifact(record *catalog.Artifact) Artifact {
	view := Artifact{
		ID:            record.ID,
		Fingerprint:   record.Fingerprint,
		OriginalQuery: record.OriginalQuery,
		ExternalID:    record.ExternalID,
		Title:         record.Title,
		DurationSecs:  record.DurationSecs,
		MediaKind:     string(record.MediaKind),
		BlobRef:       record.BlobRef,
		BlobSequence:  record.BlobSequence,
		AccessCount:   record.AccessCount,
	}
	if !record.CreatedAt.IsZero() {
		view.CreatedAt = record.CreatedAt.Format(dateTimeFormat)
	}
	if !record.LastAccessedAt.IsZero() {
		view.LastAccessedAt = record.LastAccessedAt.Format(dateTimeFormat)
	}
	return view
}

// ResolveRequest asks the daemon to resolve a query.
type ResolveRequest struct {
	Query   string `json:"query"`
	Kind    string `json:"kind,omitempty"`
	Refresh bool   `json:"refresh,omitempty"`
}

// ResolveResponse reports the outcome of a resolution.
type ResolveResponse struct {
	Status     string    `json:"status"`
	Cached     bool      `json:"cached"`
	Source     string    `json:"source,omitempty"`
	MatchTier  string    `json:"matchTier,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	Record     *Artifact `json:"record,omitempty"`
	Error      string    `json:"error,omitempty"`
	ErrorKind  string    `json:"errorKind,omitempty"`
}

// FromResolution converts a resolver result into its API shape.
func FromResolution(res *resolver.Resolution) ResolveResponse {
	response := ResolveResponse{
		Status:     "success",
		Cached:     res.Cached,
		Source:     string(res.Source),
		MatchTier:  string(res.Tier),
		Confidence: res.Confidence,
	}
	if res.Record != nil {
		view := FromArtifact(res.Record)
		response.Record = &view
	}
	return response
}

// SearchResponse reports a cache-only lookup.
type SearchResponse struct {
	Found      bool      `json:"found"`
	MatchTier  string    `json:"matchTier,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	Record     *Artifact `json:"record,omitempty"`
}

// StatsResponse aggregates catalog counters.
type StatsResponse struct {
	TotalRecords  int64            `json:"totalRecords"`
	TotalAccesses int64            `json:"totalAccesses"`
	ByKind        map[string]int64 `json:"byKind"`
	MostAccessed  []Artifact       `json:"mostAccessed,omitempty"`
}

// StatusResponse aggregates daemon runtime information.
type StatusResponse struct {
	Running       bool   `json:"running"`
	PID           int    `json:"pid"`
	CatalogDBPath string `json:"catalogDbPath"`
	LockFilePath  string `json:"lockFilePath"`
	SweepInterval string `json:"sweepInterval"`
	RetentionDays int    `json:"retentionDays"`
}

// HealthResponse reports catalog database health.
type HealthResponse struct {
	Healthy          bool   `json:"healthy"`
	DatabaseExists   bool   `json:"databaseExists"`
	DatabaseReadable bool   `json:"databaseReadable"`
	TableExists      bool   `json:"tableExists"`
	TotalRecords     int64  `json:"totalRecords"`
	IntegrityCheck   bool   `json:"integrityCheck"`
	Error            string `json:"error,omitempty"`
}

// RecordListResponse wraps a collection of catalog records.
type RecordListResponse struct {
	Records []Artifact `json:"records"`
}

// PurgeResponse reports how many records a purge removed.
type PurgeResponse struct {
	Removed int64 `json:"removed"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorKind string `json:"errorKind,omitempty"`
}
