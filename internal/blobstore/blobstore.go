package blobstore

import "context"

// Ref identifies a stored payload within the blob channel.
type Ref struct {
	// Locator is the channel's opaque handle for the payload bytes.
	Locator string
	// Sequence is the channel's monotonic ordering token for the upload.
	Sequence uint64
}

// Metadata accompanies a payload into the channel.
type Metadata struct {
	Fingerprint string
	Title       string
	MediaKind   string
	SizeBytes   int64
	SourceTag   string
}

// Store persists payload bytes durably. Implementations are at-least-once
// and best-effort; retry policy belongs to the caller.
type Store interface {
	Put(ctx context.Context, localPath string, meta Metadata) (Ref, error)
}
