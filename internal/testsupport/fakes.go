package testsupport

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"mediavault/internal/blobstore"
	"mediavault/internal/catalog"
	"mediavault/internal/extractor"
)

// FakeExtractor produces scripted extraction results, writing a real
// payload file per call so coordinator cleanup paths are exercised.
type FakeExtractor struct {
	T          testing.TB
	StagingDir string
	Title      string
	ExternalID string
	Duration   int64
	Err        error
	// BlockUntilCancel makes Extract wait for context cancellation,
	// simulating a slow acquisition.
	BlockUntilCancel bool

	mu    sync.Mutex
	calls int
}

// Extract implements extractor.Extractor.
func (f *FakeExtractor) Extract(ctx context.Context, query string, kind catalog.MediaKind) (*extractor.Result, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()

	if f.BlockUntilCancel {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.Err != nil {
		return nil, f.Err
	}

	path := filepath.Join(f.StagingDir, fmt.Sprintf("payload-%d.mp3", n))
	WritePayload(f.T, path, 16)

	title := f.Title
	if title == "" {
		title = query
	}
	return &extractor.Result{
		Title:        title,
		ExternalID:   f.ExternalID,
		DurationSecs: f.Duration,
		LocalPath:    path,
		SizeBytes:    16,
		SourceTag:    "fake",
	}, nil
}

// Calls reports how many times Extract ran.
func (f *FakeExtractor) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// FakeBlobStore records uploads and hands out sequential ordering tokens.
type FakeBlobStore struct {
	Err error

	mu   sync.Mutex
	seq  uint64
	puts []blobstore.Metadata
}

// Put implements blobstore.Store.
func (f *FakeBlobStore) Put(ctx context.Context, localPath string, meta blobstore.Metadata) (blobstore.Ref, error) {
	if err := ctx.Err(); err != nil {
		return blobstore.Ref{}, err
	}
	if f.Err != nil {
		return blobstore.Ref{}, f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.puts = append(f.puts, meta)
	return blobstore.Ref{Locator: fmt.Sprintf("obj-%d", f.seq), Sequence: f.seq}, nil
}

// Puts returns a copy of the recorded upload metadata.
func (f *FakeBlobStore) Puts() []blobstore.Metadata {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]blobstore.Metadata, len(f.puts))
	copy(out, f.puts)
	return out
}
