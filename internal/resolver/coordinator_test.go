package resolver_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"mediavault/internal/catalog"
	"mediavault/internal/extractor"
	"mediavault/internal/match"
	"mediavault/internal/resolver"
	"mediavault/internal/testsupport"
)

type fixture struct {
	store       *catalog.Store
	coordinator *resolver.Coordinator
	extractor   *testsupport.FakeExtractor
	blobs       *testsupport.FakeBlobStore
	staging     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	cascade := match.NewCascade(store, cfg.Matching, nil)
	fakeExtractor := &testsupport.FakeExtractor{T: t, StagingDir: cfg.Paths.StagingDir}
	fakeBlobs := &testsupport.FakeBlobStore{}
	return &fixture{
		store:       store,
		coordinator: resolver.New(store, cascade, fakeExtractor, fakeBlobs, nil),
		extractor:   fakeExtractor,
		blobs:       fakeBlobs,
		staging:     cfg.Paths.StagingDir,
	}
}

func TestResolveMissAcquiresAndRegisters(t *testing.T) {
	f := newFixture(t)
	f.extractor.Title = "295"
	f.extractor.ExternalID = "a1b2c3d4e5f"
	f.extractor.Duration = 273

	result, err := f.coordinator.Resolve(context.Background(), resolver.Request{Query: "295 sidhu moosewala"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if result.Cached {
		t.Fatal("expected a fresh acquisition")
	}
	if result.Source != resolver.SourceAcquired {
		t.Fatalf("unexpected source: %q", result.Source)
	}
	if result.Record.Title != "295" || result.Record.ExternalID != "a1b2c3d4e5f" {
		t.Fatalf("unexpected record: %#v", result.Record)
	}
	if result.Record.BlobRef == "" || result.Record.BlobSequence == 0 {
		t.Fatalf("expected blob ref and sequence, got %#v", result.Record)
	}
}

func TestResolveSecondCallHitsCache(t *testing.T) {
	f := newFixture(t)

	first, err := f.coordinator.Resolve(context.Background(), resolver.Request{Query: "295 sidhu moosewala"})
	if err != nil {
		t.Fatalf("first Resolve failed: %v", err)
	}

	second, err := f.coordinator.Resolve(context.Background(), resolver.Request{Query: "295 sidhu moosewala"})
	if err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if !second.Cached || second.Tier != match.TierExact {
		t.Fatalf("expected exact cache hit, got %#v", second)
	}
	if second.Record.ID != first.Record.ID {
		t.Fatal("expected the same record on both calls")
	}
	if f.extractor.Calls() != 1 {
		t.Fatalf("expected one extraction, got %d", f.extractor.Calls())
	}

	fetched, err := f.store.GetByFingerprint(context.Background(), first.Record.Fingerprint)
	if err != nil {
		t.Fatalf("GetByFingerprint failed: %v", err)
	}
	if fetched.AccessCount != 1 {
		t.Fatalf("expected one recorded access, got %d", fetched.AccessCount)
	}
}

func TestResolveNearDuplicateMatchesFuzzy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.coordinator.Resolve(ctx, resolver.Request{Query: "bollywood romantic song"}); err != nil {
		t.Fatalf("seed Resolve failed: %v", err)
	}

	result, err := f.coordinator.Resolve(ctx, resolver.Request{Query: "romantic bollywood song"})
	if err != nil {
		t.Fatalf("near-duplicate Resolve failed: %v", err)
	}
	if !result.Cached {
		t.Fatal("expected cache hit for near-duplicate query")
	}
	if result.Tier != match.TierHighSimilarity && result.Tier != match.TierKeyword {
		t.Fatalf("expected fuzzy tier, got %q", result.Tier)
	}
	if result.Tier == match.TierExact {
		t.Fatal("near-duplicate must not report exact tier")
	}
	if f.extractor.Calls() != 1 {
		t.Fatalf("expected one extraction, got %d", f.extractor.Calls())
	}
}

func TestResolveExternalIDQueryHitsIdentityShortcut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.extractor.ExternalID = "a1b2c3d4e5f"

	if _, err := f.coordinator.Resolve(ctx, resolver.Request{Query: "some descriptive query"}); err != nil {
		t.Fatalf("seed Resolve failed: %v", err)
	}

	result, err := f.coordinator.Resolve(ctx, resolver.Request{Query: "a1b2c3d4e5f"})
	if err != nil {
		t.Fatalf("identity Resolve failed: %v", err)
	}
	if !result.Cached || result.Tier != match.TierExact || result.Confidence != 1.0 {
		t.Fatalf("expected exact identity hit, got %#v", result)
	}
}

func TestResolveRefreshSkipsCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.coordinator.Resolve(ctx, resolver.Request{Query: "295 sidhu moosewala"}); err != nil {
		t.Fatalf("seed Resolve failed: %v", err)
	}

	result, err := f.coordinator.Resolve(ctx, resolver.Request{Query: "295 sidhu moosewala", Refresh: true})
	if err != nil {
		t.Fatalf("refresh Resolve failed: %v", err)
	}
	if result.Cached {
		t.Fatal("refresh must bypass the cache")
	}
	if f.extractor.Calls() != 2 {
		t.Fatalf("expected two extractions, got %d", f.extractor.Calls())
	}

	// The fingerprint constraint still holds: one row only.
	var total int
	for _, err := range f.store.Scan(ctx) {
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		total++
	}
	if total != 1 {
		t.Fatalf("expected one stored row after refresh, got %d", total)
	}
}

func TestResolveConcurrentMissesConvergeOnOneRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const callers = 6
	var wg sync.WaitGroup
	results := make([]*resolver.Resolution, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results[n], errs[n] = f.coordinator.Resolve(ctx, resolver.Request{Query: "kesariya brahmastra"})
		}(i)
	}
	wg.Wait()

	var recordID int64
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d failed: %v", i, errs[i])
		}
		if results[i] == nil || results[i].Record == nil {
			t.Fatalf("caller %d got no record", i)
		}
		if recordID == 0 {
			recordID = results[i].Record.ID
		} else if results[i].Record.ID != recordID {
			t.Fatalf("caller %d got divergent record %d, want %d", i, results[i].Record.ID, recordID)
		}
	}

	var total int
	for _, err := range f.store.Scan(ctx) {
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		total++
	}
	if total != 1 {
		t.Fatalf("expected exactly one stored record, got %d", total)
	}
}

func TestResolveInvalidQueriesRejected(t *testing.T) {
	f := newFixture(t)

	cases := map[string]string{
		"blank":       "   ",
		"too short":   "a",
		"script tag":  "kesariya <script>alert(1)</script>",
		"js url":      "javascript:alert(1)",
		"closing tag": "</b> song",
	}
	for name, query := range cases {
		if _, err := f.coordinator.Resolve(context.Background(), resolver.Request{Query: query}); !errors.Is(err, resolver.ErrInvalidQuery) {
			t.Errorf("%s: expected ErrInvalidQuery, got %v", name, err)
		}
	}
	if calls := f.extractor.Calls(); calls != 0 {
		t.Fatalf("invalid queries must never reach the extractor, got %d calls", calls)
	}
}

func TestResolveExtractionFailure(t *testing.T) {
	f := newFixture(t)
	f.extractor.Err = fmt.Errorf("upstream gone")

	_, err := f.coordinator.Resolve(context.Background(), resolver.Request{Query: "anything"})
	if !errors.Is(err, resolver.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}

	// No half-written record.
	var total int
	for _, scanErr := range f.store.Scan(context.Background()) {
		if scanErr != nil {
			t.Fatalf("Scan failed: %v", scanErr)
		}
		total++
	}
	if total != 0 {
		t.Fatalf("expected empty store, found %d rows", total)
	}
}

func TestResolveBlobStoreFailureCleansPayload(t *testing.T) {
	f := newFixture(t)
	f.blobs.Err = fmt.Errorf("channel offline")

	_, err := f.coordinator.Resolve(context.Background(), resolver.Request{Query: "anything"})
	if !errors.Is(err, resolver.ErrBlobStoreFailed) {
		t.Fatalf("expected ErrBlobStoreFailed, got %v", err)
	}

	leftovers, globErr := filepath.Glob(filepath.Join(f.staging, "payload-*"))
	if globErr != nil {
		t.Fatalf("glob failed: %v", globErr)
	}
	if len(leftovers) != 0 {
		t.Fatalf("expected staged payload cleanup, found %v", leftovers)
	}
}

func TestResolveSuccessCleansPayload(t *testing.T) {
	f := newFixture(t)

	if _, err := f.coordinator.Resolve(context.Background(), resolver.Request{Query: "anything"}); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	leftovers, err := filepath.Glob(filepath.Join(f.staging, "payload-*"))
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("expected staged payload cleanup, found %v", leftovers)
	}
}

func TestResolveTimeoutDuringExtraction(t *testing.T) {
	f := newFixture(t)
	f.extractor.BlockUntilCancel = true

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.coordinator.Resolve(ctx, resolver.Request{Query: "slow query"})
	if !errors.Is(err, resolver.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if len(f.blobs.Puts()) != 0 {
		t.Fatal("must not persist after cancellation")
	}
}

func TestResolveConfiguredAcquireTimeout(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	cascade := match.NewCascade(store, cfg.Matching, nil)
	fakeExtractor := &testsupport.FakeExtractor{T: t, StagingDir: cfg.Paths.StagingDir, BlockUntilCancel: true}
	blobs := &testsupport.FakeBlobStore{}
	coordinator := resolver.New(store, cascade, fakeExtractor, blobs, nil,
		resolver.WithAcquireTimeout(25*time.Millisecond))

	// The caller context carries no deadline; the configured bound alone
	// must cut the hung extraction off.
	start := time.Now()
	_, err := coordinator.Resolve(context.Background(), resolver.Request{Query: "hung acquisition"})
	if !errors.Is(err, resolver.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("acquire timeout not applied, Resolve blocked for %v", elapsed)
	}
	if len(blobs.Puts()) != 0 {
		t.Fatal("must not persist after the acquire timeout")
	}
}

type unavailableCatalog struct{}

func (unavailableCatalog) InsertIfAbsent(ctx context.Context, artifact *catalog.Artifact) (*catalog.Artifact, bool, error) {
	return nil, false, fmt.Errorf("%w: insert artifact: database is locked", catalog.ErrUnavailable)
}

func TestResolveRegisterFailureOnDriverErrorIsStoreUnavailable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	cascade := match.NewCascade(store, cfg.Matching, nil)
	fakeExtractor := &testsupport.FakeExtractor{T: t, StagingDir: cfg.Paths.StagingDir}
	coordinator := resolver.New(unavailableCatalog{}, cascade, fakeExtractor, &testsupport.FakeBlobStore{}, nil)

	_, err := coordinator.Resolve(context.Background(), resolver.Request{Query: "channa mereya"})
	if !errors.Is(err, resolver.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if errors.Is(err, resolver.ErrAcquisitionFailed) {
		t.Fatalf("driver failure must not classify as acquisition failure: %v", err)
	}
}

func TestResolvePanicMapsToInternalError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	cascade := match.NewCascade(store, cfg.Matching, nil)
	coordinator := resolver.New(store, cascade, panickyExtractor{}, &testsupport.FakeBlobStore{}, nil)

	_, err := coordinator.Resolve(context.Background(), resolver.Request{Query: "anything"})
	if !errors.Is(err, resolver.ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}

type panickyExtractor struct{}

func (panickyExtractor) Extract(ctx context.Context, query string, kind catalog.MediaKind) (*extractor.Result, error) {
	panic("extractor exploded")
}

func TestResolveNotifierReceivesEvents(t *testing.T) {
	notifier := &recordingNotifier{}
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	cascade := match.NewCascade(store, cfg.Matching, nil)
	fakeExtractor := &testsupport.FakeExtractor{T: t, StagingDir: cfg.Paths.StagingDir}
	coordinator := resolver.New(store, cascade, fakeExtractor, &testsupport.FakeBlobStore{}, nil,
		resolver.WithNotifier(notifier))

	if _, err := coordinator.Resolve(context.Background(), resolver.Request{Query: "anything"}); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if notifier.completed != 1 || notifier.failed != 0 {
		t.Fatalf("unexpected notifications: %+v", notifier)
	}

	fakeExtractor.Err = fmt.Errorf("upstream gone")
	if _, err := coordinator.Resolve(context.Background(), resolver.Request{Query: "another thing"}); err == nil {
		t.Fatal("expected extraction failure")
	}
	if notifier.failed != 1 {
		t.Fatalf("expected one failure notification, got %d", notifier.failed)
	}
}

type recordingNotifier struct {
	mu        sync.Mutex
	completed int
	failed    int
}

func (n *recordingNotifier) AcquisitionComplete(ctx context.Context, record *catalog.Artifact) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed++
}

func (n *recordingNotifier) AcquisitionFailed(ctx context.Context, query string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed++
}

func TestResolveKindDefaultsToAudio(t *testing.T) {
	f := newFixture(t)

	result, err := f.coordinator.Resolve(context.Background(), resolver.Request{Query: "anything"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if result.Record.MediaKind != catalog.MediaKindAudio {
		t.Fatalf("expected audio default, got %q", result.Record.MediaKind)
	}
	if _, err := os.Stat(f.staging); err != nil {
		t.Fatalf("staging dir missing: %v", err)
	}
}
