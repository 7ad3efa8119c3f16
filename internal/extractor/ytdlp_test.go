package extractor_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mediavault/internal/catalog"
	"mediavault/internal/config"
	"mediavault/internal/extractor"
	"mediavault/internal/testsupport"
)

func TestYtdlpExtractSearchQuery(t *testing.T) {
	staging := t.TempDir()
	client, err := extractor.NewYtdlp(config.Default().Extractor, staging)
	if err != nil {
		t.Fatalf("NewYtdlp failed: %v", err)
	}

	var probeTarget string
	client.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if containsArg(args, "--skip-download") {
			probeTarget = args[len(args)-1]
			return []byte(`{"entries":[{"id":"a1b2c3d4e5f","title":"Kesariya","duration":268}]}`), nil
		}
		testsupport.WritePayload(t, filepath.Join(staging, "ytdlp_a1b2c3d4e5f.mp3"), 64)
		return nil, nil
	})

	result, err := client.Extract(context.Background(), "kesariya brahmastra", catalog.MediaKindAudio)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if probeTarget != "ytsearch1:kesariya brahmastra" {
		t.Fatalf("expected search target, got %q", probeTarget)
	}
	if result.ExternalID != "a1b2c3d4e5f" || result.Title != "Kesariya" || result.DurationSecs != 268 {
		t.Fatalf("unexpected metadata: %#v", result)
	}
	if result.SourceTag != "yt-dlp" {
		t.Fatalf("unexpected source tag: %q", result.SourceTag)
	}
	if result.SizeBytes != 64 {
		t.Fatalf("expected size 64, got %d", result.SizeBytes)
	}
	if _, err := os.Stat(result.LocalPath); err != nil {
		t.Fatalf("payload missing: %v", err)
	}
}

func TestYtdlpExtractDirectURL(t *testing.T) {
	staging := t.TempDir()
	client, err := extractor.NewYtdlp(config.Default().Extractor, staging)
	if err != nil {
		t.Fatalf("NewYtdlp failed: %v", err)
	}

	var probeTarget string
	client.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if containsArg(args, "--skip-download") {
			probeTarget = args[len(args)-1]
			return []byte(`{"id":"dQw4w9WgXcQ","title":"Direct Hit","duration":212}`), nil
		}
		testsupport.WritePayload(t, filepath.Join(staging, "ytdlp_dQw4w9WgXcQ.mp3"), 32)
		return nil, nil
	})

	url := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	result, err := client.Extract(context.Background(), url, catalog.MediaKindAudio)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if probeTarget != url {
		t.Fatalf("expected direct URL target, got %q", probeTarget)
	}
	if result.ExternalID != "dQw4w9WgXcQ" {
		t.Fatalf("unexpected external id: %q", result.ExternalID)
	}
}

func TestYtdlpExtractBoundsHungCommand(t *testing.T) {
	cfg := config.Default().Extractor
	cfg.TimeoutSeconds = 1
	client, err := extractor.NewYtdlp(cfg, t.TempDir())
	if err != nil {
		t.Fatalf("NewYtdlp failed: %v", err)
	}
	client.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	// The caller passes no deadline; the configured timeout must still
	// unblock a yt-dlp invocation that never returns.
	done := make(chan error, 1)
	go func() {
		_, err := client.Extract(context.Background(), "never finishes", catalog.MediaKindAudio)
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline exceeded, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Extract still blocked past the configured timeout")
	}
}

func TestYtdlpExtractNoHit(t *testing.T) {
	client, err := extractor.NewYtdlp(config.Default().Extractor, t.TempDir())
	if err != nil {
		t.Fatalf("NewYtdlp failed: %v", err)
	}
	client.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte(`{"entries":[]}`), nil
	})

	_, err = client.Extract(context.Background(), "definitely nothing", catalog.MediaKindAudio)
	if !errors.Is(err, extractor.ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

type fakeExtractor struct {
	result *extractor.Result
	err    error
	calls  int
}

func (f *fakeExtractor) Extract(ctx context.Context, query string, kind catalog.MediaKind) (*extractor.Result, error) {
	f.calls++
	return f.result, f.err
}

func TestChainFallsBackOnFailure(t *testing.T) {
	failing := &fakeExtractor{err: fmt.Errorf("remote down")}
	working := &fakeExtractor{result: &extractor.Result{Title: "Fallback", SourceTag: "yt-dlp"}}
	chain := extractor.NewChain(nil, failing, working)

	result, err := chain.Extract(context.Background(), "anything", catalog.MediaKindAudio)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if result.SourceTag != "yt-dlp" {
		t.Fatalf("expected fallback result, got %#v", result)
	}
	if failing.calls != 1 || working.calls != 1 {
		t.Fatalf("unexpected call counts: %d, %d", failing.calls, working.calls)
	}
}

func TestChainReportsLastError(t *testing.T) {
	first := &fakeExtractor{err: fmt.Errorf("remote down")}
	second := &fakeExtractor{err: extractor.ErrNoResult}
	chain := extractor.NewChain(nil, first, second)

	_, err := chain.Extract(context.Background(), "anything", catalog.MediaKindAudio)
	if !errors.Is(err, extractor.ErrNoResult) {
		t.Fatalf("expected last error, got %v", err)
	}
}

func TestChainStopsOnCancelledContext(t *testing.T) {
	ext := &fakeExtractor{result: &extractor.Result{Title: "never"}}
	chain := extractor.NewChain(nil, ext)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := chain.Extract(ctx, "anything", catalog.MediaKindAudio); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ext.calls != 0 {
		t.Fatal("extractor must not run after cancellation")
	}
}

func containsArg(args []string, want string) bool {
	for _, arg := range args {
		if strings.Contains(arg, want) {
			return true
		}
	}
	return false
}
