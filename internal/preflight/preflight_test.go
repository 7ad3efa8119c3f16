package preflight

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediavault/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckRemoteExtractor_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := CheckRemoteExtractor(context.Background(), srv.URL)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckRemoteExtractor_Unreachable(t *testing.T) {
	result := CheckRemoteExtractor(context.Background(), "http://127.0.0.1:1/")
	if result.Passed {
		t.Fatal("expected failure for closed port")
	}
}

func TestCheckBlobStore(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	result := CheckBlobStore("nats://" + listener.Addr().String())
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}

	result = CheckBlobStore("nats://127.0.0.1:1")
	if result.Passed {
		t.Fatal("expected failure for closed port")
	}

	result = CheckBlobStore("")
	if result.Passed || result.Detail != "missing url" {
		t.Fatalf("unexpected result for empty url: %+v", result)
	}
}

func TestRunAllReportsDirectoryAndBinaryChecks(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	cfg.BlobStore.URL = "nats://127.0.0.1:1"

	results := RunAll(context.Background(), cfg)
	if len(results) == 0 {
		t.Fatal("expected preflight results")
	}

	byName := map[string]Result{}
	for _, result := range results {
		byName[result.Name] = result
	}

	for _, name := range []string{"Staging directory", "Data directory", "Log directory"} {
		result, ok := byName[name]
		if !ok {
			t.Fatalf("missing check %q in %+v", name, results)
		}
		if !result.Passed {
			t.Errorf("%s check failed: %s", name, result.Detail)
		}
	}

	ytdlp, ok := byName["yt-dlp"]
	if !ok {
		t.Fatalf("missing yt-dlp check in %+v", results)
	}
	if !ytdlp.Passed {
		t.Errorf("expected stubbed yt-dlp to pass: %s", ytdlp.Detail)
	}

	blob, ok := byName["Blob store"]
	if !ok {
		t.Fatalf("missing blob store check in %+v", results)
	}
	if blob.Passed {
		t.Error("expected blob store check to fail against a closed port")
	}
	if strings.Contains(blob.Detail, "missing") {
		t.Errorf("unexpected detail: %s", blob.Detail)
	}
}
