package extractor_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"mediavault/internal/catalog"
	"mediavault/internal/config"
	"mediavault/internal/extractor"
)

func remoteConfig(apiURL string) config.Extractor {
	cfg := config.Default().Extractor
	cfg.RemoteAPIURL = apiURL
	cfg.RemoteAPIKey = "test-key"
	return cfg
}

func TestRemoteExtractSuccess(t *testing.T) {
	payload := []byte("fake audio bytes")
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got != "295 sidhu moosewala" {
			t.Errorf("unexpected query param: %q", got)
		}
		if got := r.URL.Query().Get("api_key"); got != "test-key" {
			t.Errorf("unexpected api key: %q", got)
		}
		fmt.Fprintf(w, `{"status":"success","stream_url":%q,"title":"295","video_id":"a1b2c3d4e5f","duration":273}`,
			server.URL+"/stream")
	})
	mux.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	})

	staging := t.TempDir()
	client, err := extractor.NewRemote(remoteConfig(server.URL+"/search"), staging)
	if err != nil {
		t.Fatalf("NewRemote failed: %v", err)
	}

	result, err := client.Extract(context.Background(), "295 sidhu moosewala", catalog.MediaKindAudio)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if result.Title != "295" || result.ExternalID != "a1b2c3d4e5f" || result.DurationSecs != 273 {
		t.Fatalf("unexpected metadata: %#v", result)
	}
	if result.SourceTag != "remote" {
		t.Fatalf("unexpected source tag: %q", result.SourceTag)
	}
	if result.SizeBytes != int64(len(payload)) {
		t.Fatalf("expected size %d, got %d", len(payload), result.SizeBytes)
	}

	data, err := os.ReadFile(result.LocalPath)
	if err != nil {
		t.Fatalf("read payload: %v", err)
	}
	if string(data) != string(payload) {
		t.Fatal("payload content mismatch")
	}
}

func TestRemoteExtractNoResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"error"}`)
	}))
	defer server.Close()

	client, err := extractor.NewRemote(remoteConfig(server.URL), t.TempDir())
	if err != nil {
		t.Fatalf("NewRemote failed: %v", err)
	}

	_, err = client.Extract(context.Background(), "no such song", catalog.MediaKindAudio)
	if !errors.Is(err, extractor.ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

func TestRemoteExtractServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := extractor.NewRemote(remoteConfig(server.URL), t.TempDir())
	if err != nil {
		t.Fatalf("NewRemote failed: %v", err)
	}

	if _, err := client.Extract(context.Background(), "anything", catalog.MediaKindAudio); err == nil {
		t.Fatal("expected error on server failure")
	}
}

func TestNewRemoteRequiresURL(t *testing.T) {
	if _, err := extractor.NewRemote(config.Extractor{}, t.TempDir()); err == nil {
		t.Fatal("expected error without api url")
	}
}
