package testsupport

import (
	"context"
	"fmt"
	"testing"

	"mediavault/internal/catalog"
	"mediavault/internal/config"
	"mediavault/internal/textutil"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedArtifact registers an artifact for the given query with plausible
// defaults and fails the test on error or conflict.
func SeedArtifact(t testing.TB, store *catalog.Store, query string) *catalog.Artifact {
	t.Helper()

	artifact := &catalog.Artifact{
		Fingerprint:   textutil.Fingerprint(query),
		OriginalQuery: query,
		Title:         query,
		MediaKind:     catalog.MediaKindAudio,
		BlobRef:       fmt.Sprintf("blob-%s", textutil.Fingerprint(query)[:12]),
	}
	stored, inserted, err := store.InsertIfAbsent(context.Background(), artifact)
	if err != nil {
		t.Fatalf("store.InsertIfAbsent: %v", err)
	}
	if !inserted {
		t.Fatalf("artifact for query %q already present", query)
	}
	return stored
}
