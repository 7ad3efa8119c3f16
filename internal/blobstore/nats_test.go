package blobstore

import (
	"testing"

	"mediavault/internal/config"
)

func TestNewNATSValidatesConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.BlobStore
	}{
		{"missing url", config.BlobStore{Bucket: "b", Subject: "s"}},
		{"missing bucket", config.BlobStore{URL: "nats://localhost:4222", Subject: "s"}},
		{"missing subject", config.BlobStore{URL: "nats://localhost:4222", Bucket: "b"}},
	}
	for _, tc := range cases {
		if _, err := NewNATS(tc.cfg); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestStreamNameFor(t *testing.T) {
	if got := streamNameFor("mediavault.artifacts"); got != "MEDIAVAULT_ARTIFACTS" {
		t.Fatalf("unexpected stream name %q", got)
	}
}
