package blobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"mediavault/internal/config"
)

// announcement is the JSON body published for every stored payload.
type announcement struct {
	Object      string `json:"object"`
	Fingerprint string `json:"fingerprint"`
	Title       string `json:"title"`
	MediaKind   string `json:"media_kind"`
	SizeBytes   int64  `json:"size_bytes"`
	SourceTag   string `json:"source_tag"`
	StoredAt    string `json:"stored_at"`
}

// NATSStore implements Store on a NATS JetStream deployment. Payload bytes
// go into an object store bucket; an announcement published on the
// configured subject yields the sequence token.
type NATSStore struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	objects nats.ObjectStore
	subject string
	timeout time.Duration
}

// NewNATS connects to the configured NATS deployment and provisions the
// bucket and stream if they do not exist yet.
func NewNATS(cfg config.BlobStore) (*NATSStore, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("blob store url required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("blob store bucket required")
	}
	if strings.TrimSpace(cfg.Subject) == "" {
		return nil, errors.New("blob store subject required")
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name("mediavault"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("open jetstream context: %w", err)
	}

	objects, err := js.ObjectStore(cfg.Bucket)
	if errors.Is(err, nats.ErrStreamNotFound) {
		objects, err = js.CreateObjectStore(&nats.ObjectStoreConfig{
			Bucket:      cfg.Bucket,
			Description: "mediavault payload bytes",
		})
	}
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("open object store bucket %q: %w", cfg.Bucket, err)
	}

	streamName := streamNameFor(cfg.Subject)
	if _, err := js.StreamInfo(streamName); errors.Is(err, nats.ErrStreamNotFound) {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     streamName,
			Subjects: []string{cfg.Subject},
			Storage:  nats.FileStorage,
		})
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("create announcement stream: %w", err)
		}
	} else if err != nil {
		nc.Close()
		return nil, fmt.Errorf("inspect announcement stream: %w", err)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &NATSStore{nc: nc, js: js, objects: objects, subject: cfg.Subject, timeout: timeout}, nil
}

// Put uploads the payload file and publishes its announcement. The
// announcement's stream sequence becomes the Ref's ordering token.
func (s *NATSStore) Put(ctx context.Context, localPath string, meta Metadata) (Ref, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return Ref{}, fmt.Errorf("open payload: %w", err)
	}
	defer file.Close()

	putCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	objectName := uuid.NewString()
	info, err := s.objects.Put(&nats.ObjectMeta{
		Name:        objectName,
		Description: meta.Title,
		Headers: nats.Header{
			"Mediavault-Fingerprint": []string{meta.Fingerprint},
			"Mediavault-Kind":        []string{meta.MediaKind},
			"Mediavault-Source":      []string{meta.SourceTag},
		},
	}, file, nats.Context(putCtx))
	if err != nil {
		return Ref{}, fmt.Errorf("upload payload object: %w", err)
	}

	body, err := json.Marshal(announcement{
		Object:      info.Name,
		Fingerprint: meta.Fingerprint,
		Title:       meta.Title,
		MediaKind:   meta.MediaKind,
		SizeBytes:   meta.SizeBytes,
		SourceTag:   meta.SourceTag,
		StoredAt:    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return Ref{}, fmt.Errorf("encode announcement: %w", err)
	}

	ack, err := s.js.Publish(s.subject, body, nats.Context(putCtx))
	if err != nil {
		// The uploaded object is orphaned collateral; remove it so the
		// bucket does not accumulate unannounced payloads.
		_ = s.objects.Delete(objectName)
		return Ref{}, fmt.Errorf("publish announcement: %w", err)
	}

	return Ref{Locator: info.Name, Sequence: ack.Sequence}, nil
}

// Close releases the NATS connection.
func (s *NATSStore) Close() {
	if s != nil && s.nc != nil {
		s.nc.Close()
	}
}

func streamNameFor(subject string) string {
	name := strings.ToUpper(strings.ReplaceAll(subject, ".", "_"))
	return strings.ReplaceAll(name, ">", "ALL")
}
