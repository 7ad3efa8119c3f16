package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"mediavault/internal/catalog"
	"mediavault/internal/config"
	"mediavault/internal/textutil"
)

// remoteResponse models the extraction API's search payload.
type remoteResponse struct {
	Status    string `json:"status"`
	StreamURL string `json:"stream_url"`
	Title     string `json:"title"`
	VideoID   string `json:"video_id"`
	Duration  int64  `json:"duration"`
}

// RemoteClient extracts media through the hosted extraction API and
// downloads the resulting stream into the staging directory.
type RemoteClient struct {
	apiURL     string
	apiKey     string
	stagingDir string
	formats    config.Extractor
	httpClient *http.Client
}

// RemoteOption configures a RemoteClient.
type RemoteOption func(*RemoteClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(c *RemoteClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewRemote creates a remote extraction client.
func NewRemote(cfg config.Extractor, stagingDir string, opts ...RemoteOption) (*RemoteClient, error) {
	apiURL := strings.TrimSpace(cfg.RemoteAPIURL)
	if apiURL == "" {
		return nil, errors.New("remote extraction api url required")
	}
	if strings.TrimSpace(stagingDir) == "" {
		return nil, errors.New("staging directory required")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := &RemoteClient{
		apiURL:     strings.TrimRight(apiURL, "/"),
		apiKey:     strings.TrimSpace(cfg.RemoteAPIKey),
		stagingDir: stagingDir,
		formats:    cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Extract queries the remote API and downloads the stream it returns.
func (c *RemoteClient) Extract(ctx context.Context, query string, kind catalog.MediaKind) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}

	endpoint, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("parse extraction api url: %w", err)
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("video", strconv.FormatBool(kind == catalog.MediaKindVideo))
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction api returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode extraction response: %w", err)
	}
	if payload.Status != "success" || payload.StreamURL == "" {
		return nil, ErrNoResult
	}

	localPath, size, err := c.download(ctx, payload.StreamURL, payload.Title, kind)
	if err != nil {
		return nil, err
	}

	return &Result{
		Title:        payload.Title,
		ExternalID:   payload.VideoID,
		DurationSecs: payload.Duration,
		LocalPath:    localPath,
		SizeBytes:    size,
		SourceTag:    "remote",
	}, nil
}

// download streams the payload into the staging directory. Partial files
// are removed on failure.
func (c *RemoteClient) download(ctx context.Context, streamURL, title string, kind catalog.MediaKind) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("build download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("download stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("stream download returned %d", resp.StatusCode)
	}

	if err := os.MkdirAll(c.stagingDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("ensure staging dir: %w", err)
	}

	name := fmt.Sprintf("remote_%s_%s.%s",
		textutil.SanitizeFileName(title),
		uuid.NewString()[:8],
		payloadExtension(c.formats, kind))
	target := filepath.Join(c.stagingDir, name)

	out, err := os.Create(target)
	if err != nil {
		return "", 0, fmt.Errorf("create payload file: %w", err)
	}
	size, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(target)
		return "", 0, fmt.Errorf("write payload file: %w", err)
	}
	return target, size, nil
}

func payloadExtension(cfg config.Extractor, kind catalog.MediaKind) string {
	if kind == catalog.MediaKindVideo {
		if cfg.VideoFormat != "" {
			return cfg.VideoFormat
		}
		return "mp4"
	}
	if cfg.AudioFormat != "" {
		return cfg.AudioFormat
	}
	return "mp3"
}
