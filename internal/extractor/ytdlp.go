package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"mediavault/internal/catalog"
	"mediavault/internal/config"
)

var youtubeURLPattern = regexp.MustCompile(`youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/v/`)

// ytdlpInfo models the subset of yt-dlp's JSON dump consumed here.
type ytdlpInfo struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	Entries  []struct {
		ID       string  `json:"id"`
		Title    string  `json:"title"`
		Duration float64 `json:"duration"`
	} `json:"entries"`
}

// YtdlpClient extracts media by shelling out to yt-dlp. It serves as the
// fallback when the remote API yields nothing.
type YtdlpClient struct {
	binary        string
	stagingDir    string
	formats       config.Extractor
	timeout       time.Duration
	commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewYtdlp creates a yt-dlp backed extractor.
func NewYtdlp(cfg config.Extractor, stagingDir string) (*YtdlpClient, error) {
	binary := strings.TrimSpace(cfg.YtdlpBinary)
	if binary == "" {
		binary = "yt-dlp"
	}
	if strings.TrimSpace(stagingDir) == "" {
		return nil, errors.New("staging directory required")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &YtdlpClient{binary: binary, stagingDir: stagingDir, formats: cfg, timeout: timeout}, nil
}

// WithCommandRunner sets a custom command runner (for testing).
func (c *YtdlpClient) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	c.commandRunner = runner
}

// Extract looks up the query with yt-dlp and downloads the first hit.
func (c *YtdlpClient) Extract(ctx context.Context, query string, kind catalog.MediaKind) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}

	target := query
	if !youtubeURLPattern.MatchString(query) {
		target = "ytsearch1:" + query
	}

	info, err := c.probe(ctx, target)
	if err != nil {
		return nil, err
	}
	if info.ID == "" {
		return nil, ErrNoResult
	}

	localPath, size, err := c.fetch(ctx, info.ID, kind)
	if err != nil {
		return nil, err
	}

	return &Result{
		Title:        info.Title,
		ExternalID:   info.ID,
		DurationSecs: int64(info.Duration),
		LocalPath:    localPath,
		SizeBytes:    size,
		SourceTag:    "yt-dlp",
	}, nil
}

// probe runs the metadata-only pass and flattens search results.
func (c *YtdlpClient) probe(ctx context.Context, target string) (*ytdlpInfo, error) {
	output, err := c.run(ctx, "--dump-single-json", "--no-warnings", "--skip-download", target)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp probe: %w", err)
	}

	var info ytdlpInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}
	if len(info.Entries) > 0 {
		first := info.Entries[0]
		info.ID = first.ID
		info.Title = first.Title
		info.Duration = first.Duration
	}
	return &info, nil
}

// fetch downloads the identified media into the staging directory and
// locates the produced file. yt-dlp may pick a different container than
// requested, so the lookup tolerates a small set of extensions.
func (c *YtdlpClient) fetch(ctx context.Context, externalID string, kind catalog.MediaKind) (string, int64, error) {
	if err := os.MkdirAll(c.stagingDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("ensure staging dir: %w", err)
	}

	outTemplate := filepath.Join(c.stagingDir, "ytdlp_"+externalID+".%(ext)s")
	args := []string{"--no-warnings", "-o", outTemplate}
	if kind == catalog.MediaKindVideo {
		args = append(args, "-f", "best")
	} else {
		audioFormat := c.formats.AudioFormat
		if audioFormat == "" {
			audioFormat = "mp3"
		}
		args = append(args, "-x", "--audio-format", audioFormat)
		if c.formats.AudioQuality != "" {
			args = append(args, "--audio-quality", c.formats.AudioQuality)
		}
	}
	args = append(args, "https://www.youtube.com/watch?v="+externalID)

	if _, err := c.run(ctx, args...); err != nil {
		return "", 0, fmt.Errorf("yt-dlp download: %w", err)
	}

	base := filepath.Join(c.stagingDir, "ytdlp_"+externalID)
	for _, ext := range []string{c.formats.AudioFormat, c.formats.VideoFormat, "mp3", "mp4", "m4a", "webm", "opus"} {
		if ext == "" {
			continue
		}
		candidate := base + "." + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, info.Size(), nil
		}
	}
	return "", 0, errors.New("downloaded payload not found in staging dir")
}

// run executes one yt-dlp invocation under the configured timeout, so a
// hung process cannot block the caller past the extraction bound even
// when the incoming context has no deadline.
func (c *YtdlpClient) run(ctx context.Context, args ...string) ([]byte, error) {
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if c.commandRunner != nil {
		return c.commandRunner(runCtx, c.binary, args...)
	}
	cmd := exec.CommandContext(runCtx, c.binary, args...) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s: %w: %s", c.binary, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s: %w", c.binary, err)
	}
	return output, nil
}
