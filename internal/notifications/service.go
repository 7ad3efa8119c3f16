package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mediavault/internal/catalog"
	"mediavault/internal/config"
)

const userAgent = "Mediavault/0.1.0"

// Service defines the notification surface exposed to engine components.
type Service interface {
	NotifyAcquisitionComplete(ctx context.Context, title string, kind catalog.MediaKind) error
	NotifyAcquisitionFailed(ctx context.Context, query string, cause error) error
	NotifySweepCompleted(ctx context.Context, removed int64, cutoff time.Time) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		cfg:      cfg.Notifications,
		client:   client,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	cfg      config.Notifications
	client   *http.Client
}

func (n *ntfyService) NotifyAcquisitionComplete(ctx context.Context, title string, kind catalog.MediaKind) error {
	if !n.cfg.Acquisition {
		return nil
	}
	title = strings.TrimSpace(title)
	data := payload{
		title:   "Mediavault - Acquired",
		message: fmt.Sprintf("Acquired %s: %s", kind, title),
		tags:    []string{"mediavault", "acquire", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyAcquisitionFailed(ctx context.Context, query string, cause error) error {
	if !n.cfg.Acquisition {
		return nil
	}
	query = strings.TrimSpace(query)
	message := fmt.Sprintf("Acquisition failed for: %s", query)
	if cause != nil {
		message = fmt.Sprintf("%s\n%s", message, strings.TrimSpace(cause.Error()))
	}
	data := payload{
		title:    "Mediavault - Acquisition Failed",
		message:  message,
		tags:     []string{"mediavault", "acquire", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySweepCompleted(ctx context.Context, removed int64, cutoff time.Time) error {
	if !n.cfg.Sweep {
		return nil
	}
	data := payload{
		title:   "Mediavault - Sweep Complete",
		message: fmt.Sprintf("Removed %d records older than %s", removed, cutoff.Format("2006-01-02")),
		tags:    []string{"mediavault", "janitor", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.cfg.Errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Mediavault - Error",
		message:  builder.String(),
		tags:     []string{"mediavault", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Mediavault - Test",
		message:  "Notification system test",
		tags:     []string{"mediavault", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyAcquisitionComplete(context.Context, string, catalog.MediaKind) error {
	return nil
}
func (noopService) NotifyAcquisitionFailed(context.Context, string, error) error { return nil }
func (noopService) NotifySweepCompleted(context.Context, int64, time.Time) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error             { return nil }
func (noopService) TestNotification(context.Context) error                       { return nil }
