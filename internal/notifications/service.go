package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ugm616/news-automation-n8n/internal/config"
)

const userAgent = "rumble-uploader/0.1.0"

// Service defines the notification surface exposed to the workflow.
type Service interface {
	NotifyPublished(ctx context.Context, title, videoURL string) error
	NotifyFailed(ctx context.Context, title, kind, message string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:  topic,
		client:    &http.Client{Timeout: timeout},
		published: cfg.Notifications.Published,
		failed:    cfg.Notifications.Failed,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
	click    string
}

type ntfyService struct {
	endpoint  string
	client    *http.Client
	published bool
	failed    bool
}

func (n *ntfyService) NotifyPublished(ctx context.Context, title, videoURL string) error {
	if !n.published {
		return nil
	}
	title = strings.TrimSpace(title)
	videoURL = strings.TrimSpace(videoURL)
	message := fmt.Sprintf("✅ Published: %s", title)
	if videoURL != "" {
		message = fmt.Sprintf("%s\n%s", message, videoURL)
	}
	return n.send(ctx, payload{
		title:   "Rumble - Published",
		message: message,
		tags:    []string{"rumble", "publish", "completed"},
		click:   videoURL,
	})
}

func (n *ntfyService) NotifyFailed(ctx context.Context, title, kind, message string) error {
	if !n.failed {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("❌ ")
	if kind = strings.TrimSpace(kind); kind != "" {
		builder.WriteString(kind)
	} else {
		builder.WriteString("Error")
	}
	if title = strings.TrimSpace(title); title != "" {
		builder.WriteString(" publishing ")
		builder.WriteString(title)
	}
	builder.WriteString(": ")
	if message = strings.TrimSpace(message); message != "" {
		builder.WriteString(message)
	} else {
		builder.WriteString("unknown")
	}
	return n.send(ctx, payload{
		title:    "Rumble - Publish Failed",
		message:  builder.String(),
		tags:     []string{"rumble", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "Rumble - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"rumble", "test"},
		priority: "low",
	})
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
	if data.click != "" {
		req.Header.Set("Click", data.click)
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

func (noopService) NotifyPublished(context.Context, string, string) error      { return nil }
func (noopService) NotifyFailed(context.Context, string, string, string) error { return nil }
func (noopService) TestNotification(context.Context) error                     { return nil }
