package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"postbeat/internal/config"
)

const userAgent = "postbeat/0.1.0"

// Service defines the notification surface exposed to the publishing workflow.
type Service interface {
	NotifyPostPublished(ctx context.Context, folder string, published, skipped int) error
	NotifyPostPartialFailure(ctx context.Context, folder string, published, failed int) error
	NotifyNothingPending(ctx context.Context) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
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

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
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
	client   *http.Client
}

func (n *ntfyService) NotifyPostPublished(ctx context.Context, folder string, published, skipped int) error {
	message := fmt.Sprintf("Published %s to %d platform(s)", strings.TrimSpace(folder), published)
	if skipped > 0 {
		message = fmt.Sprintf("%s (%d skipped by policy)", message, skipped)
	}
	data := payload{
		title:   "Postbeat - Published",
		message: message,
		tags:    []string{"postbeat", "publish", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPostPartialFailure(ctx context.Context, folder string, published, failed int) error {
	data := payload{
		title:    "Postbeat - Partial Failure",
		message:  fmt.Sprintf("%s: %d published, %d failed; post stays queued for retry", strings.TrimSpace(folder), published, failed),
		tags:     []string{"postbeat", "publish", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyNothingPending(ctx context.Context) error {
	data := payload{
		title:   "Postbeat - Queue Empty",
		message: "Scheduled run found no pending posts",
		tags:    []string{"postbeat", "queue", "empty"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" during ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Postbeat - Error",
		message:  builder.String(),
		tags:     []string{"postbeat", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Postbeat - Test",
		message:  "Notification system test",
		tags:     []string{"postbeat", "test"},
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

func (noopService) NotifyPostPublished(context.Context, string, int, int) error      { return nil }
func (noopService) NotifyPostPartialFailure(context.Context, string, int, int) error { return nil }
func (noopService) NotifyNothingPending(context.Context) error                       { return nil }
func (noopService) NotifyError(context.Context, error, string) error                 { return nil }
func (noopService) TestNotification(context.Context) error                           { return nil }
