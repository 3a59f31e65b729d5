package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"transcodesched/internal/config"
)

const userAgent = "transcodesched/0.1.0"

// Service defines the daemon-level notification surface.
type Service interface {
	NotifySessionFailed(ctx context.Context, sessionKey string, code int32) error
	NotifyResourceLost(ctx context.Context) error
	NotifyResourceAvailable(ctx context.Context) error
	NotifyQueueDrained(ctx context.Context, handled int, duration time.Duration) error
	NotifyDaemonStarted(ctx context.Context, backend string) error
	NotifyDaemonStopping(ctx context.Context, reason string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
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
	client   *http.Client
}

func (n *ntfyService) NotifySessionFailed(ctx context.Context, sessionKey string, code int32) error {
	data := payload{
		title:    "transcodesched - session failed",
		message:  fmt.Sprintf("session %s failed with code %d", sessionKey, code),
		tags:     []string{"transcodesched", "session", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyResourceLost(ctx context.Context) error {
	data := payload{
		title:   "transcodesched - resource lost",
		message: "codec resource unavailable, all sessions paused",
		tags:    []string{"transcodesched", "resource", "lost"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyResourceAvailable(ctx context.Context) error {
	data := payload{
		title:   "transcodesched - resource available",
		message: "codec resource available again, resuming top session",
		tags:    []string{"transcodesched", "resource", "available"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyQueueDrained(ctx context.Context, handled int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	data := payload{
		title:   "transcodesched - queue drained",
		message: fmt.Sprintf("%d sessions handled in %s, no sessions remain", handled, duration),
		tags:    []string{"transcodesched", "queue", "drained"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDaemonStarted(ctx context.Context, backend string) error {
	data := payload{
		title:   "transcodesched - daemon started",
		message: fmt.Sprintf("controller started with %s backend", backend),
		tags:    []string{"transcodesched", "daemon", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDaemonStopping(ctx context.Context, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "shutdown requested"
	}
	data := payload{
		title:   "transcodesched - daemon stopping",
		message: reason,
		tags:    []string{"transcodesched", "daemon", "stopping"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "transcodesched - test",
		message:  "notification system test",
		tags:     []string{"transcodesched", "test"},
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

func (noopService) NotifySessionFailed(context.Context, string, int32) error            { return nil }
func (noopService) NotifyResourceLost(context.Context) error                           { return nil }
func (noopService) NotifyResourceAvailable(context.Context) error                      { return nil }
func (noopService) NotifyQueueDrained(context.Context, int, time.Duration) error        { return nil }
func (noopService) NotifyDaemonStarted(context.Context, string) error                  { return nil }
func (noopService) NotifyDaemonStopping(context.Context, string) error                 { return nil }
func (noopService) TestNotification(context.Context) error                             { return nil }
