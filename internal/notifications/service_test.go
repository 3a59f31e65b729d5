package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"transcodesched/internal/config"
	"transcodesched/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyResourceLost(context.Background()); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsSessionFailed(t *testing.T) {
	var captured struct {
		title    string
		tags     string
		priority string
		body     string
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		captured.title = r.Header.Get("Title")
		captured.tags = r.Header.Get("Tags")
		captured.priority = r.Header.Get("Priority")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		captured.body = string(body)
		_ = r.Body.Close()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.RequestTimeoutSeconds = 5

	svc := notifications.NewService(&cfg)
	if err := svc.NotifySessionFailed(context.Background(), "{client:1, session:2}", 3); err != nil {
		t.Fatalf("notification returned error: %v", err)
	}

	if captured.title != "transcodesched - session failed" {
		t.Fatalf("unexpected title: %q", captured.title)
	}
	if captured.body != "session {client:1, session:2} failed with code 3" {
		t.Fatalf("unexpected message: %q", captured.body)
	}
	if captured.tags != "transcodesched,session,failed" {
		t.Fatalf("unexpected tags: %q", captured.tags)
	}
	if captured.priority != "high" {
		t.Fatalf("unexpected priority: %q", captured.priority)
	}
}

func TestNtfyServiceRejectsNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	if err := svc.NotifyDaemonStarted(context.Background(), "sim"); err == nil {
		t.Fatal("expected error for non-2xx ntfy response")
	}
}
