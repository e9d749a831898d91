package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/example/roombook/internal/config"
	"github.com/example/roombook/internal/kvstore"
)

func TestNewEphemeralStoreFallsBackWithoutRedis(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := newEphemeralStore(context.Background(), config.Config{}, logger)
	if err != nil {
		t.Fatalf("newEphemeralStore failed: %v", err)
	}
	if _, ok := store.(*kvstore.MemoryStore); !ok {
		t.Fatalf("expected the in-process store, got %T", store)
	}
}

func TestNewMailerLogsWhenUnconfigured(t *testing.T) {
	var logOutput strings.Builder
	logger := slog.New(slog.NewTextHandler(&logOutput, nil))

	mailer, err := newMailer(config.Config{}, logger)
	if err != nil {
		t.Fatalf("newMailer failed: %v", err)
	}

	if err := mailer.Send(context.Background(), "user@example.com", "CAPTCHA", "<p>123456</p>"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if !strings.Contains(logOutput.String(), "mail suppressed") {
		t.Fatalf("expected suppression log, got %q", logOutput.String())
	}
	if !strings.Contains(logOutput.String(), "user@example.com") {
		t.Fatalf("expected recipient in the log, got %q", logOutput.String())
	}
}

func TestLogMailerHonoursContext(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := logMailer{logger: logger}.Send(ctx, "user@example.com", "CAPTCHA", "<p>123456</p>")
	if err == nil {
		t.Fatal("expected the cancelled context error")
	}
}

func TestNewMailerRejectsIncompleteSMTPConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := newMailer(config.Config{SMTPAddr: "smtp.example.com:587"}, logger); err == nil {
		t.Fatal("expected missing from address to be rejected")
	}
}
