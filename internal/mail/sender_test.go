package mail

import (
	"context"
	"net/smtp"
	"strings"
	"testing"
)

func TestSenderSend(t *testing.T) {
	t.Parallel()

	t.Run("builds an HTML message with sender identity", func(t *testing.T) {
		t.Parallel()

		sender, err := NewSender(Config{Addr: "smtp.example.com:587", From: "noreply@example.com"}, nil)
		if err != nil {
			t.Fatalf("NewSender failed: %v", err)
		}

		var gotAddr, gotFrom string
		var gotTo []string
		var gotMsg []byte
		sender.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
			return nil
		}

		if err := sender.Send(context.Background(), "user@example.com", "Hello", "<p>Hi</p>"); err != nil {
			t.Fatalf("Send failed: %v", err)
		}

		if gotAddr != "smtp.example.com:587" || gotFrom != "noreply@example.com" {
			t.Fatalf("unexpected endpoint %s from %s", gotAddr, gotFrom)
		}
		if len(gotTo) != 1 || gotTo[0] != "user@example.com" {
			t.Fatalf("unexpected recipients %v", gotTo)
		}

		message := string(gotMsg)
		for _, want := range []string{"Subject: Hello", "Content-Type: text/html", "<p>Hi</p>"} {
			if !strings.Contains(message, want) {
				t.Fatalf("expected message to contain %q, got:\n%s", want, message)
			}
		}
	})

	t.Run("honours a cancelled context", func(t *testing.T) {
		t.Parallel()

		sender, err := NewSender(Config{Addr: "smtp.example.com:587", From: "noreply@example.com"}, nil)
		if err != nil {
			t.Fatalf("NewSender failed: %v", err)
		}
		sender.send = func(string, smtp.Auth, string, []string, []byte) error {
			t.Fatal("send must not be reached")
			return nil
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := sender.Send(ctx, "user@example.com", "Hello", "<p>Hi</p>"); err == nil {
			t.Fatal("expected context error")
		}
	})

	t.Run("rejects incomplete configuration", func(t *testing.T) {
		t.Parallel()

		if _, err := NewSender(Config{From: "noreply@example.com"}, nil); err == nil {
			t.Fatal("expected error for missing addr")
		}
		if _, err := NewSender(Config{Addr: "smtp.example.com:587"}, nil); err == nil {
			t.Fatal("expected error for missing from")
		}
	})
}
