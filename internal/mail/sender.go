// Package mail delivers notification messages over SMTP.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/smtp"
	"strings"
)

const fromName = "Meeting Room Booking System"

// Config carries the SMTP endpoint and credentials.
type Config struct {
	// Addr is the host:port of the SMTP server.
	Addr string
	// From is the envelope and header sender address.
	From string
	// Username and Password authenticate with PLAIN auth when Username is
	// non-empty.
	Username string
	Password string
}

// Sender delivers HTML messages through a single SMTP endpoint.
type Sender struct {
	config Config
	send   func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
	logger *slog.Logger
}

// NewSender builds a Sender for the endpoint described by config.
func NewSender(config Config, logger *slog.Logger) (*Sender, error) {
	if config.Addr == "" {
		return nil, fmt.Errorf("mail: addr is required")
	}
	if config.From == "" {
		return nil, fmt.Errorf("mail: from address is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{config: config, send: smtp.SendMail, logger: logger}, nil
}

// Send delivers one HTML message. The context is honoured up front; the
// underlying SMTP dial itself is not cancellable.
func (s *Sender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.config.Username != "" {
		host := s.config.Addr
		if idx := strings.LastIndex(host, ":"); idx >= 0 {
			host = host[:idx]
		}
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, host)
	}

	msg := buildMessage(s.config.From, to, subject, htmlBody)
	if err := s.send(s.config.Addr, auth, s.config.From, []string{to}, msg); err != nil {
		s.logger.ErrorContext(ctx, "mail delivery failed", "to", to, "subject", subject, "error", err)
		return fmt.Errorf("mail: send to %s: %w", to, err)
	}

	s.logger.InfoContext(ctx, "mail delivered", "to", to, "subject", subject)
	return nil
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", fromName), from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
