package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// EmailConfig holds the SMTP settings for the email channel.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// sendMailFunc submits a rendered email. Overridable in tests.
type sendMailFunc func(ctx context.Context, cfg EmailConfig, msg []byte) error

// Email sends notifications over SMTP with implicit TLS.
type Email struct {
	cfg  EmailConfig
	send sendMailFunc
}

var _ Notifier = (*Email)(nil)

// NewEmail builds an email notifier from SMTP settings.
func NewEmail(cfg EmailConfig) *Email {
	return &Email{
		cfg:  cfg,
		send: sendOverTLS,
	}
}

func (e *Email) Notify(ctx context.Context, title, message string) error {
	msg := buildMessage(e.cfg.From, e.cfg.To, title, message)
	if err := e.send(ctx, e.cfg, msg); err != nil {
		return fmt.Errorf("sending notification email: %w", err)
	}
	return nil
}

// buildMessage renders an RFC 5322 message with CRLF line endings.
func buildMessage(from string, to []string, subject, body string) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s\r\n", from)
	fmt.Fprintf(&sb, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&sb, "Subject: %s\r\n", subject)
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	sb.WriteString("\r\n")
	return []byte(sb.String())
}

// sendOverTLS dials the SMTP server with implicit TLS and submits msg.
func sendOverTLS(ctx context.Context, cfg EmailConfig, msg []byte) error {
	addr := net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port))

	dialer := &tls.Dialer{Config: &tls.Config{ServerName: cfg.Host}}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if cfg.Username != "" {
		auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(cfg.From); err != nil {
		return err
	}
	for _, rcpt := range cfg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}
