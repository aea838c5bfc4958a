// internal/pkg/email/smtp.go
package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"sort"
	"strings"

	"github.com/your-org/campus-delivery-backend/internal/config"
)

type smtpSender struct {
	cfg config.EmailConfig
}

func newSMTPSender(cfg config.EmailConfig) *smtpSender {
	return &smtpSender{cfg: cfg}
}

// Send delivers email over SMTP, with implicit TLS when configured
func (s *smtpSender) Send(ctx context.Context, email *Email) error {
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}

	msg := buildMessage(s.cfg, email)
	serverAddr := net.JoinHostPort(s.cfg.SMTPHost, fmt.Sprint(s.cfg.SMTPPort))

	if s.cfg.SMTPUseTLS {
		return s.sendWithTLS(ctx, serverAddr, auth, email.To, msg)
	}
	return smtp.SendMail(serverAddr, auth, s.cfg.FromEmail, email.To, msg)
}

// buildMessage renders headers and the HTML body
func buildMessage(cfg config.EmailConfig, email *Email) []byte {
	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}

	headers := map[string]string{
		"From":         from,
		"To":           strings.Join(email.To, ", "),
		"Subject":      email.Subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=\"utf-8\"",
	}
	if cfg.ReplyTo != "" {
		headers["Reply-To"] = cfg.ReplyTo
	}

	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var msg bytes.Buffer
	for _, key := range keys {
		fmt.Fprintf(&msg, "%s: %s\r\n", key, headers[key])
	}
	msg.WriteString("\r\n")
	msg.WriteString(email.HTMLContent)
	return msg.Bytes()
}

// sendWithTLS sends email using an implicit TLS connection
func (s *smtpSender) sendWithTLS(ctx context.Context, serverAddr string, auth smtp.Auth, to []string, msg []byte) error {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: s.cfg.Timeout},
		Config:    &tls.Config{ServerName: s.cfg.SMTPHost},
	}
	conn, err := dialer.DialContext(ctx, "tcp", serverAddr)
	if err != nil {
		return fmt.Errorf("failed to create TLS connection: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}
	if err := client.Mail(s.cfg.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", addr, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to send DATA command: %w", err)
	}
	if _, err := writer.Write(msg); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write email content: %w", err)
	}
	return writer.Close()
}
