// internal/pkg/email/resend.go
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/your-org/campus-delivery-backend/internal/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type resendSender struct {
	cfg    config.EmailConfig
	client *http.Client
}

func newResendSender(cfg config.EmailConfig) *resendSender {
	return &resendSender{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// Send posts email to the Resend API
func (s *resendSender) Send(ctx context.Context, email *Email) error {
	from := s.cfg.FromEmail
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.FromEmail)
	}

	body, err := json.Marshal(resendPayload{
		From:    from,
		To:      email.To,
		Subject: email.Subject,
		HTML:    email.HTMLContent,
		ReplyTo: s.cfg.ReplyTo,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}
