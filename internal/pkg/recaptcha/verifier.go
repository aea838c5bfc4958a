// internal/pkg/recaptcha/verifier.go
package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/your-org/campus-delivery-backend/internal/config"
	"github.com/your-org/campus-delivery-backend/internal/pkg/apperror"
)

const defaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

type verifyResponse struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// Verifier checks reCAPTCHA tokens against the siteverify endpoint
type Verifier struct {
	secret     string
	verifyURL  string
	httpClient *http.Client
	logger     logrus.FieldLogger
}

// NewVerifier creates a verifier; without a secret only token presence is checked
func NewVerifier(cfg config.RecaptchaConfig, logger logrus.FieldLogger) *Verifier {
	verifyURL := cfg.VerifyURL
	if verifyURL == "" {
		verifyURL = defaultVerifyURL
	}
	return &Verifier{
		secret:    cfg.Secret,
		verifyURL: verifyURL,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
}

// Verify rejects empty or unaccepted tokens
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperror.Validation("recaptcha token is required")
	}
	if v.secret == "" {
		return nil
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return apperror.Server("failed to build recaptcha request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return apperror.Network("recaptcha verification unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperror.Network("recaptcha verification unavailable", fmt.Errorf("siteverify returned %d", resp.StatusCode))
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return apperror.Network("recaptcha verification unavailable", err)
	}
	if !body.Success {
		v.logger.WithField("error_codes", body.ErrorCodes).Warn("reCAPTCHA rejected token")
		return apperror.Validation("recaptcha verification failed")
	}
	return nil
}
