// internal/pkg/sheets/client.go
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/your-org/campus-delivery-backend/internal/config"
)

// StatusError is returned when the sheets service answers with a non-2xx status
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sheets service returned %d: %s", e.Code, e.Body)
}

// Retryable reports whether the request may succeed if sent again
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Client appends rows to campus tabs through the sheets service
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type appendRequest struct {
	Values [][]interface{} `json:"values"`
}

// NewClient creates a client from the sheets configuration
func NewClient(cfg config.SheetsConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Enabled reports whether a sheets service is configured
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// AppendRow appends one row to the named tab
func (c *Client) AppendRow(ctx context.Context, tab string, row []interface{}) error {
	body, err := json.Marshal(appendRequest{Values: [][]interface{}{row}})
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/sheets/orders/%s", c.baseURL, url.PathEscape(tab))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sheets request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sheets request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
