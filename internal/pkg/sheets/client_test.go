package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/campus-delivery-backend/internal/config"
)

func TestAppendRow(t *testing.T) {
	var gotPath, gotKey string
	var got appendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotKey = r.Header.Get("X-API-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(config.SheetsConfig{BaseURL: srv.URL + "/", APIKey: "k", Timeout: time.Second})
	require.True(t, c.Enabled())

	err := c.AppendRow(context.Background(), "Main Campus", []interface{}{"ORD-1", 850})
	require.NoError(t, err)

	assert.Equal(t, "/api/sheets/orders/Main%20Campus", gotPath)
	assert.Equal(t, "k", gotKey)
	require.Len(t, got.Values, 1)
	assert.Equal(t, []interface{}{"ORD-1", float64(850)}, got.Values[0])
}

func TestAppendRowStatusErrors(t *testing.T) {
	var code atomic.Int32
	code.Store(http.StatusServiceUnavailable)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", int(code.Load()))
	}))
	defer srv.Close()

	c := NewClient(config.SheetsConfig{BaseURL: srv.URL, Timeout: time.Second})

	err := c.AppendRow(context.Background(), "tab", nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 503, se.Code)
	assert.Equal(t, "busy", se.Body)
	assert.True(t, se.Retryable())

	code.Store(http.StatusBadRequest)
	err = c.AppendRow(context.Background(), "tab", nil)
	require.True(t, errors.As(err, &se))
	assert.False(t, se.Retryable())
}

func TestDisabledWithoutBaseURL(t *testing.T) {
	assert.False(t, NewClient(config.SheetsConfig{}).Enabled())
}
