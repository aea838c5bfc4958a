package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/campus-delivery-backend/internal/config"
)

func TestNewWithOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)

	log.Info("dropped")
	log.WithField("order_id", 7).Warn("kept")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, float64(7), entry["order_id"])
}

func TestNewWithOutputBadLevel(t *testing.T) {
	log := NewWithOutput(config.LoggingConfig{Level: "loud", Format: "text"}, &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
