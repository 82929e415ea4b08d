package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProductionIsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(false, "warn", &buf)

	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	log.Info("dropped")
	log.WithField("item_id", 7).Warn("low stock")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "low stock", entry["msg"])
	assert.Equal(t, float64(7), entry["item_id"])
}

func TestNew_DebugOverridesLevel(t *testing.T) {
	log := New(true, "error", &bytes.Buffer{})
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	_, isText := log.Formatter.(*logrus.TextFormatter)
	assert.True(t, isText)
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	log := New(false, "chatty", &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
