package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{
		Level:       LevelDebug,
		ServiceName: "test",
		JSONFormat:  true,
		Output:      &buf,
	})

	log.Info("hello", F("invoice_id", "INV-001"), F("count", 3))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "INV-001", entry["invoice_id"])
	assert.Equal(t, float64(3), entry["count"])
	assert.Equal(t, "test", entry["service_name"])
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{
		Level:       LevelDebug,
		ServiceName: "test",
		JSONFormat:  true,
		Output:      &buf,
	})

	child := log.With(F("component", "pipeline"))
	child.Info("stage complete")

	assert.Contains(t, buf.String(), `"component":"pipeline"`)
}

func TestErrField(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{
		Level:       LevelDebug,
		ServiceName: "test",
		JSONFormat:  true,
		Output:      &buf,
	})

	log.Error("failed", Err(errors.New("boom")))
	assert.Contains(t, buf.String(), "boom")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{
		Level:       LevelWarn,
		ServiceName: "test",
		JSONFormat:  true,
		Output:      &buf,
	})

	log.Debug("debug msg")
	log.Info("info msg")
	log.Warn("warn msg")

	out := buf.String()
	assert.False(t, strings.Contains(out, "debug msg"))
	assert.False(t, strings.Contains(out, "info msg"))
	assert.True(t, strings.Contains(out, "warn msg"))
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	log.Info("should not panic")
	log.With(F("k", "v")).Error("also fine", Err(errors.New("x")))
}
