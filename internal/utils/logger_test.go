package utils

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogEvent_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("debug", true, &buf)

	LogEvent(logger, " req-1 ", "session", "stop", "session_id=3")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "[SESSION] session_id=3", line["@message"])
	assert.Equal(t, "stop", line["action"])
	assert.Equal(t, "req-1", line["request_id"])
}

func TestNewLogger_UnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("chatty", false, &buf)
	logger.Debug("hidden")
	assert.Empty(t, buf.String())
	assert.True(t, logger.IsInfo())
}

func TestNowUTC(t *testing.T) {
	now := NowUTC()
	assert.Equal(t, time.UTC, now.Location())
	assert.Zero(t, now.Nanosecond())
}
