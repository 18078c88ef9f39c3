package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, DebugLevel)

	log.Debug("Reading pair group", map[string]interface{}{
		"id": "pg1",
	})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "DEBUG", entries[0]["level"])
	assert.Equal(t, "Reading pair group", entries[0]["message"])
	assert.Equal(t, "pg1", entries[0]["id"])
	assert.Contains(t, entries[0], "timestamp")
	assert.Contains(t, entries[0]["file"], "logger_test.go")
	assert.Contains(t, entries[0], "line")
}

func TestJSONLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	warnLogger := NewJSONLogger(&buf, WarnLevel)

	warnLogger.Debug("hidden debug", nil)
	warnLogger.Info("hidden info", nil)
	assert.Equal(t, "", buf.String())

	warnLogger.Warn("Warning message", nil)
	warnLogger.Error("Error message", nil)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "ERROR", entries[1]["level"])

	assert.False(t, warnLogger.Enabled(InfoLevel))
	assert.True(t, warnLogger.Enabled(FatalLevel))
}

func TestJSONLoggerContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewJSONLogger(&buf, InfoLevel)

	child := base.WithField("component", "filesystem_repository").
		WithFields(map[string]interface{}{"root": "/data"})
	child.Info("Pair group updated", map[string]interface{}{"id": "pg1"})

	// the parent must not see the child's fields
	base.Info("Plain", nil)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "filesystem_repository", entries[0]["component"])
	assert.Equal(t, "/data", entries[0]["root"])
	assert.Equal(t, "pg1", entries[0]["id"])
	assert.NotContains(t, entries[1], "component")

	assert.Same(t, base, base.WithFields(nil))
}

func TestJSONLoggerFatal(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, ErrorLevel)

	code := -1
	log.exit = func(c int) { code = c }

	log.Fatal("Data directory unusable", nil)

	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "FATAL")
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(" debug ")
	assert.NoError(t, err)
	assert.Equal(t, DebugLevel, level)

	level, err = ParseLevel("Error")
	assert.NoError(t, err)
	assert.Equal(t, ErrorLevel, level)

	level, err = ParseLevel("verbose")
	assert.Error(t, err)
	assert.Equal(t, InfoLevel, level)
}

func TestSetDefaultLogger(t *testing.T) {
	original := GetDefaultLogger()
	defer SetDefaultLogger(original)

	var buf bytes.Buffer
	SetDefaultLogger(NewJSONLogger(&buf, DebugLevel))
	GetDefaultLogger().Debug("via default", nil)
	assert.Contains(t, buf.String(), "via default")

	SetDefaultLogger(nil)
	assert.NotNil(t, GetDefaultLogger())
}
