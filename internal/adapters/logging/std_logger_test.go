package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedLogger(buf *bytes.Buffer, format, level string) *StdLogger {
	l := NewStdLogger(buf, format, level)
	l.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return l
}

func TestStdLogger_TextFormatSortsFields(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, "text", "info")

	l.Log("INFO", "Plan computed", map[string]interface{}{"key": "item:oak_planks", "bytes": 3})

	assert.Equal(t, "2026-01-02T03:04:05Z [INFO] Plan computed bytes=3 key=item:oak_planks\n", buf.String())
}

func TestStdLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, "text", "warn")

	l.Log("DEBUG", "noise", nil)
	l.Log("INFO", "noise", nil)
	l.Log("WARNING", "kept", nil)
	l.Log("error", "kept too", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[WARNING] kept")
	assert.Contains(t, lines[1], "[ERROR] kept too")
}

func TestStdLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, "json", "debug").With(map[string]interface{}{"run": "plan-1"})

	l.Log("DEBUG", "Pattern applied", map[string]interface{}{"times": 2})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "Pattern applied", entry["message"])
	assert.Equal(t, "plan-1", entry["run"])
	assert.Equal(t, float64(2), entry["times"])
	assert.Equal(t, "2026-01-02T03:04:05Z", entry["time"])
}

func TestStdLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, "text", "verbose")

	l.Log("DEBUG", "hidden", nil)
	l.Log("INFO", "shown", nil)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
