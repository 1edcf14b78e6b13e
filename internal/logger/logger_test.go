package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}

func TestLogger_WritesFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf)

	Warn("googleAuth backend login failed", map[string]any{
		"status": 502,
		"target": "python",
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lastLine(buf.String())), &entry))

	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "googleAuth backend login failed", entry["message"])
	assert.Equal(t, "python", entry["target"])
	assert.EqualValues(t, 502, entry["status"])
	assert.Equal(t, "kadabite-app", entry["service"])
}

func TestLogger_NilFields(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf)

	Info("shutdown signal received", nil)

	assert.Contains(t, buf.String(), `"message":"shutdown signal received"`)
}
