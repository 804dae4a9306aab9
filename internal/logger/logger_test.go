package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	var buf bytes.Buffer
	Load("production", &buf).Debug("hidden")
	Load("production", &buf).Info("shown", "user", "u1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "u1", line["user"])

	buf.Reset()
	Load("development", &buf).Debug("details")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "msg=details")

	buf.Reset()
	Load("test", &buf).Error("quiet")
	assert.Empty(t, buf.String())
}
