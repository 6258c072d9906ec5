package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	std := logrus.StandardLogger()
	prevOut, prevFmt := std.Out, std.Formatter
	std.SetOutput(buf)
	std.SetFormatter(&logrus.JSONFormatter{})
	t.Cleanup(func() {
		std.SetOutput(prevOut)
		std.SetFormatter(prevFmt)
	})
	return buf
}

func TestWithContext(t *testing.T) {
	t.Run("user and request id are attached", func(t *testing.T) {
		buf := captureOutput(t)
		ctx := ContextWithRequestID(ContextWithUser(context.Background(), "a@example.com"), "req-1")

		WithContext(ctx).Info("hello")

		var line map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "a@example.com", line["user"])
		assert.Equal(t, "req-1", line["request_id"])
	})

	t.Run("unknown user", func(t *testing.T) {
		buf := captureOutput(t)
		id := uuid.New()

		WithContext(context.Background()).WithEntity("task", id).Warn("missing")

		var line map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "unknown", line["user"])
		assert.Equal(t, "task", line["entity_type"])
		assert.Equal(t, id.String(), line["entity_id"])
	})
}
