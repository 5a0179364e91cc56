package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel(" error "))
	assert.Equal(t, LevelInfo, ParseLevel(""))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestLogger(t *testing.T) {
	t.Run("filters below minimum level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger("gallery-test", LevelWarn)
		logger.SetOutput(&buf)

		logger.Info("hidden")
		logger.Warn("shown")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "[WARN] gallery-test")
		assert.Contains(t, out, "shown")
	})

	t.Run("writes fields in sorted order", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger("gallery-test", LevelDebug)
		logger.SetOutput(&buf)

		logger.WithFields(map[string]interface{}{"photo_id": 3, "album_id": 1}).Infof("added %s", "photo")

		out := strings.TrimSpace(buf.String())
		assert.True(t, strings.HasSuffix(out, "added photo album_id=1 photo_id=3"), out)
	})

	t.Run("WithField does not mutate parent", func(t *testing.T) {
		var buf bytes.Buffer
		parent := NewLogger("gallery-test", LevelDebug)
		parent.SetOutput(&buf)

		_ = parent.WithField("key", "value")
		parent.Info("plain")

		assert.NotContains(t, buf.String(), "key=value")
	})

	t.Run("SetLevel lowers the threshold", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger("gallery-test", LevelError)
		logger.SetOutput(&buf)

		logger.Debug("before")
		logger.SetLevel(LevelDebug)
		logger.Debug("after")

		assert.NotContains(t, buf.String(), "before")
		assert.Contains(t, buf.String(), "after")
	})

	t.Run("derived loggers follow the parent level", func(t *testing.T) {
		var buf bytes.Buffer
		parent := NewLogger("gallery-test", LevelError)
		parent.SetOutput(&buf)
		child := parent.WithField("component", "store")

		child.Info("muted")
		parent.SetLevel(LevelInfo)
		child.Info("audible")

		assert.NotContains(t, buf.String(), "muted")
		assert.Contains(t, buf.String(), "audible component=store")
	})

	t.Run("quotes values containing spaces", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger("gallery-test", LevelDebug)
		logger.SetOutput(&buf)

		logger.WithField("title", "Autumn leaves").WithField("title", "Sunset over sea").Info("renamed")

		out := strings.TrimSpace(buf.String())
		assert.True(t, strings.HasSuffix(out, `renamed title="Sunset over sea"`), out)
	})
}
