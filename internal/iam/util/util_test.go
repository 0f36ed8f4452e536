package util

import (
	"log/slog"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	t.Run("ids are unique and increasing within the same millisecond", func(t *testing.T) {
		now := time.Now()
		prev := NewIDAt(now)
		for i := 0; i < 100; i++ {
			next := NewIDAt(now)
			assert.Greater(t, next, prev)
			prev = next
		}
	})

	t.Run("id carries its timestamp", func(t *testing.T) {
		at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		id, err := ulid.Parse(NewIDAt(at))
		require.NoError(t, err)
		assert.Equal(t, at.UnixMilli(), int64(id.Time()))
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
