package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("it should write json lines at the configured level", func(t *testing.T) {
		// GIVEN
		var buf bytes.Buffer
		logger, err := New(WithLevel("WARN"), WithFormat(FormatJSON), WithOutput(&buf))
		require.NoError(t, err)

		// WHEN
		logger.Info().Msg("hidden")
		logger.Warn().Str("key", "value").Msg("shown")

		// THEN
		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "warn", line["level"])
		assert.Equal(t, "shown", line["message"])
		assert.Equal(t, "value", line["key"])
	})

	t.Run("it should write uncolored console output when not on a terminal", func(t *testing.T) {
		// GIVEN
		var buf bytes.Buffer
		logger, err := New(WithOutput(&buf))
		require.NoError(t, err)

		// WHEN
		logger.Info().Msg("hello")

		// THEN
		assert.Contains(t, buf.String(), "INF hello")
		assert.NotContains(t, buf.String(), "\x1b[")
	})

	t.Run("it should reject unknown levels and formats", func(t *testing.T) {
		// WHEN
		_, levelErr := New(WithLevel("loud"))
		_, formatErr := New(WithFormat("xml"))

		// THEN
		assert.Error(t, levelErr)
		assert.Error(t, formatErr)
	})
}

func TestParseLevel(t *testing.T) {
	t.Run("it should default to info", func(t *testing.T) {
		// WHEN
		level, err := ParseLevel(" ")

		// THEN
		require.NoError(t, err)
		assert.Equal(t, zerolog.InfoLevel, level)
	})

	t.Run("it should parse levels case insensitively", func(t *testing.T) {
		// WHEN
		level, err := ParseLevel("Trace")

		// THEN
		require.NoError(t, err)
		assert.Equal(t, zerolog.TraceLevel, level)
	})
}

func TestIsTerminal(t *testing.T) {
	t.Run("it should not consider buffers as terminals", func(t *testing.T) {
		assert.False(t, IsTerminal(&bytes.Buffer{}))
	})
}
