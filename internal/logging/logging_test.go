package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerLevels(t *testing.T) {
	cases := []struct {
		env, level string
		expected   zerolog.Level
	}{
		{"production", "warn", zerolog.WarnLevel},
		{"production", "bogus", zerolog.InfoLevel},
		{"production", "", zerolog.InfoLevel},
		{"development", "error", zerolog.DebugLevel},
	}
	for _, c := range cases {
		l := newLogger(&bytes.Buffer{}, c.env, c.level)
		require.Equal(t, c.expected, l.GetLevel(), "env %q level %q", c.env, c.level)
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "production", "info")
	l.Info().Str("request_id", "abc").Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "hello", line["message"])
	require.Equal(t, "abc", line["request_id"])
	require.Equal(t, "audiodescricao", line["service"])
}
