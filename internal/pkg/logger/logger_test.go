package logger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Config{
		Level:          "info",
		Format:         "json",
		ServiceName:    "stockspider",
		ServiceVersion: "test",
		Output:         &buf,
	}))
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	log.Debug().Msg("hidden")
	log.Info().Str("code", "000001.SZ").Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"code":"000001.SZ"`)
	assert.Contains(t, out, `"service":"stockspider"`)
}

func TestInit_InvalidLevel(t *testing.T) {
	err := Init(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestMinLevelWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &minLevelWriter{Writer: &buf, min: zerolog.ErrorLevel}

	n, err := w.WriteLevel(zerolog.InfoLevel, []byte("info\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = w.WriteLevel(zerolog.ErrorLevel, []byte("error\n"))
	require.NoError(t, err)

	assert.Equal(t, "error\n", buf.String())
}

func TestNewAccessLogger(t *testing.T) {
	dir := t.TempDir()

	l := NewAccessLogger(dir, 1, 1)
	l.Info().Str("path", "/health").Msg("request")

	data, err := os.ReadFile(filepath.Join(dir, "access.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"access"`)
	assert.Contains(t, string(data), `"path":"/health"`)
}

func TestNewQueryLogger(t *testing.T) {
	dir := t.TempDir()

	l := NewQueryLogger(dir, 1, 1)
	l.Debug().Str("sql", "SELECT 1").Msg("query")

	data, err := os.ReadFile(filepath.Join(dir, "query.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"query"`)
}

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "", RequestID(context.Background()))
}
