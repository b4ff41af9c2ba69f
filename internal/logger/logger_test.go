package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Level: "debug", Format: "json"}, &buf)
	t.Cleanup(func() { InitWithWriter(Config{}, &bytes.Buffer{}) })

	Info().Str("component", "test").Msg("hello")

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "info", event["level"])
	assert.Equal(t, "test", event["component"])
	assert.Equal(t, "hello", event["message"])
}

func TestInitFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Level: "not-a-level"}, &buf)
	t.Cleanup(func() { InitWithWriter(Config{}, &bytes.Buffer{}) })

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	Debug().Msg("hidden")
	assert.Empty(t, buf.String())
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Level: "info"}, &buf)
	t.Cleanup(func() { InitWithWriter(Config{}, &bytes.Buffer{}) })

	ctx := WithRequestID(context.Background(), "req-1")
	Ctx(ctx).Info().Msg("scoped")

	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Empty(t, RequestID(context.Background()))
}

func TestCtxWithoutLoggerUsesGlobal(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Level: "info"}, &buf)
	t.Cleanup(func() { InitWithWriter(Config{}, &bytes.Buffer{}) })

	Ctx(context.Background()).Info().Msg("global")
	assert.Contains(t, buf.String(), "global")
}

func TestUsePretty(t *testing.T) {
	var buf bytes.Buffer

	assert.True(t, usePretty("pretty", &buf))
	assert.False(t, usePretty("json", &buf))
	assert.False(t, usePretty("", &buf))
	assert.False(t, usePretty("auto", &buf), "a buffer is never a terminal")
}

func TestInitAutoFormatWritesJSONToBuffer(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Format: "auto"}, &buf)
	t.Cleanup(func() { InitWithWriter(Config{}, &bytes.Buffer{}) })

	Info().Msg("piped")

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "piped", event["message"])
}
