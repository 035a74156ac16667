package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStampsServiceField(t *testing.T) {
	var buf bytes.Buffer
	log := build(&buf, "cyberassess")

	log.Info().Str("component", "test").Msg("hello")

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "cyberassess", event["service"])
	assert.Equal(t, "test", event["component"])
	assert.Equal(t, "hello", event["message"])
	assert.Contains(t, event, "time")
	assert.Contains(t, event, "caller")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("nonsense"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
}
