package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, LevelFor(-1))
	assert.Equal(t, zerolog.WarnLevel, LevelFor(0))
	assert.Equal(t, zerolog.InfoLevel, LevelFor(1))
	assert.Equal(t, zerolog.DebugLevel, LevelFor(2))
	assert.Equal(t, zerolog.TraceLevel, LevelFor(5))
}

func TestSetupLoggerAndComponents(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	SetupLogger(1, &buf, true)
	logger := GetLogger("render")
	logger.Info().Msg("hello")
	logger.Debug().Msg("hidden")

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "component=render")
	assert.NotContains(t, out, "hidden")
}

func TestLogOperationStart(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	done := LogOperationStart(logger, "load")
	done()
	out := buf.String()
	assert.Contains(t, out, `"operation":"load"`)
	assert.Contains(t, out, "operation completed")
	assert.Contains(t, out, `"duration"`)
}
