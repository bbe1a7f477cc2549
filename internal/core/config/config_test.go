package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/tickcore/internal/core/errs"
	"github.com/zeusync/tickcore/internal/core/observability/log"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, time.Second/30, c.TickInterval())
	assert.Equal(t, log.LevelInfo, c.LoggerOptions().Level)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	c, err := LoadYAML(strings.NewReader(`
log:
  level: debug
bus:
  max_drain: 500
tick:
  rate: 60
`))
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "json", c.Log.Encoding)
	assert.Equal(t, 500, c.Bus.MaxDrain)
	assert.Equal(t, 64, c.Bus.QueueCapacity)
	assert.Equal(t, 60, c.Tick.Rate)
}

func TestLoadYAMLEmpty(t *testing.T) {
	c, err := LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestEnvTakesPrecedence(t *testing.T) {
	t.Setenv("TICKCORE_LOG_LEVEL", "warn")
	t.Setenv("TICKCORE_TICK_RATE", "10")
	t.Setenv("TICKCORE_STORE_MAX_ENTITY_ID", "1000")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", c.Log.Level)
	assert.Equal(t, 10, c.Tick.Rate)
	assert.Equal(t, uint64(1000), c.Store.MaxEntityID)
}

func TestValidateRejectsBadValues(t *testing.T) {
	c := Default()
	c.Tick.Rate = 0
	assert.True(t, errs.Is(c.Validate(), errs.KindInvalidArgument))

	c = Default()
	c.Log.Level = "chatty"
	assert.ErrorIs(t, c.Validate(), errs.ErrInvalidConfig)

	c = Default()
	c.Log.Encoding = "xml"
	assert.Error(t, c.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/tickcore.yaml")
	assert.Error(t, err)
}
