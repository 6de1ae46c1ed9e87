package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	cfg, err := Load(v, "")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "feedpilot", cfg.Logger.ServiceName)

	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 90*time.Second, cfg.Browser.NavigationTimeout)

	assert.Equal(t, 12, cfg.Engage.MaxActions)
	assert.Equal(t, "append", cfg.Engage.MentionPosition)
	assert.False(t, cfg.Engage.IncludePromoted)

	assert.Equal(t, 1*time.Second, cfg.Pacing.ActionDelayMin)
	assert.Equal(t, 3*time.Second, cfg.Pacing.ActionDelayMax)

	assert.Equal(t, []string{"funny", "motivational", "insightful"}, cfg.AI.Perspectives)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("FEEDPILOT_ENGAGE_MAX_ACTIONS", "3")
	t.Setenv("FEEDPILOT_ENGAGE_MODE", "both")

	v := viper.New()
	cfg, err := Load(v, "")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Engage.MaxActions)
	assert.Equal(t, "both", cfg.Engage.Mode)
}

func TestLoadBadFile(t *testing.T) {
	v := viper.New()
	_, err := Load(v, "/nonexistent/nope.yaml")
	assert.Error(t, err)
}
