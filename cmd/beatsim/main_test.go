package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/beatsim/internal/config"
	"github.com/san-kum/beatsim/internal/engine"
)

func newSceneCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	preset, configFile = "", ""
	cmd := &cobra.Command{Use: "test"}
	sceneFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(newSceneCmd(t))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Width, cfg.Width)
	assert.Equal(t, config.DefaultConfig().FPS, cfg.FPS)
}

func TestLoadConfigFlagsOverridePreset(t *testing.T) {
	cmd := newSceneCmd(t, "--preset", "timeline", "--fps", "12", "--width", "320", "--seek-policy", "stale")
	cfg, err := loadConfig(cmd)
	require.NoError(t, err)

	want := config.GetPreset("timeline")
	assert.Equal(t, want.Duration, cfg.Duration, "unchanged flags keep the preset value")
	assert.Equal(t, want.Height, cfg.Height)
	assert.Equal(t, 12.0, cfg.FPS)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, engine.SeekStale, cfg.SeekPolicy)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := loadConfig(newSceneCmd(t, "--preset", "nope"))
	assert.Error(t, err)

	_, err = loadConfig(newSceneCmd(t, "--seek-policy", "rewind"))
	assert.ErrorIs(t, err, engine.ErrInvalidPolicy)

	_, err = loadConfig(newSceneCmd(t, "--fps", "0"))
	assert.ErrorIs(t, err, config.ErrNoFPS)
}

func TestTrackFlagSwitchesSource(t *testing.T) {
	cfg, err := loadConfig(newSceneCmd(t, "--track", "/tmp/features.json"))
	require.NoError(t, err)
	assert.Equal(t, "track", cfg.Source.Type)
	assert.Equal(t, "track:features.json", sourceLabel(cfg))
}
