package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultsLoad verifies the embedded defaults parse and validate.
func TestDefaultsLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ModeLocalize, cfg.Robot.Mode)
	assert.Equal(t, 7, cfg.Robot.Step)
	assert.Equal(t, 4, cfg.Derived.Beams)
	assert.InDelta(t, 7.9, cfg.Derived.SkipRange, 1e-9)
	assert.True(t, cfg.Derived.Localize)
}

// TestLoadMergesOverDefaults verifies a partial user file only overrides what it names.
func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.yaml")
	require.NoError(t, os.WriteFile(path, []byte("robot:\n  mode: slam\nfilter:\n  particles: 50\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ModeSLAM, cfg.Robot.Mode)
	assert.Equal(t, 50, cfg.Filter.Particles)
	assert.Equal(t, 7, cfg.Robot.Step, "unset fields keep defaults")
	assert.False(t, cfg.Derived.Localize)
}

// TestValidateRejectsBadValues verifies every broken section is reported.
func TestValidateRejectsBadValues(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Robot.Mode = "teleport"
	cfg.Mapper.LearningRate = 1.5
	cfg.Filter.Resampling = "stratified"

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "teleport")
	assert.Contains(t, err.Error(), "learning_rate")
	assert.Contains(t, err.Error(), "stratified")
}

// TestLoadMissingFile verifies a read failure is wrapped.
func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// TestWriteYAMLRoundTrip verifies a written snapshot loads back to the same settings.
func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Sensor.Resolution = 45

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Sensor, back.Sensor)
	assert.Equal(t, 8, back.Derived.Beams)
}
