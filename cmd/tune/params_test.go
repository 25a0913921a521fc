package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/slamsim/config"
)

func TestNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	assert.InDeltaSlice(t, raw, back, 1e-12)
}

func TestApplyToConfigClamps(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	pv := NewParamVector()
	pv.ApplyToConfig(cfg, []float64{-1, 10, 0.25, 0.7})

	assert.Equal(t, 0.0, cfg.Filter.MotionNoise)
	assert.Equal(t, 3.0, cfg.Filter.LikelihoodNoise)
	assert.Equal(t, 0.25, cfg.Mapper.LearningRate)
	assert.Equal(t, 0.7, cfg.Mapper.SensorNoise)
	assert.Equal(t, []float64{0, 3, 0.25, 0.7}, pv.ExtractFromConfig(cfg))
}

func TestExtractFallsBackToSensorNoise(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Filter.LikelihoodNoise = 0

	got := NewParamVector().ExtractFromConfig(cfg)
	assert.Equal(t, cfg.Sensor.Noise, got[1])
}

func TestFormatParams(t *testing.T) {
	assert.Equal(t, "0.030000 1.500000", formatParams([]float64{0.03, 1.5}))
}
