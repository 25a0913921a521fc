package main

import (
	"github.com/pthm-cable/slamsim/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Filter
			{Name: "motion_noise", Path: "filter.motion_noise", Min: 0.0, Max: 0.3, Default: 0.03},
			{Name: "likelihood_noise", Path: "filter.likelihood_noise", Min: 0.05, Max: 3.0, Default: 0.4},
			// Mapper
			{Name: "learning_rate", Path: "mapper.learning_rate", Min: 0.05, Max: 1.0, Default: 0.5},
			{Name: "mapper_sensor_noise", Path: "mapper.sensor_noise", Min: 0.05, Max: 2.0, Default: 0.5},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg. Order matches Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	cfg.Filter.MotionNoise = c[0]
	cfg.Filter.LikelihoodNoise = c[1]
	cfg.Mapper.LearningRate = c[2]
	cfg.Mapper.SensorNoise = c[3]
}

// ExtractFromConfig reads the current parameter values from cfg.
// A zero likelihood noise falls back to the sensor noise, as the filter does.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	likelihood := cfg.Filter.LikelihoodNoise
	if likelihood <= 0 {
		likelihood = cfg.Sensor.Noise
	}
	return []float64{
		cfg.Filter.MotionNoise,
		likelihood,
		cfg.Mapper.LearningRate,
		cfg.Mapper.SensorNoise,
	}
}
