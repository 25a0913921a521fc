package systems

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/slamsim/components"
)

// TestBeamAngles verifies the beam fan layout.
func TestBeamAngles(t *testing.T) {
	tests := []struct {
		name       string
		aperture   float64
		resolution float64
		want       []float64
	}{
		{"full circle drops closing beam", 360, 90, []float64{-math.Pi, -math.Pi / 2, 0, math.Pi / 2}},
		{"zero aperture", 0, 90, []float64{0}},
		{"zero resolution", 180, 0, []float64{0}},
		{"half circle", 180, 90, []float64{-math.Pi / 2, 0, math.Pi / 2}},
		{"resolution wider than aperture", 30, 90, []float64{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BeamAngles(tt.aperture, tt.resolution)
			require.Len(t, got, len(tt.want))
			assert.InDeltaSlice(t, tt.want, got, 1e-12)
		})
	}
}

// TestTrueDistances verifies ray casting in all four axis directions.
func TestTrueDistances(t *testing.T) {
	m := mustParse(t, boxedMap, 1)
	s := NewRangeSensor(m, SensorParams{MaxRange: 8, ApertureDeg: 360, ResolutionDeg: 90}, newTestRNG(1))

	// From (4,6): left wall 6 away, up wall 4 away, right wall 3 away, bottom wall 5 away.
	got := s.TrueDistances(components.Cell{Row: 4, Col: 6})
	assert.Equal(t, components.Scan{6, 5, 3, 4}, got)
}

// TestTrueDistancesMaxRange verifies beams that hit nothing report MaxRange.
func TestTrueDistancesMaxRange(t *testing.T) {
	m := mustParse(t, boxedMap, 1)
	s := NewRangeSensor(m, SensorParams{MaxRange: 8}, newTestRNG(1))

	assert.Equal(t, components.Scan{8}, s.TrueDistances(components.Cell{Row: 1, Col: 1}))
	assert.Equal(t, components.Scan{1}, s.TrueDistances(components.Cell{Row: 1, Col: 8}))
}

// TestTrueDistancesScale verifies distances are reported in physical units.
func TestTrueDistancesScale(t *testing.T) {
	m := mustParse(t, boxedMap, 0.5)
	s := NewRangeSensor(m, SensorParams{MaxRange: 8}, newTestRNG(1))

	assert.Equal(t, components.Scan{1.5}, s.TrueDistances(components.Cell{Row: 4, Col: 6}))
}

// TestNoisyDistancesClamped verifies noisy readings stay inside [0, MaxRange].
func TestNoisyDistancesClamped(t *testing.T) {
	m := mustParse(t, boxedMap, 1)
	s := NewRangeSensor(m, SensorParams{MaxRange: 8, ApertureDeg: 360, ResolutionDeg: 10, Noise: 3}, newTestRNG(7))

	for i := 0; i < 200; i++ {
		for _, r := range s.NoisyDistances(components.Cell{Row: 1, Col: 1}) {
			assert.GreaterOrEqual(t, r, 0.0)
			assert.LessOrEqual(t, r, 8.0)
		}
	}
}

// TestNoisyDistancesNoiseFree verifies zero noise reproduces the true scan.
func TestNoisyDistancesNoiseFree(t *testing.T) {
	m := mustParse(t, boxedMap, 1)
	s := NewRangeSensor(m, SensorParams{MaxRange: 8, ApertureDeg: 360, ResolutionDeg: 45}, newTestRNG(9))

	pose := components.Cell{Row: 3, Col: 5}
	assert.Equal(t, s.TrueDistances(pose), s.NoisyDistances(pose))
}

// TestConvertToRelativeCartesian verifies the row-down offset convention.
func TestConvertToRelativeCartesian(t *testing.T) {
	m := NewWorldMap(5, 5, 1)
	s := NewRangeSensor(m, SensorParams{MaxRange: 8, ApertureDeg: 360, ResolutionDeg: 90}, newTestRNG(1))

	got := s.ConvertToRelativeCartesian(components.Scan{1, 2, 3, 4})
	want := []components.Offset{
		{DY: 0, DX: -1},
		{DY: 2, DX: 0},
		{DY: 0, DX: 3},
		{DY: -4, DX: 0},
	}
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i].DY, got[i].DY, 1e-9, "beam %d DY", i)
		assert.InDelta(t, want[i].DX, got[i].DX, 1e-9, "beam %d DX", i)
	}
}
