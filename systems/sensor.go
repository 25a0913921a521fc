package systems

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/slamsim/components"
)

// SensorParams describes a simulated range finder.
type SensorParams struct {
	MaxRange      float64 // physical units
	ApertureDeg   float64 // total field of view
	ResolutionDeg float64 // spacing between beams
	Noise         float64 // stddev of additive range noise
}

// RangeSensor ray-casts against the true map from a pose.
// Angle 0 points along +col; positive angles turn toward -row (up on screen).
type RangeSensor struct {
	terrain  Terrain
	angles   []float64 // radians, fixed at construction
	maxRange float64
	step     float64 // range resolution, equal to the map scale
	noise    float64
	rng      *rand.Rand
}

// NewRangeSensor builds the beam fan from the aperture and resolution.
func NewRangeSensor(t Terrain, p SensorParams, rng *rand.Rand) *RangeSensor {
	return &RangeSensor{
		terrain:  t,
		angles:   BeamAngles(p.ApertureDeg, p.ResolutionDeg),
		maxRange: p.MaxRange,
		step:     t.Scale(),
		noise:    math.Abs(p.Noise),
		rng:      rng,
	}
}

// BeamAngles spreads beams evenly over [-aperture/2, aperture/2] degrees and
// returns them in radians. A full-circle aperture drops the closing beam,
// which would point the same way as the first.
func BeamAngles(apertureDeg, resolutionDeg float64) []float64 {
	if apertureDeg <= 0 || resolutionDeg <= 0 {
		return []float64{0}
	}
	n := int(apertureDeg/resolutionDeg) + 1
	if n < 2 {
		return []float64{0}
	}
	start := -apertureDeg / 2
	stepDeg := apertureDeg / float64(n-1)

	angles := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		angles = append(angles, (start+float64(i)*stepDeg)*math.Pi/180)
	}
	if apertureDeg >= 360 {
		angles = angles[:n-1]
	}
	return angles
}

// Angles returns the beam angles in radians. The slice must not be modified.
func (s *RangeSensor) Angles() []float64 {
	return s.angles
}

// MaxRange returns the sensor's maximum range.
func (s *RangeSensor) MaxRange() float64 {
	return s.maxRange
}

// Noise returns the range noise stddev.
func (s *RangeSensor) Noise() float64 {
	return s.noise
}

// TrueDistances casts every beam from pose and returns the distance to the
// first obstacle, or MaxRange when nothing is hit.
func (s *RangeSensor) TrueDistances(pose components.Cell) components.Scan {
	scan := make(components.Scan, len(s.angles))
	for i, a := range s.angles {
		scan[i] = s.castRay(pose, a)
	}
	return scan
}

// castRay marches outward one range step at a time. At step k the beam is
// k*step units out, which is k cells along the beam direction.
func (s *RangeSensor) castRay(pose components.Cell, angle float64) float64 {
	a := normalizeAngle(angle)
	sin, cos := math.Sincos(a)
	for k := 0; ; k++ {
		d := float64(k) * s.step
		if d >= s.maxRange {
			return s.maxRange
		}
		c := s.terrain.Clamp(pose.Row+int(-float64(k)*sin), pose.Col+int(float64(k)*cos))
		if s.terrain.Blocked(c) {
			return d
		}
	}
}

// NoisyDistances adds independent Gaussian noise to each true distance and
// clamps the result to [0, MaxRange].
func (s *RangeSensor) NoisyDistances(pose components.Cell) components.Scan {
	scan := s.TrueDistances(pose)
	for i, d := range scan {
		v := distuv.Normal{Mu: d, Sigma: s.noise, Src: s.rng}.Rand()
		scan[i] = math.Max(0, math.Min(s.maxRange, v))
	}
	return scan
}

// ConvertToRelativeCartesian converts each range to an offset from the sensor.
func (s *RangeSensor) ConvertToRelativeCartesian(scan components.Scan) []components.Offset {
	n := min(len(scan), len(s.angles))
	out := make([]components.Offset, n)
	for i := 0; i < n; i++ {
		sin, cos := math.Sincos(normalizeAngle(s.angles[i]))
		out[i] = components.Offset{DY: -scan[i] * sin, DX: scan[i] * cos}
	}
	return out
}
