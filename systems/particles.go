package systems

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/slamsim/components"
)

// minLikelihoodSigma keeps the measurement model finite when the configured
// sensor noise is zero.
const minLikelihoodSigma = 1e-6

// Ranger predicts the scan a hypothesis would see.
type Ranger interface {
	TrueDistances(pose components.Cell) components.Scan
	Noise() float64
}

// FilterParams configures the particle filter.
type FilterParams struct {
	// MotionNoise is the per-unit-travel stddev applied to every hypothesis on top of odometry.
	MotionNoise float64
	// LikelihoodNoise is the range stddev of the measurement model. Zero means use the ranger's noise.
	LikelihoodNoise float64
	Resampling      Resampling
	// Workers bounds the goroutines used for weighting. Zero means GOMAXPROCS.
	Workers int
}

// ParticleFilter is a Monte Carlo localizer over grid cells.
// Particles are replaced wholesale on every resample; readers always see a
// complete population.
type ParticleFilter struct {
	terrain Terrain
	ranger  Ranger
	params  FilterParams
	scale   float64
	rng     *rand.Rand
	pool    *workerPool

	particles  []components.Cell
	weights    []float64
	degenerate bool
}

// NewParticleFilter creates an empty filter. Call InitializeParticles or
// InitializeAt before the first cycle.
func NewParticleFilter(t Terrain, r Ranger, p FilterParams, rng *rand.Rand) *ParticleFilter {
	if p.Resampling == "" {
		p.Resampling = ResampleSystematic
	}
	return &ParticleFilter{
		terrain: t,
		ranger:  r,
		params:  p,
		scale:   t.Scale(),
		rng:     rng,
		pool:    newWorkerPool(p.Workers),
	}
}

// Close stops the weighting workers. The filter stays usable and restarts them on demand.
func (pf *ParticleFilter) Close() {
	pf.pool.stop()
}

// InitializeParticles spreads n particles over legal cells and returns the
// count actually used. When n reaches the number of legal cells every legal
// cell receives exactly one particle; otherwise n distinct cells are drawn
// without replacement.
func (pf *ParticleFilter) InitializeParticles(n int) int {
	legal := pf.terrain.LegalCells()
	if n > len(legal) {
		n = len(legal)
	}
	if n < 0 {
		n = 0
	}

	next := make([]components.Cell, n)
	if n == len(legal) {
		copy(next, legal)
	} else {
		// Partial Fisher-Yates over a scratch copy of the legal set.
		pool := make([]components.Cell, len(legal))
		copy(pool, legal)
		for i := 0; i < n; i++ {
			j := i + pf.rng.IntN(len(pool)-i)
			pool[i], pool[j] = pool[j], pool[i]
			next[i] = pool[i]
		}
	}

	pf.swap(next)
	return n
}

// InitializeAt places every particle on one known pose, for mapping with a
// known start. n is capped like InitializeParticles.
func (pf *ParticleFilter) InitializeAt(pose components.Cell, n int) int {
	if legal := len(pf.terrain.LegalCells()); n > legal {
		n = legal
	}
	if n < 0 {
		n = 0
	}
	next := make([]components.Cell, n)
	for i := range next {
		next[i] = pose
	}
	pf.swap(next)
	return n
}

// MoveParticles propagates each hypothesis by the odometry estimate plus
// per-particle Gaussian process noise, then clamps it onto the map.
func (pf *ParticleFilter) MoveParticles(d components.Displacement) {
	sigmaY := math.Abs(d.DY) * pf.params.MotionNoise / pf.scale
	sigmaX := math.Abs(d.DX) * pf.params.MotionNoise / pf.scale
	ny := distuv.Normal{Mu: d.DY, Sigma: sigmaY, Src: pf.rng}
	nx := distuv.Normal{Mu: d.DX, Sigma: sigmaX, Src: pf.rng}

	for i, p := range pf.particles {
		row := int(math.Round(float64(p.Row) + ny.Rand()))
		col := int(math.Round(float64(p.Col) + nx.Rand()))
		pf.particles[i] = pf.terrain.Clamp(row, col)
	}
}

// WeightParticles scores every hypothesis against the observed scan and
// resamples the population in proportion to the scores.
func (pf *ParticleFilter) WeightParticles(scan components.Scan) {
	n := len(pf.particles)
	if n == 0 {
		return
	}

	sigma := pf.params.LikelihoodNoise
	if sigma <= 0 {
		sigma = pf.ranger.Noise()
	}
	sigma = math.Max(sigma, minLikelihoodSigma)

	logw := make([]float64, n)
	pf.pool.run(n, func(start, end int) {
		for i := start; i < end; i++ {
			logw[i] = logLikelihood(pf.ranger.TrueDistances(pf.particles[i]), scan, sigma)
		}
	})

	weights, degenerate := normalizeLogWeights(logw)
	if degenerate {
		slog.Warn("particle weights degenerate, falling back to uniform", "particles", n)
	}

	var idx []int
	switch pf.params.Resampling {
	case ResampleMultinomial:
		idx = resampleMultinomial(weights, n, pf.rng)
	default:
		idx = resampleSystematic(weights, n, pf.rng)
	}

	next := make([]components.Cell, n)
	for i, j := range idx {
		next[i] = pf.particles[j]
	}
	pf.swap(next)
	pf.weights, pf.degenerate = weights, degenerate
}

// logLikelihood is the log of the product of independent per-beam Gaussians
// centered on the predicted range and evaluated at the observed one.
func logLikelihood(predicted, observed components.Scan, sigma float64) float64 {
	beams := min(len(predicted), len(observed))
	var sum float64
	for b := 0; b < beams; b++ {
		sum += distuv.Normal{Mu: predicted[b], Sigma: sigma}.LogProb(observed[b])
	}
	return sum
}

// normalizeLogWeights exponentiates log weights relative to their maximum and
// scales them to sum to one. If no weight is finite the result is uniform and
// degenerate is true.
func normalizeLogWeights(logw []float64) (w []float64, degenerate bool) {
	n := len(logw)
	w = make([]float64, n)

	maxLog := math.Inf(-1)
	for _, lw := range logw {
		if !math.IsNaN(lw) && lw > maxLog {
			maxLog = lw
		}
	}

	if !math.IsInf(maxLog, -1) && !math.IsInf(maxLog, 1) {
		for i, lw := range logw {
			if math.IsNaN(lw) {
				continue
			}
			w[i] = math.Exp(lw - maxLog)
		}
		if sum := floats.Sum(w); sum > 0 && !math.IsInf(sum, 0) {
			floats.Scale(1/sum, w)
			return w, false
		}
	}

	for i := range w {
		w[i] = 1 / float64(n)
	}
	return w, true
}

// swap installs a fully built population.
func (pf *ParticleFilter) swap(next []components.Cell) {
	pf.particles = next
	pf.weights = nil
	pf.degenerate = false
}

// Len returns the particle count.
func (pf *ParticleFilter) Len() int {
	return len(pf.particles)
}

// Locations returns a copy of the particle poses in population order.
func (pf *ParticleFilter) Locations() []components.Cell {
	out := make([]components.Cell, len(pf.particles))
	copy(out, pf.particles)
	return out
}

// Weights returns a copy of the normalized weights from the most recent
// weighting step, or nil if the population has not been weighted since it
// was last replaced by initialization.
func (pf *ParticleFilter) Weights() []float64 {
	if pf.weights == nil {
		return nil
	}
	out := make([]float64, len(pf.weights))
	copy(out, pf.weights)
	return out
}

// Degenerate reports whether the last weighting fell back to uniform weights.
func (pf *ParticleFilter) Degenerate() bool {
	return pf.degenerate
}

// EffectiveSampleSize is 1/sum(w^2) over the last normalized weights.
// Before any weighting it equals the particle count.
func (pf *ParticleFilter) EffectiveSampleSize() float64 {
	if len(pf.weights) == 0 {
		return float64(len(pf.particles))
	}
	sq := floats.Dot(pf.weights, pf.weights)
	if sq == 0 {
		return 0
	}
	return 1 / sq
}

// SupposedLocation is the posterior point estimate: the coordinate-wise mean
// of all particles.
func (pf *ParticleFilter) SupposedLocation() components.Point {
	rows, cols := pf.coords()
	if len(rows) == 0 {
		return components.Point{}
	}
	return components.Point{Row: stat.Mean(rows, nil), Col: stat.Mean(cols, nil)}
}

// StdDev is the RMS distance of the particles from their mean, in cells.
func (pf *ParticleFilter) StdDev() float64 {
	rows, cols := pf.coords()
	if len(rows) == 0 {
		return 0
	}
	_, sr := stat.PopMeanStdDev(rows, nil)
	_, sc := stat.PopMeanStdDev(cols, nil)
	return math.Sqrt(sr*sr + sc*sc)
}

// StdDevDirectional is the population stddev of the cloud projected onto the
// beam direction theta, in cells. The direction follows the sensor
// convention, so theta=pi/2 measures spread along rows.
func (pf *ParticleFilter) StdDevDirectional(theta float64) float64 {
	if len(pf.particles) == 0 {
		return 0
	}
	sin, cos := math.Sincos(normalizeAngle(theta))
	proj := make([]float64, len(pf.particles))
	for i, p := range pf.particles {
		proj[i] = float64(p.Col)*cos - float64(p.Row)*sin
	}
	_, sd := stat.PopMeanStdDev(proj, nil)
	return sd
}

func (pf *ParticleFilter) coords() (rows, cols []float64) {
	rows = make([]float64, len(pf.particles))
	cols = make([]float64, len(pf.particles))
	for i, p := range pf.particles {
		rows[i] = float64(p.Row)
		cols[i] = float64(p.Col)
	}
	return rows, cols
}
