package systems

import (
	"math"

	"github.com/pthm-cable/slamsim/components"
)

// PoseEstimator supplies the localization belief the mapper projects scans from.
type PoseEstimator interface {
	SupposedLocation() components.Point
	StdDevDirectional(theta float64) float64
}

// MapperParams configures the occupancy grid update.
type MapperParams struct {
	LearningRate float64 // weight of a new observation in the blend, in [0,1]
	SensorNoise  float64 // range stddev, physical units
	Scale        float64 // physical size of one cell
	MaxRange     float64
	SkipMargin   float64 // beams within this much of MaxRange count as misses
	SpanSigmas   float64 // length of the updated segment, in sigmas
}

// OccupancyGrid holds the per-cell probability that a cell is an obstacle.
// Each observation is blended in with an exponential moving average, so
// values never leave [0,1].
type OccupancyGrid struct {
	rows, cols int
	prob       []float64
	params     MapperParams
	estimator  PoseEstimator
}

// NewOccupancyGrid creates a grid filled with a uniform prior.
func NewOccupancyGrid(rows, cols int, prior float64, p MapperParams, est PoseEstimator) *OccupancyGrid {
	p.LearningRate = clamp01(p.LearningRate)
	if p.Scale <= 0 {
		p.Scale = 1
	}
	if p.SpanSigmas <= 0 {
		p.SpanSigmas = 8
	}
	g := &OccupancyGrid{
		rows:      rows,
		cols:      cols,
		prob:      make([]float64, rows*cols),
		params:    p,
		estimator: est,
	}
	prior = clamp01(prior)
	for i := range g.prob {
		g.prob[i] = prior
	}
	return g
}

// UpdateMap fuses one scan into the grid using the estimator's current mean
// pose and directional uncertainty. Beams at or near max range carry no
// evidence and are skipped; free space along a ray is not carved. It returns
// the number of cell updates applied.
func (g *OccupancyGrid) UpdateMap(angles []float64, ranges components.Scan) int {
	mean := g.estimator.SupposedLocation()
	scale := g.params.Scale
	updated := 0

	beams := min(len(angles), len(ranges))
	for b := 0; b < beams; b++ {
		r := ranges[b]
		if r >= g.params.MaxRange-g.params.SkipMargin {
			continue
		}

		theta := normalizeAngle(angles[b])
		posSigma := g.estimator.StdDevDirectional(theta) * scale
		sigma := math.Sqrt(g.params.SensorNoise*g.params.SensorNoise + posSigma*posSigma)
		if sigma < minLikelihoodSigma {
			sigma = minLikelihoodSigma
		}

		sin, cos := math.Sincos(theta)
		hit := components.Point{
			Row: mean.Row - r/scale*sin,
			Col: mean.Col + r/scale*cos,
		}

		for _, c := range g.cellsOnSegment(hit, g.params.SpanSigmas*sigma/scale, sin, cos) {
			if c.Row < 0 || c.Row >= g.rows || c.Col < 0 || c.Col >= g.cols {
				continue
			}
			d := c.Point().Distance(mean) * scale
			z := (d - r) / sigma
			likelihood := math.Exp(-0.5 * z * z)

			i := c.Row*g.cols + c.Col
			lr := g.params.LearningRate
			g.prob[i] = clamp01(lr*likelihood + (1-lr)*g.prob[i])
			updated++
		}
	}
	return updated
}

// cellsOnSegment samples a segment of the given length in cells, centered on
// center and oriented along the beam, every half cell. Each cell appears once.
func (g *OccupancyGrid) cellsOnSegment(center components.Point, length, sin, cos float64) []components.Cell {
	half := length / 2
	samples := int(math.Ceil(length/0.5)) + 1
	seen := make(map[components.Cell]struct{}, samples)
	cells := make([]components.Cell, 0, samples)

	for s := 0; s < samples; s++ {
		t := -half
		if samples > 1 {
			t += length * float64(s) / float64(samples-1)
		}
		c := components.Point{Row: center.Row - t*sin, Col: center.Col + t*cos}.Round()
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		cells = append(cells, c)
	}
	return cells
}

// Dims returns the grid size in cells.
func (g *OccupancyGrid) Dims() (rows, cols int) {
	return g.rows, g.cols
}

// At returns the obstacle probability of a cell, or 0 off the grid.
func (g *OccupancyGrid) At(row, col int) float64 {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return 0
	}
	return g.prob[row*g.cols+col]
}

// Snapshot returns a row-major copy of the grid.
func (g *OccupancyGrid) Snapshot() []float64 {
	out := make([]float64, len(g.prob))
	copy(out, g.prob)
	return out
}

// MeanAbsError compares the grid against a ground-truth map, counting an
// obstacle as 1 and free space as 0.
func (g *OccupancyGrid) MeanAbsError(t Terrain) float64 {
	if len(g.prob) == 0 {
		return 0
	}
	var sum float64
	for i, p := range g.prob {
		truth := 0.0
		if t.Blocked(components.Cell{Row: i / g.cols, Col: i % g.cols}) {
			truth = 1
		}
		sum += math.Abs(p - truth)
	}
	return sum / float64(len(g.prob))
}
