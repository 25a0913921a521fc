package systems

import (
	"errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/slamsim/components"
)

// ErrBlockedStart is returned when a simulator is asked to start inside an obstacle.
var ErrBlockedStart = errors.New("start cell is blocked")

// Odometry owns the robot's true pose and reports noisy estimates of each move.
type Odometry struct {
	terrain Terrain
	pose    components.Cell
	err     float64 // noise stddev per unit of travel
	scale   float64
	rng     *rand.Rand
}

// NewOdometry places the robot at start. The start cell must be legal.
func NewOdometry(t Terrain, start components.Cell, errSigma float64, rng *rand.Rand) (*Odometry, error) {
	rows, cols := t.Dims()
	if start.Row < 0 || start.Row >= rows || start.Col < 0 || start.Col >= cols || t.Blocked(start) {
		return nil, ErrBlockedStart
	}
	return &Odometry{
		terrain: t,
		pose:    start,
		err:     math.Abs(errSigma),
		scale:   t.Scale(),
		rng:     rng,
	}, nil
}

// UpdatePosition applies cmd to the true pose and returns a noisy estimate of it.
// It returns false and leaves the pose unchanged when the destination is an
// obstacle or lies off the map.
func (o *Odometry) UpdatePosition(cmd components.Command) (components.Displacement, bool) {
	dest := o.pose.Add(cmd)
	rows, cols := o.terrain.Dims()
	if dest.Row < 0 || dest.Row >= rows || dest.Col < 0 || dest.Col >= cols || o.terrain.Blocked(dest) {
		return components.Displacement{}, false
	}
	o.pose = dest

	return components.Displacement{
		DY: o.noisy(float64(cmd.DY)),
		DX: o.noisy(float64(cmd.DX)),
	}, true
}

// noisy draws from N(d, |d|*err/scale). A zero component stays exactly zero.
func (o *Odometry) noisy(d float64) float64 {
	return distuv.Normal{Mu: d, Sigma: math.Abs(d) * o.err / o.scale, Src: o.rng}.Rand()
}

// ActualPosition returns the ground-truth pose.
func (o *Odometry) ActualPosition() components.Cell {
	return o.pose
}

// Error returns the configured odometry noise.
func (o *Odometry) Error() float64 {
	return o.err
}
