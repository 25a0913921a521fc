// Package components defines the plain data records shared by the simulation
// systems: grid cells, continuous poses, motion commands and sensor scans.
package components

// Cell is a grid index in (row, col) order. Rows increase downward.
// The robot's true pose and every particle hypothesis are cells.
type Cell struct {
	Row, Col int
}

// Point is a continuous (row, col) position, used for posterior estimates.
type Point struct {
	Row, Col float64
}

// Command is a discrete motion request in pixels.
type Command struct {
	DY, DX int
}

// IsZero reports whether the command requests no movement.
func (c Command) IsZero() bool {
	return c.DY == 0 && c.DX == 0
}

// Displacement is a noisy odometry estimate of a commanded motion, in pixels.
type Displacement struct {
	DY, DX float64
}

// Offset is a beam endpoint relative to the sensor origin, in physical units.
// DY follows the grid convention (positive = down).
type Offset struct {
	DY, DX float64
}

// Scan holds one range per beam, aligned with the sensor's beam angles.
type Scan []float64

// Clone returns an independent copy of the scan.
func (s Scan) Clone() Scan {
	if s == nil {
		return nil
	}
	out := make(Scan, len(s))
	copy(out, s)
	return out
}
