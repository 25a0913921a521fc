package game

import (
	"strings"

	"github.com/pthm-cable/slamsim/components"
)

// Direction is one of the eight motion commands, named by the keys that
// produce it. DirNone requests no motion; the robot still senses.
type Direction string

const (
	DirNone      Direction = ""
	DirUp        Direction = "w"
	DirDown      Direction = "s"
	DirLeft      Direction = "a"
	DirRight     Direction = "d"
	DirUpLeft    Direction = "wa"
	DirUpRight   Direction = "wd"
	DirDownLeft  Direction = "sa"
	DirDownRight Direction = "sd"
)

// Directions lists every motion command in a fixed order.
var Directions = []Direction{
	DirUp, DirDown, DirLeft, DirRight,
	DirUpLeft, DirUpRight, DirDownLeft, DirDownRight,
}

// unitMoves maps every accepted key combination to a unit (row, col) step.
// Two-key diagonals are accepted in either order.
var unitMoves = map[string]struct {
	dir    Direction
	dy, dx int
}{
	"w":  {DirUp, -1, 0},
	"s":  {DirDown, 1, 0},
	"a":  {DirLeft, 0, -1},
	"d":  {DirRight, 0, 1},
	"wa": {DirUpLeft, -1, -1},
	"aw": {DirUpLeft, -1, -1},
	"wd": {DirUpRight, -1, 1},
	"dw": {DirUpRight, -1, 1},
	"sa": {DirDownLeft, 1, -1},
	"as": {DirDownLeft, 1, -1},
	"sd": {DirDownRight, 1, 1},
	"ds": {DirDownRight, 1, 1},
}

// ParseDirection normalizes a key combination. Unknown input yields DirNone and false.
func ParseDirection(s string) (Direction, bool) {
	m, ok := unitMoves[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return DirNone, false
	}
	return m.dir, true
}

// Delta returns the command for this direction with each axis scaled by step cells.
func (d Direction) Delta(step int) components.Command {
	m, ok := unitMoves[string(d)]
	if !ok {
		return components.Command{}
	}
	return components.Command{DY: m.dy * step, DX: m.dx * step}
}

// String returns the key name, or "none".
func (d Direction) String() string {
	if d == DirNone {
		return "none"
	}
	return string(d)
}
