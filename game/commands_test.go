package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pthm-cable/slamsim/components"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
		ok   bool
	}{
		{"w", DirUp, true},
		{"S", DirDown, true},
		{" a ", DirLeft, true},
		{"d", DirRight, true},
		{"wa", DirUpLeft, true},
		{"aw", DirUpLeft, true},
		{"wd", DirUpRight, true},
		{"dw", DirUpRight, true},
		{"sa", DirDownLeft, true},
		{"as", DirDownLeft, true},
		{"sd", DirDownRight, true},
		{"ds", DirDownRight, true},
		{"ws", DirNone, false},
		{"x", DirNone, false},
		{"", DirNone, false},
	}

	for _, tt := range tests {
		got, ok := ParseDirection(tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
	}
}

func TestDirectionDelta(t *testing.T) {
	assert.Equal(t, components.Command{DY: -7, DX: 0}, DirUp.Delta(7))
	assert.Equal(t, components.Command{DY: 7, DX: 0}, DirDown.Delta(7))
	assert.Equal(t, components.Command{DY: 0, DX: -7}, DirLeft.Delta(7))
	assert.Equal(t, components.Command{DY: 0, DX: 7}, DirRight.Delta(7))
	assert.Equal(t, components.Command{DY: -2, DX: -2}, DirUpLeft.Delta(2))
	assert.Equal(t, components.Command{DY: 3, DX: 3}, DirDownRight.Delta(3))
	assert.True(t, DirNone.Delta(7).IsZero())
}

func TestDirectionsRoundTrip(t *testing.T) {
	for _, d := range Directions {
		got, ok := ParseDirection(d.String())
		assert.True(t, ok)
		assert.Equal(t, d, got)
		assert.False(t, d.Delta(1).IsZero())
	}
	assert.Equal(t, "none", DirNone.String())
}
