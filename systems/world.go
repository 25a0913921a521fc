package systems

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"math"
	"os"
	"strings"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/slamsim/components"
)

// Terrain is the ground-truth environment consumed by the odometry, sensor,
// particle filter and mapper.
type Terrain interface {
	Dims() (rows, cols int)
	// Scale is the physical size of one cell.
	Scale() float64
	// Blocked reports whether a cell holds an obstacle. Out-of-range cells are clamped first.
	Blocked(c components.Cell) bool
	// Clamp snaps arbitrary coordinates onto the map.
	Clamp(row, col int) components.Cell
	// LegalCells lists every obstacle-free cell in row-major order.
	LegalCells() []components.Cell
	// OccupancyFraction is the share of cells holding an obstacle.
	OccupancyFraction() float64
}

// ErrEmptyMap is returned when a map source has no cells.
var ErrEmptyMap = errors.New("map has no cells")

// WorldMap is a binary obstacle grid. It implements Terrain.
type WorldMap struct {
	rows, cols int
	scale      float64
	blocked    []bool

	legal      []components.Cell
	legalValid bool
}

// NewWorldMap creates an obstacle-free map.
func NewWorldMap(rows, cols int, scale float64) *WorldMap {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	if scale <= 0 {
		scale = 1
	}
	return &WorldMap{
		rows:    rows,
		cols:    cols,
		scale:   scale,
		blocked: make([]bool, rows*cols),
	}
}

// ParseWorldMap builds a map from ASCII rows: '#' is an obstacle, anything
// else is free. Short rows are padded with free cells.
func ParseWorldMap(text string, scale float64) (*WorldMap, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyMap
	}

	cols := 0
	for _, line := range lines {
		if len(line) > cols {
			cols = len(line)
		}
	}

	m := NewWorldMap(len(lines), cols, scale)
	for r, line := range lines {
		for c := 0; c < len(line); c++ {
			if line[c] == '#' {
				m.blocked[r*cols+c] = true
			}
		}
	}
	return m, nil
}

// LoadWorldMapPNG reads a black-and-white floor plan. Pixels darker than
// mid-gray are obstacles.
func LoadWorldMapPNG(path string, scale float64) (*WorldMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening map image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding map image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, ErrEmptyMap
	}

	m := NewWorldMap(b.Dy(), b.Dx(), scale)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			if g.Y < 128 {
				m.blocked[(y-b.Min.Y)*m.cols+(x-b.Min.X)] = true
			}
		}
	}
	return m, nil
}

// GeneratorParams controls procedural map generation.
type GeneratorParams struct {
	NoiseScale float64 // base noise frequency per cell
	Octaves    int
	Lacunarity float64 // frequency multiplier per octave
	Gain       float64 // amplitude multiplier per octave
	Threshold  float64 // normalized noise above this becomes an obstacle
	Border     int     // wall thickness around the map edge
}

// GenerateWorldMap builds a cave-like map by thresholding fractal OpenSimplex noise.
// The same seed always produces the same map.
func GenerateWorldMap(rows, cols int, scale float64, p GeneratorParams, seed int64) *WorldMap {
	m := NewWorldMap(rows, cols, scale)
	noise := opensimplex.NewNormalized(seed)

	octaves := p.Octaves
	if octaves < 1 {
		octaves = 1
	}

	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			if fbm(noise, float64(c)*p.NoiseScale, float64(r)*p.NoiseScale, octaves, p.Lacunarity, p.Gain) > p.Threshold {
				m.blocked[r*m.cols+c] = true
			}
		}
	}

	m.addBorder(p.Border)
	return m
}

// fbm sums octaves of normalized noise and rescales the result back to [0,1].
func fbm(noise opensimplex.Noise, x, y float64, octaves int, lacunarity, gain float64) float64 {
	var sum, norm float64
	amp, freq := 1.0, 1.0
	for i := 0; i < octaves; i++ {
		sum += amp * noise.Eval2(x*freq, y*freq)
		norm += amp
		amp *= gain
		freq *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

// addBorder walls off the outer ring of the map.
func (m *WorldMap) addBorder(width int) {
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			if r < width || c < width || r >= m.rows-width || c >= m.cols-width {
				m.blocked[r*m.cols+c] = true
			}
		}
	}
	m.legalValid = false
}

// Dims returns the map size in cells.
func (m *WorldMap) Dims() (rows, cols int) {
	return m.rows, m.cols
}

// Scale returns the physical size of one cell.
func (m *WorldMap) Scale() float64 {
	return m.scale
}

// InBounds reports whether the cell lies on the map.
func (m *WorldMap) InBounds(c components.Cell) bool {
	return c.Row >= 0 && c.Row < m.rows && c.Col >= 0 && c.Col < m.cols
}

// Clamp snaps coordinates onto the map.
func (m *WorldMap) Clamp(row, col int) components.Cell {
	return components.Cell{Row: clampInt(row, 0, m.rows-1), Col: clampInt(col, 0, m.cols-1)}
}

// Blocked reports whether the (clamped) cell holds an obstacle.
func (m *WorldMap) Blocked(c components.Cell) bool {
	c = m.Clamp(c.Row, c.Col)
	return m.blocked[c.Row*m.cols+c.Col]
}

// SetBlocked marks or clears an obstacle. Out-of-range cells are ignored.
func (m *WorldMap) SetBlocked(c components.Cell, blocked bool) {
	if !m.InBounds(c) {
		return
	}
	m.blocked[c.Row*m.cols+c.Col] = blocked
	m.legalValid = false
}

// LegalCells returns every obstacle-free cell in row-major order.
// The slice is cached and must not be modified by callers.
func (m *WorldMap) LegalCells() []components.Cell {
	if m.legalValid {
		return m.legal
	}
	m.legal = m.legal[:0]
	for i, b := range m.blocked {
		if !b {
			m.legal = append(m.legal, components.Cell{Row: i / m.cols, Col: i % m.cols})
		}
	}
	m.legalValid = true
	return m.legal
}

// OccupancyFraction returns the share of cells that are obstacles.
func (m *WorldMap) OccupancyFraction() float64 {
	total := len(m.blocked)
	return float64(total-len(m.LegalCells())) / float64(total)
}

// NearestLegal returns the obstacle-free cell closest to c.
// The second result is false when the map has no legal cells.
func (m *WorldMap) NearestLegal(c components.Cell) (components.Cell, bool) {
	c = m.Clamp(c.Row, c.Col)
	if !m.Blocked(c) {
		return c, true
	}
	best := components.Cell{}
	bestDist := math.Inf(1)
	for _, l := range m.LegalCells() {
		d := math.Hypot(float64(l.Row-c.Row), float64(l.Col-c.Col))
		if d < bestDist {
			best, bestDist = l, d
		}
	}
	return best, !math.IsInf(bestDist, 1)
}
