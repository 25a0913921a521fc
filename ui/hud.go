package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	Mode      string
	Cycle     int
	Particles int
	Command   string
	Error     float64
	Spread    float64
	ESS       float64
	FPS       int32
	Paused    bool
	Autopilot bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Mode: %s | Step: %d | Particles: %d | Last: %s", data.Mode, data.Cycle, data.Particles, data.Command),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Error: %.2f | Spread: %.2f | ESS: %.0f | FPS: %d", data.Error, data.Spread, data.ESS, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	rl.DrawText(statusText(data.Paused, data.Autopilot), 10, 75, 16, rl.Yellow)
}

func statusText(paused, autopilot bool) string {
	switch {
	case paused:
		return "PAUSED"
	case autopilot:
		return "Autopilot"
	default:
		return "Manual"
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	PhaseAvg map[string]time.Duration
	Total    time.Duration
}

// PerfPanel renders the per-phase cycle timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel. ids fixes the row order and label
// maps each phase ID to its display name.
func (p *PerfPanel) Draw(data PerfPanelData, ids []string, label func(id string) string) {
	x := p.x
	y := p.y

	rl.DrawText("Cycle Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Total: %s", data.Total.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, id := range ids {
		avg := data.PhaseAvg[id]
		pct := float64(0)
		if data.Total > 0 {
			pct = float64(avg) / float64(data.Total) * 100
		}

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", label(id), avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
