package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slamsim/camera"
	"github.com/pthm-cable/slamsim/renderer"
	"github.com/pthm-cable/slamsim/telemetry"
	"github.com/pthm-cable/slamsim/ui"
)

const (
	panelWidth   = 230
	panelPadding = 10
)

// initRendering creates the camera, renderers and panels. Requires an open window.
func (g *Game) initRendering() {
	rows, cols := g.world.Dims()

	g.camera = camera.New(g.screenWidth, g.screenHeight, float32(cols), float32(rows))
	g.backgroundRenderer = renderer.NewBackgroundRenderer(12, 14, 18)
	g.mapRenderer = renderer.NewMapRenderer()
	g.mapRenderer.Init(g.world)
	g.occupancyRenderer = renderer.NewOccupancyRenderer()
	g.occupancyRenderer.Init(rows, cols)
	g.occupancyRenderer.Update(g.grid.Snapshot())
	g.particleRenderer = renderer.NewParticleRenderer()

	g.overlays = ui.NewOverlayRegistry()
	for _, id := range defaultOverlays {
		g.overlays.SetEnabled(id, true)
	}
	g.hud = ui.NewHUD()
	g.perfPanel = ui.NewPerfPanel(0, 0)
	g.phases = telemetry.NewPhaseRegistry()
	g.controlsPanel = ui.NewControlsPanel(panelPadding, 100, panelWidth)
	g.quickStats = ui.NewQuickStatsPanel(0, 0, panelWidth)
	g.inspector = ui.NewInspector(0, 0, panelWidth)
	g.showInspector = true
	g.layoutPanels()

	// Upload the new grid after every cycle
	g.AddObserver(ObserverFunc(func(CycleResult) {
		g.occupancyRenderer.Update(g.grid.Snapshot())
	}))
}

// layoutPanels anchors the right-hand panels to the window edge.
func (g *Game) layoutPanels() {
	if g.inspector == nil {
		return
	}
	x := int32(g.screenWidth) - panelWidth - panelPadding
	g.inspector.SetPosition(x, panelPadding)
	g.quickStats.SetPosition(x, int32(g.screenHeight)-150)
	g.perfPanel.SetPosition(panelPadding, int32(g.screenHeight)-150)
}

// unloadRendering frees GPU resources.
func (g *Game) unloadRendering() {
	if g.mapRenderer != nil {
		g.mapRenderer.Unload()
	}
	if g.occupancyRenderer != nil {
		g.occupancyRenderer.Unload()
	}
}

// Draw renders the game state.
func (g *Game) Draw() {
	rl.BeginDrawing()

	g.backgroundRenderer.Draw()
	g.drawActiveOverlays()
	g.drawTooltip()
	g.drawUI()

	rl.EndDrawing()
}

// drawUI draws the HUD and panels.
func (g *Game) drawUI() {
	var cmd string
	if g.hasLast {
		cmd = g.last.Direction.String()
		if !g.last.Legal {
			cmd += " (blocked)"
		}
	}

	g.hud.Draw(ui.HUDData{
		Title:     "Monte Carlo Localization",
		Mode:      g.cfg.Robot.Mode,
		Cycle:     g.cycle,
		Particles: g.filter.Len(),
		Command:   cmd,
		Error:     g.last.Error,
		Spread:    g.last.Spread,
		ESS:       g.last.ESS,
		FPS:       rl.GetFPS(),
		Paused:    g.paused,
		Autopilot: g.autopilot,
	})

	g.controlsPanel.Draw(g.overlays, string(g.last.Direction), g.hasLast)

	if g.showInspector {
		g.inspector.Draw(ui.InspectorData{
			TrueRow:    g.last.Truth.Row,
			TrueCol:    g.last.Truth.Col,
			EstRow:     g.last.Estimate.Row,
			EstCol:     g.last.Estimate.Col,
			OdomDY:     g.last.Odometry.DY,
			OdomDX:     g.last.Odometry.DX,
			Legal:      g.last.Legal,
			Error:      g.last.Error,
			Spread:     g.last.Spread,
			ESS:        g.last.ESS,
			Particles:  g.filter.Len(),
			Degenerate: g.last.Degenerate,
			MapUpdates: g.last.MapUpdates,
			Scan:       g.last.Scan,
			MaxRange:   g.cfg.Sensor.MaxRange,
		})
	}

	w := g.lastWindow
	g.quickStats.Draw(ui.QuickStatsData{
		ErrorMean:        w.ErrorMean,
		ErrorP90:         w.ErrorP90,
		IllegalMoves:     w.IllegalMoves,
		DegenerateCycles: w.DegenerateCycles,
		MapError:         w.MapError,
		Converged:        g.bookmarks.Converged(),
	})

	if g.showPerf {
		stats := g.perf.Stats()
		g.perfPanel.Draw(ui.PerfPanelData{
			PhaseAvg: stats.PhaseAvg,
			Total:    stats.AvgCycleDuration,
		}, g.phases.IDs(), g.phases.Name)
	}

	g.hud.DrawControls(int32(g.screenWidth), int32(g.screenHeight),
		fmt.Sprintf("WASD/QEZC: Move | N: Sense | R: Autopilot (%dx) | SPACE: Pause | < >: Speed | Arrows/Wheel: View | F: Follow | TAB: Overlays | I: Inspector | F3: Perf",
			g.stepsPerUpdate))
}
