package game

import rl "github.com/gen2brain/raylib-go/raylib"

// diagonalKeys are single-key shortcuts for the two-key diagonals.
var diagonalKeys = []struct {
	key int32
	dir Direction
}{
	{rl.KeyQ, DirUpLeft},
	{rl.KeyE, DirUpRight},
	{rl.KeyZ, DirDownLeft},
	{rl.KeyC, DirDownRight},
}

// handleInput processes keyboard input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.autopilot = !g.autopilot
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		g.controlsPanel.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyI) {
		g.showInspector = !g.showInspector
	}
	if rl.IsKeyPressed(rl.KeyF3) {
		g.showPerf = !g.showPerf
	}
	if rl.IsKeyPressed(rl.KeyL) {
		g.logWorldState()
		g.logPerfStats()
	}

	g.handleOverlayKeys()
	g.handleMoveInput()
	g.handleCameraInput()
}

// handleMoveInput queues a manual command. W/S and A/D held together form a diagonal.
func (g *Game) handleMoveInput() {
	for _, dk := range diagonalKeys {
		if rl.IsKeyPressed(dk.key) {
			g.queue(dk.dir)
			return
		}
	}
	if rl.IsKeyPressed(rl.KeyN) {
		g.queue(DirNone)
		return
	}

	if !(rl.IsKeyPressed(rl.KeyW) || rl.IsKeyPressed(rl.KeyS) ||
		rl.IsKeyPressed(rl.KeyA) || rl.IsKeyPressed(rl.KeyD)) {
		return
	}
	keys := ""
	switch {
	case rl.IsKeyDown(rl.KeyW):
		keys += "w"
	case rl.IsKeyDown(rl.KeyS):
		keys += "s"
	}
	switch {
	case rl.IsKeyDown(rl.KeyA):
		keys += "a"
	case rl.IsKeyDown(rl.KeyD):
		keys += "d"
	}
	if dir, ok := ParseDirection(keys); ok {
		g.queue(dir)
	}
}

// queue schedules dir for the next Update. Manual driving pauses the autopilot.
func (g *Game) queue(dir Direction) {
	g.pending, g.hasPending = dir, true
	g.autopilot = false
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	if g.camera != nil {
		g.camera.Resize(w, h)
	}
	g.layoutPanels()
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	if g.camera == nil {
		return
	}

	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / g.camera.Zoom

	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -panSpeed)
	}

	wheelMove := rl.GetMouseWheelMove()
	if wheelMove != 0 {
		g.camera.ZoomBy(1.0 + wheelMove*0.1)
	}

	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	// F centers on the estimate, Home resets the view
	if rl.IsKeyPressed(rl.KeyF) {
		est := g.filter.SupposedLocation()
		g.camera.CenterOn(float32(est.Col)+0.5, float32(est.Row)+0.5)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}
