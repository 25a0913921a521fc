package camera

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.01
}

func TestNewFitsMap(t *testing.T) {
	cam := New(1280, 800, 160, 120)

	// Height limits the fit: 800/120
	if !near(cam.Zoom, 800.0/120) {
		t.Errorf("expected fit zoom %f, got %f", 800.0/120, cam.Zoom)
	}
	if cam.X != 80 || cam.Y != 60 {
		t.Errorf("expected camera at (80, 60), got (%f, %f)", cam.X, cam.Y)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1280, 800, 160, 120)

	sx, sy := cam.WorldToScreen(80, 60)
	if !near(sx, 640) || !near(sy, 400) {
		t.Errorf("expected screen center (640, 400), got (%f, %f)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 800, 160, 120)
	cam.SetZoom(20)
	cam.CenterOn(40, 30)

	testCases := []struct{ sx, sy float32 }{
		{640, 400},
		{100, 100},
		{1200, 600},
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestPanStaysInBounds(t *testing.T) {
	cam := New(1280, 800, 160, 120)
	cam.SetZoom(20) // view is 64x40 cells

	cam.Pan(-100000, -100000)
	minX, minY, _, _ := cam.VisibleWorldBounds()
	if !near(minX, 0) || !near(minY, 0) {
		t.Errorf("expected view pinned to top-left, got (%f, %f)", minX, minY)
	}

	cam.Pan(100000, 100000)
	_, _, maxX, maxY := cam.VisibleWorldBounds()
	if !near(maxX, 160) || !near(maxY, 120) {
		t.Errorf("expected view pinned to bottom-right, got (%f, %f)", maxX, maxY)
	}
}

func TestZoomedOutCenters(t *testing.T) {
	cam := New(1280, 800, 160, 120)

	// At fit zoom the width has slack, so panning cannot move off center
	cam.Pan(500, 0)
	if cam.X != 80 {
		t.Errorf("expected x to stay centered, got %f", cam.X)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 800, 160, 120)

	cam.SetZoom(0.01)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom clamped to min %f, got %f", cam.MinZoom, cam.Zoom)
	}

	cam.SetZoom(1e6)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("expected zoom clamped to max %f, got %f", cam.MaxZoom, cam.Zoom)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 800, 160, 120)
	cam.SetZoom(20)
	cam.CenterOn(80, 60)

	if !cam.IsVisible(80, 60, 1) {
		t.Error("center should be visible")
	}
	if cam.IsVisible(5, 5, 1) {
		t.Error("far corner should not be visible")
	}
	if !cam.IsVisible(47, 60, 2) {
		t.Error("point just outside the edge should be visible with radius margin")
	}
}

func TestReset(t *testing.T) {
	cam := New(1280, 800, 160, 120)
	cam.SetZoom(30)
	cam.Pan(300, 300)

	cam.Reset()
	if cam.X != 80 || cam.Y != 60 || cam.Zoom != cam.MinZoom {
		t.Errorf("reset failed: (%f, %f) zoom %f", cam.X, cam.Y, cam.Zoom)
	}
}

func TestResizeKeepsZoomInRange(t *testing.T) {
	cam := New(1280, 800, 160, 120)
	cam.Resize(2560, 1600)
	if cam.Zoom < cam.MinZoom {
		t.Errorf("zoom %f below new min %f", cam.Zoom, cam.MinZoom)
	}
}
