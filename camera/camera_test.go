package camera

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	cam := New(800, 600, 800, 600)

	if cam.X != 400 || cam.Y != 300 {
		t.Errorf("expected camera at (400, 300), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(800, 600, 800, 600)
	cam.SetZoom(2)
	cam.Pan(100, 50)

	testCases := []struct{ sx, sy float32 }{
		{400, 300},
		{10, 10},
		{790, 590},
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if math.Abs(float64(sx-tc.sx)) > 0.01 || math.Abs(float64(sy-tc.sy)) > 0.01 {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestCellAt(t *testing.T) {
	cam := New(400, 300, 400, 300) // 20x15 grid of 20px cells

	tests := []struct {
		name   string
		sx, sy float32
		wantX  int
		wantY  int
		wantOK bool
	}{
		{"origin", 0, 0, 0, 0, true},
		{"inside", 45, 21, 2, 1, true},
		{"last cell", 399, 299, 19, 14, true},
		{"right of viewport", 400, 10, 0, 0, false},
		{"negative", -1, 10, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, ok := cam.CellAt(tt.sx, tt.sy, 20)
			if ok != tt.wantOK || (ok && (x != tt.wantX || y != tt.wantY)) {
				t.Errorf("CellAt(%v, %v) = (%d, %d, %v), want (%d, %d, %v)",
					tt.sx, tt.sy, x, y, ok, tt.wantX, tt.wantY, tt.wantOK)
			}
		})
	}
}

func TestCellAt_Zoomed(t *testing.T) {
	cam := New(400, 300, 400, 300)
	cam.SetZoom(2)

	// Centered at (200, 150): the screen center maps to cell (10, 7)
	x, y, ok := cam.CellAt(200, 150, 20)
	if !ok || x != 10 || y != 7 {
		t.Errorf("got (%d, %d, %v), want (10, 7, true)", x, y, ok)
	}
}

func TestPanClampsToEdges(t *testing.T) {
	cam := New(400, 300, 400, 300)

	// At zoom 1 the whole grid is visible and panning has no effect
	cam.Pan(-500, 500)
	if cam.X != 200 || cam.Y != 150 {
		t.Errorf("expected camera pinned at center, got (%f, %f)", cam.X, cam.Y)
	}

	cam.SetZoom(2)
	cam.Pan(-10000, -10000)
	minX, minY, _, _ := cam.VisibleWorldBounds()
	if minX != 0 || minY != 0 {
		t.Errorf("view should stop at the top-left edge, got (%f, %f)", minX, minY)
	}

	cam.Pan(10000, 10000)
	_, _, maxX, maxY := cam.VisibleWorldBounds()
	if maxX != 400 || maxY != 300 {
		t.Errorf("view should stop at the bottom-right edge, got (%f, %f)", maxX, maxY)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(400, 300, 400, 300)

	cam.SetZoom(0.1)
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom clamped to 1.0, got %f", cam.Zoom)
	}

	cam.SetZoom(10.0)
	if cam.Zoom != 4.0 {
		t.Errorf("expected zoom clamped to 4.0, got %f", cam.Zoom)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(400, 300, 400, 300)
	cam.SetZoom(4)
	cam.Pan(-10000, -10000)

	if !cam.IsVisible(10, 10, 10) {
		t.Error("top-left cell should be visible")
	}
	if cam.IsVisible(390, 290, 10) {
		t.Error("far corner should not be visible when zoomed into the opposite one")
	}
}

func TestReset(t *testing.T) {
	cam := New(400, 300, 400, 300)
	cam.SetZoom(2.5)
	cam.Pan(100, 100)

	cam.Reset()

	if cam.X != 200 || cam.Y != 150 {
		t.Errorf("expected position (200, 150), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}
