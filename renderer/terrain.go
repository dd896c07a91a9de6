package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/ecosim/camera"
	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/systems"
)

// TerrainSource provides the terrain layer to draw.
type TerrainSource interface {
	Dimensions() (width, height int)
	TerrainAt(p components.Position) systems.TerrainView
}

// TerrainRenderer draws the terrain layer with noise color variation.
type TerrainRenderer struct {
	cellSize float32
	noise    opensimplex.Noise
}

// NewTerrainRenderer creates a terrain renderer for cells of the given size.
func NewTerrainRenderer(cellSize int, seed int64) *TerrainRenderer {
	return &TerrainRenderer{
		cellSize: float32(cellSize),
		noise:    opensimplex.NewNormalized(seed),
	}
}

// Draw renders every visible cell.
func (r *TerrainRenderer) Draw(src TerrainSource, cam *camera.Camera) {
	w, h := src.Dimensions()
	size := r.cellSize * cam.Zoom
	half := r.cellSize / 2

	for gy := 0; gy < h; gy++ {
		for gx := 0; gx < w; gx++ {
			cx := float32(gx)*r.cellSize + half
			cy := float32(gy)*r.cellSize + half
			if !cam.IsVisible(cx, cy, half) {
				continue
			}

			view := src.TerrainAt(components.Position{X: gx, Y: gy})
			variation := float32(r.noise.Eval2(float64(gx)*0.35, float64(gy)*0.35))
			color := terrainColor(view, variation)

			sx, sy := cam.WorldToScreen(float32(gx)*r.cellSize, float32(gy)*r.cellSize)
			rl.DrawRectangle(int32(sx), int32(sy), int32(size)+1, int32(size)+1, color)

			if view.DangerMarked {
				rl.DrawRectangleLines(int32(sx)+1, int32(sy)+1, int32(size)-2, int32(size)-2, dangerColor)
			}
		}
	}
}

var dangerColor = rl.Color{R: 200, G: 60, B: 40, A: 160}

// terrainColor picks the cell's base color. variation is in [0, 1].
func terrainColor(v systems.TerrainView, variation float32) rl.Color {
	shade := 0.85 + variation*0.3
	switch v.Kind {
	case systems.TerrainSwamp:
		return scale(rl.Color{R: 60, G: 72, B: 48, A: 255}, shade)
	case systems.TerrainFoodPatch:
		// Brighter the more stock is left
		fill := float32(0.5)
		if v.RemainingStock != nil {
			fill = 0.4 + 0.06*float32(min(*v.RemainingStock, 10))
		}
		return scale(rl.Color{R: 220, G: 190, B: 70, A: 255}, shade*fill+0.2)
	default:
		return scale(rl.Color{R: 96, G: 150, B: 72, A: 255}, shade)
	}
}

func scale(c rl.Color, f float32) rl.Color {
	ch := func(v uint8) uint8 {
		x := float32(v) * f
		if x > 255 {
			return 255
		}
		return uint8(x)
	}
	return rl.Color{R: ch(c.R), G: ch(c.G), B: ch(c.B), A: c.A}
}
