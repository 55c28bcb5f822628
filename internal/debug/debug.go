package debug

import (
	"fmt"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-engine/internal/compose"
)

const (
	fontSize   = 20
	padding    = 12
	lineHeight = fontSize + 4
	// Text is refreshed every updateInterval frames.
	updateInterval = 30
)

// Debug draws runtime overlays in the top-right corner. All overlays are off by default.
type Debug struct {
	ShowFPS      bool
	ShowMemAlloc bool
	ShowStats    bool
	frameCount   uint32
	fpsText      string
	memText      string
	statsText    string
	memStats     runtime.MemStats
}

// New returns a Debug with all overlays hidden.
func New() *Debug {
	return &Debug{}
}

// SetShowFPS sets whether the FPS counter is drawn.
func (d *Debug) SetShowFPS(show bool) {
	d.ShowFPS = show
}

// SetShowMemAlloc sets whether heap usage is drawn.
func (d *Debug) SetShowMemAlloc(show bool) {
	d.ShowMemAlloc = show
}

// SetShowStats sets whether the frame statistics line is drawn.
func (d *Debug) SetShowStats(show bool) {
	d.ShowStats = show
}

// Stats formats the per-frame counters of a composed frame.
func Stats(f *compose.Frame, pending int) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("objects %d  effects %d  loading %d  errors %d", len(f.Objects), f.Visuals, pending, len(f.Errors))
}

// Draw renders the enabled overlays. f may be nil.
func (d *Debug) Draw(f *compose.Frame, pending int) {
	d.frameCount++
	refresh := d.frameCount%updateInterval == 0
	y := int32(padding)
	if d.ShowFPS {
		if refresh || d.fpsText == "" {
			d.fpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		y = drawRight(d.fpsText, y)
	}
	if d.ShowMemAlloc {
		if refresh || d.memText == "" {
			runtime.ReadMemStats(&d.memStats)
			d.memText = fmt.Sprintf("Mem: %.2f MiB", float64(d.memStats.Alloc)/(1024*1024))
		}
		y = drawRight(d.memText, y)
	}
	if d.ShowStats {
		if refresh || d.statsText == "" {
			d.statsText = Stats(f, pending)
		}
		drawRight(d.statsText, y)
	}
}

func drawRight(text string, y int32) int32 {
	if text == "" {
		return y
	}
	x := int32(rl.GetScreenWidth()) - rl.MeasureText(text, fontSize) - padding
	rl.DrawText(text, x, y, fontSize, rl.Green)
	return y + lineHeight
}
