package graphics

import rl "github.com/gen2brain/raylib-go/raylib"

// Window configures Run.
type Window struct {
	Title      string
	Width      int32
	Height     int32
	Fullscreen bool
	TargetFPS  int32
}

// Run opens the window and runs the main loop until it is closed. Each frame it calls
// update with the frame time in seconds, then clears the screen and calls draw.
// ESC does not quit; it is left to the caller (the terminal toggles on it).
func Run(w Window, update func(dt float32), draw func()) {
	if w.Fullscreen {
		rl.SetConfigFlags(rl.FlagFullscreenMode)
		w.Width, w.Height = int32(rl.GetMonitorWidth(0)), int32(rl.GetMonitorHeight(0))
	} else {
		rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	}
	if w.Width <= 0 || w.Height <= 0 {
		w.Width, w.Height = 1280, 720
	}
	rl.InitWindow(w.Width, w.Height, w.Title)
	defer rl.CloseWindow()

	rl.SetExitKey(rl.KeyNull)
	if w.TargetFPS <= 0 {
		w.TargetFPS = 60
	}
	rl.SetTargetFPS(w.TargetFPS)

	for !rl.WindowShouldClose() {
		update(rl.GetFrameTime())

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		draw()
		rl.EndDrawing()
	}
}
