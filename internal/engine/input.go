package engine

import (
	"RainyDay/internal/renderer"

	"github.com/go-gl/glfw/v3.3/glfw"
)

var movementKeys = []struct {
	key glfw.Key
	dir renderer.Movement
}{
	{glfw.KeyW, renderer.Forward},
	{glfw.KeyS, renderer.Backward},
	{glfw.KeyA, renderer.Left},
	{glfw.KeyD, renderer.Right},
}

// Input is the pause and mouse look state shared by the GLFW callbacks.
type Input struct {
	Paused     bool
	firstMouse bool
	lastX      float64
	lastY      float64
}

func NewInput() *Input {
	return &Input{firstMouse: true}
}

// TogglePause flips pause mode and returns the cursor mode to apply.
func (in *Input) TogglePause() int {
	in.Paused = !in.Paused
	if in.Paused {
		return glfw.CursorNormal
	}
	return glfw.CursorDisabled
}

// MouseMoved tracks the cursor and returns the look offsets to apply. The
// position is tracked while paused so the view does not jump on resume.
func (in *Input) MouseMoved(x, y float64) (dx, dy float32, look bool) {
	if in.firstMouse {
		in.lastX, in.lastY = x, y
		in.firstMouse = false
	}
	dx = float32(x - in.lastX)
	dy = float32(in.lastY - y) // window y grows downward
	in.lastX, in.lastY = x, y
	if in.Paused {
		return 0, 0, false
	}
	return dx, dy, true
}

// keyState reports whether a key is held. *glfw.Window satisfies it.
type keyState interface {
	GetKey(key glfw.Key) glfw.Action
}

// Move applies WASD to cam unless paused.
func (in *Input) Move(keys keyState, cam *renderer.Camera, dt float32) {
	if in.Paused {
		return
	}
	for _, m := range movementKeys {
		if keys.GetKey(m.key) == glfw.Press {
			cam.ProcessKeyboard(m.dir, dt)
		}
	}
}
