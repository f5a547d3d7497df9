// Package panel draws the live settings window shown while the demo is
// paused.
package panel

import (
	"fmt"

	"RainyDay/internal/config"

	"github.com/go-gl/mathgl/mgl32"
)

// Widgets is the immediate mode toolkit the panel draws with. Each edit
// widget returns true when the user changed the value this frame.
type Widgets interface {
	Begin(title string) bool
	End()
	Text(s string)
	Separator()
	DragFloat3(label string, v *mgl32.Vec3, speed, min, max float32) bool
	DragFloat(label string, v *float32, speed, min, max float32) bool
	SliderFloat(label string, v *float32, min, max float32) bool
	ColorEdit3(label string, v *mgl32.Vec3) bool
}

// Widget ranges.
const (
	VelocityLimit  = 15
	DirectionLimit = 20
)

// Info is the read-only state shown by the panel.
type Info struct {
	Camera mgl32.Vec3
	// FrameTime is the average frame duration in seconds.
	FrameTime float64
	Stats     fmt.Stringer
}

// Draw lays out the settings window. Edits write straight into params and
// are picked up by the next frame. It reports whether anything changed.
func Draw(w Widgets, params *config.Params, info Info) bool {
	if !w.Begin("Settings") {
		w.End()
		return false
	}
	defer w.End()

	changed := false
	w.Text(fmt.Sprintf("Camera: %f, %f, %f", info.Camera[0], info.Camera[1], info.Camera[2]))
	w.Separator()

	rain := &params.Rain
	w.Text("Rain: ")
	changed = w.DragFloat3("Rain velocity", &rain.Velocity, 0.1, -VelocityLimit, VelocityLimit) || changed
	changed = w.DragFloat("Rain splash size", &rain.SplashQuadSize, 0.01, 0.01, 0.1) || changed
	changed = w.DragFloat("Rain splash speed", &rain.SplashSpeed, 0.01, 0.1, 1.0) || changed
	w.Separator()

	light := params.Primary()
	w.Text("Light 1: ")
	changed = w.DragFloat3("light 1 direction", &light.Position, 0.1, -DirectionLimit, DirectionLimit) || changed
	changed = w.ColorEdit3("light 1 color", &light.Color) || changed
	changed = w.SliderFloat("light 1 intensity", &light.Intensity, 0, 2) || changed
	w.Separator()

	w.Text("Car paint material: ")
	changed = w.ColorEdit3("color", &params.Paint.ReflectionColor) || changed
	w.Separator()

	w.Text(frameText(info))
	return changed
}

func frameText(info Info) string {
	s := "Application average -- ms/frame"
	if info.FrameTime > 0 {
		s = fmt.Sprintf("Application average %.3f ms/frame (%.1f FPS)", info.FrameTime*1000, 1/info.FrameTime)
	}
	if info.Stats != nil {
		s += ", " + info.Stats.String()
	}
	return s
}
