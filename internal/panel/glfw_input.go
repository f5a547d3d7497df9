package panel

import (
	"math"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/inkyblackness/imgui-go/v4"
)

var mouseButtons = []glfw.MouseButton{glfw.MouseButtonLeft, glfw.MouseButtonRight, glfw.MouseButtonMiddle}

// glfwInput feeds window size, time and mouse state to ImGui. The engine owns
// the GLFW callbacks and forwards button and scroll events here.
type glfwInput struct {
	io          imgui.IO
	window      *glfw.Window
	time        float64
	justPressed [3]bool
}

func newGLFWInput(io imgui.IO, window *glfw.Window) *glfwInput {
	return &glfwInput{io: io, window: window}
}

func (p *glfwInput) newFrame() {
	p.io.SetDisplaySize(imgui.Vec2{X: p.displaySize()[0], Y: p.displaySize()[1]})

	now := glfw.GetTime()
	if p.time > 0 {
		p.io.SetDeltaTime(float32(now - p.time))
	} else {
		p.io.SetDeltaTime(1.0 / 60.0)
	}
	p.time = now

	if p.window.GetAttrib(glfw.Focused) != 0 {
		x, y := p.window.GetCursorPos()
		p.io.SetMousePosition(imgui.Vec2{X: float32(x), Y: float32(y)})
	} else {
		p.io.SetMousePosition(imgui.Vec2{X: -math.MaxFloat32, Y: -math.MaxFloat32})
	}

	for i, b := range mouseButtons {
		down := p.justPressed[i] || p.window.GetMouseButton(b) == glfw.Press
		p.io.SetMouseButtonDown(i, down)
		p.justPressed[i] = false
	}
}

// mouseButton records presses shorter than a frame so they are not lost.
func (p *glfwInput) mouseButton(b glfw.MouseButton, action glfw.Action) {
	for i, mb := range mouseButtons {
		if mb == b && action == glfw.Press {
			p.justPressed[i] = true
		}
	}
}

func (p *glfwInput) scroll(x, y float64) {
	p.io.AddMouseWheelDelta(float32(x), float32(y))
}

func (p *glfwInput) displaySize() [2]float32 {
	w, h := p.window.GetSize()
	return [2]float32{float32(w), float32(h)}
}

func (p *glfwInput) framebufferSize() [2]float32 {
	w, h := p.window.GetFramebufferSize()
	return [2]float32{float32(w), float32(h)}
}
