package panel

import (
	"RainyDay/internal/config"
	"RainyDay/internal/gpu"
	"RainyDay/internal/logger"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/inkyblackness/imgui-go/v4"
)

// Overlay is the Dear ImGui context, GLFW input feed and OpenGL 3 renderer
// used to show the panel on top of the frame.
type Overlay struct {
	context  *imgui.Context
	input    *glfwInput
	renderer *openGL3
}

// NewOverlay creates the ImGui context for window. The GL context of window
// must be current.
func NewOverlay(window *glfw.Window) (*Overlay, error) {
	ctx := imgui.CreateContext(nil)
	io := imgui.CurrentIO()
	imgui.StyleColorsDark()

	r, err := newOpenGL3(io)
	if err != nil {
		ctx.Destroy()
		return nil, err
	}
	logger.Log.Info("ImGui overlay initialized")
	return &Overlay{context: ctx, input: newGLFWInput(io, window), renderer: r}, nil
}

// Render draws the settings window into the bound framebuffer with sRGB
// conversion off. It reports whether any parameter was edited.
func (o *Overlay) Render(dev gpu.Device, params *config.Params, info Info) bool {
	o.input.newFrame()
	imgui.NewFrame()
	changed := Draw(ImGui{}, params, info)
	imgui.Render()

	dev.SetFramebufferSRGB(false)
	defer dev.SetFramebufferSRGB(true)
	o.renderer.render(o.input.displaySize(), o.input.framebufferSize(), imgui.RenderedDrawData())
	return changed
}

// MouseButton forwards a GLFW mouse button event.
func (o *Overlay) MouseButton(b glfw.MouseButton, action glfw.Action) {
	o.input.mouseButton(b, action)
}

// Scroll forwards a GLFW scroll event.
func (o *Overlay) Scroll(x, y float64) {
	o.input.scroll(x, y)
}

// WantsMouse reports whether ImGui is using the mouse this frame.
func (o *Overlay) WantsMouse() bool {
	return imgui.CurrentIO().WantCaptureMouse()
}

func (o *Overlay) Destroy() {
	o.renderer.dispose()
	o.context.Destroy()
}
