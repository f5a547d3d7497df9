package engine

import (
	"context"
	"fmt"
	"io/fs"
	"runtime"
	"time"

	"RainyDay/internal/config"
	"RainyDay/internal/gpu"
	"RainyDay/internal/loader"
	"RainyDay/internal/logger"
	"RainyDay/internal/panel"
	"RainyDay/internal/renderer"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var cameraStart = mgl32.Vec3{0, 1.6, 5}

// Engine owns the window and drives the frame loop on the thread that
// created the GL context.
type Engine struct {
	Params *config.Params
	Camera *renderer.Camera

	window   *glfw.Window
	dev      *gpu.GL
	renderer *renderer.Renderer
	overlay  *panel.Overlay
	watcher  *renderer.ShaderWatcher
	shaders  fs.FS
	input    *Input
	pacer    *Pacer
	timer    FrameTimer
	width    int32
	height   int32
}

// Run opens the window, builds the renderer and loops until the window is
// closed or ctx is cancelled.
func Run(ctx context.Context, cfg config.Config) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("engine: init glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.SRGBCapable, glfw.True)

	window, err := glfw.CreateWindow(cfg.App.Width, cfg.App.Height, cfg.App.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("engine: create window: %w", err)
	}
	defer window.Destroy()
	window.MakeContextCurrent()
	styleTitleBar(window)

	e, err := newEngine(window, cfg)
	if err != nil {
		return err
	}
	defer e.release()

	e.installCallbacks()
	return e.loop(ctx)
}

func newEngine(window *glfw.Window, cfg config.Config) (*Engine, error) {
	dev, err := gpu.NewGL()
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	fbw, fbh := window.GetFramebufferSize()
	params := cfg.Params
	e := &Engine{
		Params: &params,
		Camera: renderer.NewCamera(cameraStart, int32(fbw), int32(fbh)),
		window: window,
		dev:    dev,
		input:  NewInput(),
		pacer:  NewPacer(cfg.App.MinFrameTime()),
		width:  int32(fbw),
		height: int32(fbh),
	}
	dev.SetViewport(gpu.Viewport{Width: e.width, Height: e.height})

	opts := renderer.Options{
		AssetRoot: cfg.App.AssetRoot,
		Shaders:   renderer.ShaderFS(cfg.App.ShaderDir),
		Shading:   renderer.Shading(cfg.App.Shading),
		SkyboxExt: cfg.App.SkyboxFaceExt,
		Seed:      uint64(time.Now().UnixNano()),
	}
	if cfg.App.MeshCache != "" {
		opts.LoadMesh = loader.CachedOBJ(cfg.App.MeshCache)
	}
	e.shaders = opts.Shaders
	e.renderer, err = renderer.New(dev, e.Params, opts)
	if err != nil {
		return nil, err
	}

	e.overlay, err = panel.NewOverlay(window)
	if err != nil {
		e.renderer.Release()
		return nil, fmt.Errorf("engine: %w", err)
	}

	if cfg.App.HotReload {
		if cfg.App.ShaderDir == "" {
			logger.Log.Warn("Hot reload needs shader_dir, the embedded shaders cannot change")
		} else if e.watcher, err = renderer.NewShaderWatcher(cfg.App.ShaderDir); err != nil {
			logger.Log.Error("Shader hot reload disabled", zap.Error(err))
		}
	}

	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	return e, nil
}

func (e *Engine) installCallbacks() {
	e.window.SetKeyCallback(e.keyCallback)
	e.window.SetCursorPosCallback(e.mouseCallback)
	e.window.SetMouseButtonCallback(e.mouseButtonCallback)
	e.window.SetScrollCallback(e.scrollCallback)
	e.window.SetFramebufferSizeCallback(e.resizeCallback)
}

func (e *Engine) loop(ctx context.Context) error {
	start := glfw.GetTime()
	last := start
	for !e.window.ShouldClose() {
		e.pacer.Begin()
		now := glfw.GetTime()
		dt := now - last
		last = now
		e.timer.Add(dt)

		e.reloadChangedShaders()
		e.input.Move(e.window, e.Camera, float32(dt))

		stats := e.renderer.Frame(renderer.FrameInput{
			Params:    e.Params,
			Camera:    e.Camera,
			Time:      float32(now - start),
			DeltaTime: float32(dt),
		})
		if e.input.Paused {
			e.overlay.Render(e.dev, e.Params, panel.Info{
				Camera:    e.Camera.Position,
				FrameTime: e.timer.Average(),
				Stats:     stats,
			})
		}

		e.window.SwapBuffers()
		glfw.PollEvents()

		if err := e.pacer.Wait(ctx); err != nil {
			logger.Log.Info("Shutdown requested", zap.Error(err))
			e.window.SetShouldClose(true)
		}
	}
	return nil
}

func (e *Engine) reloadChangedShaders() {
	if e.watcher == nil {
		return
	}
	changed := e.watcher.Pending()
	if len(changed) == 0 {
		return
	}
	var affected []string
	for _, file := range changed {
		affected = append(affected, renderer.ProgramForFile(e.shaders, file)...)
	}
	if len(affected) == 0 {
		logger.Log.Debug("Ignoring changes outside the shader programs", zap.Strings("files", changed))
		return
	}
	logger.Log.Info("Shader sources changed", zap.Strings("files", changed), zap.Strings("programs", affected))
	// failures are logged and the running programs stay bound
	_ = e.renderer.ReloadPrograms()
}

func (e *Engine) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeyEscape:
		w.SetShouldClose(true)
	case glfw.KeySpace:
		w.SetInputMode(glfw.CursorMode, e.input.TogglePause())
	}
}

func (e *Engine) mouseCallback(w *glfw.Window, xpos, ypos float64) {
	if dx, dy, ok := e.input.MouseMoved(xpos, ypos); ok {
		e.Camera.ProcessMouseMovement(dx, dy)
	}
}

func (e *Engine) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if e.input.Paused {
		e.overlay.MouseButton(button, action)
	}
}

func (e *Engine) scrollCallback(w *glfw.Window, xoff, yoff float64) {
	if e.input.Paused && e.overlay.WantsMouse() {
		e.overlay.Scroll(xoff, yoff)
		return
	}
	e.Camera.ProcessMouseScroll(float32(yoff))
}

func (e *Engine) resizeCallback(w *glfw.Window, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.width, e.height = int32(width), int32(height)
	e.renderer.Resize(e.width, e.height)
	e.Camera.SetViewportSize(e.width, e.height)
}

func (e *Engine) release() {
	if e.watcher != nil {
		if err := e.watcher.Close(); err != nil {
			logger.Log.Warn("Closing shader watcher", zap.Error(err))
		}
	}
	e.overlay.Destroy()
	e.renderer.Release()
}
