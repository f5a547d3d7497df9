package renderer

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"RainyDay/internal/config"
	"RainyDay/internal/gpu"
	"RainyDay/internal/loader"
	"RainyDay/internal/logger"
	"RainyDay/internal/rain"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Asset locations relative to Options.AssetRoot.
const (
	SkyboxDir     = "skybox"
	SplashTexture = "rain/splashAlbedo.png"
)

var clearColor = mgl32.Vec4{0.3, 0.3, 0.3, 1}

// Options configure New. Zero values select the defaults.
type Options struct {
	AssetRoot string
	// Shaders holds the program sources. nil uses the embedded set.
	Shaders   fs.FS
	Shading   Shading
	SkyboxExt string
	// Layout is the scene description. nil uses DefaultLayout.
	Layout []Placement
	// Seed drives the rain origin jitter.
	Seed        uint64
	LoadMesh    MeshSource
	DecodeImage ImageSource
}

func (o *Options) applyDefaults() {
	if o.AssetRoot == "" {
		o.AssetRoot = "."
	}
	if o.Shaders == nil {
		o.Shaders = EmbeddedShaders()
	}
	switch o.Shading {
	case ShadingPBR, ShadingBlinnPhong:
	case "":
		o.Shading = ShadingPBR
	default:
		logger.Log.Warn("Unknown shading program, using pbr", zap.String("shading", string(o.Shading)))
		o.Shading = ShadingPBR
	}
	if o.SkyboxExt == "" {
		o.SkyboxExt = ".png"
	}
	if o.Layout == nil {
		o.Layout = DefaultLayout()
	}
	if o.LoadMesh == nil {
		o.LoadMesh = loader.LoadOBJ
	}
	if o.DecodeImage == nil {
		o.DecodeImage = loader.LoadImage
	}
}

// Programs are the compiled programs of a renderer, one per pass.
type Programs struct {
	Shading   gpu.Program
	Shadow    gpu.Program
	RainDepth gpu.Program
	Particle  gpu.Program
	Splash    gpu.Program
	Skybox    gpu.Program
}

func (p Programs) each(fn func(gpu.Program)) {
	for _, prog := range []gpu.Program{p.Shading, p.Shadow, p.RainDepth, p.Particle, p.Splash, p.Skybox} {
		if prog != nil {
			fn(prog)
		}
	}
}

// Delete releases every program.
func (p Programs) Delete() {
	p.each(func(prog gpu.Program) { prog.Delete() })
}

// CompilePrograms builds the full program set. On failure the programs
// already compiled are deleted.
func CompilePrograms(dev gpu.Device, fsys fs.FS, shading Shading) (Programs, error) {
	var p Programs
	steps := []struct {
		name string
		dst  *gpu.Program
	}{
		{string(shading), &p.Shading},
		{ProgramShadow, &p.Shadow},
		{ProgramRainDepth, &p.RainDepth},
		{ProgramParticle, &p.Particle},
		{ProgramSplash, &p.Splash},
		{ProgramSkybox, &p.Skybox},
	}
	for _, s := range steps {
		prog, err := CompileNamed(dev, fsys, s.name)
		if err != nil {
			p.Delete()
			return Programs{}, err
		}
		*s.dst = prog
	}
	return p, nil
}

// FrameInput is what changes between frames.
type FrameInput struct {
	Params    *config.Params
	Camera    *Camera
	Time      float32
	DeltaTime float32
}

// Stats describes the last frame.
type Stats struct {
	DrawCalls int
	Points    int
}

func (s Stats) String() string {
	return fmt.Sprintf("draws: %d points: %d", s.DrawCalls, s.Points)
}

// Renderer owns every pass and issues them in a fixed order each frame.
type Renderer struct {
	dev      gpu.Device
	shaders  fs.FS
	shading  Shading
	programs Programs

	textures  *TextureCache
	scene     *Scene
	skybox    *Skybox
	shadow    *DepthPass
	rainMap   *DepthPass
	lighting  *LightingPass
	particles *ParticleBuffer
	rain      *RainPass
	splash    *SplashPass

	stats Stats
}

// New compiles the programs, loads the scene and skybox, allocates the
// depth targets and seeds the rain particle buffer. Any fatal failure
// releases what was already created.
func New(dev gpu.Device, params *config.Params, opts Options) (*Renderer, error) {
	opts.applyDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var cleanup Unwind
	defer cleanup.Unwind()

	programs, err := CompilePrograms(dev, opts.Shaders, opts.Shading)
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	cleanup.Add(programs.Delete)

	r := &Renderer{dev: dev, shaders: opts.Shaders, shading: opts.Shading, programs: programs}
	r.textures = NewTextureCache(dev, opts.DecodeImage)
	cleanup.Add(r.textures.Clear)

	if r.scene, err = LoadScene(dev, r.textures, opts.AssetRoot, opts.Layout, opts.LoadMesh); err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	cleanup.Add(func() { r.scene.Release(dev) })

	r.skybox = LoadSkybox(dev, programs.Skybox, filepath.Join(opts.AssetRoot, SkyboxDir), opts.SkyboxExt, opts.DecodeImage)
	cleanup.Add(func() { r.skybox.Release(dev) })

	if r.shadow, err = NewDepthPass(dev, "shadow", ShadowSettings, programs.Shadow, "lightSpaceMatrix"); err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	cleanup.Add(func() { r.shadow.Release(dev) })

	if r.rainMap, err = NewDepthPass(dev, "rain", RainSettings, programs.RainDepth, "rainSpaceMatrix"); err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	cleanup.Add(func() { r.rainMap.Release(dev) })

	r.lighting = NewLightingPass(programs.Shading, opts.Shading.PhysicallyBased())

	r.particles = NewParticleBuffer(dev, ParticleCapacity)
	cleanup.Add(func() { r.particles.Release(dev) })
	ring, err := rain.NewRing(r.particles.Capacity(), r.particles)
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	emitted := rain.Fill(ring, params.Rain.Count, params.Rain.BoxSize, rain.NewJitter(opts.Seed))
	r.particles.Flush(dev)

	splash, err := r.textures.Load(filepath.Join(opts.AssetRoot, SplashTexture))
	if err != nil {
		logger.Log.Error("Splash texture unavailable", zap.Error(err))
	}
	r.rain = NewRainPass(programs.Particle, r.particles)
	r.splash = NewSplashPass(programs.Splash, r.particles, splash)

	cleanup.Discard()
	logger.Log.Info("Renderer ready",
		zap.String("shading", string(opts.Shading)),
		zap.Int("particles", r.particles.Capacity()),
		zap.Int("seeded", emitted),
		zap.Strings("missingSkyboxFaces", r.skybox.Missing))
	return r, nil
}

// Frame draws one complete frame into the default framebuffer. The panel and
// buffer swap are left to the caller.
func (r *Renderer) Frame(in FrameInput) Stats {
	dev := r.dev
	var stats Stats

	dev.SetClearColor(clearColor[0], clearColor[1], clearColor[2], clearColor[3])
	dev.Clear(gpu.ClearColorBit | gpu.ClearDepthBit)

	r.skybox.Render(dev, in.Camera)
	stats.DrawCalls++

	shadowSpace := r.shadow.Render(dev, r.scene, in.Params.Primary().Position)
	stats.DrawCalls += len(r.scene.Entries)
	rainSpace := r.rainMap.Render(dev, r.scene, in.Params.Rain.Velocity.Mul(-1))
	stats.DrawCalls += len(r.scene.Entries)

	stats.DrawCalls += r.lighting.Render(dev, r.scene, LightingInputs{
		Params:      in.Params,
		Camera:      in.Camera,
		ShadowMap:   r.shadow.Texture(),
		ShadowSpace: shadowSpace,
		RainMap:     r.rainMap.Texture(),
		RainSpace:   rainSpace,
		Skybox:      r.skybox.Cubemap(),
	})

	particles := ParticleInputs{
		ViewProjection: in.Camera.ViewProjection(),
		CameraPosition: in.Camera.Position,
		Time:           in.Time,
		DeltaTime:      in.DeltaTime,
		Rain:           in.Params.Rain,
		RainMap:        r.rainMap.Texture(),
		RainSpace:      rainSpace,
	}
	stats.Points += r.rain.Render(dev, particles)
	stats.Points += r.splash.Render(dev, particles)
	stats.DrawCalls += 2

	r.stats = stats
	return stats
}

// Stats returns the counters of the last frame.
func (r *Renderer) Stats() Stats { return r.stats }

// Resize sets the viewport of the default framebuffer.
func (r *Renderer) Resize(width, height int32) {
	if width <= 0 || height <= 0 {
		return
	}
	r.dev.SetViewport(gpu.Viewport{Width: width, Height: height})
}

// ReloadPrograms recompiles every program from the current shader sources
// and swaps them in. On error the running programs stay in place.
func (r *Renderer) ReloadPrograms() error {
	programs, err := CompilePrograms(r.dev, r.shaders, r.shading)
	if err != nil {
		logger.Log.Error("Shader reload failed, keeping current programs", zap.Error(err))
		return err
	}
	old := r.programs
	r.programs = programs
	r.lighting.SetProgram(programs.Shading, r.shading.PhysicallyBased())
	r.shadow.SetProgram(programs.Shadow)
	r.rainMap.SetProgram(programs.RainDepth)
	r.rain.SetProgram(programs.Particle)
	r.splash.SetProgram(programs.Splash)
	r.skybox.SetProgram(programs.Skybox)
	old.Delete()
	logger.Log.Info("Shaders reloaded")
	return nil
}

// Programs returns the programs currently in use.
func (r *Renderer) Programs() Programs { return r.programs }

// TextureStats reports the texture cache counters.
func (r *Renderer) TextureStats() TextureStats { return r.textures.Stats() }

// Release frees every GPU resource owned by the renderer.
func (r *Renderer) Release() {
	r.particles.Release(r.dev)
	r.rainMap.Release(r.dev)
	r.shadow.Release(r.dev)
	r.skybox.Release(r.dev)
	r.scene.Release(r.dev)
	r.textures.Clear()
	r.programs.Delete()
}
