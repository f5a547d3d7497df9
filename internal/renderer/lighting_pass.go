package renderer

import (
	"RainyDay/internal/config"
	"RainyDay/internal/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// Texture units read by the shading programs. Unit 0 is the albedo map.
const (
	skyboxUnit = 5
	shadowUnit = 6
	rainUnit   = 7
)

// ShadedDrawer draws geometry with full material state.
type ShadedDrawer interface {
	DrawShaded(dev gpu.Device, prog gpu.Program, paint config.Material) int
}

// LightingInputs are the per-frame values the lighting pass consumes. The
// depth maps and space matrices come from the depth passes of the same frame.
type LightingInputs struct {
	Params      *config.Params
	Camera      *Camera
	ShadowMap   uint32
	ShadowSpace mgl32.Mat4
	RainMap     uint32
	RainSpace   mgl32.Mat4
	Skybox      uint32
}

// LightingPass is forward shading: light 0 with ambient and shadows, then
// one additive redraw per further light.
type LightingPass struct {
	program         gpu.Program
	physicallyBased bool
}

// NewLightingPass wraps a shading program. physicallyBased selects the pi
// scaled light energy expected by the PBR program.
func NewLightingPass(program gpu.Program, physicallyBased bool) *LightingPass {
	return &LightingPass{program: program, physicallyBased: physicallyBased}
}

func (p *LightingPass) SetProgram(prog gpu.Program, physicallyBased bool) {
	p.program = prog
	p.physicallyBased = physicallyBased
}

// Render draws the primary and additive passes and returns the number of
// mesh draws issued.
func (p *LightingPass) Render(dev gpu.Device, scene ShadedDrawer, in LightingInputs) int {
	prog := p.program
	prog.Use()

	prog.SetVec3("camPosition", in.Camera.Position)
	prog.SetMat4("viewProjection", in.Camera.ViewProjection())
	prog.SetInt("skybox", skyboxUnit)
	dev.BindTexture(skyboxUnit, gpu.TextureCube, in.Skybox)

	p.setAmbient(in.Params.Ambient())
	p.setLight(*in.Params.Primary())

	prog.SetMat4("lightSpaceMatrix", in.ShadowSpace)
	prog.SetInt("shadowMap", shadowUnit)
	dev.BindTexture(shadowUnit, gpu.Texture2D, in.ShadowMap)
	prog.SetMat4("rainSpaceMatrix", in.RainSpace)
	prog.SetInt("rainMap", rainUnit)
	dev.BindTexture(rainUnit, gpu.Texture2D, in.RainMap)
	prog.SetInt("shadowEnabled", 1)

	draws := scene.DrawShaded(dev, prog, in.Params.Paint)
	return draws + p.renderAdditive(dev, scene, in)
}

// renderAdditive shades the lights past index 0 on top of the primary pass.
// Only fragments at the depth already written are touched, and these lights
// cast no shadows. With a single light it changes nothing.
func (p *LightingPass) renderAdditive(dev gpu.Device, scene ShadedDrawer, in LightingInputs) int {
	lights := in.Params.Lights
	if len(lights) <= 1 {
		return 0
	}
	prog := p.program

	blend := dev.Blend()
	depth := dev.DepthFunc()

	p.setAmbient(mgl32.Vec3{})
	dev.SetBlend(gpu.BlendAdditive)
	dev.SetDepthFunc(gpu.DepthEqual)
	dev.BindTexture(shadowUnit, gpu.Texture2D, 0)
	prog.SetInt("shadowEnabled", 0)

	draws := 0
	for _, l := range lights[1:] {
		p.setLight(l)
		draws += scene.DrawShaded(dev, prog, in.Params.Paint)
	}

	prog.SetInt("shadowEnabled", 1)
	dev.BindTexture(shadowUnit, gpu.Texture2D, in.ShadowMap)
	dev.SetDepthFunc(depth)
	dev.SetBlend(blend)
	p.setAmbient(in.Params.Ambient())
	p.setLight(*in.Params.Primary())
	return draws
}

// setAmbient binds the ambient color. The w component flags whether any
// ambient light is present.
func (p *LightingPass) setAmbient(c mgl32.Vec3) {
	var present float32
	if c.Len() > 0 {
		present = 1
	}
	p.program.SetVec4("ambientLightColor", c.Vec4(present))
}

func (p *LightingPass) setLight(l config.Light) {
	p.program.SetVec3("lightPosition", l.Position)
	p.program.SetVec3("lightColor", l.Energy(p.physicallyBased))
	p.program.SetFloat("lightRadius", l.Radius)
}
