package renderer

import (
	"fmt"

	"RainyDay/internal/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// DepthPassSettings sizes the orthographic volume of a depth pass. The
// volume spans [-HalfExtent, HalfExtent] across and [Near, Near+DepthRange]
// along the view direction.
type DepthPassSettings struct {
	HalfExtent float32
	Near       float32
	DepthRange float32
	Resolution int32
}

var (
	ShadowSettings = DepthPassSettings{HalfExtent: 3, Near: 1, DepthRange: 10, Resolution: 2048}
	RainSettings   = DepthPassSettings{HalfExtent: 12.5, Near: 0.5, DepthRange: 10, Resolution: 2048}
)

var worldUp = mgl32.Vec3{0, 1, 0}

// SpaceMatrices returns the projection, the view from
// normalize(dir)*DepthRange/2 toward the origin, and their product.
func SpaceMatrices(dir mgl32.Vec3, s DepthPassSettings) (projection, view, space mgl32.Mat4) {
	h := s.HalfExtent
	projection = mgl32.Ortho(-h, h, -h, h, s.Near, s.Near+s.DepthRange)

	if dir.Len() == 0 {
		dir = worldUp
	}
	dir = dir.Normalize()
	up := worldUp
	// a vertical direction makes +Y a degenerate up vector
	if dir.Cross(up).Len() < 1e-6 {
		up = mgl32.Vec3{0, 0, -1}
	}
	eye := dir.Mul(s.DepthRange * 0.5)
	view = mgl32.LookAtV(eye, mgl32.Vec3{}, up)

	return projection, view, projection.Mul4(view)
}

// DepthDrawer draws geometry into whatever target is bound.
type DepthDrawer interface {
	DrawDepth(dev gpu.Device, prog gpu.Program) int
}

// DepthPass renders scene depth from one direction into its own target.
type DepthPass struct {
	Name     string
	settings DepthPassSettings
	program  gpu.Program
	uniform  string
	target   *gpu.DepthTarget
	space    mgl32.Mat4
}

// NewDepthPass allocates the pass target. spaceUniform is the name the
// program reads the space matrix from.
func NewDepthPass(dev gpu.Device, name string, s DepthPassSettings, program gpu.Program, spaceUniform string) (*DepthPass, error) {
	target, err := dev.NewDepthTarget(s.Resolution)
	if err != nil {
		return nil, fmt.Errorf("depth pass %s: %w", name, err)
	}
	return &DepthPass{
		Name:     name,
		settings: s,
		program:  program,
		uniform:  spaceUniform,
		target:   target,
		space:    mgl32.Ident4(),
	}, nil
}

// Render draws the scene depth seen from dir and returns the space matrix.
// The viewport and framebuffer bound before the call are restored on return,
// including when drawing panics.
func (p *DepthPass) Render(dev gpu.Device, scene DepthDrawer, dir mgl32.Vec3) mgl32.Mat4 {
	_, _, p.space = SpaceMatrices(dir, p.settings)

	p.program.Use()
	p.program.SetMat4(p.uniform, p.space)

	viewport := dev.Viewport()
	fbo := dev.Framebuffer()
	defer func() {
		dev.BindFramebuffer(fbo)
		dev.SetViewport(viewport)
	}()

	dev.BindFramebuffer(p.target.FBO)
	dev.SetViewport(gpu.Viewport{Width: p.settings.Resolution, Height: p.settings.Resolution})
	dev.Clear(gpu.ClearDepthBit)
	scene.DrawDepth(dev, p.program)
	return p.space
}

// Texture is the depth texture written by the last Render.
func (p *DepthPass) Texture() uint32 { return p.target.Texture }

// Space is the space matrix computed by the last Render.
func (p *DepthPass) Space() mgl32.Mat4 { return p.space }

func (p *DepthPass) SetProgram(prog gpu.Program) { p.program = prog }

func (p *DepthPass) Release(dev gpu.Device) {
	dev.DeleteDepthTarget(p.target)
}
