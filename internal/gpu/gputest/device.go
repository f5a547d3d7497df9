// Package gputest provides a recording gpu.Device for tests that run without
// an OpenGL context.
package gputest

import (
	"fmt"
	"image"

	"RainyDay/internal/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// Draw is one recorded draw call with the state it was issued under.
type Draw struct {
	Mode      gpu.Primitive
	First     int32
	Count     int32
	Indexed   bool
	VAO       uint32
	Program   string
	Blend     gpu.Blend
	DepthFunc gpu.DepthFunc
	FBO       uint32
	Viewport  gpu.Viewport
	SRGB      bool
}

type TextureBinding struct {
	Target gpu.TextureTarget
	ID     uint32
}

var _ gpu.Device = (*Device)(nil)

// Device tracks render state in memory and records every draw.
type Device struct {
	viewport  gpu.Viewport
	fbo       uint32
	blend     gpu.Blend
	depthFunc gpu.DepthFunc
	depthMask bool
	srgb      bool
	vao       uint32
	current   *Program

	Textures map[uint32]TextureBinding
	Draws    []Draw
	Clears   []gpu.ClearMask
	Programs map[string]*Program
	Writes   map[uint32][]float32

	// FailFramebuffers makes NewDepthTarget return ErrFramebufferIncomplete.
	FailFramebuffers bool
	// FailPrograms lists program names whose compilation fails.
	FailPrograms map[string]bool
	// OnDraw runs before a draw is recorded.
	OnDraw func(d Draw)

	nextID  uint32
	Deleted []uint32
}

func NewDevice(width, height int32) *Device {
	return &Device{
		viewport:     gpu.Viewport{Width: width, Height: height},
		blend:        gpu.BlendOff,
		depthFunc:    gpu.DepthLess,
		depthMask:    true,
		srgb:         true,
		Textures:     make(map[uint32]TextureBinding),
		Programs:     make(map[string]*Program),
		Writes:       make(map[uint32][]float32),
		FailPrograms: make(map[string]bool),
	}
}

func (d *Device) id() uint32 {
	d.nextID++
	return d.nextID
}

func (d *Device) Viewport() gpu.Viewport           { return d.viewport }
func (d *Device) SetViewport(v gpu.Viewport)       { d.viewport = v }
func (d *Device) Framebuffer() uint32              { return d.fbo }
func (d *Device) BindFramebuffer(fbo uint32)       { d.fbo = fbo }
func (d *Device) SetClearColor(_, _, _, _ float32) {}
func (d *Device) Clear(mask gpu.ClearMask)         { d.Clears = append(d.Clears, mask) }
func (d *Device) Blend() gpu.Blend                 { return d.blend }
func (d *Device) SetBlend(b gpu.Blend)             { d.blend = b }
func (d *Device) DepthFunc() gpu.DepthFunc         { return d.depthFunc }
func (d *Device) SetDepthFunc(f gpu.DepthFunc)     { d.depthFunc = f }
func (d *Device) SetDepthMask(write bool)          { d.depthMask = write }
func (d *Device) DepthMask() bool                  { return d.depthMask }
func (d *Device) SetFramebufferSRGB(on bool)       { d.srgb = on }
func (d *Device) FramebufferSRGB() bool            { return d.srgb }
func (d *Device) BindVertexArray(vao uint32)       { d.vao = vao }

func (d *Device) BindTexture(unit uint32, target gpu.TextureTarget, id uint32) {
	d.Textures[unit] = TextureBinding{Target: target, ID: id}
}

func (d *Device) DrawArrays(mode gpu.Primitive, first, count int32) {
	d.record(Draw{Mode: mode, First: first, Count: count})
}

func (d *Device) DrawElements(mode gpu.Primitive, count int32) {
	d.record(Draw{Mode: mode, Count: count, Indexed: true})
}

func (d *Device) record(dr Draw) {
	dr.VAO = d.vao
	dr.Blend = d.blend
	dr.DepthFunc = d.depthFunc
	dr.FBO = d.fbo
	dr.Viewport = d.viewport
	dr.SRGB = d.srgb
	if d.current != nil {
		dr.Program = d.current.name
	}
	if d.OnDraw != nil {
		d.OnDraw(dr)
	}
	d.Draws = append(d.Draws, dr)
}

// DrawsBy returns the recorded draws issued while the named program was bound.
func (d *Device) DrawsBy(program string) []Draw {
	var out []Draw
	for _, dr := range d.Draws {
		if dr.Program == program {
			out = append(out, dr)
		}
	}
	return out
}

// Reset forgets recorded draws and clears but keeps state and resources.
func (d *Device) Reset() {
	d.Draws = nil
	d.Clears = nil
}

func (d *Device) CompileProgram(name string, src gpu.ProgramSource) (gpu.Program, error) {
	if d.FailPrograms[name] {
		return nil, fmt.Errorf("gputest: program %s: compile failed", name)
	}
	if src.Vertex == "" || src.Fragment == "" {
		return nil, fmt.Errorf("gputest: program %s: missing stage", name)
	}
	p := &Program{dev: d, id: d.id(), name: name, Source: src, Uniforms: make(map[string]any)}
	d.Programs[name] = p
	return p, nil
}

func (d *Device) NewDepthTarget(size int32) (*gpu.DepthTarget, error) {
	if d.FailFramebuffers {
		return nil, fmt.Errorf("%w: status 0x0", gpu.ErrFramebufferIncomplete)
	}
	return &gpu.DepthTarget{FBO: d.id(), Texture: d.id(), Size: size}, nil
}

func (d *Device) NewMesh(vertices []float32, indices []uint32, layout []int32) *gpu.Mesh {
	m := &gpu.Mesh{VAO: d.id(), VBO: d.id()}
	if len(indices) > 0 {
		m.EBO = d.id()
		m.Count = int32(len(indices))
	} else if s := gpu.Stride(layout); s > 0 {
		m.Count = int32(len(vertices)*4) / s
	}
	return m
}

func (d *Device) NewDynamicMesh(vertexCount int, layout []int32) *gpu.Mesh {
	m := &gpu.Mesh{VAO: d.id(), VBO: d.id(), Count: int32(vertexCount)}
	d.Writes[m.VBO] = make([]float32, vertexCount*int(gpu.Stride(layout)/4))
	return m
}

func (d *Device) WriteFloats(m *gpu.Mesh, offset int, data []float32) {
	buf := d.Writes[m.VBO]
	copy(buf[offset:], data)
}

func (d *Device) NewTexture2D(*image.RGBA) uint32  { return d.id() }
func (d *Device) NewCubemap([6]*image.RGBA) uint32 { return d.id() }

func (d *Device) DeleteMesh(m *gpu.Mesh) {
	if m != nil {
		d.Deleted = append(d.Deleted, m.VAO)
	}
}

func (d *Device) DeleteDepthTarget(t *gpu.DepthTarget) {
	if t != nil {
		d.Deleted = append(d.Deleted, t.FBO)
	}
}

func (d *Device) DeleteTexture(id uint32) { d.Deleted = append(d.Deleted, id) }

// Program records the last value of every uniform set on it.
type Program struct {
	dev      *Device
	id       uint32
	name     string
	Source   gpu.ProgramSource
	Uniforms map[string]any
	// History records every uniform write in order as "name=value".
	History []string
	Uses    int
	Deleted bool
}

func (p *Program) ID() uint32   { return p.id }
func (p *Program) Name() string { return p.name }

func (p *Program) Use() {
	p.Uses++
	p.dev.current = p
}

func (p *Program) set(name string, v any) {
	p.Uniforms[name] = v
	p.History = append(p.History, fmt.Sprintf("%s=%v", name, v))
}

func (p *Program) SetInt(name string, v int32)       { p.set(name, v) }
func (p *Program) SetFloat(name string, v float32)   { p.set(name, v) }
func (p *Program) SetVec3(name string, v mgl32.Vec3) { p.set(name, v) }
func (p *Program) SetVec4(name string, v mgl32.Vec4) { p.set(name, v) }
func (p *Program) SetMat4(name string, v mgl32.Mat4) { p.set(name, v) }
func (p *Program) Delete()                           { p.Deleted = true }
