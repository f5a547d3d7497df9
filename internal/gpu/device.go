// Package gpu is the thin layer between the render passes and OpenGL. Passes
// talk to a Device so their state handling can be checked without a context.
package gpu

import (
	"errors"
	"image"
)

var ErrFramebufferIncomplete = errors.New("gpu: framebuffer incomplete")

type Viewport struct {
	X, Y, Width, Height int32
}

type DepthFunc uint32

const (
	DepthLess DepthFunc = iota
	DepthLessEqual
	DepthEqual
	DepthAlways
)

type BlendFactor uint32

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
)

// Blend is the complete blending state: the enable bit and the factor pair.
type Blend struct {
	Enabled bool
	Src     BlendFactor
	Dst     BlendFactor
}

var (
	BlendOff      = Blend{Src: BlendOne, Dst: BlendZero}
	BlendAdditive = Blend{Enabled: true, Src: BlendOne, Dst: BlendOne}
	BlendAlpha    = Blend{Enabled: true, Src: BlendSrcAlpha, Dst: BlendOneMinusSrcAlpha}
)

type Primitive uint32

const (
	Triangles Primitive = iota
	Points
)

type TextureTarget uint32

const (
	Texture2D TextureTarget = iota
	TextureCube
)

type ClearMask uint32

const (
	ClearColorBit ClearMask = 1 << iota
	ClearDepthBit
)

// Mesh is a vertex array with its buffers. EBO is zero for non-indexed data,
// in which case Count is the vertex count.
type Mesh struct {
	VAO, VBO, EBO uint32
	Count         int32
}

// DepthTarget is a square depth-only framebuffer and the texture behind it.
type DepthTarget struct {
	FBO     uint32
	Texture uint32
	Size    int32
}

// Device is the render state and resource surface the passes depend on.
type Device interface {
	Viewport() Viewport
	SetViewport(v Viewport)
	Framebuffer() uint32
	BindFramebuffer(fbo uint32)
	SetClearColor(r, g, b, a float32)
	Clear(mask ClearMask)

	Blend() Blend
	SetBlend(b Blend)
	DepthFunc() DepthFunc
	SetDepthFunc(f DepthFunc)
	SetDepthMask(write bool)
	SetFramebufferSRGB(enabled bool)

	BindTexture(unit uint32, target TextureTarget, id uint32)
	BindVertexArray(vao uint32)
	DrawArrays(mode Primitive, first, count int32)
	DrawElements(mode Primitive, count int32)

	CompileProgram(name string, src ProgramSource) (Program, error)
	NewDepthTarget(size int32) (*DepthTarget, error)
	// NewMesh uploads interleaved float data. layout lists the component count
	// of each attribute in order.
	NewMesh(vertices []float32, indices []uint32, layout []int32) *Mesh
	// NewDynamicMesh allocates a zeroed, non-indexed vertex buffer for
	// vertexCount vertices.
	NewDynamicMesh(vertexCount int, layout []int32) *Mesh
	WriteFloats(m *Mesh, offset int, data []float32)
	NewTexture2D(img *image.RGBA) uint32
	NewCubemap(faces [6]*image.RGBA) uint32

	DeleteMesh(m *Mesh)
	DeleteDepthTarget(t *DepthTarget)
	DeleteTexture(id uint32)
}

// Stride returns the byte stride of an interleaved float layout.
func Stride(layout []int32) int32 {
	var n int32
	for _, c := range layout {
		n += c
	}
	return n * 4
}
