package gpu

import (
	"fmt"
	"image"

	"RainyDay/internal/logger"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

// GL is the OpenGL 4.1 core Device. All calls must come from the goroutine
// that owns the context.
type GL struct{}

var _ Device = (*GL)(nil)

// NewGL loads the GL entry points for the current context and sets the fixed
// pipeline state the passes assume: depth test with LESS, a [-1,1] depth range
// and an sRGB default framebuffer.
func NewGL() (*GL, error) {
	if err := gl.Init(); err != nil {
		logger.Log.Error("OpenGL initialization failed", zap.Error(err))
		return nil, fmt.Errorf("gpu: init: %w", err)
	}
	logger.Log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	gl.DepthRange(-1, 1)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.FRAMEBUFFER_SRGB)
	return &GL{}, nil
}

func (*GL) Viewport() Viewport {
	var v [4]int32
	gl.GetIntegerv(gl.VIEWPORT, &v[0])
	return Viewport{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
}

func (*GL) SetViewport(v Viewport) {
	gl.Viewport(v.X, v.Y, v.Width, v.Height)
}

func (*GL) Framebuffer() uint32 {
	var fbo int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &fbo)
	return uint32(fbo)
}

func (*GL) BindFramebuffer(fbo uint32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
}

func (*GL) SetClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (*GL) Clear(mask ClearMask) {
	var bits uint32
	if mask&ClearColorBit != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&ClearDepthBit != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(bits)
}

func (*GL) Blend() Blend {
	var src, dst int32
	gl.GetIntegerv(gl.BLEND_SRC_RGB, &src)
	gl.GetIntegerv(gl.BLEND_DST_RGB, &dst)
	return Blend{
		Enabled: gl.IsEnabled(gl.BLEND),
		Src:     blendFactorFromGL(uint32(src)),
		Dst:     blendFactorFromGL(uint32(dst)),
	}
}

func (*GL) SetBlend(b Blend) {
	if b.Enabled {
		gl.Enable(gl.BLEND)
	} else {
		gl.Disable(gl.BLEND)
	}
	gl.BlendFunc(blendFactorToGL(b.Src), blendFactorToGL(b.Dst))
}

func (*GL) DepthFunc() DepthFunc {
	var f int32
	gl.GetIntegerv(gl.DEPTH_FUNC, &f)
	switch uint32(f) {
	case gl.LEQUAL:
		return DepthLessEqual
	case gl.EQUAL:
		return DepthEqual
	case gl.ALWAYS:
		return DepthAlways
	default:
		return DepthLess
	}
}

func (*GL) SetDepthFunc(f DepthFunc) {
	switch f {
	case DepthLessEqual:
		gl.DepthFunc(gl.LEQUAL)
	case DepthEqual:
		gl.DepthFunc(gl.EQUAL)
	case DepthAlways:
		gl.DepthFunc(gl.ALWAYS)
	default:
		gl.DepthFunc(gl.LESS)
	}
}

func (*GL) SetDepthMask(write bool) {
	gl.DepthMask(write)
}

func (*GL) SetFramebufferSRGB(enabled bool) {
	if enabled {
		gl.Enable(gl.FRAMEBUFFER_SRGB)
	} else {
		gl.Disable(gl.FRAMEBUFFER_SRGB)
	}
}

func (*GL) BindTexture(unit uint32, target TextureTarget, id uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(textureTargetToGL(target), id)
}

func (*GL) BindVertexArray(vao uint32) {
	gl.BindVertexArray(vao)
}

func (*GL) DrawArrays(mode Primitive, first, count int32) {
	gl.DrawArrays(primitiveToGL(mode), first, count)
}

func (*GL) DrawElements(mode Primitive, count int32) {
	gl.DrawElements(primitiveToGL(mode), count, gl.UNSIGNED_INT, nil)
}

func (*GL) CompileProgram(name string, src ProgramSource) (Program, error) {
	return compileProgram(name, src)
}

func (g *GL) NewDepthTarget(size int32) (*DepthTarget, error) {
	t := &DepthTarget{Size: size}

	gl.GenTextures(1, &t.Texture)
	gl.BindTexture(gl.TEXTURE_2D, t.Texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT, size, size, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
	border := [4]float32{1, 1, 1, 1}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &border[0])
	gl.BindTexture(gl.TEXTURE_2D, 0)

	var previous int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &previous)

	gl.GenFramebuffers(1, &t.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, t.Texture, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(previous))

	if status != gl.FRAMEBUFFER_COMPLETE {
		g.DeleteDepthTarget(t)
		return nil, fmt.Errorf("%w: status 0x%x", ErrFramebufferIncomplete, status)
	}
	return t, nil
}

func (*GL) NewMesh(vertices []float32, indices []uint32, layout []int32) *Mesh {
	m := &Mesh{}
	gl.GenVertexArrays(1, &m.VAO)
	gl.BindVertexArray(m.VAO)

	gl.GenBuffers(1, &m.VBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	if len(indices) > 0 {
		gl.GenBuffers(1, &m.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
		m.Count = int32(len(indices))
	} else if stride := Stride(layout); stride > 0 {
		m.Count = int32(len(vertices)*4) / stride
	}

	setLayout(layout)
	gl.BindVertexArray(0)
	return m
}

func (*GL) NewDynamicMesh(vertexCount int, layout []int32) *Mesh {
	m := &Mesh{Count: int32(vertexCount)}
	size := vertexCount * int(Stride(layout))

	gl.GenVertexArrays(1, &m.VAO)
	gl.BindVertexArray(m.VAO)
	gl.GenBuffers(1, &m.VBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.VBO)
	zeros := make([]byte, size)
	gl.BufferData(gl.ARRAY_BUFFER, size, gl.Ptr(zeros), gl.DYNAMIC_DRAW)

	setLayout(layout)
	gl.BindVertexArray(0)
	return m
}

func setLayout(layout []int32) {
	stride := Stride(layout)
	offset := 0
	for i, n := range layout {
		gl.VertexAttribPointer(uint32(i), n, gl.FLOAT, false, stride, gl.PtrOffset(offset))
		gl.EnableVertexAttribArray(uint32(i))
		offset += int(n) * 4
	}
}

func (*GL) WriteFloats(m *Mesh, offset int, data []float32) {
	if len(data) == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, m.VBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, offset*4, len(data)*4, gl.Ptr(data))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (*GL) NewTexture2D(img *image.RGBA) uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	size := img.Rect.Size()
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.SRGB8_ALPHA8, int32(size.X), int32(size.Y), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return id
}

// NewCubemap uploads faces in +X, -X, +Y, -Y, +Z, -Z order. Nil faces are
// left unallocated.
func (*GL) NewCubemap(faces [6]*image.RGBA) uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)
	for i, face := range faces {
		if face == nil {
			continue
		}
		size := face.Rect.Size()
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.SRGB8_ALPHA8, int32(size.X), int32(size.Y), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(face.Pix))
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return id
}

func (*GL) DeleteMesh(m *Mesh) {
	if m == nil {
		return
	}
	gl.DeleteVertexArrays(1, &m.VAO)
	gl.DeleteBuffers(1, &m.VBO)
	if m.EBO != 0 {
		gl.DeleteBuffers(1, &m.EBO)
	}
	*m = Mesh{}
}

func (*GL) DeleteDepthTarget(t *DepthTarget) {
	if t == nil {
		return
	}
	if t.FBO != 0 {
		gl.DeleteFramebuffers(1, &t.FBO)
	}
	if t.Texture != 0 {
		gl.DeleteTextures(1, &t.Texture)
	}
	*t = DepthTarget{}
}

func (*GL) DeleteTexture(id uint32) {
	if id != 0 {
		gl.DeleteTextures(1, &id)
	}
}

func blendFactorToGL(f BlendFactor) uint32 {
	switch f {
	case BlendZero:
		return gl.ZERO
	case BlendSrcAlpha:
		return gl.SRC_ALPHA
	case BlendOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	default:
		return gl.ONE
	}
}

func blendFactorFromGL(f uint32) BlendFactor {
	switch f {
	case gl.ZERO:
		return BlendZero
	case gl.SRC_ALPHA:
		return BlendSrcAlpha
	case gl.ONE_MINUS_SRC_ALPHA:
		return BlendOneMinusSrcAlpha
	default:
		return BlendOne
	}
}

func textureTargetToGL(t TextureTarget) uint32 {
	if t == TextureCube {
		return gl.TEXTURE_CUBE_MAP
	}
	return gl.TEXTURE_2D
}

func primitiveToGL(p Primitive) uint32 {
	if p == Points {
		return gl.POINTS
	}
	return gl.TRIANGLES
}
