package renderer

import (
	"fmt"

	"RainyDay/internal/config"
	"RainyDay/internal/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

const particleFloats = 3

// ParticleCapacity is the fixed size of the particle buffer and the point
// count of every rain and splash draw. Rain.Count only sets how many slots
// are seeded.
const ParticleCapacity = 10000

// ParticleBuffer is the GPU ring of rain origins. Writes land in a CPU
// staging copy and reach the GPU on Flush.
type ParticleBuffer struct {
	mesh     *gpu.Mesh
	staging  []float32
	capacity int
	dirty    bool
}

func NewParticleBuffer(dev gpu.Device, capacity int) *ParticleBuffer {
	return &ParticleBuffer{
		mesh:     dev.NewDynamicMesh(capacity, []int32{particleFloats}),
		staging:  make([]float32, capacity*particleFloats),
		capacity: capacity,
	}
}

// WriteSlot stores origin at slot. Slots outside the buffer panic, since the
// ring cursor can never produce one.
func (b *ParticleBuffer) WriteSlot(slot int, origin mgl32.Vec3) {
	if slot < 0 || slot >= b.capacity {
		panic(fmt.Sprintf("particle slot %d outside buffer of %d", slot, b.capacity))
	}
	copy(b.staging[slot*particleFloats:], origin[:])
	b.dirty = true
}

// Flush uploads the staged origins if any changed.
func (b *ParticleBuffer) Flush(dev gpu.Device) {
	if !b.dirty {
		return
	}
	dev.WriteFloats(b.mesh, 0, b.staging)
	b.dirty = false
}

func (b *ParticleBuffer) Capacity() int { return b.capacity }

func (b *ParticleBuffer) Release(dev gpu.Device) {
	dev.DeleteMesh(b.mesh)
}

// ParticleInputs are the per-frame uniforms shared by the rain and splash
// programs.
type ParticleInputs struct {
	ViewProjection mgl32.Mat4
	CameraPosition mgl32.Vec3
	Time           float32
	DeltaTime      float32
	Rain           config.Rain
	RainMap        uint32
	RainSpace      mgl32.Mat4
}

func setParticleUniforms(prog gpu.Program, in ParticleInputs) {
	prog.SetMat4("viewProjection", in.ViewProjection)
	prog.SetFloat("currentTime", in.Time)
	prog.SetFloat("boxSize", in.Rain.BoxSize)
	prog.SetFloat("deltaTime", in.DeltaTime)
	prog.SetVec3("cameraPosition", in.CameraPosition)
	prog.SetVec3("forward", in.Rain.Forward)
	prog.SetVec3("velocity", in.Rain.Velocity)
}

func bindRainMap(dev gpu.Device, prog gpu.Program, in ParticleInputs) {
	prog.SetMat4("rainSpaceMatrix", in.RainSpace)
	prog.SetInt("rainMap", 0)
	dev.BindTexture(0, gpu.Texture2D, in.RainMap)
}

// drawParticles issues every slot as a point with alpha blending enabled for
// this draw only.
func drawParticles(dev gpu.Device, buf *ParticleBuffer) int {
	blend := dev.Blend()
	dev.SetBlend(gpu.BlendAlpha)
	dev.BindVertexArray(buf.mesh.VAO)
	dev.DrawArrays(gpu.Points, 0, int32(buf.capacity))
	dev.BindVertexArray(0)
	dev.SetBlend(blend)
	return buf.capacity
}

// RainPass draws the falling streaks. Positions are computed on the GPU from
// the stored origins and the current time.
type RainPass struct {
	program   gpu.Program
	particles *ParticleBuffer
}

func NewRainPass(program gpu.Program, particles *ParticleBuffer) *RainPass {
	return &RainPass{program: program, particles: particles}
}

func (p *RainPass) SetProgram(prog gpu.Program) { p.program = prog }

// Render returns the number of points drawn.
func (p *RainPass) Render(dev gpu.Device, in ParticleInputs) int {
	p.program.Use()
	bindRainMap(dev, p.program, in)
	setParticleUniforms(p.program, in)
	return drawParticles(dev, p.particles)
}
