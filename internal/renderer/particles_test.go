package renderer

import (
	"testing"

	"RainyDay/internal/gpu"
	"RainyDay/internal/gpu/gputest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func particleInputs() ParticleInputs {
	cam := testCamera()
	return ParticleInputs{
		ViewProjection: cam.ViewProjection(),
		CameraPosition: cam.Position,
		Time:           0.02,
		DeltaTime:      0.02,
		Rain:           testParams().Rain,
		RainMap:        21,
		RainSpace:      mgl32.Ident4(),
	}
}

func TestParticleBufferFlushesOnce(t *testing.T) {
	dev := gputest.NewDevice(1, 1)
	buf := NewParticleBuffer(dev, 4)
	buf.WriteSlot(2, mgl32.Vec3{1, 2, 3})
	buf.Flush(dev)

	assert.Equal(t, []float32{0, 0, 0, 0, 0, 0, 1, 2, 3, 0, 0, 0}, dev.Writes[buf.mesh.VBO])
	assert.False(t, buf.dirty)
}

func TestParticleBufferRejectsOutOfRangeSlot(t *testing.T) {
	dev := gputest.NewDevice(1, 1)
	buf := NewParticleBuffer(dev, 4)
	assert.Panics(t, func() { buf.WriteSlot(4, mgl32.Vec3{}) })
	assert.Panics(t, func() { buf.WriteSlot(-1, mgl32.Vec3{}) })
}

func TestRainPassDrawsEverySlotBlended(t *testing.T) {
	dev := gputest.NewDevice(1280, 720)
	buf := NewParticleBuffer(dev, 10000)
	pass := NewRainPass(compile(t, dev, ProgramParticle), buf)
	in := particleInputs()

	points := pass.Render(dev, in)

	assert.Equal(t, 10000, points)
	require.Len(t, dev.Draws, 1)
	d := dev.Draws[0]
	assert.Equal(t, gpu.Points, d.Mode)
	assert.Equal(t, int32(0), d.First)
	assert.Equal(t, int32(10000), d.Count)
	assert.Equal(t, gpu.BlendAlpha, d.Blend)
	assert.Equal(t, buf.mesh.VAO, d.VAO)
	assert.Equal(t, gpu.BlendOff, dev.Blend())

	assert.Equal(t, gputest.TextureBinding{Target: gpu.Texture2D, ID: 21}, dev.Textures[0])
	assert.Equal(t, int32(0), uniform(t, dev, ProgramParticle, "rainMap"))
	assert.Equal(t, float32(0.02), uniform(t, dev, ProgramParticle, "currentTime"))
	assert.Equal(t, float32(0.02), uniform(t, dev, ProgramParticle, "deltaTime"))
	assert.Equal(t, float32(30), uniform(t, dev, ProgramParticle, "boxSize"))
	assert.Equal(t, mgl32.Vec3{-1, -9.82, 0}, uniform(t, dev, ProgramParticle, "velocity"))
	assert.Equal(t, mgl32.Vec3{2, 0, -0.01}, uniform(t, dev, ProgramParticle, "forward"))
	assert.Equal(t, in.CameraPosition, uniform(t, dev, ProgramParticle, "cameraPosition"))
	assert.Equal(t, in.ViewProjection, uniform(t, dev, ProgramParticle, "viewProjection"))
}

func TestSplashPassUniforms(t *testing.T) {
	dev := gputest.NewDevice(1280, 720)
	buf := NewParticleBuffer(dev, 10000)
	pass := NewSplashPass(compile(t, dev, ProgramSplash), buf, 31)
	in := particleInputs()

	assert.Equal(t, 10000, pass.Render(dev, in))
	require.Len(t, dev.Draws, 1)
	assert.Equal(t, gpu.BlendAlpha, dev.Draws[0].Blend)
	assert.Equal(t, gpu.BlendOff, dev.Blend())

	assert.Equal(t, float32(0.255), uniform(t, dev, ProgramSplash, "splashSpeed"))
	assert.Equal(t, float32(0.05), uniform(t, dev, ProgramSplash, "splashQuadSize"))
	assert.Equal(t, in.RainSpace, uniform(t, dev, ProgramSplash, "rainSpaceMatrix"))
	assert.Equal(t, int32(0), uniform(t, dev, ProgramSplash, "rainMap"))
	assert.Equal(t, int32(splashUnit), uniform(t, dev, ProgramSplash, "splashTexture"))
	assert.Equal(t, gputest.TextureBinding{Target: gpu.Texture2D, ID: 21}, dev.Textures[0])
	assert.Equal(t, gputest.TextureBinding{Target: gpu.Texture2D, ID: 31}, dev.Textures[splashUnit])
}

func TestSkyboxRestoresDepthFunc(t *testing.T) {
	dev := gputest.NewDevice(1280, 720)
	sky := LoadSkybox(dev, compile(t, dev, ProgramSkybox), "skybox", ".png", solidImage)
	assert.Empty(t, sky.Missing)

	sky.Render(dev, testCamera())

	require.Len(t, dev.Draws, 1)
	assert.Equal(t, gpu.DepthLessEqual, dev.Draws[0].DepthFunc)
	assert.Equal(t, int32(36), dev.Draws[0].Count)
	assert.Equal(t, gpu.DepthLess, dev.DepthFunc())

	view := uniform(t, dev, ProgramSkybox, "view").(mgl32.Mat4)
	assert.Equal(t, float32(0), view[12])
	assert.Equal(t, float32(0), view[13])
	assert.Equal(t, float32(0), view[14])
}

func TestSkyboxMissingFacesAreSkipped(t *testing.T) {
	dev := gputest.NewDevice(1280, 720)
	sky := LoadSkybox(dev, compile(t, dev, ProgramSkybox), "skybox", ".png", missingImage)
	assert.Equal(t, SkyboxFaces[:], sky.Missing)
	assert.NotZero(t, sky.Cubemap())

	sky.Render(dev, testCamera())
	assert.Len(t, dev.Draws, 1)
}
