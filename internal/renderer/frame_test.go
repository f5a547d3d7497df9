package renderer

import (
	"testing"

	"RainyDay/internal/gpu"
	"RainyDay/internal/gpu/gputest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{Seed: 7, LoadMesh: triangleMesh, DecodeImage: solidImage}
}

func newTestRenderer(t *testing.T, dev *gputest.Device) *Renderer {
	t.Helper()
	r, err := New(dev, testParams(), testOptions())
	require.NoError(t, err)
	return r
}

func TestNewSeedsHalfTheParticles(t *testing.T) {
	dev := gputest.NewDevice(1280, 720)
	r := newTestRenderer(t, dev)

	data := dev.Writes[r.particles.mesh.VBO]
	require.Len(t, data, 10000*3)
	for slot := 5000; slot < 10000; slot++ {
		require.Equal(t, []float32{0, 0, 0}, data[slot*3:slot*3+3], "slot %d", slot)
	}
	for slot := 0; slot < 5000; slot++ {
		for _, v := range data[slot*3 : slot*3+3] {
			require.True(t, v >= 0 && v < 30, "slot %d value %v", slot, v)
		}
	}
}

func TestFramePassOrder(t *testing.T) {
	dev := gputest.NewDevice(1280, 720)
	r := newTestRenderer(t, dev)
	dev.Reset()

	stats := r.Frame(FrameInput{Params: testParams(), Camera: testCamera(), Time: 0.02, DeltaTime: 0.02})

	var order []string
	for _, d := range dev.Draws {
		if len(order) == 0 || order[len(order)-1] != d.Program {
			order = append(order, d.Program)
		}
	}
	assert.Equal(t, []string{ProgramSkybox, ProgramShadow, ProgramRainDepth, ProgramPBR, ProgramParticle, ProgramSplash}, order)
	assert.Len(t, dev.DrawsBy(ProgramShadow), 14)
	assert.Len(t, dev.DrawsBy(ProgramRainDepth), 14)
	assert.Len(t, dev.DrawsBy(ProgramPBR), 14)

	assert.Equal(t, []gpu.ClearMask{gpu.ClearColorBit | gpu.ClearDepthBit, gpu.ClearDepthBit, gpu.ClearDepthBit}, dev.Clears)
	assert.Equal(t, Stats{DrawCalls: 45, Points: 20000}, stats)
	assert.Equal(t, stats, r.Stats())
	assert.Equal(t, "draws: 45 points: 20000", stats.String())

	for _, d := range dev.DrawsBy(ProgramPBR) {
		assert.Equal(t, uint32(0), d.FBO)
		assert.Equal(t, gpu.Viewport{Width: 1280, Height: 720}, d.Viewport)
	}
	assert.Equal(t, uint32(0), dev.Framebuffer())
	assert.Equal(t, gpu.BlendOff, dev.Blend())
	assert.Equal(t, gpu.DepthLess, dev.DepthFunc())
}

func TestFrameFeedsDepthMapsToLaterPasses(t *testing.T) {
	dev := gputest.NewDevice(1280, 720)
	r := newTestRenderer(t, dev)
	params := testParams()
	r.Frame(FrameInput{Params: params, Camera: testCamera(), Time: 1, DeltaTime: 0.02})

	_, _, shadowSpace := SpaceMatrices(params.Lights[0].Position, ShadowSettings)
	_, _, rainSpace := SpaceMatrices(params.Rain.Velocity.Mul(-1), RainSettings)
	assert.Equal(t, shadowSpace, uniform(t, dev, ProgramPBR, "lightSpaceMatrix"))
	assert.Equal(t, rainSpace, uniform(t, dev, ProgramPBR, "rainSpaceMatrix"))
	assert.Equal(t, rainSpace, uniform(t, dev, ProgramSplash, "rainSpaceMatrix"))
	assert.Equal(t, rainSpace, uniform(t, dev, ProgramParticle, "rainSpaceMatrix"))
	assert.Equal(t, r.rainMap.Texture(), dev.Textures[rainUnit].ID)
	assert.Equal(t, r.shadow.Texture(), dev.Textures[shadowUnit].ID)
	assert.Equal(t, float32(1), uniform(t, dev, ProgramSplash, "currentTime"))
}

func TestNewBlinnPhong(t *testing.T) {
	dev := gputest.NewDevice(1280, 720)
	opts := testOptions()
	opts.Shading = ShadingBlinnPhong
	r, err := New(dev, testParams(), opts)
	require.NoError(t, err)

	r.Frame(FrameInput{Params: testParams(), Camera: testCamera(), DeltaTime: 0.02})
	assert.Len(t, dev.DrawsBy(ProgramBlinnPhong), 14)
	assert.Equal(t, mgl32.Vec3{0.6, 0.6, 0.6}, uniform(t, dev, ProgramBlinnPhong, "lightColor"))
}

func TestNewCleansUpOnProgramFailure(t *testing.T) {
	dev := gputest.NewDevice(1280, 720)
	dev.FailPrograms[ProgramSplash] = true

	_, err := New(dev, testParams(), testOptions())
	require.Error(t, err)
	for _, name := range []string{ProgramPBR, ProgramShadow, ProgramRainDepth, ProgramParticle} {
		assert.True(t, dev.Programs[name].Deleted, name)
	}
}

func TestNewCleansUpOnIncompleteFramebuffer(t *testing.T) {
	dev := gputest.NewDevice(1280, 720)
	dev.FailFramebuffers = true

	_, err := New(dev, testParams(), testOptions())
	require.ErrorIs(t, err, gpu.ErrFramebufferIncomplete)
	assert.NotEmpty(t, dev.Deleted)
	assert.True(t, dev.Programs[ProgramSkybox].Deleted)
}

func TestNewRejectsInvalidParams(t *testing.T) {
	dev := gputest.NewDevice(1280, 720)
	params := testParams()
	params.Lights = nil
	_, err := New(dev, params, testOptions())
	require.Error(t, err)
	assert.Empty(t, dev.Programs)
}

func TestReloadProgramsSwapsEveryPass(t *testing.T) {
	dev := gputest.NewDevice(1280, 720)
	r := newTestRenderer(t, dev)
	old := r.Programs()

	require.NoError(t, r.ReloadPrograms())
	fresh := r.Programs()
	assert.NotEqual(t, old.Shading.ID(), fresh.Shading.ID())
	assert.True(t, old.Shading.(*gputest.Program).Deleted)

	dev.Reset()
	r.Frame(FrameInput{Params: testParams(), Camera: testCamera(), DeltaTime: 0.02})
	for _, d := range dev.Draws {
		assert.Equal(t, dev.Programs[d.Program].ID(), programID(fresh, d.Program))
	}
}

func TestReloadProgramsKeepsCurrentOnError(t *testing.T) {
	dev := gputest.NewDevice(1280, 720)
	r := newTestRenderer(t, dev)
	old := r.Programs()

	dev.FailPrograms[ProgramSkybox] = true
	require.Error(t, r.ReloadPrograms())
	assert.Equal(t, old, r.Programs())
	assert.False(t, old.Shading.(*gputest.Program).Deleted)
}

func TestRendererRelease(t *testing.T) {
	dev := gputest.NewDevice(1280, 720)
	r := newTestRenderer(t, dev)
	progs := r.Programs()
	r.Release()

	progs.each(func(p gpu.Program) {
		assert.True(t, p.(*gputest.Program).Deleted, p.Name())
	})
	assert.Contains(t, dev.Deleted, r.particles.mesh.VAO)
}

func TestResizeIgnoresEmptySize(t *testing.T) {
	dev := gputest.NewDevice(1280, 720)
	r := newTestRenderer(t, dev)
	r.Resize(0, 100)
	assert.Equal(t, gpu.Viewport{Width: 1280, Height: 720}, dev.Viewport())
	r.Resize(640, 480)
	assert.Equal(t, gpu.Viewport{Width: 640, Height: 480}, dev.Viewport())
}

func programID(p Programs, name string) uint32 {
	var id uint32
	p.each(func(prog gpu.Program) {
		if prog.Name() == name {
			id = prog.ID()
		}
	})
	return id
}

func TestNewUnknownShadingFallsBackToPBR(t *testing.T) {
	dev := gputest.NewDevice(1280, 720)
	opts := testOptions()
	opts.Shading = "toon"
	r, err := New(dev, testParams(), opts)
	require.NoError(t, err)
	assert.Equal(t, ProgramPBR, r.Programs().Shading.Name())
}

func TestParticleCapacityIndependentOfRainCount(t *testing.T) {
	dev := gputest.NewDevice(1280, 720)
	params := testParams()
	params.Rain.Count = 4000
	r, err := New(dev, params, testOptions())
	require.NoError(t, err)
	assert.Equal(t, ParticleCapacity, r.particles.Capacity())

	data := dev.Writes[r.particles.mesh.VBO]
	require.Len(t, data, ParticleCapacity*3)
	for slot := 2000; slot < ParticleCapacity; slot++ {
		require.Equal(t, []float32{0, 0, 0}, data[slot*3:slot*3+3], "slot %d", slot)
	}

	stats := r.Frame(FrameInput{Params: params, Camera: testCamera(), DeltaTime: 0.02})
	assert.Equal(t, 2*ParticleCapacity, stats.Points)
	for _, name := range []string{ProgramParticle, ProgramSplash} {
		draws := dev.DrawsBy(name)
		require.Len(t, draws, 1)
		assert.Equal(t, int32(ParticleCapacity), draws[0].Count)
	}
}
