package renderer

import (
	"image"
	"path/filepath"
	"testing"

	"RainyDay/internal/config"
	"RainyDay/internal/gpu"
	"RainyDay/internal/gpu/gputest"
	"RainyDay/internal/loader"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLayout(t *testing.T) {
	layout := DefaultLayout()
	require.Len(t, layout, 14)

	paint := 0
	wheels := 0
	for _, p := range layout {
		if p.Paint {
			paint++
		}
		if p.Path == "car/Wheel_LOD0.obj" {
			wheels++
		}
	}
	assert.Equal(t, 1, paint)
	assert.Equal(t, 4, wheels)

	floor := layout[8]
	assert.Equal(t, "floor/floor.obj", floor.Path)
	assert.Equal(t, mgl32.Vec4{4, 4, 0, 0}, floor.TexCoordTransform)
	assert.Equal(t, float32(0.25), layout[9].Material.Roughness)
	assert.Equal(t, float32(0.002), layout[11].Material.SpecularReflectance)
}

func TestLoadSceneUploadsEachModelOnce(t *testing.T) {
	dev := gputest.NewDevice(1, 1)
	loads := map[string]int{}
	load := func(path string) (*loader.MeshData, error) {
		loads[path]++
		return triangleMesh(path)
	}

	scene, err := LoadScene(dev, NewTextureCache(dev, solidImage), "assets", DefaultLayout(), load)
	require.NoError(t, err)
	assert.Len(t, scene.Entries, 14)
	assert.Len(t, loads, 11)
	assert.Equal(t, 1, loads[filepath.Join("assets", "car/Wheel_LOD0.obj")])
	assert.Same(t, scene.Entries[4].Mesh, scene.Entries[7].Mesh)
}

func TestLoadSceneMissingModel(t *testing.T) {
	dev := gputest.NewDevice(1, 1)
	calls := 0
	load := func(path string) (*loader.MeshData, error) {
		calls++
		if calls == 3 {
			return nil, errBoom
		}
		return triangleMesh(path)
	}
	_, err := LoadScene(dev, NewTextureCache(dev, solidImage), ".", DefaultLayout(), load)
	require.ErrorIs(t, err, errBoom)
	assert.Len(t, dev.Deleted, 2)
}

func TestLoadSceneMissingAlbedoIsNotFatal(t *testing.T) {
	dev := gputest.NewDevice(1, 1)
	load := func(path string) (*loader.MeshData, error) {
		m, _ := triangleMesh(path)
		m.Material = &loader.Material{AlbedoPath: "missing.png"}
		return m, nil
	}
	scene, err := LoadScene(dev, NewTextureCache(dev, missingImage), ".", DefaultLayout()[:1], load)
	require.NoError(t, err)
	assert.Zero(t, scene.Entries[0].Albedo)
}

func TestSceneDrawShadedUsesLivePaint(t *testing.T) {
	dev := gputest.NewDevice(1, 1)
	load := func(path string) (*loader.MeshData, error) {
		m, _ := triangleMesh(path)
		m.Material = &loader.Material{AlbedoPath: "albedo.png"}
		return m, nil
	}
	layout := DefaultLayout()[:2]
	scene, err := LoadScene(dev, NewTextureCache(dev, solidImage), ".", layout, load)
	require.NoError(t, err)

	prog := compile(t, dev, ProgramPBR)
	prog.Use()
	paint := config.Default().Params.Paint
	paint.ReflectionColor = mgl32.Vec3{0, 1, 0}

	var colors []any
	dev.OnDraw = func(gputest.Draw) {
		colors = append(colors, dev.Programs[ProgramPBR].Uniforms["reflectionColor"])
	}
	draws := scene.DrawShaded(dev, prog, paint)

	assert.Equal(t, 2, draws)
	assert.Equal(t, []any{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 1, 1}}, colors)
	for _, d := range dev.Draws {
		assert.True(t, d.Indexed)
		assert.Equal(t, int32(3), d.Count)
	}
	assert.Equal(t, int32(1), uniform(t, dev, ProgramPBR, "hasAlbedo"))
	assert.Equal(t, gpu.Texture2D, dev.Textures[albedoUnit].Target)
}

func TestTextureCacheHits(t *testing.T) {
	dev := gputest.NewDevice(1, 1)
	decoded := 0
	tc := NewTextureCache(dev, func(path string, flip bool) (*image.RGBA, error) {
		decoded++
		assert.True(t, flip)
		return solidImage(path, flip)
	})

	a, err := tc.Load("a.png")
	require.NoError(t, err)
	b, err := tc.Load("a.png")
	require.NoError(t, err)
	c, err := tc.Load("c.png")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, 2, decoded)
	assert.Equal(t, TextureStats{Loaded: 2, CacheHits: 1, CacheMisses: 2}, tc.Stats())

	tc.Clear()
	assert.ElementsMatch(t, []uint32{a, c}, dev.Deleted)
	assert.Equal(t, 0, tc.Stats().Loaded)
}
