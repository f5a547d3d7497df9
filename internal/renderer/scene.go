package renderer

import (
	"fmt"
	"path/filepath"

	"RainyDay/internal/config"
	"RainyDay/internal/gpu"
	"RainyDay/internal/loader"
	"RainyDay/internal/logger"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

const albedoUnit = 0

// Placement describes one draw of a model file: where it sits and how it is
// shaded. Several placements may share a model path.
type Placement struct {
	Path              string
	Model             mgl32.Mat4
	TexCoordTransform mgl32.Vec4
	Material          config.Material
	// Paint placements take their material from the live parameters.
	Paint bool
}

// Entry is a placement with its GPU resources resolved.
type Entry struct {
	Placement
	Name   string
	Mesh   *gpu.Mesh
	Albedo uint32
}

// Scene is the static set of meshes drawn by every geometry pass.
type Scene struct {
	Entries []Entry
}

var (
	carPartMaterial = config.Material{
		ReflectionColor:     mgl32.Vec3{1, 1, 1},
		AmbientReflectance:  0.75,
		DiffuseReflectance:  0.75,
		SpecularReflectance: 0.5,
		SpecularExponent:    10,
		Roughness:           0.5,
		Metalness:           0.5,
	}
	unitTexCoord = mgl32.Vec4{1, 1, 0, 0}
)

func withRoughness(m config.Material, roughness float32) config.Material {
	m.Roughness = roughness
	return m
}

func withSpecular(m config.Material, reflectance, exponent float32) config.Material {
	m.SpecularReflectance = reflectance
	m.SpecularExponent = exponent
	return m
}

// DefaultLayout is the car parked in front of the house.
func DefaultLayout() []Placement {
	ident := mgl32.Ident4()
	flip := mgl32.HomogRotate3DY(math32.Pi)
	wheelOffset := func(z float32) mgl32.Mat4 { return mgl32.Translate3D(-0.7432, 0.328, z) }
	house := mgl32.Scale3D(5, 5, 5).Mul4(flip).Mul4(mgl32.Translate3D(1.55, -0.05, 0))

	glass := withRoughness(carPartMaterial, 0.25)
	plaster := withSpecular(withRoughness(carPartMaterial, 0.95), 0.002, 0.02)
	roof := withSpecular(withRoughness(carPartMaterial, 0.95), 0.05, 0.02)
	stone := withSpecular(withRoughness(carPartMaterial, 0.95), 0.005, 0.02)

	return []Placement{
		{Path: "car/Paint_LOD0.obj", Model: ident, TexCoordTransform: unitTexCoord, Paint: true},
		{Path: "car/Body_LOD0.obj", Model: ident, TexCoordTransform: unitTexCoord, Material: carPartMaterial},
		{Path: "car/Light_LOD0.obj", Model: ident, TexCoordTransform: unitTexCoord, Material: carPartMaterial},
		{Path: "car/Interior_LOD0.obj", Model: ident, TexCoordTransform: unitTexCoord, Material: carPartMaterial},
		{Path: "car/Wheel_LOD0.obj", Model: wheelOffset(1.39), TexCoordTransform: unitTexCoord, Material: carPartMaterial},
		{Path: "car/Wheel_LOD0.obj", Model: wheelOffset(-1.39), TexCoordTransform: unitTexCoord, Material: carPartMaterial},
		{Path: "car/Wheel_LOD0.obj", Model: flip.Mul4(wheelOffset(1.39)), TexCoordTransform: unitTexCoord, Material: carPartMaterial},
		{Path: "car/Wheel_LOD0.obj", Model: flip.Mul4(wheelOffset(-1.39)), TexCoordTransform: unitTexCoord, Material: carPartMaterial},
		{Path: "floor/floor.obj", Model: mgl32.Scale3D(5, 5, 5), TexCoordTransform: mgl32.Vec4{4, 4, 0, 0}, Material: carPartMaterial},
		{Path: "car/Windows_LOD0.obj", Model: ident, TexCoordTransform: unitTexCoord, Material: glass},
		{Path: "house/Detail_LOD0.obj", Model: house, TexCoordTransform: unitTexCoord, Material: glass},
		{Path: "house/Housebody_LOD0.obj", Model: house, TexCoordTransform: mgl32.Vec4{12, 12, 0, 0}, Material: plaster},
		{Path: "house/Roof_LOD0.obj", Model: house, TexCoordTransform: mgl32.Vec4{4, 4, 0, 0}, Material: roof},
		{Path: "house/Stone_LOD0.obj", Model: house, TexCoordTransform: unitTexCoord, Material: stone},
	}
}

// MeshSource loads a model file. It is loader.LoadOBJ outside of tests.
type MeshSource func(path string) (*loader.MeshData, error)

// LoadScene loads every placement under root. Each model file is parsed and
// uploaded once. Any missing model is an error; a missing albedo texture only
// logs.
func LoadScene(dev gpu.Device, textures *TextureCache, root string, layout []Placement, load MeshSource) (*Scene, error) {
	type uploaded struct {
		name   string
		mesh   *gpu.Mesh
		albedo uint32
	}
	meshes := make(map[string]uploaded)
	scene := &Scene{Entries: make([]Entry, 0, len(layout))}

	for _, p := range layout {
		u, ok := meshes[p.Path]
		if !ok {
			data, err := load(filepath.Join(root, p.Path))
			if err != nil {
				scene.Release(dev)
				return nil, fmt.Errorf("scene: %w", err)
			}
			u = uploaded{name: data.Name, mesh: dev.NewMesh(data.Vertices, data.Indices, loader.Layout)}
			if data.Material != nil && data.Material.AlbedoPath != "" {
				id, err := textures.Load(data.Material.AlbedoPath)
				if err != nil {
					logger.Log.Error("Albedo texture unavailable", zap.String("model", p.Path), zap.Error(err))
				}
				u.albedo = id
			}
			meshes[p.Path] = u
		}
		scene.Entries = append(scene.Entries, Entry{Placement: p, Name: u.name, Mesh: u.mesh, Albedo: u.albedo})
	}

	logger.Log.Info("Scene loaded", zap.Int("entries", len(scene.Entries)), zap.Int("meshes", len(meshes)))
	return scene, nil
}

// Release frees the meshes of the scene. Textures belong to the TextureCache.
func (s *Scene) Release(dev gpu.Device) {
	seen := make(map[*gpu.Mesh]bool)
	for _, e := range s.Entries {
		if e.Mesh != nil && !seen[e.Mesh] {
			seen[e.Mesh] = true
			dev.DeleteMesh(e.Mesh)
		}
	}
	s.Entries = nil
}

// DrawDepth issues every entry with only its model matrix bound.
func (s *Scene) DrawDepth(dev gpu.Device, prog gpu.Program) int {
	for _, e := range s.Entries {
		prog.SetMat4("model", e.Model)
		drawMesh(dev, e.Mesh)
	}
	return len(s.Entries)
}

// DrawShaded issues every entry with its material, texture transform and
// albedo bound. paint is the live car paint material.
func (s *Scene) DrawShaded(dev gpu.Device, prog gpu.Program, paint config.Material) int {
	prog.SetInt("albedoTexture", albedoUnit)
	for _, e := range s.Entries {
		m := e.Material
		if e.Paint {
			m = paint
		}
		setMaterial(prog, m)
		prog.SetVec4("texCoordTransform", e.TexCoordTransform)
		prog.SetMat4("model", e.Model)
		prog.SetInt("hasAlbedo", boolInt(e.Albedo != 0))
		dev.BindTexture(albedoUnit, gpu.Texture2D, e.Albedo)
		drawMesh(dev, e.Mesh)
	}
	return len(s.Entries)
}

func setMaterial(prog gpu.Program, m config.Material) {
	prog.SetVec3("reflectionColor", m.ReflectionColor)
	prog.SetFloat("ambientReflectance", m.AmbientReflectance)
	prog.SetFloat("diffuseReflectance", m.DiffuseReflectance)
	prog.SetFloat("specularReflectance", m.SpecularReflectance)
	prog.SetFloat("specularExponent", m.SpecularExponent)
	prog.SetFloat("roughness", m.Roughness)
	prog.SetFloat("metalness", m.Metalness)
}

func drawMesh(dev gpu.Device, m *gpu.Mesh) {
	dev.BindVertexArray(m.VAO)
	if m.EBO != 0 {
		dev.DrawElements(gpu.Triangles, m.Count)
	} else {
		dev.DrawArrays(gpu.Triangles, 0, m.Count)
	}
	dev.BindVertexArray(0)
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
