package renderer

import (
	"image"
	"path/filepath"

	"RainyDay/internal/gpu"
	"RainyDay/internal/logger"

	"go.uber.org/zap"
)

// SkyboxFaces are the face file names in cube map order: +X, -X, +Y, -Y, +Z, -Z.
var SkyboxFaces = [6]string{"right", "left", "top", "bottom", "front", "back"}

var skyboxVertices = []float32{
	-1, 1, -1, -1, -1, -1, 1, -1, -1, 1, -1, -1, 1, 1, -1, -1, 1, -1,
	-1, -1, 1, -1, -1, -1, -1, 1, -1, -1, 1, -1, -1, 1, 1, -1, -1, 1,
	1, -1, -1, 1, -1, 1, 1, 1, 1, 1, 1, 1, 1, 1, -1, 1, -1, -1,
	-1, -1, 1, -1, 1, 1, 1, 1, 1, 1, 1, 1, 1, -1, 1, -1, -1, 1,
	-1, 1, -1, 1, 1, -1, 1, 1, 1, 1, 1, 1, -1, 1, 1, -1, 1, -1,
	-1, -1, -1, -1, -1, 1, 1, -1, -1, 1, -1, -1, -1, -1, 1, 1, -1, 1,
}

type Skybox struct {
	program gpu.Program
	mesh    *gpu.Mesh
	cubemap uint32
	// Missing lists the faces that failed to load.
	Missing []string
}

// LoadSkybox builds the cube map from dir/<face><ext>. Faces that fail to
// load are logged and left empty; the skybox is still usable.
func LoadSkybox(dev gpu.Device, program gpu.Program, dir, ext string, decode ImageSource) *Skybox {
	s := &Skybox{program: program}

	var faces [6]*image.RGBA
	for i, name := range SkyboxFaces {
		path := filepath.Join(dir, name+ext)
		img, err := decode(path, false)
		if err != nil {
			logger.Log.Error("Failed to load skybox face", zap.String("path", path), zap.Error(err))
			s.Missing = append(s.Missing, name)
			continue
		}
		faces[i] = img
	}
	s.cubemap = dev.NewCubemap(faces)
	s.mesh = dev.NewMesh(skyboxVertices, nil, []int32{3})
	return s
}

// Cubemap is the cube texture, also sampled for reflections.
func (s *Skybox) Cubemap() uint32 { return s.cubemap }

func (s *Skybox) SetProgram(prog gpu.Program) { s.program = prog }

// Render draws the sky behind everything. The depth function is LEQUAL for
// the draw and restored after.
func (s *Skybox) Render(dev gpu.Device, cam *Camera) {
	depth := dev.DepthFunc()
	dev.SetDepthFunc(gpu.DepthLessEqual)
	defer dev.SetDepthFunc(depth)

	view := cam.ViewMatrix()
	view[12], view[13], view[14] = 0, 0, 0

	s.program.Use()
	s.program.SetMat4("projection", cam.ProjectionMatrix())
	s.program.SetMat4("view", view)
	s.program.SetInt("skybox", 0)
	dev.BindTexture(0, gpu.TextureCube, s.cubemap)
	drawMesh(dev, s.mesh)
}

func (s *Skybox) Release(dev gpu.Device) {
	dev.DeleteMesh(s.mesh)
	dev.DeleteTexture(s.cubemap)
}
