package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"RainyDay/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// FloatsPerVertex is the interleaved layout produced by the loader:
// position (3), texture coordinate (2), normal (3).
const FloatsPerVertex = 8

// Layout is the attribute component layout matching FloatsPerVertex.
var Layout = []int32{3, 2, 3}

// MeshData is a triangulated, indexed mesh ready for upload.
type MeshData struct {
	Name     string
	Vertices []float32
	Indices  []uint32
	// Material is the first material referenced by the mesh, if any.
	Material *Material
}

func (m *MeshData) VertexCount() int {
	return len(m.Vertices) / FloatsPerVertex
}

// LoadOBJ reads an OBJ file and the MTL library it references.
func LoadOBJ(path string) (*MeshData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	defer f.Close()

	mesh, err := ParseOBJ(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", path, err)
	}
	mesh.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	logger.Log.Info("Model loaded",
		zap.String("path", path),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("triangles", len(mesh.Indices)/3))
	return mesh, nil
}

type faceVertex struct {
	v, vt, vn int
}

// ParseOBJ parses OBJ text. dir resolves mtllib references; an empty dir
// skips material loading.
func ParseOBJ(r io.Reader, dir string) (*MeshData, error) {
	var (
		positions []mgl32.Vec3
		texCoords []mgl32.Vec2
		normals   []mgl32.Vec3
		faces     []faceVertex
		materials map[string]*Material
		mesh      = &MeshData{}
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 || strings.HasPrefix(parts[0], "#") {
			continue
		}
		switch parts[0] {
		case "v":
			v, err := parseFloats(parts[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex: %w", line, err)
			}
			positions = append(positions, mgl32.Vec3{v[0], v[1], v[2]})
		case "vt":
			v, err := parseFloats(parts[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: texture coordinate: %w", line, err)
			}
			texCoords = append(texCoords, mgl32.Vec2{v[0], v[1]})
		case "vn":
			v, err := parseFloats(parts[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: normal: %w", line, err)
			}
			normals = append(normals, mgl32.Vec3{v[0], v[1], v[2]})
		case "f":
			fv, err := parseFace(parts[1:], len(positions), len(texCoords), len(normals))
			if err != nil {
				return nil, fmt.Errorf("line %d: face: %w", line, err)
			}
			faces = append(faces, fv...)
		case "mtllib":
			if dir == "" || len(parts) < 2 {
				continue
			}
			materials = LoadMaterials(filepath.Join(dir, parts[1]))
		case "usemtl":
			if len(parts) < 2 || mesh.Material != nil {
				continue
			}
			if mat, ok := materials[parts[1]]; ok {
				mesh.Material = mat
			} else {
				logger.Log.Debug("Material not found", zap.String("material", parts[1]))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(faces) == 0 {
		return nil, fmt.Errorf("no faces")
	}

	// Deduplicate (v, vt, vn) triplets into a single index space.
	index := make(map[faceVertex]uint32, len(faces))
	mesh.Indices = make([]uint32, 0, len(faces))
	for _, fv := range faces {
		if idx, ok := index[fv]; ok {
			mesh.Indices = append(mesh.Indices, idx)
			continue
		}
		idx := uint32(len(mesh.Vertices) / FloatsPerVertex)
		index[fv] = idx

		p := positions[fv.v]
		var uv mgl32.Vec2
		if fv.vt >= 0 {
			uv = texCoords[fv.vt]
		}
		n := mgl32.Vec3{0, 1, 0}
		if fv.vn >= 0 {
			n = normals[fv.vn]
		}
		mesh.Vertices = append(mesh.Vertices, p[0], p[1], p[2], uv[0], uv[1], n[0], n[1], n[2])
		mesh.Indices = append(mesh.Indices, idx)
	}

	if len(normals) == 0 {
		RecalculateNormals(mesh.Vertices, mesh.Indices)
	}
	return mesh, nil
}

func parseFloats(parts []string, want int) ([]float32, error) {
	if len(parts) < want {
		return nil, fmt.Errorf("want %d components, got %d", want, len(parts))
	}
	out := make([]float32, want)
	for i := 0; i < want; i++ {
		v, err := strconv.ParseFloat(parts[i], 32)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", parts[i], err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

// resolveIndex converts a 1-based or negative (relative) OBJ index into a
// 0-based one.
func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	switch {
	case i > 0 && i <= count:
		return i - 1, nil
	case i < 0 && -i <= count:
		return count + i, nil
	}
	return 0, fmt.Errorf("index %d out of range [1, %d]", i, count)
}

func parseFace(parts []string, nv, nvt, nvn int) ([]faceVertex, error) {
	if len(parts) < 3 {
		return nil, fmt.Errorf("need at least 3 vertices, got %d", len(parts))
	}
	face := make([]faceVertex, 0, len(parts))
	for _, part := range parts {
		vals := strings.Split(part, "/")
		fv := faceVertex{vt: -1, vn: -1}
		var err error
		if fv.v, err = resolveIndex(vals[0], nv); err != nil {
			return nil, err
		}
		if len(vals) > 1 && vals[1] != "" {
			if fv.vt, err = resolveIndex(vals[1], nvt); err != nil {
				return nil, err
			}
		}
		if len(vals) > 2 && vals[2] != "" {
			if fv.vn, err = resolveIndex(vals[2], nvn); err != nil {
				return nil, err
			}
		}
		face = append(face, fv)
	}

	// Fan triangulation; quads become (0,1,2) (0,2,3).
	tris := make([]faceVertex, 0, (len(face)-2)*3)
	for i := 1; i < len(face)-1; i++ {
		tris = append(tris, face[0], face[i], face[i+1])
	}
	return tris, nil
}

// RecalculateNormals replaces the normals of interleaved vertex data with
// area-weighted face normals.
func RecalculateNormals(vertices []float32, indices []uint32) {
	count := len(vertices) / FloatsPerVertex
	acc := make([]mgl32.Vec3, count)
	pos := func(i uint32) mgl32.Vec3 {
		o := int(i) * FloatsPerVertex
		return mgl32.Vec3{vertices[o], vertices[o+1], vertices[o+2]}
	}
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		n := pos(b).Sub(pos(a)).Cross(pos(c).Sub(pos(a)))
		acc[a] = acc[a].Add(n)
		acc[b] = acc[b].Add(n)
		acc[c] = acc[c].Add(n)
	}
	for i, n := range acc {
		if n.Len() > 0 {
			n = n.Normalize()
		} else {
			n = mgl32.Vec3{0, 1, 0}
		}
		o := i*FloatsPerVertex + 5
		vertices[o], vertices[o+1], vertices[o+2] = n[0], n[1], n[2]
	}
}
