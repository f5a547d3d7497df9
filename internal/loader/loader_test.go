package loader

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quadOBJ = `# unit quad
v 0 0 0
v 1 0 0
v 1 0 1
v 0 0 1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 1 0
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseOBJQuad(t *testing.T) {
	mesh, err := ParseOBJ(strings.NewReader(quadOBJ), "")
	require.NoError(t, err)

	assert.Equal(t, 4, mesh.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, mesh.Indices)
	// second vertex: position, uv, normal
	assert.Equal(t, []float32{1, 0, 0, 1, 0, 0, 1, 0}, mesh.Vertices[8:16])
}

func TestParseOBJNegativeIndices(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n"
	mesh, err := ParseOBJ(strings.NewReader(src), "")
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
}

func TestParseOBJRecalculatesMissingNormals(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	mesh, err := ParseOBJ(strings.NewReader(src), "")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		n := mesh.Vertices[i*FloatsPerVertex+5 : i*FloatsPerVertex+8]
		assert.InDelta(t, 0, n[0], 1e-6)
		assert.InDelta(t, 0, n[1], 1e-6)
		assert.InDelta(t, 1, n[2], 1e-6)
	}
}

func TestParseOBJPentagonFan(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 2 1 0\nv 1 2 0\nv 0 1 0\nf 1 2 3 4 5\n"
	mesh, err := ParseOBJ(strings.NewReader(src), "")
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3, 0, 3, 4}, mesh.Indices)
}

func TestParseOBJErrors(t *testing.T) {
	cases := map[string]string{
		"no faces":        "v 0 0 0\n",
		"index range":     "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n",
		"bad vertex":      "v 0 x 0\n",
		"short face":      "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"bad tex index":   "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1 2/1 3/1\n",
		"missing normals": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1//1 2//1 3//1\n",
	}
	for name, src := range cases {
		_, err := ParseOBJ(strings.NewReader(src), "")
		assert.Error(t, err, name)
	}
}

func TestLoadOBJWithMaterial(t *testing.T) {
	dir := t.TempDir()
	mtl := "newmtl paint\nKd 0.8 0.1 0.1\nNs 32\nmap_Kd -bm 1 textures/albedo.png\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "car.mtl"), []byte(mtl), 0o644))
	obj := "mtllib car.mtl\nusemtl paint\n" + quadOBJ
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Paint_LOD0.obj"), []byte(obj), 0o644))

	mesh, err := LoadOBJ(filepath.Join(dir, "Paint_LOD0.obj"))
	require.NoError(t, err)

	assert.Equal(t, "Paint_LOD0", mesh.Name)
	require.NotNil(t, mesh.Material)
	assert.Equal(t, "paint", mesh.Material.Name)
	assert.InDelta(t, 0.8, mesh.Material.DiffuseColor.X(), 1e-6)
	assert.Equal(t, float32(32), mesh.Material.Shininess)
	assert.Equal(t, filepath.Join(dir, "textures", "albedo.png"), mesh.Material.AlbedoPath)
}

func TestLoadOBJMissingFile(t *testing.T) {
	_, err := LoadOBJ(filepath.Join(t.TempDir(), "nope.obj"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadMaterialsMissingFile(t *testing.T) {
	assert.Empty(t, LoadMaterials(filepath.Join(t.TempDir(), "nope.mtl")))
}

func TestLoadImageFlip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(0, 1, color.NRGBA{B: 255, A: 255})

	path := filepath.Join(t.TempDir(), "tex.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	straight, err := LoadImage(path, false)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), straight.Pix[0])

	flipped, err := LoadImage(path, true)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), flipped.Pix[0])
	assert.Equal(t, uint8(255), flipped.Pix[2])
}

func TestLoadImageUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "face.tga")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))
	_, err := LoadImage(path, false)
	assert.Error(t, err)
}
