package renderer

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"RainyDay/internal/gpu/gputest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedProgramsLoad(t *testing.T) {
	for name, files := range programTable {
		t.Run(name, func(t *testing.T) {
			src, err := LoadProgramSource(EmbeddedShaders(), name)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(src.Vertex, "#version 410 core"))
			assert.True(t, strings.HasPrefix(src.Fragment, "#version 410 core"))
			assert.Equal(t, files.geometry != "", src.Geometry != "")
			assert.NotContains(t, src.Vertex+src.Fragment+src.Geometry, "#include")
		})
	}
}

func TestIncludesAreExpanded(t *testing.T) {
	src, err := LoadProgramSource(EmbeddedShaders(), ProgramPBR)
	require.NoError(t, err)
	assert.Contains(t, src.Fragment, "float shadowFactor(")
	assert.Contains(t, src.Fragment, "uniform int shadowEnabled;")

	src, err = LoadProgramSource(EmbeddedShaders(), ProgramSplash)
	require.NoError(t, err)
	assert.Contains(t, src.Vertex, "vec3 displayPosition(vec3 origin)")
}

func TestIncludeCycle(t *testing.T) {
	fsys := fstest.MapFS{
		"a.glsl": {Data: []byte("#include \"b.glsl\"\n")},
		"b.glsl": {Data: []byte("#include \"a.glsl\"\n")},
	}
	_, err := readShader(fsys, "a.glsl", nil)
	assert.ErrorContains(t, err, "include cycle")
}

func TestMissingInclude(t *testing.T) {
	fsys := fstest.MapFS{"a.vert": {Data: []byte("#include \"gone.glsl\"\n")}}
	_, err := readShader(fsys, "a.vert", nil)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestUnknownProgram(t *testing.T) {
	_, err := CompileNamed(gputest.NewDevice(1, 1), EmbeddedShaders(), "toon")
	assert.ErrorContains(t, err, "unknown program")
}

func TestProgramForFile(t *testing.T) {
	fsys := EmbeddedShaders()
	assert.ElementsMatch(t, []string{ProgramShadow, ProgramRainDepth}, ProgramForFile(fsys, "depth.frag"))
	assert.ElementsMatch(t, []string{ProgramPBR, ProgramBlinnPhong}, ProgramForFile(fsys, "lighting_common.glsl"))
	assert.ElementsMatch(t, []string{ProgramParticle, ProgramSplash}, ProgramForFile(fsys, "rain_motion.glsl"))
	assert.Empty(t, ProgramForFile(fsys, "notes.txt"))
}

func TestShaderFSOverride(t *testing.T) {
	dir := t.TempDir()
	assert.NotNil(t, ShaderFS(dir))
	_, err := LoadProgramSource(ShaderFS(dir), ProgramSkybox)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
