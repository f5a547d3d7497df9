package renderer

import (
	"bufio"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"RainyDay/internal/gpu"
)

//go:embed shaders
var embeddedShaders embed.FS

// EmbeddedShaders is the shader tree built into the binary, rooted at the
// directory that holds the .vert/.geom/.frag files.
func EmbeddedShaders() fs.FS {
	sub, err := fs.Sub(embeddedShaders, "shaders")
	if err != nil {
		panic(err)
	}
	return sub
}

// ShaderFS returns the directory override when dir is set, the embedded
// sources otherwise.
func ShaderFS(dir string) fs.FS {
	if dir == "" {
		return EmbeddedShaders()
	}
	return os.DirFS(dir)
}

// Shading selects the program used by the lighting pass.
type Shading string

const (
	ShadingPBR        Shading = "pbr"
	ShadingBlinnPhong Shading = "blinn-phong"
)

// PhysicallyBased reports whether the program expects pi scaled light energy.
func (s Shading) PhysicallyBased() bool { return s != ShadingBlinnPhong }

type programFiles struct {
	vertex, geometry, fragment string
}

// Program names, also used as the key passed to gpu.Device.CompileProgram.
const (
	ProgramPBR        = "pbr"
	ProgramBlinnPhong = "blinn-phong"
	ProgramShadow     = "shadow"
	ProgramRainDepth  = "raindepth"
	ProgramParticle   = "particle"
	ProgramSplash     = "splash"
	ProgramSkybox     = "skybox"
)

var programTable = map[string]programFiles{
	ProgramPBR:        {vertex: "common_shading.vert", fragment: "pbr_shading.frag"},
	ProgramBlinnPhong: {vertex: "common_shading.vert", fragment: "blinn_phong.frag"},
	ProgramShadow:     {vertex: "shadowmap.vert", fragment: "depth.frag"},
	ProgramRainDepth:  {vertex: "rainsplash.vert", fragment: "depth.frag"},
	ProgramParticle:   {vertex: "particle.vert", geometry: "particle.geom", fragment: "particle.frag"},
	ProgramSplash:     {vertex: "splash.vert", geometry: "splash.geom", fragment: "splash.frag"},
	ProgramSkybox:     {vertex: "skybox.vert", fragment: "skybox.frag"},
}

// ProgramForFile lists the programs built from the named source file,
// includes counted.
func ProgramForFile(fsys fs.FS, file string) []string {
	var names []string
	for name, files := range programTable {
		for _, f := range []string{files.vertex, files.geometry, files.fragment} {
			if f == "" {
				continue
			}
			if f == file || includes(fsys, f, file, map[string]bool{}) {
				names = append(names, name)
				break
			}
		}
	}
	return names
}

// LoadProgramSource reads the stages of a named program from fsys with
// #include lines expanded.
func LoadProgramSource(fsys fs.FS, name string) (gpu.ProgramSource, error) {
	files, ok := programTable[name]
	if !ok {
		return gpu.ProgramSource{}, fmt.Errorf("shader: unknown program %q", name)
	}
	var src gpu.ProgramSource
	var err error
	if src.Vertex, err = readShader(fsys, files.vertex, nil); err != nil {
		return src, err
	}
	if src.Fragment, err = readShader(fsys, files.fragment, nil); err != nil {
		return src, err
	}
	if files.geometry != "" {
		if src.Geometry, err = readShader(fsys, files.geometry, nil); err != nil {
			return src, err
		}
	}
	return src, nil
}

// CompileNamed loads and compiles the named program.
func CompileNamed(dev gpu.Device, fsys fs.FS, name string) (gpu.Program, error) {
	src, err := LoadProgramSource(fsys, name)
	if err != nil {
		return nil, err
	}
	return dev.CompileProgram(name, src)
}

// readShader returns file with every `#include "other"` line replaced by the
// contents of other, resolved relative to file. stack guards against cycles.
func readShader(fsys fs.FS, file string, stack []string) (string, error) {
	for _, f := range stack {
		if f == file {
			return "", fmt.Errorf("shader: include cycle through %s", file)
		}
	}
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return "", fmt.Errorf("shader: read %s: %w", file, err)
	}

	var out strings.Builder
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	for sc.Scan() {
		line := sc.Text()
		target, ok := includeTarget(line)
		if !ok {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}
		body, err := readShader(fsys, path.Join(path.Dir(file), target), append(stack, file))
		if err != nil {
			return "", err
		}
		out.WriteString(body)
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("shader: scan %s: %w", file, err)
	}
	return out.String(), nil
}

func includeTarget(line string) (string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), "#include")
	if !ok {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	if len(rest) < 2 || rest[0] != '"' || rest[len(rest)-1] != '"' {
		return "", false
	}
	return rest[1 : len(rest)-1], true
}

// includes reports whether file pulls in target, directly or transitively.
func includes(fsys fs.FS, file, target string, seen map[string]bool) bool {
	if seen[file] {
		return false
	}
	seen[file] = true
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(data), "\n") {
		inc, ok := includeTarget(line)
		if !ok {
			continue
		}
		inc = path.Join(path.Dir(file), inc)
		if inc == target || includes(fsys, inc, target, seen) {
			return true
		}
	}
	return false
}
