package gpu

import (
	"fmt"
	"strings"

	"RainyDay/internal/logger"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// ProgramSource holds GLSL stage sources. Geometry is optional.
type ProgramSource struct {
	Vertex   string
	Fragment string
	Geometry string
}

// Program is a linked shader program with uniforms set by name.
type Program interface {
	ID() uint32
	Name() string
	Use()
	SetInt(name string, v int32)
	SetFloat(name string, v float32)
	SetVec3(name string, v mgl32.Vec3)
	SetVec4(name string, v mgl32.Vec4)
	SetMat4(name string, v mgl32.Mat4)
	Delete()
}

// Shader is the OpenGL Program. Uniform locations are looked up once and
// cached for the lifetime of the program.
type Shader struct {
	name      string
	program   uint32
	locations map[string]int32
}

func (s *Shader) ID() uint32   { return s.program }
func (s *Shader) Name() string { return s.name }

func (s *Shader) Use() {
	gl.UseProgram(s.program)
}

func (s *Shader) location(name string) int32 {
	if loc, ok := s.locations[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(s.program, gl.Str(name+"\x00"))
	s.locations[name] = loc
	return loc
}

func (s *Shader) SetInt(name string, v int32) {
	if loc := s.location(name); loc != -1 {
		gl.Uniform1i(loc, v)
	}
}

func (s *Shader) SetFloat(name string, v float32) {
	if loc := s.location(name); loc != -1 {
		gl.Uniform1f(loc, v)
	}
}

func (s *Shader) SetVec3(name string, v mgl32.Vec3) {
	if loc := s.location(name); loc != -1 {
		gl.Uniform3fv(loc, 1, &v[0])
	}
}

func (s *Shader) SetVec4(name string, v mgl32.Vec4) {
	if loc := s.location(name); loc != -1 {
		gl.Uniform4fv(loc, 1, &v[0])
	}
}

func (s *Shader) SetMat4(name string, v mgl32.Mat4) {
	if loc := s.location(name); loc != -1 {
		gl.UniformMatrix4fv(loc, 1, false, &v[0])
	}
}

func (s *Shader) Delete() {
	if s.program != 0 {
		gl.DeleteProgram(s.program)
		s.program = 0
	}
	s.locations = make(map[string]int32)
}

func compileProgram(name string, src ProgramSource) (*Shader, error) {
	stages := []struct {
		kind   uint32
		label  string
		source string
	}{
		{gl.VERTEX_SHADER, "vertex", src.Vertex},
		{gl.GEOMETRY_SHADER, "geometry", src.Geometry},
		{gl.FRAGMENT_SHADER, "fragment", src.Fragment},
	}

	var compiled []uint32
	defer func() {
		for _, sh := range compiled {
			gl.DeleteShader(sh)
		}
	}()

	for _, st := range stages {
		if st.source == "" {
			if st.kind == gl.GEOMETRY_SHADER {
				continue
			}
			return nil, fmt.Errorf("gpu: program %s: missing %s stage", name, st.label)
		}
		sh, err := compileStage(st.source, st.kind)
		if err != nil {
			logger.Log.Error("Failed to compile", zap.String("program", name), zap.String("stage", st.label), zap.Error(err))
			return nil, fmt.Errorf("gpu: program %s: %s stage: %w", name, st.label, err)
		}
		compiled = append(compiled, sh)
	}

	program := gl.CreateProgram()
	for _, sh := range compiled {
		gl.AttachShader(program, sh)
	}
	gl.LinkProgram(program)
	for _, sh := range compiled {
		gl.DetachShader(program, sh)
	}

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		logger.Log.Error("Failed to link program", zap.String("program", name), zap.String("log", log))
		return nil, fmt.Errorf("gpu: program %s: link: %s", name, strings.TrimRight(log, "\x00"))
	}

	logger.Log.Debug("Program linked", zap.String("program", name), zap.Uint32("id", program))
	return &Shader{name: name, program: program, locations: make(map[string]int32)}, nil
}

func compileStage(source string, kind uint32) (uint32, error) {
	if !strings.HasSuffix(source, "\x00") {
		source += "\x00"
	}
	shader := gl.CreateShader(kind)
	cSources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, cSources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile: %s", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}
