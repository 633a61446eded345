package renderer

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goshaderdemos/shader"
	"github.com/richinsley/goshaderdemos/uniforms"
)

// Program is a linked page shader. Uniform writes use source names; the
// translator's renamed identifiers are looked up once and cached.
type Program struct {
	id        uint32
	names     map[string]string
	locations map[string]int32
	units     map[string]int32
}

// NewProgram links a translated shader pair. The page's position attribute is
// bound to location 0, where the quad's vertices live.
func NewProgram(src *shader.Translated) (*Program, error) {
	id, err := newProgram(src.Vertex, src.Fragment, src.Mapped(shader.PositionAttribute))
	if err != nil {
		return nil, err
	}
	return &Program{
		id:        id,
		names:     src.Names,
		locations: make(map[string]int32),
		units:     make(map[string]int32),
	}, nil
}

func (p *Program) ID() uint32 { return p.id }

func (p *Program) Use() { gl.UseProgram(p.id) }

func (p *Program) location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	mapped := name
	if m, ok := p.names[name]; ok && m != "" {
		mapped = m
	}
	loc := gl.GetUniformLocation(p.id, gl.Str(mapped+"\x00"))
	p.locations[name] = loc
	return loc
}

func (p *Program) SetFloat(name string, v float32) {
	if loc := p.location(name); loc != -1 {
		gl.Uniform1f(loc, v)
	}
}

func (p *Program) SetVec2(name string, x, y float32) {
	if loc := p.location(name); loc != -1 {
		gl.Uniform2f(loc, x, y)
	}
}

func (p *Program) SetVec3(name string, x, y, z float32) {
	if loc := p.location(name); loc != -1 {
		gl.Uniform3f(loc, x, y, z)
	}
}

func (p *Program) SetMat4(name string, m mgl32.Mat4) {
	if loc := p.location(name); loc != -1 {
		gl.UniformMatrix4fv(loc, 1, false, &m[0])
	}
}

// SetTexture binds tex to a texture unit reserved for name.
func (p *Program) SetTexture(name string, tex uniforms.GPUTexture) {
	loc := p.location(name)
	if loc == -1 || tex == nil {
		return
	}
	unit, ok := p.units[name]
	if !ok {
		unit = int32(len(p.units))
		p.units[name] = unit
	}
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(textureTarget(tex), tex.ID())
	gl.Uniform1i(loc, unit)
}

func textureTarget(tex uniforms.GPUTexture) uint32 {
	if tex.SamplerType() == "sampler3D" {
		return gl.TEXTURE_3D
	}
	return gl.TEXTURE_2D
}

func (p *Program) Destroy() {
	if p.id != 0 {
		gl.DeleteProgram(p.id)
		p.id = 0
	}
}

// newProgram compiles and links a program. A non-empty position names the
// attribute bound to location 0.
func newProgram(vertexShaderSource, fragmentShaderSource, position string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	if position != "" {
		gl.BindAttribLocation(program, 0, gl.Str(position+"\x00"))
	}
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", log)
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(sh, 1, csources, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(sh, logLength, nil, gl.Str(logText))
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("failed to compile shader: %v", logText)
	}
	return sh, nil
}
