// Package shader holds the built-in blit shaders and prepares page shaders
// for the desktop GL backend.
package shader

import (
	"fmt"
	"strings"

	"github.com/richinsley/goshaderdemos/translator"
	"github.com/richinsley/goshaderdemos/uniforms"
	gst "github.com/richinsley/goshadertranslator"
)

const vertexShaderSourceGL = `#version 410 core
layout (location = 0) in vec2 in_vert;
out vec2 frag_uv;
void main() {
    frag_uv = in_vert * 0.5 + 0.5;
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

const blitFragmentShaderSourceFlipGL = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, vec2(frag_uv.x, 1.0 - frag_uv.y)); }
`

const blitFragmentShaderSourceGL = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, frag_uv); }
`

func GenerateVertexShader() string {
	return vertexShaderSourceGL
}

func GetBlitFragmentShader(flip bool) string {
	if flip {
		return blitFragmentShaderSourceFlipGL
	}
	return blitFragmentShaderSourceGL
}

// PositionAttribute is the vertex input page shaders read the full-screen
// quad from. It is bound to location 0.
const PositionAttribute = "position"

const preamble = `#version 300 es
precision highp float;
precision highp int;
precision highp sampler3D;
`

// WithPreamble prepends the GLSL ES 3.00 header unless src declares its own
// version.
func WithPreamble(src string) string {
	if strings.HasPrefix(strings.TrimSpace(src), "#version") {
		return src
	}
	return preamble + src
}

// Translated is a page shader pair compiled to desktop GLSL. Names maps
// source identifiers to the names the translator emitted.
type Translated struct {
	Vertex   string
	Fragment string
	Names    map[string]string
}

// Mapped returns the emitted name of a source identifier.
func (t *Translated) Mapped(name string) string {
	if m, ok := t.Names[name]; ok && m != "" {
		return m
	}
	return name
}

// Translate converts a WebGL2 shader pair to GLSL 4.10.
func Translate(pair uniforms.ShaderPair) (*Translated, error) {
	tr, err := translator.Get()
	if err != nil {
		return nil, err
	}
	vs, err := tr.TranslateShader(WithPreamble(pair.Vertex), "vertex", gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
	if err != nil {
		return nil, fmt.Errorf("vertex shader translation failed: %w", err)
	}
	fs, err := tr.TranslateShader(WithPreamble(pair.Fragment), "fragment", gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
	if err != nil {
		return nil, fmt.Errorf("fragment shader translation failed: %w", err)
	}

	t := &Translated{Vertex: vs.Code, Fragment: fs.Code, Names: make(map[string]string)}
	for name, v := range vs.Variables {
		t.Names[name] = v.MappedName
	}
	for name, v := range fs.Variables {
		t.Names[name] = v.MappedName
	}
	return t, nil
}
