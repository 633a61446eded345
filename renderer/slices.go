package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goshaderdemos/bake"
	"github.com/richinsley/goshaderdemos/inputs"
	"github.com/richinsley/goshaderdemos/shader"
	"github.com/richinsley/goshaderdemos/uniforms"
)

// Uniforms of the baking shader.
const (
	sliceSelectorUniform   = "zLevel"
	sliceResolutionUniform = "uResolution"
)

// SliceTarget renders the depth slices of one volume into an offscreen
// framebuffer and reads them back.
type SliceTarget struct {
	target  *inputs.Target
	program *Program
	vao     uint32
}

// NewSliceRenderer compiles the baking shader of v and allocates a w×h
// target. It satisfies bake.SliceRendererFactory.
func (r *Renderer) NewSliceRenderer(v *uniforms.VolumeBake) (bake.SliceRenderer, error) {
	src, err := shader.Translate(v.Shader)
	if err != nil {
		return nil, fmt.Errorf("volume %q: %w", v.Name, err)
	}
	program, err := NewProgram(src)
	if err != nil {
		return nil, fmt.Errorf("volume %q: %w", v.Name, err)
	}
	target, err := inputs.NewTarget(v.Width(), v.Height())
	if err != nil {
		program.Destroy()
		return nil, fmt.Errorf("volume %q: %w", v.Name, err)
	}
	return &SliceTarget{target: target, program: program, vao: r.quadVAO}, nil
}

// RenderSlice draws one slice into dst. The caller's framebuffer, program and
// viewport are restored.
func (s *SliceTarget) RenderSlice(zLevel float32, dst []byte) error {
	var prevFBO, prevProgram int32
	var prevViewport [4]int32
	gl.GetIntegerv(gl.DRAW_FRAMEBUFFER_BINDING, &prevFBO)
	gl.GetIntegerv(gl.CURRENT_PROGRAM, &prevProgram)
	gl.GetIntegerv(gl.VIEWPORT, &prevViewport[0])
	defer func() {
		gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
		gl.UseProgram(uint32(prevProgram))
		gl.Viewport(prevViewport[0], prevViewport[1], prevViewport[2], prevViewport[3])
	}()

	width, height := s.target.Size()
	s.target.Bind()
	s.program.Use()
	s.program.SetFloat(sliceSelectorUniform, zLevel)
	s.program.SetVec2(sliceResolutionUniform, float32(width), float32(height))

	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.BindVertexArray(s.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)

	if err := s.target.ReadPixels(dst); err != nil {
		return err
	}
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("rendering slice %g: gl error 0x%X", zLevel, code)
	}
	return nil
}

func (s *SliceTarget) Destroy() {
	s.program.Destroy()
	s.target.Destroy()
}
