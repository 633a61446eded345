// Package renderer draws a page's shader on an OpenGL surface: an offscreen
// target at the page's render scale, blitted to the window every frame.
package renderer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goshaderdemos/config"
	"github.com/richinsley/goshaderdemos/diag"
	"github.com/richinsley/goshaderdemos/frame"
	"github.com/richinsley/goshaderdemos/graphics"
	"github.com/richinsley/goshaderdemos/inputs"
	"github.com/richinsley/goshaderdemos/logger"
	"github.com/richinsley/goshaderdemos/shader"
	"github.com/richinsley/goshaderdemos/uniforms"
	"go.uber.org/zap"
)

// gl.Init runs once per process.
var glInitOnce sync.Once

var quadVertices = []float32{
	-1.0, 1.0, -1.0, -1.0, 1.0, -1.0,
	-1.0, 1.0, 1.0, -1.0, 1.0, 1.0,
}

// Renderer owns the GL resources of one mounted page. It implements
// frame.Surface; sizes are framebuffer pixels before the render scale.
type Renderer struct {
	context     graphics.Context
	quadVAO     uint32
	quadVBO     uint32
	blitProgram uint32
	target      *inputs.Target
	dpr         float32
	width       int
	height      int

	program *Program
	sync    *frame.Synchronizer
	overlay *diag.Overlay

	reloads <-chan string
	shaders config.ShaderFiles
}

// NewRenderer initializes OpenGL on ctx, which is made current on the calling
// thread, and allocates the offscreen target at the framebuffer size × dpr.
func NewRenderer(ctx graphics.Context, dpr float32) (*Renderer, error) {
	if dpr <= 0 {
		dpr = 1
	}
	r := &Renderer{context: ctx, dpr: dpr}
	r.context.MakeCurrent()

	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
		if initErr == nil {
			logger.Log.Info("OpenGL initialized", zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))))
		}
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}

	gl.GenVertexArrays(1, &r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	var err error
	r.blitProgram, err = newProgram(shader.GenerateVertexShader(), shader.GetBlitFragmentShader(false), "")
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to create blit program: %w", err)
	}

	r.width, r.height = ctx.GetFramebufferSize()
	tw, th := r.scaled(r.width, r.height)
	r.target, err = inputs.NewTarget(tw, th)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to create offscreen target: %w", err)
	}
	return r, nil
}

func (r *Renderer) scaled(width, height int) (int, int) {
	w := max(1, int(float32(width)*r.dpr+0.5))
	h := max(1, int(float32(height)*r.dpr+0.5))
	return w, h
}

// CompileProgram translates and links a page shader pair.
func CompileProgram(pair uniforms.ShaderPair) (*Program, error) {
	src, err := shader.Translate(pair)
	if err != nil {
		return nil, err
	}
	return NewProgram(src)
}

// Attach hands the renderer the page's program and synchronizer and routes
// window input to them. overlay may be nil.
func (r *Renderer) Attach(p *Program, s *frame.Synchronizer, overlay *diag.Overlay) {
	r.program = p
	r.sync = s
	r.overlay = overlay
	r.context.SetInputHandler(pageInput{sync: s})
}

// WatchShaders rebuilds the page program from files whenever changes
// delivers. Reloads happen between frames on the render thread.
func (r *Renderer) WatchShaders(changes <-chan string, files config.ShaderFiles) {
	r.reloads = changes
	r.shaders = files
}

func (r *Renderer) drainReloads() {
	select {
	case path := <-r.reloads:
		r.reload(path)
	default:
	}
}

// reload keeps the running program when the new source does not compile.
func (r *Renderer) reload(path string) {
	pair, err := config.ReadShaders(r.shaders)
	if err == nil {
		var p *Program
		if p, err = CompileProgram(pair); err == nil {
			old := r.program
			r.program = p
			r.sync.SetProgram(p)
			if old != nil {
				old.Destroy()
			}
			logger.Log.Info("Shader reloaded", zap.String("path", path))
			return
		}
	}
	logger.Log.Warn("Shader reload failed, keeping the current program", zap.String("path", path), zap.Error(err))
}

// Size returns the framebuffer size the page sees as its resolution.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

// Resize reallocates the offscreen target for a new framebuffer size.
func (r *Renderer) Resize(width, height int) {
	r.width, r.height = width, height
	r.target.Resize(r.scaled(width, height))
	logger.Log.Debug("Surface resized", zap.Int("width", width), zap.Int("height", height), zap.Float32("dpr", r.dpr))
}

// Draw renders the bound program into the offscreen target and blits it to
// the window.
func (r *Renderer) Draw() error {
	r.target.Bind()
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.BindVertexArray(r.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)

	fbWidth, fbHeight := r.context.GetFramebufferSize()
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(r.blitProgram)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.target.TextureID())
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindVertexArray(0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl error 0x%X", code)
	}
	return nil
}

// Run presents frames until the window closes or ctx is done.
func (r *Renderer) Run(ctx context.Context) error {
	if r.sync == nil {
		return fmt.Errorf("renderer has no page attached")
	}
	logger.Log.Info("Starting interactive render loop")
	for !r.context.ShouldClose() {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.drainReloads()

		if r.overlay != nil {
			r.overlay.Begin(time.Now())
		}
		if err := r.sync.Frame(); err != nil {
			return err
		}
		if r.overlay != nil {
			r.overlay.End(time.Now())
		}
		r.context.EndFrame()
	}
	return nil
}

// Close releases the renderer's GL objects. The page program is released
// too; textures belong to the synchronizer.
func (r *Renderer) Close() error {
	if r.program != nil {
		r.program.Destroy()
		r.program = nil
	}
	if r.target != nil {
		r.target.Destroy()
		r.target = nil
	}
	if r.blitProgram != 0 {
		gl.DeleteProgram(r.blitProgram)
		r.blitProgram = 0
	}
	if r.quadVBO != 0 {
		gl.DeleteBuffers(1, &r.quadVBO)
		r.quadVBO = 0
	}
	if r.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &r.quadVAO)
		r.quadVAO = 0
	}
	r.context.SetInputHandler(nil)
	return nil
}
