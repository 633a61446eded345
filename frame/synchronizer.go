// Package frame drives the per-frame uniform updates of a shader surface and
// routes user input into its interaction state.
package frame

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goshaderdemos/bake"
	"github.com/richinsley/goshaderdemos/camera"
	"github.com/richinsley/goshaderdemos/controls"
	"github.com/richinsley/goshaderdemos/interaction"
	"github.com/richinsley/goshaderdemos/logger"
	"github.com/richinsley/goshaderdemos/uniforms"
	"go.uber.org/zap"
)

// Program is the compiled shader's uniform table. Writes to names the program
// does not declare are ignored.
type Program interface {
	Use()
	SetFloat(name string, v float32)
	SetVec2(name string, x, y float32)
	SetVec3(name string, x, y, z float32)
	SetMat4(name string, m mgl32.Mat4)
	SetTexture(name string, tex uniforms.GPUTexture)
}

// Surface is the render target the program draws into.
type Surface interface {
	Size() (width, height int)
	Resize(width, height int)
	Draw() error
}

// Clock supplies wall-clock time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads time.Now.
var SystemClock Clock = systemClock{}

// Config wires a Synchronizer.
type Config struct {
	Descriptors []uniforms.Descriptor
	Table       uniforms.Table
	Bakers      []*bake.Baker
	Controls    *controls.Panel
	Camera      *camera.Orbit
	Names       Names
	Interaction interaction.Config
	Clock       Clock
}

// Synchronizer owns the interaction state and resolved resources of one
// surface. All methods must be called from the render thread.
type Synchronizer struct {
	program Program
	surface Surface
	clock   Clock
	names   Names

	descs    []uniforms.Descriptor
	table    uniforms.Table
	bakers   map[string]*bake.Baker
	controls *controls.Panel
	camera   *camera.Orbit
	state    *interaction.State

	dragging     bool
	lastX, lastY float32
	frames       int64
}

// New creates a synchronizer drawing program into surface.
func New(program Program, surface Surface, cfg Config) (*Synchronizer, error) {
	if err := uniforms.Validate(cfg.Descriptors); err != nil {
		return nil, err
	}
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock
	}
	icfg := cfg.Interaction.WithDefaults()
	table := cfg.Table
	if table == nil {
		table = make(uniforms.Table)
	}
	panel := cfg.Controls
	if panel == nil {
		panel = controls.NewPanel()
	}

	s := &Synchronizer{
		program:  program,
		surface:  surface,
		clock:    clock,
		names:    cfg.Names.withDefaults(),
		descs:    cfg.Descriptors,
		table:    table,
		bakers:   make(map[string]*bake.Baker, len(cfg.Bakers)),
		controls: panel,
		camera:   cfg.Camera,
	}
	for _, b := range cfg.Bakers {
		s.bakers[b.Descriptor().Name] = b
	}
	for _, v := range uniforms.Volumes(cfg.Descriptors) {
		if _, ok := s.bakers[v.Name]; !ok {
			return nil, fmt.Errorf("volume %q has no baker", v.Name)
		}
	}
	for _, d := range cfg.Descriptors {
		if sc, ok := d.(*uniforms.Scalar); ok {
			panel.Register(sc)
		}
	}

	w, h := surface.Size()
	s.state = interaction.New(icfg, w, h, clock.Now())
	return s, nil
}

// State exposes the interaction state.
func (s *Synchronizer) State() *interaction.State { return s.state }

// Table exposes the current uniform table.
func (s *Synchronizer) Table() uniforms.Table { return s.table }

// Controls exposes the scalar control panel.
func (s *Synchronizer) Controls() *controls.Panel { return s.controls }

// Frames returns the number of frames drawn.
func (s *Synchronizer) Frames() int64 { return s.frames }

// SetProgram swaps the program, e.g. after a shader reload.
func (s *Synchronizer) SetProgram(p Program) { s.program = p }

// Frame resolves every uniform to its current value and draws.
func (s *Synchronizer) Frame() error {
	s.program.Use()

	for _, pass := range []uniforms.Visitor{textureBinder{s}, volumeBaker{s}, scalarReader{s}} {
		for _, d := range s.descs {
			if err := d.Accept(pass); err != nil {
				return err
			}
		}
	}

	width, height := s.surface.Size()
	s.program.SetVec2(s.names.Resolution, float32(width), float32(height))

	seconds := s.state.Advance(s.clock.Now())
	s.program.SetFloat(s.names.Time, seconds)

	p := s.state.Pointer()
	s.program.SetVec3(s.names.Mouse, p[0], p[1], p[2])
	if s.camera != nil {
		eye := s.camera.Position()
		s.program.SetVec3(s.names.CameraPosition, eye.X(), eye.Y(), eye.Z())
		s.program.SetMat4(s.names.ViewMatrix, s.camera.View())
	}

	if err := s.surface.Draw(); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	s.frames++
	return nil
}

// PointerDown starts a drag at (x, y).
func (s *Synchronizer) PointerDown(x, y float32) {
	s.dragging = true
	s.lastX, s.lastY = x, y
	s.state.PointerDown(x, y)
}

// PointerUp ends a drag.
func (s *Synchronizer) PointerUp() { s.dragging = false }

// PointerMove updates the drag when a button is held.
func (s *Synchronizer) PointerMove(x, y float32) {
	if !s.dragging {
		return
	}
	if s.camera != nil {
		s.camera.Rotate(x-s.lastX, y-s.lastY)
	}
	s.lastX, s.lastY = x, y
	s.state.Drag(x, y)
}

// Wheel applies a scroll delta in pixels, positive when scrolling down.
func (s *Synchronizer) Wheel(delta float32) {
	s.state.Wheel(delta)
	if s.camera != nil {
		s.camera.Dolly(delta)
	}
}

// TogglePause pauses or resumes the shader clock.
func (s *Synchronizer) TogglePause() {
	paused := s.state.TogglePause(s.clock.Now())
	logger.Log.Info("Pause toggled", zap.Bool("paused", paused), zap.Float32("seconds", s.state.Seconds()))
}

// Resize recenters the pointer, resets the camera and resizes the surface.
func (s *Synchronizer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.state.Resize(width, height)
	if s.camera != nil {
		s.camera.Reset()
	}
	s.surface.Resize(width, height)
}

// Release destroys the table's textures and baked volumes.
func (s *Synchronizer) Release() {
	for _, b := range s.bakers {
		b.Destroy()
	}
	for name, v := range s.table {
		// baked volumes were destroyed with their baker
		if _, baked := s.bakers[name]; baked {
			delete(s.table, name)
			continue
		}
		if sm, ok := v.(uniforms.Sampler); ok && sm.Texture != nil {
			sm.Texture.Destroy()
		}
		delete(s.table, name)
	}
}
