// Package controls holds the live values of scalar uniforms adjusted by the
// user at runtime.
package controls

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/chewxy/math32"
	"github.com/richinsley/goshaderdemos/logger"
	"github.com/richinsley/goshaderdemos/uniforms"
	"go.uber.org/zap"
)

// Control is the externally held value of one scalar uniform. Value is safe to
// call from any goroutine.
type Control struct {
	desc *uniforms.Scalar
	bits atomic.Uint32
}

func newControl(desc *uniforms.Scalar) *Control {
	c := &Control{desc: desc}
	c.Set(desc.Default)
	return c
}

func (c *Control) Name() string { return c.desc.Name }

func (c *Control) Descriptor() *uniforms.Scalar { return c.desc }

// Value returns the current value.
func (c *Control) Value() float32 {
	return math.Float32frombits(c.bits.Load())
}

// Set stores v clamped to the control's range and snapped to its step.
func (c *Control) Set(v float32) float32 {
	v = c.snap(v)
	c.bits.Store(math.Float32bits(v))
	return v
}

// Nudge moves the value by n steps.
func (c *Control) Nudge(n int) float32 {
	return c.Set(c.Value() + float32(n)*c.desc.Step)
}

// Reset restores the default value.
func (c *Control) Reset() float32 {
	return c.Set(c.desc.Default)
}

func (c *Control) snap(v float32) float32 {
	d := c.desc
	if math32.IsNaN(v) {
		return d.Default
	}
	v = math32.Min(math32.Max(v, d.Min), d.Max)
	if d.Step > 0 {
		v = d.Min + math32.Round((v-d.Min)/d.Step)*d.Step
		v = math32.Min(v, d.Max)
	}
	return v
}

// Panel is the set of controls of one page, in declaration order.
type Panel struct {
	mu       sync.RWMutex
	controls []*Control
	byName   map[string]*Control
	selected int
}

func NewPanel() *Panel {
	return &Panel{byName: make(map[string]*Control)}
}

// Register adds a control for s. Registering the same name twice keeps the
// first control.
func (p *Panel) Register(s *uniforms.Scalar) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.byName[s.Name]; ok {
		return
	}
	c := newControl(s)
	p.controls = append(p.controls, c)
	p.byName[s.Name] = c
}

// Lookup returns the control for a uniform name.
func (p *Panel) Lookup(name string) (*Control, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.byName[name]
	return c, ok
}

// Controls returns the registered controls.
func (p *Panel) Controls() []*Control {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*Control(nil), p.controls...)
}

// Selected returns the control keyboard adjustments apply to, or nil.
func (p *Panel) Selected() *Control {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.controls) == 0 {
		return nil
	}
	return p.controls[p.selected]
}

// SelectNext cycles the keyboard selection.
func (p *Panel) SelectNext() *Control {
	p.mu.Lock()
	if len(p.controls) == 0 {
		p.mu.Unlock()
		return nil
	}
	p.selected = (p.selected + 1) % len(p.controls)
	c := p.controls[p.selected]
	p.mu.Unlock()

	logger.Log.Info("Selected control", zap.String("uniform", c.Name()), zap.Float32("value", c.Value()))
	return c
}

// NudgeSelected moves the selected control by n steps.
func (p *Panel) NudgeSelected(n int) {
	c := p.Selected()
	if c == nil {
		return
	}
	v := c.Nudge(n)
	logger.Log.Debug("Control changed", zap.String("uniform", c.Name()), zap.Float32("value", v))
}
