// Package interaction holds the pointer, zoom, pause and elapsed-time state of
// one shader surface.
package interaction

import (
	"time"

	"github.com/chewxy/math32"
)

const (
	DefaultSensitivity = 1.2
	DefaultZoomStep    = 0.01
	DefaultMinZoom     = 1.0
	DefaultMaxZoom     = 6.0
	DefaultZoom        = 1.2
)

// Config tunes pointer handling. Zero fields take their DefaultConfig value.
type Config struct {
	Sensitivity float32
	ZoomStep    float32
	MinZoom     float32
	MaxZoom     float32
	DefaultZoom float32
}

func DefaultConfig() Config {
	return Config{
		Sensitivity: DefaultSensitivity,
		ZoomStep:    DefaultZoomStep,
		MinZoom:     DefaultMinZoom,
		MaxZoom:     DefaultMaxZoom,
		DefaultZoom: DefaultZoom,
	}
}

// WithDefaults fills every zero field from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Sensitivity == 0 {
		c.Sensitivity = d.Sensitivity
	}
	if c.ZoomStep == 0 {
		c.ZoomStep = d.ZoomStep
	}
	if c.MinZoom == 0 {
		c.MinZoom = d.MinZoom
	}
	if c.MaxZoom == 0 {
		c.MaxZoom = d.MaxZoom
	}
	if c.DefaultZoom == 0 {
		c.DefaultZoom = d.DefaultZoom
	}
	return c
}

// State is owned by a single surface and touched only from its frame callback
// and input handlers, which run on the same thread.
type State struct {
	cfg     Config
	pointer [3]float32
	anchor  [2]float32
	paused  bool
	elapsed time.Duration
	last    time.Time
}

// New centers the pointer in a width x height viewport and starts the clock
// at now. Zero fields of cfg are defaulted.
func New(cfg Config, width, height int, now time.Time) *State {
	s := &State{cfg: cfg.WithDefaults(), last: now}
	s.Resize(width, height)
	return s
}

// Pointer returns x, y and zoom.
func (s *State) Pointer() [3]float32 { return s.pointer }

func (s *State) Zoom() float32 { return s.pointer[2] }

func (s *State) Paused() bool { return s.paused }

// PointerDown records the drag anchor.
func (s *State) PointerDown(x, y float32) {
	s.anchor = [2]float32{x, y}
}

// Drag moves the pointer by the anchor delta scaled by the sensitivity and
// moves the anchor to (x, y).
func (s *State) Drag(x, y float32) {
	s.pointer[0] += (s.anchor[0] - x) * s.cfg.Sensitivity
	s.pointer[1] += (s.anchor[1] - y) * s.cfg.Sensitivity
	s.anchor = [2]float32{x, y}
}

// Wheel accumulates zoom and clamps it to the configured bounds.
func (s *State) Wheel(delta float32) {
	s.pointer[2] = s.clampZoom(s.pointer[2] + delta*s.cfg.ZoomStep)
}

func (s *State) clampZoom(z float32) float32 {
	if math32.IsNaN(z) {
		return s.cfg.DefaultZoom
	}
	return math32.Min(math32.Max(z, s.cfg.MinZoom), s.cfg.MaxZoom)
}

// TogglePause flips the pause flag. Resuming moves the time baseline to now so
// the paused interval is never added.
func (s *State) TogglePause(now time.Time) bool {
	s.paused = !s.paused
	if !s.paused {
		s.last = now
	}
	return s.paused
}

// Resize recenters the pointer, resets zoom and clears the anchor.
func (s *State) Resize(width, height int) {
	s.pointer = [3]float32{float32(width) / 2, float32(height) / 2, s.clampZoom(s.cfg.DefaultZoom)}
	s.anchor = [2]float32{}
}

// Advance adds the time since the previous call unless paused and returns the
// accumulated seconds. A clock going backwards adds nothing.
func (s *State) Advance(now time.Time) float32 {
	if !s.paused {
		if delta := now.Sub(s.last); delta > 0 {
			s.elapsed += delta
		}
		s.last = now
	}
	return s.Seconds()
}

// Seconds returns the accumulated elapsed time.
func (s *State) Seconds() float32 {
	return float32(s.elapsed.Seconds())
}
