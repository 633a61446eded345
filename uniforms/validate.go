package uniforms

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateUniform = errors.New("duplicate uniform name")
	ErrEmptyUniform     = errors.New("empty uniform name")
	ErrInvalidSize      = errors.New("volume dimensions must be positive")
	ErrInvalidRange     = errors.New("invalid scalar range")
	ErrMissingSource    = errors.New("missing source")
)

// ConfigError reports a malformed descriptor. It is raised before any render
// attempt and is distinct from runtime load or compile failures.
type ConfigError struct {
	Uniform string
	Index   int
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Uniform == "" {
		return fmt.Sprintf("uniform #%d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("uniform %q (#%d): %v", e.Uniform, e.Index, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Validate checks a page's descriptor list. Uniform names must be unique
// across the list.
func Validate(descs []Descriptor) error {
	seen := make(map[string]int, len(descs))
	for i, d := range descs {
		if d == nil {
			return &ConfigError{Index: i, Err: errors.New("nil descriptor")}
		}
		name := d.Uniform()
		if name == "" {
			return &ConfigError{Index: i, Err: ErrEmptyUniform}
		}
		if first, ok := seen[name]; ok {
			return &ConfigError{Uniform: name, Index: i, Err: fmt.Errorf("%w (first declared at #%d)", ErrDuplicateUniform, first)}
		}
		seen[name] = i
		if err := d.Accept(validator{}); err != nil {
			return &ConfigError{Uniform: name, Index: i, Err: err}
		}
	}
	return nil
}

type validator struct{}

func (validator) VisitTexture(t *Texture) error {
	if t.Src.Default == "" {
		return fmt.Errorf("%w: texture has no default image", ErrMissingSource)
	}
	return nil
}

func (validator) VisitScalar(s *Scalar) error {
	if s.Min > s.Max {
		return fmt.Errorf("%w: min %g > max %g", ErrInvalidRange, s.Min, s.Max)
	}
	if s.Step <= 0 {
		return fmt.Errorf("%w: step %g must be positive", ErrInvalidRange, s.Step)
	}
	if s.Default < s.Min || s.Default > s.Max {
		return fmt.Errorf("%w: default %g outside [%g, %g]", ErrInvalidRange, s.Default, s.Min, s.Max)
	}
	return nil
}

func (validator) VisitVolume(v *VolumeBake) error {
	for axis, n := range v.Size {
		if n <= 0 {
			return fmt.Errorf("%w: size[%d] = %d", ErrInvalidSize, axis, n)
		}
	}
	if v.DepthScale < 0 {
		return fmt.Errorf("depth scale %g must be positive", v.DepthScale)
	}
	if v.Shader.Vertex == "" || v.Shader.Fragment == "" {
		return fmt.Errorf("%w: volume needs a vertex and fragment shader", ErrMissingSource)
	}
	return nil
}
