package uniforms

import "fmt"

// Wrap is a texture coordinate wrapping mode.
type Wrap string

const (
	WrapRepeat Wrap = "repeat"
	WrapClamp  Wrap = "clamp"
	WrapMirror Wrap = "mirror"
)

// Filter is a texture sampling filter.
type Filter string

const (
	FilterNearest Filter = "nearest"
	FilterLinear  Filter = "linear"
	FilterMipmap  Filter = "mipmap"
)

// ParseWrap accepts an empty string as the default, repeat.
func ParseWrap(s string) (Wrap, error) {
	switch Wrap(s) {
	case "":
		return WrapRepeat, nil
	case WrapRepeat, WrapClamp, WrapMirror:
		return Wrap(s), nil
	}
	return "", fmt.Errorf("unknown wrap mode %q", s)
}

// ParseFilter accepts an empty string as the default, linear.
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case "":
		return FilterLinear, nil
	case FilterNearest, FilterLinear, FilterMipmap:
		return Filter(s), nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// Sampling groups the sampler state applied to a created texture. WrapR is
// ignored for 2D textures.
type Sampling struct {
	WrapS     Wrap
	WrapT     Wrap
	WrapR     Wrap
	MinFilter Filter
	MagFilter Filter
}

// Sampling returns the sampler state of a texture descriptor.
func (t *Texture) Sampling() Sampling {
	return Sampling{WrapS: t.WrapS, WrapT: t.WrapT, MinFilter: t.MinFilter, MagFilter: t.MagFilter}
}

// Sampling returns the sampler state of a volume descriptor.
func (b *VolumeBake) Sampling() Sampling {
	return Sampling{WrapS: b.WrapS, WrapT: b.WrapT, WrapR: b.WrapR, MinFilter: b.MinFilter, MagFilter: b.MagFilter}
}
