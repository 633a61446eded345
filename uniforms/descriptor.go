// Package uniforms describes how each named shader input is sourced and
// resolves a page's descriptors into an initial uniform table.
package uniforms

// Kind tags a descriptor variant. The values match the manifest's `kind` field.
type Kind string

const (
	KindTexture Kind = "texture"
	KindScalar  Kind = "scalar"
	KindVolume  Kind = "volume"
)

// Descriptor is one named shader input. The set of implementations is closed:
// only *Texture, *Scalar and *VolumeBake satisfy it.
type Descriptor interface {
	Kind() Kind
	Uniform() string
	Accept(v Visitor) error
	sealed()
}

// Visitor must handle every descriptor variant, so adding a variant breaks
// every switch over descriptors at compile time.
type Visitor interface {
	VisitTexture(t *Texture) error
	VisitScalar(s *Scalar) error
	VisitVolume(v *VolumeBake) error
}

// Source holds the image locations of a texture. Mobile is optional and used
// on constrained devices.
type Source struct {
	Default string
	Mobile  string
}

// Pick returns the low resolution source when constrained and one is set.
func (s Source) Pick(constrained bool) string {
	if constrained && s.Mobile != "" {
		return s.Mobile
	}
	return s.Default
}

// Texture is a static image sampled by the shader.
type Texture struct {
	Name      string
	Src       Source
	WrapS     Wrap
	WrapT     Wrap
	MinFilter Filter
	MagFilter Filter
	FlipY     bool
}

func (t *Texture) Kind() Kind             { return KindTexture }
func (t *Texture) Uniform() string        { return t.Name }
func (t *Texture) Accept(v Visitor) error { return v.VisitTexture(t) }
func (t *Texture) sealed()                {}

// Scalar is a float uniform adjustable at runtime through a control.
type Scalar struct {
	Name    string
	Default float32
	Min     float32
	Max     float32
	Step    float32
}

func (s *Scalar) Kind() Kind             { return KindScalar }
func (s *Scalar) Uniform() string        { return s.Name }
func (s *Scalar) Accept(v Visitor) error { return v.VisitScalar(s) }
func (s *Scalar) sealed()                {}

// ShaderPair is a vertex and fragment source. The text is opaque here.
type ShaderPair struct {
	Vertex   string
	Fragment string
}

// DefaultDepthScale divides the slice index to form the baking shader's
// zLevel selector.
const DefaultDepthScale = 4.0

// VolumeBake is a 3D texture produced by rendering Shader once per depth
// slice. Size is width, height, depth.
type VolumeBake struct {
	Name       string
	Shader     ShaderPair
	Size       [3]int
	WrapS      Wrap
	WrapT      Wrap
	WrapR      Wrap
	MinFilter  Filter
	MagFilter  Filter
	DepthScale float32
}

func (b *VolumeBake) Kind() Kind             { return KindVolume }
func (b *VolumeBake) Uniform() string        { return b.Name }
func (b *VolumeBake) Accept(v Visitor) error { return v.VisitVolume(b) }
func (b *VolumeBake) sealed()                {}

// Width, Height and Depth unpack Size.
func (b *VolumeBake) Width() int  { return b.Size[0] }
func (b *VolumeBake) Height() int { return b.Size[1] }
func (b *VolumeBake) Depth() int  { return b.Size[2] }

// SliceSelector returns the zLevel value for slice i.
func (b *VolumeBake) SliceSelector(i int) float32 {
	scale := b.DepthScale
	if scale == 0 {
		scale = DefaultDepthScale
	}
	return float32(i) / scale
}

// ByteSize is the RGBA8 size of the baked volume.
func (b *VolumeBake) ByteSize() int {
	return b.Size[0] * b.Size[1] * b.Size[2] * 4
}

// Volumes returns the volume descriptors of descs in order.
func Volumes(descs []Descriptor) []*VolumeBake {
	var out []*VolumeBake
	for _, d := range descs {
		if v, ok := d.(*VolumeBake); ok {
			out = append(out, v)
		}
	}
	return out
}
