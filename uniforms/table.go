package uniforms

// GPUTexture is a texture living on the GPU. SamplerType is the GLSL sampler
// type that reads it ("sampler2D" or "sampler3D").
type GPUTexture interface {
	ID() uint32
	SamplerType() string
	Size() [3]int
	Destroy()
}

// Value is the current value of one uniform-table entry.
type Value interface {
	value()
}

// Sampler binds a texture.
type Sampler struct {
	Texture GPUTexture
}

// Float is a scalar value.
type Float float32

// Pending marks a volume that has not been baked yet.
type Pending struct{}

func (Sampler) value() {}
func (Float) value()   {}
func (Pending) value() {}

// Table maps uniform names to their current value.
type Table map[string]Value

// Set replaces an entry.
func (t Table) Set(name string, v Value) {
	t[name] = v
}

// Release destroys every texture held by the table.
func (t Table) Release() {
	for name, v := range t {
		if s, ok := v.(Sampler); ok && s.Texture != nil {
			s.Texture.Destroy()
		}
		delete(t, name)
	}
}
