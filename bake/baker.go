// Package bake renders a shader once per depth slice into an offscreen target
// and packs the slices into a 3D texture.
package bake

import (
	"fmt"

	"github.com/richinsley/goshaderdemos/logger"
	"github.com/richinsley/goshaderdemos/uniforms"
	"go.uber.org/zap"
)

// BytesPerTexel is the size of one RGBA8 texel.
const BytesPerTexel = 4

// SliceRenderer draws one slice of the baking shader and reads the pixels
// back into dst, which holds exactly width*height*4 bytes.
type SliceRenderer interface {
	RenderSlice(zLevel float32, dst []byte) error
	Destroy()
}

// SliceRendererFactory creates the offscreen target and baking program for a
// volume. It is only called on the first bake.
type SliceRendererFactory func(desc *uniforms.VolumeBake) (SliceRenderer, error)

// VolumeFactory wraps an assembled RGBA8 buffer as a 3D texture.
type VolumeFactory interface {
	NewVolume(data []byte, size [3]int, sampling uniforms.Sampling) (uniforms.GPUTexture, error)
}

// Volume is a finished bake.
type Volume struct {
	Data    []byte
	Size    [3]int
	Texture uniforms.GPUTexture
}

// Assemble renders depth slices of width x height and concatenates them along
// the depth axis. Slice i lands at byte offset i*width*height*4.
func Assemble(width, height, depth int, selector func(i int) float32, render func(zLevel float32, dst []byte) error) ([]byte, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", uniforms.ErrInvalidSize, width, height, depth)
	}
	sliceSize := width * height * BytesPerTexel
	data := make([]byte, sliceSize*depth)
	for i := 0; i < depth; i++ {
		slice := data[i*sliceSize : (i+1)*sliceSize : (i+1)*sliceSize]
		if err := render(selector(i), slice); err != nil {
			return nil, fmt.Errorf("slice %d: %w", i, err)
		}
	}
	return data, nil
}

// Baker produces the volume of one descriptor at most once.
type Baker struct {
	desc    *uniforms.VolumeBake
	slices  SliceRendererFactory
	volumes VolumeFactory

	volume  *Volume
	renders int
}

// NewBaker returns a baker for desc. Nothing is rendered until Bake.
func NewBaker(desc *uniforms.VolumeBake, slices SliceRendererFactory, volumes VolumeFactory) *Baker {
	return &Baker{desc: desc, slices: slices, volumes: volumes}
}

// Descriptor returns the volume descriptor being baked.
func (b *Baker) Descriptor() *uniforms.VolumeBake { return b.desc }

// Baked reports whether a volume is cached.
func (b *Baker) Baked() bool { return b.volume != nil }

// Renders returns the number of slices rendered so far.
func (b *Baker) Renders() int { return b.renders }

// Bake returns the cached volume, or renders it on the first call. A failed
// bake is not cached.
func (b *Baker) Bake() (*Volume, error) {
	if b.volume != nil {
		return b.volume, nil
	}

	sr, err := b.slices(b.desc)
	if err != nil {
		return nil, fmt.Errorf("volume %q: creating offscreen target: %w", b.desc.Name, err)
	}
	defer sr.Destroy()

	w, h, d := b.desc.Width(), b.desc.Height(), b.desc.Depth()
	data, err := Assemble(w, h, d, b.desc.SliceSelector, func(z float32, dst []byte) error {
		b.renders++
		return sr.RenderSlice(z, dst)
	})
	if err != nil {
		return nil, fmt.Errorf("volume %q: %w", b.desc.Name, err)
	}

	tex, err := b.volumes.NewVolume(data, b.desc.Size, b.desc.Sampling())
	if err != nil {
		return nil, fmt.Errorf("volume %q: creating 3D texture: %w", b.desc.Name, err)
	}

	b.volume = &Volume{Data: data, Size: b.desc.Size, Texture: tex}
	logger.Log.Info("Baked volume",
		zap.String("uniform", b.desc.Name),
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Int("depth", d),
		zap.Int("bytes", len(data)))
	return b.volume, nil
}

// Destroy releases the baked texture.
func (b *Baker) Destroy() {
	if b.volume != nil && b.volume.Texture != nil {
		b.volume.Texture.Destroy()
	}
	b.volume = nil
}
