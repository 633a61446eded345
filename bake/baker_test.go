package bake

import (
	"errors"
	"testing"

	"github.com/richinsley/goshaderdemos/uniforms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fillSlices writes the slice ordinal into every byte so offsets can be checked.
type fillSlices struct {
	zLevels   []float32
	destroyed bool
	failAt    int
}

func (f *fillSlices) RenderSlice(z float32, dst []byte) error {
	n := len(f.zLevels)
	if f.failAt > 0 && n+1 == f.failAt {
		return errors.New("readback failed")
	}
	f.zLevels = append(f.zLevels, z)
	for i := range dst {
		dst[i] = byte(n + 1)
	}
	return nil
}

func (f *fillSlices) Destroy() { f.destroyed = true }

type fakeVolume struct {
	size     [3]int
	sampling uniforms.Sampling
}

func (v *fakeVolume) ID() uint32          { return 7 }
func (v *fakeVolume) SamplerType() string { return "sampler3D" }
func (v *fakeVolume) Size() [3]int        { return v.size }
func (v *fakeVolume) Destroy()            {}

type fakeVolumes struct {
	made []*fakeVolume
}

func (f *fakeVolumes) NewVolume(data []byte, size [3]int, s uniforms.Sampling) (uniforms.GPUTexture, error) {
	v := &fakeVolume{size: size, sampling: s}
	f.made = append(f.made, v)
	return v, nil
}

func desc(w, h, d int) *uniforms.VolumeBake {
	return &uniforms.VolumeBake{
		Name:      "uChannelA",
		Shader:    uniforms.ShaderPair{Vertex: "v", Fragment: "f"},
		Size:      [3]int{w, h, d},
		WrapS:     uniforms.WrapRepeat,
		WrapT:     uniforms.WrapRepeat,
		WrapR:     uniforms.WrapRepeat,
		MinFilter: uniforms.FilterLinear,
		MagFilter: uniforms.FilterLinear,
	}
}

func TestBakeLayout(t *testing.T) {
	slices := &fillSlices{}
	volumes := &fakeVolumes{}
	b := NewBaker(desc(8, 8, 4), func(*uniforms.VolumeBake) (SliceRenderer, error) { return slices, nil }, volumes)

	vol, err := b.Bake()
	require.NoError(t, err)
	require.Len(t, vol.Data, 8*8*4*4)

	const sliceSize = 8 * 8 * 4
	for i := 0; i < 4; i++ {
		start := i * sliceSize
		assert.Equal(t, byte(i+1), vol.Data[start], "first byte of slice %d", i)
		assert.Equal(t, byte(i+1), vol.Data[start+sliceSize-1], "last byte of slice %d", i)
	}
	assert.Equal(t, []float32{0, 0.25, 0.5, 0.75}, slices.zLevels)
	assert.True(t, slices.destroyed)
	require.Len(t, volumes.made, 1)
	assert.Equal(t, [3]int{8, 8, 4}, volumes.made[0].size)
	assert.Equal(t, uniforms.WrapRepeat, volumes.made[0].sampling.WrapR)
}

func TestBakeIsMemoized(t *testing.T) {
	factoryCalls := 0
	slices := &fillSlices{}
	volumes := &fakeVolumes{}
	b := NewBaker(desc(2, 2, 3), func(*uniforms.VolumeBake) (SliceRenderer, error) {
		factoryCalls++
		return slices, nil
	}, volumes)

	first, err := b.Bake()
	require.NoError(t, err)
	second, err := b.Bake()
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, factoryCalls)
	assert.Equal(t, 3, b.Renders())
	assert.Len(t, volumes.made, 1)
	assert.True(t, b.Baked())
}

func TestBakeFailureIsNotCached(t *testing.T) {
	slices := &fillSlices{failAt: 2}
	b := NewBaker(desc(1, 1, 4), func(*uniforms.VolumeBake) (SliceRenderer, error) { return slices, nil }, &fakeVolumes{})

	_, err := b.Bake()
	require.Error(t, err)
	assert.False(t, b.Baked())
	assert.True(t, slices.destroyed)
}

func TestAssembleRejectsNonPositive(t *testing.T) {
	_, err := Assemble(0, 1, 1, func(int) float32 { return 0 }, func(float32, []byte) error { return nil })
	assert.ErrorIs(t, err, uniforms.ErrInvalidSize)
}

func TestAssembleSliceCapacity(t *testing.T) {
	_, err := Assemble(2, 1, 2, func(i int) float32 { return float32(i) }, func(z float32, dst []byte) error {
		assert.Len(t, dst, 8)
		assert.Equal(t, 8, cap(dst))
		return nil
	})
	require.NoError(t, err)
}
