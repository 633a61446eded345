package uniforms

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTexture struct {
	id        uint32
	destroyed bool
}

func (f *fakeTexture) ID() uint32          { return f.id }
func (f *fakeTexture) SamplerType() string { return "sampler2D" }
func (f *fakeTexture) Size() [3]int        { return [3]int{1, 1, 1} }
func (f *fakeTexture) Destroy()            { f.destroyed = true }

type fakeFactory struct {
	created []*fakeTexture
	failOn  string
}

func (f *fakeFactory) NewTexture(img image.Image, desc *Texture) (GPUTexture, error) {
	if desc.Name == f.failOn {
		return nil, errors.New("upload failed")
	}
	tex := &fakeTexture{id: uint32(len(f.created) + 1)}
	f.created = append(f.created, tex)
	return tex, nil
}

type mapLoader struct {
	images map[string]image.Image
	calls  []string
}

func (m *mapLoader) Load(ctx context.Context, src string) (image.Image, error) {
	m.calls = append(m.calls, src)
	img, ok := m.images[src]
	if !ok {
		return nil, errors.New("not found")
	}
	return img, nil
}

type recordingControls struct {
	names []string
}

func (r *recordingControls) Register(s *Scalar) { r.names = append(r.names, s.Name) }

func texture(name, src string) *Texture {
	return &Texture{Name: name, Src: Source{Default: src}, WrapS: WrapRepeat, WrapT: WrapRepeat, MinFilter: FilterLinear, MagFilter: FilterLinear}
}

func volume(name string, w, h, d int) *VolumeBake {
	return &VolumeBake{Name: name, Shader: ShaderPair{Vertex: "v", Fragment: "f"}, Size: [3]int{w, h, d}}
}

func TestResolveSingleTexture(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	loader := &mapLoader{images: map[string]image.Image{"a.png": img}}
	descs := []Descriptor{texture("uTex", "a.png")}

	images, err := Fetch(context.Background(), loader, descs, false)
	require.NoError(t, err)

	factory := &fakeFactory{}
	table, err := Resolve(descs, images, Env{Textures: factory})
	require.NoError(t, err)
	require.Len(t, table, 1)
	s, ok := table["uTex"].(Sampler)
	require.True(t, ok)
	assert.Equal(t, uint32(1), s.Texture.ID())
}

func TestDuplicateUniformRejected(t *testing.T) {
	descs := []Descriptor{texture("uTex", "a.png"), texture("uTex", "a.png")}
	err := Validate(descs)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateUniform)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "uTex", cfgErr.Uniform)
	assert.Equal(t, 1, cfgErr.Index)

	_, err = Resolve(descs, Images{}, Env{Textures: &fakeFactory{}})
	assert.ErrorIs(t, err, ErrDuplicateUniform)
}

func TestDuplicateAcrossVariants(t *testing.T) {
	descs := []Descriptor{
		texture("u", "a.png"),
		&Scalar{Name: "u", Default: 0, Min: 0, Max: 1, Step: 0.1},
	}
	assert.ErrorIs(t, Validate(descs), ErrDuplicateUniform)
}

func TestValidateRejectsMalformed(t *testing.T) {
	cases := map[string]struct {
		desc Descriptor
		want error
	}{
		"zero depth":     {volume("v", 8, 8, 0), ErrInvalidSize},
		"negative width": {volume("v", -1, 8, 4), ErrInvalidSize},
		"inverted range": {&Scalar{Name: "s", Min: 2, Max: 1, Step: 1}, ErrInvalidRange},
		"zero step":      {&Scalar{Name: "s", Min: 0, Max: 1, Step: 0}, ErrInvalidRange},
		"default out":    {&Scalar{Name: "s", Default: 3, Min: 0, Max: 1, Step: 0.5}, ErrInvalidRange},
		"empty name":     {texture("", "a.png"), ErrEmptyUniform},
		"no source":      {texture("t", ""), ErrMissingSource},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, Validate([]Descriptor{tc.desc}), tc.want)
		})
	}
}

func TestResolveOneEntryPerDescriptor(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	loader := &mapLoader{images: map[string]image.Image{"a.png": img, "b.png": img}}
	descs := []Descriptor{
		texture("uA", "a.png"),
		&Scalar{Name: "uDensity", Default: 0.25, Min: 0, Max: 1, Step: 0.05},
		volume("uChannelA", 4, 4, 2),
		texture("uB", "b.png"),
	}
	images, err := Fetch(context.Background(), loader, descs, false)
	require.NoError(t, err)

	controls := &recordingControls{}
	table, err := Resolve(descs, images, Env{Textures: &fakeFactory{}, Controls: controls})
	require.NoError(t, err)
	require.Len(t, table, len(descs))
	for _, d := range descs {
		assert.Contains(t, table, d.Uniform())
	}
	assert.Equal(t, Float(0.25), table["uDensity"])
	assert.Equal(t, Pending{}, table["uChannelA"])
	assert.Equal(t, []string{"uDensity"}, controls.names)
}

func TestFetchPicksMobileSourceWhenConstrained(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	loader := &mapLoader{images: map[string]image.Image{"big.jpg": img, "sm.jpg": img}}
	tex := texture("uTexture", "big.jpg")
	tex.Src.Mobile = "sm.jpg"

	_, err := Fetch(context.Background(), loader, []Descriptor{tex}, true)
	require.NoError(t, err)
	_, err = Fetch(context.Background(), loader, []Descriptor{tex}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"sm.jpg", "big.jpg"}, loader.calls)
}

func TestFetchFailureAbortsSetup(t *testing.T) {
	loader := &mapLoader{images: map[string]image.Image{}}
	descs := []Descriptor{texture("uTex", "missing.png")}
	images, err := Fetch(context.Background(), loader, descs, false)
	assert.Error(t, err)
	assert.Nil(t, images)
}

func TestResolveReleasesOnFailure(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	descs := []Descriptor{texture("uA", "a.png"), texture("uB", "b.png")}
	images := Images{"uA": img, "uB": img}
	factory := &fakeFactory{failOn: "uB"}

	_, err := Resolve(descs, images, Env{Textures: factory})
	require.Error(t, err)
	require.Len(t, factory.created, 1)
	assert.True(t, factory.created[0].destroyed)
}

func TestVisitorIsExhaustive(t *testing.T) {
	descs := []Descriptor{texture("a", "a.png"), &Scalar{Name: "b", Max: 1, Step: 1}, volume("c", 1, 1, 1)}
	var kinds []Kind
	for _, d := range descs {
		kinds = append(kinds, d.Kind())
	}
	assert.Equal(t, []Kind{KindTexture, KindScalar, KindVolume}, kinds)
	assert.Len(t, Volumes(descs), 1)
}

func TestSliceSelector(t *testing.T) {
	v := volume("v", 2, 2, 8)
	assert.Equal(t, float32(0), v.SliceSelector(0))
	assert.Equal(t, float32(0.75), v.SliceSelector(3))
	v.DepthScale = 8
	assert.Equal(t, float32(0.5), v.SliceSelector(4))
	assert.Equal(t, 2*2*8*4, v.ByteSize())
}

func TestParseSampling(t *testing.T) {
	w, err := ParseWrap("")
	require.NoError(t, err)
	assert.Equal(t, WrapRepeat, w)
	_, err = ParseWrap("bogus")
	assert.Error(t, err)

	f, err := ParseFilter("nearest")
	require.NoError(t, err)
	assert.Equal(t, FilterNearest, f)
	_, err = ParseFilter("cubic")
	assert.Error(t, err)
}
