package uniforms

import (
	"context"
	"fmt"
	"image"
)

// ImageLoader decodes the image at src. It may block on disk or network.
type ImageLoader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// TextureFactory creates GPU textures. Implementations must be called on the
// thread owning the graphics context.
type TextureFactory interface {
	NewTexture(img image.Image, desc *Texture) (GPUTexture, error)
}

// ControlRegistry receives every scalar descriptor so a user-facing control
// can hold its live value.
type ControlRegistry interface {
	Register(s *Scalar)
}

// Images holds the decoded image of every texture descriptor, keyed by
// uniform name.
type Images map[string]image.Image

// Fetch loads the images of all texture descriptors. The low resolution source
// is used when constrained. The first failure aborts the fetch.
func Fetch(ctx context.Context, loader ImageLoader, descs []Descriptor, constrained bool) (Images, error) {
	images := make(Images)
	for _, d := range descs {
		t, ok := d.(*Texture)
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src := t.Src.Pick(constrained)
		img, err := loader.Load(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("texture %q: %w", t.Name, err)
		}
		images[t.Name] = img
	}
	return images, nil
}

// Env carries the collaborators needed by Resolve.
type Env struct {
	Textures TextureFactory
	Controls ControlRegistry
}

// Resolve produces the initial uniform table, one entry per descriptor.
// Textures become samplers, scalars their default value and volumes a
// Pending placeholder. On failure every texture created so far is released.
func Resolve(descs []Descriptor, images Images, env Env) (Table, error) {
	if err := Validate(descs); err != nil {
		return nil, err
	}
	r := &resolver{images: images, env: env, table: make(Table, len(descs))}
	for _, d := range descs {
		if err := d.Accept(r); err != nil {
			r.table.Release()
			return nil, err
		}
	}
	return r.table, nil
}

type resolver struct {
	images Images
	env    Env
	table  Table
}

func (r *resolver) VisitTexture(t *Texture) error {
	img, ok := r.images[t.Name]
	if !ok || img == nil {
		return fmt.Errorf("texture %q: image was not fetched", t.Name)
	}
	if r.env.Textures == nil {
		return fmt.Errorf("texture %q: no texture factory", t.Name)
	}
	tex, err := r.env.Textures.NewTexture(img, t)
	if err != nil {
		return fmt.Errorf("texture %q: %w", t.Name, err)
	}
	r.table.Set(t.Name, Sampler{Texture: tex})
	return nil
}

func (r *resolver) VisitScalar(s *Scalar) error {
	if r.env.Controls != nil {
		r.env.Controls.Register(s)
	}
	r.table.Set(s.Name, Float(s.Default))
	return nil
}

func (r *resolver) VisitVolume(v *VolumeBake) error {
	r.table.Set(v.Name, Pending{})
	return nil
}
