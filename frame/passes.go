package frame

import (
	"fmt"

	"github.com/richinsley/goshaderdemos/uniforms"
)

// textureBinder re-binds static textures. Texture units are shared between
// programs, so bindings do not survive a bake or blit.
type textureBinder struct{ s *Synchronizer }

func (p textureBinder) VisitTexture(t *uniforms.Texture) error {
	sm, ok := p.s.table[t.Name].(uniforms.Sampler)
	if !ok {
		return fmt.Errorf("texture %q was not resolved", t.Name)
	}
	p.s.program.SetTexture(t.Name, sm.Texture)
	return nil
}

func (textureBinder) VisitScalar(*uniforms.Scalar) error     { return nil }
func (textureBinder) VisitVolume(*uniforms.VolumeBake) error { return nil }

// volumeBaker bakes pending volumes on first use, then binds them.
type volumeBaker struct{ s *Synchronizer }

func (volumeBaker) VisitTexture(*uniforms.Texture) error { return nil }
func (volumeBaker) VisitScalar(*uniforms.Scalar) error   { return nil }

func (p volumeBaker) VisitVolume(v *uniforms.VolumeBake) error {
	b := p.s.bakers[v.Name]
	if !b.Baked() {
		vol, err := b.Bake()
		if err != nil {
			return err
		}
		p.s.table.Set(v.Name, uniforms.Sampler{Texture: vol.Texture})
		// baking switches programs
		p.s.program.Use()
	}
	sm, ok := p.s.table[v.Name].(uniforms.Sampler)
	if !ok {
		return fmt.Errorf("volume %q has no texture", v.Name)
	}
	p.s.program.SetTexture(v.Name, sm.Texture)
	return nil
}

// scalarReader copies each control's live value into the table.
type scalarReader struct{ s *Synchronizer }

func (scalarReader) VisitTexture(*uniforms.Texture) error   { return nil }
func (scalarReader) VisitVolume(*uniforms.VolumeBake) error { return nil }

func (p scalarReader) VisitScalar(sc *uniforms.Scalar) error {
	v := sc.Default
	if c, ok := p.s.controls.Lookup(sc.Name); ok {
		v = c.Value()
	}
	p.s.table.Set(sc.Name, uniforms.Float(v))
	p.s.program.SetFloat(sc.Name, v)
	return nil
}
