// Package inputs creates the OpenGL textures a page samples: static images
// and baked volumes.
package inputs

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goshaderdemos/logger"
	"github.com/richinsley/goshaderdemos/uniforms"
	"go.uber.org/zap"
)

// Texture is an OpenGL texture object.
type Texture struct {
	id      uint32
	target  uint32
	sampler string
	size    [3]int
}

func (t *Texture) ID() uint32          { return t.id }
func (t *Texture) Target() uint32      { return t.target }
func (t *Texture) SamplerType() string { return t.sampler }
func (t *Texture) Size() [3]int        { return t.size }

func (t *Texture) Destroy() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

// Factory creates textures in the current OpenGL context. It satisfies both
// uniforms.TextureFactory and bake.VolumeFactory.
type Factory struct{}

// vflip vertically flips the provided RGBA image.
func vflip(src *image.RGBA) *image.RGBA {
	bounds := src.Bounds()
	flipped := image.NewRGBA(bounds)
	height := bounds.Dy()

	// This is faster than calling At/Set for each pixel
	rowSize := bounds.Dx() * 4
	for y := 0; y < height; y++ {
		srcRow := src.Pix[((height-1)-y)*src.Stride:]
		dstRow := flipped.Pix[y*flipped.Stride:]
		copy(dstRow, srcRow[:rowSize])
	}
	return flipped
}

// toRGBA converts img to a tightly packed RGBA image with its origin at 0,0.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// NewTexture uploads img as an RGBA8 2D texture.
func (Factory) NewTexture(img image.Image, desc *uniforms.Texture) (uniforms.GPUTexture, error) {
	if img == nil {
		return nil, fmt.Errorf("texture %q: image is nil", desc.Name)
	}
	rgba := toRGBA(img)
	if desc.FlipY {
		rgba = vflip(rgba)
	}
	width, height := rgba.Rect.Dx(), rgba.Rect.Dy()

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	s := desc.Sampling()
	applySampling(gl.TEXTURE_2D, s)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	if needsMipmaps(s) {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)

	logger.Log.Debug("Uploaded texture",
		zap.String("uniform", desc.Name),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Bool("flipY", desc.FlipY))
	return &Texture{id: id, target: gl.TEXTURE_2D, sampler: "sampler2D", size: [3]int{width, height, 1}}, nil
}
