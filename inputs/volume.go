package inputs

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goshaderdemos/logger"
	"github.com/richinsley/goshaderdemos/uniforms"
	"go.uber.org/zap"
)

// NewVolume uploads tightly packed RGBA8 slices as a 3D texture.
func (Factory) NewVolume(data []byte, size [3]int, s uniforms.Sampling) (uniforms.GPUTexture, error) {
	want := size[0] * size[1] * size[2] * 4
	if len(data) != want {
		return nil, fmt.Errorf("volume data is %d bytes, %dx%dx%d needs %d", len(data), size[0], size[1], size[2], want)
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_3D, id)
	applySampling(gl.TEXTURE_3D, s)

	// rows of a slice are not padded
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage3D(
		gl.TEXTURE_3D,
		0, // level
		gl.RGBA8,
		int32(size[0]),
		int32(size[1]),
		int32(size[2]),
		0, // border, must be 0
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(data),
	)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	if needsMipmaps(s) {
		gl.GenerateMipmap(gl.TEXTURE_3D)
	}
	gl.BindTexture(gl.TEXTURE_3D, 0)

	logger.Log.Debug("Uploaded volume", zap.Ints("size", size[:]))
	return &Texture{id: id, target: gl.TEXTURE_3D, sampler: "sampler3D", size: size}, nil
}
