package inputs

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goshaderdemos/uniforms"
)

// wrapMode converts a wrap mode to its OpenGL constant.
func wrapMode(w uniforms.Wrap) int32 {
	switch w {
	case uniforms.WrapClamp:
		return gl.CLAMP_TO_EDGE
	case uniforms.WrapMirror:
		return gl.MIRRORED_REPEAT
	default:
		return gl.REPEAT
	}
}

// filterMode converts a filter to OpenGL constants. Magnification has no
// mipmap mode, so mipmap magnifies linearly.
func filterMode(f uniforms.Filter) (minFilter, magFilter int32) {
	switch f {
	case uniforms.FilterMipmap:
		return gl.LINEAR_MIPMAP_LINEAR, gl.LINEAR
	case uniforms.FilterNearest:
		return gl.NEAREST, gl.NEAREST
	default:
		return gl.LINEAR, gl.LINEAR
	}
}

// applySampling sets the wrap and filter parameters of the texture bound to
// target. WrapR is only applied to 3D textures.
func applySampling(target uint32, s uniforms.Sampling) {
	gl.TexParameteri(target, gl.TEXTURE_WRAP_S, wrapMode(s.WrapS))
	gl.TexParameteri(target, gl.TEXTURE_WRAP_T, wrapMode(s.WrapT))
	if target == gl.TEXTURE_3D {
		gl.TexParameteri(target, gl.TEXTURE_WRAP_R, wrapMode(s.WrapR))
	}
	minFilter, _ := filterMode(s.MinFilter)
	_, magFilter := filterMode(s.MagFilter)
	gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, magFilter)
}

func needsMipmaps(s uniforms.Sampling) bool {
	return s.MinFilter == uniforms.FilterMipmap
}
