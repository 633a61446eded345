package inputs

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// Target is an RGBA8 framebuffer with a sampled color texture. Pages render
// into it at their render scale and it is blitted to the window; volume
// slices are rendered into one and read back.
type Target struct {
	fbo       uint32
	textureID uint32
	width     int
	height    int
}

// NewTarget creates a framebuffer of the given size.
func NewTarget(width, height int) (*Target, error) {
	t := &Target{}
	gl.GenTextures(1, &t.textureID)
	gl.BindTexture(gl.TEXTURE_2D, t.textureID)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	t.allocate(width, height)

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.textureID, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)

	// Unbind to avoid accidental modifications
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		t.Destroy()
		return nil, fmt.Errorf("framebuffer %dx%d is not complete (0x%X)", width, height, status)
	}
	return t, nil
}

func (t *Target) allocate(width, height int) {
	t.width, t.height = width, height
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
}

// Bind makes the target the draw framebuffer and sets the viewport to cover it.
func (t *Target) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Viewport(0, 0, int32(t.width), int32(t.height))
}

func (t *Target) Size() (int, int)    { return t.width, t.height }
func (t *Target) TextureID() uint32   { return t.textureID }
func (t *Target) Framebuffer() uint32 { return t.fbo }

// Resize reallocates the color texture. Its contents are undefined afterwards.
func (t *Target) Resize(width, height int) {
	if width == t.width && height == t.height {
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, t.textureID)
	t.allocate(width, height)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// ReadPixels copies the target's tightly packed RGBA8 pixels into dst,
// bottom row first.
func (t *Target) ReadPixels(dst []byte) error {
	if need := t.width * t.height * 4; len(dst) < need {
		return fmt.Errorf("read buffer holds %d bytes, need %d", len(dst), need)
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, t.fbo)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(t.width), int32(t.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(dst))
	gl.PixelStorei(gl.PACK_ALIGNMENT, 4)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	return nil
}

func (t *Target) Destroy() {
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
		t.fbo = 0
	}
	if t.textureID != 0 {
		gl.DeleteTextures(1, &t.textureID)
		t.textureID = 0
	}
}
