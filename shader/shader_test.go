package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithPreamble(t *testing.T) {
	src := "void main() {}"
	got := WithPreamble(src)
	assert.True(t, strings.HasPrefix(got, "#version 300 es\n"))
	assert.True(t, strings.HasSuffix(got, src))

	own := "\n#version 300 es\nprecision mediump float;\nvoid main() {}"
	assert.Equal(t, own, WithPreamble(own))
}

func TestMappedFallsBackToSourceName(t *testing.T) {
	tr := &Translated{Names: map[string]string{"uTime": "_uuTime", "empty": ""}}
	assert.Equal(t, "_uuTime", tr.Mapped("uTime"))
	assert.Equal(t, "uMouse", tr.Mapped("uMouse"))
	assert.Equal(t, "empty", tr.Mapped("empty"))
}

func TestBlitVariants(t *testing.T) {
	assert.Contains(t, GetBlitFragmentShader(true), "1.0 - frag_uv.y")
	assert.NotContains(t, GetBlitFragmentShader(false), "1.0 - frag_uv.y")
	assert.Contains(t, GenerateVertexShader(), "layout (location = 0)")
}
