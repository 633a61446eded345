package controls

import (
	"testing"

	"github.com/richinsley/goshaderdemos/uniforms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scalar(name string) *uniforms.Scalar {
	return &uniforms.Scalar{Name: name, Default: 0.5, Min: 0, Max: 1, Step: 0.25}
}

func TestControlStartsAtDefault(t *testing.T) {
	p := NewPanel()
	p.Register(scalar("uDensity"))
	c, ok := p.Lookup("uDensity")
	require.True(t, ok)
	assert.Equal(t, float32(0.5), c.Value())
}

func TestSetClampsAndSnaps(t *testing.T) {
	p := NewPanel()
	p.Register(scalar("u"))
	c, _ := p.Lookup("u")

	assert.Equal(t, float32(1), c.Set(7))
	assert.Equal(t, float32(0), c.Set(-3))
	assert.Equal(t, float32(0.75), c.Set(0.7))
	assert.Equal(t, float32(0.75), c.Value())
}

func TestNudgeAndReset(t *testing.T) {
	p := NewPanel()
	p.Register(scalar("u"))
	c, _ := p.Lookup("u")

	assert.Equal(t, float32(0.75), c.Nudge(1))
	assert.Equal(t, float32(1), c.Nudge(5))
	assert.Equal(t, float32(0.5), c.Reset())
}

func TestSelection(t *testing.T) {
	p := NewPanel()
	assert.Nil(t, p.Selected())
	assert.Nil(t, p.SelectNext())
	p.NudgeSelected(1)

	p.Register(scalar("a"))
	p.Register(scalar("b"))
	p.Register(scalar("a"))
	require.Len(t, p.Controls(), 2)

	assert.Equal(t, "a", p.Selected().Name())
	assert.Equal(t, "b", p.SelectNext().Name())
	p.NudgeSelected(-1)
	b, _ := p.Lookup("b")
	assert.Equal(t, float32(0.25), b.Value())
	assert.Equal(t, "a", p.SelectNext().Name())
}
