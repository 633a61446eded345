package diag

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlayReportsPerInterval(t *testing.T) {
	var titles []string
	o := New("Clouds", time.Second, func(s string) { titles = append(titles, s) })

	start := time.Unix(100, 0)
	now := start
	reports := 0
	for i := 0; i < 60; i++ {
		o.Begin(now)
		now = now.Add(4 * time.Millisecond)
		if o.End(now) {
			reports++
		}
		now = now.Add(12 * time.Millisecond)
	}
	// the 60th frame ends at 948ms
	assert.Equal(t, 0, reports)

	o.Begin(now)
	now = now.Add(50 * time.Millisecond)
	require.True(t, o.End(now))

	snap := o.Last()
	assert.Equal(t, int64(61), snap.Frames)
	assert.InDelta(t, 61/now.Sub(start).Seconds(), snap.FPS, 1e-9)
	assert.InDelta(t, (60*4.0+50)/61, snap.MsPerF, 1e-3)
	require.Len(t, titles, 1)
	assert.Contains(t, titles[0], "Clouds | ")
}

func TestOverlayRemove(t *testing.T) {
	var titles []string
	o := New("Rain", time.Millisecond, func(s string) { titles = append(titles, s) })
	o.Remove()
	o.Remove()
	assert.Equal(t, []string{"Rain"}, titles)

	now := time.Unix(0, 0)
	o.Begin(now)
	assert.False(t, o.End(now.Add(time.Second)))
}

func TestEndWithoutBegin(t *testing.T) {
	o := New("x", 0, nil)
	assert.Equal(t, time.Second, o.Interval)
	assert.False(t, o.End(time.Now()))
}
