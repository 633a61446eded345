// Package camera implements the orbit camera used by scene pages.
package camera

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Orbit rotates around Target on a sphere whose radius is kept within
// [MinDistance, MaxDistance].
type Orbit struct {
	Target      mgl32.Vec3
	MinDistance float32
	MaxDistance float32
	// RotateSpeed is radians per pixel of drag.
	RotateSpeed float32
	// DollySpeed is the log-distance change per pixel of wheel delta.
	DollySpeed float32

	start    mgl32.Vec3
	theta    float32 // azimuth around +Y
	phi      float32 // polar angle from +Y
	distance float32
}

const (
	defaultRotateSpeed = 0.005
	// about 5% per 100px wheel notch
	defaultDollySpeed  = 0.0005
	minPolar           = 0.01
	// the eye never reaches the target, where LookAt is undefined
	minDistanceFloor   = 1e-3
)

// NewOrbit places the camera at position looking at the origin. A zero
// maxDistance means unbounded.
func NewOrbit(position mgl32.Vec3, minDistance, maxDistance float32) *Orbit {
	if maxDistance <= 0 {
		maxDistance = math.MaxFloat32
	}
	if minDistance < 0 {
		minDistance = 0
	}
	o := &Orbit{
		MinDistance: minDistance,
		MaxDistance: maxDistance,
		RotateSpeed: defaultRotateSpeed,
		DollySpeed:  defaultDollySpeed,
		start:       position,
	}
	o.Reset()
	return o
}

// Reset moves the camera back to its starting position.
func (o *Orbit) Reset() {
	offset := o.start.Sub(o.Target)
	r := offset.Len()
	if r == 0 {
		offset = mgl32.Vec3{0, 0, 1}
		r = 1
	}
	o.distance = o.clampDistance(r)
	o.theta = math32.Atan2(offset.X(), offset.Z())
	o.phi = o.clampPolar(math32.Acos(mgl32.Clamp(offset.Y()/r, -1, 1)))
}

// Rotate orbits by a pointer delta in pixels.
func (o *Orbit) Rotate(dx, dy float32) {
	o.theta -= dx * o.RotateSpeed
	o.phi = o.clampPolar(o.phi - dy*o.RotateSpeed)
}

// Dolly moves toward or away from the target. The distance scales
// exponentially with delta, so equal deltas in and out cancel.
func (o *Orbit) Dolly(delta float32) {
	o.distance = o.clampDistance(o.distance * math32.Exp(delta*o.DollySpeed))
}

// Distance returns the current distance to the target.
func (o *Orbit) Distance() float32 { return o.distance }

// Position returns the eye position in world space.
func (o *Orbit) Position() mgl32.Vec3 {
	sinPhi := math32.Sin(o.phi)
	return o.Target.Add(mgl32.Vec3{
		o.distance * sinPhi * math32.Sin(o.theta),
		o.distance * math32.Cos(o.phi),
		o.distance * sinPhi * math32.Cos(o.theta),
	})
}

// View returns the look-at matrix.
func (o *Orbit) View() mgl32.Mat4 {
	return mgl32.LookAtV(o.Position(), o.Target, mgl32.Vec3{0, 1, 0})
}

func (o *Orbit) clampDistance(d float32) float32 {
	lo := math32.Max(o.MinDistance, minDistanceFloor)
	return math32.Min(math32.Max(d, lo), o.MaxDistance)
}

func (o *Orbit) clampPolar(p float32) float32 {
	return math32.Min(math32.Max(p, minPolar), math32.Pi-minPolar)
}
