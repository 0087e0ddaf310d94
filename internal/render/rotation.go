package render

import (
	"math"
	"time"
)

// DefaultRotationSpeed is the vinyl speed in degrees per millisecond.
//
// The player historically advanced 0.3 degrees per animation frame; at the
// 60 fps render rate that is 18 degrees per second.
const DefaultRotationSpeed = 0.018

// Angle returns the rotation after elapsedMs at speedDegPerMs, normalized
// to [0, 360).
func Angle(elapsedMs, speedDegPerMs float64) float64 {
	a := math.Mod(elapsedMs*speedDegPerMs, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 || math.IsNaN(a) {
		return 0
	}
	return a
}

// RotationClock derives the vinyl angle from wall-clock time elapsed since
// Start. Frame timing does not affect the angle.
type RotationClock struct {
	Start time.Time
	Speed float64

	now func() time.Time
}

// NewRotationClock starts a clock at the current time. A non-positive speed
// selects DefaultRotationSpeed.
func NewRotationClock(speed float64) *RotationClock {
	if speed <= 0 {
		speed = DefaultRotationSpeed
	}
	return &RotationClock{Start: time.Now(), Speed: speed, now: time.Now}
}

// Angle returns the current rotation in degrees.
func (c *RotationClock) Angle() float64 {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	elapsed := float64(now().Sub(c.Start)) / float64(time.Millisecond)
	return Angle(elapsed, c.Speed)
}
