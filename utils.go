package rig3d

import (
	"log"
	"math"
)

// Lerpable is implemented by any value that can be linearly interpolated as (1-t)*a + t*b. Vector and Quaternion
// both satisfy it.
type Lerpable[T any] interface {
	Add(other T) T
	Scale(scalar float64) T
}

// Lerp returns (1-percent)*a + percent*b. percent is not clamped.
func Lerp[T Lerpable[T]](a, b T, percent float64) T {
	return a.Scale(1 - percent).Add(b.Scale(percent))
}

// ToRadians is a helper function to easily convert degrees to radians (which is what the rotation-oriented functions in rig3d use).
func ToRadians(degrees float64) float64 {
	return math.Pi * degrees / 180
}

// ToDegrees is a helper function to easily convert radians to degrees for human readability.
func ToDegrees(radians float64) float64 {
	return radians / math.Pi * 180
}

func clamp[V float64 | float32 | int](value, min, max V) V {
	if value > max {
		return max
	} else if value < min {
		return min
	}
	return value
}

// Logger is the sink rig3d reports recoverable problems to (a missing bone, a negative time step, and so on).
// *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

func defaultLogger() Logger {
	return log.Default()
}
