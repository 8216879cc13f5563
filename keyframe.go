package rig3d

import "math"

// KeyTimeEpsilon is how close a query time has to be to a Keyframe's time for the Keyframe's value to be returned as-is.
const KeyTimeEpsilon = 1e-6

// Keyframe is a value of type T at a specific Time (in seconds) within an AnimationClip.
type Keyframe[T any] struct {
	Time  float64
	Value T
}

// Track is a sequence of Keyframes for one property (position, scale, or rotation) of one bone.
// Keyframes are expected in ascending time order, though they don't need to be evenly spaced.
type Track[T Lerpable[T]] []Keyframe[T]

// AddKeyframe appends a Keyframe to the Track, returning the extended Track.
func (track Track[T]) AddKeyframe(time float64, value T) Track[T] {
	return append(track, Keyframe[T]{Time: time, Value: value})
}

// Len returns the number of Keyframes in the Track.
func (track Track[T]) Len() int {
	return len(track)
}

// Clone returns a deep copy of the Track; the copy doesn't share its backing array with the original.
func (track Track[T]) Clone() Track[T] {
	if track == nil {
		return nil
	}
	newTrack := make(Track[T], len(track))
	copy(newTrack, track)
	return newTrack
}

// Sample returns the Track's value at the given time. See the package-level Sample function for the rules.
func (track Track[T]) Sample(time float64) (T, bool) {
	return Sample(track, time)
}

// Sample returns the value of keys at the given time. The second return value is false only if keys is empty.
//
// A single Keyframe holds its value for every time. Otherwise the keys are scanned in order, keeping the last Keyframe
// at or before the time and stopping at the first one after it. A Keyframe whose time matches within KeyTimeEpsilon
// is returned directly. Past the last Keyframe its value is held, and before the first Keyframe the first value is held.
// Between two Keyframes the values are linearly interpolated, componentwise (Quaternions included).
func Sample[T Lerpable[T]](keys []Keyframe[T], time float64) (T, bool) {

	if len(keys) == 0 {
		var zero T
		return zero, false
	}

	if len(keys) == 1 {
		return keys[0].Value, true
	}

	lower := -1
	upper := -1

	for i, key := range keys {

		if math.Abs(key.Time-time) <= KeyTimeEpsilon {
			return key.Value, true
		}

		if key.Time < time {
			lower = i
		} else {
			upper = i
			break
		}

	}

	if lower < 0 {
		return keys[0].Value, true
	}

	if upper < 0 {
		return keys[lower].Value, true
	}

	first := keys[lower]
	last := keys[upper]

	t := (time - first.Time) / (last.Time - first.Time)

	return Lerp(first.Value, last.Value, t), true

}
