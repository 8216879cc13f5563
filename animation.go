package rig3d

import "fmt"

// AnimationChannel holds the keyframed position, scale, and rotation of a single bone, bound by the bone's name.
// The three Tracks are independent and may have different lengths.
type AnimationChannel struct {
	BoneName     string
	PositionKeys Track[Vector]
	ScaleKeys    Track[Vector]
	RotationKeys Track[Quaternion]
}

// NewAnimationChannel creates a new, empty AnimationChannel targeting the named bone.
func NewAnimationChannel(boneName string) *AnimationChannel {
	return &AnimationChannel{
		BoneName: boneName,
	}
}

// AddPositionKey adds a position Keyframe to the channel, returning the channel for chaining.
func (channel *AnimationChannel) AddPositionKey(time float64, position Vector) *AnimationChannel {
	channel.PositionKeys = channel.PositionKeys.AddKeyframe(time, position)
	return channel
}

// AddScaleKey adds a scale Keyframe to the channel, returning the channel for chaining.
func (channel *AnimationChannel) AddScaleKey(time float64, scale Vector) *AnimationChannel {
	channel.ScaleKeys = channel.ScaleKeys.AddKeyframe(time, scale)
	return channel
}

// AddRotationKey adds a rotation Keyframe to the channel, returning the channel for chaining.
func (channel *AnimationChannel) AddRotationKey(time float64, rotation Quaternion) *AnimationChannel {
	channel.RotationKeys = channel.RotationKeys.AddKeyframe(time, rotation)
	return channel
}

// Clone returns a deep copy of the AnimationChannel.
func (channel *AnimationChannel) Clone() *AnimationChannel {
	return &AnimationChannel{
		BoneName:     channel.BoneName,
		PositionKeys: channel.PositionKeys.Clone(),
		ScaleKeys:    channel.ScaleKeys.Clone(),
		RotationKeys: channel.RotationKeys.Clone(),
	}
}

// Sample returns the channel's position, rotation, and scale at the given time. A Track without any Keyframes
// yields the neutral value for that property (no offset, no rotation, a scale of 1).
func (channel *AnimationChannel) Sample(time float64) (position Vector, rotation Quaternion, scale Vector) {

	position, ok := channel.PositionKeys.Sample(time)
	if !ok {
		position = NewVectorZero()
	}

	rotation, ok = channel.RotationKeys.Sample(time)
	if !ok {
		rotation = NewQuaternionIdentity()
	}

	scale, ok = channel.ScaleKeys.Sample(time)
	if !ok {
		scale = VecOne
	}

	return position, rotation, scale

}

// LocalTransform samples the channel at the given time and composes the result as Translate * Rotate * Scale.
func (channel *AnimationChannel) LocalTransform(time float64) Matrix4 {
	position, rotation, scale := channel.Sample(time)
	return NewMatrix4TRS(position, rotation, scale)
}

// AnimationClip is a named, fixed-length animation: one AnimationChannel per animated bone. Bones without a channel
// keep whatever local transform they had before the clip was applied.
// An AnimationClip is treated as read-only once built, so any number of Animators may share it.
type AnimationClip struct {
	Name     string
	Duration float64 // Length of the animation in seconds
	Channels []*AnimationChannel
}

// NewAnimationClip creates a new AnimationClip with the given name, duration (in seconds), and channels.
func NewAnimationClip(name string, duration float64, channels ...*AnimationChannel) *AnimationClip {
	return &AnimationClip{
		Name:     name,
		Duration: duration,
		Channels: channels,
	}
}

// AddChannel creates a new channel for the named bone, appends it to the clip, and returns it.
func (clip *AnimationClip) AddChannel(boneName string) *AnimationChannel {
	newChannel := NewAnimationChannel(boneName)
	clip.Channels = append(clip.Channels, newChannel)
	return newChannel
}

// Channel returns the first channel targeting the named bone, or nil if there isn't one.
func (clip *AnimationClip) Channel(boneName string) *AnimationChannel {
	for _, channel := range clip.Channels {
		if channel.BoneName == boneName {
			return channel
		}
	}
	return nil
}

// ChannelCount returns the number of channels in the clip.
func (clip *AnimationClip) ChannelCount() int {
	return len(clip.Channels)
}

// Clone returns a deep copy of the AnimationClip.
func (clip *AnimationClip) Clone() *AnimationClip {
	newClip := NewAnimationClip(clip.Name, clip.Duration)
	newClip.Channels = make([]*AnimationChannel, 0, len(clip.Channels))
	for _, channel := range clip.Channels {
		newClip.Channels = append(newClip.Channels, channel.Clone())
	}
	return newClip
}

// CompatibleWith returns an error wrapping ErrChannelMismatch if the two clips can't be blended together; that is,
// if they don't have the same number of channels, or channel i of each clip targets a different bone.
func (clip *AnimationClip) CompatibleWith(other *AnimationClip) error {

	if len(clip.Channels) != len(other.Channels) {
		return fmt.Errorf("%w: clip %q has %d channels, clip %q has %d", ErrChannelMismatch, clip.Name, len(clip.Channels), other.Name, len(other.Channels))
	}

	for i := range clip.Channels {
		if a, b := clip.Channels[i].BoneName, other.Channels[i].BoneName; a != b {
			return fmt.Errorf("%w: channel %d targets %q in clip %q but %q in clip %q", ErrChannelMismatch, i, a, clip.Name, b, other.Name)
		}
	}

	return nil

}
