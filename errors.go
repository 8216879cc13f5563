package rig3d

import "errors"

var (
	// ErrBoneNotFound is returned when an AnimationChannel targets a bone name the Skeleton doesn't have.
	ErrBoneNotFound = errors.New("rig3d: bone not found")

	// ErrInvalidBone is returned by NewSkeleton for a bone with a bad name or parent index.
	ErrInvalidBone = errors.New("rig3d: invalid bone")

	// ErrChannelMismatch is returned when two AnimationClips can't be blended because their channel layouts differ.
	ErrChannelMismatch = errors.New("rig3d: channel layouts differ")

	// ErrNoStates is returned when an animator config (or an Animator) has no states to start in.
	ErrNoStates = errors.New("rig3d: animator config has no states")

	// ErrUnknownState is returned when a transition names a state that isn't part of the config.
	ErrUnknownState = errors.New("rig3d: unknown animation state")

	// ErrDuplicateState is returned when two states share the same name.
	ErrDuplicateState = errors.New("rig3d: duplicate animation state")

	// ErrNilClip is returned when a state has no AnimationClip.
	ErrNilClip = errors.New("rig3d: animation state has no clip")

	// ErrNilSkeleton is returned when an animator config is built without a Skeleton.
	ErrNilSkeleton = errors.New("rig3d: animator config has no skeleton")

	// ErrNegativeDuration is returned for transitions with a negative duration.
	ErrNegativeDuration = errors.New("rig3d: negative transition duration")

	// ErrUnknownClip is returned when a serialized animator config references a clip that wasn't provided.
	ErrUnknownClip = errors.New("rig3d: unknown animation clip")

	// ErrUnknownEase is returned when a serialized animator config names an easing function rig3d doesn't know.
	ErrUnknownEase = errors.New("rig3d: unknown easing function")

	// ErrMalformedClip is returned when binary clip data is truncated or otherwise unreadable.
	ErrMalformedClip = errors.New("rig3d: malformed animation clip data")
)
