package rig3d

import (
	"errors"
	"fmt"
)

// NoParent is the ParentIndex of a root Bone.
const NoParent = -1

// MaxBoneNameLength is the longest bone name (in bytes) a Skeleton accepts.
const MaxBoneNameLength = 64

// Bone is a single joint of a Skeleton.
type Bone struct {
	Name           string
	LocalTransform Matrix4 // Transform relative to the parent Bone (after Offset); this is what animation replaces
	WorldTransform Matrix4 // Model-space transform; derived by Skeleton.Transform()
	ParentIndex    int     // Index of the parent Bone in the Skeleton, or NoParent for a root

	// Offset is a fixed transform between the parent Bone (or the model's origin, for a root) and this Bone's local
	// transform, such as a glTF node that sits between two joints without being one. It's the identity for most
	// Bones; a zero Offset is treated as the identity by NewSkeleton.
	Offset Matrix4
}

// NewBone creates a Bone with the given name, parent index, and local (bind pose) transform.
func NewBone(name string, parentIndex int, localTransform Matrix4) Bone {
	return Bone{
		Name:           name,
		LocalTransform: localTransform,
		WorldTransform: NewMatrix4(),
		ParentIndex:    parentIndex,
		Offset:         NewMatrix4(),
	}
}

// Skeleton is a flat array of Bones. Each Bone refers to its parent by index, and every parent comes earlier in the
// array than its children, so world transforms can be computed in a single forward pass.
//
// The names and parent indices of a Skeleton's Bones can't change after creation; only the transforms are updated,
// by Animate / AnimateBlend and Transform.
type Skeleton struct {
	bones  []Bone
	byName map[string]int
	logger Logger
}

// NewSkeleton creates a new Skeleton out of the Bones given, which are copied. An error wrapping ErrInvalidBone is
// returned if a Bone's name is empty, longer than MaxBoneNameLength, or used twice, or if a Bone's ParentIndex doesn't
// point at an earlier Bone (or NoParent).
func NewSkeleton(bones []Bone) (*Skeleton, error) {

	skeleton := &Skeleton{
		bones:  make([]Bone, len(bones)),
		byName: make(map[string]int, len(bones)),
		logger: defaultLogger(),
	}

	copy(skeleton.bones, bones)

	for i, bone := range skeleton.bones {

		if bone.Offset == (Matrix4{}) {
			skeleton.bones[i].Offset = NewMatrix4()
		}

		if bone.Name == "" {
			return nil, fmt.Errorf("%w: bone %d has no name", ErrInvalidBone, i)
		}

		if len(bone.Name) > MaxBoneNameLength {
			return nil, fmt.Errorf("%w: bone %d name %q is longer than %d bytes", ErrInvalidBone, i, bone.Name, MaxBoneNameLength)
		}

		if _, exists := skeleton.byName[bone.Name]; exists {
			return nil, fmt.Errorf("%w: bone name %q is used more than once", ErrInvalidBone, bone.Name)
		}

		// Requiring parents to come first also rules out cycles and self-parenting.
		if bone.ParentIndex != NoParent && (bone.ParentIndex < 0 || bone.ParentIndex >= i) {
			return nil, fmt.Errorf("%w: bone %q has parent index %d, which doesn't precede it", ErrInvalidBone, bone.Name, bone.ParentIndex)
		}

		skeleton.byName[bone.Name] = i

	}

	return skeleton, nil

}

// SetLogger sets where the Skeleton reports skipped channels. Passing nil restores the default (the standard logger).
func (skeleton *Skeleton) SetLogger(logger Logger) {
	if logger == nil {
		logger = defaultLogger()
	}
	skeleton.logger = logger
}

// Clone returns a copy of the Skeleton. Bone transforms are values, so the copy can be posed without touching the original.
// The name lookup table is shared, as it never changes after creation.
func (skeleton *Skeleton) Clone() *Skeleton {
	newSkeleton := &Skeleton{
		bones:  make([]Bone, len(skeleton.bones)),
		byName: skeleton.byName,
		logger: skeleton.logger,
	}
	copy(newSkeleton.bones, skeleton.bones)
	return newSkeleton
}

// BoneCount returns the number of Bones in the Skeleton.
func (skeleton *Skeleton) BoneCount() int {
	return len(skeleton.bones)
}

// Bone returns a copy of the Bone at the given index. It panics if the index is out of range, like a slice would.
func (skeleton *Skeleton) Bone(index int) Bone {
	return skeleton.bones[index]
}

// Bones returns a copy of all of the Skeleton's Bones.
func (skeleton *Skeleton) Bones() []Bone {
	bones := make([]Bone, len(skeleton.bones))
	copy(bones, skeleton.bones)
	return bones
}

// BoneIndex returns the index of the Bone with the given name, and whether it was found.
func (skeleton *Skeleton) BoneIndex(name string) (int, bool) {
	index, ok := skeleton.byName[name]
	return index, ok
}

// BoneByName returns a copy of the named Bone, and whether it was found.
func (skeleton *Skeleton) BoneByName(name string) (Bone, bool) {
	index, ok := skeleton.byName[name]
	if !ok {
		return Bone{}, false
	}
	return skeleton.bones[index], true
}

// SetLocalTransform sets the local transform of the Bone at the given index.
func (skeleton *Skeleton) SetLocalTransform(index int, transform Matrix4) {
	skeleton.bones[index].LocalTransform = transform
}

// Animate poses the Skeleton with the given clip at the given time (in seconds), setting each animated Bone's local
// transform to Translate * Rotate * Scale of the sampled channel.
//
// A channel targeting a bone the Skeleton doesn't have is skipped (and logged); the rest of the clip is still applied,
// and the skipped channels are reported in the returned error, which wraps ErrBoneNotFound.
func (skeleton *Skeleton) Animate(clip *AnimationClip, time float64) error {

	var errs []error

	for _, channel := range clip.Channels {

		index, ok := skeleton.byName[channel.BoneName]
		if !ok {
			errs = append(errs, skeleton.missingBone(clip, channel))
			continue
		}

		skeleton.bones[index].LocalTransform = channel.LocalTransform(time)

	}

	return errors.Join(errs...)

}

// AnimateBlend poses the Skeleton with a blend of two clips: from sampled at fromTime and to sampled at toTime.
// The sampled positions, rotations, and scales are linearly interpolated by factor (clamped to [0, 1]; 0 is fully
// from, 1 is fully to) before being composed into each Bone's local transform.
//
// Both clips need the same number of channels, and channel i of each has to target the same bone; otherwise
// nothing is changed and an error wrapping ErrChannelMismatch is returned. Channels for missing bones are handled
// as in Animate.
func (skeleton *Skeleton) AnimateBlend(from *AnimationClip, fromTime float64, to *AnimationClip, toTime float64, factor float64) error {

	if err := from.CompatibleWith(to); err != nil {
		return err
	}

	factor = clamp(factor, 0, 1)

	var errs []error

	for i, fromChannel := range from.Channels {

		index, ok := skeleton.byName[fromChannel.BoneName]
		if !ok {
			errs = append(errs, skeleton.missingBone(from, fromChannel))
			continue
		}

		fromPos, fromRot, fromScale := fromChannel.Sample(fromTime)
		toPos, toRot, toScale := to.Channels[i].Sample(toTime)

		skeleton.bones[index].LocalTransform = NewMatrix4TRS(
			Lerp(fromPos, toPos, factor),
			Lerp(fromRot, toRot, factor),
			Lerp(fromScale, toScale, factor),
		)

	}

	return errors.Join(errs...)

}

func (skeleton *Skeleton) missingBone(clip *AnimationClip, channel *AnimationChannel) error {
	skeleton.logger.Printf("Warning: clip %q animates bone %q, which the skeleton doesn't have; skipping channel", clip.Name, channel.BoneName)
	return fmt.Errorf("%w: clip %q, bone %q", ErrBoneNotFound, clip.Name, channel.BoneName)
}

// Transform propagates local transforms into world transforms: each Bone's world transform becomes its parent's world
// transform multiplied by its Offset and then its own local transform (for a root Bone, just Offset * local).
func (skeleton *Skeleton) Transform() {

	for i := range skeleton.bones {

		bone := &skeleton.bones[i]

		local := bone.Offset.Mult(bone.LocalTransform)

		if bone.ParentIndex == NoParent {
			bone.WorldTransform = local
		} else {
			bone.WorldTransform = skeleton.bones[bone.ParentIndex].WorldTransform.Mult(local)
		}

	}

}

// SkinningMatrices returns, for each Bone, its world transform multiplied by the matching offset matrix (typically a mesh's
// inverse bind matrix for that Bone). That's what a renderer uploads for skinning. The offsets slice has to have one
// entry per Bone.
func (skeleton *Skeleton) SkinningMatrices(offsets []Matrix4) ([]Matrix4, error) {

	if len(offsets) != len(skeleton.bones) {
		return nil, fmt.Errorf("rig3d: %d offset matrices given for %d bones", len(offsets), len(skeleton.bones))
	}

	out := make([]Matrix4, len(skeleton.bones))
	for i, bone := range skeleton.bones {
		out[i] = bone.WorldTransform.Mult(offsets[i])
	}

	return out, nil

}
