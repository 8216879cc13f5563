package rig3d

import "sort"

// Library is what gets loaded out of an asset file (.gltf / .glb): a Skeleton, the inverse bind matrices a renderer
// needs to skin a mesh to it, and the file's AnimationClips.
type Library struct {
	Skeleton            *Skeleton                 // The loaded Skeleton; nil if the file has no skin
	InverseBindMatrices []Matrix4                 // One per Bone of Skeleton, in Bone order
	Clips               map[string]*AnimationClip // A Map of AnimationClips to their names
}

// NewLibrary creates a new, empty Library.
func NewLibrary() *Library {
	return &Library{
		Clips: map[string]*AnimationClip{},
	}
}

// Clip returns the AnimationClip with the given name, or nil if the Library doesn't have it.
func (lib *Library) Clip(name string) *AnimationClip {
	return lib.Clips[name]
}

// AddClip adds the given AnimationClip to the Library under its name, replacing any clip of the same name.
func (lib *Library) AddClip(clip *AnimationClip) {
	lib.Clips[clip.Name] = clip
}

// ClipNames returns the names of the Library's AnimationClips, sorted.
func (lib *Library) ClipNames() []string {
	names := make([]string, 0, len(lib.Clips))
	for name := range lib.Clips {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewSkin creates a Skin for the Library's Skeleton out of its inverse bind matrices.
func (lib *Library) NewSkin() *Skin {
	return NewSkin(lib.InverseBindMatrices)
}
