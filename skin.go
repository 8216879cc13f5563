package rig3d

import "fmt"

// MaxBoneInfluences is the number of Bones a SkinnedVertex can be weighted to, as in glTF's JOINTS_0 / WEIGHTS_0.
const MaxBoneInfluences = 4

// SkinnedVertex is a bind-pose vertex position, along with the Bones that move it and how much each one does.
// Influences with a weight of 0 are ignored.
type SkinnedVertex struct {
	Position Vector
	Bones    [MaxBoneInfluences]int
	Weights  [MaxBoneInfluences]float32
}

// Skin deforms vertices on the CPU with linear blend skinning. It's meant for debugging and for tools (picking,
// bounds); a renderer would upload the skinning matrices instead.
type Skin struct {
	InverseBindMatrices []Matrix4
	skinMatrices        []Matrix4
}

// NewSkin creates a Skin out of one inverse bind matrix per Bone, in Bone order (see Library.InverseBindMatrices).
func NewSkin(inverseBindMatrices []Matrix4) *Skin {
	return &Skin{
		InverseBindMatrices: inverseBindMatrices,
	}
}

// Update recomputes the Skin's matrices from a posed (and transformed) Skeleton. It should be called once per frame,
// after Animator.AnimatedSkeleton().
func (skin *Skin) Update(skeleton *Skeleton) error {

	matrices, err := skeleton.SkinningMatrices(skin.InverseBindMatrices)
	if err != nil {
		return fmt.Errorf("rig3d: updating skin: %w", err)
	}

	skin.skinMatrices = matrices
	return nil

}

// Transform transforms the input vertex using the weights set up to bend the vertex according to the last Skeleton
// given to Update. A vertex with no usable influences (or a Skin that hasn't been updated yet) is returned as-is.
func (skin *Skin) Transform(vertex SkinnedVertex) Vector {

	var skinMatrix Matrix4
	total := 0.0

	for i, boneIndex := range vertex.Bones {

		weightPerc := float64(vertex.Weights[i])

		if weightPerc <= 0 || boneIndex < 0 || boneIndex >= len(skin.skinMatrices) {
			continue
		}

		skinMatrix = skinMatrix.Add(skin.skinMatrices[boneIndex].ScaleByScalar(weightPerc))
		total += weightPerc

	}

	if total == 0 {
		return vertex.Position
	}

	// Weights that don't add up to 1 are normalized.
	if total != 1 {
		skinMatrix = skinMatrix.ScaleByScalar(1 / total)
	}

	return skinMatrix.MultVec(vertex.Position)

}

// TransformAll transforms every vertex, appending the results to out (which may be nil) and returning it.
func (skin *Skin) TransformAll(vertices []SkinnedVertex, out []Vector) []Vector {
	for _, vertex := range vertices {
		out = append(out, skin.Transform(vertex))
	}
	return out
}
