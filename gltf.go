package rig3d

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// GLTFLoadOptions alters how a glTF file is loaded.
type GLTFLoadOptions struct {
	// SkinName is the name of the skin to build the Skeleton from. If it's empty, the first skin in the file is used.
	SkinName string

	// CompleteChannels, when true, gives every loaded AnimationClip exactly one channel per Bone, in Bone order.
	// Bones (or tracks) the clip doesn't animate are filled with a single keyframe of the Bone's rest pose.
	// This way every clip from the same file can be blended into every other one; channels for nodes that aren't
	// Bones are dropped. It has no effect on files without a skin.
	CompleteChannels bool
}

// DefaultGLTFLoadOptions creates an instance of GLTFLoadOptions with some sensible defaults.
func DefaultGLTFLoadOptions() *GLTFLoadOptions {
	return &GLTFLoadOptions{
		CompleteChannels: true,
	}
}

// LoadGLTFFile loads a .gltf or .glb file from the filepath given, using a provided GLTFLoadOptions struct to alter how the file is loaded.
// Passing nil for loadOptions will load the file using default load options.
func LoadGLTFFile(path string, loadOptions *GLTFLoadOptions) (*Library, error) {

	fileData, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	return LoadGLTFData(fileData, loadOptions)

}

// LoadGLTFData loads a .gltf or .glb file from the byte data given, using a provided GLTFLoadOptions struct to alter how the file is loaded.
// Passing nil for loadOptions will load the file using default load options.
// Only the skeleton (from a skin) and the animations are read; meshes, materials, and so on are left to the renderer.
func LoadGLTFData(data []byte, loadOptions *GLTFLoadOptions) (*Library, error) {

	decoder := gltf.NewDecoder(bytes.NewReader(data))

	doc := gltf.NewDocument()

	if err := decoder.Decode(doc); err != nil {
		return nil, err
	}

	return loadGLTFDocument(doc, loadOptions)

}

// restPose is a node's rest transform, decomposed as glTF stores it. Nodes given as a matrix are decomposed into
// the same form, so their channels can be filled in like any other.
type restPose struct {
	position Vector
	rotation Quaternion
	scale    Vector
	matrix   *Matrix4 // set when the node uses a matrix instead of TRS
}

func nodeRestPose(node *gltf.Node) restPose {

	pose := restPose{
		position: NewVector(node.Translation[0], node.Translation[1], node.Translation[2]),
		rotation: NewQuaternionIdentity(),
		scale:    VecOne,
	}

	if node.Rotation != [4]float64{} {
		pose.rotation = NewQuaternion(node.Rotation[0], node.Rotation[1], node.Rotation[2], node.Rotation[3])
	}

	if node.Scale != [3]float64{} {
		pose.scale = NewVector(node.Scale[0], node.Scale[1], node.Scale[2])
	}

	if node.Matrix != [16]float64{} {
		mat := NewMatrix4FromColumnMajor(node.Matrix)
		if !mat.IsIdentity() {
			pose.matrix = &mat
			pose.position, pose.rotation, pose.scale = mat.Decompose()
		}
	}

	return pose

}

func (pose restPose) transform() Matrix4 {
	if pose.matrix != nil {
		return *pose.matrix
	}
	return NewMatrix4TRS(pose.position, pose.rotation, pose.scale)
}

func gltfNodeName(doc *gltf.Document, index int) string {
	if name := doc.Nodes[index].Name; name != "" {
		return name
	}
	return "node" + strconv.Itoa(index)
}

func loadGLTFDocument(doc *gltf.Document, loadOptions *GLTFLoadOptions) (*Library, error) {

	if loadOptions == nil {
		loadOptions = DefaultGLTFLoadOptions()
	}

	library := NewLibrary()

	var boneNodes []int

	if skin := findGLTFSkin(doc, loadOptions.SkinName); skin != nil {

		skeleton, nodes, err := loadGLTFSkeleton(doc, skin)
		if err != nil {
			return nil, err
		}

		library.Skeleton = skeleton
		boneNodes = nodes

		library.InverseBindMatrices, err = loadGLTFInverseBindMatrices(doc, skin, nodes)
		if err != nil {
			return nil, err
		}

	} else if loadOptions.SkinName != "" {
		return nil, fmt.Errorf("rig3d: glTF file has no skin named %q", loadOptions.SkinName)
	}

	for animIndex, gltfAnim := range doc.Animations {

		name := gltfAnim.Name
		if name == "" {
			name = "animation" + strconv.Itoa(animIndex)
		}

		clip, err := loadGLTFAnimation(doc, gltfAnim, name)
		if err != nil {
			return nil, err
		}

		if library.Skeleton != nil && loadOptions.CompleteChannels {
			clip = completeChannels(doc, clip, boneNodes)
		}

		library.AddClip(clip)

	}

	return library, nil

}

func findGLTFSkin(doc *gltf.Document, name string) *gltf.Skin {
	for _, skin := range doc.Skins {
		if name == "" || skin.Name == name {
			return skin
		}
	}
	return nil
}

// loadGLTFSkeleton builds a Skeleton out of a skin's joints. glTF doesn't require joints to be listed parent-first,
// so they're reordered depth-first from the roots. A joint's parent Bone is its nearest joint ancestor; the rest
// transforms of any non-joint nodes in between (an "Armature" node, say) are folded into the Bone's Offset.
// The returned slice maps each Bone index to its glTF node index.
func loadGLTFSkeleton(doc *gltf.Document, skin *gltf.Skin) (*Skeleton, []int, error) {

	isJoint := map[int]bool{}
	for _, j := range skin.Joints {
		isJoint[int(j)] = true
	}

	parents := map[int]int{}
	for i, node := range doc.Nodes {
		for _, child := range node.Children {
			parents[int(child)] = i
		}
	}

	// jointParent walks up from a joint, returning its nearest joint ancestor (or -1) and the combined rest transform
	// of the non-joint nodes passed on the way.
	jointParent := func(joint int) (int, Matrix4) {
		offset := NewMatrix4()
		visited := map[int]bool{joint: true}
		node, ok := parents[joint]
		for ok && !visited[node] {
			if isJoint[node] {
				return node, offset
			}
			visited[node] = true
			offset = nodeRestPose(doc.Nodes[node]).transform().Mult(offset)
			node, ok = parents[node]
		}
		return -1, offset
	}

	children := map[int][]int{}
	roots := []int{}
	offsets := map[int]Matrix4{}
	jointParents := map[int]int{}

	for _, j := range skin.Joints {
		joint := int(j)
		parent, offset := jointParent(joint)
		offsets[joint] = offset
		jointParents[joint] = parent
		if parent >= 0 {
			children[parent] = append(children[parent], joint)
		} else {
			roots = append(roots, joint)
		}
	}

	order := make([]int, 0, len(skin.Joints))
	boneIndex := map[int]int{}

	var visit func(node int)
	visit = func(node int) {
		if _, seen := boneIndex[node]; seen {
			return
		}
		boneIndex[node] = len(order)
		order = append(order, node)
		for _, child := range children[node] {
			visit(child)
		}
	}

	for _, root := range roots {
		visit(root)
	}

	bones := make([]Bone, 0, len(order))

	for _, node := range order {
		parent := NoParent
		if p := jointParents[node]; p >= 0 {
			parent = boneIndex[p]
		}
		bone := NewBone(gltfNodeName(doc, node), parent, nodeRestPose(doc.Nodes[node]).transform())
		bone.Offset = offsets[node]
		bones = append(bones, bone)
	}

	skeleton, err := NewSkeleton(bones)
	if err != nil {
		return nil, nil, fmt.Errorf("rig3d: glTF skin %q: %w", skin.Name, err)
	}

	skeleton.Transform()

	return skeleton, order, nil

}

func loadGLTFInverseBindMatrices(doc *gltf.Document, skin *gltf.Skin, boneNodes []int) ([]Matrix4, error) {

	out := make([]Matrix4, len(boneNodes))
	for i := range out {
		out[i] = NewMatrix4()
	}

	if skin.InverseBindMatrices == nil {
		return out, nil
	}

	data, err := modeler.ReadAccessor(doc, doc.Accessors[*skin.InverseBindMatrices], nil)
	if err != nil {
		return nil, err
	}

	matrices, ok := data.([][4][4]float32)
	if !ok {
		return nil, fmt.Errorf("rig3d: glTF skin %q: unsupported inverse bind matrix data %T", skin.Name, data)
	}

	jointSlot := map[int]int{}
	for slot, j := range skin.Joints {
		jointSlot[int(j)] = slot
	}

	for boneIndex, node := range boneNodes {
		slot := jointSlot[node]
		if slot >= len(matrices) {
			continue
		}
		// Each inner array is one column.
		var mat Matrix4
		for col, column := range matrices[slot] {
			for row, value := range column {
				mat[row][col] = float64(value)
			}
		}
		out[boneIndex] = mat
	}

	return out, nil

}

func loadGLTFAnimation(doc *gltf.Document, gltfAnim *gltf.Animation, name string) (*AnimationClip, error) {

	clip := NewAnimationClip(name, 0)

	for _, channel := range gltfAnim.Channels {

		if channel.Target.Node == nil || channel.Sampler < 0 || channel.Sampler >= len(gltfAnim.Samplers) {
			continue
		}

		sampler := gltfAnim.Samplers[channel.Sampler]

		boneName := gltfNodeName(doc, int(*channel.Target.Node))

		animChannel := clip.Channel(boneName)
		if animChannel == nil {
			animChannel = clip.AddChannel(boneName)
		}

		id, err := modeler.ReadAccessor(doc, doc.Accessors[sampler.Input], nil)
		if err != nil {
			return nil, err
		}

		times, ok := id.([]float32)
		if !ok {
			return nil, fmt.Errorf("rig3d: glTF animation %q: unsupported keyframe time data %T", name, id)
		}

		od, err := modeler.ReadAccessor(doc, doc.Accessors[sampler.Output], nil)
		if err != nil {
			return nil, err
		}

		// Cubic spline samplers store (in-tangent, value, out-tangent) per keyframe; only the value is kept.
		// Step samplers are played back linearly.
		stride, offset := 1, 0
		if sampler.Interpolation == gltf.InterpolationCubicSpline {
			stride, offset = 3, 1
		}

		switch channel.Target.Path {

		case gltf.TRSTranslation, gltf.TRSScale:

			values, ok := od.([][3]float32)
			if !ok || len(values) < len(times)*stride {
				return nil, fmt.Errorf("rig3d: glTF animation %q: bad %s data for %q", name, channel.Target.Path, boneName)
			}

			for i, t := range times {
				v := values[i*stride+offset]
				vec := NewVector(float64(v[0]), float64(v[1]), float64(v[2]))
				if channel.Target.Path == gltf.TRSTranslation {
					animChannel.AddPositionKey(float64(t), vec)
				} else {
					animChannel.AddScaleKey(float64(t), vec)
				}
			}

		case gltf.TRSRotation:

			values, ok := od.([][4]float32)
			if !ok || len(values) < len(times)*stride {
				return nil, fmt.Errorf("rig3d: glTF animation %q: bad rotation data for %q", name, boneName)
			}

			for i, t := range times {
				q := values[i*stride+offset]
				animChannel.AddRotationKey(float64(t), NewQuaternion(float64(q[0]), float64(q[1]), float64(q[2]), float64(q[3])))
			}

		default:
			// Morph target weights aren't skeletal animation.
			continue

		}

		for _, t := range times {
			clip.Duration = math.Max(clip.Duration, float64(t))
		}

	}

	return clip, nil

}

// completeChannels rebuilds the clip with one channel per Bone, in Bone order, filling in tracks the clip doesn't
// animate with the Bone's rest pose.
func completeChannels(doc *gltf.Document, clip *AnimationClip, boneNodes []int) *AnimationClip {

	completed := NewAnimationClip(clip.Name, clip.Duration)

	for _, node := range boneNodes {

		name := gltfNodeName(doc, node)
		rest := nodeRestPose(doc.Nodes[node])

		channel := NewAnimationChannel(name)
		if existing := clip.Channel(name); existing != nil {
			channel = existing.Clone()
		}

		if channel.PositionKeys.Len() == 0 {
			channel.AddPositionKey(0, rest.position)
		}
		if channel.RotationKeys.Len() == 0 {
			channel.AddRotationKey(0, rest.rotation)
		}
		if channel.ScaleKeys.Len() == 0 {
			channel.AddScaleKey(0, rest.scale)
		}

		completed.Channels = append(completed.Channels, channel)

	}

	return completed

}
