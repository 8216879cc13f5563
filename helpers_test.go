package rig3d

import (
	"fmt"
	"testing"
)

// recordingLogger collects everything logged to it.
type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Printf(format string, v ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

// hipSkeleton is a two-bone rig: Hip (root) with a Spine child offset 1 unit up.
func hipSkeleton(t testing.TB) *Skeleton {
	t.Helper()
	skeleton, err := NewSkeleton([]Bone{
		NewBone("Hip", NoParent, NewMatrix4()),
		NewBone("Spine", 0, NewMatrix4Translate(0, 1, 0)),
	})
	if err != nil {
		t.Fatal(err)
	}
	return skeleton
}

// walkClip moves Hip from (0, 0, 0) to (0, 1, 0) over one second.
func walkClip() *AnimationClip {
	clip := NewAnimationClip("Walk", 1)
	clip.AddChannel("Hip").
		AddPositionKey(0, NewVector(0, 0, 0)).
		AddPositionKey(1, NewVector(0, 1, 0))
	return clip
}

// idleClip holds Hip at (5, 0, 0), turned a quarter around +Y.
func idleClip() *AnimationClip {
	clip := NewAnimationClip("Idle", 2)
	clip.AddChannel("Hip").
		AddPositionKey(0, NewVector(5, 0, 0)).
		AddRotationKey(0, NewQuaternionFromAxisAngle(VecY, ToRadians(90)))
	return clip
}

func walkIdleConfig(t testing.TB, walkToIdle float64) *AnimatorConfig {
	t.Helper()
	config, err := NewAnimatorConfig(hipSkeleton(t),
		[]StateDef{
			{Name: "Walk", Clip: walkClip(), Looping: true},
			{Name: "Idle", Clip: idleClip(), Looping: true},
		},
		[]TransitionDef{
			{From: "Walk", To: "Idle", Trigger: "stop", Duration: walkToIdle},
			{From: "Idle", To: "Walk", Trigger: "go", Duration: 0.5},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	return config
}

func localTranslation(t testing.TB, skeleton *Skeleton, bone string) Vector {
	t.Helper()
	b, ok := skeleton.BoneByName(bone)
	if !ok {
		t.Fatalf("no bone %q", bone)
	}
	return b.LocalTransform.Translation()
}
