package rig3d

import (
	"errors"
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func newTestAnimator(t *testing.T, config *AnimatorConfig) *Animator {
	t.Helper()
	animator, err := NewAnimator(config)
	if err != nil {
		t.Fatal(err)
	}
	animator.SetLogger(&recordingLogger{})
	return animator
}

func TestAnimatorWalkLoops(t *testing.T) {

	animator := newTestAnimator(t, walkIdleConfig(t, 0.2))

	if animator.State().Name != "Walk" {
		t.Fatalf("animator started in %q, want the first state", animator.State().Name)
	}

	animator.Update(0.5)

	if got := localTranslation(t, animator.AnimatedSkeleton(), "Hip"); !got.EqualsApprox(NewVector(0, 0.5, 0), 1e-9) {
		t.Errorf("Hip at 0.5s = %v, want (0, 0.5, 0)", got)
	}

	animator.Update(0.6)

	if math.Abs(animator.AnimationTime()-0.1) > 1e-9 {
		t.Errorf("animation time after 1.1s of a 1s looping clip = %v, want 0.1", animator.AnimationTime())
	}

	if got := localTranslation(t, animator.AnimatedSkeleton(), "Hip"); !got.EqualsApprox(NewVector(0, 0.1, 0), 1e-9) {
		t.Errorf("Hip at 1.1s = %v, want (0, 0.1, 0)", got)
	}

}

func TestAnimatorLoopingPeriodic(t *testing.T) {

	a := newTestAnimator(t, walkIdleConfig(t, 0.2))
	b := newTestAnimator(t, walkIdleConfig(t, 0.2))

	a.Update(0.3)
	b.Update(0.3)
	b.Update(1) // One full loop.

	pa := localTranslation(t, a.AnimatedSkeleton(), "Hip")
	pb := localTranslation(t, b.AnimatedSkeleton(), "Hip")

	if !pa.EqualsApprox(pb, 1e-9) {
		t.Errorf("pose after a full extra loop = %v, want %v", pb, pa)
	}

}

func TestAnimatorNonLoopingHoldsLastKey(t *testing.T) {

	config, err := NewAnimatorConfig(hipSkeleton(t), []StateDef{{Name: "Walk", Clip: walkClip()}}, nil)
	if err != nil {
		t.Fatal(err)
	}

	animator := newTestAnimator(t, config)
	animator.Update(3)

	if animator.AnimationTime() != 3 {
		t.Errorf("non-looping animation time = %v, want 3", animator.AnimationTime())
	}

	if got := localTranslation(t, animator.AnimatedSkeleton(), "Hip"); !got.Equals(NewVector(0, 1, 0)) {
		t.Errorf("Hip past the clip's end = %v, want last key", got)
	}

}

func TestAnimatorTransition(t *testing.T) {

	animator := newTestAnimator(t, walkIdleConfig(t, 0.2))

	animator.Update(0.4)

	if !animator.Trigger("stop") {
		t.Fatal("Trigger(\"stop\") didn't start a transition")
	}

	if !animator.IsTransitioning() || animator.TransitionTime() != 0 {
		t.Fatalf("transitioning = %v, transition time = %v; want a fresh transition", animator.IsTransitioning(), animator.TransitionTime())
	}

	if animator.BlendFactor() != 0 {
		t.Errorf("blend factor at the start of a transition = %v, want 0", animator.BlendFactor())
	}

	animator.Update(0.1)

	if f := animator.BlendFactor(); math.Abs(f-0.5) > 1e-9 {
		t.Errorf("blend factor halfway through = %v, want 0.5", f)
	}

	if animator.AnimationTime() != 0.4 {
		t.Errorf("walk clock moved to %v during the transition, want it held at 0.4", animator.AnimationTime())
	}

	if animator.State().Name != "Walk" {
		t.Errorf("state during the transition = %q, want Walk", animator.State().Name)
	}

	// Walk at 0.4 is (0, 0.4, 0); Idle at 0 is (5, 0, 0).
	if got := localTranslation(t, animator.AnimatedSkeleton(), "Hip"); !got.EqualsApprox(NewVector(2.5, 0.2, 0), 1e-9) {
		t.Errorf("blended Hip = %v, want (2.5, 0.2, 0)", got)
	}

	animator.Update(0.15)

	if animator.IsTransitioning() {
		t.Fatal("transition still in flight after its duration")
	}

	if animator.State().Name != "Idle" || animator.AnimationTime() != 0 {
		t.Errorf("after the transition: state %q at %v, want Idle at 0", animator.State().Name, animator.AnimationTime())
	}

}

func TestAnimatorTransitionEndpoints(t *testing.T) {

	config := walkIdleConfig(t, 0.2)
	walk := config.State("Walk").Clip
	idle := config.State("Idle").Clip

	animator := newTestAnimator(t, config)
	animator.Update(0.3)
	animator.Trigger("stop")

	start := animator.AnimatedSkeleton()

	steadyWalk := config.Skeleton().Clone()
	if err := steadyWalk.Animate(walk, 0.3); err != nil {
		t.Fatal(err)
	}
	steadyWalk.Transform()

	for i := 0; i < steadyWalk.BoneCount(); i++ {
		if !start.Bone(i).WorldTransform.Equals(steadyWalk.Bone(i).WorldTransform) {
			t.Errorf("bone %d at blend factor 0 differs from the From clip", i)
		}
	}

	animator.Update(0.2)

	end := animator.AnimatedSkeleton()

	steadyIdle := config.Skeleton().Clone()
	if err := steadyIdle.Animate(idle, 0); err != nil {
		t.Fatal(err)
	}
	steadyIdle.Transform()

	for i := 0; i < steadyIdle.BoneCount(); i++ {
		if !end.Bone(i).WorldTransform.Equals(steadyIdle.Bone(i).WorldTransform) {
			t.Errorf("bone %d after the transition differs from the To clip at time 0", i)
		}
	}

}

func TestAnimatorBlendFactorOneMatchesToClip(t *testing.T) {

	config := walkIdleConfig(t, 0.2)

	blended := config.Skeleton().Clone()
	if err := blended.AnimateBlend(config.State("Walk").Clip, 0.7, config.State("Idle").Clip, 0, 1); err != nil {
		t.Fatal(err)
	}

	direct := config.Skeleton().Clone()
	if err := direct.Animate(config.State("Idle").Clip, 0); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < direct.BoneCount(); i++ {
		if !blended.Bone(i).LocalTransform.Equals(direct.Bone(i).LocalTransform) {
			t.Errorf("bone %d at factor 1 differs from the To clip", i)
		}
	}

}

func TestAnimatorZeroDurationTransition(t *testing.T) {

	animator := newTestAnimator(t, walkIdleConfig(t, 0))
	animator.Update(0.5)
	animator.Trigger("stop")

	if animator.BlendFactor() != 1 {
		t.Errorf("blend factor of a zero-length transition = %v, want 1", animator.BlendFactor())
	}

	animator.Update(0)

	if animator.IsTransitioning() || animator.State().Name != "Idle" {
		t.Errorf("zero-length transition didn't complete on the next update")
	}

}

func TestAnimatorTriggerReplacesTransition(t *testing.T) {

	config, err := NewAnimatorConfig(hipSkeleton(t),
		[]StateDef{
			{Name: "Walk", Clip: walkClip(), Looping: true},
			{Name: "Idle", Clip: idleClip(), Looping: true},
			{Name: "Run", Clip: walkClip(), Looping: true},
		},
		[]TransitionDef{
			{From: "Walk", To: "Idle", Trigger: "stop", Duration: 1},
			{From: "Walk", To: "Run", Trigger: "run", Duration: 0.5},
		},
	)
	if err != nil {
		t.Fatal(err)
	}

	animator := newTestAnimator(t, config)
	animator.Trigger("stop")
	animator.Update(0.3)

	if !animator.Trigger("run") {
		t.Fatal("Trigger(\"run\") didn't start a transition")
	}

	if animator.Transition().To.Name != "Run" || animator.TransitionTime() != 0 {
		t.Errorf("in-flight transition = %q at %v, want Run at 0", animator.Transition().To.Name, animator.TransitionTime())
	}

	if animator.Trigger("jump") {
		t.Error("unknown trigger started a transition")
	}

	if animator.Transition().To.Name != "Run" {
		t.Error("unknown trigger changed the in-flight transition")
	}

}

func TestAnimatorTriggerOnlyFromCurrentState(t *testing.T) {

	animator := newTestAnimator(t, walkIdleConfig(t, 0.2))

	if animator.Trigger("go") {
		t.Error("Trigger fired a transition that leaves a different state")
	}

}

func TestAnimatedSkeletonIsPure(t *testing.T) {

	config := walkIdleConfig(t, 0.2)
	animator := newTestAnimator(t, config)
	animator.Update(0.25)
	animator.Trigger("stop")
	animator.Update(0.05)

	bindPose := config.Skeleton().Bones()

	a := animator.AnimatedSkeleton()
	b := animator.AnimatedSkeleton()

	for i := 0; i < a.BoneCount(); i++ {
		if !a.Bone(i).WorldTransform.Equals(b.Bone(i).WorldTransform) {
			t.Errorf("bone %d differs between two calls with no update in between", i)
		}
	}

	for i, bone := range config.Skeleton().Bones() {
		if bone.LocalTransform != bindPose[i].LocalTransform {
			t.Errorf("posing changed the config's skeleton (bone %d)", i)
		}
	}

	if animator.AnimationTime() != 0.25 || animator.TransitionTime() != 0.05 {
		t.Error("AnimatedSkeleton changed the animator's clocks")
	}

}

func TestAnimatorEasedTransition(t *testing.T) {

	config, err := NewAnimatorConfig(hipSkeleton(t),
		[]StateDef{
			{Name: "Walk", Clip: walkClip(), Looping: true},
			{Name: "Idle", Clip: idleClip(), Looping: true},
		},
		[]TransitionDef{{From: "Walk", To: "Idle", Trigger: "stop", Duration: 1, Ease: ease.InQuad}},
	)
	if err != nil {
		t.Fatal(err)
	}

	animator := newTestAnimator(t, config)
	animator.Trigger("stop")
	animator.Update(0.5)

	if f := animator.BlendFactor(); math.Abs(f-0.25) > 1e-6 {
		t.Errorf("eased blend factor halfway through = %v, want 0.25", f)
	}

}

func TestAnimatorOnStateEnter(t *testing.T) {

	animator := newTestAnimator(t, walkIdleConfig(t, 0.2))

	var entered []string
	animator.OnStateEnter = func(state *AnimationState) { entered = append(entered, state.Name) }

	animator.Trigger("stop")
	animator.Update(0.1)

	if len(entered) != 0 {
		t.Fatalf("OnStateEnter called before the transition finished: %v", entered)
	}

	animator.Update(0.1)

	if len(entered) != 1 || entered[0] != "Idle" {
		t.Errorf("OnStateEnter calls = %v, want [Idle]", entered)
	}

}

func TestAnimatorIgnoresInvalidTimeStep(t *testing.T) {

	animator := newTestAnimator(t, walkIdleConfig(t, 0.2))
	logger := &recordingLogger{}
	animator.SetLogger(logger)

	animator.Update(0.3)
	animator.Update(-1)
	animator.Update(math.NaN())
	animator.Update(math.Inf(1))
	animator.Update(math.Inf(-1))

	if animator.AnimationTime() != 0.3 {
		t.Errorf("animation time = %v, want 0.3", animator.AnimationTime())
	}

	if len(logger.lines) != 4 {
		t.Errorf("logged %d lines for four invalid time steps", len(logger.lines))
	}

	if got := localTranslation(t, animator.AnimatedSkeleton(), "Hip"); math.IsNaN(got.Y) {
		t.Error("invalid time step left the pose NaN")
	}

	// Transitions ignore them too.
	animator.Trigger("stop")
	animator.Update(math.Inf(1))

	if f := animator.BlendFactor(); f != 0 {
		t.Errorf("blend factor = %v after an infinite time step, want 0", f)
	}

}

func TestAnimatorConfigSkeletonIsCopy(t *testing.T) {

	config := walkIdleConfig(t, 0.2)
	animator := newTestAnimator(t, config)

	skeleton := config.Skeleton()
	skeleton.SetLocalTransform(0, NewMatrix4Translate(100, 0, 0))
	skeleton.Transform()

	if got := config.Skeleton().Bone(0).LocalTransform.Translation(); got.X == 100 {
		t.Error("changing the returned skeleton changed the config's bind pose")
	}

	animator.Update(0.5)

	if got := localTranslation(t, animator.AnimatedSkeleton(), "Hip"); !got.EqualsApprox(NewVector(0, 0.5, 0), 1e-9) {
		t.Errorf("Hip = %v, want (0, 0.5, 0)", got)
	}

}

func TestAnimatorLogsMissingBones(t *testing.T) {

	clip := walkClip()
	clip.AddChannel("Tail").AddPositionKey(0, NewVector(0, 0, -1))

	config, err := NewAnimatorConfig(hipSkeleton(t), []StateDef{{Name: "Walk", Clip: clip, Looping: true}}, nil)
	if err != nil {
		t.Fatal(err)
	}

	animator := newTestAnimator(t, config)
	logger := &recordingLogger{}
	animator.SetLogger(logger)
	animator.Update(0.5)

	skeleton := animator.AnimatedSkeleton()

	if got := localTranslation(t, skeleton, "Hip"); !got.EqualsApprox(NewVector(0, 0.5, 0), 1e-9) {
		t.Errorf("Hip = %v; the rest of the clip should still apply", got)
	}

	if len(logger.lines) == 0 {
		t.Error("missing bone wasn't logged")
	}

}

func TestNewAnimatorConfigErrors(t *testing.T) {

	skeleton := hipSkeleton(t)

	mismatched := NewAnimationClip("Wave", 1)
	mismatched.AddChannel("Spine").AddRotationKey(0, NewQuaternionIdentity())

	tests := []struct {
		name        string
		skeleton    *Skeleton
		states      []StateDef
		transitions []TransitionDef
		want        error
	}{
		{"no skeleton", nil, []StateDef{{Name: "Walk", Clip: walkClip()}}, nil, ErrNilSkeleton},
		{"no states", skeleton, nil, nil, ErrNoStates},
		{"nil clip", skeleton, []StateDef{{Name: "Walk"}}, nil, ErrNilClip},
		{"duplicate state", skeleton, []StateDef{{Name: "Walk", Clip: walkClip()}, {Name: "Walk", Clip: idleClip()}}, nil, ErrDuplicateState},
		{
			"unknown from", skeleton,
			[]StateDef{{Name: "Walk", Clip: walkClip()}},
			[]TransitionDef{{From: "Run", To: "Walk", Trigger: "x"}},
			ErrUnknownState,
		},
		{
			"unknown to", skeleton,
			[]StateDef{{Name: "Walk", Clip: walkClip()}},
			[]TransitionDef{{From: "Walk", To: "Run", Trigger: "x"}},
			ErrUnknownState,
		},
		{
			"negative duration", skeleton,
			[]StateDef{{Name: "Walk", Clip: walkClip()}, {Name: "Idle", Clip: idleClip()}},
			[]TransitionDef{{From: "Walk", To: "Idle", Trigger: "stop", Duration: -1}},
			ErrNegativeDuration,
		},
		{
			"mismatched channels", skeleton,
			[]StateDef{{Name: "Walk", Clip: walkClip()}, {Name: "Wave", Clip: mismatched}},
			[]TransitionDef{{From: "Walk", To: "Wave", Trigger: "wave", Duration: 0.2}},
			ErrChannelMismatch,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewAnimatorConfig(test.skeleton, test.states, test.transitions)
			if !errors.Is(err, test.want) {
				t.Errorf("error = %v, want %v", err, test.want)
			}
		})
	}

}

func TestNewAnimatorNilConfig(t *testing.T) {
	if _, err := NewAnimator(nil); err == nil {
		t.Error("NewAnimator(nil) didn't fail")
	}
}

func BenchmarkAnimatedSkeleton(b *testing.B) {

	config := walkIdleConfig(b, 0.2)
	animator, err := NewAnimator(config)
	if err != nil {
		b.Fatal(err)
	}

	animator.Update(0.3)
	animator.Trigger("stop")
	animator.Update(0.1)

	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		animator.AnimatedSkeleton()
	}

}
