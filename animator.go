package rig3d

import (
	"errors"
	"math"
)

// Animator plays an AnimatorConfig for one entity. It is either steady in a single state, playing that state's clip,
// or in the middle of a Transition, blending from the Transition's From state to its To state.
//
// An Animator is not safe for concurrent use; each one belongs to a single entity and is updated once per frame.
// The AnimatorConfig it plays can be shared freely.
type Animator struct {
	config         *AnimatorConfig
	state          *AnimationState
	transition     *Transition
	animationTime  float64
	transitionTime float64
	logger         Logger

	// OnStateEnter, if set, is called when a Transition finishes and the Animator settles into its destination state.
	OnStateEnter func(state *AnimationState)
}

// NewAnimator creates a new Animator playing the given config, starting in the config's first state with both clocks at 0.
func NewAnimator(config *AnimatorConfig) (*Animator, error) {

	if config == nil {
		return nil, errors.New("rig3d: nil animator config")
	}

	if len(config.states) == 0 {
		return nil, ErrNoStates
	}

	return &Animator{
		config: config,
		state:  config.states[0],
		logger: defaultLogger(),
	}, nil

}

// SetLogger sets where the Animator reports problems found while posing. Passing nil restores the default (the standard logger).
func (animator *Animator) SetLogger(logger Logger) {
	if logger == nil {
		logger = defaultLogger()
	}
	animator.logger = logger
}

// Config returns the AnimatorConfig the Animator plays.
func (animator *Animator) Config() *AnimatorConfig {
	return animator.config
}

// State returns the current state. While transitioning, this is still the state being transitioned away from.
func (animator *Animator) State() *AnimationState {
	return animator.state
}

// Transition returns the in-flight Transition, or nil if the Animator is steady.
func (animator *Animator) Transition() *Transition {
	return animator.transition
}

// IsTransitioning returns true if a Transition is in flight.
func (animator *Animator) IsTransitioning() bool {
	return animator.transition != nil
}

// AnimationTime returns how far into the current state's clip the Animator is, in seconds.
func (animator *Animator) AnimationTime() float64 {
	return animator.animationTime
}

// TransitionTime returns how long the in-flight Transition has been running, in seconds.
func (animator *Animator) TransitionTime() float64 {
	return animator.transitionTime
}

// Trigger looks for a transition out of the current state with the given trigger name. If there is one, it starts
// right away with its clock at 0, replacing any Transition already in flight. Trigger returns whether a Transition started.
func (animator *Animator) Trigger(name string) bool {

	transition := animator.config.findTransition(animator.state, name)
	if transition == nil {
		return false
	}

	animator.transition = transition
	animator.transitionTime = 0
	return true

}

// Update advances the Animator by dt seconds.
//
// While transitioning, only the transition clock moves (the From clip holds its pose); once it reaches the Transition's
// duration, the Animator settles into the To state with its animation clock at 0. While steady, the animation clock
// moves, wrapping around the clip's duration if the state loops. A non-looping clip keeps counting past its end,
// which holds its last keyframes. A negative, NaN, or infinite dt is ignored.
func (animator *Animator) Update(dt float64) {

	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		animator.logger.Printf("Warning: animator in state %q ignored invalid time step %v", animator.state.Name, dt)
		return
	}

	if animator.transition != nil {

		animator.transitionTime += dt

		if animator.transitionTime >= animator.transition.Duration {
			animator.state = animator.transition.To
			animator.transition = nil
			animator.transitionTime = 0
			animator.animationTime = 0
			if animator.OnStateEnter != nil {
				animator.OnStateEnter(animator.state)
			}
		}

		return

	}

	animator.animationTime += dt

	if animator.state.Looping {
		duration := animator.state.Clip.Duration
		if duration <= 0 {
			animator.animationTime = 0
		} else if animator.animationTime >= duration {
			animator.animationTime = math.Mod(animator.animationTime, duration)
		}
	}

}

// BlendFactor returns how far the in-flight Transition has progressed, from 0 (entirely the From state) to 1 (entirely
// the To state), after easing. It's 0 when the Animator is steady, and 1 for a zero-length Transition.
func (animator *Animator) BlendFactor() float64 {
	if animator.transition == nil {
		return 0
	}
	return animator.transition.Factor(animator.transitionTime)
}

// AnimatedSkeleton returns a fresh copy of the config's Skeleton, posed for the Animator's current state and transformed
// into world space. When steady, the current clip is sampled at the animation time; when transitioning, the From clip
// (at the animation time) is blended into the To clip (at time 0) by BlendFactor.
//
// AnimatedSkeleton doesn't change the Animator, so calling it again before the next Update gives the same pose.
// Problems with the clips (such as channels for missing bones) are logged, and the affected bones keep their bind pose.
func (animator *Animator) AnimatedSkeleton() *Skeleton {

	skeleton := animator.config.skeleton.Clone()
	skeleton.logger = animator.logger

	var err error

	if animator.transition == nil {
		err = skeleton.Animate(animator.state.Clip, animator.animationTime)
	} else {
		err = skeleton.AnimateBlend(
			animator.transition.From.Clip, animator.animationTime,
			animator.transition.To.Clip, 0,
			animator.BlendFactor(),
		)
	}

	if err != nil {
		animator.logger.Printf("Error: posing state %q: %v", animator.state.Name, err)
	}

	skeleton.Transform()

	return skeleton

}
