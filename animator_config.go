package rig3d

import (
	"fmt"

	"github.com/tanema/gween/ease"
)

// AnimationState is a named state of an animator: the clip it plays and whether that clip loops.
type AnimationState struct {
	Name    string
	Clip    *AnimationClip
	Looping bool
}

// Transition moves an Animator from one state to another when its Trigger fires, cross-blending the two clips over
// Duration seconds. Ease shapes the blend factor over the course of the transition; nil means linear.
type Transition struct {
	From     *AnimationState
	To       *AnimationState
	Trigger  string
	Duration float64
	Ease     ease.TweenFunc
}

// Factor returns the blend factor for a transition that has been running for the given number of seconds; it goes from
// 0 (all From) to 1 (all To). A zero-length Transition is instantaneous and always returns 1.
func (transition *Transition) Factor(elapsed float64) float64 {

	if transition.Duration <= 0 {
		return 1
	}

	linear := clamp(elapsed/transition.Duration, 0, 1)

	if transition.Ease == nil {
		return linear
	}

	return clamp(float64(transition.Ease(float32(linear), 0, 1, 1)), 0, 1)

}

// StateDef describes an AnimationState for NewAnimatorConfig.
type StateDef struct {
	Name    string
	Clip    *AnimationClip
	Looping bool
}

// TransitionDef describes a Transition for NewAnimatorConfig; From and To are state names.
type TransitionDef struct {
	From     string
	To       string
	Trigger  string
	Duration float64
	Ease     ease.TweenFunc
}

// AnimatorConfig is the shape of an animator: the Skeleton it poses, its states, and the transitions between them.
// An AnimatorConfig is read-only once built, so one can be shared by every Animator of the same kind. The Skeleton
// is referenced, not copied.
type AnimatorConfig struct {
	skeleton    *Skeleton
	states      []*AnimationState
	transitions []*Transition
	stateNames  map[string]*AnimationState
}

// NewAnimatorConfig builds an AnimatorConfig, resolving the transitions' state names against the given states.
// Animators made from the config start in the first state.
//
// Building fails if there's no Skeleton or no states, a state has no clip or shares a name with another, a
// transition names a state that doesn't exist or has a negative duration, or a transition's two clips can't be
// blended (see AnimationClip.CompatibleWith).
func NewAnimatorConfig(skeleton *Skeleton, states []StateDef, transitions []TransitionDef) (*AnimatorConfig, error) {

	if skeleton == nil {
		return nil, ErrNilSkeleton
	}

	if len(states) == 0 {
		return nil, ErrNoStates
	}

	config := &AnimatorConfig{
		skeleton:   skeleton,
		states:     make([]*AnimationState, 0, len(states)),
		stateNames: make(map[string]*AnimationState, len(states)),
	}

	for _, def := range states {

		if _, exists := config.stateNames[def.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateState, def.Name)
		}

		if def.Clip == nil {
			return nil, fmt.Errorf("%w: %q", ErrNilClip, def.Name)
		}

		state := &AnimationState{
			Name:    def.Name,
			Clip:    def.Clip,
			Looping: def.Looping,
		}

		config.states = append(config.states, state)
		config.stateNames[def.Name] = state

	}

	for _, def := range transitions {

		from, ok := config.stateNames[def.From]
		if !ok {
			return nil, fmt.Errorf("%w: transition %q starts from %q", ErrUnknownState, def.Trigger, def.From)
		}

		to, ok := config.stateNames[def.To]
		if !ok {
			return nil, fmt.Errorf("%w: transition %q leads to %q", ErrUnknownState, def.Trigger, def.To)
		}

		if def.Duration < 0 {
			return nil, fmt.Errorf("%w: transition %q (%s -> %s) lasts %v seconds", ErrNegativeDuration, def.Trigger, def.From, def.To, def.Duration)
		}

		if err := from.Clip.CompatibleWith(to.Clip); err != nil {
			return nil, fmt.Errorf("transition %q (%s -> %s): %w", def.Trigger, def.From, def.To, err)
		}

		config.transitions = append(config.transitions, &Transition{
			From:     from,
			To:       to,
			Trigger:  def.Trigger,
			Duration: def.Duration,
			Ease:     def.Ease,
		})

	}

	return config, nil

}

// Skeleton returns a copy of the bind-pose Skeleton the config poses; changing it doesn't affect the config or the
// Animators that share it.
func (config *AnimatorConfig) Skeleton() *Skeleton {
	return config.skeleton.Clone()
}

// States returns the config's states, in order. The slice is a copy; the states themselves are shared.
func (config *AnimatorConfig) States() []*AnimationState {
	return append([]*AnimationState(nil), config.states...)
}

// Transitions returns the config's transitions, in order. The slice is a copy; the transitions themselves are shared.
func (config *AnimatorConfig) Transitions() []*Transition {
	return append([]*Transition(nil), config.transitions...)
}

// State returns the state with the given name, or nil if there isn't one.
func (config *AnimatorConfig) State(name string) *AnimationState {
	return config.stateNames[name]
}

// InitialState returns the state Animators start in.
func (config *AnimatorConfig) InitialState() *AnimationState {
	if len(config.states) == 0 {
		return nil
	}
	return config.states[0]
}

// findTransition returns the first transition out of the given state with the given trigger, or nil.
func (config *AnimatorConfig) findTransition(from *AnimationState, trigger string) *Transition {
	for _, transition := range config.transitions {
		if transition.From == from && transition.Trigger == trigger {
			return transition
		}
	}
	return nil
}
