// Package animworld hosts rig3d Animators as components of a donburi ECS world, so a game can create one Animator per
// entity, advance them all once per frame, and fire triggers at a single entity or at every one of them.
package animworld

import (
	"errors"
	"fmt"

	"github.com/solarlune/rig3d"
	"github.com/yohamta/donburi"
)

// ErrNoAnimator is returned for entities that don't exist (anymore) or don't carry an Animator.
var ErrNoAnimator = errors.New("animworld: entity has no animator")

// AnimatorData is the component data attached to animated entities.
type AnimatorData struct {
	Animator *rig3d.Animator
}

// AnimatorComponent marks entities driven by a rig3d.Animator.
var AnimatorComponent = donburi.NewComponentType[AnimatorData]()

// World owns the per-entity Animators. It is not safe for concurrent use; animation is evaluated on the game loop's thread.
type World struct {
	world  donburi.World
	logger rig3d.Logger
}

// NewWorld creates a World backed by a fresh donburi world.
func NewWorld() *World {
	return NewWorldFrom(donburi.NewWorld())
}

// NewWorldFrom creates a World that stores its Animators in an existing donburi world, alongside a game's other components.
func NewWorldFrom(world donburi.World) *World {
	return &World{world: world}
}

// SetLogger sets the logger handed to every Animator created from now on.
func (w *World) SetLogger(logger rig3d.Logger) {
	w.logger = logger
}

// Donburi returns the underlying donburi world.
func (w *World) Donburi() donburi.World {
	return w.world
}

// CreateAnimator creates a new entity with an Animator playing the given config.
func (w *World) CreateAnimator(config *rig3d.AnimatorConfig) (donburi.Entity, error) {

	animator, err := rig3d.NewAnimator(config)
	if err != nil {
		return donburi.Null, err
	}

	if w.logger != nil {
		animator.SetLogger(w.logger)
	}

	entity := w.world.Create(AnimatorComponent)
	AnimatorComponent.Set(w.world.Entry(entity), &AnimatorData{Animator: animator})

	return entity, nil

}

// Animator returns the Animator attached to the entity.
func (w *World) Animator(entity donburi.Entity) (*rig3d.Animator, error) {

	if !w.world.Valid(entity) {
		return nil, fmt.Errorf("%w: entity %v is not valid", ErrNoAnimator, entity)
	}

	entry := w.world.Entry(entity)
	if !entry.HasComponent(AnimatorComponent) {
		return nil, fmt.Errorf("%w: entity %v", ErrNoAnimator, entity)
	}

	data := AnimatorComponent.Get(entry)
	if data.Animator == nil {
		return nil, fmt.Errorf("%w: entity %v", ErrNoAnimator, entity)
	}

	return data.Animator, nil

}

// Update advances every Animator in the world by dt seconds.
func (w *World) Update(dt float64) {
	AnimatorComponent.Each(w.world, func(entry *donburi.Entry) {
		if animator := AnimatorComponent.Get(entry).Animator; animator != nil {
			animator.Update(dt)
		}
	})
}

// Trigger fires the named trigger on one entity's Animator, returning whether a transition started.
func (w *World) Trigger(entity donburi.Entity, name string) (bool, error) {
	animator, err := w.Animator(entity)
	if err != nil {
		return false, err
	}
	return animator.Trigger(name), nil
}

// TriggerAll fires the named trigger on every Animator in the world, returning how many started a transition.
func (w *World) TriggerAll(name string) int {
	started := 0
	AnimatorComponent.Each(w.world, func(entry *donburi.Entry) {
		if animator := AnimatorComponent.Get(entry).Animator; animator != nil && animator.Trigger(name) {
			started++
		}
	})
	return started
}

// AnimatedSkeleton returns the entity's current pose; see rig3d.Animator.AnimatedSkeleton.
func (w *World) AnimatedSkeleton(entity donburi.Entity) (*rig3d.Skeleton, error) {
	animator, err := w.Animator(entity)
	if err != nil {
		return nil, err
	}
	return animator.AnimatedSkeleton(), nil
}

// Remove destroys the entity along with its Animator.
func (w *World) Remove(entity donburi.Entity) {
	if w.world.Valid(entity) {
		w.world.Remove(entity)
	}
}

// Len returns the number of entities carrying an Animator.
func (w *World) Len() int {
	count := 0
	AnimatorComponent.Each(w.world, func(*donburi.Entry) {
		count++
	})
	return count
}
