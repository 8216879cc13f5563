package rig3d

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tanema/gween/ease"
)

// easingFunctions are the easing names a serialized animator config may use for its transitions.
var easingFunctions = map[string]ease.TweenFunc{
	"":           nil,
	"linear":     ease.Linear,
	"inQuad":     ease.InQuad,
	"outQuad":    ease.OutQuad,
	"inOutQuad":  ease.InOutQuad,
	"inCubic":    ease.InCubic,
	"outCubic":   ease.OutCubic,
	"inOutCubic": ease.InOutCubic,
	"inSine":     ease.InSine,
	"outSine":    ease.OutSine,
	"inOutSine":  ease.InOutSine,
}

type jsonAnimatorConfig struct {
	States []struct {
		Name string `json:"name"`
		Clip string `json:"clip"`
		Loop bool   `json:"loop"`
	} `json:"states"`
	Transitions []struct {
		From     string  `json:"from"`
		To       string  `json:"to"`
		Trigger  string  `json:"trigger"`
		Duration float64 `json:"duration"`
		Ease     string  `json:"ease"`
	} `json:"transitions"`
}

// LoadAnimatorConfigJSON reads an animator config from JSON of the form:
//
//	{
//	  "states": [{"name": "Idle", "clip": "IdleClip", "loop": true}],
//	  "transitions": [{"from": "Idle", "to": "Walk", "trigger": "walk", "duration": 0.2, "ease": "inOutSine"}]
//	}
//
// Clip names are resolved against clips; a missing clip returns an error wrapping ErrUnknownClip, and an easing name
// that isn't known returns an error wrapping ErrUnknownEase. The result is then validated by NewAnimatorConfig.
func LoadAnimatorConfigJSON(r io.Reader, skeleton *Skeleton, clips map[string]*AnimationClip) (*AnimatorConfig, error) {

	var data jsonAnimatorConfig

	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("rig3d: decoding animator config: %w", err)
	}

	states := make([]StateDef, 0, len(data.States))

	for _, s := range data.States {
		clip, ok := clips[s.Clip]
		if !ok {
			return nil, fmt.Errorf("%w: state %q uses clip %q", ErrUnknownClip, s.Name, s.Clip)
		}
		states = append(states, StateDef{Name: s.Name, Clip: clip, Looping: s.Loop})
	}

	transitions := make([]TransitionDef, 0, len(data.Transitions))

	for _, t := range data.Transitions {
		easing, ok := easingFunctions[t.Ease]
		if !ok {
			return nil, fmt.Errorf("%w: transition %q uses %q", ErrUnknownEase, t.Trigger, t.Ease)
		}
		transitions = append(transitions, TransitionDef{
			From:     t.From,
			To:       t.To,
			Trigger:  t.Trigger,
			Duration: t.Duration,
			Ease:     easing,
		})
	}

	return NewAnimatorConfig(skeleton, states, transitions)

}
