package aspen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tanema/gween/ease"
)

// AnimationTable drives frame sequences for sprites. The scene binds one
// playback per animated sprite and asks the table for the current frame of
// each visible sprite during Update.
//
// Playback indices are owned by the table and stay valid until Release.
type AnimationTable interface {
	// Add starts a playback of the named sequence and returns its index,
	// or an error wrapping ErrUnknownSequence.
	Add(sequence string) (int, error)
	// Advance steps every running playback by dt seconds.
	Advance(dt float64)
	// Frame returns the current frame of a playback.
	Frame(index int) (Frame, bool)
	Pause(index int)
	Resume(index int)
	// Release frees a playback index.
	Release(index int)
}

// FinishNotifier is implemented by animation tables that report non-looping
// playbacks reaching their last frame. The scene drains it after each
// Advance and emits EventSequenceFinished.
type FinishNotifier interface {
	DrainFinished(fn func(index int))
}

var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"in-quad":      ease.InQuad,
	"out-quad":     ease.OutQuad,
	"in-out-quad":  ease.InOutQuad,
	"in-cubic":     ease.InCubic,
	"out-cubic":    ease.OutCubic,
	"in-out-cubic": ease.InOutCubic,
	"in-sine":      ease.InSine,
	"out-sine":     ease.OutSine,
	"in-out-sine":  ease.InOutSine,
	"out-bounce":   ease.OutBounce,
	"out-elastic":  ease.OutElastic,
}

// EaseByName returns the easing function registered under name. The empty
// name selects linear stepping.
func EaseByName(name string) (ease.TweenFunc, error) {
	if name == "" {
		return ease.Linear, nil
	}
	fn, ok := easings[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("aspen: unknown easing %q (have %s)", name, strings.Join(EaseNames(), ", "))
	}
	return fn, nil
}

// EaseNames lists the registered easing names in sorted order.
func EaseNames() []string {
	names := make([]string, 0, len(easings))
	for n := range easings {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
