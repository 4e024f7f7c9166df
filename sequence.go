package aspen

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"gopkg.in/yaml.v3"
)

// SequenceDef is one sequence entry of a YAML sequence file:
//
//	sequences:
//	  - name: hero-walk
//	    frames: [hero-walk-0, hero-walk-1, hero-walk-2]
//	    fps: 12
//	    loop: true
//	    ease: linear
type SequenceDef struct {
	Name   string   `yaml:"name"`
	Frames []string `yaml:"frames"`
	FPS    float64  `yaml:"fps"`
	Loop   bool     `yaml:"loop"`
	Ease   string   `yaml:"ease"`
}

type sequenceFile struct {
	Sequences []SequenceDef `yaml:"sequences"`
}

type sequence struct {
	name     string
	frames   []Frame
	duration float32
	loop     bool
	easeFn   ease.TweenFunc
}

type playback struct {
	seq      *sequence
	tween    *gween.Tween
	elapsed  float32
	frame    int
	paused   bool
	finished bool
}

// SequenceTable is the default AnimationTable. A playback's frame index is
// the value of a gween tween running from 0 to the frame count over the
// sequence duration, so the easing function shapes the frame pacing.
type SequenceTable struct {
	defs      map[string]*sequence
	playbacks slotArena[playback]
	finished  []int
}

// NewSequenceTable creates a table with no sequences defined.
func NewSequenceTable() *SequenceTable {
	return &SequenceTable{defs: make(map[string]*sequence)}
}

// LoadSequencesFile reads a YAML sequence file and resolves its frame names
// against atlas.
func LoadSequencesFile(path string, atlas TextureAtlas) (*SequenceTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("aspen: read sequences: %w", err)
	}
	return LoadSequences(data, atlas)
}

// LoadSequences parses YAML sequence definitions and resolves their frame
// names against atlas.
func LoadSequences(data []byte, atlas TextureAtlas) (*SequenceTable, error) {
	var f sequenceFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("aspen: parse sequences: %w", err)
	}
	t := NewSequenceTable()
	for _, def := range f.Sequences {
		if err := t.DefineFromAtlas(def, atlas); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// DefineFromAtlas registers def, looking up each frame name in atlas.
func (t *SequenceTable) DefineFromAtlas(def SequenceDef, atlas TextureAtlas) error {
	frames := make([]Frame, 0, len(def.Frames))
	for _, name := range def.Frames {
		f, _, err := atlas.Lookup(name)
		if err != nil {
			return fmt.Errorf("aspen: sequence %q: %w", def.Name, err)
		}
		frames = append(frames, f)
	}
	fn, err := EaseByName(def.Ease)
	if err != nil {
		return fmt.Errorf("aspen: sequence %q: %w", def.Name, err)
	}
	return t.Define(def.Name, frames, def.FPS, def.Loop, fn)
}

// Define registers or replaces a sequence. Running playbacks of a replaced
// sequence keep the old definition.
func (t *SequenceTable) Define(name string, frames []Frame, fps float64, loop bool, fn ease.TweenFunc) error {
	if name == "" {
		return fmt.Errorf("%w: sequence name is empty", ErrInvalidConfig)
	}
	if len(frames) == 0 {
		return fmt.Errorf("%w: sequence %q has no frames", ErrInvalidConfig, name)
	}
	if !(fps > 0) || math.IsInf(fps, 0) {
		return fmt.Errorf("%w: sequence %q fps %v must be positive", ErrInvalidConfig, name, fps)
	}
	if fn == nil {
		fn = ease.Linear
	}
	t.defs[name] = &sequence{
		name:     name,
		frames:   append([]Frame(nil), frames...),
		duration: float32(float64(len(frames)) / fps),
		loop:     loop,
		easeFn:   fn,
	}
	return nil
}

// Has reports whether a sequence is defined.
func (t *SequenceTable) Has(name string) bool {
	_, ok := t.defs[name]
	return ok
}

// Names returns the defined sequence names in sorted order.
func (t *SequenceTable) Names() []string {
	names := make([]string, 0, len(t.defs))
	for n := range t.defs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Add implements AnimationTable.
func (t *SequenceTable) Add(name string) (int, error) {
	seq, ok := t.defs[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSequence, name)
	}
	return t.playbacks.insert(playback{
		seq:   seq,
		tween: gween.New(0, float32(len(seq.frames)), seq.duration, seq.easeFn),
	}), nil
}

// Advance implements AnimationTable.
func (t *SequenceTable) Advance(dt float64) {
	if dt <= 0 {
		return
	}
	t.playbacks.each(func(i int, p *playback) bool {
		if p.paused || p.finished {
			return true
		}
		step := float32(dt)
		p.elapsed += step
		if p.elapsed >= p.seq.duration {
			if !p.seq.loop {
				p.finished = true
				p.frame = len(p.seq.frames) - 1
				t.finished = append(t.finished, i)
				return true
			}
			// Wrap around, carrying the remainder into the next cycle.
			p.elapsed = float32(math.Mod(float64(p.elapsed), float64(p.seq.duration)))
			p.tween.Reset()
			step = p.elapsed
		}
		val, _ := p.tween.Update(step)
		p.frame = min(max(int(val), 0), len(p.seq.frames)-1)
		return true
	})
}

// Frame implements AnimationTable.
func (t *SequenceTable) Frame(index int) (Frame, bool) {
	p, ok := t.playbacks.get(index)
	if !ok {
		return Frame{}, false
	}
	return p.seq.frames[p.frame], true
}

// FrameIndex returns the position of a playback within its sequence.
func (t *SequenceTable) FrameIndex(index int) (int, bool) {
	p, ok := t.playbacks.get(index)
	if !ok {
		return 0, false
	}
	return p.frame, true
}

// Pause implements AnimationTable.
func (t *SequenceTable) Pause(index int) {
	if p, ok := t.playbacks.get(index); ok {
		p.paused = true
	}
}

// Resume implements AnimationTable.
func (t *SequenceTable) Resume(index int) {
	if p, ok := t.playbacks.get(index); ok {
		p.paused = false
	}
}

// Release implements AnimationTable.
func (t *SequenceTable) Release(index int) {
	_, _ = t.playbacks.remove(index)
}

// Playing returns the number of live playbacks.
func (t *SequenceTable) Playing() int { return t.playbacks.live }

// DrainFinished implements FinishNotifier. Indices released since they
// finished are skipped.
func (t *SequenceTable) DrainFinished(fn func(index int)) {
	for _, i := range t.finished {
		if t.playbacks.occupied(i) {
			fn(i)
		}
	}
	t.finished = t.finished[:0]
}
