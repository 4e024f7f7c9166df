package aspen

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Frame describes a sub-rectangle within an atlas page. The batch builder
// uses it as the sprite's UV rectangle, in page pixels.
type Frame struct {
	Page      uint16 // atlas page index
	X, Y      uint16 // top-left corner of the sub-image rect within the atlas page
	Width     uint16 // width of the sub-image rect (may differ from OriginalW if trimmed)
	Height    uint16 // height of the sub-image rect (may differ from OriginalH if trimmed)
	OriginalW uint16 // untrimmed sprite width as authored
	OriginalH uint16 // untrimmed sprite height as authored
	Rotated   bool   // true if the region is stored 90 degrees clockwise in the atlas
}

// SizeRect returns the frame's default sprite rectangle at the origin.
func (f Frame) SizeRect() Rect {
	w, h := f.OriginalW, f.OriginalH
	if w == 0 && h == 0 {
		w, h = f.Width, f.Height
	}
	return Rect{Width: float64(w), Height: float64(h)}
}

// TextureAtlas resolves texture names to frames. Lookup returns the frame
// and the default size rectangle for a new sprite, or an error wrapping
// ErrUnknownTexture.
type TextureAtlas interface {
	Lookup(name string) (Frame, Rect, error)
}

// Atlas is a TextureAtlas holding a map of named frames.
type Atlas struct {
	frames map[string]Frame
}

// NewAtlas creates an empty atlas. Frames are added with Add.
func NewAtlas() *Atlas {
	return &Atlas{frames: make(map[string]Frame)}
}

// Add registers or replaces a named frame.
func (a *Atlas) Add(name string, f Frame) {
	a.frames[name] = f
}

// Lookup implements TextureAtlas.
func (a *Atlas) Lookup(name string) (Frame, Rect, error) {
	f, ok := a.frames[name]
	if !ok {
		return Frame{}, Rect{}, fmt.Errorf("%w: %q", ErrUnknownTexture, name)
	}
	return f, f.SizeRect(), nil
}

// Len returns the number of named frames.
func (a *Atlas) Len() int { return len(a.frames) }

// Names returns the frame names in sorted order.
func (a *Atlas) Names() []string {
	names := make([]string, 0, len(a.frames))
	for n := range a.frames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Offset shifts every frame's page index by n. Used when the atlas pages are
// registered after pages of another atlas.
func (a *Atlas) Offset(n uint16) {
	if n == 0 {
		return
	}
	for name, f := range a.frames {
		f.Page += n
		a.frames[name] = f
	}
}

// LoadAtlas parses TexturePacker JSON data.
// Supports both the hash format (single "frames" object) and the array format
// ("textures" array with per-page frame lists).
func LoadAtlas(jsonData []byte) (*Atlas, error) {
	// Probe top-level keys to detect format.
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("aspen: failed to parse atlas JSON: %w", err)
	}

	atlas := NewAtlas()

	if probe.Textures != nil {
		if err := parseArrayFormat(probe.Textures, atlas); err != nil {
			return nil, err
		}
	} else if probe.Frames != nil {
		if err := parseHashFrames(probe.Frames, 0, atlas); err != nil {
			return nil, err
		}
	} else {
		return nil, fmt.Errorf("aspen: atlas JSON has neither \"frames\" nor \"textures\" key")
	}

	return atlas, nil
}

// --- JSON structure types ---

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame      jsonRect `json:"frame"`
	Rotated    bool     `json:"rotated"`
	SourceSize jsonSize `json:"sourceSize"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

// parseHashFrames parses the hash format: {"name": {frame...}, ...}
func parseHashFrames(raw json.RawMessage, pageIndex uint16, atlas *Atlas) error {
	var frames map[string]jsonFrame
	if err := json.Unmarshal(raw, &frames); err != nil {
		return fmt.Errorf("aspen: failed to parse atlas frames: %w", err)
	}
	for name, f := range frames {
		atlas.frames[name] = toFrame(f, pageIndex)
	}
	return nil
}

// parseArrayFormat parses the array format: [{"image":"...", "frames":{...}}, ...]
func parseArrayFormat(raw json.RawMessage, atlas *Atlas) error {
	var textures []jsonTexturePage
	if err := json.Unmarshal(raw, &textures); err != nil {
		return fmt.Errorf("aspen: failed to parse atlas textures array: %w", err)
	}
	for i, tex := range textures {
		for name, f := range tex.Frames {
			atlas.frames[name] = toFrame(f, uint16(i))
		}
	}
	return nil
}

func toFrame(f jsonFrame, page uint16) Frame {
	return Frame{
		Page:      page,
		X:         uint16(f.Frame.X),
		Y:         uint16(f.Frame.Y),
		Width:     uint16(f.Frame.W),
		Height:    uint16(f.Frame.H),
		OriginalW: uint16(f.SourceSize.W),
		OriginalH: uint16(f.SourceSize.H),
		Rotated:   f.Rotated,
	}
}
