package aspen

// EventType identifies a kind of scene event.
type EventType uint8

const (
	EventSpriteAdded      EventType = iota // fires after AddSprite registers both corners
	EventSpriteRemoved                     // fires after a sprite's slots are freed
	EventSequenceFinished                  // fires when a non-looping sequence plays its last frame
)

func (t EventType) String() string {
	switch t {
	case EventSpriteAdded:
		return "sprite_added"
	case EventSpriteRemoved:
		return "sprite_removed"
	case EventSequenceFinished:
		return "sequence_finished"
	default:
		return "unknown"
	}
}

// SceneEvent carries lifecycle data for the ECS bridge.
type SceneEvent struct {
	Type     EventType
	Sprite   SpriteID
	Texture  string // texture name for EventSpriteAdded
	Sequence string // sequence name for EventSequenceFinished
}

// EntityStore is the interface for optional ECS integration.
// When set on a Scene, lifecycle events are forwarded to it.
type EntityStore interface {
	EmitEvent(event SceneEvent)
}

// SetEntityStore sets the optional ECS bridge.
func (s *Scene) SetEntityStore(store EntityStore) {
	s.store = store
}

func (s *Scene) emit(ev SceneEvent) {
	if s.store != nil {
		s.store.EmitEvent(ev)
	}
}
