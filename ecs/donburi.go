// Package ecs provides ECS adapters for aspen.
package ecs

import (
	"errors"
	"fmt"

	"github.com/kamstrup/intmap"
	"github.com/phanxgames/aspen"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// SceneEventType is the Donburi event type for aspen scene events.
// Subscribe to this in your ECS systems to receive sprite lifecycle and
// sequence events.
var SceneEventType = events.NewEventType[aspen.SceneEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Scene events are published to SceneEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) aspen.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event aspen.SceneEvent) {
	SceneEventType.Publish(s.world, event)
}

// SpriteData links an entity to its scene sprite.
type SpriteData struct {
	ID      aspen.SpriteID
	Texture string
}

// TransformData is the entity-side transform pushed to the scene by Sync.
type TransformData struct {
	X, Y           float64
	ScaleX, ScaleY float64
	Rotation       float64
}

var (
	SpriteComponent    = donburi.NewComponentType[SpriteData]()
	TransformComponent = donburi.NewComponentType[TransformData]()
)

// Bridge keeps a Donburi world and a Scene in step. Entities spawned through
// the bridge own one sprite each; Sync pushes their transforms into the
// scene, and removing the sprite on the scene side despawns the entity once
// events are processed.
type Bridge struct {
	world    donburi.World
	scene    *aspen.Scene
	entities *intmap.Map[uint64, donburi.Entity]
	query    *donburi.Query
}

// NewBridge installs a Donburi store on scene and subscribes to its removal
// events.
func NewBridge(world donburi.World, scene *aspen.Scene) *Bridge {
	b := &Bridge{
		world:    world,
		scene:    scene,
		entities: intmap.New[uint64, donburi.Entity](64),
		query:    donburi.NewQuery(filter.Contains(SpriteComponent, TransformComponent)),
	}
	scene.SetEntityStore(NewDonburiStore(world))
	SceneEventType.Subscribe(world, b.onSceneEvent)
	return b
}

func (b *Bridge) onSceneEvent(w donburi.World, e aspen.SceneEvent) {
	if e.Type != aspen.EventSpriteRemoved {
		return
	}
	ent, ok := b.entities.Get(e.Sprite.Pack())
	if !ok {
		return
	}
	b.entities.Del(e.Sprite.Pack())
	if w.Valid(ent) {
		w.Remove(ent)
	}
}

// Spawn adds a sprite to the scene and creates an entity for it.
func (b *Bridge) Spawn(pos aspen.Vec2, texture string) (donburi.Entity, error) {
	id, err := b.scene.AddSprite(pos, texture)
	if err != nil {
		return donburi.Null, err
	}
	ent := b.world.Create(SpriteComponent, TransformComponent)
	entry := b.world.Entry(ent)
	SpriteComponent.SetValue(entry, SpriteData{ID: id, Texture: texture})
	TransformComponent.SetValue(entry, TransformData{X: pos.X, Y: pos.Y, ScaleX: 1, ScaleY: 1})
	b.entities.Put(id.Pack(), ent)
	return ent, nil
}

// Despawn removes the entity's sprite and the entity.
func (b *Bridge) Despawn(ent donburi.Entity) error {
	if !b.world.Valid(ent) {
		return fmt.Errorf("ecs: entity %v is not valid", ent)
	}
	entry := b.world.Entry(ent)
	if entry.HasComponent(SpriteComponent) {
		id := SpriteComponent.Get(entry).ID
		b.entities.Del(id.Pack())
		if err := b.scene.RemoveSprite(id); err != nil && !errors.Is(err, aspen.ErrStaleSprite) {
			return err
		}
	}
	b.world.Remove(ent)
	return nil
}

// Entity returns the entity owning the sprite.
func (b *Bridge) Entity(id aspen.SpriteID) (donburi.Entity, bool) {
	return b.entities.Get(id.Pack())
}

// Len returns the number of bridged entities.
func (b *Bridge) Len() int { return b.entities.Len() }

// Sync pushes every bridged entity's transform into the scene. A transform
// the scene rejects (for example one leaving the world) leaves that sprite
// where it was; all such errors are returned joined.
func (b *Bridge) Sync() error {
	var errs []error
	b.query.Each(b.world, func(entry *donburi.Entry) {
		sp := SpriteComponent.Get(entry)
		tr := TransformComponent.Get(entry)
		err := b.scene.SetTransform(sp.ID,
			aspen.Vec2{X: tr.X, Y: tr.Y},
			aspen.Vec2{X: tr.ScaleX, Y: tr.ScaleY},
			tr.Rotation)
		if err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

// ProcessEvents delivers queued scene events to subscribers, despawning
// entities whose sprites were removed.
func (b *Bridge) ProcessEvents() {
	SceneEventType.ProcessEvents(b.world)
}
