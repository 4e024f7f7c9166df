// Package ecs provides ECS adapters for aspen's scene event system.
//
// [NewDonburiStore] bridges aspen scene events (sprite added, sprite removed,
// sequence finished) into a [Donburi] world as typed events. Subscribe to
// [SceneEventType] in your ECS systems to receive them.
//
// [Bridge] goes one step further: it spawns one entity per sprite, pushes
// entity transforms into the scene with [Bridge.Sync] and despawns entities
// whose sprites are removed.
//
// Usage:
//
//	bridge := ecs.NewBridge(world, scene)
//	ent, _ := bridge.Spawn(aspen.Vec2{X: 10, Y: 10}, "hero")
//	// ... move TransformComponent values in systems ...
//	bridge.Sync()
//	bridge.ProcessEvents()
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
