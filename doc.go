// Package aspen is the runtime core of a 2D sprite scene: a spatial
// partition map with stable handles, a per-frame visibility query, and a
// render-batch builder that hands flat vertex, UV and index buffers to a host
// renderer.
//
// # Quick start
//
//	atlas, _ := aspen.LoadAtlas(atlasJSON)
//	scene, _ := aspen.NewScene(4096, 6, atlas)
//
//	id, _ := scene.AddSprite(aspen.Vec2{X: 100, Y: 50}, "hero_idle")
//	scene.CenterOrigin(id)
//	scene.Rotate(id, math.Pi/4)
//
//	cam := aspen.NewCamera(aspen.Rect{Width: 640, Height: 480})
//	batch, err := scene.Update(cam, 1.0/60)
//
// The [ebitenhost] package draws a [Batch] with Ebitengine; any other host
// can consume the views directly.
//
// # World and partition map
//
// The world is the square [0, size) x [0, size) with the origin at the
// top-left and +y down. It is split into 2^depth cells per axis. A
// [PartitionMap] stores values per cell in slot arenas: removing a value never
// changes the [Key] of another value, and freed slots are reused before an
// arena grows.
//
// # Sprites
//
// Each sprite registers two points: its top-left entry at the minimum corner
// of its bounding box and a bottom-right marker at the maximum corner. Every
// transform ([Scene.SetPosition], [Scene.SetScale], [Scene.SetRotation],
// [Scene.SetOrigin], [Scene.SetLayer] and friends) recomputes the quad and
// moves both points. A transform that would put either corner outside the
// world fails with [ErrOutOfBounds] and changes nothing.
//
// Sprites are addressed by [SpriteID]. Ids are generation checked: once a
// sprite is removed its id is rejected with [ErrStaleSprite], even after the
// slot is reused.
//
// # Visibility
//
// [Scene.Update] enumerates the cells overlapping the camera's visible
// bounds, loads each sprite with a registered corner in them exactly once,
// and returns the frame's [Batch]. The query is cell-coarse; see
// [Scene.SetCullPadding] and [Scene.SetAutoPad] for sprites larger than a
// cell.
//
// # Animation
//
// Frame sequences come from an [AnimationTable]. The default [SequenceTable]
// loads definitions from YAML and steps frames with [gween] tweens, which also
// drive camera scrolling and sprite [TweenGroup]s.
//
// # ECS integration
//
// Scene lifecycle events can be forwarded to an [EntityStore]. The ecs
// submodule provides a [Donburi] adapter.
//
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
// [ebitenhost]: https://pkg.go.dev/github.com/phanxgames/aspen/ebitenhost
package aspen
