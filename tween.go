package aspen

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 2 properties of one sprite simultaneously.
// Create one via the convenience constructors (TweenPosition, TweenScale,
// TweenRotation) and either call Update(dt) each frame or hand it to
// Scene.Animate. Every step goes through the scene's geometry protocol, so a
// step that would push the sprite out of the world fails, sets Err and stops
// the group. If the sprite is removed, the group stops immediately.
type TweenGroup struct {
	tweens [2]*gween.Tween
	count  int
	vals   [2]float64
	apply  func(v [2]float64) error
	scene  *Scene
	target SpriteID
	Done   bool
	Err    error
}

// Update advances all tweens by dt seconds and applies the values to the
// sprite.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if !g.scene.Valid(g.target) {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		g.vals[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	if err := g.apply(g.vals); err != nil {
		g.Err = err
		g.Done = true
		return
	}
	g.Done = allDone
}

// Target returns the animated sprite.
func (g *TweenGroup) Target() SpriteID { return g.target }

func newTweenGroup(s *Scene, id SpriteID, from, to []float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	if fn == nil {
		fn = ease.Linear
	}
	g := &TweenGroup{count: len(from), scene: s, target: id}
	for i := range from {
		g.tweens[i] = gween.New(float32(from[i]), float32(to[i]), duration, fn)
		g.vals[i] = from[i]
	}
	return g
}

// TweenPosition creates a TweenGroup that moves the sprite's origin to
// (toX, toY) over the specified duration using the easing function.
func (s *Scene) TweenPosition(id SpriteID, toX, toY float64, duration float32, fn ease.TweenFunc) (*TweenGroup, error) {
	r, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	g := newTweenGroup(s, id, []float64{r.pos.X, r.pos.Y}, []float64{toX, toY}, duration, fn)
	g.apply = func(v [2]float64) error { return s.SetPosition(id, v[0], v[1]) }
	return g, nil
}

// TweenScale creates a TweenGroup that animates the sprite's scale to
// (toSX, toSY).
func (s *Scene) TweenScale(id SpriteID, toSX, toSY float64, duration float32, fn ease.TweenFunc) (*TweenGroup, error) {
	r, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	g := newTweenGroup(s, id, []float64{r.scale.X, r.scale.Y}, []float64{toSX, toSY}, duration, fn)
	g.apply = func(v [2]float64) error { return s.SetScale(id, v[0], v[1]) }
	return g, nil
}

// TweenRotation creates a TweenGroup that animates the sprite's rotation to
// the target value in radians.
func (s *Scene) TweenRotation(id SpriteID, to float64, duration float32, fn ease.TweenFunc) (*TweenGroup, error) {
	r, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	g := newTweenGroup(s, id, []float64{r.rotation}, []float64{to}, duration, fn)
	g.apply = func(v [2]float64) error { return s.SetRotation(id, v[0]) }
	return g, nil
}
