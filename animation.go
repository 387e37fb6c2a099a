package grove

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 values on a graph node simultaneously.
// Create one via the convenience constructors (TweenPosition, TweenScale,
// TweenRotation, TweenSpriteColor) and call Update(dt) each frame. Values are
// written through the node's regular setters, so physics-backed nodes pick
// the animation up on the next sync pass. If the target handle goes stale,
// the group stops immediately.
//
// There is no global animation manager, users call Update themselves.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	apply  func(node *Node, vals [4]float64)
	graph  *Graph
	target Handle
	Done   bool
}

// Update advances all tweens by dt seconds and writes the values to the
// target node. If the target handle is no longer valid, Done is set to true
// and no writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	node, ok := g.graph.TryGet(g.target)
	if !ok {
		g.Done = true
		return
	}

	allDone := true
	var vals [4]float64
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		vals[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
	g.apply(node, vals)
}

// TweenPosition creates a TweenGroup that animates the node's local position
// to the given target over the specified duration using the easing function.
func TweenPosition(g *Graph, target Handle, to Vec2, duration float32, fn ease.TweenFunc) *TweenGroup {
	from := g.Get(target).Local.Position
	tg := &TweenGroup{count: 2, graph: g, target: target}
	tg.tweens[0] = gween.New(float32(from.X), float32(to.X), duration, fn)
	tg.tweens[1] = gween.New(float32(from.Y), float32(to.Y), duration, fn)
	tg.apply = func(node *Node, vals [4]float64) {
		node.LocalTransform().SetPosition(Vec2{vals[0], vals[1]})
	}
	return tg
}

// TweenScale creates a TweenGroup that animates the node's local scale to the
// given target over the specified duration using the easing function.
func TweenScale(g *Graph, target Handle, to Vec2, duration float32, fn ease.TweenFunc) *TweenGroup {
	from := g.Get(target).Local.Scale
	tg := &TweenGroup{count: 2, graph: g, target: target}
	tg.tweens[0] = gween.New(float32(from.X), float32(to.X), duration, fn)
	tg.tweens[1] = gween.New(float32(from.Y), float32(to.Y), duration, fn)
	tg.apply = func(node *Node, vals [4]float64) {
		node.LocalTransform().SetScale(Vec2{vals[0], vals[1]})
	}
	return tg
}

// TweenRotation creates a TweenGroup that animates the node's local rotation
// to the target angle in radians.
func TweenRotation(g *Graph, target Handle, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	from := g.Get(target).Local.Rotation
	tg := &TweenGroup{count: 1, graph: g, target: target}
	tg.tweens[0] = gween.New(float32(from), float32(to), duration, fn)
	tg.apply = func(node *Node, vals [4]float64) {
		node.LocalTransform().SetRotation(vals[0])
	}
	return tg
}

// TweenSpriteColor creates a TweenGroup that animates all four components of
// a sprite node's color to the target color. Panics if the node is not a
// sprite node.
func TweenSpriteColor(g *Graph, target Handle, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	node := g.Get(target)
	if node.Type != NodeTypeSprite {
		panic("grove: TweenSpriteColor target is not a sprite node")
	}
	from := node.Sprite.Color
	tg := &TweenGroup{count: 4, graph: g, target: target}
	tg.tweens[0] = gween.New(float32(from.R), float32(to.R), duration, fn)
	tg.tweens[1] = gween.New(float32(from.G), float32(to.G), duration, fn)
	tg.tweens[2] = gween.New(float32(from.B), float32(to.B), duration, fn)
	tg.tweens[3] = gween.New(float32(from.A), float32(to.A), duration, fn)
	tg.apply = func(node *Node, vals [4]float64) {
		node.Sprite.Color = Color{vals[0], vals[1], vals[2], vals[3]}
	}
	return tg
}
